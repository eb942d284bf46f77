package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/carnet/core/class"
	"github.com/trezcool/carnet/core/score"
)

type classRepository struct {
	db *DB
}

func NewClassRepository(db *DB) class.Repository {
	return &classRepository{db: db}
}

func (repo *classRepository) CreateClass(_ context.Context, cls class.Class) (class.Class, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.class[cls.ID] = &classRow{seq: repo.db.next(), Class: cls}
	return cls, nil
}

func (repo *classRepository) QueryClasses(context.Context) ([]class.Class, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	rows := make([]*classRow, 0, len(repo.db.class))
	for _, r := range repo.db.class {
		rows = append(rows, r)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })

	classes := make([]class.Class, len(rows))
	for i, r := range rows {
		classes[i] = r.Class
	}
	return classes, nil
}

func (repo *classRepository) GetClassByID(_ context.Context, id string) (class.Class, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if r, ok := repo.db.class[id]; ok {
		return r.Class, nil
	}
	return class.Class{}, class.ErrNotFound
}

func (repo *classRepository) UpdateClass(_ context.Context, cls class.Class) (class.Class, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	r, ok := repo.db.class[cls.ID]
	if !ok {
		return class.Class{}, class.ErrNotFound
	}
	r.School = cls.School
	r.Level = cls.Level
	r.SchoolYear = cls.SchoolYear
	r.Teacher = cls.Teacher
	r.UpdatedAt = cls.UpdatedAt
	return r.Class, nil
}

func (repo *classRepository) DeleteClass(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.class[id]; !ok {
		return class.ErrNotFound
	}

	students := make(map[string]bool)
	for sid, r := range repo.db.student {
		if r.ClassID == id {
			students[sid] = true
			delete(repo.db.student, sid)
		}
	}
	comps := make(map[string]bool)
	for cid, r := range repo.db.composition {
		if r.ClassID == id {
			comps[cid] = true
			delete(repo.db.composition, cid)
		}
	}
	repo.db.deleteScoresWhere(func(sc score.Score) bool {
		return students[sc.StudentID] || comps[sc.CompositionID]
	})
	delete(repo.db.class, id)
	return nil
}
