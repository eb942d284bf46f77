package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/carnet/core/score"
	"github.com/trezcool/carnet/core/student"
)

type studentRepository struct {
	db *DB
}

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) CreateStudent(_ context.Context, std student.Student) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.student[std.ID] = &studentRow{seq: repo.db.next(), Student: std}
	return std, nil
}

func (repo *studentRepository) QueryStudents(_ context.Context, filter student.QueryFilter) ([]student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	rows := make([]*studentRow, 0, len(repo.db.student))
	for _, r := range repo.db.student {
		if filter.ClassID == "" || r.ClassID == filter.ClassID {
			rows = append(rows, r)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })

	students := make([]student.Student, len(rows))
	for i, r := range rows {
		students[i] = r.Student
	}
	return students, nil
}

func (repo *studentRepository) GetStudentByID(_ context.Context, id string) (student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if r, ok := repo.db.student[id]; ok {
		return r.Student, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) UpdateStudent(_ context.Context, std student.Student) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	r, ok := repo.db.student[std.ID]
	if !ok {
		return student.Student{}, student.ErrNotFound
	}
	r.LastName = std.LastName
	r.FirstName = std.FirstName
	r.ClassID = std.ClassID
	r.BirthDate = std.BirthDate
	r.UpdatedAt = std.UpdatedAt
	return r.Student, nil
}

func (repo *studentRepository) DeleteStudent(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.student[id]; !ok {
		return student.ErrNotFound
	}
	repo.db.deleteScoresWhere(func(sc score.Score) bool { return sc.StudentID == id })
	delete(repo.db.student, id)
	return nil
}
