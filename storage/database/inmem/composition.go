package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/carnet/core/composition"
	"github.com/trezcool/carnet/core/score"
)

type compositionRepository struct {
	db *DB
}

func NewCompositionRepository(db *DB) composition.Repository {
	return &compositionRepository{db: db}
}

// numberTaken must be called with the lock held.
func (repo *compositionRepository) numberTaken(classID string, number int, excludeID string) bool {
	for id, r := range repo.db.composition {
		if id != excludeID && r.ClassID == classID && r.Number == number {
			return true
		}
	}
	return false
}

func (repo *compositionRepository) CreateComposition(_ context.Context, comp composition.Composition) (composition.Composition, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if repo.numberTaken(comp.ClassID, comp.Number, "") {
		return composition.Composition{}, composition.ErrNumberExists
	}
	repo.db.composition[comp.ID] = &compositionRow{seq: repo.db.next(), Composition: comp}
	return comp, nil
}

func (repo *compositionRepository) QueryCompositions(_ context.Context, filter composition.QueryFilter) ([]composition.Composition, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	rows := make([]*compositionRow, 0, len(repo.db.composition))
	for _, r := range repo.db.composition {
		if filter.ClassID == "" || r.ClassID == filter.ClassID {
			rows = append(rows, r)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].ClassID != rows[j].ClassID {
			return rows[i].ClassID < rows[j].ClassID
		}
		return rows[i].Number < rows[j].Number
	})

	comps := make([]composition.Composition, len(rows))
	for i, r := range rows {
		comps[i] = r.Composition
	}
	return comps, nil
}

func (repo *compositionRepository) GetCompositionByID(_ context.Context, id string) (composition.Composition, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if r, ok := repo.db.composition[id]; ok {
		return r.Composition, nil
	}
	return composition.Composition{}, composition.ErrNotFound
}

func (repo *compositionRepository) UpdateComposition(_ context.Context, comp composition.Composition) (composition.Composition, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	r, ok := repo.db.composition[comp.ID]
	if !ok {
		return composition.Composition{}, composition.ErrNotFound
	}
	if repo.numberTaken(r.ClassID, comp.Number, comp.ID) {
		return composition.Composition{}, composition.ErrNumberExists
	}
	r.Number = comp.Number
	r.Date = comp.Date
	r.Title = comp.Title
	r.Month = comp.Month
	r.UpdatedAt = comp.UpdatedAt
	return r.Composition, nil
}

func (repo *compositionRepository) DeleteComposition(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.composition[id]; !ok {
		return composition.ErrNotFound
	}
	repo.db.deleteScoresWhere(func(sc score.Score) bool { return sc.CompositionID == id })
	delete(repo.db.composition, id)
	return nil
}

func (repo *compositionRepository) NumberExists(_ context.Context, classID string, number int, excludeID string) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.numberTaken(classID, number, excludeID), nil
}
