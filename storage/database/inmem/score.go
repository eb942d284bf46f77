package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/carnet/core/score"
)

type scoreRepository struct {
	db *DB
}

func NewScoreRepository(db *DB) score.Repository {
	return &scoreRepository{db: db}
}

// exists must be called with the lock held.
func (repo *scoreRepository) exists(compositionID, studentID string) bool {
	for _, r := range repo.db.score {
		if r.CompositionID == compositionID && r.StudentID == studentID {
			return true
		}
	}
	return false
}

func (repo *scoreRepository) CreateScore(_ context.Context, sc score.Score) (score.Score, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if repo.exists(sc.CompositionID, sc.StudentID) {
		return score.Score{}, score.ErrExists
	}
	repo.db.score[sc.ID] = &scoreRow{seq: repo.db.next(), Score: sc}
	return sc, nil
}

func (repo *scoreRepository) QueryScores(_ context.Context, filter score.QueryFilter) ([]score.Score, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var compIDs map[string]bool
	if filter.CompositionIDs != nil {
		compIDs = make(map[string]bool, len(filter.CompositionIDs))
		for _, id := range filter.CompositionIDs {
			compIDs[id] = true
		}
	}

	rows := make([]*scoreRow, 0, len(repo.db.score))
	for _, r := range repo.db.score {
		if filter.CompositionID != "" && r.CompositionID != filter.CompositionID {
			continue
		}
		if filter.StudentID != "" && r.StudentID != filter.StudentID {
			continue
		}
		if compIDs != nil && !compIDs[r.CompositionID] {
			continue
		}
		rows = append(rows, r)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })

	scores := make([]score.Score, len(rows))
	for i, r := range rows {
		scores[i] = r.Score
	}
	return scores, nil
}

func (repo *scoreRepository) GetScoreByID(_ context.Context, id string) (score.Score, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if r, ok := repo.db.score[id]; ok {
		return r.Score, nil
	}
	return score.Score{}, score.ErrNotFound
}

func (repo *scoreRepository) UpdateScore(_ context.Context, sc score.Score) (score.Score, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	r, ok := repo.db.score[sc.ID]
	if !ok {
		return score.Score{}, score.ErrNotFound
	}
	r.Scores = sc.Scores
	r.UpdatedAt = sc.UpdatedAt
	return r.Score, nil
}

func (repo *scoreRepository) DeleteScore(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.score[id]; !ok {
		return score.ErrNotFound
	}
	delete(repo.db.score, id)
	return nil
}

func (repo *scoreRepository) ScoreExists(_ context.Context, compositionID, studentID string) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.exists(compositionID, studentID), nil
}
