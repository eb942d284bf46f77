package pgrepos

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/carnet/core/score"
)

const scoreColumns = `id, composition_id, eleve_id, etude_texte, aem, dictee, math, created_at, updated_at`

type scoreRepository struct {
	db *sqlx.DB
}

func NewScoreRepository(db *sqlx.DB) score.Repository {
	return &scoreRepository{db: db}
}

func (repo *scoreRepository) CreateScore(ctx context.Context, sc score.Score) (score.Score, error) {
	q := `INSERT INTO notes (` + scoreColumns + `)
		VALUES (:id, :composition_id, :eleve_id, :etude_texte, :aem, :dictee, :math, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, sc); err != nil {
		if pqCode(err) == uniqueViolation {
			return score.Score{}, score.ErrExists
		}
		return score.Score{}, errors.Wrap(err, "inserting score record")
	}
	return sc, nil
}

func (repo *scoreRepository) QueryScores(ctx context.Context, filter score.QueryFilter) ([]score.Score, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.CompositionID != "" {
		where = append(where, "composition_id = ?")
		args = append(args, filter.CompositionID)
	}
	if filter.StudentID != "" {
		where = append(where, "eleve_id = ?")
		args = append(args, filter.StudentID)
	}
	if filter.CompositionIDs != nil {
		if len(filter.CompositionIDs) == 0 {
			return []score.Score{}, nil
		}
		where = append(where, "composition_id IN (?)")
		args = append(args, filter.CompositionIDs)
	}

	q := `SELECT ` + scoreColumns + ` FROM notes`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY created_at, id`

	q, args, err := sqlx.In(q, args...)
	if err != nil {
		return nil, errors.Wrap(err, "expanding score query")
	}
	scores := make([]score.Score, 0)
	if err = repo.db.SelectContext(ctx, &scores, repo.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "selecting score records")
	}
	return scores, nil
}

func (repo *scoreRepository) GetScoreByID(ctx context.Context, id string) (score.Score, error) {
	var sc score.Score
	q := `SELECT ` + scoreColumns + ` FROM notes WHERE id = $1`
	if err := repo.db.GetContext(ctx, &sc, q, id); err != nil {
		if err == sql.ErrNoRows {
			return score.Score{}, score.ErrNotFound
		}
		return score.Score{}, errors.Wrap(err, "selecting score record")
	}
	return sc, nil
}

func (repo *scoreRepository) UpdateScore(ctx context.Context, sc score.Score) (score.Score, error) {
	q := `UPDATE notes
		SET etude_texte = :etude_texte, aem = :aem, dictee = :dictee, math = :math, updated_at = :updated_at
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, sc)
	if err != nil {
		return score.Score{}, errors.Wrap(err, "updating score record")
	}
	if err = notFound(res, score.ErrNotFound); err != nil {
		return score.Score{}, err
	}
	return repo.GetScoreByID(ctx, sc.ID)
}

func (repo *scoreRepository) DeleteScore(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM notes WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting score record")
	}
	return notFound(res, score.ErrNotFound)
}

func (repo *scoreRepository) ScoreExists(ctx context.Context, compositionID, studentID string) (bool, error) {
	var exists bool
	q := `SELECT EXISTS (SELECT 1 FROM notes WHERE composition_id = $1 AND eleve_id = $2)`
	if err := repo.db.GetContext(ctx, &exists, q, compositionID, studentID); err != nil {
		return false, errors.Wrap(err, "checking score record")
	}
	return exists, nil
}
