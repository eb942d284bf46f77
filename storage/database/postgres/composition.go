package pgrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/carnet/core/composition"
)

const compositionColumns = `id, classe_id, numero, to_char(date, 'YYYY-MM-DD') AS date, titre, mois, created_at, updated_at`

type compositionRepository struct {
	db *sqlx.DB
}

func NewCompositionRepository(db *sqlx.DB) composition.Repository {
	return &compositionRepository{db: db}
}

func (repo *compositionRepository) CreateComposition(ctx context.Context, comp composition.Composition) (composition.Composition, error) {
	q := `INSERT INTO compositions (id, classe_id, numero, date, titre, mois, created_at, updated_at)
		VALUES (:id, :classe_id, :numero, :date, :titre, :mois, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, comp); err != nil {
		if pqCode(err) == uniqueViolation {
			return composition.Composition{}, composition.ErrNumberExists
		}
		return composition.Composition{}, errors.Wrap(err, "inserting composition")
	}
	return comp, nil
}

func (repo *compositionRepository) QueryCompositions(ctx context.Context, filter composition.QueryFilter) ([]composition.Composition, error) {
	comps := make([]composition.Composition, 0)
	q := `SELECT ` + compositionColumns + ` FROM compositions`
	var args []interface{}
	if filter.ClassID != "" {
		q += ` WHERE classe_id = $1`
		args = append(args, filter.ClassID)
	}
	q += ` ORDER BY classe_id, numero`
	if err := repo.db.SelectContext(ctx, &comps, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting compositions")
	}
	return comps, nil
}

func (repo *compositionRepository) GetCompositionByID(ctx context.Context, id string) (composition.Composition, error) {
	var comp composition.Composition
	q := `SELECT ` + compositionColumns + ` FROM compositions WHERE id = $1`
	if err := repo.db.GetContext(ctx, &comp, q, id); err != nil {
		if err == sql.ErrNoRows {
			return composition.Composition{}, composition.ErrNotFound
		}
		return composition.Composition{}, errors.Wrap(err, "selecting composition")
	}
	return comp, nil
}

func (repo *compositionRepository) UpdateComposition(ctx context.Context, comp composition.Composition) (composition.Composition, error) {
	q := `UPDATE compositions
		SET numero = :numero, date = :date, titre = :titre, mois = :mois, updated_at = :updated_at
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, comp)
	if err != nil {
		if pqCode(err) == uniqueViolation {
			return composition.Composition{}, composition.ErrNumberExists
		}
		return composition.Composition{}, errors.Wrap(err, "updating composition")
	}
	if err = notFound(res, composition.ErrNotFound); err != nil {
		return composition.Composition{}, err
	}
	return repo.GetCompositionByID(ctx, comp.ID)
}

func (repo *compositionRepository) DeleteComposition(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM compositions WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting composition")
	}
	return notFound(res, composition.ErrNotFound)
}

func (repo *compositionRepository) NumberExists(ctx context.Context, classID string, number int, excludeID string) (bool, error) {
	var exists bool
	q := `SELECT EXISTS (SELECT 1 FROM compositions WHERE classe_id = $1 AND numero = $2 AND id <> $3)`
	if err := repo.db.GetContext(ctx, &exists, q, classID, number, excludeID); err != nil {
		return false, errors.Wrap(err, "checking composition number")
	}
	return exists, nil
}
