package pgrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/carnet/core/class"
)

const classColumns = `id, nom, niveau, annee_scolaire, enseignant, created_at, updated_at`

type classRepository struct {
	db *sqlx.DB
}

func NewClassRepository(db *sqlx.DB) class.Repository {
	return &classRepository{db: db}
}

func (repo *classRepository) CreateClass(ctx context.Context, cls class.Class) (class.Class, error) {
	q := `INSERT INTO classes (` + classColumns + `)
		VALUES (:id, :nom, :niveau, :annee_scolaire, :enseignant, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, cls); err != nil {
		return class.Class{}, errors.Wrap(err, "inserting class")
	}
	return cls, nil
}

func (repo *classRepository) QueryClasses(ctx context.Context) ([]class.Class, error) {
	classes := make([]class.Class, 0)
	q := `SELECT ` + classColumns + ` FROM classes ORDER BY created_at, id`
	if err := repo.db.SelectContext(ctx, &classes, q); err != nil {
		return nil, errors.Wrap(err, "selecting classes")
	}
	return classes, nil
}

func (repo *classRepository) GetClassByID(ctx context.Context, id string) (class.Class, error) {
	var cls class.Class
	q := `SELECT ` + classColumns + ` FROM classes WHERE id = $1`
	if err := repo.db.GetContext(ctx, &cls, q, id); err != nil {
		if err == sql.ErrNoRows {
			return class.Class{}, class.ErrNotFound
		}
		return class.Class{}, errors.Wrap(err, "selecting class")
	}
	return cls, nil
}

func (repo *classRepository) UpdateClass(ctx context.Context, cls class.Class) (class.Class, error) {
	q := `UPDATE classes
		SET nom = :nom, niveau = :niveau, annee_scolaire = :annee_scolaire, enseignant = :enseignant, updated_at = :updated_at
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, cls)
	if err != nil {
		return class.Class{}, errors.Wrap(err, "updating class")
	}
	if err = notFound(res, class.ErrNotFound); err != nil {
		return class.Class{}, err
	}
	return repo.GetClassByID(ctx, cls.ID)
}

// DeleteClass relies on ON DELETE CASCADE for students, compositions and score records.
func (repo *classRepository) DeleteClass(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM classes WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting class")
	}
	return notFound(res, class.ErrNotFound)
}
