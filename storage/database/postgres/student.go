package pgrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/carnet/core/class"
	"github.com/trezcool/carnet/core/student"
)

const studentColumns = `id, nom, prenom, classe_id, to_char(date_naissance, 'YYYY-MM-DD') AS date_naissance, created_at, updated_at`

// studentRow is the table layout of a student; the birth date is nullable.
type studentRow struct {
	ID        string      `db:"id"`
	LastName  string      `db:"nom"`
	FirstName string      `db:"prenom"`
	ClassID   string      `db:"classe_id"`
	BirthDate null.String `db:"date_naissance"`
	CreatedAt time.Time   `db:"created_at"`
	UpdatedAt time.Time   `db:"updated_at"`
}

func newStudentRow(std student.Student) studentRow {
	return studentRow{
		ID:        std.ID,
		LastName:  std.LastName,
		FirstName: std.FirstName,
		ClassID:   std.ClassID,
		BirthDate: null.StringFromPtr(std.BirthDate),
		CreatedAt: std.CreatedAt,
		UpdatedAt: std.UpdatedAt,
	}
}

func (r studentRow) toStudent() student.Student {
	return student.Student{
		ID:        r.ID,
		LastName:  r.LastName,
		FirstName: r.FirstName,
		ClassID:   r.ClassID,
		BirthDate: r.BirthDate.Ptr(),
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
}

type studentRepository struct {
	db *sqlx.DB
}

func NewStudentRepository(db *sqlx.DB) student.Repository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) CreateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	q := `INSERT INTO eleves (id, nom, prenom, classe_id, date_naissance, created_at, updated_at)
		VALUES (:id, :nom, :prenom, :classe_id, :date_naissance, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, newStudentRow(std)); err != nil {
		if pqCode(err) == foreignKeyViolation {
			return student.Student{}, class.ErrNotFound
		}
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	return std, nil
}

func (repo *studentRepository) QueryStudents(ctx context.Context, filter student.QueryFilter) ([]student.Student, error) {
	var rows []studentRow
	q := `SELECT ` + studentColumns + ` FROM eleves`
	var args []interface{}
	if filter.ClassID != "" {
		q += ` WHERE classe_id = $1`
		args = append(args, filter.ClassID)
	}
	q += ` ORDER BY created_at, id`
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting students")
	}

	students := make([]student.Student, len(rows))
	for i, r := range rows {
		students[i] = r.toStudent()
	}
	return students, nil
}

func (repo *studentRepository) GetStudentByID(ctx context.Context, id string) (student.Student, error) {
	var r studentRow
	q := `SELECT ` + studentColumns + ` FROM eleves WHERE id = $1`
	if err := repo.db.GetContext(ctx, &r, q, id); err != nil {
		if err == sql.ErrNoRows {
			return student.Student{}, student.ErrNotFound
		}
		return student.Student{}, errors.Wrap(err, "selecting student")
	}
	return r.toStudent(), nil
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	q := `UPDATE eleves
		SET nom = :nom, prenom = :prenom, classe_id = :classe_id, date_naissance = :date_naissance, updated_at = :updated_at
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, newStudentRow(std))
	if err != nil {
		if pqCode(err) == foreignKeyViolation {
			return student.Student{}, class.ErrNotFound
		}
		return student.Student{}, errors.Wrap(err, "updating student")
	}
	if err = notFound(res, student.ErrNotFound); err != nil {
		return student.Student{}, err
	}
	return repo.GetStudentByID(ctx, std.ID)
}

func (repo *studentRepository) DeleteStudent(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM eleves WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting student")
	}
	return notFound(res, student.ErrNotFound)
}
