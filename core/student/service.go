package student

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/carnet/core"
	"github.com/trezcool/carnet/core/class"
)

// ErrNotFound is returned by repositories when no student matches.
var ErrNotFound = errors.New("Élève non trouvé")

type (
	Repository interface {
		CreateStudent(ctx context.Context, std Student) (Student, error)
		// QueryStudents returns the matching students in enrollment order (created_at, then id).
		QueryStudents(ctx context.Context, filter QueryFilter) ([]Student, error)
		GetStudentByID(ctx context.Context, id string) (Student, error)
		UpdateStudent(ctx context.Context, std Student) (Student, error)
		// DeleteStudent removes the student along with their score records.
		DeleteStudent(ctx context.Context, id string) error
	}

	Service struct {
		repo    Repository
		classes class.Repository
	}
)

func NewService(repo Repository, classRepo class.Repository) *Service {
	return &Service{repo: repo, classes: classRepo}
}

// NotFound wraps a repository miss into a core.NotFoundError carrying the student ID.
func NotFound(id string, err error) error {
	if errors.Cause(err) == ErrNotFound {
		return core.NewNotFoundError("eleve", id, ErrNotFound.Error())
	}
	return err
}

func (svc *Service) checkClass(ctx context.Context, classID string) error {
	if _, err := svc.classes.GetClassByID(ctx, classID); err != nil {
		return class.NotFound(classID, err)
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, ns NewStudent) (Student, error) {
	if err := svc.checkClass(ctx, ns.ClassID); err != nil {
		return Student{}, err
	}

	now := time.Now().UTC()
	std := Student{
		ID:        uuid.New().String(),
		LastName:  ns.LastName,
		FirstName: ns.FirstName,
		ClassID:   ns.ClassID,
		BirthDate: ns.BirthDate,
		CreatedAt: now,
		UpdatedAt: now,
	}
	std, err := svc.repo.CreateStudent(ctx, std)
	if err != nil {
		return Student{}, class.NotFound(ns.ClassID, errors.Wrap(err, "creating student"))
	}
	return std, nil
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Student, error) {
	students, err := svc.repo.QueryStudents(ctx, filter)
	return students, errors.Wrap(err, "querying students")
}

func (svc *Service) GetByID(ctx context.Context, id string) (Student, error) {
	std, err := svc.repo.GetStudentByID(ctx, id)
	if err != nil {
		return Student{}, NotFound(id, err)
	}
	return std, nil
}

func (svc *Service) Update(ctx context.Context, orig Student, us UpdateStudent) (Student, error) {
	if us.ClassID != orig.ClassID {
		if err := svc.checkClass(ctx, us.ClassID); err != nil {
			return Student{}, err
		}
	}

	std, err := svc.repo.UpdateStudent(ctx, Student{
		ID:        orig.ID,
		LastName:  us.LastName,
		FirstName: us.FirstName,
		ClassID:   us.ClassID,
		BirthDate: us.BirthDate,
		UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		return Student{}, class.NotFound(us.ClassID, NotFound(orig.ID, err))
	}
	return std, nil
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return NotFound(id, svc.repo.DeleteStudent(ctx, id))
}
