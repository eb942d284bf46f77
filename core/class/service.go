package class

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/carnet/core"
)

// ErrNotFound is returned by repositories when no class matches.
var ErrNotFound = errors.New("Classe non trouvée")

type (
	Repository interface {
		CreateClass(ctx context.Context, cls Class) (Class, error)
		// QueryClasses returns every class, oldest first.
		QueryClasses(ctx context.Context) ([]Class, error)
		GetClassByID(ctx context.Context, id string) (Class, error)
		UpdateClass(ctx context.Context, cls Class) (Class, error)
		// DeleteClass removes the class along with its students, compositions and their score records.
		DeleteClass(ctx context.Context, id string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// NotFound wraps a repository miss into a core.NotFoundError carrying the class ID.
func NotFound(id string, err error) error {
	if errors.Cause(err) == ErrNotFound {
		return core.NewNotFoundError("classe", id, ErrNotFound.Error())
	}
	return err
}

func (svc *Service) Create(ctx context.Context, nc NewClass) (Class, error) {
	now := time.Now().UTC()
	cls := Class{
		ID:         uuid.New().String(),
		School:     nc.School,
		Level:      nc.Level,
		SchoolYear: nc.SchoolYear,
		Teacher:    nc.Teacher,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	cls, err := svc.repo.CreateClass(ctx, cls)
	return cls, errors.Wrap(err, "creating class")
}

func (svc *Service) QueryAll(ctx context.Context) ([]Class, error) {
	classes, err := svc.repo.QueryClasses(ctx)
	return classes, errors.Wrap(err, "querying classes")
}

func (svc *Service) GetByID(ctx context.Context, id string) (Class, error) {
	cls, err := svc.repo.GetClassByID(ctx, id)
	if err != nil {
		return Class{}, NotFound(id, err)
	}
	return cls, nil
}

func (svc *Service) Update(ctx context.Context, orig Class, uc UpdateClass) (Class, error) {
	cls, err := svc.repo.UpdateClass(ctx, Class{
		ID:         orig.ID,
		School:     uc.School,
		Level:      uc.Level,
		SchoolYear: uc.SchoolYear,
		Teacher:    uc.Teacher,
		UpdatedAt:  time.Now().UTC(),
	})
	if err != nil {
		return Class{}, NotFound(orig.ID, err)
	}
	return cls, nil
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return NotFound(id, svc.repo.DeleteClass(ctx, id))
}
