package composition

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/carnet/core"
	"github.com/trezcool/carnet/core/class"
)

var (
	// ErrNotFound is returned by repositories when no composition matches.
	ErrNotFound = errors.New("Composition non trouvée")
	// ErrNumberExists is returned by repositories when a class already has a composition with that number.
	ErrNumberExists = errors.New("une composition avec ce numéro existe déjà pour cette classe")
)

type (
	Repository interface {
		CreateComposition(ctx context.Context, comp Composition) (Composition, error)
		// QueryCompositions returns the matching compositions sorted by class, then number ascending.
		QueryCompositions(ctx context.Context, filter QueryFilter) ([]Composition, error)
		GetCompositionByID(ctx context.Context, id string) (Composition, error)
		UpdateComposition(ctx context.Context, comp Composition) (Composition, error)
		// DeleteComposition removes the composition along with its score records.
		DeleteComposition(ctx context.Context, id string) error
		// NumberExists reports whether another composition of the class (excluding excludeID) has that number.
		NumberExists(ctx context.Context, classID string, number int, excludeID string) (bool, error)
	}

	Service struct {
		repo    Repository
		classes class.Repository
	}
)

func NewService(repo Repository, classRepo class.Repository) *Service {
	return &Service{repo: repo, classes: classRepo}
}

// NotFound wraps a repository miss into a core.NotFoundError carrying the composition ID.
func NotFound(id string, err error) error {
	if errors.Cause(err) == ErrNotFound {
		return core.NewNotFoundError("composition", id, ErrNotFound.Error())
	}
	return err
}

func numberExistsError(classID string, number int) error {
	return core.NewValidationError(
		fmt.Errorf("composition %d already exists in class %s", number, classID),
		core.FieldError{Field: "numero", Error: ErrNumberExists.Error()},
	)
}

func (svc *Service) checkNumber(ctx context.Context, classID string, number int, excludeID string) error {
	exists, err := svc.repo.NumberExists(ctx, classID, number, excludeID)
	if err != nil {
		return errors.Wrap(err, "checking composition number")
	}
	if exists {
		return numberExistsError(classID, number)
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, nc NewComposition) (Composition, error) {
	if _, err := svc.classes.GetClassByID(ctx, nc.ClassID); err != nil {
		return Composition{}, class.NotFound(nc.ClassID, err)
	}
	if err := svc.checkNumber(ctx, nc.ClassID, nc.Number, ""); err != nil {
		return Composition{}, err
	}

	now := time.Now().UTC()
	comp := Composition{
		ID:        uuid.New().String(),
		ClassID:   nc.ClassID,
		Number:    nc.Number,
		Date:      nc.Date,
		Title:     nc.Title,
		Month:     nc.Month,
		CreatedAt: now,
		UpdatedAt: now,
	}
	comp, err := svc.repo.CreateComposition(ctx, comp)
	if errors.Cause(err) == ErrNumberExists {
		return Composition{}, numberExistsError(nc.ClassID, nc.Number)
	}
	return comp, errors.Wrap(err, "creating composition")
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Composition, error) {
	comps, err := svc.repo.QueryCompositions(ctx, filter)
	return comps, errors.Wrap(err, "querying compositions")
}

func (svc *Service) GetByID(ctx context.Context, id string) (Composition, error) {
	comp, err := svc.repo.GetCompositionByID(ctx, id)
	if err != nil {
		return Composition{}, NotFound(id, err)
	}
	return comp, nil
}

func (svc *Service) Update(ctx context.Context, orig Composition, uc UpdateComposition) (Composition, error) {
	if uc.Number != orig.Number {
		if err := svc.checkNumber(ctx, orig.ClassID, uc.Number, orig.ID); err != nil {
			return Composition{}, err
		}
	}

	comp, err := svc.repo.UpdateComposition(ctx, Composition{
		ID:        orig.ID,
		ClassID:   orig.ClassID,
		Number:    uc.Number,
		Date:      uc.Date,
		Title:     uc.Title,
		Month:     uc.Month,
		UpdatedAt: time.Now().UTC(),
	})
	switch errors.Cause(err) {
	case nil:
		return comp, nil
	case ErrNumberExists:
		return Composition{}, numberExistsError(orig.ClassID, uc.Number)
	default:
		return Composition{}, NotFound(orig.ID, err)
	}
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return NotFound(id, svc.repo.DeleteComposition(ctx, id))
}
