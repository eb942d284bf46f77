package score

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/carnet/core"
	"github.com/trezcool/carnet/core/composition"
	"github.com/trezcool/carnet/core/grading"
	"github.com/trezcool/carnet/core/student"
)

var (
	// ErrNotFound is returned by repositories when no score record matches.
	ErrNotFound = errors.New("Note non trouvée")
	// ErrExists is returned by repositories when the (composition, student) pair already has a record.
	ErrExists = errors.New("une note existe déjà pour cet élève et cette composition")

	errWrongClass = "l'élève n'appartient pas à la classe de cette composition"
)

type (
	Repository interface {
		CreateScore(ctx context.Context, sc Score) (Score, error)
		// QueryScores applies AND operation on the non-empty QueryFilter fields.
		QueryScores(ctx context.Context, filter QueryFilter) ([]Score, error)
		GetScoreByID(ctx context.Context, id string) (Score, error)
		// UpdateScore saves the subject scores and UpdatedAt of sc.
		UpdateScore(ctx context.Context, sc Score) (Score, error)
		DeleteScore(ctx context.Context, id string) error
		ScoreExists(ctx context.Context, compositionID, studentID string) (bool, error)
	}

	Service struct {
		repo         Repository
		compositions composition.Repository
		students     student.Repository
	}
)

func NewService(repo Repository, compRepo composition.Repository, studentRepo student.Repository) *Service {
	return &Service{repo: repo, compositions: compRepo, students: studentRepo}
}

// NotFound wraps a repository miss into a core.NotFoundError carrying the score record ID.
func NotFound(id string, err error) error {
	if errors.Cause(err) == ErrNotFound {
		return core.NewNotFoundError("note", id, ErrNotFound.Error())
	}
	return err
}

func existsError(compositionID, studentID string) error {
	return core.NewValidationError(
		fmt.Errorf("score record exists for student %s in composition %s", studentID, compositionID),
		core.FieldError{Field: "eleve_id", Error: ErrExists.Error()},
	)
}

// Create records new scores once every reference has been checked; nothing is written on failure.
func (svc *Service) Create(ctx context.Context, ns NewScore) (Score, error) {
	comp, err := svc.compositions.GetCompositionByID(ctx, ns.CompositionID)
	if err != nil {
		return Score{}, composition.NotFound(ns.CompositionID, err)
	}
	std, err := svc.students.GetStudentByID(ctx, ns.StudentID)
	if err != nil {
		return Score{}, student.NotFound(ns.StudentID, err)
	}
	if std.ClassID != comp.ClassID {
		return Score{}, core.NewValidationError(
			fmt.Errorf("student %s is not enrolled in class %s", std.ID, comp.ClassID),
			core.FieldError{Field: "eleve_id", Error: errWrongClass},
		)
	}

	exists, err := svc.repo.ScoreExists(ctx, comp.ID, std.ID)
	if err != nil {
		return Score{}, errors.Wrap(err, "checking score record")
	}
	if exists {
		return Score{}, existsError(comp.ID, std.ID)
	}

	scores := ns.Scores()
	if err := grading.ValidateScores(scores); err != nil {
		return Score{}, err
	}

	now := time.Now().UTC()
	sc, err := svc.repo.CreateScore(ctx, Score{
		ID:            uuid.New().String(),
		CompositionID: comp.ID,
		StudentID:     std.ID,
		Scores:        scores,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if errors.Cause(err) == ErrExists {
		return Score{}, existsError(comp.ID, std.ID)
	}
	return sc, errors.Wrap(err, "creating score record")
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Score, error) {
	scores, err := svc.repo.QueryScores(ctx, filter)
	return scores, errors.Wrap(err, "querying score records")
}

func (svc *Service) GetByID(ctx context.Context, id string) (Score, error) {
	sc, err := svc.repo.GetScoreByID(ctx, id)
	if err != nil {
		return Score{}, NotFound(id, err)
	}
	return sc, nil
}

func (svc *Service) Update(ctx context.Context, orig Score, us UpdateScore) (Score, error) {
	scores := us.Merge(orig.Scores)
	if err := grading.ValidateScores(scores); err != nil {
		return Score{}, err
	}

	sc, err := svc.repo.UpdateScore(ctx, Score{
		ID:            orig.ID,
		CompositionID: orig.CompositionID,
		StudentID:     orig.StudentID,
		Scores:        scores,
		UpdatedAt:     time.Now().UTC(),
	})
	if err != nil {
		return Score{}, NotFound(orig.ID, err)
	}
	return sc, nil
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return NotFound(id, svc.repo.DeleteScore(ctx, id))
}
