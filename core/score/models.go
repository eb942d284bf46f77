package score

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/carnet/core"
	"github.com/trezcool/carnet/core/grading"
)

// Score is a score record ("note"): one student's raw subject scores for one composition.
// There is at most one Score per (composition, student) pair.
type Score struct {
	ID             string `json:"id" db:"id" bson:"_id"`
	CompositionID  string `json:"composition_id" db:"composition_id" bson:"composition_id"`
	StudentID      string `json:"eleve_id" db:"eleve_id" bson:"eleve_id"`
	grading.Scores `bson:",inline"`
	CreatedAt      time.Time `json:"created_at" db:"created_at" bson:"created_at"` // UTC
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at" bson:"updated_at"` // UTC
}

// Record is the view of the score handed to the grading engine.
func (s Score) Record() grading.Record {
	return grading.Record{ID: s.ID, StudentID: s.StudentID, Scores: s.Scores}
}

// NewScore contains information needed to record a new Score.
// Subject scores are pointers so that a missing score is told apart from a zero.
type NewScore struct {
	CompositionID string   `json:"composition_id" validate:"required,notblank"`
	StudentID     string   `json:"eleve_id" validate:"required,notblank"`
	TextStudy     *float64 `json:"etude_texte" validate:"required"`
	AEM           *float64 `json:"aem" validate:"required"`
	Dictation     *float64 `json:"dictee" validate:"required"`
	Math          *float64 `json:"math" validate:"required"`
}

// Scores returns the subject scores, zero for the missing ones.
func (ns NewScore) Scores() grading.Scores {
	return grading.Scores{
		TextStudy: deref(ns.TextStudy),
		AEM:       deref(ns.AEM),
		Dictation: deref(ns.Dictation),
		Math:      deref(ns.Math),
	}
}

func (ns *NewScore) Validate(validate *validator.Validate) error {
	ns.CompositionID = core.CleanString(ns.CompositionID)
	ns.StudentID = core.CleanString(ns.StudentID)
	if err := validate.Struct(ns); err != nil {
		return err
	}
	return grading.ValidateScores(ns.Scores())
}

// UpdateScore defines what information may be provided to modify an existing Score.
// Missing subject scores keep their current value; the (composition, student) pair never changes.
type UpdateScore struct {
	TextStudy *float64 `json:"etude_texte"`
	AEM       *float64 `json:"aem"`
	Dictation *float64 `json:"dictee"`
	Math      *float64 `json:"math"`
}

// Merge applies the provided subject scores over orig.
func (us UpdateScore) Merge(orig grading.Scores) grading.Scores {
	s := orig
	if us.TextStudy != nil {
		s.TextStudy = *us.TextStudy
	}
	if us.AEM != nil {
		s.AEM = *us.AEM
	}
	if us.Dictation != nil {
		s.Dictation = *us.Dictation
	}
	if us.Math != nil {
		s.Math = *us.Math
	}
	return s
}

func (us *UpdateScore) Validate(orig Score) error {
	return grading.ValidateScores(us.Merge(orig.Scores))
}

type QueryFilter struct {
	CompositionID string `query:"composition_id"`
	StudentID     string `query:"eleve_id"`
	// CompositionIDs restricts the records to several compositions at once (AND-ed with CompositionID).
	CompositionIDs []string `query:"-"`
}

func (qf *QueryFilter) Clean() {
	qf.CompositionID = core.CleanString(qf.CompositionID)
	qf.StudentID = core.CleanString(qf.StudentID)
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
