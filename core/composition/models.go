package composition

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/carnet/core"
)

// Composition is one exam session of a class. Number orders the compositions chronologically.
type Composition struct {
	ID        string    `json:"id" db:"id" bson:"_id"`
	ClassID   string    `json:"classe_id" db:"classe_id" bson:"classe_id"`
	Number    int       `json:"numero" db:"numero" bson:"numero"`
	Date      string    `json:"date" db:"date" bson:"date"` // YYYY-MM-DD
	Title     string    `json:"titre" db:"titre" bson:"titre"`
	Month     string    `json:"mois" db:"mois" bson:"mois"`
	CreatedAt time.Time `json:"created_at" db:"created_at" bson:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at" db:"updated_at" bson:"updated_at"` // UTC
}

// NewComposition contains information needed to create a new Composition.
type NewComposition struct {
	ClassID string `json:"classe_id" validate:"required,notblank"`
	Number  int    `json:"numero" validate:"required,min=1"`
	Date    string `json:"date" validate:"required,datetime=2006-01-02"`
	Title   string `json:"titre" validate:"required,notblank"`
	Month   string `json:"mois" validate:"required,notblank"`
}

func (nc *NewComposition) Validate(validate *validator.Validate) error {
	nc.ClassID = core.CleanString(nc.ClassID)
	nc.Date = core.CleanString(nc.Date)
	nc.Title = core.CleanString(nc.Title)
	nc.Month = core.CleanString(nc.Month)
	return validate.Struct(nc)
}

// UpdateComposition defines what information may be provided to modify an existing Composition.
// Zero values keep the current value; a composition never changes class.
type UpdateComposition struct {
	Number int    `json:"numero" validate:"min=1"`
	Date   string `json:"date" validate:"datetime=2006-01-02"`
	Title  string `json:"titre"`
	Month  string `json:"mois"`
}

func (uc *UpdateComposition) Validate(orig Composition, validate *validator.Validate) error {
	if uc.Number == 0 {
		uc.Number = orig.Number
	}
	uc.Date = orDefault(uc.Date, orig.Date)
	uc.Title = orDefault(uc.Title, orig.Title)
	uc.Month = orDefault(uc.Month, orig.Month)
	return validate.Struct(uc)
}

type QueryFilter struct {
	ClassID string `query:"classe_id"`
}

func (qf *QueryFilter) Clean() {
	qf.ClassID = core.CleanString(qf.ClassID)
}

func orDefault(s, def string) string {
	if s = core.CleanString(s); s != "" {
		return s
	}
	return def
}
