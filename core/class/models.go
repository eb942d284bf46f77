package class

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/carnet/core"
)

// Class is a school class for one school year. It owns students and compositions.
type Class struct {
	ID         string    `json:"id" db:"id" bson:"_id"`
	School     string    `json:"nom" db:"nom" bson:"nom"`
	Level      string    `json:"niveau" db:"niveau" bson:"niveau"`
	SchoolYear string    `json:"annee_scolaire" db:"annee_scolaire" bson:"annee_scolaire"`
	Teacher    string    `json:"enseignant" db:"enseignant" bson:"enseignant"`
	CreatedAt  time.Time `json:"created_at" db:"created_at" bson:"created_at"` // UTC
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at" bson:"updated_at"` // UTC
}

// NewClass contains information needed to create a new Class.
type NewClass struct {
	School     string `json:"nom" validate:"required,notblank"`
	Level      string `json:"niveau" validate:"required,notblank"`
	SchoolYear string `json:"annee_scolaire" validate:"required,notblank"`
	Teacher    string `json:"enseignant" validate:"required,notblank"`
}

func (nc *NewClass) Validate(validate *validator.Validate) error {
	nc.School = core.CleanString(nc.School)
	nc.Level = core.CleanString(nc.Level)
	nc.SchoolYear = core.CleanString(nc.SchoolYear)
	nc.Teacher = core.CleanString(nc.Teacher)
	return validate.Struct(nc)
}

// UpdateClass defines what information may be provided to modify an existing Class.
// Blank fields keep their current value.
type UpdateClass struct {
	School     string `json:"nom"`
	Level      string `json:"niveau"`
	SchoolYear string `json:"annee_scolaire"`
	Teacher    string `json:"enseignant"`
}

func (uc *UpdateClass) Validate(orig Class, validate *validator.Validate) error {
	uc.School = orDefault(uc.School, orig.School)
	uc.Level = orDefault(uc.Level, orig.Level)
	uc.SchoolYear = orDefault(uc.SchoolYear, orig.SchoolYear)
	uc.Teacher = orDefault(uc.Teacher, orig.Teacher)
	return validate.Struct(uc)
}

func orDefault(s, def string) string {
	if s = core.CleanString(s); s != "" {
		return s
	}
	return def
}
