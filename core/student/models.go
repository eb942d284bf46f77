package student

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/carnet/core"
)

// Student belongs to exactly one class. Enrollment order is creation order.
type Student struct {
	ID        string    `json:"id" db:"id" bson:"_id"`
	LastName  string    `json:"nom" db:"nom" bson:"nom"`
	FirstName string    `json:"prenom" db:"prenom" bson:"prenom"`
	ClassID   string    `json:"classe_id" db:"classe_id" bson:"classe_id"`
	BirthDate *string   `json:"date_naissance" db:"date_naissance" bson:"date_naissance,omitempty"` // YYYY-MM-DD
	CreatedAt time.Time `json:"created_at" db:"created_at" bson:"created_at"`                       // UTC
	UpdatedAt time.Time `json:"updated_at" db:"updated_at" bson:"updated_at"`                       // UTC
}

// FullName is the name printed on report sheets.
func (s Student) FullName() string {
	if s.FirstName == "" {
		return s.LastName
	}
	return s.LastName + " " + s.FirstName
}

// NewStudent contains information needed to enroll a new Student.
type NewStudent struct {
	LastName  string  `json:"nom" validate:"required,notblank"`
	FirstName string  `json:"prenom" validate:"required,notblank"`
	ClassID   string  `json:"classe_id" validate:"required,notblank"`
	BirthDate *string `json:"date_naissance" validate:"omitempty,datetime=2006-01-02"`
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.LastName = core.CleanString(ns.LastName)
	ns.FirstName = core.CleanString(ns.FirstName)
	ns.ClassID = core.CleanString(ns.ClassID)
	ns.BirthDate = cleanDate(ns.BirthDate)
	return validate.Struct(ns)
}

// UpdateStudent defines what information may be provided to modify an existing Student.
// Blank fields keep their current value; an empty date_naissance clears the birth date.
type UpdateStudent struct {
	LastName  string  `json:"nom"`
	FirstName string  `json:"prenom"`
	ClassID   string  `json:"classe_id"`
	BirthDate *string `json:"date_naissance" validate:"omitempty,datetime=2006-01-02"`
}

func (us *UpdateStudent) Validate(orig Student, validate *validator.Validate) error {
	us.LastName = orDefault(us.LastName, orig.LastName)
	us.FirstName = orDefault(us.FirstName, orig.FirstName)
	us.ClassID = orDefault(us.ClassID, orig.ClassID)
	if us.BirthDate == nil {
		us.BirthDate = orig.BirthDate
	} else {
		us.BirthDate = cleanDate(us.BirthDate)
	}
	return validate.Struct(us)
}

type QueryFilter struct {
	ClassID string `query:"classe_id"`
}

func (qf *QueryFilter) Clean() {
	qf.ClassID = core.CleanString(qf.ClassID)
}

func cleanDate(d *string) *string {
	if d == nil {
		return nil
	}
	if s := core.CleanString(*d); s != "" {
		return &s
	}
	return nil
}

func orDefault(s, def string) string {
	if s = core.CleanString(s); s != "" {
		return s
	}
	return def
}
