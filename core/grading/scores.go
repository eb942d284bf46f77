// Package grading aggregates raw exam scores, ranks the students of a composition and derives
// class statistics and the yearly tracking matrix.
//
// Every function is pure: the same snapshot of roster and score records always yields the same
// output, which makes results safe to cache and to compute concurrently.
package grading

import (
	"fmt"
	"math"

	"github.com/trezcool/carnet/core"
)

// Subject maxima.
const (
	MaxTextStudy = 50.0
	MaxAEM       = 50.0
	MaxDictation = 20.0
	MaxMath      = 50.0
	MaxTotal     = MaxTextStudy + MaxAEM + MaxDictation + MaxMath // 170

	// AverageDivisor maps the combined total onto the /10 reporting scale (170 / 17 = 10).
	AverageDivisor = MaxTotal / 10
)

// Scores holds one student's four raw subject scores for one composition.
type Scores struct {
	TextStudy float64 `json:"etude_texte" bson:"etude_texte" db:"etude_texte"`
	AEM       float64 `json:"aem" bson:"aem" db:"aem"`
	Dictation float64 `json:"dictee" bson:"dictee" db:"dictee"`
	Math      float64 `json:"math" bson:"math" db:"math"`
}

type subject struct {
	field string
	value float64
	max   float64
}

func (s Scores) subjects() []subject {
	return []subject{
		{field: "etude_texte", value: s.TextStudy, max: MaxTextStudy},
		{field: "aem", value: s.AEM, max: MaxAEM},
		{field: "dictee", value: s.Dictation, max: MaxDictation},
		{field: "math", value: s.Math, max: MaxMath},
	}
}

// ValidateScores checks that every subject score lies within [0, max].
// Out of range values are reported per field, never clamped.
func ValidateScores(s Scores) error {
	var flds []core.FieldError
	for _, sub := range s.subjects() {
		switch {
		case math.IsNaN(sub.value) || math.IsInf(sub.value, 0):
			flds = append(flds, core.FieldError{Field: sub.field, Error: "la note doit être un nombre"})
		case sub.value < 0:
			flds = append(flds, core.FieldError{Field: sub.field, Error: "la note ne peut pas être négative"})
		case sub.value > sub.max:
			flds = append(flds, core.FieldError{
				Field: sub.field,
				Error: fmt.Sprintf("la note ne peut pas dépasser %g", sub.max),
			})
		}
	}
	if len(flds) > 0 {
		return core.NewValidationError(nil, flds...)
	}
	return nil
}

// Aggregate is the total and average of one score record.
// Average is kept at full precision; use the Display* helpers for reporting.
type Aggregate struct {
	Total   float64
	Average float64
}

// DisplayTotal is Total rounded to two decimals.
func (a Aggregate) DisplayTotal() float64 { return core.Round2(a.Total) }

// DisplayAverage is Average rounded to two decimals.
func (a Aggregate) DisplayAverage() float64 { return core.Round2(a.Average) }

// AggregateScores computes the total and the /10 average of valid scores.
func AggregateScores(s Scores) (Aggregate, error) {
	if err := ValidateScores(s); err != nil {
		return Aggregate{}, err
	}
	// snap off binary noise: equal totals must tie when ranking
	total := math.Round((s.TextStudy+s.AEM+s.Dictation+s.Math)*1e6) / 1e6
	return Aggregate{Total: total, Average: total / AverageDivisor}, nil
}
