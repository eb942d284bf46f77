package report

import (
	"github.com/trezcool/carnet/core/class"
	"github.com/trezcool/carnet/core/composition"
	"github.com/trezcool/carnet/core/grading"
	"github.com/trezcool/carnet/core/score"
	"github.com/trezcool/carnet/core/student"
)

// Row is a score record enriched with its derived values.
// Rank is 0 (omitted) when the student is no longer enrolled in the composition's class.
type Row struct {
	score.Score
	Total       float64          `json:"total"`
	Average     float64          `json:"moyenne"`
	Rank        int              `json:"rang,omitempty"`
	Observation grading.Band     `json:"observation"`
	Student     *student.Student `json:"eleve,omitempty"`
}

func newRow(sc score.Score, agg grading.Aggregate, rank int, band grading.Band, std *student.Student) Row {
	return Row{
		Score:       sc,
		Total:       agg.DisplayTotal(),
		Average:     agg.DisplayAverage(),
		Rank:        rank,
		Observation: band,
		Student:     std,
	}
}

// Preview holds the derived values of scores that were not saved.
type Preview struct {
	Total       float64      `json:"total"`
	Average     float64      `json:"moyenne"`
	Observation grading.Band `json:"observation"`
}

// ExamResults is the ranking and the statistics of one composition.
type ExamResults struct {
	Composition composition.Composition `json:"composition"`
	Ranked      []Row                   `json:"classement"`
	Statistics  grading.Statistics      `json:"statistiques"`
}

// TrackingRow is one student's line of the yearly matrix.
// Results holds one slot per composition; a nil slot means the student was absent.
type TrackingRow struct {
	Student     student.Student `json:"eleve"`
	Results     []*Row          `json:"notes"`
	YearAverage *float64        `json:"moyenne_generale"`
}

// TrackingMatrix is the yearly tracking of a class, compositions in ascending number order.
type TrackingMatrix struct {
	Class        class.Class               `json:"classe"`
	Compositions []composition.Composition `json:"compositions"`
	Entries      []TrackingRow             `json:"suivi"`
}

// StudentTracking is the yearly tracking of a single student.
type StudentTracking struct {
	Class        class.Class               `json:"classe"`
	Compositions []composition.Composition `json:"compositions"`
	Entry        TrackingRow               `json:"suivi"`
}
