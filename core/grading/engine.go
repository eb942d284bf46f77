package grading

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/trezcool/carnet/core"
)

// Band is the qualitative observation derived from an average.
type Band string

const (
	BandA Band = "A"
	BandB Band = "B"
	BandC Band = "C"
	BandD Band = "D"
)

// Thresholds holds the band cut points and the pass mark on the /10 scale.
// A: avg >= A; B: B <= avg < A; C: C <= avg < B; D: avg < C.
type Thresholds struct {
	A        float64
	B        float64
	C        float64
	PassMark float64
}

// DefaultThresholds are the cut points used by the school.
var DefaultThresholds = Thresholds{A: 8.5, B: 7, C: 5, PassMark: 5}

// ThresholdsFromConfig reads the thresholds of the grading config.
func ThresholdsFromConfig(conf core.GradingConfig) Thresholds {
	return Thresholds{A: conf.BandA, B: conf.BandB, C: conf.BandC, PassMark: conf.PassMark}
}

func (t Thresholds) validate() error {
	if !(t.A >= t.B && t.B >= t.C) {
		return errors.Errorf("grading: band thresholds must be descending (A=%g, B=%g, C=%g)", t.A, t.B, t.C)
	}
	if t.C < 0 || t.A > 10 || t.PassMark < 0 || t.PassMark > 10 {
		return errors.New("grading: thresholds must lie on the /10 scale")
	}
	return nil
}

// Band returns the observation band of a full precision average.
func (t Thresholds) Band(avg float64) Band {
	switch {
	case avg >= t.A:
		return BandA
	case avg >= t.B:
		return BandB
	case avg >= t.C:
		return BandC
	default:
		return BandD
	}
}

// Passed reports whether avg meets the pass mark.
func (t Thresholds) Passed(avg float64) bool {
	return avg >= t.PassMark
}

// Engine ranks compositions and builds statistics with a fixed set of thresholds.
type Engine struct {
	thresholds Thresholds
}

func NewEngine(t Thresholds) (*Engine, error) {
	if err := t.validate(); err != nil {
		return nil, err
	}
	return &Engine{thresholds: t}, nil
}

func (e *Engine) Thresholds() Thresholds { return e.thresholds }

// Record is one score record of a composition.
type Record struct {
	ID        string
	StudentID string
	Scores    Scores
}

// Ranked is a derived result: a record with its aggregate, rank and band.
type Ranked struct {
	RecordID  string
	StudentID string
	Scores    Scores
	Aggregate
	Rank        int
	Observation Band
}

// Rank orders the records of one composition by average (highest first) and assigns standard
// competition ranks: equal averages share a rank and the next rank skips the tied count.
// roster lists the enrolled student IDs in enrollment order; it breaks ties within a rank group.
// Records of students missing from the roster are left out.
func (e *Engine) Rank(roster []string, records []Record) ([]Ranked, error) {
	enrollment := make(map[string]int, len(roster))
	for i, id := range roster {
		if _, ok := enrollment[id]; !ok {
			enrollment[id] = i
		}
	}

	ranked := make([]Ranked, 0, len(records))
	seen := make(map[string]bool, len(records))
	for _, rec := range records {
		if _, enrolled := enrollment[rec.StudentID]; !enrolled {
			continue
		}
		if seen[rec.StudentID] {
			return nil, core.NewValidationError(
				errors.Errorf("duplicate score record for student %s", rec.StudentID),
				core.FieldError{Field: "eleve_id", Error: "une note existe déjà pour cet élève et cette composition"},
			)
		}
		seen[rec.StudentID] = true

		agg, err := AggregateScores(rec.Scores)
		if err != nil {
			return nil, errors.Wrapf(err, "aggregating record %s", rec.ID)
		}
		ranked = append(ranked, Ranked{
			RecordID:    rec.ID,
			StudentID:   rec.StudentID,
			Scores:      rec.Scores,
			Aggregate:   agg,
			Observation: e.thresholds.Band(agg.Average),
		})
	}

	// totals are snapped, so comparing them is the same as comparing full precision averages
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Total != ranked[j].Total {
			return ranked[i].Total > ranked[j].Total
		}
		return enrollment[ranked[i].StudentID] < enrollment[ranked[j].StudentID]
	})
	for i := range ranked {
		if i > 0 && ranked[i].Total == ranked[i-1].Total {
			ranked[i].Rank = ranked[i-1].Rank
		} else {
			ranked[i].Rank = i + 1
		}
	}
	return ranked, nil
}

// Statistics summarises one composition of a class.
type Statistics struct {
	Enrolled int     `json:"effectif"`
	Present  int     `json:"presents"`
	Absent   int     `json:"absents"`
	Passed   int     `json:"admis"`
	PassRate float64 `json:"pourcentage_reussite"`
}

// Statistics derives the class-wide counts of a ranked composition.
// enrolled is the class size; the pass rate is 0 when nobody sat the composition.
func (e *Engine) Statistics(enrolled int, ranked []Ranked) Statistics {
	st := Statistics{Enrolled: enrolled, Present: len(ranked)}
	st.Absent = st.Enrolled - st.Present
	if st.Absent < 0 {
		st.Absent = 0
	}
	for _, r := range ranked {
		if e.thresholds.Passed(r.Average) {
			st.Passed++
		}
	}
	if st.Present > 0 {
		st.PassRate = core.Round1(100 * float64(st.Passed) / float64(st.Present))
	}
	return st
}

// CompositionResult is the ranked output of one composition, fed to Track.
type CompositionResult struct {
	CompositionID string
	Number        int
	Ranked        []Ranked
}

// TrackingEntry is one student's row of the yearly matrix.
// A nil slot means the student was absent; YearAverage is nil when every slot is nil.
type TrackingEntry struct {
	StudentID   string
	Slots       []*Ranked
	YearAverage *float64
}

// Track builds the yearly tracking matrix: one entry per enrolled student (roster order) and one
// slot per composition in ascending sequence number order. The yearly average is the mean of the
// available full precision averages, rounded to two decimals; absences are never counted as zero.
func (e *Engine) Track(roster []string, results []CompositionResult) []TrackingEntry {
	ordered := make([]CompositionResult, len(results))
	copy(ordered, results)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Number < ordered[j].Number })

	byComposition := make([]map[string]*Ranked, len(ordered))
	for i, res := range ordered {
		idx := make(map[string]*Ranked, len(res.Ranked))
		for j := range res.Ranked {
			idx[res.Ranked[j].StudentID] = &res.Ranked[j]
		}
		byComposition[i] = idx
	}

	entries := make([]TrackingEntry, 0, len(roster))
	for _, studentID := range roster {
		entry := TrackingEntry{StudentID: studentID, Slots: make([]*Ranked, len(ordered))}
		var sum float64
		var n int
		for i := range ordered {
			if r, ok := byComposition[i][studentID]; ok {
				entry.Slots[i] = r
				sum += r.Average
				n++
			}
		}
		if n > 0 {
			avg := core.Round2(sum / float64(n))
			entry.YearAverage = &avg
		}
		entries = append(entries, entry)
	}
	return entries
}
