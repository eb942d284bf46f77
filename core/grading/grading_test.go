package grading

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/carnet/core"
)

func newTestEngine(t *testing.T) *Engine {
	e, err := NewEngine(DefaultThresholds)
	require.NoError(t, err)
	return e
}

// scoresFor returns valid scores adding up to total (0 <= total <= 170).
func scoresFor(total float64) Scores {
	var s Scores
	s.TextStudy = math.Min(total, MaxTextStudy)
	total -= s.TextStudy
	s.AEM = math.Min(total, MaxAEM)
	total -= s.AEM
	s.Math = math.Min(total, MaxMath)
	total -= s.Math
	s.Dictation = total
	return s
}

func TestValidateScores(t *testing.T) {
	tests := []struct {
		name       string
		scores     Scores
		wantFields []string
	}{
		{name: "all zero", scores: Scores{}},
		{name: "all max", scores: Scores{TextStudy: 50, AEM: 50, Dictation: 20, Math: 50}},
		{name: "decimals", scores: Scores{TextStudy: 12.5, AEM: 33.25, Dictation: 19.75, Math: 0.5}},
		{name: "negative", scores: Scores{TextStudy: -1}, wantFields: []string{"etude_texte"}},
		{name: "dictee above max", scores: Scores{Dictation: 20.5}, wantFields: []string{"dictee"}},
		{name: "aem above max", scores: Scores{AEM: 51}, wantFields: []string{"aem"}},
		{name: "NaN", scores: Scores{Math: math.NaN()}, wantFields: []string{"math"}},
		{name: "Inf", scores: Scores{Math: math.Inf(1)}, wantFields: []string{"math"}},
		{
			name:       "several fields",
			scores:     Scores{TextStudy: 60, AEM: -2, Dictation: 21, Math: 50},
			wantFields: []string{"etude_texte", "aem", "dictee"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateScores(tt.scores)
			if tt.wantFields == nil {
				assert.NoError(t, err)
				return
			}
			var vErr *core.ValidationError
			require.ErrorAs(t, err, &vErr)
			fields := make([]string, 0, len(vErr.Fields))
			for _, f := range vErr.Fields {
				fields = append(fields, f.Field)
				assert.NotEmpty(t, f.Error)
			}
			assert.Equal(t, tt.wantFields, fields)
		})
	}
}

func TestAggregateScores(t *testing.T) {
	agg, err := AggregateScores(Scores{TextStudy: 45, AEM: 40, Dictation: 15, Math: 42})
	require.NoError(t, err)
	assert.Equal(t, 142.0, agg.DisplayTotal())
	assert.Equal(t, 8.35, agg.DisplayAverage())
	assert.InDelta(t, 142.0/17, agg.Average, 1e-12)

	_, err = AggregateScores(Scores{Dictation: 25})
	assert.True(t, core.IsValidationError(err))

	// binary noise does not leak into totals
	agg, err = AggregateScores(Scores{TextStudy: 0.1, AEM: 0.2})
	require.NoError(t, err)
	assert.Equal(t, 0.3, agg.Total)
}

func TestAggregateScores_Bounds(t *testing.T) {
	for total := 0.0; total <= MaxTotal; total += 0.25 {
		agg, err := AggregateScores(scoresFor(total))
		require.NoError(t, err)
		assert.InDelta(t, total, agg.Total, 1e-9)
		assert.InDelta(t, agg.Total/17, agg.Average, 1e-12)
		assert.GreaterOrEqual(t, agg.Average, 0.0)
		assert.LessOrEqual(t, agg.Average, 10.0)
	}
}

func TestThresholds_Band(t *testing.T) {
	th := DefaultThresholds
	tests := []struct {
		avg  float64
		want Band
	}{
		{avg: 10, want: BandA},
		{avg: 8.5, want: BandA},
		{avg: 8.49, want: BandB},
		{avg: 7, want: BandB},
		{avg: 6.99, want: BandC},
		{avg: 5, want: BandC},
		{avg: 4.99, want: BandD},
		{avg: 0, want: BandD},
	}
	for _, tt := range tests {
		if got := th.Band(tt.avg); got != tt.want {
			t.Errorf("Band(%v) = %v; want %v", tt.avg, got, tt.want)
		}
	}
}

func TestNewEngine_InvalidThresholds(t *testing.T) {
	tests := []struct {
		name string
		th   Thresholds
	}{
		{name: "not descending", th: Thresholds{A: 5, B: 7, C: 3, PassMark: 5}},
		{name: "above scale", th: Thresholds{A: 12, B: 7, C: 5, PassMark: 5}},
		{name: "negative pass mark", th: Thresholds{A: 8.5, B: 7, C: 5, PassMark: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEngine(tt.th)
			assert.Error(t, err)
		})
	}
}

func TestEngine_Rank(t *testing.T) {
	e := newTestEngine(t)

	avg := func(a float64) Scores { return scoresFor(a * AverageDivisor) }
	roster := []string{"s1", "s2", "s3", "s4", "s5"}
	records := []Record{
		{ID: "r4", StudentID: "s4", Scores: avg(6)},
		{ID: "r2", StudentID: "s2", Scores: avg(7)},
		{ID: "r1", StudentID: "s1", Scores: avg(7)},
		{ID: "r3", StudentID: "s3", Scores: avg(9)},
		{ID: "rx", StudentID: "unknown", Scores: avg(10)}, // not enrolled
	}

	ranked, err := e.Rank(roster, records)
	require.NoError(t, err)
	require.Len(t, ranked, 4)

	got := make([][2]interface{}, 0, len(ranked))
	for _, r := range ranked {
		got = append(got, [2]interface{}{r.StudentID, r.Rank})
	}
	want := [][2]interface{}{{"s3", 1}, {"s1", 2}, {"s2", 2}, {"s4", 4}}
	assert.Equal(t, want, got)

	assert.Equal(t, BandA, ranked[0].Observation)
	assert.Equal(t, BandB, ranked[1].Observation)
	assert.Equal(t, BandC, ranked[3].Observation)
	assert.Equal(t, "r3", ranked[0].RecordID)

	// deterministic
	again, err := e.Rank(roster, records)
	require.NoError(t, err)
	assert.Equal(t, ranked, again)
}

func TestEngine_Rank_ThreeWayTie(t *testing.T) {
	e := newTestEngine(t)

	roster := []string{"a", "b", "c", "d", "e"}
	records := []Record{
		{ID: "1", StudentID: "a", Scores: scoresFor(150)},
		{ID: "2", StudentID: "b", Scores: scoresFor(120)},
		{ID: "3", StudentID: "c", Scores: scoresFor(120)},
		{ID: "4", StudentID: "d", Scores: scoresFor(120)},
		{ID: "5", StudentID: "e", Scores: scoresFor(100)},
	}
	ranked, err := e.Rank(roster, records)
	require.NoError(t, err)

	ranks := make([]int, 0, len(ranked))
	for _, r := range ranked {
		ranks = append(ranks, r.Rank)
	}
	assert.Equal(t, []int{1, 2, 2, 2, 5}, ranks)
}

func TestEngine_Rank_Edges(t *testing.T) {
	e := newTestEngine(t)

	ranked, err := e.Rank(nil, nil)
	require.NoError(t, err)
	assert.NotNil(t, ranked)
	assert.Empty(t, ranked)

	_, err = e.Rank([]string{"a"}, []Record{
		{ID: "1", StudentID: "a", Scores: scoresFor(10)},
		{ID: "2", StudentID: "a", Scores: scoresFor(20)},
	})
	assert.True(t, core.IsValidationError(err), "duplicate record")

	_, err = e.Rank([]string{"a"}, []Record{{ID: "1", StudentID: "a", Scores: Scores{Math: 99}}})
	assert.True(t, core.IsValidationError(err), "invalid scores")
}

func TestEngine_Statistics(t *testing.T) {
	e := newTestEngine(t)

	t.Run("empty class", func(t *testing.T) {
		ranked, err := e.Rank(nil, nil)
		require.NoError(t, err)
		assert.Equal(t, Statistics{}, e.Statistics(0, ranked))
	})

	t.Run("absents and pass rate", func(t *testing.T) {
		roster := []string{"a", "b", "c", "d", "e", "f"}
		records := []Record{
			{ID: "1", StudentID: "a", Scores: scoresFor(5 * AverageDivisor)}, // exactly the pass mark
			{ID: "2", StudentID: "b", Scores: scoresFor(84)},                 // 4.94
			{ID: "3", StudentID: "c", Scores: scoresFor(150)},
		}
		ranked, err := e.Rank(roster, records)
		require.NoError(t, err)

		st := e.Statistics(len(roster), ranked)
		assert.Equal(t, Statistics{Enrolled: 6, Present: 3, Absent: 3, Passed: 2, PassRate: 66.7}, st)
		assert.Equal(t, st.Enrolled, st.Present+st.Absent)
		assert.Equal(t, st.Present, st.Passed+(st.Present-st.Passed))
	})

	t.Run("pass rate keeps one decimal", func(t *testing.T) {
		tests := []struct {
			totals []float64
			want   float64
		}{
			{totals: []float64{100, 50, 40}, want: 33.3},
			{totals: []float64{100, 90, 40}, want: 66.7},
			{totals: []float64{100, 90, 85, 40, 20, 10, 0}, want: 42.9},
		}
		for _, tt := range tests {
			roster := make([]string, len(tt.totals))
			records := make([]Record, len(tt.totals))
			for i, total := range tt.totals {
				roster[i] = fmt.Sprintf("s%d", i)
				records[i] = Record{ID: fmt.Sprintf("r%d", i), StudentID: roster[i], Scores: scoresFor(total)}
			}
			ranked, err := e.Rank(roster, records)
			require.NoError(t, err)
			assert.Equal(t, tt.want, e.Statistics(len(roster), ranked).PassRate, "totals %v", tt.totals)
		}
	})

	t.Run("nobody present", func(t *testing.T) {
		st := e.Statistics(12, []Ranked{})
		assert.Equal(t, Statistics{Enrolled: 12, Absent: 12}, st)
	})
}

func TestEngine_Track(t *testing.T) {
	e := newTestEngine(t)
	roster := []string{"a", "b", "c"}

	// 8 compositions, handed over out of order
	var results []CompositionResult
	for n := 8; n >= 1; n-- {
		var records []Record
		// "a" sits every composition with an average of n
		records = append(records, Record{ID: "a", StudentID: "a", Scores: scoresFor(float64(n) * AverageDivisor)})
		// "b" is absent for compositions 2, 4 and 6
		if n != 2 && n != 4 && n != 6 {
			records = append(records, Record{ID: "b", StudentID: "b", Scores: scoresFor(float64(n) * AverageDivisor)})
		}
		ranked, err := e.Rank(roster, records)
		require.NoError(t, err)
		results = append(results, CompositionResult{CompositionID: string(rune('0' + n)), Number: n, Ranked: ranked})
	}

	entries := e.Track(roster, results)
	require.Len(t, entries, 3)

	a, b, c := entries[0], entries[1], entries[2]
	assert.Equal(t, "a", a.StudentID)
	require.Len(t, a.Slots, 8)
	for i, slot := range a.Slots {
		require.NotNil(t, slot)
		assert.InDelta(t, float64(i+1), slot.Average, 1e-9, "slots follow sequence numbers")
	}
	require.NotNil(t, a.YearAverage)
	assert.Equal(t, 4.5, *a.YearAverage)

	// absent 3 of 8: mean over exactly 5 values (1+3+5+7+8)/5
	var available int
	for _, slot := range b.Slots {
		if slot != nil {
			available++
		}
	}
	assert.Equal(t, 5, available)
	assert.Nil(t, b.Slots[1])
	require.NotNil(t, b.YearAverage)
	assert.Equal(t, 4.8, *b.YearAverage)

	// never present: placeholder, not zero
	assert.Nil(t, c.YearAverage)
	for _, slot := range c.Slots {
		assert.Nil(t, slot)
	}
}

func TestEngine_Track_NoCompositions(t *testing.T) {
	e := newTestEngine(t)
	entries := e.Track([]string{"a"}, nil)
	require.Len(t, entries, 1)
	assert.Empty(t, entries[0].Slots)
	assert.Nil(t, entries[0].YearAverage)
}
