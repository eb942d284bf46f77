package exportsvc

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/carnet/core/class"
	"github.com/trezcool/carnet/core/composition"
	"github.com/trezcool/carnet/core/grading"
	"github.com/trezcool/carnet/core/report"
	"github.com/trezcool/carnet/core/score"
	"github.com/trezcool/carnet/core/student"
)

var testClass = class.Class{ID: "c1", School: "EP Les Flamboyants", Level: "CM2", SchoolYear: "2023-2024", Teacher: "Mme Diallo"}

func readRows(t *testing.T, buf *bytes.Buffer, sheet string) [][]string {
	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	return rows
}

func TestWriteExamSheet(t *testing.T) {
	awa := student.Student{ID: "s1", LastName: "Ndiaye", FirstName: "Awa"}
	res := report.ExamResults{
		Composition: composition.Composition{ID: "k1", ClassID: "c1", Number: 3, Date: "2024-03-15", Title: "Composition du 2e trimestre", Month: "Mars"},
		Ranked: []report.Row{{
			Score:       score.Score{ID: "n1", StudentID: "s1", Scores: grading.Scores{TextStudy: 45, AEM: 40, Dictation: 15, Math: 42}},
			Total:       142,
			Average:     8.35,
			Rank:        1,
			Observation: grading.BandB,
			Student:     &awa,
		}},
		Statistics: grading.Statistics{Enrolled: 2, Present: 1, Absent: 1, Passed: 1, PassRate: 100},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteExamSheet(&buf, testClass, res))
	rows := readRows(t, &buf, ExamSheetName)

	require.GreaterOrEqual(t, len(rows), headerRows+2)
	assert.Equal(t, "EP Les Flamboyants", rows[0][0])
	assert.Equal(t, "Composition n°3: Composition du 2e trimestre", rows[3][0])
	assert.Equal(t, examColumns, rows[headerRows])
	assert.Equal(t, []string{"1er", "Ndiaye", "Awa", "45", "40", "15", "42", "142", "8.35", "B"}, rows[headerRows+1])

	last := rows[len(rows)-1]
	assert.Equal(t, []string{"Pourcentage de réussite", "100.00 %"}, last)
}

func TestWriteExamSheet_NoRecords(t *testing.T) {
	res := report.ExamResults{
		Composition: composition.Composition{ID: "k1", Number: 1},
		Ranked:      []report.Row{},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteExamSheet(&buf, testClass, res))
	rows := readRows(t, &buf, ExamSheetName)

	assert.Equal(t, examColumns, rows[headerRows])
	assert.Equal(t, []string{"Effectif", "0"}, rows[headerRows+2])
}

func TestWriteTrackingSheet(t *testing.T) {
	avg := 6.5
	m := report.TrackingMatrix{
		Class: testClass,
		Compositions: []composition.Composition{
			{ID: "k1", Number: 1, Month: "Octobre"},
			{ID: "k2", Number: 2, Month: "Novembre"},
		},
		Entries: []report.TrackingRow{
			{
				Student:     student.Student{ID: "s1", LastName: "Ndiaye", FirstName: "Awa"},
				Results:     []*report.Row{{Average: 6.5, Rank: 2}, nil},
				YearAverage: &avg,
			},
			{
				Student: student.Student{ID: "s2", LastName: "Sow", FirstName: "Moussa"},
				Results: []*report.Row{nil, nil},
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteTrackingSheet(&buf, m))
	rows := readRows(t, &buf, TrackingSheetName)

	require.Len(t, rows, headerRows+3)
	assert.Equal(t,
		[]string{"N°", "Nom", "Prénom", "Octobre Moy.", "Octobre Rang", "Novembre Moy.", "Novembre Rang", "Moyenne générale"},
		rows[headerRows],
	)
	assert.Equal(t, []string{"1", "Ndiaye", "Awa", "6.5", "2e", "-", "-", "6.5"}, rows[headerRows+1])
	assert.Equal(t, []string{"2", "Sow", "Moussa", "-", "-", "-", "-", "-"}, rows[headerRows+2])
}

func TestRankLabel(t *testing.T) {
	tests := map[int]string{0: "-", 1: "1er", 2: "2e", 5: "5e", 11: "11e"}
	for rank, want := range tests {
		assert.Equal(t, want, rankLabel(rank))
	}
}

func TestFilenames(t *testing.T) {
	assert.Equal(t, "resultats-composition-3.xlsx", ExamFilename(report.ExamResults{Composition: composition.Composition{Number: 3}}))
	assert.Equal(t, "suivi-CM2-2023-2024.xlsx", TrackingFilename(report.TrackingMatrix{Class: testClass}))
}
