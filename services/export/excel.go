// Package exportsvc renders the report sheets as xlsx workbooks.
package exportsvc

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/carnet/core/class"
	"github.com/trezcool/carnet/core/grading"
	"github.com/trezcool/carnet/core/report"
)

const (
	ExamSheetName     = "Résultats"
	TrackingSheetName = "Suivi"

	// Placeholder printed for absences and undefined averages.
	Placeholder = "-"

	headerRows = 4 // rows before the table header
)

var examColumns = []string{
	"Rang", "Nom", "Prénom",
	fmt.Sprintf("Étude de texte /%g", grading.MaxTextStudy),
	fmt.Sprintf("AEM /%g", grading.MaxAEM),
	fmt.Sprintf("Dictée /%g", grading.MaxDictation),
	fmt.Sprintf("Math /%g", grading.MaxMath),
	fmt.Sprintf("Total /%g", grading.MaxTotal),
	"Moyenne /10", "Observation",
}

// ExamFilename is the download name of a per-exam sheet.
func ExamFilename(res report.ExamResults) string {
	return fmt.Sprintf("resultats-composition-%d.xlsx", res.Composition.Number)
}

// TrackingFilename is the download name of a yearly tracking sheet.
func TrackingFilename(m report.TrackingMatrix) string {
	return fmt.Sprintf("suivi-%s-%s.xlsx", m.Class.Level, m.Class.SchoolYear)
}

// WriteExamSheet writes the per-exam report sheet: ranking table then statistics.
func WriteExamSheet(w io.Writer, cls class.Class, res report.ExamResults) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	if err := f.SetSheetName(f.GetSheetName(0), ExamSheetName); err != nil {
		return errors.Wrap(err, "naming sheet")
	}
	sw, err := f.NewStreamWriter(ExamSheetName)
	if err != nil {
		return errors.Wrap(err, "opening stream writer")
	}

	comp := res.Composition
	rows := [][]interface{}{
		{cls.School},
		{fmt.Sprintf("Classe: %s", cls.Level), fmt.Sprintf("Année scolaire: %s", cls.SchoolYear)},
		{fmt.Sprintf("Enseignant: %s", cls.Teacher)},
		{fmt.Sprintf("Composition n°%d: %s", comp.Number, comp.Title), fmt.Sprintf("%s (%s)", comp.Date, comp.Month)},
		toRow(examColumns),
	}
	for _, r := range res.Ranked {
		var lastName, firstName string
		if r.Student != nil {
			lastName, firstName = r.Student.LastName, r.Student.FirstName
		}
		rows = append(rows, []interface{}{
			rankLabel(r.Rank), lastName, firstName,
			r.TextStudy, r.AEM, r.Dictation, r.Math,
			r.Total, r.Average, string(r.Observation),
		})
	}

	st := res.Statistics
	rows = append(rows,
		nil,
		[]interface{}{"Effectif", st.Enrolled},
		[]interface{}{"Présents", st.Present},
		[]interface{}{"Absents", st.Absent},
		[]interface{}{"Admis", st.Passed},
		[]interface{}{"Pourcentage de réussite", fmt.Sprintf("%.1f %%", st.PassRate)},
	)

	if err = writeRows(sw, rows); err != nil {
		return err
	}
	return errors.Wrap(f.Write(w), "writing workbook")
}

// WriteTrackingSheet writes the yearly tracking sheet: one line per student, an average and a rank
// column per composition, then the yearly average.
func WriteTrackingSheet(w io.Writer, m report.TrackingMatrix) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	if err := f.SetSheetName(f.GetSheetName(0), TrackingSheetName); err != nil {
		return errors.Wrap(err, "naming sheet")
	}
	sw, err := f.NewStreamWriter(TrackingSheetName)
	if err != nil {
		return errors.Wrap(err, "opening stream writer")
	}

	header := []interface{}{"N°", "Nom", "Prénom"}
	for _, comp := range m.Compositions {
		header = append(header, fmt.Sprintf("%s Moy.", comp.Month), fmt.Sprintf("%s Rang", comp.Month))
	}
	header = append(header, "Moyenne générale")

	rows := [][]interface{}{
		{m.Class.School},
		{fmt.Sprintf("Classe: %s", m.Class.Level), fmt.Sprintf("Année scolaire: %s", m.Class.SchoolYear)},
		{fmt.Sprintf("Enseignant: %s", m.Class.Teacher)},
		{"Suivi annuel"},
		header,
	}
	for i, entry := range m.Entries {
		row := []interface{}{i + 1, entry.Student.LastName, entry.Student.FirstName}
		for _, slot := range entry.Results {
			if slot == nil {
				row = append(row, Placeholder, Placeholder)
				continue
			}
			row = append(row, slot.Average, rankLabel(slot.Rank))
		}
		if entry.YearAverage != nil {
			row = append(row, *entry.YearAverage)
		} else {
			row = append(row, Placeholder)
		}
		rows = append(rows, row)
	}

	if err = writeRows(sw, rows); err != nil {
		return err
	}
	return errors.Wrap(f.Write(w), "writing workbook")
}

func writeRows(sw *excelize.StreamWriter, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err = sw.SetRow(cell, row); err != nil {
			return errors.Wrapf(err, "writing row %d", i+1)
		}
	}
	return errors.Wrap(sw.Flush(), "flushing rows")
}

// rankLabel prints a competition rank the way report cards do: 1er, 2e, 3e...
func rankLabel(rank int) string {
	switch rank {
	case 0:
		return Placeholder
	case 1:
		return "1er"
	default:
		return fmt.Sprintf("%de", rank)
	}
}

func toRow(vals []string) []interface{} {
	row := make([]interface{}, len(vals))
	for i, v := range vals {
		row[i] = v
	}
	return row
}
