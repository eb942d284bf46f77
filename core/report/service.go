// Package report serves the computed views of the grade book: the ranked results and statistics
// of a composition and the yearly tracking matrix of a class.
package report

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"

	"github.com/pkg/errors"

	"github.com/trezcool/carnet/core"
	"github.com/trezcool/carnet/core/class"
	"github.com/trezcool/carnet/core/composition"
	"github.com/trezcool/carnet/core/grading"
	"github.com/trezcool/carnet/core/score"
	"github.com/trezcool/carnet/core/student"
)

type Service struct {
	classes      class.Repository
	students     student.Repository
	compositions composition.Repository
	scores       score.Repository
	engine       *grading.Engine
	cache        core.Cache
	logger       core.Logger
}

// NewService returns a report Service. cache may be nil to disable result caching.
func NewService(
	classRepo class.Repository,
	studentRepo student.Repository,
	compRepo composition.Repository,
	scoreRepo score.Repository,
	engine *grading.Engine,
	cache core.Cache,
	logger core.Logger,
) *Service {
	return &Service{
		classes:      classRepo,
		students:     studentRepo,
		compositions: compRepo,
		scores:       scoreRepo,
		engine:       engine,
		cache:        cache,
		logger:       logger,
	}
}

// Preview validates scores and returns the values they would be given, rank aside.
func (svc *Service) Preview(s grading.Scores) (Preview, error) {
	agg, err := grading.AggregateScores(s)
	if err != nil {
		return Preview{}, err
	}
	return Preview{
		Total:       agg.DisplayTotal(),
		Average:     agg.DisplayAverage(),
		Observation: svc.engine.Thresholds().Band(agg.Average),
	}, nil
}

// ExamResults ranks the students of a composition and derives its statistics.
func (svc *Service) ExamResults(ctx context.Context, compositionID string) (ExamResults, error) {
	comp, err := svc.compositions.GetCompositionByID(ctx, compositionID)
	if err != nil {
		return ExamResults{}, composition.NotFound(compositionID, err)
	}
	roster, err := svc.roster(ctx, comp.ClassID)
	if err != nil {
		return ExamResults{}, err
	}
	scores, err := svc.scores.QueryScores(ctx, score.QueryFilter{CompositionID: comp.ID})
	if err != nil {
		return ExamResults{}, errors.Wrap(err, "querying score records")
	}

	key := svc.resultsKey(comp, roster, scores)
	var res ExamResults
	if svc.cacheGet(ctx, key, &res) {
		return res, nil
	}

	ranked, err := svc.rank(roster, scores, true)
	if err != nil {
		return ExamResults{}, errors.Wrapf(err, "ranking composition %s", comp.ID)
	}
	res = ExamResults{
		Composition: comp,
		Ranked:      ranked.rows,
		Statistics:  svc.engine.Statistics(len(roster), ranked.results),
	}
	svc.cacheSet(ctx, key, res)
	return res, nil
}

// Statistics returns the class statistics of a composition.
func (svc *Service) Statistics(ctx context.Context, compositionID string) (grading.Statistics, error) {
	res, err := svc.ExamResults(ctx, compositionID)
	if err != nil {
		return grading.Statistics{}, err
	}
	return res.Statistics, nil
}

// TrackingMatrix builds the yearly tracking of every student enrolled in a class.
func (svc *Service) TrackingMatrix(ctx context.Context, classID string) (TrackingMatrix, error) {
	cls, err := svc.classes.GetClassByID(ctx, classID)
	if err != nil {
		return TrackingMatrix{}, class.NotFound(classID, err)
	}
	roster, err := svc.roster(ctx, classID)
	if err != nil {
		return TrackingMatrix{}, err
	}
	comps, entries, err := svc.track(ctx, classID, roster)
	if err != nil {
		return TrackingMatrix{}, err
	}
	return TrackingMatrix{Class: cls, Compositions: comps, Entries: entries}, nil
}

// StudentTracking builds the yearly tracking of one student of a class.
func (svc *Service) StudentTracking(ctx context.Context, classID, studentID string) (StudentTracking, error) {
	cls, err := svc.classes.GetClassByID(ctx, classID)
	if err != nil {
		return StudentTracking{}, class.NotFound(classID, err)
	}
	std, err := svc.students.GetStudentByID(ctx, studentID)
	if err != nil {
		return StudentTracking{}, student.NotFound(studentID, err)
	}
	if std.ClassID != cls.ID {
		return StudentTracking{}, core.NewNotFoundError("eleve", studentID, "Élève non trouvé dans cette classe")
	}

	roster, err := svc.roster(ctx, classID)
	if err != nil {
		return StudentTracking{}, err
	}
	comps, entries, err := svc.track(ctx, classID, roster)
	if err != nil {
		return StudentTracking{}, err
	}
	for _, entry := range entries {
		if entry.Student.ID == studentID {
			return StudentTracking{Class: cls, Compositions: comps, Entry: entry}, nil
		}
	}
	return StudentTracking{}, core.NewNotFoundError("eleve", studentID, "Élève non trouvé dans cette classe")
}

// StudentResults returns every score record of a student, each ranked within its own composition.
func (svc *Service) StudentResults(ctx context.Context, studentID string) ([]Row, error) {
	if _, err := svc.students.GetStudentByID(ctx, studentID); err != nil {
		return nil, student.NotFound(studentID, err)
	}
	scores, err := svc.scores.QueryScores(ctx, score.QueryFilter{StudentID: studentID})
	if err != nil {
		return nil, errors.Wrap(err, "querying score records")
	}
	return svc.Rows(ctx, scores)
}

// Rows enriches score records with their derived values, ranking each record within its composition.
// The order of scores is kept.
func (svc *Service) Rows(ctx context.Context, scores []score.Score) ([]Row, error) {
	byID := make(map[string]Row)
	done := make(map[string]bool)
	for _, sc := range scores {
		if done[sc.CompositionID] {
			continue
		}
		done[sc.CompositionID] = true

		res, err := svc.ExamResults(ctx, sc.CompositionID)
		if err != nil {
			return nil, err
		}
		for _, row := range res.Ranked {
			byID[row.ID] = row
		}
	}

	rows := make([]Row, 0, len(scores))
	for _, sc := range scores {
		if row, ok := byID[sc.ID]; ok {
			rows = append(rows, row)
			continue
		}
		// no longer enrolled in the composition's class: derived values without a rank
		agg, err := grading.AggregateScores(sc.Scores)
		if err != nil {
			return nil, errors.Wrapf(err, "aggregating score record %s", sc.ID)
		}
		rows = append(rows, newRow(sc, agg, 0, svc.engine.Thresholds().Band(agg.Average), nil))
	}
	return rows, nil
}

// Row returns the derived values of a single score record.
func (svc *Service) Row(ctx context.Context, sc score.Score) (Row, error) {
	rows, err := svc.Rows(ctx, []score.Score{sc})
	if err != nil {
		return Row{}, err
	}
	return rows[0], nil
}

func (svc *Service) roster(ctx context.Context, classID string) ([]student.Student, error) {
	students, err := svc.students.QueryStudents(ctx, student.QueryFilter{ClassID: classID})
	return students, errors.Wrap(err, "querying students")
}

type rankedSet struct {
	results []grading.Ranked
	rows    []Row
}

func (svc *Service) rank(roster []student.Student, scores []score.Score, withStudent bool) (rankedSet, error) {
	ids := make([]string, len(roster))
	students := make(map[string]*student.Student, len(roster))
	for i := range roster {
		ids[i] = roster[i].ID
		students[roster[i].ID] = &roster[i]
	}
	records := make([]grading.Record, len(scores))
	byID := make(map[string]score.Score, len(scores))
	for i, sc := range scores {
		records[i] = sc.Record()
		byID[sc.ID] = sc
	}

	results, err := svc.engine.Rank(ids, records)
	if err != nil {
		return rankedSet{}, err
	}
	rows := make([]Row, len(results))
	for i, r := range results {
		var std *student.Student
		if withStudent {
			std = students[r.StudentID]
		}
		rows[i] = newRow(byID[r.RecordID], r.Aggregate, r.Rank, r.Observation, std)
	}
	return rankedSet{results: results, rows: rows}, nil
}

func (svc *Service) track(
	ctx context.Context,
	classID string,
	roster []student.Student,
) ([]composition.Composition, []TrackingRow, error) {
	comps, err := svc.compositions.QueryCompositions(ctx, composition.QueryFilter{ClassID: classID})
	if err != nil {
		return nil, nil, errors.Wrap(err, "querying compositions")
	}
	sort.SliceStable(comps, func(i, j int) bool { return comps[i].Number < comps[j].Number })

	var scores []score.Score
	if len(comps) > 0 {
		compIDs := make([]string, len(comps))
		for i, comp := range comps {
			compIDs[i] = comp.ID
		}
		scores, err = svc.scores.QueryScores(ctx, score.QueryFilter{CompositionIDs: compIDs})
		if err != nil {
			return nil, nil, errors.Wrap(err, "querying score records")
		}
	}
	byComposition := make(map[string][]score.Score, len(comps))
	for _, sc := range scores {
		byComposition[sc.CompositionID] = append(byComposition[sc.CompositionID], sc)
	}

	results := make([]grading.CompositionResult, len(comps))
	rows := make(map[string]Row) // by record ID
	for i, comp := range comps {
		ranked, err := svc.rank(roster, byComposition[comp.ID], false)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "ranking composition %s", comp.ID)
		}
		results[i] = grading.CompositionResult{CompositionID: comp.ID, Number: comp.Number, Ranked: ranked.results}
		for _, row := range ranked.rows {
			rows[row.ID] = row
		}
	}

	ids := make([]string, len(roster))
	for i, std := range roster {
		ids[i] = std.ID
	}
	entries := svc.engine.Track(ids, results)

	tracking := make([]TrackingRow, len(entries))
	for i, entry := range entries {
		tr := TrackingRow{Student: roster[i], Results: make([]*Row, len(entry.Slots)), YearAverage: entry.YearAverage}
		for j, slot := range entry.Slots {
			if slot == nil {
				continue
			}
			row := rows[slot.RecordID]
			tr.Results[j] = &row
		}
		tracking[i] = tr
	}
	if comps == nil {
		comps = []composition.Composition{}
	}
	return comps, tracking, nil
}

// resultsKey identifies the inputs of a ranking: equal keys always yield equal results.
func (svc *Service) resultsKey(comp composition.Composition, roster []student.Student, scores []score.Score) string {
	h := sha256.New()
	_ = json.NewEncoder(h).Encode(struct {
		Thresholds  grading.Thresholds
		Composition composition.Composition
		Roster      []student.Student
		Scores      []score.Score
	}{svc.engine.Thresholds(), comp, roster, scores})
	return "resultats:" + comp.ID + ":" + hex.EncodeToString(h.Sum(nil))
}

func (svc *Service) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if svc.cache == nil {
		return false
	}
	found, err := svc.cache.Get(ctx, key, dest)
	if err != nil {
		svc.logger.Warn("reading results cache", err, map[string]interface{}{"key": key})
		return false
	}
	return found
}

func (svc *Service) cacheSet(ctx context.Context, key string, value interface{}) {
	if svc.cache == nil {
		return
	}
	if err := svc.cache.Set(ctx, key, value); err != nil {
		svc.logger.Warn("writing results cache", err, map[string]interface{}{"key": key})
	}
}
