package tests

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"math"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	. "github.com/trezcool/carnet/apps/api/echo"
	"github.com/trezcool/carnet/core"
	"github.com/trezcool/carnet/core/class"
	"github.com/trezcool/carnet/core/composition"
	"github.com/trezcool/carnet/core/grading"
	"github.com/trezcool/carnet/core/report"
	"github.com/trezcool/carnet/core/score"
	"github.com/trezcool/carnet/core/student"
	"github.com/trezcool/carnet/services/logger"
	"github.com/trezcool/carnet/storage/database/inmem"
)

type repos struct {
	class       class.Repository
	student     student.Repository
	composition composition.Repository
	score       score.Repository
}

func newTestConfig(authEnabled bool) *core.Config {
	return &core.Config{
		Env:       "TEST",
		TestMode:  true,
		AppName:   "Carnet",
		SecretKey: "secret",
		Server: core.ServerConfig{
			CORSOrigins:        []string{"*"},
			DisableReqLogs:     true,
			AuthEnabled:        authEnabled,
			JWTExpirationDelta: time.Hour,
		},
		Grading: core.GradingConfig{BandA: 8.5, BandB: 7, BandC: 5, PassMark: 5},
	}
}

func setup(t *testing.T, conf ...*core.Config) (*Server, repos) {
	cfg := newTestConfig(false)
	if len(conf) > 0 {
		cfg = conf[0]
	}

	// set up DB & repos
	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("inmemdb.Open() failed: %v", err)
	}
	r := repos{
		class:       inmemdb.NewClassRepository(db),
		student:     inmemdb.NewStudentRepository(db),
		composition: inmemdb.NewCompositionRepository(db),
		score:       inmemdb.NewScoreRepository(db),
	}

	// set up services
	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "API : ", log.LstdFlags), cfg)
	logger.Enable(false)
	translator := core.NewTranslator()
	validate := validator.New()
	core.InitValidators(validate, translator)
	engine, err := grading.NewEngine(grading.ThresholdsFromConfig(cfg.Grading))
	if err != nil {
		t.Fatalf("grading.NewEngine() failed: %v", err)
	}

	// set up server
	srv := NewServer(&Deps{
		Conf:           cfg,
		Logger:         logger,
		Validate:       validate,
		Translator:     translator,
		ClassSvc:       class.NewService(r.class),
		StudentSvc:     student.NewService(r.student, r.class),
		CompositionSvc: composition.NewService(r.composition, r.class),
		ScoreSvc:       score.NewService(r.score, r.composition, r.student),
		ReportSvc:      report.NewService(r.class, r.student, r.composition, r.score, engine, nil, logger),
	})
	return srv, r
}

type httpErr struct {
	Error string `json:"error"`
}

type httpMsg struct {
	Message string `json:"message"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

// do serves a request and decodes the JSON response into dest when given.
func do(t *testing.T, app http.Handler, method, path string, body []byte, dest interface{}) *httptest.ResponseRecorder {
	req, rec := newRequest(method, path, body)
	app.ServeHTTP(rec, req)
	if dest != nil {
		if err := json.Unmarshal(rec.Body.Bytes(), dest); err != nil {
			t.Fatalf("json.Unmarshal(%s) failed: %v", rec.Body.String(), err)
		}
	}
	return rec
}

func marshalObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshalObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, app http.Handler, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func scoresFor(total float64) grading.Scores {
	var s grading.Scores
	s.TextStudy = math.Min(total, grading.MaxTextStudy)
	total -= s.TextStudy
	s.AEM = math.Min(total, grading.MaxAEM)
	total -= s.AEM
	s.Math = math.Min(total, grading.MaxMath)
	total -= s.Math
	s.Dictation = total
	return s
}
