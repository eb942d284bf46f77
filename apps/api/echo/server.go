package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/carnet/core"
	"github.com/trezcool/carnet/core/class"
	"github.com/trezcool/carnet/core/composition"
	"github.com/trezcool/carnet/core/report"
	"github.com/trezcool/carnet/core/score"
	"github.com/trezcool/carnet/core/student"
)

const (
	homeMessage      = "API Gestion Scolaire"
	objectContextKey = "object"
)

type (
	Deps struct {
		Conf           *core.Config
		Logger         core.Logger
		Validate       *validator.Validate
		Translator     ut.Translator
		ClassSvc       *class.Service
		StudentSvc     *student.Service
		CompositionSvc *composition.Service
		ScoreSvc       *score.Service
		ReportSvc      *report.Service
	}

	Server struct {
		app      *echo.Echo
		conf     *core.Config
		shutdown chan os.Signal
		errors   chan error
	}

	messageResponse struct {
		Message string `json:"message"`
	}
)

var _ http.Handler = (*Server)(nil)

func NewServer(deps *Deps) *Server {
	s := &Server{
		app:      echo.New(),
		conf:     deps.Conf,
		shutdown: make(chan os.Signal, 1),
		errors:   make(chan error, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup(deps)
	return s
}

func (s *Server) setup(deps *Deps) {
	conf := deps.Conf

	s.app.HideBanner = true
	s.app.Server.ReadTimeout = conf.Server.ReadTimeout
	s.app.Server.WriteTimeout = conf.Server.WriteTimeout

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.Server.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: conf.Server.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
	}))

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(deps.Logger, deps.Translator, s.signalShutdown)
	s.app.Debug = conf.Debug && !conf.TestMode

	api := s.app.Group("/api")
	api.GET("", home)

	var auth []echo.MiddlewareFunc
	if conf.Server.AuthEnabled {
		auth = append(auth, middleware.JWTWithConfig(newJWTConfig(conf)))
	}

	registerClassAPI(api, auth, deps.ClassSvc, deps.Validate)
	registerStudentAPI(api, auth, deps.StudentSvc, deps.Validate)
	registerCompositionAPI(api, auth, deps.CompositionSvc, deps.Validate)
	registerScoreAPI(api, auth, deps.ScoreSvc, deps.ReportSvc, deps.Validate)
	registerReportAPI(api, auth, deps.ReportSvc, deps.ClassSvc)
}

// Start listens on the configured host; a failure is sent on Errors().
func (s *Server) Start() {
	if err := s.app.Start(s.conf.Server.Host); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *Server) signalShutdown() {
	s.shutdown <- syscall.SIGTERM
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, messageResponse{Message: homeMessage})
}
