// Package di wires the API dependencies into a dig.Container.
package di

import (
	"context"
	"fmt"
	"log"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	"github.com/trezcool/carnet/apps/api/echo"
	"github.com/trezcool/carnet/core"
	"github.com/trezcool/carnet/core/class"
	"github.com/trezcool/carnet/core/composition"
	"github.com/trezcool/carnet/core/grading"
	"github.com/trezcool/carnet/core/report"
	"github.com/trezcool/carnet/core/score"
	"github.com/trezcool/carnet/core/student"
	"github.com/trezcool/carnet/services/cache"
	"github.com/trezcool/carnet/services/logger"
	"github.com/trezcool/carnet/storage/database"
	"github.com/trezcool/carnet/storage/database/inmem"
	"github.com/trezcool/carnet/storage/database/mongo"
	"github.com/trezcool/carnet/storage/database/postgres"
)

type (
	DBLoggerParam struct {
		dig.In
		Logger core.Logger `name:"dbLogger"`
	}

	// Storage holds the repositories of the configured engine.
	Storage struct {
		dig.Out
		Classes      class.Repository
		Students     student.Repository
		Compositions composition.Repository
		Scores       score.Repository
		Closer       Closer
	}

	// Closer releases the storage engine.
	Closer func() error
)

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newStorage(conf *core.Config, loggerParam DBLoggerParam) Storage {
	st, err := openStorage(conf)
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up %s storage: %v", conf.Database.Engine, err), err)
	}
	loggerParam.Logger.Info(fmt.Sprintf("%s storage ready", conf.Database.Engine))
	return st
}

func openStorage(conf *core.Config) (Storage, error) {
	switch conf.Database.Engine {
	case core.EnginePostgres:
		if err := database.CreateIfNotExist(conf); err != nil {
			return Storage{}, err
		}
		db, err := database.Open(conf)
		if err != nil {
			return Storage{}, err
		}
		if err = database.Migrate(db.DB); err != nil {
			_ = db.Close()
			return Storage{}, err
		}
		return Storage{
			Classes:      pgrepos.NewClassRepository(db),
			Students:     pgrepos.NewStudentRepository(db),
			Compositions: pgrepos.NewCompositionRepository(db),
			Scores:       pgrepos.NewScoreRepository(db),
			Closer:       db.Close,
		}, nil

	case core.EngineMongo:
		db, err := mongorepos.Open(context.Background(), conf)
		if err != nil {
			return Storage{}, err
		}
		return Storage{
			Classes:      mongorepos.NewClassRepository(db),
			Students:     mongorepos.NewStudentRepository(db),
			Compositions: mongorepos.NewCompositionRepository(db),
			Scores:       mongorepos.NewScoreRepository(db),
			Closer:       func() error { return db.Close(context.Background()) },
		}, nil

	case core.EngineMemory:
		db, err := inmemdb.Open()
		if err != nil {
			return Storage{}, err
		}
		return Storage{
			Classes:      inmemdb.NewClassRepository(db),
			Students:     inmemdb.NewStudentRepository(db),
			Compositions: inmemdb.NewCompositionRepository(db),
			Scores:       inmemdb.NewScoreRepository(db),
			Closer:       func() error { return nil },
		}, nil

	default:
		return Storage{}, errors.Errorf("unknown storage engine %q", conf.Database.Engine)
	}
}

// newCache returns the Redis results cache, or nil when caching is disabled or Redis is unreachable.
func newCache(conf *core.Config, logger core.Logger) core.Cache {
	if conf.Cache.RedisAddr == "" {
		return nil
	}
	client, err := cachesvc.NewRedisClient(context.Background(), conf.Cache)
	if err != nil {
		logger.Warn(fmt.Sprintf("results cache disabled: %v", err), err)
		return nil
	}
	return cachesvc.NewRedisCache(client, conf.Cache.TTL)
}

func newEngine(conf *core.Config) (*grading.Engine, error) {
	return grading.NewEngine(grading.ThresholdsFromConfig(conf.Grading))
}

func newValidator(translator ut.Translator) *validator.Validate {
	validate := validator.New()
	core.InitValidators(validate, translator)
	return validate
}

type serverParams struct {
	dig.In
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

func newServer(p serverParams) *echoapi.Server {
	return echoapi.NewServer(&echoapi.Deps{
		Conf:           p.Conf,
		Logger:         p.Logger,
		Validate:       p.Validate,
		Translator:     p.Translator,
		ClassSvc:       p.ClassSvc,
		StudentSvc:     p.StudentSvc,
		CompositionSvc: p.CompositionSvc,
		ScoreSvc:       p.ScoreSvc,
		ReportSvc:      p.ReportSvc,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newStorage))
	must(c.Provide(newCache))
	must(c.Provide(newEngine))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(newValidator))
	must(c.Provide(class.NewService))
	must(c.Provide(student.NewService))
	must(c.Provide(composition.NewService))
	must(c.Provide(score.NewService))
	must(c.Provide(report.NewService))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
