package echoapi

import (
	"net/http"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/carnet/core/report"
	"github.com/trezcool/carnet/core/score"
)

var errScoreNotFoundInCtx = errors.New("score object not found in echo.Context")

type scoreApi struct {
	svc       *score.Service
	reportSvc *report.Service
	validate  *validator.Validate
}

func registerScoreAPI(
	g *echo.Group,
	auth []echo.MiddlewareFunc,
	svc *score.Service,
	reportSvc *report.Service,
	validate *validator.Validate,
) {
	api := scoreApi{
		svc:       svc,
		reportSvc: reportSvc,
		validate:  validate,
	}

	ng := g.Group("/notes", auth...)
	ng.POST("", api.create)
	ng.GET("", api.query)
	ng.POST("/validation", api.validateScores)

	// detail endpoints
	dg := ng.Group("/:id", api.objectMiddleware)
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
}

// Handlers

func (api *scoreApi) create(ctx echo.Context) error {
	var data score.NewScore
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewScore")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	sc, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating score record")
	}
	row, err := api.reportSvc.Row(ctx.Request().Context(), sc)
	if err != nil {
		return errors.Wrap(err, "computing score record values")
	}
	return ctx.JSON(http.StatusCreated, row)
}

// query lists score records with their derived values, sorted by rank with unranked records last.
// A student's records are ranked each within its own composition.
func (api *scoreApi) query(ctx echo.Context) error {
	var filter score.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	filter.Clean()

	var rows []report.Row
	if filter.StudentID != "" && filter.CompositionID == "" {
		var err error
		if rows, err = api.reportSvc.StudentResults(ctx.Request().Context(), filter.StudentID); err != nil {
			return errors.Wrap(err, "computing student results")
		}
	} else {
		scores, err := api.svc.Query(ctx.Request().Context(), filter)
		if err != nil {
			return errors.Wrap(err, "querying score records")
		}
		if rows, err = api.reportSvc.Rows(ctx.Request().Context(), scores); err != nil {
			return errors.Wrap(err, "computing score record values")
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		ri, rj := rows[i].Rank, rows[j].Rank
		if ri == 0 || rj == 0 {
			return rj == 0 && ri != 0
		}
		return ri < rj
	})
	if rows == nil {
		rows = []report.Row{}
	}
	return ctx.JSON(http.StatusOK, rows)
}

func (api *scoreApi) retrieve(ctx echo.Context) error {
	sc, ok := ctx.Get(objectContextKey).(score.Score)
	if !ok {
		return errors.Wrap(errScoreNotFoundInCtx, "retrieving object from context")
	}
	row, err := api.reportSvc.Row(ctx.Request().Context(), sc)
	if err != nil {
		return errors.Wrap(err, "computing score record values")
	}
	return ctx.JSON(http.StatusOK, row)
}

func (api *scoreApi) update(ctx echo.Context) error {
	sc, ok := ctx.Get(objectContextKey).(score.Score)
	if !ok {
		return errors.Wrap(errScoreNotFoundInCtx, "retrieving object from context")
	}

	var data score.UpdateScore
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateScore")
	}
	if err := data.Validate(sc); err != nil {
		return err
	}

	sc, err := api.svc.Update(ctx.Request().Context(), sc, data)
	if err != nil {
		return errors.Wrap(err, "updating score record")
	}
	row, err := api.reportSvc.Row(ctx.Request().Context(), sc)
	if err != nil {
		return errors.Wrap(err, "computing score record values")
	}
	return ctx.JSON(http.StatusOK, row)
}

func (api *scoreApi) destroy(ctx echo.Context) error {
	sc, ok := ctx.Get(objectContextKey).(score.Score)
	if !ok {
		return errors.Wrap(errScoreNotFoundInCtx, "retrieving object from context")
	}
	if err := api.svc.Delete(ctx.Request().Context(), sc.ID); err != nil {
		return errors.Wrap(err, "deleting score record")
	}
	return ctx.JSON(http.StatusOK, messageResponse{Message: "Note supprimée avec succès"})
}

// validateScores checks scores without saving them and previews their derived values.
func (api *scoreApi) validateScores(ctx echo.Context) error {
	var data ScoresRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ScoresRequest")
	}
	if err := api.validate.Struct(data); err != nil {
		return err
	}
	preview, err := api.reportSvc.Preview(score.NewScore{
		TextStudy: data.TextStudy,
		AEM:       data.AEM,
		Dictation: data.Dictation,
		Math:      data.Math,
	}.Scores())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, preview)
}

func (api *scoreApi) objectMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		sc, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
		if err != nil {
			return errors.Wrap(err, "finding score record by ID")
		}
		ctx.Set(objectContextKey, sc)
		return next(ctx)
	}
}

// ScoresRequest holds the four subject scores of a record to validate.
type ScoresRequest struct {
	TextStudy *float64 `json:"etude_texte" validate:"required"`
	AEM       *float64 `json:"aem" validate:"required"`
	Dictation *float64 `json:"dictee" validate:"required"`
	Math      *float64 `json:"math" validate:"required"`
}
