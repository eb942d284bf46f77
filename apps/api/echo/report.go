package echoapi

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/carnet/core/class"
	"github.com/trezcool/carnet/core/report"
	"github.com/trezcool/carnet/services/export"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type reportApi struct {
	svc      *report.Service
	classSvc *class.Service
}

func registerReportAPI(g *echo.Group, auth []echo.MiddlewareFunc, svc *report.Service, classSvc *class.Service) {
	api := reportApi{
		svc:      svc,
		classSvc: classSvc,
	}

	g.GET("/statistiques/:composition_id", api.statistics, auth...)
	g.GET("/resultats/:composition_id", api.examResults, auth...)
	g.GET("/resultats/:composition_id/export", api.exportExamResults, auth...)
	g.GET("/suivi/:classe_id", api.trackingMatrix, auth...)
	g.GET("/suivi/:classe_id/export", api.exportTrackingMatrix, auth...)
	g.GET("/suivi/:classe_id/:eleve_id", api.studentTracking, auth...)
}

// Handlers

func (api *reportApi) statistics(ctx echo.Context) error {
	st, err := api.svc.Statistics(ctx.Request().Context(), ctx.Param("composition_id"))
	if err != nil {
		return errors.Wrap(err, "computing statistics")
	}
	return ctx.JSON(http.StatusOK, st)
}

func (api *reportApi) examResults(ctx echo.Context) error {
	res, err := api.svc.ExamResults(ctx.Request().Context(), ctx.Param("composition_id"))
	if err != nil {
		return errors.Wrap(err, "computing exam results")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *reportApi) exportExamResults(ctx echo.Context) error {
	res, err := api.svc.ExamResults(ctx.Request().Context(), ctx.Param("composition_id"))
	if err != nil {
		return errors.Wrap(err, "computing exam results")
	}
	cls, err := api.classSvc.GetByID(ctx.Request().Context(), res.Composition.ClassID)
	if err != nil {
		return errors.Wrap(err, "finding class by ID")
	}

	var buf bytes.Buffer
	if err := exportsvc.WriteExamSheet(&buf, cls, res); err != nil {
		return errors.Wrap(err, "writing exam sheet")
	}
	return attachment(ctx, exportsvc.ExamFilename(res), buf.Bytes())
}

func (api *reportApi) trackingMatrix(ctx echo.Context) error {
	m, err := api.svc.TrackingMatrix(ctx.Request().Context(), ctx.Param("classe_id"))
	if err != nil {
		return errors.Wrap(err, "building tracking matrix")
	}
	return ctx.JSON(http.StatusOK, m)
}

func (api *reportApi) exportTrackingMatrix(ctx echo.Context) error {
	m, err := api.svc.TrackingMatrix(ctx.Request().Context(), ctx.Param("classe_id"))
	if err != nil {
		return errors.Wrap(err, "building tracking matrix")
	}

	var buf bytes.Buffer
	if err := exportsvc.WriteTrackingSheet(&buf, m); err != nil {
		return errors.Wrap(err, "writing tracking sheet")
	}
	return attachment(ctx, exportsvc.TrackingFilename(m), buf.Bytes())
}

func (api *reportApi) studentTracking(ctx echo.Context) error {
	st, err := api.svc.StudentTracking(ctx.Request().Context(), ctx.Param("classe_id"), ctx.Param("eleve_id"))
	if err != nil {
		return errors.Wrap(err, "building student tracking")
	}
	return ctx.JSON(http.StatusOK, st)
}

func attachment(ctx echo.Context, filename string, data []byte) error {
	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return ctx.Blob(http.StatusOK, xlsxMIME, data)
}
