package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/carnet/core/composition"
)

var errCompositionNotFoundInCtx = errors.New("composition object not found in echo.Context")

type compositionApi struct {
	svc      *composition.Service
	validate *validator.Validate
}

func registerCompositionAPI(g *echo.Group, auth []echo.MiddlewareFunc, svc *composition.Service, validate *validator.Validate) {
	api := compositionApi{
		svc:      svc,
		validate: validate,
	}

	cg := g.Group("/compositions", auth...)
	cg.POST("", api.create)
	cg.GET("", api.query)

	// detail endpoints
	dg := cg.Group("/:id", api.objectMiddleware)
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
}

// Handlers

func (api *compositionApi) create(ctx echo.Context) error {
	var data composition.NewComposition
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewComposition")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	comp, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating composition")
	}
	return ctx.JSON(http.StatusCreated, comp)
}

func (api *compositionApi) query(ctx echo.Context) error {
	var filter composition.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	filter.Clean()

	compositions, err := api.svc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying compositions")
	}
	if compositions == nil {
		compositions = []composition.Composition{}
	}
	return ctx.JSON(http.StatusOK, compositions)
}

func (api *compositionApi) retrieve(ctx echo.Context) error {
	comp, ok := ctx.Get(objectContextKey).(composition.Composition)
	if !ok {
		return errors.Wrap(errCompositionNotFoundInCtx, "retrieving object from context")
	}
	return ctx.JSON(http.StatusOK, comp)
}

func (api *compositionApi) update(ctx echo.Context) error {
	comp, ok := ctx.Get(objectContextKey).(composition.Composition)
	if !ok {
		return errors.Wrap(errCompositionNotFoundInCtx, "retrieving object from context")
	}

	var data composition.UpdateComposition
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateComposition")
	}
	if err := data.Validate(comp, api.validate); err != nil {
		return err
	}

	comp, err := api.svc.Update(ctx.Request().Context(), comp, data)
	if err != nil {
		return errors.Wrap(err, "updating composition")
	}
	return ctx.JSON(http.StatusOK, comp)
}

func (api *compositionApi) destroy(ctx echo.Context) error {
	comp, ok := ctx.Get(objectContextKey).(composition.Composition)
	if !ok {
		return errors.Wrap(errCompositionNotFoundInCtx, "retrieving object from context")
	}
	if err := api.svc.Delete(ctx.Request().Context(), comp.ID); err != nil {
		return errors.Wrap(err, "deleting composition")
	}
	return ctx.JSON(http.StatusOK, messageResponse{Message: "Composition supprimée avec succès"})
}

func (api *compositionApi) objectMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		comp, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
		if err != nil {
			return errors.Wrap(err, "finding composition by ID")
		}
		ctx.Set(objectContextKey, comp)
		return next(ctx)
	}
}
