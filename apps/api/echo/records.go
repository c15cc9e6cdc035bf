package echoapi

import (
	"context"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/assistant/core/record"
)

type recordService[T any] interface {
	Schema() record.Schema
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id string) (*T, error)
	Create(ctx context.Context, payload []byte) (*T, error)
	Update(ctx context.Context, id string, payload []byte) (*T, error)
	Delete(ctx context.Context, id string) error
}

type recordApi[T any] struct {
	svc recordService[T]
}

func registerRecordAPI[T any](g *echo.Group, path string, svc recordService[T]) *echo.Group {
	api := recordApi[T]{svc: svc}

	rg := g.Group(path)
	rg.GET("", api.query)
	rg.POST("", api.create)
	rg.GET("/:id", api.retrieve)
	rg.PUT("/:id", api.update)
	rg.DELETE("/:id", api.destroy)
	return rg
}

// Handlers

func (api *recordApi[T]) query(ctx echo.Context) error {
	recs, err := api.svc.List(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing records")
	}
	return ctx.JSON(http.StatusOK, recs)
}

func (api *recordApi[T]) retrieve(ctx echo.Context) error {
	rec, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting record")
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api *recordApi[T]) create(ctx echo.Context) error {
	payload, err := readBody(ctx)
	if err != nil {
		return err
	}
	rec, err := api.svc.Create(ctx.Request().Context(), payload)
	if err != nil {
		return errors.Wrap(err, "creating record")
	}
	return ctx.JSON(http.StatusCreated, rec)
}

func (api *recordApi[T]) update(ctx echo.Context) error {
	payload, err := readBody(ctx)
	if err != nil {
		return err
	}
	rec, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), payload)
	if err != nil {
		return errors.Wrap(err, "updating record")
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api *recordApi[T]) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting record")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"message": api.svc.Schema().DeletedMessage()})
}

func readBody(ctx echo.Context) ([]byte, error) {
	payload, err := io.ReadAll(ctx.Request().Body)
	if err != nil {
		// the body limit middleware reports oversized bodies through the reader
		var herr *echo.HTTPError
		if errors.As(err, &herr) {
			return nil, herr
		}
		return nil, errors.Wrap(err, "reading request body")
	}
	return payload, nil
}
