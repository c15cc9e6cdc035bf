package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/assistant/core/dashboard"
)

func registerDashboardAPI(g *echo.Group, svc *dashboard.Service) {
	g.GET("/dashboard", func(ctx echo.Context) error {
		sum, err := svc.Summary(ctx.Request().Context())
		if err != nil {
			return errors.Wrap(err, "summarizing")
		}
		return ctx.JSON(http.StatusOK, sum)
	})
}
