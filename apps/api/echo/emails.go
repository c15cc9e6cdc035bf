package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/assistant/core/email"
)

type emailApi struct {
	svc *email.Service
}

func registerEmailAPI(g *echo.Group, records *email.Records, svc *email.Service) {
	api := emailApi{svc: svc}

	eg := registerRecordAPI[email.Email](g, "/emails", records)
	eg.POST("/send/:id", api.send)
}

func (api *emailApi) send(ctx echo.Context) error {
	res, err := api.svc.Send(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "sending email")
	}
	return ctx.JSON(http.StatusOK, res)
}
