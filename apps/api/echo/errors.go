package echoapi

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/assistant/core"
)

const msgSendFailed = "Failed to send email"

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// Every error is rendered as `{"message": ...}`.
func newAppHTTPErrorHandler(logger core.Logger) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		body := echo.Map{}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			if m, ok := origErr.Message.(string); ok {
				body["message"] = m
			} else {
				body["message"] = fmt.Sprint(origErr.Message)
			}
		case *core.ValidationError:
			code = http.StatusBadRequest
			body["message"] = origErr.Error()
		case *core.NotFoundError:
			code = http.StatusNotFound
			body["message"] = origErr.Error()
		case *core.ConflictError:
			code = http.StatusBadRequest
			body["message"] = origErr.Error()
		case *core.DeliveryError:
			code = http.StatusInternalServerError
			body["message"] = msgSendFailed
			body["error"] = origErr.Error()
			logger.Error(msgSendFailed, err, requestFields(ctx))
		default: // any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			body["message"] = msg
			if ctx.Echo().Debug {
				body["message"] = err.Error()
			}
			logger.Error(msg, errors.Wrap(err, msg), requestFields(ctx))
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, body)
			}
			if err != nil {
				logger.Error("writing error response", err)
			}
		}
	}
}

func requestFields(ctx echo.Context) map[string]interface{} {
	return map[string]interface{}{
		"method":     ctx.Request().Method,
		"path":       ctx.Path(),
		"uri":        ctx.Request().RequestURI,
		"request_id": ctx.Response().Header().Get(echo.HeaderXRequestID),
	}
}
