package echoapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/assistant/core"
	testutil "github.com/trezcool/assistant/tests"
)

func TestAppHTTPErrorHandler(t *testing.T) {
	tests := []struct {
		name     string
		method   string
		debug    bool
		err      error
		wantCode int
		wantBody string
	}{
		{
			name:     "server error hides cause",
			err:      errors.Wrap(errors.New("db: connection reset"), "listing notes"),
			wantCode: http.StatusInternalServerError,
			wantBody: `{"message": "Internal Server Error"}`,
		},
		{
			name:     "server error in debug",
			debug:    true,
			err:      errors.New("db: connection reset"),
			wantCode: http.StatusInternalServerError,
			wantBody: `{"message": "db: connection reset"}`,
		},
		{
			name:     "not found",
			err:      errors.Wrap(core.NewNotFoundError("Note"), "retrieving"),
			wantCode: http.StatusNotFound,
			wantBody: `{"message": "Note not found"}`,
		},
		{
			name:     "conflict",
			err:      core.NewConflictError("Email already sent"),
			wantCode: http.StatusBadRequest,
			wantBody: `{"message": "Email already sent"}`,
		},
		{
			name:     "delivery",
			err:      core.NewDeliveryError(errors.New("421 try later")),
			wantCode: http.StatusInternalServerError,
			wantBody: `{"message": "Failed to send email", "error": "421 try later"}`,
		},
		{
			name:     "echo error",
			err:      echo.NewHTTPError(http.StatusMethodNotAllowed, "Method Not Allowed"),
			wantCode: http.StatusMethodNotAllowed,
			wantBody: `{"message": "Method Not Allowed"}`,
		},
		{
			name:     "head has no body",
			method:   http.MethodHead,
			err:      errors.New("boom"),
			wantCode: http.StatusInternalServerError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := testutil.NewLogger()
			app := echo.New()
			app.Debug = tt.debug
			handle := newAppHTTPErrorHandler(logger)

			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			rec := httptest.NewRecorder()
			handle(tt.err, app.NewContext(httptest.NewRequest(method, "/api/notes", nil), rec))

			require.Equal(t, tt.wantCode, rec.Code)
			if tt.wantBody == "" {
				assert.Empty(t, rec.Body.String())
				return
			}
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}
