package errorhandler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ticket-integrity/common/errs"
	"github.com/gaze-network/ticket-integrity/core/ledger"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPErrorHandler(t *testing.T) {
	testCases := []struct {
		name   string
		err    error
		status int
		body   errorResponse
	}{
		{
			name:   "ledger rejection",
			err:    errors.Wrap(ledger.ErrAlreadyUsed, "can't mark ticket used"),
			status: http.StatusConflict,
			body:   errorResponse{Error: "AlreadyUsed", Code: "AlreadyUsed"},
		},
		{
			name:   "public error",
			err:    errs.WithPublicMessage(errors.New("'credential' is required"), "validation error"),
			status: http.StatusBadRequest,
			body:   errorResponse{Error: "validation error: 'credential' is required"},
		},
		{
			name:   "public not found",
			err:    errors.Mark(errs.NewPublicError("event not found"), errs.NotFound),
			status: http.StatusNotFound,
			body:   errorResponse{Error: "event not found"},
		},
		{
			name:   "ledger unavailable",
			err:    errors.Wrap(errs.Unavailable, "ledger gateway: 503"),
			status: http.StatusServiceUnavailable,
			body:   errorResponse{Error: "ledger unavailable, retry later"},
		},
		{
			name:   "unhandled",
			err:    errors.New("boom"),
			status: http.StatusInternalServerError,
			body:   errorResponse{Error: "Internal Server Error"},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New(fiber.Config{ErrorHandler: NewHTTPErrorHandler()})
			app.Get("/", func(c *fiber.Ctx) error { return tc.err })

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tc.status, resp.StatusCode)

			var body errorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tc.body, body)
		})
	}
}
