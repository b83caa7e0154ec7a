package errorhandler

import (
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ticket-integrity/common/errs"
	"github.com/gaze-network/ticket-integrity/core/ledger"
	"github.com/gaze-network/ticket-integrity/pkg/logger"
	"github.com/gaze-network/ticket-integrity/pkg/logger/slogx"
	"github.com/gofiber/fiber/v2"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func NewHTTPErrorHandler() func(ctx *fiber.Ctx, err error) error {
	return func(ctx *fiber.Ctx, err error) error {
		// ledger refused the write; the reason drives the operator's next action
		if rejection, ok := ledger.AsRejection(err); ok {
			return errors.WithStack(ctx.Status(http.StatusConflict).JSON(errorResponse{
				Error: rejection.Error(),
				Code:  rejection.Code(),
			}))
		}
		if e := new(errs.PublicError); errors.As(err, &e) {
			status := http.StatusBadRequest
			if errors.Is(err, errs.NotFound) {
				status = http.StatusNotFound
			}
			return errors.WithStack(ctx.Status(status).JSON(errorResponse{
				Error: e.Message(),
				Code:  e.Code(),
			}))
		}
		if e := new(fiber.Error); errors.As(err, &e) {
			return errors.WithStack(ctx.Status(e.Code).SendString(e.Error()))
		}
		if ledger.IsTransient(err) {
			logger.WarnContext(ctx.UserContext(), "Ledger unavailable",
				slogx.String("event", "api_ledger_unavailable"),
				slogx.Error(err),
			)
			return errors.WithStack(ctx.Status(http.StatusServiceUnavailable).JSON(errorResponse{
				Error: "ledger unavailable, retry later",
			}))
		}

		logger.ErrorContext(ctx.UserContext(), "Something went wrong, unhandled api error",
			slogx.String("event", "api_unhandled_error"),
			slogx.Error(err),
		)

		return errors.WithStack(ctx.Status(http.StatusInternalServerError).JSON(errorResponse{
			Error: "Internal Server Error",
		}))
	}
}
