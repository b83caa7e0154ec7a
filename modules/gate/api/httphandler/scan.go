package httphandler

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ticket-integrity/common"
	"github.com/gaze-network/ticket-integrity/common/errs"
	"github.com/gaze-network/ticket-integrity/core/types"
	"github.com/gaze-network/ticket-integrity/pkg/middleware/requestcontext"
	"github.com/gofiber/fiber/v2"
)

type scanRequest struct {
	Credential string `json:"credential"`
	Scanner    string `json:"scanner"`
	EventID    uint64 `json:"eventId"`
}

func (r *scanRequest) Validate() error {
	var errList []error
	r.Credential = strings.TrimSpace(r.Credential)
	if r.Credential == "" {
		errList = append(errList, errors.New("'credential' is required"))
	}
	if types.Address(r.Scanner).IsZero() {
		errList = append(errList, errors.New("'scanner' is required"))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type scanResponse = common.HttpResponse[verdictResult]

func (h *HttpHandler) Scan(ctx *fiber.Ctx) (err error) {
	var req scanRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errors.WithStack(err)
	}
	req.Scanner = requestcontext.CallerOr(ctx.UserContext(), req.Scanner).String()
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	verdict := h.usecase.Scan(ctx.UserContext(), req.Credential, types.Address(req.Scanner), req.EventID)

	result := mapVerdict(verdict)
	return errors.WithStack(ctx.JSON(scanResponse{
		Result: &result,
	}))
}
