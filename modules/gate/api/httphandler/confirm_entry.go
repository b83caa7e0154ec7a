package httphandler

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ticket-integrity/common"
	"github.com/gaze-network/ticket-integrity/common/errs"
	"github.com/gaze-network/ticket-integrity/core/types"
	"github.com/gaze-network/ticket-integrity/pkg/middleware/requestcontext"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
)

type confirmEntryRequest struct {
	Credential string `json:"credential"`
	Scanner    string `json:"scanner"`
	EventID    uint64 `json:"eventId"`

	// Override admits a warning verdict (e.g. the ticket changed hands since issuance).
	Override bool `json:"override"`
}

func (r *confirmEntryRequest) Validate() error {
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

type confirmEntryResult struct {
	Admitted   bool          `json:"admitted"`
	Verdict    verdictResult `json:"verdict"`
	RequestID  string        `json:"requestId,omitempty"`
	AcceptedAt *int64        `json:"acceptedAt,omitempty"` // unix timestamp
}

type confirmEntryResponse = common.HttpResponse[confirmEntryResult]

func (h *HttpHandler) ConfirmEntry(ctx *fiber.Ctx) (err error) {
	var req confirmEntryRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errors.WithStack(err)
	}
	req.Scanner = requestcontext.CallerOr(ctx.UserContext(), req.Scanner).String()
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	entry, err := h.usecase.ConfirmEntry(ctx.UserContext(), req.Credential, types.Address(req.Scanner), req.EventID, req.Override)
	if err != nil {
		return errors.Wrap(err, "error during ConfirmEntry")
	}

	result := confirmEntryResult{
		Admitted: entry.Admitted,
		Verdict:  mapVerdict(entry.Verdict),
	}
	if entry.Receipt != nil {
		result.RequestID = entry.Receipt.RequestID
		result.AcceptedAt = lo.ToPtr(entry.Receipt.AcceptedAt.Unix())
	}
	return errors.WithStack(ctx.JSON(confirmEntryResponse{
		Result: &result,
	}))
}
