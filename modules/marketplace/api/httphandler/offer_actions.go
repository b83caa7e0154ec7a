package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ticket-integrity/common"
	"github.com/gaze-network/ticket-integrity/common/errs"
	"github.com/gaze-network/ticket-integrity/core/types"
	"github.com/gaze-network/ticket-integrity/pkg/middleware/requestcontext"
	"github.com/gofiber/fiber/v2"
)

type offerActionRequest struct {
	OfferId uint64 `params:"offerId"`
	Caller  string `json:"caller"`
}

func (r *offerActionRequest) Validate() error {
	var errList []error
	if r.OfferId == 0 {
		errList = append(errList, errors.New("'offerId' is required"))
	}
	if types.Address(r.Caller).IsZero() {
		errList = append(errList, errors.New("'caller' is required"))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

func (h *HttpHandler) parseOfferAction(ctx *fiber.Ctx) (offerActionRequest, error) {
	var req offerActionRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return req, errors.WithStack(err)
	}
	if err := ctx.BodyParser(&req); err != nil {
		return req, errors.WithStack(err)
	}
	req.Caller = requestcontext.CallerOr(ctx.UserContext(), req.Caller).String()
	if err := req.Validate(); err != nil {
		return req, errors.WithStack(err)
	}
	return req, nil
}

type offerActionResponse = common.HttpResponse[receipt]

func (h *HttpHandler) AcceptOffer(ctx *fiber.Ctx) (err error) {
	req, err := h.parseOfferAction(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	r, err := h.manager.AcceptOffer(ctx.UserContext(), req.OfferId, types.Address(req.Caller))
	if err != nil {
		return errors.Wrap(publicOfferError(err), "error during AcceptOffer")
	}

	result := mapReceipt(r)
	return errors.WithStack(ctx.JSON(offerActionResponse{
		Result: &result,
	}))
}

func (h *HttpHandler) CancelOffer(ctx *fiber.Ctx) (err error) {
	req, err := h.parseOfferAction(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	r, err := h.manager.CancelOffer(ctx.UserContext(), req.OfferId, types.Address(req.Caller))
	if err != nil {
		return errors.Wrap(publicOfferError(err), "error during CancelOffer")
	}

	result := mapReceipt(r)
	return errors.WithStack(ctx.JSON(offerActionResponse{
		Result: &result,
	}))
}
