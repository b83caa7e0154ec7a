package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ticket-integrity/common"
	"github.com/gaze-network/ticket-integrity/common/errs"
	"github.com/gaze-network/ticket-integrity/core/types"
	"github.com/gaze-network/ticket-integrity/modules/marketplace/offers"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
)

type getTokenOffersRequest struct {
	TokenId    uint64 `params:"tokenId"`
	ActiveOnly bool   `query:"activeOnly"`
}

func (r *getTokenOffersRequest) Validate() error {
	var errList []error
	if r.TokenId == 0 {
		errList = append(errList, errors.New("'tokenId' is required"))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type getOffersResult struct {
	List []offer `json:"list"`
}

type getOffersResponse = common.HttpResponse[getOffersResult]

func (h *HttpHandler) GetTokenOffers(ctx *fiber.Ctx) (err error) {
	var req getTokenOffersRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := ctx.QueryParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	views, err := h.manager.TokenOffers(ctx.UserContext(), req.TokenId)
	if err != nil {
		return errors.Wrap(err, "error during TokenOffers")
	}
	if req.ActiveOnly {
		views = lo.Filter(views, func(v offers.OfferView, _ int) bool { return v.State == offers.StateActive })
	}

	return errors.WithStack(ctx.JSON(getOffersResponse{
		Result: &getOffersResult{
			List: mapOffers(views),
		},
	}))
}

type getWalletOffersRequest struct {
	Address string `params:"address"`
}

func (r *getWalletOffersRequest) Validate() error {
	var errList []error
	if types.Address(r.Address).IsZero() {
		errList = append(errList, errors.New("'address' is required"))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

func (h *HttpHandler) GetWalletOffers(ctx *fiber.Ctx) (err error) {
	var req getWalletOffersRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	views, err := h.manager.UserOffers(ctx.UserContext(), types.Address(req.Address))
	if err != nil {
		return errors.Wrap(err, "error during UserOffers")
	}

	return errors.WithStack(ctx.JSON(getOffersResponse{
		Result: &getOffersResult{
			List: mapOffers(views),
		},
	}))
}
