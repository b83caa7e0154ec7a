package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ticket-integrity/common"
	"github.com/gaze-network/ticket-integrity/common/errs"
	"github.com/gaze-network/ticket-integrity/core/types"
	"github.com/gaze-network/ticket-integrity/modules/analytics/aggregator"
	"github.com/gofiber/fiber/v2"
)

type getSellerSummaryRequest struct {
	Address string `params:"address"`
}

func (r *getSellerSummaryRequest) Validate() error {
	var errList []error
	if types.Address(r.Address).IsZero() {
		errList = append(errList, errors.New("'address' is required"))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type getSellerSummaryResult struct {
	partial
	Seller             string                `json:"seller"`
	TotalListed        uint64                `json:"totalListed"`
	CurrentlyListed    uint64                `json:"currentlyListed"`
	TotalSold          uint64                `json:"totalSold"`
	TotalRevenue       string                `json:"totalRevenue"`
	TotalRoyaltiesPaid string                `json:"totalRoyaltiesPaid"`
	NetRevenue         string                `json:"netRevenue"`
	ProfitMargin       string                `json:"profitMargin"`
	SuccessRate        string                `json:"successRate"`
	Confidence         aggregator.Confidence `json:"confidence"`
}

type getSellerSummaryResponse = common.HttpResponse[getSellerSummaryResult]

func (h *HttpHandler) GetSellerSummary(ctx *fiber.Ctx) (err error) {
	var req getSellerSummaryRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	summary, err := h.usecase.SellerSummary(ctx.UserContext(), types.Address(req.Address))
	if err != nil {
		return errors.Wrap(err, "error during SellerSummary")
	}

	return errors.WithStack(ctx.JSON(getSellerSummaryResponse{
		Result: &getSellerSummaryResult{
			partial:            mapPartial(summary.Missing),
			Seller:             summary.Seller.String(),
			TotalListed:        summary.TotalListed,
			CurrentlyListed:    summary.CurrentlyListed,
			TotalSold:          summary.TotalSold,
			TotalRevenue:       summary.TotalRevenue.String(),
			TotalRoyaltiesPaid: summary.TotalRoyaltiesPaid.String(),
			NetRevenue:         summary.NetRevenue.String(),
			ProfitMargin:       summary.ProfitMargin.StringFixed(2),
			SuccessRate:        summary.SuccessRate.StringFixed(2),
			Confidence:         summary.Confidence,
		},
	}))
}
