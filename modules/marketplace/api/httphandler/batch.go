package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ticket-integrity/common"
	"github.com/gaze-network/ticket-integrity/common/errs"
	"github.com/gaze-network/ticket-integrity/core/types"
	"github.com/gaze-network/ticket-integrity/modules/marketplace/offers"
	"github.com/gaze-network/ticket-integrity/pkg/middleware/requestcontext"
	"github.com/gaze-network/uint128"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
)

type batchResult struct {
	Succeeded int          `json:"succeeded"`
	Failed    int          `json:"failed"`
	Items     []itemResult `json:"items"`
}

type batchResponse = common.HttpResponse[batchResult]

func newBatchResult(results []offers.ItemResult) *batchResult {
	items := mapItemResults(results)
	succeeded := lo.CountBy(items, func(item itemResult) bool { return item.Ok })
	return &batchResult{
		Succeeded: succeeded,
		Failed:    len(items) - succeeded,
		Items:     items,
	}
}

type batchIdsRequest struct {
	Caller string   `json:"caller"`
	Ids    []uint64 `json:"ids"`
}

func (r *batchIdsRequest) Validate(maxBatchSize int) error {
	var errList []error
	if types.Address(r.Caller).IsZero() {
		errList = append(errList, errors.New("'caller' is required"))
	}
	if len(r.Ids) == 0 {
		errList = append(errList, errors.New("'ids' is required"))
	}
	if len(r.Ids) > maxBatchSize {
		errList = append(errList, errors.Errorf("cannot exceed %d ids", maxBatchSize))
	}
	for i, id := range r.Ids {
		if id == 0 {
			errList = append(errList, errors.Errorf("ids[%d]: id is required", i))
		}
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

func (h *HttpHandler) BatchCancelListings(ctx *fiber.Ctx) (err error) {
	var req batchIdsRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errors.WithStack(err)
	}
	req.Caller = requestcontext.CallerOr(ctx.UserContext(), req.Caller).String()
	if err := req.Validate(h.maxBatchSize); err != nil {
		return errors.WithStack(err)
	}

	results := h.manager.BatchCancelListings(ctx.UserContext(), types.Address(req.Caller), req.Ids)
	return errors.WithStack(ctx.JSON(batchResponse{
		Result: newBatchResult(results),
	}))
}

func (h *HttpHandler) BatchCancelOffers(ctx *fiber.Ctx) (err error) {
	var req batchIdsRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errors.WithStack(err)
	}
	req.Caller = requestcontext.CallerOr(ctx.UserContext(), req.Caller).String()
	if err := req.Validate(h.maxBatchSize); err != nil {
		return errors.WithStack(err)
	}

	results := h.manager.BatchCancelOffers(ctx.UserContext(), types.Address(req.Caller), req.Ids)
	return errors.WithStack(ctx.JSON(batchResponse{
		Result: newBatchResult(results),
	}))
}

type listItem struct {
	TokenId uint64 `json:"tokenId"`
	Price   string `json:"price"` // decimal string, base units

	price uint128.Uint128
}

type batchListTicketsRequest struct {
	Caller string     `json:"caller"`
	Items  []listItem `json:"items"`
}

func (r *batchListTicketsRequest) Validate(maxBatchSize int) error {
	var errList []error
	if types.Address(r.Caller).IsZero() {
		errList = append(errList, errors.New("'caller' is required"))
	}
	if len(r.Items) == 0 {
		errList = append(errList, errors.New("'items' is required"))
	}
	if len(r.Items) > maxBatchSize {
		errList = append(errList, errors.Errorf("cannot exceed %d items", maxBatchSize))
	}
	for i := range r.Items {
		item := &r.Items[i]
		if item.TokenId == 0 {
			errList = append(errList, errors.Errorf("items[%d]: 'tokenId' is required", i))
		}
		price, err := uint128.FromString(item.Price)
		if err != nil {
			errList = append(errList, errors.Errorf("items[%d]: 'price' must be a non-negative integer", i))
			continue
		}
		item.price = price
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

func (h *HttpHandler) BatchListTickets(ctx *fiber.Ctx) (err error) {
	var req batchListTicketsRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errors.WithStack(err)
	}
	req.Caller = requestcontext.CallerOr(ctx.UserContext(), req.Caller).String()
	if err := req.Validate(h.maxBatchSize); err != nil {
		return errors.WithStack(err)
	}

	items := lo.Map(req.Items, func(item listItem, _ int) offers.ListItem {
		return offers.ListItem{TokenID: item.TokenId, Price: item.price}
	})
	results := h.manager.BatchListTickets(ctx.UserContext(), types.Address(req.Caller), items)
	return errors.WithStack(ctx.JSON(batchResponse{
		Result: newBatchResult(results),
	}))
}
