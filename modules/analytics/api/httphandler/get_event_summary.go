package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ticket-integrity/common"
	"github.com/gaze-network/ticket-integrity/common/errs"
	"github.com/gofiber/fiber/v2"
)

type getEventSummaryRequest struct {
	EventId uint64 `params:"eventId"`
}

func (r *getEventSummaryRequest) Validate() error {
	var errList []error
	if r.EventId == 0 {
		errList = append(errList, errors.New("'eventId' is required"))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type tier struct {
	Id       uint64 `json:"id"`
	Name     string `json:"name"`
	Price    string `json:"price"`
	Supply   uint64 `json:"supply"`
	Sold     uint64 `json:"sold"`
	Revenue  string `json:"revenue"`
	SellRate string `json:"sellRate"` // percentage, two decimal places
	Image    image  `json:"image"`
}

type secondaryMarket struct {
	ActiveListings     uint64 `json:"activeListings"`
	AvgPrice           string `json:"avgPrice"`
	MinPrice           string `json:"minPrice"`
	MaxPrice           string `json:"maxPrice"`
	SalesCount         uint64 `json:"salesCount"`
	RoyaltiesCollected string `json:"royaltiesCollected"`
}

type getEventSummaryResult struct {
	partial
	EventId        uint64          `json:"eventId"`
	Name           string          `json:"name"`
	Organizer      string          `json:"organizer"`
	Active         bool            `json:"active"`
	StartTime      int64           `json:"startTime"` // unix timestamp
	EndTime        int64           `json:"endTime"`   // unix timestamp
	TotalSupply    uint64          `json:"totalSupply"`
	Sold           uint64          `json:"sold"`
	SellRate       string          `json:"sellRate"`
	RoyaltyBps     uint16          `json:"royaltyBps"`
	Image          image           `json:"image"`
	PrimaryRevenue string          `json:"primaryRevenue"`
	Tiers          []tier          `json:"tiers"`
	Secondary      secondaryMarket `json:"secondary"`
}

type getEventSummaryResponse = common.HttpResponse[getEventSummaryResult]

func (h *HttpHandler) GetEventSummary(ctx *fiber.Ctx) (err error) {
	var req getEventSummaryRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	summary, err := h.usecase.EventSummary(ctx.UserContext(), req.EventId)
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return errors.Mark(errs.NewPublicError("event not found"), errs.NotFound)
		}
		return errors.Wrap(err, "error during EventSummary")
	}

	tiers := make([]tier, 0, len(summary.Tiers))
	for _, t := range summary.Tiers {
		tiers = append(tiers, tier{
			Id:       t.TicketTypeID,
			Name:     t.Name,
			Price:    t.Price.String(),
			Supply:   t.Supply,
			Sold:     t.Sold,
			Revenue:  t.Revenue.String(),
			SellRate: t.SellRate.StringFixed(2),
			Image:    mapImage(t.Image),
		})
	}

	event := summary.Event
	return errors.WithStack(ctx.JSON(getEventSummaryResponse{
		Result: &getEventSummaryResult{
			partial:        mapPartial(summary.Missing),
			EventId:        event.ID,
			Name:           event.Name,
			Organizer:      event.Organizer.String(),
			Active:         event.Active,
			StartTime:      event.StartTime.Unix(),
			EndTime:        event.EndTime.Unix(),
			TotalSupply:    event.TotalSupply,
			Sold:           event.Sold,
			SellRate:       summary.SellRate.StringFixed(2),
			RoyaltyBps:     event.RoyaltyBps,
			Image:          mapImage(summary.Image),
			PrimaryRevenue: summary.PrimaryRevenue.String(),
			Tiers:          tiers,
			Secondary: secondaryMarket{
				ActiveListings:     summary.Secondary.ActiveCount,
				AvgPrice:           summary.Secondary.AvgPrice.String(),
				MinPrice:           summary.Secondary.MinPrice.String(),
				MaxPrice:           summary.Secondary.MaxPrice.String(),
				SalesCount:         summary.Market.SalesCount,
				RoyaltiesCollected: summary.Market.RoyaltiesCollected.String(),
			},
		},
	}))
}
