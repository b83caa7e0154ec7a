package usecase

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ticket-integrity/core/types"
	"github.com/gaze-network/ticket-integrity/internal/metrics"
	"github.com/gaze-network/ticket-integrity/modules/analytics/aggregator"
	"github.com/gaze-network/ticket-integrity/pkg/decimals"
	"github.com/gaze-network/ticket-integrity/pkg/logger"
	"github.com/gaze-network/ticket-integrity/pkg/logger/slogx"
	"github.com/gaze-network/uint128"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

type TierSummary struct {
	aggregator.TierStat
	Image types.Image
}

type EventSummary struct {
	Event          types.Event
	Image          types.Image
	Tiers          []TierSummary
	PrimaryRevenue uint128.Uint128

	// SellRate is event sold / total supply * 100.
	SellRate  decimal.Decimal
	Secondary aggregator.SecondaryStats

	// Market is the ledger's own resale counters.
	Market types.SecondaryMarketStats

	// Missing lists the sections zeroed because their ledger read failed.
	Missing []Section
}

func (s *EventSummary) Partial() bool {
	return len(s.Missing) > 0
}

// EventSummary builds the analytics view of an event. Only the event itself is required;
// every other section degrades to zero on a failed read and is listed in Missing.
func (u *Usecase) EventSummary(ctx context.Context, eventID uint64) (*EventSummary, error) {
	event, err := u.reader.GetEvent(ctx, eventID)
	if err != nil {
		return nil, errors.Wrap(err, "can't get event")
	}
	ctx = logger.WithContext(ctx, slogx.Uint64("eventId", eventID))

	var (
		tiers    []types.TicketType
		listings []types.Listing
		market   *types.SecondaryMarketStats

		mu      sync.Mutex
		missing = map[Section]bool{}
	)
	degrade := func(section Section, err error) {
		logger.WarnContext(ctx, "Analytics section unavailable", slogx.String("section", string(section)), slogx.Error(err))
		metrics.ObserveDegraded("event", string(section))
		mu.Lock()
		defer mu.Unlock()
		missing[section] = true
	}

	var g errgroup.Group
	g.Go(func() error {
		var err error
		if tiers, err = u.reader.GetTicketTypes(ctx, eventID); err != nil {
			degrade(SectionTiers, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if listings, err = u.reader.GetListingsByEvent(ctx, eventID); err != nil {
			degrade(SectionListings, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if market, err = u.reader.GetSecondaryMarketStats(ctx, eventID); err != nil {
			degrade(SectionMarket, err)
		}
		return nil
	})
	_ = g.Wait()

	summary := &EventSummary{
		Event:    *event,
		Image:    types.ResolveImage(nil, event.Image, u.defaultImage),
		SellRate: decimals.PercentOf(event.Sold, event.TotalSupply),
	}
	if market != nil {
		summary.Market = *market
	}

	stats, err := aggregator.TierBreakdown(tiers)
	if err != nil {
		degrade(SectionTiers, err)
		stats = nil
	}
	for i, stat := range stats {
		summary.Tiers = append(summary.Tiers, TierSummary{
			TierStat: stat,
			Image:    types.TicketImage(&tiers[i], event, u.defaultImage),
		})
	}
	if summary.PrimaryRevenue, err = aggregator.PrimaryRevenue(stats); err != nil {
		degrade(SectionTiers, err)
		summary.Tiers = nil
		summary.PrimaryRevenue = uint128.Zero
	}

	if summary.Secondary, err = aggregator.SecondaryStatsOf(listings); err != nil {
		degrade(SectionListings, err)
	}

	for _, section := range []Section{SectionTiers, SectionListings, SectionMarket} {
		if missing[section] {
			summary.Missing = append(summary.Missing, section)
		}
	}
	return summary, nil
}
