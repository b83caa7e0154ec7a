package usecase

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ticket-integrity/common/errs"
	"github.com/gaze-network/ticket-integrity/core/ledger"
	"github.com/gaze-network/ticket-integrity/core/types"
	"github.com/gaze-network/ticket-integrity/internal/metrics"
	"github.com/gaze-network/ticket-integrity/modules/analytics/aggregator"
	"github.com/gaze-network/ticket-integrity/pkg/logger"
	"github.com/gaze-network/ticket-integrity/pkg/logger/slogx"
	"github.com/samber/lo"
)

type SellerSummary struct {
	Seller types.Address
	aggregator.ResellerSummary
	Missing []Section
}

func (s *SellerSummary) Partial() bool {
	return len(s.Missing) > 0
}

// SellerSummary summarizes a reseller. When the seller's listings can't be read the listing
// counts are zero and the sale totals are still reported. When the sale stream can't be read the
// figures are inferred from inactive listings and tagged approximate. Only a cancelled request
// fails the summary.
func (u *Usecase) SellerSummary(ctx context.Context, seller types.Address) (*SellerSummary, error) {
	ctx = logger.WithContext(ctx, slogx.Stringer("seller", seller))

	var missing []Section
	degrade := func(section Section, err error) {
		logger.WarnContext(ctx, "Analytics section unavailable", slogx.String("section", string(section)), slogx.Error(err))
		metrics.ObserveDegraded("seller", string(section))
		missing = append(missing, section)
	}

	listings, err := u.reader.GetListingsBySeller(ctx, seller)
	if err != nil {
		if isCancelled(err) {
			return nil, errors.Wrap(err, "can't get listings")
		}
		degrade(SectionListings, err)
		listings = nil
	}

	sales, err := u.reader.GetSales(ctx, ledger.SalesFilter{Seller: seller})
	if err == nil {
		summary, err := aggregator.ResellerSummaryOf(listings, sales)
		if err != nil {
			degrade(SectionSales, err)
			summary = aggregator.ResellerSummary{Confidence: aggregator.ConfidenceExact}
		}
		return &SellerSummary{Seller: seller, ResellerSummary: summary, Missing: missing}, nil
	}
	if isCancelled(err) {
		return nil, errors.Wrap(err, "can't get sales")
	}
	degrade(SectionSales, err)

	royaltyBps, complete := u.royaltiesOf(ctx, listings)
	if !complete {
		metrics.ObserveDegraded("seller", string(SectionRoyalties))
		missing = append(missing, SectionRoyalties)
	}
	summary, err := aggregator.ApproximateResellerSummaryOf(listings, royaltyBps)
	if err != nil {
		// the inferred figures come from listings only
		if !lo.Contains(missing, SectionListings) {
			degrade(SectionListings, err)
		}
		summary = aggregator.ResellerSummary{Confidence: aggregator.ConfidenceApproximate}
	}
	return &SellerSummary{
		Seller:          seller,
		ResellerSummary: summary,
		Missing:         missing,
	}, nil
}

func isCancelled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// royaltiesOf fetches the royalty of every event the listings belong to. Events that can't be read
// pay no royalty and complete is false.
func (u *Usecase) royaltiesOf(ctx context.Context, listings []types.Listing) (royaltyBps map[uint64]uint16, complete bool) {
	eventIDs := lo.Uniq(lo.FilterMap(listings, func(listing types.Listing, _ int) (uint64, bool) {
		return listing.EventID, !listing.Active
	}))
	royaltyBps = make(map[uint64]uint16, len(eventIDs))
	complete = true
	for _, eventID := range eventIDs {
		event, err := u.reader.GetEvent(ctx, eventID)
		if err != nil {
			if !errors.Is(err, errs.NotFound) {
				logger.WarnContext(ctx, "Can't get event royalty", slogx.Uint64("eventId", eventID), slogx.Error(err))
			}
			complete = false
			continue
		}
		royaltyBps[eventID] = event.RoyaltyBps
	}
	return royaltyBps, complete
}
