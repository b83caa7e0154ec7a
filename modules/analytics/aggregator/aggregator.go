// Package aggregator folds ledger records into sales and royalty summaries.
//
// Everything here is pure. Amounts are integers in base units and never pass through floating point;
// percentages are decimals rounded to two places and are zero when their denominator is zero.
package aggregator

import (
	"math/big"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ticket-integrity/common/errs"
	"github.com/gaze-network/ticket-integrity/core/types"
	"github.com/gaze-network/ticket-integrity/pkg/decimals"
	"github.com/gaze-network/uint128"
	"github.com/shopspring/decimal"
)

// Confidence tells exact, sale-stream derived figures from inferred ones.
type Confidence string

const (
	ConfidenceExact Confidence = "exact"

	// ConfidenceApproximate marks figures inferred from inactive listings. Cancellations count as sales.
	ConfidenceApproximate Confidence = "approximate"
)

type TierStat struct {
	TicketTypeID uint64
	Name         string
	Price        uint128.Uint128
	Supply       uint64
	Sold         uint64
	Revenue      uint128.Uint128

	// SellRate is sold / supply * 100.
	SellRate decimal.Decimal
}

// TierBreakdown computes revenue and sell rate per ticket type, in input order.
func TierBreakdown(tiers []types.TicketType) ([]TierStat, error) {
	stats := make([]TierStat, 0, len(tiers))
	for _, tier := range tiers {
		revenue, err := mul64(tier.Price, tier.Sold)
		if err != nil {
			return nil, errors.Wrapf(err, "revenue of ticket type %d", tier.ID)
		}
		stats = append(stats, TierStat{
			TicketTypeID: tier.ID,
			Name:         tier.Name,
			Price:        tier.Price,
			Supply:       tier.Supply,
			Sold:         tier.Sold,
			Revenue:      revenue,
			SellRate:     decimals.PercentOf(tier.Sold, tier.Supply),
		})
	}
	return stats, nil
}

// PrimaryRevenue is the total revenue of all tiers.
func PrimaryRevenue(tiers []TierStat) (uint128.Uint128, error) {
	var total sum
	for _, tier := range tiers {
		total.Add(tier.Revenue)
	}
	return total.Amount()
}

type SecondaryStats struct {
	ActiveCount uint64

	// AvgPrice is truncated toward zero.
	AvgPrice uint128.Uint128
	MinPrice uint128.Uint128
	MaxPrice uint128.Uint128
}

// SecondaryStatsOf summarizes the active listings. Inactive listings are ignored.
func SecondaryStatsOf(listings []types.Listing) (SecondaryStats, error) {
	var (
		stats SecondaryStats
		total sum
	)
	for _, listing := range listings {
		if !listing.Active {
			continue
		}
		if stats.ActiveCount == 0 || listing.Price.Cmp(stats.MinPrice) < 0 {
			stats.MinPrice = listing.Price
		}
		if listing.Price.Cmp(stats.MaxPrice) > 0 {
			stats.MaxPrice = listing.Price
		}
		stats.ActiveCount++
		total.Add(listing.Price)
	}
	if stats.ActiveCount == 0 {
		return SecondaryStats{}, nil
	}
	avg := new(big.Int).Quo(&total.v, new(big.Int).SetUint64(stats.ActiveCount))
	avgPrice, err := toAmount(avg)
	if err != nil {
		return SecondaryStats{}, errors.WithStack(err)
	}
	stats.AvgPrice = avgPrice
	return stats, nil
}

// RoyaltyForSale is price * royaltyBps / 10000, truncated toward zero.
func RoyaltyForSale(price uint128.Uint128, royaltyBps uint16) (uint128.Uint128, error) {
	if royaltyBps > types.MaxRoyaltyBps {
		return uint128.Zero, errors.Wrapf(errs.InvalidArgument, "royalty %d bps exceeds %d", royaltyBps, types.MaxRoyaltyBps)
	}
	v := new(big.Int).Mul(price.Big(), big.NewInt(int64(royaltyBps)))
	v.Quo(v, big.NewInt(types.MaxRoyaltyBps))
	return toAmount(v)
}

type ResellerSummary struct {
	TotalListed        uint64
	CurrentlyListed    uint64
	TotalSold          uint64
	TotalRevenue       uint128.Uint128
	TotalRoyaltiesPaid uint128.Uint128
	NetRevenue         uint128.Uint128

	// ProfitMargin is netRevenue / totalRevenue * 100.
	ProfitMargin decimal.Decimal

	// SuccessRate is totalSold / totalListed * 100.
	SuccessRate decimal.Decimal
	Confidence  Confidence
}

// ResellerSummaryOf summarizes a seller from their listings and the completed sales reported by the ledger.
func ResellerSummaryOf(listings []types.Listing, sales []types.Sale) (ResellerSummary, error) {
	var revenue, royalties sum
	for _, sale := range sales {
		revenue.Add(sale.Price)
		royalties.Add(sale.RoyaltyPaid)
	}
	summary, err := summarize(listings, uint64(len(sales)), &revenue, &royalties)
	if err != nil {
		return ResellerSummary{}, errors.WithStack(err)
	}
	summary.Confidence = ConfidenceExact
	return summary, nil
}

// ApproximateResellerSummaryOf infers sales from listings that are no longer active, for when the
// sale stream can't be read. royaltyBps maps event id to the event's royalty; missing events pay none.
//
// It over-counts: a cancelled listing is indistinguishable from a sold one. The result is always
// tagged [ConfidenceApproximate] and must not be mixed with exact figures.
func ApproximateResellerSummaryOf(listings []types.Listing, royaltyBps map[uint64]uint16) (ResellerSummary, error) {
	var (
		revenue, royalties sum
		sold               uint64
	)
	for _, listing := range listings {
		if listing.Active {
			continue
		}
		royalty, err := RoyaltyForSale(listing.Price, royaltyBps[listing.EventID])
		if err != nil {
			return ResellerSummary{}, errors.Wrapf(err, "royalty of listing %d", listing.ID)
		}
		sold++
		revenue.Add(listing.Price)
		royalties.Add(royalty)
	}
	summary, err := summarize(listings, sold, &revenue, &royalties)
	if err != nil {
		return ResellerSummary{}, errors.WithStack(err)
	}
	summary.Confidence = ConfidenceApproximate
	return summary, nil
}

func summarize(listings []types.Listing, sold uint64, revenue, royalties *sum) (ResellerSummary, error) {
	summary := ResellerSummary{
		TotalListed: uint64(len(listings)),
		TotalSold:   sold,
	}
	for _, listing := range listings {
		if listing.Active {
			summary.CurrentlyListed++
		}
	}

	var err error
	if summary.TotalRevenue, err = revenue.Amount(); err != nil {
		return ResellerSummary{}, errors.Wrap(err, "total revenue")
	}
	if summary.TotalRoyaltiesPaid, err = royalties.Amount(); err != nil {
		return ResellerSummary{}, errors.Wrap(err, "total royalties")
	}
	net := new(big.Int).Sub(&revenue.v, &royalties.v)
	if net.Sign() < 0 {
		net.SetInt64(0)
	}
	if summary.NetRevenue, err = toAmount(net); err != nil {
		return ResellerSummary{}, errors.Wrap(err, "net revenue")
	}

	summary.ProfitMargin = decimals.PercentOfAmount(summary.NetRevenue, summary.TotalRevenue)
	summary.SuccessRate = decimals.PercentOf(summary.TotalSold, summary.TotalListed)
	return summary, nil
}
