package offers

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ticket-integrity/core/ledger"
	"github.com/gaze-network/ticket-integrity/core/types"
	"github.com/gaze-network/ticket-integrity/internal/metrics"
	"github.com/gaze-network/ticket-integrity/pkg/clock"
	"github.com/gaze-network/ticket-integrity/pkg/logger"
	"github.com/gaze-network/ticket-integrity/pkg/logger/slogx"
	"github.com/gaze-network/uint128"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

// DefaultBatchConcurrency is the number of batch items in flight at once.
const DefaultBatchConcurrency = 8

// Manager drives offer and listing transitions against the ledger.
type Manager struct {
	reader      ledger.Reader
	writer      ledger.Writer
	clock       clock.Clock
	concurrency int
}

func NewManager(reader ledger.Reader, writer ledger.Writer, clk clock.Clock, concurrency int) *Manager {
	if clk == nil {
		clk = clock.Real()
	}
	if concurrency <= 0 {
		concurrency = DefaultBatchConcurrency
	}
	return &Manager{
		// offer and listing state changes too often for the read cache
		reader:      ledger.ReadThrough(reader),
		writer:      writer,
		clock:       clk,
		concurrency: concurrency,
	}
}

// OfferView is an offer with its derived state.
type OfferView struct {
	types.Offer
	State State
}

func (m *Manager) view(offers []types.Offer) []OfferView {
	now := m.clock.Now()
	return lo.Map(offers, func(offer types.Offer, _ int) OfferView {
		return OfferView{Offer: offer, State: StateOf(offer, now)}
	})
}

// TokenOffers returns every offer on the ticket with its derived state.
func (m *Manager) TokenOffers(ctx context.Context, tokenID uint64) ([]OfferView, error) {
	offers, err := m.reader.GetOffers(ctx, tokenID)
	if err != nil {
		return nil, errors.Wrap(err, "can't get offers")
	}
	return m.view(offers), nil
}

// ActiveOffers returns the offers on the ticket that can still be accepted.
func (m *Manager) ActiveOffers(ctx context.Context, tokenID uint64) ([]types.Offer, error) {
	offers, err := m.reader.GetOffers(ctx, tokenID)
	if err != nil {
		return nil, errors.Wrap(err, "can't get offers")
	}
	now := m.clock.Now()
	return lo.Filter(offers, func(offer types.Offer, _ int) bool { return IsActive(offer, now) }), nil
}

// UserOffers returns the offers placed by address with their derived state.
func (m *Manager) UserOffers(ctx context.Context, address types.Address) ([]OfferView, error) {
	offers, err := m.reader.GetUserOffers(ctx, address)
	if err != nil {
		return nil, errors.Wrap(err, "can't get user offers")
	}
	return m.view(offers), nil
}

// AcceptOffer sells the ticket to the offerer. caller must own the ticket or be its listing's seller.
func (m *Manager) AcceptOffer(ctx context.Context, offerID uint64, caller types.Address) (*ledger.Receipt, error) {
	offer, err := m.reader.GetOffer(ctx, offerID)
	if err != nil {
		return nil, errors.Wrap(err, "can't get offer")
	}
	holder, err := m.holder(ctx, offer.TokenID)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	req, err := Accept(*offer, caller, holder, m.clock.Now())
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return m.submit(ctx, req)
}

// CancelOffer withdraws the offer. caller must be the offerer.
func (m *Manager) CancelOffer(ctx context.Context, offerID uint64, caller types.Address) (*ledger.Receipt, error) {
	offer, err := m.reader.GetOffer(ctx, offerID)
	if err != nil {
		return nil, errors.Wrap(err, "can't get offer")
	}
	req, err := Cancel(*offer, caller)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return m.submit(ctx, req)
}

func (m *Manager) holder(ctx context.Context, tokenID uint64) (Holder, error) {
	ticket, err := m.reader.GetTicket(ctx, tokenID)
	if err != nil {
		return Holder{}, errors.Wrap(err, "can't get ticket")
	}
	listings, err := m.reader.GetListingsByEvent(ctx, ticket.EventID)
	if err != nil {
		return Holder{}, errors.Wrap(err, "can't get listings")
	}
	holder := Holder{Owner: ticket.CurrentOwner}
	if listing, ok := lo.Find(listings, func(l types.Listing) bool { return l.Active && l.TokenID == tokenID }); ok {
		holder.Seller = listing.Seller
	}
	return holder, nil
}

func (m *Manager) submit(ctx context.Context, req ledger.WriteRequest) (*ledger.Receipt, error) {
	start := time.Now()
	receipt, err := m.writer.Submit(ctx, req)
	if err != nil {
		outcome := "failed"
		if rejection, ok := ledger.AsRejection(err); ok {
			outcome = rejection.Code()
		}
		metrics.ObserveWrite(string(req.Kind), outcome, time.Since(start))
		logger.WarnContext(ctx, "Ledger write refused",
			slogx.String("kind", string(req.Kind)),
			slogx.String("requestId", req.ID),
			slogx.Error(err),
		)
		return nil, errors.Wrapf(err, "can't submit %s", req.Kind)
	}
	metrics.ObserveWrite(string(req.Kind), "accepted", time.Since(start))
	return receipt, nil
}

// ItemResult is the outcome of one batch item. Exactly one of Receipt and Err is set.
type ItemResult struct {
	// ID identifies the item: a listing id, offer id or token id depending on the batch.
	ID      uint64
	Receipt *ledger.Receipt
	Err     error
}

// ListItem is a ticket to list at a price.
type ListItem struct {
	TokenID uint64
	Price   uint128.Uint128
}

// BatchCancelListings cancels each listing independently. One item's failure never affects the others.
func (m *Manager) BatchCancelListings(ctx context.Context, caller types.Address, listingIDs []uint64) []ItemResult {
	return fanOut(ctx, m.concurrency, listingIDs, func(ctx context.Context, listingID uint64) ItemResult {
		receipt, err := m.submit(ctx, ledger.CancelListing(caller, listingID))
		return ItemResult{ID: listingID, Receipt: receipt, Err: err}
	})
}

// BatchListTickets lists each ticket independently.
func (m *Manager) BatchListTickets(ctx context.Context, caller types.Address, items []ListItem) []ItemResult {
	return fanOut(ctx, m.concurrency, items, func(ctx context.Context, item ListItem) ItemResult {
		receipt, err := m.submit(ctx, ledger.CreateListing(caller, item.TokenID, item.Price))
		return ItemResult{ID: item.TokenID, Receipt: receipt, Err: err}
	})
}

// BatchCancelOffers withdraws each offer independently.
func (m *Manager) BatchCancelOffers(ctx context.Context, caller types.Address, offerIDs []uint64) []ItemResult {
	return fanOut(ctx, m.concurrency, offerIDs, func(ctx context.Context, offerID uint64) ItemResult {
		receipt, err := m.CancelOffer(ctx, offerID, caller)
		return ItemResult{ID: offerID, Receipt: receipt, Err: err}
	})
}

// fanOut runs fn for every item with at most limit in flight and returns the results in input order.
func fanOut[T any](ctx context.Context, limit int, items []T, fn func(context.Context, T) ItemResult) []ItemResult {
	results := make([]ItemResult, len(items))
	var g errgroup.Group
	g.SetLimit(limit)
	for i, item := range items {
		g.Go(func() error {
			results[i] = fn(ctx, item)
			return nil
		})
	}
	_ = g.Wait()
	return results
}
