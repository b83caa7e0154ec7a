// Package memory is an in-process ledger. It enforces the same write rules as the
// on-chain contracts and is used for local runs and as the fixture ledger in tests.
package memory

import (
	"cmp"
	"context"
	"math/big"
	"slices"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ticket-integrity/common/errs"
	"github.com/gaze-network/ticket-integrity/core/ledger"
	"github.com/gaze-network/ticket-integrity/core/types"
	"github.com/gaze-network/uint128"
	"github.com/samber/lo"
)

var _ ledger.ReadWriter = (*Ledger)(nil)

type Ledger struct {
	mu sync.RWMutex

	events      map[uint64]types.Event
	ticketTypes map[uint64]types.TicketType
	tickets     map[uint64]types.Ticket
	listings    map[uint64]types.Listing
	offers      map[uint64]types.Offer
	sales       []types.Sale
	stats       map[uint64]types.SecondaryMarketStats
	applied     map[string]ledger.Receipt

	nextListingID uint64
	readErr       error
	now           func() time.Time
}

type Option func(*Ledger)

// WithClock sets the time source used for offer expiry and sale timestamps.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		l.now = now
	}
}

func New(opts ...Option) *Ledger {
	l := &Ledger{
		events:      make(map[uint64]types.Event),
		ticketTypes: make(map[uint64]types.TicketType),
		tickets:     make(map[uint64]types.Ticket),
		listings:    make(map[uint64]types.Listing),
		offers:      make(map[uint64]types.Offer),
		stats:       make(map[uint64]types.SecondaryMarketStats),
		applied:     make(map[string]ledger.Receipt),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// FailReads makes every subsequent read return err. Pass nil to recover.
func (l *Ledger) FailReads(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.readErr = err
}

func (l *Ledger) PutEvent(event types.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events[event.ID] = event
}

func (l *Ledger) PutTicketType(tt types.TicketType) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ticketTypes[tt.ID] = tt
}

func (l *Ledger) PutTicket(ticket types.Ticket) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.tickets[ticket.TokenID] = ticket
}

func (l *Ledger) PutListing(listing types.Listing) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.listings[listing.ID] = listing
	l.nextListingID = max(l.nextListingID, listing.ID)
}

func (l *Ledger) PutOffer(offer types.Offer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.offers[offer.ID] = offer
}

func (l *Ledger) PutSale(sale types.Sale) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sales = append(l.sales, sale)
}

func (l *Ledger) PutSecondaryMarketStats(eventID uint64, stats types.SecondaryMarketStats) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stats[eventID] = stats
}

func (l *Ledger) read(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return errors.WithStack(err)
	}
	if l.readErr != nil {
		return errors.WithStack(l.readErr)
	}
	return nil
}

func (l *Ledger) GetEvent(ctx context.Context, eventID uint64) (*types.Event, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if err := l.read(ctx); err != nil {
		return nil, err
	}
	event, ok := l.events[eventID]
	if !ok {
		return nil, errors.Wrapf(errs.NotFound, "event %d", eventID)
	}
	return &event, nil
}

func (l *Ledger) GetTicket(ctx context.Context, tokenID uint64) (*types.Ticket, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if err := l.read(ctx); err != nil {
		return nil, err
	}
	ticket, ok := l.tickets[tokenID]
	if !ok {
		return nil, errors.Wrapf(errs.NotFound, "ticket %d", tokenID)
	}
	return &ticket, nil
}

func (l *Ledger) GetTicketTypes(ctx context.Context, eventID uint64) ([]types.TicketType, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if err := l.read(ctx); err != nil {
		return nil, err
	}
	result := lo.Filter(lo.Values(l.ticketTypes), func(tt types.TicketType, _ int) bool { return tt.EventID == eventID })
	slices.SortFunc(result, func(a, b types.TicketType) int { return cmp.Compare(a.ID, b.ID) })
	return result, nil
}

func (l *Ledger) GetListing(ctx context.Context, listingID uint64) (*types.Listing, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if err := l.read(ctx); err != nil {
		return nil, err
	}
	listing, ok := l.listings[listingID]
	if !ok {
		return nil, errors.Wrapf(errs.NotFound, "listing %d", listingID)
	}
	return &listing, nil
}

func (l *Ledger) GetListingsByEvent(ctx context.Context, eventID uint64) ([]types.Listing, error) {
	return l.filterListings(ctx, func(listing types.Listing) bool { return listing.EventID == eventID })
}

func (l *Ledger) GetListingsBySeller(ctx context.Context, seller types.Address) ([]types.Listing, error) {
	return l.filterListings(ctx, func(listing types.Listing) bool { return listing.Seller.Equal(seller) })
}

func (l *Ledger) filterListings(ctx context.Context, match func(types.Listing) bool) ([]types.Listing, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if err := l.read(ctx); err != nil {
		return nil, err
	}
	result := lo.Filter(lo.Values(l.listings), func(listing types.Listing, _ int) bool { return match(listing) })
	slices.SortFunc(result, func(a, b types.Listing) int { return cmp.Compare(a.ID, b.ID) })
	return result, nil
}

func (l *Ledger) GetOffer(ctx context.Context, offerID uint64) (*types.Offer, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if err := l.read(ctx); err != nil {
		return nil, err
	}
	offer, ok := l.offers[offerID]
	if !ok {
		return nil, errors.Wrapf(errs.NotFound, "offer %d", offerID)
	}
	return &offer, nil
}

func (l *Ledger) GetOffers(ctx context.Context, tokenID uint64) ([]types.Offer, error) {
	return l.filterOffers(ctx, func(offer types.Offer) bool { return offer.TokenID == tokenID })
}

func (l *Ledger) GetUserOffers(ctx context.Context, address types.Address) ([]types.Offer, error) {
	return l.filterOffers(ctx, func(offer types.Offer) bool { return offer.Offerer.Equal(address) })
}

func (l *Ledger) filterOffers(ctx context.Context, match func(types.Offer) bool) ([]types.Offer, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if err := l.read(ctx); err != nil {
		return nil, err
	}
	result := lo.Filter(lo.Values(l.offers), func(offer types.Offer, _ int) bool { return match(offer) })
	slices.SortFunc(result, func(a, b types.Offer) int { return cmp.Compare(a.ID, b.ID) })
	return result, nil
}

func (l *Ledger) GetSecondaryMarketStats(ctx context.Context, eventID uint64) (*types.SecondaryMarketStats, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if err := l.read(ctx); err != nil {
		return nil, err
	}
	if _, ok := l.events[eventID]; !ok {
		return nil, errors.Wrapf(errs.NotFound, "event %d", eventID)
	}
	stats := l.stats[eventID]
	return &stats, nil
}

func (l *Ledger) GetSales(ctx context.Context, filter ledger.SalesFilter) ([]types.Sale, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if err := l.read(ctx); err != nil {
		return nil, err
	}
	return lo.Filter(l.sales, func(sale types.Sale, _ int) bool { return filter.Match(sale) }), nil
}

// Submit applies a write. Requests are serialized; a repeated request ID returns the original receipt.
func (l *Ledger) Submit(ctx context.Context, req ledger.WriteRequest) (*ledger.Receipt, error) {
	if err := req.Validate(); err != nil {
		return nil, errors.WithStack(err)
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if receipt, ok := l.applied[req.ID]; ok {
		return &receipt, nil
	}

	receipt := ledger.Receipt{
		RequestID:  req.ID,
		Kind:       req.Kind,
		AcceptedAt: l.now(),
	}

	var err error
	switch req.Kind {
	case ledger.WriteMarkUsed:
		err = l.markUsed(req)
	case ledger.WriteCreateListing:
		receipt.ListingID, err = l.createListing(req, receipt.AcceptedAt)
	case ledger.WriteCancelListing:
		err = l.cancelListing(req)
	case ledger.WriteAcceptOffer:
		err = l.acceptOffer(req, receipt.AcceptedAt)
	case ledger.WriteCancelOffer:
		err = l.cancelOffer(req)
	}
	if err != nil {
		return nil, err
	}

	l.applied[req.ID] = receipt
	return &receipt, nil
}

func (l *Ledger) markUsed(req ledger.WriteRequest) error {
	ticket, ok := l.tickets[req.TokenID]
	if !ok {
		return errors.Wrapf(errs.NotFound, "ticket %d", req.TokenID)
	}
	event, ok := l.events[req.EventID]
	if !ok || ticket.EventID != req.EventID {
		return errors.WithStack(ledger.ErrInvalidEvent)
	}
	if !event.Organizer.Equal(req.Caller) {
		return errors.WithStack(ledger.ErrNotOrganizer)
	}
	if ticket.Used {
		return errors.WithStack(ledger.ErrAlreadyUsed)
	}
	ticket.Used = true
	l.tickets[ticket.TokenID] = ticket
	return nil
}

func (l *Ledger) activeListing(tokenID uint64) (types.Listing, bool) {
	for _, listing := range l.listings {
		if listing.TokenID == tokenID && listing.Active {
			return listing, true
		}
	}
	return types.Listing{}, false
}

func (l *Ledger) createListing(req ledger.WriteRequest, now time.Time) (uint64, error) {
	ticket, ok := l.tickets[req.TokenID]
	if !ok {
		return 0, errors.Wrapf(errs.NotFound, "ticket %d", req.TokenID)
	}
	if !ticket.CurrentOwner.Equal(req.Caller) {
		return 0, errors.WithStack(ledger.ErrNotOwner)
	}
	if _, listed := l.activeListing(ticket.TokenID); listed {
		return 0, errors.WithStack(ledger.ErrAlreadyListed)
	}
	l.nextListingID++
	l.listings[l.nextListingID] = types.Listing{
		ID:        l.nextListingID,
		TokenID:   ticket.TokenID,
		EventID:   ticket.EventID,
		Seller:    req.Caller,
		Price:     req.Price,
		Active:    true,
		CreatedAt: now,
	}
	return l.nextListingID, nil
}

func (l *Ledger) cancelListing(req ledger.WriteRequest) error {
	listing, ok := l.listings[req.ListingID]
	if !ok {
		return errors.Wrapf(errs.NotFound, "listing %d", req.ListingID)
	}
	if !listing.Seller.Equal(req.Caller) {
		return errors.WithStack(ledger.ErrNotOwner)
	}
	if !listing.Active {
		return errors.WithStack(ledger.ErrListingClosed)
	}
	listing.Active = false
	l.listings[listing.ID] = listing
	return nil
}

func (l *Ledger) acceptOffer(req ledger.WriteRequest, now time.Time) error {
	offer, ok := l.offers[req.OfferID]
	if !ok {
		return errors.Wrapf(errs.NotFound, "offer %d", req.OfferID)
	}
	if !offer.Active || (offer.HasExpiry() && offer.ExpiresAt <= now.Unix()) {
		return errors.WithStack(ledger.ErrOfferClosed)
	}
	ticket, ok := l.tickets[offer.TokenID]
	if !ok {
		return errors.Wrapf(errs.NotFound, "ticket %d", offer.TokenID)
	}
	listing, listed := l.activeListing(ticket.TokenID)
	seller := ticket.CurrentOwner
	if listed {
		seller = listing.Seller
	}
	if !seller.Equal(req.Caller) {
		return errors.WithStack(ledger.ErrNotOwner)
	}

	var royaltyBps uint16
	if event, ok := l.events[ticket.EventID]; ok {
		royaltyBps = event.RoyaltyBps
	}
	royalty := royaltyOf(offer.Amount, royaltyBps)

	if listed {
		listing.Active = false
		l.listings[listing.ID] = listing
	}
	offer.Active = false
	l.offers[offer.ID] = offer
	ticket.CurrentOwner = offer.Offerer
	l.tickets[ticket.TokenID] = ticket

	l.sales = append(l.sales, types.Sale{
		ListingID:   listing.ID,
		TokenID:     ticket.TokenID,
		EventID:     ticket.EventID,
		Seller:      seller,
		Buyer:       offer.Offerer,
		Price:       offer.Amount,
		RoyaltyPaid: royalty,
		SoldAt:      now,
	})
	stats := l.stats[ticket.EventID]
	stats.SalesCount++
	stats.RoyaltiesCollected = stats.RoyaltiesCollected.Add(royalty)
	l.stats[ticket.EventID] = stats
	return nil
}

func (l *Ledger) cancelOffer(req ledger.WriteRequest) error {
	offer, ok := l.offers[req.OfferID]
	if !ok {
		return errors.Wrapf(errs.NotFound, "offer %d", req.OfferID)
	}
	if !offer.Offerer.Equal(req.Caller) {
		return errors.WithStack(ledger.ErrNotOwner)
	}
	if !offer.Active {
		return errors.WithStack(ledger.ErrOfferClosed)
	}
	offer.Active = false
	l.offers[offer.ID] = offer
	return nil
}

// royaltyOf is the contract's royalty rule: amount * bps / 10000, truncated.
func royaltyOf(amount uint128.Uint128, bps uint16) uint128.Uint128 {
	r := new(big.Int).Mul(amount.Big(), big.NewInt(int64(bps)))
	r.Quo(r, big.NewInt(types.MaxRoyaltyBps))
	u, err := uint128.FromBig(r)
	if err != nil {
		// r <= amount, can't overflow
		return uint128.Zero
	}
	return u
}
