package offers

import (
	"context"
	"testing"
	"time"

	"github.com/gaze-network/ticket-integrity/common/errs"
	"github.com/gaze-network/ticket-integrity/core/ledger"
	"github.com/gaze-network/ticket-integrity/core/ledger/memory"
	"github.com/gaze-network/ticket-integrity/core/types"
	"github.com/gaze-network/ticket-integrity/pkg/cache"
	"github.com/gaze-network/ticket-integrity/pkg/clock"
	"github.com/gaze-network/uint128"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	seller = types.Address("0xSeller")
	bidder = types.Address("0xBidder")
)

func newManager(t *testing.T) (*Manager, *memory.Ledger, *clock.Fake) {
	t.Helper()
	clk := clock.NewFake(now)
	l := memory.New(memory.WithClock(clk.Now))
	l.PutEvent(types.Event{ID: 3, Organizer: "0xOrganizer", RoyaltyBps: 250})
	for tokenID := uint64(1); tokenID <= 3; tokenID++ {
		l.PutTicket(types.Ticket{TokenID: tokenID, EventID: 3, OriginalOwner: seller, CurrentOwner: seller})
	}
	l.PutOffer(types.Offer{ID: 11, TokenID: 1, Offerer: bidder, Amount: uint128.From64(1_000_000), Active: true, ExpiresAt: now.Add(time.Hour).Unix()})
	l.PutOffer(types.Offer{ID: 12, TokenID: 1, Offerer: bidder, Amount: uint128.From64(900_000), Active: true})
	l.PutOffer(types.Offer{ID: 13, TokenID: 1, Offerer: "0xOther", Amount: uint128.From64(800_000), Active: false})
	return NewManager(l, l, clk, 2), l, clk
}

func TestManagerAcceptOffer(t *testing.T) {
	ctx := context.Background()

	t.Run("owner_accepts", func(t *testing.T) {
		m, l, _ := newManager(t)
		receipt, err := m.AcceptOffer(ctx, 11, seller)
		require.NoError(t, err)
		assert.Equal(t, ledger.WriteAcceptOffer, receipt.Kind)

		ticket, err := l.GetTicket(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, bidder, ticket.CurrentOwner)

		stats, err := l.GetSecondaryMarketStats(ctx, 3)
		require.NoError(t, err)
		assert.Equal(t, uint128.From64(25_000), stats.RoyaltiesCollected)
	})

	t.Run("not_authorized", func(t *testing.T) {
		m, _, _ := newManager(t)
		_, err := m.AcceptOffer(ctx, 11, bidder)
		assert.ErrorIs(t, err, ErrNotAuthorized)
	})

	t.Run("expired_before_ledger_flips_flag", func(t *testing.T) {
		m, _, clk := newManager(t)
		clk.Advance(2 * time.Hour)
		_, err := m.AcceptOffer(ctx, 11, seller)
		assert.ErrorIs(t, err, ErrOfferExpired)
	})

	t.Run("seller_of_fresh_listing_behind_cache", func(t *testing.T) {
		_, l, clk := newManager(t)
		m := NewManager(ledger.NewCachedReader(l, cache.NewMemory(), time.Minute), l, clk, 2)

		_, err := m.AcceptOffer(ctx, 11, "0xStranger")
		require.ErrorIs(t, err, ErrNotAuthorized)

		// ticket moves to escrow and gets listed after the first read
		l.PutTicket(types.Ticket{TokenID: 1, EventID: 3, OriginalOwner: seller, CurrentOwner: "0xEscrow"})
		l.PutListing(types.Listing{ID: 21, TokenID: 1, EventID: 3, Seller: seller, Price: uint128.From64(1_000_000), Active: true})

		receipt, err := m.AcceptOffer(ctx, 11, seller)
		require.NoError(t, err)
		assert.Equal(t, ledger.WriteAcceptOffer, receipt.Kind)
	})

	t.Run("unknown_offer", func(t *testing.T) {
		m, _, _ := newManager(t)
		_, err := m.AcceptOffer(ctx, 404, seller)
		assert.ErrorIs(t, err, errs.NotFound)
	})
}

func TestManagerOfferViews(t *testing.T) {
	ctx := context.Background()
	m, _, clk := newManager(t)

	active, err := m.ActiveOffers(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, active, 2)

	clk.Advance(2 * time.Hour)
	active, err = m.ActiveOffers(ctx, 1)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, uint64(12), active[0].ID)

	views, err := m.TokenOffers(ctx, 1)
	require.NoError(t, err)
	states := map[uint64]State{}
	for _, v := range views {
		states[v.ID] = v.State
	}
	assert.Equal(t, map[uint64]State{11: StateExpired, 12: StateActive, 13: StateClosed}, states)

	mine, err := m.UserOffers(ctx, "0xbidder")
	require.NoError(t, err)
	assert.Len(t, mine, 2)
}

func TestManagerCancelOffer(t *testing.T) {
	ctx := context.Background()
	m, l, _ := newManager(t)

	_, err := m.CancelOffer(ctx, 11, seller)
	assert.ErrorIs(t, err, ErrNotAuthorized)

	_, err = m.CancelOffer(ctx, 11, bidder)
	require.NoError(t, err)
	offer, err := l.GetOffer(ctx, 11)
	require.NoError(t, err)
	assert.False(t, offer.Active)

	_, err = m.CancelOffer(ctx, 11, bidder)
	assert.ErrorIs(t, err, ErrOfferClosed)
}

func TestManagerBatches(t *testing.T) {
	ctx := context.Background()

	t.Run("list_reports_each_item", func(t *testing.T) {
		m, _, _ := newManager(t)
		results := m.BatchListTickets(ctx, seller, []ListItem{
			{TokenID: 1, Price: uint128.From64(100)},
			{TokenID: 2, Price: uint128.From64(200)},
			{TokenID: 404, Price: uint128.From64(300)},
			{TokenID: 3, Price: uint128.Zero},
		})
		require.Len(t, results, 4)
		assert.NoError(t, results[0].Err)
		assert.NoError(t, results[1].Err)
		assert.NotEqual(t, results[0].Receipt.ListingID, results[1].Receipt.ListingID)
		assert.ErrorIs(t, results[2].Err, errs.NotFound)
		assert.ErrorIs(t, results[3].Err, errs.InvalidArgument)
		for i, id := range []uint64{1, 2, 404, 3} {
			assert.Equal(t, id, results[i].ID, "results keep input order")
		}
	})

	t.Run("cancel_partial_failure", func(t *testing.T) {
		m, l, _ := newManager(t)
		listed := m.BatchListTickets(ctx, seller, []ListItem{
			{TokenID: 1, Price: uint128.From64(100)},
			{TokenID: 2, Price: uint128.From64(200)},
		})
		first, second := listed[0].Receipt.ListingID, listed[1].Receipt.ListingID

		_, err := l.Submit(ctx, ledger.CancelListing(seller, second))
		require.NoError(t, err)

		results := m.BatchCancelListings(ctx, seller, []uint64{first, second})
		assert.NoError(t, results[0].Err)
		assert.ErrorIs(t, results[1].Err, ledger.ErrListingClosed)
	})

	t.Run("cancel_offers", func(t *testing.T) {
		m, _, _ := newManager(t)
		results := m.BatchCancelOffers(ctx, bidder, []uint64{11, 12, 13})
		assert.NoError(t, results[0].Err)
		assert.NoError(t, results[1].Err)
		assert.ErrorIs(t, results[2].Err, ErrNotAuthorized)
	})

	t.Run("cancelled_context", func(t *testing.T) {
		m, _, _ := newManager(t)
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		results := m.BatchListTickets(cancelled, seller, []ListItem{{TokenID: 1, Price: uint128.From64(1)}})
		assert.ErrorIs(t, results[0].Err, context.Canceled)
	})
}
