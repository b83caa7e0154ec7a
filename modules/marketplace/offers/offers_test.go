package offers

import (
	"testing"
	"time"

	"github.com/gaze-network/ticket-integrity/core/ledger"
	"github.com/gaze-network/ticket-integrity/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

func TestIsActive(t *testing.T) {
	testcases := []struct {
		name     string
		offer    types.Offer
		expected State
	}{
		{
			name:     "no_expiry",
			offer:    types.Offer{Active: true, ExpiresAt: 0},
			expected: StateActive,
		},
		{
			name:     "expires_later",
			offer:    types.Offer{Active: true, ExpiresAt: now.Unix() + 1},
			expected: StateActive,
		},
		{
			name:     "expires_now",
			offer:    types.Offer{Active: true, ExpiresAt: now.Unix()},
			expected: StateExpired,
		},
		{
			name:     "flagged_active_but_past_expiry",
			offer:    types.Offer{Active: true, ExpiresAt: now.Add(-time.Hour).Unix()},
			expected: StateExpired,
		},
		{
			name:     "inactive",
			offer:    types.Offer{Active: false, ExpiresAt: 0},
			expected: StateClosed,
		},
		{
			name:     "inactive_and_expired",
			offer:    types.Offer{Active: false, ExpiresAt: now.Add(-time.Hour).Unix()},
			expected: StateClosed,
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, StateOf(tc.offer, now))
			assert.Equal(t, tc.expected == StateActive, IsActive(tc.offer, now))
		})
	}
}

func TestAccept(t *testing.T) {
	offer := types.Offer{ID: 11, TokenID: 7, Offerer: "0xBidder", Active: true, ExpiresAt: now.Add(time.Hour).Unix()}
	holder := Holder{Owner: "0xOwner"}

	t.Run("owner", func(t *testing.T) {
		req, err := Accept(offer, "0xowner", holder, now)
		require.NoError(t, err)
		assert.Equal(t, ledger.WriteAcceptOffer, req.Kind)
		assert.Equal(t, uint64(11), req.OfferID)
		assert.Equal(t, uint64(7), req.TokenID)
		assert.NotEmpty(t, req.ID)
		assert.NoError(t, req.Validate())
	})

	t.Run("listing_seller", func(t *testing.T) {
		escrowed := Holder{Owner: "0xMarketplace", Seller: "0xOwner"}
		_, err := Accept(offer, "0xOwner", escrowed, now)
		assert.NoError(t, err)
	})

	t.Run("stranger", func(t *testing.T) {
		_, err := Accept(offer, "0xBidder", holder, now)
		assert.ErrorIs(t, err, ErrNotAuthorized)
	})

	t.Run("expired", func(t *testing.T) {
		_, err := Accept(offer, "0xOwner", holder, now.Add(2*time.Hour))
		assert.ErrorIs(t, err, ErrOfferExpired)
	})

	t.Run("closed", func(t *testing.T) {
		closed := offer
		closed.Active = false
		_, err := Accept(closed, "0xOwner", holder, now)
		assert.ErrorIs(t, err, ErrOfferClosed)
	})

	t.Run("unique_idempotency_keys", func(t *testing.T) {
		a, err := Accept(offer, "0xOwner", holder, now)
		require.NoError(t, err)
		b, err := Accept(offer, "0xOwner", holder, now)
		require.NoError(t, err)
		assert.NotEqual(t, a.ID, b.ID)
	})
}

func TestCancel(t *testing.T) {
	offer := types.Offer{ID: 11, TokenID: 7, Offerer: "0xBidder", Active: true, ExpiresAt: now.Add(-time.Hour).Unix()}

	req, err := Cancel(offer, "0xBIDDER")
	require.NoError(t, err, "an expired offer can still be withdrawn")
	assert.Equal(t, ledger.WriteCancelOffer, req.Kind)

	_, err = Cancel(offer, "0xOwner")
	assert.ErrorIs(t, err, ErrNotAuthorized)

	_, err = Cancel(offer, "")
	assert.ErrorIs(t, err, ErrNotAuthorized)

	offer.Active = false
	_, err = Cancel(offer, "0xBidder")
	assert.ErrorIs(t, err, ErrOfferClosed)
}
