package ledger

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ticket-integrity/common/errs"
	"github.com/gaze-network/ticket-integrity/core/types"
	"github.com/gaze-network/uint128"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteRequestValidate(t *testing.T) {
	testcases := []struct {
		name  string
		req   WriteRequest
		valid bool
	}{
		{"mark_used", MarkUsed("0xorg", 3, 7), true},
		{"mark_used_missing_event", MarkUsed("0xorg", 0, 7), false},
		{"missing_caller", MarkUsed("", 3, 7), false},
		{"create_listing", CreateListing("0xseller", 7, uint128.From64(1)), true},
		{"create_listing_zero_price", CreateListing("0xseller", 7, uint128.Zero), false},
		{"cancel_listing", CancelListing("0xseller", 1), true},
		{"accept_offer_missing_offer", AcceptOffer("0xseller", 0, 7), false},
		{"cancel_offer", CancelOffer("0xbidder", 9, 7), true},
		{"unknown_kind", WriteRequest{ID: "x", Kind: "burn", Caller: "0xa"}, false},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.req.Validate()
			if tc.valid {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, errs.InvalidArgument)
		})
	}

	assert.NotEqual(t, MarkUsed("0xorg", 3, 7).ID, MarkUsed("0xorg", 3, 7).ID, "each request gets its own idempotency key")
}

func TestRejection(t *testing.T) {
	err := errors.Wrap(ErrAlreadyUsed, "mark used")
	r, ok := AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, ErrAlreadyUsed, r)

	parsed, ok := ParseRejection("NotOrganizer")
	require.True(t, ok)
	assert.Equal(t, ErrNotOrganizer, parsed)

	_, ok = ParseRejection("Whatever")
	assert.False(t, ok)

	_, ok = AsRejection(errs.NotFound)
	assert.False(t, ok)
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(errors.Wrap(errs.Unavailable, "ledger")))
	assert.True(t, IsTransient(errors.WithStack(context.DeadlineExceeded)))
	assert.False(t, IsTransient(errs.NotFound))
	assert.False(t, IsTransient(ErrAlreadyUsed))
}

func TestStaticIdentity(t *testing.T) {
	resolver := NewStaticIdentity(map[string]string{"0xEXECUTOR": "0xorganizer"})

	account, err := resolver.Resolve(context.Background(), "0xexecutor")
	require.NoError(t, err)
	assert.Equal(t, types.Address("0xorganizer"), account)

	account, err = resolver.Resolve(context.Background(), "0xsomeone")
	require.NoError(t, err)
	assert.Equal(t, types.Address("0xsomeone"), account)

	account, err = DirectIdentity{}.Resolve(context.Background(), "0xsomeone")
	require.NoError(t, err)
	assert.Equal(t, types.Address("0xsomeone"), account)
}

func TestSalesFilter(t *testing.T) {
	sale := types.Sale{EventID: 3, Seller: "0xSeller"}
	assert.True(t, SalesFilter{}.Match(sale))
	assert.True(t, SalesFilter{EventID: 3, Seller: "0xseller"}.Match(sale))
	assert.False(t, SalesFilter{EventID: 4}.Match(sale))
	assert.False(t, SalesFilter{Seller: "0xother"}.Match(sale))
}
