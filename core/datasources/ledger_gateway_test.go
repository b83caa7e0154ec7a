package datasources

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gaze-network/ticket-integrity/common/errs"
	"github.com/gaze-network/ticket-integrity/core/ledger"
	"github.com/gaze-network/ticket-integrity/core/types"
	"github.com/gaze-network/uint128"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newGateway(t *testing.T, handler http.Handler) *LedgerGateway {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	g, err := NewLedgerGateway(LedgerGatewayConfig{URL: server.URL + "/v1", Timeout: time.Second})
	require.NoError(t, err)
	return g
}

func TestLedgerGatewayReads(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/events/3", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, eventDTO{Id: 3, Organizer: "0xOrganizer", Name: "Fest", TotalSupply: 100, RoyaltyBps: 250, StartTime: 1_800_000_000})
	})
	mux.HandleFunc("/v1/events/4", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, eventDTO{Id: 4, RoyaltyBps: 20_000})
	})
	mux.HandleFunc("/v1/tickets/404", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, gatewayError{Code: "NotFound", Message: "no such ticket"})
	})
	mux.HandleFunc("/v1/tickets/7/offers", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []offerDTO{
			{Id: 1, TokenId: 7, Offerer: "0xBidder", Amount: "340282366920938463463374607431768211455", Active: true},
			{Id: 2, TokenId: 7, Offerer: "0xBidder", Amount: "5", ExpiresAt: 1_800_000_000},
		})
	})
	mux.HandleFunc("/v1/sales", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "0xSeller", r.URL.Query().Get("seller"))
		assert.Empty(t, r.URL.Query().Get("eventId"))
		writeJSON(w, http.StatusOK, []saleDTO{{ListingId: 9, Seller: "0xSeller", Price: "1000", RoyaltyPaid: "25"}})
	})
	mux.HandleFunc("/v1/events/5/listings", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusServiceUnavailable, gatewayError{Message: "node syncing"})
	})
	mux.HandleFunc("/v1/events/6/listings", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []listingDTO{{Id: 1, Price: "-1"}})
	})
	g := newGateway(t, mux)
	ctx := context.Background()

	event, err := g.GetEvent(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, types.Address("0xOrganizer"), event.Organizer)
	assert.Equal(t, uint16(250), event.RoyaltyBps)
	assert.Equal(t, int64(1_800_000_000), event.StartTime.Unix())

	_, err = g.GetEvent(ctx, 4)
	assert.Error(t, err, "royalty over 100%")

	_, err = g.GetTicket(ctx, 404)
	assert.ErrorIs(t, err, errs.NotFound)

	offers, err := g.GetOffers(ctx, 7)
	require.NoError(t, err)
	require.Len(t, offers, 2)
	assert.Equal(t, uint128.Max, offers[0].Amount)
	assert.False(t, offers[0].HasExpiry())
	assert.True(t, offers[1].HasExpiry())

	sales, err := g.GetSales(ctx, ledger.SalesFilter{Seller: "0xSeller"})
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Equal(t, uint128.From64(25), sales[0].RoyaltyPaid)

	_, err = g.GetListingsByEvent(ctx, 5)
	assert.True(t, ledger.IsTransient(err))

	_, err = g.GetListingsByEvent(ctx, 6)
	require.Error(t, err)
	assert.False(t, ledger.IsTransient(err))
}

func TestLedgerGatewaySubmit(t *testing.T) {
	var received writeRequestDTO
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/writes", func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &received))
		assert.Equal(t, received.Id, r.Header.Get("Idempotency-Key"))

		if received.TokenId == 8 {
			writeJSON(w, http.StatusConflict, gatewayError{Code: "AlreadyUsed", Message: "ticket already used"})
			return
		}
		writeJSON(w, http.StatusOK, receiptDTO{RequestId: received.Id, Kind: received.Kind, AcceptedAt: 1_800_000_000})
	})
	g := newGateway(t, mux)
	ctx := context.Background()

	req := ledger.MarkUsed("0xOrganizer", 3, 7)
	receipt, err := g.Submit(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, req.ID, receipt.RequestID)
	assert.Equal(t, ledger.WriteMarkUsed, receipt.Kind)
	assert.Equal(t, "mark_used", received.Kind)
	assert.Empty(t, received.Price)

	_, err = g.Submit(ctx, ledger.MarkUsed("0xOrganizer", 3, 8))
	assert.ErrorIs(t, err, ledger.ErrAlreadyUsed)

	_, err = g.Submit(ctx, ledger.MarkUsed("", 3, 8))
	assert.ErrorIs(t, err, errs.InvalidArgument)

	_, err = g.Submit(ctx, ledger.CreateListing("0xSeller", 7, uint128.From64(1500)))
	require.NoError(t, err)
	assert.Equal(t, "1500", received.Price)
}

func TestLedgerGatewayUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	g, err := NewLedgerGateway(LedgerGatewayConfig{URL: url, Timeout: time.Second})
	require.NoError(t, err)

	_, err = g.GetEvent(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, ledger.IsTransient(err))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = g.GetEvent(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = NewLedgerGateway(LedgerGatewayConfig{})
	assert.ErrorIs(t, err, errs.InvalidArgument)
}
