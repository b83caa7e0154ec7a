package httphandler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gaze-network/ticket-integrity/common"
	"github.com/gaze-network/ticket-integrity/core/ledger/memory"
	"github.com/gaze-network/ticket-integrity/core/types"
	"github.com/gaze-network/ticket-integrity/modules/analytics/aggregator"
	"github.com/gaze-network/ticket-integrity/modules/analytics/usecase"
	"github.com/gaze-network/ticket-integrity/pkg/errorhandler"
	"github.com/gaze-network/uint128"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	l := memory.New()
	l.PutEvent(types.Event{ID: 5, Organizer: "0xOrganizer", Name: "Fest", TotalSupply: 10, Sold: 3, RoyaltyBps: 1000})
	l.PutTicketType(types.TicketType{ID: 51, EventID: 5, Name: "GA", Price: uint128.From64(1_000_000), Supply: 10, Sold: 3})
	l.PutListing(types.Listing{ID: 1, TokenID: 1, EventID: 5, Seller: "0xReseller", Price: uint128.From64(2_000_000), Active: false})
	l.PutListing(types.Listing{ID: 2, TokenID: 2, EventID: 5, Seller: "0xReseller", Price: uint128.From64(1_500_000), Active: true})
	l.PutSale(types.Sale{ListingID: 1, TokenID: 1, EventID: 5, Seller: "0xReseller", Price: uint128.From64(2_000_000), RoyaltyPaid: uint128.From64(200_000)})

	app := fiber.New(fiber.Config{ErrorHandler: errorhandler.NewHTTPErrorHandler()})
	require.NoError(t, New(usecase.New(l, "ipfs://default")).Mount(app))
	return app
}

func get[T any](t *testing.T, app *fiber.App, path string) (int, common.HttpResponse[T]) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out common.HttpResponse[T]
	if resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp.StatusCode, out
}

func TestGetEventSummary(t *testing.T) {
	app := newTestApp(t)

	status, resp := get[getEventSummaryResult](t, app, "/v1/analytics/events/5")
	require.Equal(t, http.StatusOK, status)
	result := resp.Result
	require.NotNil(t, result)
	assert.False(t, result.Partial)
	assert.Empty(t, result.Missing)
	assert.Equal(t, "30.00", result.SellRate)
	assert.Equal(t, "3000000", result.PrimaryRevenue)
	assert.Equal(t, image{Uri: "ipfs://default", Source: types.ImageSourceDefault}, result.Image)
	require.Len(t, result.Tiers, 1)
	assert.Equal(t, "1000000", result.Tiers[0].Price)
	assert.Equal(t, uint64(1), result.Secondary.ActiveListings)
	assert.Equal(t, "1500000", result.Secondary.AvgPrice)

	status, _ = get[getEventSummaryResult](t, app, "/v1/analytics/events/404")
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = get[getEventSummaryResult](t, app, "/v1/analytics/events/0")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestGetSellerSummary(t *testing.T) {
	app := newTestApp(t)

	status, resp := get[getSellerSummaryResult](t, app, "/v1/analytics/sellers/0xReseller")
	require.Equal(t, http.StatusOK, status)
	result := resp.Result
	require.NotNil(t, result)
	assert.Equal(t, aggregator.ConfidenceExact, result.Confidence)
	assert.Equal(t, uint64(2), result.TotalListed)
	assert.Equal(t, uint64(1), result.TotalSold)
	assert.Equal(t, "1800000", result.NetRevenue)
	assert.Equal(t, "90.00", result.ProfitMargin)
	assert.Equal(t, "50.00", result.SuccessRate)
}
