// Package datasources holds the clients of the remote ledger.
package datasources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ticket-integrity/common/errs"
	"github.com/gaze-network/ticket-integrity/core/ledger"
	"github.com/gaze-network/ticket-integrity/core/types"
	"github.com/gaze-network/ticket-integrity/pkg/httpclient"
	"github.com/gaze-network/ticket-integrity/pkg/logger"
	"github.com/gaze-network/ticket-integrity/pkg/logger/slogx"
)

var _ ledger.ReadWriter = (*LedgerGateway)(nil)

type LedgerGatewayConfig struct {
	URL     string            `mapstructure:"url"`
	Timeout time.Duration     `mapstructure:"timeout"`
	Headers map[string]string `mapstructure:"headers"` // e.g. an API key header
	Debug   bool              `mapstructure:"debug"`
}

// LedgerGateway talks to the ledger through its JSON gateway API.
//
// A 404 is [errs.NotFound], a 409 carries a [ledger.Rejection] code, and transport
// failures or 5xx answers are [errs.Unavailable].
type LedgerGateway struct {
	client *httpclient.Client
}

func NewLedgerGateway(conf LedgerGatewayConfig) (*LedgerGateway, error) {
	if conf.URL == "" {
		return nil, errors.Wrap(errs.InvalidArgument, "ledger gateway url is required")
	}
	client, err := httpclient.New(conf.URL, httpclient.Config{
		Debug:   conf.Debug,
		Headers: conf.Headers,
		Timeout: conf.Timeout,
	})
	if err != nil {
		return nil, errors.Wrap(err, "can't create ledger gateway client")
	}
	return &LedgerGateway{client: client}, nil
}

// call performs a request and decodes a 2xx body into out.
func (g *LedgerGateway) call(ctx context.Context, method, path string, opts httpclient.RequestOptions, out any) error {
	resp, err := g.client.Do(ctx, method, path, opts)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return errors.WithStack(err)
		}
		return errors.Mark(errors.Wrapf(err, "ledger gateway %s %s", method, path), errs.Unavailable)
	}

	status := resp.StatusCode()
	if status >= 200 && status < 300 {
		if out == nil {
			return nil
		}
		if err := resp.UnmarshalBody(out); err != nil {
			return errors.Wrap(err, "can't decode ledger gateway response")
		}
		return nil
	}

	var body gatewayError
	_ = json.Unmarshal(resp.Body(), &body)
	switch {
	case status == http.StatusNotFound:
		return errors.Wrapf(errs.NotFound, "%s %s", path, body.Message)
	case status == http.StatusConflict:
		if rejection, ok := ledger.ParseRejection(body.Code); ok {
			return errors.WithStack(rejection)
		}
		return errors.Errorf("ledger rejected the write with unknown code %q: %s", body.Code, body.Message)
	case status == http.StatusBadRequest:
		return errors.Wrapf(errs.InvalidArgument, "ledger gateway: %s", body.Message)
	case status == http.StatusTooManyRequests || status >= 500:
		return errors.Wrapf(errs.Unavailable, "ledger gateway answered %d: %s", status, body.Message)
	}
	return errors.Errorf("unexpected ledger gateway status %d: %s", status, body.Message)
}

func get[D any, T any](ctx context.Context, g *LedgerGateway, path string, query url.Values, convert func(D) (T, error)) (T, error) {
	var dto D
	if err := g.call(ctx, http.MethodGet, path, httpclient.RequestOptions{Query: query}, &dto); err != nil {
		var zero T
		return zero, errors.WithStack(err)
	}
	return convert(dto)
}

func getList[D any, T any](ctx context.Context, g *LedgerGateway, path string, query url.Values, convert func(D) (T, error)) ([]T, error) {
	var dtos []D
	if err := g.call(ctx, http.MethodGet, path, httpclient.RequestOptions{Query: query}, &dtos); err != nil {
		return nil, errors.WithStack(err)
	}
	return mapAll(dtos, convert)
}

func (g *LedgerGateway) GetEvent(ctx context.Context, eventID uint64) (*types.Event, error) {
	return get(ctx, g, fmt.Sprintf("/events/%d", eventID), nil, eventDTO.toType)
}

func (g *LedgerGateway) GetTicket(ctx context.Context, tokenID uint64) (*types.Ticket, error) {
	return get(ctx, g, fmt.Sprintf("/tickets/%d", tokenID), nil, ticketDTO.toType)
}

func (g *LedgerGateway) GetTicketTypes(ctx context.Context, eventID uint64) ([]types.TicketType, error) {
	return getList(ctx, g, fmt.Sprintf("/events/%d/ticket-types", eventID), nil, ticketTypeDTO.toType)
}

func (g *LedgerGateway) GetListing(ctx context.Context, listingID uint64) (*types.Listing, error) {
	listing, err := get(ctx, g, fmt.Sprintf("/listings/%d", listingID), nil, listingDTO.toType)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &listing, nil
}

func (g *LedgerGateway) GetListingsByEvent(ctx context.Context, eventID uint64) ([]types.Listing, error) {
	return getList(ctx, g, fmt.Sprintf("/events/%d/listings", eventID), nil, listingDTO.toType)
}

func (g *LedgerGateway) GetListingsBySeller(ctx context.Context, seller types.Address) ([]types.Listing, error) {
	return getList(ctx, g, "/sellers/"+url.PathEscape(seller.String())+"/listings", nil, listingDTO.toType)
}

func (g *LedgerGateway) GetOffer(ctx context.Context, offerID uint64) (*types.Offer, error) {
	offer, err := get(ctx, g, fmt.Sprintf("/offers/%d", offerID), nil, offerDTO.toType)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &offer, nil
}

func (g *LedgerGateway) GetOffers(ctx context.Context, tokenID uint64) ([]types.Offer, error) {
	return getList(ctx, g, fmt.Sprintf("/tickets/%d/offers", tokenID), nil, offerDTO.toType)
}

func (g *LedgerGateway) GetUserOffers(ctx context.Context, address types.Address) ([]types.Offer, error) {
	return getList(ctx, g, "/wallets/"+url.PathEscape(address.String())+"/offers", nil, offerDTO.toType)
}

func (g *LedgerGateway) GetSecondaryMarketStats(ctx context.Context, eventID uint64) (*types.SecondaryMarketStats, error) {
	return get(ctx, g, fmt.Sprintf("/events/%d/market-stats", eventID), nil, marketStatsDTO.toType)
}

func (g *LedgerGateway) GetSales(ctx context.Context, filter ledger.SalesFilter) ([]types.Sale, error) {
	query := url.Values{}
	if filter.EventID != 0 {
		query.Set("eventId", strconv.FormatUint(filter.EventID, 10))
	}
	if !filter.Seller.IsZero() {
		query.Set("seller", filter.Seller.String())
	}
	return getList(ctx, g, "/sales", query, saleDTO.toType)
}

// Submit sends a write. The request ID doubles as the gateway's idempotency key, so a retried
// submission of the same request is applied at most once.
func (g *LedgerGateway) Submit(ctx context.Context, req ledger.WriteRequest) (*ledger.Receipt, error) {
	if err := req.Validate(); err != nil {
		return nil, errors.WithStack(err)
	}
	body, err := json.Marshal(newWriteRequestDTO(req))
	if err != nil {
		return nil, errors.Wrap(err, "can't encode write request")
	}

	var receipt receiptDTO
	err = g.call(ctx, http.MethodPost, "/writes", httpclient.RequestOptions{
		Body:   body,
		Header: map[string]string{"Idempotency-Key": req.ID},
	}, &receipt)
	if err != nil {
		if _, ok := ledger.AsRejection(err); !ok {
			logger.WarnContext(ctx, "Ledger write failed",
				slogx.String("kind", string(req.Kind)),
				slogx.String("requestId", req.ID),
				slogx.Error(err),
			)
		}
		return nil, errors.WithStack(err)
	}
	return receipt.toType(), nil
}
