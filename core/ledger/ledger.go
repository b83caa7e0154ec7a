// Package ledger defines the contract between the core and the authoritative ledger
// (events, tickets, listings, offers and sales).
//
// The ledger is remote, strongly consistent and possibly slow. Every call may block and
// must honour context cancellation. Implementations return [errs.NotFound] for missing records.
package ledger

import (
	"context"
	"time"

	"github.com/gaze-network/ticket-integrity/core/types"
)

// Reader is the read side of the ledger.
type Reader interface {
	GetEvent(ctx context.Context, eventID uint64) (*types.Event, error)
	GetTicket(ctx context.Context, tokenID uint64) (*types.Ticket, error)
	GetTicketTypes(ctx context.Context, eventID uint64) ([]types.TicketType, error)
	GetListing(ctx context.Context, listingID uint64) (*types.Listing, error)
	GetListingsByEvent(ctx context.Context, eventID uint64) ([]types.Listing, error)
	GetListingsBySeller(ctx context.Context, seller types.Address) ([]types.Listing, error)
	GetOffer(ctx context.Context, offerID uint64) (*types.Offer, error)
	GetOffers(ctx context.Context, tokenID uint64) ([]types.Offer, error)
	GetUserOffers(ctx context.Context, address types.Address) ([]types.Offer, error)
	GetSecondaryMarketStats(ctx context.Context, eventID uint64) (*types.SecondaryMarketStats, error)

	// GetSales returns completed secondary sales from the ledger's sale event stream.
	GetSales(ctx context.Context, filter SalesFilter) ([]types.Sale, error)
}

// Writer is the write side of the ledger. Writes are atomic and totally ordered by the ledger;
// a rejected write returns a [Rejection].
type Writer interface {
	Submit(ctx context.Context, req WriteRequest) (*Receipt, error)
}

// ReadWriter is a full ledger client.
type ReadWriter interface {
	Reader
	Writer
}

// SalesFilter selects sales by event and/or seller. Zero values match everything.
type SalesFilter struct {
	EventID uint64
	Seller  types.Address
}

// Match reports whether the sale is selected by the filter.
func (f SalesFilter) Match(sale types.Sale) bool {
	if f.EventID != 0 && sale.EventID != f.EventID {
		return false
	}
	if !f.Seller.IsZero() && !f.Seller.Equal(sale.Seller) {
		return false
	}
	return true
}

// Receipt acknowledges an accepted write.
type Receipt struct {
	RequestID string
	Kind      WriteKind

	// ListingID is set for [WriteCreateListing].
	ListingID  uint64
	AcceptedAt time.Time
}
