package types

import (
	"time"

	"github.com/gaze-network/uint128"
)

type Ticket struct {
	TokenID        uint64
	EventID        uint64
	TicketTypeID   uint64
	OriginalOwner  Address
	CurrentOwner   Address
	PurchasePrice  uint128.Uint128
	PurchaseChain  string
	Used           bool
	CredentialHash string
}

// Listing is an offer-to-sell of an escrowed ticket.
// Once inactive (sold or cancelled) a listing is never reactivated.
type Listing struct {
	ID        uint64
	TokenID   uint64
	EventID   uint64
	Seller    Address
	Price     uint128.Uint128
	Active    bool
	CreatedAt time.Time
}

// Offer is a buyer's bid on a ticket.
type Offer struct {
	ID      uint64
	TokenID uint64
	Offerer Address
	Amount  uint128.Uint128

	// ExpiresAt is a unix timestamp in seconds. 0 means the offer never expires.
	ExpiresAt int64
	Active    bool
	CreatedAt time.Time
}

// HasExpiry reports whether the offer carries a real expiration timestamp.
func (o Offer) HasExpiry() bool {
	return o.ExpiresAt != 0
}

// Sale is a completed secondary sale as reported by the ledger's sale event stream.
type Sale struct {
	ListingID   uint64
	TokenID     uint64
	EventID     uint64
	Seller      Address
	Buyer       Address
	Price       uint128.Uint128
	RoyaltyPaid uint128.Uint128
	SoldAt      time.Time
}
