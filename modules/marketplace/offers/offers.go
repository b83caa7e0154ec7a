// Package offers holds the offer lifecycle rules: derived validity, and the accept and cancel
// transitions that turn into ledger writes.
package offers

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ticket-integrity/core/ledger"
	"github.com/gaze-network/ticket-integrity/core/types"
)

// Error is the reason an offer transition was refused before reaching the ledger.
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	ErrNotAuthorized = Error("NotAuthorized")
	ErrOfferExpired  = Error("OfferExpired")

	// ErrOfferClosed is returned for an offer the ledger already accepted or cancelled.
	ErrOfferClosed = Error("OfferClosed")
)

type State string

const (
	StateActive  State = "active"
	StateExpired State = "expired"
	StateClosed  State = "closed"
)

// IsActive reports whether the offer can still be accepted at now.
// An offer past its expiry is logically expired even while the ledger still flags it active.
func IsActive(offer types.Offer, now time.Time) bool {
	return offer.Active && (!offer.HasExpiry() || offer.ExpiresAt > now.Unix())
}

// StateOf derives the offer state read-side views must show.
func StateOf(offer types.Offer, now time.Time) State {
	switch {
	case !offer.Active:
		return StateClosed
	case IsActive(offer, now):
		return StateActive
	default:
		return StateExpired
	}
}

// Holder is who may sell a ticket: its current owner, and the seller of its active listing while
// the ticket is escrowed.
type Holder struct {
	Owner  types.Address
	Seller types.Address
}

func (h Holder) Authorizes(caller types.Address) bool {
	if caller.IsZero() {
		return false
	}
	return caller.Equal(h.Owner) || (!h.Seller.IsZero() && caller.Equal(h.Seller))
}

// Accept builds the ledger write accepting offer on behalf of caller.
func Accept(offer types.Offer, caller types.Address, holder Holder, now time.Time) (ledger.WriteRequest, error) {
	if !holder.Authorizes(caller) {
		return ledger.WriteRequest{}, errors.WithStack(ErrNotAuthorized)
	}
	switch StateOf(offer, now) {
	case StateClosed:
		return ledger.WriteRequest{}, errors.WithStack(ErrOfferClosed)
	case StateExpired:
		return ledger.WriteRequest{}, errors.WithStack(ErrOfferExpired)
	}
	return ledger.AcceptOffer(caller, offer.ID, offer.TokenID), nil
}

// Cancel builds the ledger write withdrawing offer. Only the offerer may cancel, expired or not.
func Cancel(offer types.Offer, caller types.Address) (ledger.WriteRequest, error) {
	if caller.IsZero() || !caller.Equal(offer.Offerer) {
		return ledger.WriteRequest{}, errors.WithStack(ErrNotAuthorized)
	}
	if !offer.Active {
		return ledger.WriteRequest{}, errors.WithStack(ErrOfferClosed)
	}
	return ledger.CancelOffer(caller, offer.ID, offer.TokenID), nil
}
