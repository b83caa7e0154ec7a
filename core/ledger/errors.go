package ledger

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ticket-integrity/common/errs"
)

// Rejection is the ledger's specific reason for refusing a write.
// Callers must surface it as-is; "already used" and "not organizer" drive different operator actions.
type Rejection string

func (r Rejection) Error() string {
	return string(r)
}

func (r Rejection) Code() string {
	return string(r)
}

const (
	ErrAlreadyUsed   = Rejection("AlreadyUsed")
	ErrNotOrganizer  = Rejection("NotOrganizer")
	ErrInvalidEvent  = Rejection("InvalidEvent")
	ErrNotOwner      = Rejection("NotOwner")
	ErrAlreadyListed = Rejection("AlreadyListed")
	ErrListingClosed = Rejection("ListingClosed")
	ErrOfferClosed   = Rejection("OfferClosed")
)

var rejections = map[string]Rejection{
	ErrAlreadyUsed.Code():   ErrAlreadyUsed,
	ErrNotOrganizer.Code():  ErrNotOrganizer,
	ErrInvalidEvent.Code():  ErrInvalidEvent,
	ErrNotOwner.Code():      ErrNotOwner,
	ErrAlreadyListed.Code(): ErrAlreadyListed,
	ErrListingClosed.Code(): ErrListingClosed,
	ErrOfferClosed.Code():   ErrOfferClosed,
}

// ParseRejection returns the Rejection for a wire code.
func ParseRejection(code string) (Rejection, bool) {
	r, ok := rejections[code]
	return r, ok
}

// AsRejection extracts the ledger rejection from err, if any.
func AsRejection(err error) (Rejection, bool) {
	var r Rejection
	if errors.As(err, &r) {
		return r, true
	}
	return "", false
}

// IsTransient reports whether err is a ledger fault the caller should retry
// (unreachable, timed out or abandoned) rather than treat as an answer.
func IsTransient(err error) bool {
	return errors.Is(err, errs.Unavailable) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled)
}
