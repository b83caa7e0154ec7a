package ledger

import (
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ticket-integrity/common/errs"
	"github.com/gaze-network/ticket-integrity/core/types"
	"github.com/gaze-network/uint128"
	"github.com/google/uuid"
)

type WriteKind string

const (
	WriteMarkUsed      WriteKind = "mark_used"
	WriteCreateListing WriteKind = "create_listing"
	WriteCancelListing WriteKind = "cancel_listing"
	WriteAcceptOffer   WriteKind = "accept_offer"
	WriteCancelOffer   WriteKind = "cancel_offer"
)

// WriteRequest is a single ledger mutation issued on behalf of Caller.
// ID is an idempotency key; the ledger applies a request with the same ID at most once.
type WriteRequest struct {
	ID        string
	Kind      WriteKind
	Caller    types.Address
	EventID   uint64
	TokenID   uint64
	ListingID uint64
	OfferID   uint64
	Price     uint128.Uint128
}

func newRequest(kind WriteKind, caller types.Address) WriteRequest {
	return WriteRequest{
		ID:     uuid.NewString(),
		Kind:   kind,
		Caller: caller,
	}
}

// MarkUsed flips the ticket's used latch. Only the event organizer may issue it.
func MarkUsed(caller types.Address, eventID, tokenID uint64) WriteRequest {
	req := newRequest(WriteMarkUsed, caller)
	req.EventID = eventID
	req.TokenID = tokenID
	return req
}

// CreateListing escrows the ticket and lists it for sale at price.
func CreateListing(caller types.Address, tokenID uint64, price uint128.Uint128) WriteRequest {
	req := newRequest(WriteCreateListing, caller)
	req.TokenID = tokenID
	req.Price = price
	return req
}

func CancelListing(caller types.Address, listingID uint64) WriteRequest {
	req := newRequest(WriteCancelListing, caller)
	req.ListingID = listingID
	return req
}

func AcceptOffer(caller types.Address, offerID, tokenID uint64) WriteRequest {
	req := newRequest(WriteAcceptOffer, caller)
	req.OfferID = offerID
	req.TokenID = tokenID
	return req
}

func CancelOffer(caller types.Address, offerID, tokenID uint64) WriteRequest {
	req := newRequest(WriteCancelOffer, caller)
	req.OfferID = offerID
	req.TokenID = tokenID
	return req
}

// Validate checks the request is well formed before it is sent to the ledger.
func (r WriteRequest) Validate() error {
	var errList []error
	if r.ID == "" {
		errList = append(errList, errors.New("'id' is required"))
	}
	if r.Caller.IsZero() {
		errList = append(errList, errors.New("'caller' is required"))
	}
	switch r.Kind {
	case WriteMarkUsed:
		if r.EventID == 0 || r.TokenID == 0 {
			errList = append(errList, errors.New("'eventId' and 'tokenId' are required"))
		}
	case WriteCreateListing:
		if r.TokenID == 0 {
			errList = append(errList, errors.New("'tokenId' is required"))
		}
		if r.Price.IsZero() {
			errList = append(errList, errors.New("'price' must be greater than zero"))
		}
	case WriteCancelListing:
		if r.ListingID == 0 {
			errList = append(errList, errors.New("'listingId' is required"))
		}
	case WriteAcceptOffer, WriteCancelOffer:
		if r.OfferID == 0 {
			errList = append(errList, errors.New("'offerId' is required"))
		}
	default:
		errList = append(errList, errors.Errorf("unknown write kind %q", r.Kind))
	}
	if len(errList) > 0 {
		return errors.Wrapf(errs.InvalidArgument, "invalid %s request: %v", r.Kind, errors.Join(errList...))
	}
	return nil
}
