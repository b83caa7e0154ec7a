package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ticket-integrity/common/errs"
	"github.com/gaze-network/ticket-integrity/core/ledger"
	"github.com/gaze-network/ticket-integrity/modules/marketplace/offers"
)

const defaultMaxBatchSize = 100

type HttpHandler struct {
	manager      *offers.Manager
	maxBatchSize int
}

func New(manager *offers.Manager, maxBatchSize int) *HttpHandler {
	if maxBatchSize <= 0 {
		maxBatchSize = defaultMaxBatchSize
	}
	return &HttpHandler{
		manager:      manager,
		maxBatchSize: maxBatchSize,
	}
}

type offer struct {
	Id        uint64       `json:"id"`
	TokenId   uint64       `json:"tokenId"`
	Offerer   string       `json:"offerer"`
	Amount    string       `json:"amount"`    // decimal string, base units
	ExpiresAt *int64       `json:"expiresAt"` // unix timestamp, null if the offer never expires
	State     offers.State `json:"state"`
	CreatedAt int64        `json:"createdAt"` // unix timestamp
}

func mapOffers(views []offers.OfferView) []offer {
	result := make([]offer, 0, len(views))
	for _, v := range views {
		o := offer{
			Id:        v.ID,
			TokenId:   v.TokenID,
			Offerer:   v.Offerer.String(),
			Amount:    v.Amount.String(),
			State:     v.State,
			CreatedAt: v.CreatedAt.Unix(),
		}
		if v.HasExpiry() {
			expiresAt := v.ExpiresAt
			o.ExpiresAt = &expiresAt
		}
		result = append(result, o)
	}
	return result
}

type receipt struct {
	RequestId  string `json:"requestId"`
	ListingId  uint64 `json:"listingId,omitempty"`
	AcceptedAt int64  `json:"acceptedAt"` // unix timestamp
}

func mapReceipt(r *ledger.Receipt) receipt {
	return receipt{
		RequestId:  r.RequestID,
		ListingId:  r.ListingID,
		AcceptedAt: r.AcceptedAt.Unix(),
	}
}

type itemResult struct {
	Id      uint64   `json:"id"`
	Ok      bool     `json:"ok"`
	Receipt *receipt `json:"receipt,omitempty"`
	Error   string   `json:"error,omitempty"`
	Code    string   `json:"code,omitempty"`
}

func mapItemResults(results []offers.ItemResult) []itemResult {
	out := make([]itemResult, 0, len(results))
	for _, r := range results {
		item := itemResult{Id: r.ID, Ok: r.Err == nil}
		if r.Err != nil {
			item.Code, item.Error = errorCode(r.Err)
		} else if r.Receipt != nil {
			rc := mapReceipt(r.Receipt)
			item.Receipt = &rc
		}
		out = append(out, item)
	}
	return out
}

// errorCode reduces an item failure to a code and message that's safe to show to the caller.
func errorCode(err error) (code string, message string) {
	if rejection, ok := ledger.AsRejection(err); ok {
		return rejection.Code(), rejection.Error()
	}
	var offerErr offers.Error
	if errors.As(err, &offerErr) {
		return string(offerErr), string(offerErr)
	}
	switch {
	case errors.Is(err, errs.NotFound):
		return "NotFound", "not found"
	case errors.Is(err, errs.InvalidArgument):
		return "InvalidArgument", "invalid request"
	case ledger.IsTransient(err):
		return "Unavailable", "ledger unavailable, retry later"
	}
	return "Internal", "internal error"
}

// publicOfferError exposes offer rule violations to the caller.
func publicOfferError(err error) error {
	var offerErr offers.Error
	if errors.As(err, &offerErr) {
		return errs.NewPublicErrorWithCode(offerErr.Error(), offerErr.Error())
	}
	if errors.Is(err, errs.NotFound) {
		return errors.Mark(errs.NewPublicError("offer not found"), errs.NotFound)
	}
	return err
}
