package datasources

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ticket-integrity/core/ledger"
	"github.com/gaze-network/ticket-integrity/core/types"
	"github.com/gaze-network/uint128"
)

// Wire types of the ledger gateway API. Amounts are decimal strings in base units and
// timestamps are unix seconds.

type gatewayError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type eventDTO struct {
	Id          uint64  `json:"id"`
	Organizer   string  `json:"organizer"`
	Name        string  `json:"name"`
	StartTime   int64   `json:"startTime"`
	EndTime     int64   `json:"endTime"`
	TotalSupply uint64  `json:"totalSupply"`
	Sold        uint64  `json:"sold"`
	RoyaltyBps  uint16  `json:"royaltyBps"`
	Active      bool    `json:"active"`
	Image       *string `json:"image"`
}

func (e eventDTO) toType() (*types.Event, error) {
	if e.RoyaltyBps > types.MaxRoyaltyBps {
		return nil, errors.Errorf("event %d royalty %d bps exceeds %d", e.Id, e.RoyaltyBps, types.MaxRoyaltyBps)
	}
	return &types.Event{
		ID:          e.Id,
		Organizer:   types.Address(e.Organizer),
		Name:        e.Name,
		StartTime:   time.Unix(e.StartTime, 0).UTC(),
		EndTime:     time.Unix(e.EndTime, 0).UTC(),
		TotalSupply: e.TotalSupply,
		Sold:        e.Sold,
		RoyaltyBps:  e.RoyaltyBps,
		Active:      e.Active,
		Image:       e.Image,
	}, nil
}

type ticketTypeDTO struct {
	Id      uint64  `json:"id"`
	EventId uint64  `json:"eventId"`
	Name    string  `json:"name"`
	Price   string  `json:"price"`
	Supply  uint64  `json:"supply"`
	Sold    uint64  `json:"sold"`
	Image   *string `json:"image"`
}

func (t ticketTypeDTO) toType() (types.TicketType, error) {
	price, err := parseAmount(t.Price)
	if err != nil {
		return types.TicketType{}, errors.Wrapf(err, "ticket type %d price", t.Id)
	}
	return types.TicketType{
		ID:      t.Id,
		EventID: t.EventId,
		Name:    t.Name,
		Price:   price,
		Supply:  t.Supply,
		Sold:    t.Sold,
		Image:   t.Image,
	}, nil
}

type ticketDTO struct {
	TokenId        uint64 `json:"tokenId"`
	EventId        uint64 `json:"eventId"`
	TicketTypeId   uint64 `json:"ticketTypeId"`
	OriginalOwner  string `json:"originalOwner"`
	CurrentOwner   string `json:"currentOwner"`
	PurchasePrice  string `json:"purchasePrice"`
	PurchaseChain  string `json:"purchaseChain"`
	Used           bool   `json:"used"`
	CredentialHash string `json:"credentialHash"`
}

func (t ticketDTO) toType() (*types.Ticket, error) {
	price, err := parseAmount(t.PurchasePrice)
	if err != nil {
		return nil, errors.Wrapf(err, "ticket %d purchase price", t.TokenId)
	}
	return &types.Ticket{
		TokenID:        t.TokenId,
		EventID:        t.EventId,
		TicketTypeID:   t.TicketTypeId,
		OriginalOwner:  types.Address(t.OriginalOwner),
		CurrentOwner:   types.Address(t.CurrentOwner),
		PurchasePrice:  price,
		PurchaseChain:  t.PurchaseChain,
		Used:           t.Used,
		CredentialHash: t.CredentialHash,
	}, nil
}

type listingDTO struct {
	Id        uint64 `json:"id"`
	TokenId   uint64 `json:"tokenId"`
	EventId   uint64 `json:"eventId"`
	Seller    string `json:"seller"`
	Price     string `json:"price"`
	Active    bool   `json:"active"`
	CreatedAt int64  `json:"createdAt"`
}

func (l listingDTO) toType() (types.Listing, error) {
	price, err := parseAmount(l.Price)
	if err != nil {
		return types.Listing{}, errors.Wrapf(err, "listing %d price", l.Id)
	}
	return types.Listing{
		ID:        l.Id,
		TokenID:   l.TokenId,
		EventID:   l.EventId,
		Seller:    types.Address(l.Seller),
		Price:     price,
		Active:    l.Active,
		CreatedAt: time.Unix(l.CreatedAt, 0).UTC(),
	}, nil
}

type offerDTO struct {
	Id        uint64 `json:"id"`
	TokenId   uint64 `json:"tokenId"`
	Offerer   string `json:"offerer"`
	Amount    string `json:"amount"`
	ExpiresAt int64  `json:"expiresAt"`
	Active    bool   `json:"active"`
	CreatedAt int64  `json:"createdAt"`
}

func (o offerDTO) toType() (types.Offer, error) {
	amount, err := parseAmount(o.Amount)
	if err != nil {
		return types.Offer{}, errors.Wrapf(err, "offer %d amount", o.Id)
	}
	return types.Offer{
		ID:        o.Id,
		TokenID:   o.TokenId,
		Offerer:   types.Address(o.Offerer),
		Amount:    amount,
		ExpiresAt: o.ExpiresAt,
		Active:    o.Active,
		CreatedAt: time.Unix(o.CreatedAt, 0).UTC(),
	}, nil
}

type saleDTO struct {
	ListingId   uint64 `json:"listingId"`
	TokenId     uint64 `json:"tokenId"`
	EventId     uint64 `json:"eventId"`
	Seller      string `json:"seller"`
	Buyer       string `json:"buyer"`
	Price       string `json:"price"`
	RoyaltyPaid string `json:"royaltyPaid"`
	SoldAt      int64  `json:"soldAt"`
}

func (s saleDTO) toType() (types.Sale, error) {
	price, err := parseAmount(s.Price)
	if err != nil {
		return types.Sale{}, errors.Wrapf(err, "sale of listing %d price", s.ListingId)
	}
	royalty, err := parseAmount(s.RoyaltyPaid)
	if err != nil {
		return types.Sale{}, errors.Wrapf(err, "sale of listing %d royalty", s.ListingId)
	}
	return types.Sale{
		ListingID:   s.ListingId,
		TokenID:     s.TokenId,
		EventID:     s.EventId,
		Seller:      types.Address(s.Seller),
		Buyer:       types.Address(s.Buyer),
		Price:       price,
		RoyaltyPaid: royalty,
		SoldAt:      time.Unix(s.SoldAt, 0).UTC(),
	}, nil
}

type marketStatsDTO struct {
	SalesCount         uint64 `json:"salesCount"`
	RoyaltiesCollected string `json:"royaltiesCollected"`
}

func (m marketStatsDTO) toType() (*types.SecondaryMarketStats, error) {
	royalties, err := parseAmount(m.RoyaltiesCollected)
	if err != nil {
		return nil, errors.Wrap(err, "royalties collected")
	}
	return &types.SecondaryMarketStats{
		SalesCount:         m.SalesCount,
		RoyaltiesCollected: royalties,
	}, nil
}

type writeRequestDTO struct {
	Id        string `json:"id"`
	Kind      string `json:"kind"`
	Caller    string `json:"caller"`
	EventId   uint64 `json:"eventId,omitempty"`
	TokenId   uint64 `json:"tokenId,omitempty"`
	ListingId uint64 `json:"listingId,omitempty"`
	OfferId   uint64 `json:"offerId,omitempty"`
	Price     string `json:"price,omitempty"`
}

func newWriteRequestDTO(req ledger.WriteRequest) writeRequestDTO {
	dto := writeRequestDTO{
		Id:        req.ID,
		Kind:      string(req.Kind),
		Caller:    req.Caller.String(),
		EventId:   req.EventID,
		TokenId:   req.TokenID,
		ListingId: req.ListingID,
		OfferId:   req.OfferID,
	}
	if !req.Price.IsZero() {
		dto.Price = req.Price.String()
	}
	return dto
}

type receiptDTO struct {
	RequestId  string `json:"requestId"`
	Kind       string `json:"kind"`
	ListingId  uint64 `json:"listingId"`
	AcceptedAt int64  `json:"acceptedAt"`
}

func (r receiptDTO) toType() *ledger.Receipt {
	return &ledger.Receipt{
		RequestID:  r.RequestId,
		Kind:       ledger.WriteKind(r.Kind),
		ListingID:  r.ListingId,
		AcceptedAt: time.Unix(r.AcceptedAt, 0).UTC(),
	}
}

func parseAmount(s string) (uint128.Uint128, error) {
	if s == "" {
		return uint128.Zero, nil
	}
	v, err := uint128.FromString(s)
	if err != nil {
		return uint128.Zero, errors.Wrapf(err, "invalid amount %q", s)
	}
	return v, nil
}

// mapAll converts a list of wire items, failing on the first bad one.
func mapAll[D any, T any](items []D, convert func(D) (T, error)) ([]T, error) {
	result := make([]T, 0, len(items))
	for _, item := range items {
		v, err := convert(item)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		result = append(result, v)
	}
	return result, nil
}

