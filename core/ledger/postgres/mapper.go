package postgres

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ticket-integrity/core/types"
	"github.com/gaze-network/uint128"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// uint128FromNumeric reads a NUMERIC(39,0) amount. NULL is zero.
func uint128FromNumeric(src pgtype.Numeric) (uint128.Uint128, error) {
	if !src.Valid {
		return uint128.Zero, nil
	}
	bytes, err := src.MarshalJSON()
	if err != nil {
		return uint128.Zero, errors.WithStack(err)
	}
	result, err := uint128.FromString(string(bytes))
	if err != nil {
		return uint128.Zero, errors.WithStack(err)
	}
	return result, nil
}

func numericFromUint128(src uint128.Uint128) (pgtype.Numeric, error) {
	var result pgtype.Numeric
	if err := result.UnmarshalJSON([]byte(src.String())); err != nil {
		return pgtype.Numeric{}, errors.WithStack(err)
	}
	return result, nil
}

func stringPtrFromText(src pgtype.Text) *string {
	if !src.Valid {
		return nil
	}
	s := src.String
	return &s
}

func scanEvent(row pgx.Row) (types.Event, error) {
	var (
		event                 types.Event
		id, totalSupply, sold int64
		royaltyBps            int32
		organizer             string
		startTime, endTime    time.Time
		image                 pgtype.Text
	)
	if err := row.Scan(&id, &organizer, &event.Name, &startTime, &endTime, &totalSupply, &sold, &royaltyBps, &event.Active, &image); err != nil {
		return types.Event{}, errors.WithStack(err)
	}
	event.ID = uint64(id)
	event.Organizer = types.Address(organizer)
	event.StartTime = startTime.UTC()
	event.EndTime = endTime.UTC()
	event.TotalSupply = uint64(totalSupply)
	event.Sold = uint64(sold)
	event.RoyaltyBps = uint16(royaltyBps)
	event.Image = stringPtrFromText(image)
	return event, nil
}

func scanTicketType(row pgx.Row) (types.TicketType, error) {
	var (
		tt                        types.TicketType
		id, eventID, supply, sold int64
		price                     pgtype.Numeric
		image                     pgtype.Text
	)
	if err := row.Scan(&id, &eventID, &tt.Name, &price, &supply, &sold, &image); err != nil {
		return types.TicketType{}, errors.WithStack(err)
	}
	amount, err := uint128FromNumeric(price)
	if err != nil {
		return types.TicketType{}, errors.Wrapf(err, "ticket type %d price", id)
	}
	tt.ID = uint64(id)
	tt.EventID = uint64(eventID)
	tt.Price = amount
	tt.Supply = uint64(supply)
	tt.Sold = uint64(sold)
	tt.Image = stringPtrFromText(image)
	return tt, nil
}

func scanTicket(row pgx.Row) (types.Ticket, error) {
	var (
		ticket                         types.Ticket
		tokenID, eventID, ticketTypeID int64
		originalOwner, currentOwner    string
		price                          pgtype.Numeric
	)
	if err := row.Scan(&tokenID, &eventID, &ticketTypeID, &originalOwner, &currentOwner, &price, &ticket.PurchaseChain, &ticket.Used, &ticket.CredentialHash); err != nil {
		return types.Ticket{}, errors.WithStack(err)
	}
	amount, err := uint128FromNumeric(price)
	if err != nil {
		return types.Ticket{}, errors.Wrapf(err, "ticket %d purchase price", tokenID)
	}
	ticket.TokenID = uint64(tokenID)
	ticket.EventID = uint64(eventID)
	ticket.TicketTypeID = uint64(ticketTypeID)
	ticket.OriginalOwner = types.Address(originalOwner)
	ticket.CurrentOwner = types.Address(currentOwner)
	ticket.PurchasePrice = amount
	return ticket, nil
}

func scanListing(row pgx.Row) (types.Listing, error) {
	var (
		listing              types.Listing
		id, tokenID, eventID int64
		seller               string
		price                pgtype.Numeric
		createdAt            time.Time
	)
	if err := row.Scan(&id, &tokenID, &eventID, &seller, &price, &listing.Active, &createdAt); err != nil {
		return types.Listing{}, errors.WithStack(err)
	}
	amount, err := uint128FromNumeric(price)
	if err != nil {
		return types.Listing{}, errors.Wrapf(err, "listing %d price", id)
	}
	listing.ID = uint64(id)
	listing.TokenID = uint64(tokenID)
	listing.EventID = uint64(eventID)
	listing.Seller = types.Address(seller)
	listing.Price = amount
	listing.CreatedAt = createdAt.UTC()
	return listing, nil
}

func scanOffer(row pgx.Row) (types.Offer, error) {
	var (
		offer       types.Offer
		id, tokenID int64
		offerer     string
		amount      pgtype.Numeric
		createdAt   time.Time
	)
	if err := row.Scan(&id, &tokenID, &offerer, &amount, &offer.ExpiresAt, &offer.Active, &createdAt); err != nil {
		return types.Offer{}, errors.WithStack(err)
	}
	value, err := uint128FromNumeric(amount)
	if err != nil {
		return types.Offer{}, errors.Wrapf(err, "offer %d amount", id)
	}
	offer.ID = uint64(id)
	offer.TokenID = uint64(tokenID)
	offer.Offerer = types.Address(offerer)
	offer.Amount = value
	offer.CreatedAt = createdAt.UTC()
	return offer, nil
}

func scanSale(row pgx.Row) (types.Sale, error) {
	var (
		sale                        types.Sale
		listingID, tokenID, eventID int64
		seller, buyer               string
		price, royalty              pgtype.Numeric
		soldAt                      time.Time
	)
	if err := row.Scan(&listingID, &tokenID, &eventID, &seller, &buyer, &price, &royalty, &soldAt); err != nil {
		return types.Sale{}, errors.WithStack(err)
	}
	var err error
	if sale.Price, err = uint128FromNumeric(price); err != nil {
		return types.Sale{}, errors.Wrap(err, "sale price")
	}
	if sale.RoyaltyPaid, err = uint128FromNumeric(royalty); err != nil {
		return types.Sale{}, errors.Wrap(err, "sale royalty")
	}
	sale.ListingID = uint64(listingID)
	sale.TokenID = uint64(tokenID)
	sale.EventID = uint64(eventID)
	sale.Seller = types.Address(seller)
	sale.Buyer = types.Address(buyer)
	sale.SoldAt = soldAt.UTC()
	return sale, nil
}
