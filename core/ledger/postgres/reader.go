package postgres

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ticket-integrity/common/errs"
	"github.com/gaze-network/ticket-integrity/core/ledger"
	"github.com/gaze-network/ticket-integrity/core/types"
	"github.com/gaze-network/ticket-integrity/internal/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const (
	eventColumns      = `"id", "organizer", "name", "start_time", "end_time", "total_supply", "sold", "royalty_bps", "active", "image"`
	ticketTypeColumns = `"id", "event_id", "name", "price", "supply", "sold", "image"`
	ticketColumns     = `"token_id", "event_id", "ticket_type_id", "original_owner", "current_owner", "purchase_price", "purchase_chain", "used", "credential_hash"`
	listingColumns    = `"id", "token_id", "event_id", "seller", "price", "active", "created_at"`
	offerColumns      = `"id", "token_id", "offerer", "amount", "expires_at", "active", "created_at"`
	saleColumns       = `"listing_id", "token_id", "event_id", "seller", "buyer", "price", "royalty_paid", "sold_at"`
)

// queryOne runs a single-row query. No rows is [errs.NotFound].
func queryOne[T any](ctx context.Context, db postgres.Queryable, scan func(pgx.Row) (T, error), what string, sql string, args ...any) (*T, error) {
	v, err := scan(db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.Wrapf(errs.NotFound, "%s not found", what)
		}
		return nil, errors.Wrap(err, "error during query")
	}
	return &v, nil
}

func queryAll[T any](ctx context.Context, db postgres.Queryable, scan func(pgx.Row) (T, error), sql string, args ...any) ([]T, error) {
	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, errors.Wrap(err, "error during query")
	}
	defer rows.Close()

	result := make([]T, 0)
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		result = append(result, v)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error during rows iteration")
	}
	return result, nil
}

func (r *Repository) GetEvent(ctx context.Context, eventID uint64) (*types.Event, error) {
	return queryOne(ctx, r.db, scanEvent, "event",
		`SELECT `+eventColumns+` FROM "events" WHERE "id" = $1`, int64(eventID))
}

func (r *Repository) GetTicket(ctx context.Context, tokenID uint64) (*types.Ticket, error) {
	return queryOne(ctx, r.db, scanTicket, "ticket",
		`SELECT `+ticketColumns+` FROM "tickets" WHERE "token_id" = $1`, int64(tokenID))
}

func (r *Repository) GetTicketTypes(ctx context.Context, eventID uint64) ([]types.TicketType, error) {
	return queryAll(ctx, r.db, scanTicketType,
		`SELECT `+ticketTypeColumns+` FROM "ticket_types" WHERE "event_id" = $1 ORDER BY "id"`, int64(eventID))
}

func (r *Repository) GetListing(ctx context.Context, listingID uint64) (*types.Listing, error) {
	return queryOne(ctx, r.db, scanListing, "listing",
		`SELECT `+listingColumns+` FROM "listings" WHERE "id" = $1`, int64(listingID))
}

func (r *Repository) GetListingsByEvent(ctx context.Context, eventID uint64) ([]types.Listing, error) {
	return queryAll(ctx, r.db, scanListing,
		`SELECT `+listingColumns+` FROM "listings" WHERE "event_id" = $1 ORDER BY "id"`, int64(eventID))
}

func (r *Repository) GetListingsBySeller(ctx context.Context, seller types.Address) ([]types.Listing, error) {
	return queryAll(ctx, r.db, scanListing,
		`SELECT `+listingColumns+` FROM "listings" WHERE LOWER("seller") = $1 ORDER BY "id"`, seller.Normalize().String())
}

func (r *Repository) GetOffer(ctx context.Context, offerID uint64) (*types.Offer, error) {
	return queryOne(ctx, r.db, scanOffer, "offer",
		`SELECT `+offerColumns+` FROM "offers" WHERE "id" = $1`, int64(offerID))
}

func (r *Repository) GetOffers(ctx context.Context, tokenID uint64) ([]types.Offer, error) {
	return queryAll(ctx, r.db, scanOffer,
		`SELECT `+offerColumns+` FROM "offers" WHERE "token_id" = $1 ORDER BY "id"`, int64(tokenID))
}

func (r *Repository) GetUserOffers(ctx context.Context, address types.Address) ([]types.Offer, error) {
	return queryAll(ctx, r.db, scanOffer,
		`SELECT `+offerColumns+` FROM "offers" WHERE LOWER("offerer") = $1 ORDER BY "id"`, address.Normalize().String())
}

// GetSecondaryMarketStats returns zero stats for an event without resales.
func (r *Repository) GetSecondaryMarketStats(ctx context.Context, eventID uint64) (*types.SecondaryMarketStats, error) {
	var (
		count     int64
		royalties pgtype.Numeric
	)
	err := r.db.QueryRow(ctx, `SELECT "sales_count", "royalties_collected" FROM "market_stats" WHERE "event_id" = $1`, int64(eventID)).Scan(&count, &royalties)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &types.SecondaryMarketStats{}, nil
		}
		return nil, errors.Wrap(err, "error during query")
	}
	collected, err := uint128FromNumeric(royalties)
	if err != nil {
		return nil, errors.Wrap(err, "royalties collected")
	}
	return &types.SecondaryMarketStats{
		SalesCount:         uint64(count),
		RoyaltiesCollected: collected,
	}, nil
}

func (r *Repository) GetSales(ctx context.Context, filter ledger.SalesFilter) ([]types.Sale, error) {
	var seller *string
	if !filter.Seller.IsZero() {
		s := filter.Seller.Normalize().String()
		seller = &s
	}
	return queryAll(ctx, r.db, scanSale,
		`SELECT `+saleColumns+` FROM "sales"
		WHERE ($1::BIGINT = 0 OR "event_id" = $1) AND ($2::TEXT IS NULL OR LOWER("seller") = $2)
		ORDER BY "id"`, int64(filter.EventID), seller)
}
