package postgres

import (
	"context"
	"math/big"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ticket-integrity/common/errs"
	"github.com/gaze-network/ticket-integrity/core/ledger"
	"github.com/gaze-network/ticket-integrity/core/types"
	"github.com/gaze-network/ticket-integrity/pkg/logger"
	"github.com/gaze-network/ticket-integrity/pkg/logger/slogx"
	"github.com/gaze-network/uint128"
	"github.com/jackc/pgx/v5"
)

// Submit applies a write in its own transaction. Rows a write depends on are locked with
// SELECT ... FOR UPDATE so concurrent writes on the same ticket are serialized.
// A repeated request ID returns the original receipt.
func (r *Repository) Submit(ctx context.Context, req ledger.WriteRequest) (*ledger.Receipt, error) {
	if err := req.Validate(); err != nil {
		return nil, errors.WithStack(err)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to begin transaction")
	}
	// no-op once committed
	defer func() {
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
			logger.WarnContext(ctx, "Failed to rollback ledger write", slogx.String("requestId", req.ID), slogx.Error(rollbackErr))
		}
	}()

	if receipt, err := getReceipt(ctx, tx, req.ID); err == nil {
		return receipt, nil
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, errors.Wrap(err, "can't check write receipt")
	}

	receipt := &ledger.Receipt{
		RequestID:  req.ID,
		Kind:       req.Kind,
		AcceptedAt: r.now().UTC().Truncate(time.Microsecond),
	}
	switch req.Kind {
	case ledger.WriteMarkUsed:
		err = markUsed(ctx, tx, req)
	case ledger.WriteCreateListing:
		receipt.ListingID, err = createListing(ctx, tx, req, receipt.AcceptedAt)
	case ledger.WriteCancelListing:
		err = cancelListing(ctx, tx, req)
	case ledger.WriteAcceptOffer:
		err = acceptOffer(ctx, tx, req, receipt.AcceptedAt)
	case ledger.WriteCancelOffer:
		err = cancelOffer(ctx, tx, req)
	}
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `INSERT INTO "write_receipts" ("request_id", "kind", "listing_id", "accepted_at") VALUES ($1, $2, $3, $4)`,
		receipt.RequestID, string(receipt.Kind), int64(receipt.ListingID), receipt.AcceptedAt)
	if err != nil {
		return nil, errors.Wrap(err, "can't store write receipt")
	}
	if err = tx.Commit(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to commit transaction")
	}
	return receipt, nil
}

func getReceipt(ctx context.Context, tx pgx.Tx, requestID string) (*ledger.Receipt, error) {
	var (
		kind       string
		listingID  int64
		acceptedAt time.Time
	)
	err := tx.QueryRow(ctx, `SELECT "kind", "listing_id", "accepted_at" FROM "write_receipts" WHERE "request_id" = $1`, requestID).
		Scan(&kind, &listingID, &acceptedAt)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &ledger.Receipt{
		RequestID:  requestID,
		Kind:       ledger.WriteKind(kind),
		ListingID:  uint64(listingID),
		AcceptedAt: acceptedAt.UTC(),
	}, nil
}

func lockTicket(ctx context.Context, tx pgx.Tx, tokenID uint64) (*types.Ticket, error) {
	return queryOne(ctx, tx, scanTicket, "ticket",
		`SELECT `+ticketColumns+` FROM "tickets" WHERE "token_id" = $1 FOR UPDATE`, int64(tokenID))
}

func markUsed(ctx context.Context, tx pgx.Tx, req ledger.WriteRequest) error {
	ticket, err := lockTicket(ctx, tx, req.TokenID)
	if err != nil {
		return errors.WithStack(err)
	}
	event, err := queryOne(ctx, tx, scanEvent, "event", `SELECT `+eventColumns+` FROM "events" WHERE "id" = $1`, int64(req.EventID))
	if err != nil && !errors.Is(err, errs.NotFound) {
		return errors.WithStack(err)
	}
	if event == nil || ticket.EventID != req.EventID {
		return errors.WithStack(ledger.ErrInvalidEvent)
	}
	if !event.Organizer.Equal(req.Caller) {
		return errors.WithStack(ledger.ErrNotOrganizer)
	}

	// one-way latch: the row only changes while used is false
	tag, err := tx.Exec(ctx, `UPDATE "tickets" SET "used" = TRUE WHERE "token_id" = $1 AND "used" = FALSE`, int64(req.TokenID))
	if err != nil {
		return errors.Wrap(err, "can't mark ticket as used")
	}
	if tag.RowsAffected() == 0 {
		return errors.WithStack(ledger.ErrAlreadyUsed)
	}
	return nil
}

func activeListing(ctx context.Context, tx pgx.Tx, tokenID uint64) (*types.Listing, error) {
	listing, err := queryOne(ctx, tx, scanListing, "listing",
		`SELECT `+listingColumns+` FROM "listings" WHERE "token_id" = $1 AND "active" FOR UPDATE`, int64(tokenID))
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return nil, nil
		}
		return nil, errors.WithStack(err)
	}
	return listing, nil
}

func createListing(ctx context.Context, tx pgx.Tx, req ledger.WriteRequest, now time.Time) (uint64, error) {
	ticket, err := lockTicket(ctx, tx, req.TokenID)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	if !ticket.CurrentOwner.Equal(req.Caller) {
		return 0, errors.WithStack(ledger.ErrNotOwner)
	}
	listing, err := activeListing(ctx, tx, ticket.TokenID)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	if listing != nil {
		return 0, errors.WithStack(ledger.ErrAlreadyListed)
	}

	price, err := numericFromUint128(req.Price)
	if err != nil {
		return 0, errors.Wrap(err, "listing price")
	}
	var id int64
	err = tx.QueryRow(ctx, `INSERT INTO "listings" ("token_id", "event_id", "seller", "price", "active", "created_at")
		VALUES ($1, $2, $3, $4, TRUE, $5) RETURNING "id"`,
		int64(ticket.TokenID), int64(ticket.EventID), req.Caller.String(), price, now).Scan(&id)
	if err != nil {
		return 0, errors.Wrap(err, "can't insert listing")
	}
	return uint64(id), nil
}

func cancelListing(ctx context.Context, tx pgx.Tx, req ledger.WriteRequest) error {
	listing, err := queryOne(ctx, tx, scanListing, "listing",
		`SELECT `+listingColumns+` FROM "listings" WHERE "id" = $1 FOR UPDATE`, int64(req.ListingID))
	if err != nil {
		return errors.WithStack(err)
	}
	if !listing.Seller.Equal(req.Caller) {
		return errors.WithStack(ledger.ErrNotOwner)
	}
	if !listing.Active {
		return errors.WithStack(ledger.ErrListingClosed)
	}
	if _, err := tx.Exec(ctx, `UPDATE "listings" SET "active" = FALSE WHERE "id" = $1`, int64(listing.ID)); err != nil {
		return errors.Wrap(err, "can't cancel listing")
	}
	return nil
}

func acceptOffer(ctx context.Context, tx pgx.Tx, req ledger.WriteRequest, now time.Time) error {
	offer, err := queryOne(ctx, tx, scanOffer, "offer",
		`SELECT `+offerColumns+` FROM "offers" WHERE "id" = $1 FOR UPDATE`, int64(req.OfferID))
	if err != nil {
		return errors.WithStack(err)
	}
	if !offer.Active || (offer.HasExpiry() && offer.ExpiresAt <= now.Unix()) {
		return errors.WithStack(ledger.ErrOfferClosed)
	}
	ticket, err := lockTicket(ctx, tx, offer.TokenID)
	if err != nil {
		return errors.WithStack(err)
	}
	listing, err := activeListing(ctx, tx, ticket.TokenID)
	if err != nil {
		return errors.WithStack(err)
	}
	seller := ticket.CurrentOwner
	if listing != nil {
		seller = listing.Seller
	}
	if !seller.Equal(req.Caller) {
		return errors.WithStack(ledger.ErrNotOwner)
	}

	var royaltyBps uint16
	event, err := queryOne(ctx, tx, scanEvent, "event", `SELECT `+eventColumns+` FROM "events" WHERE "id" = $1`, int64(ticket.EventID))
	switch {
	case err == nil:
		royaltyBps = event.RoyaltyBps
	case !errors.Is(err, errs.NotFound):
		return errors.WithStack(err)
	}
	royalty := royaltyOf(offer.Amount, royaltyBps)

	var listingID uint64
	if listing != nil {
		listingID = listing.ID
		if _, err := tx.Exec(ctx, `UPDATE "listings" SET "active" = FALSE WHERE "id" = $1`, int64(listing.ID)); err != nil {
			return errors.Wrap(err, "can't close listing")
		}
	}
	if _, err := tx.Exec(ctx, `UPDATE "offers" SET "active" = FALSE WHERE "id" = $1`, int64(offer.ID)); err != nil {
		return errors.Wrap(err, "can't close offer")
	}
	if _, err := tx.Exec(ctx, `UPDATE "tickets" SET "current_owner" = $2 WHERE "token_id" = $1`, int64(ticket.TokenID), offer.Offerer.String()); err != nil {
		return errors.Wrap(err, "can't transfer ticket")
	}

	price, err := numericFromUint128(offer.Amount)
	if err != nil {
		return errors.Wrap(err, "sale price")
	}
	royaltyPaid, err := numericFromUint128(royalty)
	if err != nil {
		return errors.Wrap(err, "sale royalty")
	}
	_, err = tx.Exec(ctx, `INSERT INTO "sales" ("listing_id", "token_id", "event_id", "seller", "buyer", "price", "royalty_paid", "sold_at")
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		int64(listingID), int64(ticket.TokenID), int64(ticket.EventID), seller.String(), offer.Offerer.String(), price, royaltyPaid, now)
	if err != nil {
		return errors.Wrap(err, "can't insert sale")
	}
	_, err = tx.Exec(ctx, `INSERT INTO "market_stats" ("event_id", "sales_count", "royalties_collected") VALUES ($1, 1, $2)
		ON CONFLICT ("event_id") DO UPDATE SET
			"sales_count" = "market_stats"."sales_count" + 1,
			"royalties_collected" = "market_stats"."royalties_collected" + EXCLUDED."royalties_collected"`,
		int64(ticket.EventID), royaltyPaid)
	if err != nil {
		return errors.Wrap(err, "can't update market stats")
	}
	return nil
}

func cancelOffer(ctx context.Context, tx pgx.Tx, req ledger.WriteRequest) error {
	offer, err := queryOne(ctx, tx, scanOffer, "offer",
		`SELECT `+offerColumns+` FROM "offers" WHERE "id" = $1 FOR UPDATE`, int64(req.OfferID))
	if err != nil {
		return errors.WithStack(err)
	}
	if !offer.Offerer.Equal(req.Caller) {
		return errors.WithStack(ledger.ErrNotOwner)
	}
	if !offer.Active {
		return errors.WithStack(ledger.ErrOfferClosed)
	}
	if _, err := tx.Exec(ctx, `UPDATE "offers" SET "active" = FALSE WHERE "id" = $1`, int64(offer.ID)); err != nil {
		return errors.Wrap(err, "can't cancel offer")
	}
	return nil
}

// royaltyOf is amount * bps / 10000, truncated. It never exceeds amount.
func royaltyOf(amount uint128.Uint128, bps uint16) uint128.Uint128 {
	r := new(big.Int).Mul(amount.Big(), big.NewInt(int64(bps)))
	r.Quo(r, big.NewInt(types.MaxRoyaltyBps))
	u, err := uint128.FromBig(r)
	if err != nil {
		return uint128.Zero
	}
	return u
}
