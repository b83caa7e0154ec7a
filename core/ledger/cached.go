package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fxamacker/cbor/v2"
	"github.com/gaze-network/ticket-integrity/core/types"
	"github.com/gaze-network/ticket-integrity/pkg/cache"
	"github.com/gaze-network/ticket-integrity/pkg/logger"
	"github.com/gaze-network/ticket-integrity/pkg/logger/slogx"
)

var _ Reader = (*CachedReader)(nil)

// CachedReader serves slowly changing ledger reads from a cache.
//
// Ticket, offer and single listing reads always go to the ledger: the gate relies on reading
// its own "mark used" write, and offer state changes too often to be cached.
type CachedReader struct {
	Reader
	cache cache.Cache
	ttl   time.Duration
}

// NewCachedReader wraps reader. A nil cache disables caching.
func NewCachedReader(reader Reader, c cache.Cache, ttl time.Duration) Reader {
	if c == nil {
		return reader
	}
	if ttl <= 0 {
		ttl = cache.DefaultTTL
	}
	return &CachedReader{Reader: reader, cache: c, ttl: ttl}
}

// ReadThrough strips the cache layer from reader. Reads that decide whether a write is
// authorized must see the ledger's current state.
func ReadThrough(reader Reader) Reader {
	if c, ok := reader.(*CachedReader); ok {
		return c.Reader
	}
	return reader
}

func cached[T any](ctx context.Context, r *CachedReader, key string, fetch func() (T, error)) (T, error) {
	if raw, err := r.cache.Get(ctx, key); err == nil {
		var value T
		if err := cbor.Unmarshal(raw, &value); err == nil {
			return value, nil
		}
		logger.WarnContext(ctx, "Dropping undecodable ledger cache entry", slogx.String("key", key))
	} else if !errors.Is(err, cache.ErrMiss) {
		logger.WarnContext(ctx, "Ledger cache read failed, fallback to ledger", slogx.String("key", key), slogx.Error(err))
	}

	value, err := fetch()
	if err != nil {
		var zero T
		return zero, err
	}

	raw, err := cbor.Marshal(value)
	if err != nil {
		logger.WarnContext(ctx, "Can't encode ledger cache entry", slogx.String("key", key), slogx.Error(err))
		return value, nil
	}
	if err := r.cache.Set(ctx, key, raw, r.ttl); err != nil {
		logger.WarnContext(ctx, "Ledger cache write failed", slogx.String("key", key), slogx.Error(err))
	}
	return value, nil
}

func (r *CachedReader) GetEvent(ctx context.Context, eventID uint64) (*types.Event, error) {
	return cached(ctx, r, fmt.Sprintf("event:%d", eventID), func() (*types.Event, error) {
		return r.Reader.GetEvent(ctx, eventID)
	})
}

func (r *CachedReader) GetTicketTypes(ctx context.Context, eventID uint64) ([]types.TicketType, error) {
	return cached(ctx, r, fmt.Sprintf("ticket_types:%d", eventID), func() ([]types.TicketType, error) {
		return r.Reader.GetTicketTypes(ctx, eventID)
	})
}

func (r *CachedReader) GetListingsByEvent(ctx context.Context, eventID uint64) ([]types.Listing, error) {
	return cached(ctx, r, fmt.Sprintf("listings:event:%d", eventID), func() ([]types.Listing, error) {
		return r.Reader.GetListingsByEvent(ctx, eventID)
	})
}

func (r *CachedReader) GetListingsBySeller(ctx context.Context, seller types.Address) ([]types.Listing, error) {
	return cached(ctx, r, "listings:seller:"+seller.Normalize().String(), func() ([]types.Listing, error) {
		return r.Reader.GetListingsBySeller(ctx, seller)
	})
}

func (r *CachedReader) GetSecondaryMarketStats(ctx context.Context, eventID uint64) (*types.SecondaryMarketStats, error) {
	return cached(ctx, r, fmt.Sprintf("secondary_stats:%d", eventID), func() (*types.SecondaryMarketStats, error) {
		return r.Reader.GetSecondaryMarketStats(ctx, eventID)
	})
}

func (r *CachedReader) GetSales(ctx context.Context, filter SalesFilter) ([]types.Sale, error) {
	key := fmt.Sprintf("sales:%d:%s", filter.EventID, filter.Seller.Normalize())
	return cached(ctx, r, key, func() ([]types.Sale, error) {
		return r.Reader.GetSales(ctx, filter)
	})
}
