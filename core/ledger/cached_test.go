package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/gaze-network/ticket-integrity/core/ledger"
	"github.com/gaze-network/ticket-integrity/core/ledger/memory"
	"github.com/gaze-network/ticket-integrity/core/types"
	"github.com/gaze-network/ticket-integrity/pkg/cache"
	"github.com/gaze-network/uint128"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachedReader(t *testing.T) {
	ctx := context.Background()
	backend := memory.New()
	backend.PutEvent(types.Event{ID: 1, Organizer: "0xorg", Name: "Concert"})
	backend.PutTicketType(types.TicketType{ID: 10, EventID: 1, Price: uint128.From64(5), Supply: 10, Sold: 2})
	backend.PutTicket(types.Ticket{TokenID: 7, EventID: 1, CurrentOwner: "0xholder"})

	store := cache.NewMemory()
	reader := ledger.NewCachedReader(backend, store, time.Minute)

	event, err := reader.GetEvent(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Concert", event.Name)

	tiers, err := reader.GetTicketTypes(ctx, 1)
	require.NoError(t, err)
	require.Len(t, tiers, 1)

	// ledger changes are not visible until the entry expires
	backend.PutEvent(types.Event{ID: 1, Organizer: "0xorg", Name: "Renamed"})
	backend.PutTicketType(types.TicketType{ID: 11, EventID: 1})
	event, err = reader.GetEvent(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Concert", event.Name)
	tiers, err = reader.GetTicketTypes(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, tiers, 1)
	assert.Equal(t, uint128.From64(5), tiers[0].Price)

	// tickets are always read through
	backend.PutTicket(types.Ticket{TokenID: 7, EventID: 1, CurrentOwner: "0xholder", Used: true})
	ticket, err := reader.GetTicket(ctx, 7)
	require.NoError(t, err)
	assert.True(t, ticket.Used)

	// errors are not cached
	_, err = reader.GetEvent(ctx, 2)
	require.Error(t, err)
	backend.PutEvent(types.Event{ID: 2, Name: "Late"})
	event, err = reader.GetEvent(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Late", event.Name)
}

func TestCachedReaderDisabled(t *testing.T) {
	backend := memory.New()
	assert.Same(t, ledger.Reader(backend), ledger.NewCachedReader(backend, nil, time.Minute))
}

func TestReadThrough(t *testing.T) {
	backend := memory.New()
	cachedReader := ledger.NewCachedReader(backend, cache.NewMemory(), time.Minute)
	assert.Same(t, ledger.Reader(backend), ledger.ReadThrough(cachedReader))
	assert.Same(t, ledger.Reader(backend), ledger.ReadThrough(backend))
}
