package types

import (
	"time"

	"github.com/gaze-network/uint128"
)

// MaxRoyaltyBps is 100% expressed in basis points.
const MaxRoyaltyBps = 10_000

type Event struct {
	ID          uint64
	Organizer   Address
	Name        string
	StartTime   time.Time
	EndTime     time.Time
	TotalSupply uint64
	Sold        uint64
	RoyaltyBps  uint16
	Active      bool
	Image       *string
}

// TicketType is a price tier within an event.
type TicketType struct {
	ID      uint64
	EventID uint64
	Name    string
	Price   uint128.Uint128
	Supply  uint64
	Sold    uint64
	Image   *string
}

// SecondaryMarketStats is the ledger's own resale counter for an event.
type SecondaryMarketStats struct {
	SalesCount         uint64
	RoyaltiesCollected uint128.Uint128
}
