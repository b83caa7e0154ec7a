package types

import "time"

// Credential binds a ticket to its holder for a limited time. It's the content of the gate QR code.
type Credential struct {
	TokenID    uint64
	EventID    uint64
	Owner      Address
	ContractID string
	ChainID    uint64
	IssuedAt   time.Time

	// Tag is the hex encoded integrity tag over all other fields.
	Tag string
}
