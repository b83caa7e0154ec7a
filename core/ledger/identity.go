package ledger

import (
	"context"

	"github.com/gaze-network/ticket-integrity/core/types"
)

// IdentityResolver maps a signing identity (e.g. an account-abstraction executor or session key)
// to the account the ledger knows it as.
type IdentityResolver interface {
	Resolve(ctx context.Context, identity types.Address) (types.Address, error)
}

// DirectIdentity resolves every identity to itself.
type DirectIdentity struct{}

func (DirectIdentity) Resolve(_ context.Context, identity types.Address) (types.Address, error) {
	return identity, nil
}

// StaticIdentity resolves identities from a fixed executor -> account table.
// Identities that are not in the table resolve to themselves.
type StaticIdentity map[types.Address]types.Address

// NewStaticIdentity builds a StaticIdentity from a raw string table, e.g. from configuration.
func NewStaticIdentity(table map[string]string) StaticIdentity {
	s := make(StaticIdentity, len(table))
	for executor, account := range table {
		s[types.Address(executor).Normalize()] = types.Address(account)
	}
	return s
}

func (s StaticIdentity) Resolve(_ context.Context, identity types.Address) (types.Address, error) {
	if account, ok := s[identity.Normalize()]; ok {
		return account, nil
	}
	return identity, nil
}
