package types

import "strings"

// Address is an account identifier on the ledger (e.g. "0xAbC...").
// Addresses are compared case-insensitively; checksummed and lowercase forms are the same account.
type Address string

func (a Address) String() string {
	return string(a)
}

// Equal reports whether a and b are the same account.
func (a Address) Equal(b Address) bool {
	return strings.EqualFold(strings.TrimSpace(string(a)), strings.TrimSpace(string(b)))
}

// Normalize returns the canonical lowercase form of the address.
func (a Address) Normalize() Address {
	return Address(strings.ToLower(strings.TrimSpace(string(a))))
}

func (a Address) IsZero() bool {
	return strings.TrimSpace(string(a)) == ""
}
