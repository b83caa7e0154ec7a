package aggregator

import (
	"math/big"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ticket-integrity/common/errs"
	"github.com/gaze-network/uint128"
)

// sum accumulates amounts in arbitrary precision; only the final result must fit in 128 bits.
type sum struct {
	v big.Int
}

func (s *sum) Add(amount uint128.Uint128) {
	s.v.Add(&s.v, amount.Big())
}

func (s *sum) Amount() (uint128.Uint128, error) {
	return toAmount(&s.v)
}

func toAmount(v *big.Int) (uint128.Uint128, error) {
	u, err := uint128.FromBig(v)
	if err != nil {
		return uint128.Zero, errors.Wrap(errs.OverflowUint128, v.String())
	}
	return u, nil
}

func mul64(amount uint128.Uint128, n uint64) (uint128.Uint128, error) {
	v := new(big.Int).Mul(amount.Big(), new(big.Int).SetUint64(n))
	return toAmount(v)
}
