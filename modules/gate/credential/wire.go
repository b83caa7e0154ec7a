package credential

import (
	"github.com/fxamacker/cbor/v2"
	"github.com/gaze-network/ticket-integrity/pkg/logger"
)

// payload is the CBOR map carried in the credential string. Integer keys keep the QR code small.
type payload struct {
	TokenID    uint64 `cbor:"1,keyasint"`
	EventID    uint64 `cbor:"2,keyasint"`
	Owner      string `cbor:"3,keyasint"`
	ContractID string `cbor:"4,keyasint"`
	ChainID    uint64 `cbor:"5,keyasint"`
	IssuedAt   int64  `cbor:"6,keyasint"`
	Tag        string `cbor:"7,keyasint"`
}

// decodedPayload mirrors payload with optional fields to tell missing from zero.
type decodedPayload struct {
	TokenID    *uint64 `cbor:"1,keyasint"`
	EventID    *uint64 `cbor:"2,keyasint"`
	Owner      *string `cbor:"3,keyasint"`
	ContractID *string `cbor:"4,keyasint"`
	ChainID    *uint64 `cbor:"5,keyasint"`
	IssuedAt   *int64  `cbor:"6,keyasint"`
	Tag        *string `cbor:"7,keyasint"`
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error

	// Core Deterministic Encoding: same credential always produces the same bytes.
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		logger.Panic("credential: CBOR encoder initialization failed", "error", err)
	}

	decMode, err = cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyEnforcedAPF,
		ExtraReturnErrors: cbor.ExtraDecErrorUnknownField,
		IndefLength:       cbor.IndefLengthForbidden,
	}.DecMode()
	if err != nil {
		logger.Panic("credential: CBOR decoder initialization failed", "error", err)
	}
}
