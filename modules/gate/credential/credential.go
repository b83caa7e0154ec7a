// Package credential encodes and decodes the signed, time-boxed gate credential shown as a QR code.
//
// Wire format: Prefix followed by unpadded base64url of a CBOR map with integer keys
//
//	1 tokenId, 2 eventId, 3 owner, 4 contractId, 5 chainId, 6 issuedAt (unix seconds), 7 tag (lowercase hex)
//
// The tag is a keyed BLAKE3 MAC over the other fields in a fixed, length-delimited order,
// so it doesn't depend on how any serializer orders map keys.
package credential

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ticket-integrity/common/errs"
	"github.com/gaze-network/ticket-integrity/core/types"
	"github.com/gaze-network/ticket-integrity/pkg/clock"
	"github.com/zeebo/blake3"
)

const (
	// Prefix identifies the credential format version.
	Prefix = "tkc1."

	// ValidityWindow is how long a credential is accepted after issuance.
	ValidityWindow = 24 * time.Hour

	// MaxClockSkew is how far in the future issuedAt may be before the credential is refused.
	MaxClockSkew = 5 * time.Minute

	// KeySize is the size of the MAC key in bytes.
	KeySize = 32

	tagDomain = "ticket-integrity/credential/v1"
)

var encoding = base64.RawURLEncoding.Strict()

type Codec struct {
	key   [KeySize]byte
	clock clock.Clock
}

type Option func(*Codec)

func WithClock(c clock.Clock) Option {
	return func(codec *Codec) {
		codec.clock = c
	}
}

// New creates a codec with a KeySize bytes secret key.
func New(key []byte, opts ...Option) (*Codec, error) {
	if len(key) != KeySize {
		return nil, errors.Wrapf(errs.InvalidArgument, "credential key must be %d bytes, got %d", KeySize, len(key))
	}
	c := &Codec{clock: clock.Real()}
	copy(c.key[:], key)
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ParseKey decodes a hex encoded key.
func ParseKey(hexKey string) ([]byte, error) {
	key, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(hexKey), "0x"))
	if err != nil {
		return nil, errors.Wrap(errs.InvalidArgument, "credential key is not valid hex")
	}
	if len(key) != KeySize {
		return nil, errors.Wrapf(errs.InvalidArgument, "credential key must be %d bytes, got %d", KeySize, len(key))
	}
	return key, nil
}

// GenerateKey returns a new random key.
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, errors.Wrap(err, "can't read random bytes")
	}
	return key, nil
}

// Encode builds a signed credential string. issuedAt is truncated to seconds.
func (c *Codec) Encode(tokenID, eventID uint64, owner types.Address, contractID string, chainID uint64, issuedAt time.Time) (string, error) {
	cred := types.Credential{
		TokenID:    tokenID,
		EventID:    eventID,
		Owner:      owner,
		ContractID: contractID,
		ChainID:    chainID,
		IssuedAt:   issuedAt.Truncate(time.Second),
	}
	if err := validate(cred); err != nil {
		return "", errors.Wrap(errs.InvalidArgument, err.Error())
	}
	cred.Tag = c.tag(cred)
	return marshal(cred)
}

// Decode parses and verifies a credential string against the current time.
func (c *Codec) Decode(s string) (types.Credential, error) {
	return c.DecodeAt(s, c.clock.Now())
}

// DecodeAt parses and verifies a credential string as of now.
func (c *Codec) DecodeAt(s string, now time.Time) (types.Credential, error) {
	cred, err := Inspect(s)
	if err != nil {
		return types.Credential{}, err
	}

	expected := c.tag(cred)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(cred.Tag)) != 1 {
		return types.Credential{}, errors.WithStack(ErrSignatureMismatch)
	}

	if cred.IssuedAt.After(now.Add(MaxClockSkew)) {
		return types.Credential{}, errors.Wrap(ErrMalformedPayload, "issued in the future")
	}
	if now.Sub(cred.IssuedAt) > ValidityWindow {
		return types.Credential{}, errors.WithStack(ErrExpired)
	}
	return cred, nil
}

// ExpiresAt returns the last instant the credential is accepted.
func ExpiresAt(cred types.Credential) time.Time {
	return cred.IssuedAt.Add(ValidityWindow)
}

// Inspect parses a credential string without verifying the tag or the validity window.
// It's meant for diagnostics only; never admit entry on an inspected credential.
func Inspect(s string) (types.Credential, error) {
	raw, ok := strings.CutPrefix(strings.TrimSpace(s), Prefix)
	if !ok {
		return types.Credential{}, errors.Wrap(ErrMalformedPayload, "unknown credential prefix")
	}
	data, err := encoding.DecodeString(raw)
	if err != nil {
		return types.Credential{}, errors.Wrap(ErrMalformedPayload, "invalid base64")
	}

	var p decodedPayload
	if err := decMode.Unmarshal(data, &p); err != nil {
		return types.Credential{}, errors.Wrapf(ErrMalformedPayload, "invalid payload: %v", err)
	}
	if p.TokenID == nil || p.EventID == nil || p.Owner == nil || p.ContractID == nil ||
		p.ChainID == nil || p.IssuedAt == nil || p.Tag == nil {
		return types.Credential{}, errors.Wrap(ErrMalformedPayload, "missing field")
	}

	cred := types.Credential{
		TokenID:    *p.TokenID,
		EventID:    *p.EventID,
		Owner:      types.Address(*p.Owner),
		ContractID: *p.ContractID,
		ChainID:    *p.ChainID,
		IssuedAt:   time.Unix(*p.IssuedAt, 0).UTC(),
		Tag:        *p.Tag,
	}
	if err := validate(cred); err != nil {
		return types.Credential{}, errors.Wrap(ErrMalformedPayload, err.Error())
	}
	return cred, nil
}

func validate(cred types.Credential) error {
	var errList []error
	// token ids start at 1 on the ledger, 0 is never minted
	if cred.TokenID == 0 {
		errList = append(errList, errors.New("'tokenId' is required"))
	}
	if cred.EventID == 0 {
		errList = append(errList, errors.New("'eventId' is required"))
	}
	if cred.Owner.IsZero() {
		errList = append(errList, errors.New("'owner' is required"))
	}
	if cred.ContractID == "" {
		errList = append(errList, errors.New("'contractId' is required"))
	}
	if cred.IssuedAt.Unix() <= 0 {
		errList = append(errList, errors.New("'issuedAt' is required"))
	}
	return errors.Join(errList...)
}

func marshal(cred types.Credential) (string, error) {
	data, err := encMode.Marshal(payload{
		TokenID:    cred.TokenID,
		EventID:    cred.EventID,
		Owner:      cred.Owner.String(),
		ContractID: cred.ContractID,
		ChainID:    cred.ChainID,
		IssuedAt:   cred.IssuedAt.Unix(),
		Tag:        cred.Tag,
	})
	if err != nil {
		return "", errors.Wrap(err, "can't encode credential")
	}
	return Prefix + encoding.EncodeToString(data), nil
}

// tag computes the lowercase hex MAC over all fields except the tag itself. Owner and contract
// are hashed lowercased, hex addresses differ only in checksum casing. Each field is written as "<len>:<value>," so no two field sets produce the same input.
func (c *Codec) tag(cred types.Credential) string {
	h, err := blake3.NewKeyed(c.key[:])
	if err != nil {
		// key length is checked in New
		panic("credential: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	for _, field := range []string{
		tagDomain,
		strconv.FormatUint(cred.TokenID, 10),
		strconv.FormatUint(cred.EventID, 10),
		strings.ToLower(cred.Owner.String()),
		strings.ToLower(cred.ContractID),
		strconv.FormatUint(cred.ChainID, 10),
		strconv.FormatInt(cred.IssuedAt.Unix(), 10),
	} {
		_, _ = h.Write([]byte(strconv.Itoa(len(field)) + ":" + field + ","))
	}
	return hex.EncodeToString(h.Sum(nil))
}
