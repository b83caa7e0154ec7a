package usecase

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ticket-integrity/core/types"
	"github.com/gaze-network/ticket-integrity/internal/metrics"
	"github.com/gaze-network/ticket-integrity/modules/gate/credential"
	"github.com/gaze-network/ticket-integrity/modules/gate/verifier"
	"github.com/gaze-network/ticket-integrity/pkg/logger"
	"github.com/gaze-network/ticket-integrity/pkg/logger/slogx"
)

// Scan decodes a presented credential and verifies it against the ledger.
// eventID is the event the gate admits to; 0 trusts the event the credential claims.
// Scan never writes to the ledger.
func (u *Usecase) Scan(ctx context.Context, raw string, scanner types.Address, eventID uint64) verifier.Verdict {
	verdict := u.scan(ctx, raw, scanner, eventID)
	metrics.ObserveVerdict(string(verdict.Status), string(verdict.Reason))
	logger.InfoContext(ctx, "Credential scanned",
		slogx.String("event", "gate_scan"),
		slogx.String("status", string(verdict.Status)),
		slogx.String("reason", string(verdict.Reason)),
		slogx.Uint64("tokenId", verdict.TokenID),
		slogx.Uint64("eventId", verdict.EventID),
		slogx.Stringer("scanner", scanner),
	)
	return verdict
}

func (u *Usecase) scan(ctx context.Context, raw string, scanner types.Address, eventID uint64) verifier.Verdict {
	cred, err := u.codec.DecodeAt(raw, u.clock.Now())
	if err != nil {
		logger.DebugContext(ctx, "Credential refused", slogx.Error(err))
		return verifier.Rejected(verifier.StatusError, decodeReason(err))
	}
	if !strings.EqualFold(cred.ContractID, u.deployment.ContractID) || cred.ChainID != u.deployment.ChainID {
		verdict := verifier.Rejected(verifier.StatusError, verifier.ReasonForeignCredential)
		verdict.TokenID = cred.TokenID
		verdict.EventID = cred.EventID
		return verdict
	}
	return u.verifier.Verify(ctx, cred, scanner, eventID)
}

func decodeReason(err error) verifier.Reason {
	switch {
	case errors.Is(err, credential.ErrSignatureMismatch):
		return verifier.ReasonSignatureMismatch
	case errors.Is(err, credential.ErrExpired):
		return verifier.ReasonExpired
	default:
		return verifier.ReasonMalformedPayload
	}
}
