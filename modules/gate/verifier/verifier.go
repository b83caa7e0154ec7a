// Package verifier decides whether a decoded gate credential admits entry.
package verifier

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ticket-integrity/common/errs"
	"github.com/gaze-network/ticket-integrity/core/ledger"
	"github.com/gaze-network/ticket-integrity/core/types"
	"github.com/gaze-network/ticket-integrity/pkg/logger"
	"github.com/gaze-network/ticket-integrity/pkg/logger/slogx"
)

type Verifier struct {
	reader   ledger.Reader
	identity ledger.IdentityResolver
}

func New(reader ledger.Reader, identity ledger.IdentityResolver) *Verifier {
	if identity == nil {
		identity = ledger.DirectIdentity{}
	}
	return &Verifier{
		reader:   reader,
		identity: identity,
	}
}

// Verify reads the ticket and event from the ledger and evaluates the credential.
// eventID is the event being admitted to; 0 means the event the credential claims.
//
// Verify never writes. Transient ledger faults produce an indeterminate verdict, never a denial.
// The ticket isn't read for a scanner that doesn't organize the gate's event.
func (v *Verifier) Verify(ctx context.Context, cred types.Credential, scanner types.Address, eventID uint64) Verdict {
	if eventID == 0 {
		eventID = cred.EventID
	}
	ctx = logger.WithContext(ctx,
		slogx.Uint64("tokenId", cred.TokenID),
		slogx.Uint64("eventId", eventID),
		slogx.Stringer("scanner", scanner),
	)

	resolved, err := v.identity.Resolve(ctx, scanner)
	if err != nil {
		return v.failed(ctx, err, cred, eventID, "can't resolve scanner identity")
	}

	// the ticket is only read once the scanner is known to run this gate
	event, err := v.reader.GetEvent(ctx, eventID)
	if err != nil {
		return v.failed(ctx, err, cred, eventID, "can't get event")
	}
	if !resolved.Equal(event.Organizer) {
		verdict := unauthorized(resolved)
		verdict.TokenID = cred.TokenID
		verdict.EventID = eventID
		return verdict
	}

	ticket, err := v.reader.GetTicket(ctx, cred.TokenID)
	if err != nil {
		return v.failed(ctx, err, cred, eventID, "can't get ticket")
	}

	return Evaluate(Input{
		Credential: cred,
		Scanner:    resolved,
		Ticket:     *ticket,
		Event:      *event,
	})
}

func (v *Verifier) failed(ctx context.Context, err error, cred types.Credential, eventID uint64, msg string) Verdict {
	var verdict Verdict
	switch {
	case errors.Is(err, errs.NotFound):
		verdict = Rejected(StatusError, ReasonNotFound)
		logger.InfoContext(ctx, msg, slogx.Error(err))
	case ledger.IsTransient(err):
		verdict = Rejected(StatusIndeterminate, ReasonIndeterminate)
		logger.WarnContext(ctx, msg, slogx.Error(err))
	default:
		// bad ledger data or a rejected request; retrying won't change the answer
		verdict = Rejected(StatusError, ReasonLedgerFault)
		logger.ErrorContext(ctx, msg, slogx.Error(err))
	}
	verdict.TokenID = cred.TokenID
	verdict.EventID = eventID
	return verdict
}
