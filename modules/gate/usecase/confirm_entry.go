package usecase

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ticket-integrity/core/ledger"
	"github.com/gaze-network/ticket-integrity/core/types"
	"github.com/gaze-network/ticket-integrity/internal/metrics"
	"github.com/gaze-network/ticket-integrity/modules/gate/verifier"
	"github.com/gaze-network/ticket-integrity/pkg/logger"
	"github.com/gaze-network/ticket-integrity/pkg/logger/slogx"
)

// Entry is the outcome of an entry confirmation.
type Entry struct {
	Verdict  verifier.Verdict
	Admitted bool
	Receipt  *ledger.Receipt
}

// ConfirmEntry re-verifies the credential and, when admissible, flips the ticket's used latch on the ledger.
// A warning verdict is only admitted when the operator overrides it.
//
// A non admissible verdict is not an error: the returned entry carries the verdict with Admitted false.
// Ledger rejections (e.g. [ledger.ErrAlreadyUsed] when another gate won the race) are returned as-is.
func (u *Usecase) ConfirmEntry(ctx context.Context, raw string, scanner types.Address, eventID uint64, override bool) (*Entry, error) {
	verdict := u.Scan(ctx, raw, scanner, eventID)
	if !verdict.Admissible(override) {
		return &Entry{Verdict: verdict}, nil
	}

	ctx = logger.WithContext(ctx,
		slogx.Uint64("tokenId", verdict.TokenID),
		slogx.Uint64("eventId", verdict.EventID),
		slogx.Stringer("scanner", verdict.Scanner),
	)

	// the organizer identity signs the write, not the executor that scanned
	req := ledger.MarkUsed(verdict.Scanner, verdict.EventID, verdict.TokenID)
	start := time.Now()
	receipt, err := u.writer.Submit(ctx, req)
	if err != nil {
		outcome := "failed"
		if rejection, ok := ledger.AsRejection(err); ok {
			outcome = rejection.Code()
		}
		metrics.ObserveWrite(string(req.Kind), outcome, time.Since(start))
		logger.WarnContext(ctx, "Ledger refused entry", slogx.String("requestId", req.ID), slogx.Error(err))
		return nil, errors.Wrap(err, "can't mark ticket as used")
	}
	metrics.ObserveWrite(string(req.Kind), "accepted", time.Since(start))

	logger.InfoContext(ctx, "Entry confirmed",
		slogx.String("event", "gate_entry_confirmed"),
		slogx.String("requestId", req.ID),
		slogx.Bool("override", override && verdict.Status == verifier.StatusWarning),
	)
	return &Entry{
		Verdict:  verdict,
		Admitted: true,
		Receipt:  receipt,
	}, nil
}
