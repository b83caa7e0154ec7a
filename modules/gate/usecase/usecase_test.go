package usecase

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ticket-integrity/common/errs"
	"github.com/gaze-network/ticket-integrity/core/ledger"
	"github.com/gaze-network/ticket-integrity/core/ledger/memory"
	"github.com/gaze-network/ticket-integrity/core/types"
	"github.com/gaze-network/ticket-integrity/modules/gate/credential"
	"github.com/gaze-network/ticket-integrity/modules/gate/verifier"
	"github.com/gaze-network/ticket-integrity/pkg/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	organizer = types.Address("0xOrganizer")
	holder    = types.Address("0xHolder")
	buyer     = types.Address("0xBuyer")
)

var (
	deployment = Deployment{ContractID: "0xTicketContract", ChainID: 8453}
	startTime  = time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC)
	testKey    = []byte(strings.Repeat("k", credential.KeySize))
)

type fixture struct {
	ledger  *memory.Ledger
	clock   *clock.Fake
	codec   *credential.Codec
	usecase *Usecase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	l := memory.New()
	l.PutEvent(types.Event{ID: 3, Organizer: organizer, Active: true})
	l.PutTicket(types.Ticket{TokenID: 7, EventID: 3, OriginalOwner: holder, CurrentOwner: holder})

	clk := clock.NewFake(startTime)
	codec, err := credential.New(testKey, credential.WithClock(clk))
	require.NoError(t, err)
	return &fixture{
		ledger:  l,
		clock:   clk,
		codec:   codec,
		usecase: New(l, l, nil, codec, deployment, clk),
	}
}

func (f *fixture) issue(t *testing.T) string {
	t.Helper()
	issued, err := f.usecase.Issue(context.Background(), 7, holder)
	require.NoError(t, err)
	return issued.Encoded
}

func TestScanHappyPath(t *testing.T) {
	f := newFixture(t)
	raw := f.issue(t)

	verdict := f.usecase.Scan(context.Background(), raw, organizer, 3)
	assert.Equal(t, verifier.StatusSuccess, verdict.Status)
	assert.Equal(t, verifier.Checks{
		Organizer:  verifier.CheckPassed,
		Usage:      verifier.CheckPassed,
		Owner:      verifier.CheckPassed,
		EventMatch: verifier.CheckPassed,
	}, verdict.Checks)
}

func TestScanReplayAttack(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	raw := f.issue(t)

	entry, err := f.usecase.ConfirmEntry(ctx, raw, organizer, 3, false)
	require.NoError(t, err)
	assert.True(t, entry.Admitted)
	require.NotNil(t, entry.Receipt)

	// the same QR presented again
	verdict := f.usecase.Scan(ctx, raw, organizer, 3)
	assert.Equal(t, verifier.StatusError, verdict.Status)
	assert.Equal(t, verifier.ReasonAlreadyUsed, verdict.Reason)

	entry, err = f.usecase.ConfirmEntry(ctx, raw, organizer, 3, true)
	require.NoError(t, err)
	assert.False(t, entry.Admitted)
	assert.Equal(t, verifier.ReasonAlreadyUsed, entry.Verdict.Reason)
}

func TestScanCredentialFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("tampered", func(t *testing.T) {
		f := newFixture(t)
		other, err := credential.New([]byte(strings.Repeat("x", credential.KeySize)))
		require.NoError(t, err)
		forged, err := other.Encode(7, 3, holder, deployment.ContractID, deployment.ChainID, startTime)
		require.NoError(t, err)

		verdict := f.usecase.Scan(ctx, forged, organizer, 3)
		assert.Equal(t, verifier.StatusError, verdict.Status)
		assert.Equal(t, verifier.ReasonSignatureMismatch, verdict.Reason)
	})

	t.Run("expired", func(t *testing.T) {
		f := newFixture(t)
		raw := f.issue(t)
		f.clock.Advance(credential.ValidityWindow + time.Second)

		verdict := f.usecase.Scan(ctx, raw, organizer, 3)
		assert.Equal(t, verifier.ReasonExpired, verdict.Reason)
	})

	t.Run("garbage", func(t *testing.T) {
		f := newFixture(t)
		verdict := f.usecase.Scan(ctx, "not a credential", organizer, 3)
		assert.Equal(t, verifier.ReasonMalformedPayload, verdict.Reason)
		assert.Equal(t, verifier.CheckSkipped, verdict.Checks.Organizer)
	})

	t.Run("contract_case_is_ignored", func(t *testing.T) {
		f := newFixture(t)
		raw, err := f.codec.Encode(7, 3, "0xHOLDER", strings.ToLower(deployment.ContractID), deployment.ChainID, startTime)
		require.NoError(t, err)

		verdict := f.usecase.Scan(ctx, raw, organizer, 3)
		assert.Equal(t, verifier.StatusSuccess, verdict.Status)
		assert.Equal(t, verifier.CheckPassed, verdict.Checks.Owner)
	})

	t.Run("foreign_deployment", func(t *testing.T) {
		f := newFixture(t)
		raw, err := f.codec.Encode(7, 3, holder, "0xOtherContract", deployment.ChainID, startTime)
		require.NoError(t, err)

		verdict := f.usecase.Scan(ctx, raw, organizer, 3)
		assert.Equal(t, verifier.ReasonForeignCredential, verdict.Reason)
		assert.Equal(t, uint64(7), verdict.TokenID)
	})
}

func TestConfirmEntry(t *testing.T) {
	ctx := context.Background()

	t.Run("unauthorized_scanner", func(t *testing.T) {
		f := newFixture(t)
		raw := f.issue(t)

		entry, err := f.usecase.ConfirmEntry(ctx, raw, "0xStranger", 3, true)
		require.NoError(t, err)
		assert.False(t, entry.Admitted)
		assert.Equal(t, verifier.ReasonNotAuthorized, entry.Verdict.Reason)

		ticket, err := f.ledger.GetTicket(ctx, 7)
		require.NoError(t, err)
		assert.False(t, ticket.Used)
	})

	t.Run("owner_mismatch_needs_override", func(t *testing.T) {
		f := newFixture(t)
		raw := f.issue(t)
		f.ledger.PutTicket(types.Ticket{TokenID: 7, EventID: 3, OriginalOwner: holder, CurrentOwner: buyer})

		entry, err := f.usecase.ConfirmEntry(ctx, raw, organizer, 3, false)
		require.NoError(t, err)
		assert.False(t, entry.Admitted)
		assert.Equal(t, verifier.StatusWarning, entry.Verdict.Status)

		entry, err = f.usecase.ConfirmEntry(ctx, raw, organizer, 3, true)
		require.NoError(t, err)
		assert.True(t, entry.Admitted)
	})

	t.Run("ledger_rejection_surfaces_verbatim", func(t *testing.T) {
		f := newFixture(t)
		raw := f.issue(t)

		// another gate already used the ticket; this gate reads a stale view
		stale := memory.New()
		stale.PutEvent(types.Event{ID: 3, Organizer: organizer})
		stale.PutTicket(types.Ticket{TokenID: 7, EventID: 3, CurrentOwner: holder})
		_, err := f.ledger.Submit(ctx, ledger.MarkUsed(organizer, 3, 7))
		require.NoError(t, err)

		u := New(stale, f.ledger, nil, f.codec, deployment, f.clock)
		_, err = u.ConfirmEntry(ctx, raw, organizer, 3, false)
		require.Error(t, err)
		rejection, ok := ledger.AsRejection(err)
		require.True(t, ok)
		assert.Equal(t, ledger.ErrAlreadyUsed, rejection)
	})

	t.Run("executor_signs_as_organizer", func(t *testing.T) {
		f := newFixture(t)
		raw := f.issue(t)
		identity := ledger.NewStaticIdentity(map[string]string{"0xSessionKey": organizer.String()})
		u := New(f.ledger, f.ledger, identity, f.codec, deployment, f.clock)

		entry, err := u.ConfirmEntry(ctx, raw, "0xSessionKey", 3, false)
		require.NoError(t, err)
		assert.True(t, entry.Admitted)
	})
}

func TestIssue(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	issued, err := f.usecase.Issue(ctx, 7, "0xHOLDER")
	require.NoError(t, err)
	assert.Equal(t, uint64(7), issued.Credential.TokenID)
	assert.Equal(t, holder, issued.Credential.Owner)
	assert.Equal(t, startTime.Add(credential.ValidityWindow), issued.ExpiresAt)

	_, err = f.usecase.Issue(ctx, 7, buyer)
	require.Error(t, err)
	pErr := new(errs.PublicError)
	assert.True(t, errors.As(err, &pErr))

	_, err = f.usecase.Issue(ctx, 404, holder)
	assert.ErrorIs(t, err, errs.NotFound)
}
