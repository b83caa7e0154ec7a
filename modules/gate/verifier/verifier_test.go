package verifier

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ticket-integrity/common/errs"
	"github.com/gaze-network/ticket-integrity/core/ledger"
	"github.com/gaze-network/ticket-integrity/core/ledger/memory"
	"github.com/gaze-network/ticket-integrity/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockIdentity struct {
	mock.Mock
}

func (m *mockIdentity) Resolve(ctx context.Context, identity types.Address) (types.Address, error) {
	args := m.Called(ctx, identity)
	return args.Get(0).(types.Address), args.Error(1)
}

func newLedger(t *testing.T) *memory.Ledger {
	t.Helper()
	l := memory.New()
	l.PutEvent(types.Event{ID: 3, Organizer: organizer})
	l.PutTicket(types.Ticket{TokenID: 7, EventID: 3, CurrentOwner: holder, OriginalOwner: holder})
	return l
}

func TestVerify(t *testing.T) {
	ctx := context.Background()
	cred := types.Credential{TokenID: 7, EventID: 3, Owner: holder}

	t.Run("success", func(t *testing.T) {
		v := New(newLedger(t), nil)
		verdict := v.Verify(ctx, cred, organizer, 0)
		assert.Equal(t, StatusSuccess, verdict.Status)
		assert.Equal(t, uint64(7), verdict.TokenID)
		assert.Equal(t, uint64(3), verdict.EventID)
	})

	t.Run("executor_resolves_to_organizer", func(t *testing.T) {
		v := New(newLedger(t), ledger.NewStaticIdentity(map[string]string{"0xSessionKey": organizer.String()}))
		verdict := v.Verify(ctx, cred, "0xsessionkey", 0)
		assert.Equal(t, StatusSuccess, verdict.Status)
		assert.Equal(t, organizer, verdict.Scanner)
	})

	t.Run("ticket_not_found", func(t *testing.T) {
		v := New(newLedger(t), nil)
		verdict := v.Verify(ctx, types.Credential{TokenID: 404, EventID: 3, Owner: holder}, organizer, 0)
		assert.Equal(t, StatusError, verdict.Status)
		assert.Equal(t, ReasonNotFound, verdict.Reason)
		assert.Equal(t, skippedChecks(), verdict.Checks)
	})

	t.Run("gate_event_not_found", func(t *testing.T) {
		v := New(newLedger(t), nil)
		verdict := v.Verify(ctx, cred, organizer, 99)
		assert.Equal(t, ReasonNotFound, verdict.Reason)
	})

	t.Run("ledger_unavailable_is_indeterminate", func(t *testing.T) {
		l := newLedger(t)
		l.FailReads(errors.Wrap(errs.Unavailable, "rpc timeout"))
		verdict := New(l, nil).Verify(ctx, cred, organizer, 0)
		assert.Equal(t, StatusIndeterminate, verdict.Status)
		assert.Equal(t, ReasonIndeterminate, verdict.Reason)
		assert.False(t, verdict.Admissible(true))
	})

	t.Run("stranger_learns_nothing_about_missing_ticket", func(t *testing.T) {
		verdict := New(newLedger(t), nil).Verify(ctx, types.Credential{TokenID: 8, EventID: 3, Owner: holder}, stranger, 0)
		assert.Equal(t, StatusError, verdict.Status)
		assert.Equal(t, ReasonNotAuthorized, verdict.Reason)
		assert.Equal(t, Checks{Organizer: CheckFailed, Usage: CheckRedacted, Owner: CheckRedacted, EventMatch: CheckRedacted}, verdict.Checks)
	})

	t.Run("other_organizer_learns_nothing_about_used_ticket", func(t *testing.T) {
		l := newLedger(t)
		l.PutEvent(types.Event{ID: 9, Organizer: "0xOtherOrganizer"})
		l.PutTicket(types.Ticket{TokenID: 7, EventID: 3, CurrentOwner: holder, OriginalOwner: holder, Used: true})

		verdict := New(l, nil).Verify(ctx, cred, "0xOtherOrganizer", 9)
		assert.Equal(t, StatusError, verdict.Status)
		assert.Equal(t, ReasonWrongEvent, verdict.Reason)
		assert.Equal(t, Checks{Organizer: CheckPassed, Usage: CheckRedacted, Owner: CheckRedacted, EventMatch: CheckFailed}, verdict.Checks)
	})

	t.Run("invalid_ledger_data_is_not_retried", func(t *testing.T) {
		l := newLedger(t)
		l.FailReads(errors.Wrap(errs.InvalidArgument, "royalty bps out of range"))
		verdict := New(l, nil).Verify(ctx, cred, organizer, 0)
		assert.Equal(t, StatusError, verdict.Status)
		assert.Equal(t, ReasonLedgerFault, verdict.Reason)
		assert.False(t, verdict.Admissible(true))
	})

	t.Run("cancelled_is_indeterminate", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		verdict := New(newLedger(t), nil).Verify(cancelled, cred, organizer, 0)
		assert.Equal(t, StatusIndeterminate, verdict.Status)
	})
}

func TestVerifyIsSideEffectFree(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t)
	v := New(l, nil)
	cred := types.Credential{TokenID: 7, EventID: 3, Owner: holder}

	first := v.Verify(ctx, cred, organizer, 0)
	second := v.Verify(ctx, cred, organizer, 0)
	assert.Equal(t, first, second)

	ticket, err := l.GetTicket(ctx, 7)
	require.NoError(t, err)
	assert.False(t, ticket.Used)
}

func TestVerifyResolvesScannerOnce(t *testing.T) {
	ctx := context.Background()
	cred := types.Credential{TokenID: 7, EventID: 3, Owner: holder}

	t.Run("resolved", func(t *testing.T) {
		identity := &mockIdentity{}
		identity.On("Resolve", mock.Anything, types.Address("0xdelegate")).Return(organizer, nil).Once()

		verdict := New(newLedger(t), identity).Verify(ctx, cred, "0xdelegate", 0)
		assert.Equal(t, StatusSuccess, verdict.Status)
		identity.AssertExpectations(t)
	})

	t.Run("resolver_down", func(t *testing.T) {
		identity := &mockIdentity{}
		identity.On("Resolve", mock.Anything, organizer).Return(types.Address(""), errors.Wrap(errs.Unavailable, "registry down")).Once()

		verdict := New(newLedger(t), identity).Verify(ctx, cred, organizer, 0)
		assert.Equal(t, StatusIndeterminate, verdict.Status)
		assert.Equal(t, ReasonIndeterminate, verdict.Reason)
		identity.AssertExpectations(t)
	})
}
