package verifier

import (
	"testing"

	"github.com/gaze-network/ticket-integrity/core/types"
	"github.com/stretchr/testify/assert"
)

const (
	organizer = types.Address("0xOrganizer")
	holder    = types.Address("0xHolder")
	stranger  = types.Address("0xStranger")
)

func validInput() Input {
	return Input{
		Credential: types.Credential{TokenID: 7, EventID: 3, Owner: holder},
		Scanner:    organizer,
		Ticket:     types.Ticket{TokenID: 7, EventID: 3, CurrentOwner: holder},
		Event:      types.Event{ID: 3, Organizer: organizer},
	}
}

func TestEvaluate(t *testing.T) {
	testcases := []struct {
		name     string
		mutate   func(*Input)
		status   Status
		reason   Reason
		expected Checks
	}{
		{
			name:     "happy_path",
			mutate:   func(*Input) {},
			status:   StatusSuccess,
			reason:   ReasonNone,
			expected: Checks{Organizer: CheckPassed, Usage: CheckPassed, Owner: CheckPassed, EventMatch: CheckPassed},
		},
		{
			name:     "case_insensitive_addresses",
			mutate:   func(in *Input) { in.Scanner = "0xORGANIZER"; in.Credential.Owner = "0xholder" },
			status:   StatusSuccess,
			reason:   ReasonNone,
			expected: Checks{Organizer: CheckPassed, Usage: CheckPassed, Owner: CheckPassed, EventMatch: CheckPassed},
		},
		{
			name:     "unauthorized_scanner",
			mutate:   func(in *Input) { in.Scanner = stranger },
			status:   StatusError,
			reason:   ReasonNotAuthorized,
			expected: Checks{Organizer: CheckFailed, Usage: CheckRedacted, Owner: CheckRedacted, EventMatch: CheckRedacted},
		},
		{
			name: "unauthorized_scanner_hides_used_ticket",
			mutate: func(in *Input) {
				in.Scanner = stranger
				in.Ticket.Used = true
				in.Credential.Owner = stranger
			},
			status:   StatusError,
			reason:   ReasonNotAuthorized,
			expected: Checks{Organizer: CheckFailed, Usage: CheckRedacted, Owner: CheckRedacted, EventMatch: CheckRedacted},
		},
		{
			name:     "already_used",
			mutate:   func(in *Input) { in.Ticket.Used = true },
			status:   StatusError,
			reason:   ReasonAlreadyUsed,
			expected: Checks{Organizer: CheckPassed, Usage: CheckFailed, Owner: CheckPassed, EventMatch: CheckPassed},
		},
		{
			name: "already_used_beats_wrong_event_and_owner",
			mutate: func(in *Input) {
				in.Ticket.Used = true
				in.Credential.EventID = 4
				in.Credential.Owner = stranger
			},
			status:   StatusError,
			reason:   ReasonAlreadyUsed,
			expected: Checks{Organizer: CheckPassed, Usage: CheckFailed, Owner: CheckFailed, EventMatch: CheckFailed},
		},
		{
			name:     "wrong_event",
			mutate:   func(in *Input) { in.Credential.EventID = 4 },
			status:   StatusError,
			reason:   ReasonWrongEvent,
			expected: Checks{Organizer: CheckPassed, Usage: CheckPassed, Owner: CheckPassed, EventMatch: CheckFailed},
		},
		{
			name:     "ticket_from_other_event_at_this_gate",
			mutate:   func(in *Input) { in.Ticket.EventID = 5; in.Credential.EventID = 5 },
			status:   StatusError,
			reason:   ReasonWrongEvent,
			expected: Checks{Organizer: CheckPassed, Usage: CheckRedacted, Owner: CheckRedacted, EventMatch: CheckFailed},
		},
		{
			name: "other_event_ticket_hides_usage",
			mutate: func(in *Input) {
				in.Ticket.EventID = 5
				in.Credential.EventID = 5
				in.Ticket.Used = true
			},
			status:   StatusError,
			reason:   ReasonWrongEvent,
			expected: Checks{Organizer: CheckPassed, Usage: CheckRedacted, Owner: CheckRedacted, EventMatch: CheckFailed},
		},
		{
			name: "wrong_event_beats_owner_mismatch",
			mutate: func(in *Input) {
				in.Credential.EventID = 4
				in.Credential.Owner = stranger
			},
			status:   StatusError,
			reason:   ReasonWrongEvent,
			expected: Checks{Organizer: CheckPassed, Usage: CheckPassed, Owner: CheckFailed, EventMatch: CheckFailed},
		},
		{
			name:     "owner_mismatch_is_warning",
			mutate:   func(in *Input) { in.Ticket.CurrentOwner = stranger },
			status:   StatusWarning,
			reason:   ReasonOwnerMismatch,
			expected: Checks{Organizer: CheckPassed, Usage: CheckPassed, Owner: CheckFailed, EventMatch: CheckPassed},
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)

			verdict := Evaluate(in)
			assert.Equal(t, tc.status, verdict.Status)
			assert.Equal(t, tc.reason, verdict.Reason)
			assert.Equal(t, tc.expected, verdict.Checks)
			assert.Equal(t, verdict, Evaluate(in), "evaluation must be repeatable")
		})
	}
}

func TestAdmissible(t *testing.T) {
	assert.True(t, Verdict{Status: StatusSuccess}.Admissible(false))
	assert.False(t, Verdict{Status: StatusWarning}.Admissible(false))
	assert.True(t, Verdict{Status: StatusWarning}.Admissible(true))
	assert.False(t, Verdict{Status: StatusError}.Admissible(true))
	assert.False(t, Verdict{Status: StatusIndeterminate}.Admissible(true))
}

func TestReasonMessage(t *testing.T) {
	assert.Equal(t, "unauthorized scanner", ReasonNotAuthorized.Message())
	assert.Equal(t, "ticket already used", Verdict{Reason: ReasonAlreadyUsed}.Message())
}
