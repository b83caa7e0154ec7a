package verifier

import (
	"github.com/gaze-network/ticket-integrity/core/types"
)

// Input is a ledger snapshot for one scan.
type Input struct {
	Credential types.Credential

	// Scanner is the scanning identity after identity resolution.
	Scanner types.Address
	Ticket  types.Ticket

	// Event is the event being admitted to.
	Event types.Event
}

// Evaluate is the gate state machine. It runs every check and then picks the verdict by precedence:
// NotAuthorized > AlreadyUsed > WrongEvent > OwnerMismatch (warning) > success.
// A ticket of another event is outside the scanner's authority: it's WrongEvent with the
// usage and owner checks redacted.
// It's pure; evaluating the same input always yields the same verdict.
func Evaluate(in Input) Verdict {
	e := evaluation{Input: in}
	e.checkOrganizer()
	e.checkUsage()
	e.checkEventMatch()
	e.checkOwner()
	return e.verdict()
}

type evaluation struct {
	Input
	checks Checks
}

func (e *evaluation) checkOrganizer() {
	e.checks.Organizer = result(e.Scanner.Equal(e.Event.Organizer))
}

func (e *evaluation) checkUsage() {
	e.checks.Usage = result(!e.Ticket.Used)
}

func (e *evaluation) checkEventMatch() {
	e.checks.EventMatch = result(e.Credential.EventID == e.Ticket.EventID && e.Ticket.EventID == e.Event.ID)
}

func (e *evaluation) checkOwner() {
	e.checks.Owner = result(e.Credential.Owner.Equal(e.Ticket.CurrentOwner))
}

func (e *evaluation) verdict() Verdict {
	v := Verdict{
		Status:  StatusSuccess,
		Reason:  ReasonNone,
		Checks:  e.checks,
		TokenID: e.Ticket.TokenID,
		EventID: e.Event.ID,
		Scanner: e.Scanner,
	}
	switch {
	case e.checks.Organizer == CheckFailed:
		v = unauthorized(v.Scanner)
		v.TokenID = e.Ticket.TokenID
		v.EventID = e.Event.ID
	case e.Ticket.EventID != e.Event.ID:
		v.Status, v.Reason = StatusError, ReasonWrongEvent
		v.Checks.Usage = CheckRedacted
		v.Checks.Owner = CheckRedacted
	case e.checks.Usage == CheckFailed:
		v.Status, v.Reason = StatusError, ReasonAlreadyUsed
	case e.checks.EventMatch == CheckFailed:
		v.Status, v.Reason = StatusError, ReasonWrongEvent
	case e.checks.Owner == CheckFailed:
		v.Status, v.Reason = StatusWarning, ReasonOwnerMismatch
	}
	return v
}

func result(ok bool) CheckResult {
	if ok {
		return CheckPassed
	}
	return CheckFailed
}

// unauthorized is the verdict for a scanner that isn't the event organizer. Nothing about the ticket is disclosed.
func unauthorized(scanner types.Address) Verdict {
	return Verdict{
		Status: StatusError,
		Reason: ReasonNotAuthorized,
		Checks: Checks{
			Organizer:  CheckFailed,
			Usage:      CheckRedacted,
			Owner:      CheckRedacted,
			EventMatch: CheckRedacted,
		},
		Scanner: scanner,
	}
}
