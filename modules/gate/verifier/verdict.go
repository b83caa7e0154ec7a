package verifier

import "github.com/gaze-network/ticket-integrity/core/types"

type Status string

const (
	StatusSuccess Status = "success"
	StatusWarning Status = "warning"
	StatusError   Status = "error"

	// StatusIndeterminate means the ledger couldn't be read. It's not a denial; the scan should be retried.
	StatusIndeterminate Status = "indeterminate"
)

// Reason is the specific cause of a non-success verdict, shown to the operator as-is.
type Reason string

const (
	ReasonNone          Reason = ""
	ReasonNotAuthorized Reason = "NotAuthorized"
	ReasonAlreadyUsed   Reason = "AlreadyUsed"
	ReasonWrongEvent    Reason = "WrongEvent"
	ReasonOwnerMismatch Reason = "OwnerMismatch"
	ReasonNotFound      Reason = "NotFound"
	ReasonIndeterminate Reason = "Indeterminate"
	ReasonLedgerFault   Reason = "LedgerFault"

	// credential level reasons
	ReasonMalformedPayload  Reason = "MalformedPayload"
	ReasonSignatureMismatch Reason = "SignatureMismatch"
	ReasonExpired           Reason = "Expired"
	ReasonForeignCredential Reason = "ForeignCredential"
)

var messages = map[Reason]string{
	ReasonNone:              "ticket is valid",
	ReasonNotAuthorized:     "unauthorized scanner",
	ReasonAlreadyUsed:       "ticket already used",
	ReasonWrongEvent:        "ticket is for a different event",
	ReasonOwnerMismatch:     "possible transfer since issuance",
	ReasonNotFound:          "ticket or event not found",
	ReasonIndeterminate:     "ledger unavailable, retry the scan",
	ReasonLedgerFault:       "ledger returned an invalid answer",
	ReasonMalformedPayload:  "unreadable credential",
	ReasonSignatureMismatch: "credential has been tampered with",
	ReasonExpired:           "credential expired, ask the holder to refresh it",
	ReasonForeignCredential: "credential was issued for another ticket contract",
}

// Message is the operator facing text for the reason.
func (r Reason) Message() string {
	return messages[r]
}

// CheckResult is the outcome of one gate check.
type CheckResult string

const (
	CheckPassed CheckResult = "passed"
	CheckFailed CheckResult = "failed"

	// CheckRedacted hides the outcome from a scanner that isn't the event organizer.
	CheckRedacted CheckResult = "redacted"

	// CheckSkipped means the check couldn't run (credential or ledger read failed first).
	CheckSkipped CheckResult = "skipped"
)

// Checks reports every individual check for audit display.
type Checks struct {
	Organizer  CheckResult
	Usage      CheckResult
	Owner      CheckResult
	EventMatch CheckResult
}

func skippedChecks() Checks {
	return Checks{
		Organizer:  CheckSkipped,
		Usage:      CheckSkipped,
		Owner:      CheckSkipped,
		EventMatch: CheckSkipped,
	}
}

// Verdict is the result of one gate scan. It's never persisted by the gate.
type Verdict struct {
	Status  Status
	Reason  Reason
	Checks  Checks
	TokenID uint64
	EventID uint64

	// Scanner is the resolved scanning identity.
	Scanner types.Address
}

func (v Verdict) Message() string {
	return v.Reason.Message()
}

// Admissible reports whether the operator may confirm entry: on success, or on a warning
// the operator explicitly overrides.
func (v Verdict) Admissible(override bool) bool {
	switch v.Status {
	case StatusSuccess:
		return true
	case StatusWarning:
		return override
	default:
		return false
	}
}

// Rejected builds a verdict for a scan that failed before any check could run.
func Rejected(status Status, reason Reason) Verdict {
	return Verdict{
		Status: status,
		Reason: reason,
		Checks: skippedChecks(),
	}
}
