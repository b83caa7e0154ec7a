package httphandler

import (
	"github.com/gaze-network/ticket-integrity/modules/gate/usecase"
	"github.com/gaze-network/ticket-integrity/modules/gate/verifier"
)

type HttpHandler struct {
	usecase *usecase.Usecase
}

func New(usecase *usecase.Usecase) *HttpHandler {
	return &HttpHandler{
		usecase: usecase,
	}
}

type checks struct {
	Organizer  verifier.CheckResult `json:"organizer"`
	Usage      verifier.CheckResult `json:"usage"`
	Owner      verifier.CheckResult `json:"owner"`
	EventMatch verifier.CheckResult `json:"eventMatch"`
}

type verdictResult struct {
	Status  verifier.Status `json:"status"`
	Reason  verifier.Reason `json:"reason,omitempty"`
	Message string          `json:"message"`
	Checks  checks          `json:"checks"`
	TokenID uint64          `json:"tokenId"`
	EventID uint64          `json:"eventId"`
}

func mapVerdict(v verifier.Verdict) verdictResult {
	return verdictResult{
		Status:  v.Status,
		Reason:  v.Reason,
		Message: v.Message(),
		Checks: checks{
			Organizer:  v.Checks.Organizer,
			Usage:      v.Checks.Usage,
			Owner:      v.Checks.Owner,
			EventMatch: v.Checks.EventMatch,
		},
		TokenID: v.TokenID,
		EventID: v.EventID,
	}
}
