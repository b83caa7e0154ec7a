package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ticket-integrity/common"
	"github.com/gaze-network/ticket-integrity/common/errs"
	"github.com/gaze-network/ticket-integrity/core/types"
	"github.com/gofiber/fiber/v2"
)

type issueCredentialRequest struct {
	TokenID uint64 `json:"tokenId"`
	Holder  string `json:"holder"`
}

func (r *issueCredentialRequest) Validate() error {
	var errList []error
	if r.TokenID == 0 {
		errList = append(errList, errors.New("'tokenId' is required"))
	}
	if types.Address(r.Holder).IsZero() {
		errList = append(errList, errors.New("'holder' is required"))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type issueCredentialResult struct {
	Credential string `json:"credential"`
	TokenID    uint64 `json:"tokenId"`
	EventID    uint64 `json:"eventId"`
	IssuedAt   int64  `json:"issuedAt"`  // unix timestamp
	ExpiresAt  int64  `json:"expiresAt"` // unix timestamp
}

type issueCredentialResponse = common.HttpResponse[issueCredentialResult]

func (h *HttpHandler) IssueCredential(ctx *fiber.Ctx) (err error) {
	var req issueCredentialRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	issued, err := h.usecase.Issue(ctx.UserContext(), req.TokenID, types.Address(req.Holder))
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return errors.Mark(errs.NewPublicError("ticket not found"), errs.NotFound)
		}
		return errors.Wrap(err, "error during Issue")
	}

	return errors.WithStack(ctx.JSON(issueCredentialResponse{
		Result: &issueCredentialResult{
			Credential: issued.Encoded,
			TokenID:    issued.Credential.TokenID,
			EventID:    issued.Credential.EventID,
			IssuedAt:   issued.Credential.IssuedAt.Unix(),
			ExpiresAt:  issued.ExpiresAt.Unix(),
		},
	}))
}
