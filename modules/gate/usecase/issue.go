package usecase

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ticket-integrity/common/errs"
	"github.com/gaze-network/ticket-integrity/core/types"
	"github.com/gaze-network/ticket-integrity/modules/gate/credential"
)

type IssuedCredential struct {
	Credential types.Credential
	Encoded    string
	ExpiresAt  time.Time
}

// Issue signs a fresh credential for the ticket's current holder.
func (u *Usecase) Issue(ctx context.Context, tokenID uint64, holder types.Address) (*IssuedCredential, error) {
	ticket, err := u.reader.GetTicket(ctx, tokenID)
	if err != nil {
		return nil, errors.Wrap(err, "can't get ticket")
	}
	if !holder.Equal(ticket.CurrentOwner) {
		return nil, errs.NewPublicErrorWithCode("holder does not own the ticket", "NotOwner")
	}
	if ticket.Used {
		return nil, errs.NewPublicErrorWithCode("ticket already used", "AlreadyUsed")
	}

	encoded, err := u.codec.Encode(ticket.TokenID, ticket.EventID, ticket.CurrentOwner, u.deployment.ContractID, u.deployment.ChainID, u.clock.Now())
	if err != nil {
		return nil, errors.Wrap(err, "can't encode credential")
	}
	cred, err := credential.Inspect(encoded)
	if err != nil {
		return nil, errors.Wrap(err, "can't read back issued credential")
	}
	return &IssuedCredential{
		Credential: cred,
		Encoded:    encoded,
		ExpiresAt:  credential.ExpiresAt(cred),
	}, nil
}
