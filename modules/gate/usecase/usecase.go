package usecase

import (
	"github.com/gaze-network/ticket-integrity/core/ledger"
	"github.com/gaze-network/ticket-integrity/modules/gate/credential"
	"github.com/gaze-network/ticket-integrity/modules/gate/verifier"
	"github.com/gaze-network/ticket-integrity/pkg/clock"
)

// Deployment identifies the ticket contract credentials are issued for.
type Deployment struct {
	ContractID string
	ChainID    uint64
}

type Usecase struct {
	reader     ledger.Reader
	writer     ledger.Writer
	codec      *credential.Codec
	verifier   *verifier.Verifier
	deployment Deployment
	clock      clock.Clock
}

func New(reader ledger.Reader, writer ledger.Writer, identity ledger.IdentityResolver, codec *credential.Codec, deployment Deployment, clk clock.Clock) *Usecase {
	if clk == nil {
		clk = clock.Real()
	}
	return &Usecase{
		reader:     reader,
		writer:     writer,
		codec:      codec,
		verifier:   verifier.New(reader, identity),
		deployment: deployment,
		clock:      clk,
	}
}
