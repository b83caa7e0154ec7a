package cmd

import (
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ticket-integrity/common/errs"
	"github.com/gaze-network/ticket-integrity/core/types"
	"github.com/gaze-network/ticket-integrity/internal/config"
	"github.com/gaze-network/ticket-integrity/modules/gate/credential"
	"github.com/spf13/cobra"
)

func NewCredentialCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credential",
		Short: "Operator tools for gate credentials",
	}
	cmd.AddCommand(
		newCredentialIssueCommand(),
		newCredentialInspectCommand(),
	)
	return cmd
}

type credentialIssueCmdOptions struct {
	TokenID uint64
	EventID uint64
	Owner   string
}

// newCredentialIssueCommand signs a credential offline with the configured key. Unlike the
// gate API it doesn't read the ledger, so the operator vouches for ownership.
func newCredentialIssueCommand() *cobra.Command {
	opts := &credentialIssueCmdOptions{}

	cmd := &cobra.Command{
		Use:     "issue",
		Short:   "Sign a credential offline with the configured gate key",
		Example: `ticket-integrity credential issue --token 7 --event 3 --owner 0xAbc`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return credentialIssueHandler(opts, cmd, args)
		},
	}

	flags := cmd.Flags()
	flags.Uint64Var(&opts.TokenID, "token", 0, "Ticket token id")
	flags.Uint64Var(&opts.EventID, "event", 0, "Event id")
	flags.StringVar(&opts.Owner, "owner", "", "Ticket holder address")

	return cmd
}

func credentialIssueHandler(opts *credentialIssueCmdOptions, cmd *cobra.Command, _ []string) error {
	if opts.TokenID == 0 || opts.EventID == 0 || types.Address(opts.Owner).IsZero() {
		return errors.Wrap(errs.InvalidArgument, "--token, --event and --owner are required")
	}
	credConf := config.Load().Modules.Gate.Credential
	key, err := credential.ParseKey(credConf.Key)
	if err != nil {
		return errors.Wrap(err, "invalid gate credential key")
	}
	codec, err := credential.New(key)
	if err != nil {
		return errors.WithStack(err)
	}

	issuedAt := time.Now()
	encoded, err := codec.Encode(opts.TokenID, opts.EventID, types.Address(opts.Owner), credConf.ContractID, credConf.ChainID, issuedAt)
	if err != nil {
		return errors.Wrap(err, "can't encode credential")
	}
	cred, err := credential.Inspect(encoded)
	if err != nil {
		return errors.WithStack(err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), encoded)
	fmt.Fprintf(cmd.ErrOrStderr(), "expires at %s\n", credential.ExpiresAt(cred).Format(time.RFC3339))
	return nil
}

type credentialInspectCmdOptions struct {
	Verify bool
}

func newCredentialInspectCommand() *cobra.Command {
	opts := &credentialInspectCmdOptions{}

	cmd := &cobra.Command{
		Use:   "inspect <credential>",
		Short: "Show the content of a credential string",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return credentialInspectHandler(opts, cmd, args)
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&opts.Verify, "verify", false, "Also check the tag and validity window with the configured gate key")

	return cmd
}

func credentialInspectHandler(opts *credentialInspectCmdOptions, cmd *cobra.Command, args []string) error {
	cred, err := credential.Inspect(args[0])
	if err != nil {
		return errors.WithStack(err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "token:     %d\n", cred.TokenID)
	fmt.Fprintf(out, "event:     %d\n", cred.EventID)
	fmt.Fprintf(out, "owner:     %s\n", cred.Owner)
	fmt.Fprintf(out, "contract:  %s (chain %d)\n", cred.ContractID, cred.ChainID)
	fmt.Fprintf(out, "issued:    %s\n", cred.IssuedAt.Format(time.RFC3339))
	fmt.Fprintf(out, "expires:   %s\n", credential.ExpiresAt(cred).Format(time.RFC3339))

	if !opts.Verify {
		return nil
	}
	key, err := credential.ParseKey(config.Load().Modules.Gate.Credential.Key)
	if err != nil {
		return errors.Wrap(err, "invalid gate credential key")
	}
	codec, err := credential.New(key)
	if err != nil {
		return errors.WithStack(err)
	}
	if _, err := codec.Decode(args[0]); err != nil {
		fmt.Fprintf(out, "verified:  no (%v)\n", err)
		return nil
	}
	fmt.Fprintln(out, "verified:  yes")
	return nil
}
