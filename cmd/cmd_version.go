package cmd

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ticket-integrity/common/errs"
	"github.com/gaze-network/ticket-integrity/core/constants"
	"github.com/gaze-network/ticket-integrity/modules/gate/credential"
	"github.com/spf13/cobra"
)

var versions = map[string]string{
	"":           constants.Version,
	"credential": credential.Prefix[:len(credential.Prefix)-1],
}

type versionCmdOptions struct {
	Component string
}

func NewVersionCommand() *cobra.Command {
	opts := &versionCmdOptions{}

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show ticket-integrity version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return versionHandler(opts, cmd, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.Component, "component", "", `Show version of a specific component. E.g. "credential"`)

	return cmd
}

func versionHandler(opts *versionCmdOptions, cmd *cobra.Command, _ []string) error {
	version, ok := versions[opts.Component]
	if !ok {
		return errors.Wrapf(errs.Unsupported, "unknown component %q", opts.Component)
	}
	fmt.Fprintln(cmd.OutOrStdout(), version)
	return nil
}
