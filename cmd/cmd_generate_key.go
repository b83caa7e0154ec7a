package cmd

import (
	"encoding/hex"
	"fmt"
	"os"
	"path"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ticket-integrity/modules/gate/credential"
	"github.com/spf13/cobra"
)

type generateKeyCmdOptions struct {
	Path  string
	Print bool
}

func NewGenerateKeyCommand() *cobra.Command {
	opts := &generateKeyCmdOptions{}

	cmd := &cobra.Command{
		Use:   "generate-key",
		Short: "Generate a new credential signing key for the gate",
		RunE: func(cmd *cobra.Command, args []string) error {
			return generateKeyHandler(opts, cmd, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.Path, "path", "/data/keys", `Path to save the key file`)
	flags.BoolVar(&opts.Print, "print", false, `Print the key to stdout instead of saving it`)

	return cmd
}

func generateKeyHandler(opts *generateKeyCmdOptions, cmd *cobra.Command, _ []string) error {
	key, err := credential.GenerateKey()
	if err != nil {
		return errors.Wrap(err, "can't generate key")
	}
	hexKey := hex.EncodeToString(key)
	if opts.Print {
		fmt.Fprintln(cmd.OutOrStdout(), hexKey)
		return nil
	}

	if err := os.MkdirAll(opts.Path, 0o700); err != nil {
		return errors.Wrap(err, "create directory")
	}
	keyPath := path.Join(opts.Path, "credential.key")
	if _, err := os.Stat(keyPath); err == nil {
		fmt.Fprintf(cmd.OutOrStdout(), "Existing key found at %s\n[WARNING] CREDENTIALS SIGNED WITH THE EXISTING KEY WILL STOP VERIFYING\nType [replace] to replace the existing key: ", keyPath)
		var ans string
		fmt.Scanln(&ans)
		if ans != "replace" {
			fmt.Fprintln(cmd.OutOrStdout(), "Key generation aborted")
			return nil
		}
	}

	if err := os.WriteFile(keyPath, []byte(hexKey), 0o600); err != nil {
		return errors.Wrap(err, "write key file")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Credential key saved at %s\nSet it as `modules.gate.credential.key` to start the gate\n", keyPath)
	return nil
}
