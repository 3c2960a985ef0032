// Package cli wires the cobra command tree and owns everything
// terminal-facing: flags, prompts, spinners, and exit codes. The
// provisioning logic itself lives in internal/provision.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rmalloy/keyup/internal/errors"
)

// Root command flags
var (
	forceFlag      bool
	yesFlag        bool
	skipVerifyFlag bool
)

// rootCmd is the bare `keyup <host_alias> <ip_address> <username>`
// invocation. Provisioning is the root command rather than a subcommand
// so the tool reads like the one-liner it replaces.
var rootCmd = &cobra.Command{
	Use:   "keyup <host_alias> <ip_address> <username>",
	Short: "Set up passwordless SSH access to a host",
	Long: `keyup provisions passwordless SSH access to a remote host in one shot:
it generates a dedicated ed25519 key pair, installs the public key on the
remote account, writes a per-host config stanza, wires it into your
~/.ssh/config via an Include line, and verifies the result.

Each host gets its own credential store under ~/.ssh/include.d/<alias>/
holding the key pair and the config stanza, so removing a host later is
deleting one directory and one Include line.

Examples:
  keyup db1 192.168.1.50 admin
  keyup web-prod 10.0.4.20 deploy --force
  keyup db1 192.168.1.50 admin --json

Exit codes:
  0  success
  1  invalid arguments
  2  local filesystem or config failure
  3  key generation failed
  4  remote key installation failed
  5  setup succeeded but the connectivity check failed`,
	Args: cobra.ArbitraryArgs, // validated with the full taxonomy in ParseArgs
	RunE: func(cmd *cobra.Command, args []string) error {
		return provisionCommand(args)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.Flags().BoolVar(&forceFlag, "force", false, "Replace an existing key pair for the host")
	rootCmd.Flags().BoolVarP(&yesFlag, "yes", "y", false, "Assume yes for all prompts")
	rootCmd.Flags().BoolVar(&skipVerifyFlag, "skip-verify", false, "Skip the final connectivity check")
	rootCmd.PersistentFlags().BoolVar(&machineMode, "json", false, "Output machine-readable JSON")
}

// Execute runs the root command and exits with the code mapped from the
// failure taxonomy. Human-readable errors are already rendered by the
// structured error type; plain errors get the raw cobra treatment.
func Execute() {
	err := rootCmd.Execute()
	if err == nil {
		return
	}

	if machineMode {
		_ = WriteJSONFromError(os.Stdout, err)
	} else {
		fmt.Fprintln(os.Stderr, err.Error())
	}
	os.Exit(errors.ExitCode(err))
}
