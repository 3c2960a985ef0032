package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rmalloy/keyup/internal/config"
	"github.com/rmalloy/keyup/internal/errors"
	"github.com/rmalloy/keyup/internal/logger"
	"github.com/rmalloy/keyup/internal/provision"
	"github.com/rmalloy/keyup/internal/sshconfig"
	"github.com/rmalloy/keyup/internal/store"
	"github.com/rmalloy/keyup/internal/ui"
	"github.com/rmalloy/keyup/internal/verify"
)

var checkOffline bool

// checkCmd inspects a previously provisioned host: are the key files,
// the stanza, and the Include line all still in place, and does the
// connection still work.
var checkCmd = &cobra.Command{
	Use:   "check <host_alias>",
	Short: "Check a provisioned host's setup",
	Long: `Check that everything keyup set up for a host is still in place: the
key pair and config stanza in the credential store, the Include line in
the global SSH config, and (unless --offline) that the connection works.

Examples:
  keyup check db1
  keyup check db1 --offline`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return checkCommand(args[0])
	},
	SilenceUsage: true,
}

func init() {
	checkCmd.Flags().BoolVar(&checkOffline, "offline", false, "Skip the connectivity check")
	rootCmd.AddCommand(checkCmd)
}

// checkReport is the data half of the --json envelope for a check.
type checkReport struct {
	Host            string `json:"host"`
	StoreDir        string `json:"store_dir"`
	PrivateKey      bool   `json:"private_key"`
	PublicKey       bool   `json:"public_key"`
	Stanza          bool   `json:"stanza"`
	StanzaAddress   string `json:"stanza_address,omitempty"`
	StanzaUser      string `json:"stanza_user,omitempty"`
	IncludeWired    bool   `json:"include_wired"`
	Receipt         bool   `json:"receipt"`
	ProvisionedAt   string `json:"provisioned_at,omitempty"`
	Connected       bool   `json:"connected"`
	ConnectionError string `json:"connection_error,omitempty"`
}

func checkCommand(alias string) error {
	settings, err := config.Load()
	if err != nil {
		return err
	}

	st := store.Store{Alias: alias, Dir: settings.StoreDir(alias)}
	report := checkReport{Host: alias, StoreDir: st.Dir}

	report.PrivateKey = fileExists(st.PrivateKeyPath())
	report.PublicKey = fileExists(st.PublicKeyPath())

	if fileExists(st.ConfigPath()) {
		entry, err := sshconfig.ReadHostConfig(st.ConfigPath(), alias)
		if err == nil && entry.HostName != "" {
			report.Stanza = true
			report.StanzaAddress = entry.HostName
			report.StanzaUser = entry.User
		}
	}

	if wired, err := sshconfig.HasInclude(settings.GlobalConfig, st.ConfigPath()); err == nil {
		report.IncludeWired = wired
	}

	if receipt, err := provision.ReadReceipt(st); err == nil {
		report.Receipt = true
		report.ProvisionedAt = receipt.ProvisionedAt.Format("2006-01-02 15:04:05 MST")
	}

	setupBroken := !report.PrivateKey || !report.PublicKey || !report.Stanza || !report.IncludeWired

	if !checkOffline && !setupBroken {
		v := verify.New(settings.GlobalConfig, settings.KnownHosts, settings.VerifyTimeout,
			logger.NewEnvLogger("[keyup]"))
		if _, err := v.Check(alias); err != nil {
			report.ConnectionError = err.Error()
		} else {
			report.Connected = true
		}
	}

	if machineMode {
		return WriteJSONSuccess(os.Stdout, report)
	}

	printCheckReport(report, setupBroken)

	if setupBroken {
		return errors.New(errors.ErrConfigWriteFailed,
			"The setup for '"+alias+"' is incomplete",
			"Re-run: keyup "+alias+" <ip_address> <username>")
	}
	if !checkOffline && !report.Connected {
		return errors.New(errors.ErrConnectivityCheckFailed,
			"The setup for '"+alias+"' looks intact, but connecting failed",
			"Try 'ssh -v "+alias+"' for the full client-side log")
	}
	return nil
}

func printCheckReport(report checkReport, setupBroken bool) {
	fmt.Printf("Checking '%s' (%s)\n\n", report.Host, report.StoreDir)

	printCheck("Private key", report.PrivateKey, "")
	printCheck("Public key", report.PublicKey, "")
	printCheck("Host config stanza", report.Stanza, report.StanzaUser+"@"+report.StanzaAddress)
	printCheck("Include line in global config", report.IncludeWired, "")
	if report.Receipt {
		printCheck("Provisioning receipt", true, report.ProvisionedAt)
	}

	if checkOffline || setupBroken {
		fmt.Printf("%s Connectivity not checked\n", ui.SymbolSkipped)
		return
	}
	if report.Connected {
		printCheck("Connection", true, "")
	} else {
		printCheck("Connection", false, "")
	}
}

func printCheck(label string, ok bool, detail string) {
	symbol := ui.SymbolSuccess
	if !ok {
		symbol = ui.SymbolFail
		detail = ""
	}
	if detail != "" && detail != "@" {
		fmt.Printf("%s %s (%s)\n", symbol, label, detail)
	} else {
		fmt.Printf("%s %s\n", symbol, label)
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
