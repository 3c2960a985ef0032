package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/rmalloy/keyup/internal/config"
	"github.com/rmalloy/keyup/internal/errors"
	"github.com/rmalloy/keyup/internal/keys"
	"github.com/rmalloy/keyup/internal/logger"
	"github.com/rmalloy/keyup/internal/provision"
	"github.com/rmalloy/keyup/internal/runner"
	"github.com/rmalloy/keyup/internal/store"
	"github.com/rmalloy/keyup/internal/ui"
	"github.com/rmalloy/keyup/internal/verify"
)

// provisionResult is the data half of the --json envelope for a run.
type provisionResult struct {
	Host         string `json:"host"`
	Address      string `json:"address"`
	User         string `json:"user"`
	StoreDir     string `json:"store_dir"`
	PublicKey    string `json:"public_key"`
	IncludeAdded bool   `json:"include_added"`
	Verified     bool   `json:"verified"`
	LatencyMs    int64  `json:"latency_ms,omitempty"`
}

// provisionCommand validates the arguments and runs the workflow.
func provisionCommand(args []string) error {
	settings, err := config.Load()
	if err != nil {
		return err
	}

	req, err := provision.ParseArgs(args, settings.LocalUser)
	if err != nil {
		return err
	}

	force := forceFlag
	st := store.Store{Alias: req.HostAlias, Dir: settings.StoreDir(req.HostAlias)}
	if !force {
		replace, err := confirmReplaceKey(st)
		if err != nil {
			return err
		}
		force = replace
	}

	log := logger.NewEnvLogger("[keyup]")
	run := runner.NewExecRunner()

	var observe provision.Observer = provision.NoopObserver{}
	if !machineMode {
		fmt.Printf("Setting up passwordless SSH for '%s' (%s)\n\n", req.HostAlias, req.Target())
		observe = newSpinnerObserver()
	}

	workflow := provision.NewWorkflow(
		settings.GlobalConfig,
		store.NewManager(settings.IncludeDir, settings.ACLTool, run, log),
		keys.NewGenerator(settings.KeyType, settings.KeyComment, run, log),
		keys.NewInstaller(run, log),
		provision.Composer{},
		verify.New(settings.GlobalConfig, settings.KnownHosts, settings.VerifyTimeout, log),
		observe,
		log,
	)

	result, err := workflow.Run(req, provision.Options{Force: force, SkipVerify: skipVerifyFlag})
	if err != nil {
		return err
	}

	if machineMode {
		data := provisionResult{
			Host:         req.HostAlias,
			Address:      req.RemoteAddress,
			User:         req.RemoteUser,
			StoreDir:     result.Store.Dir,
			PublicKey:    result.KeyPair.PublicKeyPath,
			IncludeAdded: result.IncludeAdded,
			Verified:     result.Verified,
		}
		if result.Report != nil {
			data.LatencyMs = result.Report.Latency.Milliseconds()
		}
		return WriteJSONSuccess(os.Stdout, data)
	}

	fmt.Printf("\n%s Done. Connect with: ssh %s\n", ui.SymbolSuccess, req.HostAlias)
	if !result.Verified {
		fmt.Printf("%s Connectivity was not verified (--skip-verify)\n", ui.SymbolSkipped)
	}
	return nil
}

// confirmReplaceKey handles an existing key pair found before the run.
// Interactively the user gets a confirm prompt; --yes counts as
// confirmation, and in non-interactive use the workflow's own refusal
// (re-run with --force) stands.
func confirmReplaceKey(st store.Store) (bool, error) {
	if _, err := os.Stat(st.PrivateKeyPath()); err != nil {
		return false, nil // no existing key, nothing to decide
	}

	if yesFlag {
		return true, nil
	}
	if machineMode || !term.IsTerminal(int(os.Stdin.Fd())) {
		return false, nil
	}

	var replace bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("A key pair for '%s' already exists. Replace it?", st.Alias)).
				Description("The remote host keeps trusting the old key until it is replaced").
				Value(&replace),
		),
	)
	if err := form.Run(); err != nil {
		return false, errors.WrapWithCode(err, errors.ErrKeyGenerationFailed,
			"Couldn't read the confirmation prompt",
			"Re-run with --force to replace the key without prompting")
	}
	return replace, nil
}
