package provision

import (
	"github.com/rmalloy/keyup/internal/keys"
	"github.com/rmalloy/keyup/internal/logger"
	"github.com/rmalloy/keyup/internal/sshconfig"
	"github.com/rmalloy/keyup/internal/store"
	"github.com/rmalloy/keyup/internal/verify"
)

// Step names reported to the Observer, in execution order.
const (
	StepStore   = "Preparing credential store"
	StepKeys    = "Generating key pair"
	StepInstall = "Installing public key on remote host"
	StepStanza  = "Writing host config"
	StepInclude = "Updating global SSH config"
	StepVerify  = "Verifying connectivity"
)

// StoreManager creates the per-host credential store.
type StoreManager interface {
	Ensure(alias string) (store.Store, error)
}

// KeyProvisioner generates the per-host key pair.
type KeyProvisioner interface {
	Generate(st store.Store, force bool) (keys.Pair, error)
}

// RemoteInstaller installs the public key on the remote account.
type RemoteInstaller interface {
	Install(target, pubKeyPath string) error
}

// ConfigComposer writes the host config stanza and merges the Include
// line into the global SSH config.
type ConfigComposer interface {
	WriteStanza(path string, s sshconfig.Stanza) error
	MergeInclude(globalPath, hostConfigPath string) (changed bool, err error)
}

// ConnectivityChecker runs the closing end-to-end check.
type ConnectivityChecker interface {
	Check(alias string) (*verify.Report, error)
}

// Observer receives step lifecycle events, so the CLI can render progress
// without the workflow knowing about terminals.
type Observer interface {
	StepStart(name string)
	StepDone(name, detail string)
	StepSkipped(name, reason string)
	StepFailed(name string, err error)
}

// NoopObserver ignores all events.
type NoopObserver struct{}

func (NoopObserver) StepStart(string)           {}
func (NoopObserver) StepDone(string, string)    {}
func (NoopObserver) StepSkipped(string, string) {}
func (NoopObserver) StepFailed(string, error)   {}

// Options adjust a single workflow run.
type Options struct {
	Force      bool // replace an existing key pair
	SkipVerify bool // stop after the config merge
}

// Result reports what a successful (or partially successful) run produced.
type Result struct {
	Request      *Request
	Store        store.Store
	KeyPair      keys.Pair
	IncludeAdded bool           // false when the Include line was already present
	Verified     bool           // false when verification was skipped
	Report       *verify.Report // nil when verification was skipped
}

// Workflow executes the provisioning steps in their fixed order. Each step
// only runs when all previous steps succeeded, so a failure leaves no
// partially wired config behind: the stanza and the Include line are only
// written after the remote host already trusts the key.
type Workflow struct {
	globalConfig string

	stores   StoreManager
	keys     KeyProvisioner
	remote   RemoteInstaller
	composer ConfigComposer
	verifier ConnectivityChecker

	observe Observer
	log     logger.Logger
}

// NewWorkflow wires the workflow from its step implementations.
func NewWorkflow(globalConfig string, stores StoreManager, keyGen KeyProvisioner,
	remote RemoteInstaller, composer ConfigComposer, verifier ConnectivityChecker,
	observe Observer, log logger.Logger) *Workflow {
	if observe == nil {
		observe = NoopObserver{}
	}
	return &Workflow{
		globalConfig: globalConfig,
		stores:       stores,
		keys:         keyGen,
		remote:       remote,
		composer:     composer,
		verifier:     verifier,
		observe:      observe,
		log:          log,
	}
}

// Run executes the workflow for a validated request.
func (w *Workflow) Run(req *Request, opts Options) (*Result, error) {
	result := &Result{Request: req}

	w.observe.StepStart(StepStore)
	st, err := w.stores.Ensure(req.HostAlias)
	if err != nil {
		w.observe.StepFailed(StepStore, err)
		return result, err
	}
	result.Store = st
	w.observe.StepDone(StepStore, st.Dir)

	w.observe.StepStart(StepKeys)
	pair, err := w.keys.Generate(st, opts.Force)
	if err != nil {
		w.observe.StepFailed(StepKeys, err)
		return result, err
	}
	result.KeyPair = pair
	w.observe.StepDone(StepKeys, pair.PublicKeyPath)

	w.observe.StepStart(StepInstall)
	if err := w.remote.Install(req.Target(), pair.PublicKeyPath); err != nil {
		w.observe.StepFailed(StepInstall, err)
		return result, err
	}
	w.observe.StepDone(StepInstall, req.Target())

	w.observe.StepStart(StepStanza)
	stanza := sshconfig.Stanza{
		Host:         req.HostAlias,
		HostName:     req.RemoteAddress,
		User:         req.RemoteUser,
		IdentityFile: pair.PrivateKeyPath,
	}
	if err := w.composer.WriteStanza(st.ConfigPath(), stanza); err != nil {
		w.observe.StepFailed(StepStanza, err)
		return result, err
	}
	w.observe.StepDone(StepStanza, st.ConfigPath())

	w.observe.StepStart(StepInclude)
	changed, err := w.composer.MergeInclude(w.globalConfig, st.ConfigPath())
	if err != nil {
		w.observe.StepFailed(StepInclude, err)
		return result, err
	}
	result.IncludeAdded = changed
	if changed {
		w.observe.StepDone(StepInclude, "Include line added to "+w.globalConfig)
	} else {
		w.observe.StepDone(StepInclude, "Include line already present")
	}

	// The receipt records what was provisioned. Best-effort: a receipt
	// failure never fails a run whose SSH setup succeeded.
	if err := writeReceipt(st, req); err != nil {
		w.log.Warn("couldn't write receipt: %v", err)
	}

	if opts.SkipVerify {
		w.observe.StepSkipped(StepVerify, "--skip-verify")
		return result, nil
	}

	w.observe.StepStart(StepVerify)
	report, err := w.verifier.Check(req.HostAlias)
	if err != nil {
		// Setup is complete at this point; the caller maps this to its
		// own exit code and tells the user what to try.
		w.observe.StepFailed(StepVerify, err)
		return result, err
	}
	result.Verified = true
	result.Report = report
	w.observe.StepDone(StepVerify, report.Address)

	return result, nil
}

// Composer is the production ConfigComposer, delegating to sshconfig.
type Composer struct{}

func (Composer) WriteStanza(path string, s sshconfig.Stanza) error {
	return sshconfig.WriteHostConfig(path, s)
}

func (Composer) MergeInclude(globalPath, hostConfigPath string) (bool, error) {
	return sshconfig.EnsureInclude(globalPath, hostConfigPath)
}
