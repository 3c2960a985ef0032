// Package verify performs the end-to-end connectivity check that closes
// the provisioning workflow: connect with the freshly installed alias and
// run a trivial command, exactly the way a later `ssh <alias>` would.
package verify

import (
	"fmt"
	"strings"
	"time"

	"github.com/rmalloy/keyup/internal/errors"
	"github.com/rmalloy/keyup/internal/logger"
	"github.com/rmalloy/keyup/pkg/sshutil"
)

// probeCommand is the no-op run over the connection to prove command
// execution works, not just the handshake.
const probeCommand = "true"

// FailReason categorizes why a connectivity check failed.
type FailReason int

const (
	FailUnknown FailReason = iota
	FailTimeout
	FailRefused
	FailUnreachable
	FailAuth
	FailHostKey
)

// String returns a human-readable description of the failure reason.
func (r FailReason) String() string {
	switch r {
	case FailTimeout:
		return "connection timed out"
	case FailRefused:
		return "connection refused"
	case FailUnreachable:
		return "host unreachable"
	case FailAuth:
		return "authentication failed"
	case FailHostKey:
		return "host key verification failed"
	default:
		return "unknown error"
	}
}

// DialFunc opens an SSH connection for resolved settings. Swapped for a
// fake in tests.
type DialFunc func(settings *sshutil.Settings, knownHostsPath string, timeout time.Duration) (sshutil.SSHClient, error)

// Report describes a successful connectivity check.
type Report struct {
	Alias   string
	Address string
	User    string
	Latency time.Duration
}

// Verifier checks that a provisioned alias actually works.
type Verifier struct {
	globalConfig string
	knownHosts   string
	timeout      time.Duration
	dial         DialFunc
	log          logger.Logger
}

// New creates a Verifier resolving aliases through globalConfig and
// trusting hosts per knownHosts.
func New(globalConfig, knownHosts string, timeout time.Duration, log logger.Logger) *Verifier {
	return &Verifier{
		globalConfig: globalConfig,
		knownHosts:   knownHosts,
		timeout:      timeout,
		dial: func(settings *sshutil.Settings, knownHostsPath string, timeout time.Duration) (sshutil.SSHClient, error) {
			return sshutil.Dial(settings, knownHostsPath, timeout)
		},
		log: log,
	}
}

// NewWithDial creates a Verifier with an injected dialer for tests.
func NewWithDial(globalConfig, knownHosts string, timeout time.Duration, dial DialFunc, log logger.Logger) *Verifier {
	v := New(globalConfig, knownHosts, timeout, log)
	v.dial = dial
	return v
}

// Check resolves alias through the SSH config, connects, and runs a
// trivial command. It returns a report with the measured latency, or a
// categorized error when any stage fails.
func (v *Verifier) Check(alias string) (*Report, error) {
	settings, err := sshutil.Resolve(v.globalConfig, alias)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConnectivityCheckFailed,
			fmt.Sprintf("Couldn't resolve '%s' from %s", alias, v.globalConfig),
			"Check the generated config stanza for syntax errors")
	}

	v.log.Debug("verifying %s at %s (timeout %s)", alias, settings.Address(), v.timeout)

	start := time.Now()
	client, err := v.dial(settings, v.knownHosts, v.timeout)
	if err != nil {
		reason := categorize(err)
		return nil, errors.WrapWithCode(err, errors.ErrConnectivityCheckFailed,
			fmt.Sprintf("Key installed, but connecting to '%s' failed: %s", alias, reason),
			suggestionFor(reason, alias))
	}
	defer client.Close()

	stdout, stderr, exitCode, err := client.Exec(probeCommand)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConnectivityCheckFailed,
			fmt.Sprintf("Connected to '%s', but running a command failed", alias),
			fmt.Sprintf("Try 'ssh %s' manually to see what the remote shell does", alias))
	}
	if exitCode != 0 {
		detail := strings.TrimSpace(string(stderr))
		if detail == "" {
			detail = strings.TrimSpace(string(stdout))
		}
		return nil, errors.New(errors.ErrConnectivityCheckFailed,
			fmt.Sprintf("Remote command exited with code %d on '%s'", exitCode, alias),
			"The account may have a restricted or broken shell: "+detail)
	}

	return &Report{
		Alias:   alias,
		Address: client.GetAddress(),
		User:    settings.User,
		Latency: time.Since(start),
	}, nil
}

// categorize converts a dial error into a failure reason by inspecting
// the error text, since the SSH library reports everything as opaque
// errors.
func categorize(err error) FailReason {
	if err == nil {
		return FailUnknown
	}
	errStr := strings.ToLower(err.Error())

	switch {
	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "i/o timeout"):
		return FailTimeout
	case strings.Contains(errStr, "connection refused"):
		return FailRefused
	case strings.Contains(errStr, "no route to host") ||
		strings.Contains(errStr, "network is unreachable") ||
		strings.Contains(errStr, "host is down"):
		return FailUnreachable
	case strings.Contains(errStr, "unable to authenticate") ||
		strings.Contains(errStr, "no supported methods") ||
		strings.Contains(errStr, "permission denied") ||
		strings.Contains(errStr, "authentication failed"):
		return FailAuth
	case strings.Contains(errStr, "host key") || strings.Contains(errStr, "key mismatch"):
		return FailHostKey
	default:
		return FailUnknown
	}
}

// suggestionFor maps a failure reason to the next step the user should try.
func suggestionFor(reason FailReason, alias string) string {
	switch reason {
	case FailTimeout:
		return "Check firewalls between you and the host, then retry"
	case FailRefused:
		return "Verify SSH is running on the host and listening on the configured port"
	case FailUnreachable:
		return "Check your network connection and the host's address"
	case FailAuth:
		return fmt.Sprintf("The key may not have landed in authorized_keys; try 'ssh -v %s' to see which keys are offered", alias)
	case FailHostKey:
		return "The host's key changed since it was recorded; remove the stale entry from known_hosts if the change is expected"
	default:
		return fmt.Sprintf("Try 'ssh -v %s' for the full client-side log", alias)
	}
}
