package keys

import (
	"fmt"
	"strings"

	"github.com/rmalloy/keyup/internal/errors"
	"github.com/rmalloy/keyup/internal/logger"
	"github.com/rmalloy/keyup/internal/runner"
)

// Installer pushes a public key to a remote host's authorized_keys using
// ssh-copy-id. The initial transfer authenticates however the remote
// currently allows (typically password), prompting on the controlling
// terminal.
type Installer struct {
	run runner.Runner
	log logger.Logger
}

// NewInstaller returns an Installer backed by the given runner.
func NewInstaller(run runner.Runner, log logger.Logger) *Installer {
	return &Installer{run: run, log: log}
}

// Install copies the public key at pubKeyPath to target (user@address).
// Any non-zero outcome is fatal for the run; transient network failures
// are surfaced rather than retried.
func (i *Installer) Install(target, pubKeyPath string) error {
	path, err := i.run.LookPath("ssh-copy-id")
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrRemoteKeyInstallFailed,
			"Can't find ssh-copy-id",
			"Install OpenSSH, or copy the key manually")
	}

	i.log.Debug("installing %s on %s", pubKeyPath, target)
	output, code, err := i.run.Run(path, "-i", pubKeyPath, target)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrRemoteKeyInstallFailed,
			"Couldn't run ssh-copy-id",
			"Ensure OpenSSH is installed")
	}
	if code != 0 {
		outputStr := strings.TrimSpace(string(output))
		return errors.WrapWithCode(
			fmt.Errorf("ssh-copy-id exited %d: %s", code, outputStr),
			errors.ErrRemoteKeyInstallFailed,
			"Couldn't install the key on "+target,
			installSuggestion(outputStr, pubKeyPath, target))
	}

	return nil
}

// installSuggestion picks an actionable hint from ssh-copy-id's output.
func installSuggestion(output, pubKeyPath, target string) string {
	switch {
	case strings.Contains(output, "Permission denied"):
		return "Double-check the password or credentials and try again"
	case strings.Contains(output, "Connection refused"):
		return "Make sure SSH is running on the remote machine"
	case strings.Contains(output, "Could not resolve hostname"),
		strings.Contains(output, "Name or service not known"):
		return "Check the address and your network connection"
	case strings.Contains(output, "Connection timed out"),
		strings.Contains(output, "Operation timed out"):
		return "The host didn't answer; check the address and any firewalls"
	default:
		return "Try manually: ssh-copy-id -i " + pubKeyPath + " " + target
	}
}
