// Package runner abstracts invocation of the external tools keyup drives
// (ssh-keygen, ssh-copy-id, setfacl, ssh). The workflow only branches on a
// tool's combined output and exit status, so every collaborator is modeled
// as a Runner call and tests substitute a fake.
package runner

import (
	"os/exec"
)

// Runner executes external commands on behalf of the provisioning steps.
type Runner interface {
	// LookPath reports the full path of an executable, or an error if the
	// tool is not installed.
	LookPath(name string) (string, error)

	// Run executes the command and returns its combined output and exit
	// code. Exit code is -1 if the command couldn't be started at all, in
	// which case err describes why. A non-zero exit code with nil err
	// means the command ran but failed.
	//
	// Stdin, and the controlling terminal, are inherited from the keyup
	// process: ssh-copy-id and ssh prompt for passwords on /dev/tty, which
	// works even while output is captured.
	Run(name string, args ...string) (output []byte, exitCode int, err error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// NewExecRunner returns a Runner backed by os/exec.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// LookPath reports the full path of an executable.
func (r *ExecRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// Run executes the command, capturing combined output.
func (r *ExecRunner) Run(name string, args ...string) ([]byte, int, error) {
	cmd := exec.Command(name, args...)

	output, runErr := cmd.CombinedOutput()
	if runErr != nil {
		if exitErr, ok := runErr.(*exec.ExitError); ok {
			return output, exitErr.ExitCode(), nil
		}
		// Couldn't start at all; callers attach their own failure code.
		return output, -1, runErr
	}

	return output, 0, nil
}
