package sshutil

// SSHClient defines the interface for SSH command execution. Both the
// real Client and mock implementations satisfy it, so code that verifies
// connectivity can be tested without a live host.
type SSHClient interface {
	// Exec runs a command and returns stdout, stderr, and exit code.
	// Exit code is -1 if the command couldn't be executed at all.
	// A non-zero exit code with nil error means the command ran but failed.
	Exec(cmd string) (stdout, stderr []byte, exitCode int, err error)

	// Close closes the SSH connection.
	Close() error

	// GetAlias returns the alias the connection was opened for.
	GetAlias() string

	// GetAddress returns the resolved host:port address.
	GetAddress() string
}
