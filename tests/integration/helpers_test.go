package integration

import (
	"os"
	"testing"
)

// RequireSSH skips the test unless a real SSH server is configured via
// environment variables. These tests never run in a plain `go test ./...`;
// point them at a disposable host:
//
//	KEYUP_TEST_SSH_HOST=127.0.0.1 KEYUP_TEST_SSH_USER=tester \
//	KEYUP_TEST_SSH_KEY=~/.ssh/tester go test ./tests/integration/
func RequireSSH(t *testing.T) {
	t.Helper()
	if os.Getenv("KEYUP_TEST_SSH_HOST") == "" {
		t.Skip("Skipping: KEYUP_TEST_SSH_HOST not set (SSH test server not available)")
	}
	if os.Getenv("KEYUP_TEST_SSH_KEY") == "" {
		t.Skip("Skipping: KEYUP_TEST_SSH_KEY not set (SSH test key not available)")
	}
}

// testSSHHost returns the SSH host configured for testing.
func testSSHHost() string {
	return os.Getenv("KEYUP_TEST_SSH_HOST")
}

// testSSHUser returns the SSH user configured for testing, defaulting to
// the current user.
func testSSHUser() string {
	user := os.Getenv("KEYUP_TEST_SSH_USER")
	if user == "" {
		return os.Getenv("USER")
	}
	return user
}

// testSSHKey returns the path of a private key already authorized on the
// test server.
func testSSHKey() string {
	return os.Getenv("KEYUP_TEST_SSH_KEY")
}
