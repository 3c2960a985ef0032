package sshutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestResolveDefaults(t *testing.T) {
	// No config file at all: alias resolves to itself on port 22
	settings, err := Resolve(filepath.Join(t.TempDir(), "missing"), "db1")
	require.NoError(t, err)

	assert.Equal(t, "db1", settings.Hostname)
	assert.Equal(t, "22", settings.Port)
	assert.Equal(t, "db1:22", settings.Address())
	assert.Empty(t, settings.User)
	assert.Empty(t, settings.IdentityFile)
}

func TestResolveStanza(t *testing.T) {
	path := writeConfig(t, `Host db1
    HostName 10.1.2.3
    User admin
    IdentityFile /home/me/.ssh/include.d/db1/db1
`)

	settings, err := Resolve(path, "db1")
	require.NoError(t, err)

	assert.Equal(t, "10.1.2.3", settings.Hostname)
	assert.Equal(t, "admin", settings.User)
	assert.Equal(t, "/home/me/.ssh/include.d/db1/db1", settings.IdentityFile)
	assert.Equal(t, "10.1.2.3:22", settings.Address())
}

func TestResolveThroughInclude(t *testing.T) {
	// The global config only carries an Include line; the stanza lives in
	// the per-host file, the way keyup lays things out.
	dir := t.TempDir()
	hostConfig := filepath.Join(dir, "db1-config")
	require.NoError(t, os.WriteFile(hostConfig, []byte(`Host db1
    HostName 10.1.2.3
    User admin
`), 0o600))

	globalConfig := filepath.Join(dir, "config")
	require.NoError(t, os.WriteFile(globalConfig, []byte("Include "+hostConfig+"\n"), 0o600))

	settings, err := Resolve(globalConfig, "db1")
	require.NoError(t, err)

	assert.Equal(t, "10.1.2.3", settings.Hostname)
	assert.Equal(t, "admin", settings.User)
}

func TestResolveUnknownAlias(t *testing.T) {
	path := writeConfig(t, `Host other
    HostName 10.9.9.9
`)

	settings, err := Resolve(path, "db1")
	require.NoError(t, err)

	// Falls through to OpenSSH defaults
	assert.Equal(t, "db1", settings.Hostname)
	assert.Equal(t, "22", settings.Port)
}

func TestResolveCustomPort(t *testing.T) {
	path := writeConfig(t, `Host db1
    HostName 10.1.2.3
    Port 2222
`)

	settings, err := Resolve(path, "db1")
	require.NoError(t, err)
	assert.Equal(t, "10.1.2.3:2222", settings.Address())
}

func TestDialRequiresIdentityFile(t *testing.T) {
	settings := &Settings{Alias: "db1", Hostname: "10.1.2.3", Port: "22", User: "admin"}

	_, err := Dial(settings, filepath.Join(t.TempDir(), "known_hosts"), 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "identity file")
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".ssh/id"), expandPath("~/.ssh/id"))
	assert.Equal(t, "/abs/path", expandPath("/abs/path"))
}
