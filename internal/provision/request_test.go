package provision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kerrors "github.com/rmalloy/keyup/internal/errors"
)

func TestParseArgs(t *testing.T) {
	req, err := ParseArgs([]string{"db1", "192.168.1.50", "admin"}, "me")
	require.NoError(t, err)

	assert.Equal(t, "db1", req.HostAlias)
	assert.Equal(t, "192.168.1.50", req.RemoteAddress)
	assert.Equal(t, "admin", req.RemoteUser)
	assert.Equal(t, "me", req.LocalUser)
	assert.Equal(t, "admin@192.168.1.50", req.Target())
}

func TestParseArgsWrongCount(t *testing.T) {
	for _, args := range [][]string{
		{},
		{"db1"},
		{"db1", "10.0.0.1"},
		{"db1", "10.0.0.1", "admin", "extra"},
	} {
		_, err := ParseArgs(args, "me")
		require.Error(t, err, "args: %v", args)
		assert.True(t, kerrors.IsCode(err, kerrors.ErrInvalidArgumentCount))
		assert.Equal(t, kerrors.ExitValidation, kerrors.ExitCode(err))
	}
}

func TestParseArgsBadAddress(t *testing.T) {
	for _, addr := range []string{
		"999.1.1.1",
		"10.0.0",
		"10.0.0.0.1",
		"10.0.0.256",
		"10.0.0.-1",
		"10.0.0.+1",
		"10..0.1",
		"a.b.c.d",
		"10.0.0.1a",
		"2001:db8::1",
		"example.com",
		"",
	} {
		_, err := ParseArgs([]string{"db1", addr, "admin"}, "me")
		require.Error(t, err, "address: %q", addr)
		assert.True(t, kerrors.IsCode(err, kerrors.ErrInvalidAddressFormat), "address: %q", addr)
	}
}

func TestValidIPv4Accepts(t *testing.T) {
	for _, addr := range []string{
		"0.0.0.0",
		"127.0.0.1",
		"192.168.1.50",
		"255.255.255.255",
	} {
		assert.True(t, ValidIPv4(addr), "address: %q", addr)
	}
}

func TestParseArgsBadAlias(t *testing.T) {
	for _, alias := range []string{"", ".", "..", "a/b", "a b", "db*"} {
		_, err := ParseArgs([]string{alias, "10.0.0.1", "admin"}, "me")
		require.Error(t, err, "alias: %q", alias)
		assert.Equal(t, kerrors.ExitValidation, kerrors.ExitCode(err))
	}
}

func TestParseArgsBadUsername(t *testing.T) {
	for _, username := range []string{"", "admin@host", "a b"} {
		_, err := ParseArgs([]string{"db1", "10.0.0.1", username}, "me")
		require.Error(t, err, "username: %q", username)
		assert.Equal(t, kerrors.ExitValidation, kerrors.ExitCode(err))
	}
}
