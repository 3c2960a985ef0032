package errors

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorCodesUnique(t *testing.T) {
	codes := []string{
		ErrInvalidArgumentCount,
		ErrInvalidAddressFormat,
		ErrDirectoryCreateFailed,
		ErrAclApplyFailed,
		ErrConfigWriteFailed,
		ErrGlobalConfigUpdateFailed,
		ErrKeyGenerationFailed,
		ErrRemoteKeyInstallFailed,
		ErrConnectivityCheckFailed,
	}

	seen := make(map[string]bool)
	for _, code := range codes {
		assert.NotEmpty(t, code, "failure code should not be empty")
		assert.False(t, seen[code], "failure code %q should be unique", code)
		seen[code] = true
	}
}

func TestNew(t *testing.T) {
	err := New(ErrInvalidAddressFormat,
		"'999.1.2.3' is not a valid IPv4 address",
		"Each octet must be between 0 and 255")

	require.NotNil(t, err)
	assert.Equal(t, ErrInvalidAddressFormat, err.Code)
	assert.Nil(t, err.Cause)

	msg := err.Error()
	assert.Contains(t, msg, "✗")
	assert.Contains(t, msg, "999.1.2.3")
	assert.Contains(t, msg, "between 0 and 255")
}

func TestWrapWithCode(t *testing.T) {
	cause := errors.New("setfacl: command not found")
	err := WrapWithCode(cause, ErrAclApplyFailed,
		"Couldn't apply the default ACL",
		"Install the acl package")

	assert.Equal(t, ErrAclApplyFailed, err.Code)
	assert.Same(t, cause, err.Unwrap())
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "setfacl: command not found")
}

func TestErrorFormatOrder(t *testing.T) {
	err := WrapWithCode(errors.New("why"), ErrConfigWriteFailed, "what", "how")
	out := err.Error()

	whatIdx := strings.Index(out, "what")
	whyIdx := strings.Index(out, "why")
	howIdx := strings.Index(out, "how")

	require.True(t, whatIdx >= 0 && whyIdx >= 0 && howIdx >= 0)
	assert.Less(t, whatIdx, whyIdx, "message should come before cause")
	assert.Less(t, whyIdx, howIdx, "cause should come before suggestion")
}

func TestIsCode(t *testing.T) {
	err := New(ErrKeyGenerationFailed, "ssh-keygen failed", "")

	assert.True(t, IsCode(err, ErrKeyGenerationFailed))
	assert.False(t, IsCode(err, ErrRemoteKeyInstallFailed))
	assert.False(t, IsCode(nil, ErrKeyGenerationFailed))
	assert.False(t, IsCode(errors.New("plain"), ErrKeyGenerationFailed))

	// Works through wrapping
	wrapped := WrapWithCode(err, ErrRemoteKeyInstallFailed, "outer", "")
	assert.True(t, IsCode(wrapped, ErrRemoteKeyInstallFailed))
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil error", nil, ExitOK},
		{"wrong arity", New(ErrInvalidArgumentCount, "", ""), ExitValidation},
		{"bad address", New(ErrInvalidAddressFormat, "", ""), ExitValidation},
		{"mkdir failed", New(ErrDirectoryCreateFailed, "", ""), ExitLocal},
		{"acl failed", New(ErrAclApplyFailed, "", ""), ExitLocal},
		{"stanza write failed", New(ErrConfigWriteFailed, "", ""), ExitLocal},
		{"global merge failed", New(ErrGlobalConfigUpdateFailed, "", ""), ExitLocal},
		{"keygen failed", New(ErrKeyGenerationFailed, "", ""), ExitKeygen},
		{"remote install failed", New(ErrRemoteKeyInstallFailed, "", ""), ExitRemote},
		{"verify failed", New(ErrConnectivityCheckFailed, "", ""), ExitVerify},
		{"plain error", errors.New("unexpected"), ExitValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}
