package cli

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kerrors "github.com/rmalloy/keyup/internal/errors"
)

func TestWriteJSONSuccess(t *testing.T) {
	var buf bytes.Buffer
	err := WriteJSONSuccess(&buf, provisionResult{
		Host:         "db1",
		Address:      "10.1.2.3",
		User:         "admin",
		IncludeAdded: true,
		Verified:     true,
	})
	require.NoError(t, err)

	var env JSONEnvelope
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Nil(t, env.Error)

	data, ok := env.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "db1", data["host"])
	assert.Equal(t, true, data["verified"])
}

func TestWriteJSONFromStructuredError(t *testing.T) {
	var buf bytes.Buffer
	kerr := kerrors.New(kerrors.ErrRemoteKeyInstallFailed,
		"Couldn't install the key on admin@10.1.2.3",
		"Check the password")
	require.NoError(t, WriteJSONFromError(&buf, kerr))

	var env JSONEnvelope
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, kerrors.ErrRemoteKeyInstallFailed, env.Error.Code)
	assert.Equal(t, "Couldn't install the key on admin@10.1.2.3", env.Error.Message)
	assert.Equal(t, "Check the password", env.Error.Suggestion)
	assert.Equal(t, kerrors.ExitRemote, env.Error.ExitCode)
}

func TestErrorToJSONPlainError(t *testing.T) {
	jerr := ErrorToJSON(stderrors.New("boom"))
	require.NotNil(t, jerr)
	assert.Equal(t, kerrors.ErrInvalidArgumentCount, jerr.Code)
	assert.Equal(t, "boom", jerr.Message)
	assert.Equal(t, kerrors.ExitValidation, jerr.ExitCode)
}

func TestErrorToJSONNil(t *testing.T) {
	assert.Nil(t, ErrorToJSON(nil))
}
