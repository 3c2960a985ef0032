package sshconfig

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rmalloy/keyup/internal/errors"
)

// IncludeLine returns the literal global-config line that pulls in a
// per-host config file.
func IncludeLine(hostConfigPath string) string {
	return "Include " + hostConfigPath
}

// EnsureInclude guarantees the global SSH config at globalPath contains,
// as a whole line, exactly one occurrence of the Include directive for
// hostConfigPath. The line is prepended when missing: ssh matches the
// first Host block that applies, so a new specific stanza has to come
// before any broader wildcard rules already in the file.
//
// Returns changed=false for the idempotent no-op. The file is replaced
// atomically (temp file, fsync, rename) so a crash mid-write can never
// leave a truncated config; on failure the original file is intact.
func EnsureInclude(globalPath, hostConfigPath string) (changed bool, err error) {
	line := IncludeLine(hostConfigPath)

	existing, mode, err := readGlobal(globalPath)
	if err != nil {
		return false, err
	}

	for _, l := range strings.Split(string(existing), "\n") {
		if l == line {
			return false, nil
		}
	}

	content := append([]byte(line+"\n"), existing...)
	if err := atomicReplace(globalPath, content, mode); err != nil {
		return false, errors.WrapWithCode(err, errors.ErrGlobalConfigUpdateFailed,
			"Couldn't update "+globalPath,
			"The original file is untouched; check permissions on its directory")
	}
	return true, nil
}

// HasInclude reports whether the global config already carries the literal
// include line for hostConfigPath.
func HasInclude(globalPath, hostConfigPath string) (bool, error) {
	existing, _, err := readGlobal(globalPath)
	if err != nil {
		return false, err
	}
	line := IncludeLine(hostConfigPath)
	for _, l := range strings.Split(string(existing), "\n") {
		if l == line {
			return true, nil
		}
	}
	return false, nil
}

// readGlobal reads the global config, treating a missing file as empty.
// The returned mode is what the replacement file should carry: the
// existing file's permission bits, or owner-only read/write for a file we
// are about to create.
func readGlobal(globalPath string) ([]byte, os.FileMode, error) {
	info, err := os.Stat(globalPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0o600, nil
		}
		return nil, 0, errors.WrapWithCode(err, errors.ErrGlobalConfigUpdateFailed,
			"Couldn't stat "+globalPath,
			"Check permissions on the SSH directory")
	}

	data, err := os.ReadFile(globalPath)
	if err != nil {
		return nil, 0, errors.WrapWithCode(err, errors.ErrGlobalConfigUpdateFailed,
			"Couldn't read "+globalPath,
			"Check the file is readable")
	}
	return data, info.Mode().Perm(), nil
}

// atomicReplace writes data to a sibling temp file, syncs it, and renames
// it over path. Readers never observe a partially written file.
func atomicReplace(path string, data []byte, mode os.FileMode) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Chmod(mode); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
