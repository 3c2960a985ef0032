package sshconfig

import (
	"os"

	"github.com/kevinburke/ssh_config"
	"github.com/rmalloy/keyup/internal/errors"
)

// HostEntry holds the fields parsed back out of a per-host config file.
// Used by `keyup check` to confirm the stanza on disk says what the
// provisioning run intended.
type HostEntry struct {
	Alias        string
	HostName     string
	User         string
	IdentityFile string
}

// ReadHostConfig parses the per-host config file at path and returns the
// entry for alias. Fields the file doesn't set come back empty.
func ReadHostConfig(path, alias string) (HostEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return HostEntry{}, errors.WrapWithCode(err, errors.ErrConfigWriteFailed,
			"Couldn't open the host config at "+path,
			"Run keyup for this host to create it")
	}
	defer f.Close()

	cfg, err := ssh_config.Decode(f)
	if err != nil {
		return HostEntry{}, errors.WrapWithCode(err, errors.ErrConfigWriteFailed,
			"The host config at "+path+" doesn't parse as SSH config",
			"Re-run keyup for this host to regenerate it")
	}

	entry := HostEntry{Alias: alias}
	if v, err := cfg.Get(alias, "HostName"); err == nil {
		entry.HostName = v
	}
	if v, err := cfg.Get(alias, "User"); err == nil {
		entry.User = v
	}
	if v, err := cfg.Get(alias, "IdentityFile"); err == nil {
		entry.IdentityFile = v
	}
	return entry, nil
}
