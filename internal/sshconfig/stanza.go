// Package sshconfig renders per-host SSH config stanzas and maintains the
// Include wiring in the user's global SSH config file.
package sshconfig

import (
	"fmt"
	"os"

	"github.com/rmalloy/keyup/internal/errors"
)

// Stanza is the per-host config block. It is regenerated in full on every
// run, so writing it is idempotent by construction.
type Stanza struct {
	Host         string
	HostName     string
	User         string
	IdentityFile string
}

// Render serializes the stanza in the canonical four-line format.
func (s Stanza) Render() string {
	return fmt.Sprintf("Host %s\n    HostName %s\n    User %s\n    IdentityFile %s\n",
		s.Host, s.HostName, s.User, s.IdentityFile)
}

// WriteHostConfig writes the stanza to path, fully replacing any previous
// content. The file is owner read/write only; it lives inside the
// credential store next to the private key.
func WriteHostConfig(path string, s Stanza) error {
	if err := os.WriteFile(path, []byte(s.Render()), 0o600); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfigWriteFailed,
			"Couldn't write the host config at "+path,
			"Check permissions on the credential store directory")
	}
	return nil
}
