// Package store manages the per-host credential store: the directory that
// owns a host's key pair and its config fragment. The directory carries a
// default ACL so every file later created inside it inherits owner-only
// access without a separate chmod step.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rmalloy/keyup/internal/errors"
	"github.com/rmalloy/keyup/internal/logger"
	"github.com/rmalloy/keyup/internal/runner"
)

// Store locates the files owned by one host's credential store.
type Store struct {
	Alias string
	Dir   string
}

// PrivateKeyPath returns the path of the host's private key.
func (s Store) PrivateKeyPath() string {
	return filepath.Join(s.Dir, s.Alias)
}

// PublicKeyPath returns the path of the host's public key.
func (s Store) PublicKeyPath() string {
	return filepath.Join(s.Dir, s.Alias+".pub")
}

// ConfigPath returns the path of the host's config fragment.
func (s Store) ConfigPath() string {
	return filepath.Join(s.Dir, "config")
}

// ReceiptPath returns the path of the provisioning receipt.
func (s Store) ReceiptPath() string {
	return filepath.Join(s.Dir, ".keyup.yaml")
}

// Manager creates credential stores.
type Manager struct {
	includeDir string
	aclTool    string
	run        runner.Runner
	log        logger.Logger
}

// NewManager returns a Manager that roots stores under includeDir and
// applies default ACLs with aclTool (normally setfacl).
func NewManager(includeDir, aclTool string, run runner.Runner, log logger.Logger) *Manager {
	return &Manager{
		includeDir: includeDir,
		aclTool:    aclTool,
		run:        run,
		log:        log,
	}
}

// Ensure creates the store directory for alias if absent (a no-op when it
// already exists) and applies the default ACL. The ACL step runs
// unconditionally on every call: it is declarative, and reapplying it
// repairs a store whose ACL was changed by hand.
func (m *Manager) Ensure(alias string) (Store, error) {
	st := Store{Alias: alias, Dir: filepath.Join(m.includeDir, alias)}

	if err := os.MkdirAll(st.Dir, 0o700); err != nil {
		return Store{}, errors.WrapWithCode(err, errors.ErrDirectoryCreateFailed,
			"Couldn't create the credential store at "+st.Dir,
			"Check permissions on "+m.includeDir)
	}
	m.log.Debug("store directory ready: %s", st.Dir)

	// Default ACL: owner read/write, nothing for group/other. Files the
	// key generator drops in here inherit it.
	output, code, err := m.run.Run(m.aclTool, "-d", "-m", "u::rw-,g::---,o::---", st.Dir)
	if err != nil {
		return Store{}, errors.WrapWithCode(err, errors.ErrAclApplyFailed,
			"Couldn't run "+m.aclTool,
			"Install the acl package, or point KEYUP_ACL_TOOL at an equivalent tool")
	}
	if code != 0 {
		return Store{}, errors.WrapWithCode(
			fmt.Errorf("%s exited %d: %s", m.aclTool, code, strings.TrimSpace(string(output))),
			errors.ErrAclApplyFailed,
			"Couldn't apply the default ACL to "+st.Dir,
			"The filesystem may not support POSIX ACLs")
	}
	m.log.Debug("default ACL applied to %s", st.Dir)

	return st, nil
}
