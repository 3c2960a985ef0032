// Package keys generates the per-host key pair and installs the public
// key on the remote host. Both operations wrap the standard OpenSSH tools
// (ssh-keygen, ssh-copy-id) behind the runner boundary.
package keys

import (
	"fmt"
	"os"
	"strings"

	"github.com/rmalloy/keyup/internal/errors"
	"github.com/rmalloy/keyup/internal/logger"
	"github.com/rmalloy/keyup/internal/runner"
	"github.com/rmalloy/keyup/internal/store"
)

// Pair holds the paths of a generated key pair.
type Pair struct {
	PrivateKeyPath string
	PublicKeyPath  string
}

// Generator creates key pairs with ssh-keygen.
type Generator struct {
	keyType string
	comment string // template, %s replaced by the host alias
	run     runner.Runner
	log     logger.Logger
}

// NewGenerator returns a Generator for the given signature scheme.
func NewGenerator(keyType, comment string, run runner.Runner, log logger.Logger) *Generator {
	return &Generator{
		keyType: keyType,
		comment: comment,
		run:     run,
		log:     log,
	}
}

// Generate creates a fresh key pair for the store's host, with no
// passphrase. An existing pair is an error unless force is set; this keeps
// a re-run from silently rotating a key that the remote side already
// trusts. With force, the old pair is removed first so ssh-keygen never
// falls back to its interactive overwrite prompt.
func (g *Generator) Generate(st store.Store, force bool) (Pair, error) {
	pair := Pair{
		PrivateKeyPath: st.PrivateKeyPath(),
		PublicKeyPath:  st.PublicKeyPath(),
	}

	if _, err := os.Stat(pair.PrivateKeyPath); err == nil {
		if !force {
			return Pair{}, errors.New(errors.ErrKeyGenerationFailed,
				"A key pair for '"+st.Alias+"' already exists at "+pair.PrivateKeyPath,
				"Re-run with --force to replace it (the remote host keeps trusting the old key until you do)")
		}
		g.log.Info("replacing existing key pair for %s", st.Alias)
		if err := os.Remove(pair.PrivateKeyPath); err != nil {
			return Pair{}, errors.WrapWithCode(err, errors.ErrKeyGenerationFailed,
				"Couldn't remove the old private key",
				"Check permissions on "+st.Dir)
		}
		// The public half may have been deleted by hand; ignore that.
		if err := os.Remove(pair.PublicKeyPath); err != nil && !os.IsNotExist(err) {
			return Pair{}, errors.WrapWithCode(err, errors.ErrKeyGenerationFailed,
				"Couldn't remove the old public key",
				"Check permissions on "+st.Dir)
		}
	}

	args := []string{
		"-t", g.keyType,
		"-f", pair.PrivateKeyPath,
		"-N", "", // no passphrase: this key exists for automation
		"-C", fmt.Sprintf(g.comment, st.Alias),
	}

	output, code, err := g.run.Run("ssh-keygen", args...)
	if err != nil {
		return Pair{}, errors.WrapWithCode(err, errors.ErrKeyGenerationFailed,
			"Couldn't run ssh-keygen",
			"Ensure OpenSSH is installed")
	}
	if code != 0 {
		return Pair{}, errors.WrapWithCode(
			fmt.Errorf("ssh-keygen exited %d: %s", code, strings.TrimSpace(string(output))),
			errors.ErrKeyGenerationFailed,
			"Key generation for '"+st.Alias+"' failed",
			"Check the ssh-keygen output above")
	}

	// ssh-keygen reported success; trust it only as far as the files exist.
	for _, p := range []string{pair.PrivateKeyPath, pair.PublicKeyPath} {
		if _, err := os.Stat(p); err != nil {
			return Pair{}, errors.WrapWithCode(err, errors.ErrKeyGenerationFailed,
				"ssh-keygen finished but "+p+" is missing",
				"Check disk space and permissions on the credential store")
		}
	}

	g.log.Debug("generated %s key pair at %s", g.keyType, pair.PrivateKeyPath)
	return pair, nil
}
