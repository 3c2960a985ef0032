// Package config loads keyup's settings. Settings exist so that the
// provisioning core never reaches for ambient state: the invoking user's
// home directory, the SSH directory, and tool names are resolved exactly
// once here and passed down explicitly.
package config

import (
	"os"
	"os/user"
	"path/filepath"
	"time"

	"github.com/rmalloy/keyup/internal/errors"
	"github.com/spf13/viper"
)

const (
	// ConfigDir is the directory for the optional config file, under the
	// user's home.
	ConfigDir = ".config/keyup"
	// ConfigFileName is the optional config file name.
	ConfigFileName = "config.yaml"
	// EnvPrefix is the prefix for environment overrides (KEYUP_SSH_DIR etc.).
	EnvPrefix = "KEYUP"
)

// Settings holds everything the provisioning workflow needs from the
// environment. All paths are absolute.
type Settings struct {
	LocalUser     string        // invoking user's name, recorded in the receipt
	SSHDir        string        // usually ~/.ssh
	IncludeDir    string        // per-host stores live under here, usually ~/.ssh/include.d
	GlobalConfig  string        // usually ~/.ssh/config
	KnownHosts    string        // usually ~/.ssh/known_hosts
	KeyType       string        // signature scheme passed to ssh-keygen
	KeyComment    string        // comment template, %s replaced by the host alias
	ACLTool       string        // tool used to set the store's default ACL
	VerifyTimeout time.Duration // connection timeout for the final check
}

// Load resolves settings from defaults, the optional config file at
// ~/.config/keyup/config.yaml, and KEYUP_* environment variables (highest
// precedence).
func Load() (*Settings, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrDirectoryCreateFailed,
			"Couldn't determine your home directory",
			"Set the HOME environment variable")
	}
	return LoadFrom(home)
}

// LoadFrom resolves settings against an explicit home directory. Split out
// from Load so tests can run against a temp dir.
func LoadFrom(home string) (*Settings, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	v.SetDefault("ssh_dir", filepath.Join(home, ".ssh"))
	v.SetDefault("key_type", "ed25519")
	v.SetDefault("key_comment", "keyup-%s")
	v.SetDefault("acl_tool", "setfacl")
	v.SetDefault("verify_timeout", "10s")

	configPath := filepath.Join(home, ConfigDir, ConfigFileName)
	if _, err := os.Stat(configPath); err == nil {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.WrapWithCode(err, errors.ErrConfigWriteFailed,
				"Couldn't read "+configPath,
				"Fix the YAML syntax or remove the file to use defaults")
		}
	}

	sshDir := v.GetString("ssh_dir")

	timeout, err := time.ParseDuration(v.GetString("verify_timeout"))
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfigWriteFailed,
			"'"+v.GetString("verify_timeout")+"' is not a valid verify_timeout",
			"Use a duration like 10s or 1m")
	}

	return &Settings{
		LocalUser:     currentUserName(),
		SSHDir:        sshDir,
		IncludeDir:    filepath.Join(sshDir, "include.d"),
		GlobalConfig:  filepath.Join(sshDir, "config"),
		KnownHosts:    filepath.Join(sshDir, "known_hosts"),
		KeyType:       v.GetString("key_type"),
		KeyComment:    v.GetString("key_comment"),
		ACLTool:       v.GetString("acl_tool"),
		VerifyTimeout: timeout,
	}, nil
}

// StoreDir returns the credential store directory for a host alias.
func (s *Settings) StoreDir(alias string) string {
	return filepath.Join(s.IncludeDir, alias)
}

// currentUserName returns the invoking user's name, falling back to $USER.
func currentUserName() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return os.Getenv("USER")
}
