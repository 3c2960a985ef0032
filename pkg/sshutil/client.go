// Package sshutil opens SSH connections the way the OpenSSH client would:
// the alias is resolved through the user's SSH config (including Include
// directives, which is how keyup wires per-host files in), and the
// connection authenticates with the resolved identity file.
package sshutil

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kevinburke/ssh_config"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

// Settings holds resolved SSH connection parameters for one alias.
type Settings struct {
	Alias        string
	Hostname     string
	Port         string
	User         string
	IdentityFile string
}

// Address returns the host:port string for dialing.
func (s *Settings) Address() string {
	return net.JoinHostPort(s.Hostname, s.Port)
}

// Resolve reads the SSH config at configPath and returns the connection
// settings for alias. Unset fields fall back to OpenSSH defaults: the
// hostname defaults to the alias itself and the port to 22.
func Resolve(configPath, alias string) (*Settings, error) {
	settings := &Settings{
		Alias:    alias,
		Hostname: alias,
		Port:     "22",
	}

	f, err := os.Open(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return settings, nil
		}
		return nil, fmt.Errorf("reading %s: %w", configPath, err)
	}
	defer f.Close()

	cfg, err := ssh_config.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", configPath, err)
	}

	if v, _ := cfg.Get(alias, "HostName"); v != "" {
		settings.Hostname = v
	}
	if v, _ := cfg.Get(alias, "Port"); v != "" {
		settings.Port = v
	}
	if v, _ := cfg.Get(alias, "User"); v != "" {
		settings.User = v
	}
	if v, _ := cfg.Get(alias, "IdentityFile"); v != "" {
		settings.IdentityFile = expandPath(v)
	}

	return settings, nil
}

// Client wraps an SSH connection with the alias it was opened for.
type Client struct {
	*ssh.Client
	Alias   string
	Address string
}

// Dial opens a connection using the resolved settings, authenticating
// with the identity file only. Host keys follow accept-new semantics
// against knownHostsPath: an unknown host is recorded on first contact, a
// changed key is an error.
func Dial(settings *Settings, knownHostsPath string, timeout time.Duration) (*Client, error) {
	if settings.IdentityFile == "" {
		return nil, fmt.Errorf("no identity file configured for '%s'", settings.Alias)
	}

	auth, err := keyFileAuth(settings.IdentityFile)
	if err != nil {
		return nil, fmt.Errorf("loading identity file %s: %w", settings.IdentityFile, err)
	}

	hostKeyCallback, err := acceptNewHostKeyCallback(knownHostsPath)
	if err != nil {
		return nil, err
	}

	config := &ssh.ClientConfig{
		User:            settings.User,
		Auth:            []ssh.AuthMethod{auth},
		HostKeyCallback: hostKeyCallback,
		Timeout:         timeout,
	}

	address := settings.Address()
	conn, err := net.DialTimeout("tcp", address, timeout)
	if err != nil {
		return nil, err
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, address, config)
	if err != nil {
		conn.Close()
		return nil, err
	}

	return &Client{
		Client:  ssh.NewClient(sshConn, chans, reqs),
		Alias:   settings.Alias,
		Address: address,
	}, nil
}

// Close closes the SSH connection.
func (c *Client) Close() error {
	if c.Client == nil {
		return nil
	}
	return c.Client.Close()
}

// GetAlias returns the alias the connection was opened for.
func (c *Client) GetAlias() string {
	return c.Alias
}

// GetAddress returns the resolved host:port address.
func (c *Client) GetAddress() string {
	return c.Address
}

// keyFileAuth returns an auth method using a private key file.
func keyFileAuth(keyPath string) (ssh.AuthMethod, error) {
	key, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, err
	}

	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		return nil, err
	}

	return ssh.PublicKeys(signer), nil
}

// acceptNewHostKeyCallback verifies host keys against knownHostsPath,
// appending first-contact keys the way StrictHostKeyChecking=accept-new
// does. A key that differs from the recorded one is rejected.
func acceptNewHostKeyCallback(knownHostsPath string) (ssh.HostKeyCallback, error) {
	if _, err := os.Stat(knownHostsPath); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(knownHostsPath), 0o700); err != nil {
			return nil, fmt.Errorf("creating SSH directory: %w", err)
		}
		if err := os.WriteFile(knownHostsPath, []byte{}, 0o600); err != nil {
			return nil, fmt.Errorf("creating known_hosts: %w", err)
		}
	}

	check, err := knownhosts.New(knownHostsPath)
	if err != nil {
		return nil, err
	}

	return func(hostname string, remote net.Addr, key ssh.PublicKey) error {
		err := check(hostname, remote, key)
		if err == nil {
			return nil
		}

		keyErr, ok := err.(*knownhosts.KeyError)
		if !ok || len(keyErr.Want) > 0 {
			// Mismatch against a recorded key, or some other failure
			return err
		}

		// First contact: record and accept
		line := knownhosts.Line([]string{hostname}, key) + "\n"
		f, ferr := os.OpenFile(knownHostsPath, os.O_APPEND|os.O_WRONLY, 0o600)
		if ferr != nil {
			return fmt.Errorf("recording host key: %w", ferr)
		}
		defer f.Close()
		if _, ferr := f.WriteString(line); ferr != nil {
			return fmt.Errorf("recording host key: %w", ferr)
		}
		return nil
	}, nil
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
