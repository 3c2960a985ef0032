// Package provision holds the request model and the workflow that takes a
// host from "reachable with a password" to "reachable with a key".
package provision

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rmalloy/keyup/internal/errors"
)

// Request is a validated provisioning request.
type Request struct {
	HostAlias     string // name of the store, the config stanza, and the key files
	RemoteAddress string // dotted-quad IPv4 address
	RemoteUser    string // account on the remote host
	LocalUser     string // invoking user, recorded in the receipt
}

// Target returns the user@address string handed to ssh-copy-id.
func (r *Request) Target() string {
	return r.RemoteUser + "@" + r.RemoteAddress
}

// ParseArgs validates the positional arguments and builds a Request.
// Exactly three arguments are required: host alias, IPv4 address, and
// remote username, in that order.
func ParseArgs(args []string, localUser string) (*Request, error) {
	if len(args) != 3 {
		return nil, errors.New(errors.ErrInvalidArgumentCount,
			fmt.Sprintf("Expected 3 arguments, got %d", len(args)),
			"Usage: keyup <host_alias> <ip_address> <username>")
	}

	alias, address, username := args[0], args[1], args[2]

	if err := validAlias(alias); err != nil {
		return nil, err
	}
	if !ValidIPv4(address) {
		return nil, errors.New(errors.ErrInvalidAddressFormat,
			"'"+address+"' is not a valid IPv4 address",
			"Use dotted-quad form, e.g. 192.168.1.50")
	}
	if err := validUsername(username); err != nil {
		return nil, err
	}

	return &Request{
		HostAlias:     alias,
		RemoteAddress: address,
		RemoteUser:    username,
		LocalUser:     localUser,
	}, nil
}

// ValidIPv4 reports whether s is a dotted-quad IPv4 address: exactly four
// octets, each 0-255, no leading plus/minus, no empty parts. Stricter than
// net.ParseIP, which also admits IPv6 and other notations.
func ValidIPv4(s string) bool {
	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return false
	}
	for _, part := range parts {
		if part == "" || len(part) > 3 {
			return false
		}
		for _, c := range part {
			if c < '0' || c > '9' {
				return false
			}
		}
		n, err := strconv.Atoi(part)
		if err != nil || n > 255 {
			return false
		}
	}
	return true
}

// validAlias rejects aliases that can't serve as a directory name or that
// OpenSSH would mangle in a Host line.
func validAlias(alias string) error {
	switch {
	case alias == "" || alias == "." || alias == "..":
		return errors.New(errors.ErrInvalidArgumentCount,
			"'"+alias+"' is not a usable host alias",
			"Pick a name like db1 or web-prod")
	case strings.ContainsAny(alias, "/\\ \t*?"):
		return errors.New(errors.ErrInvalidArgumentCount,
			"'"+alias+"' contains characters not allowed in a host alias",
			"Avoid slashes, spaces, and wildcards")
	}
	return nil
}

// validUsername rejects usernames that would corrupt the user@address
// target or the config stanza.
func validUsername(username string) error {
	if username == "" || strings.ContainsAny(username, "@ \t\n") {
		return errors.New(errors.ErrInvalidArgumentCount,
			"'"+username+"' is not a usable remote username",
			"Pass the account name alone, without @host")
	}
	return nil
}
