// Package testing provides test doubles for the sshutil package.
package testing

import "fmt"

// MockClient implements sshutil.SSHClient without a real connection.
// Command results are keyed by the exact command string.
type MockClient struct {
	Alias   string
	Address string
	Closed  bool

	// Results maps commands to canned responses.
	Results map[string]MockResult

	// ExecCalls records every executed command in order.
	ExecCalls []string
}

// MockResult configures what a mocked command returns.
type MockResult struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
	Err      error
}

// NewMockClient creates a mock client for the given alias where every
// command succeeds with empty output until configured otherwise.
func NewMockClient(alias string) *MockClient {
	return &MockClient{
		Alias:   alias,
		Address: alias + ":22",
		Results: make(map[string]MockResult),
	}
}

// SetResult configures the response for a command.
func (m *MockClient) SetResult(cmd string, res MockResult) *MockClient {
	m.Results[cmd] = res
	return m
}

// Exec returns the canned result for cmd.
func (m *MockClient) Exec(cmd string) ([]byte, []byte, int, error) {
	m.ExecCalls = append(m.ExecCalls, cmd)
	if m.Closed {
		return nil, nil, -1, fmt.Errorf("connection to %s is closed", m.Alias)
	}
	res, ok := m.Results[cmd]
	if !ok {
		return nil, nil, 0, nil
	}
	return res.Stdout, res.Stderr, res.ExitCode, res.Err
}

// Close marks the connection closed.
func (m *MockClient) Close() error {
	m.Closed = true
	return nil
}

// GetAlias returns the alias the mock was created for.
func (m *MockClient) GetAlias() string { return m.Alias }

// GetAddress returns the fake resolved address.
func (m *MockClient) GetAddress() string { return m.Address }
