// Package testing provides test doubles for the runner package.
package testing

import (
	"fmt"
	"strings"
	"sync"
)

// Call records a single command invocation.
type Call struct {
	Name string
	Args []string
}

// Result configures what a fake invocation returns.
type Result struct {
	Output   []byte
	ExitCode int
	Err      error
}

// FakeRunner simulates external tool execution. Results are keyed by the
// command name; an optional OnRun hook lets tests create side effects
// (e.g. the key files ssh-keygen would have written).
type FakeRunner struct {
	mu      sync.Mutex
	results map[string]Result
	missing map[string]bool

	// OnRun, if set, is invoked before the canned result is returned.
	OnRun func(name string, args []string)

	// Calls records every Run invocation in order.
	Calls []Call
}

// NewFakeRunner creates a fake runner where every tool exists and every
// command succeeds with empty output until configured otherwise.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{
		results: make(map[string]Result),
		missing: make(map[string]bool),
	}
}

// SetResult configures the result returned when name is run.
func (r *FakeRunner) SetResult(name string, res Result) *FakeRunner {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results[name] = res
	return r
}

// SetMissing makes LookPath fail for the named tool.
func (r *FakeRunner) SetMissing(name string) *FakeRunner {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.missing[name] = true
	return r
}

// LookPath reports a fake path unless the tool was marked missing.
func (r *FakeRunner) LookPath(name string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.missing[name] {
		return "", fmt.Errorf("exec: %q: executable file not found in $PATH", name)
	}
	return "/usr/bin/" + name, nil
}

// Run records the call and returns the canned result for the command name.
func (r *FakeRunner) Run(name string, args ...string) ([]byte, int, error) {
	r.mu.Lock()
	r.Calls = append(r.Calls, Call{Name: name, Args: args})
	res, ok := r.results[name]
	hook := r.OnRun
	r.mu.Unlock()

	if hook != nil {
		hook(name, args)
	}

	if !ok {
		return nil, 0, nil
	}
	return res.Output, res.ExitCode, res.Err
}

// CalledWith reports whether any recorded call to name included the given
// argument.
func (r *FakeRunner) CalledWith(name, arg string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.Calls {
		if c.Name != name {
			continue
		}
		for _, a := range c.Args {
			if a == arg || strings.Contains(a, arg) {
				return true
			}
		}
	}
	return false
}

// CallCount returns how many times name was run.
func (r *FakeRunner) CallCount(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.Calls {
		if c.Name == name {
			n++
		}
	}
	return n
}
