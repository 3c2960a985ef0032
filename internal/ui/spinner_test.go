package ui

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
)

func init() {
	// Force a color profile so rendered output is stable in CI
	lipgloss.SetColorProfile(termenv.ANSI)
}

// captureOutput returns a thread-safe output function and a getter for the
// accumulated output.
func captureOutput() (func(string), func() string) {
	var mu sync.Mutex
	var b strings.Builder
	return func(s string) {
			mu.Lock()
			defer mu.Unlock()
			b.WriteString(s)
		}, func() string {
			mu.Lock()
			defer mu.Unlock()
			return b.String()
		}
}

func TestSpinnerLifecycle(t *testing.T) {
	out, got := captureOutput()

	s := NewSpinner("Generating key pair")
	s.SetOutput(out)
	assert.Equal(t, SpinnerPending, s.State())

	s.Start()
	assert.Equal(t, SpinnerInProgress, s.State())
	time.Sleep(120 * time.Millisecond)

	s.Success()
	assert.Equal(t, SpinnerSuccess, s.State())
	assert.Contains(t, got(), "Generating key pair")
	assert.Contains(t, got(), SymbolSuccess)
}

func TestSpinnerFail(t *testing.T) {
	out, got := captureOutput()

	s := NewSpinner("Installing public key")
	s.SetOutput(out)
	s.Start()
	s.Fail()

	assert.Equal(t, SpinnerFailed, s.State())
	assert.Contains(t, got(), SymbolFail)
}

func TestSpinnerSkip(t *testing.T) {
	out, got := captureOutput()

	s := NewSpinner("Verifying connection")
	s.SetOutput(out)
	s.Start()
	s.Skip()

	assert.Equal(t, SpinnerSkipped, s.State())
	assert.Contains(t, got(), SymbolSkipped)
}

func TestSpinnerSkipWithoutStartOmitsTiming(t *testing.T) {
	out, got := captureOutput()

	// A skipped step never ran, so no elapsed time is shown
	s := NewSpinner("Verifying connectivity")
	s.SetOutput(out)
	s.Skip()

	assert.Contains(t, got(), SymbolSkipped)
	assert.NotContains(t, got(), "0.0")
}

func TestSpinnerDoubleStartIsSafe(t *testing.T) {
	out, _ := captureOutput()

	s := NewSpinner("step")
	s.SetOutput(out)
	s.Start()
	s.Start() // no-op
	s.Success()
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name string
		d    time.Duration
		want string
	}{
		{"sub-tenth uses two decimals", 50 * time.Millisecond, "0.05s"},
		{"tenths use one decimal", 1200 * time.Millisecond, "1.2s"},
		{"whole seconds", 3 * time.Second, "3.0s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatDuration(tt.d))
		})
	}
}
