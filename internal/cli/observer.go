package cli

import (
	"github.com/rmalloy/keyup/internal/ui"
)

// spinnerObserver renders each workflow step as a spinner that resolves
// to a success/fail/skip line. One spinner is live at a time because the
// workflow is strictly sequential.
type spinnerObserver struct {
	current *ui.Spinner
}

func newSpinnerObserver() *spinnerObserver {
	return &spinnerObserver{}
}

func (o *spinnerObserver) StepStart(name string) {
	o.current = ui.NewSpinner(name)
	o.current.Start()
}

func (o *spinnerObserver) StepDone(name, detail string) {
	if o.current != nil {
		o.current.Success()
		o.current = nil
	}
}

func (o *spinnerObserver) StepSkipped(name, reason string) {
	// Skipped steps never started a spinner; render the final line directly.
	s := ui.NewSpinner(name)
	s.Skip()
}

func (o *spinnerObserver) StepFailed(name string, err error) {
	if o.current != nil {
		o.current.Fail()
		o.current = nil
	}
}
