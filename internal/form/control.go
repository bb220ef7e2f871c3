package form

// Fallback messages shown when the service rejects a form without a message,
// or when the request never completes.
const (
	LoginFailed    = "Invalid email or password"
	RegisterFailed = "Registration failed. Please try again."
	TransportFail  = "An error occurred. Please try again."
)

// Control is a submit button that is disabled and relabeled while its
// request is in flight.
type Control struct {
	Label     string
	BusyLabel string

	busy     bool
	disabled bool
}

// NewControl returns an enabled control.
func NewControl(label, busyLabel string) Control {
	return Control{Label: label, BusyLabel: busyLabel}
}

// Begin marks the control busy. It returns false when the control is already
// disabled, in which case the caller must not submit.
func (c *Control) Begin() bool {
	if c.disabled {
		return false
	}
	c.busy = true
	c.disabled = true
	return true
}

// Restore re-enables the control and puts its label back.
func (c *Control) Restore() {
	c.busy = false
	c.disabled = false
}

// Disabled reports whether the control accepts a press.
func (c Control) Disabled() bool { return c.disabled }

// Busy reports whether a request is in flight.
func (c Control) Busy() bool { return c.busy }

// Text is the label to render.
func (c Control) Text() string {
	if c.busy {
		return c.BusyLabel
	}
	return c.Label
}

// Outcome resolves what a finished submission shows. success and message
// come from the service's reply; transportErr is non-nil when no usable reply
// arrived. On success the control stays disabled and ok is true; otherwise the
// control is restored and msg holds the form-level error.
func (c *Control) Outcome(success bool, message string, transportErr error, fallback string) (msg string, ok bool) {
	if transportErr != nil {
		c.Restore()
		return TransportFail, false
	}
	if success {
		return "", true
	}
	c.Restore()
	if message == "" {
		return fallback, false
	}
	return message, false
}
