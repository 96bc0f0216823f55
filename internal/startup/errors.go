package startup

// timeoutError signals that the foreground waiter gave up before the
// background listener reached a terminal state.
type timeoutError struct{ msg string }

func (e timeoutError) Error() string { return e.msg }

// ErrTimeout constructs a timeoutError.
func ErrTimeout(msg string) error { return timeoutError{msg: msg} }

// IsTimeout reports whether err is a startup wait timeout.
func IsTimeout(err error) bool {
	_, ok := err.(timeoutError)
	return ok
}

// backgroundFailureError wraps an error raised by the background listener
// before it could bind (port conflict, rejected configuration).
type backgroundFailureError struct{ cause error }

func (e backgroundFailureError) Error() string { return "server startup failed: " + e.cause.Error() }

func (e backgroundFailureError) Unwrap() error { return e.cause }

// ErrBackgroundFailure constructs a backgroundFailureError.
func ErrBackgroundFailure(cause error) error { return backgroundFailureError{cause: cause} }

// IsBackgroundFailure reports whether err originated in the background
// startup path.
func IsBackgroundFailure(err error) bool {
	_, ok := err.(backgroundFailureError)
	return ok
}
