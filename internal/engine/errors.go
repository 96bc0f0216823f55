package engine

// dependencyUnavailableError signals a missing runtime dependency (the
// binary was built without llama support) so callers can distinguish it
// from a genuine load failure.
type dependencyUnavailableError struct{ msg string }

func (e dependencyUnavailableError) Error() string { return e.msg }

// ErrDependencyUnavailable constructs a dependencyUnavailableError.
func ErrDependencyUnavailable(msg string) error { return dependencyUnavailableError{msg: msg} }

// IsDependencyUnavailable reports whether err indicates a missing/failed
// runtime dependency.
func IsDependencyUnavailable(err error) bool {
	_, ok := err.(dependencyUnavailableError)
	return ok
}
