package modelset

// configurationError signals an invalid requested-model list (empty, or
// duplicate canonical identifiers).
type configurationError struct{ msg string }

func (e configurationError) Error() string { return e.msg }

// ErrConfiguration constructs a configurationError.
func ErrConfiguration(msg string) error { return configurationError{msg: msg} }

// IsConfiguration reports whether err indicates a bad requested-model list.
func IsConfiguration(err error) bool {
	_, ok := err.(configurationError)
	return ok
}

// modelLoadError wraps an engine load failure with the offending
// canonical identifier.
type modelLoadError struct {
	canonical string
	cause     error
}

func (e modelLoadError) Error() string {
	return "load model " + e.canonical + ": " + e.cause.Error()
}

func (e modelLoadError) Unwrap() error { return e.cause }

// ErrModelLoad constructs a modelLoadError.
func ErrModelLoad(canonical string, cause error) error {
	return modelLoadError{canonical: canonical, cause: cause}
}

// IsModelLoad reports whether err indicates a failed model load.
func IsModelLoad(err error) bool {
	_, ok := err.(modelLoadError)
	return ok
}

// LoadFailedModel returns the canonical identifier carried by a model load
// error, or "" when err is of another kind.
func LoadFailedModel(err error) string {
	if e, ok := err.(modelLoadError); ok {
		return e.canonical
	}
	return ""
}

// notFoundError signals a Set lookup miss. A resolved identifier should
// always be present, so callers treat this as an internal invariant
// violation rather than a user error.
type notFoundError struct{ canonical string }

func (e notFoundError) Error() string { return "no loaded model for " + e.canonical }

// ErrNotFound constructs a notFoundError.
func ErrNotFound(canonical string) error { return notFoundError{canonical: canonical} }

// IsNotFound reports whether err indicates a Set lookup miss.
func IsNotFound(err error) bool {
	_, ok := err.(notFoundError)
	return ok
}
