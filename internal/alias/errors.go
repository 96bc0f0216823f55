package alias

// unknownModelError signals a name that is neither a repo reference nor a
// registered alias. The HTTP layer maps it to 404.
type unknownModelError struct{ name string }

func (e unknownModelError) Error() string { return "unknown model name: " + e.name }

// ErrUnknownModel returns an error for a name the registry cannot resolve.
func ErrUnknownModel(name string) error { return unknownModelError{name: name} }

// IsUnknownModel reports whether err indicates an unresolvable model name.
func IsUnknownModel(err error) bool {
	_, ok := err.(unknownModelError)
	return ok
}

// invalidAliasError signals a rejected alias registration: a non-canonical
// target, a malformed alias, or a conflicting remap of an existing alias.
type invalidAliasError struct{ msg string }

func (e invalidAliasError) Error() string { return e.msg }

// ErrInvalidAlias constructs an invalidAliasError.
func ErrInvalidAlias(msg string) error { return invalidAliasError{msg: msg} }

// IsInvalidAlias reports whether err indicates a rejected alias registration.
func IsInvalidAlias(err error) bool {
	_, ok := err.(invalidAliasError)
	return ok
}
