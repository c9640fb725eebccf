// Package errs defines the closed error-category taxonomy used across
// the authority as a tagged value built on top of github.com/samber/oops,
// so every component reports failures the same way: a stable Code plus
// whatever context (path, operation, denying rule) the category calls
// for.
package errs

import "github.com/samber/oops"

// Code is the closed set of error categories the authority can fail
// with. It is a category, not a concrete type hierarchy: every error
// built here carries exactly one Code.
type Code string

const (
	CodeDenied                 Code = "DENIED"
	CodeNotFound               Code = "NOT_FOUND"
	CodeAlreadyExists          Code = "ALREADY_EXISTS"
	CodeDestinationExists      Code = "DESTINATION_EXISTS"
	CodePatternNotFound        Code = "PATTERN_NOT_FOUND"
	CodeEscapesRoot            Code = "ESCAPES_ROOT"
	CodeInvalidPath            Code = "INVALID_PATH"
	CodeUnknownFormat          Code = "UNKNOWN_FORMAT"
	CodeUnsupportedCompilation Code = "UNSUPPORTED_COMPILATION"
	CodeBackupFailure          Code = "BACKUP_FAILURE"
	CodeWriteFailure           Code = "WRITE_FAILURE"
	CodeRegistryCorruption     Code = "REGISTRY_CORRUPTION"
	CodeNotInitialized         Code = "NOT_INITIALIZED"
)

// New builds an error tagged with code, formatted like fmt.Errorf.
func New(code Code, format string, args ...any) error {
	return oops.Code(string(code)).Errorf(format, args...)
}

// With builds an error tagged with code and extra key/value context.
func With(code Code, kv map[string]any, format string, args ...any) error {
	b := oops.Code(string(code))
	for k, v := range kv {
		b = b.With(k, v)
	}
	return b.Errorf(format, args...)
}

// Wrap attaches code to an existing error without discarding its chain.
func Wrap(code Code, err error) error {
	if err == nil {
		return nil
	}
	return oops.Code(string(code)).Wrap(err)
}

// CodeOf extracts the Code from an error built by this package. ok is
// false for errors that never passed through here.
func CodeOf(err error) (Code, bool) {
	oerr, ok := oops.AsOops(err)
	if !ok || oerr.Code() == "" {
		return "", false
	}
	return Code(oerr.Code()), true
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	c, ok := CodeOf(err)
	return ok && c == code
}
