package cli

import "errors"

// ErrUsage marks failures caused by how damascus was invoked — unknown flags,
// missing inputs, malformed manifests or config files — as opposed to bugs or
// filesystem faults. main exits with a distinct code when errors.Is matches it.
var ErrUsage = errors.New("usage error")

// usageError carries the user-facing message for an invocation problem and
// matches ErrUsage under errors.Is.
type usageError struct {
	msg string
}

func newUsageError(msg string) error { return usageError{msg: msg} }

func (e usageError) Error() string { return e.msg }

func (e usageError) Is(target error) bool { return target == ErrUsage }
