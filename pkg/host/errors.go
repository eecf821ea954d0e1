package host

import "errors"

var (
	// ErrUnknownInstance is returned when an instance id is not in the
	// host's instance map.
	ErrUnknownInstance = errors.New("unknown instance")

	// ErrCapabilityMismatch is returned when an operation is dispatched to a
	// plugin that does not support it (trigger on an effect, noteOn on a
	// one-shot, process on an instrument).
	ErrCapabilityMismatch = errors.New("capability mismatch")

	// ErrDuplicateInstance is returned when CreatePlugin is called with an
	// instance id that is already in use.
	ErrDuplicateInstance = errors.New("duplicate instance id")
)
