package sighash

import "fmt"

// Recoverable data errors. These abort the current signing session and are
// reported to the caller; retrying with unchanged input always fails the
// same way.

// UnsupportedVersionError is returned when a transaction declares a version
// no overwintered sighash strategy exists for.
type UnsupportedVersionError struct {
	Version uint32 // Declared transaction version
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("unsupported version %d for overwintered transaction", e.Version)
}

// UnsupportedScriptTypeError is returned when an input's shape cannot be
// resolved to a sighash script code.
type UnsupportedScriptTypeError struct {
	ScriptType ScriptType
}

func (e *UnsupportedScriptTypeError) Error() string {
	return fmt.Sprintf("unknown input script type %s for sighash script code", e.ScriptType)
}

// ensure asserts a precondition of the signing protocol. A failure means the
// driving flow invoked the engine outside its contract; that is a bug, not
// bad input, so the signing operation is aborted with no partial output.
func ensure(cond bool, msg string) {
	if !cond {
		panic("sighash: " + msg)
	}
}
