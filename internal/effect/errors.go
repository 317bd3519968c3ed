package effect

import "errors"

// Configuration errors are returned at wiring time (Register, NewEngine, Install).
var (
	ErrInvalidPower      = errors.New("invalid scaling power")
	ErrAlreadyRegistered = errors.New("attribute already registered")
	ErrNotRegistered     = errors.New("attribute not registered")
	ErrDuplicateBinding  = errors.New("effect binding already exists")
)

// ErrInvariantViolation is returned by Dispatch when the attribute is still
// missing after its one-shot reinitialization while the target is alive.
// It indicates a broken Storage implementation.
var ErrInvariantViolation = errors.New("attribute missing after reinitialization")
