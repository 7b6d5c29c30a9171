package physics

import "errors"

var (
	// ErrIllFormed marks a constraint whose body indices are out of range.
	ErrIllFormed = errors.New("ill-formed constraint")
	// ErrDegenerate marks a constraint without a usable Jacobian at the current state.
	ErrDegenerate = errors.New("degenerate constraint")
)
