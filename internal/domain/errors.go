package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned when an entity is constructed with
	// arguments that violate its contract. Such entities never enter the
	// live collections.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvariant marks an internal-consistency failure inside the
	// matching engine. It is unrecoverable; the run must abort rather
	// than continue with corrupted accounting.
	ErrInvariant = errors.New("invariant violation")

	// ErrEmptyTape is returned when a simulation is started with no
	// executions to replay.
	ErrEmptyTape = errors.New("execution tape is empty")
)

// InvariantError carries context about which engine invariant broke.
type InvariantError struct {
	Op     string
	Detail string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrInvariant, e.Op, e.Detail)
}

func (e *InvariantError) Unwrap() error {
	return ErrInvariant
}
