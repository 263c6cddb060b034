package core

import "errors"

// Sentinel errors for the operator-algebra core.
var (
	// ErrShapeMismatch indicates incompatible dimensions, either at
	// composition time or when a symbolic axis is resolved against the
	// first concrete input.
	ErrShapeMismatch = errors.New("core: operator shapes are incompatible")

	// ErrUnsupportedOperation indicates a capability (Adjoint, Gradient,
	// Jacobian, Prox) was invoked on an operator lacking the required
	// property.
	ErrUnsupportedOperation = errors.New("core: operation not supported by this operator's properties")

	// ErrInvalidCombination indicates a malformed property-rule lookup.
	// It is unreachable with a complete rule table and signals an
	// internal inconsistency if observed.
	ErrInvalidCombination = errors.New("core: invalid property combination request")

	// ErrPropertyKernelMismatch indicates a primitive declaration whose
	// kernels and properties disagree (a kernel without its gating
	// property, or a gated property without its kernel).
	ErrPropertyKernelMismatch = errors.New("core: declared kernels and properties disagree")

	// ErrNonPositiveStep indicates Prox was called with τ ≤ 0.
	ErrNonPositiveStep = errors.New("core: prox step size must be positive")
)
