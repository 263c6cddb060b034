package core

import (
	"fmt"
	"math"
)

// Option configures a primitive operator declaration before validation.
type Option func(*primitiveConfig)

type primitiveConfig struct {
	name      string
	applyFn   ApplyFunc
	adjointFn ApplyFunc
	gradFn    ApplyFunc
	jacFn     JacobianFunc
	proxFn    ProxFunc
	lipBound  BoundFunc
	dlipBound BoundFunc
}

// WithName sets the operator's display name, used in error messages.
func WithName(name string) Option {
	return func(c *primitiveConfig) { c.name = name }
}

// WithApply sets the forward kernel. Required for every primitive.
func WithApply(fn ApplyFunc) Option {
	return func(c *primitiveConfig) { c.applyFn = fn }
}

// WithAdjoint sets the adjoint kernel. Requires (and is required by)
// the Linear property.
func WithAdjoint(fn ApplyFunc) Option {
	return func(c *primitiveConfig) { c.adjointFn = fn }
}

// WithGradient sets the gradient kernel. Requires the DiffFunctional
// property.
func WithGradient(fn ApplyFunc) Option {
	return func(c *primitiveConfig) { c.gradFn = fn }
}

// WithJacobian sets the Jacobian kernel for a differentiable map.
// Requires the Differentiable property.
func WithJacobian(fn JacobianFunc) Option {
	return func(c *primitiveConfig) { c.jacFn = fn }
}

// WithProx sets the proximal kernel. Requires the Proximable property.
func WithProx(fn ProxFunc) Option {
	return func(c *primitiveConfig) { c.proxFn = fn }
}

// WithLipschitz declares a constant upper bound on the operator's
// Lipschitz constant.
func WithLipschitz(c float64) Option {
	return WithLipschitzBound(constBound(c))
}

// WithLipschitzBound declares a procedure computing an upper bound on
// the operator's Lipschitz constant; invoked lazily, at most once.
func WithLipschitzBound(fn BoundFunc) Option {
	return func(c *primitiveConfig) { c.lipBound = fn }
}

// WithDiffLipschitz declares a constant upper bound on the Lipschitz
// constant of the operator's derivative. Requires Differentiable.
func WithDiffLipschitz(c float64) Option {
	return WithDiffLipschitzBound(constBound(c))
}

// WithDiffLipschitzBound declares a lazy bound procedure for the
// derivative's Lipschitz constant. Requires Differentiable.
func WithDiffLipschitzBound(fn BoundFunc) Option {
	return func(c *primitiveConfig) { c.dlipBound = fn }
}

// New declares a primitive operator with the given shape and properties.
// The property set is closed under implication before validation, so
// declaring LinFunctional alone is enough to obtain Linear, Proximable,
// DiffFunctional, and the rest of the closure.
//
// Registration-time validation enforces the kernel/property contract and
// fails with ErrPropertyKernelMismatch when they disagree:
//
//   - an apply kernel is required;
//   - an adjoint kernel is present iff Linear is declared;
//   - a gradient kernel requires DiffFunctional, and every non-linear
//     DiffFunctional primitive must declare one;
//   - a Jacobian kernel requires Differentiable, and every differentiable
//     primitive that is neither Linear nor DiffFunctional must declare
//     one (linear nodes are their own Jacobian, differentiable
//     functionals derive theirs from the gradient);
//   - a prox kernel requires Proximable, and every non-linear Proximable
//     primitive must declare one;
//   - diff-Lipschitz declarations require Differentiable;
//   - Functional demands codomain dimension 1, Unitary demands a square
//     shape.
//
// Undeclared Lipschitz bounds default to +Inf; linear operators default
// their diff-Lipschitz bound to 0 (constant Jacobian).
func New(shape Shape, props PropertySet, opts ...Option) (*Operator, error) {
	if _, err := NewShape(shape.Codim, shape.Dim); err != nil {
		return nil, err
	}

	// Re-close: callers may hand-assemble sets.
	var closed PropertySet
	for p := Property(0); p < numProperties; p++ {
		if props.Has(p) {
			closed = closed.With(p)
		}
	}
	props = closed

	cfg := primitiveConfig{name: "Operator"}
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := validatePrimitive(shape, props, &cfg); err != nil {
		return nil, err
	}

	if cfg.lipBound == nil {
		cfg.lipBound = constBound(math.Inf(1))
	}
	if cfg.dlipBound == nil {
		if props.Has(Linear) {
			cfg.dlipBound = constBound(0)
		} else {
			cfg.dlipBound = constBound(math.Inf(1))
		}
	}

	return &Operator{
		name:      cfg.name,
		shape:     shape,
		props:     props,
		kind:      KindPrimitive,
		applyFn:   cfg.applyFn,
		adjointFn: cfg.adjointFn,
		gradFn:    cfg.gradFn,
		jacFn:     cfg.jacFn,
		proxFn:    cfg.proxFn,
		lipBound:  cfg.lipBound,
		dlipBound: cfg.dlipBound,
	}, nil
}

func validatePrimitive(shape Shape, props PropertySet, cfg *primitiveConfig) error {
	mismatch := func(format string, args ...interface{}) error {
		detail := fmt.Sprintf(format, args...)

		return fmt.Errorf("core: %s: %s: %w", cfg.name, detail, ErrPropertyKernelMismatch)
	}

	if cfg.applyFn == nil {
		return mismatch("an apply kernel is required")
	}
	if props.Has(Functional) && shape.Codim != 1 {
		return mismatch("Functional requires codomain dimension 1, shape is %v", shape)
	}
	if props.Has(Unitary) && !shape.Square() {
		return mismatch("Unitary requires a square shape, shape is %v", shape)
	}

	if (cfg.adjointFn != nil) != props.Has(Linear) {
		if cfg.adjointFn != nil {
			return mismatch("adjoint kernel declared without the Linear property")
		}

		return mismatch("Linear declared without an adjoint kernel")
	}

	if cfg.gradFn != nil && !props.Has(DiffFunctional) {
		return mismatch("gradient kernel declared without the DiffFunctional property")
	}
	if props.Has(DiffFunctional) && !props.Has(Linear) && cfg.gradFn == nil {
		return mismatch("DiffFunctional declared without a gradient kernel")
	}

	if cfg.jacFn != nil && !props.Has(Differentiable) {
		return mismatch("jacobian kernel declared without the Differentiable property")
	}
	if props.Has(Differentiable) && !props.Has(Linear) && !props.Has(DiffFunctional) && cfg.jacFn == nil {
		return mismatch("Differentiable map declared without a jacobian kernel")
	}

	if cfg.proxFn != nil && !props.Has(Proximable) {
		return mismatch("prox kernel declared without the Proximable property")
	}
	if props.Has(Proximable) && !props.Has(Linear) && cfg.proxFn == nil {
		return mismatch("Proximable declared without a prox kernel")
	}

	if cfg.dlipBound != nil && !props.Has(Differentiable) {
		return mismatch("diff-Lipschitz bound declared without the Differentiable property")
	}

	return nil
}
