package core

import "fmt"

// DomainAgnostic marks a symbolic axis whose size is unknown until the
// operator meets its first concrete input. Norm-like functionals use it
// to accept vectors of any length.
const DomainAgnostic = 0

// Shape is the (codomain, domain) dimension pair of an operator: an
// operator maps R^Dim → R^Codim. Either axis may be DomainAgnostic.
type Shape struct {
	// Codim is the output dimension (rows of the equivalent matrix).
	Codim int
	// Dim is the input dimension (columns of the equivalent matrix).
	Dim int
}

// Axis selects the stacking direction for StackShapes.
type Axis int

const (
	// Vertical stacks codomains: outputs are concatenated, domains must agree.
	Vertical Axis = iota
	// Horizontal stacks domains: inputs are split across blocks, codomains must agree.
	Horizontal
)

// NewShape validates and returns a Shape. Axes must be positive or
// DomainAgnostic.
func NewShape(codim, dim int) (Shape, error) {
	if codim < 0 || dim < 0 {
		return Shape{}, fmt.Errorf("core: shape axes must be positive or DomainAgnostic, got (%d, %d): %w",
			codim, dim, ErrShapeMismatch)
	}

	return Shape{Codim: codim, Dim: dim}, nil
}

// String renders a Shape as "(codim, dim)" with "*" for symbolic axes.
func (s Shape) String() string {
	return fmt.Sprintf("(%s, %s)", axisString(s.Codim), axisString(s.Dim))
}

func axisString(n int) string {
	if n == DomainAgnostic {
		return "*"
	}

	return fmt.Sprintf("%d", n)
}

// Square reports whether the shape is square (Dim == Codim), treating a
// symbolic axis as matching anything.
func (s Shape) Square() bool {
	return s.Dim == s.Codim || s.Dim == DomainAgnostic || s.Codim == DomainAgnostic
}

// axesMatch reports whether two axis sizes are compatible: equal, or at
// least one symbolic.
func axesMatch(a, b int) bool {
	return a == b || a == DomainAgnostic || b == DomainAgnostic
}

// resolveAxis picks the concrete size of two compatible axes, or
// DomainAgnostic if both are symbolic.
func resolveAxis(a, b int) int {
	if a != DomainAgnostic {
		return a
	}

	return b
}

// ComposeShapes returns the shape of a ∘ b (apply b, then a). It fails
// with ErrShapeMismatch when a.Dim and b.Codim conflict and neither is
// symbolic. Symbolic axes propagate to the result.
func ComposeShapes(a, b Shape) (Shape, error) {
	if !axesMatch(a.Dim, b.Codim) {
		return Shape{}, fmt.Errorf("core: cannot compose %v with %v: inner axes %d and %d differ: %w",
			a, b, a.Dim, b.Codim, ErrShapeMismatch)
	}

	return Shape{Codim: a.Codim, Dim: b.Dim}, nil
}

// StackShapes returns the shape of stacking the given shapes along axis.
// The stacked axis sizes are summed and must be concrete; all other axes
// must be equal or symbolic, and resolve to the concrete size when one
// exists.
//
// Vertical:   codims sum, dims agree.
// Horizontal: dims sum, codims agree.
func StackShapes(shapes []Shape, axis Axis) (Shape, error) {
	if len(shapes) == 0 {
		return Shape{}, fmt.Errorf("core: cannot stack zero shapes: %w", ErrShapeMismatch)
	}

	sum, other := 0, DomainAgnostic
	for i, s := range shapes {
		stacked, fixed := s.Codim, s.Dim
		if axis == Horizontal {
			stacked, fixed = s.Dim, s.Codim
		}
		if stacked == DomainAgnostic {
			return Shape{}, fmt.Errorf("core: stacked axis of operand %d in %v must be concrete: %w",
				i, s, ErrShapeMismatch)
		}
		if !axesMatch(other, fixed) {
			return Shape{}, fmt.Errorf("core: non-stacked axes differ at operand %d: %d vs %d: %w",
				i, other, fixed, ErrShapeMismatch)
		}
		sum += stacked
		other = resolveAxis(other, fixed)
	}

	if axis == Horizontal {
		return Shape{Codim: other, Dim: sum}, nil
	}

	return Shape{Codim: sum, Dim: other}, nil
}
