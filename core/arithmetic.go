package core

import (
	"fmt"
	"strings"
)

// This file is the composition graph: each constructor validates operand
// shapes through the shape model, derives the resulting property set
// through the Combine rule table, and returns a new immutable node
// wrapping the operands by reference. No numerical work happens here —
// evaluation is deferred until a capability method runs. Operand
// subgraphs are never copied, so identical sub-computations can be
// shared across many parents.

// sumShape merges the shapes of two added operands: both axes must agree
// or be symbolic, and resolve to the concrete size when one exists.
func sumShape(a, b Shape) (Shape, error) {
	if !axesMatch(a.Codim, b.Codim) || !axesMatch(a.Dim, b.Dim) {
		return Shape{}, fmt.Errorf("core: cannot add operators of shapes %v and %v: %w",
			a, b, ErrShapeMismatch)
	}

	return Shape{
		Codim: resolveAxis(a.Codim, b.Codim),
		Dim:   resolveAxis(a.Dim, b.Dim),
	}, nil
}

// Add returns the lazy sum a + b. Shapes must agree axis-wise (symbolic
// axes match anything); the result's properties follow the sum rules:
// structural properties intersect, Lipschitz bounds add, and Proximable
// survives only when one operand is a linear functional.
func Add(a, b *Operator) (*Operator, error) {
	shape, err := sumShape(a.shape, b.shape)
	if err != nil {
		return nil, err
	}
	props, err := Combine(KindSum, []PropertySet{a.props, b.props}, 0)
	if err != nil {
		return nil, err
	}

	return &Operator{
		name:     fmt.Sprintf("(%s + %s)", a.name, b.name),
		shape:    shape,
		props:    props,
		kind:     KindSum,
		children: []*Operator{a, b},
	}, nil
}

// Scale returns the lazy scalar multiple c · a. Two special cases fold
// eagerly: c = 1 returns a unchanged, and c = 0 collapses to
// a null operator when a's shape is fully concrete (otherwise a
// zero-scaled node is kept, which evaluates identically).
func Scale(a *Operator, c float64) (*Operator, error) {
	if c == 1 {
		return a, nil
	}
	if c == 0 && a.shape.Codim != DomainAgnostic && a.shape.Dim != DomainAgnostic {
		return nullNode(a.shape), nil
	}
	props, err := Combine(KindScalarMul, []PropertySet{a.props}, c)
	if err != nil {
		return nil, err
	}

	return &Operator{
		name:     fmt.Sprintf("(%v * %s)", c, a.name),
		shape:    a.shape,
		props:    props,
		kind:     KindScalarMul,
		children: []*Operator{a},
		scalar:   c,
	}, nil
}

// nullNode is the everything-to-zero operator used by the Scale fold.
// Shape axes are concrete by the caller's check.
func nullNode(shape Shape) *Operator {
	props := NewPropertySet(Linear)
	if shape.Codim == 1 {
		props = NewPropertySet(LinFunctional)
	}

	return &Operator{
		name:  "Null",
		shape: shape,
		props: props,
		kind:  KindPrimitive,
		applyFn: func(_ []float64) ([]float64, error) {
			return make([]float64, shape.Codim), nil
		},
		adjointFn: func(_ []float64) ([]float64, error) {
			return make([]float64, shape.Dim), nil
		},
		lipBound:  constBound(0),
		dlipBound: constBound(0),
	}
}

// Compose returns the lazy composition a ∘ b (apply b, then a). The
// inner axes must agree or be symbolic. Composition itself is always
// well-defined; capabilities the property rules cannot preserve (e.g.
// Prox without a unitary inner factor) fail at first use, not here.
func Compose(a, b *Operator) (*Operator, error) {
	shape, err := ComposeShapes(a.shape, b.shape)
	if err != nil {
		return nil, err
	}
	props, err := Combine(KindCompose, []PropertySet{a.props, b.props}, 0)
	if err != nil {
		return nil, err
	}

	return &Operator{
		name:     fmt.Sprintf("(%s @ %s)", a.name, b.name),
		shape:    shape,
		props:    props,
		kind:     KindCompose,
		children: []*Operator{a, b},
	}, nil
}

func stack(kind Kind, axis Axis, ops []*Operator) (*Operator, error) {
	shapes := make([]Shape, len(ops))
	sets := make([]PropertySet, len(ops))
	names := make([]string, len(ops))
	for i, op := range ops {
		shapes[i] = op.shape
		sets[i] = op.props
		names[i] = op.name
	}
	shape, err := StackShapes(shapes, axis)
	if err != nil {
		return nil, err
	}
	props, err := Combine(kind, sets, 0)
	if err != nil {
		return nil, err
	}

	label := "vstack"
	if kind == KindHStack {
		label = "hstack"
	}

	return &Operator{
		name:     fmt.Sprintf("%s(%s)", label, strings.Join(names, ", ")),
		shape:    shape,
		props:    props,
		kind:     kind,
		children: append([]*Operator(nil), ops...),
	}, nil
}

// VStack stacks operators vertically: [a₁; a₂; …] concatenates outputs.
// Every operand's codomain must be concrete; domains must agree or be
// symbolic. Linearity and differentiability are preserved element-wise.
func VStack(ops ...*Operator) (*Operator, error) {
	return stack(KindVStack, Vertical, ops)
}

// HStack stacks operators horizontally: [a₁, a₂, …] splits the input
// into consecutive blocks and adds the block results. Every operand's
// domain must be concrete. A horizontal stack of functionals is the
// separable sum Σᵢ fᵢ(xᵢ), which keeps Convex and Proximable block-wise —
// the one stacking case where they survive.
func HStack(ops ...*Operator) (*Operator, error) {
	return stack(KindHStack, Horizontal, ops)
}

// ArgShift returns the lazy argument shift x ↦ a(x + s). The shift
// vector fixes the domain size; a's domain must match it or be symbolic.
// Affine precomposition keeps the analytic properties (including
// Proximable, via prox_f(x+s) − s) but destroys linearity.
func ArgShift(a *Operator, s []float64) (*Operator, error) {
	if len(s) == 0 {
		return nil, fmt.Errorf("core: argshift of %s: shift vector must be non-empty: %w",
			a.name, ErrShapeMismatch)
	}
	if !axesMatch(a.shape.Dim, len(s)) {
		return nil, fmt.Errorf("core: argshift of %s: shift length %d does not match domain %s: %w",
			a.name, len(s), axisString(a.shape.Dim), ErrShapeMismatch)
	}
	props, err := Combine(KindArgShift, []PropertySet{a.props}, 0)
	if err != nil {
		return nil, err
	}

	return &Operator{
		name:     fmt.Sprintf("argshift(%s)", a.name),
		shape:    Shape{Codim: a.shape.Codim, Dim: len(s)},
		props:    props,
		kind:     KindArgShift,
		children: []*Operator{a},
		shift:    cloneVec(s),
	}, nil
}

// ArgScale returns the lazy argument scaling x ↦ a(c · x) with c ≠ 0.
// c = 1 returns a unchanged. All properties survive (the precomposition
// is linear and invertible); the Lipschitz bound scales by |c|.
func ArgScale(a *Operator, c float64) (*Operator, error) {
	if c == 0 {
		return nil, fmt.Errorf("core: argscale of %s: scaling constant must be non-zero: %w",
			a.name, ErrInvalidCombination)
	}
	if c == 1 {
		return a, nil
	}
	props, err := Combine(KindArgScale, []PropertySet{a.props}, c)
	if err != nil {
		return nil, err
	}

	return &Operator{
		name:     fmt.Sprintf("argscale(%s, %v)", a.name, c),
		shape:    a.shape,
		props:    props,
		kind:     KindArgScale,
		children: []*Operator{a},
		scalar:   c,
	}, nil
}
