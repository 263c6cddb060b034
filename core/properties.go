package core

import (
	"fmt"
	"math"
	"strings"
)

// Property is a declared mathematical attribute of an operator. Holding
// a property gates the corresponding evaluation capability: Linear gates
// Adjoint, Differentiable gates Jacobian, DiffFunctional gates Gradient,
// Proximable gates Prox.
//
// Properties imply other properties (e.g. Quadratic ⇒ Convex); every
// PropertySet in the system is closed under these implications.
type Property uint8

const (
	// Functional marks an operator mapping into R (codomain dimension 1).
	Functional Property = iota

	// Differentiable marks an operator with a well-defined Jacobian.
	Differentiable

	// DiffFunctional marks a differentiable functional: Gradient is available.
	DiffFunctional

	// Proximable marks a functional with a computable proximal operator.
	Proximable

	// Convex marks a convex functional.
	Convex

	// Quadratic marks a functional of the form ½·xᵀQx + cᵀx + t.
	Quadratic

	// Linear marks a linear operator: Adjoint is available.
	Linear

	// LinFunctional marks a linear functional x ↦ ⟨a, x⟩.
	LinFunctional

	// Unitary marks a linear operator with UᵀU = UUᵀ = I.
	Unitary

	numProperties
)

// propertyNames is indexed by Property.
var propertyNames = [numProperties]string{
	"Functional",
	"Differentiable",
	"DiffFunctional",
	"Proximable",
	"Convex",
	"Quadratic",
	"Linear",
	"LinFunctional",
	"Unitary",
}

// String returns the canonical property name.
func (p Property) String() string {
	if p >= numProperties {
		return fmt.Sprintf("Property(%d)", uint8(p))
	}

	return propertyNames[p]
}

// PropertySet is a set of Property values, always kept closed under the
// implication lattice. The zero value is the empty set (a plain map with
// only Apply defined).
type PropertySet uint16

// implications lists the direct implications of each property. The
// reflexive-transitive closure is computed once at package init and is
// immutable afterwards.
var implications = [numProperties][]Property{
	Functional:     nil,
	Differentiable: nil,
	DiffFunctional: {Differentiable, Functional},
	Proximable:     {Convex, Functional},
	Convex:         nil,
	Quadratic:      {Convex, DiffFunctional},
	Linear:         {Differentiable, Convex},
	LinFunctional:  {Linear, Functional, Proximable, DiffFunctional},
	Unitary:        {Linear},
}

// closure[p] is the closed PropertySet implied by holding p alone.
var closure [numProperties]PropertySet

func init() {
	for p := Property(0); p < numProperties; p++ {
		closure[p] = transitiveClosure(p)
	}
}

func transitiveClosure(p Property) PropertySet {
	var set PropertySet
	stack := []Property{p}
	for len(stack) > 0 {
		q := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if set&(1<<q) != 0 {
			continue
		}
		set |= 1 << q
		stack = append(stack, implications[q]...)
	}

	return set
}

// Implications returns all properties guaranteed by holding p, including
// p itself (reflexive, transitively closed).
func Implications(p Property) PropertySet {
	return closure[p]
}

// NewPropertySet builds the implication closure of the given properties.
func NewPropertySet(props ...Property) PropertySet {
	var set PropertySet
	for _, p := range props {
		set |= closure[p]
	}

	return set
}

// Has reports whether p is a member of the set.
func (s PropertySet) Has(p Property) bool {
	return s&(1<<p) != 0
}

// With returns the set extended by p and everything p implies.
func (s PropertySet) With(p Property) PropertySet {
	return s | closure[p]
}

// String renders the set as "{Linear, Differentiable, ...}" in
// declaration order.
func (s PropertySet) String() string {
	var names []string
	for p := Property(0); p < numProperties; p++ {
		if s.Has(p) {
			names = append(names, p.String())
		}
	}

	return "{" + strings.Join(names, ", ") + "}"
}

// allHave reports whether every operand set holds p.
func allHave(sets []PropertySet, p Property) bool {
	for _, s := range sets {
		if !s.Has(p) {
			return false
		}
	}

	return true
}

// Combine returns the property set of the result of applying the given
// operation kind to operands with the given property sets. The rule
// table below is the single source of algebraic truth: every composite
// node construction routes through it, never re-deriving properties ad
// hoc. The scalar argument carries the ScalarMul / ArgScale constant and
// is ignored by the other kinds.
//
// Proximable survives only in the closed-form cases enumerated per kind;
// every unlisted case conservatively drops it.
//
// Combine fails with ErrInvalidCombination on a wrong operand count or
// an unknown kind — unreachable when called through the package's own
// constructors.
func Combine(kind Kind, operands []PropertySet, scalar float64) (PropertySet, error) {
	switch kind {
	case KindSum:
		if len(operands) != 2 {
			return 0, arityError(kind, 2, len(operands))
		}

		return combineSum(operands[0], operands[1]), nil

	case KindScalarMul:
		if len(operands) != 1 {
			return 0, arityError(kind, 1, len(operands))
		}

		return combineScale(operands[0], scalar), nil

	case KindCompose:
		if len(operands) != 2 {
			return 0, arityError(kind, 2, len(operands))
		}

		return combineCompose(operands[0], operands[1]), nil

	case KindVStack, KindHStack:
		if len(operands) == 0 {
			return 0, arityError(kind, 1, 0)
		}

		return combineStack(kind, operands), nil

	case KindArgShift:
		if len(operands) != 1 {
			return 0, arityError(kind, 1, len(operands))
		}

		return combineArgShift(operands[0]), nil

	case KindArgScale:
		if len(operands) != 1 {
			return 0, arityError(kind, 1, len(operands))
		}

		return combineArgScale(operands[0], scalar), nil

	default:
		return 0, fmt.Errorf("core: no combination rule for kind %v: %w", kind, ErrInvalidCombination)
	}
}

func arityError(kind Kind, want, got int) error {
	return fmt.Errorf("core: %v expects %d operand property sets, got %d: %w",
		kind, want, got, ErrInvalidCombination)
}

// combineSum: intersection for the structural properties; Proximable
// survives only when the other operand is a linear functional (prox of
// f + ⟨a,·⟩ shifts the argument of prox_f).
func combineSum(a, b PropertySet) PropertySet {
	var out PropertySet
	for _, p := range []Property{Functional, Differentiable, DiffFunctional, Convex, Quadratic, Linear, LinFunctional} {
		if a.Has(p) && b.Has(p) {
			out = out.With(p)
		}
	}
	if (a.Has(Proximable) && b.Has(LinFunctional)) || (b.Has(Proximable) && a.Has(LinFunctional)) {
		out = out.With(Proximable)
	}

	return out
}

// combineScale: c is never 0 or 1 here (Scale folds those). Convexity,
// quadraticity and proximability need c > 0; unitarity needs |c| = 1.
func combineScale(a PropertySet, c float64) PropertySet {
	var out PropertySet
	for _, p := range []Property{Functional, Differentiable, DiffFunctional, Linear, LinFunctional} {
		if a.Has(p) {
			out = out.With(p)
		}
	}
	if c > 0 {
		for _, p := range []Property{Convex, Quadratic, Proximable} {
			if a.Has(p) {
				out = out.With(p)
			}
		}
	}
	if a.Has(Unitary) && math.Abs(c) == 1 {
		out = out.With(Unitary)
	}

	return out
}

// combineCompose: a ∘ b. Convexity and quadraticity need a linear inner
// factor; Proximable needs a unitary inner factor (the only enumerated
// closed form for prox under composition).
func combineCompose(a, b PropertySet) PropertySet {
	var out PropertySet
	if a.Has(Linear) && b.Has(Linear) {
		out = out.With(Linear)
	}
	if a.Has(Unitary) && b.Has(Unitary) {
		out = out.With(Unitary)
	}
	if a.Has(LinFunctional) && b.Has(Linear) {
		out = out.With(LinFunctional)
	}
	if a.Has(Functional) {
		out = out.With(Functional)
	}
	if a.Has(Differentiable) && b.Has(Differentiable) {
		out = out.With(Differentiable)
	}
	if a.Has(DiffFunctional) && b.Has(Differentiable) {
		out = out.With(DiffFunctional)
	}
	if a.Has(Convex) && b.Has(Linear) && a.Has(Functional) {
		out = out.With(Convex)
	}
	if a.Has(Quadratic) && b.Has(Linear) {
		out = out.With(Quadratic)
	}
	if a.Has(Proximable) && b.Has(Unitary) {
		out = out.With(Proximable)
	}

	return out
}

// combineStack: stacking preserves Linear and Differentiable
// element-wise. A horizontal stack of functionals is the separable sum
// f(x) = Σ fᵢ(xᵢ), which additionally preserves the functional
// properties block-wise — the one case where stacking keeps Convex and
// Proximable.
func combineStack(kind Kind, sets []PropertySet) PropertySet {
	var out PropertySet
	if allHave(sets, Linear) {
		out = out.With(Linear)
	}
	if allHave(sets, Differentiable) {
		out = out.With(Differentiable)
	}
	if kind == KindHStack && allHave(sets, Functional) {
		for _, p := range []Property{Functional, Convex, Quadratic, DiffFunctional, Proximable, LinFunctional} {
			if allHave(sets, p) {
				out = out.With(p)
			}
		}
	}

	return out
}

// combineArgShift: x ↦ f(x + s). Affine precomposition keeps the
// analytic properties but destroys linearity.
func combineArgShift(a PropertySet) PropertySet {
	var out PropertySet
	for _, p := range []Property{Functional, Differentiable, DiffFunctional, Convex, Quadratic, Proximable} {
		if a.Has(p) {
			out = out.With(p)
		}
	}

	return out
}

// combineArgScale: x ↦ f(c·x), c never 0. Scaling the argument is a
// linear precomposition, so everything except unitarity (unless |c| = 1)
// survives.
func combineArgScale(a PropertySet, c float64) PropertySet {
	var out PropertySet
	for _, p := range []Property{Functional, Differentiable, DiffFunctional, Convex, Quadratic, Proximable, Linear, LinFunctional} {
		if a.Has(p) {
			out = out.With(p)
		}
	}
	if a.Has(Unitary) && math.Abs(c) == 1 {
		out = out.With(Unitary)
	}

	return out
}
