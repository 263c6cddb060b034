package core

import (
	"fmt"
	"math"
	"sync"

	"gonum.org/v1/gonum/floats"
)

// Kind tags the evaluation strategy of an Operator node: one primitive
// variant carrying user kernels, and one variant per algebraic
// combination.
type Kind int

const (
	// KindPrimitive is a leaf node evaluated by user-declared kernels.
	KindPrimitive Kind = iota
	// KindSum is a + b.
	KindSum
	// KindScalarMul is c · a.
	KindScalarMul
	// KindCompose is a ∘ b (apply b, then a).
	KindCompose
	// KindVStack concatenates codomains: [a; b].
	KindVStack
	// KindHStack splits the domain across blocks: [a, b].
	KindHStack
	// KindArgShift is x ↦ a(x + s).
	KindArgShift
	// KindArgScale is x ↦ a(c · x).
	KindArgScale
)

var kindNames = [...]string{
	"Primitive", "Sum", "ScalarMul", "Compose", "VStack", "HStack", "ArgShift", "ArgScale",
}

// String returns the kind name.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}

	return kindNames[k]
}

// ApplyFunc is a forward, adjoint, or gradient kernel. Kernels must
// return a freshly allocated slice and must not retain or mutate the
// input.
type ApplyFunc func(x []float64) ([]float64, error)

// ProxFunc is a proximal kernel: it returns
// argmin_y f(y) + (1/2τ)·‖y − x‖₂².
type ProxFunc func(x []float64, tau float64) ([]float64, error)

// JacobianFunc returns the Jacobian of a differentiable map at x as a
// linear Operator.
type JacobianFunc func(x []float64) (*Operator, error)

// BoundFunc computes a scalar upper bound (Lipschitz or diff-Lipschitz).
type BoundFunc func() float64

// Operator is one node of a lazy composition DAG: a map R^Dim → R^Codim
// with a declared Shape and an implication-closed PropertySet. Nodes are
// immutable after construction; composites hold their children by shared
// reference, so subgraphs may be reused across many parents. The only
// mutable state is the pair of memoized scalar estimates, each guarded
// by its own sync.Once (at-most-once-effective-write, never torn).
//
// Capability methods are gated by properties: Adjoint needs Linear,
// Jacobian needs Differentiable, Gradient needs DiffFunctional, Prox
// needs Proximable. Apply is always defined.
type Operator struct {
	name  string
	shape Shape
	props PropertySet
	kind  Kind

	// children are shared references; the graph is a DAG, not a tree.
	children []*Operator
	scalar   float64   // ScalarMul / ArgScale constant
	shift    []float64 // ArgShift offset (owned copy)

	applyFn   ApplyFunc
	adjointFn ApplyFunc
	gradFn    ApplyFunc
	jacFn     JacobianFunc
	proxFn    ProxFunc

	lipBound  BoundFunc
	dlipBound BoundFunc

	lipOnce  sync.Once
	lip      float64
	dlipOnce sync.Once
	dlip     float64
}

// Name returns the operator's display name, used in error messages to
// locate the offending node inside a deep graph.
func (op *Operator) Name() string { return op.name }

// Shape returns the operator's (codomain, domain) dimensions.
func (op *Operator) Shape() Shape { return op.shape }

// Properties returns the operator's implication-closed property set.
func (op *Operator) Properties() PropertySet { return op.props }

// Has reports whether the operator holds property p.
func (op *Operator) Has(p Property) bool { return op.props.Has(p) }

// Kind returns the node's evaluation-strategy tag.
func (op *Operator) Kind() Kind { return op.kind }

func (op *Operator) checkVec(axis string, want, got int) error {
	if want != DomainAgnostic && want != got {
		return fmt.Errorf("core: %s: %s expects length %d, got %d: %w",
			op.name, axis, want, got, ErrShapeMismatch)
	}

	return nil
}

func (op *Operator) unsupported(capability string, need Property) error {
	return fmt.Errorf("core: %s: %s requires %v, operator holds %v: %w",
		op.name, capability, need, op.props, ErrUnsupportedOperation)
}

// addInto adds b into a, failing with ErrShapeMismatch when the operand
// results disagree in length (possible only via symbolic axes resolving
// inconsistently at first evaluation).
func (op *Operator) addInto(a, b []float64) ([]float64, error) {
	if len(a) != len(b) {
		return nil, fmt.Errorf("core: %s: operand results have lengths %d and %d: %w",
			op.name, len(a), len(b), ErrShapeMismatch)
	}
	floats.Add(a, b)

	return a, nil
}

func cloneVec(x []float64) []float64 {
	out := make([]float64, len(x))
	copy(out, x)

	return out
}

func scaledVec(c float64, x []float64) []float64 {
	out := cloneVec(x)
	floats.Scale(c, out)

	return out
}

// Apply evaluates the operator at x. It is defined for every node
// regardless of properties. Composites delegate recursively: Compose
// applies the right operand then the left, Sum applies both operands and
// adds, stacks split or concatenate blocks. Shared children are invoked
// as many times as the algebra requires, never memoized per invocation.
func (op *Operator) Apply(x []float64) ([]float64, error) {
	if err := op.checkVec("input", op.shape.Dim, len(x)); err != nil {
		return nil, err
	}

	y, err := op.evalApply(x)
	if err != nil {
		return nil, err
	}
	if err = op.checkVec("output", op.shape.Codim, len(y)); err != nil {
		return nil, err
	}

	return y, nil
}

func (op *Operator) evalApply(x []float64) ([]float64, error) {
	switch op.kind {
	case KindPrimitive:
		return op.applyFn(x)

	case KindSum:
		ya, err := op.children[0].Apply(x)
		if err != nil {
			return nil, err
		}
		yb, err := op.children[1].Apply(x)
		if err != nil {
			return nil, err
		}

		return op.addInto(ya, yb)

	case KindScalarMul:
		y, err := op.children[0].Apply(x)
		if err != nil {
			return nil, err
		}
		floats.Scale(op.scalar, y)

		return y, nil

	case KindCompose:
		inner, err := op.children[1].Apply(x)
		if err != nil {
			return nil, err
		}

		return op.children[0].Apply(inner)

	case KindVStack:
		out := make([]float64, 0, op.shape.Codim)
		for _, child := range op.children {
			yi, err := child.Apply(x)
			if err != nil {
				return nil, err
			}
			out = append(out, yi...)
		}

		return out, nil

	case KindHStack:
		var out []float64
		offset := 0
		for _, child := range op.children {
			d := child.shape.Dim
			yi, err := child.Apply(x[offset : offset+d])
			if err != nil {
				return nil, err
			}
			offset += d
			if out == nil {
				out = yi

				continue
			}
			if out, err = op.addInto(out, yi); err != nil {
				return nil, err
			}
		}

		return out, nil

	case KindArgShift:
		xs := cloneVec(x)
		floats.Add(xs, op.shift)

		return op.children[0].Apply(xs)

	case KindArgScale:
		return op.children[0].Apply(scaledVec(op.scalar, x))

	default:
		return nil, fmt.Errorf("core: %s: no apply rule for kind %v: %w",
			op.name, op.kind, ErrInvalidCombination)
	}
}

// Adjoint evaluates the transpose of a linear operator at y. It fails
// with ErrUnsupportedOperation on nodes lacking Linear. The adjoint of a
// composition reverses the order and adjoins each factor; adjoints of
// sums add; stack adjoints mirror the stacking direction.
func (op *Operator) Adjoint(y []float64) ([]float64, error) {
	if !op.props.Has(Linear) {
		return nil, op.unsupported("Adjoint", Linear)
	}
	if err := op.checkVec("adjoint input", op.shape.Codim, len(y)); err != nil {
		return nil, err
	}

	x, err := op.evalAdjoint(y)
	if err != nil {
		return nil, err
	}
	if err = op.checkVec("adjoint output", op.shape.Dim, len(x)); err != nil {
		return nil, err
	}

	return x, nil
}

func (op *Operator) evalAdjoint(y []float64) ([]float64, error) {
	switch op.kind {
	case KindPrimitive:
		return op.adjointFn(y)

	case KindSum:
		xa, err := op.children[0].Adjoint(y)
		if err != nil {
			return nil, err
		}
		xb, err := op.children[1].Adjoint(y)
		if err != nil {
			return nil, err
		}

		return op.addInto(xa, xb)

	case KindScalarMul, KindArgScale:
		x, err := op.children[0].Adjoint(y)
		if err != nil {
			return nil, err
		}
		floats.Scale(op.scalar, x)

		return x, nil

	case KindCompose:
		// (A ∘ B)ᵀ = Bᵀ ∘ Aᵀ.
		inner, err := op.children[0].Adjoint(y)
		if err != nil {
			return nil, err
		}

		return op.children[1].Adjoint(inner)

	case KindVStack:
		var out []float64
		offset := 0
		for _, child := range op.children {
			c := child.shape.Codim
			xi, err := child.Adjoint(y[offset : offset+c])
			if err != nil {
				return nil, err
			}
			offset += c
			if out == nil {
				out = xi

				continue
			}
			if out, err = op.addInto(out, xi); err != nil {
				return nil, err
			}
		}

		return out, nil

	case KindHStack:
		out := make([]float64, 0, op.shape.Dim)
		for _, child := range op.children {
			xi, err := child.Adjoint(y)
			if err != nil {
				return nil, err
			}
			out = append(out, xi...)
		}

		return out, nil

	default:
		return nil, fmt.Errorf("core: %s: no adjoint rule for kind %v: %w",
			op.name, op.kind, ErrInvalidCombination)
	}
}

// Gradient evaluates the gradient of a differentiable functional at x.
// It fails with ErrUnsupportedOperation on nodes lacking DiffFunctional.
// Gradients of sums add; composition follows the chain rule through the
// inner operand's Jacobian adjoint.
func (op *Operator) Gradient(x []float64) ([]float64, error) {
	if !op.props.Has(DiffFunctional) {
		return nil, op.unsupported("Gradient", DiffFunctional)
	}
	if err := op.checkVec("input", op.shape.Dim, len(x)); err != nil {
		return nil, err
	}

	g, err := op.evalGradient(x)
	if err != nil {
		return nil, err
	}
	if err = op.checkVec("gradient output", op.shape.Dim, len(g)); err != nil {
		return nil, err
	}

	return g, nil
}

func (op *Operator) evalGradient(x []float64) ([]float64, error) {
	switch op.kind {
	case KindPrimitive:
		if op.gradFn != nil {
			return op.gradFn(x)
		}
		// Linear functional: ∇⟨a, x⟩ = a = Aᵀ·1.
		return op.Adjoint([]float64{1})

	case KindSum:
		ga, err := op.children[0].Gradient(x)
		if err != nil {
			return nil, err
		}
		gb, err := op.children[1].Gradient(x)
		if err != nil {
			return nil, err
		}

		return op.addInto(ga, gb)

	case KindScalarMul:
		g, err := op.children[0].Gradient(x)
		if err != nil {
			return nil, err
		}
		floats.Scale(op.scalar, g)

		return g, nil

	case KindCompose:
		// ∇(f ∘ g)(x) = J_g(x)ᵀ · ∇f(g(x)).
		inner, err := op.children[1].Apply(x)
		if err != nil {
			return nil, err
		}
		gf, err := op.children[0].Gradient(inner)
		if err != nil {
			return nil, err
		}
		jg, err := op.children[1].Jacobian(x)
		if err != nil {
			return nil, err
		}

		return jg.Adjoint(gf)

	case KindHStack:
		// Separable sum: the gradient concatenates block gradients.
		out := make([]float64, 0, op.shape.Dim)
		offset := 0
		for _, child := range op.children {
			d := child.shape.Dim
			gi, err := child.Gradient(x[offset : offset+d])
			if err != nil {
				return nil, err
			}
			offset += d
			out = append(out, gi...)
		}

		return out, nil

	case KindArgShift:
		xs := cloneVec(x)
		floats.Add(xs, op.shift)

		return op.children[0].Gradient(xs)

	case KindArgScale:
		g, err := op.children[0].Gradient(scaledVec(op.scalar, x))
		if err != nil {
			return nil, err
		}
		floats.Scale(op.scalar, g)

		return g, nil

	default:
		return nil, fmt.Errorf("core: %s: no gradient rule for kind %v: %w",
			op.name, op.kind, ErrInvalidCombination)
	}
}

// Jacobian returns the Jacobian of a differentiable operator at x as a
// new linear Operator. Linear nodes are their own Jacobian. Composite
// Jacobians are built lazily through the composition algebra itself, so
// their property and shape bookkeeping goes through the same rule table
// as user-built graphs. Fails with ErrUnsupportedOperation on nodes
// lacking Differentiable.
func (op *Operator) Jacobian(x []float64) (*Operator, error) {
	if !op.props.Has(Differentiable) {
		return nil, op.unsupported("Jacobian", Differentiable)
	}
	if op.props.Has(Linear) {
		return op, nil
	}
	if err := op.checkVec("input", op.shape.Dim, len(x)); err != nil {
		return nil, err
	}

	switch op.kind {
	case KindPrimitive:
		if op.jacFn != nil {
			return op.jacFn(x)
		}
		// Differentiable functional: J_f(x) = ∇f(x)ᵀ.
		g, err := op.Gradient(x)
		if err != nil {
			return nil, err
		}

		return gradientRow(op.name, g), nil

	case KindSum:
		ja, err := op.children[0].Jacobian(x)
		if err != nil {
			return nil, err
		}
		jb, err := op.children[1].Jacobian(x)
		if err != nil {
			return nil, err
		}

		return Add(ja, jb)

	case KindScalarMul:
		j, err := op.children[0].Jacobian(x)
		if err != nil {
			return nil, err
		}

		return Scale(j, op.scalar)

	case KindCompose:
		// J_{f∘g}(x) = J_f(g(x)) ∘ J_g(x).
		inner, err := op.children[1].Apply(x)
		if err != nil {
			return nil, err
		}
		jf, err := op.children[0].Jacobian(inner)
		if err != nil {
			return nil, err
		}
		jg, err := op.children[1].Jacobian(x)
		if err != nil {
			return nil, err
		}

		return Compose(jf, jg)

	case KindVStack:
		blocks := make([]*Operator, len(op.children))
		for i, child := range op.children {
			j, err := child.Jacobian(x)
			if err != nil {
				return nil, err
			}
			blocks[i] = j
		}

		return VStack(blocks...)

	case KindHStack:
		blocks := make([]*Operator, len(op.children))
		offset := 0
		for i, child := range op.children {
			d := child.shape.Dim
			j, err := child.Jacobian(x[offset : offset+d])
			if err != nil {
				return nil, err
			}
			offset += d
			blocks[i] = j
		}

		return HStack(blocks...)

	case KindArgShift:
		xs := cloneVec(x)
		floats.Add(xs, op.shift)

		return op.children[0].Jacobian(xs)

	case KindArgScale:
		j, err := op.children[0].Jacobian(scaledVec(op.scalar, x))
		if err != nil {
			return nil, err
		}

		return Scale(j, op.scalar)

	default:
		return nil, fmt.Errorf("core: %s: no jacobian rule for kind %v: %w",
			op.name, op.kind, ErrInvalidCombination)
	}
}

// gradientRow wraps a gradient vector as the 1×n linear functional
// x ↦ ⟨g, x⟩. Used as the Jacobian of a differentiable functional.
func gradientRow(parent string, g []float64) *Operator {
	a := cloneVec(g)
	n := len(a)

	return &Operator{
		name:  fmt.Sprintf("∇%s", parent),
		shape: Shape{Codim: 1, Dim: n},
		props: NewPropertySet(LinFunctional),
		kind:  KindPrimitive,
		applyFn: func(x []float64) ([]float64, error) {
			return []float64{floats.Dot(a, x)}, nil
		},
		adjointFn: func(y []float64) ([]float64, error) {
			return scaledVec(y[0], a), nil
		},
		lipBound:  constBound(floats.Norm(a, 2)),
		dlipBound: constBound(0),
	}
}

func constBound(c float64) BoundFunc {
	return func() float64 { return c }
}

// Prox evaluates the proximal operator
// argmin_y f(y) + (1/2τ)·‖y − x‖₂² at x with step τ > 0. Primitive
// nodes supply a closed form; composite nodes support exactly the
// enumerated closed-form cases the combination table preserves
// Proximable for (sum with a linear functional, positive scaling,
// unitary precomposition, argument shift/scale, separable horizontal
// stacks). A node that is itself a linear functional short-circuits to
// the exact shift form x − τ·a regardless of its structure. Everything
// else fails with ErrUnsupportedOperation.
func (op *Operator) Prox(x []float64, tau float64) ([]float64, error) {
	if !op.props.Has(Proximable) {
		return nil, op.unsupported("Prox", Proximable)
	}
	if tau <= 0 {
		return nil, fmt.Errorf("core: %s: step %v: %w", op.name, tau, ErrNonPositiveStep)
	}
	if err := op.checkVec("input", op.shape.Dim, len(x)); err != nil {
		return nil, err
	}

	y, err := op.evalProx(x, tau)
	if err != nil {
		return nil, err
	}
	if err = op.checkVec("prox output", op.shape.Dim, len(y)); err != nil {
		return nil, err
	}

	return y, nil
}

func (op *Operator) evalProx(x []float64, tau float64) ([]float64, error) {
	// A linear functional has one exact closed form no matter how the
	// node was assembled: prox_{τ⟨a,·⟩}(x) = x − τ·a with a = Adjoint(1).
	// It must bypass the structural rules below: those assume a unitary
	// inner factor (Compose) or a positive scale (ScalarMul), and a
	// derived linear functional satisfies neither in general.
	if op.props.Has(LinFunctional) && op.proxFn == nil {
		return op.linFunctionalProx(x, tau)
	}

	switch op.kind {
	case KindPrimitive:
		if op.proxFn != nil {
			return op.proxFn(x, tau)
		}

		return op.linFunctionalProx(x, tau)

	case KindSum:
		// prox_{f + ⟨a,·⟩}(x, τ) = prox_f(x − τ·a, τ).
		f, g := op.children[0], op.children[1]
		if !g.props.Has(LinFunctional) {
			f, g = g, f
		}
		a, err := g.Adjoint([]float64{1})
		if err != nil {
			return nil, err
		}
		shifted := cloneVec(x)
		floats.AddScaled(shifted, -tau, a)

		return f.Prox(shifted, tau)

	case KindScalarMul:
		// prox_{τ·c·f} = prox_{(cτ)·f}; c > 0 by the combination rule.
		return op.children[0].Prox(x, op.scalar*tau)

	case KindCompose:
		// prox_{f∘U}(x, τ) = Uᵀ·prox_f(U·x, τ) for unitary U.
		u := op.children[1]
		z, err := u.Apply(x)
		if err != nil {
			return nil, err
		}
		p, err := op.children[0].Prox(z, tau)
		if err != nil {
			return nil, err
		}

		return u.Adjoint(p)

	case KindHStack:
		// Separable sum: prox applies block-wise.
		out := make([]float64, 0, op.shape.Dim)
		offset := 0
		for _, child := range op.children {
			d := child.shape.Dim
			pi, err := child.Prox(x[offset:offset+d], tau)
			if err != nil {
				return nil, err
			}
			offset += d
			out = append(out, pi...)
		}

		return out, nil

	case KindArgShift:
		// prox_{f(·+s)}(x, τ) = prox_f(x + s, τ) − s.
		xs := cloneVec(x)
		floats.Add(xs, op.shift)
		p, err := op.children[0].Prox(xs, tau)
		if err != nil {
			return nil, err
		}
		floats.Sub(p, op.shift)

		return p, nil

	case KindArgScale:
		// prox_{f(c·)}(x, τ) = prox_f(c·x, c²τ) / c.
		c := op.scalar
		p, err := op.children[0].Prox(scaledVec(c, x), c*c*tau)
		if err != nil {
			return nil, err
		}
		floats.Scale(1/c, p)

		return p, nil

	default:
		return nil, fmt.Errorf("core: %s: no prox rule for kind %v: %w",
			op.name, op.kind, ErrInvalidCombination)
	}
}

// linFunctionalProx is the closed form for f = ⟨a, ·⟩, with the
// constant a recovered through the adjoint.
func (op *Operator) linFunctionalProx(x []float64, tau float64) ([]float64, error) {
	a, err := op.Adjoint([]float64{1})
	if err != nil {
		return nil, err
	}
	out := cloneVec(x)
	floats.AddScaled(out, -tau, a)

	return out, nil
}

// mulBound multiplies two non-negative bounds, treating 0·∞ as 0: a
// factor with zero Lipschitz constant annihilates the composite.
func mulBound(a, b float64) float64 {
	if a == 0 || b == 0 {
		return 0
	}

	return a * b
}

func sqrtSumSquares(vals []float64) float64 {
	total := 0.0
	for _, v := range vals {
		total += v * v
	}

	return math.Sqrt(total)
}

// Lipschitz returns a memoized upper bound on the operator's Lipschitz
// constant — an upper bound, not an exact value. Primitives use the
// declared constant or bound procedure (+Inf when undeclared);
// composites combine child bounds: sums add (triangle inequality),
// compositions multiply, stacks take the root of the sum of squares.
// The computation runs at most once per node; concurrent callers
// observe a single consistent value.
func (op *Operator) Lipschitz() float64 {
	op.lipOnce.Do(func() { op.lip = op.computeLipschitz() })

	return op.lip
}

func (op *Operator) computeLipschitz() float64 {
	switch op.kind {
	case KindPrimitive:
		return op.lipBound()
	case KindSum:
		return op.children[0].Lipschitz() + op.children[1].Lipschitz()
	case KindScalarMul, KindArgScale:
		return mulBound(math.Abs(op.scalar), op.children[0].Lipschitz())
	case KindCompose:
		return mulBound(op.children[0].Lipschitz(), op.children[1].Lipschitz())
	case KindVStack, KindHStack:
		vals := make([]float64, len(op.children))
		for i, child := range op.children {
			vals[i] = child.Lipschitz()
		}

		return sqrtSumSquares(vals)
	case KindArgShift:
		return op.children[0].Lipschitz()
	default:
		return math.Inf(1)
	}
}

// DiffLipschitz returns a memoized upper bound on the Lipschitz constant
// of the operator's derivative. Meaningful only for Differentiable
// operators; +Inf when unknown, 0 for linear operators (constant
// Jacobian). Same memoization semantics as Lipschitz.
func (op *Operator) DiffLipschitz() float64 {
	op.dlipOnce.Do(func() { op.dlip = op.computeDiffLipschitz() })

	return op.dlip
}

func (op *Operator) computeDiffLipschitz() float64 {
	switch op.kind {
	case KindPrimitive:
		return op.dlipBound()
	case KindSum:
		return op.children[0].DiffLipschitz() + op.children[1].DiffLipschitz()
	case KindScalarMul:
		return mulBound(math.Abs(op.scalar), op.children[0].DiffLipschitz())
	case KindArgScale:
		c := math.Abs(op.scalar)

		return mulBound(c*c, op.children[0].DiffLipschitz())
	case KindCompose:
		// ‖J_{f∘g}(x) − J_{f∘g}(y)‖ ≤ dL_f·L_g² + L_f·dL_g.
		lf, lg := op.children[0].Lipschitz(), op.children[1].Lipschitz()
		dlf, dlg := op.children[0].DiffLipschitz(), op.children[1].DiffLipschitz()

		return mulBound(dlf, mulBound(lg, lg)) + mulBound(lf, dlg)
	case KindVStack, KindHStack:
		vals := make([]float64, len(op.children))
		for i, child := range op.children {
			vals[i] = child.DiffLipschitz()
		}

		return sqrtSumSquares(vals)
	case KindArgShift:
		return op.children[0].DiffLipschitz()
	default:
		return math.Inf(1)
	}
}
