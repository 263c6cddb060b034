package core_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/katalvlaran/opalg/core"
)

// PropertySuite exercises the implication lattice and the combination
// rule table.
type PropertySuite struct {
	suite.Suite
}

// TestImplicationClosure verifies the implication chains are reflexive
// and transitively closed.
func (s *PropertySuite) TestImplicationClosure() {
	quad := core.Implications(core.Quadratic)
	for _, p := range []core.Property{
		core.Quadratic, core.Convex, core.DiffFunctional, core.Differentiable, core.Functional,
	} {
		require.True(s.T(), quad.Has(p), "Quadratic must imply %v", p)
	}

	lin := core.Implications(core.LinFunctional)
	for _, p := range []core.Property{
		core.LinFunctional, core.Linear, core.Functional, core.Proximable,
		core.DiffFunctional, core.Differentiable, core.Convex,
	} {
		require.True(s.T(), lin.Has(p), "LinFunctional must imply %v", p)
	}

	// Unitary reaches Differentiable through Linear.
	require.True(s.T(), core.Implications(core.Unitary).Has(core.Differentiable))
}

// TestNewPropertySetCloses verifies every constructed set is closed:
// no property appears without its prerequisites.
func (s *PropertySuite) TestNewPropertySetCloses() {
	set := core.NewPropertySet(core.Proximable)
	require.True(s.T(), set.Has(core.Convex))
	require.True(s.T(), set.Has(core.Functional))
	require.False(s.T(), set.Has(core.Differentiable))
}

// TestCombineSum checks the addition rules: structural properties
// intersect, Proximable needs a linear-functional partner.
func (s *PropertySuite) TestCombineSum() {
	lin := core.NewPropertySet(core.Linear)
	diff := core.NewPropertySet(core.DiffFunctional)
	prox := core.NewPropertySet(core.Proximable)
	linf := core.NewPropertySet(core.LinFunctional)

	got, err := core.Combine(core.KindSum, []core.PropertySet{lin, lin}, 0)
	require.NoError(s.T(), err)
	require.True(s.T(), got.Has(core.Linear))

	got, err = core.Combine(core.KindSum, []core.PropertySet{diff, diff}, 0)
	require.NoError(s.T(), err)
	require.True(s.T(), got.Has(core.DiffFunctional))

	// Proximable + Proximable does not survive in general...
	got, err = core.Combine(core.KindSum, []core.PropertySet{prox, prox}, 0)
	require.NoError(s.T(), err)
	require.False(s.T(), got.Has(core.Proximable))
	require.True(s.T(), got.Has(core.Convex))

	// ...but Proximable + LinFunctional does (closed-form shift).
	got, err = core.Combine(core.KindSum, []core.PropertySet{prox, linf}, 0)
	require.NoError(s.T(), err)
	require.True(s.T(), got.Has(core.Proximable))
}

// TestCombineCompose checks the composition rules, in particular that
// Proximable is conservatively dropped unless the inner factor is
// unitary.
func (s *PropertySuite) TestCombineCompose() {
	lin := core.NewPropertySet(core.Linear)
	uni := core.NewPropertySet(core.Unitary)
	prox := core.NewPropertySet(core.Proximable)
	quad := core.NewPropertySet(core.Quadratic)

	got, err := core.Combine(core.KindCompose, []core.PropertySet{lin, lin}, 0)
	require.NoError(s.T(), err)
	require.True(s.T(), got.Has(core.Linear))

	got, err = core.Combine(core.KindCompose, []core.PropertySet{uni, uni}, 0)
	require.NoError(s.T(), err)
	require.True(s.T(), got.Has(core.Unitary))

	// Prox through a general linear factor: dropped.
	got, err = core.Combine(core.KindCompose, []core.PropertySet{prox, lin}, 0)
	require.NoError(s.T(), err)
	require.False(s.T(), got.Has(core.Proximable))

	// Prox through a unitary factor: the enumerated closed form.
	got, err = core.Combine(core.KindCompose, []core.PropertySet{prox, uni}, 0)
	require.NoError(s.T(), err)
	require.True(s.T(), got.Has(core.Proximable))

	// Quadratic ∘ Linear stays quadratic; Quadratic ∘ Quadratic does not.
	got, err = core.Combine(core.KindCompose, []core.PropertySet{quad, lin}, 0)
	require.NoError(s.T(), err)
	require.True(s.T(), got.Has(core.Quadratic))

	got, err = core.Combine(core.KindCompose, []core.PropertySet{quad, quad}, 0)
	require.NoError(s.T(), err)
	require.False(s.T(), got.Has(core.Quadratic))
	require.False(s.T(), got.Has(core.Convex))
}

// TestCombineScale checks sign sensitivity: convexity and proximability
// need a positive constant.
func (s *PropertySuite) TestCombineScale() {
	prox := core.NewPropertySet(core.Proximable)

	got, err := core.Combine(core.KindScalarMul, []core.PropertySet{prox}, 2.5)
	require.NoError(s.T(), err)
	require.True(s.T(), got.Has(core.Proximable))
	require.True(s.T(), got.Has(core.Convex))

	got, err = core.Combine(core.KindScalarMul, []core.PropertySet{prox}, -2.5)
	require.NoError(s.T(), err)
	require.False(s.T(), got.Has(core.Proximable))
	require.False(s.T(), got.Has(core.Convex))

	// A negatively scaled linear operator is still linear, hence convex.
	lin := core.NewPropertySet(core.Linear)
	got, err = core.Combine(core.KindScalarMul, []core.PropertySet{lin}, -1)
	require.NoError(s.T(), err)
	require.True(s.T(), got.Has(core.Linear))
	require.True(s.T(), got.Has(core.Convex))
}

// TestCombineStack checks element-wise preservation and the separable
// horizontal-stack case.
func (s *PropertySuite) TestCombineStack() {
	lin := core.NewPropertySet(core.Linear)
	prox := core.NewPropertySet(core.Proximable)

	got, err := core.Combine(core.KindVStack, []core.PropertySet{lin, lin, lin}, 0)
	require.NoError(s.T(), err)
	require.True(s.T(), got.Has(core.Linear))
	require.True(s.T(), got.Has(core.Differentiable))

	// Vertical stacks of functionals are not functionals.
	got, err = core.Combine(core.KindVStack, []core.PropertySet{prox, prox}, 0)
	require.NoError(s.T(), err)
	require.False(s.T(), got.Has(core.Proximable))
	require.False(s.T(), got.Has(core.Functional))

	// Horizontal stacks of functionals separate over disjoint blocks.
	got, err = core.Combine(core.KindHStack, []core.PropertySet{prox, prox}, 0)
	require.NoError(s.T(), err)
	require.True(s.T(), got.Has(core.Proximable))
	require.True(s.T(), got.Has(core.Functional))
}

// TestCombineArity verifies malformed lookups surface as
// ErrInvalidCombination rather than a wrong silent answer.
func (s *PropertySuite) TestCombineArity() {
	lin := core.NewPropertySet(core.Linear)

	_, err := core.Combine(core.KindSum, []core.PropertySet{lin}, 0)
	require.ErrorIs(s.T(), err, core.ErrInvalidCombination)

	_, err = core.Combine(core.KindVStack, nil, 0)
	require.ErrorIs(s.T(), err, core.ErrInvalidCombination)

	_, err = core.Combine(core.KindPrimitive, []core.PropertySet{lin}, 0)
	require.ErrorIs(s.T(), err, core.ErrInvalidCombination)
}

// TestPropertyStrings pins the display names used in error messages.
func (s *PropertySuite) TestPropertyStrings() {
	require.Equal(s.T(), "Linear", core.Linear.String())
	require.Equal(s.T(), "{Functional, Convex, Quadratic}",
		"{"+core.Functional.String()+", "+core.Convex.String()+", "+core.Quadratic.String()+"}")
}

func TestPropertySuite(t *testing.T) {
	suite.Run(t, new(PropertySuite))
}
