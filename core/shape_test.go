package core_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/opalg/core"
)

// TestNewShape_RejectsNegativeAxes verifies construction-time validation.
func TestNewShape_RejectsNegativeAxes(t *testing.T) {
	_, err := core.NewShape(-1, 3)
	require.ErrorIs(t, err, core.ErrShapeMismatch)

	_, err = core.NewShape(3, -2)
	require.ErrorIs(t, err, core.ErrShapeMismatch)

	s, err := core.NewShape(2, core.DomainAgnostic)
	require.NoError(t, err)
	require.Equal(t, core.Shape{Codim: 2, Dim: core.DomainAgnostic}, s)
}

// TestComposeShapes_InnerAxesMustAgree checks the A∘B inner-axis rule.
func TestComposeShapes_InnerAxesMustAgree(t *testing.T) {
	a := core.Shape{Codim: 5, Dim: 3}
	b := core.Shape{Codim: 3, Dim: 7}

	s, err := core.ComposeShapes(a, b)
	require.NoError(t, err)
	require.Equal(t, core.Shape{Codim: 5, Dim: 7}, s)

	// Conflicting inner axes fail fast.
	_, err = core.ComposeShapes(core.Shape{Codim: 5, Dim: 4}, b)
	require.ErrorIs(t, err, core.ErrShapeMismatch)
}

// TestComposeShapes_SymbolicAxesPropagate checks that a symbolic operand
// matches anything and keeps the result symbolic on its own axis.
func TestComposeShapes_SymbolicAxesPropagate(t *testing.T) {
	// C has symbolic codomain and concrete domain 5.
	c := core.Shape{Codim: core.DomainAgnostic, Dim: 5}
	a := core.Shape{Codim: 5, Dim: 2}

	// C ∘ A: C's domain 5 matches A's codomain 5.
	s, err := core.ComposeShapes(c, a)
	require.NoError(t, err)
	require.Equal(t, core.DomainAgnostic, s.Codim)
	require.Equal(t, 2, s.Dim)

	// Symbolic inner axis matches any outer axis.
	f := core.Shape{Codim: 1, Dim: core.DomainAgnostic}
	s, err = core.ComposeShapes(f, a)
	require.NoError(t, err)
	require.Equal(t, core.Shape{Codim: 1, Dim: 2}, s)
}

// TestStackShapes_Vertical checks codomain summation and domain agreement.
func TestStackShapes_Vertical(t *testing.T) {
	shapes := []core.Shape{
		{Codim: 2, Dim: 4},
		{Codim: 3, Dim: 4},
		{Codim: 1, Dim: core.DomainAgnostic},
	}

	s, err := core.StackShapes(shapes, core.Vertical)
	require.NoError(t, err)
	require.Equal(t, core.Shape{Codim: 6, Dim: 4}, s)
}

// TestStackShapes_Horizontal checks domain summation and codomain agreement.
func TestStackShapes_Horizontal(t *testing.T) {
	shapes := []core.Shape{
		{Codim: 3, Dim: 2},
		{Codim: 3, Dim: 5},
	}

	s, err := core.StackShapes(shapes, core.Horizontal)
	require.NoError(t, err)
	require.Equal(t, core.Shape{Codim: 3, Dim: 7}, s)
}

// TestStackShapes_Failures enumerates the rejection cases: empty input,
// symbolic stacked axis, and conflicting non-stacked axes.
func TestStackShapes_Failures(t *testing.T) {
	_, err := core.StackShapes(nil, core.Vertical)
	require.ErrorIs(t, err, core.ErrShapeMismatch)

	_, err = core.StackShapes([]core.Shape{
		{Codim: core.DomainAgnostic, Dim: 3},
	}, core.Vertical)
	require.ErrorIs(t, err, core.ErrShapeMismatch)

	_, err = core.StackShapes([]core.Shape{
		{Codim: 2, Dim: 3},
		{Codim: 2, Dim: 4},
	}, core.Vertical)
	require.ErrorIs(t, err, core.ErrShapeMismatch)
}

// TestShapeString covers the symbolic-axis rendering used in errors.
func TestShapeString(t *testing.T) {
	require.Equal(t, "(1, *)", core.Shape{Codim: 1, Dim: core.DomainAgnostic}.String())
	require.Equal(t, "(5, 3)", core.Shape{Codim: 5, Dim: 3}.String())
}
