// Package opalg is your in-memory toolbox for assembling the operators
// behind computational imaging and inverse problems — forward models,
// regularizers and objectives, built by algebra instead of by hand.
//
// 🚀 What is opalg?
//
//	A small, thread-safe operator-algebra engine that brings together:
//		• Core primitives: declare operators with shape, properties & kernels
//		• A property lattice: LINEAR, DIFFERENTIABLE, PROXIMABLE, CONVEX, …
//		• Lazy composition: Add, Scale, Compose, VStack, HStack, ArgShift, ArgScale
//		• Capability methods: Apply, Adjoint, Gradient, Jacobian, Prox
//		• Memoized Lipschitz and diff-Lipschitz upper bounds
//
// ✨ Why choose opalg?
//
//   - Correctness first – composite operators inherit exactly the
//     mathematical properties the combination rules guarantee, never more
//   - Fail fast – shape conflicts surface at construction, capability
//     misuse surfaces as a checked error, no silent fallbacks
//   - Pure value graphs – nodes are immutable, shared as a DAG, safe to
//     evaluate concurrently
//   - Backend-agnostic – kernels see plain slices; dense, sparse or
//     accelerator-resident storage is the caller's concern
//
// Under the hood, everything is organized under three subpackages:
//
//	core/  — Shape model, Property lattice, the Operator node & its algebra
//	linop/ — concrete linear primitives (Identity, Null, Homothety, Diagonal, Matrix)
//	funcs/ — concrete functionals (L1/L2/Squared-L2 norms, Dot, shifted losses)
//
// Quick ASCII example:
//
//	    y = ‖ A·x − b ‖₂²  +  λ·‖x‖₁
//
//	is two primitives, one compose, one argshift, one scale and one add.
//
// Dive into each package's doc.go for contracts, complexity notes and the
// full error vocabulary.
//
//	go get github.com/katalvlaran/opalg
package opalg
