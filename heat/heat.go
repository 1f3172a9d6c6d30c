// Copyright 2024 The Gotpm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package heat implements the 1-D explicit finite-difference step on a
// single facet's depth column, with a nonlinear radiative surface
// boundary condition and an insulating bottom boundary.
//
// The surface Newton solve is hand-written rather than routed through
// the generic gosl/num.NlSolver: it is a single scalar unknown
// re-solved once per facet per time step, so a bespoke loop with an
// explicit derivative avoids the allocation and LU-factorization
// overhead a general n-dimensional solver would carry in the hot path.
package heat

import (
	"fmt"
	"math"

	"github.com/cpmech/gosl/chk"
)

// StefanBoltzmann mirrors flux.StefanBoltzmann; duplicated as a
// constant here (rather than imported) to keep heat free of a
// dependency on flux — only the scalar F_total and material constants
// cross the package boundary.
const StefanBoltzmann = 5.670374419e-8

// MaxNewtonIter is the hard iteration cap on the surface solve.
const MaxNewtonIter = 20

// NewtonTol is the convergence tolerance |1 - T_pri/T_new[0]| < tol.
const NewtonTol = 1e-10

// ErrNotConverged is returned when the surface Newton iteration fails
// to converge within MaxNewtonIter iterations.
type ErrNotConverged struct {
	Facet, Step int
	LastEstimate float64
}

func (e *ErrNotConverged) Error() string {
	return fmt.Sprintf("heat: Newton iteration did not converge at facet %d step %d (last estimate %g K)", e.Facet, e.Step, e.LastEstimate)
}

// Column is one facet's depth-temperature profile, index 0 = surface,
// index Nz-1 = bottom.
type Column []float64

// StepParams bundles the per-facet scalars the column update needs.
type StepParams struct {
	Lambda float64 // stability coefficient, must be <= 0.5
	K, Ell float64 // conductivity and skin depth (normalized-depth BC coefficient k/ell)
	Dz     float64 // normalized depth step
	Eps    float64 // emissivity
	FTotal float64 // net absorbed flux (flux.Total)
}

// Step advances a column from told to a freshly allocated new column.
// facet/step identify the column for error reporting only.
//
// If the surface Newton iteration fails to converge, Step still returns
// a usable column (surface value set to the last Newton estimate)
// alongside a non-nil *ErrNotConverged — leniency (continue vs. abort)
// is the driver's policy, not this package's.
func Step(told Column, p StepParams, facet, step int) (Column, error) {
	nz := len(told)
	if nz < 3 {
		panic("heat: column must have at least 3 layers")
	}
	if p.Lambda > 0.5 {
		return nil, chk.Err("heat: λ=%g > 0.5 violates the forward-Euler stability precondition", p.Lambda)
	}

	tnew := make(Column, nz)

	// interior points: forward Euler on the normalized diffusion equation
	for i := 1; i < nz-1; i++ {
		tnew[i] = (1-2*p.Lambda)*told[i] + p.Lambda*(told[i+1]+told[i-1])
	}

	// surface boundary: placeholder until solved below, needed because the
	// interior update at i=1 already used told[0]; tnew[0] is resolved by
	// Newton iteration against tnew[1].
	tSurf, converged, _ := solveSurface(told[0], tnew[1], p)
	tnew[0] = tSurf

	// bottom boundary: insulating (zero gradient)
	tnew[nz-1] = tnew[nz-2]

	for i, v := range tnew {
		if v <= 0 {
			return nil, chk.Err("heat: non-positive temperature %g K at facet %d depth index %d step %d", v, facet, i, step)
		}
	}

	if !converged {
		return tnew, &ErrNotConverged{Facet: facet, Step: step, LastEstimate: tSurf}
	}
	return tnew, nil
}

// solveSurface solves, for T_new[0]:
//
//	F_total + (k/ℓ)·(T1-T0)/Δz - ε·σ_SB·T0⁴ = 0
//
// by Newton iteration seeded at told0, returning the converged estimate
// (or the last estimate on failure), whether it converged, and the
// iteration count used.
func solveSurface(told0, t1 float64, p StepParams) (t0 float64, converged bool, iters int) {
	t0 = told0
	coef := p.K / p.Ell / p.Dz
	for iters = 1; iters <= MaxNewtonIter; iters++ {
		fx := p.FTotal + coef*(t1-t0) - p.Eps*StefanBoltzmann*t0*t0*t0*t0
		dfx := -coef - 4*p.Eps*StefanBoltzmann*t0*t0*t0
		if dfx == 0 {
			break
		}
		tNext := t0 - fx/dfx
		if tNext <= 0 {
			tNext = t0 / 2 // keep Newton inside the physical (T>0) domain
		}
		rel := math.Abs(1 - t0/tNext)
		t0 = tNext
		if rel < NewtonTol {
			return t0, true, iters
		}
	}
	return t0, false, iters
}
