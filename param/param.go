// Copyright 2024 The Gotpm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package param resolves the thermophysical parameter surface: each of
// {A_B, A_TH, k, ρ, Cp, ε, z_max, Δz} may be given as a single uniform
// scalar or as a per-facet sequence, resolved once at construction into
// a tagged field so the hot loop never branches on "is this uniform or
// not" per access.
package param

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun"
)

// field is a uniform-or-per-facet scalar field.
type field struct {
	uniform bool
	scalar  float64
	vector  []float64
}

func newUniform(v float64) field { return field{uniform: true, scalar: v} }

func newVector(v []float64) field { return field{uniform: false, vector: v} }

// At resolves the field value at facet index f.
func (fl field) At(f int) float64 {
	if fl.uniform {
		return fl.scalar
	}
	return fl.vector[f]
}

// Spec is the raw, not-yet-validated construction input: every field
// accepts either a uniform float64 or a []float64 of length N_face.
type Spec struct {
	NFace int

	AB   interface{} // Bond albedo, visible
	ATH  interface{} // albedo at thermal wavelengths
	K    interface{} // thermal conductivity, W/(m K)
	Rho  interface{} // density, kg/m^3
	Cp   interface{} // specific heat, J/(kg K)
	Eps  interface{} // emissivity
	Zmax interface{} // normalized max depth
	Dz   interface{} // normalized depth step

	P      float64 // rotation period, seconds
	TBegin float64 // normalized start time
	TEnd   float64 // normalized end time
	Dt     float64 // normalized time step
	Nz     int     // number of depth layers
}

// Params is the fully resolved, immutable parameter object.
type Params struct {
	nFace int

	ab, ath, k, rho, cp, eps, zmax, dz field
	ell, gamma, lambda                field // derived: skin depth, thermal inertia, stability coefficient

	P, TBegin, TEnd, Dt float64
	Nt, Nz              int
}

func toField(name string, v interface{}, nFace int) (field, error) {
	switch x := v.(type) {
	case float64:
		return newUniform(x), nil
	case []float64:
		if len(x) != nFace {
			return field{}, chk.Err("param: %s has length %d, want %d (N_face)", name, len(x), nFace)
		}
		return newVector(x), nil
	default:
		return field{}, chk.Err("param: %s must be float64 or []float64, got %T", name, v)
	}
}

// New validates and resolves a Spec into Params. Construction validates:
// field lengths agree with N_face, Δt > 0, Nz ≥ 3, z_max > 0, non-negative
// material properties, and λ ≤ 0.5 per facet.
func New(s Spec) (*Params, error) {
	if s.NFace <= 0 {
		return nil, chk.Err("param: N_face must be positive, got %d", s.NFace)
	}
	if s.Nz < 3 {
		return nil, chk.Err("param: Nz must be >= 3, got %d", s.Nz)
	}
	if s.Dt <= 0 {
		return nil, chk.Err("param: Δt must be > 0, got %g", s.Dt)
	}
	if s.TEnd <= s.TBegin {
		return nil, chk.Err("param: t_end (%g) must be > t_begin (%g)", s.TEnd, s.TBegin)
	}
	if s.P <= 0 {
		return nil, chk.Err("param: rotation period P must be > 0, got %g", s.P)
	}

	p := &Params{nFace: s.NFace, P: s.P, TBegin: s.TBegin, TEnd: s.TEnd, Dt: s.Dt, Nz: s.Nz}
	p.Nt = int(math.Round((s.TEnd-s.TBegin)/s.Dt)) + 1

	var err error
	if p.ab, err = toField("A_B", s.AB, s.NFace); err != nil {
		return nil, err
	}
	if p.ath, err = toField("A_TH", s.ATH, s.NFace); err != nil {
		return nil, err
	}
	if p.k, err = toField("k", s.K, s.NFace); err != nil {
		return nil, err
	}
	if p.rho, err = toField("rho", s.Rho, s.NFace); err != nil {
		return nil, err
	}
	if p.cp, err = toField("Cp", s.Cp, s.NFace); err != nil {
		return nil, err
	}
	if p.eps, err = toField("epsilon", s.Eps, s.NFace); err != nil {
		return nil, err
	}
	if p.zmax, err = toField("z_max", s.Zmax, s.NFace); err != nil {
		return nil, err
	}
	if p.dz, err = toField("Δz", s.Dz, s.NFace); err != nil {
		return nil, err
	}

	ell := make([]float64, s.NFace)
	gamma := make([]float64, s.NFace)
	lambda := make([]float64, s.NFace)
	for f := 0; f < s.NFace; f++ {
		k, rho, cp := p.k.At(f), p.rho.At(f), p.cp.At(f)
		zmax, dz := p.zmax.At(f), p.dz.At(f)
		if k < 0 || rho < 0 || cp < 0 {
			return nil, chk.Err("param: facet %d has negative material property (k=%g rho=%g Cp=%g)", f, k, rho, cp)
		}
		if zmax <= 0 {
			return nil, chk.Err("param: facet %d has non-positive z_max (%g)", f, zmax)
		}
		if dz <= 0 {
			return nil, chk.Err("param: facet %d has non-positive Δz (%g)", f, dz)
		}
		ell[f] = math.Sqrt(4 * math.Pi * s.P * k / (rho * cp))
		gamma[f] = math.Sqrt(k * rho * cp)
		lambda[f] = s.Dt / (4 * math.Pi * dz * dz)
		if lambda[f] > 0.5 {
			return nil, chk.Err("param: facet %d has λ=%g > 0.5: unstable forward-Euler step (reduce Δt or increase Δz)", f, lambda[f])
		}
	}
	p.ell = newVector(ell)
	p.gamma = newVector(gamma)
	p.lambda = newVector(lambda)
	return p, nil
}

// NFace returns N_face.
func (p *Params) NFace() int { return p.nFace }

// AB, ATH, K, Rho, Cp, Eps, Zmax, Dz, Ell, Gamma, Lambda resolve the
// corresponding field at facet index f.
func (p *Params) AB(f int) float64     { return p.ab.At(f) }
func (p *Params) ATH(f int) float64    { return p.ath.At(f) }
func (p *Params) K(f int) float64      { return p.k.At(f) }
func (p *Params) Rho(f int) float64    { return p.rho.At(f) }
func (p *Params) Cp(f int) float64     { return p.cp.At(f) }
func (p *Params) Eps(f int) float64    { return p.eps.At(f) }
func (p *Params) Zmax(f int) float64   { return p.zmax.At(f) }
func (p *Params) Dz(f int) float64     { return p.dz.At(f) }
func (p *Params) Ell(f int) float64    { return p.ell.At(f) }
func (p *Params) Gamma(f int) float64  { return p.gamma.At(f) }
func (p *Params) Lambda(f int) float64 { return p.lambda.At(f) }

// FromNamed builds a Spec's uniform scalars from a fun.Prms database
// using the standard name-bound-by-Connect idiom. Per-facet overrides,
// if any, are supplied directly as []float64 in p2 and are not part of
// the named database (fun.Prms values are scalar by construction).
// JSONSpec.ToParams is the caller that exercises this path when a
// config's material block names a "named" database instead of giving
// the eight material fields directly.
func FromNamed(prms fun.Prms, nFace int, p2 Spec) (*Params, error) {
	var ab, ath, k, rho, cp, eps, zmax, dz float64
	prms.Connect(&ab, "AB", "gotpm: Bond albedo")
	prms.Connect(&ath, "ATH", "gotpm: thermal albedo")
	prms.Connect(&k, "k", "gotpm: thermal conductivity")
	prms.Connect(&rho, "rho", "gotpm: density")
	prms.Connect(&cp, "cp", "gotpm: specific heat")
	prms.Connect(&eps, "eps", "gotpm: emissivity")
	prms.Connect(&zmax, "zmax", "gotpm: normalized max depth")
	prms.Connect(&dz, "dz", "gotpm: normalized depth step")

	s := Spec{
		NFace: nFace, AB: ab, ATH: ath, K: k, Rho: rho, Cp: cp, Eps: eps, Zmax: zmax, Dz: dz,
		P: p2.P, TBegin: p2.TBegin, TEnd: p2.TEnd, Dt: p2.Dt, Nz: p2.Nz,
	}
	// per-facet overrides passed through verbatim when provided
	if v, ok := p2.AB.([]float64); ok {
		s.AB = v
	}
	if v, ok := p2.ATH.([]float64); ok {
		s.ATH = v
	}
	if v, ok := p2.K.([]float64); ok {
		s.K = v
	}
	if v, ok := p2.Rho.([]float64); ok {
		s.Rho = v
	}
	if v, ok := p2.Cp.([]float64); ok {
		s.Cp = v
	}
	if v, ok := p2.Eps.([]float64); ok {
		s.Eps = v
	}
	if v, ok := p2.Zmax.([]float64); ok {
		s.Zmax = v
	}
	if v, ok := p2.Dz.([]float64); ok {
		s.Dz = v
	}
	return New(s)
}
