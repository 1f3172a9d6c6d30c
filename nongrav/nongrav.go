// Copyright 2024 The Gotpm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package nongrav integrates surface temperature into the
// non-gravitational recoil force and torque (Yarkovsky and YORP
// effects). It is a dedicated accumulator component owning the
// force/torque vectors directly, rather than threading them through
// mutable out-parameters at every call site.
package nongrav

import (
	"github.com/cpmech/gotpm/geom"
	"github.com/cpmech/gotpm/mesh"
)

// LightSpeed is c₀ in m/s.
const LightSpeed = 299792458.0

// StefanBoltzmann mirrors flux.StefanBoltzmann (see heat package's
// comment on the same duplication: only scalar material constants
// cross this package boundary).
const StefanBoltzmann = 5.670374419e-8

// lambertianFactor is the 2/3 coefficient derived from Lambertian
// emission.
const lambertianFactor = 2.0 / 3.0

// Accumulator owns a running force and torque sum. Reset zeroes it and
// AddStep adds one time step; it spans whatever steps were added since
// the last Reset.
type Accumulator struct {
	Force  geom.Vec3
	Torque geom.Vec3
	nAdded int
}

// Reset zeroes the accumulator at the start of a new rotation cycle.
func (a *Accumulator) Reset() {
	*a = Accumulator{}
}

// FacetForce returns dF_f = -(2/3)·ε·σ_SB·T⁴·A_f·normal_f/c₀ for one
// facet at surface temperature t.
func FacetForce(eps, area, t float64, normal geom.Vec3) geom.Vec3 {
	mag := -lambertianFactor * eps * StefanBoltzmann * t * t * t * t * area / LightSpeed
	return normal.Scale(mag)
}

// AddStep accumulates one time step's instantaneous force and torque
// contribution from every facet's current surface temperature.
// surfaceT is indexed by facet; epsOf resolves per-facet emissivity;
// rRef is the origin of the body frame (typically the center of mass).
func (a *Accumulator) AddStep(t *mesh.Table, surfaceT []float64, epsOf func(f int) float64, rRef geom.Vec3) {
	for f, facet := range t.Facets {
		dF := FacetForce(epsOf(f), facet.Area, surfaceT[f], facet.Normal)
		a.Force = a.Force.Add(dF)
		a.Torque = a.Torque.Add(facet.Center.Sub(rRef).Cross(dF))
	}
	a.nAdded++
}

// Mean returns the cycle-mean force and torque: the Yarkovsky force and
// YORP torque respectively, once AddStep has been called once per saved
// step of a full rotation cycle.
func (a *Accumulator) Mean() (force, torque geom.Vec3) {
	if a.nAdded == 0 {
		return geom.Vec3{}, geom.Vec3{}
	}
	n := float64(a.nAdded)
	return a.Force.Scale(1 / n), a.Torque.Scale(1 / n)
}

// ExpectedRadiatedPowerOverC is Σ ε σ_SB T⁴ A_f / c₀, the magnitude
// scale used by scenario S6 (a symmetric sphere's net
// force/torque must vanish to within 1e-12 of this scale).
func ExpectedRadiatedPowerOverC(t *mesh.Table, surfaceT []float64, epsOf func(f int) float64) float64 {
	var sum float64
	for f, facet := range t.Facets {
		tt := surfaceT[f]
		sum += epsOf(f) * StefanBoltzmann * tt * tt * tt * tt * facet.Area
	}
	return sum / LightSpeed
}
