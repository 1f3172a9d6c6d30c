// Copyright 2024 The Gotpm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package flux assembles per-facet direct solar, scattered, and
// thermal-infrared fluxes from the previous time step's surface
// temperatures. Neighbor fluxes always come from the previous step,
// never the current one, for reproducibility.
package flux

import (
	"github.com/cpmech/gotpm/geom"
	"github.com/cpmech/gotpm/mesh"
	"github.com/cpmech/gotpm/param"
	"github.com/cpmech/gotpm/visibility"
)

// AU is one astronomical unit in meters.
const AU = 1.495978707e11

// SolarConstant is S₀, the solar irradiance at 1 AU, W/m².
const SolarConstant = 1361.0

// StefanBoltzmann is σ_SB, W/(m² K⁴).
const StefanBoltzmann = 5.670374419e-8

// Triple is the (F_sun, F_scat, F_rad) flux triple for one facet.
type Triple struct {
	Sun, Scat, Rad float64
}

// Toggles independently enables/disables self-shadowing and
// self-heating.
type Toggles struct {
	SelfShadow bool
	SelfHeat   bool
}

// Assemble computes the flux triple for every facet given the Sun
// position sunPos (body frame, meters) and the previous step's surface
// temperatures tPrev (index = facet). It returns one Triple per facet.
func Assemble(t *mesh.Table, g *visibility.Graph, p *param.Params, sunPos geom.Vec3, tPrev []float64, tgl Toggles, rayEps float64) []Triple {
	n := t.NumFacets()
	out := make([]Triple, n)

	direct := make([]float64, n) // F_sun for every facet, needed by neighbors' F_scat
	for f := 0; f < n; f++ {
		r := sunPos.Sub(t.Facets[f].Center)
		d := r.Norm()
		if d == 0 {
			continue
		}
		rhat := r.Scale(1 / d)
		if !visibility.IsIlluminated(t, g, f, rhat, tgl.SelfShadow, rayEps) {
			continue
		}
		cos := t.Facets[f].Normal.Dot(rhat)
		if cos <= 0 {
			continue
		}
		direct[f] = SolarConstant * (AU / d) * (AU / d) * cos
	}

	for f := 0; f < n; f++ {
		out[f].Sun = direct[f]
		if !tgl.SelfHeat {
			continue
		}
		neigh := g.NeighborsOf(f)
		weights := g.WeightsOf(f)
		var scat, rad float64
		for idx, j := range neigh {
			fij := weights[idx]
			scat += fij * p.AB(j) * direct[j]
			tj := tPrev[j]
			rad += fij * p.Eps(j) * StefanBoltzmann * tj * tj * tj * tj
		}
		out[f].Scat = scat
		out[f].Rad = rad
	}
	return out
}

// Total returns F_total = (1-A_B)(F_sun+F_scat) + (1-A_TH)·F_rad, the
// net absorbed flux driving the surface boundary condition.
func Total(tr Triple, aB, aTH float64) float64 {
	return (1-aB)*(tr.Sun+tr.Scat) + (1-aTH)*tr.Rad
}
