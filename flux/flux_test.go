// Copyright 2024 The Gotpm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package flux

import (
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/cpmech/gotpm/geom"
	"github.com/cpmech/gotpm/mesh"
	"github.com/cpmech/gotpm/param"
	"github.com/cpmech/gotpm/visibility"
)

func cube(tst *testing.T) *mesh.Table {
	nodes := []geom.Vec3{
		{-0.5, -0.5, -0.5}, {0.5, -0.5, -0.5}, {0.5, 0.5, -0.5}, {-0.5, 0.5, -0.5},
		{-0.5, -0.5, 0.5}, {0.5, -0.5, 0.5}, {0.5, 0.5, 0.5}, {-0.5, 0.5, 0.5},
	}
	faces := [][3]int{
		{0, 3, 2}, {0, 2, 1},
		{4, 5, 6}, {4, 6, 7},
		{0, 1, 5}, {0, 5, 4},
		{3, 7, 6}, {3, 6, 2},
		{0, 4, 7}, {0, 7, 3},
		{1, 2, 6}, {1, 6, 5},
	}
	raw := &mesh.Raw{Nodes: nodes, Faces: faces}
	table, err := mesh.NewTable(raw)
	if err != nil {
		tst.Fatal(err)
	}
	return table
}

func findFacetWithNormal(t *mesh.Table, n geom.Vec3) int {
	for i, f := range t.Facets {
		if f.Normal.Dot(n) > 0.99 {
			return i
		}
	}
	return -1
}

func TestAssembleDirectFluxOnConvexCube(tst *testing.T) {
	table := cube(tst)
	g, err := visibility.FindVisible(table, visibility.Options{})
	if err != nil {
		tst.Fatal(err)
	}
	p, err := param.New(param.Spec{
		NFace: table.NumFacets(), AB: 0.0, ATH: 0.0, K: 0.1, Rho: 1000.0, Cp: 600.0, Eps: 1.0,
		Zmax: 0.5, Dz: 0.05, P: 3600, TBegin: 0, TEnd: 1, Dt: 0.01, Nz: 10,
	})
	if err != nil {
		tst.Fatal(err)
	}
	sunDist := 1000 * AU // far away so (AU/d)^2 is small but nonzero
	sunPos := geom.Vec3{float64(sunDist), 0, 0}
	tPrev := make([]float64, table.NumFacets())
	for i := range tPrev {
		tPrev[i] = 200
	}
	tr := Assemble(table, g, p, sunPos, tPrev, Toggles{SelfShadow: true, SelfHeat: true}, visibility.DefaultRayEps)

	plusX := findFacetWithNormal(table, geom.Vec3{1, 0, 0})
	minusX := findFacetWithNormal(table, geom.Vec3{-1, 0, 0})
	if tr[plusX].Sun <= 0 {
		tst.Fatalf("+x facet should be directly illuminated, got F_sun=%g", tr[plusX].Sun)
	}
	if tr[minusX].Sun != 0 {
		tst.Fatalf("-x facet should be in shadow, got F_sun=%g", tr[minusX].Sun)
	}
	// convex body: no facet sees another, so scattered/re-radiated flux is always zero
	for i, t := range tr {
		chk.Scalar(tst, "scat", 1e-15, t.Scat, 0)
		chk.Scalar(tst, "rad", 1e-15, t.Rad, 0)
		_ = i
	}
}

func TestSelfHeatToggleZeroesIndirectFlux(tst *testing.T) {
	table := cube(tst)
	g, err := visibility.FindVisible(table, visibility.Options{})
	if err != nil {
		tst.Fatal(err)
	}
	p, _ := param.New(param.Spec{
		NFace: table.NumFacets(), AB: 0.1, ATH: 0.1, K: 0.1, Rho: 1000.0, Cp: 600.0, Eps: 1.0,
		Zmax: 0.5, Dz: 0.05, P: 3600, TBegin: 0, TEnd: 1, Dt: 0.01, Nz: 10,
	})
	sunPos := geom.Vec3{AU, 0, 0}
	tPrev := make([]float64, table.NumFacets())
	tr := Assemble(table, g, p, sunPos, tPrev, Toggles{SelfShadow: true, SelfHeat: false}, visibility.DefaultRayEps)
	for _, t := range tr {
		if t.Scat != 0 || t.Rad != 0 {
			tst.Fatal("self-heat disabled must zero F_scat and F_rad")
		}
	}
}

func TestTotal(tst *testing.T) {
	tr := Triple{Sun: 100, Scat: 10, Rad: 5}
	got := Total(tr, 0.1, 0.2)
	want := 0.9*(100+10) + 0.8*5
	chk.Scalar(tst, "F_total", 1e-12, got, want)
}
