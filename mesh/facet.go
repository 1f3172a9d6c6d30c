// Copyright 2024 The Gotpm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mesh

import (
	"github.com/cpmech/gosl/chk"

	"github.com/cpmech/gotpm/geom"
)

// areaEps is the minimum admissible facet area; smaller triangles are a
// degenerate-geometry fatal error at mesh build time.
const areaEps = 1e-30

// unitNormalTol bounds ‖normal‖-1 for the outward-normal invariant.
const unitNormalTol = 1e-12

// Facet holds the static, immutable-after-build geometric attributes of
// one triangular face. Dynamic per-facet state (depth column, fluxes)
// lives alongside it in the tpm package, not here: the table itself
// never mutates once built.
type Facet struct {
	Vertices [3]geom.Vec3
	Center   geom.Vec3
	Normal   geom.Vec3
	Area     float64
}

// Table is the immutable set of facets derived from a raw node/face
// mesh, plus the node/face arrays themselves (kept for ray-triangle
// blocker tests against raw triangle vertices in the visibility
// package).
type Table struct {
	Nodes  []geom.Vec3
	Faces  [][3]int
	Facets []Facet
}

// NewTable builds the facet table from raw mesh data, validating that
// every facet has positive area and a unit normal. N_face == 0 is a
// fatal input error.
func NewTable(raw *Raw) (*Table, error) {
	if len(raw.Faces) == 0 {
		return nil, chk.Err("mesh: cannot build facet table: zero faces")
	}
	t := &Table{
		Nodes:  raw.Nodes,
		Faces:  raw.Faces,
		Facets: make([]Facet, len(raw.Faces)),
	}
	for i, f := range raw.Faces {
		v0, v1, v2 := raw.Nodes[f[0]], raw.Nodes[f[1]], raw.Nodes[f[2]]
		area := geom.Area(v0, v1, v2)
		if area <= areaEps {
			return nil, chk.Err("mesh: facet %d is degenerate (area=%g)", i, area)
		}
		n := geom.OutwardNormal(v0, v1, v2)
		if e := n.Norm() - 1; e > unitNormalTol || e < -unitNormalTol {
			return nil, chk.Err("mesh: facet %d normal is not unit length (‖n‖=%g)", i, n.Norm())
		}
		t.Facets[i] = Facet{
			Vertices: [3]geom.Vec3{v0, v1, v2},
			Center:   geom.Centroid(v0, v1, v2),
			Normal:   n,
			Area:     area,
		}
	}
	return t, nil
}

// NumFacets returns N_face.
func (t *Table) NumFacets() int { return len(t.Facets) }

// Volume returns the signed volume of the closed polyhedron.
func (t *Table) Volume() float64 {
	return geom.PolyhedronVolume(t.Nodes, t.Faces)
}

// AreaNormalSum returns Σ(area·normal) over all facets, the mesh
// closedness check: zero within 1e-9 of the mean area for a valid
// closed mesh.
func (t *Table) AreaNormalSum() geom.Vec3 {
	var sum geom.Vec3
	for _, f := range t.Facets {
		sum = sum.Add(f.Normal.Scale(f.Area))
	}
	return sum
}

// MeanArea returns the mean facet area, used as the closedness-check
// tolerance scale.
func (t *Table) MeanArea() float64 {
	var sum float64
	for _, f := range t.Facets {
		sum += f.Area
	}
	return sum / float64(len(t.Facets))
}

// MaxVertexReach returns the largest distance from any facet's center
// to one of its own vertices. A spatial search keyed on facet centers
// must use at least this much tolerance to be sure of catching every
// facet whose triangle, not just its center, lies near a query point.
func (t *Table) MaxVertexReach() float64 {
	var maxR float64
	for _, f := range t.Facets {
		for _, v := range f.Vertices {
			if r := v.Sub(f.Center).Norm(); r > maxR {
				maxR = r
			}
		}
	}
	return maxR
}
