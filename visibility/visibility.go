// Copyright 2024 The Gotpm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package visibility implements the pairwise facet visibility
// precomputation and the Sun-shadow test.
package visibility

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/gm"

	"github.com/cpmech/gotpm/geom"
	"github.com/cpmech/gotpm/mesh"
)

// DefaultRayEps is the default ray epsilon used to reject near-parallel
// and grazing ray-triangle hits and to offset ray origins off the
// emitting facet's own surface.
const DefaultRayEps = 1e-9

// Graph is the symmetric sparse adjacency produced by FindVisible,
// stored as a compressed sparse neighbor list:
// offsets[N_face+1], neighbors[], weights[] (f_ij).
type Graph struct {
	NFace     int
	Offsets   []int
	Neighbors []int
	Weights   []float64 // f_ij aligned with Neighbors
	CosTheta  []float64 // cosθ_i (this facet's angle) aligned with Neighbors
	Dist      []float64 // d_ij aligned with Neighbors
}

// NeighborsOf returns the slice of facet indices visible from facet f.
func (g *Graph) NeighborsOf(f int) []int { return g.Neighbors[g.Offsets[f]:g.Offsets[f+1]] }

// WeightsOf returns f_ij aligned with NeighborsOf(f).
func (g *Graph) WeightsOf(f int) []float64 { return g.Weights[g.Offsets[f]:g.Offsets[f+1]] }

// CosThetaOf returns cosθ_f aligned with NeighborsOf(f).
func (g *Graph) CosThetaOf(f int) []float64 { return g.CosTheta[g.Offsets[f]:g.Offsets[f+1]] }

// DistOf returns d_fj aligned with NeighborsOf(f).
func (g *Graph) DistOf(f int) []float64 { return g.Dist[g.Offsets[f]:g.Offsets[f+1]] }

type pairEntry struct {
	i, j      int
	cosThetaI float64
	cosThetaJ float64
	dij       float64
}

// Options controls the precomputation.
type Options struct {
	RayEps  float64 // ray epsilon; 0 means DefaultRayEps
	UseBins bool    // accelerate candidate-blocker search with gm.Bins
}

// FindVisible computes the symmetric facet visibility graph. For every
// unordered pair (i,j) it rejects pairs below either facet's horizon,
// then casts a ray from i toward j and rejects the pair if any third
// facet blocks the segment. Visibility is not a local relation — two
// facets on opposite faces of a concave body can still see each other
// — so the pair enumeration itself is always exhaustive, exactly like
// the unaccelerated scan; opts.UseBins instead shrinks the per-pair
// blocker search inside blocked, producing the same accepted set up
// to the ray epsilon.
func FindVisible(t *mesh.Table, opts Options) (*Graph, error) {
	n := t.NumFacets()
	if n == 0 {
		return nil, chk.Err("visibility: empty facet table")
	}
	eps := opts.RayEps
	if eps == 0 {
		eps = DefaultRayEps
	}

	var bins *gm.Bins
	var reach float64
	if opts.UseBins {
		bins = buildBins(t)
		reach = t.MaxVertexReach()
	}

	var pairs []pairEntry
	for i := 0; i < n; i++ {
		fi := t.Facets[i]
		for j := i + 1; j < n; j++ {
			fj := t.Facets[j]
			d := fj.Center.Sub(fi.Center)
			dist := d.Norm()
			if dist == 0 {
				continue
			}
			dhat := d.Scale(1 / dist)
			cosI := dhat.Dot(fi.Normal)
			cosJ := -dhat.Dot(fj.Normal)
			if cosI <= 0 || cosJ <= 0 {
				continue // below one facet's horizon
			}
			if blocked(t, i, j, fi.Center, dhat, dist, eps, bins, reach) {
				continue
			}
			pairs = append(pairs, pairEntry{i: i, j: j, cosThetaI: cosI, cosThetaJ: cosJ, dij: dist})
		}
	}

	return buildGraph(t, pairs), nil
}

func buildBins(t *mesh.Table) *gm.Bins {
	xi := []float64{math.Inf(1), math.Inf(1), math.Inf(1)}
	xf := []float64{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for _, f := range t.Facets {
		for d := 0; d < 3; d++ {
			if f.Center[d] < xi[d] {
				xi[d] = f.Center[d]
			}
			if f.Center[d] > xf[d] {
				xf[d] = f.Center[d]
			}
		}
	}
	bins := new(gm.Bins)
	ndiv := []int{16, 16, 16}
	bins.Init(xi, xf, ndiv)
	for id, f := range t.Facets {
		bins.Append([]float64{f.Center[0], f.Center[1], f.Center[2]}, id)
	}
	return bins
}

// blocked reports whether any facet other than i,j intersects the
// center_i -> center_j segment strictly before reaching center_j.
func blocked(t *mesh.Table, i, j int, origin, dhat geom.Vec3, dist, eps float64, bins *gm.Bins, reach float64) bool {
	rayOrigin := origin.Add(t.Facets[i].Normal.Scale(eps))
	for _, k := range blockerCandidates(t, i, j, rayOrigin, dhat, dist, eps, bins, reach) {
		fk := t.Facets[k]
		hit, tpar := geom.RayTriangle(rayOrigin, dhat, fk.Vertices[0], fk.Vertices[1], fk.Vertices[2], eps)
		if hit && tpar < dist-eps {
			return true
		}
	}
	return false
}

// blockerCandidates lists the facets blocked should ray-test as
// potential occluders of the i->j segment. With bins disabled every
// other facet is a candidate, exactly as the naive scan does. With
// bins enabled, the search is restricted to facets whose center lies
// within reach of the rayOrigin->far segment; reach is each facet's
// own maximum vertex spread around its center (mesh.Table.MaxVertexReach),
// so a center-only bin index cannot miss a triangle that genuinely
// crosses the ray even though its center sits farther out. This keeps
// the accelerated search's accepted set identical to the naive scan's,
// up to the ray epsilon.
func blockerCandidates(t *mesh.Table, i, j int, rayOrigin, dhat geom.Vec3, dist, eps float64, bins *gm.Bins, reach float64) []int {
	n := t.NumFacets()
	if bins == nil {
		out := make([]int, 0, n-2)
		for k := 0; k < n; k++ {
			if k != i && k != j {
				out = append(out, k)
			}
		}
		return out
	}
	far := rayOrigin.Add(dhat.Scale(dist))
	ids := bins.FindAlongSegment(
		[]float64{rayOrigin[0], rayOrigin[1], rayOrigin[2]},
		[]float64{far[0], far[1], far[2]},
		reach+eps,
	)
	out := ids[:0]
	for _, k := range ids {
		if k != i && k != j {
			out = append(out, k)
		}
	}
	return out
}

func buildGraph(t *mesh.Table, pairs []pairEntry) *Graph {
	n := t.NumFacets()
	deg := make([]int, n)
	for _, p := range pairs {
		deg[p.i]++
		deg[p.j]++
	}
	offsets := make([]int, n+1)
	for f := 0; f < n; f++ {
		offsets[f+1] = offsets[f] + deg[f]
	}
	m := offsets[n]
	neighbors := make([]int, m)
	weights := make([]float64, m)
	cosTheta := make([]float64, m)
	dists := make([]float64, m)
	cursor := append([]int{}, offsets[:n]...)

	place := func(f, other int, cosF, cosOther, dist float64) {
		pos := cursor[f]
		neighbors[pos] = other
		areaOther := t.Facets[other].Area
		weights[pos] = cosF * cosOther * areaOther / (math.Pi * dist * dist)
		cosTheta[pos] = cosF
		dists[pos] = dist
		cursor[f]++
	}

	for _, p := range pairs {
		place(p.i, p.j, p.cosThetaI, p.cosThetaJ, p.dij)
		place(p.j, p.i, p.cosThetaJ, p.cosThetaI, p.dij)
	}

	return &Graph{NFace: n, Offsets: offsets, Neighbors: neighbors, Weights: weights, CosTheta: cosTheta, Dist: dists}
}

// IsIlluminated implements the Sun-shadow test: facet f is illuminated
// iff its own normal faces the Sun and no facet in its precomputed
// visible set that also faces the Sun and lies sunward of f blocks the
// direct ray. selfShadow=false degrades to the horizon check alone,
// independent of self-heating.
func IsIlluminated(t *mesh.Table, g *Graph, f int, sunDir geom.Vec3, selfShadow bool, eps float64) bool {
	ff := t.Facets[f]
	if ff.Normal.Dot(sunDir) <= 0 {
		return false
	}
	if !selfShadow {
		return true
	}
	rayOrigin := ff.Center.Add(ff.Normal.Scale(eps))
	for _, j := range g.NeighborsOf(f) {
		fj := t.Facets[j]
		if fj.Normal.Dot(sunDir) <= 0 {
			continue
		}
		if fj.Center.Sub(ff.Center).Dot(sunDir) <= 0 {
			continue
		}
		hit, _ := geom.RayTriangle(rayOrigin, sunDir, fj.Vertices[0], fj.Vertices[1], fj.Vertices[2], eps)
		if hit {
			return false
		}
	}
	return true
}
