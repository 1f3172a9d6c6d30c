// Copyright 2024 The Gotpm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package geom

import "math"

// Centroid returns the centroid of a triangle with vertices v0, v1, v2.
func Centroid(v0, v1, v2 Vec3) Vec3 {
	return v0.Add(v1).Add(v2).Scale(1.0 / 3.0)
}

// OutwardNormal returns the unit normal of the triangle (v0,v1,v2) via
// (v1-v0) × (v2-v0), i.e. outward for a counter-clockwise vertex order
// as seen from outside the body.
func OutwardNormal(v0, v1, v2 Vec3) Vec3 {
	return v1.Sub(v0).Cross(v2.Sub(v0)).Unit()
}

// Area returns the area of the triangle (v0,v1,v2), equal to half the
// norm of the (unnormalized) cross product of two edges.
func Area(v0, v1, v2 Vec3) float64 {
	return 0.5 * v1.Sub(v0).Cross(v2.Sub(v0)).Norm()
}

// RayTriangle implements the Möller–Trumbore intersection test. origin
// and dir define the ray (dir need not be unit length); v0,v1,v2 are the
// triangle vertices. eps rejects near-parallel rays and grazing hits.
//
// It returns (true, t) with t the non-negative parametric distance along
// the ray at the hit point, or (false, 0) on a miss. Hits behind the ray
// origin (t<0) are treated as misses, which is what shadow and
// visibility tests need: a blocker must lie strictly ahead of the ray.
func RayTriangle(origin, dir, v0, v1, v2 Vec3, eps float64) (bool, float64) {
	edge1 := v1.Sub(v0)
	edge2 := v2.Sub(v0)
	h := dir.Cross(edge2)
	a := edge1.Dot(h)
	if a > -eps && a < eps {
		return false, 0 // ray parallel to triangle plane
	}
	f := 1.0 / a
	s := origin.Sub(v0)
	u := f * s.Dot(h)
	if u < -eps || u > 1.0+eps {
		return false, 0
	}
	q := s.Cross(edge1)
	v := f * dir.Dot(q)
	if v < -eps || u+v > 1.0+eps {
		return false, 0
	}
	t := f * edge2.Dot(q)
	if t < eps {
		return false, 0
	}
	return true, t
}

// PolyhedronVolume returns the signed volume of a closed triangular
// polyhedron given its node positions and 0-based triangular faces, via
// the divergence-theorem sum Σ ((v0×v1)·v2)/6 over all faces. The sign
// is positive iff face orientations are consistent and outward.
func PolyhedronVolume(nodes []Vec3, faces [][3]int) float64 {
	var sum float64
	for _, f := range faces {
		v0, v1, v2 := nodes[f[0]], nodes[f[1]], nodes[f[2]]
		sum += v0.Cross(v1).Dot(v2)
	}
	return sum / 6.0
}

// EquivalentRadius returns the radius of a sphere with the same volume v.
func EquivalentRadius(v float64) float64 {
	return math.Cbrt(3 * v / (4 * math.Pi))
}
