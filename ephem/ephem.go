// Copyright 2024 The Gotpm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ephem wraps the in-memory ephemeris table that is the core's
// external collaborator: a caller-supplied record of
// monotonic times and Sun positions in the body-fixed frame, addressed
// by time-step index with no temporal interpolation. The table itself
// is an opaque lookup external to the core; its only link to the rest
// of the stack is SolarDistance, which adapts it to gosl/fun.Func so
// diagnostic code can treat it like any other tabulated function.
package ephem

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun"

	"github.com/cpmech/gotpm/geom"
)

// Table holds parallel time/sun-position sequences.
type Table struct {
	Time []float64   // seconds, monotonic
	Sun  []geom.Vec3 // meters, body-fixed frame
}

// NewTable validates and wraps a raw ephemeris record.
func NewTable(time []float64, sun []geom.Vec3) (*Table, error) {
	if len(time) != len(sun) {
		return nil, chk.Err("ephem: time has %d entries, sun has %d", len(time), len(sun))
	}
	if len(time) == 0 {
		return nil, chk.Err("ephem: empty ephemeris table")
	}
	for i := 1; i < len(time); i++ {
		if time[i] <= time[i-1] {
			return nil, chk.Err("ephem: time is not strictly monotonic at index %d (%g -> %g)", i, time[i-1], time[i])
		}
	}
	return &Table{Time: time, Sun: sun}, nil
}

// Len returns the number of tabulated steps.
func (t *Table) Len() int { return len(t.Time) }

// At returns the Sun position at step index n. The driver uses sun[n]
// directly; no temporal interpolation happens in the core.
func (t *Table) At(n int) (geom.Vec3, error) {
	if n < 0 || n >= len(t.Sun) {
		return geom.Vec3{}, chk.Err("ephem: step index %d out of range [0,%d)", n, len(t.Sun))
	}
	return t.Sun[n], nil
}

// SolarDistance adapts the table to gosl/fun.Func, the interface used
// throughout this stack for scalar boundary-condition and source
// functions, so a caller assembling diagnostic output (e.g.
// physical_quantities.csv's solar distance column) can treat it like
// any other tabulated function of (t,x).
type SolarDistance struct {
	Table *Table
}

// F implements fun.Func: F(t,x) returns the Sun distance at the
// ephemeris step index closest to t (x is unused — the table already
// carries the full 3-D position, not a spatial field).
func (s SolarDistance) F(t float64, x []float64) float64 {
	n := closestIndex(s.Table.Time, t)
	return s.Table.Sun[n].Norm()
}

// G and H implement fun.Func's time-derivative hooks; the ephemeris
// table carries no analytic derivative, so both return zero, the
// standard stance for table-only functions that never participate in
// a tangent stiffness.
func (s SolarDistance) G(t float64, x []float64) float64 { return 0 }
func (s SolarDistance) H(t float64, x []float64) float64 { return 0 }

// Grad is unused by this adapter (the table carries no spatial field)
// but is present to satisfy fun.Func's full surface.
func (s SolarDistance) Grad(v []float64, t float64, x []float64) {
	for i := range v {
		v[i] = 0
	}
}

var _ fun.Func = SolarDistance{}

func closestIndex(times []float64, t float64) int {
	lo, hi := 0, len(times)-1
	for lo < hi {
		mid := (lo + hi) / 2
		if times[mid] < t {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	// lo is the first index with times[lo] >= t; step back when the
	// previous entry is nearer
	if lo > 0 && t-times[lo-1] < times[lo]-t {
		lo--
	}
	return lo
}
