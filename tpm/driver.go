// Copyright 2024 The Gotpm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package tpm drives the coupled thermophysical-model time loop:
// ephemeris lookup, flux assembly, column update, and non-gravitational
// integration, one facet-parallel step at a time. Its time-loop shape
// follows the same setup/run/finalize split used elsewhere in this
// stack for long-running solvers, with per-rank process fan-out
// replaced by shared-memory goroutines over facets.
package tpm

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"

	"github.com/cpmech/gotpm/ephem"
	"github.com/cpmech/gotpm/flux"
	"github.com/cpmech/gotpm/geom"
	"github.com/cpmech/gotpm/heat"
	"github.com/cpmech/gotpm/mesh"
	"github.com/cpmech/gotpm/nongrav"
	"github.com/cpmech/gotpm/param"
	"github.com/cpmech/gotpm/visibility"
)

// Warning records a non-fatal issue accumulated during a run.
type Warning struct {
	Step, Facet int
	Message     string
}

// SaveWindow selects which steps and facets are recorded into history.
// StepFrom/StepTo are inclusive step indices; FacetIDs selects which
// facets get their full depth column saved (surface temperatures are
// always saved for all facets on a requested step).
type SaveWindow struct {
	StepFrom, StepTo int
	FacetIDs         []int
}

func (w SaveWindow) includes(step int) bool {
	return step >= w.StepFrom && step <= w.StepTo
}

// Config bundles everything the driver needs beyond the mesh,
// visibility graph and parameters, which are passed separately so they
// can be built once and reused across multiple Run calls (e.g. S2/S3's
// multi-cycle scenarios).
type Config struct {
	Toggles  flux.Toggles
	Lenient  bool // continue on Newton non-convergence instead of aborting
	RayEps   float64
	Save     SaveWindow
	RRef     geom.Vec3 // body-frame origin for torque (typically center of mass)
	NWorkers int       // 0 means runtime.GOMAXPROCS(0)
	InitTemp float64   // initial isothermal temperature, Kelvin
}

// Result is what Run returns: final-state temperatures plus whatever
// history the save window asked for, and any accumulated warnings.
type Result struct {
	FinalSurfaceT []float64       // surface temperature at the last completed step, per facet
	FinalColumns  [][]heat.Column
	SavedSteps    []int
	SavedSurfaceT [][]float64           // [saved step][facet]
	SavedColumns  map[int][]heat.Column // facet id -> columns at each saved step, aligned with SavedSteps
	Force         []geom.Vec3           // per saved step, instantaneous body-frame force
	Torque        []geom.Vec3           // per saved step, instantaneous body-frame torque
	CycleForce    geom.Vec3             // mean force over every step of the run, not reset at rotation-cycle boundaries (the Yarkovsky force when the run spans one rotation)
	CycleTorque   geom.Vec3             // mean torque over every step of the run, not reset at rotation-cycle boundaries (the YORP torque when the run spans one rotation)
	Warnings      []Warning
	StepsRun      int // number of steps actually completed before cancellation, if any
}

// Driver owns the immutable mesh/visibility/parameter triple and runs
// one or more time loops against it.
type Driver struct {
	Table *mesh.Table
	Graph *visibility.Graph
	P     *param.Params
}

// New validates that table, graph and parameters are mutually
// consistent (same N_face) and returns a ready-to-run Driver.
func New(t *mesh.Table, g *visibility.Graph, p *param.Params) (*Driver, error) {
	if t.NumFacets() != p.NFace() {
		return nil, chk.Err("tpm: mesh has %d facets, parameters have %d", t.NumFacets(), p.NFace())
	}
	if g.NFace != t.NumFacets() {
		return nil, chk.Err("tpm: visibility graph has %d facets, mesh has %d", g.NFace, t.NumFacets())
	}
	return &Driver{Table: t, Graph: g, P: p}, nil
}

// Run executes the time loop from p.TBegin to p.TEnd at step p.Dt,
// looking up the Sun position from eph at each step index. ctx is
// checked between steps for cooperative cancellation: on cancellation
// Run returns the partial Result accumulated so far and a nil error.
func (d *Driver) Run(ctx context.Context, eph *ephem.Table, cfg Config) (*Result, error) {
	n := d.Table.NumFacets()
	nz := d.P.Nz
	nt := d.P.Nt
	if eph.Len() < nt {
		return nil, chk.Err("tpm: ephemeris table has %d entries, need at least %d", eph.Len(), nt)
	}

	nWorkers := cfg.NWorkers
	if nWorkers <= 0 {
		nWorkers = runtime.GOMAXPROCS(0)
	}
	rayEps := cfg.RayEps
	if rayEps == 0 {
		rayEps = visibility.DefaultRayEps
	}

	// two-slab ring buffer: columns[0] and columns[1] alternate as
	// "current"/"next" so a step never reads a column it is also writing
	columns := [2][]heat.Column{make([]heat.Column, n), make([]heat.Column, n)}
	for f := 0; f < n; f++ {
		col := make(heat.Column, nz)
		for i := range col {
			col[i] = cfg.InitTemp
		}
		columns[0][f] = col
	}

	res := &Result{SavedColumns: make(map[int][]heat.Column)}
	var acc nongrav.Accumulator

	io.Pf("tpm: starting run, %d facets, %d steps, %d workers\n", n, nt-1, nWorkers)

	cur := 0
	for step := 0; step < nt-1; step++ {
		select {
		case <-ctx.Done():
			io.Pf("tpm: cancelled after %d of %d steps\n", step, nt-1)
			res.StepsRun = step
			finalize(res, d, columns[cur])
			return res, nil
		default:
		}

		sunPos, err := eph.At(step)
		if err != nil {
			return nil, err
		}

		tPrev := surfaceOf(columns[cur])
		fluxes := flux.Assemble(d.Table, d.Graph, d.P, sunPos, tPrev, cfg.Toggles, rayEps)

		nxt := 1 - cur
		stepWarnings, err := advanceColumns(d, columns[cur], columns[nxt], fluxes, step, cfg, nWorkers)
		if err != nil {
			return nil, err
		}
		for _, w := range stepWarnings {
			io.Pf("tpm: warning: %s\n", w.Message)
		}
		res.Warnings = append(res.Warnings, stepWarnings...)

		surfNow := surfaceOf(columns[nxt])
		epsOf := func(f int) float64 { return d.P.Eps(f) }
		acc.AddStep(d.Table, surfNow, epsOf, cfg.RRef)

		if cfg.Save.includes(step + 1) {
			res.SavedSteps = append(res.SavedSteps, step+1)
			res.SavedSurfaceT = append(res.SavedSurfaceT, append([]float64{}, surfNow...))
			res.Force = append(res.Force, lastStepForce(d, surfNow, epsOf))
			res.Torque = append(res.Torque, lastStepTorque(d, surfNow, epsOf, cfg.RRef))
			for _, fid := range cfg.Save.FacetIDs {
				res.SavedColumns[fid] = append(res.SavedColumns[fid], append(heat.Column{}, columns[nxt][fid]...))
			}
		}

		cur = nxt
		res.StepsRun = step + 1
	}

	finalize(res, d, columns[cur])
	res.CycleForce, res.CycleTorque = acc.Mean()
	io.Pf("tpm: run complete, %d warnings\n", len(res.Warnings))
	return res, nil
}

func finalize(res *Result, d *Driver, final []heat.Column) {
	res.FinalColumns = [][]heat.Column{final}
	res.FinalSurfaceT = surfaceOf(final)
}

func surfaceOf(cols []heat.Column) []float64 {
	out := make([]float64, len(cols))
	for f, c := range cols {
		out[f] = c[0]
	}
	return out
}

func lastStepForce(d *Driver, surfT []float64, epsOf func(int) float64) geom.Vec3 {
	var f geom.Vec3
	for i, facet := range d.Table.Facets {
		f = f.Add(nongrav.FacetForce(epsOf(i), facet.Area, surfT[i], facet.Normal))
	}
	return f
}

func lastStepTorque(d *Driver, surfT []float64, epsOf func(int) float64, rRef geom.Vec3) geom.Vec3 {
	var t geom.Vec3
	for i, facet := range d.Table.Facets {
		dF := nongrav.FacetForce(epsOf(i), facet.Area, surfT[i], facet.Normal)
		t = t.Add(facet.Center.Sub(rRef).Cross(dF))
	}
	return t
}

// advanceColumns runs the column-update stage for every facet in
// parallel: each facet reads only its own previous column and writes only its own
// new column. heat.Step always returns a best-effort column alongside a
// non-convergence error, so leniency is a pure policy decision made here:
// strict mode aborts the step, lenient mode keeps the column and records
// a Warning. Any other error from Step (stability violation, non-positive
// temperature) is unconditionally fatal.
func advanceColumns(d *Driver, prev, next []heat.Column, fluxes []flux.Triple, step int, cfg Config, nWorkers int) ([]Warning, error) {
	n := len(prev)
	var (
		mu       sync.Mutex
		warnings []Warning
		firstErr error
	)
	jobs := make(chan int, n)
	for f := 0; f < n; f++ {
		jobs <- f
	}
	close(jobs)

	var wg sync.WaitGroup
	for w := 0; w < nWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for f := range jobs {
				sp := heat.StepParams{
					Lambda: d.P.Lambda(f),
					K:      d.P.K(f),
					Ell:    d.P.Ell(f),
					Dz:     d.P.Dz(f),
					Eps:    d.P.Eps(f),
					FTotal: flux.Total(fluxes[f], d.P.AB(f), d.P.ATH(f)),
				}
				col, err := heat.Step(prev[f], sp, f, step)

				mu.Lock()
				var nc *heat.ErrNotConverged
				switch {
				case err == nil:
					next[f] = col
				case errors.As(err, &nc) && cfg.Lenient:
					next[f] = col
					warnings = append(warnings, Warning{Step: step, Facet: f, Message: err.Error()})
				case firstErr == nil:
					firstErr = err
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if firstErr != nil {
		return warnings, firstErr
	}
	return warnings, nil
}
