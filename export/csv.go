// Copyright 2024 The Gotpm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package export writes a completed run's Result to the
// four tabular CSV files the core promises, plus a binary mesh and
// visibility snapshot for caching the precomputation across runs. CSV
// assembly follows the usual accumulate-into-a-buffer-then-flush-once
// idiom: io.Ff appends formatted text to a bytes.Buffer, and a single
// io.WriteFileV writes it out.
package export

import (
	"bytes"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"

	"github.com/cpmech/gotpm/ephem"
	"github.com/cpmech/gotpm/geom"
	"github.com/cpmech/gotpm/tpm"
)

// csvPrecision keeps every numeric field at full double precision.
const csvPrecision = "%23.15e"

// PhysicalQuantities writes physical_quantities.csv: one row per saved
// step with time, solar distance, mean surface temperature, and the
// six force/torque components in the body frame.
func PhysicalQuantities(path string, res *tpm.Result, eph *ephem.Table) error {
	var buf bytes.Buffer
	io.Ff(&buf, "time,solar_distance,mean_surface_t,fx,fy,fz,tx,ty,tz\n")
	for i, step := range res.SavedSteps {
		sunPos, err := eph.At(step)
		if err != nil {
			return err
		}
		meanT := meanOf(res.SavedSurfaceT[i])
		f, t := zeroIfShort(res.Force, i), zeroIfShort(res.Torque, i)
		io.Ff(&buf, csvPrecision+","+csvPrecision+","+csvPrecision+
			","+csvPrecision+","+csvPrecision+","+csvPrecision+
			","+csvPrecision+","+csvPrecision+","+csvPrecision+"\n",
			eph.Time[step], sunPos.Norm(), meanT,
			f[0], f[1], f[2], t[0], t[1], t[2])
	}
	io.WriteFileV(path, &buf)
	return nil
}

// SurfaceTemperature writes surface_temperature.csv: Nt_save rows by
// N_face columns of T(0,f,n).
func SurfaceTemperature(path string, res *tpm.Result) error {
	if len(res.SavedSurfaceT) == 0 {
		return chk.Err("export: no saved surface temperature rows to write")
	}
	var buf bytes.Buffer
	nFace := len(res.SavedSurfaceT[0])
	io.Ff(&buf, "step")
	for f := 0; f < nFace; f++ {
		io.Ff(&buf, ",facet_%d", f)
	}
	io.Ff(&buf, "\n")
	for i, step := range res.SavedSteps {
		io.Ff(&buf, "%d", step)
		for _, t := range res.SavedSurfaceT[i] {
			io.Ff(&buf, ","+csvPrecision, t)
		}
		io.Ff(&buf, "\n")
	}
	io.WriteFileV(path, &buf)
	return nil
}

// SubsurfaceTemperature writes subsurface_temperature.csv: rows keyed
// by (step, facet_id) with Nz columns, restricted to the facets the
// save window requested.
func SubsurfaceTemperature(path string, res *tpm.Result) error {
	var buf bytes.Buffer
	io.Ff(&buf, "step,facet_id")
	nz := 0
	for _, cols := range res.SavedColumns {
		if len(cols) > 0 {
			nz = len(cols[0])
		}
		break
	}
	for i := 0; i < nz; i++ {
		io.Ff(&buf, ",z_%d", i)
	}
	io.Ff(&buf, "\n")
	for fid, cols := range res.SavedColumns {
		for i, step := range res.SavedSteps {
			if i >= len(cols) {
				break
			}
			io.Ff(&buf, "%d,%d", step, fid)
			for _, v := range cols[i] {
				io.Ff(&buf, ","+csvPrecision, v)
			}
			io.Ff(&buf, "\n")
		}
	}
	io.WriteFileV(path, &buf)
	return nil
}

// ThermalForce writes thermal_force.csv: per saved step, the three
// force and three torque components.
func ThermalForce(path string, res *tpm.Result) error {
	var buf bytes.Buffer
	io.Ff(&buf, "step,fx,fy,fz,tx,ty,tz\n")
	for i, step := range res.SavedSteps {
		f, t := zeroIfShort(res.Force, i), zeroIfShort(res.Torque, i)
		io.Ff(&buf, "%d,"+csvPrecision+","+csvPrecision+","+csvPrecision+
			","+csvPrecision+","+csvPrecision+","+csvPrecision+"\n",
			step, f[0], f[1], f[2], t[0], t[1], t[2])
	}
	io.WriteFileV(path, &buf)
	return nil
}

func meanOf(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	var sum float64
	for _, x := range v {
		sum += x
	}
	return sum / float64(len(v))
}

func zeroIfShort(v []geom.Vec3, i int) geom.Vec3 {
	if i >= len(v) {
		return geom.Vec3{}
	}
	return v[i]
}
