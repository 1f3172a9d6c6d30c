// Copyright 2024 The Gotpm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command gotpm runs one thermophysical-model simulation from a JSON
// configuration file: it loads a shape mesh, resolves
// material parameters, wires in the caller-supplied ephemeris, runs the
// driver's time loop, and writes the diagnostic CSV tables the
// configuration requests.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"path/filepath"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/utl"

	"github.com/cpmech/gotpm/ephem"
	"github.com/cpmech/gotpm/export"
	"github.com/cpmech/gotpm/flux"
	"github.com/cpmech/gotpm/geom"
	"github.com/cpmech/gotpm/mesh"
	"github.com/cpmech/gotpm/param"
	"github.com/cpmech/gotpm/tpm"
	"github.com/cpmech/gotpm/visibility"
)

// fileConfig is the on-disk JSON shape of a simulation run: mesh
// source, material parameters, ephemeris table, run options and output
// destinations, all bundled into one file rather than split across
// several.
type fileConfig struct {
	Mesh struct {
		Path  string  `json:"path"`
		Scale float64 `json:"scale"`
	} `json:"mesh"`

	Material param.JSONSpec `json:"material"`

	Ephemeris struct {
		Time []float64    `json:"time"`
		Sun  [][3]float64 `json:"sun"`
	} `json:"ephemeris"`

	Run struct {
		SelfShadow   bool       `json:"self_shadow"`
		SelfHeat     bool       `json:"self_heat"`
		Lenient      bool       `json:"lenient"`
		RayEps       float64    `json:"ray_eps"`
		NWorkers     int        `json:"n_workers"`
		InitTemp     float64    `json:"init_temp"`
		RRef         [3]float64 `json:"r_ref"`
		SaveStepFrom int        `json:"save_step_from"`
		SaveStepTo   int        `json:"save_step_to"`
	} `json:"run"`

	Output struct {
		Dir      string `json:"dir"`
		Snapshot string `json:"snapshot"` // optional cached mesh+visibility file
	} `json:"output"`
}

func main() {
	defer func() {
		if err := recover(); err != nil {
			chk.Verbose = true
			for i := 8; i > 3; i-- {
				chk.CallerInfo(i)
			}
			io.PfRed("ERROR: %v\n", err)
			os.Exit(1)
		}
	}()

	io.PfWhite("\ngotpm -- asteroid thermophysical model\n\n")

	flag.Parse()
	if len(flag.Args()) == 0 {
		chk.Panic("please provide a configuration filename. Ex.: itokawa.json")
	}
	fnamepath := flag.Arg(0)

	defer utl.DoProf(false)()

	cfg := loadConfig(fnamepath)

	table := loadMesh(cfg)
	graph := loadVisibility(cfg, table)
	p := resolveParams(cfg, table)
	eph := loadEphem(cfg)

	driver, err := tpm.New(table, graph, p)
	if err != nil {
		chk.Panic("%v", err)
	}

	rRef := geom.Vec3{cfg.Run.RRef[0], cfg.Run.RRef[1], cfg.Run.RRef[2]}
	runCfg := tpm.Config{
		Toggles:  flux.Toggles{SelfShadow: cfg.Run.SelfShadow, SelfHeat: cfg.Run.SelfHeat},
		Lenient:  cfg.Run.Lenient,
		RayEps:   cfg.Run.RayEps,
		Save:     tpm.SaveWindow{StepFrom: cfg.Run.SaveStepFrom, StepTo: cfg.Run.SaveStepTo},
		RRef:     rRef,
		NWorkers: cfg.Run.NWorkers,
		InitTemp: cfg.Run.InitTemp,
	}

	res, err := driver.Run(context.Background(), eph, runCfg)
	if err != nil {
		chk.Panic("%v", err)
	}

	writeOutputs(cfg, res, eph)
}

func loadConfig(path string) fileConfig {
	data, err := io.ReadFile(path)
	if err != nil {
		chk.Panic("cannot read configuration %q: %v", path, err)
	}
	var cfg fileConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		chk.Panic("cannot parse configuration %q: %v", path, err)
	}
	return cfg
}

func loadMesh(cfg fileConfig) *mesh.Table {
	scale := cfg.Mesh.Scale
	if scale == 0 {
		scale = 1
	}
	raw, err := mesh.Load(cfg.Mesh.Path, scale)
	if err != nil {
		chk.Panic("%v", err)
	}
	table, err := mesh.NewTable(raw)
	if err != nil {
		chk.Panic("%v", err)
	}
	return table
}

// loadVisibility reuses a cached snapshot when the configuration names
// one and it exists; otherwise it precomputes the graph and, if an
// output snapshot path is given, saves it for the next run.
func loadVisibility(cfg fileConfig, table *mesh.Table) *visibility.Graph {
	if cfg.Output.Snapshot != "" {
		if _, err := os.Stat(cfg.Output.Snapshot); err == nil {
			_, g, err := export.Load(cfg.Output.Snapshot)
			if err != nil {
				chk.Panic("%v", err)
			}
			io.Pf("gotpm: loaded cached visibility graph from %s\n", cfg.Output.Snapshot)
			return g
		}
	}
	eps := cfg.Run.RayEps
	if eps == 0 {
		eps = visibility.DefaultRayEps
	}
	g, err := visibility.FindVisible(table, visibility.Options{RayEps: eps, UseBins: true})
	if err != nil {
		chk.Panic("%v", err)
	}
	if cfg.Output.Snapshot != "" {
		if err := export.Save(cfg.Output.Snapshot, table, g); err != nil {
			chk.Panic("%v", err)
		}
		io.Pf("gotpm: cached visibility graph to %s\n", cfg.Output.Snapshot)
	}
	return g
}

// resolveParams resolves the material parameter surface. A config's
// "named" fun.Prms block, if present, takes precedence over its plain
// scalar material fields; array-valued material fields still override
// it per facet (param.JSONSpec.ToParams).
func resolveParams(cfg fileConfig, table *mesh.Table) *param.Params {
	p, err := cfg.Material.ToParams(table.NumFacets())
	if err != nil {
		chk.Panic("%v", err)
	}
	return p
}

func loadEphem(cfg fileConfig) *ephem.Table {
	sun := make([]geom.Vec3, len(cfg.Ephemeris.Sun))
	for i, v := range cfg.Ephemeris.Sun {
		sun[i] = geom.Vec3{v[0], v[1], v[2]}
	}
	eph, err := ephem.NewTable(cfg.Ephemeris.Time, sun)
	if err != nil {
		chk.Panic("%v", err)
	}
	return eph
}

func writeOutputs(cfg fileConfig, res *tpm.Result, eph *ephem.Table) {
	dir := cfg.Output.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		chk.Panic("cannot create output directory %q: %v", dir, err)
	}
	if err := export.PhysicalQuantities(filepath.Join(dir, "physical_quantities.csv"), res, eph); err != nil {
		chk.Panic("%v", err)
	}
	if err := export.SurfaceTemperature(filepath.Join(dir, "surface_temperature.csv"), res); err != nil {
		chk.Panic("%v", err)
	}
	if err := export.SubsurfaceTemperature(filepath.Join(dir, "subsurface_temperature.csv"), res); err != nil {
		chk.Panic("%v", err)
	}
	if err := export.ThermalForce(filepath.Join(dir, "thermal_force.csv"), res); err != nil {
		chk.Panic("%v", err)
	}
	io.Pf("gotpm: %d steps run, %d warnings, output written to %s\n", res.StepsRun, len(res.Warnings), dir)
}
