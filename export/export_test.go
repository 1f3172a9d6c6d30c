// Copyright 2024 The Gotpm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/cpmech/gotpm/ephem"
	"github.com/cpmech/gotpm/geom"
	"github.com/cpmech/gotpm/heat"
	"github.com/cpmech/gotpm/mesh"
	"github.com/cpmech/gotpm/tpm"
	"github.com/cpmech/gotpm/visibility"
)

func octahedron(tst *testing.T) *mesh.Table {
	nodes := []geom.Vec3{
		{1, 0, 0}, {-1, 0, 0}, {0, 1, 0}, {0, -1, 0}, {0, 0, 1}, {0, 0, -1},
	}
	faces := [][3]int{
		{0, 2, 4}, {2, 1, 4}, {1, 3, 4}, {3, 0, 4},
		{2, 0, 5}, {1, 2, 5}, {3, 1, 5}, {0, 3, 5},
	}
	raw := &mesh.Raw{Nodes: nodes, Faces: faces}
	table, err := mesh.NewTable(raw)
	if err != nil {
		tst.Fatal(err)
	}
	return table
}

func sampleResult() *tpm.Result {
	return &tpm.Result{
		SavedSteps:    []int{0, 1},
		SavedSurfaceT: [][]float64{{280, 281, 282, 283, 284, 285, 286, 287}, {290, 291, 292, 293, 294, 295, 296, 297}},
		SavedColumns: map[int][]heat.Column{
			0: {{280, 275, 270}, {290, 280, 270}},
		},
		Force:  []geom.Vec3{{1e-10, 0, 0}, {1.1e-10, 0, 0}},
		Torque: []geom.Vec3{{0, 1e-12, 0}, {0, 1.1e-12, 0}},
	}
}

func sampleEphem(tst *testing.T) *ephem.Table {
	tab, err := ephem.NewTable([]float64{0, 3600, 7200}, []geom.Vec3{
		{1.5e11, 0, 0}, {1.5e11, 1e9, 0}, {1.5e11, 2e9, 0},
	})
	if err != nil {
		tst.Fatal(err)
	}
	return tab
}

func TestPhysicalQuantitiesWritesOneRowPerSavedStep(tst *testing.T) {
	dir := tst.TempDir()
	path := filepath.Join(dir, "physical_quantities.csv")
	res := sampleResult()
	eph := sampleEphem(tst)
	if err := PhysicalQuantities(path, res, eph); err != nil {
		tst.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		tst.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != len(res.SavedSteps)+1 {
		tst.Fatalf("expected %d lines (header + rows), got %d", len(res.SavedSteps)+1, len(lines))
	}
	if !strings.HasPrefix(lines[0], "time,solar_distance") {
		tst.Fatalf("unexpected header: %q", lines[0])
	}
}

func TestSurfaceTemperatureHeaderMatchesFacetCount(tst *testing.T) {
	dir := tst.TempDir()
	path := filepath.Join(dir, "surface_temperature.csv")
	res := sampleResult()
	if err := SurfaceTemperature(path, res); err != nil {
		tst.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		tst.Fatal(err)
	}
	header := strings.Split(string(data), "\n")[0]
	nFace := len(res.SavedSurfaceT[0])
	if got := strings.Count(header, ",facet_"); got != nFace {
		tst.Fatalf("expected %d facet columns, got %d", nFace, got)
	}
}

func TestSubsurfaceTemperatureOnlyIncludesRequestedFacets(tst *testing.T) {
	dir := tst.TempDir()
	path := filepath.Join(dir, "subsurface_temperature.csv")
	res := sampleResult()
	if err := SubsurfaceTemperature(path, res); err != nil {
		tst.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		tst.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != len(res.SavedColumns[0])+1 {
		tst.Fatalf("expected %d lines, got %d", len(res.SavedColumns[0])+1, len(lines))
	}
	for _, line := range lines[1:] {
		if !strings.Contains(line, ",0,") {
			tst.Fatalf("row %q does not reference facet 0", line)
		}
	}
}

func TestThermalForceRowCount(tst *testing.T) {
	dir := tst.TempDir()
	path := filepath.Join(dir, "thermal_force.csv")
	res := sampleResult()
	if err := ThermalForce(path, res); err != nil {
		tst.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		tst.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != len(res.SavedSteps)+1 {
		tst.Fatalf("expected %d lines, got %d", len(res.SavedSteps)+1, len(lines))
	}
}

// TestSnapshotRoundTrip checks that saving and reloading a
// facet+visibility snapshot reproduces the original values exactly.
func TestSnapshotRoundTrip(tst *testing.T) {
	table := octahedron(tst)
	g, err := visibility.FindVisible(table, visibility.Options{})
	if err != nil {
		tst.Fatal(err)
	}
	dir := tst.TempDir()
	path := filepath.Join(dir, "snapshot.gob")
	if err := Save(path, table, g); err != nil {
		tst.Fatal(err)
	}
	table2, g2, err := Load(path)
	if err != nil {
		tst.Fatal(err)
	}
	if len(table2.Facets) != len(table.Facets) {
		tst.Fatalf("facet count mismatch: %d vs %d", len(table2.Facets), len(table.Facets))
	}
	for i := range table.Facets {
		chk.Vector(tst, "center", 1e-15, table2.Facets[i].Center[:], table.Facets[i].Center[:])
		chk.Vector(tst, "normal", 1e-15, table2.Facets[i].Normal[:], table.Facets[i].Normal[:])
		chk.Scalar(tst, "area", 1e-15, table2.Facets[i].Area, table.Facets[i].Area)
	}
	if g2.NFace != g.NFace || len(g2.Neighbors) != len(g.Neighbors) {
		tst.Fatal("visibility graph did not round-trip")
	}
	for i := range g.Weights {
		chk.Scalar(tst, "weight", 1e-15, g2.Weights[i], g.Weights[i])
	}
}
