// Copyright 2024 The Gotpm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package export

import (
	"github.com/cpmech/gosl/plt"
	"github.com/cpmech/gosl/utl"

	"github.com/cpmech/gotpm/heat"
)

// PlotColumn renders one facet's depth-temperature profile to a PNG
// diagnostic, following the usual gosl/plt debug-plot idiom of taking
// the output directory and filename as separate arguments. dz is the
// normalized depth step used to build the column; the depth axis is
// generated with utl.LinSpace rather than accumulated by hand.
func PlotColumn(col heat.Column, dz float64, title, dirout, fname string) {
	depth := utl.LinSpace(0, dz*float64(len(col)-1), len(col))
	plt.Plot(depth, []float64(col), "'b.-', clip_on=0")
	plt.Gll("depth (normalized)", "temperature (K)", "")
	if title != "" {
		plt.Title(title, "")
	}
	plt.SaveD(dirout, fname)
}
