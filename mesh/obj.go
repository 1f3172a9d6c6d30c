// Copyright 2024 The Gotpm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package mesh loads a closed triangular polyhedron from an ASCII OBJ
// file and builds the immutable per-facet table (§3, §4.2 of the
// thermophysical-model design).
package mesh

import (
	"bufio"
	"strconv"
	"strings"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"

	"github.com/cpmech/gotpm/geom"
)

// Raw holds the node and face lists read from an OBJ file, before facet
// derivation. Faces are 0-based after loading (OBJ itself is 1-based).
type Raw struct {
	Nodes []geom.Vec3
	Faces [][3]int
}

// Load parses an ASCII triangular-mesh OBJ file: "v x y z" lines give
// node coordinates, scaled by scale (meters); "f a b c [..] [..]" lines
// give 1-based node indices (texture/normal indices after each '/' are
// ignored). A face that is not a triangle, or that repeats a node index,
// is a fatal input error.
func Load(path string, scale float64) (*Raw, error) {
	data, err := io.ReadFile(path)
	if err != nil {
		return nil, chk.Err("mesh: cannot read %q: %v", path, err)
	}
	o := &Raw{}
	sc := bufio.NewScanner(strings.NewReader(string(data)))
	sc.Buffer(make([]byte, 1024*1024), 1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				return nil, chk.Err("mesh: line %d: malformed vertex %q", lineNo, line)
			}
			x, err1 := strconv.ParseFloat(fields[1], 64)
			y, err2 := strconv.ParseFloat(fields[2], 64)
			z, err3 := strconv.ParseFloat(fields[3], 64)
			if err1 != nil || err2 != nil || err3 != nil {
				return nil, chk.Err("mesh: line %d: cannot parse vertex coordinates %q", lineNo, line)
			}
			o.Nodes = append(o.Nodes, geom.Vec3{x * scale, y * scale, z * scale})
		case "f":
			if len(fields) != 4 {
				return nil, chk.Err("mesh: line %d: non-triangular face (%d vertices): %q", lineNo, len(fields)-1, line)
			}
			var idx [3]int
			for i := 0; i < 3; i++ {
				tok := strings.SplitN(fields[i+1], "/", 2)[0]
				n, err := strconv.Atoi(tok)
				if err != nil {
					return nil, chk.Err("mesh: line %d: cannot parse face index %q", lineNo, fields[i+1])
				}
				idx[i] = n - 1 // OBJ is 1-based
			}
			if idx[0] == idx[1] || idx[1] == idx[2] || idx[0] == idx[2] {
				return nil, chk.Err("mesh: line %d: duplicate node index in face %q", lineNo, line)
			}
			for _, i := range idx {
				if i < 0 || i >= len(o.Nodes) {
					return nil, chk.Err("mesh: line %d: face references undefined node index %d", lineNo, i+1)
				}
			}
			o.Faces = append(o.Faces, idx)
		default:
			// texture/normal/group/material directives are ignored
		}
	}
	if err := sc.Err(); err != nil {
		return nil, chk.Err("mesh: scan error: %v", err)
	}
	if len(o.Faces) == 0 {
		return nil, chk.Err("mesh: no faces found in %q", path)
	}
	return o, nil
}
