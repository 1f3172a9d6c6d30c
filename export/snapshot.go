// Copyright 2024 The Gotpm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package export

import (
	"bytes"
	"encoding/gob"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"

	"github.com/cpmech/gotpm/mesh"
	"github.com/cpmech/gotpm/visibility"
)

// Snapshot is the persisted precomputation state worth caching across
// runs: the facet table and its visibility graph, the two artifacts that cost
// an O(N_face²) pass to rebuild from an OBJ file. The wire format is a
// local implementation detail, not an interoperable surface, so a plain
// encoding/gob archive (instead of a documented binary layout) is the
// right tool — restart/cache files elsewhere in this stack are
// consistently ad hoc binary dumps rather than documented formats, and
// gob is the stdlib's closest analogue to that.
type Snapshot struct {
	Table *mesh.Table
	Graph *visibility.Graph
}

// Save writes the snapshot to path as a gob archive. Like the rest of
// gosl/io's file writers, io.WriteFileV panics (via chk.Panic) rather
// than returning an error on an I/O failure; Save only returns an error
// for the encode step, which happens entirely in memory.
func Save(path string, t *mesh.Table, g *visibility.Graph) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(Snapshot{Table: t, Graph: g}); err != nil {
		return chk.Err("export: cannot encode snapshot: %v", err)
	}
	io.WriteFileV(path, &buf)
	return nil
}

// Load reads a snapshot previously written by Save.
func Load(path string) (*mesh.Table, *visibility.Graph, error) {
	data, err := io.ReadFile(path)
	if err != nil {
		return nil, nil, chk.Err("export: cannot read snapshot %q: %v", path, err)
	}
	var snap Snapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&snap); err != nil {
		return nil, nil, chk.Err("export: cannot decode snapshot %q: %v", path, err)
	}
	return snap.Table, snap.Graph, nil
}
