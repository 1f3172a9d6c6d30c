// Copyright 2024 The Gotpm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package param

import (
	"encoding/json"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun"
)

// JSONSpec mirrors Spec but with each uniform-or-per-facet material
// field typed as json.RawMessage, since encoding/json has no single Go
// type for "either a number or an array of numbers" — matching the
// simulation config file's own JSON material block, where every
// material field accepts either shape.
//
// Named is an alternative to the eight material fields above: a
// fun.Prms database, the same connect-by-name idiom used elsewhere in
// this ecosystem for material parameter sets, bound to uniform scalars
// via FromNamed. A config file with a non-empty "named" block takes
// precedence over scalar material fields, which are then ignored;
// array-valued material fields still override the named value per facet.
type JSONSpec struct {
	NFace int `json:"n_face"`

	AB   json.RawMessage `json:"a_b"`
	ATH  json.RawMessage `json:"a_th"`
	K    json.RawMessage `json:"k"`
	Rho  json.RawMessage `json:"rho"`
	Cp   json.RawMessage `json:"cp"`
	Eps  json.RawMessage `json:"eps"`
	Zmax json.RawMessage `json:"zmax"`
	Dz   json.RawMessage `json:"dz"`

	Named fun.Prms `json:"named,omitempty"`

	P      float64 `json:"p"`
	TBegin float64 `json:"t_begin"`
	TEnd   float64 `json:"t_end"`
	Dt     float64 `json:"dt"`
	Nz     int     `json:"nz"`
}

// ToSpec decodes each raw material field into either a uniform float64
// or a per-facet []float64, then returns the resolved Spec.
func (j JSONSpec) ToSpec() (Spec, error) {
	s := Spec{NFace: j.NFace, P: j.P, TBegin: j.TBegin, TEnd: j.TEnd, Dt: j.Dt, Nz: j.Nz}
	fields := []struct {
		name string
		raw  json.RawMessage
		dst  *interface{}
	}{
		{"a_b", j.AB, &s.AB}, {"a_th", j.ATH, &s.ATH}, {"k", j.K, &s.K},
		{"rho", j.Rho, &s.Rho}, {"cp", j.Cp, &s.Cp}, {"eps", j.Eps, &s.Eps},
		{"zmax", j.Zmax, &s.Zmax}, {"dz", j.Dz, &s.Dz},
	}
	for _, f := range fields {
		v, err := decodeScalarOrSlice(f.name, f.raw)
		if err != nil {
			return Spec{}, err
		}
		*f.dst = v
	}
	return s, nil
}

// ToParams resolves nFace facets of Params from this config block. A
// config carrying a "named" fun.Prms database is resolved through
// FromNamed, with the eight material fields treated as optional
// per-facet overrides rather than required scalars; otherwise every
// material field is required and decoded through ToSpec and New.
func (j JSONSpec) ToParams(nFace int) (*Params, error) {
	if len(j.Named) > 0 {
		s := Spec{NFace: nFace, P: j.P, TBegin: j.TBegin, TEnd: j.TEnd, Dt: j.Dt, Nz: j.Nz}
		overrides := []struct {
			raw json.RawMessage
			dst *interface{}
		}{
			{j.AB, &s.AB}, {j.ATH, &s.ATH}, {j.K, &s.K},
			{j.Rho, &s.Rho}, {j.Cp, &s.Cp}, {j.Eps, &s.Eps},
			{j.Zmax, &s.Zmax}, {j.Dz, &s.Dz},
		}
		for _, o := range overrides {
			if len(o.raw) == 0 {
				continue
			}
			var vec []float64
			if err := json.Unmarshal(o.raw, &vec); err == nil {
				*o.dst = vec
			}
		}
		return FromNamed(j.Named, nFace, s)
	}
	s, err := j.ToSpec()
	if err != nil {
		return nil, err
	}
	s.NFace = nFace
	return New(s)
}

func decodeScalarOrSlice(name string, raw json.RawMessage) (interface{}, error) {
	if len(raw) == 0 {
		return nil, chk.Err("param: missing required material field %q", name)
	}
	var scalar float64
	if err := json.Unmarshal(raw, &scalar); err == nil {
		return scalar, nil
	}
	var vec []float64
	if err := json.Unmarshal(raw, &vec); err == nil {
		return vec, nil
	}
	return nil, chk.Err("param: field %q is neither a number nor an array of numbers", name)
}
