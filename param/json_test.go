// Copyright 2024 The Gotpm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package param

import (
	"encoding/json"
	"testing"

	"github.com/cpmech/gosl/chk"
)

func TestJSONSpecDecodesUniformAndPerFacetFields(tst *testing.T) {
	raw := []byte(`{
		"n_face": 3,
		"a_b": 0.04,
		"a_th": 0.0,
		"k": [0.1, 0.1, 0.3],
		"rho": 1270,
		"cp": 600,
		"eps": 1.0,
		"zmax": 0.6,
		"dz": 0.05,
		"p": 3600,
		"t_begin": 0,
		"t_end": 1,
		"dt": 0.01,
		"nz": 41
	}`)
	var js JSONSpec
	if err := json.Unmarshal(raw, &js); err != nil {
		tst.Fatal(err)
	}
	spec, err := js.ToSpec()
	if err != nil {
		tst.Fatal(err)
	}
	ab, ok := spec.AB.(float64)
	if !ok || ab != 0.04 {
		tst.Fatalf("expected uniform a_b=0.04, got %#v", spec.AB)
	}
	k, ok := spec.K.([]float64)
	if !ok || len(k) != 3 {
		tst.Fatalf("expected per-facet k of length 3, got %#v", spec.K)
	}
	p, err := New(spec)
	if err != nil {
		tst.Fatal(err)
	}
	chk.Scalar(tst, "K[2]", 1e-15, p.K(2), 0.3)
	chk.Scalar(tst, "AB[0]", 1e-15, p.AB(0), 0.04)
}

func TestJSONSpecRejectsNonNumericField(tst *testing.T) {
	raw := []byte(`{"n_face":1,"a_b":"oops","a_th":0,"k":0.1,"rho":1,"cp":1,"eps":1,"zmax":1,"dz":0.1,"p":1,"t_end":1,"dt":0.1,"nz":3}`)
	var js JSONSpec
	if err := json.Unmarshal(raw, &js); err != nil {
		tst.Fatal(err)
	}
	if _, err := js.ToSpec(); err == nil {
		tst.Fatal("expected an error for a non-numeric, non-array field")
	}
}

func TestJSONSpecNamedTakesPrecedenceOverScalarFields(tst *testing.T) {
	raw := []byte(`{
		"n_face": 2,
		"a_b": 0.5,
		"named": [
			{"N": "AB", "V": 0.04},
			{"N": "ATH", "V": 0.0},
			{"N": "k", "V": 0.1},
			{"N": "rho", "V": 1270},
			{"N": "cp", "V": 600},
			{"N": "eps", "V": 1.0},
			{"N": "zmax", "V": 0.6},
			{"N": "dz", "V": 0.05}
		],
		"p": 3600,
		"t_begin": 0,
		"t_end": 1,
		"dt": 0.01,
		"nz": 41
	}`)
	var js JSONSpec
	if err := json.Unmarshal(raw, &js); err != nil {
		tst.Fatal(err)
	}
	p, err := js.ToParams(2)
	if err != nil {
		tst.Fatal(err)
	}
	chk.Scalar(tst, "AB", 1e-15, p.AB(0), 0.04)
	chk.Scalar(tst, "K", 1e-15, p.K(1), 0.1)
}

func TestJSONSpecRejectsMissingField(tst *testing.T) {
	raw := []byte(`{"n_face":1,"a_th":0,"k":0.1,"rho":1,"cp":1,"eps":1,"zmax":1,"dz":0.1,"p":1,"t_end":1,"dt":0.1,"nz":3}`)
	var js JSONSpec
	if err := json.Unmarshal(raw, &js); err != nil {
		tst.Fatal(err)
	}
	if _, err := js.ToSpec(); err == nil {
		tst.Fatal("expected an error for a missing required field")
	}
}
