// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package model

import (
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rateSynapse() *Description {
	return &Description{
		Name: "hebb",
		Kind: Rate,
		Params: []Variable{
			{Name: "eta", CType: "double", Locality: Global, Kind: ParamAttr, Init: "0.01"},
			{Name: "w", CType: "double", Locality: Local, Kind: ParamAttr, Init: "0.5"},
		},
		Vars: []Variable{
			{Name: "w", CType: "double", Locality: Local, Kind: VarAttr, Init: "0.0", Eq: "w{local_index} += eta;"},
			{Name: "trace", CType: "double", Locality: SemiGlobal, Kind: VarAttr},
		},
	}
}

func TestAttributesFirstWins(t *testing.T) {
	ds := rateSynapse()
	attrs := ds.Attributes()
	require.Len(t, attrs, 3)
	assert.Equal(t, "eta", attrs[0].Name)
	assert.Equal(t, "w", attrs[1].Name)
	assert.Equal(t, "trace", attrs[2].Name)

	w, ok := ds.Attr("w")
	require.True(t, ok)
	assert.True(t, w.IsParam(), "the parameter declaration of w comes first")
	assert.Equal(t, "0.5", w.InitValue())

	_, ok = ds.Attr("missing")
	assert.False(t, ok)
}

func TestByLocality(t *testing.T) {
	ds := rateSynapse()
	assert.Len(t, ds.ByLocality(Local), 1)
	assert.Len(t, ds.ByLocality(SemiGlobal), 1)
	assert.Len(t, ds.ByLocality(Global), 1)
	// w resolves to its parameter declaration, which has no equation
	assert.Len(t, ds.Updated(Local), 0)
}

func TestInitValue(t *testing.T) {
	cases := map[string]string{"double": "0.0", "float": "0.0", "int": "0", "bool": "false"}
	for ct, zero := range cases {
		vr := Variable{Name: "x", CType: ct}
		if vr.InitValue() != zero {
			t.Errorf("zero value of %s: got %s, want %s", ct, vr.InitValue(), zero)
		}
	}
}

func TestValidate(t *testing.T) {
	ds := rateSynapse()
	assert.NoError(t, ds.Validate())

	ds.Vars = append(ds.Vars, Variable{Name: "bad", CType: "complex"})
	assert.Error(t, ds.Validate())

	ds = rateSynapse()
	ds.Rands = []RandomVar{{Name: "noise", Dist: Normal, Args: []string{"0.0"}, Locality: Local, CType: "double"}}
	assert.Error(t, ds.Validate(), "normal takes two arguments")
	ds.Rands[0].Args = append(ds.Rands[0].Args, "1.0")
	assert.NoError(t, ds.Validate())

	ds = &Description{Name: "lif", Kind: Spike, Spike: &SpikeDesc{}}
	assert.Error(t, ds.Validate())
}

func TestGlobalOpMember(t *testing.T) {
	op := GlobalOp{Fun: OpMax, Var: "r"}
	assert.Equal(t, "max", op.CName())
	assert.Equal(t, "_max_r", op.Member())
	op = GlobalOp{Fun: OpNorm2, Var: "v"}
	assert.Equal(t, "_norm2_v", op.Member())
}

func TestErrorKinds(t *testing.T) {
	err := Unsupported("rate %v with %s", Rate, "pre_to_post")
	assert.True(t, errors.Is(err, ErrUnsupportedCombination))
	assert.False(t, errors.Is(err, ErrNotImplemented))
	assert.Contains(t, err.Error(), "rate Rate with pre_to_post")

	err = errors.WithMessage(Invariant("nb_synapses %d != %d", 3, 4), "proj0")
	assert.True(t, errors.Is(err, ErrInvariantViolation))
	assert.True(t, errors.Is(NotImplemented("x"), ErrNotImplemented))
}

func TestEnumStrings(t *testing.T) {
	assert.Equal(t, "SemiGlobal", SemiGlobal.String())
	assert.Equal(t, "LogNormal", LogNormal.String())
	assert.Equal(t, "Locality(7)", Locality(7).String())
	assert.Equal(t, 1, Exponential.NArgs())
	assert.Equal(t, 2, Gamma.NArgs())

	b, err := json.Marshal(Spike)
	require.NoError(t, err)
	var k Kind
	require.NoError(t, json.Unmarshal(b, &k))
	assert.Equal(t, Spike, k)

	var loc Locality
	require.NoError(t, loc.FromString("SemiGlobal"))
	assert.Equal(t, SemiGlobal, loc)
	assert.Error(t, loc.FromString("Everywhere"))
	assert.Equal(t, SemiGlobal, loc, "unchanged on error")

	vr := Variable{Name: "g", Locality: Global, Method: EventDriven}
	b, err = json.Marshal(vr)
	require.NoError(t, err)
	var back Variable
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, vr, back)
}
