// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gen

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/emer/emergent/erand"
	"github.com/emer/emergent/params"
	"github.com/emer/emergent/prjn"
	"github.com/emer/netgen/conn"
	"github.com/emer/netgen/model"
	"github.com/emer/netgen/netcfg"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testNet(t *testing.T, par netcfg.Paradigm, threads int) *Network {
	nt, err := NewNetwork("Net", testCfg(par, threads))
	require.NoError(t, err)
	return nt
}

// unitCode returns the code of the unit of given name.
func unitCode(t *testing.T, nt *Network, name string) string {
	for _, u := range nt.Units {
		if u.Name == name {
			return u.Code
		}
	}
	t.Fatalf("no unit %s", name)
	return ""
}

func TestNetworkGlobalOps(t *testing.T) {
	nt := testNet(t, netcfg.OpenMP, 1)
	in := nt.AddPopulation("In", 4, rateNeuron())
	out := nt.AddPopulation("Out", 3, rateNeuron())
	pj := nt.ConnectPopulations(in, out, "exc", normSynapse(), Connector{Kind: ConnPattern, Pattern: prjn.NewFull()})
	require.NoError(t, nt.Generate())
	require.Len(t, nt.Units, 3)

	assert.Equal(t, []model.GlobalOp{{Fun: model.OpMax, Var: "r"}}, in.GlobalOps)
	assert.Empty(t, out.GlobalOps)
	assert.Equal(t, 12, pj.Matrix.NbSynapses())
	assert.Contains(t, unitCode(t, nt, "In"), "_max_r = max_value< double >(r.data(), size);")
	assert.Contains(t, unitCode(t, nt, "InToOut"), "trace[i][j] = pop0.r[rk_pre] / pop0._max_r;")
	// generating twice gives the same units
	first := unitCode(t, nt, "InToOut")
	require.NoError(t, nt.Generate())
	assert.Equal(t, first, unitCode(t, nt, "InToOut"))
	assert.Len(t, in.GlobalOps, 1)
}

func TestNetworkRateDelay(t *testing.T) {
	nt := testNet(t, netcfg.OpenMP, 1)
	in := nt.AddPopulation("In", 2, rateNeuron())
	out := nt.AddPopulation("Out", 2, rateNeuron())
	nt.ConnectPopulations(in, out, "exc", rateSynapse(), Connector{
		Kind:   ConnLIL,
		LIL:    twoByTwo(),
		Delays: erand.RndParams{Dist: erand.Mean, Mean: 2},
	})
	require.NoError(t, nt.Generate())
	assert.Equal(t, 2, in.MaxDelay)
	assert.Equal(t, []string{"r"}, in.DelayedVars)
	assert.Equal(t, 1, out.MaxDelay)

	pc := unitCode(t, nt, "In")
	assert.Contains(t, pc, "max_delay = 2;")
	assert.Contains(t, pc, "_delayed_r.push_front(r);")
	jc := unitCode(t, nt, "InToOut")
	assert.Contains(t, jc, "delay = 2;")
	assert.Contains(t, jc, "pop1._sum_exc[rk_post] += w[i][j] * pop0._delayed_r[delay-1][rk_pre];")
}

func TestNetworkSpikeDelay(t *testing.T) {
	nt := testNet(t, netcfg.OpenMP, 1)
	in := nt.AddPopulation("In", 3, spikeNeuron())
	out := nt.AddPopulation("Out", 3, spikeNeuron())
	pj := nt.ConnectPopulations(in, out, "exc", spikeSynapse(), Connector{
		Kind:    ConnFixedProbability,
		Prob:    0.5,
		Weights: erand.RndParams{Dist: erand.Mean, Mean: 1},
		Delays:  erand.RndParams{Dist: erand.Mean, Mean: 3},
	})
	require.NoError(t, nt.Generate())
	assert.Equal(t, 3, pj.MaxDelay)
	assert.Equal(t, 3, in.MaxDelay)
	assert.Empty(t, in.DelayedVars)

	pc := unitCode(t, nt, "In")
	assert.Contains(t, pc, "max_delay = 3;")
	assert.Contains(t, pc, "_delayed_spike.push_front(spiked);")
	jc := unitCode(t, nt, "InToOut")
	assert.Contains(t, jc, "delay = 3;")
	assert.Contains(t, jc, "pop0._delayed_spike[delay-1].size()")
	assert.Contains(t, jc, "w = init_matrix_variable< double >(static_cast< double >(w_dist_arg1));")
}

func TestNetworkEntityErrors(t *testing.T) {
	nt := testNet(t, netcfg.OpenMP, 1)
	in := nt.AddPopulation("In", 2, rateNeuron())
	out := nt.AddPopulation("Out", 2, rateNeuron())
	nt.ConnectPopulations(in, out, "exc", rateSynapse(), Connector{Kind: ConnLIL, LIL: twoByTwo()})
	bad := nt.ConnectPopulations(out, in, "exc", rateSynapse(), Connector{Kind: ConnLIL, LIL: twoByTwo()})
	bad.Order = conn.PreToPost

	err := nt.Generate()
	require.Error(t, err)
	var ee EntityErrors
	require.True(t, errors.As(err, &ee))
	assert.Len(t, ee, 1)
	assert.True(t, errors.Is(err, model.ErrUnsupportedCombination))
	assert.Contains(t, err.Error(), "projection OutToIn")
	// the other entities are still generated
	assert.Len(t, nt.Units, 3)
	assert.Nil(t, bad.Matrix)
}

func TestNetworkWriteUnits(t *testing.T) {
	nt := testNet(t, netcfg.OpenMP, 1)
	in := nt.AddPopulation("In", 3, rateNeuron())
	out := nt.AddPopulation("Out", 4, rateNeuron())
	nt.ConnectPopulations(in, out, "exc", rateSynapse(), Connector{Kind: ConnPattern, Pattern: prjn.NewFull(), Weights: erand.RndParams{Dist: erand.Mean, Mean: 0.1}})
	require.NoError(t, nt.Generate())

	dir := filepath.Join(t.TempDir(), "src")
	require.NoError(t, nt.WriteUnits(dir))
	for _, fn := range []string{"pop0.hpp", "pop1.hpp", "proj0.hpp"} {
		b, err := os.ReadFile(filepath.Join(dir, fn))
		require.NoError(t, err, fn)
		assert.NotEmpty(t, b, fn)
	}

	rep := nt.SizeReport()
	assert.Contains(t, rep, "Neurons: 3")
	assert.Contains(t, rep, "Neurons: 7")
	assert.Contains(t, rep, "Syns: 12")
	assert.Contains(t, rep, "LILMatrix<int>")
}

func TestNetworkLookup(t *testing.T) {
	nt := testNet(t, netcfg.OpenMP, 1)
	in := nt.AddPopulation("In", 3, rateNeuron())
	out := nt.AddPopulation("Out", 4, rateNeuron())
	pj := nt.ConnectPopulations(in, out, "exc", rateSynapse(), Connector{Kind: ConnPattern, Pattern: prjn.NewFull()})
	assert.Equal(t, 1, out.ID)
	assert.Equal(t, out, nt.PopByName("Out"))
	assert.Nil(t, nt.PopByName("Hidden"))
	_, err := nt.PopByNameTry("Hidden")
	assert.Error(t, err)
	assert.Equal(t, pj, nt.PrjnByName("InToOut"))
}

func TestNetworkApplyParams(t *testing.T) {
	nt := testNet(t, netcfg.OpenMP, 1)
	in := nt.AddPopulation("In", 3, spikeNeuron())
	in.Cls = "Input"
	out := nt.AddPopulation("Out", 4, spikeNeuron())
	pj := nt.ConnectPopulations(in, out, "exc", spikeSynapse(), Connector{Kind: ConnPattern, Pattern: prjn.NewFull()})

	sheet := &params.Sheet{
		{Sel: "#Out", Desc: "slow recovery",
			Params: params.Params{
				"Population.Refractory": "2",
			}},
		{Sel: ".Input", Desc: "fast recovery",
			Params: params.Params{
				"Population.Refractory": "0.5",
			}},
		{Sel: "Projection", Desc: "one matrix per projection",
			Params: params.Params{
				"Projection.NoSplitMatrix": "true",
			}},
	}
	applied, err := nt.ApplyParams(sheet, false)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, 2.0, out.Refractory)
	assert.Equal(t, 0.5, in.Refractory)
	assert.True(t, pj.NoSplitMatrix)
}
