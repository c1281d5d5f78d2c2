// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gen

import (
	"testing"

	"github.com/emer/netgen/model"
	"github.com/emer/netgen/netcfg"
	"github.com/stretchr/testify/require"
)

func testCfg(par netcfg.Paradigm, threads int) netcfg.Config {
	cf := netcfg.Config{}
	cf.Defaults()
	cf.Paradigm = par
	cf.NumThreads = threads
	cf.Update()
	return cf
}

func testGen(t *testing.T, par netcfg.Paradigm, threads int) *Generator {
	gn, err := NewGenerator(testCfg(par, threads))
	require.NoError(t, err)
	return gn
}

func newPop(id int, name string, size int, desc *model.Description) *Population {
	pp := &Population{Size: size}
	pp.ID = id
	pp.Nm = name
	pp.Model = desc
	pp.MaxDelay = 1
	return pp
}

func newPrjn(id int, pre, post *Population, desc *model.Description, cn Connector) *Projection {
	pj := &Projection{Pre: pre, Post: post, Target: "exc", Connector: cn}
	pj.ID = id
	pj.Nm = pre.Nm + "To" + post.Nm
	pj.Model = desc
	pj.MaxDelay = 1
	return pj
}

// rateNeuron is a leaky integrator with a rectified rate.
func rateNeuron() *model.Description {
	return &model.Description{
		Name: "RateNeuron",
		Kind: model.Rate,
		Params: []model.Variable{
			{Name: "tau", CType: "double", Locality: model.Global, Kind: model.ParamAttr, Init: "10.0"},
		},
		Vars: []model.Variable{
			{Name: "v", CType: "double", Locality: model.Local, Kind: model.VarAttr, Deps: []string{"tau"},
				Eq: "v{local_index} += dt * (_sum_exc{local_index} - v{local_index}) / tau{global_index}"},
			{Name: "r", CType: "double", Locality: model.Local, Kind: model.VarAttr, Deps: []string{"v"},
				Eq: "r{local_index} = v{local_index}", Min: "0.0"},
		},
		Targets: []string{"exc"},
	}
}

// spikeNeuron is a leaky integrate-and-fire neuron with an exponential
// conductance.
func spikeNeuron() *model.Description {
	return &model.Description{
		Name: "LIF",
		Kind: model.Spike,
		Params: []model.Variable{
			{Name: "v_thresh", CType: "double", Locality: model.Global, Kind: model.ParamAttr, Init: "1.0"},
		},
		Vars: []model.Variable{
			{Name: "g_exc", CType: "double", Locality: model.Local, Kind: model.VarAttr, Conductance: true,
				Eq: "g_exc{local_index} -= dt * g_exc{local_index} / 5.0"},
			{Name: "v", CType: "double", Locality: model.Local, Kind: model.VarAttr, Deps: []string{"g_exc"},
				Eq: "v{local_index} += dt * (g_exc{local_index} - v{local_index}) / 10.0"},
		},
		Spike: &model.SpikeDesc{
			Cond:     "v{local_index} > v_thresh{global_index}",
			CondDeps: []string{"v", "v_thresh"},
			Reset:    []model.Equation{{Name: "v", Code: "v{local_index} = 0.0"}},
		},
		Targets: []string{"exc"},
	}
}

// rateSynapse has a fixed weight and a static local trace.
func rateSynapse() *model.Description {
	return &model.Description{
		Name: "RateSyn",
		Kind: model.Rate,
		Params: []model.Variable{
			{Name: "w", CType: "double", Locality: model.Local, Kind: model.ParamAttr},
		},
		Vars: []model.Variable{
			{Name: "trace", CType: "double", Locality: model.Local, Kind: model.VarAttr, Init: "0.5"},
		},
	}
}

// normSynapse keeps a trace normalized by the largest pre-synaptic rate.
func normSynapse() *model.Description {
	return &model.Description{
		Name: "NormSyn",
		Kind: model.Rate,
		Params: []model.Variable{
			{Name: "w", CType: "double", Locality: model.Local, Kind: model.ParamAttr},
		},
		Vars: []model.Variable{
			{Name: "trace", CType: "double", Locality: model.Local, Kind: model.VarAttr,
				Eq: "trace{local_index} = pop{id_pre}.r{pre_index} / pop{id_pre}._max_r"},
		},
	}
}

func spikeSynapse() *model.Description {
	return &model.Description{
		Name: "SpikeSyn",
		Kind: model.Spike,
		Params: []model.Variable{
			{Name: "w", CType: "double", Locality: model.Local, Kind: model.ParamAttr},
		},
	}
}
