// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hostsim

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/emer/netgen/conn"
	"github.com/emer/netgen/gen"
	"github.com/emer/netgen/model"
	"github.com/emer/netgen/netcfg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// difTol is the float32 tolerance of single precision checks.
const difTol = float32(1.0e-7)

func testCfg(par netcfg.Paradigm, prec netcfg.Precision) *netcfg.Config {
	cf := &netcfg.Config{}
	cf.Defaults()
	cf.Paradigm = par
	cf.Precision = prec
	cf.Update()
	return cf
}

func neuron() *model.Description {
	return &model.Description{
		Name: "LIF",
		Kind: model.Spike,
		Params: []model.Variable{
			{Name: "v_thresh", CType: "double", Locality: model.Global, Kind: model.ParamAttr, Init: "1.0"},
		},
		Vars: []model.Variable{
			{Name: "v", CType: "double", Locality: model.Local, Kind: model.VarAttr,
				Eq: "v{local_index} += dt * (g_exc{local_index} - v{local_index}) / 10.0"},
			{Name: "g_exc", CType: "double", Locality: model.Local, Kind: model.VarAttr, Conductance: true,
				Eq: "g_exc{local_index} -= dt * g_exc{local_index} / 5.0"},
		},
		Spike: &model.SpikeDesc{
			Cond:  "v{local_index} > v_thresh{global_index}",
			Reset: []model.Equation{{Name: "v", Code: "v{local_index} = 0.0"}},
		},
		Targets: []string{"exc"},
	}
}

func synapse() *model.Description {
	return &model.Description{
		Name: "Syn",
		Kind: model.Rate,
		Params: []model.Variable{
			{Name: "w", CType: "double", Locality: model.Local, Kind: model.ParamAttr, Init: "0.5"},
		},
		Vars: []model.Variable{
			{Name: "elig", CType: "double", Locality: model.SemiGlobal, Kind: model.VarAttr, Init: "0.25"},
		},
	}
}

func rateNeuron() *model.Description {
	return &model.Description{
		Name: "Rate",
		Kind: model.Rate,
		Vars: []model.Variable{
			{Name: "r", CType: "double", Locality: model.Local, Kind: model.VarAttr, Eq: "r{local_index} = _sum_exc{local_index}"},
		},
		Targets: []string{"exc"},
	}
}

// sparse has rows for post 0 and 2 only.
func sparse() *conn.LIL {
	ll := &conn.LIL{}
	ll.AddRow(0, []int{1, 2}, []float64{0.1, 0.2})
	ll.AddRow(2, []int{0}, []float64{0.3})
	return ll
}

func TestProjectionScenario(t *testing.T) {
	cf := testCfg(netcfg.OpenMP, netcfg.Double)
	nt, err := gen.NewNetwork("Net", *cf)
	require.NoError(t, err)
	in := nt.AddPopulation("In", 2, rateNeuron())
	out := nt.AddPopulation("Out", 2, rateNeuron())
	ll := &conn.LIL{}
	ll.AddRow(0, []int{0, 1}, nil)
	ll.AddRow(1, []int{0, 1}, nil)
	cn := gen.Connector{Kind: gen.ConnLIL, LIL: ll}
	cn.Weights.Mean = 0.5
	nt.ConnectPopulations(in, out, "exc", synapse(), cn)
	require.NoError(t, nt.Generate())
	u := nt.Units[2]
	assert.Contains(t, u.Code, "w = init_matrix_variable_from_lil< double >(values);")
	assert.Equal(t, 4, u.Matrix.NbSynapses())

	pj, err := NewProjection(u.Plan, u.Matrix, false)
	require.NoError(t, err)
	w, err := pj.GetAll("w")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 0.5, 0.5, 0.5}, w)

	require.NoError(t, pj.SetOne("w", 2, 0.9))
	v, err := pj.GetOne("w", 2)
	require.NoError(t, err)
	assert.Equal(t, 0.9, v)
	st, _ := pj.State("w")
	assert.Equal(t, Clean, st)
}

func TestLocalShape(t *testing.T) {
	for _, gpu := range []bool{false, true} {
		par := netcfg.OpenMP
		if gpu {
			par = netcfg.CUDA
		}
		plan := gen.PlanAttributes(neuron(), false, testCfg(par, netcfg.Double))
		pp, err := NewPopulation(plan, 7, gpu)
		require.NoError(t, err)
		all, err := pp.GetAll("v")
		require.NoError(t, err)
		require.Len(t, all, 7)
		for r := range all {
			v, err := pp.GetOne("v", r)
			require.NoError(t, err)
			assert.Equal(t, all[r], v)
		}
		require.NoError(t, pp.SetOne("v", 3, -65))
		v, _ := pp.GetOne("v", 3)
		assert.Equal(t, -65.0, v)
		st, _ := pp.State("v")
		if gpu {
			assert.Equal(t, DirtyHost, st)
		} else {
			assert.Equal(t, Clean, st)
		}

		_, err = pp.GetOne("v", 7)
		assert.Error(t, err)
		_, err = pp.GetOne("v_thresh", 0)
		assert.Error(t, err, "global read by rank")
		assert.Error(t, pp.SetAll("v", []float64{1}))
	}
}

func TestSync(t *testing.T) {
	plan := gen.PlanAttributes(neuron(), false, testCfg(netcfg.CUDA, netcfg.Double))
	pp, err := NewPopulation(plan, 4, true)
	require.NoError(t, err)
	assert.Equal(t, 0, pp.HostToDevice())

	require.NoError(t, pp.Set("v_thresh", 2))
	st, _ := pp.State("v_thresh")
	assert.Equal(t, DirtyHost, st)
	assert.Equal(t, 1, pp.HostToDevice())
	st, _ = pp.State("v_thresh")
	assert.Equal(t, Clean, st)

	dev, err := pp.Device("v")
	require.NoError(t, err)
	for i := range dev {
		dev[i] = 1.5
	}
	require.NoError(t, pp.KernelWrote("v", "g_exc"))
	st, _ = pp.State("v")
	assert.Equal(t, DirtyDevice, st)
	// the getter copies the newer device values first
	v, err := pp.GetOne("v", 2)
	require.NoError(t, err)
	assert.Equal(t, 1.5, v)
	st, _ = pp.State("v")
	assert.Equal(t, Clean, st)
	assert.Equal(t, 1, pp.DeviceToHost(), "only g_exc is left")
	assert.Equal(t, 0, pp.DeviceToHost())

	require.NoError(t, pp.Reset())
	st, _ = pp.State("v")
	assert.Equal(t, DirtyHost, st)
	assert.Error(t, pp.KernelWrote("u"))

	cpu, err := NewPopulation(gen.PlanAttributes(neuron(), false, testCfg(netcfg.OpenMP, netcfg.Double)), 4, false)
	require.NoError(t, err)
	require.NoError(t, cpu.KernelWrote("v"))
	st, _ = cpu.State("v")
	assert.Equal(t, Clean, st)
	_, err = cpu.Device("v")
	assert.Error(t, err)
}

func TestSinglePrecision(t *testing.T) {
	plan := gen.PlanAttributes(neuron(), false, testCfg(netcfg.OpenMP, netcfg.Float))
	pp, err := NewPopulation(plan, 2, false)
	require.NoError(t, err)
	require.NoError(t, pp.SetOne("v", 0, 0.1))
	v, _ := pp.GetOne("v", 0)
	assert.Equal(t, float64(float32(0.1)), v)
	if dif := math32.Abs(float32(v) - 0.1); dif > difTol {
		t.Errorf("v: got %g, want 0.1 within %g", v, difTol)
	}
	th, _ := pp.Get("v_thresh")
	assert.Equal(t, 1.0, th)
}

func TestSynapses(t *testing.T) {
	plan := gen.PlanAttributes(synapse(), false, testCfg(netcfg.OpenMP, netcfg.Double))
	pj, err := NewProjection(plan, sparse(), false)
	require.NoError(t, err)
	assert.Equal(t, 3, pj.Size)
	assert.Equal(t, 2, pj.Rows)

	assert.Equal(t, 2, pj.SynIdx(2, 0))
	assert.Equal(t, -1, pj.SynIdx(1, 0))
	assert.Equal(t, float32(0.3), pj.Synapse("w", 2, 0))
	assert.True(t, math32.IsNaN(pj.Synapse("w", 1, 0)))
	assert.True(t, math32.IsNaN(pj.Synapse("x", 2, 0)))
	_, err = pj.SynapseTry("w", 0, 0)
	assert.Error(t, err)
	// semiglobal values are per row
	assert.Equal(t, float32(0.25), pj.Synapse("elig", 0, 2))

	row, err := pj.GetRow("w", 0)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.1, 0.2}, row)
	require.NoError(t, pj.SetRow("w", 0, []float64{0.4, 0.5}))
	assert.Equal(t, float32(0.5), pj.Synapse("w", 0, 2))
	assert.Error(t, pj.SetRow("w", 1, []float64{0.4, 0.5}))
	_, err = pj.GetRow("w", 2)
	assert.Error(t, err)
	_, err = pj.GetRow("elig", 0)
	assert.Error(t, err)

	elig, err := pj.GetAll("elig")
	require.NoError(t, err)
	assert.Len(t, elig, 2)
	require.NoError(t, pj.SetOne("elig", 1, 0.75))
	assert.Equal(t, float32(0.75), pj.Synapse("elig", 2, 0))

	_, err = NewProjection(plan, nil, false)
	assert.Error(t, err)
}

func TestSingleWeight(t *testing.T) {
	plan := gen.PlanAttributes(synapse(), true, testCfg(netcfg.OpenMP, netcfg.Double))
	ll := sparse()
	ll.Values = [][]float64{{0.7, 0.7}, {0.7}}
	pj, err := NewProjection(plan, ll, false)
	require.NoError(t, err)
	w, err := pj.Get("w")
	require.NoError(t, err)
	assert.Equal(t, 0.7, w)
	assert.Equal(t, float32(0.7), pj.Synapse("w", 0, 1))
	_, err = pj.GetAll("w")
	assert.Error(t, err)
}

func TestInitialWeights(t *testing.T) {
	plan := gen.PlanAttributes(synapse(), false, testCfg(netcfg.OpenMP, netcfg.Double))
	ll := &conn.LIL{}
	ll.AddRow(0, []int{0, 1}, []float64{0.7, 0.7})
	ll.AddRow(1, []int{0, 1}, []float64{0.7, 0.7})
	for _, mt := range []conn.Matrix{ll, ll.ToCSR(), ll.ToCOO(), ll.ToELL(), ll.ToHYB(), ll.Slice(2)} {
		pj, err := NewProjection(plan, mt, false)
		require.NoError(t, err)
		w, err := pj.GetAll("w")
		require.NoError(t, err)
		assert.Equal(t, []float64{0.7, 0.7, 0.7, 0.7}, w, "%v", mt)
	}

	gpu := gen.PlanAttributes(synapse(), false, testCfg(netcfg.CUDA, netcfg.Double))
	pj, err := NewProjection(gpu, ll.ToCSR(), true)
	require.NoError(t, err)
	dev, err := pj.Device("w")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.7, 0.7, 0.7, 0.7}, dev)

	// without connectivity values the model init is kept
	bare := &conn.LIL{}
	bare.AddRow(0, []int{0, 1}, nil)
	pj, err = NewProjection(plan, bare.ToELL(), false)
	require.NoError(t, err)
	w, err := pj.GetAll("w")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 0.5}, w)
}

func TestPreOrderedSynapses(t *testing.T) {
	mt, err := conn.Build(conn.Selection{Repr: conn.CSRCMatrixT, Args: conn.Args{PostSize: 3, PreSize: 3}}, sparse(), 1)
	require.NoError(t, err)
	require.True(t, conn.PreOrdered(mt))
	plan := gen.PlanAttributes(synapse(), false, testCfg(netcfg.OpenMP, netcfg.Double))
	pj, err := NewProjection(plan, mt, false)
	require.NoError(t, err)

	// rows are pre ranks 1, 2 and 0
	assert.Equal(t, 0, pj.SynIdx(0, 1))
	assert.Equal(t, 1, pj.SynIdx(0, 2))
	assert.Equal(t, 2, pj.SynIdx(2, 0))
	assert.Equal(t, -1, pj.SynIdx(1, 0))
	assert.Equal(t, float32(0.1), pj.Synapse("w", 0, 1))
	assert.Equal(t, float32(0.3), pj.Synapse("w", 2, 0))
	assert.True(t, math32.IsNaN(pj.Synapse("w", 1, 0)))
}

func TestEntityDelay(t *testing.T) {
	plan := gen.PlanAttributes(rateNeuron(), false, testCfg(netcfg.OpenMP, netcfg.Double))
	pp, err := NewPopulation(plan, 2, false)
	require.NoError(t, err)
	require.NoError(t, pp.AddDelay("r", 2))
	assert.Error(t, pp.AddDelay("r", 0))
	assert.Error(t, pp.AddDelay("q", 2))

	for step := 1; step <= 3; step++ {
		require.NoError(t, pp.SetAll("r", []float64{float64(step), float64(10 * step)}))
		pp.UpdateDelay()
	}
	v, err := pp.DelayedTry("r", 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 30.0, v)
	v, err = pp.DelayedTry("r", 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 2.0, v)
	_, err = pp.DelayedTry("r", 3, 0)
	assert.Error(t, err)

	require.NoError(t, pp.Reset())
	v, _ = pp.DelayedTry("r", 2, 1)
	assert.Equal(t, 0.0, v)
}
