// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gen

import (
	"testing"

	"github.com/emer/emergent/erand"
	"github.com/emer/netgen/conn"
	"github.com/emer/netgen/model"
	"github.com/emer/netgen/netcfg"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoByTwo is a full 2x2 connectivity with every weight at 0.5.
func twoByTwo() *conn.LIL {
	ll := &conn.LIL{}
	ll.AddRow(0, []int{0, 1}, []float64{0.5, 0.5})
	ll.AddRow(1, []int{0, 1}, []float64{0.5, 0.5})
	return ll
}

func TestProjectionLIL(t *testing.T) {
	gn := testGen(t, netcfg.OpenMP, 1)
	pre := newPop(0, "In", 2, rateNeuron())
	post := newPop(1, "Out", 2, rateNeuron())
	pj := newPrjn(0, pre, post, rateSynapse(), Connector{Kind: ConnLIL, LIL: twoByTwo()})
	u, err := gn.Projection(pj)
	require.NoError(t, err)

	assert.Equal(t, "proj0.hpp", u.FileName)
	assert.Equal(t, conn.LILMatrix, u.Repr)
	assert.True(t, u.Single)
	require.NotNil(t, u.Matrix)
	assert.Equal(t, 4, u.Matrix.NbSynapses())
	assert.Equal(t, [][]float64{{0.5, 0.5}, {0.5, 0.5}}, u.LIL.Values)
	for _, s := range []string{
		`#include "pop0.hpp"`,
		`#include "pop1.hpp"`,
		"extern PopStruct0 pop0;",
		"struct ProjStruct0 : LILMatrix<int> {",
		"ProjStruct0() : LILMatrix<int>(2, 2) {}",
		"bool init_from_lil(std::vector<int> row_indices,",
		"static_cast<LILMatrix<int>*>(this)->init_matrix_from_lil(row_indices, column_indices);",
		"w = init_matrix_variable_from_lil< double >(values);",
		"trace = init_matrix_variable< double >(static_cast< double >(0.5));",
		"std::vector< std::vector< double > > w;",
		"pop1._sum_exc[rk_post] += w[i][j] * pop0.r[rk_pre];",
		"return get_matrix_variable_all< double >(w);",
		"double get_single_w(int rk) { return get_matrix_variable_by_rank< double >(w, rk); }",
		"void set_single_trace(int rk, double val) { update_matrix_variable_by_rank< double >(trace, rk, val); }",
		"size_in_bytes += static_cast< LILMatrix<int>* >(this)->size_in_bytes();",
		"void init_projection() {",
	} {
		assert.Contains(t, u.Code, s)
	}
	// w comes from the connectivity constructor only
	assert.NotContains(t, u.Frags.Init, "w =")
	assert.NotContains(t, u.Code, "inverse_connectivity_matrix")
	assert.NotContains(t, u.Code, "fixed_probability_pattern")
	// 4 synapses over 2 rows, then w and trace
	assert.Equal(t, int64(4*(4+2*2)+4*8+4*8), u.SizeBytes)
}

func TestProjectionSingleWeight(t *testing.T) {
	gn := testGen(t, netcfg.OpenMP, 1)
	pre := newPop(0, "In", 2, rateNeuron())
	post := newPop(1, "Out", 2, rateNeuron())
	pj := newPrjn(0, pre, post, rateSynapse(), Connector{Kind: ConnLIL, LIL: twoByTwo()})
	pj.SingleWeight = true
	u, err := gn.Projection(pj)
	require.NoError(t, err)
	wp, ok := Find(u.Plan, "w")
	require.True(t, ok)
	assert.Equal(t, model.Global, wp.Locality)
	assert.Contains(t, u.Code, "w = values[0][0];")
	assert.Contains(t, u.Code, "double w;")
	assert.Contains(t, u.Code, "pop1._sum_exc[rk_post] += w * pop0.r[rk_pre];")
	assert.Equal(t, int64(4*(4+2*2)+8+4*8), u.SizeBytes)

	// never on GPU, where kernels index w per synapse
	gpu := testGen(t, netcfg.CUDA, 1)
	pj.Matrix = nil
	u, err = gpu.Projection(pj)
	require.NoError(t, err)
	wp, _ = Find(u.Plan, "w")
	assert.Equal(t, model.Local, wp.Locality)
}

func TestProjectionFormats(t *testing.T) {
	type tcase struct {
		format  conn.Format
		repr    conn.Repr
		propag8 string
	}
	cases := []tcase{
		{conn.FormatCSR, conn.CSRMatrix, "for (int j = row_begin_[i]; j < row_begin_[i+1]; j++) {"},
		{conn.FormatCOO, conn.COOMatrix, "int rk_pre = column_indices_[j];"},
		{conn.FormatELL, conn.ELLMatrix, "int j = i * maxnzr_ + k;"},
		{conn.FormatHYB, conn.HYBMatrix, "int j = ell_size_ + c;"},
	}
	gn := testGen(t, netcfg.OpenMP, 1)
	for _, tc := range cases {
		pre := newPop(0, "In", 2, rateNeuron())
		post := newPop(1, "Out", 2, rateNeuron())
		pj := newPrjn(0, pre, post, rateSynapse(), Connector{Kind: ConnLIL, LIL: twoByTwo()})
		pj.Format = tc.format
		u, err := gn.Projection(pj)
		require.NoError(t, err, "%v", tc.format)
		assert.Equal(t, tc.repr, u.Repr)
		assert.Contains(t, u.Frags.Propagate, tc.propag8, "%v", tc.format)
		assert.Contains(t, u.Frags.Propagate, "pop1._sum_exc[rk_post] += w[j] * pop0.r[rk_pre];", "%v", tc.format)
		assert.Contains(t, u.Code, "std::vector< double > w;", "%v", tc.format)
	}
}

func TestProjectionSpikeCPU(t *testing.T) {
	gn := testGen(t, netcfg.OpenMP, 1)
	pre := newPop(0, "In", 3, spikeNeuron())
	post := newPop(1, "Out", 3, spikeNeuron())
	pj := newPrjn(0, pre, post, spikeSynapse(), Connector{
		Kind:    ConnFixedProbability,
		Prob:    1,
		Weights: erand.RndParams{Dist: erand.Uniform, Mean: 0.5, Var: 0.1},
	})
	u, err := gn.Projection(pj)
	require.NoError(t, err)
	assert.Equal(t, conn.LILInvMatrix, u.Repr)
	assert.Equal(t, 9, u.Matrix.NbSynapses())
	for _, v := range u.LIL.Values {
		for _, w := range v {
			assert.InDelta(t, 0.5, w, 0.1+1e-9)
		}
	}
	for _, s := range []string{
		"struct ProjStruct0 : LILInvMatrix<int> {",
		"bool fixed_probability_pattern(std::vector<int> post_ranks, std::vector<int> pre_ranks, double p, bool allow_self_connections,",
		"static_cast<LILInvMatrix<int>*>(this)->fixed_probability_pattern(post_ranks, pre_ranks, p, allow_self_connections, rng[0]);",
		"w = init_matrix_variable_uniform< double >(w_dist_arg1, w_dist_arg2, rng[0]);",
		"inverse_connectivity_matrix();",
		"for (int s = 0; s < pop0.spiked.size(); s++) {",
		"for (int k = inv_col_ptr_[rk_pre]; k < inv_col_ptr_[rk_pre+1]; k++) {",
		"pop1.g_exc[rk_post] += w[i][j];",
	} {
		assert.Contains(t, u.Code, s)
	}
	assert.NotContains(t, u.Code, "#pragma omp atomic")

	mt := testGen(t, netcfg.OpenMP, 4)
	pj.Matrix = nil
	u, err = mt.Projection(pj)
	require.NoError(t, err)
	assert.Equal(t, conn.ParallelLIL, u.Repr)
	assert.False(t, u.Single)
	assert.Contains(t, u.Code, "auto sub = sub_matrices_[tid];")
	assert.Contains(t, u.Code, "pop1.g_exc[rk_post] += w[tid][i][j];")
}

func TestProjectionNonUniformDelay(t *testing.T) {
	ll := twoByTwo()
	ll.Delays = [][]int{{1, 3}, {2, 1}}
	pre := newPop(0, "In", 2, spikeNeuron())
	post := newPop(1, "Out", 2, spikeNeuron())
	pj := newPrjn(0, pre, post, spikeSynapse(), Connector{Kind: ConnLIL, LIL: ll})
	require.False(t, pj.UniformDelay())

	gn := testGen(t, netcfg.OpenMP, 1)
	u, err := gn.Projection(pj)
	require.NoError(t, err)
	assert.Equal(t, 3, pj.MaxDelay)
	for _, s := range []string{
		"std::vector< std::vector< int > > delay;",
		"max_delay = 3;",
		"delay = init_matrix_variable_from_lil< int >(delays);",
		"_delayed_spikes[delay[i][j]-1].push_back(std::pair<int, int>(i, j));",
		"for (auto& ev : _delayed_spikes.front()) {",
		"_delayed_spikes.pop_front();",
	} {
		assert.Contains(t, u.Code, s)
	}

	gpu := testGen(t, netcfg.CUDA, 1)
	pj.Matrix = nil
	_, err = gpu.Projection(pj)
	assert.True(t, errors.Is(err, model.ErrUnsupportedCombination), "%v", err)
	assert.Contains(t, err.Error(), "projection InToOut")
}

func TestProjectionGPU(t *testing.T) {
	gn := testGen(t, netcfg.CUDA, 1)
	pre := newPop(0, "In", 2, rateNeuron())
	post := newPop(1, "Out", 2, rateNeuron())
	pj := newPrjn(0, pre, post, rateSynapse(), Connector{Kind: ConnLIL, LIL: twoByTwo()})
	pj.Format = conn.FormatCSR
	u, err := gn.Projection(pj)
	require.NoError(t, err)
	assert.Equal(t, conn.CSRMatrixCUDA, u.Repr)
	assert.Equal(t, "proj0.cuh", u.FileName)
	for _, s := range []string{
		"__global__ void cuProj0_psp(",
		"sum += w[j] * pre_r[rk_pre];",
		"post__sum_exc[rk_post] += sum;",
		"pop0.gpu_r",
		"cuProj0_psp<<< 1, 128, 0, stream >>>(",
		"cudaStream_t stream;",
		"trace_sync = SyncState::DirtyHost;",
	} {
		assert.Contains(t, u.Code, s)
	}
	assert.Equal(t, 0, indexOf(u.Frags.Propagate, "host_to_device();"))
	// a plain weighted sum writes no synaptic variable
	assert.NotContains(t, u.Frags.Propagate, "_sync = SyncState::DirtyDevice;")
	assert.Empty(t, u.Frags.Update)
}

func TestProjectionGPUGlobals(t *testing.T) {
	gn := testGen(t, netcfg.CUDA, 1)
	desc := rateSynapse()
	desc.Vars = append(desc.Vars, model.Variable{Name: "scale", CType: "double", Locality: model.Global, Kind: model.VarAttr,
		Eq: "scale{global_index} += 0.1"})
	pj := newPrjn(0, newPop(0, "In", 2, rateNeuron()), newPop(1, "Out", 2, rateNeuron()), desc, Connector{Kind: ConnLIL, LIL: twoByTwo()})
	pj.Format = conn.FormatCSR
	u, err := gn.Projection(pj)
	require.NoError(t, err)
	assert.Contains(t, u.Code, "__global__ void cuProj0_global_step(")
	assert.Contains(t, u.Code, "scale += 0.1;")
	assert.Contains(t, u.Frags.Update, "cuProj0_global_step<<< 1, 1, 0, stream >>>(")
	// no synapse loop without semiglobal or local equations
	assert.NotContains(t, u.Code, "cuProj0_step")
}

func TestProjectionGPUSpikeInverse(t *testing.T) {
	gn := testGen(t, netcfg.CUDA, 1)
	pre := newPop(0, "In", 3, spikeNeuron())
	post := newPop(1, "Out", 3, spikeNeuron())
	ll := &conn.LIL{}
	ll.AddRow(0, []int{1, 2}, []float64{1, 1})
	ll.AddRow(2, []int{0}, []float64{1})
	pj := newPrjn(0, pre, post, spikeSynapse(), Connector{Kind: ConnLIL, LIL: ll})
	pj.Format = conn.FormatCSR
	u, err := gn.Projection(pj)
	require.NoError(t, err)
	assert.Equal(t, conn.CSRCMatrixCUDA, u.Repr)
	for _, s := range []string{
		"void inverse_connectivity_matrix() {",
		`throw std::runtime_error("ProjStruct0: inverse connectivity holds "`,
		"atomicAdd(&post_g_exc[rk_post], w[j]);",
		"int j = inv_idx[k];",
		"pop1.g_exc_sync = PopStruct1::SyncState::DirtyDevice;",
	} {
		assert.Contains(t, u.Code, s)
	}
}

func TestProjectionUnsupported(t *testing.T) {
	pre := newPop(0, "In", 2, rateNeuron())
	post := newPop(1, "Out", 2, rateNeuron())

	gpu := testGen(t, netcfg.CUDA, 1)
	pj := newPrjn(0, pre, post, rateSynapse(), Connector{Kind: ConnLIL, LIL: twoByTwo()})
	pj.Format = conn.FormatHYB
	_, err := gpu.Projection(pj)
	assert.True(t, errors.Is(err, model.ErrUnsupportedCombination), "%v", err)
	assert.Contains(t, err.Error(), "projection InToOut")

	cpu := testGen(t, netcfg.OpenMP, 1)
	pj = newPrjn(0, pre, post, rateSynapse(), Connector{Kind: ConnLIL, LIL: twoByTwo()})
	pj.Order = conn.PreToPost
	_, err = cpu.Projection(pj)
	assert.True(t, errors.Is(err, model.ErrUnsupportedCombination), "%v", err)

	pj = newPrjn(0, pre, post, rateSynapse(), Connector{Kind: ConnFixedNumberPre, NnzPerRow: 1, Weights: erand.RndParams{Dist: erand.Poisson, Mean: 1}})
	_, err = cpu.Projection(pj)
	assert.True(t, errors.Is(err, model.ErrNotImplemented), "%v", err)

	spk := newPop(2, "Spk", 2, spikeNeuron())
	pj = newPrjn(0, pre, spk, spikeSynapse(), Connector{Kind: ConnLIL, LIL: twoByTwo()})
	_, err = cpu.Projection(pj)
	assert.Error(t, err, "spiking synapse on a rate pre population")
}

func TestProjectionRuntimeConnectors(t *testing.T) {
	gn := testGen(t, netcfg.OpenMP, 1)
	pre := newPop(0, "In", 5, rateNeuron())
	post := newPop(1, "Out", 4, rateNeuron())
	pj := newPrjn(0, pre, post, rateSynapse(), Connector{
		Kind:      ConnFixedNumberPre,
		NnzPerRow: 3,
		Weights:   erand.RndParams{Dist: erand.Gaussian, Mean: 1, Var: 0.2},
	})
	u, err := gn.Projection(pj)
	require.NoError(t, err)
	assert.Equal(t, 12, u.Matrix.NbSynapses())
	assert.Contains(t, u.Code, "bool fixed_number_pre_pattern(std::vector<int> post_ranks, std::vector<int> pre_ranks, int nnz_per_row,")
	assert.Contains(t, u.Code, "w = init_matrix_variable_normal< double >(w_dist_arg1, w_dist_arg2, rng[0]);")

	// same seed, same connectivity
	pj2 := newPrjn(0, pre, post, rateSynapse(), pj.Connector)
	require.NoError(t, gn.Connect(pj2))
	assert.Equal(t, pj.Conn.PreRank, pj2.Conn.PreRank)
	assert.Equal(t, pj.Conn.Values, pj2.Conn.Values)
}

func TestProjectionVerboseConnect(t *testing.T) {
	cf := testCfg(netcfg.OpenMP, 1)
	cf.Verbose = true
	gn, err := NewGenerator(cf)
	require.NoError(t, err)
	pre := newPop(0, "In", 2, spikeNeuron())
	post := newPop(1, "Out", 3, spikeNeuron())
	ll := &conn.LIL{}
	ll.AddRow(0, []int{1}, []float64{0.5})
	ll.AddRow(2, []int{0, 1}, []float64{0.5, 0.5})
	pj := newPrjn(0, pre, post, spikeSynapse(), Connector{Kind: ConnLIL, LIL: ll})
	pj.Format = conn.FormatCSR
	pj.Order = conn.PreToPost
	require.NoError(t, gn.Connect(pj))
	assert.Equal(t, conn.CSRCMatrixT, pj.Sel.Repr)
	assert.True(t, conn.PreOrdered(pj.Matrix))
	assert.NoError(t, conn.Verify(pj.Matrix, pj.Conn, post.Size, pre.Size))
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}
