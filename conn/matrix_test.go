// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package conn

import (
	"math/rand"
	"testing"

	"github.com/emer/emergent/erand"
	"github.com/emer/emergent/prjn"
	"github.com/emer/netgen/model"
	"github.com/emer/netgen/netcfg"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func matEqual(a, b *mat.Dense) bool {
	if a == nil || b == nil {
		return a == b
	}
	return mat.Equal(a, b)
}

func TestFormatsAgree(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	ll := randomLIL(rng, 12, 9, 7)
	require.NoError(t, InitValues(ll, erand.RndParams{Dist: erand.Uniform, Mean: 0.5, Var: 0.25}, rng))
	ref := ll.Dense(12, 9)
	for _, mt := range []Matrix{ll.ToCSR(), ll.ToCOO(), ll.ToELL(), ll.ToHYB(), ll.Slice(3), ll.Slice(20)} {
		assert.Equal(t, ll.NbSynapses(), mt.NbSynapses(), "%v", mt.Format())
		assert.Equal(t, ll.NbRows(), mt.NbRows(), "%v", mt.Format())
		assert.True(t, matEqual(ref, mt.Dense(12, 9)), "%v", mt.Format())
	}
	assert.Nil(t, ll.Dense(0, 9))
}

func TestHYBSplit(t *testing.T) {
	ll := &LIL{}
	ll.AddRow(0, []int{0}, nil)
	ll.AddRow(1, []int{0, 1, 2, 3, 4}, nil)
	ll.AddRow(2, []int{1, 2}, nil)
	// avg 8/3 rounds up to 3
	assert.Equal(t, 3, HYBWidth(ll))
	hy := ll.ToHYB()
	assert.Equal(t, 3, hy.ELL.MaxNnz)
	assert.Equal(t, 6, hy.ELL.NbSynapses())
	assert.Equal(t, []int{3, 4}, hy.COO.ColIdx)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, hy.Row(1))
	assert.Equal(t, []int{-1, -1}, hy.ELL.ColIdx[1:3])
}

func TestSlice(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	ll := randomLIL(rng, 10, 4, 4)
	sl := ll.Slice(3)
	require.Len(t, sl.Slices, 3)
	assert.Equal(t, []int{0, 4, 7, 10}, sl.Offsets)
	assert.Equal(t, ll.PostRank, sl.PostRanks())
	assert.Equal(t, ll.PreRank[5], sl.Row(5))
	assert.Equal(t, ll.PostRank, sl.Merge().PostRank)
}

func TestPatterns(t *testing.T) {
	post := []int{0, 1, 2, 3}
	pre := []int{0, 1, 2, 3, 4}
	rng := rand.New(rand.NewSource(1))
	ll := FixedProbability(post, pre, 1, false, rng)
	assert.Equal(t, 16, ll.NbSynapses())
	for i, r := range ll.PreRank {
		assert.NotContains(t, r, ll.PostRank[i])
	}
	assert.Equal(t, 0, FixedProbability(post, pre, 0, true, rng).NbSynapses())

	fn, err := FixedNumberPre(post, pre, 3, true, rng)
	require.NoError(t, err)
	for _, r := range fn.PreRank {
		assert.Len(t, r, 3)
		assert.IsIncreasing(t, r)
	}
	_, err = FixedNumberPre(post, pre, 5, false, rng)
	assert.Error(t, err)

	full := FromPattern(prjn.NewFull(), 5, 4, false)
	assert.Equal(t, 20, full.NbSynapses())
	one := FromPattern(prjn.NewOneToOne(), 4, 4, false)
	assert.Equal(t, 4, one.NbSynapses())
	assert.Equal(t, []int{2}, one.Row(2))
}

func TestInitDists(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	ll := FixedProbability([]int{0, 1}, []int{0, 1, 2}, 1, true, rng)
	require.NoError(t, InitValues(ll, erand.RndParams{Dist: erand.Mean, Mean: 0.5}, rng))
	for _, r := range ll.Values {
		for _, v := range r {
			assert.Equal(t, 0.5, v)
		}
	}
	require.NoError(t, InitValues(ll, erand.RndParams{Dist: erand.Uniform, Mean: 1, Var: 0.5}, rng))
	for _, r := range ll.Values {
		for _, v := range r {
			assert.True(t, v >= 0.5 && v <= 1.5)
		}
	}
	err := InitValues(ll, erand.RndParams{Dist: erand.Poisson, Mean: 1}, rng)
	assert.True(t, errors.Is(err, model.ErrNotImplemented))

	require.NoError(t, InitDelays(ll, erand.RndParams{Dist: erand.Uniform, Mean: 3, Var: 2}, 0.5, rng))
	for _, r := range ll.Delays {
		for _, d := range r {
			assert.True(t, d >= 2 && d <= 10, "delay %d", d)
		}
	}
	assert.LessOrEqual(t, ll.MaxDelay(), 10)
	err = InitDelays(ll, erand.RndParams{Dist: erand.Gaussian, Mean: 3, Var: 1}, 1, rng)
	assert.True(t, errors.Is(err, model.ErrNotImplemented))
}

func TestRowValues(t *testing.T) {
	ll := &LIL{}
	ll.AddRow(0, []int{1, 2}, []float64{0.1, 0.2})
	ll.AddRow(2, []int{0, 1, 2}, []float64{0.3, 0.4, 0.5})
	for _, mt := range []Matrix{ll, ll.ToCSR(), ll.ToCOO(), ll.ToELL(), ll.ToHYB(), ll.Slice(2)} {
		assert.Equal(t, []float64{0.1, 0.2}, mt.RowValues(0), "%T", mt)
		assert.Equal(t, []float64{0.3, 0.4, 0.5}, mt.RowValues(1), "%T", mt)
	}
	bare := &LIL{}
	bare.AddRow(0, []int{1}, nil)
	for _, mt := range []Matrix{bare, bare.ToCSR(), bare.ToCOO(), bare.ToELL(), bare.ToHYB()} {
		assert.Nil(t, mt.RowValues(0), "%T", mt)
	}
}

func TestVerify(t *testing.T) {
	ll := &LIL{}
	ll.AddRow(0, []int{1, 2}, nil)
	ll.AddRow(2, []int{0}, nil)
	require.NoError(t, Verify(ll.ToCSR(), ll, 3, 3))
	require.NoError(t, Verify(ll.ToHYB(), ll, 3, 3))

	mt, err := Build(Selection{Repr: CSRCMatrixT, Args: Args{PostSize: 3, PreSize: 3}}, ll, 1)
	require.NoError(t, err)
	assert.True(t, PreOrdered(mt))
	assert.False(t, PreOrdered(ll.ToCSR()))
	assert.Equal(t, []int{1, 2, 0}, mt.PostRanks(), "rows are pre ranks")
	assert.NoError(t, Verify(mt, ll, 3, 3))

	cs := ll.ToCSR()
	cs.ColIdx[0] = 0
	err = Verify(cs, ll, 3, 3)
	assert.True(t, errors.Is(err, model.ErrInvariantViolation), "%v", err)

	short := &LIL{}
	short.AddRow(0, []int{1}, nil)
	err = Verify(short, ll, 3, 3)
	assert.True(t, errors.Is(err, model.ErrInvariantViolation), "%v", err)
}

func TestStats(t *testing.T) {
	ll := &LIL{}
	ll.AddRow(0, []int{1, 2}, nil)
	ll.AddRow(2, []int{0}, nil)
	am := Stats(ll)
	assert.Equal(t, float32(1.5), am.Avg)
	assert.Equal(t, float32(2), am.Max)
}

func TestBuild(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	ll := randomLIL(rng, 6, 6, 4)
	cf := testConfig(netcfg.OpenMP, 2)
	for _, fm := range []Format{FormatLIL, FormatCSR} {
		for _, od := range []Order{PostToPre, PreToPost} {
			req := Request{Name: "b", Kind: model.Spike, Format: fm, Order: od, PostSize: 6, PreSize: 6}
			sel, err := SelectFormat(req, cf)
			if err != nil {
				continue
			}
			mt, err := Build(sel, ll, cf.NumThreads)
			require.NoError(t, err, "%v", sel.Repr)
			assert.Equal(t, ll.NbSynapses(), mt.NbSynapses(), "%v", sel.Repr)
			switch m := mt.(type) {
			case *CSR:
				assert.True(t, m.InverseComputed())
			case *Sliced:
				require.NotNil(t, m.Fwd)
				assert.True(t, m.Fwd.InverseComputed())
			case *LILInv:
				assert.NotNil(t, m.Inverse())
			}
		}
	}

	bad := &LIL{}
	bad.AddRow(9, []int{0}, nil)
	_, err := Build(Selection{Repr: LILMatrix, Args: Args{PostSize: 6, PreSize: 6}}, bad, 1)
	assert.Error(t, err)

	am := Stats(ll)
	assert.LessOrEqual(t, am.Max, float32(4))
}
