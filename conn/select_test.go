// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package conn

import (
	"testing"

	"github.com/emer/netgen/model"
	"github.com/emer/netgen/netcfg"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(par netcfg.Paradigm, threads int) *netcfg.Config {
	cf := &netcfg.Config{}
	cf.Defaults()
	cf.Paradigm = par
	cf.NumThreads = threads
	cf.Update()
	return cf
}

func TestSelectKnown(t *testing.T) {
	type tcase struct {
		kind    model.Kind
		format  Format
		order   Order
		par     netcfg.Paradigm
		threads int
		noSplit bool
		repr    Repr
		single  bool
	}
	cases := []tcase{
		{model.Rate, FormatLIL, PostToPre, netcfg.OpenMP, 1, false, LILMatrix, true},
		{model.Rate, FormatLIL, PostToPre, netcfg.OpenMP, 4, false, LILMatrix, true},
		{model.Rate, FormatLIL, PostToPre, netcfg.CUDA, 1, false, LILMatrixCUDA, true},
		{model.Rate, FormatCOO, PostToPre, netcfg.CUDA, 1, false, COOMatrixCUDA, true},
		{model.Rate, FormatHYB, PostToPre, netcfg.OpenMP, 2, false, HYBMatrix, true},
		{model.Spike, FormatLIL, PostToPre, netcfg.OpenMP, 1, false, LILInvMatrix, true},
		{model.Spike, FormatLIL, PostToPre, netcfg.OpenMP, 4, false, ParallelLIL, false},
		{model.Spike, FormatLIL, PostToPre, netcfg.OpenMP, 4, true, LILInvMatrix, true},
		{model.Spike, FormatCSR, PreToPost, netcfg.OpenMP, 1, false, CSRCMatrixT, true},
		{model.Spike, FormatCSR, PreToPost, netcfg.OpenMP, 4, false, CSRCMatrixTOMP, false},
		{model.Spike, FormatCSR, PostToPre, netcfg.CUDA, 1, false, CSRCMatrixCUDA, true},
	}
	for _, tc := range cases {
		req := Request{Name: "p", Kind: tc.kind, Format: tc.format, Order: tc.order, NoSplitMatrix: tc.noSplit, PostSize: 10, PreSize: 20}
		sel, err := SelectFormat(req, testConfig(tc.par, tc.threads))
		require.NoError(t, err, "%+v", tc)
		assert.Equal(t, tc.repr, sel.Repr, "%+v", tc)
		assert.Equal(t, tc.single, sel.Single, "%+v", tc)
		assert.Equal(t, Args{PostSize: 10, PreSize: 20}, sel.Args)
	}
}

// every tuple either resolves through exactly one rule, or is unsupported
func TestSelectExhaustive(t *testing.T) {
	nok := 0
	for k := model.Kind(0); k < model.KindN; k++ {
		for f := Format(0); f < FormatN; f++ {
			for o := Order(0); o < OrderN; o++ {
				for p := netcfg.Paradigm(0); p < netcfg.ParadigmN; p++ {
					for _, nt := range []int{1, 4} {
						for _, ns := range []bool{false, true} {
							cf := testConfig(p, nt)
							req := Request{Name: "p", Kind: k, Format: f, Order: o, NoSplitMatrix: ns, PostSize: 3, PreSize: 3}
							var match []Rule
							for _, rl := range Rules() {
								if rl.Matches(&req, cf) {
									match = append(match, rl)
								}
							}
							require.LessOrEqual(t, len(match), 1, "%+v %v", req, cf)
							sel, err := SelectFormat(req, cf)
							if len(match) == 0 {
								assert.True(t, errors.Is(err, model.ErrUnsupportedCombination), "%+v %v", req, cf)
								continue
							}
							nok++
							require.NoError(t, err)
							assert.Equal(t, match[0].Repr, sel.Repr)
							assert.Equal(t, match[0].Single, sel.Single)
							assert.Equal(t, p == netcfg.CUDA, sel.Repr.GPU())
							assert.Equal(t, f, sel.Repr.Format())
						}
					}
				}
			}
		}
	}
	assert.Greater(t, nok, 0)
}

func TestSelectRejects(t *testing.T) {
	cf := testConfig(netcfg.OpenMP, 1)
	_, err := SelectFormat(Request{Name: "r", Kind: model.Rate, Format: FormatCSR, Order: PreToPost}, cf)
	assert.True(t, errors.Is(err, model.ErrUnsupportedCombination))
	assert.Contains(t, err.Error(), "rate-coded")

	_, err = SelectFormat(Request{Name: "s", Kind: model.Spike, Format: FormatLIL, Order: PreToPost}, cf)
	assert.True(t, errors.Is(err, model.ErrUnsupportedCombination))

	cf.StructuralPlasticity = true
	_, err = SelectFormat(Request{Name: "sp", Kind: model.Rate, Format: FormatCSR}, cf)
	assert.True(t, errors.Is(err, model.ErrUnsupportedCombination))
	assert.Contains(t, err.Error(), "structural plasticity")
	_, err = SelectFormat(Request{Name: "sp", Kind: model.Rate, Format: FormatLIL}, cf)
	assert.NoError(t, err)

	gpu := testConfig(netcfg.CUDA, 1)
	_, err = SelectFormat(Request{Name: "e", Kind: model.Rate, Format: FormatELL}, gpu)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrUnsupportedCombination))
	assert.Contains(t, err.Error(), "FormatELL")
	assert.Contains(t, err.Error(), "CUDA")
}

func TestReprTable(t *testing.T) {
	for rp := Repr(0); rp < ReprN; rp++ {
		assert.NotEmpty(t, rp.CppType(), rp.String())
	}
	assert.Equal(t, "ParallelLIL<LILInvMatrix<int>, int>", ParallelLIL.CppType())
	assert.True(t, CSRCMatrixTOMP.PreRows())
	assert.True(t, CSRCMatrixTOMP.Sliced())
	assert.False(t, LILMatrix.Inverse())
}
