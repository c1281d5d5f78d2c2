// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package conn

import "gonum.org/v1/gonum/mat"

// COO is the coordinate representation: one (row, column) pair per synapse,
// sorted by row.
type COO struct {
	PostRank []int
	RowIdx   []int `desc:"row (not post rank) of each synapse"`
	ColIdx   []int `desc:"pre-synaptic rank of each synapse"`
	Values   []float64
}

func (co *COO) Format() Format   { return FormatCOO }
func (co *COO) NbRows() int      { return len(co.PostRank) }
func (co *COO) NbSynapses() int  { return len(co.ColIdx) }
func (co *COO) PostRanks() []int { return co.PostRank }

// rowRange returns the synapse range of row i. RowIdx is sorted so this
// is contiguous; st < 0 for an empty row.
func (co *COO) rowRange(i int) (st, ed int) {
	st = -1
	ed = len(co.RowIdx)
	for j, r := range co.RowIdx {
		if r == i && st < 0 {
			st = j
		}
		if r > i {
			ed = j
			break
		}
	}
	return
}

// Row collects the columns of row i.
func (co *COO) Row(i int) []int {
	st, ed := co.rowRange(i)
	if st < 0 {
		return nil
	}
	return co.ColIdx[st:ed]
}

func (co *COO) RowValues(i int) []float64 {
	st, ed := co.rowRange(i)
	if st < 0 || co.Values == nil {
		return nil
	}
	return co.Values[st:ed]
}

func (co *COO) Dense(postSize, preSize int) *mat.Dense {
	return denseOf(co, postSize, preSize)
}
