// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package conn

import (
	"github.com/goki/ki/ints"
	"github.com/goki/mat32"
	"gonum.org/v1/gonum/mat"
)

// ELL pads every row to MaxNnz entries. Padding columns are -1.
type ELL struct {
	PostRank []int
	MaxNnz   int       `desc:"row width, the longest row length"`
	ColIdx   []int     `desc:"NbRows x MaxNnz, row major"`
	Values   []float64 `desc:"same layout as ColIdx"`
	RowLen   []int     `desc:"number of real entries per row"`
}

// ToELL pads the rows of the LIL to its longest row.
func (ll *LIL) ToELL() *ELL {
	width := 0
	for _, r := range ll.PreRank {
		width = ints.MaxInt(width, len(r))
	}
	return ll.toELLWidth(width)
}

func (ll *LIL) toELLWidth(width int) *ELL {
	nr := len(ll.PostRank)
	el := &ELL{
		PostRank: append([]int(nil), ll.PostRank...),
		MaxNnz:   width,
		ColIdx:   make([]int, nr*width),
		RowLen:   make([]int, nr),
	}
	if ll.Values != nil {
		el.Values = make([]float64, nr*width)
	}
	for i := range el.ColIdx {
		el.ColIdx[i] = -1
	}
	for i := 0; i < nr; i++ {
		n := ints.MinInt(len(ll.PreRank[i]), width)
		el.RowLen[i] = n
		copy(el.ColIdx[i*width:], ll.PreRank[i][:n])
		if ll.Values != nil {
			copy(el.Values[i*width:], ll.Values[i][:n])
		}
	}
	return el
}

func (el *ELL) Format() Format   { return FormatELL }
func (el *ELL) NbRows() int      { return len(el.PostRank) }
func (el *ELL) PostRanks() []int { return el.PostRank }

func (el *ELL) NbSynapses() int {
	n := 0
	for _, l := range el.RowLen {
		n += l
	}
	return n
}

func (el *ELL) Row(i int) []int {
	st := i * el.MaxNnz
	return el.ColIdx[st : st+el.RowLen[i]]
}

func (el *ELL) RowValues(i int) []float64 {
	if el.Values == nil {
		return nil
	}
	st := i * el.MaxNnz
	return el.Values[st : st+el.RowLen[i]]
}

func (el *ELL) Dense(postSize, preSize int) *mat.Dense {
	return denseOf(el, postSize, preSize)
}

// HYB stores the first ELL.MaxNnz entries of each row in the ELL part and
// the rest in the COO part.
type HYB struct {
	ELL *ELL
	COO *COO
}

// HYBWidth returns the ELL width used by ToHYB: the average row length,
// rounded up.
func HYBWidth(ll *LIL) int {
	if ll.NbRows() == 0 {
		return 0
	}
	avg := float32(ll.NbSynapses()) / float32(ll.NbRows())
	return int(mat32.Ceil(avg))
}

// ToHYB splits the LIL at HYBWidth.
func (ll *LIL) ToHYB() *HYB {
	width := HYBWidth(ll)
	hy := &HYB{
		ELL: ll.toELLWidth(width),
		COO: &COO{PostRank: append([]int(nil), ll.PostRank...)},
	}
	for i := range ll.PostRank {
		for j := width; j < len(ll.PreRank[i]); j++ {
			hy.COO.RowIdx = append(hy.COO.RowIdx, i)
			hy.COO.ColIdx = append(hy.COO.ColIdx, ll.PreRank[i][j])
			if ll.Values != nil {
				hy.COO.Values = append(hy.COO.Values, ll.Values[i][j])
			}
		}
	}
	return hy
}

func (hy *HYB) Format() Format   { return FormatHYB }
func (hy *HYB) NbRows() int      { return hy.ELL.NbRows() }
func (hy *HYB) NbSynapses() int  { return hy.ELL.NbSynapses() + hy.COO.NbSynapses() }
func (hy *HYB) PostRanks() []int { return hy.ELL.PostRank }

// Row returns the ELL entries of row i followed by its COO remainder.
func (hy *HYB) Row(i int) []int {
	rw := append([]int(nil), hy.ELL.Row(i)...)
	return append(rw, hy.COO.Row(i)...)
}

// RowValues follows the order of Row. The COO part has no values when
// the ELL part has none.
func (hy *HYB) RowValues(i int) []float64 {
	ev := hy.ELL.RowValues(i)
	if ev == nil {
		return nil
	}
	return append(append([]float64(nil), ev...), hy.COO.RowValues(i)...)
}

func (hy *HYB) Dense(postSize, preSize int) *mat.Dense {
	return denseOf(hy, postSize, preSize)
}
