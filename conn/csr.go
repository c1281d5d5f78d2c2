// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package conn

import (
	"fmt"

	"github.com/emer/netgen/model"
	"gonum.org/v1/gonum/mat"
)

// CSR is the compressed sparse row representation. Row i spans
// ColIdx[RowPtr[i]:RowPtr[i+1]].
type CSR struct {
	PostRank []int     `desc:"post-synaptic rank of each row"`
	RowPtr   []int     `desc:"row offsets into ColIdx, len NbRows+1"`
	ColIdx   []int     `desc:"pre-synaptic rank of each synapse"`
	Values   []float64 `desc:"weights in synapse order, nil until initialized"`
	Delays   []int     `desc:"per-synapse delays, nil for uniform delay"`
	Inv      *Inverse  `desc:"pre-indexed view, nil until ComputeInverse"`
	PreRows  bool      `desc:"rows are pre ranks and ColIdx post ranks, for the transposed spike representations"`
}

// Inverse is the pre-indexed CSR view of a post-indexed matrix, used to
// fan out spikes from the pre-synaptic side. Column pre spans
// RowIdx[ColPtr[pre]:ColPtr[pre+1]].
type Inverse struct {
	ColPtr []int `desc:"offsets per pre rank, len pre_size+1"`
	RowIdx []int `desc:"row (not post rank) of each entry"`
	InvIdx []int `desc:"forward synapse offset of each entry"`
}

func (cs *CSR) Format() Format   { return FormatCSR }
func (cs *CSR) NbRows() int      { return len(cs.PostRank) }
func (cs *CSR) NbSynapses() int  { return len(cs.ColIdx) }
func (cs *CSR) PostRanks() []int { return cs.PostRank }

func (cs *CSR) Row(i int) []int {
	return cs.ColIdx[cs.RowPtr[i]:cs.RowPtr[i+1]]
}

func (cs *CSR) RowValues(i int) []float64 {
	if cs.Values == nil {
		return nil
	}
	return cs.Values[cs.RowPtr[i]:cs.RowPtr[i+1]]
}

func (cs *CSR) Dense(postSize, preSize int) *mat.Dense {
	return denseOf(cs, postSize, preSize)
}

// InverseComputed returns true once ComputeInverse has succeeded.
func (cs *CSR) InverseComputed() bool {
	return cs.Inv != nil
}

// ComputeInverse builds the pre-indexed view in two passes: the first
// collects, for every pre rank, the rows and forward offsets of its
// synapses, the second flattens them in increasing pre rank order with
// a trailing sentinel. Calling it again once computed is a no-op.
// A count mismatch between forward and inverse returns an error wrapping
// model.ErrInvariantViolation and leaves the inverse unset.
func (cs *CSR) ComputeInverse(preSize int) error {
	if cs.Inv != nil {
		return nil
	}
	if len(cs.RowPtr) != cs.NbRows()+1 {
		return model.Invariant("inverse: row_ptr has %d entries for %d rows", len(cs.RowPtr), cs.NbRows())
	}
	for i := 0; i < cs.NbRows(); i++ {
		if cs.RowPtr[i] > cs.RowPtr[i+1] || cs.RowPtr[i+1] > len(cs.ColIdx) {
			return model.Invariant("inverse: row_ptr[%d:%d] = [%d, %d] is not a valid range of %d synapses", i, i+2, cs.RowPtr[i], cs.RowPtr[i+1], len(cs.ColIdx))
		}
	}
	targets := make([][]int, preSize)
	offsets := make([][]int, preSize)
	for i := 0; i < cs.NbRows(); i++ {
		for off := cs.RowPtr[i]; off < cs.RowPtr[i+1]; off++ {
			pre := cs.ColIdx[off]
			if pre < 0 || pre >= preSize {
				return model.Invariant("inverse: pre rank %d of row %d out of range [0, %d)", pre, i, preSize)
			}
			targets[pre] = append(targets[pre], i)
			offsets[pre] = append(offsets[pre], off)
		}
	}

	inv := &Inverse{
		ColPtr: make([]int, 0, preSize+1),
		RowIdx: make([]int, 0, len(cs.ColIdx)),
		InvIdx: make([]int, 0, len(cs.ColIdx)),
	}
	for pre := 0; pre < preSize; pre++ {
		inv.ColPtr = append(inv.ColPtr, len(inv.RowIdx))
		inv.RowIdx = append(inv.RowIdx, targets[pre]...)
		inv.InvIdx = append(inv.InvIdx, offsets[pre]...)
	}
	inv.ColPtr = append(inv.ColPtr, len(inv.RowIdx))

	if len(inv.RowIdx) != len(cs.ColIdx) {
		return model.Invariant("inverse: nb_synapses %d does not match forward nb_synapses %d", len(inv.RowIdx), len(cs.ColIdx))
	}
	if n := cs.RowPtr[len(cs.RowPtr)-1]; n != len(cs.ColIdx) {
		return model.Invariant("inverse: forward row_ptr ends at %d but there are %d synapses", n, len(cs.ColIdx))
	}
	cs.Inv = inv
	return nil
}

// RowCountsFromInverse re-derives the number of synapses per row from the
// inverse view alone. Returns nil if the inverse is not computed.
func (cs *CSR) RowCountsFromInverse() []int {
	if cs.Inv == nil {
		return nil
	}
	cnt := make([]int, cs.NbRows())
	for _, r := range cs.Inv.RowIdx {
		cnt[r]++
	}
	return cnt
}

// PreSynapses returns the (row, forward offset) pairs of all synapses
// coming from pre, using the inverse view.
func (cs *CSR) PreSynapses(pre int) (rows, offs []int) {
	if cs.Inv == nil || pre < 0 || pre+1 >= len(cs.Inv.ColPtr) {
		return nil, nil
	}
	st, ed := cs.Inv.ColPtr[pre], cs.Inv.ColPtr[pre+1]
	return cs.Inv.RowIdx[st:ed], cs.Inv.InvIdx[st:ed]
}

// ToLIL converts back to list-of-lists.
func (cs *CSR) ToLIL() *LIL {
	ll := &LIL{PostRank: append([]int(nil), cs.PostRank...)}
	for i := 0; i < cs.NbRows(); i++ {
		st, ed := cs.RowPtr[i], cs.RowPtr[i+1]
		ll.PreRank = append(ll.PreRank, append([]int(nil), cs.ColIdx[st:ed]...))
		if cs.Values != nil {
			ll.Values = append(ll.Values, append([]float64(nil), cs.Values[st:ed]...))
		}
		if cs.Delays != nil {
			ll.Delays = append(ll.Delays, append([]int(nil), cs.Delays[st:ed]...))
		}
	}
	return ll
}

func (cs *CSR) String() string {
	return fmt.Sprintf("CSR: %d rows, %d synapses, inverse=%v", cs.NbRows(), cs.NbSynapses(), cs.InverseComputed())
}
