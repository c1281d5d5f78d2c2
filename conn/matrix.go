// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package conn selects and builds the sparse connectivity representation of a
projection. SelectFormat maps a (kind, format, order, paradigm, threads)
request onto one concrete Repr of the runtime library, and the Go-side
representations (LIL, CSR, COO, ELL, HYB, Sliced) hold connectivity built at
generation time, including the pre-indexed inverse used for spike delivery.
*/
package conn

import (
	"fmt"

	"github.com/emer/netgen/model"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Matrix is the common read interface of every Go-side representation.
// Rows are post-synaptic neurons, columns pre-synaptic neurons.
type Matrix interface {
	// Format returns the storage format family.
	Format() Format

	// NbRows returns the number of non-empty post-synaptic rows.
	NbRows() int

	// NbSynapses returns the total number of synapses.
	NbSynapses() int

	// PostRanks returns the post-synaptic rank of every row.
	PostRanks() []int

	// Row returns the pre-synaptic ranks of row i (not post rank i).
	Row(i int) []int

	// RowValues returns the weights of row i in the order of Row, or nil
	// if the weights are not initialized.
	RowValues(i int) []float64

	// Dense returns a post x pre view with 1 at every synapse,
	// or nil if either dimension is empty.
	Dense(postSize, preSize int) *mat.Dense
}

// LIL is the list-of-lists representation: one slice of pre ranks per
// post-synaptic row, with weights and optional per-synapse delays in the
// same layout. It is the exchange format every other representation is
// converted from.
type LIL struct {
	PostRank []int       `desc:"post-synaptic rank of each row"`
	PreRank  [][]int     `desc:"pre-synaptic ranks of each row"`
	Values   [][]float64 `desc:"weights, same layout as PreRank -- nil until initialized"`
	Delays   [][]int     `desc:"delays in steps, same layout as PreRank -- nil for uniform delay"`
}

// AddRow appends a row. vals may be nil, in which case Values is left as is.
func (ll *LIL) AddRow(post int, pres []int, vals []float64) {
	ll.PostRank = append(ll.PostRank, post)
	ll.PreRank = append(ll.PreRank, pres)
	if vals != nil {
		ll.Values = append(ll.Values, vals)
	}
}

func (ll *LIL) Format() Format   { return FormatLIL }
func (ll *LIL) NbRows() int      { return len(ll.PostRank) }
func (ll *LIL) PostRanks() []int { return ll.PostRank }
func (ll *LIL) Row(i int) []int  { return ll.PreRank[i] }

func (ll *LIL) NbSynapses() int {
	n := 0
	for _, r := range ll.PreRank {
		n += len(r)
	}
	return n
}

// MaxDelay returns the largest per-synapse delay, or 0 if none are set.
func (ll *LIL) MaxDelay() int {
	mx := 0
	for _, r := range ll.Delays {
		for _, d := range r {
			if d > mx {
				mx = d
			}
		}
	}
	return mx
}

// Validate checks ranks against the population sizes and that the value
// and delay layouts match the rank layout.
func (ll *LIL) Validate(postSize, preSize int) error {
	if len(ll.PreRank) != len(ll.PostRank) {
		return errors.Errorf("conn: LIL has %d post ranks but %d rows", len(ll.PostRank), len(ll.PreRank))
	}
	seen := make(map[int]bool, len(ll.PostRank))
	for i, post := range ll.PostRank {
		if post < 0 || post >= postSize {
			return errors.Errorf("conn: LIL row %d: post rank %d out of range [0, %d)", i, post, postSize)
		}
		if seen[post] {
			return errors.Errorf("conn: LIL row %d: post rank %d appears twice", i, post)
		}
		seen[post] = true
		for _, pre := range ll.PreRank[i] {
			if pre < 0 || pre >= preSize {
				return errors.Errorf("conn: LIL row %d: pre rank %d out of range [0, %d)", i, pre, preSize)
			}
		}
	}
	if err := sameLayout("Values", ll.PreRank, len(ll.Values), func(i int) int { return len(ll.Values[i]) }); err != nil {
		return err
	}
	return sameLayout("Delays", ll.PreRank, len(ll.Delays), func(i int) int { return len(ll.Delays[i]) })
}

func sameLayout(nm string, ranks [][]int, n int, rowLen func(i int) int) error {
	if n == 0 {
		return nil
	}
	if n != len(ranks) {
		return errors.Errorf("conn: LIL %s has %d rows, want %d", nm, n, len(ranks))
	}
	for i := range ranks {
		if rowLen(i) != len(ranks[i]) {
			return errors.Errorf("conn: LIL %s row %d has %d entries, want %d", nm, i, rowLen(i), len(ranks[i]))
		}
	}
	return nil
}

func (ll *LIL) Dense(postSize, preSize int) *mat.Dense {
	return denseOf(ll, postSize, preSize)
}

func (ll *LIL) RowValues(i int) []float64 {
	if ll.Values == nil {
		return nil
	}
	return ll.Values[i]
}

// ToCSR flattens the rows into a CSR representation, keeping row order.
func (ll *LIL) ToCSR() *CSR {
	nsyn := ll.NbSynapses()
	cs := &CSR{
		PostRank: append([]int(nil), ll.PostRank...),
		RowPtr:   make([]int, 0, len(ll.PostRank)+1),
		ColIdx:   make([]int, 0, nsyn),
	}
	if ll.Values != nil {
		cs.Values = make([]float64, 0, nsyn)
	}
	if ll.Delays != nil {
		cs.Delays = make([]int, 0, nsyn)
	}
	for i := range ll.PostRank {
		cs.RowPtr = append(cs.RowPtr, len(cs.ColIdx))
		cs.ColIdx = append(cs.ColIdx, ll.PreRank[i]...)
		if ll.Values != nil {
			cs.Values = append(cs.Values, ll.Values[i]...)
		}
		if ll.Delays != nil {
			cs.Delays = append(cs.Delays, ll.Delays[i]...)
		}
	}
	cs.RowPtr = append(cs.RowPtr, len(cs.ColIdx))
	return cs
}

// ToCOO lists every synapse as a (row, column) pair.
func (ll *LIL) ToCOO() *COO {
	nsyn := ll.NbSynapses()
	co := &COO{
		PostRank: append([]int(nil), ll.PostRank...),
		RowIdx:   make([]int, 0, nsyn),
		ColIdx:   make([]int, 0, nsyn),
	}
	if ll.Values != nil {
		co.Values = make([]float64, 0, nsyn)
	}
	for i := range ll.PostRank {
		for j, pre := range ll.PreRank[i] {
			co.RowIdx = append(co.RowIdx, i)
			co.ColIdx = append(co.ColIdx, pre)
			if ll.Values != nil {
				co.Values = append(co.Values, ll.Values[i][j])
			}
		}
	}
	return co
}

// Transpose returns the pre-indexed view: one row per pre rank that has at
// least one synapse, listing its post ranks. Values follow their synapse.
func (ll *LIL) Transpose() *LIL {
	byPre := make(map[int]int)
	tr := &LIL{}
	for i, post := range ll.PostRank {
		for j, pre := range ll.PreRank[i] {
			ri, ok := byPre[pre]
			if !ok {
				ri = len(tr.PostRank)
				byPre[pre] = ri
				tr.PostRank = append(tr.PostRank, pre)
				tr.PreRank = append(tr.PreRank, nil)
				if ll.Values != nil {
					tr.Values = append(tr.Values, nil)
				}
			}
			tr.PreRank[ri] = append(tr.PreRank[ri], post)
			if ll.Values != nil {
				tr.Values[ri] = append(tr.Values[ri], ll.Values[i][j])
			}
		}
	}
	return tr
}

func (ll *LIL) String() string {
	return fmt.Sprintf("LIL: %d rows, %d synapses", ll.NbRows(), ll.NbSynapses())
}

// PreOrdered returns true if the rows of mt are pre-synaptic neurons, i.e.
// PostRanks holds pre ranks and Row lists post ranks.
func PreOrdered(mt Matrix) bool {
	cs, ok := mt.(*CSR)
	return ok && cs.PreRows
}

// denseOf renders any Matrix as a post x pre 0/1 matrix.
func denseOf(mt Matrix, postSize, preSize int) *mat.Dense {
	if postSize <= 0 || preSize <= 0 {
		return nil
	}
	dm := mat.NewDense(postSize, preSize, nil)
	tr := PreOrdered(mt)
	ranks := mt.PostRanks()
	for i := 0; i < mt.NbRows(); i++ {
		for _, c := range mt.Row(i) {
			if c < 0 {
				continue
			}
			if tr {
				dm.Set(c, ranks[i], 1)
			} else {
				dm.Set(ranks[i], c, 1)
			}
		}
	}
	return dm
}

// Verify checks that mt holds exactly the synapses of ll, comparing their
// dense views. It returns an error wrapping model.ErrInvariantViolation
// on any difference.
func Verify(mt Matrix, ll *LIL, postSize, preSize int) error {
	if mt.NbSynapses() != ll.NbSynapses() {
		return model.Invariant("conn: %v holds %d synapses, the LIL %d", mt.Format(), mt.NbSynapses(), ll.NbSynapses())
	}
	want := ll.Dense(postSize, preSize)
	got := mt.Dense(postSize, preSize)
	if want == nil || got == nil {
		return nil
	}
	if !mat.Equal(want, got) {
		return model.Invariant("conn: %v connectivity differs from its LIL (%d x %d)", mt.Format(), postSize, preSize)
	}
	return nil
}
