// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package conn

import (
	"github.com/goki/ki/ints"
	"gonum.org/v1/gonum/mat"
)

// Sliced splits the rows of a matrix into contiguous slices, one per
// thread. Offsets[t] is the first row of slice t, with a trailing sentinel.
type Sliced struct {
	Slices  []*LIL
	Offsets []int
	Fwd     *CSR `desc:"flattened view carrying the inverse, nil unless built for spike delivery"`
}

// Slice splits the rows evenly over n slices. The first NbRows % n slices
// get one extra row. n is clamped to [1, NbRows].
func (ll *LIL) Slice(n int) *Sliced {
	nr := ll.NbRows()
	n = ints.MinInt(ints.MaxInt(n, 1), ints.MaxInt(nr, 1))
	sl := &Sliced{Offsets: make([]int, 0, n+1)}
	per := nr / n
	rem := nr % n
	st := 0
	for t := 0; t < n; t++ {
		sz := per
		if t < rem {
			sz++
		}
		ed := st + sz
		part := &LIL{PostRank: ll.PostRank[st:ed], PreRank: ll.PreRank[st:ed]}
		if ll.Values != nil {
			part.Values = ll.Values[st:ed]
		}
		if ll.Delays != nil {
			part.Delays = ll.Delays[st:ed]
		}
		sl.Slices = append(sl.Slices, part)
		sl.Offsets = append(sl.Offsets, st)
		st = ed
	}
	sl.Offsets = append(sl.Offsets, st)
	return sl
}

func (sl *Sliced) Format() Format { return FormatLIL }

func (sl *Sliced) NbRows() int {
	return sl.Offsets[len(sl.Offsets)-1]
}

func (sl *Sliced) NbSynapses() int {
	n := 0
	for _, s := range sl.Slices {
		n += s.NbSynapses()
	}
	return n
}

func (sl *Sliced) PostRanks() []int {
	posts := make([]int, 0, sl.NbRows())
	for _, s := range sl.Slices {
		posts = append(posts, s.PostRank...)
	}
	return posts
}

// Row returns global row i, whichever slice holds it.
func (sl *Sliced) Row(i int) []int {
	for t, s := range sl.Slices {
		if i < sl.Offsets[t+1] {
			return s.Row(i - sl.Offsets[t])
		}
	}
	return nil
}

func (sl *Sliced) RowValues(i int) []float64 {
	for t, s := range sl.Slices {
		if i < sl.Offsets[t+1] {
			return s.RowValues(i - sl.Offsets[t])
		}
	}
	return nil
}

func (sl *Sliced) Dense(postSize, preSize int) *mat.Dense {
	return denseOf(sl, postSize, preSize)
}

// Merge joins the slices back into one LIL.
func (sl *Sliced) Merge() *LIL {
	ll := &LIL{}
	for _, s := range sl.Slices {
		ll.PostRank = append(ll.PostRank, s.PostRank...)
		ll.PreRank = append(ll.PreRank, s.PreRank...)
		ll.Values = append(ll.Values, s.Values...)
		ll.Delays = append(ll.Delays, s.Delays...)
	}
	if len(ll.Values) == 0 {
		ll.Values = nil
	}
	if len(ll.Delays) == 0 {
		ll.Delays = nil
	}
	return ll
}
