// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package conn

import (
	"math"
	"math/rand"
	"sort"

	"github.com/emer/emergent/erand"
	"github.com/emer/emergent/prjn"
	"github.com/emer/etable/etensor"
	"github.com/emer/netgen/model"
	"github.com/pkg/errors"
)

// FixedProbability connects every (post, pre) pair with probability p,
// drawing from rng in post then pre order. Self connections (equal ranks)
// are skipped unless allowSelf. Rows left empty are dropped.
func FixedProbability(post, pre []int, p float64, allowSelf bool, rng *rand.Rand) *LIL {
	ll := &LIL{}
	for _, po := range post {
		var row []int
		for _, pr := range pre {
			if !allowSelf && po == pr {
				continue
			}
			if rng.Float64() < p {
				row = append(row, pr)
			}
		}
		if len(row) > 0 {
			ll.AddRow(po, row, nil)
		}
	}
	return ll
}

// FixedNumberPre connects every post rank to exactly n distinct pre ranks,
// drawn without replacement. Returns an error if a row cannot get n
// candidates.
func FixedNumberPre(post, pre []int, n int, allowSelf bool, rng *rand.Rand) (*LIL, error) {
	if n < 0 {
		return nil, errors.Errorf("conn: fixed number pre: negative number %d", n)
	}
	ll := &LIL{}
	for _, po := range post {
		cand := make([]int, 0, len(pre))
		for _, pr := range pre {
			if !allowSelf && po == pr {
				continue
			}
			cand = append(cand, pr)
		}
		if len(cand) < n {
			return nil, errors.Errorf("conn: fixed number pre: post rank %d has %d candidates, needs %d", po, len(cand), n)
		}
		rng.Shuffle(len(cand), func(i, j int) { cand[i], cand[j] = cand[j], cand[i] })
		row := cand[:n]
		sort.Ints(row)
		ll.AddRow(po, row, nil)
	}
	return ll, nil
}

// FromPattern evaluates an emergent projection pattern between flat
// populations of the given sizes. The receiving side is post.
func FromPattern(pat prjn.Pattern, preSize, postSize int, same bool) *LIL {
	ssh := &etensor.Shape{}
	ssh.SetShape([]int{preSize}, nil, nil)
	rsh := &etensor.Shape{}
	rsh.SetShape([]int{postSize}, nil, nil)
	_, _, cons := pat.Connect(ssh, rsh, same)
	cbits := cons.Values
	ll := &LIL{}
	for ri := 0; ri < postSize; ri++ {
		rbi := ri * preSize
		var row []int
		for si := 0; si < preSize; si++ {
			if cbits.Index(rbi + si) {
				row = append(row, si)
			}
		}
		if len(row) > 0 {
			ll.AddRow(ri, row, nil)
		}
	}
	return ll
}

// DistArgs returns the two distribution arguments passed to the emitted
// pattern constructors: (value, 0) for a constant, (min, max) for uniform
// and (mean, sigma) for gaussian.
func DistArgs(rp erand.RndParams) (a1, a2 float64, err error) {
	switch rp.Dist {
	case erand.Mean:
		return rp.Mean, 0, nil
	case erand.Uniform:
		return rp.Mean - rp.Var, rp.Mean + rp.Var, nil
	case erand.Gaussian:
		return rp.Mean, rp.Var, nil
	}
	return 0, 0, model.NotImplemented("distribution %v for weights or delays", rp.Dist)
}

// Draw draws one value of rp from rng.
func Draw(rp erand.RndParams, rng *rand.Rand) (float64, error) {
	a1, a2, err := DistArgs(rp)
	if err != nil {
		return 0, err
	}
	switch rp.Dist {
	case erand.Uniform:
		return a1 + (a2-a1)*rng.Float64(), nil
	case erand.Gaussian:
		return a1 + a2*rng.NormFloat64(), nil
	}
	return a1, nil
}

// InitValues sets one weight per synapse drawn from rp.
func InitValues(ll *LIL, rp erand.RndParams, rng *rand.Rand) error {
	vals := make([][]float64, len(ll.PreRank))
	for i, r := range ll.PreRank {
		vals[i] = make([]float64, len(r))
		for j := range r {
			v, err := Draw(rp, rng)
			if err != nil {
				return err
			}
			vals[i][j] = v
		}
	}
	ll.Values = vals
	return nil
}

// InitDelays sets one delay per synapse, in steps of dt ms, drawn from rp
// given in ms. Constant and uniform distributions are supported; uniform
// delays are drawn as whole steps in [min, max]. Delays are at least one
// step.
func InitDelays(ll *LIL, rp erand.RndParams, dt float64, rng *rand.Rand) error {
	if rp.Dist != erand.Mean && rp.Dist != erand.Uniform {
		return model.NotImplemented("delay distribution %v", rp.Dist)
	}
	a1, a2, _ := DistArgs(rp)
	lo := stepsOf(a1, dt)
	hi := stepsOf(a2, dt)
	dls := make([][]int, len(ll.PreRank))
	for i, r := range ll.PreRank {
		dls[i] = make([]int, len(r))
		for j := range r {
			d := lo
			if rp.Dist == erand.Uniform && hi > lo {
				d = lo + rng.Intn(hi-lo+1)
			}
			dls[i][j] = d
		}
	}
	ll.Delays = dls
	return nil
}

func stepsOf(ms, dt float64) int {
	n := int(math.Round(ms / dt))
	if n < 1 {
		return 1
	}
	return n
}
