// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package conn

import (
	"fmt"
	"log"

	"github.com/emer/netgen/model"
	"github.com/emer/netgen/netcfg"
)

// Request describes the projection a representation is selected for.
type Request struct {
	Name          string
	Kind          model.Kind `desc:"synapse model kind"`
	Format        Format
	Order         Order
	NoSplitMatrix bool `desc:"keep a single matrix even when running multi-threaded"`
	PostSize      int
	PreSize       int
}

// Args are the construction arguments of a representation, so it can be
// allocated before any synapse is inserted.
type Args struct {
	PostSize int
	PreSize  int
}

// String returns the C++ constructor argument list.
func (ag Args) String() string {
	return fmt.Sprintf("%d, %d", ag.PostSize, ag.PreSize)
}

// Selection is the result of SelectFormat.
type Selection struct {
	Repr   Repr
	Args   Args
	Single bool `desc:"false when the representation spans several sub-matrices"`
}

// Rule is one row of the compatibility table.
type Rule struct {
	Kind     model.Kind
	Format   Format
	Order    Order
	Paradigm netcfg.Paradigm
	Threads  Threads
	Split    Split
	Repr     Repr
	Single   bool
}

// rules is the compatibility table. Anything it does not list is unsupported.
var rules = []Rule{
	// rate-coded
	{model.Rate, FormatLIL, PostToPre, netcfg.OpenMP, SingleThread, AnySplit, LILMatrix, true},
	{model.Rate, FormatLIL, PostToPre, netcfg.OpenMP, MultiThread, AnySplit, LILMatrix, true},
	{model.Rate, FormatLIL, PostToPre, netcfg.CUDA, AnyThreads, AnySplit, LILMatrixCUDA, true},
	{model.Rate, FormatCOO, PostToPre, netcfg.OpenMP, SingleThread, AnySplit, COOMatrix, true},
	{model.Rate, FormatCOO, PostToPre, netcfg.OpenMP, MultiThread, AnySplit, COOMatrix, true},
	{model.Rate, FormatCOO, PostToPre, netcfg.CUDA, AnyThreads, AnySplit, COOMatrixCUDA, true},
	{model.Rate, FormatCSR, PostToPre, netcfg.OpenMP, AnyThreads, AnySplit, CSRMatrix, true},
	{model.Rate, FormatCSR, PostToPre, netcfg.CUDA, AnyThreads, AnySplit, CSRMatrixCUDA, true},
	{model.Rate, FormatELL, PostToPre, netcfg.OpenMP, AnyThreads, AnySplit, ELLMatrix, true},
	{model.Rate, FormatHYB, PostToPre, netcfg.OpenMP, AnyThreads, AnySplit, HYBMatrix, true},

	// spiking
	{model.Spike, FormatLIL, PostToPre, netcfg.OpenMP, SingleThread, AnySplit, LILInvMatrix, true},
	{model.Spike, FormatLIL, PostToPre, netcfg.OpenMP, MultiThread, NoSplit, LILInvMatrix, true},
	{model.Spike, FormatLIL, PostToPre, netcfg.OpenMP, MultiThread, SplitMatrix, ParallelLIL, false},
	{model.Spike, FormatLIL, PostToPre, netcfg.CUDA, AnyThreads, AnySplit, LILInvMatrixCUDA, true},
	{model.Spike, FormatCSR, PostToPre, netcfg.OpenMP, AnyThreads, AnySplit, CSRCMatrix, true},
	{model.Spike, FormatCSR, PreToPost, netcfg.OpenMP, SingleThread, AnySplit, CSRCMatrixT, true},
	{model.Spike, FormatCSR, PreToPost, netcfg.OpenMP, MultiThread, AnySplit, CSRCMatrixTOMP, false},
	{model.Spike, FormatCSR, PostToPre, netcfg.CUDA, AnyThreads, AnySplit, CSRCMatrixCUDA, true},
}

// Rules returns a copy of the compatibility table.
func Rules() []Rule {
	rs := make([]Rule, len(rules))
	copy(rs, rules)
	return rs
}

// Matches returns true if the rule applies to the request under the config.
func (rl *Rule) Matches(req *Request, cf *netcfg.Config) bool {
	if rl.Kind != req.Kind || rl.Format != req.Format || rl.Order != req.Order || rl.Paradigm != cf.Paradigm {
		return false
	}
	switch rl.Threads {
	case SingleThread:
		if cf.MultiThread() {
			return false
		}
	case MultiThread:
		if !cf.MultiThread() {
			return false
		}
	}
	switch rl.Split {
	case SplitMatrix:
		if req.NoSplitMatrix {
			return false
		}
	case NoSplit:
		if !req.NoSplitMatrix {
			return false
		}
	}
	return true
}

// SelectFormat chooses the concrete representation for a projection.
// Combinations outside the compatibility table return an error wrapping
// model.ErrUnsupportedCombination that names the combination.
func SelectFormat(req Request, cf *netcfg.Config) (Selection, error) {
	if cf.StructuralPlasticity && req.Format != FormatLIL {
		return Selection{}, model.Unsupported("structural plasticity is only allowed for LIL storage, projection %s uses %v", req.Name, req.Format)
	}
	if req.Kind == model.Rate && req.Order == PreToPost {
		return Selection{}, model.Unsupported("storage order %v is invalid for rate-coded synapses (projection %s)", req.Order, req.Name)
	}
	if req.Kind == model.Spike && req.Format == FormatLIL && req.Order == PreToPost {
		return Selection{}, model.Unsupported("storage order %v is invalid for LIL representations (projection %s)", req.Order, req.Name)
	}
	for i := range rules {
		rl := &rules[i]
		if !rl.Matches(&req, cf) {
			continue
		}
		sel := Selection{Repr: rl.Repr, Args: Args{PostSize: req.PostSize, PreSize: req.PreSize}, Single: rl.Single}
		if cf.Verbose {
			log.Printf("Selected %s (%v) for projection %s and single_matrix=%v\n", sel.Repr.CppType(), sel.Args, req.Name, sel.Single)
		}
		return sel, nil
	}
	return Selection{}, model.Unsupported("no implementation for %v synapses using %v (%v) with paradigm=%v, num_threads=%d, no_split_matrix=%v (projection %s)",
		req.Kind, req.Format, req.Order, cf.Paradigm, cf.NumThreads, req.NoSplitMatrix, req.Name)
}
