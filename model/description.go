// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package model holds the resolved model descriptions consumed by the code
generator: per-variable metadata for neuron and synapse models, together
with the error kinds shared across the generator packages.

Descriptions are produced by an equation parser outside this module and are
treated as immutable once handed over.
*/
package model

import (
	"fmt"

	"github.com/pkg/errors"
)

// DefaultPSP is the weighted-sum term of a rate synapse.
const DefaultPSP = "w{local_index} * pop{id_pre}.r{pre_index}"

// TargetEq names the pre-spike equation giving the increment of the
// post-synaptic conductance g_<target>. Its Code is an expression, not a
// statement, so each backend can choose how to accumulate it.
const TargetEq = "g_target"

// DefaultIncrement is the conductance increment of a spiking synapse
// without a TargetEq equation.
const DefaultIncrement = "w{local_index}"

// Description is the resolved description of one neuron or synapse model.
type Description struct {
	Name     string      `desc:"model name, used in generated comments"`
	Kind     Kind        `desc:"rate or spike"`
	Params   []Variable  `desc:"parameters in declaration order"`
	Vars     []Variable  `desc:"variables in declaration order"`
	Rands    []RandomVar `desc:"random variables read by equations"`
	Funcs    []Function  `desc:"helper functions callable from equations"`
	Targets  []string    `desc:"post-synaptic targets received by a neuron model"`
	Spike    *SpikeDesc  `desc:"spike emission, required for spiking neurons"`
	PSP      string      `desc:"rate synapse weighted-sum term, DefaultPSP if empty"`
	PreSpike []Equation  `desc:"spiking synapse statements run for every pre-synaptic spike"`
	Pruning  string      `desc:"structural plasticity pruning condition"`
	Creating string      `desc:"structural plasticity creation condition"`
}

// Attributes returns parameters followed by variables, skipping any name
// already seen so the first declaration wins.
func (ds *Description) Attributes() []Variable {
	seen := make(map[string]bool, len(ds.Params)+len(ds.Vars))
	attrs := make([]Variable, 0, len(ds.Params)+len(ds.Vars))
	for _, lst := range [][]Variable{ds.Params, ds.Vars} {
		for _, vr := range lst {
			if seen[vr.Name] {
				continue
			}
			seen[vr.Name] = true
			attrs = append(attrs, vr)
		}
	}
	return attrs
}

// Attr returns the attribute of given name, following Attributes precedence.
func (ds *Description) Attr(name string) (Variable, bool) {
	for _, vr := range ds.Attributes() {
		if vr.Name == name {
			return vr, true
		}
	}
	return Variable{}, false
}

// Rand returns the random variable of given name.
func (ds *Description) Rand(name string) (RandomVar, bool) {
	for _, rd := range ds.Rands {
		if rd.Name == name {
			return rd, true
		}
	}
	return RandomVar{}, false
}

// ByLocality returns the attributes of given locality, in Attributes order.
func (ds *Description) ByLocality(loc Locality) []Variable {
	var vars []Variable
	for _, vr := range ds.Attributes() {
		if vr.Locality == loc {
			vars = append(vars, vr)
		}
	}
	return vars
}

// Updated returns the variables that have an equation, in declaration
// order, restricted to the given locality.
func (ds *Description) Updated(loc Locality) []Variable {
	var vars []Variable
	for _, vr := range ds.Attributes() {
		if vr.Locality == loc && vr.HasEq() {
			vars = append(vars, vr)
		}
	}
	return vars
}

// Increment returns the TargetEq code, or DefaultIncrement, and the other
// pre-spike statements in order.
func (ds *Description) Increment() (string, []Equation) {
	inc := DefaultIncrement
	var stmts []Equation
	for _, eq := range ds.PreSpike {
		if eq.Name == TargetEq {
			inc = eq.Code
			continue
		}
		stmts = append(stmts, eq)
	}
	return inc, stmts
}

// HasEventDriven returns true if any variable uses the event-driven method.
func (ds *Description) HasEventDriven() bool {
	for _, vr := range ds.Vars {
		if vr.Method == EventDriven {
			return true
		}
	}
	return false
}

// PSPExpr returns PSP, or DefaultPSP if empty.
func (ds *Description) PSPExpr() string {
	if ds.PSP == "" {
		return DefaultPSP
	}
	return ds.PSP
}

// Validate checks the description for the conditions the generator relies on.
func (ds *Description) Validate() error {
	if ds.Kind < 0 || ds.Kind >= KindN {
		return errors.Errorf("model %q: invalid kind %d", ds.Name, ds.Kind)
	}
	for _, vr := range ds.Attributes() {
		if vr.Name == "" {
			return errors.Errorf("model %q: attribute with empty name", ds.Name)
		}
		if !ValidCType(vr.CType) {
			return errors.Errorf("model %q: attribute %s has unsupported type %q", ds.Name, vr.Name, vr.CType)
		}
		if vr.Locality < 0 || vr.Locality >= LocalityN {
			return errors.Errorf("model %q: attribute %s has invalid locality %d", ds.Name, vr.Name, vr.Locality)
		}
	}
	for _, rd := range ds.Rands {
		if rd.Dist < 0 || rd.Dist >= RandDistN {
			return errors.Errorf("model %q: random variable %s has invalid distribution %d", ds.Name, rd.Name, rd.Dist)
		}
		if len(rd.Args) != rd.Dist.NArgs() {
			return errors.Errorf("model %q: random variable %s: %v takes %d arguments, got %d", ds.Name, rd.Name, rd.Dist, rd.Dist.NArgs(), len(rd.Args))
		}
	}
	if ds.Kind == Spike && ds.Spike != nil && ds.Spike.Cond == "" {
		return errors.Errorf("model %q: empty spike condition", ds.Name)
	}
	return nil
}

// String returns a short summary for logs.
func (ds *Description) String() string {
	return fmt.Sprintf("%s (%v): %d params, %d vars, %d rands", ds.Name, ds.Kind, len(ds.Params), len(ds.Vars), len(ds.Rands))
}
