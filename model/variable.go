// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package model

import "strings"

// Variable is the resolved metadata for one parameter or variable of a
// neuron or synapse model. Expression text is opaque here: it is a single
// C statement (or block) with index placeholders, see Index in package gen.
type Variable struct {
	Name        string   `desc:"unique name within the description"`
	CType       string   `desc:"scalar C type: double, float, int or bool"`
	Locality    Locality `desc:"scope: one value per instance, per post-synaptic row or per entity"`
	Kind        AttrKind `desc:"parameter (set from outside) or variable (updated by Eq)"`
	Method      Method   `desc:"continuous or event-driven update"`
	Init        string   `desc:"initial value expression -- empty means the zero value of CType"`
	Deps        []string `desc:"names read by Eq"`
	Eq          string   `desc:"pre-resolved update statement"`
	Min         string   `desc:"lower bound expression applied after Eq, if any"`
	Max         string   `desc:"upper bound expression applied after Eq, if any"`
	Conductance bool     `desc:"keep evaluating Eq during the refractory period"`
}

// IsParam returns true for parameters.
func (vr *Variable) IsParam() bool {
	return vr.Kind == ParamAttr
}

// HasEq returns true if the variable is updated by an equation.
func (vr *Variable) HasEq() bool {
	return vr.Kind == VarAttr && strings.TrimSpace(vr.Eq) != ""
}

// InitValue returns Init, or the zero value of CType when Init is empty.
func (vr *Variable) InitValue() string {
	if strings.TrimSpace(vr.Init) != "" {
		return vr.Init
	}
	return ZeroValue(vr.CType)
}

// DependsOn returns true if name is among the dependencies.
func (vr *Variable) DependsOn(name string) bool {
	for _, d := range vr.Deps {
		if d == name {
			return true
		}
	}
	return false
}

// ZeroValue returns the literal zero value of a scalar C type.
func ZeroValue(ctype string) string {
	switch ctype {
	case "bool":
		return "false"
	case "int", "long int", "unsigned int":
		return "0"
	default:
		return "0.0"
	}
}

// ValidCType returns true for the scalar types the generator supports.
func ValidCType(ctype string) bool {
	switch ctype {
	case "double", "float", "int", "bool":
		return true
	}
	return false
}

// RandomVar is a random variable drawn once per step and read by equations
// as name{local_index} (local) or name{global_index} (global).
type RandomVar struct {
	Name     string
	Dist     RandDist
	Args     []string `desc:"distribution arguments as C expressions, see RandDist"`
	Locality Locality
	CType    string
}

// Function is a model-defined helper function callable from equations.
type Function struct {
	Name string
	Args []string `desc:"argument names, all of the entity precision"`
	Body string   `desc:"C return expression"`
}

// Equation is a named statement outside the per-variable update, e.g. a
// spike reset or a pre-spike synaptic effect.
type Equation struct {
	Name string
	Code string
	Deps []string
}

// SpikeDesc describes spike emission of a spiking neuron model.
type SpikeDesc struct {
	Cond     string     `desc:"boolean C expression, true when the neuron emits a spike"`
	CondDeps []string   `desc:"names read by Cond"`
	Reset    []Equation `desc:"statements applied to the neuron after a spike"`
}

// GlobalOp is a reduction over a population variable, exposed to equations
// as _<fun>_<var>.
type GlobalOp struct {
	Fun GlobalOpFun
	Var string
}

// CName returns the lower case name used in generated code.
func (op GlobalOp) CName() string {
	return strings.ToLower(strings.TrimPrefix(op.Fun.String(), "Op"))
}

// Member returns the name of the member holding the reduction result.
func (op GlobalOp) Member() string {
	return "_" + op.CName() + "_" + op.Var
}

// StopCond is a population condition that ends a simulation run early.
type StopCond struct {
	Mode StopMode
	Cond string
	Deps []string
}
