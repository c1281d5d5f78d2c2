// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package model

import "github.com/goki/ki/kit"

// Kind distinguishes rate-coded from spiking neuron and synapse models.
type Kind int

//go:generate stringer -type=Kind

var KiT_Kind = kit.Enums.AddEnum(KindN, kit.NotBitFlag, nil)

func (ev Kind) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *Kind) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

const (
	// Rate models exchange a continuous firing rate every step.
	Rate Kind = iota

	// Spike models exchange discrete spike events.
	Spike

	KindN
)

// Locality is the scope of a model variable.
type Locality int

//go:generate stringer -type=Locality

var KiT_Locality = kit.Enums.AddEnum(LocalityN, kit.NotBitFlag, nil)

func (ev Locality) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *Locality) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

const (
	// Local variables hold one value per neuron (populations) or per synapse (projections).
	Local Locality = iota

	// SemiGlobal variables hold one value per post-synaptic row.
	SemiGlobal

	// Global variables hold one value for the whole entity.
	Global

	LocalityN
)

// AttrKind tells parameters (set from outside) from variables (updated by equations).
type AttrKind int

//go:generate stringer -type=AttrKind

var KiT_AttrKind = kit.Enums.AddEnum(AttrKindN, kit.NotBitFlag, nil)

func (ev AttrKind) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *AttrKind) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

const (
	// ParamAttr values are set from outside and never updated by equations.
	ParamAttr AttrKind = iota

	// VarAttr values are updated by their equation every step.
	VarAttr

	AttrKindN
)

// Method is the update method of a variable.
type Method int

//go:generate stringer -type=Method

var KiT_Method = kit.Enums.AddEnum(MethodN, kit.NotBitFlag, nil)

func (ev Method) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *Method) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

const (
	// Continuous variables are integrated every step.
	Continuous Method = iota

	// EventDriven variables are only evaluated when a spike reaches the synapse,
	// using the time elapsed since the last event.
	EventDriven

	MethodN
)

// RandDist is the distribution of a random variable used inside equations.
type RandDist int

//go:generate stringer -type=RandDist

var KiT_RandDist = kit.Enums.AddEnum(RandDistN, kit.NotBitFlag, nil)

func (ev RandDist) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *RandDist) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

const (
	// Uniform takes (min, max)
	Uniform RandDist = iota

	// Normal takes (mean, sigma)
	Normal

	// LogNormal takes (mean, sigma) of the underlying normal
	LogNormal

	// Exponential takes (lambda)
	Exponential

	// Gamma takes (alpha, beta)
	Gamma

	// DiscreteUniform takes (min, max), both inclusive
	DiscreteUniform

	RandDistN
)

// NArgs returns the number of arguments the distribution takes.
func (rd RandDist) NArgs() int {
	if rd == Exponential {
		return 1
	}
	return 2
}

// GlobalOpFun is a reduction computed over a population variable.
type GlobalOpFun int

//go:generate stringer -type=GlobalOpFun

var KiT_GlobalOpFun = kit.Enums.AddEnum(GlobalOpFunN, kit.NotBitFlag, nil)

func (ev GlobalOpFun) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *GlobalOpFun) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

const (
	OpMin GlobalOpFun = iota
	OpMax
	OpMean
	OpNorm1
	OpNorm2
	GlobalOpFunN
)

// StopMode selects whether a stop condition must hold for any or for all neurons.
type StopMode int

//go:generate stringer -type=StopMode

var KiT_StopMode = kit.Enums.AddEnum(StopModeN, kit.NotBitFlag, nil)

func (ev StopMode) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *StopMode) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

const (
	StopAny StopMode = iota
	StopAll
	StopModeN
)
