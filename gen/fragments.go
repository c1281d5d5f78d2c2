// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gen

// Fragments holds the generated code of one entity, one field per slot of
// the struct templates.
type Fragments struct {
	Declare         string `desc:"parameter and variable members"`
	Access          string `desc:"get and set accessors"`
	Init            string `desc:"body of init_attributes"`
	Additional      string `desc:"model specific members: spike events, refractory, event-driven, structural plasticity"`
	InitAdditional  string `desc:"initialization of the Additional members"`
	Functions       string `desc:"local functions callable from equations"`
	Connector       string `desc:"connectivity constructors of a projection"`
	DeclareDelay    string `desc:"delay queue members"`
	InitDelay       string `desc:"delay queue initialization"`
	UpdateDelay     string `desc:"delay queue rotation, body of update_delay"`
	ResetDelay      string `desc:"delay queue reset"`
	DeclareRng      string `desc:"random number members"`
	InitRng         string `desc:"random number initialization"`
	UpdateRng       string `desc:"per step draws, body of update_rng"`
	DeclareGlobOps  string `desc:"global operation result members"`
	UpdateGlobOps   string `desc:"body of update_global_ops"`
	Kernel          string `desc:"device kernels, emitted above the struct on GPU"`
	Update          string `desc:"body of update: the CPU loop or the kernel launch"`
	Propagate       string `desc:"projection input: weighted sum or spike propagation"`
	StopCondition   string `desc:"body of stop_condition"`
	Reset           string `desc:"body of reset, besides attribute initialization"`
	SizeInBytes     string `desc:"body of size_in_bytes"`
	DeclareSync     string `desc:"device pointers and synchronization states"`
	InitSync        string `desc:"device allocation and first transfer"`
	HostToDevice    string `desc:"body of host_to_device"`
	DeviceToHost    string `desc:"body of device_to_host"`
	DeviceToHostVar string `desc:"per variable device_to_host_<v> helpers"`
	Profile         string `desc:"profiling members"`
	InitProfile     string `desc:"profiling initialization"`
}

// Overrides replaces generated fragments. Every non-nil field wins over the
// synthesized text of the same slot, so a connector with special needs can
// replace a single slot without touching the rest.
type Overrides struct {
	Declare         *string
	Access          *string
	Init            *string
	Additional      *string
	InitAdditional  *string
	Functions       *string
	Connector       *string
	DeclareDelay    *string
	InitDelay       *string
	UpdateDelay     *string
	ResetDelay      *string
	DeclareRng      *string
	InitRng         *string
	UpdateRng       *string
	DeclareGlobOps  *string
	UpdateGlobOps   *string
	Kernel          *string
	Update          *string
	Propagate       *string
	StopCondition   *string
	Reset           *string
	SizeInBytes     *string
	DeclareSync     *string
	InitSync        *string
	HostToDevice    *string
	DeviceToHost    *string
	DeviceToHostVar *string
	Profile         *string
	InitProfile     *string
}

// Code returns a pointer to s, for building Overrides literals.
func Code(s string) *string {
	return &s
}

func over(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

// Apply copies every set override into fr.
func (ov *Overrides) Apply(fr *Fragments) {
	over(&fr.Declare, ov.Declare)
	over(&fr.Access, ov.Access)
	over(&fr.Init, ov.Init)
	over(&fr.Additional, ov.Additional)
	over(&fr.InitAdditional, ov.InitAdditional)
	over(&fr.Functions, ov.Functions)
	over(&fr.Connector, ov.Connector)
	over(&fr.DeclareDelay, ov.DeclareDelay)
	over(&fr.InitDelay, ov.InitDelay)
	over(&fr.UpdateDelay, ov.UpdateDelay)
	over(&fr.ResetDelay, ov.ResetDelay)
	over(&fr.DeclareRng, ov.DeclareRng)
	over(&fr.InitRng, ov.InitRng)
	over(&fr.UpdateRng, ov.UpdateRng)
	over(&fr.DeclareGlobOps, ov.DeclareGlobOps)
	over(&fr.UpdateGlobOps, ov.UpdateGlobOps)
	over(&fr.Kernel, ov.Kernel)
	over(&fr.Update, ov.Update)
	over(&fr.Propagate, ov.Propagate)
	over(&fr.StopCondition, ov.StopCondition)
	over(&fr.Reset, ov.Reset)
	over(&fr.SizeInBytes, ov.SizeInBytes)
	over(&fr.DeclareSync, ov.DeclareSync)
	over(&fr.InitSync, ov.InitSync)
	over(&fr.HostToDevice, ov.HostToDevice)
	over(&fr.DeviceToHost, ov.DeviceToHost)
	over(&fr.DeviceToHostVar, ov.DeviceToHostVar)
	over(&fr.Profile, ov.Profile)
	over(&fr.InitProfile, ov.InitProfile)
}
