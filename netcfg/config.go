// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package netcfg holds the configuration shared by every code generation call:
target paradigm, thread count, floating point precision and related
switches. A Config is built once, validated, and then passed by value, so
nothing downstream can change it.
*/
package netcfg

import (
	"fmt"

	"github.com/goki/ki/ints"
	"github.com/goki/ki/kit"
	"github.com/pkg/errors"
)

// Paradigm is the target hardware execution model.
type Paradigm int

//go:generate stringer -type=Paradigm

var KiT_Paradigm = kit.Enums.AddEnum(ParadigmN, kit.NotBitFlag, nil)

func (ev Paradigm) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *Paradigm) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

const (
	// OpenMP targets multi-core CPUs, one OpenMP thread team per process.
	OpenMP Paradigm = iota

	// CUDA targets a single NVIDIA GPU.
	CUDA

	ParadigmN
)

// Precision is the floating point type of generated variables.
type Precision int

//go:generate stringer -type=Precision

var KiT_Precision = kit.Enums.AddEnum(PrecisionN, kit.NotBitFlag, nil)

func (ev Precision) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *Precision) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

const (
	Double Precision = iota
	Float
	PrecisionN
)

// CType returns the C type name of the precision.
func (pr Precision) CType() string {
	if pr == Float {
		return "float"
	}
	return "double"
}

// Config is the read-only configuration of one generation pass.
type Config struct {
	Paradigm             Paradigm  `desc:"target hardware: multi-core CPU or GPU"`
	NumThreads           int       `def:"1" min:"1" desc:"number of CPU threads -- ignored on GPU"`
	Precision            Precision `def:"Double" desc:"floating point type of generated variables"`
	StructuralPlasticity bool      `desc:"allow synapse creation and pruning -- restricts projections to LIL storage"`
	Dt                   float64   `def:"1" min:"0" desc:"simulation time step in ms -- delays are converted to steps with it"`
	Seed                 int64     `def:"-1" desc:"seed for connectivity patterns drawn at generation time -- -1 uses a fixed default"`
	ThreadsPerBlock      int       `def:"128" min:"32" desc:"GPU launch width for population and projection kernels"`
	Verbose              bool      `desc:"log selection decisions and connectivity statistics"`
}

// DefaultSeed is used when Seed is negative, so generation stays reproducible.
const DefaultSeed = int64(1337)

// MaxThreadsPerBlock is the largest block size accepted by current devices.
const MaxThreadsPerBlock = 1024

func (cf *Config) Defaults() {
	cf.Paradigm = OpenMP
	cf.NumThreads = 1
	cf.Precision = Double
	cf.StructuralPlasticity = false
	cf.Dt = 1
	cf.Seed = -1
	cf.ThreadsPerBlock = 128
	cf.Verbose = false
	cf.Update()
}

// Update clamps derived values into their valid range.
func (cf *Config) Update() {
	cf.NumThreads = ints.MaxInt(cf.NumThreads, 1)
	cf.ThreadsPerBlock = ints.MinInt(ints.MaxInt(cf.ThreadsPerBlock, 32), MaxThreadsPerBlock)
	if cf.Paradigm == CUDA {
		cf.NumThreads = 1
	}
}

// Validate returns an error if the config cannot drive generation.
func (cf *Config) Validate() error {
	if cf.Paradigm < 0 || cf.Paradigm >= ParadigmN {
		return errors.Errorf("netcfg: invalid paradigm %d", cf.Paradigm)
	}
	if cf.Precision < 0 || cf.Precision >= PrecisionN {
		return errors.Errorf("netcfg: invalid precision %d", cf.Precision)
	}
	if cf.NumThreads < 1 {
		return errors.Errorf("netcfg: NumThreads must be at least 1, got %d", cf.NumThreads)
	}
	if cf.Dt <= 0 {
		return errors.Errorf("netcfg: Dt must be positive, got %g", cf.Dt)
	}
	if cf.Paradigm == CUDA && (cf.ThreadsPerBlock < 32 || cf.ThreadsPerBlock > MaxThreadsPerBlock) {
		return errors.Errorf("netcfg: ThreadsPerBlock %d out of range [32, %d]", cf.ThreadsPerBlock, MaxThreadsPerBlock)
	}
	return nil
}

// GPU returns true for the CUDA paradigm.
func (cf *Config) GPU() bool {
	return cf.Paradigm == CUDA
}

// MultiThread returns true when CPU code runs with more than one thread.
func (cf *Config) MultiThread() bool {
	return cf.Paradigm == OpenMP && cf.NumThreads > 1
}

// FloatType returns the C type for the configured precision.
func (cf *Config) FloatType() string {
	return cf.Precision.CType()
}

// RandSeed returns the effective seed for generation-time randomness.
func (cf *Config) RandSeed() int64 {
	if cf.Seed < 0 {
		return DefaultSeed
	}
	return cf.Seed
}

// Steps converts a duration in ms into a number of simulation steps, at least 1.
func (cf *Config) Steps(ms float64) int {
	n := int(ms/cf.Dt + 0.5)
	return ints.MaxInt(n, 1)
}

func (cf Config) String() string {
	return fmt.Sprintf("%v threads=%d precision=%v dt=%g structural_plasticity=%v", cf.Paradigm, cf.NumThreads, cf.Precision, cf.Dt, cf.StructuralPlasticity)
}
