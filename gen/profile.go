// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gen

import "strings"

// Profiler annotates the generated methods with measurement code.
// Sections are the method names: update, compute_psp, update_rng,
// update_delay and update_global_ops.
type Profiler interface {
	// Declare returns the members holding the measurements.
	Declare() string

	// Init returns their initialization.
	Init() string

	// Annotate returns code wrapped with the measurement of section.
	Annotate(ent, section, code string) string
}

// TimerProfiler accumulates the wall time of every section, in ms, into
// a _profile_ms map of the struct.
type TimerProfiler struct {
	Device bool `desc:"synchronize the entity stream before reading the clock, for GPU code"`
}

func (tp *TimerProfiler) Declare() string {
	return "\n// Time spent per section in ms\nstd::map< std::string, double > _profile_ms;\n"
}

func (tp *TimerProfiler) Init() string {
	return "_profile_ms.clear();\n"
}

func (tp *TimerProfiler) Annotate(ent, section, code string) string {
	if strings.TrimSpace(code) == "" {
		return code
	}
	var sb strings.Builder
	sb.WriteString("// profile " + ent + "::" + section + "\n")
	sb.WriteString("auto _prof_start = std::chrono::steady_clock::now();\n")
	sb.WriteString(code)
	if tp.Device {
		sb.WriteString("cudaStreamSynchronize(stream);\n")
	}
	sb.WriteString("_profile_ms[\"" + section + "\"] += std::chrono::duration< double, std::milli >(std::chrono::steady_clock::now() - _prof_start).count();\n")
	return sb.String()
}
