// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gen

import (
	"strings"

	"github.com/emer/netgen/conn"
	"github.com/emer/netgen/model"
)

var (
	delayRateCPUDecl = snippet("delayRateCPUDecl", `
// Delayed variable {{.Name}}
std::deque< std::vector< {{.CType}} > > _delayed_{{.Name}};
`)
	delayRateCPUInit = snippet("delayRateCPUInit", `
_delayed_{{.Name}} = std::deque< std::vector< {{.CType}} > >(max_delay, {{.Name}});
`)
	delayRateCPUUpdate = snippet("delayRateCPUUpdate", `
_delayed_{{.Name}}.push_front({{.Name}});
_delayed_{{.Name}}.pop_back();
`)
	delayRateCPUReset = snippet("delayRateCPUReset", `
for (int i = 0; i < _delayed_{{.Name}}.size(); i++) {
    _delayed_{{.Name}}[i] = {{.Name}};
}
`)

	delayRateGPUDecl = snippet("delayRateGPUDecl", `
// Delayed variable {{.Name}}, device buffers
std::deque< {{.CType}}* > gpu_delayed_{{.Name}};
`)
	delayRateGPUInit = snippet("delayRateGPUInit", `
for (int d = 0; d < max_delay; d++) {
    {{.CType}}* ptr;
    cudaMalloc((void**)&ptr, size * sizeof({{.CType}}));
    cudaMemcpy(ptr, {{.Name}}.data(), size * sizeof({{.CType}}), cudaMemcpyHostToDevice);
    gpu_delayed_{{.Name}}.push_front(ptr);
}
`)
	delayRateGPUUpdate = snippet("delayRateGPUUpdate", `
{{.CType}}* last_{{.Name}} = gpu_delayed_{{.Name}}.back();
gpu_delayed_{{.Name}}.pop_back();
gpu_delayed_{{.Name}}.push_front(last_{{.Name}});
cudaMemcpy(last_{{.Name}}, gpu_{{.Name}}, size * sizeof({{.CType}}), cudaMemcpyDeviceToDevice);
`)
	delayRateGPUReset = snippet("delayRateGPUReset", `
for (int d = 0; d < gpu_delayed_{{.Name}}.size(); d++) {
    cudaMemcpy(gpu_delayed_{{.Name}}[d], {{.Name}}.data(), size * sizeof({{.CType}}), cudaMemcpyHostToDevice);
}
`)
)

const delaySpikeCPUDecl = `
// Delayed spike events
std::deque< std::vector<int> > _delayed_spike;
std::deque< int > _delayed_num_events;
`

const delaySpikeCPUInit = `
_delayed_spike = std::deque< std::vector<int> >(max_delay, std::vector<int>());
_delayed_num_events = std::deque< int >(max_delay, 0);
`

const delaySpikeCPUUpdate = `
_delayed_spike.push_front(spiked);
_delayed_spike.pop_back();
_delayed_num_events.push_front(spiked.size());
_delayed_num_events.pop_back();
`

const delaySpikeCPUReset = `
for (int d = 0; d < _delayed_spike.size(); d++) {
    _delayed_spike[d].clear();
    _delayed_num_events[d] = 0;
}
`

const delaySpikeGPUDecl = `
// Delayed spike events, device buffers
std::deque< int* > gpu_delayed_spiked;
std::deque< unsigned int* > gpu_delayed_num_events;
// Host mirror of the device slots, filled by device_to_host_delayed_spike
std::deque< std::vector<int> > _delayed_spike;
std::deque< int > _delayed_num_events;

void device_to_host_delayed_spike() {
    for (int d = 0; d < gpu_delayed_spiked.size(); d++) {
        unsigned int num = 0;
        cudaMemcpy(&num, gpu_delayed_num_events[d], sizeof(unsigned int), cudaMemcpyDeviceToHost);
        _delayed_num_events[d] = num;
        _delayed_spike[d].resize(num);
        if (num > 0)
            cudaMemcpy(_delayed_spike[d].data(), gpu_delayed_spiked[d], num * sizeof(int), cudaMemcpyDeviceToHost);
    }
}
`

const delaySpikeGPUInit = `
for (int d = 0; d < max_delay; d++) {
    int* ptr_spiked;
    cudaMalloc((void**)&ptr_spiked, size * sizeof(int));
    gpu_delayed_spiked.push_front(ptr_spiked);
    unsigned int* ptr_num;
    cudaMalloc((void**)&ptr_num, sizeof(unsigned int));
    cudaMemset(ptr_num, 0, sizeof(unsigned int));
    gpu_delayed_num_events.push_front(ptr_num);
}
_delayed_spike = std::deque< std::vector<int> >(max_delay, std::vector<int>());
_delayed_num_events = std::deque< int >(max_delay, 0);
`

const delaySpikeGPUUpdate = `
int* last_spiked = gpu_delayed_spiked.back();
gpu_delayed_spiked.pop_back();
gpu_delayed_spiked.push_front(last_spiked);
cudaMemcpy(last_spiked, gpu_spiked, size * sizeof(int), cudaMemcpyDeviceToDevice);
unsigned int* last_num_events = gpu_delayed_num_events.back();
gpu_delayed_num_events.pop_back();
gpu_delayed_num_events.push_front(last_num_events);
cudaMemcpy(last_num_events, gpu_spike_count, sizeof(unsigned int), cudaMemcpyDeviceToDevice);
`

const delaySpikeGPUReset = `
for (int d = 0; d < gpu_delayed_num_events.size(); d++) {
    cudaMemset(gpu_delayed_num_events[d], 0, sizeof(unsigned int));
    _delayed_spike[d].clear();
    _delayed_num_events[d] = 0;
}
`

// popDelay fills the delay fragments of a population: one value queue per
// delayed variable and, for spiking populations, the event queues.
func (gn *Generator) popDelay(pp *Population, plan []AttrPlan, fr *Fragments) error {
	if !pp.Delayed() {
		return nil
	}
	gpu := gn.Cfg.GPU()
	var decl, init, upd, reset strings.Builder
	for _, v := range pp.DelayedVars {
		ap, ok := Find(plan, v)
		if !ok {
			return model.Invariant("population %s: delayed variable %s has no plan", pp.Nm, v)
		}
		if ap.Locality != model.Local {
			return model.NotImplemented("population %s: delay of %v variable %s", pp.Nm, ap.Locality, v)
		}
		if gpu && pp.Kind() == model.Spike {
			return model.Unsupported("population %s: delayed variable %s on a spiking %v population", pp.Nm, v, gn.Cfg.Paradigm)
		}
		if gpu {
			decl.WriteString(expand(delayRateGPUDecl, ap))
			init.WriteString(expand(delayRateGPUInit, ap))
			upd.WriteString(expand(delayRateGPUUpdate, ap))
			reset.WriteString(expand(delayRateGPUReset, ap))
			continue
		}
		decl.WriteString(expand(delayRateCPUDecl, ap))
		init.WriteString(expand(delayRateCPUInit, ap))
		upd.WriteString(expand(delayRateCPUUpdate, ap))
		reset.WriteString(expand(delayRateCPUReset, ap))
	}
	if pp.Kind() == model.Spike {
		if gpu {
			decl.WriteString(delaySpikeGPUDecl)
			init.WriteString(delaySpikeGPUInit)
			upd.WriteString(delaySpikeGPUUpdate)
			reset.WriteString(delaySpikeGPUReset)
		} else {
			decl.WriteString(delaySpikeCPUDecl)
			init.WriteString(delaySpikeCPUInit)
			upd.WriteString(delaySpikeCPUUpdate)
			reset.WriteString(delaySpikeCPUReset)
		}
	}
	fr.DeclareDelay = decl.String()
	fr.InitDelay = init.String()
	fr.UpdateDelay = upd.String()
	fr.ResetDelay = reset.String()
	return nil
}

// prjDelay fills the delay fragments of a projection. A uniform delay is
// one int member. Non-uniform delays keep one value per synapse and, for
// spiking synapses, a queue of pending (row, column) events.
func (gn *Generator) prjDelay(pj *Projection, rp conn.Repr, fr *Fragments) error {
	if pj.MaxDelay <= 1 {
		return nil
	}
	if pj.UniformDelay() {
		fr.DeclareDelay = "\n// Uniform delay in steps\nint delay;\n"
		fr.InitDelay = "delay = " + itoa(pj.MaxDelay) + ";\n"
		return nil
	}
	if gn.Cfg.GPU() {
		return model.Unsupported("projection %s: non-uniform delays on %v", pj.Nm, gn.Cfg.Paradigm)
	}
	var sb strings.Builder
	sb.WriteString("\n// Non-uniform delay in steps, one per synapse\n")
	sb.WriteString(localContainer("int", rp) + " delay;\n")
	sb.WriteString("int max_delay;\n")
	fr.InitDelay = "max_delay = " + itoa(pj.MaxDelay) + ";\n"
	if pj.Kind() == model.Spike {
		if rp != conn.LILInvMatrix && rp != conn.CSRCMatrix {
			return model.Unsupported("projection %s: non-uniform delays with %v", pj.Nm, rp)
		}
		sb.WriteString("std::deque< std::vector< std::pair<int, int> > > _delayed_spikes;\n")
		fr.InitDelay += "_delayed_spikes = std::deque< std::vector< std::pair<int, int> > >(max_delay, std::vector< std::pair<int, int> >());\n"
		fr.UpdateDelay = "_delayed_spikes.pop_front();\n_delayed_spikes.push_back(std::vector< std::pair<int, int> >());\n"
		fr.ResetDelay = "for (int d = 0; d < _delayed_spikes.size(); d++) {\n    _delayed_spikes[d].clear();\n}\n"
	}
	fr.DeclareDelay = sb.String()
	return nil
}

// delayedPreReads rewrites the reads of delayed pre-synaptic variables in
// code, on CPU. GPU kernels receive the delayed buffer as argument instead.
func delayedPreReads(pj *Projection, code string) string {
	if pj.MaxDelay <= 1 || pj.Kind() != model.Rate {
		return code
	}
	slot := "[delay-1]"
	if !pj.UniformDelay() {
		slot = "[delay{local_index}-1]"
	}
	for _, v := range pj.PreVars() {
		code = strings.ReplaceAll(code, "pop{id_pre}."+v+"{pre_index}", "pop{id_pre}._delayed_"+v+slot+"{pre_index}")
	}
	return code
}

// preSpikes returns the expressions of the spike list and its length read
// by a spiking projection, taking a uniform delay into account.
func preSpikes(pj *Projection, gpu bool) (spiked, count string) {
	pre := "pop" + itoa(pj.Pre.ID)
	delayed := pj.MaxDelay > 1 && pj.UniformDelay()
	switch {
	case gpu && delayed:
		return pre + ".gpu_delayed_spiked[delay-1]", pre + ".gpu_delayed_num_events[delay-1]"
	case gpu:
		return pre + ".gpu_spiked", pre + ".gpu_spike_count"
	case delayed:
		return pre + "._delayed_spike[delay-1]", pre + "._delayed_num_events[delay-1]"
	}
	return pre + ".spiked", pre + ".spiked.size()"
}
