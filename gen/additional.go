// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gen

import (
	"strconv"
	"strings"

	"github.com/emer/netgen/conn"
	"github.com/emer/netgen/model"
)

// targetInputs returns the input members of a population that are not
// model attributes: _sum_<target> for rate neurons, g_<target> for spiking
// neurons. They are set to zero after every update.
func targetInputs(pp *Population) []string {
	var names []string
	for _, tg := range pp.Model.Targets {
		nm := "_sum_" + tg
		if pp.Kind() == model.Spike {
			nm = "g_" + tg
		}
		if _, ok := pp.Model.Attr(nm); ok {
			continue
		}
		names = append(names, nm)
	}
	return names
}

// inputName returns the post-synaptic member a projection accumulates into.
func inputName(pj *Projection) string {
	if pj.Kind() == model.Spike {
		return "g_" + pj.Target
	}
	return "_sum_" + pj.Target
}

// popAdditional fills the members a population needs besides its
// attributes: target inputs, spike bookkeeping and refractory counters.
func (gn *Generator) popAdditional(pp *Population, fr *Fragments) {
	ft := gn.Cfg.FloatType()
	gpu := gn.Cfg.GPU()
	var decl, init, reset strings.Builder
	for _, nm := range targetInputs(pp) {
		if gpu {
			decl.WriteString("// Input " + nm + "\n" + ft + "* gpu_" + nm + ";\n")
			init.WriteString("cudaMalloc((void**)&gpu_" + nm + ", size * sizeof(" + ft + "));\n")
			init.WriteString("cudaMemset(gpu_" + nm + ", 0, size * sizeof(" + ft + "));\n")
			reset.WriteString("cudaMemset(gpu_" + nm + ", 0, size * sizeof(" + ft + "));\n")
			continue
		}
		decl.WriteString("// Input " + nm + "\nstd::vector< " + ft + " > " + nm + ";\n")
		init.WriteString(nm + " = std::vector< " + ft + " >(size, 0.0);\n")
		reset.WriteString("std::fill(" + nm + ".begin(), " + nm + ".end(), 0.0);\n")
	}
	if pp.Kind() == model.Spike {
		decl.WriteString("// Spiking events\nstd::vector<int> spiked;\nstd::vector<long int> last_spike;\n")
		if pp.HasRefractory() {
			decl.WriteString("// Refractory period in steps\nint refractory;\n")
			init.WriteString("refractory = " + itoa(gn.Cfg.Steps(pp.Refractory)) + ";\n")
		}
		if gpu {
			decl.WriteString("unsigned int spike_count;\nint* gpu_spiked;\nunsigned int* gpu_spike_count;\nlong int* gpu_last_spike;\n")
			init.WriteString(`spiked = std::vector<int>(size, 0);
spike_count = 0;
last_spike = std::vector<long int>(size, -10000L);
cudaMalloc((void**)&gpu_spiked, size * sizeof(int));
cudaMalloc((void**)&gpu_spike_count, sizeof(unsigned int));
cudaMemset(gpu_spike_count, 0, sizeof(unsigned int));
cudaMalloc((void**)&gpu_last_spike, size * sizeof(long int));
cudaMemcpy(gpu_last_spike, last_spike.data(), size * sizeof(long int), cudaMemcpyHostToDevice);
`)
			reset.WriteString("cudaMemset(gpu_spike_count, 0, sizeof(unsigned int));\ncudaMemcpy(gpu_last_spike, last_spike.data(), size * sizeof(long int), cudaMemcpyHostToDevice);\n")
			if pp.HasRefractory() {
				decl.WriteString("int* gpu_refractory_remaining;\n")
				init.WriteString("cudaMalloc((void**)&gpu_refractory_remaining, size * sizeof(int));\ncudaMemset(gpu_refractory_remaining, 0, size * sizeof(int));\n")
				reset.WriteString("cudaMemset(gpu_refractory_remaining, 0, size * sizeof(int));\n")
			}
			decl.WriteString(`
// Copies the spikes of the last step to the host
void device_to_host_spike() {
    cudaMemcpy(&spike_count, gpu_spike_count, sizeof(unsigned int), cudaMemcpyDeviceToHost);
    spiked.resize(spike_count);
    cudaMemcpy(spiked.data(), gpu_spiked, spike_count * sizeof(int), cudaMemcpyDeviceToHost);
    cudaMemcpy(last_spike.data(), gpu_last_spike, size * sizeof(long int), cudaMemcpyDeviceToHost);
}
`)
		} else {
			init.WriteString("spiked = std::vector<int>();\nlast_spike = std::vector<long int>(size, -10000L);\n")
			reset.WriteString("spiked.clear();\nstd::fill(last_spike.begin(), last_spike.end(), -10000L);\n")
			if pp.HasRefractory() {
				decl.WriteString("std::vector<int> refractory_remaining;\n")
				init.WriteString("refractory_remaining = std::vector<int>(size, 0);\n")
				reset.WriteString("std::fill(refractory_remaining.begin(), refractory_remaining.end(), 0);\n")
			}
		}
	}
	if gpu {
		decl.WriteString("// Stream of this population\ncudaStream_t stream;\n")
		init.WriteString("cudaStreamCreate(&stream);\n")
	}
	fr.Additional = decl.String()
	fr.InitAdditional = init.String()
	fr.Reset = reset.String()
}

// clearInputs returns the statements zeroing the target inputs.
func (gn *Generator) clearInputs(pp *Population) string {
	var sb strings.Builder
	for _, nm := range targetInputs(pp) {
		if gn.Cfg.GPU() {
			sb.WriteString("cudaMemsetAsync(gpu_" + nm + ", 0, size * sizeof(" + gn.Cfg.FloatType() + "), stream);\n")
			continue
		}
		sb.WriteString("std::fill(" + nm + ".begin(), " + nm + ".end(), 0.0);\n")
	}
	return sb.String()
}

// popGlobalOps fills the reductions requested on the population.
func (gn *Generator) popGlobalOps(pp *Population, plan []AttrPlan, fr *Fragments) error {
	var decl, upd strings.Builder
	for _, op := range pp.GlobalOps {
		ap, ok := Find(plan, op.Var)
		if !ok {
			return model.Invariant("population %s: global operation %s on unknown variable %s", pp.Nm, op.CName(), op.Var)
		}
		if ap.Locality != model.Local {
			return model.NotImplemented("population %s: global operation %s on %v variable %s", pp.Nm, op.CName(), ap.Locality, op.Var)
		}
		decl.WriteString("// Global operation " + op.CName() + "(" + op.Var + ")\n" + ap.CType + " " + op.Member() + ";\n")
		if ap.Sync {
			upd.WriteString("device_to_host_" + op.Var + "();\n")
		}
		upd.WriteString(op.Member() + " = " + op.CName() + "_value< " + ap.CType + " >(" + op.Var + ".data(), size);\n")
	}
	fr.DeclareGlobOps = decl.String()
	fr.UpdateGlobOps = upd.String()
	return nil
}

// popStop returns the body of stop_condition.
func (gn *Generator) popStop(pp *Population, plan []AttrPlan) string {
	if pp.Stop == nil || strings.TrimSpace(pp.Stop.Cond) == "" {
		return "return false;\n"
	}
	var sb strings.Builder
	for _, d := range pp.Stop.Deps {
		if ap, ok := Find(plan, d); ok && ap.Sync {
			sb.WriteString("device_to_host_" + d + "();\n")
		}
	}
	ix := Index{Local: "[i]", ID: pp.ID}
	cond := ix.Replace(pp.Stop.Cond)
	if pp.Stop.Mode == model.StopAll {
		sb.WriteString("for (int i = 0; i < size; i++) {\n    if ( !(" + cond + ") )\n        return false;\n}\nreturn true;\n")
		return sb.String()
	}
	sb.WriteString("for (int i = 0; i < size; i++) {\n    if ( " + cond + " )\n        return true;\n}\nreturn false;\n")
	return sb.String()
}

// functions returns the local functions of a model, as static members on
// CPU and device functions on GPU.
func (gn *Generator) functions(desc *model.Description) string {
	ft := gn.Cfg.FloatType()
	prefix := "static inline "
	if gn.Cfg.GPU() {
		prefix = "__device__ __forceinline__ "
	}
	var sb strings.Builder
	for _, fn := range desc.Funcs {
		args := make([]string, len(fn.Args))
		for i, a := range fn.Args {
			args[i] = ft + " " + a
		}
		sb.WriteString(prefix + ft + " " + fn.Name + "(" + strings.Join(args, ", ") + ") {\n    return " + fn.Body + ";\n}\n")
	}
	return sb.String()
}

// prjAdditional fills the event-driven and structural plasticity members of
// a projection.
func (gn *Generator) prjAdditional(pj *Projection, rp conn.Repr, fr *Fragments) error {
	var decl, init strings.Builder
	if pj.Model.HasEventDriven() {
		if gn.Cfg.GPU() {
			decl.WriteString("// Time of the last pre-synaptic event, per synapse\nstd::vector<long int> _last_event;\nlong int* gpu_last_event;\n")
			init.WriteString("_last_event = std::vector<long int>(nb_synapses(), -10000);\n")
			init.WriteString("cudaMalloc((void**)&gpu_last_event, nb_synapses() * sizeof(long int));\n")
			init.WriteString("cudaMemcpy(gpu_last_event, _last_event.data(), nb_synapses() * sizeof(long int), cudaMemcpyHostToDevice);\n")
		} else {
			decl.WriteString("// Time of the last pre-synaptic event, per synapse\n" + localContainer("long int", rp) + " _last_event;\n")
			init.WriteString("_last_event = init_matrix_variable< long int >(-10000);\n")
		}
	}
	if gn.Cfg.StructuralPlasticity && (pj.Model.Pruning != "" || pj.Model.Creating != "") {
		if rp.Format() != conn.FormatLIL || rp.GPU() || rp.Sliced() {
			return model.Unsupported("projection %s: structural plasticity with %v", pj.Nm, rp)
		}
		if pj.Model.Pruning != "" {
			decl.WriteString(gn.structural(pj, "pruning", pj.Model.Pruning))
			init.WriteString("_pruning = false;\n_pruning_period = 1;\n_pruning_offset = 0;\n")
		}
		if pj.Model.Creating != "" {
			decl.WriteString(gn.structural(pj, "creating", pj.Model.Creating))
			init.WriteString("_creating = false;\n_creating_period = 1;\n_creating_offset = 0;\n")
		}
	}
	fr.Additional = decl.String()
	fr.InitAdditional = init.String()
	return nil
}

// structural returns the members and methods of one structural plasticity
// mechanism, pruning or creating, for a LIL projection on CPU.
func (gn *Generator) structural(pj *Projection, mech, cond string) string {
	ix := Index{Local: "[i][j]", SemiGlobal: "[i]", Pre: "[rk_pre]", Post: "[rk_post]", ID: pj.ID, IDPre: pj.Pre.ID, IDPost: pj.Post.ID, Target: pj.Target}
	body := structPrune
	if mech == "creating" {
		body = structCreate
	}
	args := strconv.FormatFloat(pj.Connector.Weights.Mean, 'g', -1, 64)
	if pj.MaxDelay > 1 && !pj.UniformDelay() {
		args += ", 1"
	}
	r := strings.NewReplacer("MECH", mech, "COND", cond, "ARGS", args)
	return ix.Replace(r.Replace(structHead + body))
}

const structHead = `
// Structural plasticity: MECH
bool _MECH;
int _MECH_period;
long int _MECH_offset;
void start_MECH(int period, long int offset) {
    _MECH = true;
    _MECH_period = period;
    _MECH_offset = offset;
}
void stop_MECH() { _MECH = false; }
`

const structPrune = `void prune() {
    if ( !_MECH || (t - _MECH_offset) % _MECH_period != 0 )
        return;
    for (int i = 0; i < post_rank.size(); i++) {
        int rk_post = post_rank[i];
        for (int j = pre_rank[i].size() - 1; j >= 0; j--) {
            int rk_pre = pre_rank[i][j];
            if ( COND )
                eliminate_synapse(rk_post, rk_pre);
        }
    }
}
`

const structCreate = `void create() {
    if ( !_MECH || (t - _MECH_offset) % _MECH_period != 0 )
        return;
    for (int i = 0; i < post_rank.size(); i++) {
        int rk_post = post_rank[i];
        for (int rk_pre = 0; rk_pre < pop{id_pre}.size; rk_pre++) {
            if ( synapse_exists(rk_post, rk_pre) )
                continue;
            if ( COND )
                add_synapse(rk_post, rk_pre, ARGS);
        }
    }
}
`
