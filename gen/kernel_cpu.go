// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gen

import (
	"strings"

	"github.com/emer/netgen/conn"
	"github.com/emer/netgen/model"
)

// placeholder returns the index placeholder of a locality.
func placeholder(loc model.Locality) string {
	switch loc {
	case model.Local:
		return "{local_index}"
	case model.SemiGlobal:
		return "{semiglobal_index}"
	}
	return "{global_index}"
}

// eqCode returns the update statement of vr followed by its bounds.
func eqCode(vr model.Variable) string {
	var sb strings.Builder
	sb.WriteString(strings.TrimRight(strings.TrimSpace(vr.Eq), ";") + ";\n")
	v := vr.Name + placeholder(vr.Locality)
	if vr.Min != "" {
		sb.WriteString("if (" + v + " < " + vr.Min + ")\n    " + v + " = " + vr.Min + ";\n")
	}
	if vr.Max != "" {
		sb.WriteString("if (" + v + " > " + vr.Max + ")\n    " + v + " = " + vr.Max + ";\n")
	}
	return sb.String()
}

// relocate rewrites the reads of attributes whose planned locality differs
// from the declared one, e.g. a single weight read as w{local_index}.
func relocate(code string, plan []AttrPlan) string {
	for _, ap := range plan {
		if ap.Locality != model.Global {
			continue
		}
		code = strings.ReplaceAll(code, ap.Name+"{local_index}", ap.Name+"{global_index}")
		code = strings.ReplaceAll(code, ap.Name+"{semiglobal_index}", ap.Name+"{global_index}")
	}
	return code
}

// continuous returns the variables of given locality updated every step,
// in declaration order. Event-driven variables are updated on events.
func continuous(desc *model.Description, loc model.Locality) []model.Variable {
	var vars []model.Variable
	for _, vr := range desc.Updated(loc) {
		if vr.Method == model.Continuous {
			vars = append(vars, vr)
		}
	}
	return vars
}

// splitGlobals separates the global equations run before the local loop
// from those reading an updated local variable, run after it.
func splitGlobals(desc *model.Description) (before, after []model.Variable) {
	locals := desc.Updated(model.Local)
	for _, gv := range continuous(desc, model.Global) {
		late := false
		for _, lv := range locals {
			if gv.DependsOn(lv.Name) {
				late = true
				break
			}
		}
		if late {
			after = append(after, gv)
		} else {
			before = append(before, gv)
		}
	}
	return
}

func eqBlock(vars []model.Variable) string {
	var sb strings.Builder
	for _, vr := range vars {
		sb.WriteString(eqCode(vr))
	}
	return sb.String()
}

// conductances returns the local equations kept running during the
// refractory period.
func conductances(vars []model.Variable) []model.Variable {
	var cs []model.Variable
	for _, vr := range vars {
		if vr.Conductance {
			cs = append(cs, vr)
		}
	}
	return cs
}

// spikeReset returns the statements run for a neuron emitting a spike.
func spikeReset(desc *model.Description) string {
	var sb strings.Builder
	for _, eq := range desc.Spike.Reset {
		sb.WriteString(strings.TrimRight(strings.TrimSpace(eq.Code), ";") + ";\n")
	}
	return sb.String()
}

// popUpdateCPU returns the body of update for a CPU population.
func (gn *Generator) popUpdateCPU(pp *Population) string {
	desc := pp.Model
	ix := Index{Local: "[i]", ID: pp.ID}
	mt := gn.Cfg.MultiThread()
	before, after := splitGlobals(desc)
	locals := continuous(desc, model.Local)

	var body strings.Builder
	if pp.HasRefractory() {
		body.WriteString("// Refractory period\nif (refractory_remaining[i] > 0) {\n")
		body.WriteString(tabify(eqBlock(conductances(locals)), 1))
		body.WriteString("    refractory_remaining[i]--;\n    continue;\n}\n")
	}
	if len(locals) > 0 {
		body.WriteString("// Local equations\n" + eqBlock(locals))
	}
	if pp.Kind() == model.Spike {
		var sp strings.Builder
		sp.WriteString(spikeReset(desc))
		if mt {
			sp.WriteString("#pragma omp critical\n")
		}
		sp.WriteString("spiked.push_back(i);\nlast_spike[i] = t;\n")
		if pp.HasRefractory() {
			sp.WriteString("refractory_remaining[i] = refractory;\n")
		}
		body.WriteString("// Spike emission\nif ( " + strings.TrimSpace(desc.Spike.Cond) + " ) {\n" + tabify(sp.String(), 1) + "}\n")
	}

	var sb strings.Builder
	if pp.Kind() == model.Spike {
		sb.WriteString("spiked.clear();\n")
	}
	if len(before) > 0 {
		sb.WriteString("// Global equations\n" + eqBlock(before))
	}
	if body.Len() > 0 {
		sb.WriteString("// Neuron loop\n" + ompIf(mt) + "for (int i = 0; i < size; i++) {\n" + tabify(body.String(), 1) + "}\n")
	}
	if len(after) > 0 {
		sb.WriteString("// Global equations reading local variables\n" + eqBlock(after))
	}
	sb.WriteString(gn.clearInputs(pp))
	return ix.Replace(sb.String())
}

// prjIndex returns the placeholder substitutions inside a CPU synapse loop.
func prjIndex(pj *Projection, sl synLoop) Index {
	return Index{
		Local:      sl.Local,
		SemiGlobal: sl.Semi,
		Pre:        "[rk_pre]",
		Post:       "[rk_post]",
		ID:         pj.ID,
		IDPre:      pj.Pre.ID,
		IDPost:     pj.Post.ID,
		Target:     pj.Target,
	}
}

// accumulate returns the statement adding inc to the post-synaptic input.
func accumulate(pj *Projection, inc string, atomic bool) string {
	st := "pop{id_post}." + inputName(pj) + "{post_index} += " + inc + ";\n"
	if atomic {
		return "#pragma omp atomic\n" + st
	}
	return st
}

// prjPropagateCPU returns the body of compute_psp for a CPU projection:
// the weighted sum of rate synapses, or spike delivery through the inverse
// connectivity for spiking synapses.
func (gn *Generator) prjPropagateCPU(pj *Projection, rp conn.Repr, plan []AttrPlan) (string, error) {
	mt := gn.Cfg.MultiThread()
	if pj.Kind() == model.Rate {
		loops, err := updateLoops(rp, mt)
		if err != nil {
			return "", err
		}
		psp := relocate(delayedPreReads(pj, pj.Model.PSPExpr()), plan)
		var sb strings.Builder
		for _, sl := range loops {
			ix := prjIndex(pj, sl)
			sb.WriteString(ix.Replace(sl.wrap(accumulate(pj, psp, mt))))
		}
		return sb.String(), nil
	}

	spiked, _ := preSpikes(pj, false)
	loop, err := spikeLoop(rp, spiked, mt)
	if err != nil {
		return "", err
	}
	body := gn.spikeBody(pj, plan, mt && rp != conn.ParallelLIL)
	if pj.MaxDelay > 1 && !pj.UniformDelay() {
		ev, err := eventLoop(rp)
		if err != nil {
			return "", err
		}
		enq := "_delayed_spikes[delay{local_index}-1].push_back(std::pair<int, int>(i, j));\n"
		if mt {
			enq = "#pragma omp critical\n" + enq
		}
		ix := prjIndex(pj, loop)
		evx := prjIndex(pj, ev)
		return "// Queue the new events\n" + ix.Replace(loop.wrap(enq)) + "// Deliver the events due this step\n" + evx.Replace(ev.wrap(body)), nil
	}
	ix := prjIndex(pj, loop)
	return ix.Replace(loop.wrap(body)), nil
}

// spikeBody returns the statements run for every synapse reached by a
// pre-synaptic spike: event-driven updates, the conductance increment and
// the other pre-spike statements.
func (gn *Generator) spikeBody(pj *Projection, plan []AttrPlan, atomic bool) string {
	var sb strings.Builder
	for _, vr := range pj.Model.Vars {
		if vr.Method == model.EventDriven && vr.HasEq() {
			sb.WriteString(eqCode(vr))
		}
	}
	inc, stmts := pj.Model.Increment()
	sb.WriteString(accumulate(pj, inc, atomic))
	for _, eq := range stmts {
		sb.WriteString(strings.TrimRight(strings.TrimSpace(eq.Code), ";") + ";\n")
	}
	if pj.Model.HasEventDriven() {
		sb.WriteString("_last_event{local_index} = t;\n")
	}
	return relocate(sb.String(), plan)
}

// prjUpdateCPU returns the body of update for a CPU projection: global,
// then semiglobal, then local continuous equations.
func (gn *Generator) prjUpdateCPU(pj *Projection, rp conn.Repr, plan []AttrPlan) (string, error) {
	mt := gn.Cfg.MultiThread()
	desc := pj.Model
	var sb strings.Builder
	if gl := continuous(desc, model.Global); len(gl) > 0 {
		ix := Index{ID: pj.ID, IDPre: pj.Pre.ID, IDPost: pj.Post.ID, Target: pj.Target}
		sb.WriteString("// Global equations\n" + ix.Replace(relocate(eqBlock(gl), plan)))
	}
	if sg := continuous(desc, model.SemiGlobal); len(sg) > 0 {
		rl, err := rowLoop(rp, mt)
		if err != nil {
			return "", err
		}
		ix := prjIndex(pj, rl)
		sb.WriteString("// Semiglobal equations\n" + ix.Replace(rl.wrap(relocate(eqBlock(sg), plan))))
	}
	if lc := continuous(desc, model.Local); len(lc) > 0 {
		loops, err := updateLoops(rp, mt)
		if err != nil {
			return "", err
		}
		sb.WriteString("// Local equations\n")
		for _, sl := range loops {
			ix := prjIndex(pj, sl)
			sb.WriteString(ix.Replace(sl.wrap(relocate(eqBlock(lc), plan))))
		}
	}
	return sb.String(), nil
}
