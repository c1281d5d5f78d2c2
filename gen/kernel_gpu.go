// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gen

import (
	"strings"

	"github.com/emer/netgen/conn"
	"github.com/emer/netgen/model"
	"github.com/goki/ki/ints"
)

// MaxBlocks is the largest grid launched by the generated wrappers.
const MaxBlocks = 65535

// kArg is one kernel parameter: its declaration in the kernel signature
// and the expression passed by the host wrapper.
type kArg struct {
	Decl string
	Pass string
}

type kArgs []kArg

func (ka *kArgs) add(decl, pass string) {
	*ka = append(*ka, kArg{Decl: decl, Pass: pass})
}

func (ka kArgs) decls() string {
	ds := make([]string, len(ka))
	for i, a := range ka {
		ds[i] = a.Decl
	}
	return strings.Join(ds, ", ")
}

func (ka kArgs) passes() string {
	ps := make([]string, len(ka))
	for i, a := range ka {
		ps[i] = a.Pass
	}
	return strings.Join(ps, ", ")
}

// nbBlocks returns the grid size covering n threads, in [1, MaxBlocks].
func nbBlocks(n, tpb int) int {
	return ints.MinInt(ints.MaxInt((n+tpb-1)/tpb, 1), MaxBlocks)
}

// attrArgs adds one pointer per attribute. Globals are passed as <v>_ptr
// and read through the block copy emitted by sharedGlobals.
func attrArgs(ka *kArgs, plan []AttrPlan) {
	for _, ap := range plan {
		if ap.Locality == model.Global {
			ka.add(ap.CType+"* __restrict__ "+ap.Name+"_ptr", "gpu_"+ap.Name)
			continue
		}
		ka.add(ap.CType+"* __restrict__ "+ap.Name, "gpu_"+ap.Name)
	}
}

// sharedGlobals returns the kernel prologue giving every block its own copy
// of the global attributes. Thread 0 loads them and runs eqs, then block 0
// writes back the attributes the kernel updates. All threads wait at the
// barrier before reading them. eqs must be empty unless the kernel runs as
// a single block, see globalKernel.
func sharedGlobals(plan []AttrPlan, eqs string) string {
	var decl, load, store strings.Builder
	for _, ap := range plan {
		if ap.Locality != model.Global {
			continue
		}
		decl.WriteString("__shared__ " + ap.CType + " " + ap.Name + ";\n")
		load.WriteString(ap.Name + " = " + ap.Name + "_ptr[0];\n")
		if ap.KernelWrites && eqs != "" {
			store.WriteString(ap.Name + "_ptr[0] = " + ap.Name + ";\n")
		}
	}
	if decl.Len() == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("// Global attributes, one copy per block\n")
	sb.WriteString(decl.String())
	inner := load.String() + eqs
	if store.Len() > 0 {
		inner += "if (blockIdx.x == 0) {\n" + tabify(store.String(), 1) + "}\n"
	}
	sb.WriteString("if (threadIdx.x == 0) {\n" + tabify(inner, 1) + "}\n__syncthreads();\n")
	return sb.String()
}

// globalKernel returns a single thread kernel running the global
// equations eqs, and its launch. Running them in one block keeps every
// block of the following kernels on the same values.
func globalKernel(name string, ka kArgs, plan []AttrPlan, eqs string) (src, call string) {
	return kernelSrc(name, ka, sharedGlobals(plan, eqs)), launch(name, 1, 1, ka)
}

// kernelSrc returns a kernel definition.
func kernelSrc(name string, ka kArgs, body string) string {
	return "__global__ void " + name + "(" + ka.decls() + ")\n{\n" + tabify(body, 1) + "}\n"
}

// launch returns a kernel launch on the entity stream.
func launch(name string, blocks, tpb int, ka kArgs) string {
	return name + "<<< " + itoa(blocks) + ", " + itoa(tpb) + ", 0, stream >>>(" + ka.passes() + ");\n"
}

// debugCheck reports launch errors in debug builds.
func debugCheck(ent string) string {
	return `#ifdef _DEBUG
{
    cudaError_t err = cudaGetLastError();
    if ( err != cudaSuccess )
        std::cout << "` + ent + `: " << cudaGetErrorString(err) << std::endl;
}
#endif
`
}

const strideLoop = "for (int i = threadIdx.x + blockIdx.x * blockDim.x; i < size; i += blockDim.x * gridDim.x) {\n"

// popKernelGPU returns the device kernels of a population and the body of
// update launching them.
func (gn *Generator) popKernelGPU(pp *Population, plan []AttrPlan) (kernels, update string, err error) {
	desc := pp.Model
	ft := gn.Cfg.FloatType()
	tpb := gn.Cfg.ThreadsPerBlock
	id := itoa(pp.ID)
	ix := Index{Local: "[i]", ID: pp.ID}
	subst := func(code string) (string, error) {
		code, err := gn.gpuRands(code, desc.Rands)
		if err != nil {
			return "", err
		}
		return ix.Replace(code), nil
	}

	var ka kArgs
	ka.add("const long int t", "t")
	ka.add("const double dt", "dt")
	ka.add("const int size", "size")
	attrArgs(&ka, plan)
	for _, nm := range targetInputs(pp) {
		ka.add(ft+"* __restrict__ "+nm, "gpu_"+nm)
	}
	gn.randArgs(&ka, desc.Rands)
	for _, op := range pp.GlobalOps {
		ap, _ := Find(plan, op.Var)
		ka.add("const "+ap.CType+" "+op.Member(), op.Member())
	}
	if pp.HasRefractory() {
		ka.add("const int refractory", "refractory")
		ka.add("int* __restrict__ refractory_remaining", "gpu_refractory_remaining")
	}
	if pp.Kind() == model.Spike {
		ka.add("int* __restrict__ spiked", "gpu_spiked")
		ka.add("unsigned int* num_events", "gpu_spike_count")
		ka.add("long int* __restrict__ last_spike", "gpu_last_spike")
	}

	before, after := splitGlobals(desc)
	locals := continuous(desc, model.Local)

	var body strings.Builder
	if pp.HasRefractory() {
		body.WriteString("// Refractory period\nif (refractory_remaining[i] > 0) {\n")
		body.WriteString(tabify(eqBlock(conductances(locals)), 1))
		body.WriteString("    refractory_remaining[i]--;\n    continue;\n}\n")
	}
	body.WriteString(eqBlock(locals))
	step := sharedGlobals(plan, "") + strideLoop + tabify(body.String(), 1) + "}\n"
	if step, err = subst(step); err != nil {
		return "", "", err
	}

	blocks := nbBlocks(pp.Size, tpb)
	var ks, up strings.Builder
	up.WriteString("host_to_device();\n")
	if pp.Kind() == model.Spike {
		up.WriteString("cudaMemsetAsync(gpu_spike_count, 0, sizeof(unsigned int), stream);\n")
	}
	if len(before) > 0 {
		eqs, err := subst(eqBlock(before))
		if err != nil {
			return "", "", err
		}
		src, call := globalKernel("cuPop"+id+"_global_pre_step", ka, plan, eqs)
		ks.WriteString(src)
		up.WriteString(call)
	}
	ks.WriteString(kernelSrc("cuPop"+id+"_step", ka, step))
	up.WriteString(launch("cuPop"+id+"_step", blocks, tpb, ka))

	if len(after) > 0 {
		eqs, err := subst(eqBlock(after))
		if err != nil {
			return "", "", err
		}
		src, call := globalKernel("cuPop"+id+"_global_step", ka, plan, eqs)
		ks.WriteString(src)
		up.WriteString(call)
	}

	if pp.Kind() == model.Spike {
		var sp strings.Builder
		sp.WriteString(spikeReset(desc))
		sp.WriteString("int pos = atomicAdd(&num_events[0], 1);\nspiked[pos] = i;\nlast_spike[i] = t;\n")
		if pp.HasRefractory() {
			sp.WriteString("refractory_remaining[i] = refractory;\n")
		}
		var gb strings.Builder
		if pp.HasRefractory() {
			gb.WriteString("if (refractory_remaining[i] > 0)\n    continue;\n")
		}
		gb.WriteString("if ( " + strings.TrimSpace(desc.Spike.Cond) + " ) {\n" + tabify(sp.String(), 1) + "}\n")
		gather, err := subst(sharedGlobals(plan, "") + strideLoop + tabify(gb.String(), 1) + "}\n")
		if err != nil {
			return "", "", err
		}
		ks.WriteString(kernelSrc("cuPop"+id+"_spike_gather", ka, gather))
		up.WriteString(launch("cuPop"+id+"_spike_gather", blocks, tpb, ka))
	}
	up.WriteString(gn.clearInputs(pp))
	up.WriteString(markDevice(plan))
	up.WriteString(debugCheck("PopStruct" + id + "::update"))
	return ks.String(), up.String(), nil
}

// isIdent returns true for bytes that continue a C identifier.
func isIdent(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

// hasRef returns true if ref occurs in code as a whole identifier.
func hasRef(code, ref string) bool {
	for off := 0; ; {
		k := strings.Index(code[off:], ref)
		if k < 0 {
			return false
		}
		end := off + k + len(ref)
		if end >= len(code) || !isIdent(code[end]) {
			return true
		}
		off = end
	}
}

// neighborArgs adds the attributes, inputs and reductions of a pre or post
// population read by code through prefix, pop{id_pre}. or pop{id_post}.
// Local attributes are passed as device pointers, globals by value.
// delayed maps a variable to the expression of its delayed device buffer.
func (gn *Generator) neighborArgs(ka *kArgs, code, prefix, as string, pp *Population, delayed map[string]string) {
	pop := "pop" + itoa(pp.ID)
	for _, ap := range PlanAttributes(pp.Model, false, &gn.Cfg) {
		if !hasRef(code, prefix+ap.Name) {
			continue
		}
		if ap.Locality == model.Global {
			ka.add("const "+ap.CType+" "+as+ap.Name, pop+".get_"+ap.Name+"()")
			continue
		}
		pass := pop + ".gpu_" + ap.Name
		if d, ok := delayed[ap.Name]; ok {
			pass = d
		}
		ka.add(ap.CType+"* __restrict__ "+as+ap.Name, pass)
	}
	for _, nm := range targetInputs(pp) {
		if hasRef(code, prefix+nm) {
			ka.add(gn.Cfg.FloatType()+"* __restrict__ "+as+nm, pop+".gpu_"+nm)
		}
	}
	for _, op := range pp.GlobalOps {
		if hasRef(code, prefix+op.Member()) {
			ka.add("const "+gn.Cfg.FloatType()+" "+as+op.Member(), pop+"."+op.Member())
		}
	}
}

// gpuLayout returns the device connectivity parameters of a representation.
func gpuLayout(ka *kArgs, rp conn.Repr) {
	ka.add("const int nb_rows", "nb_dendrites()")
	ka.add("const int nb_syn", "nb_synapses()")
	ka.add("const int* __restrict__ post_rank", "gpu_post_rank")
	if rp.Format() == conn.FormatCOO {
		ka.add("const int* __restrict__ row_indices", "gpu_row_indices")
		ka.add("const int* __restrict__ column_indices", "gpu_column_indices")
		return
	}
	ka.add("const int* __restrict__ row_ptr", "gpu_row_ptr")
	ka.add("const int* __restrict__ pre_rank", "gpu_pre_rank")
	if rp.Inverse() {
		ka.add("const int* __restrict__ col_ptr", "gpu_col_ptr")
		ka.add("const int* __restrict__ row_idx", "gpu_row_idx")
		ka.add("const int* __restrict__ inv_idx", "gpu_inv_idx")
	}
}

const (
	gpuRowLoop = `for (int i = blockIdx.x * blockDim.x + threadIdx.x; i < nb_rows; i += blockDim.x * gridDim.x) {
    int rk_post = post_rank[i];
`
	gpuRowSyn = `for (int j = row_ptr[i]; j < row_ptr[i+1]; j++) {
    int rk_pre = pre_rank[j];
`
	gpuCOOLoop = `for (int j = blockIdx.x * blockDim.x + threadIdx.x; j < nb_syn; j += blockDim.x * gridDim.x) {
    int i = row_indices[j];
    int rk_post = post_rank[i];
    int rk_pre = column_indices[j];
`
	gpuEventLoop = `for (int b = blockIdx.x; b < num_events[0]; b += gridDim.x) {
    int rk_pre = spiked[b];
    for (int k = col_ptr[rk_pre] + threadIdx.x; k < col_ptr[rk_pre+1]; k += blockDim.x) {
        int i = row_idx[k];
        int j = inv_idx[k];
        int rk_post = post_rank[i];
`
)

// prjKernelsGPU returns the device kernels of a projection and the bodies
// of compute_psp and update launching them.
func (gn *Generator) prjKernelsGPU(pj *Projection, rp conn.Repr, plan []AttrPlan) (kernels, psp, update string, err error) {
	desc := pj.Model
	ft := gn.Cfg.FloatType()
	tpb := gn.Cfg.ThreadsPerBlock
	id := itoa(pj.ID)
	ix := Index{Local: "[j]", SemiGlobal: "[i]", Pre: "[rk_pre]", Post: "[rk_post]", ID: pj.ID, IDPre: pj.Pre.ID, IDPost: pj.Post.ID, Target: pj.Target}
	rw := strings.NewReplacer("pop{id_pre}.", "pre_", "pop{id_post}.", "post_", "_last_event{local_index}", "last_event{local_index}")
	subst := func(code string) (string, error) {
		code, err := gn.gpuRands(relocate(code, plan), desc.Rands)
		if err != nil {
			return "", err
		}
		return ix.Replace(rw.Replace(code)), nil
	}
	delayed := map[string]string{}
	if pj.MaxDelay > 1 && pj.Kind() == model.Rate {
		for _, v := range pj.PreVars() {
			delayed[v] = "pop" + itoa(pj.Pre.ID) + ".gpu_delayed_" + v + "[delay-1]"
		}
	}
	input := inputName(pj)
	args := func(code string, spikes bool) kArgs {
		var ka kArgs
		ka.add("const long int t", "t")
		ka.add("const double dt", "dt")
		gpuLayout(&ka, rp)
		attrArgs(&ka, plan)
		gn.randArgs(&ka, desc.Rands)
		if desc.HasEventDriven() {
			ka.add("long int* __restrict__ last_event", "gpu_last_event")
		}
		if spikes {
			sp, cnt := preSpikes(pj, true)
			ka.add("const int* __restrict__ spiked", sp)
			ka.add("const unsigned int* __restrict__ num_events", cnt)
		}
		gn.neighborArgs(&ka, code, "pop{id_pre}.", "pre_", pj.Pre, delayed)
		gn.neighborArgs(&ka, code, "pop{id_post}.", "post_", pj.Post, nil)
		return ka
	}

	var ks, ps, up strings.Builder
	rows := pj.Matrix.NbRows()
	switch {
	case pj.Kind() == model.Rate && rp.Format() == conn.FormatCOO:
		expr := desc.PSPExpr()
		body := gpuCOOLoop + "    atomicAdd(&pop{id_post}." + input + "{post_index}, " + expr + ");\n}\n"
		ka := args(body, false)
		code, err := subst(sharedGlobals(plan, "") + body)
		if err != nil {
			return "", "", "", err
		}
		ks.WriteString(kernelSrc("cuProj"+id+"_psp", ka, code))
		ps.WriteString(launch("cuProj"+id+"_psp", nbBlocks(pj.Matrix.NbSynapses(), tpb), tpb, ka))
	case pj.Kind() == model.Rate:
		expr := desc.PSPExpr()
		body := gpuRowLoop + "    " + ft + " sum = 0.0;\n" + tabify(gpuRowSyn+"    sum += "+expr+";\n}\n", 1) + "    pop{id_post}." + input + "{post_index} += sum;\n}\n"
		ka := args(body, false)
		code, err := subst(sharedGlobals(plan, "") + body)
		if err != nil {
			return "", "", "", err
		}
		ks.WriteString(kernelSrc("cuProj"+id+"_psp", ka, code))
		ps.WriteString(launch("cuProj"+id+"_psp", nbBlocks(rows, tpb), tpb, ka))
	default:
		if !rp.Inverse() {
			return "", "", "", model.Unsupported("projection %s: spike propagation with %v", pj.Nm, rp)
		}
		var sb strings.Builder
		for _, vr := range desc.Vars {
			if vr.Method == model.EventDriven && vr.HasEq() {
				sb.WriteString(eqCode(vr))
			}
		}
		inc, stmts := desc.Increment()
		sb.WriteString("atomicAdd(&pop{id_post}." + input + "{post_index}, " + inc + ");\n")
		for _, eq := range stmts {
			sb.WriteString(strings.TrimRight(strings.TrimSpace(eq.Code), ";") + ";\n")
		}
		if desc.HasEventDriven() {
			sb.WriteString("_last_event{local_index} = t;\n")
		}
		body := gpuEventLoop + tabify(sb.String(), 2) + "    }\n}\n"
		ka := args(body, true)
		code, err := subst(sharedGlobals(plan, "") + body)
		if err != nil {
			return "", "", "", err
		}
		ks.WriteString(kernelSrc("cuProj"+id+"_psp", ka, code))
		ps.WriteString(launch("cuProj"+id+"_psp", ints.MinInt(pj.Pre.Size, MaxBlocks), tpb, ka))
	}
	ps.WriteString(markDevice(plan))
	if _, ok := pj.Post.Model.Attr(input); ok {
		ps.WriteString("pop" + itoa(pj.Post.ID) + "." + input + "_sync = PopStruct" + itoa(pj.Post.ID) + "::SyncState::DirtyDevice;\n")
	}
	ps.WriteString(debugCheck("ProjStruct" + id + "::compute_psp"))

	globals := eqBlock(continuous(desc, model.Global))
	semis := eqBlock(continuous(desc, model.SemiGlobal))
	locals := eqBlock(continuous(desc, model.Local))
	if globals == "" && semis == "" && locals == "" {
		return ks.String(), ps.String(), "", nil
	}
	var body string
	switch {
	case rp.Format() == conn.FormatCOO && semis != "":
		return "", "", "", model.NotImplemented("projection %s: semiglobal equations with %v", pj.Nm, rp)
	case semis == "" && locals == "":
	case rp.Format() == conn.FormatCOO:
		body = gpuCOOLoop + tabify(locals, 1) + "}\n"
	default:
		inner := semis
		if locals != "" {
			inner += gpuRowSyn + tabify(locals, 1) + "}\n"
		}
		body = gpuRowLoop + tabify(inner, 1) + "}\n"
	}
	ka := args(globals+body, false)
	up.WriteString("host_to_device();\n")
	if globals != "" {
		eqs, err := subst(globals)
		if err != nil {
			return "", "", "", err
		}
		src, call := globalKernel("cuProj"+id+"_global_step", ka, plan, eqs)
		ks.WriteString(src)
		up.WriteString(call)
	}
	if body != "" {
		code, err := subst(sharedGlobals(plan, "") + body)
		if err != nil {
			return "", "", "", err
		}
		n := rows
		if rp.Format() == conn.FormatCOO {
			n = pj.Matrix.NbSynapses()
		}
		ks.WriteString(kernelSrc("cuProj"+id+"_step", ka, code))
		up.WriteString(launch("cuProj"+id+"_step", nbBlocks(n, tpb), tpb, ka))
	}
	up.WriteString(markDevice(plan))
	up.WriteString(debugCheck("ProjStruct" + id + "::update"))
	return ks.String(), ps.String(), up.String(), nil
}
