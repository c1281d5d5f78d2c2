// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gen

import (
	"strings"

	"github.com/emer/netgen/conn"
	"github.com/emer/netgen/model"
)

// randData is the data of the random variable snippets.
type randData struct {
	Name      string
	CType     string
	Dist      string `desc:"C++ distribution constructor"`
	Container string
	Count     string
	Seed      int64
}

var (
	rngPopLocalDecl = snippet("rngPopLocalDecl", `
// Random variable {{.Name}}
std::vector< {{.CType}} > {{.Name}};
{{.Dist}} dist_{{.Name}};
`)
	rngGlobalDecl = snippet("rngGlobalDecl", `
// Random variable {{.Name}}
{{.CType}} {{.Name}};
{{.Dist}} dist_{{.Name}};
`)
	rngPrjLocalDecl = snippet("rngPrjLocalDecl", `
// Random variable {{.Name}}
{{.Container}} {{.Name}};
{{.Dist}} dist_{{.Name}};
`)
	rngPopLocalUpdate = snippet("rngPopLocalUpdate", `
for (int i = 0; i < size; i++) {
    {{.Name}}[i] = dist_{{.Name}}(rng[0]);
}
`)
	rngGPUDecl = snippet("rngGPUDecl", `
// Random states of {{.Name}}
curandState* gpu_state_{{.Name}};
`)
	rngGPUInit = snippet("rngGPUInit", `
cudaMalloc((void**)&gpu_state_{{.Name}}, {{.Count}} * sizeof(curandState));
init_curand_states({{.Count}}, gpu_state_{{.Name}}, {{.Seed}});
`)
)

// stdDist returns the C++ standard library distribution of rd.
func stdDist(rd model.RandomVar, ctype string) (string, error) {
	args := strings.Join(rd.Args, ", ")
	switch rd.Dist {
	case model.Uniform:
		return "std::uniform_real_distribution< " + ctype + " >", nil
	case model.Normal:
		return "std::normal_distribution< " + ctype + " >", nil
	case model.LogNormal:
		return "std::lognormal_distribution< " + ctype + " >", nil
	case model.Exponential:
		return "std::exponential_distribution< " + ctype + " >", nil
	case model.Gamma:
		return "std::gamma_distribution< " + ctype + " >", nil
	case model.DiscreteUniform:
		return "std::uniform_int_distribution< int >", nil
	}
	return "", model.NotImplemented("random variable %s: distribution %v (%s)", rd.Name, rd.Dist, args)
}

// randCType returns the scalar type of the draws of rd.
func (gn *Generator) randCType(rd model.RandomVar) string {
	if rd.Dist == model.DiscreteUniform {
		return "int"
	}
	if rd.CType == "" {
		return gn.Cfg.FloatType()
	}
	return precisionType(rd.CType, &gn.Cfg)
}

// rngFragments fills the random number fragments. On CPU every variable
// is drawn into a buffer in update_rng. On GPU only the generator states
// are declared, the draws are substituted into the kernels by gpuRands,
// except for global variables: those are drawn once per step on the host
// and passed to the kernels by value.
// count gives the number of states per locality; rp is nil for populations.
func (gn *Generator) rngFragments(rands []model.RandomVar, count func(loc model.Locality) string, rp *conn.Repr, fr *Fragments) error {
	var decl, init, upd strings.Builder
	for k, rd := range rands {
		ctype := gn.randCType(rd)
		if gn.Cfg.GPU() && rd.Locality != model.Global {
			if _, err := curandExpr(rd, ""); err != nil {
				return err
			}
			dt := randData{Name: rd.Name, Count: count(rd.Locality), Seed: gn.Cfg.RandSeed() + int64(k)}
			decl.WriteString(expand(rngGPUDecl, dt))
			init.WriteString(expand(rngGPUInit, dt))
			continue
		}
		dist, err := stdDist(rd, ctype)
		if err != nil {
			return err
		}
		dt := randData{Name: rd.Name, CType: ctype, Dist: dist}
		ctor := "dist_" + rd.Name + " = " + dist + "(" + strings.Join(rd.Args, ", ") + ");\n"
		switch {
		case rd.Locality == model.Global:
			decl.WriteString(expand(rngGlobalDecl, dt))
			init.WriteString(ctor)
			upd.WriteString(rd.Name + " = dist_" + rd.Name + "(rng[0]);\n")
		case rp == nil:
			decl.WriteString(expand(rngPopLocalDecl, dt))
			init.WriteString(ctor)
			init.WriteString(rd.Name + " = std::vector< " + ctype + " >(size, " + model.ZeroValue(ctype) + ");\n")
			upd.WriteString(expand(rngPopLocalUpdate, dt))
		case rd.Locality == model.SemiGlobal:
			dt.Container = "std::vector< " + ctype + " >"
			decl.WriteString(expand(rngPrjLocalDecl, dt))
			init.WriteString(ctor)
			upd.WriteString(rd.Name + " = init_vector_variable_random< " + ctype + " >(dist_" + rd.Name + ", rng[0]);\n")
		default:
			dt.Container = localContainer(ctype, *rp)
			decl.WriteString(expand(rngPrjLocalDecl, dt))
			init.WriteString(ctor)
			upd.WriteString(rd.Name + " = init_matrix_variable_random< " + ctype + " >(dist_" + rd.Name + ", rng[0]);\n")
		}
	}
	fr.DeclareRng = decl.String()
	fr.InitRng = init.String()
	fr.UpdateRng = upd.String()
	return nil
}

// curandExpr returns the device draw replacing rd, with the state index
// left as a placeholder. sfx is _double for double precision.
func curandExpr(rd model.RandomVar, sfx string) (string, error) {
	st := "&state_" + rd.Name + stateIndex(rd.Locality)
	switch rd.Dist {
	case model.Uniform:
		return "(" + rd.Args[0] + " + (" + rd.Args[1] + " - " + rd.Args[0] + ") * curand_uniform" + sfx + "(" + st + "))", nil
	case model.Normal:
		return "(" + rd.Args[0] + " + " + rd.Args[1] + " * curand_normal" + sfx + "(" + st + "))", nil
	case model.LogNormal:
		return "curand_log_normal" + sfx + "(" + st + ", " + rd.Args[0] + ", " + rd.Args[1] + ")", nil
	}
	return "", model.Unsupported("random variable %s: distribution %v is not available on the GPU", rd.Name, rd.Dist)
}

func stateIndex(loc model.Locality) string {
	if loc == model.SemiGlobal {
		return "{semiglobal_index}"
	}
	return "{local_index}"
}

// randArgs adds the kernel arguments of the random variables: the device
// states, or the host draw for global variables.
func (gn *Generator) randArgs(ka *kArgs, rands []model.RandomVar) {
	for _, rd := range rands {
		if rd.Locality == model.Global {
			ka.add("const "+gn.randCType(rd)+" "+rd.Name, rd.Name)
			continue
		}
		ka.add("curandState* state_"+rd.Name, "gpu_state_"+rd.Name)
	}
}

// gpuRands substitutes every random variable read in code by its device
// draw. Global variables are kernel arguments and read as is.
func (gn *Generator) gpuRands(code string, rands []model.RandomVar) (string, error) {
	sfx := ""
	if gn.Cfg.FloatType() == "double" {
		sfx = "_double"
	}
	for _, rd := range rands {
		if rd.Locality == model.Global {
			code = strings.NewReplacer(rd.Name+"{local_index}", rd.Name, rd.Name+"{semiglobal_index}", rd.Name, rd.Name+"{global_index}", rd.Name).Replace(code)
			continue
		}
		ex, err := curandExpr(rd, sfx)
		if err != nil {
			return "", err
		}
		code = strings.ReplaceAll(code, rd.Name+"{local_index}", ex)
		code = strings.ReplaceAll(code, rd.Name+"{semiglobal_index}", ex)
		code = strings.ReplaceAll(code, rd.Name+"{global_index}", ex)
	}
	return code, nil
}
