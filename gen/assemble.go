// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gen

import (
	"math/rand"
	"strings"
	"text/template"

	"github.com/emer/netgen/conn"
	"github.com/emer/netgen/model"
	"github.com/emer/netgen/netcfg"
	"github.com/pkg/errors"
)

// Generator turns populations and projections into source units. It holds
// no state besides its configuration, so units can be generated in any
// order once the projections are connected.
type Generator struct {
	Cfg      netcfg.Config `desc:"configuration of the pass, read only"`
	Profiler Profiler      `desc:"optional measurement annotations, nil for none"`
}

// NewGenerator returns a generator for a validated copy of cfg.
func NewGenerator(cfg netcfg.Config) (*Generator, error) {
	cfg.Update()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Generator{Cfg: cfg}, nil
}

// Unit is the generated source of one entity.
type Unit struct {
	Name      string
	FileName  string      `desc:"popN or projN with .hpp on CPU, .cuh on GPU"`
	Kind      string      `desc:"population or projection"`
	ID        int
	Repr      conn.Repr   `desc:"representation, projections only"`
	Single    bool        `desc:"false for representations spanning several sub-matrices"`
	Frags     Fragments   `desc:"fragments after overrides"`
	Plan      []AttrPlan  `desc:"attribute plan the fragments were woven from"`
	SizeBytes int64       `desc:"estimated host memory of the attributes and connectivity"`
	Matrix    conn.Matrix `desc:"connectivity, projections only"`
	LIL       *conn.LIL   `desc:"list-of-lists Matrix was built from, projections only"`
	Code      string      `desc:"complete source of the unit"`
}

// structData is the data of the struct templates.
type structData struct {
	*Unit
	F        Fragments
	GPU      bool
	Profiled bool
	Size     int
	MaxDelay int
	PreID    int
	PostID   int
	PreFile  string
	PostFile string
	ReprType string
	Args     string
}

// tab indents s by level, dropping blank fragments.
func tab(level int, s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	return tabify(s, level)
}

var structFuncs = template.FuncMap{"tab": tab}

const headerTmpl = `#pragma once
#include "ANNarchy.h"
#include <random>
{{- if .GPU}}
#include <cuda_runtime_api.h>
#include <curand_kernel.h>
{{- end}}
{{- if .Profiled}}
#include <chrono>
#include <map>
{{- end}}
`

const globalsTmpl = `
extern double dt;
extern long int t;
extern std::vector< std::mt19937 > rng;
`

var popTmpl = template.Must(template.New("pop").Funcs(structFuncs).Parse(headerTmpl + globalsTmpl + `
{{- with .F.Functions}}
// Local functions
{{.}}{{end}}
{{- with .F.Kernel}}
// Device kernels
{{.}}{{end}}
///////////////////////////////////////////////////////////////
// Structure for population {{.Name}}
///////////////////////////////////////////////////////////////
struct PopStruct{{.ID}} {
    int size;
    int max_delay;
    bool _active;
{{tab 1 .F.Declare}}{{tab 1 .F.Additional}}{{tab 1 .F.DeclareDelay}}{{tab 1 .F.DeclareRng}}{{tab 1 .F.DeclareGlobOps}}{{tab 1 .F.DeclareSync}}{{tab 1 .F.Profile}}
    // Access methods
{{tab 1 .F.Access}}
    void init_population() {
        size = {{.Size}};
        max_delay = {{.MaxDelay}};
        _active = true;
        init_attributes();
{{tab 2 .F.InitAdditional}}{{tab 2 .F.InitDelay}}{{tab 2 .F.InitRng}}{{tab 2 .F.InitSync}}{{tab 2 .F.InitProfile}}    }

    void init_attributes() {
{{tab 2 .F.Init}}    }

    void update() {
        if ( !_active )
            return;
{{tab 2 .F.Update}}    }

    void update_rng() {
{{tab 2 .F.UpdateRng}}    }

    void update_delay() {
{{tab 2 .F.UpdateDelay}}    }

    void update_global_ops() {
{{tab 2 .F.UpdateGlobOps}}    }

    bool stop_condition() {
{{tab 2 .F.StopCondition}}    }

    void reset() {
        init_attributes();
{{tab 2 .F.Reset}}{{tab 2 .F.ResetDelay}}    }

    size_t size_in_bytes() {
{{tab 2 .F.SizeInBytes}}    }

    void host_to_device() {
{{tab 2 .F.HostToDevice}}    }

    void device_to_host() {
{{tab 2 .F.DeviceToHost}}    }
{{tab 1 .F.DeviceToHostVar}}};
`))

var prjTmpl = template.Must(template.New("prj").Funcs(structFuncs).Parse(headerTmpl + `#include "{{.PreFile}}"
{{- if ne .PreID .PostID}}
#include "{{.PostFile}}"
{{- end}}
` + globalsTmpl + `extern PopStruct{{.PreID}} pop{{.PreID}};
{{- if ne .PreID .PostID}}
extern PopStruct{{.PostID}} pop{{.PostID}};
{{- end}}
{{with .F.Functions}}
// Local functions
{{.}}{{end}}
{{- with .F.Kernel}}
// Device kernels
{{.}}{{end}}
///////////////////////////////////////////////////////////////
// Structure for projection {{.Name}}
///////////////////////////////////////////////////////////////
struct ProjStruct{{.ID}} : {{.ReprType}} {
    ProjStruct{{.ID}}() : {{.ReprType}}({{.Args}}) {}
{{tab 1 .F.Connector}}
    bool _transmission;
    bool _plasticity;
    bool _update;
    int _update_period;
    long int _update_offset;
{{tab 1 .F.Declare}}{{tab 1 .F.Additional}}{{tab 1 .F.DeclareDelay}}{{tab 1 .F.DeclareRng}}{{tab 1 .F.DeclareSync}}{{tab 1 .F.Profile}}
    // Call after the connectivity constructor
    void init_projection() {
        _transmission = true;
        _plasticity = true;
        _update = true;
        _update_period = 1;
        _update_offset = 0L;
        init_attributes();
{{tab 2 .F.InitAdditional}}{{tab 2 .F.InitDelay}}{{tab 2 .F.InitRng}}{{tab 2 .F.InitSync}}{{tab 2 .F.InitProfile}}    }

    void init_attributes() {
{{tab 2 .F.Init}}    }

    void compute_psp() {
        if ( !_transmission || !pop{{.PreID}}._active )
            return;
{{tab 2 .F.Propagate}}    }

    void update() {
        if ( !_transmission || !_update || !_plasticity || !pop{{.PostID}}._active || ((t - _update_offset) % _update_period != 0L) )
            return;
{{tab 2 .F.Update}}    }

    void update_rng() {
{{tab 2 .F.UpdateRng}}    }

    void update_delay() {
{{tab 2 .F.UpdateDelay}}    }

    void reset() {
        init_attributes();
{{tab 2 .F.Reset}}{{tab 2 .F.ResetDelay}}    }

    size_t size_in_bytes() {
{{tab 2 .F.SizeInBytes}}    }

    void host_to_device() {
{{tab 2 .F.HostToDevice}}    }

    void device_to_host() {
{{tab 2 .F.DeviceToHost}}    }

    // Access methods
{{tab 1 .F.Access}}{{tab 1 .F.DeviceToHostVar}}};
`))

// fileName returns the unit file name of an entity.
func (gn *Generator) fileName(prefix string, id int) string {
	if gn.Cfg.GPU() {
		return prefix + itoa(id) + ".cuh"
	}
	return prefix + itoa(id) + ".hpp"
}

// markHost returns the statements flagging every synchronized attribute as
// newer on the host, after a host side reinitialization.
func markHost(plan []AttrPlan) string {
	var sb strings.Builder
	for _, ap := range plan {
		if ap.Sync {
			sb.WriteString(ap.Name + "_sync = SyncState::DirtyHost;\n")
		}
	}
	return sb.String()
}

// profile annotates the given sections of fr.
func (gn *Generator) profile(ent string, fr *Fragments, sections map[string]*string) {
	if gn.Profiler == nil {
		return
	}
	fr.Profile = gn.Profiler.Declare()
	fr.InitProfile = gn.Profiler.Init()
	for sec, code := range sections {
		*code = gn.Profiler.Annotate(ent, sec, *code)
	}
}

// render fills tp with the unit.
func (gn *Generator) render(tp *template.Template, sd *structData) (string, error) {
	var sb strings.Builder
	if err := tp.Execute(&sb, sd); err != nil {
		return "", errors.Wrapf(err, "%s %s: template", sd.Kind, sd.Name)
	}
	return sb.String(), nil
}

// Population generates the source unit of a population. Errors name the
// population and wrap the model error kinds.
func (gn *Generator) Population(pp *Population) (*Unit, error) {
	u, err := gn.population(pp)
	if err != nil {
		return nil, errors.WithMessagef(err, "population %s", pp.Nm)
	}
	return u, nil
}

func (gn *Generator) population(pp *Population) (*Unit, error) {
	if err := pp.Validate(); err != nil {
		return nil, err
	}
	ent := "PopStruct" + itoa(pp.ID)
	plan := PlanAttributes(pp.Model, false, &gn.Cfg)
	var fr Fragments
	var err error
	if fr.Declare, fr.Access, fr.Init, err = weavePopulation(pp, plan); err != nil {
		return nil, err
	}
	ix := Index{Local: "[i]", ID: pp.ID}
	fr.Init = ix.Replace(fr.Init)
	gn.popAdditional(pp, &fr)
	fr.Functions = gn.functions(pp.Model)
	if err := gn.popDelay(pp, plan, &fr); err != nil {
		return nil, err
	}
	count := func(loc model.Locality) string {
		if loc == model.Global {
			return "1"
		}
		return "size"
	}
	if err := gn.rngFragments(pp.Model.Rands, count, nil, &fr); err != nil {
		return nil, err
	}
	if err := gn.popGlobalOps(pp, plan, &fr); err != nil {
		return nil, err
	}
	fr.StopCondition = gn.popStop(pp, plan)
	syncFragments(&fr, plan, popCount)
	if gn.Cfg.GPU() {
		if fr.Kernel, fr.Update, err = gn.popKernelGPU(pp, plan); err != nil {
			return nil, err
		}
		fr.Reset += markHost(plan)
	} else {
		fr.Update = gn.popUpdateCPU(pp)
	}
	fr.SizeInBytes = popSizeCode(plan)
	gn.profile(ent, &fr, map[string]*string{
		"update":            &fr.Update,
		"update_rng":        &fr.UpdateRng,
		"update_delay":      &fr.UpdateDelay,
		"update_global_ops": &fr.UpdateGlobOps,
	})
	pp.Overrides.Apply(&fr)

	u := &Unit{
		Name:      pp.Nm,
		FileName:  gn.fileName("pop", pp.ID),
		Kind:      "population",
		ID:        pp.ID,
		Single:    true,
		Frags:     fr,
		Plan:      plan,
		SizeBytes: popBytes(pp, plan),
	}
	sd := &structData{Unit: u, F: fr, GPU: gn.Cfg.GPU(), Profiled: gn.Profiler != nil, Size: pp.Size, MaxDelay: pp.MaxDelay}
	if u.Code, err = gn.render(popTmpl, sd); err != nil {
		return nil, err
	}
	return u, nil
}

// Connect selects the representation of a projection, builds its
// connectivity and sets its delay depth: the connector delay in steps when
// uniform and non-zero, else the largest per-synapse delay. A uniform zero
// connector delay keeps the configured MaxDelay.
func (gn *Generator) Connect(pj *Projection) error {
	if err := pj.Validate(); err != nil {
		return err
	}
	sel, err := conn.SelectFormat(pj.Request(), &gn.Cfg)
	if err != nil {
		return err
	}
	rng := rand.New(rand.NewSource(gn.Cfg.RandSeed() + int64(pj.ID)))
	ll, err := pj.Connector.Build(pj.Pre.Size, pj.Post.Size, pj.Pre == pj.Post, gn.Cfg.Dt, rng)
	if err != nil {
		return err
	}
	mt, err := conn.Build(sel, ll, gn.Cfg.NumThreads)
	if err != nil {
		return err
	}
	pj.Sel, pj.Conn, pj.Matrix = sel, ll, mt
	switch {
	case !pj.UniformDelay():
		pj.MaxDelay = ll.MaxDelay()
	case pj.Connector.Delays.Mean > 0:
		pj.MaxDelay = gn.Cfg.Steps(pj.Connector.Delays.Mean)
	}
	if pj.MaxDelay < 1 {
		pj.MaxDelay = 1
	}
	if gn.Cfg.Verbose {
		if err := conn.Verify(mt, ll, pj.Post.Size, pj.Pre.Size); err != nil {
			return err
		}
		conn.LogStats(pj.Nm, mt)
	}
	return nil
}

// Projection generates the source unit of a projection, connecting it
// first if needed. Errors name the projection and wrap the model error
// kinds.
func (gn *Generator) Projection(pj *Projection) (*Unit, error) {
	u, err := gn.projection(pj)
	if err != nil {
		return nil, errors.WithMessagef(err, "projection %s", pj.Nm)
	}
	return u, nil
}

func (gn *Generator) projection(pj *Projection) (*Unit, error) {
	if pj.Matrix == nil {
		if err := gn.Connect(pj); err != nil {
			return nil, err
		}
	}
	rp := pj.Sel.Repr
	ft := gn.Cfg.FloatType()
	ent := "ProjStruct" + itoa(pj.ID)
	plan := PlanAttributes(pj.Model, pj.HasSingleWeight(&gn.Cfg), &gn.Cfg)
	ix := Index{ID: pj.ID, IDPre: pj.Pre.ID, IDPost: pj.Post.ID, Target: pj.Target}

	var fr Fragments
	var err error
	fr.Declare, fr.Access, fr.Init = weaveProjection(pj, plan, rp, ft)
	fr.Init = ix.Replace(fr.Init)
	if fr.Connector, err = gn.connectorCode(pj, rp, plan); err != nil {
		return nil, err
	}
	if err := gn.prjAdditional(pj, rp, &fr); err != nil {
		return nil, err
	}
	if gn.Cfg.GPU() {
		fr.Additional += "\n// Stream of this projection\ncudaStream_t stream;\n"
		fr.InitAdditional += "cudaStreamCreate(&stream);\n"
	}
	fr.Functions = gn.functions(pj.Model)
	if err := gn.prjDelay(pj, rp, &fr); err != nil {
		return nil, err
	}
	count := func(loc model.Locality) string {
		switch loc {
		case model.Local:
			return "nb_synapses()"
		case model.SemiGlobal:
			return "nb_dendrites()"
		}
		return "1"
	}
	if err := gn.rngFragments(pj.Model.Rands, count, &rp, &fr); err != nil {
		return nil, err
	}
	syncFragments(&fr, plan, prjCount)
	if gn.Cfg.GPU() {
		if fr.Kernel, fr.Propagate, fr.Update, err = gn.prjKernelsGPU(pj, rp, plan); err != nil {
			return nil, err
		}
		fr.Propagate = "host_to_device();\n" + fr.Propagate
		fr.Reset += markHost(plan)
	} else {
		if fr.Propagate, err = gn.prjPropagateCPU(pj, rp, plan); err != nil {
			return nil, err
		}
		if fr.Update, err = gn.prjUpdateCPU(pj, rp, plan); err != nil {
			return nil, err
		}
	}
	fr.SizeInBytes = prjSizeCode(plan, rp)
	gn.profile(ent, &fr, map[string]*string{
		"compute_psp":  &fr.Propagate,
		"update":       &fr.Update,
		"update_rng":   &fr.UpdateRng,
		"update_delay": &fr.UpdateDelay,
	})
	pj.Overrides.Apply(&fr)

	u := &Unit{
		Name:      pj.Nm,
		FileName:  gn.fileName("proj", pj.ID),
		Kind:      "projection",
		ID:        pj.ID,
		Repr:      rp,
		Single:    pj.Sel.Single,
		Frags:     fr,
		Plan:      plan,
		SizeBytes: prjBytes(pj, plan, rp),
		Matrix:    pj.Matrix,
		LIL:       pj.Conn,
	}
	sd := &structData{
		Unit:     u,
		F:        fr,
		GPU:      gn.Cfg.GPU(),
		Profiled: gn.Profiler != nil,
		MaxDelay: pj.MaxDelay,
		PreID:    pj.Pre.ID,
		PostID:   pj.Post.ID,
		PreFile:  gn.fileName("pop", pj.Pre.ID),
		PostFile: gn.fileName("pop", pj.Post.ID),
		ReprType: rp.CppType(),
		Args:     pj.Sel.Args.String(),
	}
	if u.Code, err = gn.render(prjTmpl, sd); err != nil {
		return nil, err
	}
	return u, nil
}
