// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gen

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/c2h5oh/datasize"
	"github.com/emer/emergent/params"
	"github.com/emer/netgen/model"
	"github.com/emer/netgen/netcfg"
	"github.com/pkg/errors"
)

// EntityErrors collects the failures of a generation pass, one per entity.
type EntityErrors []error

func (ee EntityErrors) Error() string {
	msgs := make([]string, len(ee))
	for i, err := range ee {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("%d entities failed: %s", len(ee), strings.Join(msgs, "; "))
}

// Unwrap returns the entity errors, so errors.Is matches any of them.
func (ee EntityErrors) Unwrap() []error {
	return ee
}

// Network is the set of populations and projections generated together.
type Network struct {
	Nm    string
	Gen   *Generator
	Pops  []*Population
	Prjns []*Projection
	Units []*Unit `desc:"units of the last Generate, populations first"`
}

// NewNetwork returns an empty network generated with cfg.
func NewNetwork(name string, cfg netcfg.Config) (*Network, error) {
	gn, err := NewGenerator(cfg)
	if err != nil {
		return nil, err
	}
	return &Network{Nm: name, Gen: gn}, nil
}

// AddPopulation adds a population of size neurons of model desc.
func (nt *Network) AddPopulation(name string, size int, desc *model.Description) *Population {
	pp := &Population{Size: size}
	pp.ID = len(nt.Pops)
	pp.Nm = name
	pp.Model = desc
	pp.MaxDelay = 1
	nt.Pops = append(nt.Pops, pp)
	return pp
}

// ConnectPopulations adds a projection from pre to post on target, with
// synapse model desc and connector cn. Connectivity is built by Generate.
func (nt *Network) ConnectPopulations(pre, post *Population, target string, desc *model.Description, cn Connector) *Projection {
	pj := &Projection{Pre: pre, Post: post, Target: target, Connector: cn}
	pj.ID = len(nt.Prjns)
	pj.Nm = pre.Nm + "To" + post.Nm
	pj.Model = desc
	pj.MaxDelay = 1
	nt.Prjns = append(nt.Prjns, pj)
	return pj
}

// PopByName returns the population of given name, nil if not found.
func (nt *Network) PopByName(name string) *Population {
	for _, pp := range nt.Pops {
		if pp.Nm == name {
			return pp
		}
	}
	return nil
}

// PopByNameTry returns the population of given name, or an error.
func (nt *Network) PopByNameTry(name string) (*Population, error) {
	pp := nt.PopByName(name)
	if pp == nil {
		return nil, errors.Errorf("network %s: population %s not found", nt.Nm, name)
	}
	return pp, nil
}

// PrjnByName returns the projection of given name, nil if not found.
func (nt *Network) PrjnByName(name string) *Projection {
	for _, pj := range nt.Prjns {
		if pj.Nm == name {
			return pj
		}
	}
	return nil
}

// ApplyParams applies the sheet to every population and projection.
// Returns true if anything was set, and the last error.
func (nt *Network) ApplyParams(pars *params.Sheet, setMsg bool) (bool, error) {
	applied := false
	var rerr error
	for _, pp := range nt.Pops {
		app, err := pp.ApplyParams(pars, setMsg)
		if app {
			applied = true
		}
		if err != nil {
			rerr = err
		}
	}
	for _, pj := range nt.Prjns {
		app, err := pj.ApplyParams(pars, setMsg)
		if app {
			applied = true
		}
		if err != nil {
			rerr = err
		}
	}
	return applied, rerr
}

// eqText returns every expression of a description, for reference scans.
func eqText(desc *model.Description) string {
	var sb strings.Builder
	for _, lst := range [][]model.Variable{desc.Params, desc.Vars} {
		for _, vr := range lst {
			sb.WriteString(vr.Eq + "\n" + vr.Min + "\n" + vr.Max + "\n")
		}
	}
	sb.WriteString(desc.PSP + "\n")
	for _, eq := range desc.PreSpike {
		sb.WriteString(eq.Code + "\n")
	}
	if desc.Spike != nil {
		sb.WriteString(desc.Spike.Cond + "\n")
		for _, eq := range desc.Spike.Reset {
			sb.WriteString(eq.Code + "\n")
		}
	}
	sb.WriteString(desc.Pruning + "\n" + desc.Creating + "\n")
	return sb.String()
}

// scanGlobalOps requests on pp the reductions that code reads through
// prefix.
func scanGlobalOps(code, prefix string, pp *Population) {
	if pp.Model == nil {
		return
	}
	for _, vr := range pp.Model.Attributes() {
		if vr.Locality != model.Local {
			continue
		}
		for fn := model.GlobalOpFun(0); fn < model.GlobalOpFunN; fn++ {
			op := model.GlobalOp{Fun: fn, Var: vr.Name}
			if hasRef(code, prefix+op.Member()) {
				pp.AddGlobalOp(op)
			}
		}
	}
}

// prepare connects every projection and derives what the populations need
// from them: delay depth, delayed variables and global operations.
// Projections failing to connect are returned in errs and skipped later.
func (nt *Network) prepare() (failed map[*Projection]bool, errs EntityErrors) {
	failed = map[*Projection]bool{}
	for _, pp := range nt.Pops {
		if pp.Model != nil {
			scanGlobalOps(eqText(pp.Model), "", pp)
		}
	}
	for _, pj := range nt.Prjns {
		if err := nt.Gen.Connect(pj); err != nil {
			failed[pj] = true
			errs = append(errs, errors.WithMessagef(err, "projection %s", pj.Nm))
			continue
		}
		code := eqText(pj.Model)
		scanGlobalOps(code, "pop{id_pre}.", pj.Pre)
		scanGlobalOps(code, "pop{id_post}.", pj.Post)
		if pj.MaxDelay <= 1 {
			continue
		}
		if pj.Kind() == model.Rate {
			for _, v := range pj.PreVars() {
				pj.Pre.AddDelayedVar(v)
			}
		}
		if pj.Kind() == model.Rate || pj.UniformDelay() {
			if pj.MaxDelay > pj.Pre.MaxDelay {
				pj.Pre.MaxDelay = pj.MaxDelay
			}
		}
	}
	return
}

// Generate connects every projection, then generates all populations and
// all projections. Entities that fail are skipped and reported together in
// an EntityErrors; the others are in Units.
func (nt *Network) Generate() error {
	nt.Units = nil
	failed, errs := nt.prepare()
	for _, pp := range nt.Pops {
		u, err := nt.Gen.Population(pp)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		nt.Units = append(nt.Units, u)
	}
	for _, pj := range nt.Prjns {
		if failed[pj] {
			continue
		}
		u, err := nt.Gen.Projection(pj)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		nt.Units = append(nt.Units, u)
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// WriteUnits writes every unit of the last Generate into dir, creating it
// if needed.
func (nt *Network) WriteUnits(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, "network %s", nt.Nm)
	}
	for _, u := range nt.Units {
		fn := filepath.Join(dir, u.FileName)
		if err := os.WriteFile(fn, []byte(u.Code), 0644); err != nil {
			return errors.Wrapf(err, "network %s: %s %s", nt.Nm, u.Kind, u.Name)
		}
	}
	return nil
}

// SizeReport returns a listing of the estimated host memory per unit.
func (nt *Network) SizeReport() string {
	var b strings.Builder
	var neur, neurMem, syn, synMem int64
	for _, u := range nt.Units {
		if u.Kind == "population" {
			n := int64(nt.Pops[u.ID].Size)
			neur += n
			neurMem += u.SizeBytes
			fmt.Fprintf(&b, "%14s:\t Neurons: %d\t Mem: %v\n", u.Name, n, datasize.ByteSize(u.SizeBytes).HumanReadable())
			continue
		}
		n := int64(0)
		if u.Matrix != nil {
			n = int64(u.Matrix.NbSynapses())
		}
		syn += n
		synMem += u.SizeBytes
		fmt.Fprintf(&b, "%14s:\t Syns: %d\t Mem: %v\t %s\n", u.Name, n, datasize.ByteSize(u.SizeBytes).HumanReadable(), u.Repr.CppType())
	}
	fmt.Fprintf(&b, "\n%14s:\t Neurons: %d\t NeurMem: %v \t Syns: %d \t SynMem: %v\n", nt.Nm, neur, datasize.ByteSize(neurMem).HumanReadable(), syn, datasize.ByteSize(synMem).HumanReadable())
	return b.String()
}
