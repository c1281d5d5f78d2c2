// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package gen generates the native source of one simulation step for every
population and projection of a network. For each entity it weaves attribute
declarations and accessors, delay queues, random number generation, the
update kernel and host/device transfers into named fragments, then fills
the struct template of the target paradigm with them.

Generation is a single synchronous pass driven by Network.Generate. The
netcfg.Config given to NewGenerator is copied and never changed afterwards.
*/
package gen

import (
	"math/rand"
	"strings"

	"github.com/emer/emergent/erand"
	"github.com/emer/emergent/params"
	"github.com/emer/emergent/prjn"
	"github.com/emer/netgen/conn"
	"github.com/emer/netgen/model"
	"github.com/emer/netgen/netcfg"
	"github.com/goki/ki/kit"
	"github.com/pkg/errors"
)

// EntityConfig holds the settings shared by populations and projections.
type EntityConfig struct {
	ID        int                `desc:"unique id within its entity type, used in generated names"`
	Nm        string             `desc:"name, for params selectors and error messages"`
	Cls       string             `desc:"space separated classes for params selectors"`
	Model     *model.Description `desc:"resolved neuron or synapse model"`
	MaxDelay  int                `def:"1" min:"1" desc:"delay queue depth in steps -- 1 means no delay"`
	GlobalOps []model.GlobalOp   `desc:"reductions requested by dependent entities, in order"`
	Overrides Overrides          `desc:"fragments replacing the synthesized ones"`
}

func (ec *EntityConfig) Name() string  { return ec.Nm }
func (ec *EntityConfig) Class() string { return ec.Cls }

// AddGlobalOp appends op unless already present.
func (ec *EntityConfig) AddGlobalOp(op model.GlobalOp) {
	for _, o := range ec.GlobalOps {
		if o == op {
			return
		}
	}
	ec.GlobalOps = append(ec.GlobalOps, op)
}

// Kind returns the kind of the model.
func (ec *EntityConfig) Kind() model.Kind {
	return ec.Model.Kind
}

// Population is a group of neurons sharing one neuron model.
type Population struct {
	EntityConfig
	Size        int             `min:"1" desc:"number of neurons"`
	DelayedVars []string        `desc:"local variables read with a delay by outgoing rate projections"`
	Refractory  float64         `desc:"refractory period in ms for spiking neurons, 0 for none"`
	Stop        *model.StopCond `desc:"condition ending the simulation early, nil for none"`
}

// TypeName is the params selector type, always Population.
func (pp *Population) TypeName() string { return "Population" }

// ApplyParams applies the sheet to the population. Returns true if anything was set.
func (pp *Population) ApplyParams(pars *params.Sheet, setMsg bool) (bool, error) {
	return pars.Apply(pp, setMsg)
}

// AddDelayedVar marks a local variable as read with a delay.
func (pp *Population) AddDelayedVar(name string) {
	for _, v := range pp.DelayedVars {
		if v == name {
			return
		}
	}
	pp.DelayedVars = append(pp.DelayedVars, name)
}

// HasRefractory returns true for spiking populations with a refractory period.
func (pp *Population) HasRefractory() bool {
	return pp.Kind() == model.Spike && pp.Refractory > 0
}

// Delayed returns true if the population keeps a history of its state.
func (pp *Population) Delayed() bool {
	return pp.MaxDelay > 1
}

// Validate checks the settings that generation relies on.
func (pp *Population) Validate() error {
	if pp.Model == nil {
		return errors.Errorf("population %s: nil model", pp.Nm)
	}
	if pp.Size < 1 {
		return errors.Errorf("population %s: size must be positive, got %d", pp.Nm, pp.Size)
	}
	if err := pp.Model.Validate(); err != nil {
		return err
	}
	if pp.Kind() == model.Spike && pp.Model.Spike == nil {
		return errors.Errorf("population %s: spiking model %s has no spike condition", pp.Nm, pp.Model.Name)
	}
	for _, v := range pp.DelayedVars {
		if _, ok := pp.Model.Attr(v); !ok {
			return errors.Errorf("population %s: delayed variable %s is not an attribute of %s", pp.Nm, v, pp.Model.Name)
		}
	}
	return nil
}

// ConnectorKind is the way a projection gets its connectivity.
type ConnectorKind int

//go:generate stringer -type=ConnectorKind

var KiT_ConnectorKind = kit.Enums.AddEnum(ConnectorKindN, kit.NotBitFlag, nil)

func (ev ConnectorKind) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *ConnectorKind) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

const (
	// ConnLIL initializes from an explicit list-of-lists.
	ConnLIL ConnectorKind = iota

	// ConnFixedProbability draws every pair with a fixed probability, at runtime.
	ConnFixedProbability

	// ConnFixedNumberPre draws a fixed number of pre neurons per row, at runtime.
	ConnFixedNumberPre

	// ConnPattern evaluates an emergent prjn.Pattern at generation time and
	// initializes from the resulting list-of-lists.
	ConnPattern

	ConnectorKindN
)

// Connector describes how connectivity, weights and delays are built.
type Connector struct {
	Kind      ConnectorKind
	Prob      float64         `viewif:"Kind=ConnFixedProbability" desc:"connection probability"`
	NnzPerRow int             `viewif:"Kind=ConnFixedNumberPre" desc:"number of pre neurons per post neuron"`
	AllowSelf bool            `desc:"allow connections between equal ranks"`
	Pattern   prjn.Pattern    `viewif:"Kind=ConnPattern" desc:"connectivity pattern"`
	LIL       *conn.LIL       `viewif:"Kind=ConnLIL" desc:"explicit connectivity"`
	Weights   erand.RndParams `desc:"weight distribution: Mean is a constant, Uniform and Gaussian are drawn"`
	Delays    erand.RndParams `desc:"delay distribution in ms: Mean is a constant, Uniform draws whole steps"`
}

// Runtime returns true if the emitted code draws the connectivity itself.
func (cn *Connector) Runtime() bool {
	return cn.Kind == ConnFixedProbability || cn.Kind == ConnFixedNumberPre
}

// constant returns true if rp always draws its mean. The zero value of
// erand.RndParams is a uniform with no spread, hence constant.
func constant(rp erand.RndParams) bool {
	return rp.Dist == erand.Mean || (rp.Var == 0 && (rp.Dist == erand.Uniform || rp.Dist == erand.Gaussian))
}

// ConstantWeight returns true if every synapse starts with the same weight.
func (cn *Connector) ConstantWeight() bool {
	return constant(cn.Weights)
}

// UniformDelay returns true if every synapse has the same delay.
func (cn *Connector) UniformDelay() bool {
	return constant(cn.Delays)
}

// Build returns the connectivity as a list-of-lists, weights and delays
// included. Runtime connectors are drawn from rng too, so the Go side sees
// the same structure statistics as the emitted constructor.
func (cn *Connector) Build(preSize, postSize int, same bool, dt float64, rng *rand.Rand) (*conn.LIL, error) {
	var ll *conn.LIL
	var err error
	switch cn.Kind {
	case ConnLIL:
		if cn.LIL == nil {
			return nil, errors.New("connector: nil LIL")
		}
		ll = cn.LIL
	case ConnFixedProbability:
		ll = conn.FixedProbability(ranks(postSize), ranks(preSize), cn.Prob, cn.AllowSelf || !same, rng)
	case ConnFixedNumberPre:
		ll, err = conn.FixedNumberPre(ranks(postSize), ranks(preSize), cn.NnzPerRow, cn.AllowSelf || !same, rng)
	case ConnPattern:
		if cn.Pattern == nil {
			return nil, errors.New("connector: nil pattern")
		}
		ll = conn.FromPattern(cn.Pattern, preSize, postSize, same)
	default:
		return nil, model.NotImplemented("connector %v", cn.Kind)
	}
	if err != nil {
		return nil, err
	}
	if ll.Values == nil {
		if err := conn.InitValues(ll, cn.Weights, rng); err != nil {
			return nil, err
		}
	}
	if ll.Delays == nil && !cn.UniformDelay() {
		if err := conn.InitDelays(ll, cn.Delays, dt, rng); err != nil {
			return nil, err
		}
	}
	return ll, nil
}

func ranks(n int) []int {
	rk := make([]int, n)
	for i := range rk {
		rk[i] = i
	}
	return rk
}

// Projection is a set of synapses from a pre to a post population.
type Projection struct {
	EntityConfig
	Pre           *Population
	Post          *Population
	Target        string         `desc:"post-synaptic target receiving the input, e.g. exc"`
	Format        conn.Format    `desc:"requested sparse storage format"`
	Order         conn.Order     `desc:"storage order"`
	NoSplitMatrix bool           `desc:"keep one matrix when running multi-threaded"`
	SingleWeight  bool           `desc:"all synapses share one constant weight"`
	Connector     Connector
	Matrix        conn.Matrix    `view:"-" desc:"connectivity built by the last generation pass"`
	Conn          *conn.LIL      `view:"-" desc:"list-of-lists Matrix was built from, with weights and delays"`
	Sel           conn.Selection `view:"-" desc:"representation selected by the last generation pass"`
}

// TypeName is the params selector type, always Projection.
func (pj *Projection) TypeName() string { return "Projection" }

// ApplyParams applies the sheet to the projection. Returns true if anything was set.
func (pj *Projection) ApplyParams(pars *params.Sheet, setMsg bool) (bool, error) {
	return pars.Apply(pj, setMsg)
}

// Plastic returns true if any synaptic variable has an update equation.
func (pj *Projection) Plastic() bool {
	for _, vr := range pj.Model.Vars {
		if vr.HasEq() {
			return true
		}
	}
	return false
}

// HasSingleWeight returns true if w is generated as one scalar: a constant
// shared weight that nothing updates, on CPU without structural plasticity.
func (pj *Projection) HasSingleWeight(cf *netcfg.Config) bool {
	return pj.SingleWeight && pj.Connector.ConstantWeight() && !pj.Plastic() && !cf.StructuralPlasticity && !cf.GPU()
}

// UniformDelay returns true if all synapses share one delay. Explicit
// per-synapse delays of a LIL connector count as non-uniform.
func (pj *Projection) UniformDelay() bool {
	if pj.Connector.Kind == ConnLIL && pj.Connector.LIL != nil && pj.Connector.LIL.Delays != nil {
		return false
	}
	return pj.Connector.UniformDelay()
}

// Request returns the format selection request.
func (pj *Projection) Request() conn.Request {
	return conn.Request{
		Name:          pj.Nm,
		Kind:          pj.Kind(),
		Format:        pj.Format,
		Order:         pj.Order,
		NoSplitMatrix: pj.NoSplitMatrix,
		PostSize:      pj.Post.Size,
		PreSize:       pj.Pre.Size,
	}
}

// PreVars returns the pre-synaptic variables read by the PSP expression.
func (pj *Projection) PreVars() []string {
	var vars []string
	psp := pj.Model.PSPExpr()
	for _, vr := range pj.Pre.Model.Attributes() {
		if strings.Contains(psp, "pop{id_pre}."+vr.Name+"{pre_index}") {
			vars = append(vars, vr.Name)
		}
	}
	return vars
}

// Validate checks the settings that generation relies on.
func (pj *Projection) Validate() error {
	if pj.Model == nil || pj.Pre == nil || pj.Post == nil || pj.Pre.Model == nil || pj.Post.Model == nil {
		return errors.Errorf("projection %s: model, pre and post with their models must be set", pj.Nm)
	}
	if err := pj.Model.Validate(); err != nil {
		return err
	}
	if pj.Model.Kind != pj.Pre.Kind() && pj.Model.Kind == model.Spike {
		return errors.Errorf("projection %s: spiking synapse %s needs a spiking pre population, %s is %v", pj.Nm, pj.Model.Name, pj.Pre.Nm, pj.Pre.Kind())
	}
	if pj.Target == "" {
		return errors.Errorf("projection %s: empty target", pj.Nm)
	}
	return nil
}
