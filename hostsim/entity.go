// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package hostsim is an executable host-side model of the containers the
generated structs hold: attribute vectors in the layout given by a
gen.AttrPlan, their synchronization state on GPU targets, and the delay
queues. It lets the runtime behavior of generated accessors be checked
without compiling the emitted code.
*/
package hostsim

import (
	"strconv"
	"strings"

	"github.com/chewxy/math32"
	"github.com/emer/netgen/conn"
	"github.com/emer/netgen/gen"
	"github.com/emer/netgen/model"
	"github.com/goki/ki/kit"
	"github.com/pkg/errors"
)

// SyncState tells which copy of a variable is the newer one.
type SyncState int

//go:generate stringer -type=SyncState

var KiT_SyncState = kit.Enums.AddEnum(SyncStateN, kit.NotBitFlag, nil)

func (ev SyncState) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *SyncState) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

const (
	// Clean means host and device hold the same values.
	Clean SyncState = iota

	// DirtyHost means the host copy was written since the last transfer.
	DirtyHost

	// DirtyDevice means a kernel wrote the device copy since the last transfer.
	DirtyDevice

	SyncStateN
)

// Attr is one attribute with its host values and, on GPU, its device copy.
type Attr struct {
	Plan gen.AttrPlan
	Vals []float64 `desc:"host values: one per neuron or synapse for local, per row for semiglobal, one for global"`
	Dev  []float64 `desc:"device values, nil on CPU"`
	Sync SyncState
}

// round applies the precision of the attribute type.
func (at *Attr) round(v float64) float64 {
	if at.Plan.CType == "float" {
		return float64(float32(v))
	}
	return v
}

// Entity is a population or projection.
type Entity struct {
	Nm      string
	GPU     bool
	Size    int         `desc:"number of local elements: neurons or synapses"`
	Rows    int         `desc:"number of rows, equal to Size for populations"`
	Matrix  conn.Matrix `desc:"connectivity, nil for populations"`
	Attrs   []*Attr
	Delayed map[string]*DelayQueue[[]float64] `desc:"history of delayed local variables"`
	rowOff  []int
	byName  map[string]*Attr
}

// parseInit returns the numeric value of an initial value expression.
func parseInit(s string) (float64, error) {
	s = strings.TrimSpace(s)
	switch s {
	case "true":
		return 1, nil
	case "false":
		return 0, nil
	}
	s = strings.TrimSuffix(strings.TrimSuffix(s, "f"), "L")
	return strconv.ParseFloat(s, 64)
}

func newEntity(name string, plan []gen.AttrPlan, size, rows int, gpu bool) (*Entity, error) {
	en := &Entity{Nm: name, GPU: gpu, Size: size, Rows: rows, byName: map[string]*Attr{}}
	for _, ap := range plan {
		n := 1
		switch ap.Locality {
		case model.Local:
			n = size
		case model.SemiGlobal:
			n = rows
		}
		iv, err := parseInit(ap.Init)
		if err != nil {
			return nil, errors.Wrapf(err, "%s: initial value of %s", name, ap.Name)
		}
		at := &Attr{Plan: ap, Vals: make([]float64, n)}
		for i := range at.Vals {
			at.Vals[i] = at.round(iv)
		}
		if gpu && ap.Sync {
			at.Dev = append([]float64(nil), at.Vals...)
		}
		en.Attrs = append(en.Attrs, at)
		en.byName[ap.Name] = at
	}
	return en, nil
}

// NewPopulation returns a population of size neurons with the attributes
// of plan at their initial values.
func NewPopulation(plan []gen.AttrPlan, size int, gpu bool) (*Entity, error) {
	if size < 1 {
		return nil, errors.Errorf("hostsim: population size must be positive, got %d", size)
	}
	return newEntity("population", plan, size, size, gpu)
}

// NewProjection returns a projection over the synapses of mt, local
// attributes stored in row order. w is initialized from the connectivity
// weights when it carries them, like the connector constructor does,
// whatever the storage format.
func NewProjection(plan []gen.AttrPlan, mt conn.Matrix, gpu bool) (*Entity, error) {
	if mt == nil {
		return nil, errors.New("hostsim: nil connectivity")
	}
	en, err := newEntity("projection", plan, mt.NbSynapses(), mt.NbRows(), gpu)
	if err != nil {
		return nil, err
	}
	en.Matrix = mt
	en.rowOff = make([]int, mt.NbRows()+1)
	for i := 0; i < mt.NbRows(); i++ {
		en.rowOff[i+1] = en.rowOff[i] + len(mt.Row(i))
	}
	w := en.byName["w"]
	if w == nil {
		return en, nil
	}
	for i := 0; i < mt.NbRows(); i++ {
		vals := mt.RowValues(i)
		if len(vals) == 0 {
			continue
		}
		if w.Plan.Locality == model.Global {
			w.Vals[0] = w.round(vals[0])
			break
		}
		for j, v := range vals {
			w.Vals[en.rowOff[i]+j] = w.round(v)
		}
	}
	if w.Dev != nil {
		copy(w.Dev, w.Vals)
	}
	return en, nil
}

// AttrTry returns the attribute of given name, or an error.
func (en *Entity) AttrTry(name string) (*Attr, error) {
	at, ok := en.byName[name]
	if !ok {
		return nil, errors.Errorf("%s: attribute %s not found", en.Nm, name)
	}
	return at, nil
}

// attrOf returns the attribute if it has one of the given localities.
func (en *Entity) attrOf(name string, locs ...model.Locality) (*Attr, error) {
	at, err := en.AttrTry(name)
	if err != nil {
		return nil, err
	}
	for _, l := range locs {
		if at.Plan.Locality == l {
			return at, nil
		}
	}
	return nil, errors.Errorf("%s: attribute %s is %v", en.Nm, name, at.Plan.Locality)
}

// fetch copies a newer device value back, as device_to_host_<v>() does.
func (en *Entity) fetch(at *Attr) {
	if at.Sync == DirtyDevice {
		copy(at.Vals, at.Dev)
		at.Sync = Clean
	}
}

// touch marks a host write.
func (at *Attr) touch() {
	if at.Dev != nil {
		at.Sync = DirtyHost
	}
}

// GetAll returns a copy of every value of a local or semiglobal attribute.
func (en *Entity) GetAll(name string) ([]float64, error) {
	at, err := en.attrOf(name, model.Local, model.SemiGlobal)
	if err != nil {
		return nil, err
	}
	en.fetch(at)
	return append([]float64(nil), at.Vals...), nil
}

// GetOne returns the value of a local attribute at a neuron or flat
// synapse rank, or of a semiglobal attribute at a row.
func (en *Entity) GetOne(name string, rank int) (float64, error) {
	at, err := en.attrOf(name, model.Local, model.SemiGlobal)
	if err != nil {
		return 0, err
	}
	if rank < 0 || rank >= len(at.Vals) {
		return 0, errors.Errorf("%s: %s rank %d out of range [0, %d)", en.Nm, name, rank, len(at.Vals))
	}
	en.fetch(at)
	return at.Vals[rank], nil
}

// SetAll sets every value of a local or semiglobal attribute.
func (en *Entity) SetAll(name string, vals []float64) error {
	at, err := en.attrOf(name, model.Local, model.SemiGlobal)
	if err != nil {
		return err
	}
	if len(vals) != len(at.Vals) {
		return errors.Errorf("%s: %s has %d values, got %d", en.Nm, name, len(at.Vals), len(vals))
	}
	for i, v := range vals {
		at.Vals[i] = at.round(v)
	}
	at.touch()
	return nil
}

// SetOne sets one value of a local or semiglobal attribute. The device
// copy is fetched first, so the other values are not lost.
func (en *Entity) SetOne(name string, rank int, v float64) error {
	at, err := en.attrOf(name, model.Local, model.SemiGlobal)
	if err != nil {
		return err
	}
	if rank < 0 || rank >= len(at.Vals) {
		return errors.Errorf("%s: %s rank %d out of range [0, %d)", en.Nm, name, rank, len(at.Vals))
	}
	en.fetch(at)
	at.Vals[rank] = at.round(v)
	at.touch()
	return nil
}

// rowRange returns the flat synapse range of row i of a projection.
func (en *Entity) rowRange(i int) (int, int, error) {
	if en.Matrix == nil {
		return 0, 0, errors.Errorf("%s: rows are only defined for projections", en.Nm)
	}
	if i < 0 || i >= en.Rows {
		return 0, 0, errors.Errorf("%s: row %d out of range [0, %d)", en.Nm, i, en.Rows)
	}
	return en.rowOff[i], en.rowOff[i+1], nil
}

// GetRow returns the values of a local synaptic attribute in row i.
func (en *Entity) GetRow(name string, i int) ([]float64, error) {
	at, err := en.attrOf(name, model.Local)
	if err != nil {
		return nil, err
	}
	st, ed, err := en.rowRange(i)
	if err != nil {
		return nil, err
	}
	en.fetch(at)
	return append([]float64(nil), at.Vals[st:ed]...), nil
}

// SetRow sets the values of a local synaptic attribute in row i.
func (en *Entity) SetRow(name string, i int, vals []float64) error {
	at, err := en.attrOf(name, model.Local)
	if err != nil {
		return err
	}
	st, ed, err := en.rowRange(i)
	if err != nil {
		return err
	}
	if len(vals) != ed-st {
		return errors.Errorf("%s: row %d of %s has %d values, got %d", en.Nm, i, name, ed-st, len(vals))
	}
	en.fetch(at)
	for k, v := range vals {
		at.Vals[st+k] = at.round(v)
	}
	at.touch()
	return nil
}

// SynIdx returns the flat rank of the synapse from pre to post, -1 if none.
// Rows are pre ranks for pre-ordered matrices.
func (en *Entity) SynIdx(post, pre int) int {
	if en.Matrix == nil {
		return -1
	}
	row, col := post, pre
	if conn.PreOrdered(en.Matrix) {
		row, col = pre, post
	}
	for i, rk := range en.Matrix.PostRanks() {
		if rk != row {
			continue
		}
		for j, r := range en.Matrix.Row(i) {
			if r == col {
				return en.rowOff[i] + j
			}
		}
		return -1
	}
	return -1
}

// SynapseTry returns the value of a synaptic attribute for the synapse
// from pre to post. Global attributes, like a single weight, are returned
// for any existing synapse.
func (en *Entity) SynapseTry(name string, post, pre int) (float64, error) {
	at, err := en.AttrTry(name)
	if err != nil {
		return 0, err
	}
	idx := en.SynIdx(post, pre)
	if idx < 0 {
		return 0, errors.Errorf("%s: no synapse from %d to %d", en.Nm, pre, post)
	}
	en.fetch(at)
	switch at.Plan.Locality {
	case model.Local:
		return at.Vals[idx], nil
	case model.SemiGlobal:
		for i := range en.rowOff[:en.Rows] {
			if idx < en.rowOff[i+1] {
				return at.Vals[i], nil
			}
		}
	}
	return at.Vals[0], nil
}

// Synapse returns the value of a synaptic attribute for the synapse from
// pre to post, NaN if the attribute or synapse does not exist.
func (en *Entity) Synapse(name string, post, pre int) float32 {
	v, err := en.SynapseTry(name, post, pre)
	if err != nil {
		return math32.NaN()
	}
	return float32(v)
}

// Get returns the value of a global attribute.
func (en *Entity) Get(name string) (float64, error) {
	at, err := en.attrOf(name, model.Global)
	if err != nil {
		return 0, err
	}
	en.fetch(at)
	return at.Vals[0], nil
}

// Set sets the value of a global attribute.
func (en *Entity) Set(name string, v float64) error {
	at, err := en.attrOf(name, model.Global)
	if err != nil {
		return err
	}
	at.Vals[0] = at.round(v)
	at.touch()
	return nil
}

// State returns the synchronization state of an attribute.
func (en *Entity) State(name string) (SyncState, error) {
	at, err := en.AttrTry(name)
	if err != nil {
		return Clean, err
	}
	return at.Sync, nil
}

// Device returns the device copy of an attribute, for kernels to write.
// Call KernelWrote afterwards.
func (en *Entity) Device(name string) ([]float64, error) {
	at, err := en.AttrTry(name)
	if err != nil {
		return nil, err
	}
	if at.Dev == nil {
		return nil, errors.Errorf("%s: %s has no device copy", en.Nm, name)
	}
	return at.Dev, nil
}

// KernelWrote marks the device copies of the named attributes as newer,
// as the update launch does for every attribute its equations write.
// On CPU it does nothing.
func (en *Entity) KernelWrote(names ...string) error {
	for _, nm := range names {
		at, err := en.AttrTry(nm)
		if err != nil {
			return err
		}
		if at.Dev != nil {
			at.Sync = DirtyDevice
		}
	}
	return nil
}

// HostToDevice copies every attribute written on the host since the last
// transfer. Returns the number of attributes copied.
func (en *Entity) HostToDevice() int {
	n := 0
	for _, at := range en.Attrs {
		if at.Sync != DirtyHost {
			continue
		}
		copy(at.Dev, at.Vals)
		at.Sync = Clean
		n++
	}
	return n
}

// DeviceToHost copies every attribute written by a kernel since the last
// transfer. Returns the number of attributes copied.
func (en *Entity) DeviceToHost() int {
	n := 0
	for _, at := range en.Attrs {
		if at.Sync != DirtyDevice {
			continue
		}
		en.fetch(at)
		n++
	}
	return n
}

// Reset sets every attribute back to its initial value. On GPU the host
// copy becomes the newer one.
func (en *Entity) Reset() error {
	for _, at := range en.Attrs {
		iv, err := parseInit(at.Plan.Init)
		if err != nil {
			return errors.Wrapf(err, "%s: initial value of %s", en.Nm, at.Plan.Name)
		}
		for i := range at.Vals {
			at.Vals[i] = at.round(iv)
		}
		at.touch()
	}
	for nm, dq := range en.Delayed {
		at := en.byName[nm]
		dq.Fill(func() []float64 { return append([]float64(nil), at.Vals...) })
	}
	return nil
}

// AddDelay keeps a history of depth steps of a local variable, every slot
// starting at the current values.
func (en *Entity) AddDelay(name string, depth int) error {
	at, err := en.attrOf(name, model.Local)
	if err != nil {
		return err
	}
	dq, err := NewDelayQueue(depth, []float64(nil))
	if err != nil {
		return errors.WithMessagef(err, "%s: delay of %s", en.Nm, name)
	}
	dq.Fill(func() []float64 { return append([]float64(nil), at.Vals...) })
	if en.Delayed == nil {
		en.Delayed = map[string]*DelayQueue[[]float64]{}
	}
	en.Delayed[name] = dq
	return nil
}

// UpdateDelay pushes a copy of the current values of every delayed
// variable, dropping the oldest.
func (en *Entity) UpdateDelay() {
	for nm, dq := range en.Delayed {
		at := en.byName[nm]
		en.fetch(at)
		dq.Push(append([]float64(nil), at.Vals...))
	}
}

// DelayedTry returns the value of a delayed variable at rank, as read
// delay steps ago. delay 1 is the last pushed state.
func (en *Entity) DelayedTry(name string, delay, rank int) (float64, error) {
	dq, ok := en.Delayed[name]
	if !ok {
		return 0, errors.Errorf("%s: %s is not delayed", en.Nm, name)
	}
	vals, err := dq.AtTry(delay - 1)
	if err != nil {
		return 0, errors.WithMessagef(err, "%s: %s", en.Nm, name)
	}
	if rank < 0 || rank >= len(vals) {
		return 0, errors.Errorf("%s: %s rank %d out of range [0, %d)", en.Nm, name, rank, len(vals))
	}
	return vals[rank], nil
}
