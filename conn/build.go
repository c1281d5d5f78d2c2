// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package conn

import (
	"log"

	"github.com/emer/etable/minmax"
	"github.com/emer/netgen/model"
	"github.com/pkg/errors"
)

// LILInv is a LIL with the pre-indexed inverse used by spiking synapses.
type LILInv struct {
	*LIL
	Fwd *CSR `desc:"flattened view carrying the inverse"`
}

// Inverse returns the pre-indexed view.
func (li *LILInv) Inverse() *Inverse {
	return li.Fwd.Inv
}

// Build converts a LIL into the representation family of the selection.
// Representations that deliver spikes get their inverse computed here, so
// a corrupted connectivity is reported before any code is emitted.
func Build(sel Selection, lil *LIL, threads int) (Matrix, error) {
	if err := lil.Validate(sel.Args.PostSize, sel.Args.PreSize); err != nil {
		return nil, err
	}
	rp := sel.Repr
	if rp < 0 || rp >= ReprN {
		return nil, errors.Errorf("conn: invalid representation %d", rp)
	}
	switch rp.Format() {
	case FormatLIL:
		if !rp.Inverse() {
			return lil, nil
		}
		fwd := lil.ToCSR()
		if err := fwd.ComputeInverse(sel.Args.PreSize); err != nil {
			return nil, err
		}
		if rp.Sliced() {
			sl := lil.Slice(threads)
			sl.Fwd = fwd
			return sl, nil
		}
		return &LILInv{LIL: lil, Fwd: fwd}, nil
	case FormatCSR:
		src := lil
		n := sel.Args.PreSize
		if rp.PreRows() {
			src = lil.Transpose()
			n = sel.Args.PostSize
		}
		cs := src.ToCSR()
		cs.PreRows = rp.PreRows()
		if rp.Inverse() {
			if err := cs.ComputeInverse(n); err != nil {
				return nil, err
			}
		}
		return cs, nil
	case FormatCOO:
		return lil.ToCOO(), nil
	case FormatELL:
		return lil.ToELL(), nil
	case FormatHYB:
		return lil.ToHYB(), nil
	}
	return nil, model.NotImplemented("conn: no builder for %v (%v)", rp, rp.Format())
}

// Stats returns the average and maximum number of synapses per row.
func Stats(mt Matrix) minmax.AvgMax32 {
	var am minmax.AvgMax32
	am.Init()
	for i := 0; i < mt.NbRows(); i++ {
		am.UpdateVal(float32(len(mt.Row(i))), i)
	}
	am.CalcAvg()
	return am
}

// LogStats logs the row length statistics of a projection.
func LogStats(name string, mt Matrix) {
	am := Stats(mt)
	log.Printf("%s: %v with %d rows, %d synapses, synapses per row avg %g max %g\n", name, mt.Format(), mt.NbRows(), mt.NbSynapses(), am.Avg, am.Max)
}
