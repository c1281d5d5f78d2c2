// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package conn

import "github.com/goki/ki/kit"

// Format is the sparse storage format requested for a projection.
type Format int

//go:generate stringer -type=Format

var KiT_Format = kit.Enums.AddEnum(FormatN, kit.NotBitFlag, nil)

func (ev Format) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *Format) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

const (
	// FormatLIL is list-of-lists: one list of pre ranks per post row.
	FormatLIL Format = iota

	// FormatCSR is compressed sparse row.
	FormatCSR

	// FormatCOO is coordinate: one (row, column) pair per synapse.
	FormatCOO

	// FormatELL is padded-ragged: every row padded to the longest row.
	FormatELL

	// FormatHYB is hybrid: an ELL part of fixed width plus a COO remainder.
	FormatHYB

	FormatN
)

// Order is the storage order of a projection.
type Order int

//go:generate stringer -type=Order

var KiT_Order = kit.Enums.AddEnum(OrderN, kit.NotBitFlag, nil)

func (ev Order) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *Order) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

const (
	// PostToPre stores rows per post-synaptic neuron.
	PostToPre Order = iota

	// PreToPost stores rows per pre-synaptic neuron.
	PreToPost

	OrderN
)

// Threads restricts a selection rule to single- or multi-threaded CPU code.
type Threads int

//go:generate stringer -type=Threads

var KiT_Threads = kit.Enums.AddEnum(ThreadsN, kit.NotBitFlag, nil)

const (
	AnyThreads Threads = iota
	SingleThread
	MultiThread
	ThreadsN
)

// Split restricts a selection rule by the no_split_matrix flag.
type Split int

//go:generate stringer -type=Split

var KiT_Split = kit.Enums.AddEnum(SplitN, kit.NotBitFlag, nil)

const (
	AnySplit Split = iota
	SplitMatrix
	NoSplit
	SplitN
)

// Repr is a concrete connectivity representation, one per C++ class of the
// runtime library.
type Repr int

//go:generate stringer -type=Repr

var KiT_Repr = kit.Enums.AddEnum(ReprN, kit.NotBitFlag, nil)

func (ev Repr) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *Repr) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

const (
	LILMatrix Repr = iota
	LILMatrixCUDA
	COOMatrix
	COOMatrixCUDA
	CSRMatrix
	CSRMatrixCUDA
	ELLMatrix
	HYBMatrix
	LILInvMatrix
	ParallelLIL
	LILInvMatrixCUDA
	CSRCMatrix
	CSRCMatrixT
	CSRCMatrixTOMP
	CSRCMatrixCUDA
	ReprN
)

type reprInfo struct {
	cpp     string
	format  Format
	gpu     bool
	inverse bool
	sliced  bool
	preRows bool
}

var reprInfos = [...]reprInfo{
	LILMatrix:        {cpp: "LILMatrix<int>", format: FormatLIL},
	LILMatrixCUDA:    {cpp: "LILMatrixCUDA<int>", format: FormatLIL, gpu: true},
	COOMatrix:        {cpp: "COOMatrix<int>", format: FormatCOO},
	COOMatrixCUDA:    {cpp: "COOMatrixCUDA", format: FormatCOO, gpu: true},
	CSRMatrix:        {cpp: "CSRMatrix<int>", format: FormatCSR},
	CSRMatrixCUDA:    {cpp: "CSRMatrixCUDA", format: FormatCSR, gpu: true},
	ELLMatrix:        {cpp: "ELLMatrix<int>", format: FormatELL},
	HYBMatrix:        {cpp: "HYBMatrix<int, true>", format: FormatHYB},
	LILInvMatrix:     {cpp: "LILInvMatrix<int>", format: FormatLIL, inverse: true},
	ParallelLIL:      {cpp: "ParallelLIL<LILInvMatrix<int>, int>", format: FormatLIL, inverse: true, sliced: true},
	LILInvMatrixCUDA: {cpp: "LILInvMatrixCUDA<int>", format: FormatLIL, gpu: true, inverse: true},
	CSRCMatrix:       {cpp: "CSRCMatrix<int>", format: FormatCSR, inverse: true},
	CSRCMatrixT:      {cpp: "CSRCMatrixT<int>", format: FormatCSR, inverse: true, preRows: true},
	CSRCMatrixTOMP:   {cpp: "CSRCMatrixTOMP<int>", format: FormatCSR, inverse: true, preRows: true, sliced: true},
	CSRCMatrixCUDA:   {cpp: "CSRCMatrixCUDA<int>", format: FormatCSR, gpu: true, inverse: true},
}

// a Repr added without a reprInfos entry fails to compile here
var _ = [1]struct{}{}[len(reprInfos)-int(ReprN)]

// CppType returns the C++ class the generated struct derives from.
func (rp Repr) CppType() string {
	return reprInfos[rp].cpp
}

// Format returns the storage format family of the representation.
func (rp Repr) Format() Format {
	return reprInfos[rp].format
}

// GPU returns true for device representations.
func (rp Repr) GPU() bool {
	return reprInfos[rp].gpu
}

// Inverse returns true if the representation keeps a pre-indexed view for
// spike delivery.
func (rp Repr) Inverse() bool {
	return reprInfos[rp].inverse
}

// Sliced returns true if the representation splits rows over threads.
func (rp Repr) Sliced() bool {
	return reprInfos[rp].sliced
}

// PreRows returns true if rows are indexed by pre-synaptic rank.
func (rp Repr) PreRows() bool {
	return reprInfos[rp].preRows
}
