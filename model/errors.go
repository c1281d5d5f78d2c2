// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package model

import "github.com/pkg/errors"

// Error kinds shared by the selector, the connectivity builder and the
// code generator. Test for them with errors.Is.
var (
	// ErrUnsupportedCombination: no implementation is registered for the
	// requested combination of format, paradigm, model kind and storage order.
	ErrUnsupportedCombination = errors.New("unsupported combination")

	// ErrInvariantViolation: derived data disagrees with the data it was
	// derived from, e.g. forward and inverse synapse counts.
	ErrInvariantViolation = errors.New("invariant violation")

	// ErrNotImplemented: a locality, connector or distribution path that has
	// no code generation yet.
	ErrNotImplemented = errors.New("not implemented")
)

// Unsupported returns an ErrUnsupportedCombination naming the combination.
func Unsupported(format string, args ...interface{}) error {
	return errors.Wrapf(ErrUnsupportedCombination, format, args...)
}

// Invariant returns an ErrInvariantViolation with the given details.
func Invariant(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvariantViolation, format, args...)
}

// NotImplemented returns an ErrNotImplemented for the given path.
func NotImplemented(format string, args ...interface{}) error {
	return errors.Wrapf(ErrNotImplemented, format, args...)
}
