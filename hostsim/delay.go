// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hostsim

import (
	"github.com/pkg/errors"
)

// DelayQueue is a fixed depth history, newest slot at the front. Push is
// the CPU form, copying the new state in and dropping the oldest. Rotate
// is the GPU form, moving the oldest buffer handle to the front to be
// overwritten in place.
type DelayQueue[T any] struct {
	slots []T
}

// NewDelayQueue returns a queue of depth slots, all set to init.
func NewDelayQueue[T any](depth int, init T) (*DelayQueue[T], error) {
	if depth < 1 {
		return nil, errors.Errorf("hostsim: delay queue depth must be at least 1, got %d", depth)
	}
	dq := &DelayQueue[T]{slots: make([]T, depth)}
	for i := range dq.slots {
		dq.slots[i] = init
	}
	return dq, nil
}

// Fill sets every slot to a fresh value of fn.
func (dq *DelayQueue[T]) Fill(fn func() T) {
	for i := range dq.slots {
		dq.slots[i] = fn()
	}
}

// Len returns the depth.
func (dq *DelayQueue[T]) Len() int {
	return len(dq.slots)
}

// Push inserts v at the front and returns the evicted back slot.
func (dq *DelayQueue[T]) Push(v T) (evicted T) {
	n := len(dq.slots)
	evicted = dq.slots[n-1]
	copy(dq.slots[1:], dq.slots[:n-1])
	dq.slots[0] = v
	return
}

// Rotate moves the back slot to the front and returns it.
func (dq *DelayQueue[T]) Rotate() T {
	return dq.Push(dq.slots[len(dq.slots)-1])
}

// Front returns the newest slot.
func (dq *DelayQueue[T]) Front() T {
	return dq.slots[0]
}

// Back returns the oldest slot.
func (dq *DelayQueue[T]) Back() T {
	return dq.slots[len(dq.slots)-1]
}

// AtTry returns slot k, 0 being the front, or an error if out of range.
func (dq *DelayQueue[T]) AtTry(k int) (T, error) {
	if k < 0 || k >= len(dq.slots) {
		var zero T
		return zero, errors.Errorf("hostsim: delay slot %d out of range [0, %d)", k, len(dq.slots))
	}
	return dq.slots[k], nil
}

// Slots returns a copy of the slots, front first.
func (dq *DelayQueue[T]) Slots() []T {
	return append([]T(nil), dq.slots...)
}
