// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package stack implements the bounded LIFO stacks the VM threads through
// every operation: the working stack (WS), the call stack (CS), the call
// size stack (CSZ) and the locals stack (LS). All four share this one
// type; they differ only in element width and in what a kernel does with
// over/underflow.
package stack

import (
	"github.com/cznic/spor/errcode"
	"github.com/cznic/spor/image"
)

// Stk is a fixed-capacity LIFO region of an Image: {ref, sp, cap}. sp
// counts down from cap (empty) towards 0 (full); Push decreases sp and
// stores at ref+sp, Pop loads at ref+sp and increases sp — the opposite
// direction of a conventional bump-up stack.
type Stk struct {
	img  *image.Image
	base image.Ref
	cap  uint32 // capacity in bytes
	elem int    // element width: 1, 2 or 4
	sp   uint32
}

// New creates a stack of the given byte capacity and element width over
// base..base+cap of img, initially empty (sp == cap). cap must be a
// multiple of elem.
func New(img *image.Image, base image.Ref, cap uint32, elem int) (*Stk, error) {
	switch elem {
	case 1, 2, 4:
	default:
		return nil, errcode.NewArg(errcode.ESz, "stack: unsupported element width", int64(elem))
	}
	if cap%uint32(elem) != 0 {
		return nil, errcode.NewArg(errcode.ESz, "stack: capacity not a multiple of element width", int64(cap))
	}
	return &Stk{img: img, base: base, cap: cap, elem: elem, sp: cap}, nil
}

// Len returns the number of elements currently on the stack.
func (s *Stk) Len() int { return int(s.cap-s.sp) / s.elem }

// Cap returns the stack's capacity in elements.
func (s *Stk) Cap() int { return int(s.cap) / s.elem }

// Push stores v at the new top of the stack. It reports E_stkOvr if the
// stack has no room left.
func (s *Stk) Push(v uint32) error {
	if s.sp < uint32(s.elem) {
		return errcode.NewArg(errcode.EStkOvr, "stack overflow", int64(s.sp))
	}
	s.sp -= uint32(s.elem)
	if err := s.img.PutBE(s.base+image.Ref(s.sp), s.elem, v); err != nil {
		s.sp += uint32(s.elem)
		return err
	}
	return nil
}

// Pop removes and returns the top element. It reports E_stkUnd if the
// stack is empty.
func (s *Stk) Pop() (uint32, error) {
	if s.sp+uint32(s.elem) > s.cap {
		return 0, errcode.New(errcode.EStkUnd, "stack underflow")
	}
	v, err := s.img.GetBE(s.base+image.Ref(s.sp), s.elem)
	if err != nil {
		return 0, err
	}
	s.sp += uint32(s.elem)
	return v, nil
}

// Peek returns the i'th element from the top (0 is the topmost) without
// removing it.
func (s *Stk) Peek(i int) (uint32, error) {
	if i < 0 || s.sp+uint32(i+1)*uint32(s.elem) > s.cap {
		return 0, errcode.NewArg(errcode.EStkUnd, "stack index out of range", int64(i))
	}
	off := s.sp + uint32(i)*uint32(s.elem)
	return s.img.GetBE(s.base+image.Ref(off), s.elem)
}

// Drop discards the top n elements.
func (s *Stk) Drop(n int) error {
	need := uint32(n) * uint32(s.elem)
	if s.sp+need > s.cap {
		return errcode.New(errcode.EStkUnd, "stack underflow")
	}
	s.sp += need
	return nil
}

// Reset empties the stack without touching the underlying image bytes.
func (s *Stk) Reset() { s.sp = s.cap }

// SP returns the raw stack pointer — the value the locals-relative
// memory-addressing modes (LS_SP + offset) and the RG register op read
// directly.
func (s *Stk) SP() uint32 { return s.sp }

// SetSP restores a previously observed stack pointer, used by call/
// return sequences that must unwind to an exact frame boundary and by
// the `catch` device op unwinding after a recovered panic.
func (s *Stk) SetSP(sp uint32) error {
	if sp > s.cap {
		return errcode.NewArg(errcode.EStkOvr, "stack pointer out of range", int64(sp))
	}
	s.sp = sp
	return nil
}

// Base returns the image reference of the stack's bottom, for
// diagnostics and for computing addresses relative to the frame.
func (s *Stk) Base() image.Ref { return s.base }
