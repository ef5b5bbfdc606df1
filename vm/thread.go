// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vm

import (
	"github.com/cznic/spor/dict"
	"github.com/cznic/spor/image"
	"github.com/cznic/spor/source"
	"github.com/cznic/spor/stack"
)

// RSIZE is the register/WS-slot width.
const RSIZE = 4

// Machine is the kernel/thread/globals triple collapsed into one
// explicit, caller-owned value: the image plus the four runtime stacks plus
// everything a device op needs to reach (the dictionary, the current
// bump arena, the active source file/scanner, log levels). Nothing here
// is package-level state; every operation takes a *Machine.
type Machine struct {
	Img *image.Image

	Ep image.Ref // current execution pointer

	WS  *stack.Stk // RSIZE-width working stack
	CS  *stack.Stk // RSIZE-width call stack (saved EPs)
	CSZ *stack.Stk // one byte per CS frame: locals bytes to unwind
	LS  *stack.Stk // one 4KiB block, locals frame, grows downward

	GB     image.Ref // globals base, for GB-relative register/memory access
	Dict   *dict.Dict
	CurBBA *image.BBA

	File    *source.File
	Scanner *source.Scanner

	LogLvlUsr int
	LogLvlSys int

	// Sink, if set, receives the `log` device op's formatted output
	// instead of stdout. A kernel wires its own two-level Logger in here
	// so device.go stays free of any dependency on the kernel package.
	Sink func(msg string)

	// Devices is the DV dispatch table; device.go populates the built-in
	// handlers but a kernel may extend it before running.
	Devices map[byte]DeviceFunc
}

// DeviceFunc implements one DV handler: it receives the Machine and the
// DV selector byte, and mutates WS/etc. as the device op specifies.
type DeviceFunc func(m *Machine, code byte) error

// NewMachine wires a Machine's stacks over img at the given bases.
// wsDepth/csDepth are element counts, not byte sizes.
func NewMachine(img *image.Image, wsBase, csBase, cszBase, lsBase, gb image.Ref, wsDepth, csDepth int) (*Machine, error) {
	ws, err := stack.New(img, wsBase, uint32(wsDepth*RSIZE), RSIZE)
	if err != nil {
		return nil, err
	}
	cs, err := stack.New(img, csBase, uint32(csDepth*RSIZE), RSIZE)
	if err != nil {
		return nil, err
	}
	csz, err := stack.New(img, cszBase, uint32(csDepth), 1)
	if err != nil {
		return nil, err
	}
	ls, err := stack.New(img, lsBase, image.BlockSize, 1)
	if err != nil {
		return nil, err
	}
	m := &Machine{
		Img: img, WS: ws, CS: cs, CSZ: csz, LS: ls, GB: gb,
		Devices: make(map[byte]DeviceFunc),
	}
	RegisterBuiltinDevices(m)
	return m, nil
}

// locAddr computes the address an FTL/SRL locals-relative access reads
// or writes: the current locals frame base plus a 7-bit-or-less offset.
func (m *Machine) locAddr(offset byte) image.Ref {
	return m.LS.Base() + image.Ref(m.LS.SP()) + image.Ref(offset)
}

// globAddr computes the address an FTG/SRG globals-relative access
// reads or writes.
func (m *Machine) globAddr(offset uint16) image.Ref {
	return m.GB + image.Ref(offset)
}

// sector returns the upper 16 bits of ep, which a size class 2
// JMPL/JZL combines a 16-bit immediate with for an intra-sector jump.
func sector(ep image.Ref) image.Ref { return ep &^ 0xFFFF }
