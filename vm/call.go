// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vm

import (
	"github.com/cznic/spor/errcode"
	"github.com/cznic/spor/image"
)

// callLarge implements the large-call contract: read the
// locals size byte at addr, validate it, grow LS by that amount, then
// perform a small call to addr+1.
func (m *Machine) callLarge(addr image.Ref) error {
	growSz, err := m.Img.GetU8(addr)
	if err != nil {
		return err
	}
	if growSz%RSIZE != 0 {
		return errcode.NewArg(errcode.EAlign4, "XL: locals size not a multiple of RSIZE", int64(growSz))
	}
	if err := m.LS.SetSP(m.LS.SP() - uint32(growSz)); err != nil {
		return err
	}
	return m.callSmall(addr+1, growSz)
}

// callSmall pushes the return address and the locals size to unwind,
// then jumps.
func (m *Machine) callSmall(target image.Ref, growSz byte) error {
	if err := m.CS.Push(uint32(m.Ep)); err != nil {
		return err
	}
	if err := m.CSZ.Push(uint32(growSz)); err != nil {
		return err
	}
	m.Ep = target
	return nil
}

// doReturn pops the saved EP and the locals size to unwind, then
// restores LS.
func (m *Machine) doReturn() error {
	ep, err := m.CS.Pop()
	if err != nil {
		return err
	}
	growSz, err := m.CSZ.Pop()
	if err != nil {
		return err
	}
	if err := m.LS.SetSP(m.LS.SP() + growSz); err != nil {
		return err
	}
	m.Ep = image.Ref(ep)
	return nil
}
