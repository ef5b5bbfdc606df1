// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vm

import (
	"github.com/cznic/spor/errcode"
	"github.com/cznic/spor/image"
)

// Execute calls the function at ep (as a small call with no locals) and
// runs the fetch-dispatch loop until its RET has popped the call stack
// back to the depth it had on entry.
func (m *Machine) Execute(ep image.Ref) error {
	startLen := m.CS.Len()
	if err := m.callSmall(ep, 0); err != nil {
		return err
	}
	return m.runUntil(startLen)
}

// ExecuteLarge performs a large call to addr (reading its locals-size
// byte and growing LS, exactly as an XL instruction would) and runs
// until it returns. It is Execute's large-call counterpart, used by the
// assembler's `$` verb to invoke a KindFuncLarge dictionary entry the
// same way compiled XL-calling code would.
func (m *Machine) ExecuteLarge(addr image.Ref) error {
	startLen := m.CS.Len()
	if err := m.callLarge(addr); err != nil {
		return err
	}
	return m.runUntil(startLen)
}

// runUntil drives the dispatch loop until CS.Len() == depth. It is the
// shared body behind Execute (which starts the loop itself) and the
// `catch` device op (which has already pushed one CS frame via
// callLarge and waits for CS to unwind back past it).
func (m *Machine) runUntil(depth int) error {
	for {
		b, err := m.Img.GetU8(m.Ep)
		if err != nil {
			return err
		}
		m.Ep++
		if err := m.step(b); err != nil {
			return err
		}
		if m.CS.Len() == depth {
			return nil
		}
	}
}

// ExecuteOne runs exactly one instruction at ep (consuming whatever
// immediate bytes it needs) and returns the EP just past it. It backs
// the assembler's `^` operator, which runs an instruction as though EP
// pointed at it with no enclosing call frame; using the general step()
// dispatcher here means a `^`-executed XL/XS behaves like a real call
// and pushes a CS/CSZ frame the caller is responsible for not leaving
// dangling.
func (m *Machine) ExecuteOne(ep image.Ref) (image.Ref, error) {
	m.Ep = ep
	b, err := m.Img.GetU8(m.Ep)
	if err != nil {
		return 0, err
	}
	m.Ep++
	if err := m.step(b); err != nil {
		return 0, err
	}
	return m.Ep, nil
}

// step dispatches a single instruction byte, mutating the Machine in
// place. Divide by zero panics with *errcode.Error, as do a failed
// `assert` and a host I/O error raised through a device op; every other
// failure (bounds, alignment, stack over/underflow, unknown opcode/DV
// code) is returned as an *errcode.Error.
func (m *Machine) step(b byte) error {
	if b >= SlitBase {
		return m.WS.Push(uint32(b & 0x3F))
	}
	sc, op := Decode(b)
	switch op {
	case opNOP:
		return nil
	case opRET:
		return m.doReturn()
	case opRETZ:
		v, err := m.WS.Pop()
		if err != nil {
			return err
		}
		if v == 0 {
			return m.doReturn()
		}
		return nil
	case opXL:
		addr, err := m.readImmRef(sc)
		if err != nil {
			return err
		}
		return m.callLarge(addr)
	case opXS:
		addr, err := m.readImmRef(sc)
		if err != nil {
			return err
		}
		return m.callSmall(addr, 0)
	case opXLW:
		addr, err := m.WS.Pop()
		if err != nil {
			return err
		}
		return m.callLarge(image.Ref(addr))
	case opXSW:
		addr, err := m.WS.Pop()
		if err != nil {
			return err
		}
		return m.callSmall(image.Ref(addr), 0)
	case opYLD:
		// No scheduler multiplexes fibers here; YLD is a no-op control
		// instruction.
		return nil

	case opSWP:
		b, err := m.WS.Pop()
		if err != nil {
			return err
		}
		a, err := m.WS.Pop()
		if err != nil {
			return err
		}
		if err := m.WS.Push(b); err != nil {
			return err
		}
		return m.WS.Push(a)
	case opDRP:
		_, err := m.WS.Pop()
		return err
	case opOVR:
		v, err := m.WS.Peek(1)
		if err != nil {
			return err
		}
		return m.WS.Push(v)
	case opDUP:
		v, err := m.WS.Peek(0)
		if err != nil {
			return err
		}
		return m.WS.Push(v)
	case opDUPN:
		v, err := m.WS.Peek(0)
		if err != nil {
			return err
		}
		if err := m.WS.Push(v); err != nil {
			return err
		}
		if v == 0 {
			return m.WS.Push(1)
		}
		return m.WS.Push(0)

	case opINC, opINC2, opINC4, opDEC, opINV, opNEG, opNOT:
		return m.unary(op)

	case opADD, opSUB, opMOD, opSHL, opSHR, opMSK, opJN, opXOR, opAND, opOR,
		opEQ, opNEQ, opGEU, opLTU, opGES, opLTS, opMUL, opDIVU, opDIVS:
		return m.binary(op)

	case opCI1:
		v, err := m.WS.Pop()
		if err != nil {
			return err
		}
		return m.WS.Push(uint32(int32(int8(v))))
	case opCI2:
		v, err := m.WS.Pop()
		if err != nil {
			return err
		}
		return m.WS.Push(uint32(int32(int16(v))))

	case opFT, opFTO, opFTL, opFTG, opNFT, opNFTO, opNFTL, opNFTG,
		opSR, opSRO, opSRL, opSRG, opNSR, opNSRO, opNSRL, opNSRG:
		return m.memAccess(op, sc)

	case opLIT:
		v, err := m.readImm(sc.Width())
		if err != nil {
			return err
		}
		return m.WS.Push(v)

	case opJMPL:
		return m.jump(sc, false)
	case opJZL:
		return m.jump(sc, true)
	case opJMPW:
		addr, err := m.WS.Pop()
		if err != nil {
			return err
		}
		m.Ep = image.Ref(addr)
		return nil

	case opRG:
		return m.register()
	case opDV:
		return m.device()

	case opJTBL:
		return errcode.New(errcode.ECInstr, "JTBL is reserved and unimplemented")

	default:
		return errcode.NewArg(errcode.ECInstr, "unknown opcode", int64(b))
	}
}

// readImm reads width bytes from Ep as a big-endian unsigned immediate,
// advancing Ep past them.
func (m *Machine) readImm(width int) (uint32, error) {
	v, err := m.Img.GetBE(m.Ep, width)
	if err != nil {
		return 0, err
	}
	m.Ep += image.Ref(width)
	return v, nil
}

func (m *Machine) readImmRef(sc SizeClass) (image.Ref, error) {
	v, err := m.readImm(sc.Width())
	return image.Ref(v), err
}

func (m *Machine) unary(op Op) error {
	v, err := m.WS.Pop()
	if err != nil {
		return err
	}
	switch op {
	case opINC:
		v++
	case opINC2:
		v += 2
	case opINC4:
		v += 4
	case opDEC:
		v--
	case opINV:
		v = ^v
	case opNEG:
		v = uint32(-int32(v))
	case opNOT:
		if v == 0 {
			v = 1
		} else {
			v = 0
		}
	}
	return m.WS.Push(v)
}

func (m *Machine) binary(op Op) error {
	b, err := m.WS.Pop()
	if err != nil {
		return err
	}
	a, err := m.WS.Pop()
	if err != nil {
		return err
	}
	var r uint32
	switch op {
	case opADD:
		r = a + b
	case opSUB:
		r = a - b
	case opMOD:
		if b == 0 {
			panic(errcode.New(errcode.EDivZero, "MOD by zero"))
		}
		r = a % b
	case opSHL:
		r = a << (b & 31)
	case opSHR:
		r = a >> (b & 31)
	case opMSK:
		r = a & b
	case opJN:
		r = a | b
	case opXOR:
		r = a ^ b
	case opAND:
		r = boolU32(a != 0 && b != 0)
	case opOR:
		r = boolU32(a != 0 || b != 0)
	case opEQ:
		r = boolU32(a == b)
	case opNEQ:
		r = boolU32(a != b)
	case opGEU:
		r = boolU32(a >= b)
	case opLTU:
		r = boolU32(a < b)
	case opGES:
		r = boolU32(int32(a) >= int32(b))
	case opLTS:
		r = boolU32(int32(a) < int32(b))
	case opMUL:
		r = a * b
	case opDIVU:
		if b == 0 {
			panic(errcode.New(errcode.EDivZero, "DIV_U by zero"))
		}
		r = a / b
	case opDIVS:
		if b == 0 {
			panic(errcode.New(errcode.EDivZero, "DIV_S by zero"))
		}
		r = uint32(int32(a) / int32(b))
	}
	return m.WS.Push(r)
}

func boolU32(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

func (m *Machine) memAccess(op Op, sc SizeClass) error {
	width := sc.Width()
	native := op == opNFT || op == opNFTO || op == opNFTL || op == opNFTG ||
		op == opNSR || op == opNSRO || op == opNSRL || op == opNSRG
	store := op == opSR || op == opSRO || op == opSRL || op == opSRG ||
		op == opNSR || op == opNSRO || op == opNSRL || op == opNSRG

	var addr image.Ref
	var val uint32
	var err error

	// Stores pop their value first: by the time the address is resolved
	// the value is already off the stack, matching every addressing
	// mode's "pop value, then compute address" order.
	if store {
		v, perr := m.WS.Pop()
		if perr != nil {
			return perr
		}
		val = v
	}

	switch op {
	case opFT, opNFT, opSR, opNSR:
		a, perr := m.WS.Pop()
		if perr != nil {
			return perr
		}
		addr = image.Ref(a)
	case opFTO, opNFTO, opSRO, opNSRO:
		a, perr := m.WS.Pop()
		if perr != nil {
			return perr
		}
		off, perr := m.readImm(1)
		if perr != nil {
			return perr
		}
		addr = image.Ref(a) + image.Ref(off)
	case opFTL, opNFTL, opSRL, opNSRL:
		off, perr := m.readImm(1)
		if perr != nil {
			return perr
		}
		addr = m.locAddr(byte(off))
	case opFTG, opNFTG, opSRG, opNSRG:
		off, perr := m.readImm(2)
		if perr != nil {
			return perr
		}
		addr = m.globAddr(uint16(off))
	}

	if store {
		if native {
			return m.Img.PutNE(addr, width, val)
		}
		return m.Img.PutBE(addr, width, val)
	}
	if native {
		val, err = m.Img.GetNE(addr, width)
	} else {
		val, err = m.Img.GetBE(addr, width)
	}
	if err != nil {
		return err
	}
	return m.WS.Push(val)
}

func (m *Machine) jump(sc SizeClass, conditional bool) error {
	raw, err := m.readImm(sc.Width())
	if err != nil {
		return err
	}
	var target image.Ref
	switch sc {
	case SZ1:
		target = m.Ep + image.Ref(int32(int8(raw)))
	case SZ2:
		target = sector(m.Ep) | image.Ref(raw)
	case SZ4:
		target = image.Ref(raw)
	default:
		return errcode.NewArg(errcode.ESz, "jump: invalid size class", int64(sc))
	}
	if conditional {
		v, err := m.WS.Pop()
		if err != nil {
			return err
		}
		if v != 0 {
			return nil
		}
	}
	m.Ep = target
	return nil
}

const (
	regEP    byte = 0x00
	regGB    byte = 0x01
	regLPTag byte = 0x80
)

func (m *Machine) register() error {
	sel, err := m.readImm(1)
	if err != nil {
		return err
	}
	s := byte(sel)
	switch {
	case s == regEP:
		return m.WS.Push(uint32(m.Ep))
	case s == regGB:
		return m.WS.Push(uint32(m.GB))
	case s&regLPTag != 0:
		return m.WS.Push(uint32(m.locAddr(s & 0x7F)))
	default:
		return errcode.NewArg(errcode.ECReg, "unknown register selector", int64(s))
	}
}

func (m *Machine) device() error {
	sel, err := m.readImm(1)
	if err != nil {
		return err
	}
	code := byte(sel)
	fn, ok := m.Devices[code]
	if !ok {
		return errcode.NewArg(errcode.EDV, "unknown device op", int64(code))
	}
	return fn(m, code)
}
