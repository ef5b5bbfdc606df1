// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vm

import (
	"fmt"

	"github.com/cznic/spor/errcode"
	"github.com/cznic/spor/image"
)

// Device selector bytes for the built-in DV handlers. User/kernel code
// may register further handlers at unused codes.
const (
	DVAssert byte = iota
	DVCatch
	DVMemset
	DVMemcmp
	DVMemmove
	DVBump
	DVLog
	DVFile
	DVScan
)

// RegisterBuiltinDevices installs the built-in handlers onto
// m.Devices.
func RegisterBuiltinDevices(m *Machine) {
	m.Devices[DVAssert] = dvAssert
	m.Devices[DVCatch] = dvCatch
	m.Devices[DVMemset] = dvMemset
	m.Devices[DVMemcmp] = dvMemcmp
	m.Devices[DVMemmove] = dvMemmove
	m.Devices[DVBump] = dvBump
	m.Devices[DVLog] = dvLog
	m.Devices[DVFile] = dvFile
	m.Devices[DVScan] = dvScan
}

// dvAssert pops a code then a condition; a false condition fails with
// that code.
func dvAssert(m *Machine, _ byte) error {
	code, err := m.WS.Pop()
	if err != nil {
		return err
	}
	cond, err := m.WS.Pop()
	if err != nil {
		return err
	}
	if cond == 0 {
		panic(errcode.NewArg(errcode.Code(code), "assert failed", 0))
	}
	return nil
}

// dvCatch implements structured recovery: snapshot EP/CS/CSZ/LS,
// perform a large call from the address on WS, and on failure restore
// the snapshot, clear WS and push the recovered error code; on normal
// completion push a zero (success) code.
func dvCatch(m *Machine, _ byte) (err error) {
	savedEp := m.Ep
	savedCSsp := m.CS.SP()
	savedCSZsp := m.CSZ.SP()
	savedLSsp := m.LS.SP()
	preLen := m.CS.Len()

	addr, err := m.WS.Pop()
	if err != nil {
		return err
	}

	restore := func(code errcode.Code) error {
		m.Ep = savedEp
		_ = m.CS.SetSP(savedCSsp)
		_ = m.CSZ.SetSP(savedCSZsp)
		_ = m.LS.SetSP(savedLSsp)
		m.WS.Reset()
		return m.WS.Push(uint32(code))
	}

	defer func() {
		r := recover()
		if r == nil {
			return
		}
		code := errcode.EIntern
		if e, ok := r.(*errcode.Error); ok {
			code = e.Code
		}
		err = restore(code)
	}()

	cerr := m.callLarge(image.Ref(addr))
	if cerr == nil {
		cerr = m.runUntil(preLen)
	}
	if cerr != nil {
		// A coded failure surfaced as a returned error (stack over/
		// underflow, bounds, unknown key, ...) unwinds here the same as
		// one raised as a panic: the snapshot is restored and the code
		// pushed for the caught code to inspect.
		if code, ok := errcode.CodeOf(cerr); ok {
			return restore(code)
		}
		return cerr
	}
	return m.WS.Push(0)
}

func dvMemset(m *Machine, _ byte) error {
	size, err := m.WS.Pop()
	if err != nil {
		return err
	}
	v, err := m.WS.Pop()
	if err != nil {
		return err
	}
	ref, err := m.WS.Pop()
	if err != nil {
		return err
	}
	return m.Img.Memset(image.Ref(ref), int(size), byte(v))
}

func dvMemcmp(m *Machine, _ byte) error {
	size, err := m.WS.Pop()
	if err != nil {
		return err
	}
	b, err := m.WS.Pop()
	if err != nil {
		return err
	}
	a, err := m.WS.Pop()
	if err != nil {
		return err
	}
	c, err := m.Img.Memcmp(image.Ref(a), image.Ref(b), int(size))
	if err != nil {
		return err
	}
	return m.WS.Push(uint32(int32(c)))
}

func dvMemmove(m *Machine, _ byte) error {
	size, err := m.WS.Pop()
	if err != nil {
		return err
	}
	src, err := m.WS.Pop()
	if err != nil {
		return err
	}
	dst, err := m.WS.Pop()
	if err != nil {
		return err
	}
	return m.Img.Memmove(image.Ref(dst), image.Ref(src), int(size))
}

// dvBump calls Alloc or AllocUnaligned on the arena selected by the
// caller: pop size, pop an aligned flag, pop an arena ref — a thin
// wrapper so compiled code can request heap space the same way the
// compiler itself does. Arena records do not live in the image in this
// implementation (a BBA is a host-side value), so the only addressable
// arena is the current one, selected by ref 0; any other ref is E_dv.
func dvBump(m *Machine, _ byte) error {
	size, err := m.WS.Pop()
	if err != nil {
		return err
	}
	aligned, err := m.WS.Pop()
	if err != nil {
		return err
	}
	arena, err := m.WS.Pop()
	if err != nil {
		return err
	}
	if arena != 0 {
		return errcode.NewArg(errcode.EDV, "bump: only the current arena (ref 0) is addressable", int64(arena))
	}
	if m.CurBBA == nil {
		return errcode.New(errcode.EIntern, "bump: no current arena")
	}
	var ref image.Ref
	if aligned != 0 {
		ref, err = m.CurBBA.Alloc(size)
	} else {
		ref, err = m.CurBBA.AllocUnaligned(size)
	}
	if err != nil {
		return err
	}
	return m.WS.Push(uint32(ref))
}

// dvLog pops a word count then prints that many WS words, gated by the
// user log level: the words are always popped, printing is what the
// level controls.
func dvLog(m *Machine, _ byte) error {
	n, err := m.WS.Pop()
	if err != nil {
		return err
	}
	if int(n) > m.WS.Len() {
		return errcode.NewArg(errcode.EStkUnd, "log: more words requested than the stack holds", int64(n))
	}
	words := make([]uint32, n)
	for i := int(n) - 1; i >= 0; i-- {
		v, err := m.WS.Pop()
		if err != nil {
			return err
		}
		words[i] = v
	}
	if m.LogLvlUsr <= 0 {
		return nil
	}
	var msg string
	for _, w := range words {
		msg += fmt.Sprintf("%#x ", w)
	}
	if n == 0 {
		return nil
	}
	if m.Sink != nil {
		m.Sink(msg)
		return nil
	}
	fmt.Println(msg)
	return nil
}

// dvFile dispatches close (sub-op 0) or read (sub-op 1) on the Machine's
// active File, selected by a one-byte sub-op popped from WS. It has no
// open sub-op; any other sub-op is E_dv.
func dvFile(m *Machine, _ byte) error {
	sub, err := m.WS.Pop()
	if err != nil {
		return err
	}
	if m.File == nil {
		return errcode.New(errcode.EIntern, "file: no active file")
	}
	switch sub {
	case 0: // close
		return m.File.Close()
	case 1: // read-some (host call through to the reader once)
		return m.File.ReadAtLeast(1)
	default:
		return errcode.NewArg(errcode.EDV, "file: unknown sub-op", int64(sub))
	}
}

// dvScan dispatches readAtLeast/full-scan on the Machine's active
// Scanner, selected by a one-byte sub-op popped from WS; a full scan
// pushes the resulting token's length (0 at EOF) after writing it to the
// scanner's own place-buffer, mirroring what the compile loop itself
// does with a scanned token.
func dvScan(m *Machine, _ byte) error {
	sub, err := m.WS.Pop()
	if err != nil {
		return err
	}
	if m.Scanner == nil {
		return errcode.New(errcode.EIntern, "scan: no active scanner")
	}
	switch sub {
	case 0: // readAtLeast(n)
		n, err := m.WS.Pop()
		if err != nil {
			return err
		}
		if err := m.File.ReadAtLeast(int(n)); err != nil {
			return err
		}
		return nil
	case 1: // full scan, push token length
		tok, err := m.Scanner.Scan()
		if err != nil {
			return err
		}
		return m.WS.Push(uint32(len(tok)))
	default:
		return errcode.NewArg(errcode.EDV, "scan: unknown sub-op", int64(sub))
	}
}
