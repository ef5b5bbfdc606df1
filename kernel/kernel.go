// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package kernel wires the image, stacks, dictionary, VM and compiler
// into one explicit, caller-owned value: every spor operation in this
// module reaches the structures it needs through a *Kernel (or the
// *vm.Machine it owns), never through package-level variables.
package kernel

import (
	"github.com/cznic/spor/asm"
	"github.com/cznic/spor/dict"
	"github.com/cznic/spor/errcode"
	"github.com/cznic/spor/image"
	"github.com/cznic/spor/source"
	"github.com/cznic/spor/vm"
)

// Kernel owns the image layout: block 0 holds the Kern/Thread header,
// the WS/CS/CSZ stacks, the scanner's place-buffer scratch and the
// globals area; block 1 is the locals stack; everything from block 2
// onward is a BA/BBA-managed heap the dictionary and compiled code
// share. The Dict and Machine are built over that layout, with the
// Logger and Options alongside.
type Kernel struct {
	Img     *image.Image
	HeapBA  *image.BA
	Machine *vm.Machine
	Dict    *dict.Dict
	Opts    Options
	Log     *Logger

	scanBase image.Ref
}

// kernHeaderSize reserves the front of block 0 for the Kern and Thread
// records the first-block layout places before the stacks. Keeping it
// nonzero also keeps every stack slot and the scanner scratch clear of
// offset zero, which is reserved as the null reference.
const kernHeaderSize = 64

// New builds a fresh Kernel per opts (the zero value selects the
// defaults), bootstraps the dictionary with every VM instruction
// mnemonic as a KindInstr entry, and wires the `log` device op through
// the Kernel's Logger.
func New(opts Options) (*Kernel, error) {
	if err := opts.setDefaults(); err != nil {
		return nil, err
	}

	wsBase := image.Ref(kernHeaderSize)
	wsSize := uint32(opts.WSDepth * vm.RSIZE)
	csBase := wsBase + image.Ref(wsSize)
	csSize := uint32(opts.CSDepth * vm.RSIZE)
	cszBase := csBase + image.Ref(csSize)
	cszSize := uint32(opts.CSDepth)
	scanBase := cszBase + image.Ref(cszSize)
	gb := scanBase + image.Ref(opts.TokenSize)

	lsBase := image.Ref(image.BlockSize)
	heapBase := image.Ref(2 * image.BlockSize)

	img := image.New(opts.HeapBlocks + 2)

	m, err := vm.NewMachine(img, wsBase, csBase, cszBase, lsBase, gb, opts.WSDepth, opts.CSDepth)
	if err != nil {
		return nil, err
	}
	m.LogLvlUsr = opts.LogLevelUsr
	m.LogLvlSys = opts.LogLevelSys

	ba, err := image.NewBA(img, heapBase, opts.HeapBlocks)
	if err != nil {
		return nil, err
	}
	bba := image.NewBBA(ba)
	m.CurBBA = bba

	d := dict.New(img)

	logger := newLogger(opts)
	m.Sink = func(msg string) { logger.Userf(1, "%s", msg) }

	k := &Kernel{Img: img, HeapBA: ba, Machine: m, Dict: d, Opts: opts, Log: logger, scanBase: scanBase}
	if err := k.bootstrapInstructions(); err != nil {
		return nil, err
	}
	return k, nil
}

// bootstrapInstructions registers every VM opcode mnemonic in the
// dictionary as a KindInstr entry, so mnemonics live in the same
// dictionary as user-defined symbols. SizedFamily is set from the
// opcode's own Sized() flag, so `%`/`^`'s emission logic never has to
// re-derive it from the opcode's bit pattern.
func (k *Kernel) bootstrapInstructions() error {
	for _, name := range vm.Mnemonics() {
		op, ok := vm.LookupMnemonic(name)
		if !ok {
			continue
		}
		meta := dict.NewMeta(dict.KindInstr, dict.ModeNormal, false, op.Sized())
		if _, err := k.Dict.Add(k.Machine.CurBBA, []byte(name), uint32(op), meta); err != nil {
			return err
		}
	}
	return nil
}

// Run compiles source from r, recovering any uncaught *Panic into a
// returned, line-annotated error — the library form of a top-level
// handler: printing the diagnostic and exiting belong to an embedder's
// own main.
func (k *Kernel) Run(r source.Reader, fid int) (err error) {
	defer func() {
		rec := recover()
		if rec == nil {
			if e, ok := err.(*errcode.Error); ok {
				err = k.annotate(e)
			}
			return
		}
		e, ok := rec.(*errcode.Error)
		if !ok {
			panic(rec)
		}
		err = k.annotate(e)
	}()
	return k.compile(r, fid)
}

// compile points the scanner at r and runs the compile loop until EOF.
// NewScanner starts Line at 1, so opening a fresh File/Scanner pair per
// call is itself the line-counter reset.
func (k *Kernel) compile(r source.Reader, fid int) error {
	f, err := source.Open(r, fid)
	if err != nil {
		return err
	}
	defer f.Close()

	sc := source.NewScanner(k.Img, k.scanBase, f)
	k.Machine.File = f
	k.Machine.Scanner = sc

	c := asm.New(k.Machine, k.Dict, sc)
	return c.CompileLoop()
}
