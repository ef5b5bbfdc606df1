// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package asm implements spor's character-dispatched compiler: a
// table-driven handler selected by the first byte of each scanned token,
// operating against the dictionary and the current bump arena and able
// to call back into the VM for `^`/`$`.
package asm

import (
	"github.com/cznic/spor/dict"
	"github.com/cznic/spor/errcode"
	"github.com/cznic/spor/image"
	"github.com/cznic/spor/source"
	"github.com/cznic/spor/vm"
)

// Compiler holds the single byte of size-class state plus everything a
// handler needs to reach: the dictionary, the machine (for
// its stacks, current arena and the VM it can call back into) and the
// scanner feeding it tokens.
type Compiler struct {
	M    *vm.Machine
	Dict *dict.Dict
	Scan *source.Scanner
	Size vm.SizeClass
}

// New creates a Compiler reading tokens from sc, compiling into m's
// current arena and dictionary d. The size class starts at SZ4
// (RSIZE-width), the natural default for a machine whose stacks and
// register-relative addressing are all 4-byte; `.` overrides it.
func New(m *vm.Machine, d *dict.Dict, sc *source.Scanner) *Compiler {
	return &Compiler{M: m, Dict: d, Scan: sc, Size: vm.SZ4}
}

// handlerFunc is one character-dispatch table entry; it may itself scan
// further tokens (the name after `=`/`@`/`$`, the size digit after `.`,
// the instruction mnemonic after `%`/`^`).
type handlerFunc func(c *Compiler) error

// handlers maps the first byte of a token to its handler, kept as a
// package-level map rather than a cascade of conditionals so a new
// token character can be added without re-flowing control.
var handlers = map[byte]handlerFunc{
	'.':  (*Compiler).handleSize,
	'\\': (*Compiler).handleComment,
	'#':  (*Compiler).handleHex,
	'=':  (*Compiler).handleDefine,
	'@':  (*Compiler).handleRef,
	',':  (*Compiler).handleComma,
	'%':  (*Compiler).handlePercent,
	'^':  (*Compiler).handleCaret,
	'$':  (*Compiler).handleDollar,
}

// Compile dispatches on tok's first byte. An empty token is a no-op
// (CompileLoop treats it as end of input, never reaching here).
func (c *Compiler) Compile(tok []byte) error {
	if len(tok) == 0 {
		return nil
	}
	h, ok := handlers[tok[0]]
	if !ok {
		return errcode.NewArg(errcode.ECToken, "unrecognized token", int64(tok[0]))
	}
	return h(c)
}

// scanName scans the next token verbatim, failing if input is exhausted
// where a name was expected (the handlers for `=`, `@`, `$` all need
// one).
func (c *Compiler) scanName() ([]byte, error) {
	tok, err := c.Scan.Scan()
	if err != nil {
		return nil, err
	}
	if len(tok) == 0 {
		return nil, errcode.New(errcode.ECToken, "expected a name, got end of input")
	}
	return tok, nil
}

// handleSize implements `.`: "Set the current size class from the
// following character ('1','2','4','R')."
func (c *Compiler) handleSize() error {
	tok, err := c.scanName()
	if err != nil {
		return err
	}
	switch tok[0] {
	case '1':
		c.Size = vm.SZ1
	case '2':
		c.Size = vm.SZ2
	case '4':
		c.Size = vm.SZ4
	case 'R':
		c.Size = vm.SZ4 // RSIZE is 4 bytes, same width as SZ4.
	default:
		return errcode.NewArg(errcode.ECToken, "'.': unknown size class", int64(tok[0]))
	}
	return nil
}

// handleComment implements `\`: "Line comment: consume until newline."
func (c *Compiler) handleComment() error {
	return c.Scan.SkipToEOL()
}

// handleHex implements `#`: "Scan next token; parse as hexadecimal (with
// '_' as separator); push onto WS."
func (c *Compiler) handleHex() error {
	tok, err := c.scanName()
	if err != nil {
		return err
	}
	v, err := parseHex(tok)
	if err != nil {
		return err
	}
	return c.M.WS.Push(v)
}

func parseHex(tok []byte) (uint32, error) {
	var v uint64
	any := false
	for _, ch := range tok {
		if ch == '_' {
			continue
		}
		d, ok := hexDigit(ch)
		if !ok {
			return 0, errcode.NewArg(errcode.ECHex, "non-hex digit in numeric literal", int64(ch))
		}
		any = true
		v = v<<4 | uint64(d)
		if v > 0xFFFFFFFF {
			return 0, errcode.New(errcode.ECHex, "numeric literal overflows 32 bits")
		}
	}
	if !any {
		return 0, errcode.New(errcode.ECHex, "empty numeric literal")
	}
	return uint32(v), nil
}

func hexDigit(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}

// handleDefine implements `=`: "Pop meta and value from WS; scan a name;
// allocate a cdata key + a DNode in the arena; insert." Both the key and
// the node are allocated from the current BBA, key first (unaligned),
// node second (aligned).
func (c *Compiler) handleDefine() error {
	metaV, err := c.M.WS.Pop()
	if err != nil {
		return err
	}
	val, err := c.M.WS.Pop()
	if err != nil {
		return err
	}
	name, err := c.scanName()
	if err != nil {
		return err
	}
	_, err = c.Dict.Add(c.M.CurBBA, name, val, dict.Meta(byte(metaV)))
	return err
}

// handleRef implements `@`: "Scan a name; look up in the dictionary;
// push the value onto WS."
func (c *Compiler) handleRef() error {
	name, err := c.scanName()
	if err != nil {
		return err
	}
	e, err := c.Dict.Get(name)
	if err != nil {
		return err
	}
	return c.M.WS.Push(e.Val)
}

// handleComma implements `,`: "Pop value from WS; write sz bytes
// big-endian to the arena at the bump pointer." sz is the current size
// class's width; the write grows the arena from its unaligned
// (bottom-up) end, the same direction compiled code itself streams in.
func (c *Compiler) handleComma() error {
	v, err := c.M.WS.Pop()
	if err != nil {
		return err
	}
	w := c.Size.Width()
	if w == 0 {
		return errcode.New(errcode.ESz, "',': current size class has no operand width")
	}
	ref, err := c.M.CurBBA.AllocUnaligned(uint32(w))
	if err != nil {
		return err
	}
	if ref == image.NullRef {
		return errcode.New(errcode.EOOM, "',': arena exhausted")
	}
	return c.M.Img.PutBE(ref, w, v)
}

// scanInstr scans a name and looks it up as a KindInstr dictionary
// entry, failing with E_cInstr if absent or not an instruction.
// Mnemonics share the same dictionary as user-defined symbols.
func (c *Compiler) scanInstr() (dict.Entry, error) {
	tok, err := c.scanName()
	if err != nil {
		return dict.Entry{}, err
	}
	e, err := c.Dict.Get(tok)
	if err != nil {
		if code, ok := errcode.CodeOf(err); ok && code == errcode.ECNoKey {
			return dict.Entry{}, errcode.NewArg(errcode.ECInstr, "unknown instruction: "+string(tok), 0)
		}
		return dict.Entry{}, err
	}
	if e.Meta.Kind() != dict.KindInstr {
		return dict.Entry{}, errcode.NewArg(errcode.ECInstr, "not an instruction: "+string(tok), 0)
	}
	return e, nil
}

// instrByte computes the opcode byte for a scanned instruction entry: an
// unsized opcode (control/stack/arith/reg/dv) emits just its low six
// bits; a sized one (memory/jump/literal family) gets the compiler's
// current size class or'd in. Sizedness comes from the entry's own
// SizedFamily flag, recorded at bootstrap, not from masking the opcode
// byte back apart.
func (c *Compiler) instrByte(e dict.Entry) byte {
	op := vm.Op(e.Val)
	if e.Meta.SizedFamily() {
		return vm.Instr(c.Size, op)
	}
	return byte(op)
}

// handlePercent implements `%`: "Scan an instruction name; write its
// opcode (or'd with size class for memory/jump families)."
func (c *Compiler) handlePercent() error {
	e, err := c.scanInstr()
	if err != nil {
		return err
	}
	ref, err := c.M.CurBBA.AllocUnaligned(1)
	if err != nil {
		return err
	}
	if ref == image.NullRef {
		return errcode.New(errcode.EOOM, "'%': arena exhausted")
	}
	return c.M.Img.PutU8(ref, c.instrByte(e))
}

// handleCaret implements `^`: "Scan an instruction and execute it
// immediately (as though EP pointed at it)." The opcode byte is emitted
// transiently at the arena's current unaligned mark and discarded
// afterwards via BBA.Reset — nothing durable is left behind by a `^`.
// Exactly the one opcode byte written is run; an operand-bearing
// mnemonic used here (LIT, XL, JMPL, ...) reads whatever follows it in
// the arena.
func (c *Compiler) handleCaret() error {
	e, err := c.scanInstr()
	if err != nil {
		return err
	}
	mark := c.M.CurBBA.Mark()
	ref, err := c.M.CurBBA.AllocUnaligned(1)
	if err != nil {
		return err
	}
	if ref == image.NullRef {
		return errcode.New(errcode.EOOM, "'^': arena exhausted")
	}
	if err := c.M.Img.PutU8(ref, c.instrByte(e)); err != nil {
		return err
	}
	_, err = c.M.ExecuteOne(ref)
	c.M.CurBBA.Reset(mark)
	return err
}

// handleDollar implements `$`: "Scan a name and execute it: if inline,
// memcpy its body to the heap; if syntax, push false first; then push
// its value and call either small or large depending on meta bit."
func (c *Compiler) handleDollar() error {
	name, err := c.scanName()
	if err != nil {
		return err
	}
	e, err := c.Dict.Get(name)
	if err != nil {
		return err
	}
	switch e.Meta.Mode() {
	case dict.ModeInline:
		return c.inlineCopy(e)
	case dict.ModeComment:
		// Documentation-only entry: never executed or copied.
		return nil
	case dict.ModeSyntax:
		if err := c.M.WS.Push(0); err != nil { // asNow=false
			return err
		}
	}
	// ModeNormal and ModeNow both call through immediately here: this
	// single-pass assembler has no deferred/quoted compile context for
	// ModeNow to distinguish itself from; that distinction only matters
	// to a higher-level language layered on top.
	if e.Meta.Kind() == dict.KindFuncLarge {
		return c.M.ExecuteLarge(image.Ref(e.Val))
	}
	return c.M.Execute(image.Ref(e.Val))
}

// inlineCopy implements the inline-body handling of `$`: the body's
// first byte holds its length; copy that many bytes into the heap
// without executing.
func (c *Compiler) inlineCopy(e dict.Entry) error {
	bodyRef := image.Ref(e.Val)
	n, err := c.M.Img.GetU8(bodyRef)
	if err != nil {
		return err
	}
	if n == 0 {
		return nil
	}
	dst, err := c.M.CurBBA.AllocUnaligned(uint32(n))
	if err != nil {
		return err
	}
	if dst == image.NullRef {
		return errcode.New(errcode.EOOM, "'$': arena exhausted copying inline body")
	}
	return c.M.Img.Memmove(dst, bodyRef+1, int(n))
}
