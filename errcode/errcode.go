// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package errcode defines the named error codes shared by every layer of
// the spor toolchain: the memory image, the stacks, the dictionary, the
// scanner/compiler and the VM all raise the same vocabulary of codes so a
// caller one level up (the catch device op, a top level driver) can react
// to them uniformly regardless of which subsystem produced one.
package errcode

import "fmt"

// Code is a 16-bit error code, carried by every Error value produced by
// this module.
type Code uint16

const (
	ENull Code = iota + 1
	EOOB
	EStkUnd
	EStkOvr
	ESz
	EDivZero
	EIntern
	EAlign4
	EOOM
	ENewBlock
	ECInstr
	ECReg
	ECToken
	ECKey
	ECNoKey
	ECHex
	ECTLen
	EEOF
	EIO
	EDV
)

var names = map[Code]string{
	ENull:     "E_null",
	EOOB:      "E_oob",
	EStkUnd:   "E_stkUnd",
	EStkOvr:   "E_stkOvr",
	ESz:       "E_sz",
	EDivZero:  "E_divZero",
	EIntern:   "E_intern",
	EAlign4:   "E_align4",
	EOOM:      "E_oom",
	ENewBlock: "E_newBlock",
	ECInstr:   "E_cInstr",
	ECReg:     "E_cReg",
	ECToken:   "E_cToken",
	ECKey:     "E_cKey",
	ECNoKey:   "E_cNoKey",
	ECHex:     "E_cHex",
	ECTLen:    "E_cTLen",
	EEOF:      "E_eof",
	EIO:       "E_io",
	EDV:       "E_dv",
}

func (c Code) String() string {
	if s, ok := names[c]; ok {
		return s
	}
	return fmt.Sprintf("E_%04x", uint16(c))
}

// Error is the concrete error value raised by every package in this
// module. It carries enough structured data (the code, plus whatever
// context the raiser supplied) to print the error code and source line
// at the top of the call stack.
type Error struct {
	Code Code
	Msg  string
	Arg  int64 // auxiliary numeric context (offset, requested size, opcode...), 0 if unused
}

func (e *Error) Error() string {
	if e.Arg != 0 {
		return fmt.Sprintf("%s: %s (%#x)", e.Code, e.Msg, e.Arg)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

// New constructs an Error with no auxiliary argument.
func New(code Code, msg string) *Error { return &Error{Code: code, Msg: msg} }

// NewArg constructs an Error carrying an auxiliary numeric argument.
func NewArg(code Code, msg string, arg int64) *Error { return &Error{Code: code, Msg: msg, Arg: arg} }

// CodeOf extracts the Code carried by err, if err is an *Error. ok is
// false for any other error, including nil.
func CodeOf(err error) (code Code, ok bool) {
	if e, isErr := err.(*Error); isErr {
		return e.Code, true
	}
	return 0, false
}
