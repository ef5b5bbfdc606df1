// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"fmt"
	"sort"

	"github.com/cznic/sortutil"
	"github.com/cznic/spor/dict"
	"github.com/cznic/spor/image"
	"github.com/cznic/spor/vm"
)

// ValueEntry is one row of a ValueIndex: a WS/dictionary value and every
// name currently bound to it.
type ValueEntry struct {
	Value uint32
	Names []string
}

// ValueIndex builds a value-to-names reverse index of the dictionary,
// ordered by value rather than by the BST's own lexicographic key order
// — the ordering Disassemble's symbolic annotations want (e.g. listing
// every instruction in opcode order). Map iteration order is unspecified in
// Go, so the distinct values are collected and sorted with
// sortutil.Int64Slice.
func (c *Compiler) ValueIndex() ([]ValueEntry, error) {
	byVal := map[uint32][]string{}
	if err := c.Dict.Walk(func(e dict.Entry) bool {
		byVal[e.Val] = append(byVal[e.Val], string(e.Name))
		return true
	}); err != nil {
		return nil, err
	}
	keys := make(sortutil.Int64Slice, 0, len(byVal))
	for v := range byVal {
		keys = append(keys, int64(v))
	}
	sort.Sort(keys)
	out := make([]ValueEntry, 0, len(keys))
	for _, k := range keys {
		names := byVal[uint32(k)]
		sort.Strings(names)
		out = append(out, ValueEntry{Value: uint32(k), Names: names})
	}
	return out, nil
}

// Disassemble decodes the byte range [start, start+n) as a flat
// instruction stream, one mnemonic per line, annotating any immediate
// operand with the symbolic name(s) currently bound to that value in
// the dictionary (if any). It is a debug-only diagnostic, exercised by
// tests asserting compiled output.
func (c *Compiler) Disassemble(start image.Ref, n int) ([]string, error) {
	names, err := c.ValueIndex()
	if err != nil {
		return nil, err
	}
	byVal := make(map[uint32]string, len(names))
	for _, e := range names {
		byVal[e.Value] = joinNames(e.Names)
	}

	var out []string
	ep := start
	end := start + image.Ref(n)
	for ep < end {
		opAddr := ep
		b, err := c.M.Img.GetU8(ep)
		if err != nil {
			return nil, err
		}
		ep++
		if b >= vm.SlitBase {
			out = append(out, fmt.Sprintf("%04x: SLIT %d", uint32(opAddr), b&0x3F))
			continue
		}
		sc, op := vm.Decode(b)
		line := fmt.Sprintf("%04x: %s", uint32(opAddr), op.Mnemonic())
		// Immediate widths as the VM's dispatch reads them.
		w := 0
		switch op.Mnemonic() {
		case "LIT", "JMPL", "JZL", "XL", "XS":
			w = sc.Width()
		case "FTO", "NFTO", "SRO", "NSRO", "FTL", "NFTL", "SRL", "NSRL", "RG", "DV":
			w = 1
		case "FTG", "NFTG", "SRG", "NSRG":
			w = 2
		}
		if w > 0 {
			v, err := c.M.Img.GetBE(ep, w)
			if err != nil {
				return nil, err
			}
			ep += image.Ref(w)
			line += fmt.Sprintf(" %#x", v)
			if nm, ok := byVal[v]; ok && nm != "" {
				line += " ; " + nm
			}
		}
		out = append(out, line)
	}
	return out, nil
}

func joinNames(names []string) string {
	s := ""
	for i, n := range names {
		if i > 0 {
			s += "/"
		}
		s += n
	}
	return s
}
