// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dict implements the counted-data-keyed binary search tree that
// bridges the compiler and the VM: every user-defined symbol and every
// instruction mnemonic is a DNode in one tree, living in the same bump
// arena as the code it describes.
package dict

import (
	"github.com/cznic/spor/errcode"
	"github.com/cznic/spor/image"
)

// Kind classifies what a DNode's value means.
type Kind uint8

const (
	KindConst Kind = iota
	KindVar
	KindFuncSmall // interpreted function, no locals frame
	KindFuncLarge // interpreted function, has a locals frame (XL call)
	KindSubDict   // value is the root Ref of a nested dictionary
	KindInstr     // value is an opcode (or opcode template needing |size_class)
)

func (k Kind) String() string {
	switch k {
	case KindConst:
		return "const"
	case KindVar:
		return "var"
	case KindFuncSmall:
		return "func(small)"
	case KindFuncLarge:
		return "func(large)"
	case KindSubDict:
		return "subdict"
	case KindInstr:
		return "instr"
	default:
		return "kind?"
	}
}

// FuncMode further distinguishes how `$` should treat a function-kind
// entry. It is meaningless for non-function kinds.
type FuncMode uint8

const (
	ModeNormal FuncMode = iota
	ModeNow              // execute at compile time regardless of context
	ModeSyntax           // push asNow=false before calling
	ModeInline           // copy body bytes rather than calling
	ModeComment          // never executed; documentation-only entry
)

// Meta packs Kind (3 bits), FuncMode (3 bits), a native flag and a
// sized-family flag into a DNode's single m1 byte.
// Sized-family marks instruction entries whose opcode must be or'd with
// the compiler's current size class before emission (the memory and
// jump families); it is recorded explicitly here rather than inferred
// from opcode bit patterns.
type Meta uint8

const (
	metaKindMask  = 0x07
	metaModeShift = 3
	metaModeMask  = 0x07
	metaNative    = 1 << 6
	metaSized     = 1 << 7
)

// NewMeta packs a Kind/FuncMode pair and flags into a Meta byte.
func NewMeta(kind Kind, mode FuncMode, native, sizedFamily bool) Meta {
	m := Meta(kind&metaKindMask) | Meta(mode&metaModeMask)<<metaModeShift
	if native {
		m |= metaNative
	}
	if sizedFamily {
		m |= metaSized
	}
	return m
}

func (m Meta) Kind() Kind { return Kind(m & metaKindMask) }
func (m Meta) Mode() FuncMode { return FuncMode((m >> metaModeShift) & metaModeMask) }
func (m Meta) Native() bool { return m&metaNative != 0 }
func (m Meta) SizedFamily() bool { return m&metaSized != 0 }
func (m Meta) IsFunc() bool { k := m.Kind(); return k == KindFuncSmall || k == KindFuncLarge }

// node field offsets within a DNode's 17-byte on-image record:
// ckey(4) l(4) r(4) v(4) m1(1).
const (
	offCkey  = 0
	offL     = 4
	offR     = 8
	offV     = 12
	offM1    = 16
	nodeSize = 17
)

// Dict is an unbalanced binary search tree of DNodes ordered by
// lexicographic comparison of their cdata key, stored inside one image
// and grown from one bump arena.
type Dict struct {
	img  *image.Image
	root image.Ref
}

// New creates an empty dictionary over img.
func New(img *image.Image) *Dict { return &Dict{img: img} }

// Root returns the tree's current root reference (NullRef if empty).
func (d *Dict) Root() image.Ref { return d.root }

// SetRoot installs root directly; used when switching to a sub-dictionary
// (a KindSubDict entry's value is itself a root Ref).
func (d *Dict) SetRoot(root image.Ref) { d.root = root }

func (d *Dict) nodeKey(n image.Ref) (Slc, error) {
	keyRef, err := d.img.GetBE(n+offCkey, 4)
	if err != nil {
		return Slc{}, err
	}
	return ReadCdata(d.img, image.Ref(keyRef))
}

func (d *Dict) nodeChild(n image.Ref, off int) (image.Ref, error) {
	v, err := d.img.GetBE(n+image.Ref(off), 4)
	return image.Ref(v), err
}

func (d *Dict) setNodeChild(n image.Ref, off int, child image.Ref) error {
	return d.img.PutBE(n+image.Ref(off), 4, uint32(child))
}

// find walks from root comparing name against each node's key. It
// returns the last node visited and the sign of the comparison against
// it (0 meaning an exact match was found).
func (d *Dict) find(name []byte) (last image.Ref, sign int, err error) {
	cur := d.root
	if cur == image.NullRef {
		return image.NullRef, -1, nil
	}
	for {
		key, err := d.nodeKey(cur)
		if err != nil {
			return image.NullRef, 0, err
		}
		c, err := CmpBytes(d.img, key, name)
		if err != nil {
			return image.NullRef, 0, err
		}
		if c == 0 {
			return cur, 0, nil
		}
		off := offL
		if c < 0 {
			off = offR
		}
		next, err := d.nodeChild(cur, off)
		if err != nil {
			return image.NullRef, 0, err
		}
		if next == image.NullRef {
			return cur, c, nil
		}
		cur = next
	}
}

// Find returns 0 and the matching node ref on an exact hit, or the
// final comparison sign and the last node visited on a miss.
func (d *Dict) Find(name []byte) (node image.Ref, sign int, err error) {
	return d.find(name)
}

// Entry is the decoded, in-memory view of one DNode, returned by Get and
// yielded by Walk.
type Entry struct {
	Node image.Ref
	Name []byte
	Meta Meta
	Val  uint32
}

// Get finds name and decodes its full entry, failing with E_cNoKey if
// absent.
func (d *Dict) Get(name []byte) (Entry, error) {
	node, sign, err := d.find(name)
	if err != nil {
		return Entry{}, err
	}
	if node == image.NullRef || sign != 0 {
		return Entry{}, errcode.New(errcode.ECNoKey, "dict: key not found")
	}
	return d.decode(node)
}

func (d *Dict) decode(node image.Ref) (Entry, error) {
	key, err := d.nodeKey(node)
	if err != nil {
		return Entry{}, err
	}
	name, err := key.Bytes(d.img)
	if err != nil {
		return Entry{}, err
	}
	v, err := d.img.GetBE(node+offV, 4)
	if err != nil {
		return Entry{}, err
	}
	m, err := d.img.GetU8(node + offM1)
	if err != nil {
		return Entry{}, err
	}
	return Entry{Node: node, Name: name, Meta: Meta(m), Val: v}, nil
}

// Add allocates a new DNode for name/value/meta and attaches it in
// lexicographic order, failing with E_cKey if name is already present.
// Both the key and the node are allocated from arena, so the tree lives
// alongside whatever else the caller's current arena holds.
func (d *Dict) Add(arena *image.BBA, name []byte, value uint32, meta Meta) (image.Ref, error) {
	last, sign, err := d.find(name)
	if err != nil {
		return image.NullRef, err
	}
	if d.root != image.NullRef && sign == 0 {
		return image.NullRef, errcode.New(errcode.ECKey, "dict: key already defined")
	}
	keyRef, err := WriteCdata(d.img, arena, name)
	if err != nil {
		return image.NullRef, err
	}
	if keyRef == image.NullRef {
		return image.NullRef, nil
	}
	node, err := arena.Alloc(nodeSize)
	if err != nil {
		return image.NullRef, err
	}
	if node == image.NullRef {
		return image.NullRef, nil
	}
	if err := d.img.PutBE(node+offCkey, 4, uint32(keyRef)); err != nil {
		return image.NullRef, err
	}
	if err := d.setNodeChild(node, offL, image.NullRef); err != nil {
		return image.NullRef, err
	}
	if err := d.setNodeChild(node, offR, image.NullRef); err != nil {
		return image.NullRef, err
	}
	if err := d.img.PutBE(node+offV, 4, value); err != nil {
		return image.NullRef, err
	}
	if err := d.img.PutU8(node+offM1, byte(meta)); err != nil {
		return image.NullRef, err
	}
	if d.root == image.NullRef {
		d.root = node
		return node, nil
	}
	off := offL
	if sign < 0 {
		off = offR
	}
	if err := d.setNodeChild(last, off, node); err != nil {
		return image.NullRef, err
	}
	return node, nil
}

// Walk performs an in-order traversal of the tree, calling fn for every
// entry until it returns false or the tree is exhausted. Compilation
// itself never walks; only asm's ValueIndex (and through it Disassemble)
// and tests do.
func (d *Dict) Walk(fn func(Entry) bool) error {
	var rec func(n image.Ref) (bool, error)
	rec = func(n image.Ref) (bool, error) {
		if n == image.NullRef {
			return true, nil
		}
		l, err := d.nodeChild(n, offL)
		if err != nil {
			return false, err
		}
		if cont, err := rec(l); err != nil || !cont {
			return cont, err
		}
		e, err := d.decode(n)
		if err != nil {
			return false, err
		}
		if !fn(e) {
			return false, nil
		}
		r, err := d.nodeChild(n, offR)
		if err != nil {
			return false, err
		}
		return rec(r)
	}
	_, err := rec(d.root)
	return err
}
