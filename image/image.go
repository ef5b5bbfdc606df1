// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package image implements the flat, block-structured memory region that
// every other package in this module addresses by offset: the block
// allocator (block.go), the bump arena (bump.go), the stacks and the
// dictionary all live inside one Image and refer to each other with Ref
// values rather than native pointers.
package image

import (
	"encoding/binary"

	"github.com/cznic/spor/errcode"
)

// Ref is a 32-bit offset into an Image. The zero Ref is reserved and
// never refers to a valid datum.
type Ref uint32

// NullRef is the reserved, never-valid reference.
const NullRef Ref = 0

const (
	// BlockPO2 and BlockSize fix the unit of allocation the block
	// allocator and bump arena both work in.
	BlockPO2  = 12
	BlockSize = 1 << BlockPO2
)

// Image is a contiguous byte region sized in whole blocks. All in-core
// references into it are Ref offsets, never native pointers.
type Image struct {
	buf []byte
}

// New allocates a fresh Image of nblocks blocks, zeroed.
func New(nblocks int) *Image {
	return &Image{buf: make([]byte, nblocks*BlockSize)}
}

// Size returns the Image's total size in bytes.
func (m *Image) Size() int { return len(m.buf) }

// Blocks returns the Image's capacity in whole blocks.
func (m *Image) Blocks() int { return len(m.buf) / BlockSize }

// View is the single bounds-checking primitive every multi-byte accessor
// in this package is built on: it produces a typed, in-bounds []byte
// window or an E_null/E_oob Error. Access out of bounds is a fatal
// error; callers that need a recoverable exhaustion signal (the
// allocators) never dereference through View with an already-validated
// zero ref.
func (m *Image) View(ref Ref, size int) ([]byte, error) {
	if ref == NullRef {
		return nil, errcode.New(errcode.ENull, "nil reference dereferenced")
	}
	if size < 0 {
		return nil, errcode.NewArg(errcode.ESz, "negative size", int64(size))
	}
	o := int64(ref)
	end := o + int64(size)
	if end > int64(len(m.buf)) {
		return nil, errcode.NewArg(errcode.EOOB, "reference out of bounds", int64(ref))
	}
	return m.buf[o:end], nil
}

// GetU8/PutU8 access a single byte.
func (m *Image) GetU8(ref Ref) (byte, error) {
	b, err := m.View(ref, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (m *Image) PutU8(ref Ref, v byte) error {
	b, err := m.View(ref, 1)
	if err != nil {
		return err
	}
	b[0] = v
	return nil
}

// GetBE/PutBE access a big-endian unsigned integer of width size (1, 2 or
// 4 bytes), as used by the compiler's `,` emission, the FT/SR
// big-endian memory family and on-image dictionary records.
func (m *Image) GetBE(ref Ref, size int) (uint32, error) {
	b, err := m.View(ref, size)
	if err != nil {
		return 0, err
	}
	switch size {
	case 1:
		return uint32(b[0]), nil
	case 2:
		return uint32(binary.BigEndian.Uint16(b)), nil
	case 4:
		return binary.BigEndian.Uint32(b), nil
	default:
		return 0, errcode.NewArg(errcode.ESz, "unsupported big-endian width", int64(size))
	}
}

func (m *Image) PutBE(ref Ref, size int, v uint32) error {
	b, err := m.View(ref, size)
	if err != nil {
		return err
	}
	switch size {
	case 1:
		b[0] = byte(v)
	case 2:
		binary.BigEndian.PutUint16(b, uint16(v))
	case 4:
		binary.BigEndian.PutUint32(b, v)
	default:
		return errcode.NewArg(errcode.ESz, "unsupported big-endian width", int64(size))
	}
	return nil
}

// GetNE/PutNE are the native-endian fetch/store counterparts, backing
// the NFT/NSR instruction family.
func (m *Image) GetNE(ref Ref, size int) (uint32, error) {
	b, err := m.View(ref, size)
	if err != nil {
		return 0, err
	}
	switch size {
	case 1:
		return uint32(b[0]), nil
	case 2:
		return uint32(binary.NativeEndian.Uint16(b)), nil
	case 4:
		return binary.NativeEndian.Uint32(b), nil
	default:
		return 0, errcode.NewArg(errcode.ESz, "unsupported native-endian width", int64(size))
	}
}

func (m *Image) PutNE(ref Ref, size int, v uint32) error {
	b, err := m.View(ref, size)
	if err != nil {
		return err
	}
	switch size {
	case 1:
		b[0] = byte(v)
	case 2:
		binary.NativeEndian.PutUint16(b, uint16(v))
	case 4:
		binary.NativeEndian.PutUint32(b, v)
	default:
		return errcode.NewArg(errcode.ESz, "unsupported native-endian width", int64(size))
	}
	return nil
}

// Memset, Memcmp and Memmove are the bounds-checked primitives behind the
// `memset`/`memcmp`/`memmove` device ops.
func (m *Image) Memset(ref Ref, size int, v byte) error {
	b, err := m.View(ref, size)
	if err != nil {
		return err
	}
	for i := range b {
		b[i] = v
	}
	return nil
}

func (m *Image) Memcmp(a, b Ref, size int) (int, error) {
	ba, err := m.View(a, size)
	if err != nil {
		return 0, err
	}
	bb, err := m.View(b, size)
	if err != nil {
		return 0, err
	}
	for i := 0; i < size; i++ {
		if ba[i] != bb[i] {
			if ba[i] < bb[i] {
				return -1, nil
			}
			return 1, nil
		}
	}
	return 0, nil
}

func (m *Image) Memmove(dst, src Ref, size int) error {
	sb, err := m.View(src, size)
	if err != nil {
		return err
	}
	// Snapshot the source first: dst and src ranges may overlap, and View
	// returns windows into the same backing array.
	tmp := make([]byte, size)
	copy(tmp, sb)
	db, err := m.View(dst, size)
	if err != nil {
		return err
	}
	copy(db, tmp)
	return nil
}
