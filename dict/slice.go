// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dict

import "github.com/cznic/spor/image"

// Slc is a byte-slice view over the image: {ref, len}.
type Slc struct {
	Ref image.Ref
	Len uint32
}

// Bytes reads a copy of the slice's bytes out of img.
func (s Slc) Bytes(img *image.Image) ([]byte, error) {
	b, err := img.View(s.Ref, int(s.Len))
	if err != nil {
		return nil, err
	}
	cp := make([]byte, len(b))
	copy(cp, b)
	return cp, nil
}

// Cmp compares two slices lexicographically, byte-wise, the shorter
// slice sorting before the longer one when they share a common prefix.
// It returns -1, 0 or +1.
func Cmp(img *image.Image, a, b Slc) (int, error) {
	n := a.Len
	if b.Len < n {
		n = b.Len
	}
	if n > 0 {
		c, err := img.Memcmp(a.Ref, b.Ref, int(n))
		if err != nil {
			return 0, err
		}
		if c != 0 {
			return c, nil
		}
	}
	switch {
	case a.Len < b.Len:
		return -1, nil
	case a.Len > b.Len:
		return 1, nil
	default:
		return 0, nil
	}
}

// CmpBytes compares a Slc stored in the image against a plain Go byte
// slice held outside of it, the shape every dictionary lookup from a
// freshly scanned token needs (the token sits in the scanner's
// place-buffer, a name the caller supplies as a bare []byte).
func CmpBytes(img *image.Image, a Slc, b []byte) (int, error) {
	ab, err := img.View(a.Ref, int(a.Len))
	if err != nil {
		return 0, err
	}
	n := len(ab)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if ab[i] != b[i] {
			if ab[i] < b[i] {
				return -1, nil
			}
			return 1, nil
		}
	}
	switch {
	case int(a.Len) < len(b):
		return -1, nil
	case int(a.Len) > len(b):
		return 1, nil
	default:
		return 0, nil
	}
}
