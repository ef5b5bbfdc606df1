// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dict

import (
	"github.com/cznic/spor/errcode"
	"github.com/cznic/spor/image"
)

// MaxCdataLen is the largest payload a one-byte length prefix can carry.
const MaxCdataLen = 255

// WriteCdata allocates a length-prefixed counted-data record for key
// (unaligned, since cdata has no alignment requirement of its own) and
// returns its reference. It is the key-encoding step `=` performs before
// building a DNode.
func WriteCdata(img *image.Image, arena *image.BBA, key []byte) (image.Ref, error) {
	if len(key) > MaxCdataLen {
		return image.NullRef, errcode.NewArg(errcode.ECTLen, "cdata: key too long", int64(len(key)))
	}
	ref, err := arena.AllocUnaligned(uint32(1 + len(key)))
	if err != nil {
		return image.NullRef, err
	}
	if ref == image.NullRef {
		return image.NullRef, nil
	}
	if err := img.PutU8(ref, byte(len(key))); err != nil {
		return image.NullRef, err
	}
	if len(key) > 0 {
		b, err := img.View(ref+1, len(key))
		if err != nil {
			return image.NullRef, err
		}
		copy(b, key)
	}
	return ref, nil
}

// ReadCdata reads the length-prefixed record at ref back into a Slc
// describing its payload (not including the length byte itself).
func ReadCdata(img *image.Image, ref image.Ref) (Slc, error) {
	n, err := img.GetU8(ref)
	if err != nil {
		return Slc{}, err
	}
	return Slc{Ref: ref + 1, Len: uint32(n)}, nil
}
