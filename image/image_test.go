// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package image

import (
	"testing"

	"github.com/cznic/spor/errcode"
)

func TestViewBounds(t *testing.T) {
	m := New(1)
	if _, err := m.View(NullRef, 1); err == nil {
		t.Fatal("expected error dereferencing the null reference")
	} else if code, _ := errcode.CodeOf(err); code != errcode.ENull {
		t.Fatalf("got code %v, want E_null", code)
	}

	if _, err := m.View(Ref(BlockSize), 1); err == nil {
		t.Fatal("expected out-of-bounds error")
	} else if code, _ := errcode.CodeOf(err); code != errcode.EOOB {
		t.Fatalf("got code %v, want E_oob", code)
	}

	if _, err := m.View(Ref(BlockSize-1), 2); err == nil {
		t.Fatal("expected out-of-bounds error for a window straddling the end")
	}
}

func TestPutGetU8(t *testing.T) {
	m := New(1)
	if err := m.PutU8(4, 0x42); err != nil {
		t.Fatal(err)
	}
	v, err := m.GetU8(4)
	if err != nil {
		t.Fatal(err)
	}
	if v != 0x42 {
		t.Fatalf("got %#x, want 0x42", v)
	}
}

func TestBigEndianRoundTrip(t *testing.T) {
	m := New(1)
	for _, sz := range []int{1, 2, 4} {
		if err := m.PutBE(16, sz, 0x01020304); err != nil {
			t.Fatal(err)
		}
		v, err := m.GetBE(16, sz)
		if err != nil {
			t.Fatal(err)
		}
		want := uint32(0x01020304) & (1<<(uint(sz)*8) - 1)
		if sz == 4 {
			want = 0x01020304
		}
		if v != want {
			t.Fatalf("size %d: got %#x, want %#x", sz, v, want)
		}
	}
	// Big-endian byte layout directly, for width 2.
	if err := m.PutBE(32, 2, 0xABCD); err != nil {
		t.Fatal(err)
	}
	b, err := m.View(32, 2)
	if err != nil {
		t.Fatal(err)
	}
	if b[0] != 0xAB || b[1] != 0xCD {
		t.Fatalf("got %02x%02x, want ab cd", b[0], b[1])
	}
}

func TestMemsetMemcmp(t *testing.T) {
	m := New(1)
	if err := m.Memset(8, 4, 0x7A); err != nil {
		t.Fatal(err)
	}
	if err := m.Memset(16, 4, 0x7A); err != nil {
		t.Fatal(err)
	}
	c, err := m.Memcmp(8, 16, 4)
	if err != nil {
		t.Fatal(err)
	}
	if c != 0 {
		t.Fatalf("got %d, want 0", c)
	}
	if err := m.PutU8(16, 0x7B); err != nil {
		t.Fatal(err)
	}
	c, err = m.Memcmp(8, 16, 4)
	if err != nil {
		t.Fatal(err)
	}
	if c >= 0 {
		t.Fatalf("got %d, want negative", c)
	}
}

func TestMemmoveOverlap(t *testing.T) {
	m := New(1)
	for i := 0; i < 8; i++ {
		if err := m.PutU8(Ref(8+i), byte(i)); err != nil {
			t.Fatal(err)
		}
	}
	// Overlapping forward move: src=[8,14), dst=[10,16).
	if err := m.Memmove(10, 8, 6); err != nil {
		t.Fatal(err)
	}
	want := []byte{0, 1, 0, 1, 2, 3, 4, 5}
	got, err := m.View(8, 8)
	if err != nil {
		t.Fatal(err)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("byte %d: got %d, want %d", i, got[i], want[i])
		}
	}
}
