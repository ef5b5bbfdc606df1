// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package source

import "testing"

func TestReadAtLeastFillsAndStopsAtEOF(t *testing.T) {
	f, err := Open(NewBytesReader([]byte("abcdef")), 1)
	if err != nil {
		t.Fatal(err)
	}
	if err := f.ReadAtLeast(3); err != nil {
		t.Fatal(err)
	}
	if f.Unread() < 3 {
		t.Fatalf("got %d unread, want at least 3", f.Unread())
	}
	if err := f.ReadAtLeast(100); err != nil {
		t.Fatal(err)
	}
	if f.Code() != CodeEOF {
		t.Fatalf("got code %v, want eof", f.Code())
	}
	if f.Unread() != 6 {
		t.Fatalf("got %d unread, want 6", f.Unread())
	}
}

func TestAdvanceAndCompact(t *testing.T) {
	f, err := Open(NewBytesReader([]byte("abcdef")), 0)
	if err != nil {
		t.Fatal(err)
	}
	if err := f.ReadAtLeast(6); err != nil {
		t.Fatal(err)
	}
	f.Advance(2)
	f.Compact()
	if string(f.Pending()) != "cdef" {
		t.Fatalf("got %q, want %q", f.Pending(), "cdef")
	}
}

func TestFidPreserved(t *testing.T) {
	f, err := Open(NewBytesReader(nil), 7)
	if err != nil {
		t.Fatal(err)
	}
	if f.Fid() != 7 {
		t.Fatalf("got %d, want 7", f.Fid())
	}
}
