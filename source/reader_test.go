// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNativeReaderRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "src.spor")
	if err := os.WriteFile(path, []byte("#42 #0 =mid"), 0o644); err != nil {
		t.Fatal(err)
	}
	r := NewNativeReader(path)
	f, err := Open(r, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := f.ReadAtLeast(1); err != nil {
		t.Fatal(err)
	}
	if err := f.ReadAtLeast(100); err != nil {
		t.Fatal(err)
	}
	if string(f.Pending()) != "#42 #0 =mid" {
		t.Fatalf("got %q", f.Pending())
	}
}

func TestBytesReaderEOF(t *testing.T) {
	r := NewBytesReader([]byte("x"))
	if err := r.Open(); err != nil {
		t.Fatal(err)
	}
	buf := make([]byte, 4)
	n, err := r.Read(buf)
	if err != nil || n != 1 {
		t.Fatalf("got n=%d err=%v", n, err)
	}
	n, err = r.Read(buf)
	if n != 0 {
		t.Fatalf("got n=%d, want 0", n)
	}
	if err == nil {
		t.Fatal("expected io.EOF")
	}
}
