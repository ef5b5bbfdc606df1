// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package source

import (
	"testing"

	"github.com/cznic/spor/image"
)

func scanAll(t *testing.T, text string) []string {
	t.Helper()
	m := image.New(1)
	f, err := Open(NewBytesReader([]byte(text)), 0)
	if err != nil {
		t.Fatal(err)
	}
	sc := NewScanner(m, 64, f)
	var toks []string
	for {
		tok, err := sc.Scan()
		if err != nil {
			t.Fatal(err)
		}
		if tok == nil {
			break
		}
		toks = append(toks, string(tok))
	}
	return toks
}

func TestScanGroups(t *testing.T) {
	got := scanAll(t, "hi there$==")
	want := []string{"hi", "there", "$", "=="}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestScanHexWithUnderscore(t *testing.T) {
	got := scanAll(t, ".4 #1002_3004")
	want := []string{".", "4", "#", "1002_3004"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestScanSingleCharsAlwaysLengthOne(t *testing.T) {
	got := scanAll(t, "$$")
	want := []string{"$", "$"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestScanLineCounting(t *testing.T) {
	m := image.New(1)
	f, err := Open(NewBytesReader([]byte("a\nb\nc")), 0)
	if err != nil {
		t.Fatal(err)
	}
	sc := NewScanner(m, 64, f)
	for i := 0; i < 3; i++ {
		if _, err := sc.Scan(); err != nil {
			t.Fatal(err)
		}
	}
	if sc.Line != 3 {
		t.Fatalf("got line %d, want 3", sc.Line)
	}
}

func TestScanEmptyInput(t *testing.T) {
	got := scanAll(t, "   \n\t  ")
	if len(got) != 0 {
		t.Fatalf("got %v, want no tokens", got)
	}
}

func TestScanTokenTooLong(t *testing.T) {
	m := image.New(1)
	long := make([]byte, TokenSize+1)
	for i := range long {
		long[i] = 'a'
	}
	f, err := Open(NewBytesReader(long), 0)
	if err != nil {
		t.Fatal(err)
	}
	sc := NewScanner(m, 64, f)
	if _, err := sc.Scan(); err == nil {
		t.Fatal("expected E_cTLen for an over-long token")
	}
}
