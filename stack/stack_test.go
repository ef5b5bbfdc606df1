// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stack

import (
	"testing"

	"github.com/cznic/spor/errcode"
	"github.com/cznic/spor/image"
)

func newStk(t *testing.T, n, elem int) *Stk {
	t.Helper()
	m := image.New(1)
	s, err := New(m, 64, uint32(n*elem), elem)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestPushPopOrder(t *testing.T) {
	s := newStk(t, 4, 4)
	for _, v := range []uint32{1, 2, 3} {
		if err := s.Push(v); err != nil {
			t.Fatal(err)
		}
	}
	for _, want := range []uint32{3, 2, 1} {
		got, err := s.Pop()
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Fatalf("got %d, want %d", got, want)
		}
	}
}

func TestOverflow(t *testing.T) {
	s := newStk(t, 2, 4)
	if err := s.Push(1); err != nil {
		t.Fatal(err)
	}
	if err := s.Push(2); err != nil {
		t.Fatal(err)
	}
	err := s.Push(3)
	if err == nil {
		t.Fatal("expected overflow")
	}
	if code, _ := errcode.CodeOf(err); code != errcode.EStkOvr {
		t.Fatalf("got %v, want E_stkOvr", code)
	}
}

func TestUnderflow(t *testing.T) {
	s := newStk(t, 2, 4)
	_, err := s.Pop()
	if err == nil {
		t.Fatal("expected underflow")
	}
	if code, _ := errcode.CodeOf(err); code != errcode.EStkUnd {
		t.Fatalf("got %v, want E_stkUnd", code)
	}
}

func TestPeek(t *testing.T) {
	s := newStk(t, 4, 2)
	for _, v := range []uint32{10, 20, 30} {
		if err := s.Push(v); err != nil {
			t.Fatal(err)
		}
	}
	if v, err := s.Peek(0); err != nil || v != 30 {
		t.Fatalf("got %d,%v want 30", v, err)
	}
	if v, err := s.Peek(2); err != nil || v != 10 {
		t.Fatalf("got %d,%v want 10", v, err)
	}
	if _, err := s.Peek(3); err == nil {
		t.Fatal("expected out-of-range error")
	}
}

func TestDropAndReset(t *testing.T) {
	s := newStk(t, 4, 1)
	for _, v := range []uint32{1, 2, 3} {
		if err := s.Push(v); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.Drop(2); err != nil {
		t.Fatal(err)
	}
	if s.Len() != 1 {
		t.Fatalf("got %d, want 1", s.Len())
	}
	s.Reset()
	if s.Len() != 0 {
		t.Fatalf("got %d, want 0", s.Len())
	}
}

func TestSetSPRoundTrip(t *testing.T) {
	s := newStk(t, 4, 4)
	if err := s.Push(1); err != nil {
		t.Fatal(err)
	}
	sp := s.SP()
	if err := s.Push(2); err != nil {
		t.Fatal(err)
	}
	if err := s.SetSP(sp); err != nil {
		t.Fatal(err)
	}
	if s.Len() != 1 {
		t.Fatalf("got %d, want 1", s.Len())
	}
	if err := s.SetSP(uint32(s.Cap()*5 + 100)); err == nil {
		t.Fatal("expected error restoring an out-of-range SP")
	}
}
