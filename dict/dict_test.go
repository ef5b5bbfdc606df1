// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dict

import (
	"testing"

	"github.com/cznic/spor/errcode"
	"github.com/cznic/spor/image"
)

func newFixture(t *testing.T) (*Dict, *image.BBA) {
	t.Helper()
	m := image.New(5)
	ba, err := image.NewBA(m, image.BlockSize, 4)
	if err != nil {
		t.Fatal(err)
	}
	return New(m), image.NewBBA(ba)
}

func TestAddGetRoundTrip(t *testing.T) {
	d, arena := newFixture(t)
	if _, err := d.Add(arena, []byte("mid"), 0x42, NewMeta(KindConst, ModeNormal, false, false)); err != nil {
		t.Fatal(err)
	}
	e, err := d.Get([]byte("mid"))
	if err != nil {
		t.Fatal(err)
	}
	if e.Val != 0x42 {
		t.Fatalf("got %#x, want 0x42", e.Val)
	}
	if e.Meta.Kind() != KindConst {
		t.Fatalf("got kind %v, want const", e.Meta.Kind())
	}
}

func TestAddDuplicateKeyFails(t *testing.T) {
	d, arena := newFixture(t)
	if _, err := d.Add(arena, []byte("x"), 1, NewMeta(KindConst, ModeNormal, false, false)); err != nil {
		t.Fatal(err)
	}
	_, err := d.Add(arena, []byte("x"), 2, NewMeta(KindConst, ModeNormal, false, false))
	if err == nil {
		t.Fatal("expected duplicate-key error")
	}
	if code, _ := errcode.CodeOf(err); code != errcode.ECKey {
		t.Fatalf("got %v, want E_cKey", code)
	}
}

func TestGetMissingKeyFails(t *testing.T) {
	d, _ := newFixture(t)
	_, err := d.Get([]byte("nope"))
	if err == nil {
		t.Fatal("expected missing-key error")
	}
	if code, _ := errcode.CodeOf(err); code != errcode.ECNoKey {
		t.Fatalf("got %v, want E_cNoKey", code)
	}
}

func TestWalkIsInOrder(t *testing.T) {
	d, arena := newFixture(t)
	names := []string{"delta", "alpha", "charlie", "bravo", "echo"}
	for i, n := range names {
		if _, err := d.Add(arena, []byte(n), uint32(i), NewMeta(KindVar, ModeNormal, false, false)); err != nil {
			t.Fatal(err)
		}
	}
	var got []string
	if err := d.Walk(func(e Entry) bool {
		got = append(got, string(e.Name))
		return true
	}); err != nil {
		t.Fatal(err)
	}
	want := []string{"alpha", "bravo", "charlie", "delta", "echo"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestWalkEarlyStop(t *testing.T) {
	d, arena := newFixture(t)
	for _, n := range []string{"a", "b", "c"} {
		if _, err := d.Add(arena, []byte(n), 0, NewMeta(KindVar, ModeNormal, false, false)); err != nil {
			t.Fatal(err)
		}
	}
	n := 0
	if err := d.Walk(func(e Entry) bool { n++; return false }); err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("got %d, want 1", n)
	}
}

func TestMetaPacking(t *testing.T) {
	m := NewMeta(KindFuncLarge, ModeSyntax, true, true)
	if m.Kind() != KindFuncLarge {
		t.Fatalf("kind: got %v", m.Kind())
	}
	if m.Mode() != ModeSyntax {
		t.Fatalf("mode: got %v", m.Mode())
	}
	if !m.Native() || !m.SizedFamily() {
		t.Fatalf("flags: got native=%v sized=%v", m.Native(), m.SizedFamily())
	}
	if !m.IsFunc() {
		t.Fatal("expected IsFunc true for KindFuncLarge")
	}
}

func TestCdataRoundTrip(t *testing.T) {
	m := image.New(2)
	ba, err := image.NewBA(m, image.BlockSize, 1)
	if err != nil {
		t.Fatal(err)
	}
	arena := image.NewBBA(ba)
	ref, err := WriteCdata(m, arena, []byte("hello"))
	if err != nil {
		t.Fatal(err)
	}
	slc, err := ReadCdata(m, ref)
	if err != nil {
		t.Fatal(err)
	}
	got, err := slc.Bytes(m)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "hello" {
		t.Fatalf("got %q, want %q", got, "hello")
	}
}

func TestSlcCmp(t *testing.T) {
	m := image.New(2)
	ba, err := image.NewBA(m, image.BlockSize, 1)
	if err != nil {
		t.Fatal(err)
	}
	arena := image.NewBBA(ba)
	refAB, err := arena.AllocUnaligned(2)
	if err != nil {
		t.Fatal(err)
	}
	m.PutU8(refAB, 'a')
	m.PutU8(refAB+1, 'b')
	refABC, err := arena.AllocUnaligned(3)
	if err != nil {
		t.Fatal(err)
	}
	m.PutU8(refABC, 'a')
	m.PutU8(refABC+1, 'b')
	m.PutU8(refABC+2, 'c')

	ab := Slc{Ref: refAB, Len: 2}
	abc := Slc{Ref: refABC, Len: 3}
	c, err := Cmp(m, ab, abc)
	if err != nil {
		t.Fatal(err)
	}
	if c >= 0 {
		t.Fatalf("got %d, want negative (shorter prefix sorts first)", c)
	}
	c, err = Cmp(m, ab, ab)
	if err != nil {
		t.Fatal(err)
	}
	if c != 0 {
		t.Fatalf("got %d, want 0", c)
	}
}
