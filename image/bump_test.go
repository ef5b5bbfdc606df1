// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package image

import "testing"

func TestBBAAllocGrowsFromTop(t *testing.T) {
	m := New(2)
	ba, err := NewBA(m, BlockSize, 1)
	if err != nil {
		t.Fatal(err)
	}
	bba := NewBBA(ba)
	r1, err := bba.Alloc(4)
	if err != nil {
		t.Fatal(err)
	}
	r2, err := bba.Alloc(4)
	if err != nil {
		t.Fatal(err)
	}
	if r2 >= r1 {
		t.Fatalf("expected r2 < r1 (top-down growth), got r1=%v r2=%v", r1, r2)
	}
}

func TestBBAAllocUnalignedGrowsFromBottom(t *testing.T) {
	m := New(2)
	ba, err := NewBA(m, BlockSize, 1)
	if err != nil {
		t.Fatal(err)
	}
	bba := NewBBA(ba)
	r1, err := bba.AllocUnaligned(3)
	if err != nil {
		t.Fatal(err)
	}
	r2, err := bba.AllocUnaligned(3)
	if err != nil {
		t.Fatal(err)
	}
	if r2 <= r1 {
		t.Fatalf("expected r2 > r1 (bottom-up growth), got r1=%v r2=%v", r1, r2)
	}
}

func TestBBACrossesBlockWhenFull(t *testing.T) {
	m := New(3)
	ba, err := NewBA(m, BlockSize, 2)
	if err != nil {
		t.Fatal(err)
	}
	bba := NewBBA(ba)
	first, err := bba.AllocUnaligned(BlockSize - 8)
	if err != nil {
		t.Fatal(err)
	}
	_ = first
	firstBlock := bba.cur
	// Exhaust the rest of the block from both ends, forcing a new block.
	if _, err := bba.Alloc(4); err != nil {
		t.Fatal(err)
	}
	if _, err := bba.AllocUnaligned(16); err != nil {
		t.Fatal(err)
	}
	if bba.cur == firstBlock {
		t.Fatal("expected a fresh block to have been reserved")
	}
}

func TestBBAExhaustion(t *testing.T) {
	m := New(2)
	ba, err := NewBA(m, BlockSize, 1)
	if err != nil {
		t.Fatal(err)
	}
	bba := NewBBA(ba)
	if _, err := bba.Alloc(BlockSize + 1); err != nil {
		t.Fatal(err)
	} else if ref, _ := bba.Alloc(BlockSize + 1); ref != NullRef {
		t.Fatalf("expected NullRef for an oversize request, got %v", ref)
	}
	// Consume the one block, then expect exhaustion rather than an error.
	bba2 := NewBBA(ba)
	if _, err := bba2.AllocUnaligned(BlockSize); err != nil {
		t.Fatal(err)
	}
	ref, err := bba2.AllocUnaligned(1)
	if err != nil {
		t.Fatal(err)
	}
	if ref != NullRef {
		t.Fatalf("expected exhaustion (NullRef), got %v", ref)
	}
}

func TestBBAMarkReset(t *testing.T) {
	m := New(2)
	ba, err := NewBA(m, BlockSize, 1)
	if err != nil {
		t.Fatal(err)
	}
	bba := NewBBA(ba)
	if _, err := bba.AllocUnaligned(8); err != nil {
		t.Fatal(err)
	}
	mark := bba.Mark()
	if _, err := bba.AllocUnaligned(16); err != nil {
		t.Fatal(err)
	}
	bba.Reset(mark)
	if bba.len != mark {
		t.Fatalf("got len=%d, want %d", bba.len, mark)
	}
}

func TestBBAFreeAll(t *testing.T) {
	m := New(3)
	ba, err := NewBA(m, BlockSize, 2)
	if err != nil {
		t.Fatal(err)
	}
	bba := NewBBA(ba)
	if _, err := bba.AllocUnaligned(16); err != nil {
		t.Fatal(err)
	}
	if err := bba.FreeAll(); err != nil {
		t.Fatal(err)
	}
	if bba.cur != BlockEnd {
		t.Fatal("expected no current block after FreeAll")
	}
	if st := ba.Stat(); st.FreeBlocks != 2 {
		t.Fatalf("got %+v", st)
	}
}
