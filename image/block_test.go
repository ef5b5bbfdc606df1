// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package image

import "testing"

func TestBAAllocFreeRoundTrip(t *testing.T) {
	m := New(5)
	a, err := NewBA(m, BlockSize, 4)
	if err != nil {
		t.Fatal(err)
	}
	var root uint8 = BlockEnd
	seen := map[Ref]bool{}
	for i := 0; i < 4; i++ {
		ref, err := a.Alloc(&root)
		if err != nil {
			t.Fatal(err)
		}
		if ref == NullRef {
			t.Fatalf("unexpected exhaustion at block %d", i)
		}
		if seen[ref] {
			t.Fatalf("block %v allocated twice", ref)
		}
		seen[ref] = true
	}
	if ref, err := a.Alloc(&root); err != nil || ref != NullRef {
		t.Fatalf("expected exhaustion, got ref=%v err=%v", ref, err)
	}
	if st := a.Stat(); st.FreeBlocks != 0 || st.AllocBlocks != 4 {
		t.Fatalf("got %+v", st)
	}
	if err := a.FreeAll(&root); err != nil {
		t.Fatal(err)
	}
	if root != BlockEnd {
		t.Fatalf("client root not empty after FreeAll")
	}
	if st := a.Stat(); st.FreeBlocks != 4 {
		t.Fatalf("got %+v", st)
	}
}

func TestBAFreeRejectsForeignBlock(t *testing.T) {
	m := New(3)
	a, err := NewBA(m, BlockSize, 2)
	if err != nil {
		t.Fatal(err)
	}
	var rootA, rootB uint8 = BlockEnd, BlockEnd
	refA, err := a.Alloc(&rootA)
	if err != nil {
		t.Fatal(err)
	}
	if err := a.Free(&rootB, refA); err == nil {
		t.Fatal("expected error freeing a block not owned by rootB")
	}
}

func TestNewBARejectsMisalignedBase(t *testing.T) {
	m := New(2)
	if _, err := NewBA(m, 1, 1); err == nil {
		t.Fatal("expected error for unaligned base")
	}
}

func TestNewBARejectsOversizeRange(t *testing.T) {
	m := New(1)
	if _, err := NewBA(m, BlockSize, 1); err == nil {
		t.Fatal("expected error when the range exceeds the image")
	}
}

func TestNewBARejectsNullBase(t *testing.T) {
	m := New(2)
	if _, err := NewBA(m, 0, 1); err == nil {
		t.Fatal("expected error for a base at the null reference")
	}
}
