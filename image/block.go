// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package image

import (
	"github.com/cznic/mathutil"
	"github.com/cznic/spor/errcode"
)

// BlockEnd is the sentinel node index marking the end of a chain.
const BlockEnd uint8 = 0xFF

// MaxBlocksPerBA is the largest block count a single BA can manage: node
// indices are one byte wide and 0xFF is reserved as BlockEnd.
const MaxBlocksPerBA = 255

type baNode struct {
	previ, nexti uint8
}

// BA is a block allocator: it owns a contiguous range of blocks inside an
// Image and a free chain over them. Clients hold their own root index
// (not owned by BA) identifying a singly-owned chain of allocated blocks;
// BA.Alloc/Free/FreeAll splice nodes between a client's chain and the
// free chain. At most one client owns any given block at a time.
type BA struct {
	img     *Image
	base    Ref
	nblocks int
	nodes   []baNode
	rooti   uint8 // free-list root
}

// NewBA creates a block allocator managing nblocks blocks of img starting
// at base. base must be block-aligned.
func NewBA(img *Image, base Ref, nblocks int) (*BA, error) {
	if nblocks <= 0 || nblocks > MaxBlocksPerBA {
		return nil, errcode.NewArg(errcode.EIntern, "BA: block count out of range", int64(nblocks))
	}
	if base == NullRef {
		// Block 0's reference would be the reserved null reference, making
		// the first block both unaddressable and indistinguishable from
		// allocator exhaustion.
		return nil, errcode.New(errcode.ENull, "BA: base must not be the null reference")
	}
	if int64(base)%BlockSize != 0 {
		return nil, errcode.NewArg(errcode.EAlign4, "BA: base not block-aligned", int64(base))
	}
	end := int64(base) + int64(nblocks)*BlockSize
	if end > int64(img.Size()) {
		return nil, errcode.NewArg(errcode.EOOB, "BA: range exceeds image size", end)
	}
	a := &BA{img: img, base: base, nblocks: nblocks, nodes: make([]baNode, nblocks)}
	a.Init()
	return a, nil
}

// Init (re)links every block managed by a into one free chain. It is
// called once by NewBA; callers don't normally call it again.
func (a *BA) Init() {
	for i := range a.nodes {
		prev := uint8(i - 1)
		if i == 0 {
			prev = BlockEnd
		}
		next := uint8(i + 1)
		if i == len(a.nodes)-1 {
			next = BlockEnd
		}
		a.nodes[i] = baNode{previ: prev, nexti: next}
	}
	if len(a.nodes) == 0 {
		a.rooti = BlockEnd
	} else {
		a.rooti = 0
	}
}

// BlockRef returns the image reference of the i'th block managed by a.
func (a *BA) BlockRef(i uint8) Ref { return a.base + Ref(int(i)*BlockSize) }

// Index returns the node index of the block starting at ref, or E_oob if
// ref does not name one of a's blocks.
func (a *BA) Index(ref Ref) (uint8, error) {
	off := int64(ref) - int64(a.base)
	if off < 0 || off%BlockSize != 0 || off/BlockSize >= int64(a.nblocks) {
		return 0, errcode.NewArg(errcode.EOOB, "BA: reference not in this allocator's range", int64(ref))
	}
	return uint8(off / BlockSize), nil
}

func (a *BA) unlink(rootp *uint8, i uint8) {
	n := a.nodes[i]
	if n.previ != BlockEnd {
		a.nodes[n.previ].nexti = n.nexti
	} else {
		*rootp = n.nexti
	}
	if n.nexti != BlockEnd {
		a.nodes[n.nexti].previ = n.previ
	}
}

func (a *BA) pushFront(rootp *uint8, i uint8) {
	old := *rootp
	a.nodes[i] = baNode{previ: BlockEnd, nexti: old}
	if old != BlockEnd {
		a.nodes[old].previ = i
	}
	*rootp = i
}

// onChain reports whether node i is reachable from root, used to enforce
// the "block must lie on the client chain" invariant before Free unlinks
// it from some chain blindly.
func (a *BA) onChain(root, i uint8) bool {
	for n := root; n != BlockEnd; n = a.nodes[n].nexti {
		if n == i {
			return true
		}
	}
	return false
}

// Alloc detaches the free-list root and pushes it onto the front of
// *clientRoot. It returns NullRef, nil on exhaustion: allocators never
// fail with an error on exhaustion, they surface it as a zero value and
// let the caller (typically a BBA) decide what to do.
func (a *BA) Alloc(clientRoot *uint8) (Ref, error) {
	if a.rooti == BlockEnd {
		return NullRef, nil
	}
	i := a.rooti
	a.unlink(&a.rooti, i)
	a.pushFront(clientRoot, i)
	return a.BlockRef(i), nil
}

// Free splices the block at ref out of *clientRoot and returns it to the
// free chain. ref must lie within a's range and currently be reachable
// from *clientRoot.
func (a *BA) Free(clientRoot *uint8, ref Ref) error {
	i, err := a.Index(ref)
	if err != nil {
		return err
	}
	if !a.onChain(*clientRoot, i) {
		return errcode.NewArg(errcode.EIntern, "BA: block not owned by this client", int64(ref))
	}
	a.unlink(clientRoot, i)
	a.pushFront(&a.rooti, i)
	return nil
}

// FreeAll repeatedly frees *clientRoot until it is empty, returning the
// whole chain to the free list in one operation.
func (a *BA) FreeAll(clientRoot *uint8) error {
	for *clientRoot != BlockEnd {
		if err := a.Free(clientRoot, a.BlockRef(*clientRoot)); err != nil {
			return err
		}
	}
	return nil
}

// Stats reports block-level allocation statistics.
type Stats struct {
	TotalBlocks int
	FreeBlocks  int
	AllocBlocks int
}

// Stat walks the free chain to report a.
func (a *BA) Stat() Stats {
	free := 0
	for n := a.rooti; n != BlockEnd; n = a.nodes[n].nexti {
		free++
	}
	return Stats{
		TotalBlocks: a.nblocks,
		FreeBlocks:  free,
		AllocBlocks: mathutil.Max(0, a.nblocks-free),
	}
}
