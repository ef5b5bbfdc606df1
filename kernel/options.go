// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kernel

import (
	"github.com/cznic/spor/errcode"
	"github.com/cznic/spor/image"
	"github.com/cznic/spor/source"
	"github.com/cznic/spor/vm"
)

// Options collects the runtime tunables into a plain exported struct
// checked once at New; the zero value selects the defaults.
type Options struct {
	// WSDepth/CSDepth are element counts (not byte sizes) for the
	// working and call stacks; CSZ shares CSDepth (one byte per frame).
	WSDepth int
	CSDepth int

	// TokenSize must equal source.TokenSize: the scanner's place-buffer
	// bound is a package constant, not independently configurable, but
	// Options carries it so New can assert the caller's expectation
	// matches reality rather than silently diverging from it.
	TokenSize int

	// HeapBlocks sizes the BA/BBA-managed heap the dictionary and
	// compiled code live in, not counting the two reserved blocks for
	// the stacks/scanner scratch (block 0) and locals stack (block 1).
	HeapBlocks int

	LogLevelUsr int
	LogLevelSys int

	checked bool
}

const (
	defaultWSDepth    = 16
	defaultCSDepth    = 64
	defaultHeapBlocks = 8
)

// DefaultOptions returns the standard sizing: a 16-slot working stack,
// a 64-frame call stack, a 128-byte token buffer and an 8-block heap.
func DefaultOptions() Options {
	return Options{
		WSDepth:    defaultWSDepth,
		CSDepth:    defaultCSDepth,
		TokenSize:  source.TokenSize,
		HeapBlocks: defaultHeapBlocks,
	}
}

// setDefaults fills zero fields with their defaults and validates the
// result, once.
func (o *Options) setDefaults() error {
	if o.checked {
		return nil
	}
	if o.WSDepth == 0 {
		o.WSDepth = defaultWSDepth
	}
	if o.CSDepth == 0 {
		o.CSDepth = defaultCSDepth
	}
	if o.TokenSize == 0 {
		o.TokenSize = source.TokenSize
	}
	if o.HeapBlocks == 0 {
		o.HeapBlocks = defaultHeapBlocks
	}
	if o.TokenSize != source.TokenSize {
		return errcode.NewArg(errcode.ESz, "kernel: Options.TokenSize must equal source.TokenSize", int64(o.TokenSize))
	}
	if o.WSDepth*vm.RSIZE >= image.BlockSize {
		return errcode.NewArg(errcode.ESz, "kernel: Options.WSDepth too large for one block", int64(o.WSDepth))
	}
	if o.CSDepth*vm.RSIZE >= image.BlockSize {
		return errcode.NewArg(errcode.ESz, "kernel: Options.CSDepth too large for one block", int64(o.CSDepth))
	}
	header := kernHeaderSize + o.WSDepth*vm.RSIZE + o.CSDepth*vm.RSIZE + o.CSDepth + o.TokenSize
	if header >= image.BlockSize {
		return errcode.NewArg(errcode.ESz, "kernel: block 0 layout (header+WS+CS+CSZ+scanner scratch) exceeds BlockSize", int64(header))
	}
	if o.HeapBlocks <= 0 || o.HeapBlocks > image.MaxBlocksPerBA {
		return errcode.NewArg(errcode.EIntern, "kernel: Options.HeapBlocks out of range", int64(o.HeapBlocks))
	}
	o.checked = true
	return nil
}
