// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package source implements the byte-source abstraction the scanner
// reads from: a host-facing Reader (native file or in-memory byte
// slice), the File record tracking its state machine, and the
// character-classifying Scanner built on top.
package source

import (
	"io"
	"os"

	"github.com/cznic/fileutil"
	"github.com/cznic/spor/errcode"
)

// Reader is the minimal open/close/read method table, dispatched
// either to a host file descriptor or to an in-memory byte source.
// Read should behave like io.Reader: it may return fewer bytes than
// len(p) without that being EOF.
type Reader interface {
	Open() error
	Close() error
	Read(p []byte) (n int, err error)
}

// NativeReader reads from a host file descriptor. Non-blocking in the
// sense that a short read is not itself an error; ReadAtLeast loops to
// fill its target.
type NativeReader struct {
	path string
	f    *os.File
}

// NewNativeReader creates a Reader over a host file path.
func NewNativeReader(path string) *NativeReader { return &NativeReader{path: path} }

func (r *NativeReader) Open() error {
	f, err := os.Open(r.path)
	if err != nil {
		return errcode.NewArg(errcode.EIO, "native reader: open failed: "+err.Error(), 0)
	}
	r.f = f
	// Best-effort sequential-access hint; absence of this syscall on a
	// platform (or a non-regular file) is not a reason to fail the open.
	if fi, serr := f.Stat(); serr == nil {
		_ = fileutil.Fadvise(f, 0, fi.Size(), fileutil.POSIX_FADV_SEQUENTIAL)
	}
	return nil
}

func (r *NativeReader) Close() error {
	if r.f == nil {
		return nil
	}
	err := r.f.Close()
	r.f = nil
	return err
}

func (r *NativeReader) Read(p []byte) (int, error) {
	if r.f == nil {
		return 0, errcode.New(errcode.EIO, "native reader: read before open")
	}
	return r.f.Read(p)
}

// BytesReader is the in-memory (virtual) source, for mocked/user-space
// files: tests, and any caller that compiles from an in-memory byte
// string rather than a host file.
type BytesReader struct {
	data []byte
	pos  int
}

// NewBytesReader creates a Reader over data, not copied.
func NewBytesReader(data []byte) *BytesReader { return &BytesReader{data: data} }

func (r *BytesReader) Open() error { r.pos = 0; return nil }
func (r *BytesReader) Close() error { return nil }

func (r *BytesReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	n := copy(p, r.data[r.pos:])
	r.pos += n
	return n, nil
}
