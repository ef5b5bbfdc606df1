// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package source

import (
	"io"

	"github.com/cznic/spor/errcode"
)

// Code is a File's state-machine value: done, reading, eof or error.
type Code int

const (
	CodeDone Code = iota
	CodeReading
	CodeEOF
	CodeError
)

func (c Code) String() string {
	switch c {
	case CodeDone:
		return "done"
	case CodeReading:
		return "reading"
	case CodeEOF:
		return "eof"
	case CodeError:
		return "error"
	default:
		return "code?"
	}
}

// File is the host-facing staging buffer a Reader fills and the
// scanner drains. Unlike the image-backed place-buffer the scanner
// exposes to the compiler, File's own buffer is ordinary host memory:
// it holds raw bytes on their way in from the Reader, before the
// scanner copies consumed bytes into the in-image place-buffer.
type File struct {
	r    Reader
	buf  []byte
	plc  int // bytes of buf already consumed by the scanner
	code Code
	fid  int
	pos  int64 // host byte offset, for diagnostics
	err  error
}

// Open opens r and resets the File to an empty, CodeReading state.
func Open(r Reader, fid int) (*File, error) {
	if err := r.Open(); err != nil {
		return nil, err
	}
	return &File{r: r, code: CodeReading, fid: fid}, nil
}

// Close releases the underlying Reader.
func (f *File) Close() error { return f.r.Close() }

func (f *File) Code() Code { return f.code }
func (f *File) Fid() int { return f.fid }
func (f *File) Unread() int { return len(f.buf) - f.plc }
func (f *File) Pending() []byte { return f.buf[f.plc:] }

// Advance marks n bytes of the pending region as consumed.
func (f *File) Advance(n int) {
	f.plc += n
	if f.plc == len(f.buf) {
		f.buf = f.buf[:0]
		f.plc = 0
	}
}

// Compact discards the already-consumed prefix. The scanner keeps its
// own place-buffer bounded by compacting before each token; File
// applies the same discipline to its staging buffer so a long-running
// compile doesn't grow it without bound.
func (f *File) Compact() {
	if f.plc == 0 {
		return
	}
	n := copy(f.buf, f.buf[f.plc:])
	f.buf = f.buf[:n]
	f.plc = 0
}

// read appends up to want new bytes to buf in one host call, advancing
// pos and code.
func (f *File) read(want int) (int, error) {
	if f.code == CodeEOF || f.code == CodeError {
		return 0, nil
	}
	at := len(f.buf)
	f.buf = append(f.buf, make([]byte, want)...)
	n, err := f.r.Read(f.buf[at : at+want])
	f.buf = f.buf[:at+n]
	f.pos += int64(n)
	switch {
	case err == io.EOF:
		f.code = CodeEOF
	case err != nil:
		f.code = CodeError
		f.err = err
	case n == 0:
		// A zero-byte, nil-error read from a well-behaved Reader also
		// signals exhaustion.
		f.code = CodeEOF
	default:
		f.code = CodeReading
	}
	return n, err
}

// ReadAtLeast loops calling read until n new unread bytes are available
// or CodeEOF is reached. Non-transient I/O errors
// panic with E_io; callers inside the VM/compiler run under a recover
// boundary (kernel.Run, the `catch` device op) that turns this into a
// structured error the same way any other VM panic is handled.
func (f *File) ReadAtLeast(n int) error {
	for f.Unread() < n {
		const chunk = 4096
		_, err := f.read(chunk)
		if f.code == CodeEOF {
			return nil
		}
		if f.code == CodeError {
			panic(errcode.NewArg(errcode.EIO, "read: "+f.err.Error(), int64(f.fid)))
		}
		_ = err
	}
	return nil
}
