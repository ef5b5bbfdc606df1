// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kernel

import (
	"fmt"

	"github.com/cznic/spor/errcode"
)

// Panic is the value a spor panic carries (divide-by-zero, a failed
// `assert`, a host I/O error); the other invariant violations (bounds
// checks, stack over/underflow, unknown opcode/DV, duplicate/missing
// key) are returned as the same type instead. It is errcode.Error itself,
// named here so Run's recover and any embedder reading this package's
// surface have one clearly-documented type for "the thing a spor panic
// carries" without importing errcode directly.
type Panic = errcode.Error

// ExitCode maps err (as returned by Run) to a process exit code: the
// 16-bit error code itself when err carries one, 1 for any other error,
// 0 for nil. Composing and printing the diagnostic, and calling
// os.Exit, are left to whatever embeds this package.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if code, ok := errcode.CodeOf(err); ok {
		return int(code)
	}
	return 1
}

// annotate adds the current source line to e, if a scan is in
// progress.
func (k *Kernel) annotate(e *errcode.Error) *errcode.Error {
	if k.Machine.Scanner == nil {
		return e
	}
	return errcode.NewArg(e.Code, fmt.Sprintf("%s (line %d)", e.Msg, k.Machine.Scanner.Line), e.Arg)
}
