// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

// CompileLoop drives compilation: scan a token,
// stop at end of input, otherwise compile it, repeat.
//
//	compileLoop:
//	  loop:
//	    scan
//	    if token empty → return
//	    compile
func (c *Compiler) CompileLoop() error {
	for {
		tok, err := c.Scan.Scan()
		if err != nil {
			return err
		}
		if len(tok) == 0 {
			return nil
		}
		if err := c.Compile(tok); err != nil {
			return err
		}
	}
}
