// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kernel

import (
	"io"
	"log"
	"os"
)

// Logger is the two-level (user/system) logging facility behind the
// `log` device op and the kernel's own diagnostics: one stdlib
// log.Logger per level, each gated by its own threshold. User output
// goes to stdout unprefixed (it is program output); system diagnostics
// go to stderr with a prefix and timestamp.
type Logger struct {
	usr      *log.Logger
	sys      *log.Logger
	usrLevel int
	sysLevel int
}

func newLogger(opts Options) *Logger {
	return &Logger{
		usr:      log.New(os.Stdout, "", 0),
		sys:      log.New(os.Stderr, "spor: ", log.Ltime),
		usrLevel: opts.LogLevelUsr,
		sysLevel: opts.LogLevelSys,
	}
}

// SetOutput redirects both levels' writers, for tests and embedders that
// want to capture log output rather than let it reach the process's
// real stdout/stderr.
func (l *Logger) SetOutput(usr, sys io.Writer) {
	l.usr.SetOutput(usr)
	l.sys.SetOutput(sys)
}

// Userf logs a `log` device op message at level, gated by LogLevelUsr.
func (l *Logger) Userf(level int, format string, args ...interface{}) {
	if level > l.usrLevel {
		return
	}
	l.usr.Printf(format, args...)
}

// Sysf logs an internal kernel diagnostic at level, gated by
// LogLevelSys.
func (l *Logger) Sysf(level int, format string, args ...interface{}) {
	if level > l.sysLevel {
		return
	}
	l.sys.Printf(format, args...)
}
