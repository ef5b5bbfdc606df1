// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package source

import (
	"github.com/cznic/spor/errcode"
	"github.com/cznic/spor/image"
)

// TokenSize is the scanner's bounded place-buffer capacity; a token
// that would exceed it is E_cTLen.
const TokenSize = 128

type group int

const (
	groupWhite group = iota
	groupWord         // digits, letters, underscore — see the note on Classify below
	groupSingle
	groupSymbol
)

// singleChars: each of these always forms a token of length exactly
// one, regardless of what follows it.
const singleChars = "%\\$|.()"

// Classify assigns byte c to one of the scan groups.
//
// Hex literals (`#1002_3004`) need digits and underscore to extend
// together, and ordinary identifiers need letters and digits to extend
// together, so digits, letters and underscore all share one "word"
// class rather than splitting numeric/hex/alpha three ways; the `#`
// handler in the compiler is the one that validates a word token is
// all hex digits (plus `_`), not the scanner.
func Classify(c byte) group {
	switch {
	case c == ' ' || c == '\t' || c == '\n' || c == '\r':
		return groupWhite
	case c >= '0' && c <= '9', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '_':
		return groupWord
	case indexByte(singleChars, c) >= 0:
		return groupSingle
	default:
		return groupSymbol
	}
}

func indexByte(s string, c byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			return i
		}
	}
	return -1
}

// Scanner tokenises a File's byte stream into a bounded, image-backed
// place-buffer. Its buffer lives inside img so the compiler and scanner
// share one address space like every other structure in this module.
type Scanner struct {
	img  *image.Image
	base image.Ref
	plc  uint32
	file *File
	Line int
}

// NewScanner creates a scanner reading from file, using a TokenSize-byte
// region of img starting at base as its place-buffer.
func NewScanner(img *image.Image, base image.Ref, file *File) *Scanner {
	return &Scanner{img: img, base: base, file: file, Line: 1}
}

func (s *Scanner) peek() (byte, bool, error) {
	if err := s.file.ReadAtLeast(1); err != nil {
		return 0, false, err
	}
	if s.file.Unread() == 0 {
		return 0, false, nil
	}
	return s.file.Pending()[0], true, nil
}

func (s *Scanner) append(c byte) error {
	if s.plc >= TokenSize {
		return errcode.NewArg(errcode.ECTLen, "scanner: token exceeds buffer", int64(s.plc))
	}
	if err := s.img.PutU8(s.base+image.Ref(s.plc), c); err != nil {
		return err
	}
	s.plc++
	return nil
}

func (s *Scanner) skipWhitespace() error {
	for {
		c, ok, err := s.peek()
		if err != nil {
			return err
		}
		if !ok || Classify(c) != groupWhite {
			return nil
		}
		if c == '\n' {
			s.Line++
		}
		s.file.Advance(1)
		s.file.Compact()
	}
}

// Scan produces the next token's bytes (a copy, safe to hold onto after
// the next Scan call): skip whitespace, then take one byte for a single
// char or extend while the group matches the first byte's. A nil, empty
// slice with no error signals end of input.
func (s *Scanner) Scan() ([]byte, error) {
	if err := s.skipWhitespace(); err != nil {
		return nil, err
	}
	s.plc = 0

	c, ok, err := s.peek()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	first := Classify(c)
	if err := s.append(c); err != nil {
		return nil, err
	}
	s.file.Advance(1)

	if first != groupSingle {
		for {
			c, ok, err := s.peek()
			if err != nil {
				return nil, err
			}
			if !ok || Classify(c) != first {
				break
			}
			if err := s.append(c); err != nil {
				return nil, err
			}
			s.file.Advance(1)
		}
	}
	s.file.Compact()

	tok, err := s.img.View(s.base, int(s.plc))
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(tok))
	copy(out, tok)
	return out, nil
}

// SkipToEOL discards bytes up to and including the next newline (or EOF,
// whichever comes first), bumping Line. It backs the assembler's `\`
// line-comment handler, which consumes raw source text the group-based
// Scan protocol never tokenises on its own.
func (s *Scanner) SkipToEOL() error {
	for {
		if err := s.file.ReadAtLeast(1); err != nil {
			return err
		}
		if s.file.Unread() == 0 {
			return nil
		}
		c := s.file.Pending()[0]
		s.file.Advance(1)
		s.file.Compact()
		if c == '\n' {
			s.Line++
			return nil
		}
	}
}
