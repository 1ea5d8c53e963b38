// Package psource implements the forward-only byte-stream cursor shared by
// the pegexp and peg packages.
//
// A Source is a position within an in-memory byte buffer, not a general
// stream: spec.md's Non-goals explicitly exclude partial-input/streaming
// matching, so the only Source implementation needed is a random-access
// slice cursor. A Source is a small value type (an offset plus a shared
// slice header) so copying it -- the mechanism pegexp uses to backtrack --
// is cheap and carries no hidden state.
package psource

import "unicode/utf8"

// Source is a read-only cursor over a byte buffer. The zero Source is not
// usable; construct one with New.
type Source struct {
	buf    []byte
	offset int // current byte offset into buf
	line   int // 1-based line number
	column int // 1-based column, in runes, reset after '\n'
}

// New returns a Source positioned at the start of buf.
func New(buf []byte) Source {
	return Source{buf: buf, offset: 0, line: 1, column: 1}
}

// NewFromString is a convenience wrapper avoiding an explicit []byte(s)
// conversion at call sites.
func NewFromString(s string) Source {
	return New([]byte(s))
}

// AtEOF reports whether the cursor has consumed the whole buffer.
func (s Source) AtEOF() bool { return s.offset >= len(s.buf) }

// AtBOL reports whether the cursor is at the beginning of a line (either
// the start of the buffer, or immediately after a '\n').
func (s Source) AtBOL() bool { return s.column == 1 }

// GetRune decodes and consumes one UTF-8 scalar, advancing line/column
// bookkeeping. At EOF it consumes nothing and returns -1 (all bits set, a
// value no decoded rune can take); on invalid encoding it returns
// utf8.RuneError, consuming one byte to make progress -- so EOF and a bad
// byte stay distinguishable.
func (s *Source) GetRune() rune {
	if s.AtEOF() {
		return -1
	}
	r, size := utf8.DecodeRune(s.buf[s.offset:])
	s.offset += size
	if r == '\n' {
		s.line++
		s.column = 1
	} else {
		s.column++
	}
	return r
}

// GetByte consumes and returns exactly one byte, bypassing UTF-8 decoding.
// No matcher in this module calls it; it is available to extension atoms.
func (s *Source) GetByte() byte {
	if s.AtEOF() {
		return 0
	}
	b := s.buf[s.offset]
	s.offset++
	if b == '\n' {
		s.line++
		s.column = 1
	} else {
		s.column++
	}
	return b
}

// PeekRune reports the next rune without consuming it, and utf8.RuneError
// at EOF.
func (s Source) PeekRune() rune {
	if s.AtEOF() {
		return utf8.RuneError
	}
	r, _ := utf8.DecodeRune(s.buf[s.offset:])
	return r
}

// Same reports whether s and other refer to the same position of the same
// underlying buffer.
func (s Source) Same(other Source) bool {
	return len(s.buf) == len(other.buf) && s.offset == other.offset &&
		(len(s.buf) == 0 || &s.buf[0] == &other.buf[0])
}

// Before reports whether s is strictly earlier in the buffer than other.
func (s Source) Before(other Source) bool { return s.offset < other.offset }

// Sub returns the byte distance from origin to s (s - origin). Negative if
// s is earlier than origin.
func (s Source) Sub(origin Source) int { return s.offset - origin.offset }

// Slice returns the raw bytes between from and to (to must not precede
// from within the same buffer).
func Slice(from, to Source) []byte {
	return from.buf[from.offset:to.offset]
}

// Offset returns the current byte offset, for diagnostics.
func (s Source) Offset() int { return s.offset }

// Line returns the current 1-based line number, for diagnostics.
func (s Source) Line() int { return s.line }

// Column returns the current 1-based column (in runes), for diagnostics.
func (s Source) Column() int { return s.column }

// Remaining returns the unconsumed tail of the buffer. Callers must treat
// it as read-only.
func (s Source) Remaining() []byte { return s.buf[s.offset:] }
