// Package rx implements a byte-coded NFA regular expression engine: a
// compiler translating regex source into a linear instruction program, and
// a Thompson-style ("Pike's VM") simulator that runs all live threads of
// the NFA abreast, one input rune at a time, so matching never needs to
// backtrack.
package rx

// Op identifies a station of the compiled program. Values reuse the
// single-byte ASCII mnemonics of the station kinds they represent, so a
// disassembly or a debug trace reads as the letter of the thing it does.
type Op byte

const (
	OpStart        Op = 'S' // header marker; decoded once, never executed
	OpChar         Op = 'C' // match one specific rune
	OpAny          Op = '.' // match any rune, '\n' included (AnyIncludesNL is not consulted)
	OpBOL          Op = '^' // zero-width: at beginning of line
	OpEOL          Op = '$' // zero-width: at end of line
	OpCharClass    Op = 'L' // match a rune against a class
	OpNegCharClass Op = 'N' // match a rune against the complement of a class
	OpCharProperty Op = 'P' // match a rune against a named Unicode property
	OpJump         Op = 'J' // unconditional continue at X
	OpSplit        Op = 'A' // fork: continue at X, and at Y (X is tried first)
	OpZero         Op = 'Z' // push a fresh (offset,0) counter frame, continue at Next
	OpCount        Op = 'R' // increment the top counter frame; branch on Min/Max
	OpCaptureStart Op = '(' // record current offset as the start of slot Slot
	OpCaptureEnd   Op = ')' // record current offset as the end of slot Slot
	OpNegLookahead Op = '!' // fail if the sub-program at X matches here
	OpMatch        Op = '#' // accept
)

// Program is a compiled regular expression: a contiguous byte buffer of
// stations, each a one-byte Op followed by its operands, preceded by a
// small header. Every branch target in the buffer -- including the two
// header entry points -- is stored as a self-relative offset: the signed
// distance from the offset field itself to the byte position it names, so
// the buffer can be relocated or memory-mapped without patching. Offsets
// are zigzag-encoded, and they and every other operand (repetition counts
// included) are written with a variable-length unsigned encoding (see
// varint.go), so a Program's size
// tracks the complexity of the pattern rather than a fixed instruction
// width.
//
// A Program is immutable after Compile returns and safe to run
// concurrently from multiple goroutines; Decode (see decode.go) is the
// only way to read a station back out of Bytes.
type Program struct {
	Bytes         []byte
	SearchStation int // byte offset of the unanchored-search entry station
	StartStation  int // byte offset of the anchored-match entry station
	StationCount  int
	MaxCounter    int // number of nested counted-repetition frames the VM must track at once
	MaxCapture    int // capture slots, including the implicit whole-match slot 0
	Names         []string
	Features      Feature
}

// NumCaptures returns the number of user-written capture groups, not
// counting the implicit whole-match group.
func (p *Program) NumCaptures() int {
	if p.MaxCapture == 0 {
		return 0
	}
	return p.MaxCapture - 1
}

// CharClass is a set of rune ranges, as produced by compiling "[...]".
type CharClass struct {
	Ranges []RuneRange
}

// RuneRange is an inclusive [Lo,Hi] range of runes.
type RuneRange struct {
	Lo, Hi rune
}

// Contains reports whether r falls within any range of the class.
func (c *CharClass) Contains(r rune) bool {
	for _, rr := range c.Ranges {
		if r >= rr.Lo && r <= rr.Hi {
			return true
		}
	}
	return false
}
