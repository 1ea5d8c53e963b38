// Package prefilter extracts required literal substrings from a compiled
// rx.Program and uses them to quickly reject input that cannot possibly
// match, before paying for a full NFA simulation. It is a pure speed
// optimization: a prefilter never reports a false reject, only a (cheap)
// true reject or an "inconclusive, run the real matcher" result.
package prefilter

import (
	"bytes"

	"github.com/cloudflare/ahocorasick"
	"github.com/textparse/pegex/rx"
)

// Prefilter rejects input that cannot contain a match, using a set of
// literal strings at least one of which must appear for the program to
// have any chance of matching (one literal per top-level alternative; if any
// alternative has no extractable required literal, the prefilter is
// inconclusive and always defers to the real matcher).
type Prefilter struct {
	matcher    *ahocorasick.Matcher
	singleByte byte
	literals   []string
	universal  bool // true if no literal requirement could be extracted at all
}

// Build analyzes prog and returns a Prefilter for it. Build never fails: a
// program with nothing extractable just yields a Prefilter that always
// defers.
func Build(prog *rx.Program) *Prefilter {
	literals := RequiredLiterals(prog)
	if len(literals) == 0 {
		return &Prefilter{universal: true}
	}
	if len(literals) == 1 && len(literals[0]) == 1 {
		// A single one-byte requirement is the common case for a bare
		// literal anchor; skip the Aho-Corasick machine entirely.
		return &Prefilter{singleByte: literals[0][0], literals: literals}
	}
	return &Prefilter{
		matcher:  ahocorasick.NewStringMatcher(literals),
		literals: literals,
	}
}

// CouldMatch reports whether text might contain a match. false means it
// definitely does not; true means the real matcher must still decide.
func (p *Prefilter) CouldMatch(text []byte) bool {
	if p.universal {
		return true
	}
	if p.matcher == nil {
		return bytes.IndexByte(text, p.singleByte) >= 0
	}
	return len(p.matcher.Match(text)) > 0
}

// Literals returns the required literal substrings backing this
// Prefilter, for diagnostics.
func (p *Prefilter) Literals() []string { return append([]string(nil), p.literals...) }

// RequiredLiterals walks prog's top-level alternatives (the chain of
// OpSplit stations reachable from the start station without consuming
// input) and, for each one that begins with an unconditional run of OpChar
// stations, extracts that run as a required literal. Captures, jumps and
// nested splits are looked through. An alternative with no such run (e.g.
// starting with a class, ".", or an anchor) makes the whole extraction inconclusive, since prefiltering on a subset
// of alternatives could reject input the others would accept.
func RequiredLiterals(prog *rx.Program) []string {
	var literals []string
	for _, start := range topLevelStarts(prog) {
		lit, ok := literalRun(prog, start)
		if !ok {
			return nil
		}
		literals = append(literals, lit)
	}
	return literals
}

func topLevelStarts(prog *rx.Program) []int {
	if len(prog.Bytes) == 0 {
		return nil
	}
	var starts []int
	seen := map[int]bool{}
	var walk func(pc int)
	walk = func(pc int) {
		if seen[pc] {
			return
		}
		seen[pc] = true
		st := rx.Decode(prog, pc)
		switch st.Op {
		case rx.OpSplit:
			walk(st.X)
			walk(st.Y)
		case rx.OpJump:
			walk(st.X)
		case rx.OpCaptureStart, rx.OpCaptureEnd:
			// Every match is wrapped in an implicit group 0 (and may nest
			// named groups); these don't consume input, so look past them
			// for the literal content they bracket.
			walk(st.Next)
		default:
			starts = append(starts, pc)
		}
	}
	walk(prog.StartStation)
	return starts
}

func literalRun(prog *rx.Program, pc int) (string, bool) {
	var runes []rune
	for {
		st := rx.Decode(prog, pc)
		if st.Op != rx.OpChar {
			break
		}
		runes = append(runes, st.Char)
		pc = st.Next
	}
	if len(runes) == 0 {
		return "", false
	}
	return string(runes), true
}
