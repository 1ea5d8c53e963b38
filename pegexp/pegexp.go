// Package pegexp implements a possessive, prefix-operator PEG-regular
// expression matcher: Pegexp. Patterns use the same operators as ordinary
// regexes (literals, ., [...], ?, *, +, |, lookahead) but written in prefix
// position, and repetition/alternation never backtrack once committed.
//
// The matcher is deliberately generic over the value a successful match
// produces (the type parameter M): the peg package instantiates it with a
// variant.Value-carrying Match type to build parse trees, while a bare
// caller can instantiate it with a trivial "did it match" type. This
// mirrors the original C++ implementation's template-parameterized
// Context, translated to a Go generic constraint instead of a base class.
package pegexp

import (
	"strings"
	"unicode"

	"github.com/textparse/pegex/psource"
)

// State is a position within a match attempt: a cursor into the pattern
// text plus the Source location reached so far.
type State struct {
	PC     int // byte offset into the pattern string
	Source psource.Source
}

// atEnd reports whether pc is at the end of the pattern or a group
// terminator -- the points where a sequence is allowed to stop.
func atEnd(pattern string, pc int) bool {
	return pc >= len(pattern) || pattern[pc] == ')'
}

// Context receives capture and failure callbacks from the VM as it walks a
// pattern, and supplies the hook Peg uses to dispatch "<rule>" extension
// atoms. A Context is reused across atoms of a single top-level match; its
// capture_disabled/repetition_nesting counters are the same ones spec.md
// §3.5 describes.
type Context[M any] interface {
	// CaptureCount returns the number of captures recorded so far, used as
	// a rollback mark.
	CaptureCount() int
	// Capture records that the atom matched as m under name. inRepetition
	// is true when this atom was reached inside a *//+  repetition group.
	Capture(name string, m M, inRepetition bool) int
	// RollbackCapture restores the capture set to the state at mark. Per
	// spec.md §9's resolved open question, only mark==0 (full clear) is
	// honored; any other mark is a no-op matching observed C++ behavior
	// (peg's Context logs each such no-op).
	RollbackCapture(mark int)
	// RecordFailure is called for every terminal atom that fails to match,
	// so the root Context can report the furthermost failure.
	RecordFailure(pattern string, atomStart, atomEnd int, loc psource.Source)
	// MatchFailure builds the M value representing "no match" at the given
	// state.
	MatchFailure(at State) M
	// MatchResult builds the M value representing a successful match
	// spanning [from,to).
	MatchResult(from, to State) M

	// CaptureDisabled reports whether we're nested inside a lookahead, in
	// which case captures must not be recorded.
	CaptureDisabled() bool
	// EnterLookahead/ExitLookahead bracket a &/! lookahead attempt.
	EnterLookahead()
	ExitLookahead()
	// EnterRepetition/ExitRepetition bracket a */+ repetition group (not ?).
	EnterRepetition()
	ExitRepetition()
	// InRepetition reports whether we are currently inside a repetition.
	InRepetition() bool

	// MatchExtended handles one of the extension trigger bytes (§6.2:
	// "~ @ # % _ ; < `" and control characters). pc points at the trigger
	// byte itself. On success it returns the pattern cursor and source
	// position to continue from. The default Context should treat the
	// trigger byte as an ordinary literal.
	MatchExtended(pattern string, pc int, src psource.Source) (newPC int, newSrc psource.Source, ok bool)
	// SkipExtended returns the pattern cursor just past the extended atom
	// starting at pc, without attempting a match (used when skipping a
	// losing alternate or a failed lookahead).
	SkipExtended(pattern string, pc int) int
}

const extensionTriggers = "~@#%_;<`"

func isExtensionTrigger(b byte) bool {
	return b < ' ' || strings.IndexByte(extensionTriggers, b) >= 0
}

// MatchHere attempts pattern against src starting exactly at src's current
// position (no scanning forward on failure). It returns the match value,
// the Source position reached (unchanged from src on failure), and whether
// the match succeeded.
func MatchHere[M any](pattern string, src psource.Source, ctx Context[M]) (M, psource.Source, bool) {
	state := State{PC: 0, Source: src}
	ok := matchSequence(pattern, &state, ctx)
	if ok && state.PC >= len(pattern) {
		// An extra ')' can cause matchSequence to succeed incorrectly at
		// the top level, matching the original's guard.
		result := ctx.MatchResult(State{PC: 0, Source: src}, state)
		return result, state.Source, true
	}
	var zero M
	return zero, src, false
}

// Match attempts pattern against src, scanning forward one rune at a time
// until it matches or the source is exhausted -- the "search" form,
// equivalent to the original's Pegexp::match.
func Match[M any](pattern string, src psource.Source, ctx Context[M]) (M, psource.Source, bool) {
	initial := ctx.CaptureCount()
	cursor := src
	for {
		ctx.RollbackCapture(initial)
		if m, to, ok := MatchHere(pattern, cursor, ctx); ok {
			return m, to, true
		}
		if cursor.AtEOF() {
			break
		}
		cursor.GetRune()
	}
	var zero M
	return zero, src, false
}

// matchSequence matches atoms one after another until the pattern reaches
// a group terminator or end, rolling back any partial captures on failure.
func matchSequence[M any](pattern string, state *State, ctx Context[M]) bool {
	if atEnd(pattern, state.PC) {
		return true
	}
	mark := ctx.CaptureCount()
	ok := matchAtom(pattern, state, ctx)
	for ok && !atEnd(pattern, state.PC) {
		ok = matchAtom(pattern, state, ctx)
	}
	if !ok {
		ctx.RollbackCapture(mark)
	}
	return ok
}

// matchAtom matches exactly one atom (possibly a composite: group,
// alternation, repetition, lookahead) starting at state.PC, advancing
// state on success and leaving state unchanged on failure.
func matchAtom[M any](pattern string, state *State, ctx Context[M]) bool {
	mark := ctx.CaptureCount()
	start := *state

	matched := false
	if start.PC >= len(pattern) {
		matched = true
	} else {
		rc := pattern[start.PC]
		state.PC = start.PC + 1
		switch {
		case rc == ')':
			matched = true

		case rc == '^':
			matched = state.Source.AtBOL()

		case rc == '$':
			peekSrc := state.Source
			matched = peekSrc.AtEOF() || peekSrc.GetRune() == '\n'

		case rc == '.':
			if !state.Source.AtEOF() {
				state.Source.GetRune()
				matched = true
			}

		case rc == '\\':
			if !state.Source.AtEOF() {
				ch := state.Source.GetRune()
				matched = charProperty(pattern, &state.PC, ch)
			}

		case rc == '[':
			matched = matchCharClass(pattern, state)

		case rc == '?' || rc == '*' || rc == '+':
			matched = matchRepetition(pattern, rc, state, ctx)

		case rc == '(':
			if matchSequence(pattern, state, ctx) {
				if state.PC < len(pattern) && pattern[state.PC] == ')' {
					state.PC++
				}
				matched = true
			}

		case rc == '|':
			matched = matchAlternation(pattern, start, state, ctx, mark)

		case rc == '&' || rc == '!':
			matched = matchLookahead(pattern, rc, start, state, ctx)

		case isExtensionTrigger(rc):
			newPC, newSrc, ok := ctx.MatchExtended(pattern, start.PC, start.Source)
			if ok {
				state.PC = newPC
				state.Source = newSrc
			}
			matched = ok

		default: // literal character
			if !start.Source.AtEOF() {
				s := start.Source
				ch := s.GetRune()
				if rune(rc) == ch {
					state.Source = s
					matched = true
				}
			}
		}
	}

	if !matched {
		ctx.RollbackCapture(mark)
		if reportableFailure(pattern, start.PC) {
			ctx.RecordFailure(pattern, start.PC, state.PC, start.Source)
		}
		*state = start
		return false
	}

	// A label ":name:" (or ":name" up to a non-identifier byte) binds the
	// just-matched atom's value under that name.
	if state.PC < len(pattern) && pattern[state.PC] == ':' {
		namePC := state.PC + 1
		p := namePC
		for p < len(pattern) && isIdentByte(pattern[p]) {
			p++
		}
		name := pattern[namePC:p]
		if p < len(pattern) && pattern[p] == ':' {
			p++
		}
		state.PC = p
		if !ctx.CaptureDisabled() {
			ctx.Capture(name, ctx.MatchResult(start, *state), ctx.InRepetition())
		}
	}
	return true
}

func isIdentByte(b byte) bool {
	return b == '_' || (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// reportableFailure reports whether the atom whose operator byte sits at
// pc is a terminal (failures of composite operators -- ?*+(|&! -- are not
// reported, only their constituent terminals are).
func reportableFailure(pattern string, pc int) bool {
	if pc >= len(pattern) {
		return false
	}
	switch pattern[pc] {
	case '?', '*', '+', '(', '|', '&', '!':
		return false
	default:
		return true
	}
}

func matchRepetition[M any](pattern string, rc byte, state *State, ctx Context[M]) bool {
	min := 0
	max := 0
	if rc == '+' {
		min = 1
	}
	if rc == '?' {
		max = 1
	}
	repeatPC := state.PC

	if max != 1 {
		ctx.EnterRepetition()
		defer ctx.ExitRepetition()
	}

	repetitions := 0
	for repetitions < min {
		state.PC = repeatPC
		if !matchAtom(pattern, state, ctx) {
			return false
		}
		repetitions++
	}

	for max == 0 || repetitions < max {
		iterMark := ctx.CaptureCount()
		before := *state
		state.PC = repeatPC
		if !matchAtom(pattern, state, ctx) {
			ctx.RollbackCapture(iterMark)
			state.PC = SkipAtom(pattern, repeatPC, ctx)
			break
		}
		if state.Source.Same(before.Source) {
			// Matched without consuming input (e.g. *()): stop, or we'd
			// loop forever.
			break
		}
		repetitions++
	}
	return true
}

// matchAlternation implements "|A|B|...": each alternate is tried in turn
// from the same starting Source (the position recorded in origin, i.e.
// where the '|' operator itself was encountered); the first alternate whose
// full sequence matches wins, and any remaining alternates are skipped
// without being attempted.
func matchAlternation[M any](pattern string, origin State, state *State, ctx Context[M], mark int) bool {
	nextAlternate := origin.PC
	for nextAlternate < len(pattern) && pattern[nextAlternate] == '|' {
		state.Source = origin.Source
		state.PC = nextAlternate + 1

		matched := false
		ok := true
		for ok {
			if !matchAtom(pattern, state, ctx) {
				ok = false
				break
			}
			if atEnd(pattern, state.PC) || (state.PC < len(pattern) && pattern[state.PC] == '|') {
				matched = true
				break
			}
		}
		if matched {
			for state.PC < len(pattern) && pattern[state.PC] == '|' {
				state.PC = SkipAtom(pattern, state.PC, ctx)
			}
			return true
		}
		nextAlternate = SkipAtom(pattern, nextAlternate, ctx)
		ctx.RollbackCapture(mark)
	}
	return false
}

func charProperty(pattern string, pc *int, ch rune) bool {
	if *pc >= len(pattern) {
		return false
	}
	esc := pattern[*pc]
	*pc++
	switch esc {
	case 'a':
		return unicode.IsLetter(ch)
	case 'd':
		return unicode.IsDigit(ch)
	case 'h':
		return unicode.IsDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
	case 'L':
		return unicode.IsLower(ch)
	case 'U':
		return unicode.IsUpper(ch)
	case 's':
		return unicode.IsSpace(ch)
	case 'w':
		return unicode.IsLetter(ch) || unicode.IsDigit(ch)
	default:
		// Back up to the backslash so literalChar decodes the whole escape.
		*pc -= 2
		lit := literalChar(pattern, pc)
		return lit == ch
	}
}

func unhex(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	default:
		return -1
	}
}

// literalChar decodes the single character atom at *pc (an escape or a
// plain byte) and advances *pc past it.
func literalChar(pattern string, pc *int) rune {
	if *pc >= len(pattern) {
		return 0
	}
	rc := pattern[*pc]
	*pc++
	if rc != '\\' {
		return rune(rc)
	}
	if *pc >= len(pattern) {
		return 0
	}
	rc = pattern[*pc]
	*pc++
	switch {
	case rc >= '0' && rc <= '7': // Octal, up to 3 digits
		val := int(rc - '0')
		for i := 0; i < 2 && *pc < len(pattern) && pattern[*pc] >= '0' && pattern[*pc] <= '7'; i++ {
			val = val<<3 + int(pattern[*pc]-'0')
			*pc++
		}
		return rune(val)
	case rc == 'x':
		braces := *pc < len(pattern) && pattern[*pc] == '{'
		if braces {
			*pc++
		}
		if *pc >= len(pattern) {
			return 0
		}
		d1 := unhex(pattern[*pc])
		if d1 < 0 {
			return 0
		}
		*pc++
		val := d1
		if *pc < len(pattern) {
			if d2 := unhex(pattern[*pc]); d2 >= 0 {
				val = val<<4 | d2
				*pc++
			}
		}
		if braces && *pc < len(pattern) && pattern[*pc] == '}' {
			*pc++
		}
		return rune(val)
	case rc == 'u':
		braces := *pc < len(pattern) && pattern[*pc] == '{'
		if braces {
			*pc++
		}
		val := 0
		limit := 4
		if braces {
			limit = 8
		}
		for i := 0; i < limit && *pc < len(pattern); i++ {
			d := unhex(pattern[*pc])
			if d < 0 {
				break
			}
			val = val<<4 | d
			*pc++
		}
		if braces && *pc < len(pattern) && pattern[*pc] == '}' {
			*pc++
		}
		return rune(val)
	default:
		switch rc {
		case 'n':
			return '\n'
		case 't':
			return '\t'
		case 'r':
			return '\r'
		case 'b':
			return '\b'
		case 'e':
			return 0x1b
		case 'f':
			return '\f'
		default:
			return rune(rc)
		}
	}
}

func matchCharClass(pattern string, state *State) bool {
	if state.Source.AtEOF() {
		return false
	}
	pc := &state.PC
	negated := *pc < len(pattern) && pattern[*pc] == '^'
	if negated {
		*pc++
	}

	src := state.Source
	ch := src.GetRune()

	inClass := false
	for *pc < len(pattern) && pattern[*pc] != ']' {
		if pattern[*pc] == '\\' && *pc+1 < len(pattern) && isAlpha(pattern[*pc+1]) {
			*pc++
			if charProperty(pattern, pc, ch) {
				inClass = true
			}
			continue
		}
		c1 := literalChar(pattern, pc)
		if *pc < len(pattern) && pattern[*pc] == '-' {
			*pc++
			c2 := literalChar(pattern, pc)
			if ch >= c1 && ch <= c2 {
				inClass = true
			}
		} else if ch == c1 {
			inClass = true
		}
	}
	if *pc < len(pattern) && pattern[*pc] == ']' {
		*pc++
	}
	if negated {
		inClass = !inClass
	}
	if !inClass {
		return false
	}
	state.Source = src
	return true
}

func isAlpha(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func matchLookahead[M any](pattern string, rc byte, start State, state *State, ctx Context[M]) bool {
	mark := ctx.CaptureCount()
	trial := start
	trial.PC = start.PC + 1

	// capture_disabled is incremented for the duration of the lookahead
	ctx.EnterLookahead()
	matched := matchAtom(pattern, &trial, ctx)
	ctx.ExitLookahead()
	ctx.RollbackCapture(mark)

	if rc == '!' {
		matched = !matched
	}

	// Lookahead never consumes input, regardless of outcome.
	*state = start
	if matched {
		state.PC = SkipAtom(pattern, start.PC, ctx)
	}
	return matched
}

// SkipAtom returns the pattern cursor just past the atom starting at pc,
// without attempting to match it. Used to move past a losing alternate or
// past an assertion once its outcome is known. Extension atoms delegate to
// ctx.SkipExtended so Peg can skip "<rule>" references correctly.
func SkipAtom[M any](pattern string, pc int, ctx Context[M]) int {
	if pc >= len(pattern) {
		return pc
	}
	rc := pattern[pc]
	pc++
	switch {
	case rc == '\\':
		pc--
		literalChar(pattern, &pc)

	case rc == '[':
		if pc < len(pattern) && pattern[pc] == '^' {
			pc++
		}
		for pc < len(pattern) && pattern[pc] != ']' {
			literalChar(pattern, &pc)
			if pc < len(pattern) && pattern[pc] == '-' {
				pc++
				literalChar(pattern, &pc)
			}
		}
		if pc < len(pattern) && pattern[pc] == ']' {
			pc++
		}

	case rc == '(':
		for pc < len(pattern) && pattern[pc] != ')' {
			pc = SkipAtom(pattern, pc, ctx)
		}
		if pc < len(pattern) {
			pc++
		}

	case rc == '|':
		for pc < len(pattern) && pattern[pc] != '|' && pattern[pc] != ')' {
			pc = SkipAtom(pattern, pc, ctx)
		}

	case rc == '&' || rc == '!':
		pc = SkipAtom(pattern, pc, ctx)

	case isExtensionTrigger(rc):
		pc = ctx.SkipExtended(pattern, pc-1)
	}

	if pc < len(pattern) && pattern[pc] == ':' {
		pc++
		for pc < len(pattern) && isIdentByte(pattern[pc]) {
			pc++
		}
		if pc < len(pattern) && pattern[pc] == ':' {
			pc++
		}
	}
	return pc
}
