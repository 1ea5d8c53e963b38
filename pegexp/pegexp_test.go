package pegexp

import (
	"testing"

	"github.com/textparse/pegex/psource"
)

// boolContext is the simplest possible Context: match values are plain
// bools, captures are recorded by name in order, and failures only track
// the furthest position reached. Used to exercise the VM's control flow
// without pulling in the peg package's tree-building machinery.
type boolContext struct {
	lookaheadDepth int
	repetitionDepth int
	captures        []captured
	furthest        psource.Source
	haveFurthest    bool
}

type captured struct {
	name string
	val  bool
}

func (c *boolContext) CaptureCount() int { return len(c.captures) }

func (c *boolContext) Capture(name string, m bool, inRepetition bool) int {
	c.captures = append(c.captures, captured{name, m})
	return len(c.captures)
}

func (c *boolContext) RollbackCapture(mark int) {
	if mark == 0 {
		c.captures = nil
	}
}

func (c *boolContext) RecordFailure(pattern string, atomStart, atomEnd int, loc psource.Source) {
	if !c.haveFurthest || c.furthest.Before(loc) {
		c.furthest = loc
		c.haveFurthest = true
	}
}

func (c *boolContext) MatchFailure(at State) bool         { return false }
func (c *boolContext) MatchResult(from, to State) bool     { return true }
func (c *boolContext) CaptureDisabled() bool               { return c.lookaheadDepth > 0 }
func (c *boolContext) EnterLookahead()                     { c.lookaheadDepth++ }
func (c *boolContext) ExitLookahead()                      { c.lookaheadDepth-- }
func (c *boolContext) EnterRepetition()                    { c.repetitionDepth++ }
func (c *boolContext) ExitRepetition()                     { c.repetitionDepth-- }
func (c *boolContext) InRepetition() bool                  { return c.repetitionDepth > 0 }

func (c *boolContext) MatchExtended(pattern string, pc int, src psource.Source) (int, psource.Source, bool) {
	return pc, src, false
}

func (c *boolContext) SkipExtended(pattern string, pc int) int { return pc + 1 }

func runMatch(pattern, input string) (matched bool, rest psource.Source, ctx *boolContext) {
	ctx = &boolContext{}
	_, rest, matched = Match(pattern, psource.NewFromString(input), ctx)
	return
}

func TestLiteralMatch(t *testing.T) {
	tests := []struct {
		pattern, input string
		want           bool
	}{
		{"abc", "abc", true},
		{"abc", "xyzabc", true}, // search form scans forward
		{"abc", "ab", false},
		{"", "anything", true}, // empty pattern matches immediately
	}
	for _, tt := range tests {
		t.Run(tt.pattern+"/"+tt.input, func(t *testing.T) {
			matched, _, _ := runMatch(tt.pattern, tt.input)
			if matched != tt.want {
				t.Errorf("Match(%q, %q) = %v, want %v", tt.pattern, tt.input, matched, tt.want)
			}
		})
	}
}

func TestAlternationWithLabel(t *testing.T) {
	pattern := `(|cat|dog|bird):animal:`
	for _, input := range []string{"cat", "dog", "bird"} {
		matched, _, ctx := runMatch(pattern, input)
		if !matched {
			t.Fatalf("Match(%q, %q) did not match", pattern, input)
		}
		if len(ctx.captures) != 1 || ctx.captures[0].name != "animal" {
			t.Fatalf("captures = %v, want one capture named animal", ctx.captures)
		}
	}
	if matched, _, _ := runMatch(pattern, "fish"); matched {
		t.Fatal("unexpected match for non-alternate input")
	}
}

func TestAlternationFirstMatchWins(t *testing.T) {
	// "a" and "ab" both match the prefix "a" of "ab", but ordered
	// alternation commits to the first successful full alternate: since
	// neither atom consumes beyond its own extent, the first alternate
	// ("a") wins and the remainder "b" is left unconsumed by MatchHere,
	// but the search-form Match only cares whether some prefix matched.
	matched, rest, _ := runMatch(`|a|ab`, "ab")
	if !matched {
		t.Fatal("expected a match")
	}
	if rest.Offset() != 1 {
		t.Fatalf("rest offset = %d, want 1 (first alternate wins)", rest.Offset())
	}
}

func TestPossessiveStarDoesNotBacktrack(t *testing.T) {
	// "*a" followed by a literal "a" can never succeed possessively: the
	// star consumes every "a" greedily and never gives any back to let
	// the trailing "a" match, unlike a backtracking regex engine.
	matched, _, _ := runMatch(`*aa`, "aaa")
	if matched {
		t.Fatal("possessive *a followed by a should not match aaa (no backtracking)")
	}
}

func TestPossessiveStarZeroOrMore(t *testing.T) {
	matched, rest, _ := runMatch(`*a`, "aaab")
	if !matched {
		t.Fatal("expected match")
	}
	if rest.Offset() != 3 {
		t.Fatalf("rest offset = %d, want 3 (consumed all leading a's)", rest.Offset())
	}
}

func TestNegativeLookahead(t *testing.T) {
	// !a b -- b must not be preceded by... actually lookahead checks what
	// follows the current position, so "!ab" means "not a, then match b".
	matched, rest, _ := runMatch(`!ab`, "b")
	if !matched {
		t.Fatal("expected !a to succeed when next char is not a, then b to match")
	}
	if rest.Offset() != 1 {
		t.Fatalf("rest offset = %d, want 1 (lookahead consumes nothing)", rest.Offset())
	}

	if _, _, matched := MatchHere(`!ab`, psource.NewFromString("ab"), &boolContext{}); matched {
		t.Fatal("!a should fail when next char is a")
	}
}

func TestPositiveLookaheadDisablesCapture(t *testing.T) {
	matched, _, ctx := runMatch(`&a:x:a`, "a")
	if !matched {
		t.Fatal("expected match")
	}
	if len(ctx.captures) != 0 {
		t.Fatalf("lookahead should not record captures, got %v", ctx.captures)
	}
}

func TestSuccessfulMatchAdvancesCursor(t *testing.T) {
	matched, rest, _ := runMatch("hello", "hello world")
	if !matched {
		t.Fatal("expected match")
	}
	if rest.Offset() != 5 {
		t.Fatalf("rest offset = %d, want 5", rest.Offset())
	}
}

func TestCaptureRollbackOnFailedAlternate(t *testing.T) {
	// The first alternate captures x on "a" and then fails on "z"; its
	// capture must not leak into the final successful result.
	pattern := `|a:x:z|a:y:`
	matched, _, ctx := runMatch(pattern, "ab")
	if !matched {
		t.Fatal("expected match")
	}
	if len(ctx.captures) != 1 || ctx.captures[0].name != "y" {
		t.Fatalf("captures = %v, want only y (x rolled back)", ctx.captures)
	}
}

func TestCharClassAndCharProperty(t *testing.T) {
	if matched, _, _ := runMatch(`[a-z]`, "m"); !matched {
		t.Fatal("expected [a-z] to match m")
	}
	if matched, _, _ := runMatch(`[^a-z]`, "M"); !matched {
		t.Fatal("expected [^a-z] to match M")
	}
	if matched, _, _ := runMatch(`\d`, "7"); !matched {
		t.Fatal(`expected \d to match 7`)
	}
	if matched, _, _ := runMatch(`\d`, "x"); matched {
		t.Fatal(`expected \d not to match x`)
	}
}

func TestAnchors(t *testing.T) {
	matched, _, _ := runMatch(`^hello`, "hello")
	if !matched {
		t.Fatal("expected ^hello to match at BOL")
	}
	matched, _, _ = runMatch(`^hello`, "xhello")
	if matched {
		t.Fatal("^hello should not match mid-line")
	}
}

func TestPlusRequiresAtLeastOne(t *testing.T) {
	if matched, _, _ := runMatch(`+a`, ""); matched {
		t.Fatal("+a should not match empty input")
	}
	matched, rest, _ := runMatch(`+a`, "aaa")
	if !matched || rest.Offset() != 3 {
		t.Fatalf("expected +a to consume all a's, got matched=%v offset=%d", matched, rest.Offset())
	}
}
