// Package peg runs a table of named pegexp rules against a Source, building
// a variant.Value parse tree out of labeled captures. It is the rule-indexed
// grammar runner layered on top of pegexp: where pegexp matches one pattern,
// peg dispatches between many, via "<rulename>" references that pegexp
// treats as extension atoms.
package peg

import (
	"errors"
	"fmt"
	"log"
	"sort"

	"github.com/textparse/pegex/pegexp"
	"github.com/textparse/pegex/psource"
	"github.com/textparse/pegex/variant"
)

// Rule is one named production: a pegexp pattern, plus the names whose
// matches within THIS rule's pattern are kept in its result: a ":name:"
// label, or a bare "<name>" reference captured under the referenced rule's
// own name. A label or reference whose name is not listed is matched but
// its value is discarded; a nil Captures keeps nothing.
type Rule struct {
	Name     string
	Pegexp   string
	Captures []string
}

func (r Rule) capturesName(name string) bool {
	for _, c := range r.Captures {
		if c == name {
			return true
		}
	}
	return false
}

// Logger receives diagnostics for conditions that are worth surfacing but
// not worth failing the parse over: left recursion, an unresolvable rule
// reference, a capture rollback the grammar didn't expect.
type Logger interface {
	Printf(format string, args ...any)
}

type stdLogger struct{}

func (stdLogger) Printf(format string, args ...any) { log.Printf(format, args...) }

// ErrNoTopRule is returned by New when the rule set has no rule named TOP.
var ErrNoTopRule = errors.New("peg: no rule named TOP")

// ErrParseFailed is returned by Table.Parse when the TOP rule could not
// match any prefix of the input. Match.Furthermost and Match.Failures
// still describe how far the parse got and what was expected there.
var ErrParseFailed = errors.New("peg: parse failed")

// Table is an immutable, name-sorted set of rules ready to parse. Build one
// with New.
type Table struct {
	rules  []Rule
	logger Logger
}

// Option configures a Table at construction time.
type Option func(*Table)

// WithLogger overrides the default log.Printf-backed Logger.
func WithLogger(l Logger) Option {
	return func(t *Table) { t.logger = l }
}

// New builds a Table from rules, sorting them by name for lookup and
// validating that exactly one rule is named TOP and no two rules share a
// name.
func New(rules []Rule, opts ...Option) (*Table, error) {
	sorted := append([]Rule(nil), rules...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Name == sorted[i-1].Name {
			return nil, fmt.Errorf("peg: duplicate rule %q", sorted[i].Name)
		}
	}
	t := &Table{rules: sorted, logger: stdLogger{}}
	for _, opt := range opts {
		opt(t)
	}
	if _, ok := t.lookup("TOP"); !ok {
		return nil, ErrNoTopRule
	}
	return t, nil
}

func (t *Table) lookup(name string) (*Rule, bool) {
	i := sort.Search(len(t.rules), func(i int) bool { return t.rules[i].Name >= name })
	if i < len(t.rules) && t.rules[i].Name == name {
		return &t.rules[i], true
	}
	return nil, false
}

// Match is the result of a parse: Value holds the captured tree. For the
// Match returned by Table.Parse it is always a Map of the TOP rule's
// captures (empty if there were none); for a sub-rule's match it is a Map
// of that rule's captures if it made any, otherwise the matched text as a
// String. Furthermost and Failures are only meaningful on the Match
// returned directly from Table.Parse -- they describe the furthest point
// the parser reached and which terminal atoms it was trying to match there,
// regardless of whether the overall parse succeeded.
type Match struct {
	Value       variant.Value
	Furthermost psource.Source
	Failures    []string
}

// Parse runs the TOP rule against src from its current position. On success
// Match.Value holds the parse tree. On failure the returned error is
// ErrParseFailed and Match.Furthermost/Match.Failures still describe the
// furthest reachable point and what was expected there.
func (t *Table) Parse(src psource.Source) (Match, error) {
	top, ok := t.lookup("TOP")
	if !ok {
		return Match{}, ErrNoTopRule
	}
	root := newContext(t, nil, top, src)
	val, _, ok := pegexp.MatchHere(top.Pegexp, src, root)
	if !ok {
		return Match{
			Furthermost: root.furthermost,
			Failures:    append([]string(nil), root.failures...),
		}, ErrParseFailed
	}
	return val, nil
}

// context implements pegexp.Context[Match] for one rule invocation. A new
// context is created each time a "<rulename>" reference is followed, and
// chained to its caller via parent -- that chain is what makes left
// recursion detectable and furthermost-failure tracking bubble to the root.
type context struct {
	table  *Table
	parent *context
	rule   *Rule
	origin psource.Source

	repetitionNesting int
	captureDisabled   int
	numCaptures       int
	ast               variant.Value

	// Populated only on the root context (parent == nil); that's the one
	// match_result and record_failure report from.
	furthermost  psource.Source
	haveFurthest bool
	failures     []string
}

func newContext(t *Table, parent *context, rule *Rule, origin psource.Source) *context {
	disabled := 0
	if parent != nil {
		disabled = parent.captureDisabled
	}
	return &context{
		table:           t,
		parent:          parent,
		rule:            rule,
		origin:          origin,
		captureDisabled: disabled,
		ast:             variant.NewMap(),
		furthermost:     origin,
		haveFurthest:    true,
	}
}

func (c *context) CaptureCount() int { return c.numCaptures }

func (c *context) Capture(name string, m Match, inRepetition bool) int {
	if !c.rule.capturesName(name) {
		return c.numCaptures
	}
	if m.Value.Kind() == variant.String && m.Value.Str() == "" {
		return c.numCaptures
	}
	if existing, ok := c.ast.Get(name); ok {
		items := existing.Items()
		if existing.Kind() != variant.Array {
			items = []variant.Value{existing}
		}
		c.ast = c.ast.Put(name, variant.NewArray(append(append([]variant.Value(nil), items...), m.Value)))
	} else if inRepetition {
		c.ast = c.ast.Put(name, variant.NewArray([]variant.Value{m.Value}))
	} else {
		c.ast = c.ast.Put(name, m.Value)
	}
	c.numCaptures++
	return c.numCaptures
}

// RollbackCapture only honors a full clear at mark==0; any other mark is a
// no-op, logged each time it happens. This grammar family never rolls back partway through
// a rule's captures except on total rule failure.
func (c *context) RollbackCapture(mark int) {
	if mark >= c.numCaptures {
		return
	}
	if mark == 0 {
		c.ast = variant.NewMap()
		c.numCaptures = 0
		return
	}
	c.table.logger.Printf("peg: %s: cannot roll back capture count from %d to %d", c.rule.Name, c.numCaptures, mark)
}

func (c *context) RecordFailure(pattern string, atomStart, atomEnd int, loc psource.Source) {
	if c.captureDisabled > 0 {
		return
	}
	if c.parent != nil {
		c.parent.RecordFailure(pattern, atomStart, atomEnd, loc)
		return
	}
	if c.haveFurthest && loc.Before(c.furthermost) {
		return
	}
	if c.haveFurthest && c.furthermost.Before(loc) {
		c.failures = c.failures[:0]
	}
	atom := pattern[atomStart:atomEnd]
	for _, f := range c.failures {
		if f == atom {
			return
		}
	}
	c.furthermost = loc
	c.haveFurthest = true
	c.failures = append(c.failures, atom)
}

func (c *context) MatchFailure(at pegexp.State) Match { return Match{} }

func (c *context) MatchResult(from, to pegexp.State) Match {
	if c.parent == nil {
		return Match{
			Value:       c.ast,
			Furthermost: c.furthermost,
			Failures:    append([]string(nil), c.failures...),
		}
	}
	if c.numCaptures > 0 {
		return Match{Value: c.ast}
	}
	return Match{Value: variant.NewString(string(psource.Slice(from.Source, to.Source)))}
}

func (c *context) CaptureDisabled() bool { return c.captureDisabled > 0 }
func (c *context) EnterLookahead()       { c.captureDisabled++ }
func (c *context) ExitLookahead()        { c.captureDisabled-- }
func (c *context) EnterRepetition()      { c.repetitionNesting++ }
func (c *context) ExitRepetition()       { c.repetitionNesting-- }
func (c *context) InRepetition() bool    { return c.repetitionNesting > 0 }

// MatchExtended dispatches a "<rulename>" reference: it looks the name up
// in the table, detects left recursion by walking the parent chain for a
// context already matching the same rule at the same source position, and
// on a successful sub-match captures the sub-rule's result under the label
// that follows the reference (":label:" or ":label", consumed here), or
// under the rule's own name when there is no label, if the calling rule
// declared that name as one of its Captures.
func (c *context) MatchExtended(pattern string, pc int, src psource.Source) (int, psource.Source, bool) {
	if pc >= len(pattern) || pattern[pc] != '<' {
		return pc, src, false
	}
	nameStart := pc + 1
	nameEnd := nameStart
	for nameEnd < len(pattern) && pattern[nameEnd] != '>' {
		nameEnd++
	}
	name := pattern[nameStart:nameEnd]
	newPC := nameEnd
	if newPC < len(pattern) {
		newPC++
	}

	for p := c; p != nil; p = p.parent {
		if p.rule.Name == name && p.origin.Same(src) {
			c.table.logger.Printf("peg: left recursion detected on rule %q", name)
			return pc, src, false
		}
	}

	rule, ok := c.table.lookup(name)
	if !ok {
		c.table.logger.Printf("peg: rule %q not found", name)
		return pc, src, false
	}

	sub := newContext(c.table, c, rule, src)
	result, rest, matched := pegexp.MatchHere(rule.Pegexp, src, sub)
	if !matched {
		return pc, src, false
	}
	label := name
	if newPC < len(pattern) && pattern[newPC] == ':' {
		p := newPC + 1
		for p < len(pattern) && (pattern[p] == '_' || pattern[p] >= '0' && pattern[p] <= '9' ||
			pattern[p] >= 'a' && pattern[p] <= 'z' || pattern[p] >= 'A' && pattern[p] <= 'Z') {
			p++
		}
		label = pattern[newPC+1 : p]
		if p < len(pattern) && pattern[p] == ':' {
			p++
		}
		newPC = p
	}
	if !c.CaptureDisabled() {
		c.Capture(label, result, c.InRepetition())
	}
	return newPC, rest, true
}

// SkipExtended skips a "<rulename>" reference without attempting the match,
// for use when Pegexp is abandoning a losing alternate or a failed
// lookahead.
func (c *context) SkipExtended(pattern string, pc int) int {
	if pc >= len(pattern) || pattern[pc] != '<' {
		return pc + 1
	}
	end := pc + 1
	for end < len(pattern) && pattern[end] != '>' {
		end++
	}
	if end < len(pattern) {
		end++
	}
	return end
}
