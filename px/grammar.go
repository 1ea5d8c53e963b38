// Package px compiles the grammar-description language into a peg.Table:
// parse a ".px" source document, and either run its rules directly or emit
// Go source that builds the equivalent table, via Generate.
package px

import (
	"fmt"
	"strings"

	"github.com/textparse/pegex/peg"
	"github.com/textparse/pegex/psource"
	"github.com/textparse/pegex/variant"
)

// RuleDef is one parsed rule definition: a name, the verbatim pegexp
// pattern text of its alternates, and (if the rule declares an action) the
// capture names: the labels and <name> references within this rule's own
// pattern whose matches are kept in its result.
type RuleDef struct {
	Name     string
	Pegexp   string
	Captures []string
}

// Grammar is a fully parsed px document: an ordered list of rule
// definitions, in source order.
type Grammar struct {
	defs []RuleDef
}

// Rules converts the parsed document into the peg.Rule table peg.New
// expects.
func (g *Grammar) Rules() []peg.Rule {
	out := make([]peg.Rule, len(g.defs))
	for i, d := range g.defs {
		out[i] = peg.Rule{Name: d.Name, Pegexp: d.Pegexp, Captures: d.Captures}
	}
	return out
}

// RuleNames returns the names of every rule in source order.
func (g *Grammar) RuleNames() []string {
	names := make([]string, len(g.defs))
	for i, d := range g.defs {
		names[i] = d.Name
	}
	return names
}

// Diagnostic is one parse-time complaint, located by byte offset.
type Diagnostic struct {
	Offset  int
	Line    int
	Column  int
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%d:%d: %s", d.Line, d.Column, d.Message)
}

// SyntaxError reports that a px document failed to parse, carrying every
// candidate failure recorded at the furthermost position reached.
type SyntaxError struct {
	Diagnostics []Diagnostic
}

func (e *SyntaxError) Error() string {
	if len(e.Diagnostics) == 0 {
		return "px: syntax error"
	}
	parts := make([]string, len(e.Diagnostics))
	for i, d := range e.Diagnostics {
		parts[i] = d.String()
	}
	return "px: " + strings.Join(parts, "; ")
}

// Parse compiles px source text into a Grammar.
func Parse(source string) (*Grammar, error) {
	src := psource.NewFromString(source)
	match, err := Bootstrap.Parse(src)
	if err != nil {
		return nil, &SyntaxError{Diagnostics: furthermostDiagnostics(match)}
	}

	rules, ok := match.Value.Get("rule")
	if !ok {
		return &Grammar{}, nil
	}
	items := rules.Items()
	if rules.Kind() != variant.Array {
		items = []variant.Value{rules}
	}

	defs := make([]RuleDef, 0, len(items))
	for _, r := range items {
		def, err := ruleDefFromValue(r)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return &Grammar{defs: defs}, nil
}

func ruleDefFromValue(v variant.Value) (RuleDef, error) {
	nameV, ok := v.Get("name")
	if !ok {
		return RuleDef{}, fmt.Errorf("px: rule definition missing a name")
	}
	altV, ok := v.Get("alternates")
	if !ok {
		return RuleDef{}, fmt.Errorf("px: rule %q has no alternates", nameV.Str())
	}
	// Each repetition inside alternates consumes its own trailing run of
	// whitespace (pegexp's <s>), so the verbatim span includes formatting
	// that has no bearing on the compiled pattern; trim it.
	def := RuleDef{Name: nameV.Str(), Pegexp: strings.TrimRight(altV.Str(), " \t\r\n")}

	actionV, ok := v.Get("action")
	if !ok {
		return def, nil
	}
	paramV, ok := actionV.Get("parameter")
	if !ok {
		return def, nil
	}
	items := paramV.Items()
	if paramV.Kind() != variant.Array {
		items = []variant.Value{paramV}
	}
	for _, p := range items {
		def.Captures = append(def.Captures, strings.TrimRight(p.Str(), " \t\r\n"))
	}
	return def, nil
}

// furthermostDiagnostics turns a failed peg.Match's recorded failure atoms
// into Diagnostics located at the furthermost source position reached.
func furthermostDiagnostics(match peg.Match) []Diagnostic {
	loc := match.Furthermost
	if len(match.Failures) == 0 {
		return []Diagnostic{{Offset: loc.Offset(), Line: loc.Line(), Column: loc.Column(), Message: "parse failed"}}
	}
	diags := make([]Diagnostic, len(match.Failures))
	for i, f := range match.Failures {
		diags[i] = Diagnostic{
			Offset:  loc.Offset(),
			Line:    loc.Line(),
			Column:  loc.Column(),
			Message: fmt.Sprintf("expected %s", f),
		}
	}
	return diags
}
