package px

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/textparse/pegex/peg"
	"github.com/textparse/pegex/psource"
)

// Each rule ends at a blank line (the blankline rule), which may be empty
// or hold spaces, tabs or carriage returns; the ones here hold one space.
const greetingSource = "greeting = 'hello'<s><word> -> greet: word\n \nword = +[\\a]\n "

func TestParseSimpleGrammar(t *testing.T) {
	g, err := Parse(greetingSource)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	names := g.RuleNames()
	if len(names) != 2 || names[0] != "greeting" || names[1] != "word" {
		t.Fatalf("RuleNames = %v, want [greeting word]", names)
	}
}

func TestRulesProducesExpectedDefinitions(t *testing.T) {
	g, err := Parse(greetingSource)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := []peg.Rule{
		{Name: "greeting", Pegexp: `'hello'<s><word>`, Captures: []string{"word"}},
		{Name: "word", Pegexp: `+[\a]`},
	}
	if diff := cmp.Diff(want, g.Rules()); diff != "" {
		t.Fatalf("Rules() mismatch (-want +got):\n%s", diff)
	}
}

func TestParsedGrammarRunsAsPegTable(t *testing.T) {
	g, err := Parse(greetingSource)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	rules := g.Rules()
	rules = append(rules, peg.Rule{Name: "TOP", Pegexp: "<greeting>:greeting", Captures: []string{"greeting"}})

	table, err := peg.New(rules)
	if err != nil {
		t.Fatalf("peg.New: %v", err)
	}

	match, err := table.Parse(psource.NewFromString("hello world"))
	if err != nil {
		t.Fatalf("Parse input: %v", err)
	}
	if match.Value.Kind().String() != "Map" {
		t.Fatalf("expected a Map result, got %v", match.Value.Kind())
	}
}

func TestParseSyntaxErrorReportsLocation(t *testing.T) {
	_, err := Parse("not a valid px rule at all {{{")
	if err == nil {
		t.Fatal("expected a syntax error")
	}
	var synErr *SyntaxError
	if !asSyntaxError(err, &synErr) {
		t.Fatalf("expected *SyntaxError, got %T", err)
	}
	if len(synErr.Diagnostics) == 0 {
		t.Fatal("expected at least one diagnostic")
	}
}

func asSyntaxError(err error, target **SyntaxError) bool {
	se, ok := err.(*SyntaxError)
	if ok {
		*target = se
	}
	return ok
}

func TestGenerateEmitsTableLiteral(t *testing.T) {
	g, err := Parse(greetingSource)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	var buf bytes.Buffer
	if err := Generate(&buf, "grammar", g); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"package grammar", "TableRules", `Name: "greeting"`, "peg.New"} {
		if !strings.Contains(out, want) {
			t.Fatalf("generated source missing %q:\n%s", want, out)
		}
	}
}
