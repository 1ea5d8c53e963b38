package px

import "github.com/textparse/pegex/peg"

// Bootstrap is the grammar-description-language's own grammar, expressed as
// the peg.Table it would produce if fed back through itself. Px source text
// is parsed by running this table, not by a hand-written recursive-descent
// parser, the same way the language it describes parses other grammars.
var Bootstrap = mustBootstrap()

func mustBootstrap() *peg.Table {
	t, err := peg.New(bootstrapRules)
	if err != nil {
		panic("px: bootstrap grammar is malformed: " + err.Error())
	}
	return t
}

var bootstrapRules = []peg.Rule{
	{
		Name:   "blankline",
		Pegexp: `\n*[ \t\r](|\n|!.)`,
	},
	{
		Name:   "space",
		Pegexp: `|[ \t\r\n]|//*[^\n]`,
	},
	{
		Name:   "s",
		Pegexp: `*(!<blankline><space>)`,
	},
	{
		// The trailing !. makes the parse fail, and Parse report a
		// SyntaxError, unless the whole document was consumed.
		Name:     "TOP",
		Pegexp:   `*<space>*<rule>:rule!.`,
		Captures: []string{"rule"},
	},
	{
		Name:     "rule",
		Pegexp:   `<name><s>=<s><alternates>?<action><blankline>*<space>`,
		Captures: []string{"name", "alternates", "action"},
	},
	{
		Name:     "action",
		Pegexp:   `-><s>?(<name>:function\:<s>)<parameter>*(,<s><parameter>)<s>`,
		Captures: []string{"function", "parameter"},
	},
	// parameter through class_char parse and validate the body of a rule's
	// alternates, but none of them captures structure: the "rule" production
	// keeps the alternates' own verbatim source text (via <alternates>'s span
	// result, since alternates has no Captures of its own) rather than a
	// parsed sequence/repetition/atom tree. That verbatim pegexp text is
	// exactly what a peg.Rule needs, so Grammar never has to re-serialize an
	// AST back into pattern syntax.
	{
		Name:   "parameter",
		Pegexp: `(|<reference>:parameter|<literal>:parameter)<s>`,
	},
	{
		Name:   "reference",
		Pegexp: `<name><s>*([.*]:joiner<s><name>)`,
	},
	{
		Name:   "alternates",
		Pegexp: `|+(\|<s><sequence>)|<sequence>`,
	},
	{
		Name:   "sequence",
		Pegexp: `*<repetition>`,
	},
	{
		Name:   "repeat_count",
		Pegexp: `(|[?*+!&]:limit<s>|<count>:limit`,
	},
	{
		Name:   "count",
		Pegexp: `\{(|(+\d):val|<name>:val)<s>\}`,
	},
	{
		Name:   "repetition",
		Pegexp: `?<repeat_count><atom>?<label><s>`,
	},
	{
		Name:   "label",
		Pegexp: `\:<name>`,
	},
	{
		Name:   "atom",
		Pegexp: `|\.:atom|<ruleref>:atom|<property>:atom|<literal>:atom|<class>:atom|<group>:atom`,
	},
	{
		Name:   "group",
		Pegexp: `\(<s>+<alternates>\)`,
	},
	// ruleref is this implementation's one deliberate departure from the
	// transcribed bootstrap: a rule reference is written exactly as it
	// compiles, "<name>", rather than a bare identifier the compiler would
	// have to bracket itself. That keeps <alternates>'s captured span
	// directly usable as the compiled pegexp pattern text, with no
	// bare-name-to-bracket rewrite pass.
	{
		Name:   "ruleref",
		Pegexp: `\<<name>\>`,
	},
	{
		Name:   "name",
		Pegexp: `[\a_]*[\w_]`,
	},
	{
		Name:   "literal",
		Pegexp: `'*(!'<lit_char>)'`,
	},
	{
		Name: "lit_char",
		Pegexp: `|\\(|?[0-3][0-7]?[0-7]` +
			`|x\h?\h` +
			`|x{+\h}` +
			`|u?[01]\h?\h?\h?\h` +
			`|u{+\h}` +
			`|[^\n])` +
			`|[^\\\n]`,
	},
	{
		Name:   "property",
		Pegexp: `\\[adhsw]`,
	},
	{
		Name:   "class",
		Pegexp: `\[?\^?-+<class_part>]`,
	},
	{
		Name:   "class_part",
		Pegexp: `!]<class_char>?(-!]<class_char>)`,
	},
	{
		Name:   "class_char",
		Pegexp: `![-\]]<lit_char>`,
	},
}
