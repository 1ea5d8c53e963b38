package rx

// Feature is a bitmask of regex syntax elements a Compile call accepts or
// rejects, letting a caller configure a restricted dialect (for embedding
// untrusted patterns, or for matching another tool's regex flavor exactly).
type Feature uint32

const (
	CEscapes Feature = 1 << iota
	Shorthand
	OctalChar
	HexChar
	UnicodeChar
	PropertyChars
	CharClasses
	ZeroOrOneQuest
	ZeroOrMore
	OneOrMore
	CountRepetition
	Alternates
	Group
	Capture
	NonCapture
	NegLookahead
	BOL
	EOL

	// AnyIsQuest and ZeroOrMoreAny name a glob-like dialect of ? and *, and
	// the three bits after them name further modifiers. Compile does not
	// consult any of these five bits: setting them changes nothing in how a
	// pattern is compiled or matched, and Compile does not reject AnyIsQuest together
	// with ZeroOrOneQuest or ZeroOrMoreAny together with ZeroOrMore.
	AnyIsQuest
	ZeroOrMoreAny
	AnyIncludesNL
	CaseInsensitive
	ExtendedRE
)

// AllFeatures enables every syntax element of the default dialect (not the
// mutually-exclusive glob variants AnyIsQuest/ZeroOrMoreAny, nor
// CaseInsensitive/ExtendedRE/AnyIncludesNL, which are opt-in modifiers).
const AllFeatures = CEscapes | Shorthand | OctalChar | HexChar | UnicodeChar |
	PropertyChars | CharClasses | ZeroOrOneQuest | ZeroOrMore | OneOrMore |
	CountRepetition | Alternates | Group | Capture | NonCapture | NegLookahead |
	BOL | EOL

// Has reports whether every bit of want is set in f.
func (f Feature) Has(want Feature) bool { return f&want == want }
