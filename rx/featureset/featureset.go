// Package featureset loads named rx.Feature profiles from YAML, so a
// deployment can restrict which regex syntax it accepts (e.g. a "strict"
// profile for matching untrusted input, or a "posix" profile matching a
// legacy tool's dialect) without recompiling.
package featureset

import (
	"fmt"

	"github.com/textparse/pegex/rx"
	"gopkg.in/yaml.v3"
)

// Profile is one named feature configuration.
type Profile struct {
	Name    string   `yaml:"name"`
	Enable  []string `yaml:"enable"`
	Reject  []string `yaml:"reject"`
	Feature rx.Feature
	RejectF rx.Feature
}

// flagByName maps the YAML vocabulary to rx.Feature bits. "all" expands to
// rx.AllFeatures.
var flagByName = map[string]rx.Feature{
	"c_escapes":        rx.CEscapes,
	"shorthand":        rx.Shorthand,
	"octal_char":       rx.OctalChar,
	"hex_char":         rx.HexChar,
	"unicode_char":     rx.UnicodeChar,
	"property_chars":   rx.PropertyChars,
	"char_classes":     rx.CharClasses,
	"zero_or_one":      rx.ZeroOrOneQuest,
	"zero_or_more":     rx.ZeroOrMore,
	"one_or_more":      rx.OneOrMore,
	"count_repetition": rx.CountRepetition,
	"alternates":       rx.Alternates,
	"group":            rx.Group,
	"capture":          rx.Capture,
	"non_capture":      rx.NonCapture,
	"neg_lookahead":    rx.NegLookahead,
	"bol":              rx.BOL,
	"eol":              rx.EOL,
	"any_is_quest":     rx.AnyIsQuest,
	"zero_or_more_any": rx.ZeroOrMoreAny,
	"any_includes_nl":  rx.AnyIncludesNL,
	"case_insensitive": rx.CaseInsensitive,
	"extended":         rx.ExtendedRE,
	"all":              rx.AllFeatures,
}

func resolve(names []string) (rx.Feature, error) {
	var f rx.Feature
	for _, name := range names {
		bit, ok := flagByName[name]
		if !ok {
			return 0, fmt.Errorf("featureset: unknown feature name %q", name)
		}
		f |= bit
	}
	return f, nil
}

// Load parses a YAML document of named profiles, each resolving its
// enable/reject name lists into rx.Feature bitmasks.
func Load(data []byte) (map[string]Profile, error) {
	var raw struct {
		Profiles []Profile `yaml:"profiles"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("featureset: parse: %w", err)
	}
	out := make(map[string]Profile, len(raw.Profiles))
	for _, p := range raw.Profiles {
		enabled, err := resolve(p.Enable)
		if err != nil {
			return nil, err
		}
		rejected, err := resolve(p.Reject)
		if err != nil {
			return nil, err
		}
		p.Feature = enabled
		p.RejectF = rejected
		out[p.Name] = p
	}
	return out, nil
}
