package featureset

import (
	"testing"

	"github.com/textparse/pegex/rx"
)

const sampleYAML = `
profiles:
  - name: strict
    enable: [c_escapes, char_classes, alternates, group]
    reject: [count_repetition]
  - name: posix
    enable: [all]
`

func TestLoadResolvesNamesToBitmask(t *testing.T) {
	profiles, err := Load([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	strict, ok := profiles["strict"]
	if !ok {
		t.Fatal("expected strict profile")
	}
	if !strict.Feature.Has(rx.Alternates) || !strict.Feature.Has(rx.Group) {
		t.Fatalf("strict feature mask missing expected bits: %v", strict.Feature)
	}
	if strict.Feature.Has(rx.CountRepetition) {
		t.Fatal("strict should not enable count_repetition")
	}
	if !strict.RejectF.Has(rx.CountRepetition) {
		t.Fatal("strict should reject count_repetition")
	}

	posix, ok := profiles["posix"]
	if !ok {
		t.Fatal("expected posix profile")
	}
	if posix.Feature != rx.AllFeatures {
		t.Fatalf("posix feature = %v, want AllFeatures", posix.Feature)
	}
}

func TestLoadRejectsUnknownName(t *testing.T) {
	_, err := Load([]byte("profiles:\n  - name: bad\n    enable: [nonsense]\n"))
	if err == nil {
		t.Fatal("expected error for unknown feature name")
	}
}
