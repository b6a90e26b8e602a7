package nic

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/tdesilva/nicscan/constants"
)

// Every key of DigitConfusions must be matchable by confusableClass, or the
// fuzzy shape and the fold table have drifted apart.
func TestConfusableClassCoversFoldTable(t *testing.T) {
	classRe := regexp.MustCompile(`^[` + confusableClass + `]$`)
	for r := range DigitConfusions {
		if !classRe.MatchString(string(r)) {
			t.Errorf("confusable %q missing from confusableClass", r)
		}
	}
	for d := '0'; d <= '9'; d++ {
		if !classRe.MatchString(string(d)) {
			t.Errorf("digit %q missing from confusableClass", d)
		}
	}
}

func TestNewLibraryRejectsBadAnchors(t *testing.T) {
	tests := []struct {
		name string
		rule AnchorRule
	}{
		{"invalid regexp", AnchorRule{Name: "broken", Pattern: `([`}},
		{"one capture group", AnchorRule{Name: "onegroup", Pattern: `(\d{9})[vxy]`}},
		{"three capture groups", AnchorRule{Name: "threegroups", Pattern: `(x)(\d{9})([vxy])`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewLibrary(tt.rule); err == nil {
				t.Errorf("NewLibrary(%+v) succeeded, want error", tt.rule)
			}
		})
	}
}

func TestExtraAnchorRuleIsAnchored(t *testing.T) {
	lib, err := NewLibrary(AnchorRule{
		Name:    "passport-form-nic",
		Pattern: `(?is)\bNational\s+ID\b.{0,40}?(\d{9})\s*([vxy])\b`,
	})
	if err != nil {
		t.Fatalf("NewLibrary: %v", err)
	}
	x := NewExtractor(lib, nil)

	got := x.Scan([]string{"National ID\n913153782 V"})
	if len(got) != 1 || got[0].Tier != constants.TierAnchored || got[0].Value != "913153782V" {
		t.Errorf("Scan = %+v, want anchored 913153782V", got)
	}
}

func TestLoadAnchorRules(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		return p
	}

	t.Run("valid overlay", func(t *testing.T) {
		p := write("ok.json", `{"anchors":[{"name":"custom","pattern":"(\\d{9})([vxy])"}]}`)
		rules, err := LoadAnchorRules(p)
		if err != nil {
			t.Fatalf("LoadAnchorRules: %v", err)
		}
		if len(rules) != 1 || rules[0].Name != "custom" {
			t.Errorf("rules = %+v", rules)
		}
		if _, err := NewLibrary(rules...); err != nil {
			t.Errorf("NewLibrary with overlay: %v", err)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadAnchorRules(filepath.Join(dir, "absent.json")); err == nil {
			t.Error("want error for missing file")
		}
	})

	t.Run("not json", func(t *testing.T) {
		p := write("bad.json", `anchors: []`)
		if _, err := LoadAnchorRules(p); err == nil {
			t.Error("want error for malformed json")
		}
	})

	t.Run("wrong schema", func(t *testing.T) {
		p := write("schema.json", `{"anchors":[{"name":"x"}]}`)
		if _, err := LoadAnchorRules(p); err == nil {
			t.Error("want error for missing pattern field")
		}
	})

	t.Run("extra properties rejected", func(t *testing.T) {
		p := write("extra.json", `{"anchors":[],"tiers":["FUZZY"]}`)
		if _, err := LoadAnchorRules(p); err == nil {
			t.Error("want error for unknown top-level key")
		}
	})
}
