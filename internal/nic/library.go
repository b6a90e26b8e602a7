package nic

import (
	"fmt"
	"regexp"

	"github.com/tdesilva/nicscan/constants"
)

// Shape is one recognized identifier form: a recognition pattern, the
// confidence tier its raw hits belong to, and a canonicalization rule.
type Shape struct {
	Name string
	Tier constants.Tier

	re *regexp.Regexp
	// joinGroups pre-merges spaced digit blocks ("123 456 789" ->
	// "123456789") before matching. Off for shapes that tolerate gaps
	// themselves (fuzzy) and for zero-tolerance alphanumeric shapes.
	joinGroups bool
	// canon maps the submatch groups to the canonical display value.
	// Returning false discards the match (e.g. a fuzzy fold that does not
	// yield 9 digits).
	canon func(groups []string) (string, bool)
}

// Library is the immutable set of shapes the extractor matches, in
// declaration order within each tier. Construct once and share freely;
// it holds no mutable state.
type Library struct {
	shapes []Shape
}

// AnchorRule adds a form-specific label pattern to the Anchored tier, e.g.
// for a licence layout whose NIC field carries a different marker. The
// pattern must capture exactly two groups: the 9-digit head and the check
// letter.
type AnchorRule struct {
	Name    string `json:"name"`
	Pattern string `json:"pattern"`
}

// Built-in anchors: form-field markers commonly printed next to the NIC on
// licences and application forms. Label text is matched but never captured.
// The .{0,40} window lets the digits sit a short distance after the label,
// including across a line break.
var builtinAnchors = []AnchorRule{
	{Name: "old-nic-field-4d", Pattern: `(?is)\b4d\b\.?\s*[:\-]?\s*(\d{9})\s*([vxy])\b`},
	{Name: "old-nic-label-nic", Pattern: `(?is)\bNIC(?:\s*No\.?)?\b.{0,40}?(\d{9})\s*([vxy])\b`},
	{Name: "old-nic-label-id", Pattern: `(?is)\bID(?:\s*No\.?)?\b.{0,40}?(\d{9})\s*([vxy])\b`},
}

func canonOldNIC(g []string) (string, bool) {
	return CanonicalOldNIC(g[1], g[2]), true
}

// NewLibrary builds the default pattern library plus any extra anchor rules.
// Shapes, tiers and tolerance policies:
//
//   - old NIC, Anchored: label context, digits and tail captured, label dropped.
//   - old NIC, Tolerant: exactly 9 literal digits, up to 4 non-word characters,
//     then the tail letter. No confusable substitution.
//   - new NIC (12 digits) and passport (letter + 7 digits): zero tolerance.
//     The 12-digit form carries no check letter, so any tolerance would be
//     ambiguous against arbitrary 12-digit numbers.
//   - old NIC, Fuzzy: three 3-character groups of digits or confusables with
//     small gaps; groups are folded through DigitConfusions and must yield
//     exactly 9 digits. The tail position accepts only V/X/Y and is never
//     folded, which resolves characters ambiguous between "digit" and "tail"
//     in favor of the digit run for the three groups and the letter for the
//     tail slot.
func NewLibrary(extra ...AnchorRule) (*Library, error) {
	var shapes []Shape

	rules := append(append([]AnchorRule{}, builtinAnchors...), extra...)
	for _, r := range rules {
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("anchor %q: %w", r.Name, err)
		}
		if re.NumSubexp() != 2 {
			return nil, fmt.Errorf("anchor %q: pattern must capture head and tail groups", r.Name)
		}
		shapes = append(shapes, Shape{
			Name:       r.Name,
			Tier:       constants.TierAnchored,
			re:         re,
			joinGroups: true,
			canon:      canonOldNIC,
		})
	}

	shapes = append(shapes,
		Shape{
			Name:       "old-nic-tolerant",
			Tier:       constants.TierTolerant,
			re:         regexp.MustCompile(`(?i)\b(\d{9})[\W_]{0,4}([vxy])\b`),
			joinGroups: true,
			canon:      canonOldNIC,
		},
		Shape{
			Name:       "new-nic-12",
			Tier:       constants.TierTolerant,
			re:         regexp.MustCompile(`\b(\d{12})\b`),
			joinGroups: true,
			canon:      func(g []string) (string, bool) { return g[1], true },
		},
		Shape{
			Name:  "passport",
			Tier:  constants.TierTolerant,
			re:    regexp.MustCompile(`\b([A-Z]\d{7})\b`),
			canon: func(g []string) (string, bool) { return g[1], true },
		},
		Shape{
			Name: "old-nic-fuzzy",
			Tier: constants.TierFuzzy,
			re:   reFuzzyCluster,
			canon: func(g []string) (string, bool) {
				digits := FoldDigits(g[1] + g[2] + g[3])
				if len(digits) != 9 || !isDigits(digits) {
					return "", false
				}
				return CanonicalOldNIC(digits, g[4]), true
			},
		},
	)

	return &Library{shapes: shapes}, nil
}
