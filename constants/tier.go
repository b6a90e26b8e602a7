package constants

// Tier is the confidence tier of a recognized identifier candidate.
type Tier string

// Stable values (store these exact strings in DB).
const (
	TierAnchored Tier = "ANCHORED" // label context present (form field marker, "NIC", "ID No")
	TierTolerant Tier = "TOLERANT" // raw hit, literal digits only
	TierFuzzy    Tier = "FUZZY"    // confusable characters folded to digits
)

// Tiers lists all tiers in priority order, highest first.
var Tiers = []Tier{TierAnchored, TierTolerant, TierFuzzy}

// ParseTier maps a stored string back to a Tier.
func ParseTier(s string) (Tier, bool) {
	switch Tier(s) {
	case TierAnchored, TierTolerant, TierFuzzy:
		return Tier(s), true
	}
	return "", false
}
