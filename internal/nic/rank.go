package nic

import (
	"sort"
	"strings"

	"github.com/tdesilva/nicscan/constants"
)

// Result is one entry of the final ranked output: the canonical value, the
// single tier it was attributed to, and its corpus occurrence count.
type Result struct {
	Value string         `json:"value"`
	Tier  constants.Tier `json:"tier"`
	Count int            `json:"count"`
}

// Values flattens ranked results to their canonical strings.
func Values(results []Result) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, r.Value)
	}
	return out
}

// orderedSet is an insertion-ordered string set with case-insensitive
// membership. First spelling seen wins.
type orderedSet struct {
	seen map[string]struct{}
	keys []string
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]struct{})}
}

func (s *orderedSet) has(v string) bool {
	_, ok := s.seen[strings.ToUpper(v)]
	return ok
}

func (s *orderedSet) add(v string) {
	u := strings.ToUpper(v)
	if _, ok := s.seen[u]; ok {
		return
	}
	s.seen[u] = struct{}{}
	s.keys = append(s.keys, v)
}

// Rank produces the final ordered identifier list:
//
//  1. dedup within each tier, case-insensitively, keeping first-seen order;
//  2. drop from lower tiers any value a higher tier already claimed;
//  3. stable-sort each tier by descending occurrence count (ties keep
//     first-seen order);
//  4. concatenate Anchored, Tolerant, Fuzzy.
//
// A value appears in exactly one tier of the output. Tier attribution and
// counts never depend on run order; ordering is run-order independent only
// between distinct counts, since tied values keep first-seen order.
func Rank(cands []Candidate, counts map[string]int) []Result {
	claimed := newOrderedSet()
	var out []Result
	for _, tier := range constants.Tiers {
		set := newOrderedSet()
		for _, c := range cands {
			if c.Tier != tier || claimed.has(c.Value) {
				continue
			}
			set.add(c.Value)
		}
		vals := set.keys
		sort.SliceStable(vals, func(i, j int) bool {
			return counts[strings.ToUpper(vals[i])] > counts[strings.ToUpper(vals[j])]
		})
		for _, v := range vals {
			claimed.add(v)
			out = append(out, Result{Value: v, Tier: tier, Count: counts[strings.ToUpper(v)]})
		}
	}
	return out
}
