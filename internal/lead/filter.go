package lead

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// MatchesSearch reports whether the query matches the customer's
// display name or job, case-insensitive substring.
func MatchesSearch(c Customer, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(c.DisplayName()), q) ||
		strings.Contains(strings.ToLower(c.Job), q)
}

// Filter returns the customers matching both the search query and the
// band filter. A band filter of Pending selects unscored customers;
// pass matchAll=true to skip band filtering. Unscored customers never
// match High, Medium or Low.
func Filter(customers []Customer, query string, band Band, matchAll bool) []Customer {
	out := make([]Customer, 0, len(customers))
	for _, c := range customers {
		if !MatchesSearch(c, query) {
			continue
		}
		if !matchAll && c.Priority() != band {
			continue
		}
		out = append(out, c)
	}
	return out
}

// RankBySearch orders search results by edit distance between the
// query and the display name, closest first. Ties keep the incoming
// order. An empty query leaves the slice untouched.
func RankBySearch(customers []Customer, query string) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return
	}
	sort.SliceStable(customers, func(i, j int) bool {
		di := levenshtein.ComputeDistance(q, strings.ToLower(customers[i].DisplayName()))
		dj := levenshtein.ComputeDistance(q, strings.ToLower(customers[j].DisplayName()))
		return di < dj
	})
}

// PendingOnly returns the customers without a score.
func PendingOnly(customers []Customer) []Customer {
	out := make([]Customer, 0, len(customers))
	for _, c := range customers {
		if !c.Scored() {
			out = append(out, c)
		}
	}
	return out
}
