package leads

import "github.com/shineliang/reddit-intent-leads-cli/models"

// Dedupe collapses leads by ID, keeping the first occurrence of each. Queries
// from later duplicates are merged into the kept lead's QueryMatched set so a
// record found by several searches reports all of them.
func Dedupe(in []models.Lead) []models.Lead {
	out := make([]models.Lead, 0, len(in))
	index := make(map[string]int, len(in))

	for _, l := range in {
		i, seen := index[l.ID]
		if !seen {
			index[l.ID] = len(out)
			out = append(out, l)
			continue
		}

		for _, q := range l.QueryMatched {
			if !containsString(out[i].QueryMatched, q) {
				out[i].QueryMatched = append(out[i].QueryMatched, q)
			}
		}
	}

	return out
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
