package leads

import (
	"sort"

	"github.com/shineliang/reddit-intent-leads-cli/models"
)

// Rank sorts scored leads by intent score descending, breaking ties by
// created_at descending (newer first), then applies the minimum-score
// threshold and truncates to limit. Truncation happens strictly after
// sorting so an early low scorer can never displace a later high scorer.
func Rank(in []models.Lead, minScore float64, limit int) []models.Lead {
	out := make([]models.Lead, len(in))
	copy(out, in)

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].IntentScore != out[j].IntentScore {
			return out[i].IntentScore > out[j].IntentScore
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	filtered := out[:0]
	for _, l := range out {
		if l.IntentScore >= minScore {
			filtered = append(filtered, l)
		}
	}
	out = filtered

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	return out
}
