package scoring

// Scorer applies an ordered rule table to lead text. Every score is traceable
// to the named rules that produced it.
type Scorer struct {
	rules []Rule
}

func NewScorer(rules []Rule) *Scorer {
	if len(rules) == 0 {
		rules = DefaultRules
	}
	return &Scorer{rules: rules}
}

// Score returns the summed weight of all matching rules and their names in
// table order. A negative sum is clamped to zero. Zero matches is a valid
// result, not an error.
func (s *Scorer) Score(text string) (float64, []string) {
	score := 0.0
	var signals []string

	for _, r := range s.rules {
		if r.Pattern.MatchString(text) {
			score += r.Weight
			signals = append(signals, r.Name)
		}
	}

	if score < 0 {
		score = 0
	}

	return score, signals
}
