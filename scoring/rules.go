package scoring

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Rule is one heuristic intent signal: a named pattern with a weight.
// Negative weights are penalties.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
	Weight  float64
}

// DefaultRules is the built-in, ordered rule table. Signals are always
// reported in this order so identical text yields identical output.
var DefaultRules = []Rule{
	{"looking_for", regexp.MustCompile(`(?i)\b(looking for|need|seeking|want)\b`), 2.0},
	{"recommend", regexp.MustCompile(`(?i)\b(recommend|recommendation|any suggestions|suggest)\b`), 1.5},
	{"alternative", regexp.MustCompile(`(?i)\b(alternative|replacement|instead of)\b`), 2.0},
	{"comparison", regexp.MustCompile(`(?i)\b(vs|versus|better than|compared to)\b`), 1.2},
	{"frustration", regexp.MustCompile(`(?i)\b(hate|fed up|switching from|moving away from)\b`), 1.0},
	{"pricing", regexp.MustCompile(`(?i)\b(price|pricing|expensive|too expensive|budget)\b`), 1.0},
	{"demo_trial", regexp.MustCompile(`(?i)\b(trial|demo|free trial)\b`), 0.8},
	{"b2b_words", regexp.MustCompile(`(?i)\b(crm|pipeline|lead|prospect|invoic|quote|proposal|client)\b`), 0.8},
	{"question", regexp.MustCompile(`\?`), 0.5},
	{"rant", regexp.MustCompile(`(?i)\b(rant|vent)\b`), -0.8},
	{"no_buy", regexp.MustCompile(`(?i)\b(not buying|won't buy|never pay)\b`), -1.5},
}

type ruleFile struct {
	Rules []struct {
		Name    string  `yaml:"name"`
		Pattern string  `yaml:"pattern"`
		Weight  float64 `yaml:"weight"`
	} `yaml:"rules"`
}

// LoadRules reads a YAML rule table that replaces the built-in one. Patterns
// are compiled case-insensitively.
func LoadRules(path string) ([]Rule, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f ruleFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse rules %s: %w", path, err)
	}
	if len(f.Rules) == 0 {
		return nil, fmt.Errorf("rules %s: no rules defined", path)
	}

	rules := make([]Rule, 0, len(f.Rules))
	for _, r := range f.Rules {
		if r.Name == "" || r.Pattern == "" {
			return nil, fmt.Errorf("rules %s: rule needs name and pattern", path)
		}
		rx, err := regexp.Compile("(?i)" + r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("rules %s: compile %q: %w", path, r.Name, err)
		}
		rules = append(rules, Rule{Name: r.Name, Pattern: rx, Weight: r.Weight})
	}

	return rules, nil
}
