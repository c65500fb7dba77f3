package scoring

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func writeRuleFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.yml")
	err := os.WriteFile(path, []byte(content), 0o644)
	assert.NoError(t, err)
	return path
}

func TestLoadRules_Valid(t *testing.T) {
	path := writeRuleFile(t, `
rules:
  - name: migration
    pattern: \b(migrating|switching)\b
    weight: 2.5
  - name: churn
    pattern: \bcancel(ing|led)?\b
    weight: 1.0
`)

	rules, err := LoadRules(path)
	assert.NoError(t, err)
	assert.Len(t, rules, 2)
	assert.Equal(t, "migration", rules[0].Name)
	assert.Equal(t, 2.5, rules[0].Weight)
	assert.True(t, rules[0].Pattern.MatchString("we are SWITCHING providers"))
}

func TestLoadRules_Empty(t *testing.T) {
	path := writeRuleFile(t, "rules: []\n")

	_, err := LoadRules(path)
	assert.Error(t, err)
}

func TestLoadRules_MissingName(t *testing.T) {
	path := writeRuleFile(t, `
rules:
  - pattern: \bfoo\b
    weight: 1.0
`)

	_, err := LoadRules(path)
	assert.Error(t, err)
}

func TestLoadRules_BadPattern(t *testing.T) {
	path := writeRuleFile(t, `
rules:
  - name: broken
    pattern: "(["
    weight: 1.0
`)

	_, err := LoadRules(path)
	assert.Error(t, err)
}

func TestLoadRules_FileNotFound(t *testing.T) {
	_, err := LoadRules(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}
