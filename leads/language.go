package leads

import (
	"github.com/pemistahl/lingua-go"

	"github.com/shineliang/reddit-intent-leads-cli/models"
)

// LanguageFilter drops leads whose text is detectably not in the target
// language. Text the detector cannot classify is kept, erring toward
// recall.
type LanguageFilter struct {
	detector lingua.LanguageDetector
	target   lingua.Language
}

func NewEnglishFilter() *LanguageFilter {
	detector := lingua.NewLanguageDetectorBuilder().
		FromLanguages(
			lingua.English,
			lingua.Spanish,
			lingua.French,
			lingua.German,
			lingua.Portuguese,
		).
		Build()

	return &LanguageFilter{detector: detector, target: lingua.English}
}

func (f *LanguageFilter) Filter(in []models.Lead) []models.Lead {
	out := make([]models.Lead, 0, len(in))
	for _, l := range in {
		lang, detected := f.detector.DetectLanguageOf(l.Body)
		if detected && lang != f.target {
			continue
		}
		out = append(out, l)
	}
	return out
}
