package classifier

import (
	"strings"

	"github.com/mayankshukla2904/nagrik-backend/internal/config"
)

// KeywordClassify is the last cascade tier: a local heuristic that scores
// every category and severity by keyword hits. It cannot fail; empty input
// yields Other/Medium with zero confidence.
//
// Scoring is deterministic: ties keep the first-seen entry in enumeration
// order, and a keyword that is also a severity indicator counts for severity
// only, so "emergency" votes Critical rather than Healthcare.
func KeywordClassify(title, description string) Result {
	text := normalizeText(title + " " + description)
	if text == "" {
		return Result{
			Category:   CategoryOther,
			Severity:   "Medium",
			Confidence: 0,
			Source:     SourceKeyword,
			Department: DepartmentFor(CategoryOther),
		}
	}

	bestCategory := CategoryOther
	bestCategoryHits := 0
	var matched []string

	for _, profile := range Categories {
		hits := 0
		var profileMatched []string
		for _, kw := range profile.Keywords {
			if severityIndicator(kw) {
				continue
			}
			if strings.Contains(text, kw) {
				hits++
				profileMatched = append(profileMatched, kw)
			}
		}
		// Strictly greater keeps the first-seen category on ties.
		if hits > bestCategoryHits {
			bestCategoryHits = hits
			bestCategory = profile.Name
			matched = profileMatched
		}
	}

	bestSeverity := ""
	bestSeverityHits := 0
	for _, profile := range Severities {
		hits := 0
		for _, indicator := range profile.Indicators {
			if strings.Contains(text, indicator) {
				hits++
			}
		}
		if hits > bestSeverityHits {
			bestSeverityHits = hits
			bestSeverity = profile.Level
		}
	}
	if bestSeverity == "" {
		bestSeverity = "Medium"
	}

	confidence := float64(bestCategoryHits+bestSeverityHits) / config.KeywordScoreDivisor
	if confidence > config.KeywordConfidenceCap {
		confidence = config.KeywordConfidenceCap
	}
	if confidence < 0 {
		confidence = 0
	}

	return Result{
		Category:        bestCategory,
		Subcategory:     SuggestSubcategory(text, bestCategory),
		Severity:        bestSeverity,
		Confidence:      confidence,
		Source:          SourceKeyword,
		Department:      DepartmentFor(bestCategory),
		MatchedKeywords: matched,
	}
}

// normalizeText lowercases and strips punctuation, collapsing whitespace so
// substring keyword checks behave predictably.
func normalizeText(text string) string {
	lower := strings.ToLower(text)
	var b strings.Builder
	b.Grow(len(lower))
	for _, r := range lower {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == ' ':
			b.WriteRune(r)
		case r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func severityIndicator(keyword string) bool {
	for _, profile := range Severities {
		for _, indicator := range profile.Indicators {
			if indicator == keyword {
				return true
			}
		}
	}
	return false
}
