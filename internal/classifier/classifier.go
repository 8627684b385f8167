// Package classifier assigns a category, severity, and department to a
// complaint through a three-tier cascade: a retrieval-based classifier
// service, an LLM completion, and a local keyword heuristic. Each tier can
// fail (timeout, bad response, out-of-range confidence); the cascade absorbs
// every failure and always returns a usable result.
package classifier

import (
	"context"
	"log"

	"github.com/mayankshukla2904/nagrik-backend/internal/config"
)

// Source tiers, recorded on each result.
const (
	SourceRetrieval = "retrieval"
	SourceLLM       = "llm"
	SourceKeyword   = "keyword"
)

// Result is the cascade's answer. Confidence is always within [0,1]; Source
// names the tier that produced it. No cross-tier blending happens: the
// accepted tier's full result wins.
type Result struct {
	Category        string   `json:"category"`
	Subcategory     string   `json:"subcategory,omitempty"`
	Severity        string   `json:"severity"`
	Confidence      float64  `json:"confidence"`
	Source          string   `json:"source"`
	Department      string   `json:"department"`
	MatchedKeywords []string `json:"matched_keywords,omitempty"`
	ExtractedInfo   string   `json:"extracted_info,omitempty"`
}

// Cascade orchestrates the tiers. Retrieval and LLM are optional; a nil
// client simply skips that tier. The cascade is stateless apart from its
// configured clients and threshold.
type Cascade struct {
	Retrieval *RetrievalClient
	LLM       *LLMClient
	// Threshold gates the retrieval tier: answers at or below it fall
	// through to the LLM tier.
	Threshold float64
}

// NewCascade builds a cascade with the standard acceptance threshold.
func NewCascade(retrieval *RetrievalClient, llm *LLMClient) *Cascade {
	return &Cascade{
		Retrieval: retrieval,
		LLM:       llm,
		Threshold: config.RetrievalConfidenceThreshold,
	}
}

// Classify runs the cascade. It never returns an error: every tier failure
// falls through, and the keyword tier is total.
func (c *Cascade) Classify(ctx context.Context, title, description, locationText string) Result {
	if c.Retrieval != nil {
		tierCtx, cancel := context.WithTimeout(ctx, config.RetrievalTimeout)
		result, err := c.Retrieval.Classify(tierCtx, title, description, locationText)
		cancel()
		switch {
		case err != nil:
			log.Printf("WARN: retrieval tier failed, falling through: %v", err)
		case !validConfidence(result.Confidence):
			log.Printf("WARN: retrieval tier returned confidence %.3f outside [0,1], treating as tier failure", result.Confidence)
		case result.Confidence > c.Threshold:
			return result
		default:
			log.Printf("INFO: retrieval confidence %.3f below threshold %.2f, falling through", result.Confidence, c.Threshold)
		}
	}

	if c.LLM != nil {
		tierCtx, cancel := context.WithTimeout(ctx, config.LLMTimeout)
		result, err := c.LLM.Classify(tierCtx, title, description, locationText)
		cancel()
		switch {
		case err != nil:
			log.Printf("WARN: llm tier failed, falling through: %v", err)
		case !validConfidence(result.Confidence):
			log.Printf("WARN: llm tier returned confidence %.3f outside [0,1], treating as tier failure", result.Confidence)
		default:
			return result
		}
	}

	return KeywordClassify(title, description)
}

func validConfidence(confidence float64) bool {
	return confidence >= 0 && confidence <= 1
}
