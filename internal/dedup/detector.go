// Package dedup surfaces existing open complaints that likely describe the
// same issue, so a citizen can reinforce one instead of filing a duplicate.
// Matching is deliberately approximate: token overlap over normalized text,
// not semantic similarity.
package dedup

import (
	"context"
	"log"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/mayankshukla2904/nagrik-backend/internal/config"
	"github.com/mayankshukla2904/nagrik-backend/internal/storage"
)

// Candidate is one possible duplicate of the draft being composed.
type Candidate struct {
	TrackingCode string  `json:"tracking_code"`
	Title        string  `json:"title"`
	Summary      string  `json:"summary"`
	Score        float64 `json:"score"`
	UpvoteCount  int     `json:"upvote_count"`
	Status       string  `json:"status"`

	created time.Time
}

type Detector struct {
	Storage storage.Storage
}

func NewDetector(store storage.Storage) *Detector {
	return &Detector{Storage: store}
}

// FindCandidates ranks open complaints of the same category (and district,
// when known) by token overlap with the draft text. Ties break toward more
// supported, then newer complaints. At most DuplicateCandidateLimit results
// are returned; scores below DuplicateScoreFloor are dropped as noise.
func (d *Detector) FindCandidates(ctx context.Context, title, description, category, district string) ([]Candidate, error) {
	pool, err := d.Storage.FindOpenSimilar(ctx, category, district, config.DuplicatePoolLimit)
	if err != nil {
		log.Printf("ERROR: Duplicate pool query failed for %s/%s: %v", category, district, err)
		return nil, err
	}

	query := tokenSet(title + " " + description)
	if len(query) == 0 {
		return nil, nil
	}

	var candidates []Candidate
	for _, complaint := range pool {
		score := overlapScore(query, tokenSet(complaint.Title+" "+complaint.Description))
		if score < config.DuplicateScoreFloor {
			continue
		}
		candidates = append(candidates, Candidate{
			TrackingCode: complaint.TrackingCode,
			Title:        complaint.Title,
			Summary:      summarize(complaint.Description),
			Score:        score,
			UpvoteCount:  complaint.UpvoteCount,
			Status:       complaint.Status,
			created:      complaint.CreatedAt,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		if candidates[i].UpvoteCount != candidates[j].UpvoteCount {
			return candidates[i].UpvoteCount > candidates[j].UpvoteCount
		}
		return candidates[i].created.After(candidates[j].created)
	})

	if len(candidates) > config.DuplicateCandidateLimit {
		candidates = candidates[:config.DuplicateCandidateLimit]
	}
	return candidates, nil
}

// stopwords never count toward overlap. The list covers English filler plus
// the romanized Hindi particles that show up constantly in complaint text.
var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "are": {}, "was": {}, "has": {},
	"have": {}, "this": {}, "that": {}, "there": {}, "with": {}, "near": {},
	"from": {}, "not": {}, "very": {}, "please": {}, "also": {},
	"hai": {}, "hain": {}, "nahi": {}, "mein": {}, "aur": {}, "bhi": {},
}

// tokenSet splits text into lowercase word tokens, keeping any script.
// Short tokens and stopwords are discarded.
func tokenSet(text string) map[string]struct{} {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})

	set := make(map[string]struct{}, len(words))
	for _, word := range words {
		if len([]rune(word)) < 3 {
			continue
		}
		if _, skip := stopwords[word]; skip {
			continue
		}
		set[word] = struct{}{}
	}
	return set
}

// overlapScore is the Jaccard index of two token sets.
func overlapScore(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	intersection := 0
	for token := range a {
		if _, ok := b[token]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func summarize(description string) string {
	runes := []rune(description)
	if len(runes) <= 120 {
		return description
	}
	return string(runes[:117]) + "..."
}
