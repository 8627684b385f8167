package config

import "time"

const (
	// Classification cascade
	RetrievalConfidenceThreshold = 0.7
	RetrievalTimeout             = 10 * time.Second
	LLMTimeout                   = 15 * time.Second
	KeywordConfidenceCap         = 0.8
	KeywordScoreDivisor          = 10.0

	// Conversation input bounds
	TitleMinLength       = 10
	TitleMaxLength       = 200
	DescriptionMinLength = 20
	DescriptionMaxLength = 2000
	LocationMinLength    = 5
	MediaAttachmentCap   = 3

	// Title-only category probe: above this the bot asks for a subcategory
	// right away. Two keyword hits clear it.
	TitleCategoryConfidence = 0.15

	// Session lifecycle
	SessionIdleTimeout   = 30 * time.Minute
	SessionSweepInterval = 5 * time.Minute

	// Duplicate detection
	DuplicateCandidateLimit = 5
	DuplicateScoreFloor     = 0.2
	DuplicatePoolLimit      = 200
	DuplicateSearchTimeout  = 5 * time.Second

	// Reinforcement mutation bound
	ReinforceTimeout = 5 * time.Second

	// Upvote-driven priority escalation
	UpvoteMediumThreshold = 5
	UpvoteHighThreshold   = 10

	// API rate limiting (per identity)
	SubmissionsPerHour = 5

	// Analytics
	TrendingLimit    = 10
	TrendingCacheTTL = 2 * time.Minute
)

// SeverityWeights feed the trending score so that a Critical complaint with
// few upvotes can still outrank a well-supported Low one.
var SeverityWeights = map[string]int{
	"Low":      1,
	"Medium":   2,
	"High":     4,
	"Critical": 8,
}
