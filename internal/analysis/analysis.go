// Package analysis provides functionalities for analyzing complaint activity.
// It includes the scoring logic behind the trending feed, combining severity
// weight, community support, and recency.
package analysis

import (
	"sort"
	"time"

	"github.com/mayankshukla2904/nagrik-backend/internal/config"
	"github.com/mayankshukla2904/nagrik-backend/internal/models"
)

// GetWeight returns the weight for a given severity level.
// It returns 0 if the severity is not recognized.
func GetWeight(severity string) int {
	return config.SeverityWeights[severity]
}

// TrendingScore rates a complaint for the trending feed. Community support
// dominates, severity weight contributes, and a recency term keeps fresh
// complaints visible before they collect upvotes. The score decays as the
// complaint ages.
func TrendingScore(complaint models.Complaint, now time.Time) float64 {
	ageHours := now.Sub(complaint.CreatedAt).Hours()
	if ageHours < 0 {
		ageHours = 0
	}

	recency := 24.0 / (ageHours/24.0 + 1.0)
	return float64(complaint.UpvoteCount)*3.0 + float64(GetWeight(complaint.Severity))*2.0 + recency
}

// RankTrending sorts the pool by trending score, highest first, and returns
// at most limit complaints. Ties break toward the newer complaint.
func RankTrending(pool []models.Complaint, limit int) []models.Complaint {
	now := time.Now()

	ranked := make([]models.Complaint, len(pool))
	copy(ranked, pool)

	sort.SliceStable(ranked, func(i, j int) bool {
		si, sj := TrendingScore(ranked[i], now), TrendingScore(ranked[j], now)
		if si != sj {
			return si > sj
		}
		return ranked[i].CreatedAt.After(ranked[j].CreatedAt)
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
