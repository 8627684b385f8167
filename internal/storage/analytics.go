package storage

import (
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mayankshukla2904/nagrik-backend/internal/analysis"
	"github.com/mayankshukla2904/nagrik-backend/internal/config"
	"github.com/mayankshukla2904/nagrik-backend/internal/models"
)

const trendingCacheKey = "trending:complaints"

// GroupCount is one row of a grouped aggregate.
type GroupCount struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// StatusCounts returns complaint totals keyed by lifecycle status.
func (s *Service) StatusCounts() (map[string]int64, error) {
	var rows []GroupCount

	err := s.DB.Model(&models.Complaint{}).
		Select("status as name, count(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		log.Printf("ERROR: Failed to aggregate status counts: %v", err)
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Name] = row.Count
	}
	return counts, nil
}

// CategoryCounts returns complaint totals per category, largest first.
func (s *Service) CategoryCounts() ([]GroupCount, error) {
	var rows []GroupCount

	err := s.DB.Model(&models.Complaint{}).
		Select("category as name, count(*) as count").
		Group("category").
		Order("count desc").
		Scan(&rows).Error
	if err != nil {
		log.Printf("ERROR: Failed to aggregate category counts: %v", err)
		return nil, err
	}

	return rows, nil
}

// DistrictCounts returns complaint totals per district, largest first.
func (s *Service) DistrictCounts() ([]GroupCount, error) {
	var rows []GroupCount

	err := s.DB.Model(&models.Complaint{}).
		Select("district as name, count(*) as count").
		Group("district").
		Order("count desc").
		Scan(&rows).Error
	if err != nil {
		log.Printf("ERROR: Failed to aggregate district counts: %v", err)
		return nil, err
	}

	return rows, nil
}

// ExportComplaints returns every complaint, oldest first, for reporting.
func (s *Service) ExportComplaints() ([]models.Complaint, error) {
	var complaints []models.Complaint

	err := s.DB.Order("created_at asc").Find(&complaints).Error
	if err != nil {
		log.Printf("ERROR: Failed to export complaints: %v", err)
		return nil, err
	}

	return complaints, nil
}

// TrendingComplaints returns the highest-scoring open complaints of the last
// 30 days. The ranked list is cached in Redis for a short TTL so dashboard
// polling does not hammer the database.
func (s *Service) TrendingComplaints(limit int) ([]models.Complaint, error) {
	if limit < 1 || limit > config.TrendingLimit {
		limit = config.TrendingLimit
	}

	cached, err := s.Redis.Get(s.Ctx, trendingCacheKey).Result()
	if err == nil && cached != "" {
		var complaints []models.Complaint
		if jsonErr := json.Unmarshal([]byte(cached), &complaints); jsonErr == nil {
			if len(complaints) > limit {
				complaints = complaints[:limit]
			}
			return complaints, nil
		}
	}
	if err != nil && !errors.Is(err, redis.Nil) {
		log.Printf("WARN: Trending cache read failed, querying directly: %v", err)
	}

	var pool []models.Complaint
	since := time.Now().AddDate(0, 0, -30)
	err = s.DB.Where("status IN ?", models.OpenStatuses()).
		Where("created_at > ?", since).
		Order("created_at desc").
		Limit(config.DuplicatePoolLimit).
		Find(&pool).Error
	if err != nil {
		log.Printf("ERROR: Failed to load trending pool: %v", err)
		return nil, err
	}

	ranked := analysis.RankTrending(pool, config.TrendingLimit)

	if payload, jsonErr := json.Marshal(ranked); jsonErr == nil {
		if cacheErr := s.Redis.Set(s.Ctx, trendingCacheKey, string(payload), config.TrendingCacheTTL).Err(); cacheErr != nil {
			log.Printf("WARN: Failed to cache trending list: %v", cacheErr)
		}
	}

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// AllowSubmission enforces the hourly per-user submission cap with a Redis
// counter. The first increment arms the expiry window.
func (s *Service) AllowSubmission(userID string) (bool, error) {
	key := "ratelimit:submit:" + userID

	count, err := s.Redis.Incr(s.Ctx, key).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		if err := s.Redis.Expire(s.Ctx, key, time.Hour).Err(); err != nil {
			return false, err
		}
	}

	return count <= int64(config.SubmissionsPerHour), nil
}
