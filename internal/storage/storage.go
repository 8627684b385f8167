package storage

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mayankshukla2904/nagrik-backend/internal/models"
)

// Typed storage failures. Handlers and the conversation layer match on these
// to produce actionable replies instead of generic errors.
var (
	ErrComplaintNotFound = errors.New("complaint not found")
	ErrAlreadyReinforced = errors.New("user already reinforced this complaint")
	ErrInvalidTransition = errors.New("status transition not allowed")
)

// EventsChannel is the Redis pub/sub channel carrying complaint events to
// dashboard instances.
const EventsChannel = "complaints:events"

type Storage interface {
	SaveUserIfNotExists(telegramID int64) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	UpdateUserLanguage(userID string, language string) error
	UpdateUserDistrict(userID string, district string) error

	SaveComplaint(complaint *models.Complaint) error
	GetComplaintByTrackingCode(code string) (*models.Complaint, error)
	GetComplaintsByReporter(reporterID string, limit int) ([]models.Complaint, error)
	FindOpenSimilar(ctx context.Context, category, district string, limit int) ([]models.Complaint, error)
	ListComplaints(filter ComplaintFilter) ([]models.Complaint, int64, error)

	ReinforceComplaint(ctx context.Context, trackingCode, supporterID string) (*models.Complaint, error)
	UpdateComplaintStatus(trackingCode, toStatus, note, actor string) (*models.Complaint, error)
	AssignDepartment(trackingCode, department, actor string) (*models.Complaint, error)

	AllowSubmission(userID string) (bool, error)
	StatusCounts() (map[string]int64, error)
	CategoryCounts() ([]GroupCount, error)
	DistrictCounts() ([]GroupCount, error)
	TrendingComplaints(limit int) ([]models.Complaint, error)
	ExportComplaints() ([]models.Complaint, error)
}

type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Ctx   context.Context
}

// NewStorageService Constructor
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
		Ctx:   context.Background(),
	}
}

// SaveUserIfNotExists looks a citizen up by Telegram chat ID and creates the
// record on first contact. The generated UUID is the identity every other
// table references.
func (s *Service) SaveUserIfNotExists(telegramID int64) (*models.User, error) {
	var user models.User

	defaults := models.User{
		TelegramID: telegramID,
	}

	result := s.DB.Where("telegram_id = ?", telegramID).FirstOrCreate(&user, defaults)
	if result.Error != nil {
		log.Printf("ERROR: Failed to save user %d on first contact: %v", telegramID, result.Error)
		return nil, result.Error
	}

	if result.RowsAffected > 0 {
		log.Printf("INFO: New citizen registered (user %s).", user.ID)
	}

	return &user, nil
}

// GetUserByID returns nil without an error when the user does not exist.
func (s *Service) GetUserByID(id string) (*models.User, error) {
	var user models.User

	err := s.DB.Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (s *Service) UpdateUserLanguage(userID string, language string) error {
	return s.DB.Model(&models.User{}).
		Where("id = ?", userID).
		Update("language", language).Error
}

func (s *Service) UpdateUserDistrict(userID string, district string) error {
	return s.DB.Model(&models.User{}).
		Where("id = ?", userID).
		Update("district", district).Error
}

// SaveComplaint persists a finalized complaint and opens its timeline with a
// registration entry. The tracking code is assigned by the BeforeCreate hook.
func (s *Service) SaveComplaint(complaint *models.Complaint) error {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(complaint).Error; err != nil {
			return err
		}

		event := models.StatusEvent{
			ComplaintID: complaint.ID,
			ToStatus:    complaint.Status,
			Note:        "complaint registered",
			Actor:       "system",
		}
		return tx.Create(&event).Error
	})
	if err != nil {
		log.Printf("ERROR: Failed to save complaint for reporter %s: %v", complaint.ReporterID, err)
		return err
	}

	log.Printf("INFO: Complaint %s registered (%s / %s).", complaint.TrackingCode, complaint.Category, complaint.District)
	s.publishComplaintEvent(models.EventComplaintCreated, complaint)
	return nil
}

// GetComplaintByTrackingCode loads a complaint with its timeline.
func (s *Service) GetComplaintByTrackingCode(code string) (*models.Complaint, error) {
	var complaint models.Complaint

	err := s.DB.Preload("Timeline", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at asc")
	}).Where("tracking_code = ?", code).First(&complaint).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrComplaintNotFound
	}
	if err != nil {
		log.Printf("ERROR: Failed to get complaint %s: %v", code, err)
		return nil, err
	}

	return &complaint, nil
}

// GetComplaintsByReporter returns a citizen's own complaints, newest first.
func (s *Service) GetComplaintsByReporter(reporterID string, limit int) ([]models.Complaint, error) {
	var complaints []models.Complaint

	err := s.DB.Where("reporter_id = ?", reporterID).
		Order("created_at desc").
		Limit(limit).
		Find(&complaints).Error
	if err != nil {
		log.Printf("ERROR: Failed to list complaints for reporter %s: %v", reporterID, err)
		return nil, err
	}

	return complaints, nil
}

// FindOpenSimilar returns the duplicate-candidate pool: open complaints in
// the same category, narrowed to the district when one is known, newest
// first. Ranking happens in the dedup package. The context bounds the query
// so a slow search cannot stall a conversation turn.
func (s *Service) FindOpenSimilar(ctx context.Context, category, district string, limit int) ([]models.Complaint, error) {
	var complaints []models.Complaint

	query := s.DB.WithContext(ctx).
		Where("status IN ?", models.OpenStatuses()).
		Where("category = ?", category)
	if district != "" {
		query = query.Where("district = ?", district)
	}

	err := query.Order("created_at desc").Limit(limit).Find(&complaints).Error
	if err != nil {
		log.Printf("ERROR: Failed to load duplicate pool for %s/%s: %v", category, district, err)
		return nil, err
	}

	return complaints, nil
}

// ComplaintFilter narrows ListComplaints. Zero values mean "any".
type ComplaintFilter struct {
	Status     string
	Category   string
	District   string
	Department string
	Severity   string
	Priority   string
	Page       int
	PerPage    int
}

// ListComplaints returns a filtered page plus the total match count.
func (s *Service) ListComplaints(filter ComplaintFilter) ([]models.Complaint, int64, error) {
	query := s.DB.Model(&models.Complaint{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.District != "" {
		query = query.Where("district = ?", filter.District)
	}
	if filter.Department != "" {
		query = query.Where("department = ?", filter.Department)
	}
	if filter.Severity != "" {
		query = query.Where("severity = ?", filter.Severity)
	}
	if filter.Priority != "" {
		query = query.Where("priority = ?", filter.Priority)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	var complaints []models.Complaint
	err := query.Order("created_at desc").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&complaints).Error
	if err != nil {
		log.Printf("ERROR: Failed to list complaints: %v", err)
		return nil, 0, err
	}

	return complaints, total, nil
}

// ReinforceComplaint applies one user's support as a single atomic mutation:
// row lock, membership check, count increment, timeline entry, threshold
// re-evaluation. Two concurrent supporters both land; the same supporter
// twice gets ErrAlreadyReinforced. Non-open complaints resolve to
// ErrComplaintNotFound per the engine contract.
func (s *Service) ReinforceComplaint(ctx context.Context, trackingCode, supporterID string) (*models.Complaint, error) {
	var reinforced models.Complaint

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var complaint models.Complaint

		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("tracking_code = ?", trackingCode).
			First(&complaint).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrComplaintNotFound
		}
		if err != nil {
			return err
		}

		if !complaint.IsOpen() {
			return ErrComplaintNotFound
		}
		if complaint.HasSupporter(supporterID) {
			return ErrAlreadyReinforced
		}

		complaint.Supporters = append(complaint.Supporters, supporterID)
		complaint.UpvoteCount++

		event := models.StatusEvent{
			ComplaintID: complaint.ID,
			FromStatus:  complaint.Status,
			ToStatus:    complaint.Status,
			Note:        "reinforced by a citizen",
			Actor:       supporterID,
		}

		if next := models.EscalatedPriority(complaint.Priority, complaint.UpvoteCount); next != complaint.Priority {
			log.Printf("INFO: Complaint %s escalated to priority %s at %d upvotes.", complaint.TrackingCode, next, complaint.UpvoteCount)
			complaint.Priority = next
			event.Note = "reinforced by a citizen; priority raised to " + next
		}

		if err := tx.Save(&complaint).Error; err != nil {
			return err
		}
		if err := tx.Create(&event).Error; err != nil {
			return err
		}

		reinforced = complaint
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishComplaintEvent(models.EventComplaintUpvoted, &reinforced)
	return &reinforced, nil
}

// UpdateComplaintStatus advances the lifecycle and appends the timeline
// entry in one transaction. Backward moves are rejected.
func (s *Service) UpdateComplaintStatus(trackingCode, toStatus, note, actor string) (*models.Complaint, error) {
	var updated models.Complaint

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var complaint models.Complaint

		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("tracking_code = ?", trackingCode).
			First(&complaint).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrComplaintNotFound
		}
		if err != nil {
			return err
		}

		if !models.ValidStatusTransition(complaint.Status, toStatus) {
			return ErrInvalidTransition
		}

		event := models.StatusEvent{
			ComplaintID: complaint.ID,
			FromStatus:  complaint.Status,
			ToStatus:    toStatus,
			Note:        note,
			Actor:       actor,
		}

		complaint.Status = toStatus
		if err := tx.Save(&complaint).Error; err != nil {
			return err
		}
		if err := tx.Create(&event).Error; err != nil {
			return err
		}

		updated = complaint
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("INFO: Complaint %s moved to %s by %s.", trackingCode, toStatus, actor)
	s.publishComplaintEvent(models.EventStatusChanged, &updated)
	return &updated, nil
}

// AssignDepartment reroutes a complaint and records the change on the
// timeline without touching its status.
func (s *Service) AssignDepartment(trackingCode, department, actor string) (*models.Complaint, error) {
	var updated models.Complaint

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var complaint models.Complaint

		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("tracking_code = ?", trackingCode).
			First(&complaint).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrComplaintNotFound
		}
		if err != nil {
			return err
		}

		event := models.StatusEvent{
			ComplaintID: complaint.ID,
			FromStatus:  complaint.Status,
			ToStatus:    complaint.Status,
			Note:        "assigned to " + department,
			Actor:       actor,
		}

		complaint.Department = department
		if err := tx.Save(&complaint).Error; err != nil {
			return err
		}
		if err := tx.Create(&event).Error; err != nil {
			return err
		}

		updated = complaint
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

// PublishEvent pushes a complaint event to Redis Pub/Sub for the dashboards.
func (s *Service) PublishEvent(event models.ComplaintEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if err := s.Redis.Publish(s.Ctx, EventsChannel, string(payload)).Err(); err != nil {
		return err
	}

	return nil
}

// publishComplaintEvent is best effort: a Redis hiccup never fails the
// mutation that already committed. A nil Redis client (admin CLI) skips
// publishing entirely.
func (s *Service) publishComplaintEvent(kind string, complaint *models.Complaint) {
	if s.Redis == nil {
		return
	}
	event := models.ComplaintEvent{
		Kind:         kind,
		TrackingCode: complaint.TrackingCode,
		Title:        complaint.Title,
		Category:     complaint.Category,
		District:     complaint.District,
		Priority:     complaint.Priority,
		Status:       complaint.Status,
		UpvoteCount:  complaint.UpvoteCount,
	}
	if err := s.PublishEvent(event); err != nil {
		log.Printf("WARN: Failed to publish %s event for %s: %v", kind, complaint.TrackingCode, err)
	}
}

func (s *Service) SubscribeEvents() *redis.PubSub {
	return s.Redis.Subscribe(s.Ctx, EventsChannel)
}
