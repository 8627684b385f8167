package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/mayankshukla2904/nagrik-backend/internal/config"
)

// Complaint lifecycle statuses. Transitions only move forward; resolved,
// closed and rejected are terminal.
const (
	StatusSubmitted   = "submitted"
	StatusUnderReview = "under_review"
	StatusInProgress  = "in_progress"
	StatusResolved    = "resolved"
	StatusClosed      = "closed"
	StatusRejected    = "rejected"
)

// Severity levels assigned by the classification cascade.
const (
	SeverityLow      = "Low"
	SeverityMedium   = "Medium"
	SeverityHigh     = "High"
	SeverityCritical = "Critical"
)

// Priority levels. Priority starts from severity and is escalated by
// community upvotes; it never de-escalates automatically.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// Channels a complaint can arrive through.
const (
	ChannelTelegram = "telegram"
	ChannelWeb      = "web"
)

// Complaint is a durable citizen grievance record.
type Complaint struct {
	gorm.Model

	// TrackingCode is the stable human-readable identifier citizens use to
	// look up their complaint. Generated in BeforeCreate.
	TrackingCode string `gorm:"uniqueIndex;not null" json:"tracking_code"`
	// ReporterID is the internal UUID of the user who filed the complaint.
	ReporterID string `gorm:"type:text;not null;index" json:"reporter_id"`

	Title       string `gorm:"type:text;not null" json:"title"`
	Description string `gorm:"type:text;not null" json:"description"`

	Category    string `gorm:"index:idx_category_district" json:"category"`
	Subcategory string `json:"subcategory,omitempty"`
	Severity    string `json:"severity"`
	Priority    string `json:"priority"`
	Department  string `json:"department"`
	Status      string `gorm:"index" json:"status"`

	// Channel records the originating surface ("telegram" or "web").
	Channel  string `json:"channel"`
	Language string `json:"language,omitempty"`

	// Location: free-text address plus the coarse administrative district
	// used to pool duplicate candidates. Coordinates are optional.
	Address   string  `gorm:"type:text" json:"address"`
	District  string  `gorm:"index:idx_category_district" json:"district,omitempty"`
	Latitude  float64 `json:"latitude,omitempty"`
	Longitude float64 `json:"longitude,omitempty"`

	// Support record. Supporters holds the IDs of users who reinforced this
	// complaint; one reinforcement per user, enforced in storage.
	UpvoteCount int            `json:"upvote_count"`
	Supporters  pq.StringArray `gorm:"type:text[]" json:"-"`

	// Classification metadata.
	Confidence       float64        `json:"confidence"`
	ClassifierSource string         `json:"classifier_source"`
	MatchedKeywords  pq.StringArray `gorm:"type:text[]" json:"matched_keywords,omitempty"`
	ExtractedInfo    string         `gorm:"type:text" json:"extracted_info,omitempty"`

	MediaFileIDs pq.StringArray `gorm:"type:text[]" json:"-"`

	// Timeline is the append-only history of status transitions.
	Timeline []StatusEvent `gorm:"foreignKey:ComplaintID" json:"timeline,omitempty"`
}

// BeforeCreate generates the tracking code if it is not already set.
func (c *Complaint) BeforeCreate(tx *gorm.DB) (err error) {
	if c.TrackingCode == "" {
		c.TrackingCode = NewTrackingCode(time.Now())
	}
	if c.Status == "" {
		c.Status = StatusSubmitted
	}
	return
}

// NewTrackingCode builds a human-readable code like NGR-20250114-3F9A1.
// The suffix comes from a fresh UUID, so codes are unique for any realistic
// submission volume and still short enough to read over the phone.
func NewTrackingCode(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:5])
	return fmt.Sprintf("NGR-%s-%s", now.Format("20060102"), suffix)
}

// IsOpen reports whether the complaint can still be reinforced or progressed.
func (c *Complaint) IsOpen() bool {
	switch c.Status {
	case StatusSubmitted, StatusUnderReview, StatusInProgress:
		return true
	}
	return false
}

// HasSupporter reports whether userID already reinforced this complaint.
func (c *Complaint) HasSupporter(userID string) bool {
	for _, id := range c.Supporters {
		if id == userID {
			return true
		}
	}
	return false
}

// OpenStatuses returns the statuses that count as "open" for duplicate
// pooling and reinforcement.
func OpenStatuses() []string {
	return []string{StatusSubmitted, StatusUnderReview, StatusInProgress}
}

// PriorityRank orders priorities so escalation checks can compare them.
// Unknown values rank below "low" and will be escalated on first re-evaluation.
func PriorityRank(priority string) int {
	switch priority {
	case PriorityLow:
		return 1
	case PriorityMedium:
		return 2
	case PriorityHigh:
		return 3
	case PriorityUrgent:
		return 4
	}
	return 0
}

// PriorityForSeverity maps the classifier's severity to the starting priority.
func PriorityForSeverity(severity string) string {
	switch severity {
	case SeverityCritical:
		return PriorityUrgent
	case SeverityHigh:
		return PriorityHigh
	case SeverityMedium:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// EscalatedPriority returns the priority a complaint should hold after
// reaching the given upvote count. Priority never decreases: the current
// value wins whenever the thresholds would assign something lower.
func EscalatedPriority(current string, upvoteCount int) string {
	floor := current
	switch {
	case upvoteCount >= config.UpvoteHighThreshold:
		floor = PriorityHigh
	case upvoteCount >= config.UpvoteMediumThreshold:
		floor = PriorityMedium
	}
	if PriorityRank(floor) > PriorityRank(current) {
		return floor
	}
	return current
}

// ValidStatusTransition reports whether a status change is allowed. The
// lifecycle only moves forward; terminal statuses accept no transitions.
func ValidStatusTransition(from, to string) bool {
	switch from {
	case StatusSubmitted:
		return to == StatusUnderReview || to == StatusInProgress || to == StatusResolved || to == StatusClosed || to == StatusRejected
	case StatusUnderReview:
		return to == StatusInProgress || to == StatusResolved || to == StatusClosed || to == StatusRejected
	case StatusInProgress:
		return to == StatusResolved || to == StatusClosed || to == StatusRejected
	}
	return false
}
