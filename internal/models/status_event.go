package models

import "gorm.io/gorm"

// StatusEvent is one entry in a complaint's append-only timeline.
// The embedded gorm.Model provides ID, CreatedAt, UpdatedAt, and DeletedAt
// fields; CreatedAt doubles as the transition timestamp.
type StatusEvent struct {
	gorm.Model

	// ComplaintID references the parent complaint (gorm.Model.ID).
	ComplaintID uint `gorm:"not null;index" json:"-"`
	// FromStatus is empty for the initial "submitted" entry.
	FromStatus string `json:"from_status,omitempty"`
	ToStatus   string `gorm:"not null" json:"to_status"`
	// Note carries free-form context: a department remark, or the upvote
	// count that triggered a priority escalation.
	Note string `gorm:"type:text" json:"note,omitempty"`
	// Actor identifies who caused the transition: "citizen", "system",
	// or an admin identifier.
	Actor string `json:"actor,omitempty"`
}
