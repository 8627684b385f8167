package models

// ComplaintEvent kinds pushed to dashboard subscribers.
const (
	EventComplaintCreated = "complaint_created"
	EventComplaintUpvoted = "complaint_upvoted"
	EventStatusChanged    = "status_changed"
)

// ComplaintEvent is the realtime payload broadcast to dashboard clients
// (via websocket) and between instances (via Redis pub/sub) whenever a
// complaint is created, reinforced, or transitioned.
type ComplaintEvent struct {
	Kind         string `json:"kind"`
	TrackingCode string `json:"tracking_code"`
	Title        string `json:"title"`
	Category     string `json:"category"`
	District     string `json:"district,omitempty"`
	Priority     string `json:"priority"`
	Status       string `json:"status"`
	UpvoteCount  int    `json:"upvote_count"`
}
