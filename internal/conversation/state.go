// Package conversation implements the per-user state machine that collects a
// complaint across multiple messages: title, description, category
// confirmation, location, media, duplicate decision, final confirmation.
// Sessions are ephemeral and swept after 30 minutes of silence.
package conversation

// State is the position of one user's session in the intake flow. Sessions
// only move forward; cancel and edit commands reset to an earlier state.
type State int

const (
	StateGreeting State = iota
	StateAwaitingTitle
	StateAwaitingDescription
	StateCategoryConfirm
	StateAwaitingLocation
	StateAwaitingMedia
	StateDuplicateDecision
	StateConfirming
	StateDone
)

func (s State) String() string {
	switch s {
	case StateGreeting:
		return "greeting"
	case StateAwaitingTitle:
		return "awaiting_title"
	case StateAwaitingDescription:
		return "awaiting_description"
	case StateCategoryConfirm:
		return "category_confirm"
	case StateAwaitingLocation:
		return "awaiting_location"
	case StateAwaitingMedia:
		return "awaiting_media"
	case StateDuplicateDecision:
		return "duplicate_decision"
	case StateConfirming:
		return "confirming"
	case StateDone:
		return "done"
	}
	return "unknown"
}
