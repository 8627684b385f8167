package conversation

// EventKind tags an inbound event from the transport layer.
type EventKind int

const (
	EventText EventKind = iota
	EventLocation
	EventMedia
	EventCommand
)

func (k EventKind) String() string {
	switch k {
	case EventText:
		return "text"
	case EventLocation:
		return "location"
	case EventMedia:
		return "media"
	case EventCommand:
		return "command"
	}
	return "unknown"
}

// Event is one inbound message, normalized away from any transport. Text
// carries the message body for EventText and the argument string for
// EventCommand; MediaFileID references an uploaded attachment.
type Event struct {
	Kind        EventKind
	Text        string
	Command     string
	Latitude    float64
	Longitude   float64
	MediaFileID string
}

// TextEvent is a convenience constructor used heavily in tests.
func TextEvent(text string) Event {
	return Event{Kind: EventText, Text: text}
}

// CommandEvent builds a command with its argument remainder.
func CommandEvent(command, args string) Event {
	return Event{Kind: EventCommand, Command: command, Text: args}
}
