package collab

import "time"

// Client → server event types.
const (
	EventJoinDocument   = "join-document"
	EventLeaveDocument  = "leave-document"
	EventDocumentChange = "document-change"
	EventCursorPosition = "cursor-position"
	EventSaveDocument   = "save-document"
)

// Server → client event types.
const (
	EventDocumentUpdate = "document-update"
	EventActiveUsers    = "active-users"
	EventUserJoined     = "user-joined"
	EventUserLeft       = "user-left"
	EventDocumentSaved  = "document-saved"
	EventCursorUpdate   = "cursor-update"
	EventError          = "error"
)

// Event is the JSON envelope carried over the socket in both directions.
// Only the fields relevant to a given Type are populated.
type Event struct {
	Type           string    `json:"type"`
	DocumentID     string    `json:"documentId,omitempty"`
	UserID         string    `json:"userId,omitempty"`
	Users          []string  `json:"users,omitempty"`
	Content        string    `json:"content,omitempty"`
	CursorPosition *int      `json:"cursorPosition,omitempty"`
	VersionCount   *int      `json:"versionCount,omitempty"`
	Timestamp      time.Time `json:"timestamp,omitempty"`
	Message        string    `json:"message,omitempty"`
}

func errorEvent(msg string) Event {
	return Event{Type: EventError, Message: msg}
}
