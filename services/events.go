package services

import "github.com/google/uuid"

// Attempt lifecycle events pushed to connected clients, so a stale tab learns
// its attempt was auto-submitted or graded elsewhere.
const (
	EventSubmitted = "submitted"
	EventGraded    = "graded"
)

// EventSink receives attempt lifecycle notifications. The websocket hub
// implements it; a nil sink disables pushes.
type EventSink interface {
	SubmissionEvent(userID, submissionID uuid.UUID, event string)
}
