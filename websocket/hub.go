package websocket

import (
	"log"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
)

type Client struct {
	UserID uuid.UUID
	Conn   *websocket.Conn
}

// AttemptEvent tells a learner's connected tabs that their attempt changed
// state server-side (auto-submitted by the deadline sweep, or graded).
type AttemptEvent struct {
	UserID       uuid.UUID `json:"-"`
	SubmissionID uuid.UUID `json:"submission_id"`
	Event        string    `json:"event"`
}

var clients = make(map[uuid.UUID]*websocket.Conn)
var clientsMu sync.RWMutex
var Register = make(chan *Client)
var Unregister = make(chan *Client)
var Events = make(chan AttemptEvent, 64)

func RunHub() {
	for {
		select {
		case client := <-Register:
			log.Printf("Client registered: %s", client.UserID)
			clientsMu.Lock()
			clients[client.UserID] = client.Conn
			clientsMu.Unlock()
		case client := <-Unregister:
			log.Printf("Client unregistered: %s", client.UserID)
			clientsMu.Lock()
			if conn, ok := clients[client.UserID]; ok && conn == client.Conn {
				delete(clients, client.UserID)
			}
			clientsMu.Unlock()
		case event := <-Events:
			clientsMu.RLock()
			conn, ok := clients[event.UserID]
			clientsMu.RUnlock()
			if !ok {
				continue
			}
			if err := conn.WriteJSON(event); err != nil {
				log.Printf("Error pushing event to client %s: %v", event.UserID, err)
				conn.Close()
				clientsMu.Lock()
				delete(clients, event.UserID)
				clientsMu.Unlock()
			}
		}
	}
}

// Sink adapts the hub to the engine's event interface. Pushes are dropped
// rather than blocked when the hub is saturated; the client reconciles on
// its next poll anyway.
type Sink struct{}

func (Sink) SubmissionEvent(userID, submissionID uuid.UUID, event string) {
	select {
	case Events <- AttemptEvent{UserID: userID, SubmissionID: submissionID, Event: event}:
	default:
		log.Printf("Event channel full, dropping %s event for user %s", event, userID)
	}
}
