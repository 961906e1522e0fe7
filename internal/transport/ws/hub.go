package ws

import (
	"encoding/json"
	"log"
	"sync"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Dashboard message types
const (
	MsgProgressUpdate     MessageType = "progress_update"
	MsgAssessmentComplete MessageType = "assessment_complete"
	MsgFollowUpEntered    MessageType = "followup_entered"
	MsgRespondentJoined   MessageType = "respondent_joined"
	MsgRespondentLeft     MessageType = "respondent_left"
)

// Respondent message types
const (
	MsgSaveConfirmed MessageType = "save_confirmed"
	MsgError         MessageType = "error"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub manages WebSocket connections: admin dashboards observing every
// assessment, and respondents scoped to their own.
type Hub struct {
	dashboardConns  map[*Connection]struct{}
	respondentConns map[string]*Connection // assessmentID -> conn

	mu sync.RWMutex

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *BroadcastMessage
}

// Connection represents a WebSocket connection
type Connection struct {
	AssessmentID string // Empty for dashboard connections
	IsDashboard  bool
	Send         chan []byte
	Hub          *Hub
}

// BroadcastMessage is a message to broadcast
type BroadcastMessage struct {
	ToDashboard  bool
	AssessmentID string
	Message      *Message
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	h := &Hub{
		dashboardConns:  make(map[*Connection]struct{}),
		respondentConns: make(map[string]*Connection),
		register:        make(chan *Connection),
		unregister:      make(chan *Connection),
		broadcast:       make(chan *BroadcastMessage, 256),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			if conn.IsDashboard {
				h.dashboardConns[conn] = struct{}{}
				log.Printf("Dashboard connected")
			} else {
				h.respondentConns[conn.AssessmentID] = conn
				log.Printf("Respondent connected for assessment %s", conn.AssessmentID)
				h.notifyDashboards(MsgRespondentJoined, conn.AssessmentID)
			}
			h.mu.Unlock()

		case conn := <-h.unregister:
			h.mu.Lock()
			if conn.IsDashboard {
				if _, ok := h.dashboardConns[conn]; ok {
					delete(h.dashboardConns, conn)
					close(conn.Send)
					log.Printf("Dashboard disconnected")
				}
			} else {
				if existing, ok := h.respondentConns[conn.AssessmentID]; ok && existing == conn {
					delete(h.respondentConns, conn.AssessmentID)
					close(conn.Send)
					log.Printf("Respondent disconnected from assessment %s", conn.AssessmentID)
					h.notifyDashboards(MsgRespondentLeft, conn.AssessmentID)
				}
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			data, _ := json.Marshal(msg.Message)

			if msg.ToDashboard {
				for conn := range h.dashboardConns {
					select {
					case conn.Send <- data:
					default:
						// Drop message if buffer full
					}
				}
			} else if conn, ok := h.respondentConns[msg.AssessmentID]; ok {
				select {
				case conn.Send <- data:
				default:
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// BroadcastToDashboard sends a message to every dashboard (implements service.Broadcaster)
func (h *Hub) BroadcastToDashboard(msgType string, payload interface{}) {
	data, _ := json.Marshal(payload)
	h.broadcast <- &BroadcastMessage{
		ToDashboard: true,
		Message: &Message{
			Type:    MessageType(msgType),
			Payload: data,
		},
	}
}

// BroadcastToRespondent sends a message to one assessment's respondent (implements service.Broadcaster)
func (h *Hub) BroadcastToRespondent(assessmentID string, msgType string, payload interface{}) {
	data, _ := json.Marshal(payload)
	h.broadcast <- &BroadcastMessage{
		AssessmentID: assessmentID,
		Message: &Message{
			Type:    MessageType(msgType),
			Payload: data,
		},
	}
}

// DisconnectAssessment closes the respondent connection for a finished
// assessment (implements service.Broadcaster)
func (h *Hub) DisconnectAssessment(assessmentID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conn, ok := h.respondentConns[assessmentID]; ok {
		delete(h.respondentConns, assessmentID)
		close(conn.Send)
	}
}

// notifyDashboards assumes h.mu is held
func (h *Hub) notifyDashboards(msgType MessageType, assessmentID string) {
	data, _ := json.Marshal(&Message{
		Type:    msgType,
		Payload: json.RawMessage(`{"assessmentId":"` + assessmentID + `"}`),
	})
	for conn := range h.dashboardConns {
		select {
		case conn.Send <- data:
		default:
		}
	}
}
