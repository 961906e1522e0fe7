package service

// Broadcaster interface for WebSocket broadcasting (avoids import cycle)
type Broadcaster interface {
	BroadcastToDashboard(msgType string, payload interface{})
	BroadcastToRespondent(assessmentID string, msgType string, payload interface{})
	DisconnectAssessment(assessmentID string)
}
