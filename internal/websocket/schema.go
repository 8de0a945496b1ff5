package websocket

// Event tags for server → client messages on the monitor stream.
type Event string

const (
	EventViolation Event = "violation"
	EventError     Event = "error"
	EventPong      Event = "pong"
)

// ViolationEvent mirrors the payload published on the exam monitor
// channel and is forwarded verbatim to watching teachers.
type ViolationEvent struct {
	Event          Event  `json:"event"`
	SessionID      string `json:"session_id"`
	StudentID      int    `json:"student_id"`
	Type           string `json:"type"`
	ViolationCount int    `json:"violation_count"`
	Terminated     bool   `json:"terminated"`
}

// ErrorResponse is sent before closing a misbehaving connection.
type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

// PongResponse answers a client ping text frame.
type PongResponse struct {
	Event Event `json:"event"`
}
