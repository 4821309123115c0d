package entities

import "time"

// Frame kinds sent over the chat channel.
const (
	FrameSystem     = "system"
	FrameAIResponse = "ai_response"
	FrameError      = "error"
)

const (
	WelcomeMessage     = "Welcome! I'm here to help you schedule your vaccination appointment. What type of vaccine are you looking for?"
	RateLimitedMessage = "Too many messages, please slow down."
)

// Message is one inbound chat message, whatever channel it arrived on.
type Message struct {
	ClientID string
	Content  string
	Platform string // e.g. "web", "telegram"
}

// InboundFrame is the JSON object a client sends over the WebSocket.
type InboundFrame struct {
	Message *string `json:"message"`
}

// Response is the structured result of one turn.
type Response struct {
	Type             string                 `json:"type"`
	Message          string                 `json:"message"`
	AvailableClinics []ClinicAvailability   `json:"available_clinics"`
	ExtractedInfo    ExtractedInfo          `json:"extracted_info"`
	RequiresFollowup bool                   `json:"requires_followup"`
	Context          map[string]interface{} `json:"context"`
	Timestamp        string                 `json:"timestamp"`
}

// Frame is any outbound payload. Stamp sets its timestamp just before sending.
type Frame interface {
	Stamp(t time.Time)
}

func (r *Response) Stamp(t time.Time) { r.Timestamp = FormatTimestamp(t) }

// SystemFrame carries only a kind, a message and a timestamp.
type SystemFrame struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

func (f *SystemFrame) Stamp(t time.Time) { f.Timestamp = FormatTimestamp(t) }

func NewSystemFrame(msg string) *SystemFrame {
	return &SystemFrame{Type: FrameSystem, Message: msg}
}

func NewErrorFrame(msg string) *SystemFrame {
	return &SystemFrame{Type: FrameError, Message: msg}
}

// FormatTimestamp renders t as ISO-8601 with fractional seconds.
func FormatTimestamp(t time.Time) string {
	return t.Format("2006-01-02T15:04:05.000000Z07:00")
}
