package entities

// ExtractedInfo holds the fields pulled out of a single message.
// A nil pointer means the field was not found.
type ExtractedInfo struct {
	VaccineType         *string `json:"vaccine_type"`
	Location            *string `json:"location"`
	Datetime            *string `json:"datetime"`
	SpecialRequirements *string `json:"special_requirements"`
}

// ConversationContext is the knowledge accumulated over a connection's turns.
// It is owned by a single session and never shared across connections.
type ConversationContext struct {
	VaccineType         *string
	Location            *string
	Datetime            *string
	SpecialRequirements *string
	LastMessage         string
}

func NewConversationContext() *ConversationContext {
	return &ConversationContext{}
}

// Merge overlays the extracted fields onto the context. Found values replace
// what was known; missing values keep the previous value.
func (c *ConversationContext) Merge(info ExtractedInfo) {
	if info.VaccineType != nil {
		c.VaccineType = info.VaccineType
	}
	if info.Location != nil {
		c.Location = info.Location
	}
	if info.Datetime != nil {
		c.Datetime = info.Datetime
	}
	if info.SpecialRequirements != nil {
		c.SpecialRequirements = info.SpecialRequirements
	}
}

// ReadyForQuery reports whether both vaccine type and location are known.
func (c *ConversationContext) ReadyForQuery() bool {
	return c.VaccineType != nil && c.Location != nil
}

// Snapshot returns the context as the map echoed back to the client.
func (c *ConversationContext) Snapshot() map[string]interface{} {
	snap := map[string]interface{}{
		"vaccine_type":         nil,
		"location":             nil,
		"datetime":             nil,
		"special_requirements": nil,
	}
	if c.LastMessage != "" {
		snap["last_message"] = c.LastMessage
	}
	if c.VaccineType != nil {
		snap["vaccine_type"] = *c.VaccineType
	}
	if c.Location != nil {
		snap["location"] = *c.Location
	}
	if c.Datetime != nil {
		snap["datetime"] = *c.Datetime
	}
	if c.SpecialRequirements != nil {
		snap["special_requirements"] = *c.SpecialRequirements
	}
	return snap
}

// Reset forgets everything learned so far.
func (c *ConversationContext) Reset() {
	*c = ConversationContext{}
}

// Deref returns the pointed-to string or "" for nil.
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
