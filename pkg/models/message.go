package models

import "time"

type MessageEnvelope struct {
	ID        string                 `json:"id"`
	Source    string                 `json:"source"`
	Timestamp time.Time              `json:"timestamp"`
	Payload   map[string]interface{} `json:"payload"`
	Metadata  Metadata               `json:"metadata"`
}

type Metadata struct {
	TraceID       string                 `json:"trace_id,omitempty"`
	EventType     string                 `json:"event_type,omitempty"`
	Deduplication *DeduplicationInfo     `json:"deduplication,omitempty"`
	Attributes    map[string]interface{} `json:"attributes,omitempty"`
}

type DeduplicationInfo struct {
	IsUnique  bool      `json:"is_unique"`
	CheckedAt time.Time `json:"checked_at"`
}

// SetAttribute records pipeline bookkeeping (DLQ reason, source topic) without
// touching the business payload.
func (m *Metadata) SetAttribute(key string, value interface{}) {
	if m.Attributes == nil {
		m.Attributes = make(map[string]interface{})
	}
	m.Attributes[key] = value
}
