package models

import "time"

// Object event types emitted by the object register.
const (
	EventTypeObjectCreated   = "object.created"
	EventTypeObjectUpdated   = "object.updated"
	EventTypeSettingsUpdated = "settings_updated"
)

// ObjectEvent is the payload of an object register change notification.
type ObjectEvent struct {
	Type      string          `json:"type"`
	Actor     string          `json:"actor,omitempty"`
	Object    RegisterObject  `json:"object"`
	OldObject *RegisterObject `json:"old_object,omitempty"`
}

// RegisterObject is one record of the object register.
type RegisterObject struct {
	ID       string                 `json:"id"`
	Register string                 `json:"register,omitempty"`
	Schema   string                 `json:"schema"`
	Data     map[string]interface{} `json:"data"`
}

// SettingsUpdateEvent announces a change of the app settings so that running
// dispatchers drop cached schema mappings.
type SettingsUpdateEvent struct {
	EventType string    `json:"event_type"`
	Keys      []string  `json:"keys"`
	ChangedBy string    `json:"changed_by,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
