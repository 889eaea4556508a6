package models

import "fmt"

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

func ValidateMessageEnvelope(msg *MessageEnvelope) error {
	if msg == nil {
		return &ValidationError{Field: "envelope", Message: "message envelope cannot be nil"}
	}

	if msg.ID == "" {
		return &ValidationError{Field: "id", Message: "message ID is required"}
	}

	if msg.Payload == nil {
		return &ValidationError{Field: "payload", Message: "message payload cannot be nil"}
	}

	return nil
}

// ValidateObjectEvent checks the shape of the event. The type is not checked:
// callers skip the types they do not handle.
func ValidateObjectEvent(ev *ObjectEvent) error {
	if ev.Type == "" {
		return &ValidationError{Field: "type", Message: "event type is required"}
	}

	if ev.Object.ID == "" {
		return &ValidationError{Field: "object.id", Message: "object id is required"}
	}

	return nil
}
