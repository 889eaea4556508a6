package settings

import (
	"time"

	"pipelinq/internal/config"
)

const KeyRegister = "register"

// Keys lists every app setting the service accepts.
func Keys() []string {
	return append([]string{KeyRegister}, config.SchemaSettingKeys...)
}

func isKnownKey(key string) bool {
	for _, k := range Keys() {
		if k == key {
			return true
		}
	}
	return false
}

type UserSettings struct {
	UserID            string    `json:"user_id"`
	NotifyAssignments bool      `json:"notify_assignments"`
	NotifyStageStatus bool      `json:"notify_stage_status"`
	NotifyNotes       bool      `json:"notify_notes"`
	UpdatedAt         time.Time `json:"updated_at,omitempty"`
}

// DefaultUserSettings has every notification switched on.
func DefaultUserSettings(userID string) UserSettings {
	return UserSettings{
		UserID:            userID,
		NotifyAssignments: true,
		NotifyStageStatus: true,
		NotifyNotes:       true,
	}
}

type UpdateSettingsRequest struct {
	Settings map[string]string `json:"settings" binding:"required"`
}

type UpdateUserSettingsRequest struct {
	NotifyAssignments *bool `json:"notify_assignments,omitempty"`
	NotifyStageStatus *bool `json:"notify_stage_status,omitempty"`
	NotifyNotes       *bool `json:"notify_notes,omitempty"`
}

func (r UpdateUserSettingsRequest) apply(s *UserSettings) {
	if r.NotifyAssignments != nil {
		s.NotifyAssignments = *r.NotifyAssignments
	}
	if r.NotifyStageStatus != nil {
		s.NotifyStageStatus = *r.NotifyStageStatus
	}
	if r.NotifyNotes != nil {
		s.NotifyNotes = *r.NotifyNotes
	}
}
