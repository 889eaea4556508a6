package dispatch

import (
	"time"

	"pipelinq/internal/subject"
)

// Activity type tags, used by feed filters and user notification settings.
const (
	TypeAssignment  = "pipelinq_assignment"
	TypeStageStatus = "pipelinq_stage_status"
	TypeNotes       = "pipelinq_notes"
)

// Reasons a delivery did not happen.
const (
	ReasonSelfChange  = "self_change"
	ReasonNoAssignee  = "no_assignee"
	ReasonSinkFailure = "sink_failure"
)

type OutboundActivity struct {
	ID             string            `json:"id" bson:"_id"`
	AppID          string            `json:"app_id" bson:"app_id"`
	Type           string            `json:"type" bson:"type"`
	Subject        subject.Key       `json:"subject" bson:"subject"`
	SubjectParams  map[string]string `json:"subject_params" bson:"subject_params"`
	ObjectType     string            `json:"object_type" bson:"object_type"`
	ObjectID       string            `json:"object_id" bson:"object_id"`
	ObjectTitle    string            `json:"object_title" bson:"object_title"`
	ActorID        string            `json:"actor_id,omitempty" bson:"actor_id,omitempty"`
	AffectedUserID string            `json:"affected_user_id,omitempty" bson:"affected_user_id,omitempty"`
	ChangedFields  []string          `json:"changed_fields,omitempty" bson:"changed_fields,omitempty"`
	Timestamp      time.Time         `json:"timestamp" bson:"timestamp"`
}

type OutboundNotification struct {
	ID            string            `json:"id"`
	AppID         string            `json:"app_id"`
	Subject       subject.Key       `json:"subject"`
	SubjectParams map[string]string `json:"subject_params"`
	TargetUserID  string            `json:"target_user_id"`
	ObjectType    string            `json:"object_type"`
	ObjectID      string            `json:"object_id"`
	Link          string            `json:"link,omitempty"`
	Language      string            `json:"language,omitempty"`
	Rendered      *subject.Rendered `json:"rendered,omitempty"`
	Timestamp     time.Time         `json:"timestamp"`
}

// Delivery is the result of handing one outbound item to its sink.
type Delivery struct {
	Delivered bool   `json:"delivered"`
	Reason    string `json:"reason,omitempty"`
}

// Outcome reports what a dispatch delivered. Dispatch never fails; sink
// errors show up here and in the logs.
type Outcome struct {
	Activity     Delivery `json:"activity"`
	Notification Delivery `json:"notification"`
}
