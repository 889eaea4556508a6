// Package dispatch fans detected changes out to the activity stream and to
// personal notifications.
package dispatch

import (
	"context"
	"time"

	"github.com/google/uuid"

	"pipelinq/internal/changes"
	"pipelinq/internal/logger"
	"pipelinq/internal/schema"
	"pipelinq/internal/subject"
	"pipelinq/pkg/actor"
	"pipelinq/pkg/metrics"
)

type ActivitySink interface {
	Publish(ctx context.Context, activity OutboundActivity) error
}

type NotificationSink interface {
	Notify(ctx context.Context, notification OutboundNotification) error
}

type Options struct {
	AppID           string
	BaseURL         string
	DefaultLanguage string
}

type Publisher struct {
	activities    ActivitySink
	notifications NotificationSink
	renderer      *subject.Renderer
	opts          Options
	logger        logger.Logger
	now           func() time.Time
}

func NewPublisher(activities ActivitySink, notifications NotificationSink, renderer *subject.Renderer, opts Options, log logger.Logger) *Publisher {
	return &Publisher{
		activities:    activities,
		notifications: notifications,
		renderer:      renderer,
		opts:          opts,
		logger:        log,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// dispatchPlan describes one change: the activity always, the notification
// only for an assignee other than the actor.
type dispatchPlan struct {
	activityType   string
	activityKey    subject.Key
	activityParams map[string]string
	notifyKey      subject.Key
	notifyParams   map[string]string
	objectType     string
	objectID       string
	title          string
	assignee       string
	changedFields  []string
}

// Dispatch routes e to the matching Dispatch* method. changedFields is
// recorded on the activity.
func (p *Publisher) Dispatch(ctx context.Context, e changes.Event, changedFields ...string) Outcome {
	t := e.Ref()
	var plan dispatchPlan
	switch ev := e.(type) {
	case changes.ObjectCreated:
		plan = createdPlan(t.Entity, t.Title, t.ObjectID, ev.InitialAssignee)
	case changes.AssigneeChanged:
		plan = assignedPlan(t.Entity, t.Title, t.ObjectID, ev.NewAssignee)
	case changes.StageChanged:
		plan = stagePlan(t.Title, t.ObjectID, ev.NewStage, ev.CurrentAssignee)
	case changes.StatusChanged:
		plan = statusPlan(t.Title, t.ObjectID, ev.NewStatus, ev.CurrentAssignee)
	case changes.NoteAdded:
		plan = notePlan(t.Entity, t.Title, t.ObjectID, ev.CurrentAssignee)
	}
	plan.changedFields = changedFields
	return p.dispatch(ctx, plan)
}

func (p *Publisher) DispatchCreated(ctx context.Context, tag schema.EntityTag, title, objectID, assignee string) Outcome {
	return p.dispatch(ctx, createdPlan(tag, title, objectID, assignee))
}

func (p *Publisher) DispatchAssigneeChange(ctx context.Context, tag schema.EntityTag, title, objectID, assignee string) Outcome {
	return p.dispatch(ctx, assignedPlan(tag, title, objectID, assignee))
}

func (p *Publisher) DispatchStageChange(ctx context.Context, title, objectID, newStage, assignee string) Outcome {
	return p.dispatch(ctx, stagePlan(title, objectID, newStage, assignee))
}

func (p *Publisher) DispatchStatusChange(ctx context.Context, title, objectID, newStatus, assignee string) Outcome {
	return p.dispatch(ctx, statusPlan(title, objectID, newStatus, assignee))
}

func (p *Publisher) DispatchNoteAdded(ctx context.Context, tag schema.EntityTag, title, objectID, assignee string) Outcome {
	return p.dispatch(ctx, notePlan(tag, title, objectID, assignee))
}

func createdKey(tag schema.EntityTag) subject.Key {
	if tag == schema.EntityRequest {
		return subject.RequestCreated
	}
	return subject.LeadCreated
}

func assignedKey(tag schema.EntityTag) subject.Key {
	if tag == schema.EntityRequest {
		return subject.RequestAssigned
	}
	return subject.LeadAssigned
}

// A creation notifies the initial assignee with the assignment subject.
func createdPlan(tag schema.EntityTag, title, objectID, assignee string) dispatchPlan {
	return dispatchPlan{
		activityType:   TypeAssignment,
		activityKey:    createdKey(tag),
		activityParams: map[string]string{"title": title, "entityType": string(tag)},
		notifyKey:      assignedKey(tag),
		notifyParams:   map[string]string{"title": title, "entityType": string(tag)},
		objectType:     string(tag),
		objectID:       objectID,
		title:          title,
		assignee:       assignee,
	}
}

func assignedPlan(tag schema.EntityTag, title, objectID, assignee string) dispatchPlan {
	return dispatchPlan{
		activityType:   TypeAssignment,
		activityKey:    assignedKey(tag),
		activityParams: map[string]string{"title": title, "entityType": string(tag), "assignee": assignee},
		notifyKey:      assignedKey(tag),
		notifyParams:   map[string]string{"title": title, "entityType": string(tag)},
		objectType:     string(tag),
		objectID:       objectID,
		title:          title,
		assignee:       assignee,
	}
}

func stagePlan(title, objectID, newStage, assignee string) dispatchPlan {
	return dispatchPlan{
		activityType:   TypeStageStatus,
		activityKey:    subject.LeadStageChanged,
		activityParams: map[string]string{"title": title, "stage": newStage},
		notifyKey:      subject.LeadStageChanged,
		notifyParams:   map[string]string{"title": title, "stage": newStage},
		objectType:     string(schema.EntityLead),
		objectID:       objectID,
		title:          title,
		assignee:       assignee,
	}
}

func statusPlan(title, objectID, newStatus, assignee string) dispatchPlan {
	return dispatchPlan{
		activityType:   TypeStageStatus,
		activityKey:    subject.RequestStatusChanged,
		activityParams: map[string]string{"title": title, "status": newStatus},
		notifyKey:      subject.RequestStatusChanged,
		notifyParams:   map[string]string{"title": title, "status": newStatus},
		objectType:     string(schema.EntityRequest),
		objectID:       objectID,
		title:          title,
		assignee:       assignee,
	}
}

func notePlan(tag schema.EntityTag, title, objectID, assignee string) dispatchPlan {
	return dispatchPlan{
		activityType:   TypeNotes,
		activityKey:    subject.NoteAdded,
		activityParams: map[string]string{"title": title, "entityType": string(tag)},
		notifyKey:      subject.NoteAdded,
		notifyParams:   map[string]string{"title": title, "entityType": string(tag)},
		objectType:     string(tag),
		objectID:       objectID,
		title:          title,
		assignee:       assignee,
	}
}

func (p *Publisher) dispatch(ctx context.Context, plan dispatchPlan) Outcome {
	author := actor.FromContext(ctx)
	now := p.now()
	metrics.ChangeEventsTotal.WithLabelValues(string(plan.activityKey)).Inc()

	outcome := Outcome{
		Activity: p.publishActivity(ctx, plan, author, now),
	}

	switch {
	case plan.assignee == "":
		outcome.Notification = Delivery{Reason: ReasonNoAssignee}
	case plan.assignee == author:
		outcome.Notification = Delivery{Reason: ReasonSelfChange}
	default:
		outcome.Notification = p.sendNotification(ctx, plan, author, now)
	}
	if !outcome.Notification.Delivered && outcome.Notification.Reason != ReasonSinkFailure {
		metrics.IncDelivery("notification", "skipped")
	}

	return outcome
}

func (p *Publisher) publishActivity(ctx context.Context, plan dispatchPlan, author string, now time.Time) Delivery {
	affected := plan.assignee
	if affected == "" {
		affected = author
	}

	activity := OutboundActivity{
		ID:             uuid.New().String(),
		AppID:          p.opts.AppID,
		Type:           plan.activityType,
		Subject:        plan.activityKey,
		SubjectParams:  plan.activityParams,
		ObjectType:     plan.objectType,
		ObjectID:       plan.objectID,
		ObjectTitle:    plan.title,
		ActorID:        author,
		AffectedUserID: affected,
		ChangedFields:  plan.changedFields,
		Timestamp:      now,
	}

	if err := p.activities.Publish(ctx, activity); err != nil {
		metrics.IncDelivery("activity", "failed")
		p.logger.ErrorwCtx(ctx, "Failed to publish activity",
			"subject", plan.activityKey,
			"type", plan.activityType,
			"object_id", plan.objectID,
			"error", err,
		)
		return Delivery{Reason: ReasonSinkFailure}
	}

	metrics.IncDelivery("activity", "delivered")
	return Delivery{Delivered: true}
}

func (p *Publisher) sendNotification(ctx context.Context, plan dispatchPlan, author string, now time.Time) Delivery {
	params := make(map[string]string, len(plan.notifyParams)+1)
	for k, v := range plan.notifyParams {
		params[k] = v
	}
	params["author"] = author

	notification := OutboundNotification{
		ID:            uuid.New().String(),
		AppID:         p.opts.AppID,
		Subject:       plan.notifyKey,
		SubjectParams: params,
		TargetUserID:  plan.assignee,
		ObjectType:    plan.objectType,
		ObjectID:      plan.objectID,
		Link:          p.link(plan.objectType, plan.objectID),
		Language:      p.opts.DefaultLanguage,
		Timestamp:     now,
	}

	if p.renderer != nil {
		rendered, err := p.renderer.Render(p.opts.DefaultLanguage, plan.notifyKey, params, plan.objectID)
		if err != nil {
			p.logger.WarnwCtx(ctx, "Failed to render notification subject",
				"subject", plan.notifyKey,
				"error", err,
			)
		} else {
			notification.Rendered = &rendered
		}
	}

	if err := p.notifications.Notify(ctx, notification); err != nil {
		metrics.IncDelivery("notification", "failed")
		p.logger.ErrorwCtx(ctx, "Failed to send notification",
			"subject", plan.notifyKey,
			"user_id", plan.assignee,
			"error", err,
		)
		return Delivery{Reason: ReasonSinkFailure}
	}

	metrics.IncDelivery("notification", "delivered")
	return Delivery{Delivered: true}
}

func (p *Publisher) link(objectType, objectID string) string {
	if p.opts.BaseURL == "" {
		return ""
	}
	return p.opts.BaseURL + "#/" + objectType + "s/" + objectID
}
