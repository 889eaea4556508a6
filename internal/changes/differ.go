// Package changes detects the meaningful field transitions of an object
// between two snapshots.
package changes

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/wI2L/jsondiff"

	"pipelinq/internal/schema"
)

// Detect reports the new value of field when it is non-empty and differs
// from the old one.
func Detect(old, new Snapshot, field string) (string, bool) {
	value := new.Field(field)
	if value == "" || value == old.Field(field) {
		return "", false
	}
	return value, true
}

// Created returns the single event for a newly created object.
func Created(tag schema.EntityTag, objectID string, data Snapshot) Event {
	return ObjectCreated{
		Target:          targetOf(tag, objectID, data),
		InitialAssignee: data.Field(FieldAssignee),
	}
}

// Diff lists the events for an update, in assignee, stage, status order.
// Stage is watched for leads only and status for requests only.
func Diff(tag schema.EntityTag, objectID string, old, new Snapshot) []Event {
	target := targetOf(tag, objectID, new)
	assignee := new.Field(FieldAssignee)

	var events []Event
	if value, ok := Detect(old, new, FieldAssignee); ok {
		events = append(events, AssigneeChanged{Target: target, NewAssignee: value})
	}
	if tag == schema.EntityLead {
		if value, ok := Detect(old, new, FieldStage); ok {
			events = append(events, StageChanged{Target: target, NewStage: value, CurrentAssignee: assignee})
		}
	}
	if tag == schema.EntityRequest {
		if value, ok := Detect(old, new, FieldStatus); ok {
			events = append(events, StatusChanged{Target: target, NewStatus: value, CurrentAssignee: assignee})
		}
	}
	return events
}

// ChangedFields returns the sorted JSON pointer paths that differ between old
// and new.
func ChangedFields(old, new Snapshot) ([]string, error) {
	source, err := json.Marshal(orEmpty(old))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal old snapshot: %w", err)
	}
	target, err := json.Marshal(orEmpty(new))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal new snapshot: %w", err)
	}

	patch, err := jsondiff.CompareJSON(source, target)
	if err != nil {
		return nil, fmt.Errorf("failed to diff snapshots: %w", err)
	}

	seen := make(map[string]struct{}, len(patch))
	paths := make([]string, 0, len(patch))
	for _, op := range patch {
		path := string(op.Path)
		if _, ok := seen[path]; ok {
			continue
		}
		seen[path] = struct{}{}
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths, nil
}

func targetOf(tag schema.EntityTag, objectID string, data Snapshot) Target {
	return Target{
		Entity:   tag,
		ObjectID: objectID,
		Title:    data.Field(FieldTitle),
	}
}

func orEmpty(s Snapshot) Snapshot {
	if s == nil {
		return Snapshot{}
	}
	return s
}
