package changes

import "pipelinq/internal/schema"

// Target identifies the object an event is about.
type Target struct {
	Entity   schema.EntityTag
	ObjectID string
	Title    string
}

// Event is the closed set of detected changes: ObjectCreated, AssigneeChanged,
// StageChanged, StatusChanged and NoteAdded.
type Event interface {
	Ref() Target
	// Assignee is the user the event concerns, "" when there is none.
	Assignee() string
	Kind() string
	sealed()
}

type ObjectCreated struct {
	Target
	InitialAssignee string
}

type AssigneeChanged struct {
	Target
	NewAssignee string
}

type StageChanged struct {
	Target
	NewStage        string
	CurrentAssignee string
}

type StatusChanged struct {
	Target
	NewStatus       string
	CurrentAssignee string
}

type NoteAdded struct {
	Target
	CurrentAssignee string
}

func (e ObjectCreated) Ref() Target   { return e.Target }
func (e AssigneeChanged) Ref() Target { return e.Target }
func (e StageChanged) Ref() Target    { return e.Target }
func (e StatusChanged) Ref() Target   { return e.Target }
func (e NoteAdded) Ref() Target       { return e.Target }

func (e ObjectCreated) Assignee() string   { return e.InitialAssignee }
func (e AssigneeChanged) Assignee() string { return e.NewAssignee }
func (e StageChanged) Assignee() string    { return e.CurrentAssignee }
func (e StatusChanged) Assignee() string   { return e.CurrentAssignee }
func (e NoteAdded) Assignee() string       { return e.CurrentAssignee }

func (ObjectCreated) Kind() string   { return "created" }
func (AssigneeChanged) Kind() string { return "assignee_changed" }
func (StageChanged) Kind() string    { return "stage_changed" }
func (StatusChanged) Kind() string   { return "status_changed" }
func (NoteAdded) Kind() string       { return "note_added" }

func (ObjectCreated) sealed()   {}
func (AssigneeChanged) sealed() {}
func (StageChanged) sealed()    {}
func (StatusChanged) sealed()   {}
func (NoteAdded) sealed()       {}
