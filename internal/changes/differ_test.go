package changes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pipelinq/internal/schema"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name    string
		old     Snapshot
		new     Snapshot
		want    string
		changed bool
	}{
		{"empty to value", Snapshot{}, Snapshot{"stage": "Won"}, "Won", true},
		{"value to other", Snapshot{"stage": "New"}, Snapshot{"stage": "Won"}, "Won", true},
		{"same value", Snapshot{"stage": "New"}, Snapshot{"stage": "New"}, "", false},
		{"cleared", Snapshot{"stage": "New"}, Snapshot{"stage": ""}, "", false},
		{"missing in new", Snapshot{"stage": "New"}, Snapshot{}, "", false},
		{"nil old", nil, Snapshot{"stage": "New"}, "New", true},
		{"null new", Snapshot{}, Snapshot{"stage": nil}, "", false},
		{"numeric", Snapshot{"stage": float64(1)}, Snapshot{"stage": float64(2)}, "2", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Detect(tt.old, tt.new, "stage")
			assert.Equal(t, tt.changed, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDiff_LeadStageNoOp(t *testing.T) {
	old := Snapshot{"title": "Acme", "stage": "New"}
	new := Snapshot{"title": "Acme", "stage": "New"}

	assert.Empty(t, Diff(schema.EntityLead, "42", old, new))
}

func TestDiff_StageOnlyForLeads(t *testing.T) {
	old := Snapshot{"stage": "New", "status": "new"}
	new := Snapshot{"stage": "Won", "status": "completed", "assignee": "alice"}

	lead := Diff(schema.EntityLead, "1", old, new)
	require.Len(t, lead, 2)
	assert.Equal(t, AssigneeChanged{Target: Target{Entity: schema.EntityLead, ObjectID: "1"}, NewAssignee: "alice"}, lead[0])
	stage, ok := lead[1].(StageChanged)
	require.True(t, ok)
	assert.Equal(t, "Won", stage.NewStage)
	assert.Equal(t, "alice", stage.Assignee())

	request := Diff(schema.EntityRequest, "2", old, new)
	require.Len(t, request, 2)
	status, ok := request[1].(StatusChanged)
	require.True(t, ok)
	assert.Equal(t, "completed", status.NewStatus)

	client := Diff(schema.EntityClient, "3", old, new)
	require.Len(t, client, 1)
	assert.Equal(t, "assignee_changed", client[0].Kind())
}

func TestDiff_SameAssigneeUpdatedBySomeoneElse(t *testing.T) {
	old := Snapshot{"assignee": "alice", "stage": "New"}
	new := Snapshot{"assignee": "alice", "stage": "Contacted"}

	events := Diff(schema.EntityLead, "7", old, new)
	require.Len(t, events, 1)
	assert.IsType(t, StageChanged{}, events[0])
}

func TestCreated_CarriesInitialAssignee(t *testing.T) {
	e := Created(schema.EntityLead, "9", Snapshot{"title": "Big deal", "assignee": "alice"})

	created, ok := e.(ObjectCreated)
	require.True(t, ok)
	assert.Equal(t, "alice", created.Assignee())
	assert.Equal(t, Target{Entity: schema.EntityLead, ObjectID: "9", Title: "Big deal"}, created.Ref())
}

func TestChangedFields(t *testing.T) {
	old := Snapshot{"title": "A", "stage": "New", "value": float64(10)}
	new := Snapshot{"title": "A", "stage": "Won", "assignee": "bob"}

	paths, err := ChangedFields(old, new)
	require.NoError(t, err)
	assert.Equal(t, []string{"/assignee", "/stage", "/value"}, paths)

	paths, err = ChangedFields(nil, Snapshot{})
	require.NoError(t, err)
	assert.Empty(t, paths)
}
