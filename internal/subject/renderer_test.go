package subject

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pipelinq/pkg/errors"
)

func newRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer("en")
	require.NoError(t, err)
	return r
}

func TestRender_English(t *testing.T) {
	r := newRenderer(t)

	tests := []struct {
		key    Key
		params map[string]string
		parsed string
		rich   string
	}{
		{LeadCreated, map[string]string{"title": "Acme"}, "Lead created: Acme", "Lead created: {title}"},
		{LeadAssigned, map[string]string{"title": "Acme"}, "Lead assigned: Acme", "Lead assigned: {title}"},
		{RequestCreated, map[string]string{"title": "Leak"}, "Request created: Leak", "Request created: {title}"},
		{RequestAssigned, map[string]string{"title": "Leak"}, "Request assigned: Leak", "Request assigned: {title}"},
		{LeadStageChanged, map[string]string{"title": "Acme", "stage": "Won"}, "Lead Acme moved to Won", "{title} moved to Won"},
		{RequestStatusChanged, map[string]string{"title": "Leak", "status": "completed"}, "Request Leak: completed", "{title}: completed"},
		{NoteAdded, map[string]string{"title": "Acme", "entityType": "lead"}, "New note on lead: Acme", "New note on lead: {title}"},
		{NoteAdded, map[string]string{"title": "Acme"}, "New note on item: Acme", "New note on item: {title}"},
	}

	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			got, err := r.Render("en", tt.key, tt.params, "42")
			require.NoError(t, err)
			assert.Equal(t, tt.parsed, got.Parsed)
			assert.Equal(t, tt.rich, got.Rich)
			assert.Equal(t, RichParam{Type: "highlight", ID: "42", Name: tt.params["title"]}, got.RichParams["title"])
		})
	}
}

func TestRender_DutchAndFallback(t *testing.T) {
	r := newRenderer(t)

	got, err := r.Render("nl", LeadStageChanged, map[string]string{"title": "Acme", "stage": "Won"}, "1")
	require.NoError(t, err)
	assert.Equal(t, "Lead Acme verplaatst naar Won", got.Parsed)

	got, err = r.Render("fr", LeadCreated, map[string]string{"title": "Acme"}, "1")
	require.NoError(t, err)
	assert.Equal(t, "Lead created: Acme", got.Parsed)

	got, err = r.Render("", LeadCreated, map[string]string{"title": "Acme"}, "1")
	require.NoError(t, err)
	assert.Equal(t, "Lead created: Acme", got.Parsed)
}

func TestRender_UnknownSubject(t *testing.T) {
	r := newRenderer(t)

	_, err := r.Render("en", Key("contact_deleted"), nil, "1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownSubject)

	_, err = ParseKey("lead_deleted")
	assert.ErrorIs(t, err, ErrUnknownSubject)

	key, err := ParseKey("note_added")
	require.NoError(t, err)
	assert.Equal(t, NoteAdded, key)
}

func TestUnknownSubjectIsFatal(t *testing.T) {
	assert.True(t, ErrUnknownSubject.IsFatal())
	assert.Equal(t, "UNKNOWN_SUBJECT", errors.ToErrorResponse(ErrUnknownSubject).ErrorCode)
}

func TestMatchLanguage(t *testing.T) {
	r := newRenderer(t)

	assert.Equal(t, "en", r.Languages()[0])
	assert.ElementsMatch(t, []string{"en", "nl"}, r.Languages())

	tests := []struct {
		header string
		want   string
	}{
		{"", "en"},
		{"nl", "nl"},
		{"nl-BE,nl;q=0.9,en;q=0.8", "nl"},
		{"fr-FR,fr;q=0.9", "en"},
		{"de;q=0.5,nl;q=0.4", "nl"},
		{"!!!", "en"},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			assert.Equal(t, tt.want, r.MatchLanguage(tt.header))
		})
	}
}
