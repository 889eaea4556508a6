// Package subject renders the localized subject lines of activities and
// notifications.
package subject

import (
	"embed"
	"fmt"
	"net/http"
	"path"

	"github.com/BurntSushi/toml"
	"github.com/iota-uz/go-i18n/v2/i18n"
	"golang.org/x/text/language"

	"pipelinq/pkg/errors"
)

//go:embed locales/*.toml
var localeFS embed.FS

type Key string

const (
	LeadCreated          Key = "lead_created"
	LeadAssigned         Key = "lead_assigned"
	LeadStageChanged     Key = "lead_stage_changed"
	RequestCreated       Key = "request_created"
	RequestAssigned      Key = "request_assigned"
	RequestStatusChanged Key = "request_status_changed"
	NoteAdded            Key = "note_added"
)

var ErrUnknownSubject = errors.NewError("UNKNOWN_SUBJECT", "unknown subject", http.StatusInternalServerError).AsFatal()

// messageIDs maps every known subject to its message id prefix.
var messageIDs = map[Key]string{
	LeadCreated:          "Subject.LeadCreated",
	LeadAssigned:         "Subject.LeadAssigned",
	LeadStageChanged:     "Subject.LeadStageChanged",
	RequestCreated:       "Subject.RequestCreated",
	RequestAssigned:      "Subject.RequestAssigned",
	RequestStatusChanged: "Subject.RequestStatusChanged",
	NoteAdded:            "Subject.NoteAdded",
}

const defaultEntityType = "item"

func ParseKey(s string) (Key, error) {
	key := Key(s)
	if _, ok := messageIDs[key]; !ok {
		return "", ErrUnknownSubject.WithDetail("subject", s)
	}
	return key, nil
}

// RichParam is an inline entity reference in a rich subject.
type RichParam struct {
	Type string `json:"type"`
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Rendered struct {
	Parsed     string               `json:"parsed"`
	Rich       string               `json:"rich"`
	RichParams map[string]RichParam `json:"rich_params"`
}

type Renderer struct {
	bundle      *i18n.Bundle
	defaultLang string
}

// NewRenderer loads the embedded message files. English is the fallback
// for languages without translations.
func NewRenderer(defaultLang string) (*Renderer, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	files, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("failed to list locale files: %w", err)
	}
	for _, f := range files {
		name := path.Join("locales", f.Name())
		data, err := localeFS.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		if _, err := bundle.ParseMessageFileBytes(data, f.Name()); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
	}

	if defaultLang == "" {
		defaultLang = language.English.String()
	}
	return &Renderer{bundle: bundle, defaultLang: defaultLang}, nil
}

func (r *Renderer) DefaultLanguage() string {
	return r.defaultLang
}

// Languages lists the catalog languages, the default first.
func (r *Renderer) Languages() []string {
	out := []string{r.defaultLang}
	for _, tag := range r.bundle.LanguageTags() {
		if lang := tag.String(); lang != r.defaultLang {
			out = append(out, lang)
		}
	}
	return out
}

// MatchLanguage picks the catalog language closest to an Accept-Language
// header value. An empty, unparsable or unmatched header gives the default.
func (r *Renderer) MatchLanguage(acceptLanguage string) string {
	if acceptLanguage == "" {
		return r.defaultLang
	}
	prefs, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(prefs) == 0 {
		return r.defaultLang
	}

	langs := r.Languages()
	supported := make([]language.Tag, 0, len(langs))
	for _, lang := range langs {
		supported = append(supported, language.Make(lang))
	}
	_, idx, _ := language.NewMatcher(supported).Match(prefs...)
	return langs[idx]
}

// Render produces the parsed and rich subject of key in lang. An empty lang
// uses the renderer default.
func (r *Renderer) Render(lang string, key Key, params map[string]string, objectID string) (Rendered, error) {
	prefix, ok := messageIDs[key]
	if !ok {
		return Rendered{}, ErrUnknownSubject.WithDetail("subject", string(key))
	}
	if lang == "" {
		lang = r.defaultLang
	}

	title := params["title"]
	entityType := params["entityType"]
	if entityType == "" {
		entityType = defaultEntityType
	}
	data := map[string]string{
		"Title":      title,
		"Stage":      params["stage"],
		"Status":     params["status"],
		"EntityType": entityType,
	}

	localizer := i18n.NewLocalizer(r.bundle, lang, r.defaultLang)
	parsed, err := localizer.Localize(&i18n.LocalizeConfig{MessageID: prefix + ".Parsed", TemplateData: data})
	if err != nil {
		return Rendered{}, fmt.Errorf("failed to localize %s: %w", key, err)
	}
	rich, err := localizer.Localize(&i18n.LocalizeConfig{MessageID: prefix + ".Rich", TemplateData: data})
	if err != nil {
		return Rendered{}, fmt.Errorf("failed to localize %s: %w", key, err)
	}

	return Rendered{
		Parsed: parsed,
		Rich:   rich,
		RichParams: map[string]RichParam{
			"title": {Type: "highlight", ID: objectID, Name: title},
		},
	}, nil
}
