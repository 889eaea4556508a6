// Package tags provisions the tag enumerations used as lead sources and
// request channels. Tags are global by name and shared between categories.
package tags

import (
	"net/http"

	"pipelinq/pkg/errors"
)

type Category string

const (
	CategoryLeadSource     Category = "lead_source"
	CategoryRequestChannel Category = "request_channel"
)

// Categories is every category a tag can be assigned to.
var Categories = []Category{CategoryLeadSource, CategoryRequestChannel}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

var (
	DefaultLeadSources = []string{
		"website", "email", "phone", "referral", "partner",
		"campaign", "social_media", "event", "other",
	}
	DefaultRequestChannels = []string{"phone", "email", "website", "counter", "post"}
)

var (
	ErrEmptyTagName     = errors.NewError("EMPTY_TAG_NAME", "Tag name cannot be empty", http.StatusBadRequest)
	ErrDuplicateTagName = errors.NewError("DUPLICATE_TAG_NAME", "This tag already exists", http.StatusConflict)
	ErrTagNotFound      = errors.ErrNotFound.WithMessage("tag not found")

	// errTagExists is returned by a store when a tag with the same name
	// exists in any category.
	errTagExists = errors.ErrConflict.WithMessage("tag name taken")
)

type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type TagRequest struct {
	Name string `json:"name"`
}
