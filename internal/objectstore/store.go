// Package objectstore talks to the object register that holds clients,
// contacts, leads, requests and pipelines.
package objectstore

import (
	"context"

	"pipelinq/pkg/errors"
)

// ErrObjectNotFound matches errors.ErrNotFound.
var ErrObjectNotFound = errors.ErrNotFound.WithMessage("object not found")

// Object is the data of one register record, keyed by field name.
type Object map[string]interface{}

func (o Object) ID() string {
	if id, ok := o["id"].(string); ok {
		return id
	}
	return ""
}

func (o Object) Title() string {
	if title, ok := o["title"].(string); ok {
		return title
	}
	return ""
}

// Query selects objects of one schema within a register.
type Query struct {
	Register string
	Schema   string
	Limit    int
	Filters  map[string]string
}

type Store interface {
	FindObject(ctx context.Context, register, schema, id string) (Object, error)
	FindAll(ctx context.Context, q Query) ([]Object, error)
	SaveObject(ctx context.Context, register, schema string, data Object) (Object, error)
}
