// Package docs registers the management API description with swag.
// Regenerate with: swag init -g cmd/management-service/main.go -o cmd/management-service/docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "license": {
            "name": "Apache 2.0",
            "url": "http://www.apache.org/licenses/LICENSE-2.0.html"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/activities": {
            "get": {
                "produces": ["application/json"],
                "tags": ["activities"],
                "summary": "Activity feed",
                "parameters": [
                    {"type": "string", "name": "object_type", "in": "query"},
                    {"type": "string", "name": "object_id", "in": "query"},
                    {"type": "string", "name": "type", "in": "query"},
                    {"type": "boolean", "name": "mine", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"},
                    {"type": "string", "name": "lang", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            }
        },
        "/settings": {
            "get": {
                "produces": ["application/json"],
                "tags": ["settings"],
                "summary": "Get app settings",
                "responses": {"200": {"description": "OK"}}
            },
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["settings"],
                "summary": "Update app settings",
                "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"type": "object"}}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            }
        },
        "/user/settings": {
            "get": {
                "produces": ["application/json"],
                "tags": ["settings"],
                "summary": "Get notification settings of the current user",
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}
            },
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["settings"],
                "summary": "Update notification settings of the current user",
                "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"type": "object"}}],
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}
            }
        },
        "/settings/pipelines/defaults": {
            "post": {
                "produces": ["application/json"],
                "tags": ["pipelines"],
                "summary": "Create the default pipelines",
                "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable"}}
            }
        },
        "/requests/status-transitions": {
            "get": {
                "produces": ["application/json"],
                "tags": ["requests"],
                "summary": "Allowed request status transitions",
                "parameters": [{"type": "string", "name": "from", "in": "query"}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/requests/status-transitions/validate": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["requests"],
                "summary": "Check a request status transition",
                "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"type": "object"}}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            }
        },
        "/notes/{objectType}/{objectId}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["notes"],
                "summary": "List notes of an object",
                "parameters": [
                    {"type": "string", "name": "objectType", "in": "path", "required": true},
                    {"type": "string", "name": "objectId", "in": "path", "required": true},
                    {"type": "integer", "name": "limit", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["notes"],
                "summary": "Add a note to an object",
                "parameters": [
                    {"type": "string", "name": "objectType", "in": "path", "required": true},
                    {"type": "string", "name": "objectId", "in": "path", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["notes"],
                "summary": "Delete all notes of an object",
                "parameters": [
                    {"type": "string", "name": "objectType", "in": "path", "required": true},
                    {"type": "string", "name": "objectId", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/notes/single/{noteId}": {
            "delete": {
                "tags": ["notes"],
                "summary": "Delete one of your own notes",
                "parameters": [{"type": "string", "name": "noteId", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}, "403": {"description": "Forbidden"}, "404": {"description": "Not Found"}}
            }
        },
        "/lead-sources": {
            "get": {"produces": ["application/json"], "tags": ["tags"], "summary": "List the tags of a category", "responses": {"200": {"description": "OK"}}},
            "post": {"consumes": ["application/json"], "produces": ["application/json"], "tags": ["tags"], "summary": "Add a tag to a category", "responses": {"201": {"description": "Created"}, "409": {"description": "Conflict"}}}
        },
        "/lead-sources/{id}": {
            "put": {"consumes": ["application/json"], "produces": ["application/json"], "tags": ["tags"], "summary": "Rename a tag", "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "delete": {"tags": ["tags"], "summary": "Remove a tag from a category", "responses": {"204": {"description": "No Content"}}}
        },
        "/request-channels": {
            "get": {"produces": ["application/json"], "tags": ["tags"], "summary": "List the tags of a category", "responses": {"200": {"description": "OK"}}},
            "post": {"consumes": ["application/json"], "produces": ["application/json"], "tags": ["tags"], "summary": "Add a tag to a category", "responses": {"201": {"description": "Created"}, "409": {"description": "Conflict"}}}
        },
        "/request-channels/{id}": {
            "put": {"consumes": ["application/json"], "produces": ["application/json"], "tags": ["tags"], "summary": "Rename a tag", "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "delete": {"tags": ["tags"], "summary": "Remove a tag from a category", "responses": {"204": {"description": "No Content"}}}
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{"http", "https"},
	Title:            "Pipelinq Management Service API",
	Description:      "REST API for Pipelinq settings, tags, notes, pipelines and the activity feed",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
