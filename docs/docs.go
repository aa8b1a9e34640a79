// Package docs registers the OpenAPI description served at /api/swagger.
// Regenerate with `swag init -g cmd/server/main.go` after changing handler annotations.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "API Support"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Health check",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/signup": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "User signup",
                "parameters": [
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/server.accountRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.User"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Sync user on login",
                "parameters": [
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/server.accountRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.User"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/users/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Get user",
                "parameters": [
                    {"type": "string", "description": "User id or external auth id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.User"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/users/{id}/xp": {
            "patch": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Award XP",
                "parameters": [
                    {"type": "string", "description": "User id", "name": "id", "in": "path", "required": true},
                    {"in": "body", "name": "request", "required": true, "schema": {"type": "object", "properties": {"xpToAdd": {"type": "integer"}}}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.User"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/projects": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["projects"],
                "summary": "Create project",
                "parameters": [
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/models.Project"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.Project"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/projects/{id}/progress": {
            "get": {
                "produces": ["application/json"],
                "tags": ["projects"],
                "summary": "Project progress",
                "parameters": [
                    {"type": "string", "description": "Project id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.ProjectProgress"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/projects/{id}/tasks": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["tasks"],
                "summary": "Create task",
                "parameters": [
                    {"type": "string", "description": "Project id", "name": "id", "in": "path", "required": true},
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/models.Task"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.Task"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/projects/{projectId}/tasks/{taskId}": {
            "patch": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["tasks"],
                "summary": "Update task",
                "description": "Partial update; the first move to completed awards the task's XP to its assignee",
                "parameters": [
                    {"type": "string", "description": "Project id", "name": "projectId", "in": "path", "required": true},
                    {"type": "string", "description": "Task id", "name": "taskId", "in": "path", "required": true},
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/models.Task"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Task"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/reviews": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["reviews"],
                "summary": "Create peer review",
                "parameters": [
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/models.Review"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.Review"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/match-teammates": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["matching"],
                "summary": "Find teammates",
                "parameters": [
                    {"in": "body", "name": "request", "required": true, "schema": {"type": "object", "properties": {
                        "skills": {"type": "array", "items": {"type": "string"}},
                        "interests": {"type": "array", "items": {"type": "string"}},
                        "projectIdea": {"type": "string"}
                    }}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.TeammateMatch"}}}
                }
            }
        }
    },
    "definitions": {
        "models.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "details": {"type": "string"},
                "error": {"type": "string"}
            }
        },
        "models.User": {
            "type": "object",
            "properties": {
                "createdAt": {"type": "string"},
                "email": {"type": "string"},
                "externalAuthId": {"type": "string"},
                "id": {"type": "string"},
                "interests": {"type": "array", "items": {"type": "string"}},
                "level": {"type": "integer"},
                "skills": {"type": "array", "items": {"type": "string"}},
                "username": {"type": "string"},
                "xp": {"type": "integer"}
            }
        },
        "models.Project": {
            "type": "object",
            "properties": {
                "createdAt": {"type": "string"},
                "description": {"type": "string"},
                "id": {"type": "string"},
                "name": {"type": "string"},
                "ownerId": {"type": "string"},
                "teamMembers": {"type": "array", "items": {"type": "string"}}
            }
        },
        "models.Task": {
            "type": "object",
            "properties": {
                "assignedTo": {"type": "string"},
                "completedAt": {"type": "string"},
                "createdAt": {"type": "string"},
                "description": {"type": "string"},
                "dueDate": {"type": "string"},
                "id": {"type": "string"},
                "priority": {"type": "string", "enum": ["low", "medium", "high"]},
                "projectId": {"type": "string"},
                "status": {"type": "string", "enum": ["not_started", "in_progress", "completed"]},
                "title": {"type": "string"},
                "xpReward": {"type": "integer"}
            }
        },
        "models.Review": {
            "type": "object",
            "properties": {
                "createdAt": {"type": "string"},
                "feedback": {"type": "string"},
                "id": {"type": "string"},
                "projectId": {"type": "string"},
                "rating": {"type": "integer"},
                "revieweeId": {"type": "string"},
                "reviewerId": {"type": "string"},
                "tags": {"type": "array", "items": {"type": "string"}}
            }
        },
        "models.Contribution": {
            "type": "object",
            "properties": {
                "tasksCompleted": {"type": "integer"},
                "userId": {"type": "string"},
                "username": {"type": "string"},
                "xpEarned": {"type": "integer"}
            }
        },
        "models.ProjectProgress": {
            "type": "object",
            "properties": {
                "completedTasks": {"type": "integer"},
                "completionPercentage": {"type": "integer"},
                "contributions": {"type": "array", "items": {"$ref": "#/definitions/models.Contribution"}},
                "projectId": {"type": "string"},
                "totalTasks": {"type": "integer"}
            }
        },
        "models.TeammateMatch": {
            "type": "object",
            "properties": {
                "matchPercentage": {"type": "integer"},
                "matchingInterests": {"type": "array", "items": {"type": "string"}},
                "matchingSkills": {"type": "array", "items": {"type": "string"}},
                "user": {"$ref": "#/definitions/models.User"}
            }
        },
        "server.accountRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "externalAuthId": {"type": "string"},
                "firebaseUid": {"type": "string"},
                "interests": {"type": "array", "items": {"type": "string"}},
                "skills": {"type": "array", "items": {"type": "string"}},
                "username": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8375",
	BasePath:         "/api",
	Schemes:          []string{"http", "https"},
	Title:            "CollabNexus API",
	Description:      "Gamified team collaboration: projects, kanban tasks, XP levels, peer reviews and teammate matching",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
