// Package docs registers the OpenAPI document served under /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["auth"],
                "summary": "Log in with e-mail and password",
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}],
                "responses": {
                    "200": {"description": "access token and session", "schema": {"$ref": "#/definitions/AuthResponse"}},
                    "401": {"description": "invalid credentials", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "429": {"description": "too many attempts", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/reports/behaviors": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["reports"],
                "summary": "Behaviors of several animals in a period",
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/RecordReportRequest"}}],
                "responses": {
                    "200": {"description": "behaviors, newest first"},
                    "400": {"description": "Invalid animal IDs or Invalid date range", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/reports/body-exams": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["reports"],
                "summary": "Body exams of several animals in a period",
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/RecordReportRequest"}}],
                "responses": {
                    "200": {"description": "body exams, newest first"},
                    "400": {"description": "Invalid animal IDs or Invalid date range", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/reports/pdf": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["reports"],
                "summary": "Animal behavior and health report",
                "produces": ["application/pdf", "application/json"],
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/RecordReportRequest"}}],
                "responses": {
                    "200": {"description": "PDF file"},
                    "201": {"description": "stored report with a presigned URL"},
                    "503": {"description": "report storage is not configured", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/dashboard/stats": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["dashboard"],
                "summary": "Organization counts",
                "parameters": [
                    {"type": "integer", "name": "start_date", "in": "query"},
                    {"type": "integer", "name": "end_date", "in": "query"}
                ],
                "responses": {"200": {"description": "dashboard stats"}}
            }
        }
    },
    "definitions": {
        "ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {
                    "type": "object",
                    "properties": {
                        "code": {"type": "string"},
                        "message": {"type": "string"},
                        "details": {"type": "object", "additionalProperties": {"type": "string"}}
                    }
                }
            }
        },
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "AuthResponse": {
            "type": "object",
            "properties": {
                "access_token": {"type": "string"},
                "token_type": {"type": "string"},
                "expires_in": {"type": "integer"},
                "session_token": {"type": "string"},
                "session_expires_at": {"type": "string", "format": "date-time"}
            }
        },
        "RecordReportRequest": {
            "type": "object",
            "properties": {
                "animal_ids": {"type": "array", "items": {"type": "string"}},
                "start_date": {"type": "integer", "description": "unix milliseconds"},
                "end_date": {"type": "integer", "description": "unix milliseconds"},
                "store": {"type": "boolean"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "RescueTrack API",
	Description:      "Animal rescue record keeping: animals, behaviors, body exams and reports.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
