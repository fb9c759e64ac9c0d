// Package gateway holds the OpenAPI document of the development gateway,
// kept in step with the swag annotations in internal/gateway/http.
//
// Regenerate with:
//
//	swag init -g router.go -d internal/gateway/http,pkg/authsdk -o api/gateway --outputTypes go
package gateway

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
    "paths": {
        "/api/login": {
            "post": {
                "description": "Signs in with an email or username. Unknown accounts and wrong passwords get the same answer.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Log in",
                "parameters": [
                    {
                        "description": "identifier and secret",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/authsdk.LoginRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "success with token", "schema": {"$ref": "#/definitions/authsdk.AuthOutcome"}},
                    "400": {"description": "validation failed", "schema": {"$ref": "#/definitions/authsdk.AuthOutcome"}},
                    "401": {"description": "invalid credentials", "schema": {"$ref": "#/definitions/authsdk.AuthOutcome"}},
                    "429": {"description": "rate limited", "schema": {"$ref": "#/definitions/authsdk.AuthOutcome"}},
                    "500": {"description": "internal error", "schema": {"$ref": "#/definitions/authsdk.AuthOutcome"}}
                }
            }
        },
        "/api/register": {
            "post": {
                "description": "Creates an account and signs it in. Email and username must be unused, usernames ignore case.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Register",
                "parameters": [
                    {
                        "description": "email, secret and displayName",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/authsdk.RegisterRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "success with token", "schema": {"$ref": "#/definitions/authsdk.AuthOutcome"}},
                    "400": {"description": "validation failed", "schema": {"$ref": "#/definitions/authsdk.AuthOutcome"}},
                    "409": {"description": "email or username taken", "schema": {"$ref": "#/definitions/authsdk.AuthOutcome"}},
                    "429": {"description": "rate limited", "schema": {"$ref": "#/definitions/authsdk.AuthOutcome"}},
                    "500": {"description": "internal error", "schema": {"$ref": "#/definitions/authsdk.AuthOutcome"}}
                }
            }
        },
        "/api/profile": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Returns the account behind the bearer token.",
                "produces": ["application/json"],
                "tags": ["Accounts"],
                "summary": "Current profile",
                "responses": {
                    "200": {"description": "id, email, displayName", "schema": {"$ref": "#/definitions/authsdk.Profile"}},
                    "401": {"description": "missing, invalid or orphaned token", "schema": {"$ref": "#/definitions/authsdk.AuthOutcome"}},
                    "429": {"description": "rate limited", "schema": {"$ref": "#/definitions/authsdk.AuthOutcome"}}
                }
            }
        },
        "/livez": {
            "get": {
                "description": "Returns 200 with uptime and version while the process is running.",
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Liveness check",
                "responses": {
                    "200": {"description": "status, uptime, version", "schema": {"$ref": "#/definitions/authsdk.HealthResponse"}}
                }
            }
        },
        "/readyz": {
            "get": {
                "description": "Returns 200 when the account store answers, 503 otherwise.",
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "status, version", "schema": {"$ref": "#/definitions/authsdk.HealthResponse"}},
                    "503": {"description": "store unavailable", "schema": {"$ref": "#/definitions/authsdk.HealthResponse"}}
                }
            }
        }
    },
    "definitions": {
        "authsdk.AuthOutcome": {
            "type": "object",
            "properties": {
                "message": {"type": "string", "x-nullable": true},
                "success": {"type": "boolean"},
                "token": {"type": "string", "x-nullable": true}
            }
        },
        "authsdk.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "uptime": {"type": "string"},
                "version": {"type": "string"}
            }
        },
        "authsdk.LoginRequest": {
            "type": "object",
            "properties": {
                "identifier": {"type": "string"},
                "secret": {"type": "string"}
            }
        },
        "authsdk.Profile": {
            "type": "object",
            "properties": {
                "displayName": {"type": "string"},
                "email": {"type": "string"},
                "id": {"type": "string"}
            }
        },
        "authsdk.RegisterRequest": {
            "type": "object",
            "properties": {
                "displayName": {"type": "string"},
                "identifier": {"type": "string"},
                "secret": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Access token from login or register. Format: \"Bearer {token}\".",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "0.1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Newsick Development Gateway API",
	Description:      "Stand-in for the Newsick account backend: login, registration and profile. Tokens are EdDSA signed JWTs; clients treat them as opaque.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
