package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "TutorLink Matching API",
        "description": "Applicant ranking, tutor notification and application decisions for TutorLink.",
        "version": "1.0.0"
    },
    "basePath": "/api",
    "schemes": [
        "http",
        "https"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Matching", "description": "Applicant ranking and tutor notification"},
        {"name": "Applications", "description": "Tutor application decisions"},
        {"name": "Reviews", "description": "Review aggregates"}
    ],
    "paths": {
        "/matching/rank/{requestId}": {
            "get": {
                "tags": ["Matching"],
                "summary": "Rank pending applicants for a tutoring request",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "requestId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/RankingResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/matching/rank/{requestId}/refresh": {
            "post": {
                "tags": ["Matching"],
                "summary": "Queue a background re-rank",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "requestId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/RankRefreshResponse"}},
                    "503": {"description": "Queue unavailable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/matching/rank/{requestId}/export": {
            "get": {
                "tags": ["Matching"],
                "summary": "Download the applicant ranking",
                "produces": ["text/csv", "application/pdf"],
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "requestId", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File", "schema": {"type": "file"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/matching/notify/{requestId}": {
            "post": {
                "tags": ["Matching"],
                "summary": "Notify tutors whose expertise matches the request subject",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "requestId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/NotifyTutorsResponse"}}
                }
            }
        },
        "/applications/{id}/accept": {
            "post": {
                "tags": ["Applications"],
                "summary": "Accept a tutor application",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reviews/users/{userId}/rating": {
            "get": {
                "tags": ["Reviews"],
                "summary": "Get a user's average rating",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "userId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "MatchBreakdown": {
            "type": "object",
            "properties": {
                "expertise": {"type": "number"},
                "availability": {"type": "number"},
                "format": {"type": "number"},
                "budget": {"type": "number"},
                "weighted": {"type": "number"},
                "rating_bonus": {"type": "number"},
                "total": {"type": "number"}
            }
        },
        "RankedApplication": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "request_id": {"type": "string"},
                "tutor_profile_id": {"type": "string"},
                "match_score": {"type": "number"},
                "status": {"type": "string"},
                "created_at": {"type": "string", "format": "date-time"},
                "tutor_profile": {"type": "object"},
                "average_rating": {"type": "number"},
                "breakdown": {"$ref": "#/definitions/MatchBreakdown"}
            }
        },
        "RankingResponse": {
            "type": "object",
            "properties": {
                "requestId": {"type": "string"},
                "applicants": {"type": "array", "items": {"$ref": "#/definitions/RankedApplication"}}
            }
        },
        "RankRefreshResponse": {
            "type": "object",
            "properties": {
                "requestId": {"type": "string"},
                "jobId": {"type": "string"},
                "status": {"type": "string", "enum": ["QUEUED", "ALREADY_QUEUED"]}
            }
        },
        "NotifyTutorsResponse": {
            "type": "object",
            "properties": {
                "requestId": {"type": "string"},
                "notifiedCount": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
