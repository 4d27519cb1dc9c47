package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Civic Triage API",
        "description": "Civic complaint intake, moderation, duplicate detection and triage",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": ["http", "https"],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Complaints", "description": "Submission, reads, upvotes and comments"},
        {"name": "Triage", "description": "Ranking, duplicate detection and status lifecycle"},
        {"name": "Municipalities", "description": "Municipality listings, dashboard and register export"},
        {"name": "Reviews", "description": "Citizen feedback on resolved complaints"}
    ],
    "paths": {
        "/complaints": {
            "post": {
                "tags": ["Complaints"],
                "summary": "Submit a complaint through the moderation gate",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/SubmitComplaintRequest"}}
                ],
                "responses": {
                    "201": {"description": "Accepted as Pending", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation failed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "TRUST_TOO_LOW", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "REJECTED_LOW_URGENCY", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "get": {
                "tags": ["Complaints"],
                "summary": "List complaints newest first",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "query", "name": "municipality_id", "type": "string"},
                    {"in": "query", "name": "status", "type": "string", "enum": ["Pending", "In Progress", "Resolved", "Rejected"]},
                    {"in": "query", "name": "department", "type": "string"},
                    {"in": "query", "name": "mine", "type": "boolean"},
                    {"in": "query", "name": "page", "type": "integer"},
                    {"in": "query", "name": "page_size", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/complaints/ranked": {
            "get": {
                "tags": ["Triage"],
                "summary": "Open complaints ranked by score, eight per page",
                "parameters": [
                    {"in": "query", "name": "municipality_id", "type": "string"},
                    {"in": "query", "name": "page", "type": "integer", "minimum": 1}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid page", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/complaints/similar": {
            "post": {
                "tags": ["Triage"],
                "summary": "Find open complaints within 1 km that describe the same problem",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/SimilarQuery"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "MISSING_LOCATION_OR_MUNICIPALITY", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/complaints/{id}": {
            "get": {
                "tags": ["Complaints"],
                "summary": "Get a complaint with its comments",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/complaints/{id}/status": {
            "patch": {
                "tags": ["Triage"],
                "summary": "Move a complaint to a new status and record the activity",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "path", "name": "id", "required": true, "type": "string"},
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/UpdateStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "APPLIED or NO_CHANGE", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Official not assigned to the municipality", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Status changed concurrently", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/complaints/{id}/activities": {
            "get": {
                "tags": ["Triage"],
                "summary": "Status audit trail in creation order",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/complaints/{id}/upvote": {
            "post": {
                "tags": ["Complaints"],
                "summary": "Toggle the caller's upvote",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/complaints/{id}/comments": {
            "get": {
                "tags": ["Complaints"],
                "summary": "List comments newest first",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Complaints"],
                "summary": "Add a comment",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "path", "name": "id", "required": true, "type": "string"},
                    {"in": "body", "name": "payload", "required": true, "schema": {"type": "object", "properties": {"content": {"type": "string"}}}}
                ],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/municipalities/{id}/complaints": {
            "get": {
                "tags": ["Municipalities"],
                "summary": "List a municipality's complaints",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "path", "name": "id", "required": true, "type": "string"},
                    {"in": "query", "name": "page", "type": "integer"},
                    {"in": "query", "name": "page_size", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/municipalities/{id}/dashboard": {
            "get": {
                "tags": ["Municipalities"],
                "summary": "Cached municipality dashboard",
                "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/municipalities/{id}/complaints/export": {
            "get": {
                "tags": ["Municipalities"],
                "summary": "Export the complaint register",
                "produces": ["text/csv", "application/pdf"],
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "path", "name": "id", "required": true, "type": "string"},
                    {"in": "query", "name": "format", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File", "schema": {"type": "file"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reviews": {
            "post": {
                "tags": ["Reviews"],
                "summary": "Review a resolved complaint",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/CreateReviewRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already reviewed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reviews/mine": {
            "get": {
                "tags": ["Reviews"],
                "summary": "List the caller's reviews",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        }
    },
    "definitions": {
        "SubmitComplaintRequest": {
            "type": "object",
            "required": ["department", "topic", "description", "location", "latitude", "longitude"],
            "properties": {
                "municipality_id": {"type": "string"},
                "department": {"type": "string"},
                "topic": {"type": "string"},
                "description": {"type": "string"},
                "location": {"type": "string"},
                "latitude": {"type": "number"},
                "longitude": {"type": "number"},
                "media_url": {"type": "string"}
            }
        },
        "SimilarQuery": {
            "type": "object",
            "properties": {
                "latitude": {"type": "number"},
                "longitude": {"type": "number"},
                "description": {"type": "string"},
                "municipality_id": {"type": "string"}
            }
        },
        "UpdateStatusRequest": {
            "type": "object",
            "required": ["status"],
            "properties": {
                "status": {"type": "string", "enum": ["Pending", "In Progress", "Resolved", "Rejected"]},
                "remarks": {"type": "string"}
            }
        },
        "CreateReviewRequest": {
            "type": "object",
            "required": ["complaint_id", "rating"],
            "properties": {
                "complaint_id": {"type": "string"},
                "rating": {"type": "integer", "minimum": 1, "maximum": 5},
                "feedback": {"type": "string"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"},
                "details": {"type": "object"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
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
