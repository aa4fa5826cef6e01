package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Availability API",
        "description": "Overlays respondents' calendar busy blocks on availability event day windows.",
        "version": "0.1.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Events", "description": "Availability event definitions"},
        {"name": "Overlay", "description": "Busy blocks clipped onto event day windows"},
        {"name": "CalendarSources", "description": "Subscribed ICS feeds"},
        {"name": "Metrics", "description": "Instrumentation"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Liveness check",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check (postgres, redis)",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "A dependency is unreachable"}
                }
            }
        },
        "/metrics": {
            "get": {
                "tags": ["Metrics"],
                "summary": "Prometheus exposition",
                "produces": ["text/plain"],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/v1/metrics/summary": {
            "get": {
                "tags": ["Metrics"],
                "summary": "Instrumentation snapshot",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/v1/events": {
            "get": {
                "tags": ["Events"],
                "summary": "List the caller's events",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "type", "in": "query", "type": "string", "enum": ["SPECIFIC_DATES", "DAYS_OF_WEEK"]},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Events"],
                "summary": "Create an event",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateEventRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid event", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/events/{id}": {
            "get": {
                "tags": ["Events"],
                "summary": "Get an event",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Events"],
                "summary": "Delete an event",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"204": {"description": "Deleted"}, "404": {"description": "Not found"}}
            }
        },
        "/api/v1/events/{id}/overlay": {
            "get": {
                "tags": ["Overlay"],
                "summary": "Overlay the caller's busy blocks on an event",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "week_offset", "in": "query", "type": "integer", "description": "Weeks from the current week (DAYS_OF_WEEK events)"},
                    {"name": "tz", "in": "query", "type": "string", "description": "IANA timezone"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/OverlayEnvelope"}},
                    "400": {"description": "Invalid week_offset or tz", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Event not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "502": {"description": "No calendar source could be fetched", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/events/{id}/overlay/export": {
            "get": {
                "tags": ["Overlay"],
                "summary": "Download the caller's overlay as CSV or PDF",
                "security": [{"BearerAuth": []}],
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]},
                    {"name": "week_offset", "in": "query", "type": "integer"},
                    {"name": "tz", "in": "query", "type": "string"}
                ],
                "responses": {"200": {"description": "Rendered file", "schema": {"type": "file"}}}
            }
        },
        "/api/v1/overlay": {
            "post": {
                "tags": ["Overlay"],
                "summary": "Overlay caller-supplied busy blocks on an inline event",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ComputeOverlayRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/OverlayEnvelope"}},
                    "400": {"description": "Invalid event or busy block", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/calendar-sources": {
            "get": {
                "tags": ["CalendarSources"],
                "summary": "List calendar sources",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["CalendarSources"],
                "summary": "Subscribe to an ICS feed",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateCalendarSourceRequest"}}
                ],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/v1/calendar-sources/{id}": {
            "delete": {
                "tags": ["CalendarSources"],
                "summary": "Unsubscribe from an ICS feed",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"204": {"description": "Deleted"}, "404": {"description": "Not found"}}
            }
        }
    },
    "definitions": {
        "CreateEventRequest": {
            "type": "object",
            "required": ["name", "type", "dates", "duration"],
            "properties": {
                "name": {"type": "string"},
                "type": {"type": "string", "enum": ["SPECIFIC_DATES", "DAYS_OF_WEEK"]},
                "dates": {"type": "array", "maxItems": 366, "items": {"type": "string", "format": "date-time"}},
                "duration": {"type": "number", "description": "Window length in hours"}
            }
        },
        "CreateCalendarSourceRequest": {
            "type": "object",
            "required": ["name", "url"],
            "properties": {
                "name": {"type": "string"},
                "url": {"type": "string", "description": "http(s) or webcal feed URL"}
            }
        },
        "RawBusyBlock": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "summary": {"type": "string"},
                "source_id": {"type": "string"},
                "all_day": {"type": "boolean"},
                "start_date": {"type": "string", "format": "date-time"},
                "end_date": {"type": "string", "format": "date-time"},
                "extra": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "ComputeOverlayRequest": {
            "type": "object",
            "required": ["event"],
            "properties": {
                "event": {
                    "type": "object",
                    "properties": {
                        "type": {"type": "string", "enum": ["SPECIFIC_DATES", "DAYS_OF_WEEK"]},
                        "dates": {"type": "array", "maxItems": 366, "items": {"type": "string", "format": "date-time"}},
                        "duration": {"type": "number"}
                    }
                },
                "busy_blocks": {"type": "array", "maxItems": 5000, "items": {"$ref": "#/definitions/RawBusyBlock"}},
                "week_offset": {"type": "integer"},
                "timezone": {"type": "string"},
                "now": {"type": "string", "format": "date-time"}
            }
        },
        "ClippedBusyBlock": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "summary": {"type": "string"},
                "source_id": {"type": "string"},
                "all_day": {"type": "boolean"},
                "start_date": {"type": "string", "format": "date-time"},
                "end_date": {"type": "string", "format": "date-time"},
                "hours_offset": {"type": "number"},
                "hours_length": {"type": "number"}
            }
        },
        "OverlayResponse": {
            "type": "object",
            "properties": {
                "event_id": {"type": "string"},
                "label": {"type": "string"},
                "timezone": {"type": "string"},
                "week_offset": {"type": "integer"},
                "time_min": {"type": "string", "format": "date-time"},
                "time_max": {"type": "string", "format": "date-time"},
                "days": {"type": "array", "items": {"type": "array", "items": {"$ref": "#/definitions/ClippedBusyBlock"}}},
                "total": {"type": "integer"}
            }
        },
        "OverlayEnvelope": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/OverlayResponse"},
                "meta": {"type": "object"}
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
                "status": {"type": "integer"}
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
