package handlers

import (
	"fmt"
	"net/http"

	"github.com/Bernard-Otieno/ai-doc-assistant/internal/util"
)

// HealthHandler handles GET /health requests
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	util.WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "ai-doc-assistant",
	})
}

// OpenAPIHandler serves the OpenAPI 3.0 document at GET /openapi.json
func OpenAPIHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, openAPISpec)
}

// DocsHandler serves the Redoc UI at GET /docs
func DocsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, redocHTML)
}

const openAPISpec = `{
  "openapi": "3.0.3",
  "info": {
    "title": "AI Document Assistant API",
    "description": "Upload PDF, DOCX or text documents and review grammar suggestions one by one.",
    "version": "1.0.0"
  },
  "components": {
    "securitySchemes": {
      "bearer": { "type": "http", "scheme": "bearer", "bearerFormat": "JWT" },
      "cookie": { "type": "apiKey", "in": "cookie", "name": "doc_session" }
    },
    "schemas": {
      "Document": {
        "type": "object",
        "properties": {
          "id":           { "type": "string", "format": "uuid" },
          "session_id":   { "type": "string" },
          "file_name":    { "type": "string" },
          "content_type": { "type": "string" },
          "storage_url":  { "type": "string" },
          "size_bytes":   { "type": "integer" },
          "status":       { "type": "string", "enum": ["uploaded", "processing", "ready", "failed", "superseded"] },
          "created_at":   { "type": "string", "format": "date-time" },
          "updated_at":   { "type": "string", "format": "date-time" }
        }
      },
      "Segment": {
        "type": "object",
        "required": ["kind"],
        "properties": {
          "kind":        { "type": "string", "enum": ["text", "suggestion", "notice"] },
          "text":        { "type": "string", "description": "literal text (text) or message (notice)" },
          "id":          { "type": "integer", "description": "suggestion id, sequential from 0; present only when kind is suggestion" },
          "original":    { "type": "string" },
          "replacement": { "type": "string" },
          "decision":    { "type": "string", "enum": ["undecided", "accepted", "rejected"] },
          "message":     { "type": "string" }
        }
      },
      "Review": {
        "type": "object",
        "properties": {
          "generation":   { "type": "integer" },
          "status":       { "type": "string", "enum": ["idle", "loading", "ready", "error"] },
          "document_id":  { "type": "string" },
          "file_name":    { "type": "string" },
          "content_type": { "type": "string" },
          "text":         { "type": "string" },
          "warning":      { "type": "string" },
          "segments":     { "type": "array", "items": { "$ref": "#/components/schemas/Segment" } },
          "updated_at":   { "type": "string", "format": "date-time" }
        }
      }
    }
  },
  "security": [ { "bearer": [] }, { "cookie": [] } ],
  "paths": {
    "/api/session": {
      "post": {
        "summary": "Start an anonymous session",
        "security": [],
        "responses": {
          "201": {
            "description": "session token",
            "content": { "application/json": { "example": { "token": "eyJ...", "session_id": "9b1d...", "expires_at": "2025-01-02T00:00:00Z" } } }
          }
        }
      }
    },
    "/api/documents/upload": {
      "post": {
        "summary": "Upload a .txt, .docx or .pdf file",
        "requestBody": {
          "required": true,
          "content": { "multipart/form-data": { "schema": { "type": "object", "properties": { "file": { "type": "string", "format": "binary" } } } } }
        },
        "responses": {
          "202": { "description": "queued for review" },
          "400": { "description": "missing file field" },
          "413": { "description": "file too large" }
        }
      }
    },
    "/api/documents": {
      "get": {
        "summary": "Upload history of the session",
        "responses": { "200": { "content": { "application/json": { "schema": { "type": "array", "items": { "$ref": "#/components/schemas/Document" } } } }, "description": "documents, newest first" } }
      }
    },
    "/api/review": {
      "get": {
        "summary": "Current review",
        "responses": { "200": { "description": "review", "content": { "application/json": { "schema": { "$ref": "#/components/schemas/Review" } } } } }
      }
    },
    "/api/review/view": {
      "get": { "summary": "Suggestion panel as HTML", "responses": { "200": { "description": "HTML fragment" } } }
    },
    "/api/review/improved": {
      "get": { "summary": "Text with accepted suggestions applied", "responses": { "200": { "description": "plain text" } } }
    },
    "/api/review/preview": {
      "get": {
        "summary": "Visual preview of the uploaded document",
        "responses": {
          "200": { "description": "sanitized HTML for text and DOCX, the original bytes for PDF" },
          "404": { "description": "nothing uploaded yet" }
        }
      }
    },
    "/api/review/suggestions/{id}/accept": {
      "post": {
        "summary": "Accept a suggestion",
        "parameters": [ { "name": "id", "in": "path", "required": true, "schema": { "type": "integer" } } ],
        "responses": {
          "200": { "description": "updated segment", "content": { "application/json": { "schema": { "$ref": "#/components/schemas/Segment" } } } },
          "404": { "description": "no suggestion with that id" }
        }
      }
    },
    "/api/review/suggestions/{id}/reject": {
      "post": {
        "summary": "Reject a suggestion",
        "parameters": [ { "name": "id", "in": "path", "required": true, "schema": { "type": "integer" } } ],
        "responses": {
          "200": { "description": "updated segment", "content": { "application/json": { "schema": { "$ref": "#/components/schemas/Segment" } } } },
          "404": { "description": "no suggestion with that id" }
        }
      }
    },
    "/health": {
      "get": {
        "summary": "Health",
        "security": [],
        "responses": { "200": { "description": "service up", "content": { "application/json": { "example": { "status": "ok", "service": "ai-doc-assistant" } } } } }
      }
    }
  }
}`

const redocHTML = `<!DOCTYPE html>
<html>
<head>
  <title>AI Document Assistant API Docs</title>
  <meta charset="utf-8"/>
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <style>body { margin: 0; padding: 0; }</style>
</head>
<body>
  <redoc spec-url="/openapi.json" expand-responses="200" hide-download-button></redoc>
  <script src="https://cdn.jsdelivr.net/npm/redoc@latest/bundles/redoc.standalone.js"></script>
</body>
</html>`
