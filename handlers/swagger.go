package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>doc-collab — Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

// Minimal OpenAPI document covering the HTTP surface. The websocket endpoint
// is listed informationally; Swagger UI cannot exercise it.
const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "doc-collab", "version": "v0.1.0" },
  "paths": {
    "/api/auth/register": {
      "post": {
        "summary": "Register a new user",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"email":{"type":"string"},"name":{"type":"string"},"password":{"type":"string"}}}}}},
        "responses": { "201": { "description": "user created, tokens returned" }, "409": { "description": "email already registered" } }
      }
    },
    "/api/auth/login": {
      "post": {
        "summary": "Login with email and password",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"email":{"type":"string"},"password":{"type":"string"}}}}}},
        "responses": { "200": { "description": "tokens returned" }, "401": { "description": "invalid credentials" } }
      }
    },
    "/api/auth/refresh": {
      "post": { "summary": "Exchange a refresh token for a new access token", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"refreshToken":{"type":"string"}}}}}}, "responses": { "200": { "description": "new tokens" }, "401": { "description": "invalid refresh" } } }
    },
    "/api/auth/logout": {
      "post": { "summary": "Invalidate a refresh token", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"refreshToken":{"type":"string"}}}}}}, "responses": { "200": { "description": "logged out" } } }
    },
    "/api/auth/me": {
      "get": { "summary": "Get the authenticated user", "responses": { "200": { "description": "user profile" }, "401": { "description": "missing or invalid token" } } }
    },
    "/api/documents": {
      "get": { "summary": "List documents the user owns or collaborates on", "responses": { "200": { "description": "document list" } } },
      "post": { "summary": "Create a document", "responses": { "201": { "description": "document created" } } }
    },
    "/api/documents/{id}": {
      "get": { "summary": "Fetch a document", "responses": { "200": { "description": "document" }, "403": { "description": "access denied" }, "404": { "description": "not found" } } },
      "patch": { "summary": "Update title or content (content updates record a version)", "responses": { "200": { "description": "updated document" } } },
      "delete": { "summary": "Delete a document and its history (owner only)", "responses": { "200": { "description": "deleted" } } }
    },
    "/api/documents/{id}/collaborators": {
      "post": { "summary": "Add a collaborator (owner only)", "responses": { "200": { "description": "collaborator added" } } }
    },
    "/api/documents/{id}/versions": {
      "get": { "summary": "List the document's version history, oldest first", "responses": { "200": { "description": "version list" } } }
    },
    "/api/documents/{id}/revert": {
      "post": { "summary": "Revert content to a version by index", "responses": { "200": { "description": "reverted document" }, "400": { "description": "index out of range" } } }
    },
    "/ws": {
      "get": { "summary": "Realtime collaboration websocket (token via ?token= or Authorization header)", "responses": { "101": { "description": "switching protocols" }, "401": { "description": "missing or invalid token" } } }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } }
  }
}`
