package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers the API documentation endpoints.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg gin.IRouter) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>author-service - Swagger</title>
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

const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "author-service", "version": "v1.0.0" },
  "components": {
    "schemas": {
      "Error": { "type": "object", "properties": { "error": {"type":"string"}, "code": {"type":"string"}, "request_id": {"type":"string"} } },
      "InsertResult": { "type": "object", "properties": { "acknowledged": {"type":"boolean"}, "insertedId": {"type":"string"} } },
      "DeleteResult": { "type": "object", "properties": { "acknowledged": {"type":"boolean"}, "deletedCount": {"type":"integer"} } },
      "UpdateResult": { "type": "object", "properties": { "acknowledged": {"type":"boolean"}, "matchedCount": {"type":"integer"}, "modifiedCount": {"type":"integer"}, "upsertedCount": {"type":"integer"}, "upsertedId": {"type":"string","nullable":true} } }
    },
    "parameters": {
      "id": { "name": "id", "in": "path", "required": true, "schema": { "type": "string", "pattern": "^[0-9a-fA-F]{24}$" } }
    }
  },
  "paths": {
    "/author": {
      "get": {
        "summary": "List one page of authors sorted by author",
        "parameters": [ { "name": "p", "in": "query", "schema": { "type": "integer", "minimum": 0 } } ],
        "responses": { "200": { "description": "page of documents" }, "400": { "description": "invalid page" }, "502": { "description": "store failure" } }
      },
      "post": {
        "summary": "Create an author; the body is stored under the author field",
        "requestBody": { "content": { "application/json": { "schema": { "type": "object" } } } },
        "responses": { "200": { "description": "created", "content": { "application/json": { "schema": { "$ref": "#/components/schemas/InsertResult" } } } }, "400": { "description": "body is not an object" } }
      }
    },
    "/author/{id}": {
      "get": {
        "summary": "Fetch one author",
        "parameters": [ { "$ref": "#/components/parameters/id" } ],
        "responses": { "200": { "description": "document" }, "400": { "description": "invalid id" }, "404": { "description": "not found" } }
      },
      "delete": {
        "summary": "Delete one author",
        "parameters": [ { "$ref": "#/components/parameters/id" } ],
        "responses": { "200": { "description": "deleted", "content": { "application/json": { "schema": { "$ref": "#/components/schemas/DeleteResult" } } } }, "400": { "description": "invalid id" } }
      },
      "patch": {
        "summary": "Set the given fields on one author; never creates",
        "parameters": [ { "$ref": "#/components/parameters/id" } ],
        "requestBody": { "content": { "application/json": { "schema": { "type": "object" } } } },
        "responses": { "200": { "description": "updated", "content": { "application/json": { "schema": { "$ref": "#/components/schemas/UpdateResult" } } } }, "400": { "description": "invalid id or body" } }
      }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } },
    "/metrics": { "get": { "summary": "Prometheus metrics", "responses": { "200": { "description": "metrics" } } } }
  }
}`
