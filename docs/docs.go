// Package docs holds the generated swagger specification.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/runs": {
            "get": {
                "produces": ["application/json"],
                "tags": ["runs"],
                "summary": "List runs",
                "description": "Get all pipeline runs with their current status, newest first",
                "responses": {
                    "200": {"description": "List of runs"},
                    "500": {"description": "Internal server error"}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["runs"],
                "summary": "Trigger a pipeline run",
                "description": "Fetch NHTSA complaint and recall data for a model year, build the feature table, upload it and submit a training job. Runs synchronously.",
                "parameters": [
                    {
                        "name": "params",
                        "in": "body",
                        "description": "Run parameters (all optional)",
                        "schema": {"$ref": "#/definitions/model.RunParams"}
                    }
                ],
                "responses": {
                    "200": {"description": "Training job submitted"},
                    "400": {"description": "Invalid request payload"},
                    "502": {"description": "Upstream or collaborator failure"}
                }
            }
        },
        "/runs/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["runs"],
                "summary": "Get run",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true, "description": "Run ID"}
                ],
                "responses": {
                    "200": {"description": "Run details"},
                    "404": {"description": "Run not found"}
                }
            }
        },
        "/runs/{id}/features": {
            "get": {
                "produces": ["application/json"],
                "tags": ["runs"],
                "summary": "Get run feature table",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true, "description": "Run ID"}
                ],
                "responses": {
                    "200": {"description": "Feature rows"},
                    "500": {"description": "Internal server error"}
                }
            }
        },
        "/runs/{id}/errors": {
            "get": {
                "produces": ["application/json"],
                "tags": ["runs"],
                "summary": "Get run errors",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true, "description": "Run ID"}
                ],
                "responses": {
                    "200": {"description": "Run errors"},
                    "500": {"description": "Internal server error"}
                }
            }
        },
        "/runs/{id}/stages": {
            "get": {
                "produces": ["application/json"],
                "tags": ["runs"],
                "summary": "Get run stages",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true, "description": "Run ID"}
                ],
                "responses": {
                    "200": {"description": "Run stages"},
                    "500": {"description": "Internal server error"}
                }
            }
        }
    },
    "definitions": {
        "model.RunParams": {
            "type": "object",
            "properties": {
                "bucket_name": {"type": "string", "example": "nhtsa-analytics"},
                "model_year": {"type": "integer", "example": 2020},
                "train_runtime": {"type": "integer", "example": 600},
                "train_instance": {"type": "string", "example": "ml.m5.large"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "NHTSA Pipeline API",
	Description:      "Trigger and inspect NHTSA complaint/recall training-data pipeline runs.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
