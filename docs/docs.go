// Package docs holds the OpenAPI description served at /swagger.
package docs

import "github.com/swaggo/swag/v2"

const docTemplate = `{
	"schemes": {{ marshal .Schemes }},
	"swagger": "2.0",
	"info": {
		"description": "{{escape .Description}}",
		"title": "{{.Title}}",
		"contact": {
			"name": "API Support",
			"url": "https://github.com/procurement/backend"
		},
		"version": "{{.Version}}"
	},
	"host": "{{.Host}}",
	"basePath": "{{.BasePath}}",
	"paths": {
		"/auth/login": {
			"post": {
				"tags": [
					"Auth"
				],
				"summary": "Sign in with email and password",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"type": "object"
						}
					}
				]
			}
		},
		"/auth/refresh": {
			"post": {
				"tags": [
					"Auth"
				],
				"summary": "Exchange a refresh token for a new token pair",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"type": "object"
						}
					}
				]
			}
		},
		"/auth/logout": {
			"post": {
				"tags": [
					"Auth"
				],
				"summary": "Revoke the current access token",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/auth/me": {
			"get": {
				"tags": [
					"Auth"
				],
				"summary": "Current user",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/requests": {
			"post": {
				"tags": [
					"Requests"
				],
				"summary": "Create a material request (YC)",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					},
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"type": "object"
						}
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			},
			"get": {
				"tags": [
					"Requests"
				],
				"summary": "List material requests",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/requests/check-quota": {
			"post": {
				"tags": [
					"Quotas"
				],
				"summary": "Check request lines against project quotas",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"type": "object"
						}
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/requests/{id}": {
			"get": {
				"tags": [
					"Requests"
				],
				"summary": "Get a material request",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					}
				},
				"parameters": [
					{
						"type": "string",
						"description": "id",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/requests/{id}/approve": {
			"post": {
				"tags": [
					"Requests"
				],
				"summary": "Approve or reject the current approval level",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "id",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"type": "object"
						}
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/quotas": {
			"post": {
				"tags": [
					"Quotas"
				],
				"summary": "Create or update a material quota",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					},
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"type": "object"
						}
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			},
			"get": {
				"tags": [
					"Quotas"
				],
				"summary": "List quotas",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/quotas/project/{projectId}": {
			"get": {
				"tags": [
					"Quotas"
				],
				"summary": "List quotas of a project",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					}
				},
				"parameters": [
					{
						"type": "string",
						"description": "projectId",
						"name": "projectId",
						"in": "path",
						"required": true
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/quotas/{id}": {
			"delete": {
				"tags": [
					"Quotas"
				],
				"summary": "Delete a quota",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					}
				},
				"parameters": [
					{
						"type": "string",
						"description": "id",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/stock/check": {
			"post": {
				"tags": [
					"Stock"
				],
				"summary": "Check stock for an approved request",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"type": "object"
						}
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/stock": {
			"get": {
				"tags": [
					"Stock"
				],
				"summary": "List stock issues",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			},
			"post": {
				"tags": [
					"Stock"
				],
				"summary": "Issue stock for a request",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"type": "object"
						}
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/stock/request/{requestId}": {
			"get": {
				"tags": [
					"Stock"
				],
				"summary": "Stock issues of a request",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					}
				},
				"parameters": [
					{
						"type": "string",
						"description": "requestId",
						"name": "requestId",
						"in": "path",
						"required": true
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/stock/{id}/receive": {
			"post": {
				"tags": [
					"Stock"
				],
				"summary": "Confirm receipt of issued stock",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "id",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"type": "object"
						}
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/materials": {
			"get": {
				"tags": [
					"Stock"
				],
				"summary": "List materials with stock levels",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/materials/{id}/restock": {
			"post": {
				"tags": [
					"Stock"
				],
				"summary": "Add stock to a material",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "id",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"type": "object"
						}
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/rfqs/check-stock": {
			"post": {
				"tags": [
					"Sourcing"
				],
				"summary": "Lines of a request that need purchasing",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"type": "object"
						}
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/rfqs": {
			"post": {
				"tags": [
					"Sourcing"
				],
				"summary": "Create an RFQ and invite suppliers",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					},
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"type": "object"
						}
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			},
			"get": {
				"tags": [
					"Sourcing"
				],
				"summary": "List RFQs",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/rfqs/{id}": {
			"get": {
				"tags": [
					"Sourcing"
				],
				"summary": "Get an RFQ",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					}
				},
				"parameters": [
					{
						"type": "string",
						"description": "id",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/rfqs/{id}/comparison.xlsx": {
			"get": {
				"tags": [
					"Sourcing"
				],
				"summary": "Quotation comparison workbook",
				"produces": [
					"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
				],
				"responses": {
					"200": {
						"description": "Excel workbook",
						"schema": {
							"type": "file"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					}
				},
				"parameters": [
					{
						"type": "string",
						"description": "id",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/quotations": {
			"post": {
				"tags": [
					"Sourcing"
				],
				"summary": "Submit a supplier quotation",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					},
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"type": "object"
						}
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			},
			"get": {
				"tags": [
					"Sourcing"
				],
				"summary": "List quotations",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/quotations/rfq/{rfqId}": {
			"get": {
				"tags": [
					"Sourcing"
				],
				"summary": "Quotations of an RFQ",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					}
				},
				"parameters": [
					{
						"type": "string",
						"description": "rfqId",
						"name": "rfqId",
						"in": "path",
						"required": true
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/quotations/{id}/select": {
			"post": {
				"tags": [
					"Sourcing"
				],
				"summary": "Select the winning quotation",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "id",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"type": "object"
						}
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/purchase-orders": {
			"post": {
				"tags": [
					"Purchase Orders"
				],
				"summary": "Create a PO from the selected quotation",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					},
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"type": "object"
						}
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			},
			"get": {
				"tags": [
					"Purchase Orders"
				],
				"summary": "List purchase orders",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/purchase-orders/export.xlsx": {
			"get": {
				"tags": [
					"Purchase Orders"
				],
				"summary": "Export purchase orders",
				"produces": [
					"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
				],
				"responses": {
					"200": {
						"description": "Excel workbook",
						"schema": {
							"type": "file"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/purchase-orders/{id}": {
			"get": {
				"tags": [
					"Purchase Orders"
				],
				"summary": "Get a purchase order",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					}
				},
				"parameters": [
					{
						"type": "string",
						"description": "id",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/purchase-orders/{id}/approve": {
			"post": {
				"tags": [
					"Purchase Orders"
				],
				"summary": "Approve or reject the current approval level",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "id",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"type": "object"
						}
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/purchase-orders/{id}/send": {
			"post": {
				"tags": [
					"Purchase Orders"
				],
				"summary": "Send an approved PO to the supplier",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "id",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"type": "object"
						}
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/purchase-orders/{id}/cancel": {
			"post": {
				"tags": [
					"Purchase Orders"
				],
				"summary": "Cancel a purchase order",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "id",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"type": "object"
						}
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/deliveries": {
			"post": {
				"tags": [
					"Delivery"
				],
				"summary": "Record goods received on site",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					},
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"type": "object"
						}
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/deliveries/po/{poId}": {
			"get": {
				"tags": [
					"Delivery"
				],
				"summary": "Delivery record of a PO",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					}
				},
				"parameters": [
					{
						"type": "string",
						"description": "poId",
						"name": "poId",
						"in": "path",
						"required": true
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/deliveries/{poId}/photos": {
			"post": {
				"tags": [
					"Delivery"
				],
				"summary": "Upload a delivery photo",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					},
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					}
				},
				"consumes": [
					"multipart/form-data"
				],
				"parameters": [
					{
						"type": "string",
						"description": "poId",
						"name": "poId",
						"in": "path",
						"required": true
					},
					{
						"type": "file",
						"description": "JPEG or PNG, at most 10MB",
						"name": "file",
						"in": "formData",
						"required": true
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/payments": {
			"post": {
				"tags": [
					"Payments"
				],
				"summary": "Create a payment with an UNC number",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					},
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"type": "object"
						}
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/payments/check-documents": {
			"post": {
				"tags": [
					"Payments"
				],
				"summary": "Check the documents a payment needs",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"type": "object"
						}
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/payments/{id}/approve": {
			"post": {
				"tags": [
					"Payments"
				],
				"summary": "Approve or reject a payment",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "id",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"type": "object"
						}
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/payments/po/{poId}": {
			"get": {
				"tags": [
					"Payments"
				],
				"summary": "Payment of a PO",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					}
				},
				"parameters": [
					{
						"type": "string",
						"description": "poId",
						"name": "poId",
						"in": "path",
						"required": true
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/tracking": {
			"post": {
				"tags": [
					"Tracking"
				],
				"summary": "Record a tracking event",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					},
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"type": "object"
						}
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/tracking/po/{poId}": {
			"get": {
				"tags": [
					"Tracking"
				],
				"summary": "Tracking history of a PO",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					}
				},
				"parameters": [
					{
						"type": "string",
						"description": "poId",
						"name": "poId",
						"in": "path",
						"required": true
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/tracking/check-delays": {
			"post": {
				"tags": [
					"Tracking"
				],
				"summary": "Flag overdue purchase orders",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"type": "object"
						}
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/evaluations": {
			"post": {
				"tags": [
					"Evaluations"
				],
				"summary": "Rate a supplier for a completed PO",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					},
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"type": "object"
						}
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/evaluations/supplier/{supplierId}": {
			"get": {
				"tags": [
					"Evaluations"
				],
				"summary": "Evaluations of a supplier",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					}
				},
				"parameters": [
					{
						"type": "string",
						"description": "supplierId",
						"name": "supplierId",
						"in": "path",
						"required": true
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/notifications": {
			"get": {
				"tags": [
					"Notifications"
				],
				"summary": "Inbox of the current user",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/notifications/read-all": {
			"patch": {
				"tags": [
					"Notifications"
				],
				"summary": "Mark every notification read",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/notifications/{id}/read": {
			"patch": {
				"tags": [
					"Notifications"
				],
				"summary": "Mark a notification read",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					}
				},
				"parameters": [
					{
						"type": "string",
						"description": "id",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/health": {
			"get": {
				"tags": [
					"System"
				],
				"summary": "Dependency health",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/dto.Response"
						}
					}
				}
			}
		}
	},
	"definitions": {
		"dto.Response": {
			"type": "object",
			"properties": {
				"success": {
					"type": "boolean"
				},
				"data": {},
				"error": {
					"$ref": "#/definitions/dto.ErrorInfo"
				},
				"meta": {
					"$ref": "#/definitions/dto.Meta"
				}
			}
		},
		"dto.ErrorInfo": {
			"type": "object",
			"properties": {
				"code": {
					"type": "string",
					"example": "ERR_VALIDATION"
				},
				"message": {
					"type": "string"
				},
				"request_id": {
					"type": "string"
				},
				"details": {
					"type": "object",
					"additionalProperties": true
				},
				"fields": {
					"type": "array",
					"items": {
						"$ref": "#/definitions/dto.ValidationDetail"
					}
				}
			}
		},
		"dto.ValidationDetail": {
			"type": "object",
			"properties": {
				"field": {
					"type": "string"
				},
				"message": {
					"type": "string"
				}
			}
		},
		"dto.Meta": {
			"type": "object",
			"properties": {
				"total": {
					"type": "integer"
				},
				"page": {
					"type": "integer"
				},
				"page_size": {
					"type": "integer"
				},
				"total_pages": {
					"type": "integer"
				}
			}
		}
	},
	"securityDefinitions": {
		"BearerAuth": {
			"description": "Bearer token authentication. Format: \"Bearer {token}\"",
			"type": "apiKey",
			"name": "Authorization",
			"in": "header"
		}
	}
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Construction Procurement API",
	Description:      "Material requests, quotas, stock, RFQs, purchase orders, delivery and payment for construction sites.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
