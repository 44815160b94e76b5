package openapi

import (
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// GenerateSpec builds the OpenAPI 3.1 document for the Ozone public
// surface: the /v1 data gateway plus the /api/v1 site and dashboard API.
func GenerateSpec(baseURL string, gatewayEndpoints []string) *openapi3.T {
	doc := &openapi3.T{
		OpenAPI: "3.1.0",
		Info: &openapi3.Info{
			Title:       "LEAP Ozone API",
			Description: "REST API for the Ozone model catalog, benchmark data, and account key management.",
			Version:     "1.0.0",
		},
		Servers: openapi3.Servers{
			{URL: baseURL},
		},
	}

	components := openapi3.NewComponents()
	components.Schemas = openapi3.Schemas{}
	components.SecuritySchemes = openapi3.SecuritySchemes{}
	doc.Components = &components

	doc.Components.SecuritySchemes["apiKey"] = &openapi3.SecuritySchemeRef{
		Value: &openapi3.SecurityScheme{
			Type: "apiKey",
			In:   "header",
			Name: "x-api-key",
		},
	}
	doc.Components.SecuritySchemes["bearerAuth"] = &openapi3.SecuritySchemeRef{
		Value: &openapi3.SecurityScheme{
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "JWT",
		},
	}

	doc.Paths = openapi3.NewPaths()
	registerSchemas(doc)

	for _, name := range gatewayEndpoints {
		addGatewayPath(doc, name)
	}
	addAuthPaths(doc)
	addKeyPaths(doc)
	addSitePaths(doc)

	return doc
}

func registerSchemas(doc *openapi3.T) {
	doc.Components.Schemas["ErrorResponse"] = &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type: &openapi3.Types{"object"},
			Properties: openapi3.Schemas{
				"error": &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"string"}}},
				"available_endpoints": &openapi3.SchemaRef{
					Value: &openapi3.Schema{
						Type:  &openapi3.Types{"array"},
						Items: &openapi3.SchemaRef{Value: openapi3.NewStringSchema()},
					},
				},
			},
		},
	}

	doc.Components.Schemas["Model"] = &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type: &openapi3.Types{"object"},
			Properties: openapi3.Schemas{
				"id":                 stringProp(),
				"name":               stringProp(),
				"version":            stringProp(),
				"model_type":         stringProp(),
				"description":        stringProp(),
				"performance_score":  numberProp(),
				"energy_efficiency":  numberProp(),
				"training_data_size": intProp("int64"),
				"is_active":          boolProp(),
				"created_at":         &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"string"}, Format: "date-time"}},
				"updated_at":         &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"string"}, Format: "date-time"}},
			},
		},
	}

	doc.Components.Schemas["BenchmarkResult"] = &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type: &openapi3.Types{"object"},
			Properties: openapi3.Schemas{
				"id":          stringProp(),
				"model_id":    stringProp(),
				"suite_id":    stringProp(),
				"metric_name": stringProp(),
				"value":       numberProp(),
				"unit":        stringProp(),
				"test_date":   &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"string"}, Format: "date-time"}},
				"is_verified": boolProp(),
				"model": &openapi3.SchemaRef{
					Value: &openapi3.Schema{
						Type: &openapi3.Types{"object"},
						Properties: openapi3.Schemas{
							"name":    stringProp(),
							"version": stringProp(),
						},
					},
				},
				"suite": &openapi3.SchemaRef{
					Value: &openapi3.Schema{
						Type: &openapi3.Types{"object"},
						Properties: openapi3.Schemas{
							"name":     stringProp(),
							"category": stringProp(),
						},
					},
				},
			},
		},
	}

	doc.Components.Schemas["StatusResponse"] = &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type: &openapi3.Types{"object"},
			Properties: openapi3.Schemas{
				"status":        stringProp(),
				"version":       stringProp(),
				"ozone_version": stringProp(),
				"api_version":   stringProp(),
				"user_id":       stringProp(),
				"permissions": &openapi3.SchemaRef{
					Value: &openapi3.Schema{
						Type:  &openapi3.Types{"array"},
						Items: &openapi3.SchemaRef{Value: openapi3.NewStringSchema()},
					},
				},
				"usage": &openapi3.SchemaRef{
					Value: &openapi3.Schema{
						Type: &openapi3.Types{"object"},
						Properties: openapi3.Schemas{
							"current": intProp("int64"),
							"limit":   intProp("int64"),
						},
					},
				},
			},
		},
	}

	doc.Components.Schemas["APIKey"] = &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type: &openapi3.Types{"object"},
			Properties: openapi3.Schemas{
				"id":           stringProp(),
				"user_id":      stringProp(),
				"name":         stringProp(),
				"key_prefix":   stringProp(),
				"permissions":  objectProp(),
				"rate_limit":   intProp("int64"),
				"usage_count":  intProp("int64"),
				"is_active":    boolProp(),
				"expires_at":   &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"string"}, Format: "date-time"}},
				"last_used_at": &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"string"}, Format: "date-time"}},
				"created_at":   &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"string"}, Format: "date-time"}},
			},
		},
	}
}

// addGatewayPath adds one GET /v1/{endpoint} operation secured by the
// API key header.
func addGatewayPath(doc *openapi3.T, endpoint string) {
	var schemaRef *openapi3.SchemaRef
	var desc string
	switch endpoint {
	case "models":
		schemaRef = listSchema("#/components/schemas/Model", endpoint)
		desc = "List active Ozone models."
	case "benchmarks":
		schemaRef = listSchema("#/components/schemas/BenchmarkResult", endpoint)
		desc = "List verified benchmark results with model and suite details."
	case "status":
		schemaRef = openapi3.NewSchemaRef("#/components/schemas/StatusResponse", nil)
		desc = "Report gateway status and the calling key's usage."
	default:
		schemaRef = &openapi3.SchemaRef{Value: openapi3.NewObjectSchema()}
		desc = fmt.Sprintf("Fetch %s data.", endpoint)
	}

	op := &openapi3.Operation{
		OperationID: "get" + capitalize(endpoint),
		Summary:     desc,
		Tags:        []string{"gateway"},
		Security:    &openapi3.SecurityRequirements{{"apiKey": {}}},
		Responses:   newResponses("200", desc, schemaRef),
	}
	op.Responses.Set("429", errorResponse("Rate limit exceeded"))
	if endpoint != "status" {
		op.Responses.Set("403", errorResponse("Missing permission"))
	}

	doc.Paths.Set("/v1/"+endpoint, &openapi3.PathItem{Get: op})
}

func addAuthPaths(doc *openapi3.T) {
	loginBody := &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type:     &openapi3.Types{"object"},
			Required: []string{"email", "password"},
			Properties: openapi3.Schemas{
				"email":    stringProp(),
				"password": stringProp(),
			},
		},
	}
	loginResp := &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type: &openapi3.Types{"object"},
			Properties: openapi3.Schemas{
				"token":      stringProp(),
				"account_id": stringProp(),
				"email":      stringProp(),
				"expires_in": intProp("int64"),
			},
		},
	}

	doc.Paths.Set("/api/v1/auth/login", &openapi3.PathItem{
		Post: &openapi3.Operation{
			OperationID: "login",
			Summary:     "Exchange account credentials for a session token.",
			Tags:        []string{"auth"},
			RequestBody: jsonBody(loginBody),
			Responses:   newResponses("200", "Session token issued", loginResp),
		},
	})
}

func addKeyPaths(doc *openapi3.T) {
	keyRef := openapi3.NewSchemaRef("#/components/schemas/APIKey", nil)
	bearer := &openapi3.SecurityRequirements{{"bearerAuth": {}}}

	createBody := &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type:     &openapi3.Types{"object"},
			Required: []string{"name"},
			Properties: openapi3.Schemas{
				"name": stringProp(),
			},
		},
	}
	issuedRef := &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type: &openapi3.Types{"object"},
			Properties: openapi3.Schemas{
				"full_key": &openapi3.SchemaRef{
					Value: &openapi3.Schema{
						Type:        &openapi3.Types{"string"},
						Description: "Full API key. Shown once at creation and never retrievable again.",
					},
				},
			},
			AllOf: openapi3.SchemaRefs{keyRef},
		},
	}

	doc.Paths.Set("/api/v1/keys", &openapi3.PathItem{
		Get: &openapi3.Operation{
			OperationID: "listKeys",
			Summary:     "List the account's active API keys.",
			Tags:        []string{"keys"},
			Security:    bearer,
			Responses:   newResponses("200", "Key list", listSchema("#/components/schemas/APIKey", "")),
		},
		Post: &openapi3.Operation{
			OperationID: "createKey",
			Summary:     "Issue a new API key for the account.",
			Tags:        []string{"keys"},
			Security:    bearer,
			RequestBody: jsonBody(createBody),
			Responses:   newResponses("201", "Key issued", issuedRef),
		},
	})

	doc.Paths.Set("/api/v1/keys/{keyID}", &openapi3.PathItem{
		Parameters: openapi3.Parameters{
			&openapi3.ParameterRef{
				Value: openapi3.NewPathParameter("keyID").WithSchema(openapi3.NewStringSchema()),
			},
		},
		Delete: &openapi3.Operation{
			OperationID: "revokeKey",
			Summary:     "Permanently revoke an API key.",
			Tags:        []string{"keys"},
			Security:    bearer,
			Responses:   newResponses("200", "Key revoked", &openapi3.SchemaRef{Value: openapi3.NewObjectSchema()}),
		},
	})
}

func addSitePaths(doc *openapi3.T) {
	subscribeBody := &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type:     &openapi3.Types{"object"},
			Required: []string{"email"},
			Properties: openapi3.Schemas{
				"email":  stringProp(),
				"name":   stringProp(),
				"source": stringProp(),
			},
		},
	}
	doc.Paths.Set("/api/v1/newsletter", &openapi3.PathItem{
		Post: &openapi3.Operation{
			OperationID: "subscribe",
			Summary:     "Subscribe an email address to the newsletter.",
			Tags:        []string{"site"},
			RequestBody: jsonBody(subscribeBody),
			Responses:   newResponses("201", "Subscribed", &openapi3.SchemaRef{Value: openapi3.NewObjectSchema()}),
		},
	})

	contactBody := &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type:     &openapi3.Types{"object"},
			Required: []string{"name", "email"},
			Properties: openapi3.Schemas{
				"name":         stringProp(),
				"email":        stringProp(),
				"company":      stringProp(),
				"message":      stringProp(),
				"request_type": stringProp(),
			},
		},
	}
	doc.Paths.Set("/api/v1/contact", &openapi3.PathItem{
		Post: &openapi3.Operation{
			OperationID: "contact",
			Summary:     "Submit an access request.",
			Tags:        []string{"site"},
			RequestBody: jsonBody(contactBody),
			Responses:   newResponses("201", "Request recorded", &openapi3.SchemaRef{Value: openapi3.NewObjectSchema()}),
		},
	})
}

// ─── Response Helpers ───────────────────────────────────────────────────────

// newResponses builds a Responses map with a success response and standard
// error responses.
func newResponses(statusCode, description string, schema *openapi3.SchemaRef) *openapi3.Responses {
	responses := openapi3.NewResponses()

	successDesc := description
	responses.Set(statusCode, &openapi3.ResponseRef{
		Value: &openapi3.Response{
			Description: &successDesc,
			Content:     openapi3.NewContentWithJSONSchemaRef(schema),
		},
	})

	responses.Set("400", errorResponse("Bad request"))
	responses.Set("401", errorResponse("Unauthorized"))
	responses.Set("404", errorResponse("Not found"))
	responses.Set("500", errorResponse("Internal server error"))

	return responses
}

func errorResponse(description string) *openapi3.ResponseRef {
	desc := description
	errorRef := openapi3.NewSchemaRef("#/components/schemas/ErrorResponse", nil)
	return &openapi3.ResponseRef{
		Value: &openapi3.Response{
			Description: &desc,
			Content:     openapi3.NewContentWithJSONSchemaRef(errorRef),
		},
	}
}

func jsonBody(schema *openapi3.SchemaRef) *openapi3.RequestBodyRef {
	return &openapi3.RequestBodyRef{
		Value: &openapi3.RequestBody{
			Required: true,
			Content:  openapi3.NewContentWithJSONSchemaRef(schema),
		},
	}
}

// listSchema wraps an item schema ref in the standard list envelope.
func listSchema(itemRef, endpoint string) *openapi3.SchemaRef {
	meta := openapi3.Schemas{
		"count": intProp("int32"),
	}
	if endpoint != "" {
		meta["endpoint"] = stringProp()
	}
	return &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type: &openapi3.Types{"object"},
			Properties: openapi3.Schemas{
				"data": &openapi3.SchemaRef{
					Value: &openapi3.Schema{
						Type:  &openapi3.Types{"array"},
						Items: openapi3.NewSchemaRef(itemRef, nil),
					},
				},
				"meta": &openapi3.SchemaRef{
					Value: &openapi3.Schema{
						Type:       &openapi3.Types{"object"},
						Properties: meta,
					},
				},
			},
		},
	}
}

// ─── Schema Helpers ─────────────────────────────────────────────────────────

func stringProp() *openapi3.SchemaRef {
	return &openapi3.SchemaRef{Value: openapi3.NewStringSchema()}
}

func intProp(format string) *openapi3.SchemaRef {
	return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"integer"}, Format: format}}
}

func numberProp() *openapi3.SchemaRef {
	return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"number"}, Format: "double"}}
}

func boolProp() *openapi3.SchemaRef {
	return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"boolean"}}}
}

func objectProp() *openapi3.SchemaRef {
	return &openapi3.SchemaRef{Value: openapi3.NewObjectSchema()}
}

// capitalize returns a string with its first character uppercased.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
