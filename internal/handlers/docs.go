package handlers

import (
	"encoding/json"
	"net/http"

	"climate-dashboard/internal/models"
)

func queryParam(name, description, typ string, required bool) map[string]interface{} {
	return map[string]interface{}{
		"name":        name,
		"in":          "query",
		"description": description,
		"required":    required,
		"schema":      map[string]string{"type": typ},
	}
}

func pathParam(name, description string) map[string]interface{} {
	return map[string]interface{}{
		"name":        name,
		"in":          "path",
		"description": description,
		"required":    true,
		"schema":      map[string]string{"type": "string"},
	}
}

func jsonResponse(description string, properties map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"description": description,
		"content": map[string]interface{}{
			"application/json": map[string]interface{}{
				"schema": map[string]interface{}{
					"type":       "object",
					"properties": properties,
				},
			},
		},
	}
}

func errorResponse(description string) map[string]interface{} {
	return jsonResponse(description, map[string]interface{}{
		"error":   map[string]string{"type": "string"},
		"message": map[string]string{"type": "string"},
		"code":    map[string]string{"type": "integer"},
	})
}

func arrayOf(items interface{}) map[string]interface{} {
	return map[string]interface{}{"type": "array", "items": items}
}

var (
	numberSchema  = map[string]string{"type": "number"}
	integerSchema = map[string]string{"type": "integer"}
	stringSchema  = map[string]string{"type": "string"}
	seedParam     = queryParam("seed", "Generator seed; omitted means a fresh seed that is echoed back", "integer", false)
)

// OpenAPISpec returns the OpenAPI 3.0 specification for the Climate Dashboard API
func OpenAPISpec(w http.ResponseWriter, r *http.Request) {
	runSchema := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"id":         map[string]string{"type": "string", "format": "uuid"},
			"kind":       map[string]interface{}{"type": "string", "enum": []string{"series", "field", "grid"}},
			"seed":       integerSchema,
			"year":       map[string]interface{}{"type": "integer", "nullable": true},
			"policy":     map[string]interface{}{"type": "string", "nullable": true},
			"hemisphere": map[string]interface{}{"type": "string", "nullable": true},
			"item_count": integerSchema,
			"payload":    map[string]string{"type": "object"},
			"created_at": map[string]string{"type": "string", "format": "date-time"},
		},
	}
	caseStudySchema := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"region":   stringSchema,
			"impact":   stringSchema,
			"response": stringSchema,
		},
	}

	spec := map[string]interface{}{
		"openapi": "3.0.0",
		"info": map[string]interface{}{
			"title":       "Climate Dashboard API",
			"description": "Synthetic sea level and temperature anomaly data with regional case studies",
			"version":     "1.0.0",
		},
		"servers": []map[string]string{
			{"url": "http://localhost:8080", "description": "Local development server"},
		},
		"paths": map[string]interface{}{
			"/api/sea-level": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Sea level rise series",
					"description": "Yearly cumulative sea level rise in millimetres, anchored at zero in the first year",
					"parameters": []map[string]interface{}{
						seedParam,
						queryParam("until", "Return only samples up to and including this year", "integer", false),
					},
					"responses": map[string]interface{}{
						"200": jsonResponse("Series", map[string]interface{}{
							"seed":       integerSchema,
							"start_year": integerSchema,
							"end_year":   integerSchema,
							"samples": arrayOf(map[string]interface{}{
								"type": "object",
								"properties": map[string]interface{}{
									"year":    integerSchema,
									"rise_mm": numberSchema,
								},
							}),
						}),
						"400": errorResponse("Invalid seed or year"),
					},
				},
			},
			"/api/anomalies/field": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Temperature anomaly point field",
					"description": "Scattered anomaly points whose density or magnitude grows with the selected year",
					"parameters": []map[string]interface{}{
						queryParam("year", "Selected year", "integer", true),
						queryParam("policy", "density or magnitude", "string", false),
						seedParam,
					},
					"responses": map[string]interface{}{
						"200": jsonResponse("Field", map[string]interface{}{
							"seed":             integerSchema,
							"year":             integerSchema,
							"policy":           stringSchema,
							"intensity_factor": numberSchema,
							"points": arrayOf(map[string]interface{}{
								"type": "object",
								"properties": map[string]interface{}{
									"lat":     numberSchema,
									"lon":     numberSchema,
									"anomaly": numberSchema,
								},
							}),
						}),
						"400": errorResponse("Invalid year, policy or seed"),
					},
				},
			},
			"/api/anomalies/grid": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Temperature anomaly grid",
					"description": "Latitude dependent anomaly mesh, optionally restricted to one hemisphere",
					"parameters": []map[string]interface{}{
						queryParam("hemisphere", "global, north or south", "string", false),
						queryParam("scale", "Map scale between 1 and 6, echoed back", "number", false),
						seedParam,
					},
					"responses": map[string]interface{}{
						"200": jsonResponse("Grid", map[string]interface{}{
							"seed":       integerSchema,
							"hemisphere": stringSchema,
							"scale":      numberSchema,
							"latitudes":  arrayOf(numberSchema),
							"longitudes": arrayOf(numberSchema),
							"values":     arrayOf(arrayOf(numberSchema)),
						}),
						"400": errorResponse("Invalid hemisphere, scale or seed"),
					},
				},
			},
			"/api/case-studies": map[string]interface{}{
				"get": map[string]interface{}{
					"summary": "List regional case studies",
					"responses": map[string]interface{}{
						"200": jsonResponse("Case studies", map[string]interface{}{
							"regions": arrayOf(stringSchema),
							"data":    arrayOf(caseStudySchema),
						}),
					},
				},
			},
			"/api/case-studies/{region}": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":    "Get one regional case study",
					"parameters": []map[string]interface{}{pathParam("region", "Exact region name")},
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Case study",
							"content": map[string]interface{}{
								"application/json": map[string]interface{}{"schema": caseStudySchema},
							},
						},
						"404": errorResponse("Unknown region"),
					},
				},
			},
			"/api/cache": map[string]interface{}{
				"get": map[string]interface{}{
					"summary": "Result cache statistics",
					"responses": map[string]interface{}{
						"200": jsonResponse("Stats", map[string]interface{}{
							"entries": integerSchema,
							"hits":    integerSchema,
							"misses":  integerSchema,
						}),
					},
				},
				"delete": map[string]interface{}{
					"summary": "Clear the result cache",
					"responses": map[string]interface{}{
						"200": jsonResponse("Cleared", map[string]interface{}{
							"removed": integerSchema,
						}),
					},
				},
			},
			"/api/runs": map[string]interface{}{
				"post": map[string]interface{}{
					"summary":     "Generate and archive a run",
					"description": "Requires the PostgreSQL archive to be enabled",
					"requestBody": map[string]interface{}{
						"required": true,
						"content": map[string]interface{}{
							"application/json": map[string]interface{}{
								"schema": map[string]interface{}{
									"type":     "object",
									"required": []string{"kind"},
									"properties": map[string]interface{}{
										"kind":       map[string]interface{}{"type": "string", "enum": []string{"series", "field", "grid"}},
										"seed":       integerSchema,
										"year":       integerSchema,
										"until":      integerSchema,
										"policy":     stringSchema,
										"hemisphere": stringSchema,
										"scale":      numberSchema,
									},
								},
							},
						},
					},
					"responses": map[string]interface{}{
						"201": map[string]interface{}{
							"description": "Archived run",
							"content": map[string]interface{}{
								"application/json": map[string]interface{}{"schema": runSchema},
							},
						},
						"400": errorResponse("Invalid request"),
						"503": errorResponse("Archive disabled"),
					},
				},
				"get": map[string]interface{}{
					"summary": "List archived runs",
					"parameters": []map[string]interface{}{
						queryParam("kind", "Filter by kind", "string", false),
						queryParam("page", "Page number (default: 1)", "integer", false),
						queryParam("limit", "Records per page (default: 100)", "integer", false),
					},
					"responses": map[string]interface{}{
						"200": jsonResponse("Runs", map[string]interface{}{
							"data":        arrayOf(runSchema),
							"total":       integerSchema,
							"page":        integerSchema,
							"limit":       integerSchema,
							"total_pages": integerSchema,
						}),
						"503": errorResponse("Archive disabled"),
					},
				},
			},
			"/api/runs/{id}": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":    "Get an archived run",
					"parameters": []map[string]interface{}{pathParam("id", "Run UUID")},
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Run",
							"content": map[string]interface{}{
								"application/json": map[string]interface{}{"schema": runSchema},
							},
						},
						"400": errorResponse("Malformed id"),
						"404": errorResponse("Unknown run"),
						"503": errorResponse("Archive disabled"),
					},
				},
			},
			"/health": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Health check",
					"description": "Reports degraded with 503 when the archive is enabled but unreachable",
					"responses": map[string]interface{}{
						"200": jsonResponse("API is healthy", map[string]interface{}{
							"status":  stringSchema,
							"archive": stringSchema,
						}),
						"503": jsonResponse("Archive unreachable", map[string]interface{}{
							"status":  stringSchema,
							"archive": stringSchema,
						}),
					},
				},
			},
			"/metrics": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Prometheus metrics",
					"description": "Prometheus metrics endpoint for monitoring",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Prometheus metrics in text format",
							"content": map[string]interface{}{
								"text/plain": map[string]interface{}{
									"schema": stringSchema,
								},
							},
						},
					},
				},
			},
		},
		"x-year-range": map[string]int{"min": models.MinYear, "max": models.MaxYear},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(spec)
}
