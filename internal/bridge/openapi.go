package bridge

// OpenAPIDocument returns the bridge's hand-assembled OpenAPI 3.0.3
// description of its client-facing surface (/metrics is operational
// and left out). The document is a literal rather than the output of
// a codegen pipeline; the surface is small and changes with the code
// that serves it.
func OpenAPIDocument() map[string]any {
	return map[string]any{
		"openapi": "3.0.3",
		"info": map[string]any{
			"title":       "MCP HTTP Bridge",
			"description": "REST-ish bridge over an MCP server's JSON-RPC surface",
			"version":     "1.0.0",
		},
		"paths": map[string]any{
			"/health": map[string]any{
				"get": map[string]any{
					"summary": "Health check",
					"responses": map[string]any{
						"200": map[string]any{
							"description": "Bridge is healthy",
							"content": map[string]any{
								"application/json": map[string]any{
									"schema": map[string]any{
										"type": "object",
										"properties": map[string]any{
											"status":  map[string]any{"type": "string"},
											"version": map[string]any{"type": "string"},
										},
									},
								},
							},
						},
					},
				},
			},
			"/tools": map[string]any{
				"get": map[string]any{
					"summary": "List the tool catalogue",
					"responses": map[string]any{
						"200": map[string]any{
							"description": "Tool catalogue",
							"content": map[string]any{
								"application/json": map[string]any{
									"schema": map[string]any{
										"type": "object",
										"properties": map[string]any{
											"tools": map[string]any{
												"type": "array",
												"items": map[string]any{
													"type": "object",
													"properties": map[string]any{
														"name":         map[string]any{"type": "string"},
														"description":  map[string]any{"type": "string"},
														"input_schema": map[string]any{"type": "object"},
													},
												},
											},
										},
									},
								},
							},
						},
						"500": map[string]any{"description": "Upstream MCP server failure"},
					},
				},
			},
			"/tools/call": map[string]any{
				"post": map[string]any{
					"summary": "Call a tool",
					"requestBody": map[string]any{
						"required": true,
						"content": map[string]any{
							"application/json": map[string]any{
								"schema": map[string]any{
									"type": "object",
									"properties": map[string]any{
										"tool_name": map[string]any{"type": "string"},
										"arguments": map[string]any{"type": "object"},
									},
									"required": []string{"tool_name"},
								},
							},
						},
					},
					"responses": map[string]any{
						"200": map[string]any{
							"description": "Tool call result; inspect the success field, not the HTTP status",
							"content": map[string]any{
								"application/json": map[string]any{
									"schema": map[string]any{
										"type": "object",
										"properties": map[string]any{
											"success": map[string]any{"type": "boolean"},
											"content": map[string]any{
												"type":     "array",
												"nullable": true,
												"items": map[string]any{
													"type": "object",
													"properties": map[string]any{
														"type": map[string]any{"type": "string"},
														"text": map[string]any{"type": "string"},
													},
												},
											},
											"error": map[string]any{"type": "string", "nullable": true},
										},
									},
								},
							},
						},
						"400": map[string]any{"description": "Malformed request body"},
					},
				},
			},
		},
	}
}
