package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

var methodEnum = []string{"linear", "parabolic separable", "gaussian separable", "parabolic", "gaussian", "integer"}

// Properties shared by every tool that works on a scalar field.
func fieldProperties() map[string]interface{} {
	return map[string]interface{}{
		"path": map[string]interface{}{
			"type":        "string",
			"description": "Absolute path to the image file",
		},
		"channel": map[string]interface{}{
			"type":        "string",
			"enum":        []string{"luma", "lightness", "red", "green", "blue", "gray16"},
			"description": "Channel converted to the intensity field. Default luma",
		},
		"smooth_sigma": map[string]interface{}{
			"type":        "number",
			"description": "Optional Gaussian blur sigma applied before extracting the field. Default 0 (none)",
		},
	}
}

func withProperties(base map[string]interface{}, extra map[string]interface{}) map[string]interface{} {
	for k, v := range extra {
		base[k] = v
	}
	return base
}

func regionProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"x1": map[string]interface{}{"type": "integer"},
			"y1": map[string]interface{}{"type": "integer"},
			"x2": map[string]interface{}{"type": "integer"},
			"y2": map[string]interface{}{"type": "integer"},
		},
		"required":    []string{"x1", "y1", "x2", "y2"},
		"description": description,
	}
}

func methodProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"enum":        methodEnum,
		"description": "Fit used to refine each extremum. Default is the server's configured method (parabolic separable)",
	}
}

func extremaTool(name, kind string) Tool {
	return Tool{
		Name: name,
		Description: "Find every local " + kind + " of the image field and refine each to subpixel precision. " +
			"Extrema touching the image border are skipped; plateaus are reported at their centroid.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": withProperties(fieldProperties(), map[string]interface{}{
				"method": methodProperty(),
				"region": regionProperty("Optional region (x2/y2 exclusive). Only extrema inside it are reported."),
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of extrema returned. Default unlimited",
				},
			}),
			"required": []string{"path"},
		},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions, format and available channels. The image is cached for subsequent operations.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
			},
		},

		// Extremum Localization
		{
			Name:        "subpixel_locate",
			Description: "Refine the extremum at an integer pixel to subpixel precision by fitting a model to its neighbourhood. Pixels on the image border are returned unchanged.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withProperties(fieldProperties(), map[string]interface{}{
					"x": map[string]interface{}{
						"type":        "integer",
						"description": "X coordinate of the integer extremum (0-based, from left)",
					},
					"y": map[string]interface{}{
						"type":        "integer",
						"description": "Y coordinate of the integer extremum (0-based, from top)",
					},
					"polarity": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"maximum", "minimum"},
						"description": "Kind of extremum. Default maximum",
						"default":     "maximum",
					},
					"method": methodProperty(),
				}),
				"required": []string{"path", "x", "y"},
			},
		},
		extremaTool("subpixel_maxima", "maximum"),
		extremaTool("subpixel_minima", "minimum"),
		{
			Name:        "subpixel_mean_shift",
			Description: "Climb from a start point to the nearest mode of the Gaussian-weighted intensity by iterating mean-shift steps. Reports whether the step size fell below epsilon.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withProperties(fieldProperties(), map[string]interface{}{
					"x": map[string]interface{}{
						"type":        "number",
						"description": "Start X coordinate (may be fractional)",
					},
					"y": map[string]interface{}{
						"type":        "number",
						"description": "Start Y coordinate (may be fractional)",
					},
					"sigma": map[string]interface{}{
						"type":        "number",
						"description": "Kernel sigma in pixels. Default 2.0",
						"default":     2.0,
					},
					"epsilon": map[string]interface{}{
						"type":        "number",
						"description": "Stop when the step is shorter than this. Default 0.001",
						"default":     0.001,
					},
					"max_iterations": map[string]interface{}{
						"type":        "integer",
						"description": "Iteration limit, capped by the server configuration",
					},
				}),
				"required": []string{"path", "x", "y"},
			},
		},
		{
			Name:        "subpixel_find",
			Description: "List the coordinates of all non-zero pixels of the image field, e.g. of a binary mask image.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withProperties(fieldProperties(), map[string]interface{}{
					"region": regionProperty("Optional region (x2/y2 exclusive) to restrict the search."),
					"limit": map[string]interface{}{
						"type":        "integer",
						"description": "Maximum number of coordinates returned. Default 1000",
						"default":     1000,
					},
				}),
				"required": []string{"path"},
			},
		},

		// Field Inspection
		{
			Name:        "image_sample_value",
			Description: "Interpolate the image field at a fractional coordinate. With vector_sigma, samples the mean-shift vector field instead.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withProperties(fieldProperties(), map[string]interface{}{
					"x": map[string]interface{}{"type": "number", "description": "X coordinate (may be fractional)"},
					"y": map[string]interface{}{"type": "number", "description": "Y coordinate (may be fractional)"},
					"interpolation": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"cubic", "linear", "nearest"},
						"description": "Interpolation method. Default cubic",
					},
					"vector_sigma": map[string]interface{}{
						"type":        "number",
						"description": "Optional kernel sigma; when set the 2-component mean-shift vector is returned",
					},
				}),
				"required": []string{"path", "x", "y"},
			},
		},
		{
			Name:        "image_extrema_overlay",
			Description: "Draw crosshair markers on the image and return it as base64-encoded PNG. Marks the given points, or the located extrema when no points are given.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withProperties(fieldProperties(), map[string]interface{}{
					"points": map[string]interface{}{
						"type": "array",
						"items": map[string]interface{}{
							"type":     "array",
							"items":    map[string]interface{}{"type": "number"},
							"minItems": 2,
							"maxItems": 2,
						},
						"description": "Optional [x, y] points to mark",
					},
					"polarity": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"maximum", "minimum"},
						"description": "Extrema to mark when no points are given. Default maximum",
					},
					"method": methodProperty(),
					"color": map[string]interface{}{
						"type":        "string",
						"description": "Marker color as hex (e.g., '#FF0000'). Default red",
						"default":     "#FF0000",
					},
					"arm_length": map[string]interface{}{
						"type":        "integer",
						"description": "Crosshair arm length in pixels. Default 3",
						"default":     3,
					},
					"numbered": map[string]interface{}{
						"type":        "boolean",
						"description": "Label each marker with its index",
						"default":     false,
					},
				}),
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_crop",
			Description: "Crop a rectangular region from an image and return it as base64-encoded PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"x1": map[string]interface{}{"type": "integer", "description": "Left edge X coordinate (0-based)"},
					"y1": map[string]interface{}{"type": "integer", "description": "Top edge Y coordinate (0-based)"},
					"x2": map[string]interface{}{"type": "integer", "description": "Right edge X coordinate (exclusive)"},
					"y2": map[string]interface{}{"type": "integer", "description": "Bottom edge Y coordinate (exclusive)"},
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Optional scale factor. Default 1.0",
						"default":     1.0,
					},
				},
				"required": []string{"path", "x1", "y1", "x2", "y2"},
			},
		},
		{
			Name:        "image_crop_patch",
			Description: "Zoom into the neighbourhood of a pixel with nearest-neighbour scaling, so individual pixels stay visible. Useful to inspect an extremum before refining it.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"x": map[string]interface{}{"type": "integer", "description": "Centre X coordinate"},
					"y": map[string]interface{}{"type": "integer", "description": "Centre Y coordinate"},
					"radius": map[string]interface{}{
						"type":        "integer",
						"description": "Half-size of the patch in pixels. Default 5",
						"default":     5,
					},
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Zoom factor. Default 8",
						"default":     8,
					},
				},
				"required": []string{"path", "x", "y"},
			},
		},

		// Measurement
		{
			Name:        "subpixel_measure_displacement",
			Description: "Measure the distance and direction between two subpixel points, e.g. a feature located in two frames.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"from": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "number"},
						"description": "First point",
					},
					"to": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "number"},
						"description": "Second point, same dimensionality as from",
					},
				},
				"required": []string{"from", "to"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
