package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// watermarkProperties returns the schema properties shared by the
// watermark_plan and watermark_apply tools.
func watermarkProperties() map[string]interface{} {
	return map[string]interface{}{
		"image_path": map[string]interface{}{
			"type":        "string",
			"description": "Absolute path to the canvas image (PNG or JPEG)",
		},
		"watermark_path": map[string]interface{}{
			"type":        "string",
			"description": "Absolute path to the watermark image; transparency is preserved",
		},
		"proportion": map[string]interface{}{
			"type":        "number",
			"description": "Target fraction of the canvas the watermark occupies, in (0, 1]. Default 0.1",
			"default":     0.1,
		},
		"opacity": map[string]interface{}{
			"type":        "number",
			"description": "Multiplier for the watermark alpha channel, in [0, 1]. Default 0.5",
			"default":     0.5,
		},
		"scaling": map[string]interface{}{
			"type":        "string",
			"description": "LINEAR sizes by canvas width, AREA sizes by canvas area. Default LINEAR",
			"enum":        []string{"LINEAR", "AREA"},
			"default":     "LINEAR",
		},
		"placement": map[string]interface{}{
			"type":        "string",
			"description": "SINGLE places one watermark, TILE covers the canvas in a checkerboard. Default SINGLE",
			"enum":        []string{"SINGLE", "TILE"},
			"default":     "SINGLE",
		},
		"position": map[string]interface{}{
			"type":        "string",
			"description": "SINGLE mode anchor: UPPER_LEFT, UPPER_RIGHT, LOWER_LEFT, LOWER_RIGHT, MIDDLE, or an explicit top-left offset \"x,y\". Default LOWER_RIGHT",
			"default":     "LOWER_RIGHT",
		},
		"margin": map[string]interface{}{
			"type":        "integer",
			"description": "Distance in pixels from the anchored edges (SINGLE only). Default 20",
			"default":     20,
		},
		"tile_padding": map[string]interface{}{
			"type":        "integer",
			"description": "Gap in pixels between tile grid cells (TILE only). Default 50",
			"default":     50,
		},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	applyProps := watermarkProperties()
	applyProps["output_path"] = map[string]interface{}{
		"type":        "string",
		"description": "Where to write the result; the extension (.png, .jpg, .jpeg) selects the format",
	}
	applyProps["jpeg_quality"] = map[string]interface{}{
		"type":        "integer",
		"description": "JPEG quality 1-100. Default 95",
		"default":     95,
	}
	applyProps["background"] = map[string]interface{}{
		"type":        "string",
		"description": "Hex colour transparent pixels are flattened onto for JPEG output. Default #ffffff",
		"default":     "#ffffff",
	}

	return []Tool{
		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions and format. The decoded image is cached for subsequent watermark calls.",
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

		// Watermarking
		{
			Name:        "watermark_plan",
			Description: "Compute the scaled watermark size and the offsets it would be stamped at, without compositing or writing anything. Use this to preview a placement.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": watermarkProperties(),
				"required":   []string{"image_path", "watermark_path"},
			},
		},
		{
			Name:        "watermark_apply",
			Description: "Composite a watermark onto an image and write the result to output_path.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": applyProps,
				"required":   []string{"image_path", "watermark_path", "output_path"},
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
