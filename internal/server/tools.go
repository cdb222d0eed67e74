package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

var sessionIDProperty = map[string]interface{}{
	"type":        "string",
	"description": "Session ID returned by meter_session_create",
}

var pathProperty = map[string]interface{}{
	"type":        "string",
	"description": "Absolute path to the image file",
}

func colorProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description + `, as "#RRGGBB" or "#RRGGBBAA"`,
	}
}

// configProperties are the optional exposure and calibration overrides
// accepted by meter_session_create and meter_config_set.
func configProperties() map[string]interface{} {
	return map[string]interface{}{
		"iso": map[string]interface{}{
			"type":        "integer",
			"description": "ISO sensitivity",
			"enum":        []int{50, 100, 200, 400, 800, 1600, 3200, 6400},
		},
		"compensation": map[string]interface{}{
			"type":        "number",
			"description": "Exposure compensation in EV, -3 to +3 in 0.5 steps",
		},
		"priority": map[string]interface{}{
			"type":        "string",
			"description": "Which axis is fixed",
			"enum":        []string{"shutter", "aperture"},
		},
		"shutter": map[string]interface{}{
			"type":        "string",
			"description": "Fixed shutter speed for shutter priority, e.g. \"1/125\" or \"1s\"",
		},
		"aperture": map[string]interface{}{
			"type":        "string",
			"description": "Fixed aperture for aperture priority, e.g. \"f/5.6\"",
		},
		"metering": map[string]interface{}{
			"type":        "string",
			"description": "Metering mode",
			"enum":        []string{"center", "spot"},
		},
		"smoothing_factor": map[string]interface{}{
			"type":        "number",
			"description": "EMA factor, strictly between 0 and 1",
		},
		"channel_mode": map[string]interface{}{
			"type":        "string",
			"description": "Histogram mode",
			"enum":        []string{"combined", "separate"},
		},
		"calibration_factor": map[string]interface{}{
			"type":        "number",
			"description": "Brightness correction, 0.5 to 1.5",
		},
		"under_exposure_threshold": map[string]interface{}{
			"type":        "integer",
			"description": "Histogram bins below this are under-exposed (0-255)",
		},
		"over_exposure_threshold": map[string]interface{}{
			"type":        "integer",
			"description": "Histogram bins above this are over-exposed (0-255)",
		},
		"transfer": map[string]interface{}{
			"type":        "string",
			"description": "Encoded-to-linear transfer curve",
			"enum":        []string{"srgb", "gamma22"},
		},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	createProps := configProperties()
	createProps["path"] = map[string]interface{}{
		"type":        "string",
		"description": "Optional image file metered by meter_tick when the call names no path",
	}

	setProps := configProperties()
	setProps["session_id"] = sessionIDProperty

	return []Tool{
		// Frame Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions, format and the working-buffer size the meter resamples it to.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
				},
				"required": []string{"path"},
			},
		},

		// Sessions
		{
			Name:        "meter_session_create",
			Description: "Create a metering session. The session keeps the smoother and AE-lock state across ticks and starts from the saved settings plus any overrides given here.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": createProps,
			},
		},
		{
			Name:        "meter_session_close",
			Description: "Close a metering session and discard its state.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": sessionIDProperty,
				},
				"required": []string{"session_id"},
			},
		},
		{
			Name:        "meter_tick",
			Description: "Meter one frame: re-read the image, compute brightness and effective EV, resolve shutter/aperture on the fixed axis, smooth, classify the deviation. When the scene is out of range the previous reading is returned as the display value.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": sessionIDProperty,
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Image to meter. Defaults to the session's path",
					},
					"include_histogram": map[string]interface{}{
						"type":        "boolean",
						"description": "Include histogram bins in the result. Default false",
						"default":     false,
					},
				},
				"required": []string{"session_id"},
			},
		},
		{
			Name:        "meter_lock",
			Description: "Engage AE-lock: pin the displayed EV at its current value until meter_unlock.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": sessionIDProperty,
				},
				"required": []string{"session_id"},
			},
		},
		{
			Name:        "meter_unlock",
			Description: "Release AE-lock. Has no effect when the session is not locked.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": sessionIDProperty,
				},
				"required": []string{"session_id"},
			},
		},

		// Configuration
		{
			Name:        "meter_config_get",
			Description: "Return a session's exposure config and calibration profile, or the saved settings when no session is given.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": sessionIDProperty,
				},
			},
		},
		{
			Name:        "meter_config_set",
			Description: "Change a session's exposure config or calibration. Only the fields given are changed; the whole result is validated before it replaces the current values.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": setProps,
				"required":   []string{"session_id"},
			},
		},
		{
			Name:        "meter_config_save",
			Description: "Save a session's config and calibration (or the current settings) to the TOML settings file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": sessionIDProperty,
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Settings file to write. Defaults to the server's settings path",
					},
				},
			},
		},

		// Analysis
		{
			Name:        "meter_histogram",
			Description: "Compute the brightness histogram of an image with zone markers, optionally rendered as a PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"compensation": map[string]interface{}{
						"type":        "number",
						"description": "Exposure compensation gain applied to combined luma, in EV",
					},
					"channel_mode": map[string]interface{}{
						"type": "string",
						"enum": []string{"combined", "separate"},
					},
					"under_exposure_threshold": map[string]interface{}{"type": "integer"},
					"over_exposure_threshold":  map[string]interface{}{"type": "integer"},
					"reference_gray": map[string]interface{}{
						"type":        "number",
						"description": "Brightness of zone V. Defaults to the calibration profile",
					},
					"render": map[string]interface{}{
						"type":        "boolean",
						"description": "Also return the histogram as a base64 PNG",
						"default":     false,
					},
					"width": map[string]interface{}{
						"type":        "integer",
						"description": "Rendered width in pixels. Default 512, max 4096",
					},
					"height": map[string]interface{}{
						"type":        "integer",
						"description": "Rendered height in pixels. Default 200, max 4096",
					},
					"bar_color":        colorProperty("Colour of neutral bars"),
					"under_color":      colorProperty("Colour of bars below the under-exposure threshold"),
					"over_color":       colorProperty("Colour of bars above the over-exposure threshold"),
					"marker_color":     colorProperty("Colour of zone marker lines and labels"),
					"background_color": colorProperty("Plot background colour"),
					"no_zone_labels": map[string]interface{}{
						"type":        "boolean",
						"description": "Draw zone marker lines without their numbers",
						"default":     false,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "meter_candidates",
			Description: "List the shutter/aperture candidates on a fixed axis with their EVs. Given an EV, also report which candidate the resolver picks.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"priority": map[string]interface{}{
						"type": "string",
						"enum": []string{"shutter", "aperture"},
					},
					"value": map[string]interface{}{
						"type":        "string",
						"description": "Fixed axis value, e.g. \"1/125\" or \"f/5.6\"",
					},
					"ev": map[string]interface{}{
						"type":        "number",
						"description": "Optional EV to resolve",
					},
				},
				"required": []string{"priority", "value"},
			},
		},
		{
			Name:        "meter_ev",
			Description: "Convert a brightness value (0-255) to effective EV with the given or saved ISO, compensation and calibration.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"brightness": map[string]interface{}{
						"type":        "number",
						"description": "Sampled brightness, 0-255",
					},
					"iso":                map[string]interface{}{"type": "integer"},
					"compensation":       map[string]interface{}{"type": "number"},
					"calibration_factor": map[string]interface{}{"type": "number"},
					"reference_gray":     map[string]interface{}{"type": "number"},
					"reference_ev":       map[string]interface{}{"type": "number"},
				},
				"required": []string{"brightness"},
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
