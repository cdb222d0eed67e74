package server

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/ironsheep/exposure-meter-mcp/internal/imaging"
	"github.com/ironsheep/exposure-meter-mcp/internal/logging"
	"github.com/ironsheep/exposure-meter-mcp/internal/meter"
	"github.com/ironsheep/exposure-meter-mcp/internal/settings"
)

// ServerName is reported in the initialize handshake.
const ServerName = "exposure-meter-mcp"

// Options configures a Server. Zero values take defaults.
type Options struct {
	Logger *slog.Logger

	// Settings seed new sessions and the stateless tools. Nil means
	// settings.Default().
	Settings *settings.Settings

	// SettingsPath is where meter_config_save writes when the call names no
	// path.
	SettingsPath string

	// Observer is attached to every session's engine.
	Observer meter.Observer

	// Strict makes resolver axis misses fail the tick.
	Strict bool

	Version string

	In  io.Reader
	Out io.Writer
}

// Server handles MCP protocol communication
type Server struct {
	cache        *imaging.ImageCache
	logger       *slog.Logger
	settings     *settings.Settings
	settingsPath string
	observer     meter.Observer
	strict       bool
	version      string
	in           io.Reader
	out          io.Writer

	mu       sync.Mutex
	sessions map[string]*session
}

// MCPRequest represents an incoming JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents a JSON-RPC error
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// New creates a new MCP server instance
func New(opts Options) *Server {
	s := &Server{
		cache:        imaging.NewImageCache(),
		logger:       logging.NewComponentLogger(opts.Logger, "server"),
		settings:     opts.Settings,
		settingsPath: opts.SettingsPath,
		observer:     opts.Observer,
		strict:       opts.Strict,
		version:      opts.Version,
		in:           opts.In,
		out:          opts.Out,
		sessions:     make(map[string]*session),
	}
	if s.settings == nil {
		def := settings.Default()
		s.settings = &def
	}
	if s.version == "" {
		s.version = "dev"
	}
	if s.in == nil {
		s.in = os.Stdin
	}
	if s.out == nil {
		s.out = os.Stdout
	}
	return s
}

// Run reads requests line by line until the input closes.
func (s *Server) Run() error {
	scanner := bufio.NewScanner(s.in)
	// Increase buffer size for large requests
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	encoder := json.NewEncoder(s.out)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.logger.Warn("failed to parse request", logging.Error(err))
			continue
		}

		resp := s.handleRequest(&req)
		if resp != nil {
			if err := encoder.Encode(resp); err != nil {
				s.logger.Error("failed to encode response", logging.Error(err))
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}

	return nil
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(req *MCPRequest) *MCPResponse {
	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		// Client acknowledgment, no response needed
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(req)
	case "ping":
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{},
		}
	default:
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error: &MCPError{
				Code:    -32601,
				Message: fmt.Sprintf("Method not found: %s", req.Method),
			},
		}
	}
}

func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    ServerName,
				"version": s.version,
			},
		},
	}
}
