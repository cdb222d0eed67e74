package server

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/ironsheep/exposure-meter-mcp/internal/histogram"
	"github.com/ironsheep/exposure-meter-mcp/internal/imaging"
	"github.com/ironsheep/exposure-meter-mcp/internal/logging"
	"github.com/ironsheep/exposure-meter-mcp/internal/meter"
	"github.com/ironsheep/exposure-meter-mcp/internal/settings"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "meter_tick").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.logger.Debug("tool failed", logging.String("tool", params.Name), logging.Error(err))
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	switch name {
	case "image_load":
		return s.handleImageLoad(args)

	// Sessions
	case "meter_session_create":
		return s.handleSessionCreate(args)
	case "meter_session_close":
		return s.handleSessionClose(args)
	case "meter_tick":
		return s.handleTick(args)
	case "meter_lock":
		return s.handleLock(args, true)
	case "meter_unlock":
		return s.handleLock(args, false)

	// Configuration
	case "meter_config_get":
		return s.handleConfigGet(args)
	case "meter_config_set":
		return s.handleConfigSet(args)
	case "meter_config_save":
		return s.handleConfigSave(args)

	// Analysis
	case "meter_histogram":
		return s.handleHistogram(args)
	case "meter_candidates":
		return s.handleCandidates(args)
	case "meter_ev":
		return s.handleEV(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// defaults returns the config and profile of the server's settings.
func (s *Server) defaults() (meter.ExposureConfig, meter.CalibrationProfile, error) {
	cfg, err := s.settings.ExposureConfig()
	if err != nil {
		return meter.ExposureConfig{}, meter.CalibrationProfile{}, err
	}
	cal, err := s.settings.CalibrationProfile()
	if err != nil {
		return meter.ExposureConfig{}, meter.CalibrationProfile{}, err
	}
	return cfg, cal, nil
}

// === Frame Information ===

type pathArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	return imaging.LoadFrameInfo(s.cache, a.Path)
}

// === Sessions ===

// configArgs holds optional overrides. Nil fields leave the current value.
type configArgs struct {
	ISO               *int     `json:"iso"`
	Compensation      *float64 `json:"compensation"`
	Priority          *string  `json:"priority"`
	Shutter           *string  `json:"shutter"`
	Aperture          *string  `json:"aperture"`
	Metering          *string  `json:"metering"`
	SmoothingFactor   *float64 `json:"smoothing_factor"`
	ChannelMode       *string  `json:"channel_mode"`
	CalibrationFactor *float64 `json:"calibration_factor"`
	UnderThreshold    *int     `json:"under_exposure_threshold"`
	OverThreshold     *int     `json:"over_exposure_threshold"`
	Transfer          *string  `json:"transfer"`
}

func threshold(v int) (uint8, error) {
	if v < 0 || v > 255 {
		return 0, fmt.Errorf("%w: %d outside 0-255", meter.ErrInvalidThresholds, v)
	}
	return uint8(v), nil
}

// apply returns cfg and cal with the overrides applied and validated.
func (a configArgs) apply(cfg meter.ExposureConfig, cal meter.CalibrationProfile) (meter.ExposureConfig, meter.CalibrationProfile, error) {
	if a.ISO != nil {
		cfg.ISO = *a.ISO
	}
	if a.Compensation != nil {
		cfg.Compensation = *a.Compensation
	}
	if a.Priority != nil {
		cfg.Priority = meter.PriorityMode(*a.Priority)
	}
	if a.Shutter != nil {
		v, err := meter.ParseShutter(*a.Shutter)
		if err != nil {
			return cfg, cal, err
		}
		cfg.Shutter = v
	}
	if a.Aperture != nil {
		v, err := meter.ParseAperture(*a.Aperture)
		if err != nil {
			return cfg, cal, err
		}
		cfg.Aperture = v
	}
	if a.Metering != nil {
		cfg.Metering = meter.MeteringMode(*a.Metering)
	}
	if a.SmoothingFactor != nil {
		cfg.SmoothingFactor = *a.SmoothingFactor
	}
	if a.ChannelMode != nil {
		cfg.ChannelMode = histogram.ChannelMode(*a.ChannelMode)
	}
	if a.CalibrationFactor != nil {
		cal.CalibrationFactor = *a.CalibrationFactor
	}
	if a.UnderThreshold != nil {
		v, err := threshold(*a.UnderThreshold)
		if err != nil {
			return cfg, cal, err
		}
		cal.UnderExposureThreshold = v
	}
	if a.OverThreshold != nil {
		v, err := threshold(*a.OverThreshold)
		if err != nil {
			return cfg, cal, err
		}
		cal.OverExposureThreshold = v
	}
	if a.Transfer != nil {
		cal.Transfer = imaging.Transfer(*a.Transfer)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, cal, err
	}
	if err := cal.Validate(); err != nil {
		return cfg, cal, err
	}
	return cfg, cal, nil
}

// configView is the JSON shape of a config and profile pair.
type configView struct {
	SessionID     string                   `json:"session_id,omitempty"`
	Path          string                   `json:"path,omitempty"`
	Config        meter.ExposureConfig     `json:"config"`
	Calibration   meter.CalibrationProfile `json:"calibration"`
	ShutterLabel  string                   `json:"shutter_label"`
	ApertureLabel string                   `json:"aperture_label"`
}

func newConfigView(id, path string, cfg meter.ExposureConfig, cal meter.CalibrationProfile) *configView {
	return &configView{
		SessionID:     id,
		Path:          path,
		Config:        cfg,
		Calibration:   cal,
		ShutterLabel:  meter.FormatShutter(cfg.Shutter),
		ApertureLabel: meter.FormatAperture(cfg.Aperture),
	}
}

type sessionCreateArgs struct {
	Path string `json:"path"`
	configArgs
}

func (s *Server) handleSessionCreate(args json.RawMessage) (interface{}, error) {
	var a sessionCreateArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	cfg, cal, err := s.defaults()
	if err != nil {
		return nil, err
	}
	cfg, cal, err = a.apply(cfg, cal)
	if err != nil {
		return nil, err
	}
	sess := s.newSession(a.Path, cfg, cal)
	return newConfigView(sess.id, sess.path, cfg, cal), nil
}

type sessionArgs struct {
	SessionID string `json:"session_id"`
}

func (s *Server) handleSessionClose(args json.RawMessage) (interface{}, error) {
	var a sessionArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := s.closeSession(a.SessionID); err != nil {
		return nil, err
	}
	return map[string]interface{}{"session_id": a.SessionID, "closed": true}, nil
}

type tickArgs struct {
	SessionID        string `json:"session_id"`
	Path             string `json:"path"`
	IncludeHistogram bool   `json:"include_histogram"`
}

// tickView is the meter_tick result. Display carries the reading a host
// should show, which is the previous one when this tick was out of range.
type tickView struct {
	SessionID             string                 `json:"session_id"`
	Tick                  int                    `json:"tick"`
	Result                *meter.TickResult      `json:"result"`
	Display               *meter.ExposureReading `json:"display,omitempty"`
	DisplayClassification *meter.Classification  `json:"display_classification,omitempty"`
	ShutterLabel          string                 `json:"shutter_label,omitempty"`
	ApertureLabel         string                 `json:"aperture_label,omitempty"`
	Stale                 bool                   `json:"stale"`
}

func (s *Server) handleTick(args json.RawMessage) (interface{}, error) {
	var a tickArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	sess, err := s.session(a.SessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	path := a.Path
	if path == "" {
		path = sess.path
	}
	if path == "" {
		return nil, fmt.Errorf("path is required: the session has no default image")
	}

	frame, err := imaging.LoadFrame(s.cache, path, true)
	if err != nil {
		return nil, err
	}

	res, err := sess.engine.Tick(frame, sess.cfg, sess.cal)
	if err != nil {
		return nil, err
	}
	sess.ticks++
	if res.Reading != nil {
		sess.last = res
	}

	out := *res
	if !a.IncludeHistogram {
		out.Histogram = nil
	}
	view := &tickView{SessionID: sess.id, Tick: sess.ticks, Result: &out}
	if sess.last != nil {
		view.Display = sess.last.Reading
		view.DisplayClassification = sess.last.Classification
		view.ShutterLabel = sess.last.Reading.ShutterLabel()
		view.ApertureLabel = sess.last.Reading.ApertureLabel()
		view.Stale = sess.last != res
	}
	return view, nil
}

type lockView struct {
	SessionID string   `json:"session_id"`
	Locked    bool     `json:"locked"`
	LockedEV  *float64 `json:"locked_ev"`
}

func (s *Server) handleLock(args json.RawMessage, lock bool) (interface{}, error) {
	var a sessionArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	sess, err := s.session(a.SessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if lock {
		sess.engine.Lock()
	} else {
		sess.engine.Unlock()
	}
	view := &lockView{SessionID: sess.id, Locked: sess.engine.Locked()}
	if v, ok := sess.engine.LockedEV(); ok {
		view.LockedEV = &v
	}
	return view, nil
}

// === Configuration ===

func (s *Server) handleConfigGet(args json.RawMessage) (interface{}, error) {
	var a sessionArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.SessionID == "" {
		cfg, cal, err := s.defaults()
		if err != nil {
			return nil, err
		}
		return newConfigView("", "", cfg, cal), nil
	}
	sess, err := s.session(a.SessionID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return newConfigView(sess.id, sess.path, sess.cfg, sess.cal), nil
}

type configSetArgs struct {
	SessionID string `json:"session_id"`
	configArgs
}

func (s *Server) handleConfigSet(args json.RawMessage) (interface{}, error) {
	var a configSetArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	sess, err := s.session(a.SessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	cfg, cal, err := a.apply(sess.cfg, sess.cal)
	if err != nil {
		return nil, err
	}
	sess.cfg, sess.cal = cfg, cal
	return newConfigView(sess.id, sess.path, cfg, cal), nil
}

type configSaveArgs struct {
	SessionID string `json:"session_id"`
	Path      string `json:"path"`
}

func (s *Server) handleConfigSave(args json.RawMessage) (interface{}, error) {
	var a configSaveArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	path := a.Path
	if path == "" {
		path = s.settingsPath
	}
	if path == "" {
		p, err := settings.DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	path = filepath.Clean(path)

	doc := *s.settings
	if a.SessionID != "" {
		sess, err := s.session(a.SessionID)
		if err != nil {
			return nil, err
		}
		sess.mu.Lock()
		doc = settings.FromConfig(sess.cfg, sess.cal, s.settings.Interval())
		sess.mu.Unlock()
	}

	if err := doc.Save(path); err != nil {
		return nil, err
	}
	s.logger.Info("settings saved", logging.String(logging.FieldPath, path))
	return map[string]interface{}{"path": path, "saved": true}, nil
}

// === Analysis ===

type histogramArgs struct {
	Path           string   `json:"path"`
	Compensation   *float64 `json:"compensation"`
	ChannelMode    *string  `json:"channel_mode"`
	UnderThreshold *int     `json:"under_exposure_threshold"`
	OverThreshold  *int     `json:"over_exposure_threshold"`
	ReferenceGray  *float64 `json:"reference_gray"`
	Render         bool     `json:"render"`
	Width          int      `json:"width"`
	Height         int      `json:"height"`
	BarColor       string   `json:"bar_color"`
	UnderColor     string   `json:"under_color"`
	OverColor      string   `json:"over_color"`
	MarkerColor    string   `json:"marker_color"`
	Background     string   `json:"background_color"`
	NoZoneLabels   bool     `json:"no_zone_labels"`
}

type histogramView struct {
	Histogram *histogram.Result      `json:"histogram"`
	Image     *histogram.ImageResult `json:"image,omitempty"`
}

func (s *Server) handleHistogram(args json.RawMessage) (interface{}, error) {
	var a histogramArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	cfg, cal, err := s.defaults()
	if err != nil {
		return nil, err
	}

	opts := histogram.Options{
		Compensation:   cfg.Compensation,
		UnderThreshold: cal.UnderExposureThreshold,
		OverThreshold:  cal.OverExposureThreshold,
		Mode:           cfg.ChannelMode,
		ReferenceGray:  cal.ReferenceGray,
	}
	if a.Compensation != nil {
		opts.Compensation = *a.Compensation
	}
	if a.ChannelMode != nil {
		opts.Mode = histogram.ChannelMode(*a.ChannelMode)
		if !opts.Mode.Valid() {
			return nil, fmt.Errorf("%w: %q", meter.ErrInvalidChannelMode, *a.ChannelMode)
		}
	}
	if a.UnderThreshold != nil {
		if opts.UnderThreshold, err = threshold(*a.UnderThreshold); err != nil {
			return nil, err
		}
	}
	if a.OverThreshold != nil {
		if opts.OverThreshold, err = threshold(*a.OverThreshold); err != nil {
			return nil, err
		}
	}
	if a.ReferenceGray != nil {
		opts.ReferenceGray = *a.ReferenceGray
	}

	frame, err := imaging.LoadFrame(s.cache, a.Path, false)
	if err != nil {
		return nil, err
	}
	view := &histogramView{Histogram: histogram.Compute(frame, opts)}
	if a.Render {
		img, err := histogram.Render(view.Histogram, histogram.RenderOptions{
			Width:          a.Width,
			Height:         a.Height,
			Background:     a.Background,
			Neutral:        a.BarColor,
			Under:          a.UnderColor,
			Over:           a.OverColor,
			Marker:         a.MarkerColor,
			HideZoneLabels: a.NoZoneLabels,
		})
		if err != nil {
			return nil, err
		}
		view.Image = img
	}
	return view, nil
}

type candidatesArgs struct {
	Priority string   `json:"priority"`
	Value    string   `json:"value"`
	EV       *float64 `json:"ev"`
}

type candidateView struct {
	meter.Candidate
	ShutterLabel  string `json:"shutter_label"`
	ApertureLabel string `json:"aperture_label"`
}

func newCandidateView(c meter.Candidate) candidateView {
	return candidateView{
		Candidate:     c,
		ShutterLabel:  meter.FormatShutter(c.Shutter),
		ApertureLabel: meter.FormatAperture(c.Aperture),
	}
}

type candidatesView struct {
	Priority     meter.PriorityMode `json:"priority"`
	Candidates   []candidateView    `json:"candidates"`
	Resolved     *candidateView     `json:"resolved,omitempty"`
	EVDifference *float64           `json:"ev_difference,omitempty"`
}

func (s *Server) handleCandidates(args json.RawMessage) (interface{}, error) {
	var a candidatesArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	priority := meter.PriorityMode(a.Priority)
	var fixed float64
	var err error
	switch priority {
	case meter.ShutterPriority:
		fixed, err = meter.ParseShutter(a.Value)
	case meter.AperturePriority:
		fixed, err = meter.ParseAperture(a.Value)
	default:
		err = fmt.Errorf("%w: %q", meter.ErrInvalidPriority, a.Priority)
	}
	if err != nil {
		return nil, err
	}

	table := meter.DefaultCandidateTable()
	view := &candidatesView{Priority: priority}
	for _, c := range table.Axis(priority, fixed) {
		view.Candidates = append(view.Candidates, newCandidateView(c))
	}

	if a.EV != nil {
		res, ok := meter.Resolve(*a.EV, table, priority, fixed)
		if ok {
			cv := newCandidateView(res.Candidate)
			view.Resolved = &cv
			view.EVDifference = &res.EVDifference
		}
	}
	return view, nil
}

type evArgs struct {
	Brightness        float64  `json:"brightness"`
	ISO               *int     `json:"iso"`
	Compensation      *float64 `json:"compensation"`
	CalibrationFactor *float64 `json:"calibration_factor"`
	ReferenceGray     *float64 `json:"reference_gray"`
	ReferenceEV       *float64 `json:"reference_ev"`
}

type evView struct {
	Brightness  float64  `json:"brightness"`
	EffectiveEV *float64 `json:"effective_ev"`
	Metered     bool     `json:"metered"`
}

func (s *Server) handleEV(args json.RawMessage) (interface{}, error) {
	var a evArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	cfg, cal, err := s.defaults()
	if err != nil {
		return nil, err
	}
	if a.ISO != nil {
		cfg.ISO = *a.ISO
	}
	if a.Compensation != nil {
		cfg.Compensation = *a.Compensation
	}
	if a.CalibrationFactor != nil {
		cal.CalibrationFactor = *a.CalibrationFactor
	}
	if a.ReferenceGray != nil {
		cal.ReferenceGray = *a.ReferenceGray
	}
	if a.ReferenceEV != nil {
		cal.ReferenceEV = *a.ReferenceEV
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cal.Validate(); err != nil {
		return nil, err
	}

	ev := cal.EffectiveEV(a.Brightness, cfg)
	view := &evView{Brightness: a.Brightness, Metered: meter.Metered(ev)}
	if view.Metered {
		view.EffectiveEV = &ev
	}
	return view, nil
}
