package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/ironsheep/subpixel-mcp/internal/imaging"
	"github.com/ironsheep/subpixel-mcp/internal/ndimage"
	"github.com/ironsheep/subpixel-mcp/internal/subpixel"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "subpixel_maxima").
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
// Every call is bounded by the configured tool timeout.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.ToolTimeout)
	defer cancel()

	start := time.Now()
	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	fields := map[string]interface{}{
		"tool":        params.Name,
		"duration_ms": time.Since(start).Milliseconds(),
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("tool timed out after %s: %w", s.cfg.ToolTimeout, err)
		}
		s.log.Error(component, err, fields)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}
	s.log.Debug(component, "tool call", fields)

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
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies default values for optional parameters
//  3. Loads images from cache and extracts a field as needed
//  4. Calls the appropriate imaging/subpixel function
//  5. Returns the result or error
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Basic Image Information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)

	// Extremum Localization
	case "subpixel_locate":
		return s.handleSubpixelLocate(ctx, args)
	case "subpixel_maxima":
		return s.handleSubpixelExtrema(ctx, args, subpixel.Maximum)
	case "subpixel_minima":
		return s.handleSubpixelExtrema(ctx, args, subpixel.Minimum)
	case "subpixel_mean_shift":
		return s.handleSubpixelMeanShift(ctx, args)
	case "subpixel_find":
		return s.handleSubpixelFind(ctx, args)

	// Field Inspection
	case "image_sample_value":
		return s.handleImageSampleValue(ctx, args)
	case "image_extrema_overlay":
		return s.handleImageExtremaOverlay(ctx, args)
	case "image_crop":
		return s.handleImageCrop(args)
	case "image_crop_patch":
		return s.handleImageCropPatch(args)

	// Measurement
	case "subpixel_measure_displacement":
		return s.handleMeasureDisplacement(args)

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
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Shared argument handling ===

// fieldArgs selects the scalar field a tool operates on.
type fieldArgs struct {
	Path        string  `json:"path"`
	Channel     string  `json:"channel"`
	SmoothSigma float64 `json:"smooth_sigma"`
}

type regionArgs struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// loadField loads the image at a.Path, optionally blurs it and extracts the
// requested channel. The source image is returned alongside for drawing.
func (s *Server) loadField(ctx context.Context, a fieldArgs) (image.Image, *ndimage.Image, imaging.Channel, error) {
	if a.Channel == "" {
		a.Channel = s.cfg.DefaultChannel
	}
	channel, err := imaging.ParseChannel(a.Channel)
	if err != nil {
		return nil, nil, "", err
	}
	if a.SmoothSigma < 0 {
		return nil, nil, "", fmt.Errorf("smooth_sigma must not be negative, got %v", a.SmoothSigma)
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, nil, "", err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, "", err
	}
	src := imaging.Smooth(img, a.SmoothSigma)
	field, err := imaging.ToField(src, channel)
	if err != nil {
		return nil, nil, "", err
	}
	return img, field, channel, nil
}

func (s *Server) method(m string) string {
	if m == "" {
		return s.cfg.DefaultMethod
	}
	return m
}

// regionMask builds a binary mask selecting the half-open rectangle r of a
// field. A nil region yields a nil mask.
func regionMask(field *ndimage.Image, r *regionArgs) (*ndimage.Image, error) {
	if r == nil {
		return nil, nil
	}
	w, h := field.Size(0), field.Size(1)
	if r.X1 < 0 || r.Y1 < 0 || r.X2 > w || r.Y2 > h || r.X1 >= r.X2 || r.Y1 >= r.Y2 {
		return nil, fmt.Errorf("invalid region (%d,%d)-(%d,%d) for %dx%d image", r.X1, r.Y1, r.X2, r.Y2, w, h)
	}
	data := make([]bool, w*h)
	for y := r.Y1; y < r.Y2; y++ {
		for x := r.X1; x < r.X2; x++ {
			data[x+w*y] = true
		}
	}
	return ndimage.New(data, w, h)
}

// === Basic Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

// === Extremum Localization Handlers ===

type subpixelLocateArgs struct {
	fieldArgs
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Polarity string `json:"polarity"`
	Method   string `json:"method"`
}

// LocateResult is the response of subpixel_locate.
type LocateResult struct {
	Position    []int     `json:"position"`
	Coordinates []float64 `json:"coordinates"`
	Offset      []float64 `json:"offset"`
	Value       float64   `json:"value"`
	Polarity    string    `json:"polarity"`
	Method      string    `json:"method"`
	Channel     string    `json:"channel"`
}

func (s *Server) handleSubpixelLocate(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a subpixelLocateArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Polarity == "" {
		a.Polarity = "maximum"
	}
	a.Method = s.method(a.Method)

	_, field, channel, err := s.loadField(ctx, a.fieldArgs)
	if err != nil {
		return nil, err
	}
	position := []int{a.X, a.Y}
	res, err := subpixel.Locate(field, position, a.Polarity, a.Method)
	if err != nil {
		return nil, err
	}
	m, _ := subpixel.ParseMethod(a.Method, 2)
	return &LocateResult{
		Position:    position,
		Coordinates: res.Coordinates,
		Offset:      []float64{res.Coordinates[0] - float64(a.X), res.Coordinates[1] - float64(a.Y)},
		Value:       res.Value,
		Polarity:    a.Polarity,
		Method:      m.String(),
		Channel:     string(channel),
	}, nil
}

type subpixelExtremaArgs struct {
	fieldArgs
	Method string      `json:"method"`
	Region *regionArgs `json:"region"`
	Limit  int         `json:"limit"`
}

// ExtremaResult is the response of subpixel_maxima and subpixel_minima.
type ExtremaResult struct {
	Polarity  string            `json:"polarity"`
	Method    string            `json:"method"`
	Channel   string            `json:"channel"`
	Count     int               `json:"count"`
	Truncated bool              `json:"truncated,omitempty"`
	Extrema   []subpixel.Result `json:"extrema"`
}

func (s *Server) handleSubpixelExtrema(ctx context.Context, args json.RawMessage, polarity subpixel.Polarity) (interface{}, error) {
	var a subpixelExtremaArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	a.Method = s.method(a.Method)

	_, field, channel, err := s.loadField(ctx, a.fieldArgs)
	if err != nil {
		return nil, err
	}
	mask, err := regionMask(field, a.Region)
	if err != nil {
		return nil, err
	}
	extrema, err := s.locator.Locate(ctx, field, mask, a.Method, polarity)
	if err != nil {
		return nil, err
	}

	m, _ := subpixel.ParseMethod(a.Method, 2)
	result := &ExtremaResult{
		Polarity: polarity.String(),
		Method:   m.String(),
		Channel:  string(channel),
		Count:    len(extrema),
		Extrema:  extrema,
	}
	if a.Limit > 0 && len(extrema) > a.Limit {
		result.Extrema = extrema[:a.Limit]
		result.Truncated = true
	}
	return result, nil
}

type subpixelMeanShiftArgs struct {
	fieldArgs
	X             float64 `json:"x"`
	Y             float64 `json:"y"`
	Sigma         float64 `json:"sigma"`
	Epsilon       float64 `json:"epsilon"`
	MaxIterations int     `json:"max_iterations"`
}

// MeanShiftResult is the response of subpixel_mean_shift.
type MeanShiftResult struct {
	Start      []float64 `json:"start"`
	Point      []float64 `json:"point"`
	Iterations int       `json:"iterations"`
	Converged  bool      `json:"converged"`
	Sigma      float64   `json:"sigma"`
	Channel    string    `json:"channel"`
}

func (s *Server) handleSubpixelMeanShift(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a subpixelMeanShiftArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Sigma == 0 {
		a.Sigma = 2.0
	}
	if a.Epsilon == 0 {
		a.Epsilon = 1e-3
	}
	if a.MaxIterations <= 0 || a.MaxIterations > s.cfg.MaxMeanShiftIterations {
		a.MaxIterations = s.cfg.MaxMeanShiftIterations
	}

	_, field, channel, err := s.loadField(ctx, a.fieldArgs)
	if err != nil {
		return nil, err
	}
	w, h := field.Size(0), field.Size(1)
	if a.X < 0 || a.Y < 0 || a.X > float64(w-1) || a.Y > float64(h-1) {
		return nil, fmt.Errorf("start (%v,%v) outside %dx%d image", a.X, a.Y, w, h)
	}
	vectors, err := imaging.MeanShiftField(field, a.Sigma)
	if err != nil {
		return nil, err
	}

	start := []float64{a.X, a.Y}
	res, err := subpixel.MeanShift(ctx, vectors, start, a.Epsilon, subpixel.WithMaxIterations(a.MaxIterations))
	converged := err == nil
	if err != nil && !errors.Is(err, subpixel.ErrNotConverged) {
		return nil, err
	}
	if !converged {
		s.log.Warning(component, "mean shift did not converge", map[string]interface{}{
			"start":          start,
			"max_iterations": a.MaxIterations,
		})
	}
	return &MeanShiftResult{
		Start:      start,
		Point:      res.Point,
		Iterations: res.Iterations,
		Converged:  converged,
		Sigma:      a.Sigma,
		Channel:    string(channel),
	}, nil
}

type subpixelFindArgs struct {
	fieldArgs
	Region *regionArgs `json:"region"`
	Limit  int         `json:"limit"`
}

// FindResult is the response of subpixel_find.
type FindResult struct {
	Count       int     `json:"count"`
	Truncated   bool    `json:"truncated,omitempty"`
	Coordinates [][]int `json:"coordinates"`
}

func (s *Server) handleSubpixelFind(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a subpixelFindArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Limit <= 0 {
		a.Limit = 1000
	}

	_, field, _, err := s.loadField(ctx, a.fieldArgs)
	if err != nil {
		return nil, err
	}
	mask, err := regionMask(field, a.Region)
	if err != nil {
		return nil, err
	}
	coords, err := subpixel.Find(field, mask)
	if err != nil {
		return nil, err
	}

	result := &FindResult{Count: len(coords), Coordinates: coords}
	if len(coords) > a.Limit {
		result.Coordinates = coords[:a.Limit]
		result.Truncated = true
	}
	return result, nil
}

// === Field Inspection Handlers ===

type imageSampleValueArgs struct {
	fieldArgs
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Interp string  `json:"interpolation"`

	// VectorSigma samples the mean-shift vector field of that scale instead
	// of the intensity field.
	VectorSigma float64 `json:"vector_sigma"`
}

func (s *Server) handleImageSampleValue(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a imageSampleValueArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	_, field, _, err := s.loadField(ctx, a.fieldArgs)
	if err != nil {
		return nil, err
	}
	if a.VectorSigma > 0 {
		field, err = imaging.MeanShiftField(field, a.VectorSigma)
		if err != nil {
			return nil, err
		}
	}
	return imaging.SampleValue(field, a.X, a.Y, a.Interp)
}

type imageExtremaOverlayArgs struct {
	fieldArgs
	Points    [][]float64 `json:"points"`
	Polarity  string      `json:"polarity"`
	Method    string      `json:"method"`
	Color     string      `json:"color"`
	ArmLength int         `json:"arm_length"`
	Numbered  bool        `json:"numbered"`
}

// handleImageExtremaOverlay marks the given points, or when none are given,
// the located extrema of the requested polarity.
func (s *Server) handleImageExtremaOverlay(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a imageExtremaOverlayArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Color == "" {
		a.Color = "#FF0000"
	}

	if len(a.Points) > 0 {
		img, err := s.cache.Load(a.Path)
		if err != nil {
			return nil, err
		}
		return imaging.ExtremaOverlay(img, a.Points, a.Color, a.ArmLength, a.Numbered)
	}

	if a.Polarity == "" {
		a.Polarity = "maximum"
	}
	polarity, err := subpixel.ParsePolarity(a.Polarity)
	if err != nil {
		return nil, err
	}
	img, field, _, err := s.loadField(ctx, a.fieldArgs)
	if err != nil {
		return nil, err
	}
	extrema, err := s.locator.Locate(ctx, field, nil, s.method(a.Method), polarity)
	if err != nil {
		return nil, err
	}
	points := make([][]float64, len(extrema))
	for i, e := range extrema {
		points[i] = e.Coordinates
	}
	return imaging.ExtremaOverlay(img, points, a.Color, a.ArmLength, a.Numbered)
}

type imageCropArgs struct {
	Path  string  `json:"path"`
	X1    int     `json:"x1"`
	Y1    int     `json:"y1"`
	X2    int     `json:"x2"`
	Y2    int     `json:"y2"`
	Scale float64 `json:"scale"`
}

func (s *Server) handleImageCrop(args json.RawMessage) (interface{}, error) {
	var a imageCropArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.Crop(img, a.X1, a.Y1, a.X2, a.Y2, a.Scale)
}

type imageCropPatchArgs struct {
	Path   string  `json:"path"`
	X      int     `json:"x"`
	Y      int     `json:"y"`
	Radius int     `json:"radius"`
	Scale  float64 `json:"scale"`
}

func (s *Server) handleImageCropPatch(args json.RawMessage) (interface{}, error) {
	var a imageCropPatchArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Radius == 0 {
		a.Radius = 5
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.CropPatch(img, a.X, a.Y, a.Radius, a.Scale)
}

// === Measurement Handlers ===

type measureDisplacementArgs struct {
	From []float64 `json:"from"`
	To   []float64 `json:"to"`
}

func (s *Server) handleMeasureDisplacement(args json.RawMessage) (interface{}, error) {
	var a measureDisplacementArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.MeasureDisplacement(a.From, a.To)
}
