package server

import (
	"context"
	"encoding/json"
	"fmt"
	"image"

	"github.com/ironsheep/image-watermark/internal/errs"
	"github.com/ironsheep/image-watermark/internal/imaging"
	"github.com/ironsheep/image-watermark/internal/watermark"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "watermark_apply").
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
// For structured failures the data field carries the error code and the
// offending path.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.logger.Warn("tool failed", "tool", params.Name, "err", err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", errorData(err))
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
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies default values for optional parameters
//  3. Loads images from cache as needed
//  4. Calls the appropriate imaging/watermark function
//  5. Returns the result or error
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Basic Image Information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)

	// Watermarking
	case "watermark_plan":
		return s.handleWatermarkPlan(args)
	case "watermark_apply":
		return s.handleWatermarkApply(ctx, args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message string, data interface{}) *MCPResponse {
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

// errorData renders err for the data field of an error response.
func errorData(err error) interface{} {
	code := errs.GetCode(err)
	if code == "" {
		return err.Error()
	}
	return map[string]interface{}{
		"code":    code,
		"message": errs.UserMessage(err),
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Basic Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (a imageLoadArgs) validate() error {
	if a.Path == "" {
		return errs.New(errs.CodeInvalidPath, "path is required")
	}
	return nil
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := a.validate(); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := a.validate(); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

// === Watermark Handlers ===

// watermarkArgs carries the canvas and mark paths plus every Config field,
// flattened. Omitted fields keep their defaults.
type watermarkArgs struct {
	ImagePath     string `json:"image_path"`
	WatermarkPath string `json:"watermark_path"`
	watermark.Config
}

func parseWatermarkArgs(args json.RawMessage, dst interface{}) error {
	if err := json.Unmarshal(args, dst); err != nil {
		return errs.Wrap(errs.CodeInvalidConfig, err, "invalid arguments")
	}
	return nil
}

func (a watermarkArgs) validate() error {
	if a.ImagePath == "" {
		return errs.New(errs.CodeInvalidPath, "image_path is required")
	}
	if a.WatermarkPath == "" {
		return errs.New(errs.CodeInvalidPath, "watermark_path is required")
	}
	for _, p := range []string{a.ImagePath, a.WatermarkPath} {
		if !imaging.IsImagePath(p) {
			return errs.New(errs.CodeInvalidPath, "unsupported image extension (want .png, .jpg or .jpeg)").WithPath(p)
		}
	}
	return a.Config.Validate()
}

// load decodes the canvas and the mark through the cache.
func (s *Server) load(a watermarkArgs) (canvas, mark image.Image, err error) {
	canvas, err = s.cache.Load(a.ImagePath)
	if err != nil {
		return nil, nil, err
	}
	mark, err = s.cache.Load(a.WatermarkPath)
	if err != nil {
		return nil, nil, err
	}
	return canvas, mark, nil
}

func (s *Server) handleWatermarkPlan(args json.RawMessage) (interface{}, error) {
	a := watermarkArgs{Config: watermark.DefaultConfig()}
	if err := parseWatermarkArgs(args, &a); err != nil {
		return nil, err
	}
	if err := a.validate(); err != nil {
		return nil, err
	}

	canvas, mark, err := s.load(a)
	if err != nil {
		return nil, err
	}
	return s.engine.Plan(watermark.Size(canvas), watermark.Size(mark), a.Config)
}

type watermarkApplyArgs struct {
	watermarkArgs
	OutputPath  string `json:"output_path"`
	JPEGQuality int    `json:"jpeg_quality"`
	Background  string `json:"background"`
}

// ApplyResult is returned by the watermark_apply tool.
type ApplyResult struct {
	OutputPath string          `json:"output_path"`
	Plan       *watermark.Plan `json:"plan"`
}

func (s *Server) handleWatermarkApply(ctx context.Context, args json.RawMessage) (interface{}, error) {
	a := watermarkApplyArgs{
		watermarkArgs: watermarkArgs{Config: watermark.DefaultConfig()},
		JPEGQuality:   imaging.DefaultEncodeOptions().JPEGQuality,
		Background:    "#ffffff",
	}
	if err := parseWatermarkArgs(args, &a); err != nil {
		return nil, err
	}
	if err := a.validate(); err != nil {
		return nil, err
	}
	if a.OutputPath == "" {
		return nil, errs.New(errs.CodeInvalidPath, "output_path is required")
	}
	if _, err := imaging.FormatFromPath(a.OutputPath); err != nil {
		return nil, err
	}
	bg, err := imaging.ParseBackground(a.Background)
	if err != nil {
		return nil, err
	}

	canvas, mark, err := s.load(a.watermarkArgs)
	if err != nil {
		return nil, err
	}

	res, err := s.engine.Apply(ctx, canvas, mark, a.Config)
	if err != nil {
		return nil, err
	}

	opts := imaging.EncodeOptions{JPEGQuality: a.JPEGQuality, Background: bg}
	if err := imaging.Save(res.Image, a.OutputPath, opts); err != nil {
		return nil, err
	}
	// The output may overwrite a file served from the cache.
	s.cache.Evict(a.OutputPath)

	s.logger.Info("watermarked", "image", a.ImagePath, "output", a.OutputPath)
	return &ApplyResult{OutputPath: a.OutputPath, Plan: &res.Plan}, nil
}
