// Package server implements the MCP (Model Context Protocol) server for the
// watermark engine.
//
// This package provides a JSON-RPC 2.0 server that exposes watermarking
// through the MCP protocol, so an MCP-compatible client can inspect images,
// preview a placement and produce watermarked copies.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Basic Image Information:
//   - image_load: Load image and get metadata
//   - image_dimensions: Get width and height
//
// Watermarking:
//   - watermark_plan: Scale factor, mark size and stamp offsets (dry run)
//   - watermark_apply: Composite and write the result
//
// The watermark tools take every configuration field by its snake_case name
// (proportion, opacity, scaling, placement, position, margin, tile_padding).
// Omitted fields fall back to the same defaults as the command line.
//
// # Image Caching
//
// The server maintains an in-memory cache of loaded images. Images are cached
// by path and reused across multiple tool calls, avoiding redundant disk I/O.
// A watermark applied to many canvases is therefore decoded once.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: {"code": "DECODE_FAILED", "message": "..."} for structured
//     errors, the plain error string otherwise
//
// # Usage
//
// The server is started by the serve command:
//
//	srv := server.New(logger, version)
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
