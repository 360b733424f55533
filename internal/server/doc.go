// Package server implements the MCP (Model Context Protocol) server for
// subpixel extremum localization.
//
// This package provides a JSON-RPC 2.0 server that exposes the localization
// core through the MCP protocol, so that MCP clients can measure peak and
// valley positions in images more precisely than the pixel grid allows.
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
// Extremum Localization:
//   - subpixel_locate: Refine one integer extremum
//   - subpixel_maxima: Find and refine all local maxima
//   - subpixel_minima: Find and refine all local minima
//   - subpixel_mean_shift: Climb to the nearest intensity mode
//   - subpixel_find: List non-zero pixels
//
// Field Inspection:
//   - image_sample_value: Interpolate the field at a fractional point
//   - image_extrema_overlay: Mark points or located extrema
//   - image_crop: Extract rectangular region
//   - image_crop_patch: Zoom into a pixel neighbourhood
//
// Measurement:
//   - subpixel_measure_displacement: Distance and angle between two points
//
// Tools that operate on intensities accept a channel (luma by default) and
// an optional pre-smoothing sigma; see imaging.ToField.
//
// # Image Caching
//
// The server maintains an in-memory cache of loaded images. Images are cached
// by path and reused across multiple tool calls, avoiding redundant disk I/O.
// The cache persists for the lifetime of the server process.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// A tool call that exceeds the configured timeout fails the same way.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	log, err := cfg.Logger(os.Stderr)
//	if err != nil {
//	    return err
//	}
//	srv := server.New(cfg, log)
//	return srv.Run()
package server
