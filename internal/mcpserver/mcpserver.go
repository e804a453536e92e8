// Package mcpserver exposes document search as an MCP tool over stdio,
// so agent hosts can call it like any other tool server.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	dErrors "vero/pkg/domain-errors"
)

const protocolVersion = "2024-11-05"

// JSON-RPC 2.0 error codes, plus the tool-specific range.
const (
	errCodeParse          = -32700
	errCodeInvalidRequest = -32600
	errCodeMethodNotFound = -32601
	errCodeInvalidParams  = -32602
	errCodeInternal       = -32603
	errCodeToolNotFound   = -32001
	errCodeToolFailed     = -32002
)

// Request is an incoming JSON-RPC request.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response is a JSON-RPC response.
type Response struct {
	JSONRPC string    `json:"jsonrpc"`
	ID      any       `json:"id,omitempty"`
	Result  any       `json:"result,omitempty"`
	Error   *RPCError `json:"error,omitempty"`
}

// RPCError is a JSON-RPC error object.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func errorResponse(id any, code int, message string) Response {
	return Response{JSONRPC: "2.0", ID: id, Error: &RPCError{Code: code, Message: message}}
}

func resultResponse(id any, result any) Response {
	return Response{JSONRPC: "2.0", ID: id, Result: result}
}

// searchTool describes the one tool this server exposes.
var searchTool = mcp.Tool{
	Name:        "search_documents",
	Description: "Search internal company documents and return the most relevant passages.",
	InputSchema: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{
				"type":        "string",
				"description": "Natural language search query",
			},
			"n_results": map[string]any{
				"type":        "integer",
				"description": "How many passages to return (default 3)",
			},
		},
		"required": []string{"query"},
	},
}

// HandleRequest dispatches one JSON-RPC request.
func (s *Server) HandleRequest(ctx context.Context, req Request) Response {
	switch req.Method {
	case "initialize":
		return s.handleInitialize(req.ID)
	case "notifications/initialized", "initialized":
		// Notification, no response expected.
		return Response{}
	case "tools/list":
		return s.handleToolsList(req.ID)
	case "tools/call":
		return s.handleToolsCall(ctx, req.ID, req.Params)
	case "ping":
		return resultResponse(req.ID, map[string]any{})
	default:
		return errorResponse(req.ID, errCodeMethodNotFound, fmt.Sprintf("method %s not found", req.Method))
	}
}

func (s *Server) handleInitialize(id any) Response {
	return resultResponse(id, map[string]any{
		"protocolVersion": protocolVersion,
		"capabilities": map[string]any{
			"tools": map[string]any{},
		},
		"serverInfo": map[string]any{
			"name":    s.name,
			"version": s.version,
		},
	})
}

func (s *Server) handleToolsList(id any) Response {
	return resultResponse(id, map[string]any{
		"tools": []map[string]any{{
			"name":        searchTool.Name,
			"description": searchTool.Description,
			"inputSchema": searchTool.InputSchema,
		}},
	})
}

type toolsCallParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

type searchArguments struct {
	Query    string `json:"query"`
	NResults int    `json:"n_results"`
}

func (s *Server) handleToolsCall(ctx context.Context, id any, params json.RawMessage) Response {
	var call toolsCallParams
	if err := json.Unmarshal(params, &call); err != nil {
		return errorResponse(id, errCodeInvalidParams, err.Error())
	}
	if call.Name != searchTool.Name {
		return errorResponse(id, errCodeToolNotFound, fmt.Sprintf("tool %s not found", call.Name))
	}

	var args searchArguments
	if len(call.Arguments) > 0 {
		if err := json.Unmarshal(call.Arguments, &args); err != nil {
			return errorResponse(id, errCodeInvalidParams, err.Error())
		}
	}

	chunks, err := s.search.Search(ctx, args.Query, args.NResults)
	if err != nil {
		code := errCodeToolFailed
		if dErrors.Is(err, dErrors.CodeBadRequest) {
			code = errCodeInvalidParams
		}
		return errorResponse(id, code, err.Error())
	}

	content := make([]map[string]any, 0, len(chunks))
	for _, chunk := range chunks {
		content = append(content, map[string]any{
			"type": "text",
			"text": chunk.Text,
		})
	}
	if len(content) == 0 {
		content = append(content, map[string]any{
			"type": "text",
			"text": "No matching documents found.",
		})
	}
	return resultResponse(id, map[string]any{"content": content})
}
