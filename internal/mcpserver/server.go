package mcpserver

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"vero/internal/search"
)

// Searcher answers document searches for the MCP tool.
type Searcher interface {
	Search(ctx context.Context, query string, topK int) ([]search.Chunk, error)
}

// Server answers MCP requests for one search backend.
type Server struct {
	name    string
	version string
	search  Searcher
	logger  *slog.Logger
}

func New(name, version string, searcher Searcher, logger *slog.Logger) *Server {
	return &Server{name: name, version: version, search: searcher, logger: logger}
}

// ServeStdio reads newline-delimited JSON-RPC requests from in and writes
// responses to out. Blocks until in is closed or ctx is cancelled.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	encoder := json.NewEncoder(out)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			if err := encoder.Encode(errorResponse(nil, errCodeParse, err.Error())); err != nil {
				return fmt.Errorf("encode error response: %w", err)
			}
			continue
		}

		resp := s.HandleRequest(ctx, req)
		if resp.JSONRPC == "" {
			// Notification: nothing to write back.
			continue
		}
		if err := encoder.Encode(resp); err != nil {
			return fmt.Errorf("encode response: %w", err)
		}
		s.logger.Debug("handled mcp request", "method", req.Method)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read request: %w", err)
	}
	return nil
}
