// Package mcp serves document generation to AI assistants over the Model
// Context Protocol (MCP).
//
// The server speaks newline-delimited JSON-RPC 2.0 over stdio, protocol
// revision 2024-11-05, and supports the tools and resources capabilities.
// An assistant can render a template with generate_document, preview table
// pagination with layout_table and read the page size presets from the
// aavanam://page-presets resource.
//
// Register it with an MCP client such as Claude Desktop:
//
//	{
//	  "mcpServers": {
//	    "aavanam": {
//	      "command": "aavanam-mcp"
//	    }
//	  }
//	}
package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime/debug"
	"sort"
	"sync"
)

// ProtocolVersion is the MCP revision the server implements.
const ProtocolVersion = "2024-11-05"

// Version is reported to clients as the server version. Release builds set
// it with -ldflags "-X github.com/jafranjemal/aavanamkit/mcp.Version=...".
var Version = "dev"

// Server answers MCP requests read line by line from its input.
type Server struct {
	tools     map[string]Tool
	resources map[string]Resource
	input     io.Reader
	output    io.Writer
	logger    *slog.Logger
	mu        sync.Mutex
}

// Tool is a callable operation advertised by tools/list.
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
	Handler     ToolHandler            `json:"-"`
}

// ToolHandler executes a tool with the given arguments. ctx is cancelled
// when the server stops.
type ToolHandler func(ctx context.Context, args map[string]interface{}) (ToolResult, error)

// ToolResult is the payload of a tools/call reply. IsError marks a failed
// call that the assistant should see, as opposed to a protocol error.
type ToolResult struct {
	Content []ContentBlock `json:"content"`
	IsError bool           `json:"isError,omitempty"`
}

// ContentBlock is one item of a tool result.
type ContentBlock struct {
	Type     string `json:"type"` // "text"
	Text     string `json:"text,omitempty"`
	MIMEType string `json:"mimeType,omitempty"`
	Data     string `json:"data,omitempty"` // base64 for binary
}

// Resource is read-only content addressed by URI.
type Resource struct {
	URI         string          `json:"uri"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	MIMEType    string          `json:"mimeType,omitempty"`
	Handler     ResourceHandler `json:"-"`
}

// ResourceHandler produces the contents of the resource at uri.
type ResourceHandler func(uri string) ([]ResourceContent, error)

// ResourceContent is one entry of a resources/read reply.
type ResourceContent struct {
	URI      string `json:"uri"`
	MIMEType string `json:"mimeType,omitempty"`
	Text     string `json:"text,omitempty"`
	Blob     string `json:"blob,omitempty"` // base64
}

// request is one line of input. A request without an ID is a notification
// and gets no reply.
type request struct {
	JSONRPC string           `json:"jsonrpc"`
	ID      *json.RawMessage `json:"id,omitempty"`
	Method  string           `json:"method"`
	Params  json.RawMessage  `json:"params,omitempty"`
}

type response struct {
	JSONRPC string           `json:"jsonrpc"`
	ID      *json.RawMessage `json:"id"`
	Result  interface{}      `json:"result,omitempty"`
	Error   *rpcError        `json:"error,omitempty"`
}

type rpcError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// JSON-RPC 2.0 error codes.
const (
	codeParseError     = -32700
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeInternal       = -32603
)

// NewServer returns a Server on stdin and stdout. Diagnostics go to logger,
// which must not write to stdout since that carries the protocol.
func NewServer(logger *slog.Logger) *Server {
	s := NewServerWithIO(os.Stdin, os.Stdout)
	if logger != nil {
		s.logger = logger
	}
	return s
}

// NewServerWithIO returns a Server on the given streams that discards its
// diagnostics.
func NewServerWithIO(in io.Reader, out io.Writer) *Server {
	return &Server{
		tools:     make(map[string]Tool),
		resources: make(map[string]Resource),
		input:     in,
		output:    out,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// AddTool registers t under its name, replacing any tool of that name.
func (s *Server) AddTool(t Tool) {
	s.tools[t.Name] = t
}

// AddResource registers r under its URI.
func (s *Server) AddResource(r Resource) {
	s.resources[r.URI] = r
}

// Run processes messages until EOF or until ctx is done. Requests are
// handled one at a time, in order.
func (s *Server) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(s.input)
	// Templates with embedded data URIs make long lines.
	scanner.Buffer(make([]byte, 0, 1024*1024), 64*1024*1024)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req request
		if err := json.Unmarshal(line, &req); err != nil {
			s.replyError(nil, codeParseError, "Parse error", err.Error())
			continue
		}

		s.dispatch(ctx, req)
	}

	return scanner.Err()
}

func (s *Server) dispatch(ctx context.Context, req request) {
	switch req.Method {
	case "initialize":
		s.initialize(req)
	case "initialized", "notifications/initialized":
	case "ping":
		s.reply(req.ID, struct{}{})
	case "tools/list":
		s.listTools(req)
	case "tools/call":
		s.callTool(ctx, req)
	case "resources/list":
		s.listResources(req)
	case "resources/read":
		s.readResource(req)
	default:
		s.replyError(req.ID, codeMethodNotFound, "Method not found", req.Method)
	}
}

func (s *Server) initialize(req request) {
	result := map[string]interface{}{
		"protocolVersion": ProtocolVersion,
		"capabilities": map[string]interface{}{
			"tools":     map[string]interface{}{},
			"resources": map[string]interface{}{},
		},
		"serverInfo": map[string]interface{}{
			"name":    "aavanam-mcp",
			"version": Version,
		},
	}
	s.reply(req.ID, result)
}

func (s *Server) listTools(req request) {
	tools := make([]Tool, 0, len(s.tools))
	for _, name := range sortedKeys(s.tools) {
		tools = append(tools, s.tools[name])
	}
	s.reply(req.ID, map[string]interface{}{"tools": tools})
}

func (s *Server) callTool(ctx context.Context, req request) {
	var params struct {
		Name      string                 `json:"name"`
		Arguments map[string]interface{} `json:"arguments"`
	}
	if err := json.Unmarshal(req.Params, &params); err != nil {
		s.replyError(req.ID, codeInvalidParams, "Invalid params", err.Error())
		return
	}

	tool, ok := s.tools[params.Name]
	if !ok {
		s.replyError(req.ID, codeInvalidParams, "Unknown tool", params.Name)
		return
	}

	s.logger.Debug("calling tool", "tool", params.Name)
	result, err := s.run(ctx, tool, params.Arguments)
	if err != nil {
		s.logger.Warn("tool failed", "tool", params.Name, "error", err)
		s.reply(req.ID, ToolResult{
			Content: []ContentBlock{{Type: "text", Text: fmt.Sprintf("Error: %v", err)}},
			IsError: true,
		})
		return
	}

	s.reply(req.ID, result)
}

// run calls the tool's handler, turning a panic into an error so that one bad
// call does not end the session.
func (s *Server) run(ctx context.Context, tool Tool, args map[string]interface{}) (result ToolResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("tool panicked", "tool", tool.Name, "panic", r, "stack", string(debug.Stack()))
			err = fmt.Errorf("internal error in %s: %v", tool.Name, r)
		}
	}()
	return tool.Handler(ctx, args)
}

func (s *Server) listResources(req request) {
	resources := make([]Resource, 0, len(s.resources))
	for _, uri := range sortedKeys(s.resources) {
		resources = append(resources, s.resources[uri])
	}
	s.reply(req.ID, map[string]interface{}{"resources": resources})
}

func (s *Server) readResource(req request) {
	var params struct {
		URI string `json:"uri"`
	}
	if err := json.Unmarshal(req.Params, &params); err != nil {
		s.replyError(req.ID, codeInvalidParams, "Invalid params", err.Error())
		return
	}

	resource, ok := s.resources[params.URI]
	if !ok {
		s.replyError(req.ID, codeInvalidParams, "Unknown resource", params.URI)
		return
	}

	contents, err := resource.Handler(params.URI)
	if err != nil {
		s.replyError(req.ID, codeInternal, "Resource error", err.Error())
		return
	}

	s.reply(req.ID, map[string]interface{}{"contents": contents})
}

func (s *Server) reply(id *json.RawMessage, result interface{}) {
	s.write(response{JSONRPC: "2.0", ID: id, Result: result})
}

func (s *Server) replyError(id *json.RawMessage, code int, message string, data interface{}) {
	s.write(response{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &rpcError{Code: code, Message: message, Data: data},
	})
}

// write encodes resp as one line of output.
func (s *Server) write(resp response) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(resp)
	if err != nil {
		s.logger.Error("encoding response", "error", err)
		return
	}
	data = append(data, '\n')
	if _, err := s.output.Write(data); err != nil {
		s.logger.Error("writing response", "error", err)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
