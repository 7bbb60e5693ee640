package bridge

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/jonwraymond/toolwire/client"
	"github.com/jonwraymond/toolwire/codec"
	"github.com/jonwraymond/toolwire/schema"
)

// Invoker submits a built call to the chain and returns a textual result.
// Without one the bridge runs in dry-run mode: tools/call answers with the
// assembled call instead of executing it.
type Invoker interface {
	Invoke(ctx context.Context, call *client.Call) (string, error)
}

// Config assembles a Bridge.
type Config struct {
	// Program is the on-chain address the bridge fronts.
	Program string
	// Document is the program's discovered schema.
	Document *codec.Document
	// Client builds calls; required.
	Client *client.Client
	// Invoker executes calls; optional.
	Invoker Invoker
	// ServerInfo reported by initialize.
	ServerName    string
	ServerVersion string
}

// Bridge exposes one discovered program as an MCP server: the program's
// tools become MCP tools and tools/call builds (and optionally submits) the
// corresponding on-chain call.
type Bridge struct {
	cfg   Config
	tools []mcp.Tool
}

// New validates the configuration and prepares the MCP tool list.
func New(cfg Config) (*Bridge, error) {
	if cfg.Program == "" || cfg.Document == nil || cfg.Client == nil {
		return nil, fmt.Errorf("%w: program, document, and client are required", ErrInvalidRequest)
	}
	if cfg.ServerName == "" {
		cfg.ServerName = cfg.Document.Name
	}
	if cfg.ServerVersion == "" {
		cfg.ServerVersion = "0.1.0"
	}

	b := &Bridge{cfg: cfg}
	for i := range cfg.Document.Tools {
		tool := &cfg.Document.Tools[i]
		if tool.Name == schema.DiscoveryToolName {
			continue
		}
		b.tools = append(b.tools, toMCPTool(tool))
	}
	return b, nil
}

// Discover fetches the program's full schema through c and wraps it in a
// bridge.
func Discover(ctx context.Context, c *client.Client, program string, invoker Invoker) (*Bridge, error) {
	doc, err := c.ListToolsAll(ctx, program)
	if err != nil {
		return nil, err
	}
	return New(Config{Program: program, Document: doc, Client: c, Invoker: invoker})
}

// MCPRequest represents an incoming MCP JSON-RPC request.
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an MCP JSON-RPC response.
type MCPResponse struct {
	JSONRPC string    `json:"jsonrpc"`
	ID      any       `json:"id"`
	Result  any       `json:"result,omitempty"`
	Error   *MCPError `json:"error,omitempty"`
}

// MCPError is a JSON-RPC error object.
type MCPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// HandleRequest processes an MCP request and returns a response.
func (b *Bridge) HandleRequest(ctx context.Context, req MCPRequest) MCPResponse {
	switch req.Method {
	case "initialize":
		return b.handleInitialize(req.ID)
	case "tools/list":
		return b.handleToolsList(req.ID)
	case "tools/call":
		return b.handleToolsCall(ctx, req.ID, req.Params)
	default:
		return MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error: &MCPError{
				Code:    ErrCodeMethodNotFound,
				Message: fmt.Sprintf("method %s not found", req.Method),
			},
		}
	}
}

func (b *Bridge) handleInitialize(id any) MCPResponse {
	result := map[string]any{
		"protocolVersion": schema.Version,
		"capabilities": map[string]any{
			"tools": map[string]any{},
		},
		"serverInfo": map[string]any{
			"name":    b.cfg.ServerName,
			"version": b.cfg.ServerVersion,
		},
	}
	return MCPResponse{JSONRPC: "2.0", ID: id, Result: result}
}

func (b *Bridge) handleToolsList(id any) MCPResponse {
	mcpTools := make([]map[string]any, 0, len(b.tools))
	for _, tool := range b.tools {
		mcpTools = append(mcpTools, map[string]any{
			"name":        tool.Name,
			"description": tool.Description,
			"inputSchema": tool.InputSchema,
		})
	}
	return MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Result:  map[string]any{"tools": mcpTools},
	}
}

type toolsCallParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

func (b *Bridge) handleToolsCall(ctx context.Context, id any, params json.RawMessage) MCPResponse {
	var callParams toolsCallParams
	if err := json.Unmarshal(params, &callParams); err != nil {
		return MCPResponse{
			JSONRPC: "2.0",
			ID:      id,
			Error:   &MCPError{Code: ErrCodeInvalidParams, Message: err.Error()},
		}
	}

	result, err := b.Execute(ctx, callParams.Name, callParams.Arguments)
	if err != nil {
		code := ErrCodeToolExecFailed
		if errors.Is(err, ErrToolNotFound) || errors.Is(err, client.ErrToolNotFound) {
			code = ErrCodeToolNotFound
		}
		if errors.Is(err, client.ErrMissingParam) || errors.Is(err, client.ErrInvalidArg) {
			code = ErrCodeInvalidParams
		}
		return MCPResponse{
			JSONRPC: "2.0",
			ID:      id,
			Error:   &MCPError{Code: code, Message: err.Error()},
		}
	}

	return MCPResponse{JSONRPC: "2.0", ID: id, Result: result}
}

// Execute builds the named tool's call from MCP arguments and either submits
// it through the invoker or, in dry-run mode, returns the assembled call.
func (b *Bridge) Execute(ctx context.Context, name string, arguments map[string]any) (any, error) {
	tool := b.cfg.Document.Tool(name)
	if tool == nil || name == schema.DiscoveryToolName {
		return nil, fmt.Errorf("%w: %q", ErrToolNotFound, name)
	}

	accounts, args, err := splitArguments(tool, arguments)
	if err != nil {
		return nil, err
	}

	call, err := b.cfg.Client.BuildCall(b.cfg.Document, b.cfg.Program, name, accounts, args)
	if err != nil {
		return nil, err
	}

	if b.cfg.Invoker != nil {
		text, err := b.cfg.Invoker.Invoke(ctx, call)
		if err != nil {
			return nil, err
		}
		return textResult(text), nil
	}
	return callResult(call), nil
}

// splitArguments routes each MCP argument to either the account map or the
// data-argument map, stringifying values so the call builder sees the same
// representation it would parse from a CLI.
func splitArguments(tool *codec.Tool, arguments map[string]any) (accounts, args map[string]string, err error) {
	accounts = make(map[string]string)
	args = make(map[string]string)

	for name, value := range arguments {
		p := tool.Param(name)
		if p == nil {
			return nil, nil, fmt.Errorf("%w: unknown argument %q", ErrInvalidRequest, name)
		}
		text, err := stringify(value)
		if err != nil {
			return nil, nil, fmt.Errorf("argument %q: %w", name, err)
		}
		if p.Type == schema.ArgPubkey {
			accounts[name] = text
		} else {
			args[name] = text
		}
	}
	return accounts, args, nil
}

func stringify(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10), nil
		}
		return "", fmt.Errorf("%w: non-integer number %v", ErrInvalidRequest, v)
	case json.Number:
		return v.String(), nil
	default:
		return "", fmt.Errorf("%w: unsupported argument type %T", ErrInvalidRequest, value)
	}
}

func textResult(text string) map[string]any {
	return map[string]any{
		"content": []map[string]any{
			{"type": "text", "text": text},
		},
	}
}

// callResult is the dry-run answer: everything a wallet needs to submit the
// call itself.
func callResult(call *client.Call) map[string]any {
	accounts := make([]map[string]any, 0, len(call.Accounts))
	for _, meta := range call.Accounts {
		accounts = append(accounts, map[string]any{
			"address":  meta.Address,
			"signer":   meta.Signer,
			"writable": meta.Writable,
		})
	}
	built := map[string]any{
		"program":  call.Program,
		"accounts": accounts,
		"data":     base64.StdEncoding.EncodeToString(call.Data),
	}
	text, _ := json.Marshal(built)
	return map[string]any{
		"content": []map[string]any{
			{"type": "text", "text": string(text)},
		},
		"call": built,
	}
}
