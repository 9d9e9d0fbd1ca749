package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/quartzhollow/mcpgraph/internal/logging"
	"github.com/quartzhollow/mcpgraph/internal/rpc"
)

// Client talks MCP-over-HTTP to the MCP server: tools/list over a
// plain GET, tools/call over a JSON-RPC envelope POST.
type Client struct {
	serverURL  string
	httpClient *http.Client
	logger     *logging.Logger

	mu     sync.Mutex
	nextID int64
}

// NewClient builds a bridge client targeting serverURL (the MCP
// server's HTTP base address, e.g. http://mcp-server:3002).
func NewClient(serverURL string, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Client{serverURL: serverURL, httpClient: &http.Client{}, logger: logger, nextID: 1}
}

// nextRequestID returns the bridge's per-process request id counter,
// incrementing it under a mutex held only for the increment. Ids are
// strictly increasing across every outbound call from one process.
func (c *Client) nextRequestID() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	return id
}

// ListTools issues a GET <server>/tools/list and returns its tool
// catalogue, tolerating either a bare {tools:[...]} body or a full
// JSON-RPC envelope wrapping one.
func (c *Client) ListTools(ctx context.Context) ([]ToolInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.serverURL+"/tools/list", nil)
	if err != nil {
		return nil, fmt.Errorf("bridge: build tools/list request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("bridge: tools/list request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("bridge: read tools/list response: %w", err)
	}

	defs, err := decodeToolsList(body)
	if err != nil {
		return nil, err
	}

	tools := make([]ToolInfo, 0, len(defs))
	for _, d := range defs {
		tools = append(tools, d.toToolInfo())
	}
	return tools, nil
}

// CallTool issues a JSON-RPC tools/call envelope as a POST to
// <server>/tools/call and normalizes the response into the bridge's
// {success, content, error} contract. A transport-level failure to
// reach the server is itself translated into a failed CallResult
// rather than returned as a Go error, matching the "always 200"
// contract of POST /tools/call.
func (c *Client) CallTool(ctx context.Context, toolName string, arguments map[string]any) *CallResult {
	if arguments == nil {
		arguments = map[string]any{}
	}

	envelope := map[string]any{
		"jsonrpc": "2.0",
		"id":      c.nextRequestID(),
		"method":  "tools/call",
		"params": map[string]any{
			"name":      toolName,
			"arguments": arguments,
		},
	}
	encoded, err := json.Marshal(envelope)
	if err != nil {
		return failureResult(fmt.Sprintf("encode request: %v", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.serverURL+"/tools/call", bytes.NewReader(encoded))
	if err != nil {
		return failureResult(fmt.Sprintf("build request: %v", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return failureResult(fmt.Sprintf("request failed: %v", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return failureResult(fmt.Sprintf("read response: %v", err))
	}

	result, err := decodeToolsCall(body)
	if err != nil {
		return failureResult(err.Error())
	}
	return result
}

func failureResult(msg string) *CallResult {
	return &CallResult{Success: false, Error: &msg}
}

// decodeToolsList is the dual-shape parser for the tools/list result:
// bare object first, then a JSON-RPC envelope, then a doubly nested
// result.tools as a last resort. The server emits a bare result on
// its GET path and a full envelope elsewhere, so both must parse.
func decodeToolsList(raw []byte) ([]serverToolDef, error) {
	var bare struct {
		Tools []serverToolDef `json:"tools"`
	}
	if err := json.Unmarshal(raw, &bare); err == nil && bare.Tools != nil {
		return bare.Tools, nil
	}

	var env rpcEnvelope
	if err := json.Unmarshal(raw, &env); err == nil {
		if env.Error != nil {
			return nil, fmt.Errorf("bridge: server error: %s", env.Error.Message)
		}
		if len(env.Result) > 0 {
			var inner struct {
				Tools []serverToolDef `json:"tools"`
			}
			if err := json.Unmarshal(env.Result, &inner); err == nil && inner.Tools != nil {
				return inner.Tools, nil
			}
			var nested struct {
				Result struct {
					Tools []serverToolDef `json:"tools"`
				} `json:"result"`
			}
			if err := json.Unmarshal(env.Result, &nested); err == nil && nested.Result.Tools != nil {
				return nested.Result.Tools, nil
			}
		}
	}
	return nil, fmt.Errorf("bridge: could not parse tools/list response as bare object or envelope")
}

// decodeToolsCall implements the same dual-shape tolerance for a
// tools/call result, translating a JSON-RPC error (protocol or, via
// code -1, plugin execution failure) into a failed CallResult rather
// than surfacing it as a transport error.
func decodeToolsCall(raw []byte) (*CallResult, error) {
	var bare struct {
		Content []ContentBlock `json:"content"`
	}
	if err := json.Unmarshal(raw, &bare); err == nil && bare.Content != nil {
		return &CallResult{Success: true, Content: bare.Content}, nil
	}

	var env rpcEnvelope
	if err := json.Unmarshal(raw, &env); err == nil {
		if env.Error != nil {
			msg := errorMessage(env.Error)
			return &CallResult{Success: false, Error: &msg}, nil
		}
		if len(env.Result) > 0 {
			var inner struct {
				Content []ContentBlock `json:"content"`
			}
			if err := json.Unmarshal(env.Result, &inner); err == nil && inner.Content != nil {
				return &CallResult{Success: true, Content: inner.Content}, nil
			}
			var nested struct {
				Result struct {
					Content []ContentBlock `json:"content"`
				} `json:"result"`
			}
			if err := json.Unmarshal(env.Result, &nested); err == nil && nested.Result.Content != nil {
				return &CallResult{Success: true, Content: nested.Result.Content}, nil
			}
		}
	}
	return nil, fmt.Errorf("bridge: could not parse tools/call response as bare object or envelope")
}

// rpcEnvelope is the subset of a JSON-RPC response the bridge needs
// to inspect while staying decoupled from internal/rpc's exact type
// (the server process and the bridge process are independently
// deployable).
type rpcEnvelope struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *rpc.Error      `json:"error"`
}

func errorMessage(e *rpc.Error) string {
	if s, ok := e.Data.(string); ok && s != "" {
		return s
	}
	return e.Message
}
