// Package starknet reads and writes the price contract over Starknet JSON-RPC.
package starknet

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fernetbarato/fernet-barato/api/internal/codec"
)

// BlockLatest is the block tag used for every read.
const BlockLatest = "latest"

// RPCRequest is a JSON-RPC 2.0 request envelope.
type RPCRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
	ID      int    `json:"id"`
}

// RPCResponse is a JSON-RPC 2.0 response envelope.
type RPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError is the error object of a failed call.
type RPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	if len(e.Data) > 0 {
		return fmt.Sprintf("rpc error %d: %s (%s)", e.Code, e.Message, string(e.Data))
	}
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// FunctionCall is the request body of starknet_call.
type FunctionCall struct {
	ContractAddress    string   `json:"contract_address"`
	EntryPointSelector string   `json:"entry_point_selector"`
	Calldata           []string `json:"calldata"`
}

// Client talks to one Starknet node.
type Client struct {
	rpcURL     string
	httpClient *http.Client
}

// ClientConfig holds client configuration.
type ClientConfig struct {
	RPCURL     string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// NewClient creates a client for the node at cfg.RPCURL.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.RPCURL == "" {
		return nil, errors.New("RPC URL required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{rpcURL: cfg.RPCURL, httpClient: httpClient}, nil
}

// Call makes an RPC call to the node.
func (c *Client) Call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	body, err := json.Marshal(RPCRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      1,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.rpcURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("rpc status %d: %s", resp.StatusCode, bytes.TrimSpace(respBody))
	}

	var rpcResp RPCResponse
	if err := json.Unmarshal(respBody, &rpcResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if rpcResp.Error != nil {
		return nil, rpcResp.Error
	}

	return rpcResp.Result, nil
}

// CallContract runs a read-only entrypoint and returns the raw result felts.
func (c *Client) CallContract(ctx context.Context, contract, entrypoint string, calldata []string) ([]string, error) {
	address, err := codec.ParseFelt(contract)
	if err != nil {
		return nil, fmt.Errorf("contract address: %w", err)
	}

	hexCalldata := make([]string, 0, len(calldata))
	for i, raw := range calldata {
		n, err := codec.ParseFelt(raw)
		if err != nil {
			return nil, fmt.Errorf("calldata[%d]: %w", i, err)
		}
		hexCalldata = append(hexCalldata, codec.FormatHex(n))
	}

	call := FunctionCall{
		ContractAddress:    codec.FormatHex(address),
		EntryPointSelector: codec.FormatHex(Selector(entrypoint)),
		Calldata:           hexCalldata,
	}

	result, err := c.Call(ctx, "starknet_call", []any{call, BlockLatest})
	if err != nil {
		return nil, err
	}

	var felts []string
	if err := json.Unmarshal(result, &felts); err != nil {
		return nil, fmt.Errorf("decode call result: %w", err)
	}
	return felts, nil
}
