package steem

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
)

// Client is a read-only condenser API client. It covers exactly the
// operations the bot consumes: head position, block contents, content
// lookup by author+permlink and reply listing.
type Client struct {
	nodeURL    string
	httpClient *http.Client
	userAgent  string
	reqID      atomic.Int64
}

func NewClient(nodeURL, userAgent string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		nodeURL:    nodeURL,
		httpClient: httpClient,
		userAgent:  userAgent,
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
	ID      int64  `json:"id"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

func (c *Client) call(ctx context.Context, method string, params any, result any) error {
	payload, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      c.reqID.Add(1),
	})
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.nodeURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach node: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if rpcResp.Error != nil {
		return fmt.Errorf("node error %d: %s", rpcResp.Error.Code, rpcResp.Error.Message)
	}

	if result != nil {
		if err := json.Unmarshal(rpcResp.Result, result); err != nil {
			return fmt.Errorf("failed to decode result for %s: %w", method, err)
		}
	}

	return nil
}

// HeadBlockNumber returns the current head position of the chain.
func (c *Client) HeadBlockNumber(ctx context.Context) (int64, error) {
	var props struct {
		HeadBlockNumber int64 `json:"head_block_number"`
	}
	if err := c.call(ctx, "condenser_api.get_dynamic_global_properties", []any{}, &props); err != nil {
		return 0, err
	}
	return props.HeadBlockNumber, nil
}

// GetBlock fetches a block by number. A missing block (past the head)
// yields (nil, nil).
func (c *Client) GetBlock(ctx context.Context, num int64) (*Block, error) {
	var block *Block
	if err := c.call(ctx, "condenser_api.get_block", []any{num}, &block); err != nil {
		return nil, err
	}
	return block, nil
}

// GetContent fetches a content item by author+permlink. A non-existent
// item yields (nil, nil).
func (c *Client) GetContent(ctx context.Context, author, permlink string) (*Comment, error) {
	var comment Comment
	if err := c.call(ctx, "condenser_api.get_content", []any{author, permlink}, &comment); err != nil {
		return nil, err
	}
	if comment.Author == "" {
		return nil, nil
	}
	return &comment, nil
}

// GetContentReplies lists the direct replies to a content item.
func (c *Client) GetContentReplies(ctx context.Context, author, permlink string) ([]Comment, error) {
	var replies []Comment
	if err := c.call(ctx, "condenser_api.get_content_replies", []any{author, permlink}, &replies); err != nil {
		return nil, err
	}
	return replies, nil
}
