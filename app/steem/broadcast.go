package steem

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Broadcaster posts and edits replies through a SteemConnect-style
// broadcast service. The service holds the posting authority; this
// process only carries an access token, never keys.
type Broadcaster struct {
	baseURL    string
	token      string
	account    string
	httpClient *http.Client
	userAgent  string

	// now is swappable for tests; reply permlinks embed a timestamp.
	now func() time.Time
}

func NewBroadcaster(baseURL, token, account, userAgent string, httpClient *http.Client) *Broadcaster {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Broadcaster{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		account:    account,
		httpClient: httpClient,
		userAgent:  userAgent,
		now:        time.Now,
	}
}

// Account returns the acting identity replies are posted under.
func (b *Broadcaster) Account() string {
	return b.account
}

type commentPayload struct {
	ParentAuthor   string `json:"parent_author"`
	ParentPermlink string `json:"parent_permlink"`
	Author         string `json:"author"`
	Permlink       string `json:"permlink"`
	Title          string `json:"title"`
	Body           string `json:"body"`
	JSONMetadata   string `json:"json_metadata"`
}

// PostReply creates a new reply under parent.
func (b *Broadcaster) PostReply(ctx context.Context, parent *Comment, body, jsonMetadata string) error {
	permlink := fmt.Sprintf("re-%s-%s", parent.Permlink, b.now().UTC().Format("20060102t150405z"))
	return b.broadcastComment(ctx, commentPayload{
		ParentAuthor:   parent.Author,
		ParentPermlink: parent.Permlink,
		Author:         b.account,
		Permlink:       permlink,
		Body:           body,
		JSONMetadata:   jsonMetadata,
	})
}

// EditReply overwrites an existing reply in place. On this chain an edit
// is a comment operation re-broadcast under the same permlink.
func (b *Broadcaster) EditReply(ctx context.Context, reply *Comment, body, jsonMetadata string) error {
	return b.broadcastComment(ctx, commentPayload{
		ParentAuthor:   reply.ParentAuthor,
		ParentPermlink: reply.ParentPermlink,
		Author:         reply.Author,
		Permlink:       reply.Permlink,
		Body:           body,
		JSONMetadata:   jsonMetadata,
	})
}

func (b *Broadcaster) broadcastComment(ctx context.Context, op commentPayload) error {
	payload, err := json.Marshal(map[string]any{
		"operations": []any{
			[]any{"comment", op},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to encode broadcast: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", b.baseURL+"/api/broadcast", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", b.token)
	req.Header.Set("User-Agent", b.userAgent)

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach broadcast service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("broadcast failed with status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}
