package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/switchboard-xyz/switchboard-feed-factory/internal/oraclejob"
)

// Client talks to a Switchboard transaction gateway over HTTP. The gateway
// holds the funding keypair and does the actual signing; this side only
// names accounts and job definitions.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a gateway client. baseURL has no trailing slash.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

var _ Service = (*Client)(nil)

func (c *Client) VerifyManagerAccount(ctx context.Context, managerRef string) error {
	var resp struct {
		Valid bool `json:"valid"`
	}
	path := fmt.Sprintf("/v1/fulfillment-managers/%s", managerRef)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return err
	}
	if !resp.Valid {
		return fmt.Errorf("account %s is not a fulfillment manager", managerRef)
	}
	return nil
}

func (c *Client) CreateFeed(ctx context.Context, programID string) (FeedHandle, error) {
	req := map[string]string{"programId": programID}
	var resp struct {
		PublicKey string `json:"publicKey"`
	}
	if err := c.do(ctx, http.MethodPost, "/v1/feeds", req, &resp); err != nil {
		return FeedHandle{}, err
	}
	return FeedHandle{PublicKey: resp.PublicKey}, nil
}

func (c *Client) AttachJob(ctx context.Context, feed FeedHandle, graph *oraclejob.Graph) (JobHandle, error) {
	req := map[string]interface{}{"tasks": graph.Tasks}
	var resp struct {
		PublicKey string `json:"publicKey"`
	}
	path := fmt.Sprintf("/v1/feeds/%s/jobs", feed.PublicKey)
	if err := c.do(ctx, http.MethodPost, path, req, &resp); err != nil {
		return JobHandle{}, err
	}
	return JobHandle{PublicKey: resp.PublicKey}, nil
}

func (c *Client) SetFeedConfig(ctx context.Context, feed FeedHandle, cfg FeedConfig) error {
	req := map[string]interface{}{
		"minConfirmations":      cfg.MinConfirmations,
		"minUpdateDelaySeconds": cfg.MinUpdateDelaySeconds,
		"fulfillmentManager":    cfg.AuthorityRef,
		"lock":                  cfg.Lock,
	}
	path := fmt.Sprintf("/v1/feeds/%s/config", feed.PublicKey)
	return c.do(ctx, http.MethodPut, path, req, nil)
}

func (c *Client) CreateAuthority(ctx context.Context, managerRef string, feed FeedHandle, perms AuthorityPerms) (AuthorityHandle, error) {
	req := map[string]interface{}{
		"fulfillmentManager": managerRef,
		"authorizeHeartbeat": perms.AuthorizeHeartbeat,
		"authorizeUsage":     perms.AuthorizeUsage,
	}
	var resp struct {
		PublicKey string `json:"publicKey"`
		Secret    []byte `json:"secretKey"`
	}
	path := fmt.Sprintf("/v1/feeds/%s/authority", feed.PublicKey)
	if err := c.do(ctx, http.MethodPost, path, req, &resp); err != nil {
		return AuthorityHandle{}, err
	}
	return AuthorityHandle{PublicKey: resp.PublicKey, Secret: resp.Secret}, nil
}

func (c *Client) ReadFeedState(ctx context.Context, feed FeedHandle) (FeedState, error) {
	var resp struct {
		JobCount         int  `json:"jobCount"`
		MinConfirmations int  `json:"minConfirmations"`
		Locked           bool `json:"locked"`
	}
	path := fmt.Sprintf("/v1/feeds/%s", feed.PublicKey)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return FeedState{}, err
	}
	return FeedState{
		AttachedJobCount: resp.JobCount,
		MinConfirmations: resp.MinConfirmations,
		Locked:           resp.Locked,
	}, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("gateway returned status %d: %s", resp.StatusCode, bytes.TrimSpace(payload))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
