package solr

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

// StatusError is a non-success response from Solr.
type StatusError struct {
	Code int
	Body string
}

func (e StatusError) Error() string {
	body := e.Body
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	return "solr returned status " + http.StatusText(e.Code) + ": " + body
}

// Client talks to one Solr instance. The zero timeout on the embedded HTTP
// client is deliberate for bulk writes; admin calls are bounded by the
// contexts the publish coordinator passes in.
type Client struct {
	base string
	http *http.Client
}

// ClientOption is a functional option type for Client.
type ClientOption func(c *Client)

// WithHTTPClient is an option for Client which replaces the underlying HTTP
// client.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) {
		c.http = h
	}
}

// NewClient creates a Client for the Solr instance at baseURL
// (e.g. "http://localhost:8983").
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Add submits docs to core as one bulk write.
func (c *Client) Add(ctx context.Context, core string, docs []Document) error {
	body, err := json.Marshal(docs)
	if err != nil {
		return errors.Wrap(err, "encoding documents")
	}
	return c.update(ctx, core, body, nil)
}

// Commit issues a hard commit on core, making pending writes visible.
func (c *Client) Commit(ctx context.Context, core string) error {
	return c.update(ctx, core, []byte(`{}`), url.Values{"commit": {"true"}})
}

// DeleteByQuery removes every document in core matching query and commits.
func (c *Client) DeleteByQuery(ctx context.Context, core, query string) error {
	body, err := json.Marshal(map[string]any{"delete": map[string]string{"query": query}})
	if err != nil {
		return errors.Wrap(err, "encoding delete query")
	}
	return c.update(ctx, core, body, url.Values{"commit": {"true"}})
}

func (c *Client) update(ctx context.Context, core string, body []byte, params url.Values) error {
	u := c.base + "/solr/" + core + "/update"
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "building update request")
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

// Reload reloads core so newly written documents and schema changes take
// effect.
func (c *Client) Reload(ctx context.Context, core string) error {
	return c.admin(ctx, url.Values{"action": {"RELOAD"}, "core": {core}})
}

// Swap atomically exchanges two cores, moving the staging generation into the
// live position.
func (c *Client) Swap(ctx context.Context, core, other string) error {
	return c.admin(ctx, url.Values{"action": {"SWAP"}, "core": {core}, "other": {other}})
}

func (c *Client) admin(ctx context.Context, params url.Values) error {
	u := c.base + "/solr/admin/cores?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return errors.Wrap(err, "building admin request")
	}
	return c.do(req)
}

func (c *Client) do(req *http.Request) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "calling solr")
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return StatusError{Code: resp.StatusCode, Body: string(body)}
	}
	return nil
}
