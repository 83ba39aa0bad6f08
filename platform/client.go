// Package platform is a client for the document platform's REST API, limited
// to the calls processors need.
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/xraph/scribe/ratelimit"
)

const (
	// DefaultBaseURL is the public API endpoint.
	DefaultBaseURL = "https://api.notion.com/v1"

	// APIVersion is sent in the Notion-Version header.
	APIVersion = "2022-06-28"

	maxErrorBody = 4096
	maxListPages = 10
	pageSize     = 100
)

// ErrNotFound is returned when the API answers 404.
var ErrNotFound = errors.New("scribe: platform object not found")

// API is the subset of the platform used by processors.
type API interface {
	GetPage(ctx context.Context, pageID string) (*Page, error)
	UpdatePageProperties(ctx context.Context, pageID string, props Properties) error
	BlockText(ctx context.Context, blockID string) (string, error)
	AppendParagraphs(ctx context.Context, blockID string, paragraphs []string) error
	ListComments(ctx context.Context, blockID string) ([]Comment, error)
	CreateComment(ctx context.Context, req CommentRequest) (*Comment, error)
}

// compile-time interface check.
var _ API = (*Client)(nil)

// CommentRequest creates a comment on a page or replies in a discussion.
// Exactly one of PageID and DiscussionID should be set.
type CommentRequest struct {
	PageID       string
	DiscussionID string
	Text         string
}

// APIError is a non-2xx answer from the platform.
type APIError struct {
	StatusCode int    `json:"status"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("platform: status %d: %s: %s", e.StatusCode, e.Code, e.Message)
}

// Is lets errors.Is(err, ErrNotFound) match 404 answers.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// Client calls the platform API. It is safe for concurrent use.
type Client struct {
	token   string
	baseURL string
	http    *http.Client
	limiter *ratelimit.Bound
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithRateLimit throttles outbound calls.
func WithRateLimit(b *ratelimit.Bound) Option {
	return func(c *Client) { c.limiter = b }
}

// NewClient creates a client authenticated with an integration token.
func NewClient(token string, opts ...Option) *Client {
	c := &Client{
		token:   token,
		baseURL: DefaultBaseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CanonicalID formats id in the dashed form the API documents. Both dashed
// and compact forms are accepted. Unparseable ids are returned unchanged.
func CanonicalID(id string) string {
	u, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return id
	}
	return u.String()
}

// GetPage retrieves a page and its properties.
func (c *Client) GetPage(ctx context.Context, pageID string) (*Page, error) {
	var p Page
	if err := c.do(ctx, http.MethodGet, "/pages/"+pathID(pageID), nil, &p); err != nil {
		return nil, fmt.Errorf("get page %s: %w", pageID, err)
	}
	return &p, nil
}

// UpdatePageProperties patches page properties.
func (c *Client) UpdatePageProperties(ctx context.Context, pageID string, props Properties) error {
	body := map[string]any{"properties": props}
	if err := c.do(ctx, http.MethodPatch, "/pages/"+pathID(pageID), body, nil); err != nil {
		return fmt.Errorf("update page %s: %w", pageID, err)
	}
	return nil
}

// BlockText returns the plain text of a block's children, one line per
// block. It follows pagination up to a fixed number of pages.
func (c *Client) BlockText(ctx context.Context, blockID string) (string, error) {
	var lines []string
	err := paginate(ctx, c, "/blocks/"+pathID(blockID)+"/children", url.Values{}, func(blocks []Block) {
		for _, b := range blocks {
			if t := strings.TrimSpace(b.Text); t != "" {
				lines = append(lines, t)
			}
		}
	})
	if err != nil {
		return "", fmt.Errorf("list blocks %s: %w", blockID, err)
	}
	return strings.Join(lines, "\n"), nil
}

// AppendParagraphs appends one paragraph block per entry.
func (c *Client) AppendParagraphs(ctx context.Context, blockID string, paragraphs []string) error {
	children := make([]map[string]any, 0, len(paragraphs))
	for _, p := range paragraphs {
		children = append(children, map[string]any{
			"object":    "block",
			"type":      "paragraph",
			"paragraph": map[string]any{"rich_text": Text(p)},
		})
	}
	body := map[string]any{"children": children}
	if err := c.do(ctx, http.MethodPatch, "/blocks/"+pathID(blockID)+"/children", body, nil); err != nil {
		return fmt.Errorf("append blocks %s: %w", blockID, err)
	}
	return nil
}

// ListComments returns the unresolved comments on a page or block. It
// follows pagination up to a fixed number of pages.
func (c *Client) ListComments(ctx context.Context, blockID string) ([]Comment, error) {
	var out []Comment
	q := url.Values{"block_id": {CanonicalID(blockID)}}
	err := paginate(ctx, c, "/comments", q, func(comments []Comment) {
		out = append(out, comments...)
	})
	if err != nil {
		return nil, fmt.Errorf("list comments %s: %w", blockID, err)
	}
	return out, nil
}

// CreateComment adds a comment to a page or replies in a discussion.
func (c *Client) CreateComment(ctx context.Context, req CommentRequest) (*Comment, error) {
	body := map[string]any{"rich_text": Text(req.Text)}
	switch {
	case req.DiscussionID != "":
		body["discussion_id"] = req.DiscussionID
	case req.PageID != "":
		body["parent"] = map[string]any{"page_id": CanonicalID(req.PageID)}
	default:
		return nil, fmt.Errorf("create comment: page or discussion id is required")
	}

	var out Comment
	if err := c.do(ctx, http.MethodPost, "/comments", body, &out); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return &out, nil
}

// paginate walks a cursor-paginated list endpoint, handing each page of
// results to fn. q is modified.
func paginate[T any](ctx context.Context, c *Client, path string, q url.Values, fn func([]T)) error {
	q.Set("page_size", strconv.Itoa(pageSize))
	for range maxListPages {
		var page struct {
			Results    []T    `json:"results"`
			HasMore    bool   `json:"has_more"`
			NextCursor string `json:"next_cursor"`
		}
		if err := c.do(ctx, http.MethodGet, path+"?"+q.Encode(), nil, &page); err != nil {
			return err
		}
		fn(page.Results)
		if !page.HasMore || page.NextCursor == "" {
			return nil
		}
		q.Set("start_cursor", page.NextCursor)
	}
	return nil
}

func pathID(id string) string {
	return url.PathEscape(CanonicalID(id))
}

// do sends a JSON request and decodes a JSON answer into out when non-nil.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}

	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", APIVersion)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if json.Unmarshal(raw, apiErr) != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(raw))
		}
		apiErr.StatusCode = resp.StatusCode
		return apiErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
