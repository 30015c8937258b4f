// Package vidclient is the Go client for the compress API. It covers the
// signed-upload authorization endpoint and the compression history CRUD
// surface, authenticating every call with a bearer token.
package vidclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultTimeout = 30 * time.Second

// TokenSource supplies the bearer token for each request. Returning an
// error aborts the call before anything goes on the wire.
type TokenSource func(ctx context.Context) (string, error)

// StaticToken adapts a fixed token string into a TokenSource.
func StaticToken(token string) TokenSource {
	return func(context.Context) (string, error) {
		return token, nil
	}
}

// APIError is a non-2xx response from the compress API with its decoded
// error message.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("compress api: %s (status %d)", e.Message, e.StatusCode)
}

// Record is one compression history entry as returned on the wire.
type Record struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	Filename       string    `json:"filename"`
	OriginalSize   int64     `json:"original_size"`
	CompressedSize int64     `json:"compressed_size"`
	CloudinaryURL  string    `json:"cloudinary_url"`
	Resolution     string    `json:"resolution"`
	Quality        int       `json:"quality"`
	PublicID       *string   `json:"public_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// SignedUpload is the authorization returned by the sign endpoint.
type SignedUpload struct {
	Signature string `json:"signature"`
	Timestamp int64  `json:"timestamp"`
	Eager     string `json:"eager"`
	APIKey    string `json:"apiKey"`
	CloudName string `json:"cloudName"`
}

// CreateRecord is the payload persisted after a completed upload.
type CreateRecord struct {
	Filename       string  `json:"filename"`
	OriginalSize   int64   `json:"original_size"`
	CompressedSize int64   `json:"compressed_size"`
	CloudinaryURL  string  `json:"cloudinary_url"`
	Resolution     string  `json:"resolution,omitempty"`
	Quality        int     `json:"quality,omitempty"`
	PublicID       *string `json:"public_id,omitempty"`
}

// ListOptions narrows a history listing.
type ListOptions struct {
	Limit  int
	Offset int
	Search string
	Sort   string
}

// HistoryPage is one page of records plus the total matching count.
type HistoryPage struct {
	Data  []Record `json:"data"`
	Total int64    `json:"total"`
}

// Client talks to one compress API deployment.
type Client struct {
	http  *resty.Client
	token TokenSource
}

// Option customizes the client at construction time.
type Option func(*Client)

// WithTimeout overrides the default request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.http.SetTimeout(timeout)
	}
}

// WithHTTPClient swaps the underlying http.Client, typically for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = resty.NewWithClient(hc).SetBaseURL(c.http.BaseURL)
	}
}

// New returns a client rooted at baseURL. Every request carries a token
// obtained from the TokenSource.
func New(baseURL string, token TokenSource, opts ...Option) *Client {
	httpClient := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetHeader("User-Agent", "vidcrunch-client/1.0").
		SetTimeout(defaultTimeout).
		SetRetryCount(0)

	client := &Client{
		http:  httpClient,
		token: token,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// SignUpload requests a signed authorization for one direct upload.
func (c *Client) SignUpload(ctx context.Context, quality int, resolution string) (*SignedUpload, error) {
	req, err := c.request(ctx)
	if err != nil {
		return nil, err
	}

	var signed SignedUpload
	resp, err := req.
		SetBody(map[string]any{"quality": quality, "resolution": resolution}).
		SetResult(&signed).
		Post("/sign-upload")
	if err != nil {
		return nil, fmt.Errorf("sign upload: %w", err)
	}
	if resp.IsError() {
		return nil, decodeAPIError(resp)
	}
	return &signed, nil
}

// SaveRecord persists the outcome of a completed upload to the history.
func (c *Client) SaveRecord(ctx context.Context, record CreateRecord) (*Record, error) {
	req, err := c.request(ctx)
	if err != nil {
		return nil, err
	}

	var result struct {
		Data *Record `json:"data"`
	}
	resp, err := req.
		SetBody(record).
		SetResult(&result).
		Post("/history")
	if err != nil {
		return nil, fmt.Errorf("save record: %w", err)
	}
	if resp.IsError() {
		return nil, decodeAPIError(resp)
	}
	return result.Data, nil
}

// ListHistory fetches one page of the caller's history.
func (c *Client) ListHistory(ctx context.Context, opts ListOptions) (*HistoryPage, error) {
	req, err := c.request(ctx)
	if err != nil {
		return nil, err
	}

	if opts.Limit > 0 {
		req.SetQueryParam("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Offset > 0 {
		req.SetQueryParam("offset", strconv.Itoa(opts.Offset))
	}
	if opts.Search != "" {
		req.SetQueryParam("search", opts.Search)
	}
	if opts.Sort != "" {
		req.SetQueryParam("sort", opts.Sort)
	}

	var page HistoryPage
	resp, err := req.SetResult(&page).Get("/history")
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	if resp.IsError() {
		return nil, decodeAPIError(resp)
	}
	return &page, nil
}

// DeleteRecord deletes one record by id and returns the deleted id.
func (c *Client) DeleteRecord(ctx context.Context, id string) (string, error) {
	req, err := c.request(ctx)
	if err != nil {
		return "", err
	}

	var result struct {
		Success   bool   `json:"success"`
		DeletedID string `json:"deletedId"`
	}
	resp, err := req.
		SetQueryParam("id", id).
		SetResult(&result).
		Delete("/history")
	if err != nil {
		return "", fmt.Errorf("delete record: %w", err)
	}
	if resp.IsError() {
		return "", decodeAPIError(resp)
	}
	return result.DeletedID, nil
}

func (c *Client) request(ctx context.Context) (*resty.Request, error) {
	token, err := c.token(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve token: %w", err)
	}
	return c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetHeader("Content-Type", "application/json"), nil
}

func decodeAPIError(resp *resty.Response) error {
	apiErr := &APIError{
		StatusCode: resp.StatusCode(),
		Message:    http.StatusText(resp.StatusCode()),
	}
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(resp.Body(), &body); err == nil && body.Error != "" {
		apiErr.Message = body.Error
	}
	return apiErr
}
