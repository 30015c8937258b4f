// Package uploader performs signed direct uploads to Cloudinary. The
// compressed file bytes travel straight from the caller to Cloudinary;
// the compress API only ever sees the signature request and the saved
// history record.
package uploader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

const uploadEndpointFormat = "https://api.cloudinary.com/v1_1/%s/video/upload"

// ErrUnsupportedMedia is returned when the payload does not sniff as video.
var ErrUnsupportedMedia = fmt.Errorf("uploader: payload is not a video")

// ProgressFunc receives upload progress as bytes of the file body sent so
// far against the declared total. It is only called when the total is known.
type ProgressFunc func(uploaded, total int64)

// APIError is a non-2xx answer from the upload endpoint.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("upload rejected: %s (status %d)", e.Message, e.StatusCode)
}

// TransportError wraps a network-level failure where no HTTP response
// arrived at all.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("upload transport failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Request describes one signed upload.
type Request struct {
	Filename string
	Body     io.Reader
	// Size is the file byte count used for progress reporting; zero
	// disables progress callbacks.
	Size int64

	Signature string
	Timestamp int64
	Eager     string
	APIKey    string

	OnProgress ProgressFunc
}

// Artifact is one derived asset in the upload response.
type Artifact struct {
	SecureURL string `json:"secure_url"`
	URL       string `json:"url"`
	Bytes     int64  `json:"bytes"`
}

// Result is the upload endpoint response reduced to the fields the
// compression flow consumes.
type Result struct {
	PublicID  string     `json:"public_id"`
	SecureURL string     `json:"secure_url"`
	Bytes     int64      `json:"bytes"`
	Format    string     `json:"format"`
	Eager     []Artifact `json:"eager"`
}

// CompressedArtifact returns the URL and size of the transformed asset,
// falling back to the original upload when no eager derivation came back.
func (r *Result) CompressedArtifact() (url string, size int64) {
	if len(r.Eager) > 0 && r.Eager[0].SecureURL != "" {
		return r.Eager[0].SecureURL, r.Eager[0].Bytes
	}
	return r.SecureURL, r.Bytes
}

// Client uploads to one Cloudinary cloud.
type Client struct {
	cloudName string
	http      *http.Client
	endpoint  string
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient swaps the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithEndpoint overrides the upload URL, typically for tests.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		c.endpoint = endpoint
	}
}

func New(cloudName string, opts ...Option) *Client {
	client := &Client{
		cloudName: cloudName,
		http:      &http.Client{Timeout: 10 * time.Minute},
		endpoint:  fmt.Sprintf(uploadEndpointFormat, cloudName),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Upload streams the file to Cloudinary as signed multipart form data.
// The body is sniffed first and rejected with ErrUnsupportedMedia unless
// it looks like video.
func (c *Client) Upload(ctx context.Context, req Request) (*Result, error) {
	body, err := sniffVideo(req.Body)
	if err != nil {
		return nil, err
	}
	if req.OnProgress != nil && req.Size > 0 {
		body = &progressReader{reader: body, total: req.Size, report: req.OnProgress}
	}

	pipeReader, pipeWriter := io.Pipe()
	form := multipart.NewWriter(pipeWriter)

	go func() {
		pipeWriter.CloseWithError(writeForm(form, req, body))
	}()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, pipeReader)
	if err != nil {
		return nil, fmt.Errorf("build upload request: %w", err)
	}
	httpReq.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeUploadError(resp)
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode upload response: %w", err)
	}
	return &result, nil
}

func writeForm(form *multipart.Writer, req Request, body io.Reader) error {
	fields := map[string]string{
		"api_key":     req.APIKey,
		"timestamp":   strconv.FormatInt(req.Timestamp, 10),
		"signature":   req.Signature,
		"eager":       req.Eager,
		"eager_async": "false",
	}
	for name, value := range fields {
		if err := form.WriteField(name, value); err != nil {
			return fmt.Errorf("write field %s: %w", name, err)
		}
	}

	part, err := form.CreateFormFile("file", req.Filename)
	if err != nil {
		return fmt.Errorf("create file part: %w", err)
	}
	if _, err := io.Copy(part, body); err != nil {
		return fmt.Errorf("stream file: %w", err)
	}
	return form.Close()
}

// sniffVideo peeks at the head of the stream and verifies a video MIME
// type before any bytes leave the machine.
func sniffVideo(r io.Reader) (io.Reader, error) {
	header := make([]byte, 3072)
	n, err := io.ReadFull(r, header)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, fmt.Errorf("read payload head: %w", err)
	}
	header = header[:n]

	detected := mimetype.Detect(header)
	if !strings.HasPrefix(detected.String(), "video/") {
		return nil, ErrUnsupportedMedia
	}
	return io.MultiReader(bytes.NewReader(header), r), nil
}

func decodeUploadError(resp *http.Response) error {
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Message:    http.StatusText(resp.StatusCode),
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return apiErr
	}
	var body struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Error.Message != "" {
		apiErr.Message = body.Error.Message
	}
	return apiErr
}

// progressReader reports file bytes handed to the multipart writer.
type progressReader struct {
	reader io.Reader
	total  int64
	sent   int64
	report ProgressFunc
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.reader.Read(buf)
	if n > 0 {
		p.sent += int64(n)
		p.report(p.sent, p.total)
	}
	return n, err
}
