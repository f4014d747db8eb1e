// Package client is a typed HTTP client for the listing sheet API.
// Requests are sent once; failures surface as *APIError or transport errors.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/premiumcars/listingsheet/internal/handler/dto"
	"github.com/premiumcars/listingsheet/internal/model"
)

// DefaultCookieName matches the server's default session cookie.
const DefaultCookieName = "sheet_session"

// ErrNoSession is returned by SignIn when the server sets no session cookie.
var ErrNoSession = errors.New("server did not return a session cookie")

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (%d %s)", e.Message, e.Status, e.Code)
	}
	return fmt.Sprintf("%s (%d)", e.Message, e.Status)
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// Document is a rendered sheet.
type Document struct {
	Filename    string
	ContentType string
	Body        []byte
}

// Client talks to one server with one session.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	cookieName string
	session    string
	userAgent  string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithSession sets the session token sent as a cookie.
func WithSession(token string) Option {
	return func(c *Client) { c.session = token }
}

// WithCookieName overrides the session cookie name.
func WithCookieName(name string) Option {
	return func(c *Client) { c.cookieName = name }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// New creates a client for baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", baseURL)
	}

	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: 90 * time.Second},
		cookieName: DefaultCookieName,
		userAgent:  "sheetctl/1.0",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Session returns the current session token.
func (c *Client) Session() string {
	return c.session
}

// SignIn exchanges a provider token for a session and keeps the session
// token for later calls.
func (c *Client) SignIn(ctx context.Context, providerToken string) (*dto.SessionResponse, error) {
	resp, err := c.do(ctx, http.MethodPost, "/auth/session", dto.SessionRequest{Token: providerToken})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out dto.SessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}

	for _, cookie := range resp.Cookies() {
		if cookie.Name == c.cookieName && cookie.Value != "" {
			c.session = cookie.Value
			return &out, nil
		}
	}
	return nil, ErrNoSession
}

// SignOut ends the session and forgets the token.
func (c *Client) SignOut(ctx context.Context) error {
	if err := c.doJSON(ctx, http.MethodDelete, "/auth/session", nil, nil); err != nil {
		return err
	}
	c.session = ""
	return nil
}

// CurrentUser returns the signed-in user.
func (c *Client) CurrentUser(ctx context.Context) (*dto.UserResponse, error) {
	var out dto.SessionResponse
	if err := c.doJSON(ctx, http.MethodGet, "/auth/session", nil, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// ListRecords returns the caller's records.
func (c *Client) ListRecords(ctx context.Context) ([]model.Record, error) {
	var out []model.Record
	if err := c.doJSON(ctx, http.MethodGet, "/records", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetRecord fetches one record.
func (c *Client) GetRecord(ctx context.Context, id string) (*model.Record, error) {
	var out model.Record
	if err := c.doJSON(ctx, http.MethodGet, recordPath(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateRecord stores a new record.
func (c *Client) CreateRecord(ctx context.Context, draft model.Draft) (*model.Record, error) {
	var out model.Record
	if err := c.doJSON(ctx, http.MethodPost, "/records", draft, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateRecord replaces a record.
func (c *Client) UpdateRecord(ctx context.Context, id string, draft model.Draft) (*model.Record, error) {
	var out model.Record
	if err := c.doJSON(ctx, http.MethodPut, recordPath(id), draft, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteRecord removes a record.
func (c *Client) DeleteRecord(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, recordPath(id), nil, nil)
}

// Preview returns the HTML rendition of a stored record.
func (c *Client) Preview(ctx context.Context, id string) (*Document, error) {
	return c.document(ctx, http.MethodGet, recordPath(id)+"/preview", nil)
}

// Export returns the PDF rendition of a stored record.
func (c *Client) Export(ctx context.Context, id string) (*Document, error) {
	return c.document(ctx, http.MethodGet, recordPath(id)+"/export", nil)
}

// PreviewDraft renders an unsaved draft. format is "html" or "pdf".
func (c *Client) PreviewDraft(ctx context.Context, draft model.Draft, format string) (*Document, error) {
	return c.document(ctx, http.MethodPost, "/preview?format="+url.QueryEscape(format), draft)
}

// Archive stores the PDF in object storage and returns a download link.
func (c *Client) Archive(ctx context.Context, id string) (*dto.ArchiveResponse, error) {
	var out dto.ArchiveResponse
	if err := c.doJSON(ctx, http.MethodPost, recordPath(id)+"/archive", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) document(ctx context.Context, method, path string, body any) (*Document, error) {
	resp, err := c.do(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}

	doc := &Document{ContentType: resp.Header.Get("Content-Type"), Body: data}
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		doc.Filename = params["filename"]
	}
	return doc, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	resp, err := c.do(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// do sends one request. Non-2xx responses are returned as *APIError with the
// body already closed.
func (c *Client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	ref, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("build URL: %w", err)
	}
	target := *c.baseURL
	target.Path = strings.TrimRight(target.Path, "/") + ref.Path
	target.RawQuery = ref.RawQuery

	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.session != "" {
		req.AddCookie(&http.Cookie{Name: c.cookieName, Value: c.session})
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}

	defer resp.Body.Close()
	return nil, decodeAPIError(resp)
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}

	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var body dto.ErrorResponse
	if json.Unmarshal(data, &body) == nil && body.Error != "" {
		apiErr.Message = body.Error
		apiErr.Code = body.Code
	}
	return apiErr
}

func recordPath(id string) string {
	return "/records/" + url.PathEscape(id)
}
