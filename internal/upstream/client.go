package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// ErrSessionExpired is returned when a 401 response could not be recovered by
// the single refresh attempt. Callers must treat the session as gone.
var ErrSessionExpired = errors.New("upstream: session expired")

// TokenSource supplies the bearer token for outgoing requests and owns the
// refresh-token exchange. Implementations live in the session package.
type TokenSource interface {
	// AccessToken returns the current access token, or "" when the caller is
	// not authenticated.
	AccessToken(ctx context.Context) (string, error)
	// Refresh exchanges the stored refresh token for a new access token.
	Refresh(ctx context.Context) (string, error)
	// Invalidate destroys the stored credentials after a failed refresh.
	Invalidate(ctx context.Context) error
}

// Response is the raw result of an upstream call that produced an HTTP
// response. Transport failures never produce a Response.
type Response struct {
	StatusCode int
	Body       []byte
}

func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Client is a preconfigured request client for one upstream service. Two
// instances exist process-wide: one for the user service, one for the mail
// service. A Client without a TokenSource sends unauthenticated requests.
type Client struct {
	name    string
	baseURL string
	http    *http.Client
	upload  *http.Client
	tokens  TokenSource
}

func New(name, baseURL string, timeout, uploadTimeout time.Duration) *Client {
	return &Client{
		name:    name,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		upload:  &http.Client{Timeout: uploadTimeout},
	}
}

// WithTokens returns a shallow copy bound to the given token source, so one
// base client can serve both authenticated and public calls.
func (c *Client) WithTokens(ts TokenSource) *Client {
	clone := *c
	clone.tokens = ts
	return &clone
}

// Do sends a JSON request. A non-2xx status is not an error at this layer;
// callers inspect Response.StatusCode. Errors are transport failures,
// classification results, or ErrSessionExpired after a failed refresh.
func (c *Client) Do(ctx context.Context, method, path string, body interface{}) (*Response, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, &Error{Kind: KindDecode, Message: "failed to encode request body", Err: err}
		}
	}
	return c.send(ctx, c.http, method, path, "application/json", payload)
}

// DoMultipart sends a multipart/form-data request with one file part. Used
// only for letter submission; the longer upload timeout applies.
func (c *Client) DoMultipart(ctx context.Context, method, path string, fields map[string]string, fileField, fileName string, file io.Reader) (*Response, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return nil, &Error{Kind: KindDecode, Message: "failed to encode form field", Err: err}
		}
	}
	fw, err := mw.CreateFormFile(fileField, fileName)
	if err != nil {
		return nil, &Error{Kind: KindDecode, Message: "failed to encode form file", Err: err}
	}
	if _, err := io.Copy(fw, file); err != nil {
		return nil, &Error{Kind: KindDecode, Message: "failed to read upload", Err: err}
	}
	if err := mw.Close(); err != nil {
		return nil, &Error{Kind: KindDecode, Message: "failed to finalize form", Err: err}
	}
	return c.send(ctx, c.upload, method, path, mw.FormDataContentType(), buf.Bytes())
}

// send executes the request, attaching the bearer token when available. On a
// 401 it performs exactly one refresh-and-replay; a second 401 or a failed
// refresh invalidates the session.
func (c *Client) send(ctx context.Context, hc *http.Client, method, path, contentType string, payload []byte) (*Response, error) {
	token := ""
	if c.tokens != nil {
		t, err := c.tokens.AccessToken(ctx)
		if err != nil {
			return nil, err
		}
		token = t
	}

	resp, err := c.execute(ctx, hc, method, path, contentType, payload, token)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized || c.tokens == nil {
		return resp, nil
	}

	// One refresh, one replay. No loops.
	newToken, err := c.tokens.Refresh(ctx)
	if err != nil {
		log.Printf("[%s] token refresh failed: %v", c.name, err)
		_ = c.tokens.Invalidate(ctx)
		return nil, ErrSessionExpired
	}
	resp, err = c.execute(ctx, hc, method, path, contentType, payload, newToken)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		_ = c.tokens.Invalidate(ctx)
		return nil, ErrSessionExpired
	}
	return resp, nil
}

func (c *Client) execute(ctx context.Context, hc *http.Client, method, path, contentType string, payload []byte, token string) (*Response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Message: "failed to build request", Err: err}
	}
	if payload != nil {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	httpResp, err := hc.Do(req)
	if err != nil {
		classified := classifyTransport(err)
		log.Printf("[%s] %s %s -> %s (%s)", c.name, method, path, classified.Kind, time.Since(start).Round(time.Millisecond))
		return nil, classified
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Message: "failed to read response", Err: err}
	}
	log.Printf("[%s] %s %s -> %d (%s)", c.name, method, path, httpResp.StatusCode, time.Since(start).Round(time.Millisecond))
	return &Response{StatusCode: httpResp.StatusCode, Body: data}, nil
}
