package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
)

const testClientHost = "localhost"

// Client issues requests against an App in-process.
type Client struct {
	handler http.Handler
}

// Response is the recorded outcome of a Client request.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Text returns the body decoded as UTF-8 text.
func (r *Response) Text() string {
	return string(r.Body)
}

// Get issues a GET request for path.
func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	return c.Request(ctx, http.MethodGet, path, nil)
}

// Request issues a request with the given method, path and optional body.
func (c *Client) Request(ctx context.Context, method, path string, body io.Reader) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, "http://"+testClientHost+path, body)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	return c.Do(req)
}

// Do dispatches req to the handler and records the response. A handler panic
// is not recovered here; in testing mode it reaches the caller unchanged.
func (c *Client) Do(req *http.Request) (*Response, error) {
	if req.RemoteAddr == "" {
		req.RemoteAddr = "127.0.0.1:0"
	}
	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)

	res := rec.Result()
	defer res.Body.Close()
	b, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return &Response{StatusCode: res.StatusCode, Header: res.Header, Body: b}, nil
}
