package clients

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"xpointconnect/backend/libs/auth"
)

// HTTPDoer defines http.Client interface subset.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Request is a call forwarded to an internal service.
type Request struct {
	Method      string
	Path        string
	RawQuery    string
	Body        []byte
	ContentType string
	Identity    *auth.Identity
}

// Response is what the internal service answered.
type Response struct {
	Status      int
	ContentType string
	Body        []byte
}

// Upstream forwards requests to one internal service.
type Upstream struct {
	name    string
	baseURL string
	client  HTTPDoer
}

// NewUpstream builds client with base URL.
func NewUpstream(name, baseURL string, client HTTPDoer) *Upstream {
	return &Upstream{
		name:    name,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

// Name identifies the service in logs and error messages.
func (u *Upstream) Name() string {
	return u.name
}

func (u *Upstream) buildURL(path, rawQuery string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	url := u.baseURL + path
	if rawQuery != "" {
		url += "?" + rawQuery
	}
	return url
}

// Forward executes the request. Identity headers are only ever set from in.Identity, so a
// caller cannot smuggle its own.
func (u *Upstream) Forward(ctx context.Context, in Request) (*Response, error) {
	var reader io.Reader
	if len(in.Body) > 0 {
		reader = bytes.NewReader(in.Body)
	}
	req, err := http.NewRequestWithContext(ctx, in.Method, u.buildURL(in.Path, in.RawQuery), reader)
	if err != nil {
		return nil, err
	}
	if len(in.Body) > 0 {
		contentType := in.ContentType
		if contentType == "" {
			contentType = "application/json"
		}
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if in.Identity != nil {
		auth.SetHeaders(req.Header, *in.Identity)
	}

	resp, err := u.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return &Response{
		Status:      resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        respBody,
	}, nil
}

// NewDefaultHTTPClient returns *http.Client with timeout.
func NewDefaultHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}
