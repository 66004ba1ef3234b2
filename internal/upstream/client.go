package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/errshape/errshape/internal/redact"
)

// maxBodyBytes caps how much of an upstream error body is captured.
// Payloads past this point add nothing to normalization.
const maxBodyBytes = 1 << 20

type Client struct {
	http  *http.Client
	token string
}

// Response is the raw outcome of a probe. A non-2xx status is not an
// error at this layer: the body is exactly the payload the caller
// wants to normalize.
type Response struct {
	StatusCode  int
	ContentType string
	Header      http.Header
	Body        []byte
	Elapsed     time.Duration
}

func (r Response) Success() bool {
	return r.StatusCode >= http.StatusOK && r.StatusCode < http.StatusMultipleChoices
}

func (r Response) IsXML() bool {
	return strings.Contains(r.ContentType, "xml")
}

func New(token string) *Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 3 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &Client{
		http:  &http.Client{Timeout: 8 * time.Second, Transport: transport},
		token: token,
	}
}

// NewWithHTTPClient exists for tests that need a custom transport.
func NewWithHTTPClient(httpClient *http.Client, token string) *Client {
	return &Client{http: httpClient, token: token}
}

func (c *Client) Fetch(ctx context.Context, rawURL string) (Response, error) {
	if err := validateURL(rawURL); err != nil {
		return Response{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Response{}, c.wrap(err, "build probe request")
	}
	req.Header.Set("Accept", "application/json, application/xml, text/xml, */*")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	started := time.Now()
	response, err := c.http.Do(req)
	if err != nil {
		return Response{}, c.wrap(err, "probe upstream")
	}
	defer func() {
		_ = response.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(response.Body, maxBodyBytes))
	if err != nil {
		return Response{}, c.wrap(err, "read probe response")
	}

	return Response{
		StatusCode:  response.StatusCode,
		ContentType: response.Header.Get("Content-Type"),
		Header:      redact.Headers(response.Header),
		Body:        body,
		Elapsed:     time.Since(started),
	}, nil
}

func validateURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse probe URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return errors.New("probe URL must be http or https")
	}

	return nil
}

func (c *Client) wrap(err error, operation string) error {
	if err == nil {
		return nil
	}

	return fmt.Errorf("%s: %s", operation, redact.String(err.Error(), c.token))
}
