package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is a thin HTTP client for the todo REST API. Each operation maps
// to exactly one request; there are no retries.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new API client rooted at baseURL
// (e.g. https://fe-test-api.nwappservice.com).
func NewClient(baseURL string) *Client {
	return NewClientWithHTTP(baseURL, &http.Client{Timeout: requestTimeout})
}

// requestTimeout bounds a single API call.
const requestTimeout = 30 * time.Second

// NewClientWithHTTP creates a client that sends requests through hc.
func NewClientWithHTTP(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: hc,
	}
}

// BaseURL returns the root URL requests are sent to.
func (c *Client) BaseURL() string { return c.baseURL }

// request describes a single API call.
type request struct {
	op     string
	method string
	path   string
	query  url.Values
	token  string
	body   interface{}

	// fallback is the message used when the failure carries no text of
	// its own (transport errors, empty error bodies).
	fallback string
}

// do is the core HTTP method: it builds the request, attaches the bearer
// token when one is given, classifies failures into *Error, and
// unmarshals a 2xx body into result when result is non-nil. The raw
// response body is returned for acknowledgements.
func (c *Client) do(
	ctx context.Context,
	r request,
	result interface{},
) ([]byte, error) {
	u := c.baseURL + r.path
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}

	var bodyReader io.Reader
	if r.body != nil {
		data, err := json.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("marshaling %s request body: %w", r.op, err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, u, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("creating %s request: %w", r.op, err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{
			Kind:    KindTransport,
			Op:      r.op,
			Message: r.fallback,
			Err:     fmt.Errorf("%s %s: %w", r.method, r.path, err),
		}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{
			Kind:    KindTransport,
			Op:      r.op,
			Message: r.fallback,
			Err:     fmt.Errorf("reading response body: %w", err),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return respBody, &Error{
			Kind:    KindRemote,
			Op:      r.op,
			Status:  resp.StatusCode,
			Message: remoteMessage(respBody, r.fallback),
		}
	}

	// No content to parse (e.g. 204).
	if result == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return respBody, nil
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return respBody, fmt.Errorf(
			"unmarshaling response from %s %s: %w",
			r.method, r.path, err,
		)
	}

	return respBody, nil
}

// remoteMessage extracts the user-facing text from a rejected response:
// the first structured error, then the message field, then the raw body,
// then fallback.
func remoteMessage(body []byte, fallback string) string {
	var er ErrorResponse
	if json.Unmarshal(body, &er) == nil {
		if first := er.First(); first != "" {
			return first
		}
		if strings.TrimSpace(er.Message) != "" {
			return er.Message
		}
	}

	if text := strings.TrimSpace(string(body)); text != "" {
		return text
	}
	return fallback
}

// ack converts a raw acknowledgement body into an Ack.
func ack(body []byte) Ack {
	a := Ack{Body: json.RawMessage(body)}
	var env struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &env) == nil {
		a.Message = env.Message
	}
	return a
}
