package merchant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	fastshot "github.com/opus-domini/fast-shot"
)

// Response is a successful API reply. Raw holds the body exactly as
// received; it is empty for 204 No Content.
type Response struct {
	StatusCode int
	Raw        json.RawMessage
	value      any
}

// NoContent reports a 204 reply. An empty JSON object or array is content.
func (r *Response) NoContent() bool {
	return r.StatusCode == http.StatusNoContent
}

// Value returns the decoded payload: maps, slices, strings, bools and
// json.Number for every numeric literal. It is nil for NoContent.
func (r *Response) Value() any {
	return r.value
}

// Decode unmarshals the payload into v, keeping numbers exact.
func (r *Response) Decode(v any) error {
	if len(bytes.TrimSpace(r.Raw)) == 0 {
		return nil
	}
	return decodeExact(r.Raw, v)
}

// Get fetches path, appending query when it is non-empty.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.do(ctx, http.MethodGet, path, query, nil)
}

// Post sends body (or {} when nil) to path.
func (c *Client) Post(ctx context.Context, path string, body any) (*Response, error) {
	return c.do(ctx, http.MethodPost, path, nil, orEmpty(body))
}

// Patch sends a partial update to path.
func (c *Client) Patch(ctx context.Context, path string, body any) (*Response, error) {
	return c.do(ctx, http.MethodPatch, path, nil, orEmpty(body))
}

// Delete removes the resource at path.
func (c *Client) Delete(ctx context.Context, path string, body any) (*Response, error) {
	return c.do(ctx, http.MethodDelete, path, nil, orEmpty(body))
}

func orEmpty(body any) any {
	if body == nil {
		return struct{}{}
	}
	return body
}

// do sends one request through the fast-shot client built in NewClient,
// which already carries the base URL, bearer token, default headers,
// transport and timeout.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) (*Response, error) {
	target := c.env.BaseURL + path
	c.logger.Printf("merchant: %s %s", method, path)

	req, err := c.request(method, path)
	if err != nil {
		return nil, err
	}
	req = req.Context().Set(ctx)
	for key, values := range query {
		for _, v := range values {
			req = req.Query().AddParam(key, v)
		}
	}
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s body: %w", method, path, err)
		}
		c.logger.Printf("merchant: data: %s", payload)
		req = req.Body().AsJSON(json.RawMessage(payload))
	}

	resp, err := req.Send()
	if err != nil {
		return nil, &TransportError{Method: method, URL: target, Err: err}
	}
	defer resp.Body().Close()

	raw, err := resp.Body().AsBytes()
	if err != nil {
		return nil, &TransportError{Method: method, URL: target, Err: err}
	}

	status := resp.Status().Code()
	if status == http.StatusNoContent {
		return &Response{StatusCode: status}, nil
	}

	var (
		value     any
		decodeErr error
	)
	if len(bytes.TrimSpace(raw)) > 0 {
		decodeErr = decodeExact(raw, &value)
	}

	if status < 200 || status >= 300 {
		errorID, message := errorFields(value)
		return nil, classify(status, errorID, message)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decode %s %s response: %w", method, path, decodeErr)
	}

	c.logger.Printf("merchant: result: %s", raw)
	return &Response{StatusCode: status, Raw: raw, value: value}, nil
}

func (c *Client) request(method, path string) (*fastshot.RequestBuilder, error) {
	switch method {
	case http.MethodGet:
		return c.http.GET(path), nil
	case http.MethodPost:
		return c.http.POST(path), nil
	case http.MethodPatch:
		return c.http.PATCH(path), nil
	case http.MethodDelete:
		return c.http.DELETE(path), nil
	}
	return nil, fmt.Errorf("%w: method %s", ErrNotSupported, method)
}

// decodeExact unmarshals JSON with numeric literals kept as json.Number so
// that financial figures never round-trip through float64.
func decodeExact(raw []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(v)
}

func errorFields(value any) (errorID, message string) {
	obj, ok := value.(map[string]any)
	if !ok {
		return "", ""
	}
	switch id := obj["errorId"].(type) {
	case string:
		errorID = id
	case json.Number:
		errorID = id.String()
	}
	if msg, ok := obj["message"].(string); ok {
		message = msg
	}
	return errorID, message
}
