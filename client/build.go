package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/google/uuid"
)

const (
	headerContentType = "Content-Type"
	headerRequestID   = "X-Request-Id"
	contentTypeJSON   = "application/json"
)

// newRequest converts a resolved descriptor into an *http.Request.
func (c *Client) newRequest(ctx context.Context, desc Config) (*http.Request, error) {
	target, err := buildURL(desc)
	if err != nil {
		return nil, err
	}

	body, contentType, err := encodeBody(desc.Body)
	if err != nil {
		return nil, &UsageError{Field: "body", Reason: err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, desc.Method, target, body)
	if err != nil {
		return nil, &UsageError{Field: "url", Reason: err.Error()}
	}

	for k, v := range desc.Headers {
		req.Header.Set(k, v)
	}

	if contentType != "" && req.Header.Get(headerContentType) == "" {
		req.Header.Set(headerContentType, contentType)
	}

	if c.requestID && req.Header.Get(headerRequestID) == "" {
		req.Header.Set(headerRequestID, uuid.NewString())
	}

	return req, nil
}

// encodeBody returns the payload reader and the content type implied by
// its encoding. Pre-serialized bodies carry no implied content type.
func encodeBody(body any) (io.Reader, string, error) {
	switch v := body.(type) {
	case nil:
		return nil, "", nil
	case json.RawMessage:
		return bytes.NewReader(v), contentTypeJSON, nil
	case []byte:
		return bytes.NewReader(v), "", nil
	case string:
		return strings.NewReader(v), "", nil
	case io.Reader:
		return v, "", nil
	}

	if !structured(body) {
		rv := reflect.ValueOf(body)
		for rv.Kind() == reflect.Pointer {
			if rv.IsNil() {
				return nil, "", nil
			}
			rv = rv.Elem()
		}
		return strings.NewReader(fmt.Sprint(rv.Interface())), "", nil
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, "", fmt.Errorf("encoding request payload: %w", err)
	}

	return bytes.NewReader(data), contentTypeJSON, nil
}

// structured reports whether v is an object-like value that is sent as JSON.
func structured(v any) bool {
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.Struct, reflect.Map, reflect.Slice, reflect.Array, reflect.Interface:
		return true
	default:
		return false
	}
}
