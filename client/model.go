package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/textproto"

	"github.com/adamwoolhether/fetcher/client/schema"
)

// maxErrBodySize caps how much of a rejected response body is copied
// into a StatusError message.
const maxErrBodySize = 4 << 10 // 4KB

// ResponseType selects how a response body is deserialized.
type ResponseType string

const (
	ResponseJSON ResponseType = "json"
	ResponseText ResponseType = "text"
)

// Headers holds single-valued request headers. Keys are matched
// case-insensitively and the last write for a key wins.
type Headers map[string]string

// Set stores v under the canonical form of key.
func (h Headers) Set(key, v string) {
	h[textproto.CanonicalMIMEHeaderKey(key)] = v
}

// Get returns the value stored for key, ignoring case.
func (h Headers) Get(key string) string {
	if v, ok := h[textproto.CanonicalMIMEHeaderKey(key)]; ok {
		return v
	}
	for k, v := range h {
		if textproto.CanonicalMIMEHeaderKey(k) == textproto.CanonicalMIMEHeaderKey(key) {
			return v
		}
	}

	return ""
}

// Clone returns a copy with canonical keys.
func (h Headers) Clone() Headers {
	out := make(Headers, len(h))
	for k, v := range h {
		out.Set(k, v)
	}

	return out
}

// mergeHeaders never returns nil, so interceptors can Set on the result.
func mergeHeaders(base, over Headers) Headers {
	out := base.Clone()
	for k, v := range over {
		out.Set(k, v)
	}

	return out
}

// Config describes a single request. Instance defaults, the call target
// and call-site config are each a Config; they are merged into the one
// descriptor that a call runs with.
type Config struct {
	// URL is the request URL. Relative URLs are joined onto BaseURL.
	URL string
	// BaseURL is prefixed to URL unless URL is absolute.
	BaseURL string
	// Method is one of GET, POST, PUT, PATCH or DELETE. Defaults to GET.
	Method string
	// Headers are merged key by key over the instance defaults.
	Headers Headers
	// Params are appended to the URL query. Accepts map[string]string,
	// url.Values, map[string][]string, a pre-encoded string, or a struct
	// with `url` tags.
	Params any
	// Body is the request payload. string, []byte, json.RawMessage and
	// io.Reader are sent as-is; structs, maps and slices are JSON encoded.
	Body any
	// ResponseType selects body deserialization. Defaults to ResponseJSON.
	ResponseType ResponseType
	// ValidateStatus classifies the response status. Defaults to 2xx.
	ValidateStatus func(status int) bool
	// WithCredentials attaches the instance cookie jar to the call.
	WithCredentials bool
	// Schema validates JSON response data.
	Schema schema.Validator
}

// merge shallow-merges over onto base. Zero fields in over keep base's
// value; headers merge per key.
func merge(base, over Config) Config {
	out := base

	if over.URL != "" {
		out.URL = over.URL
	}
	if over.BaseURL != "" {
		out.BaseURL = over.BaseURL
	}
	if over.Method != "" {
		out.Method = over.Method
	}
	if over.Params != nil {
		out.Params = over.Params
	}
	if over.Body != nil {
		out.Body = over.Body
	}
	if over.ResponseType != "" {
		out.ResponseType = over.ResponseType
	}
	if over.ValidateStatus != nil {
		out.ValidateStatus = over.ValidateStatus
	}
	if over.WithCredentials {
		out.WithCredentials = true
	}
	if over.Schema != nil {
		out.Schema = over.Schema
	}
	out.Headers = mergeHeaders(base.Headers, over.Headers)

	return out
}

// Target is the first argument of a call: either a URL or a full Config.
type Target interface {
	descriptor() Config
}

// URL is a Target naming only the request URL.
type URL string

func (u URL) descriptor() Config { return Config{URL: string(u)} }

func (c Config) descriptor() Config { return c }

// Response is the envelope produced by a call.
type Response struct {
	// Config is the descriptor the call ran with, after request interceptors.
	Config Config
	Status int
	Header http.Header
	// Data is the deserialized body, replaced by the schema's typed value
	// when a schema is set. nil when the body was empty or unparseable.
	Data any
}

// ErrNoData is returned by DataAs when the response carries no data.
var ErrNoData = errors.New("response has no data")

// DataAs returns the response data as a T. Data already holding a T is
// returned directly, anything else is converted through its JSON form.
func DataAs[T any](r *Response) (T, error) {
	var out T
	if r == nil || r.Data == nil {
		return out, ErrNoData
	}

	if v, ok := r.Data.(T); ok {
		return v, nil
	}

	raw, err := json.Marshal(r.Data)
	if err != nil {
		return out, fmt.Errorf("encoding data: %w", err)
	}

	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decoding data: %w", err)
	}

	return out, nil
}
