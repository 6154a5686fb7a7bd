package client

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/go-querystring/query"
)

var validate = validator.New()

// resolve merges the instance defaults, the call target and the call-site
// config into one descriptor. A URL target's url takes precedence over
// cfg.URL.
func (c *Client) resolve(target Target, cfg *Config) (Config, error) {
	if target == nil {
		return Config{}, &UsageError{Field: "target", Reason: "must not be nil"}
	}

	desc := merge(c.defaults, target.descriptor())
	if cfg != nil {
		desc = merge(desc, *cfg)
	}
	if u, ok := target.(URL); ok && u != "" {
		desc.URL = string(u)
	}

	if desc.Method == "" {
		desc.Method = http.MethodGet
	}
	desc.Method = strings.ToUpper(desc.Method)
	if desc.ResponseType == "" {
		desc.ResponseType = ResponseJSON
	}

	if err := checkDescriptor(desc); err != nil {
		return Config{}, err
	}

	return desc, nil
}

// checkDescriptor reports whether desc can be sent.
func checkDescriptor(desc Config) error {
	if desc.URL == "" {
		return &UsageError{Field: "url", Reason: "is required"}
	}

	if err := validate.Var(desc.Method, "oneof=GET POST PUT PATCH DELETE"); err != nil {
		return &UsageError{Field: "method", Reason: fmt.Sprintf("unsupported method %q", desc.Method)}
	}

	if err := validate.Var(string(desc.ResponseType), "oneof=json text"); err != nil {
		return &UsageError{Field: "responseType", Reason: fmt.Sprintf("unsupported response type %q", desc.ResponseType)}
	}

	return nil
}

// buildURL joins BaseURL and URL and appends Params to the query.
func buildURL(desc Config) (string, error) {
	target := desc.URL
	if desc.BaseURL != "" && !isAbsolute(target) {
		target = strings.TrimRight(desc.BaseURL, "/") + "/" + strings.TrimLeft(target, "/")
	}

	qs, err := encodeParams(desc.Params)
	if err != nil {
		return "", &UsageError{Field: "params", Reason: err.Error()}
	}
	if qs == "" {
		return target, nil
	}

	switch {
	case strings.HasSuffix(target, "?"), strings.HasSuffix(target, "&"):
	case strings.Contains(target, "?"):
		target += "&"
	default:
		target += "?"
	}

	return target + qs, nil
}

// isAbsolute reports whether u carries a scheme or is protocol-relative.
func isAbsolute(u string) bool {
	return strings.Contains(u, "//")
}

// encodeParams serializes params as key=value pairs joined by '&'.
func encodeParams(params any) (string, error) {
	switch p := params.(type) {
	case nil:
		return "", nil
	case string:
		return strings.TrimPrefix(p, "?"), nil
	case url.Values:
		return p.Encode(), nil
	case map[string][]string:
		return url.Values(p).Encode(), nil
	case map[string]string:
		vals := make(url.Values, len(p))
		for k, v := range p {
			vals.Set(k, v)
		}
		return vals.Encode(), nil
	default:
		vals, err := query.Values(p)
		if err != nil {
			return "", fmt.Errorf("encoding params: %w", err)
		}
		return vals.Encode(), nil
	}
}
