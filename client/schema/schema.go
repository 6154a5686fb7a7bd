// Package schema defines the response validation boundary used by the
// client and ships a struct-tag engine built on
// [github.com/go-playground/validator/v10].
//
// A [Validator] receives the deserialized response body and either returns
// the coerced, typed value or fails. Failures carrying field detail are
// reported as [Issues], each addressed by a path of object keys (string)
// and array indices (int).
package schema

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Validator checks a decoded value and returns its typed form.
type Validator interface {
	Validate(ctx context.Context, data any) (any, error)
}

// Func adapts a plain function to the Validator interface.
type Func func(ctx context.Context, data any) (any, error)

// Validate implements Validator.
func (f Func) Validate(ctx context.Context, data any) (any, error) {
	return f(ctx, data)
}

// Issue is a single validation failure at Path.
type Issue struct {
	Path    []any  `json:"path"`
	Message string `json:"message"`
}

// String renders the issue as "path: message".
func (i Issue) String() string {
	p := FormatPath(i.Path)
	if p == "" {
		return i.Message
	}

	return p + ": " + i.Message
}

// Issues is a collection of validation failures.
type Issues []Issue

// Error implements the error interface.
func (is Issues) Error() string {
	parts := make([]string, len(is))
	for i, issue := range is {
		parts[i] = issue.String()
	}

	return strings.Join(parts, "; ")
}

// AsIssues extracts Issues from err, if any.
func AsIssues(err error) (Issues, bool) {
	var is Issues
	if !errors.As(err, &is) {
		return nil, false
	}

	return is, true
}

// FormatPath renders a path as dotted keys with bracketed indices,
// e.g. items[0].name.
func FormatPath(path []any) string {
	var b strings.Builder
	for _, seg := range path {
		switch s := seg.(type) {
		case int:
			fmt.Fprintf(&b, "[%d]", s)
		default:
			if b.Len() > 0 {
				b.WriteByte('.')
			}
			fmt.Fprint(&b, s)
		}
	}

	return b.String()
}
