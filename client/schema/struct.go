package schema

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var validate *validator.Validate
var translator ut.Translator

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	var ok bool
	translator, ok = ut.New(en.New(), en.New()).GetTranslator("en")
	if !ok {
		panic("schema: failed to get 'en' translator")
	}

	if err := en_translations.RegisterDefaultTranslations(validate, translator); err != nil {
		panic(err)
	}

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}

		return name
	})
}

// Struct returns a Validator that decodes data into a T using its json
// tags, then checks T's validate tags. On success the T value is returned.
//
// Type mismatches are reported one at a time: decoding stops at the first
// field whose JSON type does not fit. A key absent from the data leaves the
// field at its zero value, so tag fields that must be present with
// validate:"required".
//
//	type user struct {
//		Name string `json:"name" validate:"required"`
//	}
//	v := schema.Struct[user]()
func Struct[T any]() Validator {
	return structValidator[T]{}
}

type structValidator[T any] struct{}

func (structValidator[T]) Validate(ctx context.Context, data any) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}

	var out T
	if err := decode(data, &out); err != nil {
		return nil, err
	}

	if err := check(out); err != nil {
		return nil, err
	}

	return out, nil
}

// decode moves data into dst through its JSON form, so that maps produced
// by a generic JSON decode coerce into typed structs.
func decode(data any, dst any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return Issues{{Path: []any{}, Message: fmt.Sprintf("unencodable value: %v", err)}}
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return Issues{{
				Path:    splitPath(typeErr.Field),
				Message: fmt.Sprintf("expected %s, received %s", kindName(typeErr.Type), typeErr.Value),
			}}
		}

		return Issues{{Path: []any{}, Message: err.Error()}}
	}

	return nil
}

// check runs the tag validator when the value holds a struct.
func check(val any) error {
	rv := reflect.ValueOf(val)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return Issues{{Path: []any{}, Message: "expected object, received null"}}
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	if err := validate.Struct(val); err != nil {
		verrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}

		issues := make(Issues, 0, len(verrors))
		for _, verror := range verrors {
			issues = append(issues, Issue{
				Path:    namespacePath(verror.Namespace()),
				Message: customErrForTag(verror.Tag(), verror),
			})
		}

		return issues
	}

	return nil
}

func customErrForTag(tag string, verror validator.FieldError) string {
	switch tag {
	case "required":
		return "This field is required"
	default:
		return verror.Translate(translator)
	}
}

// namespacePath converts a validator namespace such as
// "user.items[0].tags[primary]" into a path, dropping the root type name.
func namespacePath(ns string) []any {
	parts := strings.Split(ns, ".")
	if len(parts) > 0 {
		parts = parts[1:]
	}

	path := make([]any, 0, len(parts))
	for _, part := range parts {
		name, rest, found := strings.Cut(part, "[")
		if name != "" {
			path = append(path, name)
		}
		for found {
			var key string
			key, rest, _ = strings.Cut(rest, "]")
			path = append(path, indexOrKey(key))
			_, rest, found = strings.Cut(rest, "[")
		}
	}

	return path
}

// splitPath converts the dotted field path reported by encoding/json.
func splitPath(field string) []any {
	if field == "" {
		return []any{}
	}

	parts := strings.Split(field, ".")
	path := make([]any, len(parts))
	for i, p := range parts {
		path[i] = indexOrKey(p)
	}

	return path
}

func indexOrKey(s string) any {
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}

	return s
}

func kindName(t reflect.Type) string {
	if t == nil {
		return "value"
	}

	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Struct, reflect.Map:
		return "object"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Pointer:
		return kindName(t.Elem())
	default:
		return t.String()
	}
}
