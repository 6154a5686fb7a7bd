// Package config loads client settings from a config file and the
// environment using viper.
//
//	base_url: "https://api.example.com"
//	timeout: 10s
//	headers:
//	  accept: application/json
//	throttle:
//	  rps: 10
//	  burst: 5
//
// Every scalar key can be overridden from the environment with the
// FETCHER_ prefix, e.g. FETCHER_BASE_URL or FETCHER_THROTTLE_RPS.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/adamwoolhether/fetcher/client"
	"github.com/adamwoolhether/fetcher/client/throttle"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "FETCHER"

// Settings are the file/env representable parts of a client's setup.
type Settings struct {
	BaseURL           string            `mapstructure:"base_url" validate:"omitempty,url"`
	Headers           map[string]string `mapstructure:"headers"`
	Timeout           time.Duration     `mapstructure:"timeout" validate:"gte=0"`
	UserAgent         string            `mapstructure:"user_agent"`
	ResponseType      string            `mapstructure:"response_type" validate:"omitempty,oneof=json text"`
	WithCredentials   bool              `mapstructure:"with_credentials"`
	CookieJar         bool              `mapstructure:"cookie_jar"`
	RequestID         bool              `mapstructure:"request_id"`
	JSONNumber        bool              `mapstructure:"json_number"`
	NoFollowRedirects bool              `mapstructure:"no_follow_redirects"`
	Throttle          throttle.Config   `mapstructure:"throttle"`
}

var validate = validator.New()

// Load reads settings from path (any format viper understands) and the
// environment. An empty path reads the environment only.
func Load(path string) (Settings, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Settings{}, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("decoding config: %w", err)
	}

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}

	return s, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("base_url", "")
	v.SetDefault("headers", map[string]string{})
	v.SetDefault("timeout", time.Duration(0))
	v.SetDefault("user_agent", "")
	v.SetDefault("response_type", "")
	v.SetDefault("with_credentials", false)
	v.SetDefault("cookie_jar", false)
	v.SetDefault("request_id", false)
	v.SetDefault("json_number", false)
	v.SetDefault("no_follow_redirects", false)
	v.SetDefault("throttle.rps", 0)
	v.SetDefault("throttle.burst", 0)
}

// Validate checks field constraints.
func (s Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	if s.Throttle.Enabled() {
		if err := s.Throttle.Validate(); err != nil {
			return fmt.Errorf("validating config: throttle: %w", err)
		}
	}

	if s.WithCredentials && !s.CookieJar {
		return errors.New("validating config: with_credentials requires cookie_jar")
	}

	return nil
}

// Options converts the settings into client options.
func (s Settings) Options() []client.Option {
	opts := []client.Option{
		client.WithDefaults(client.Config{
			BaseURL:         s.BaseURL,
			Headers:         s.Headers,
			ResponseType:    client.ResponseType(s.ResponseType),
			WithCredentials: s.WithCredentials,
		}),
	}

	if s.Timeout > 0 {
		opts = append(opts, client.WithTimeout(s.Timeout))
	}
	if s.UserAgent != "" {
		opts = append(opts, client.WithUserAgent(s.UserAgent))
	}
	if s.CookieJar {
		opts = append(opts, client.WithCookieJar(nil))
	}
	if s.RequestID {
		opts = append(opts, client.WithRequestID())
	}
	if s.JSONNumber {
		opts = append(opts, client.WithJSONNumber())
	}
	if s.NoFollowRedirects {
		opts = append(opts, client.WithNoFollowRedirects())
	}
	if s.Throttle.Enabled() {
		opts = append(opts, client.WithThrottle(s.Throttle.RPS, s.Throttle.Burst))
	}

	return opts
}

// Build loads settings from path and builds a client from them. extra
// options are applied after the loaded ones.
func Build(path string, extra ...client.Option) (*client.Client, error) {
	s, err := Load(path)
	if err != nil {
		return nil, err
	}

	return client.Build(append(s.Options(), extra...)...)
}
