package cmd

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func validBlogConfig() map[string]any {
	return map[string]any{
		"settings": map[string]any{
			"db": map[string]any{
				"blog": map[string]any{"addr": "localhost:27017", "db": "blog"},
			},
			"auth": map[string]any{
				"secret":       "a-long-enough-secret",
				"admin_emails": []any{"admin@example.com"},
			},
		},
	}
}

// TestValidateStartupConfigWithGetterMissingRequired verifies required keys are reported together.
func TestValidateStartupConfigWithGetterMissingRequired(t *testing.T) {
	err := validateStartupConfigWithGetter(newMapConfigGetter(map[string]any{}))
	require.Error(t, err)
	require.Contains(t, err.Error(), "settings.db.blog.addr is required")
	require.Contains(t, err.Error(), "settings.db.blog.db is required")
	require.Contains(t, err.Error(), "settings.auth.secret is required")
}

// TestValidateStartupConfigWithGetterDryMode verifies dry mode needs no blog db.
func TestValidateStartupConfigWithGetterDryMode(t *testing.T) {
	cfg := map[string]any{
		"dry": true,
		"settings": map[string]any{
			"auth": map[string]any{"secret": "a-long-enough-secret"},
		},
	}

	require.NoError(t, validateStartupConfigWithGetter(newMapConfigGetter(cfg)))
}

// TestValidateStartupConfigWithGetterValidConfig verifies valid explicit configuration passes validation.
func TestValidateStartupConfigWithGetterValidConfig(t *testing.T) {
	cfg := validBlogConfig()
	settings := cfg["settings"].(map[string]any)
	settings["content"] = map[string]any{
		"backend": "minio",
		"minio": map[string]any{
			"endpoint": "minio.example.com:9000",
			"bucket":   "blog",
			"use_ssl":  true,
		},
	}
	settings["likes"] = map[string]any{
		"redis": map[string]any{"addr": "localhost:6379", "db": 1},
	}
	settings["web"] = map[string]any{
		"cors_allowed_hosts": []any{"laisky.com", "example.org"},
	}

	require.NoError(t, validateStartupConfigWithGetter(newMapConfigGetter(cfg)))
}

func TestValidateStartupConfigWithGetterInvalid(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(settings map[string]any)
		want   string
	}{
		{
			name: "unknown content backend",
			mutate: func(s map[string]any) {
				s["content"] = map[string]any{"backend": "ftp"}
			},
			want: "settings.content.backend must be one of",
		},
		{
			name: "minio without bucket",
			mutate: func(s map[string]any) {
				s["content"] = map[string]any{
					"backend": "minio",
					"minio":   map[string]any{"endpoint": "minio:9000"},
				}
			},
			want: "settings.content.minio.bucket is required",
		},
		{
			name: "minio endpoint with scheme",
			mutate: func(s map[string]any) {
				s["content"] = map[string]any{
					"backend": "minio",
					"minio":   map[string]any{"endpoint": "https://minio:9000", "bucket": "blog"},
				}
			},
			want: "settings.content.minio.endpoint must be host[:port]",
		},
		{
			name: "bad jwks url",
			mutate: func(s map[string]any) {
				s["auth"].(map[string]any)["jwks_url"] = "not a url"
			},
			want: "settings.auth.jwks_url must be a valid absolute URL",
		},
		{
			name: "admin email without at",
			mutate: func(s map[string]any) {
				s["auth"].(map[string]any)["admin_emails"] = []any{"ok@example.com", "nope"}
			},
			want: "settings.auth.admin_emails[1] must be an email",
		},
		{
			name: "redis addr without port",
			mutate: func(s map[string]any) {
				s["likes"] = map[string]any{"redis": map[string]any{"addr": "localhost"}}
			},
			want: "settings.likes.redis.addr must be host:port",
		},
		{
			name: "negative redis db",
			mutate: func(s map[string]any) {
				s["likes"] = map[string]any{"redis": map[string]any{"db": -1}}
			},
			want: "settings.likes.redis.db must be >= 0",
		},
		{
			name: "cors host with scheme",
			mutate: func(s map[string]any) {
				s["web"] = map[string]any{"cors_allowed_hosts": []any{"https://laisky.com"}}
			},
			want: "settings.web.cors_allowed_hosts[0] must be a valid host",
		},
		{
			name: "cors hosts not a list",
			mutate: func(s map[string]any) {
				s["web"] = map[string]any{"cors_allowed_hosts": 3}
			},
			want: "settings.web.cors_allowed_hosts must be a list of hosts",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validBlogConfig()
			tc.mutate(cfg["settings"].(map[string]any))

			err := validateStartupConfigWithGetter(newMapConfigGetter(cfg))
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestParseStrictBool(t *testing.T) {
	for raw, want := range map[any]bool{true: true, "yes": true, "0": false, 1: true, 0.0: false} {
		got, ok := parseStrictBool(raw)
		require.True(t, ok, "%v", raw)
		require.Equal(t, want, got, "%v", raw)
	}

	_, ok := parseStrictBool("maybe")
	require.False(t, ok)
	_, ok = parseStrictBool(1.5)
	require.False(t, ok)
}

// newMapConfigGetter builds a dotted-path getter for nested map-based test configuration.
// It accepts a nested map and returns a getter function compatible with validateStartupConfigWithGetter.
func newMapConfigGetter(root map[string]any) configGetter {
	return func(key string) any {
		if key == "" {
			return nil
		}

		parts := strings.Split(key, ".")
		var current any = root
		for _, part := range parts {
			nextMap, ok := current.(map[string]any)
			if !ok {
				return nil
			}

			next, exists := nextMap[part]
			if !exists {
				return nil
			}
			current = next
		}

		return current
	}
}
