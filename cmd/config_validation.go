package cmd

import (
	"fmt"
	"math"
	"net"
	"net/url"
	"strconv"
	"strings"

	errors "github.com/Laisky/errors/v2"
	gconfig "github.com/Laisky/go-config/v2"
)

// configGetter retrieves raw configuration values by dotted key path.
type configGetter func(key string) any

// validateStartupConfig validates startup configuration from the shared config source.
// It returns an error when any configured value is malformed or violates constraints.
func validateStartupConfig() error {
	return validateStartupConfigWithGetter(func(key string) any {
		return gconfig.S.Get(key)
	})
}

// validateStartupConfigWithGetter validates startup configuration via a key-value getter.
// It accepts a value getter and returns nil when all configured values are valid.
func validateStartupConfigWithGetter(get configGetter) error {
	if get == nil {
		return errors.New("config getter is nil")
	}

	validationErrs := make([]string, 0)

	validateBlogDBConfig(get, &validationErrs)
	validateContentConfig(get, &validationErrs)
	validateAuthConfig(get, &validationErrs)
	validateLikesConfig(get, &validationErrs)
	validateWebConfig(get, &validationErrs)

	if len(validationErrs) == 0 {
		return nil
	}

	return errors.Errorf("invalid configuration:\n - %s", strings.Join(validationErrs, "\n - "))
}

// validateBlogDBConfig validates the mongo connection, which dry mode does not need.
func validateBlogDBConfig(get configGetter, errs *[]string) {
	if dry, ok := parseStrictBool(get("dry")); ok && dry {
		return
	}

	validateRequiredString(get, "settings.db.blog.addr", errs)
	validateRequiredString(get, "settings.db.blog.db", errs)
	validateOptionalStringNonEmpty(get, "settings.db.blog.auth_db", errs)
}

// validateContentConfig validates the content backend and its settings.
func validateContentConfig(get configGetter, errs *[]string) {
	backend := contentBackendFS
	if raw := get("settings.content.backend"); raw != nil {
		value, parseErr := parseStrictString(raw)
		if parseErr != nil {
			appendValidationError(errs, "settings.content.backend must be a string")
			return
		}
		if value = strings.ToLower(strings.TrimSpace(value)); value != "" {
			backend = value
		}
	}

	switch backend {
	case contentBackendFS:
		validateOptionalStringNonEmpty(get, "settings.content.dir", errs)
	case contentBackendMinio:
		validateRequiredString(get, "settings.content.minio.endpoint", errs)
		validateRequiredString(get, "settings.content.minio.bucket", errs)
		validateOptionalBool(get, "settings.content.minio.use_ssl", errs)
		if raw := get("settings.content.minio.endpoint"); raw != nil {
			if endpoint, err := parseStrictString(raw); err == nil && strings.Contains(endpoint, "://") {
				appendValidationError(errs, "settings.content.minio.endpoint must be host[:port] without scheme")
			}
		}
	default:
		appendValidationError(errs, "settings.content.backend must be one of [%s, %s]",
			contentBackendFS, contentBackendMinio)
	}
}

// validateAuthConfig validates the token secret and the admin list.
func validateAuthConfig(get configGetter, errs *[]string) {
	validateRequiredString(get, "settings.auth.secret", errs)
	validateOptionalURL(get, "settings.auth.jwks_url", errs)

	raw := get("settings.auth.admin_emails")
	if raw == nil {
		return
	}
	emails, ok := toStringSlice(raw)
	if !ok {
		appendValidationError(errs, "settings.auth.admin_emails must be a list of emails")
		return
	}
	for i, email := range emails {
		if !strings.Contains(email, "@") {
			appendValidationError(errs, "settings.auth.admin_emails[%d] must be an email", i)
		}
	}
}

// validateLikesConfig validates the optional redis like ledger.
func validateLikesConfig(get configGetter, errs *[]string) {
	validateOptionalIntMin(get, "settings.likes.redis.db", 0, errs)

	raw := get("settings.likes.redis.addr")
	if raw == nil {
		return
	}
	addr, parseErr := parseStrictString(raw)
	if parseErr != nil {
		appendValidationError(errs, "settings.likes.redis.addr must be a string")
		return
	}
	if addr == "" {
		return
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		appendValidationError(errs, "settings.likes.redis.addr must be host:port")
	}
}

// validateWebConfig validates CORS hosts.
func validateWebConfig(get configGetter, errs *[]string) {
	raw := get("settings.web.cors_allowed_hosts")
	if raw == nil {
		return
	}

	hosts, ok := toStringSlice(raw)
	if !ok {
		appendValidationError(errs, "settings.web.cors_allowed_hosts must be a list of hosts")
		return
	}
	for i, host := range hosts {
		if !isValidHost(host) {
			appendValidationError(errs, "settings.web.cors_allowed_hosts[%d] must be a valid host", i)
		}
	}
}

// validateRequiredString validates that key is configured as a non-empty string.
func validateRequiredString(get configGetter, key string, errs *[]string) {
	if get(key) == nil {
		appendValidationError(errs, "%s is required", key)
		return
	}

	validateOptionalStringNonEmpty(get, key, errs)
}

// toStringSlice converts a yaml list into strings.
func toStringSlice(value any) ([]string, bool) {
	switch v := value.(type) {
	case []string:
		return v, true
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, err := parseStrictString(item)
			if err != nil {
				return nil, false
			}
			out = append(out, strings.TrimSpace(s))
		}
		return out, true
	default:
		return nil, false
	}
}

// validateOptionalBool validates an optionally configured boolean key.
// It accepts a getter, the key, and an error collector pointer and appends validation errors.
func validateOptionalBool(get configGetter, key string, errs *[]string) {
	raw := get(key)
	if raw == nil {
		return
	}

	if _, ok := parseStrictBool(raw); !ok {
		appendValidationError(errs, "%s must be a boolean", key)
	}
}

// validateOptionalIntMin validates an optionally configured integer key with a minimum constraint.
// It accepts a getter, the key, a minimum value, and an error collector pointer and appends validation errors.
func validateOptionalIntMin(get configGetter, key string, min int, errs *[]string) {
	raw := get(key)
	if raw == nil {
		return
	}

	value, parseErr := parseStrictInt(raw)
	if parseErr != nil {
		appendValidationError(errs, "%s must be an integer", key)
		return
	}

	if value < min {
		appendValidationError(errs, "%s must be >= %d", key, min)
	}
}

// validateOptionalURL validates an optionally configured absolute URL key.
// It accepts a getter, the key, and an error collector pointer and appends validation errors.
func validateOptionalURL(get configGetter, key string, errs *[]string) {
	raw := get(key)
	if raw == nil {
		return
	}

	value, parseErr := parseStrictString(raw)
	if parseErr != nil {
		appendValidationError(errs, "%s must be a string URL", key)
		return
	}

	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		appendValidationError(errs, "%s must not be empty", key)
		return
	}

	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		appendValidationError(errs, "%s must be a valid absolute URL", key)
	}
}

// validateOptionalStringNonEmpty validates an optionally configured non-empty string key.
// It accepts a getter, the key, and an error collector pointer and appends validation errors.
func validateOptionalStringNonEmpty(get configGetter, key string, errs *[]string) {
	raw := get(key)
	if raw == nil {
		return
	}

	value, parseErr := parseStrictString(raw)
	if parseErr != nil {
		appendValidationError(errs, "%s must be a string", key)
		return
	}

	if strings.TrimSpace(value) == "" {
		appendValidationError(errs, "%s must not be empty", key)
	}
}

// parseStrictBool parses a value as boolean using strict conversion rules.
// It accepts a raw value and returns the parsed boolean and whether parsing succeeded.
func parseStrictBool(value any) (bool, bool) {
	switch v := value.(type) {
	case bool:
		return v, true
	case int:
		return v != 0, true
	case int64:
		return v != 0, true
	case float64:
		if math.Trunc(v) != v {
			return false, false
		}
		return int64(v) != 0, true
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return false, false
		}
		switch strings.ToLower(trimmed) {
		case "true", "1", "yes":
			return true, true
		case "false", "0", "no":
			return false, true
		default:
			return false, false
		}
	default:
		return false, false
	}
}

// parseStrictInt parses a value as a strict integer.
// It accepts a raw value and returns the parsed int and an error when parsing fails.
func parseStrictInt(value any) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if math.Trunc(v) != v {
			return 0, errors.Errorf("%v is not an integer", v)
		}
		return int(v), nil
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return 0, errors.New("empty integer string")
		}
		parsed, err := strconv.Atoi(trimmed)
		if err != nil {
			return 0, errors.Wrap(err, "atoi")
		}
		return parsed, nil
	default:
		return 0, errors.Errorf("unsupported int type %T", value)
	}
}

// parseStrictString parses a value as a strict string.
// It accepts a raw value and returns the parsed string and an error when parsing fails.
func parseStrictString(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return "", errors.Errorf("unsupported string type %T", value)
	}
}

// isValidHost validates a host string without scheme or path components.
// It accepts a host string and returns true when the host is syntactically acceptable.
func isValidHost(host string) bool {
	trimmed := strings.TrimSpace(host)
	if trimmed == "" {
		return false
	}
	if strings.Contains(trimmed, "://") || strings.Contains(trimmed, "/") {
		return false
	}
	return true
}

// appendValidationError appends a formatted validation error to the collector.
// It accepts an error slice pointer, a format string, and format arguments, and has no return value.
func appendValidationError(errs *[]string, format string, args ...any) {
	if errs == nil {
		return
	}
	*errs = append(*errs, fmt.Sprintf(format, args...))
}
