package errors

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"
)

// propertyKeyRegex matches GeoJSON property keys accepted as the channel name field.
var propertyKeyRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_:.-]*$`)

// ValidateNameField validates the GeoJSON property key used to read channel names.
//
// The rules are intentionally conservative:
//   - No empty keys
//   - Maximum length of 128 characters
//   - Must start with a letter or underscore
func ValidateNameField(key string) error {
	if key == "" {
		return New(ErrCodeInvalidConfig, "name field cannot be empty")
	}
	if len(key) > 128 {
		return New(ErrCodeInvalidConfig, "name field too long (max 128 characters)")
	}
	if !propertyKeyRegex.MatchString(key) {
		return New(ErrCodeInvalidConfig, "invalid name field: %q", key)
	}
	return nil
}

// ValidatePath validates an input or output file path.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}
	return nil
}

// sinkSchemes lists URL schemes accepted for output sinks and caches.
var sinkSchemes = map[string]bool{
	"postgres":    true,
	"postgresql":  true,
	"mongodb":     true,
	"mongodb+srv": true,
	"redis":       true,
	"rediss":      true,
}

// ValidateSinkURL validates a storage URL for an output sink or a cache.
// Only schemes with a registered backend are accepted.
func ValidateSinkURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return Wrap(ErrCodeInvalidInput, err, "parse URL")
	}
	if !sinkSchemes[strings.ToLower(u.Scheme)] {
		return New(ErrCodeUnsupported, "unsupported URL scheme: %q", u.Scheme)
	}
	if u.Host == "" {
		return New(ErrCodeInvalidInput, "URL must include a host")
	}
	return nil
}
