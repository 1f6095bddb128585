package errors

import (
	"path/filepath"
	"strconv"
	"strings"
	"unicode"
)

// ValidateName validates a node name from a world description.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No leading or trailing whitespace
//   - No control characters
//   - Maximum length of 128 characters
func ValidateName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidName, "name cannot be empty")
	}

	if len(name) > 128 {
		return New(ErrCodeInvalidName, "name too long (max 128 characters)")
	}

	if strings.TrimSpace(name) != name {
		return New(ErrCodeInvalidName, "name %q has surrounding whitespace", name)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidName, "name contains invalid control characters")
		}
	}

	return nil
}

// ValidateWorldFile validates the path of a world description file.
// Only YAML files are accepted.
func ValidateWorldFile(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "world file cannot be empty")
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return nil
	}
	return New(ErrCodeInvalidPath, "world file must be .yaml or .yml: %q", path)
}

// ValidatePath validates a relative file path for safety.
// It prevents path traversal attacks and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}

// ParseSeed parses a decimal or 0x-prefixed hexadecimal seed.
func ParseSeed(s string) (uint64, error) {
	if s == "" {
		return 0, New(ErrCodeInvalidInput, "seed cannot be empty")
	}
	seed, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, Wrap(ErrCodeInvalidInput, err, "invalid seed %q", s)
	}
	return seed, nil
}
