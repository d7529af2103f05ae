package errors

import (
	"strings"
	"unicode"
)

// maxIDLength bounds task and resource identifiers.
const maxIDLength = 256

// ValidateTaskID rejects task identifiers that would not survive CSV export:
//   - No empty IDs
//   - No control characters
//   - No leading or trailing whitespace
//   - No ';' (the CSV list separator)
//   - Maximum length of 256 characters
func ValidateTaskID(id string) error {
	return validateIdentifier("task ID", id)
}

// ValidateResourceName validates a resource identifier with the same rules as
// [ValidateTaskID].
func ValidateResourceName(name string) error {
	return validateIdentifier("resource name", name)
}

func validateIdentifier(kind, s string) error {
	if s == "" {
		return New(ErrCodeInvalidInput, "%s cannot be empty", kind)
	}
	if len(s) > maxIDLength {
		return New(ErrCodeInvalidInput, "%s too long (max %d characters)", kind, maxIDLength)
	}
	for _, r := range s {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "%s %q contains control characters", kind, s)
		}
	}
	if strings.TrimSpace(s) != s {
		return New(ErrCodeInvalidInput, "%s %q has surrounding whitespace", kind, s)
	}
	if strings.Contains(s, ";") {
		return New(ErrCodeInvalidInput, "%s %q cannot contain ';'", kind, s)
	}
	return nil
}

// ValidatePath validates a user-supplied file path.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
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
	return nil
}
