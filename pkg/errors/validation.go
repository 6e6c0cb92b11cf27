package errors

import (
	"strings"
	"unicode"
)

// ValidateImageName validates an image display name for safety and correctness.
// It rejects names that could be used for path traversal or injection attacks.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No path traversal sequences (.., //, etc.)
//   - No null bytes
//   - Maximum length of 256 characters
func ValidateImageName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "image name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidInput, "image name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "image name contains invalid control characters")
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"//",   // Double slash
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidInput, "image name contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidateMetadataField validates a metadata field name used in sort and
// caption options. Field names come from spreadsheet headers, so the rules
// only reject values that cannot have come from a well-formed header row.
func ValidateMetadataField(field string) error {
	if field == "" {
		return New(ErrCodeInvalidSort, "metadata field cannot be empty")
	}
	if len(field) > 128 {
		return New(ErrCodeInvalidSort, "metadata field too long (max 128 characters)")
	}
	for _, r := range field {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidSort, "metadata field contains invalid control characters")
		}
	}
	return nil
}

// ValidateOutputPath validates a user-supplied output path.
// It prevents path traversal and ensures reasonable path length.
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}
	if len(path) > 500 {
		return New(ErrCodeInvalidPath, "path too long (max 500 characters)")
	}
	if strings.Contains(path, "\x00") {
		return New(ErrCodeInvalidPath, "path contains null byte")
	}
	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain parent directory references")
	}
	return nil
}
