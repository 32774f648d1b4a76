package errors

import (
	"path/filepath"
	"strings"
	"unicode"
)

// MaxColumns caps the number of seams a single request may remove. Each seam
// costs a full energy and cost pass, so the cap bounds work per request.
const MaxColumns = 1 << 16

// ValidateColumns checks a requested seam count.
// Zero is valid (the image passes through unchanged); counts above the image
// width are not an error here because the carver clamps them.
func ValidateColumns(n int) error {
	if n < 0 {
		return New(ErrCodeInvalidColumns, "column count must not be negative: %d", n)
	}
	if n > MaxColumns {
		return New(ErrCodeInvalidColumns, "column count too large (max %d): %d", MaxColumns, n)
	}
	return nil
}

// ValidateOutputPath validates a path an image will be written to.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
//   - Must name a file, not a directory (no trailing separator)
//   - Must carry a file extension so the output format can be derived
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "output path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "output path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "output path contains invalid characters")
		}
	}

	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, string(filepath.Separator)) {
		return New(ErrCodeInvalidPath, "output path must name a file: %q", path)
	}

	if filepath.Ext(path) == "" {
		return New(ErrCodeInvalidPath, "output path needs an image extension: %q", path)
	}

	return nil
}
