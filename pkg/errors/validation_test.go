package errors

import (
	"strings"
	"testing"
)

func TestValidateColumns(t *testing.T) {
	tests := []struct {
		name    string
		input   int
		wantErr bool
	}{
		{"zero", 0, false},
		{"default", 10, false},
		{"at cap", MaxColumns, false},

		{"negative", -1, true},
		{"above cap", MaxColumns + 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateColumns(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateColumns(%d) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidColumns) {
				t.Errorf("ValidateColumns(%d) returned wrong error code: %v", tt.input, err)
			}
		})
	}
}

func TestValidateOutputPath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid filename only", "out.png", false},
		{"valid nested", "build/images/castle_carved.jpg", false},
		{"valid absolute", "/tmp/out.webp", false},
		{"valid with dots", "v1.2/out.tiff", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 5000) + ".png", true},
		{"null byte", "out\x00.png", true},
		{"control char", "out\x01.png", true},
		{"newline", "out\n.png", true},
		{"directory", "images/", true},
		{"no extension", "images/out", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputPath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateOutputPath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPath) {
				t.Errorf("ValidateOutputPath(%q) returned wrong error code: %v", tt.input, err)
			}
		})
	}
}

func TestErrorCodesAreUnique(t *testing.T) {
	codes := []Code{
		ErrCodeInvalidInput,
		ErrCodeInvalidColumns,
		ErrCodeInvalidFormat,
		ErrCodeInvalidDirection,
		ErrCodeInvalidLuma,
		ErrCodeInvalidPath,
		ErrCodeFileNotFound,
		ErrCodeCacheUnavailable,
		ErrCodeDecode,
		ErrCodeEncode,
		ErrCodeContract,
		ErrCodeInternal,
	}

	seen := make(map[Code]bool)
	for _, code := range codes {
		if seen[code] {
			t.Errorf("Duplicate error code: %s", code)
		}
		seen[code] = true
	}
}
