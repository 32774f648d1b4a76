package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	errs "github.com/matzehuels/seamcarve/pkg/errors"
)

func TestDefaultOutputPath(t *testing.T) {
	tests := []struct {
		ref, suffix, format string
		want                string
	}{
		{"castle.jpg", "carved", "", "castle_carved.jpg"},
		{"img/castle.png", "energy", "", filepath.Join("img", "castle_energy.png")},
		{"castle.jpg", "carved", "png", "castle_carved.png"},
		{"castle.webp", "carved", "", "castle_carved.png"},
		{"castle", "carved", "", "castle_carved.png"},
		{"-", "carved", "", "-"},
		{"https://example.com/pics/tower.jpeg?x=1", "carved", "", "tower_carved.jpeg"},
		{"https://example.com/", "carved", "", "image_carved.png"},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			if got := defaultOutputPath(tt.ref, tt.suffix, tt.format); got != tt.want {
				t.Errorf("defaultOutputPath(%q, %q, %q) = %q, want %q", tt.ref, tt.suffix, tt.format, got, tt.want)
			}
		})
	}
}

func TestResolveOutput(t *testing.T) {
	tests := []struct {
		name       string
		ref        string
		output     string
		format     string
		wantPath   string
		wantFormat string
		wantCode   errs.Code
	}{
		{"default", "castle.jpg", "", "", "castle_carved.jpg", "jpeg", ""},
		{"explicit output", "castle.jpg", "out.png", "", "out.png", "png", ""},
		{"format picks extension", "castle.jpg", "", "gif", "castle_carved.gif", "gif", ""},
		{"matching format", "castle.jpg", "out.jpg", "jpeg", "out.jpg", "jpeg", ""},
		{"stdout", "castle.jpg", "-", "png", "-", "png", ""},
		{"stdin defaults to stdout", "-", "", "", "-", "", ""},
		{"format mismatch", "castle.jpg", "out.jpg", "png", "", "", errs.ErrCodeInvalidFormat},
		{"unsupported extension", "castle.jpg", "out.svg", "", "", "", errs.ErrCodeInvalidFormat},
		{"no extension", "castle.jpg", "out", "", "", "", errs.ErrCodeInvalidPath},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, format, err := resolveOutput(tt.ref, tt.output, "carved", tt.format)
			if tt.wantCode != "" {
				if !errs.Is(err, tt.wantCode) {
					t.Fatalf("resolveOutput() error = %v, want %s", err, tt.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatalf("resolveOutput() error: %v", err)
			}
			if path != tt.wantPath || format != tt.wantFormat {
				t.Errorf("resolveOutput() = %q, %q, want %q, %q", path, format, tt.wantPath, tt.wantFormat)
			}
		})
	}
}

func TestReadInput(t *testing.T) {
	c := New(&bytes.Buffer{}, log.InfoLevel)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "in.png")
	if err := os.WriteFile(path, []byte("file bytes"), 0644); err != nil {
		t.Fatal(err)
	}
	got, err := c.readInput(ctx, path)
	if err != nil || string(got) != "file bytes" {
		t.Errorf("readInput(file) = %q, %v", got, err)
	}

	c.stdin = strings.NewReader("stdin bytes")
	got, err = c.readInput(ctx, "-")
	if err != nil || string(got) != "stdin bytes" {
		t.Errorf("readInput(-) = %q, %v", got, err)
	}

	_, err = c.readInput(ctx, filepath.Join(t.TempDir(), "missing.png"))
	if !errs.Is(err, errs.ErrCodeFileNotFound) {
		t.Errorf("readInput(missing) error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestWriteOutput(t *testing.T) {
	var stdout bytes.Buffer
	c := New(&bytes.Buffer{}, log.InfoLevel)
	c.stdout = &stdout

	if err := c.writeOutput("-", []byte("img")); err != nil {
		t.Fatalf("writeOutput(-) error: %v", err)
	}
	if stdout.String() != "img" {
		t.Errorf("stdout = %q", stdout.String())
	}

	path := filepath.Join(t.TempDir(), "sub", "out.png")
	if err := c.writeOutput(path, []byte("img")); err != nil {
		t.Fatalf("writeOutput(file) error: %v", err)
	}
	if data, _ := os.ReadFile(path); string(data) != "img" {
		t.Errorf("file content = %q", data)
	}
}

func TestDisplayName(t *testing.T) {
	tests := map[string]string{
		"-":                         "stdin",
		"/tmp/pics/castle.jpg":      "castle.jpg",
		"https://example.com/a.png": "https://example.com/a.png",
	}
	for in, want := range tests {
		if got := displayName(in); got != want {
			t.Errorf("displayName(%q) = %q, want %q", in, got, want)
		}
	}
}
