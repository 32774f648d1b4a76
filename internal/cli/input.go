package cli

import (
	"context"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	errs "github.com/matzehuels/seamcarve/pkg/errors"
	"github.com/matzehuels/seamcarve/pkg/httputil"
	"github.com/matzehuels/seamcarve/pkg/imageio"
)

// stdio names standard input or output on the command line.
const stdio = "-"

// maxStdinBytes caps images read from standard input.
const maxStdinBytes = httputil.DefaultMaxBytes

// readInput loads encoded image bytes from a file path, an http(s) URL, or
// standard input when ref is "-".
func (c *CLI) readInput(ctx context.Context, ref string) ([]byte, error) {
	switch {
	case ref == stdio:
		data, err := io.ReadAll(io.LimitReader(c.stdin, maxStdinBytes+1))
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeDecode, err, "read stdin")
		}
		if len(data) > maxStdinBytes {
			return nil, errs.New(errs.ErrCodeInvalidInput, "stdin image exceeds %d bytes", maxStdinBytes)
		}
		return data, nil
	case httputil.IsURL(ref):
		loggerFromContext(ctx).Debug("fetching image", "url", ref)
		return httputil.NewFetcher().Fetch(ctx, ref)
	}

	data, err := os.ReadFile(ref)
	if os.IsNotExist(err) {
		return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "image not found: %s", ref)
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeDecode, err, "read %s", ref)
	}
	return data, nil
}

// defaultOutputPath derives "<name>_<suffix><ext>" next to a local input, or
// in the working directory for a URL. Stdin input defaults to stdout. The
// extension follows format when set and falls back to .png when the input
// extension cannot be written.
func defaultOutputPath(ref, suffix, format string) string {
	if ref == stdio {
		return stdio
	}

	dir, base := filepath.Split(ref)
	if httputil.IsURL(ref) {
		dir = ""
		base = "image"
		if u, err := url.Parse(ref); err == nil && path.Base(u.Path) != "/" && path.Base(u.Path) != "." {
			base = path.Base(u.Path)
		}
	}

	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)
	switch {
	case format != "":
		ext = "." + format
	case ext == "":
		ext = ".png"
	default:
		if _, err := imageio.FormatFromPath(base); err != nil {
			ext = ".png"
		}
	}
	return filepath.Join(dir, name+"_"+suffix+ext)
}

// resolveOutput picks the output path and format. An explicit format must
// agree with the output extension.
func resolveOutput(ref, output, suffix, format string) (string, string, error) {
	if output == "" {
		output = defaultOutputPath(ref, suffix, format)
	}
	if output == stdio {
		return output, format, nil
	}
	if err := errs.ValidateOutputPath(output); err != nil {
		return "", "", err
	}

	fromPath, err := imageio.FormatFromPath(output)
	if err != nil {
		return "", "", err
	}
	if format != "" && format != fromPath {
		return "", "", errs.New(errs.ErrCodeInvalidFormat, "--format %s does not match output %s", format, output)
	}
	return output, fromPath, nil
}

// writeOutput stores encoded image data at path, or on stdout for "-".
func (c *CLI) writeOutput(path string, data []byte) error {
	if path == stdio {
		if _, err := c.stdout.Write(data); err != nil {
			return errs.Wrap(errs.ErrCodeEncode, err, "write stdout")
		}
		return nil
	}
	return imageio.WriteFile(path, data)
}

// displayName shortens an input reference for status lines.
func displayName(ref string) string {
	if ref == stdio {
		return "stdin"
	}
	if httputil.IsURL(ref) {
		return ref
	}
	return filepath.Base(ref)
}
