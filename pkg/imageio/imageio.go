// Package imageio reads and writes the image files seamcarve works on.
//
// Decoding accepts PNG, JPEG, GIF, BMP, TIFF and WebP; encoding produces
// every one of those except WebP. JPEG and TIFF inputs are rotated according
// to their EXIF orientation tag so that carving always runs on the image as
// it is displayed.
//
// All failures are reported as structured errors from
// [github.com/matzehuels/seamcarve/pkg/errors] with the codes
// FILE_NOT_FOUND, DECODE_FAILED, ENCODE_FAILED or INVALID_FORMAT.
package imageio

import (
	"bytes"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	// Decoders not covered by imaging's own registrations.
	_ "golang.org/x/image/webp"

	errs "github.com/matzehuels/seamcarve/pkg/errors"
)

// Format names accepted by [ParseFormat].
const (
	FormatPNG  = "png"
	FormatJPEG = "jpeg"
	FormatGIF  = "gif"
	FormatBMP  = "bmp"
	FormatTIFF = "tiff"
)

// DefaultJPEGQuality is used when [Options.JPEGQuality] is zero.
const DefaultJPEGQuality = 95

var formats = map[string]imaging.Format{
	FormatPNG:  imaging.PNG,
	FormatJPEG: imaging.JPEG,
	FormatGIF:  imaging.GIF,
	FormatBMP:  imaging.BMP,
	FormatTIFF: imaging.TIFF,
}

// Options controls encoding.
type Options struct {
	// JPEGQuality in 1..100. Zero selects DefaultJPEGQuality.
	JPEGQuality int
}

// ParseFormat normalises an output format name. "jpg" and "tif" are
// accepted as aliases.
func ParseFormat(name string) (string, error) {
	n := strings.ToLower(strings.TrimPrefix(name, "."))
	switch n {
	case "jpg":
		n = FormatJPEG
	case "tif":
		n = FormatTIFF
	}
	if _, ok := formats[n]; !ok {
		return "", errs.New(errs.ErrCodeInvalidFormat, "unsupported output format %q (must be one of: png, jpeg, gif, bmp, tiff)", name)
	}
	return n, nil
}

// FormatFromPath derives the output format from a file extension.
func FormatFromPath(path string) (string, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return "", errs.New(errs.ErrCodeInvalidFormat, "cannot infer image format from %q", path)
	}
	return ParseFormat(ext)
}

// ContentType returns the MIME type for a format returned by [ParseFormat].
func ContentType(format string) string {
	switch format {
	case FormatJPEG:
		return "image/jpeg"
	case FormatGIF:
		return "image/gif"
	case FormatBMP:
		return "image/bmp"
	case FormatTIFF:
		return "image/tiff"
	}
	return "image/png"
}

// Decode reads an image from r and returns it with the name of the format it
// was stored in (as registered with the image package, e.g. "jpeg", "webp").
func Decode(r io.Reader) (image.Image, string, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return nil, "", errs.Wrap(errs.ErrCodeDecode, err, "read image")
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(buf.Bytes()))
	if err != nil {
		return nil, "", errs.Wrap(errs.ErrCodeDecode, err, "unrecognised image data")
	}
	img, err := imaging.Decode(bytes.NewReader(buf.Bytes()), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", errs.Wrap(errs.ErrCodeDecode, err, "decode %s image", format)
	}
	return img, format, nil
}

// DecodeBytes is [Decode] over an in-memory buffer.
func DecodeBytes(data []byte) (image.Image, string, error) {
	return Decode(bytes.NewReader(data))
}

// Load reads and decodes the image file at path.
func Load(path string) (image.Image, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "image not found: %s", path)
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeDecode, err, "open %s", path)
	}
	defer f.Close()

	img, _, err := Decode(f)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeDecode, err, "load %s", path)
	}
	return img, nil
}

// Encode writes img to w in the given format.
func Encode(w io.Writer, img image.Image, format string, opts Options) error {
	f, err := ParseFormat(format)
	if err != nil {
		return err
	}
	quality := opts.JPEGQuality
	if quality == 0 {
		quality = DefaultJPEGQuality
	}
	if err := imaging.Encode(w, img, formats[f], imaging.JPEGQuality(quality)); err != nil {
		return errs.Wrap(errs.ErrCodeEncode, err, "encode %s", f)
	}
	return nil
}

// EncodeBytes is [Encode] into a new buffer.
func EncodeBytes(img image.Image, format string, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, img, format, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save encodes img into the file at path, deriving the format from the
// file extension. Missing parent directories are created.
func Save(img image.Image, path string, opts Options) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	data, err := EncodeBytes(img, format, opts)
	if err != nil {
		return err
	}
	return WriteFile(path, data)
}

// WriteFile writes already encoded image data to path, creating parent
// directories as needed.
func WriteFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errs.Wrap(errs.ErrCodeEncode, err, "create %s", dir)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errs.Wrap(errs.ErrCodeEncode, err, "write %s", path)
	}
	return nil
}
