// Package images converts uploaded images into modern delivery formats.
// The preference order is AVIF (in-process encoder, then an external avifenc
// binary as fallback), then WebP, then the original bytes untouched. A failed
// conversion never fails the upload — the pipeline degrades format by format
// until something works.
package images

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	_ "image/gif"
	"image/png"

	_ "image/jpeg"

	"github.com/gen2brain/avif"
	"github.com/gen2brain/webp"
	"github.com/masterskaya-studio/site-backend/internal/telemetry"
)

// ErrNotAnImage is returned when the uploaded content type is not image/*.
var ErrNotAnImage = errors.New("uploaded file is not an image")

// ErrTooLarge is returned when the upload exceeds the configured size ceiling.
var ErrTooLarge = errors.New("uploaded file exceeds size limit")

// Result is an optimized image ready to be stored.
type Result struct {
	Data []byte
	Ext  string // ".avif", ".webp", or the original extension
	// Format names the pipeline stage that produced the bytes:
	// avif, avif-external, webp, or original.
	Format string
}

// Optimizer converts uploads. The zero value is not usable; construct with
// NewOptimizer.
type Optimizer struct {
	avifEncoder string // external binary name/path, e.g. "avifenc"
	webpQuality int
	maxBytes    int64
}

// NewOptimizer builds an optimizer. avifEncoder may be empty to skip the
// external fallback.
func NewOptimizer(avifEncoder string, webpQuality int, maxBytes int64) *Optimizer {
	if webpQuality <= 0 || webpQuality > 100 {
		webpQuality = 82
	}
	return &Optimizer{
		avifEncoder: avifEncoder,
		webpQuality: webpQuality,
		maxBytes:    maxBytes,
	}
}

// Optimize validates and converts one upload. filename and contentType come
// from the multipart part; data is the full file contents.
func (o *Optimizer) Optimize(ctx context.Context, filename, contentType string, data []byte) (*Result, error) {
	if !strings.HasPrefix(contentType, "image/") {
		return nil, ErrNotAnImage
	}
	if o.maxBytes > 0 && int64(len(data)) > o.maxBytes {
		return nil, ErrTooLarge
	}

	original := &Result{Data: data, Ext: extensionFor(filename, contentType), Format: "original"}

	// Already-optimal formats pass straight through.
	if contentType == "image/avif" || contentType == "image/svg+xml" {
		telemetry.ImageConversionsTotal.WithLabelValues("original").Inc()
		return original, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		slog.Warn("image decode failed, storing original", "file", filename, "error", err)
		telemetry.ImageConversionsTotal.WithLabelValues("original").Inc()
		return original, nil
	}

	if out, err := o.encodeAVIF(img); err == nil {
		telemetry.ImageConversionsTotal.WithLabelValues("avif").Inc()
		return &Result{Data: out, Ext: ".avif", Format: "avif"}, nil
	} else {
		slog.Debug("in-process avif encode failed", "file", filename, "error", err)
	}

	if o.avifEncoder != "" {
		if out, err := o.encodeAVIFExternal(ctx, img); err == nil {
			telemetry.ImageConversionsTotal.WithLabelValues("avif-external").Inc()
			return &Result{Data: out, Ext: ".avif", Format: "avif-external"}, nil
		} else {
			slog.Debug("external avif encode failed", "file", filename, "error", err)
		}
	}

	if out, err := o.encodeWebP(img); err == nil {
		telemetry.ImageConversionsTotal.WithLabelValues("webp").Inc()
		return &Result{Data: out, Ext: ".webp", Format: "webp"}, nil
	} else {
		slog.Warn("webp encode failed, storing original", "file", filename, "error", err)
	}

	telemetry.ImageConversionsTotal.WithLabelValues("original").Inc()
	return original, nil
}

func (o *Optimizer) encodeAVIF(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := avif.Encode(&buf, img, avif.Options{Quality: 60, Speed: 8}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// encodeAVIFExternal shells out to avifenc with a PNG intermediate on disk.
func (o *Optimizer) encodeAVIFExternal(ctx context.Context, img image.Image) ([]byte, error) {
	dir, err := os.MkdirTemp("", "imgopt-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	in := filepath.Join(dir, "in.png")
	out := filepath.Join(dir, "out.avif")

	f, err := os.Create(in)
	if err != nil {
		return nil, err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, o.avifEncoder, "-q", "60", "-s", "8", in, out)
	if output, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("%s failed: %w (%s)", o.avifEncoder, err, strings.TrimSpace(string(output)))
	}
	return os.ReadFile(out)
}

func (o *Optimizer) encodeWebP(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, webp.Options{Quality: o.webpQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// extensionFor picks a file extension for pass-through storage, preferring
// the uploaded filename's own extension.
func extensionFor(filename, contentType string) string {
	if ext := strings.ToLower(filepath.Ext(filename)); ext != "" {
		return ext
	}
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "image/avif":
		return ".avif"
	case "image/svg+xml":
		return ".svg"
	}
	return ".bin"
}
