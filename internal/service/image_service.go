// Package service contains the business logic between handlers and repositories.
package service

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "image/gif"  // register GIF decoder
	_ "image/png"  // register PNG decoder

	"glimpse/internal/config"
	"glimpse/internal/middleware"
	"glimpse/internal/models"
	"glimpse/internal/observability"

	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder
)

const (
	// PhotoMaxDimension bounds the longest side of a stored photo.
	PhotoMaxDimension = 1080
	jpegQuality       = 82

	// Storage subdirectories under the static root.
	PostPhotoDir = "posts"
	AvatarDir    = "avatars"
)

// ImageService turns uploaded image bytes into resized JPEGs under the
// static root. All writes are awaited; a photo row is only ever
// committed after its backing file exists on disk.
type ImageService struct {
	staticRoot string
	nameFn     func() string
}

// NewImageService creates an image service writing under the configured
// static root.
func NewImageService(cfg *config.Config) *ImageService {
	return &ImageService{
		staticRoot: cfg.StaticRoot,
		nameFn:     uniquePhotoName,
	}
}

// uniquePhotoName derives a collision-resistant filename from the
// current unix-millisecond timestamp and a 63-bit random suffix, so
// sibling uploads within the same millisecond cannot collide.
func uniquePhotoName() string {
	return fmt.Sprintf("%d-%d.jpg", time.Now().UnixMilli(), rand.Int63())
}

// Transcode decodes the uploaded bytes, scales them down so the longest
// side is at most PhotoMaxDimension, re-encodes as JPEG and writes the
// result under subdir. Returns the stored path relative to the static
// root (e.g. "posts/1693...-42871.jpg").
func (s *ImageService) Transcode(content []byte, subdir string) (string, error) {
	if len(content) == 0 {
		return "", models.NewValidationError("no file uploaded")
	}
	if !strings.HasPrefix(http.DetectContentType(content), "image/") {
		observability.ImageTranscodes.WithLabelValues("rejected").Inc()
		return "", models.NewValidationError("invalid filetype")
	}

	decoded, _, err := image.Decode(bytes.NewReader(content))
	if err != nil {
		observability.ImageTranscodes.WithLabelValues("rejected").Inc()
		return "", models.NewValidationError("invalid image file")
	}

	resized := resizeToFit(decoded, PhotoMaxDimension)

	buf := bytes.NewBuffer(nil)
	if err := jpeg.Encode(buf, resized, &jpeg.Options{Quality: jpegQuality}); err != nil {
		observability.ImageTranscodes.WithLabelValues("failed").Inc()
		return "", models.NewInternalError(err)
	}

	rel := filepath.ToSlash(filepath.Join(subdir, s.nameFn()))
	if err := writeBytesToFile(filepath.Join(s.staticRoot, rel), buf.Bytes()); err != nil {
		observability.ImageTranscodes.WithLabelValues("failed").Inc()
		return "", models.NewInternalError(err)
	}

	observability.ImageTranscodes.WithLabelValues("ok").Inc()
	return rel, nil
}

// Remove unlinks a stored photo file. Failures are logged and counted,
// never surfaced: the store row is already gone and is the source of truth.
func (s *ImageService) Remove(relPath string) {
	if relPath == "" || strings.Contains(relPath, "..") {
		return
	}
	if err := os.Remove(filepath.Join(s.staticRoot, filepath.FromSlash(relPath))); err != nil {
		observability.PhotoUnlinkFailures.Inc()
		middleware.Logger.Warn("failed to unlink photo file",
			slog.String("path", relPath),
			slog.String("error", err.Error()),
		)
	}
}

// resizeToFit scales src down so both sides fit within maxDim,
// preserving aspect ratio. Images already within bounds pass through.
func resizeToFit(src image.Image, maxDim int) image.Image {
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w <= 0 || h <= 0 || (w <= maxDim && h <= maxDim) {
		return src
	}

	scale := float64(maxDim) / float64(w)
	if h > w {
		scale = float64(maxDim) / float64(h)
	}
	newW := int(float64(w) * scale)
	newH := int(float64(h) * scale)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

func writeBytesToFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
