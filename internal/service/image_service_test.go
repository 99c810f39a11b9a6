package service

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"glimpse/internal/config"
	"glimpse/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImageService(t *testing.T) (*ImageService, string) {
	t.Helper()
	root := t.TempDir()
	return NewImageService(&config.Config{StaticRoot: root}), root
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x += 10 {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestTranscodeResizesOversizedImages(t *testing.T) {
	s, root := testImageService(t)

	rel, err := s.Transcode(encodePNG(t, 2000, 500), PostPhotoDir)
	require.NoError(t, err)
	assert.True(t, filepath.IsLocal(rel))

	f, err := os.Open(filepath.Join(root, rel))
	require.NoError(t, err)
	defer f.Close()

	decoded, err := jpeg.Decode(f)
	require.NoError(t, err)
	bounds := decoded.Bounds()
	assert.Equal(t, PhotoMaxDimension, bounds.Dx())
	assert.LessOrEqual(t, bounds.Dy(), PhotoMaxDimension)
}

func TestTranscodeKeepsSmallImages(t *testing.T) {
	s, root := testImageService(t)

	rel, err := s.Transcode(encodePNG(t, 640, 480), PostPhotoDir)
	require.NoError(t, err)

	f, err := os.Open(filepath.Join(root, rel))
	require.NoError(t, err)
	defer f.Close()

	decoded, err := jpeg.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 640, decoded.Bounds().Dx())
	assert.Equal(t, 480, decoded.Bounds().Dy())
}

func TestTranscodeRejectsNonImages(t *testing.T) {
	s, _ := testImageService(t)

	for name, content := range map[string][]byte{
		"empty":     nil,
		"text":      []byte("just some text pretending to be a photo"),
		"truncated": {0x89, 0x50, 0x4e, 0x47},
	} {
		_, err := s.Transcode(content, PostPhotoDir)
		require.Error(t, err, name)
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr, name)
		assert.Equal(t, 400, appErr.HTTPStatus, name)
	}
}

func TestRemoveIsBestEffort(t *testing.T) {
	s, root := testImageService(t)

	rel, err := s.Transcode(encodePNG(t, 100, 100), AvatarDir)
	require.NoError(t, err)
	s.Remove(rel)
	_, statErr := os.Stat(filepath.Join(root, rel))
	assert.True(t, os.IsNotExist(statErr))

	// Missing files and traversal attempts are ignored quietly.
	s.Remove("posts/never-existed.jpg")
	s.Remove("../../../etc/passwd")
	s.Remove("")
}

func TestUniquePhotoNames(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		name := uniquePhotoName()
		assert.False(t, seen[name], "duplicate name %s", name)
		seen[name] = true
		assert.True(t, filepath.Ext(name) == ".jpg")
	}
}
