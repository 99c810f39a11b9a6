package server

import (
	"io"
	"strconv"
	"strings"

	"glimpse/internal/models"
	"glimpse/internal/service"

	"github.com/gofiber/fiber/v2"
)

// pageWindow is a parsed and clamped pagination range.
type pageWindow struct {
	From  int
	Limit int
}

// parseRange reads the "from"/"limit" query parameters. Negative
// offsets are treated as zero; limits are clamped into
// [minLimit, maxLimit] with minLimit doubling as the default.
func parseRange(c *fiber.Ctx, minLimit, maxLimit int) pageWindow {
	from := c.QueryInt("from", 0)
	if from < 0 {
		from = 0
	}
	limit := c.QueryInt("limit", minLimit)
	if limit < minLimit {
		limit = minLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return pageWindow{From: from, Limit: limit}
}

// currentUsername returns the authenticated caller's username, or ""
// for anonymous requests.
func currentUsername(c *fiber.Ctx) string {
	if u, ok := c.Locals("username").(string); ok {
		return u
	}
	return ""
}

func postFromLocals(c *fiber.Ctx) *models.Post {
	if p, ok := c.Locals("post").(*models.Post); ok {
		return p
	}
	return nil
}

func commentFromLocals(c *fiber.Ctx) *models.Comment {
	if cm, ok := c.Locals("comment").(*models.Comment); ok {
		return cm
	}
	return nil
}

// readUploadedFiles pulls the named multipart field's files into memory.
// Requests without a multipart body yield an empty slice, not an error.
func readUploadedFiles(c *fiber.Ctx, field string) ([]service.UploadedFile, error) {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil, nil
	}

	headers := form.File[field]
	files := make([]service.UploadedFile, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, models.NewValidationError("unreadable file upload")
		}
		content, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, models.NewValidationError("unreadable file upload")
		}
		files = append(files, service.UploadedFile{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Content:     content,
		})
	}
	return files, nil
}

// parsePhotoIDs splits a comma-separated id list, dropping entries that
// are not positive integers.
func parsePhotoIDs(raw string) []uint {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]uint, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseUint(strings.TrimSpace(p), 10, 32)
		if err != nil || id == 0 {
			continue
		}
		ids = append(ids, uint(id))
	}
	return ids
}
