package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRange(t *testing.T) {
	var got pageWindow
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		got = parseRange(c, 20, 50)
		return c.SendStatus(fiber.StatusOK)
	})

	tests := []struct {
		name  string
		query string
		want  pageWindow
	}{
		{"defaults", "", pageWindow{From: 0, Limit: 20}},
		{"negative from", "?from=-3", pageWindow{From: 0, Limit: 20}},
		{"below minimum", "?limit=5", pageWindow{From: 0, Limit: 20}},
		{"within range", "?from=10&limit=35", pageWindow{From: 10, Limit: 35}},
		{"above maximum", "?limit=100000", pageWindow{From: 0, Limit: 50}},
		{"not a number", "?from=abc&limit=xyz", pageWindow{From: 0, Limit: 20}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/"+tt.query, nil)
			resp, err := app.Test(req)
			require.NoError(t, err)
			_ = resp.Body.Close()
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePhotoIDs(t *testing.T) {
	assert.Nil(t, parsePhotoIDs(""))
	assert.Equal(t, []uint{1, 2, 5}, parsePhotoIDs("1,2,abc,0, 5"))
	assert.Empty(t, parsePhotoIDs("x,y,-3"))
}
