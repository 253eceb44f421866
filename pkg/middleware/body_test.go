package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestBodySizeLimiterRejectsOversized(t *testing.T) {
	gin.SetMode(gin.TestMode)

	handlerRan := false
	r := gin.New()
	r.POST("/", BodySizeLimiter(10), func(c *gin.Context) {
		handlerRan = true
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("a", 100)))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.False(t, handlerRan, "handler ran for a rejected request")
}

func TestBodySizeLimiterPassesSmallBodies(t *testing.T) {
	gin.SetMode(gin.TestMode)

	handlerRan := false
	r := gin.New()
	r.POST("/", BodySizeLimiter(1<<10), func(c *gin.Context) {
		handlerRan = true
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("small"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, handlerRan)
}

func TestBodySizeLimiterCatchesUnknownLength(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.POST("/", BodySizeLimiter(10), func(c *gin.Context) {
		if _, err := c.GetRawData(); err != nil {
			c.Error(err)
			return
		}
		c.Status(http.StatusOK)
	})

	// No Content-Length, so only MaxBytesReader can catch this one
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("a", 100)))
	req.ContentLength = -1
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}
