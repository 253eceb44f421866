package caption

import (
	"bitwise74/caption-api/internal"
	"bitwise74/caption-api/internal/model"
	"bitwise74/caption-api/internal/service"
	"bitwise74/caption-api/pkg/middleware"
	"bitwise74/caption-api/pkg/security"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type stubCaptioner struct {
	res *service.CaptionResult
	err error
}

func (s *stubCaptioner) Caption(ctx context.Context, img []byte, mime string) (*service.CaptionResult, error) {
	return s.res, s.err
}

func newTestDeps(t *testing.T, captioner service.Captioner) *internal.Deps {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.User{}, model.Image{}, model.Caption{}))

	tokens := security.NewTokens("test-secret", time.Hour, time.Hour)

	return &internal.Deps{
		DB:        db,
		Tokens:    tokens,
		Resolver:  security.NewResolver(tokens),
		Captioner: captioner,
	}
}

func newTestRouter(d *internal.Deps) *gin.Engine {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(
		middleware.NewRequestIDMiddleware(),
		middleware.NewIdentityMiddleware(d.Resolver),
	)
	r.POST("/api/caption", func(c *gin.Context) { Create(c, d) })

	return r
}

func pngBytes(t *testing.T) []byte {
	t.Helper()

	buf := &bytes.Buffer{}
	require.NoError(t, png.Encode(buf, image.NewRGBA(image.Rect(0, 0, 8, 4))))

	return buf.Bytes()
}

func uploadReq(t *testing.T, payload []byte, cookies ...*http.Cookie) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)

	fw, err := mw.CreateFormFile("file", "test.png")
	require.NoError(t, err)
	_, err = fw.Write(payload)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/caption", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	for _, ck := range cookies {
		req.AddCookie(ck)
	}

	return req
}

func TestCreatePersistsForGuest(t *testing.T) {
	d := newTestDeps(t, &stubCaptioner{res: &service.CaptionResult{
		Text:         "a tiny test image",
		ModelVersion: "stub-v1",
		LatencyMs:    5,
	}})
	r := newTestRouter(d)

	guestTok, err := d.Tokens.IssueGuest("guest-abc123def456")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, uploadReq(t, pngBytes(t),
		&http.Cookie{Name: middleware.GuestCookie, Value: guestTok}))
	require.Equal(t, http.StatusOK, w.Code)

	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, "a tiny test image", out["caption"])
	assert.Equal(t, "stub-v1", out["model_version"])
	assert.NotZero(t, out["image_id"])
	assert.NotZero(t, out["caption_id"])

	var img model.Image
	require.NoError(t, d.DB.First(&img).Error)
	require.NotNil(t, img.GuestID)
	assert.Equal(t, "guest-abc123def456", *img.GuestID)
	assert.Nil(t, img.UserID)
	assert.Equal(t, "image/png", img.Mime)
	assert.Equal(t, 8, img.Width)
	assert.Equal(t, 4, img.Height)
	assert.NotEmpty(t, img.Data)

	var capt model.Caption
	require.NoError(t, d.DB.First(&capt).Error)
	assert.Equal(t, img.ID, capt.ImageID)
	assert.Equal(t, "a tiny test image", capt.Text)
}

func TestCreatePersistsForUser(t *testing.T) {
	d := newTestDeps(t, &stubCaptioner{res: &service.CaptionResult{Text: "ok"}})
	r := newTestRouter(d)

	userTok, err := d.Tokens.IssueUser(7)
	require.NoError(t, err)

	req := uploadReq(t, pngBytes(t))
	req.Header.Set("Authorization", "Bearer "+userTok)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var img model.Image
	require.NoError(t, d.DB.First(&img).Error)
	require.NotNil(t, img.UserID)
	assert.EqualValues(t, 7, *img.UserID)
	assert.Nil(t, img.GuestID)
}

func TestCreateAnonymousNotPersisted(t *testing.T) {
	d := newTestDeps(t, &stubCaptioner{res: &service.CaptionResult{Text: "still captioned"}})
	r := newTestRouter(d)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, uploadReq(t, pngBytes(t)))
	require.Equal(t, http.StatusOK, w.Code)

	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, "still captioned", out["caption"])
	assert.EqualValues(t, 0, out["image_id"])

	var count int64
	require.NoError(t, d.DB.Model(&model.Image{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateRejectsNonImage(t *testing.T) {
	d := newTestDeps(t, &stubCaptioner{res: &service.CaptionResult{Text: "x"}})
	r := newTestRouter(d)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, uploadReq(t, []byte("definitely not an image")))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateCaptionerDown(t *testing.T) {
	d := newTestDeps(t, &stubCaptioner{err: errors.New("model is loading")})
	r := newTestRouter(d)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, uploadReq(t, pngBytes(t)))
	assert.Equal(t, http.StatusBadGateway, w.Code)

	// Nothing half-written when inference fails
	var count int64
	require.NoError(t, d.DB.Model(&model.Image{}).Count(&count).Error)
	assert.Zero(t, count)
}
