package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPCaptionerSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "image/jpeg", r.Header.Get("Content-Type"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"caption":"a dog on a beach","model_version":"v3","latency_ms":120}`))
	}))
	defer srv.Close()

	captioner := NewHTTPCaptioner(srv.URL, "fallback", 5*time.Second)

	res, err := captioner.Caption(context.Background(), []byte{0xff, 0xd8}, "image/jpeg")
	require.NoError(t, err)

	assert.Equal(t, "a dog on a beach", res.Text)
	assert.Equal(t, "v3", res.ModelVersion)
	assert.EqualValues(t, 120, res.LatencyMs)
}

func TestHTTPCaptionerFallbacks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"caption":"a cat"}`))
	}))
	defer srv.Close()

	captioner := NewHTTPCaptioner(srv.URL, "model-v1", 5*time.Second)

	res, err := captioner.Caption(context.Background(), []byte{0x00}, "image/png")
	require.NoError(t, err)

	assert.Equal(t, "model-v1", res.ModelVersion)
	assert.GreaterOrEqual(t, res.LatencyMs, int64(0))
}

func TestHTTPCaptionerBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model is loading", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	captioner := NewHTTPCaptioner(srv.URL, "model-v1", 5*time.Second)

	_, err := captioner.Caption(context.Background(), []byte{0x00}, "image/png")
	assert.Error(t, err)
}

func TestHTTPCaptionerBadBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	captioner := NewHTTPCaptioner(srv.URL, "model-v1", 5*time.Second)

	_, err := captioner.Caption(context.Background(), []byte{0x00}, "image/png")
	assert.Error(t, err)
}
