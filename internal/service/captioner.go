package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// CaptionResult is what the inference collaborator answers with
type CaptionResult struct {
	Text         string `json:"caption"`
	ModelVersion string `json:"model_version"`
	LatencyMs    int64  `json:"latency_ms"`
}

// Captioner produces a caption for raw image bytes. The model itself
// lives behind this interface and is never loaded in-process.
type Captioner interface {
	Caption(ctx context.Context, img []byte, mime string) (*CaptionResult, error)
}

// HTTPCaptioner talks to the captioning sidecar over plain HTTP
type HTTPCaptioner struct {
	Endpoint     string
	ModelVersion string
	Client       *http.Client
}

func NewHTTPCaptioner(endpoint, modelVersion string, timeout time.Duration) *HTTPCaptioner {
	return &HTTPCaptioner{
		Endpoint:     endpoint,
		ModelVersion: modelVersion,
		Client:       &http.Client{Timeout: timeout},
	}
}

func (h *HTTPCaptioner) Caption(ctx context.Context, img []byte, mime string) (*CaptionResult, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.Endpoint, bytes.NewReader(img))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mime)

	resp, err := h.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("inference request failed, %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read inference response, %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("inference returned status %d", resp.StatusCode)
	}

	res := &CaptionResult{}
	if err := json.Unmarshal(body, res); err != nil {
		return nil, fmt.Errorf("invalid inference response, %w", err)
	}

	// Older sidecars don't report these themselves
	if res.ModelVersion == "" {
		res.ModelVersion = h.ModelVersion
	}

	if res.LatencyMs == 0 {
		res.LatencyMs = time.Since(start).Milliseconds()
	}

	return res, nil
}
