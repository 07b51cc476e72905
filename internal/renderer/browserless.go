// Package renderer turns template HTML into certificate artifacts using a
// browserless-style remote rendering API.
package renderer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Viewport controls PNG screenshot dimensions.
type Viewport struct {
	Width             int `json:"width"`
	Height            int `json:"height"`
	DeviceScaleFactor int `json:"deviceScaleFactor"`
}

// CertificateViewport matches the template layout certificates are designed
// against.
var CertificateViewport = Viewport{Width: 1056, Height: 816, DeviceScaleFactor: 2}

// VOICViewport is the square layout of the verified-organization identity card.
var VOICViewport = Viewport{Width: 700, Height: 700, DeviceScaleFactor: 2}

type Renderer interface {
	RenderPDF(ctx context.Context, html string) ([]byte, error)
	RenderPNG(ctx context.Context, html string, viewport Viewport) ([]byte, error)
}

type browserlessRenderer struct {
	baseURL string
	token   string
	client  *http.Client
	logger  *zap.Logger
}

func NewBrowserlessRenderer(baseURL, token string, timeout time.Duration, logger *zap.Logger) Renderer {
	return &browserlessRenderer{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type pdfRequest struct {
	HTML    string     `json:"html"`
	Options pdfOptions `json:"options"`
}

type pdfOptions struct {
	Format          string `json:"format"`
	PrintBackground bool   `json:"printBackground"`
}

type screenshotRequest struct {
	HTML     string            `json:"html"`
	Options  screenshotOptions `json:"options"`
	Viewport Viewport          `json:"viewport"`
}

type screenshotOptions struct {
	Type     string `json:"type"`
	Encoding string `json:"encoding"`
	FullPage bool   `json:"fullPage"`
}

func (r *browserlessRenderer) RenderPDF(ctx context.Context, html string) ([]byte, error) {
	body := pdfRequest{
		HTML:    html,
		Options: pdfOptions{Format: "A4", PrintBackground: true},
	}
	return r.post(ctx, "/pdf", body)
}

func (r *browserlessRenderer) RenderPNG(ctx context.Context, html string, viewport Viewport) ([]byte, error) {
	body := screenshotRequest{
		HTML:     html,
		Options:  screenshotOptions{Type: "png", Encoding: "binary", FullPage: true},
		Viewport: viewport,
	}
	return r.post(ctx, "/screenshot", body)
}

func (r *browserlessRenderer) post(ctx context.Context, path string, body any) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal render request: %w", err)
	}

	url := fmt.Sprintf("%s%s?token=%s", r.baseURL, path, r.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build render request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Error("render request failed", zap.Error(err), zap.String("path", path))
		return nil, fmt.Errorf("render request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read render response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		r.logger.Error("renderer returned error",
			zap.Int("status", resp.StatusCode),
			zap.String("path", path),
			zap.ByteString("body", data))
		return nil, fmt.Errorf("renderer %s failed: status %d", path, resp.StatusCode)
	}

	r.logger.Debug("rendered document", zap.String("path", path), zap.Int("bytes", len(data)))
	return data, nil
}
