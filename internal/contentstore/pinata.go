// Package contentstore pins artifacts to IPFS through a pinata-style API and
// returns stable gateway URLs plus content identifiers.
package contentstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Pin is the durable locator of one uploaded artifact.
type Pin struct {
	CID string
	URL string
}

// IPFSURI renders the pin as an ipfs:// URI.
func (p Pin) IPFSURI() string {
	return "ipfs://" + p.CID
}

type Store interface {
	Put(ctx context.Context, data []byte, name string) (Pin, error)
}

const uploadEndpoint = "https://uploads.pinata.cloud/v3/files"

type pinataStore struct {
	endpoint string
	jwt      string
	gateway  string
	client   *http.Client
	logger   *zap.Logger
}

func NewPinataStore(jwt, gateway string, logger *zap.Logger) Store {
	return &pinataStore{
		endpoint: uploadEndpoint,
		jwt:      jwt,
		gateway:  normalizeGateway(gateway),
		client:   &http.Client{Timeout: 60 * time.Second},
		logger:   logger,
	}
}

// normalizeGateway strips the scheme so configured values work with or
// without it.
func normalizeGateway(gateway string) string {
	if gateway == "" {
		return "gateway.pinata.cloud"
	}
	gateway = strings.TrimPrefix(gateway, "https://")
	gateway = strings.TrimPrefix(gateway, "http://")
	return strings.TrimSuffix(gateway, "/")
}

type uploadResponse struct {
	Data struct {
		ID  string `json:"id"`
		CID string `json:"cid"`
	} `json:"data"`
}

func (s *pinataStore) Put(ctx context.Context, data []byte, name string) (Pin, error) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)

	part, err := form.CreateFormFile("file", name)
	if err != nil {
		return Pin{}, fmt.Errorf("failed to build upload form: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return Pin{}, fmt.Errorf("failed to write upload payload: %w", err)
	}
	if err := form.WriteField("network", "public"); err != nil {
		return Pin{}, fmt.Errorf("failed to write upload form field: %w", err)
	}
	if err := form.Close(); err != nil {
		return Pin{}, fmt.Errorf("failed to finish upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, &body)
	if err != nil {
		return Pin{}, fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.jwt)
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Error("pin upload failed", zap.Error(err), zap.String("name", name))
		return Pin{}, fmt.Errorf("pin upload failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Pin{}, fmt.Errorf("failed to read upload response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		s.logger.Error("pin upload rejected",
			zap.Int("status", resp.StatusCode),
			zap.String("name", name),
			zap.ByteString("body", raw))
		return Pin{}, fmt.Errorf("pin upload rejected: status %d", resp.StatusCode)
	}

	var parsed uploadResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return Pin{}, fmt.Errorf("failed to parse upload response: %w", err)
	}
	if parsed.Data.CID == "" {
		return Pin{}, fmt.Errorf("upload response carries no cid")
	}

	pin := Pin{
		CID: parsed.Data.CID,
		URL: fmt.Sprintf("https://%s/ipfs/%s", s.gateway, parsed.Data.CID),
	}
	s.logger.Info("artifact pinned", zap.String("name", name), zap.String("cid", pin.CID), zap.String("url", pin.URL))
	return pin, nil
}
