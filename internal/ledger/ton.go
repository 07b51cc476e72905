// Package ledger talks to the TON gateway daemon that deploys soulbound-token
// items and answers ownership queries. The chain itself is an external
// collaborator; this package only covers the interface the issuance and
// verification paths need from it.
package ledger

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

type Client interface {
	// MintSBT deploys a soulbound item owned by wallet, carrying metaURI as
	// its on-chain content, and returns the item contract address.
	MintSBT(ctx context.Context, wallet, metaURI string) (string, error)
	// Owner returns the owner wallet of an item contract, or "" when the
	// contract is missing or uninitialized (addr_none).
	Owner(ctx context.Context, contractAddress string) (string, error)
}

type Config struct {
	BaseURL     string
	APIKey      string
	MintAmount  string
	MaxAttempts int
	RetryDelay  time.Duration
}

type httpClient struct {
	cfg    Config
	client *http.Client
	logger *zap.Logger
}

func NewHTTPClient(cfg Config, logger *zap.Logger) Client {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 3 * time.Second
	}
	return &httpClient{
		cfg:    cfg,
		client: &http.Client{Timeout: 30 * time.Second},
		logger: logger,
	}
}

type mintRequest struct {
	Owner   string `json:"owner"`
	MetaURI string `json:"metaUri"`
	Amount  string `json:"amount"`
}

type mintResponse struct {
	ContractAddress string `json:"contractAddress"`
}

type ownerResponse struct {
	Owner string `json:"owner"`
}

// MintSBT retries transient gateway failures with exponential backoff and a
// bounded attempt count, then fails terminally.
func (c *httpClient) MintSBT(ctx context.Context, wallet, metaURI string) (string, error) {
	var lastErr error
	delay := c.cfg.RetryDelay

	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		address, err := c.mintOnce(ctx, wallet, metaURI)
		if err == nil {
			c.logger.Info("SBT minted",
				zap.String("wallet", wallet),
				zap.String("contract_address", address),
				zap.Int("attempt", attempt))
			return address, nil
		}
		lastErr = err
		c.logger.Warn("mint attempt failed",
			zap.Error(err),
			zap.String("wallet", wallet),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", c.cfg.MaxAttempts))

		if attempt == c.cfg.MaxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("mint cancelled: %w", ctx.Err())
		case <-time.After(delay):
		}
		delay *= 2
	}

	return "", fmt.Errorf("failed to mint SBT after %d attempts: %w", c.cfg.MaxAttempts, lastErr)
}

func (c *httpClient) mintOnce(ctx context.Context, wallet, metaURI string) (string, error) {
	payload, err := json.Marshal(mintRequest{Owner: wallet, MetaURI: metaURI, Amount: c.cfg.MintAmount})
	if err != nil {
		return "", fmt.Errorf("failed to marshal mint request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/sbt/deploy", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build mint request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("X-API-Key", c.cfg.APIKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("mint request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read mint response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("mint rejected: status %d: %s", resp.StatusCode, raw)
	}

	var parsed mintResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse mint response: %w", err)
	}
	if parsed.ContractAddress == "" {
		return "", fmt.Errorf("mint response carries no contract address")
	}
	return parsed.ContractAddress, nil
}

func (c *httpClient) Owner(ctx context.Context, contractAddress string) (string, error) {
	url := fmt.Sprintf("%s/nft/%s/owner", c.cfg.BaseURL, contractAddress)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build owner request: %w", err)
	}
	if c.cfg.APIKey != "" {
		req.Header.Set("X-API-Key", c.cfg.APIKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("owner request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		// Missing or uninitialized contract: not an error, just no owner.
		return "", nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read owner response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("owner query rejected: status %d: %s", resp.StatusCode, raw)
	}

	var parsed ownerResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse owner response: %w", err)
	}
	return parsed.Owner, nil
}
