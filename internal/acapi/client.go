package acapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"airwise-backend/config"
	"airwise-backend/internal/apperr"
)

// Gateway is the subset of the vendor API the services depend on.
type Gateway interface {
	GetState(ctx context.Context, serial string) (*Response, error)
	SetState(ctx context.Context, serial string, setting Setting) (*Response, error)
}

// Client talks to the vendor AC API over HTTP.
type Client struct {
	baseURL string
	client  *http.Client
	log     *zap.Logger
}

// NewClient creates a client with the configured timeout and optional proxy.
func NewClient(cfg config.ACAPIConfig, log *zap.Logger) *Client {
	var transport http.RoundTripper = &http.Transport{}
	if cfg.HTTPProxy != "" {
		proxyURL, err := url.Parse(cfg.HTTPProxy)
		if err != nil {
			log.Warn("invalid AC API proxy, not using a proxy", zap.String("proxy", cfg.HTTPProxy), zap.Error(err))
		} else {
			transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
		}
	}

	return &Client{
		baseURL: cfg.BaseURL,
		client: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
		log: log,
	}
}

// GetState fetches the live state of the AC with the given serial.
func (c *Client) GetState(ctx context.Context, serial string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+url.PathEscape(serial), nil)
	if err != nil {
		return nil, apperr.ExternalAPI("failed to create request: %v", err)
	}
	req.Header.Set("Accept", "application/json")

	return c.do(req, serial, false)
}

// SetState asks the vendor to apply a setting to the AC.
func (c *Client) SetState(ctx context.Context, serial string, setting Setting) (*Response, error) {
	body, err := json.Marshal(setting)
	if err != nil {
		return nil, apperr.ExternalAPI("failed to encode setting: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+url.PathEscape(serial)+"/set", bytes.NewReader(body))
	if err != nil {
		return nil, apperr.ExternalAPI("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	return c.do(req, serial, true)
}

func (c *Client) do(req *http.Request, serial string, isSet bool) (*Response, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Error("AC API request failed", zap.String("serial", serial), zap.Error(err))
		return nil, apperr.ExternalAPI("error calling external API: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.ExternalAPI("failed to read response body: %v", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, apperr.NotFound("AC not found for serial: %s", serial)
	case isSet && resp.StatusCode == http.StatusBadRequest:
		return nil, apperr.InvalidInput("invalid input: %s", string(respBody))
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		c.log.Error("AC API returned unexpected status",
			zap.String("serial", serial), zap.Int("status", resp.StatusCode), zap.ByteString("body", respBody))
		return nil, apperr.ExternalAPI("unexpected status code %d", resp.StatusCode)
	}

	var out Response
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, apperr.ExternalAPI("failed to unmarshal response: %v", err)
	}
	return &out, nil
}

var _ Gateway = (*Client)(nil)

func (s Setting) String() string {
	return fmt.Sprintf("power=%t temperature=%.1f mode=%s fanSpeed=%s", s.Power, s.Temperature, s.Mode, s.FanSpeed)
}
