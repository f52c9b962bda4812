package keylight

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/samber/lo"

	"github.com/butterflysky/elgato-keylight/internal/errors"
)

// DefaultTimeout bounds every request made by a Client.
const DefaultTimeout = 5 * time.Second

// Client talks to one Key Light over its REST API. Each Client owns its
// HTTP connection pool; call Close when done with it.
//
// The convenience mutators (Toggle, AdjustBrightness, ...) read the
// current state and write a modified copy. They are not atomic: a change
// made by another controller between the read and the write is lost.
type Client struct {
	config     LightConfig
	baseURL    string
	httpClient *http.Client
	// the transport came from WithHTTPClient and may be shared
	sharedTransport bool
	logger          *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient makes the client send requests through a copy of hc. hc
// itself is never modified and Close leaves its transport alone.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			own := *hc
			c.httpClient = &own
			c.sharedTransport = true
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// NewClient creates a client for the light described by cfg.
func NewClient(cfg LightConfig, logger *slog.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		config:  cfg,
		baseURL: cfg.BaseURL(),
		httpClient: &http.Client{
			Timeout:   DefaultTimeout,
			Transport: http.DefaultTransport.(*http.Transport).Clone(),
		},
		logger: logger.With("light", cfg.Name),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name is the configured light name.
func (c *Client) Name() string {
	return c.config.Name
}

// Config returns the light configuration the client was built from.
func (c *Client) Config() LightConfig {
	return c.config
}

// Close releases the client's idle connections. A transport supplied with
// WithHTTPClient is left open.
func (c *Client) Close() {
	if c.sharedTransport {
		return
	}
	c.httpClient.CloseIdleConnections()
}

// GetState reads the light's current state.
func (c *Client) GetState(ctx context.Context) (LightState, error) {
	var resp apiLights
	if err := c.do(ctx, http.MethodGet, "/lights", nil, &resp); err != nil {
		return LightState{}, err
	}
	if len(resp.Lights) == 0 {
		return LightState{}, errors.Unreachablef("%s: no lights in response", c.config.Name)
	}
	return resp.Lights[0].toState(), nil
}

// SetState clamps s, sends it and returns the state the device
// acknowledged. If the device echoes no state, the sent state is returned.
func (c *Client) SetState(ctx context.Context, s LightState) (LightState, error) {
	s = s.Clamp()
	var resp apiLights
	if err := c.do(ctx, http.MethodPut, "/lights", s.toAPI(), &resp); err != nil {
		return LightState{}, err
	}
	if len(resp.Lights) == 0 {
		return s, nil
	}
	return resp.Lights[0].toState(), nil
}

// Update applies patch on top of the current state. An empty patch just
// reads the state.
func (c *Client) Update(ctx context.Context, patch StatePatch) (LightState, error) {
	current, err := c.GetState(ctx)
	if err != nil {
		return LightState{}, err
	}
	if patch.IsEmpty() {
		return current, nil
	}
	return c.SetState(ctx, patch.Apply(current))
}

// TurnOn switches the light on, keeping brightness and temperature.
func (c *Client) TurnOn(ctx context.Context) (LightState, error) {
	return c.Update(ctx, StatePatch{On: lo.ToPtr(true)})
}

// TurnOff switches the light off, keeping brightness and temperature.
func (c *Client) TurnOff(ctx context.Context) (LightState, error) {
	return c.Update(ctx, StatePatch{On: lo.ToPtr(false)})
}

// Toggle flips the on/off state.
func (c *Client) Toggle(ctx context.Context) (LightState, error) {
	current, err := c.GetState(ctx)
	if err != nil {
		return LightState{}, err
	}
	current.On = !current.On
	return c.SetState(ctx, current)
}

// SetBrightness sets the brightness (clamped to 0-100), leaving power alone.
func (c *Client) SetBrightness(ctx context.Context, brightness int) (LightState, error) {
	return c.Update(ctx, StatePatch{Brightness: lo.ToPtr(brightness)})
}

// AdjustBrightness changes the brightness by delta, clamped to 0-100.
func (c *Client) AdjustBrightness(ctx context.Context, delta int) (LightState, error) {
	current, err := c.GetState(ctx)
	if err != nil {
		return LightState{}, err
	}
	current.Brightness += delta
	return c.SetState(ctx, current)
}

// SetTemperature sets the colour temperature (clamped to 143-344).
func (c *Client) SetTemperature(ctx context.Context, temperature int) (LightState, error) {
	return c.Update(ctx, StatePatch{Temperature: lo.ToPtr(temperature)})
}

// Identify makes the light blink.
func (c *Client) Identify(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/lights/identify", nil, nil)
}

// GetInfo reads the accessory information.
func (c *Client) GetInfo(ctx context.Context) (DeviceInfo, error) {
	var info DeviceInfo
	if err := c.do(ctx, http.MethodGet, "/accessory-info", nil, &info); err != nil {
		return DeviceInfo{}, err
	}
	return info, nil
}

// do performs one request. Every failure is reported as ErrUnreachable.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	url := c.baseURL + path

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
		c.logger.Debug("light: request", "method", method, "url", url, "payload", string(data))
	} else {
		c.logger.Debug("light: request", "method", method, "url", url)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("light: request failed", "method", method, "url", url, "error", err)
		return errors.Unreachablef("%s %s: %w", method, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Debug("light: unexpected status", "method", method, "url", url, "status", resp.StatusCode)
		return errors.Unreachablef("%s %s: unexpected status code: %d", method, url, resp.StatusCode)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Unreachablef("%s %s: reading response: %w", method, url, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		c.logger.Debug("light: decode failed", "method", method, "url", url, "error", err)
		return errors.Unreachablef("%s %s: failed to decode response: %w", method, url, err)
	}
	return nil
}
