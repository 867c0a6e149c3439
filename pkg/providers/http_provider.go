package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// HTTPProvider is the base implementation for HTTP-based provider adapters.
// It provides connection pooling, timeout handling, and health monitoring.
//
// Concrete provider implementations (OpenAI, Anthropic, etc.) embed this
// struct and implement the Provider interface on top of it. HTTPProvider
// performs exactly one attempt per call — retry and backoff belong to
// pkg/executor, never to the transport.
type HTTPProvider struct {
	config ProviderConfig

	client *http.Client

	health   internalHealth
	healthMu sync.RWMutex

	stopHealthCheck    chan struct{}
	healthCheckStopped chan struct{}
}

// NewHTTPProvider creates a new base HTTP provider with connection pooling.
func NewHTTPProvider(config ProviderConfig) *HTTPProvider {
	transport := &http.Transport{
		MaxIdleConns:        config.MaxIdleConns,
		MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
		IdleConnTimeout:     config.IdleConnTimeout,
		DisableCompression:  false,
		ForceAttemptHTTP2:   true,
	}

	client := &http.Client{
		Transport: transport,
		Timeout:   config.Timeout,
	}

	return &HTTPProvider{
		config: config,
		client: client,
		health: internalHealth{
			IsHealthy:             true, // start optimistic
			LastCheck:             time.Now(),
			LastSuccessfulRequest: time.Now(),
		},
		stopHealthCheck:    make(chan struct{}),
		healthCheckStopped: make(chan struct{}),
	}
}

// GetName returns the provider's configured name.
func (p *HTTPProvider) GetName() string {
	return p.config.Name
}

// GetType returns the provider's type.
func (p *HTTPProvider) GetType() string {
	return p.config.Type
}

// GetConfig returns the provider's configuration.
func (p *HTTPProvider) GetConfig() ProviderConfig {
	return p.config
}

// Cost computes cost_usd from the adapter's own price table, if any. A
// registry ModelCapability's cost fields are the preferred source; this
// is a fallback for callers driving an adapter directly.
func (p *HTTPProvider) Cost(inputTokens, outputTokens int, modelID string) float64 {
	price, ok := p.config.PricePerMille[modelID]
	if !ok {
		return 0
	}
	return (float64(inputTokens)/1000)*price.Input + (float64(outputTokens)/1000)*price.Output
}

// Health returns the cached health signal. It never performs a live probe;
// the cache is refreshed by the background checker started with
// StartHealthChecker, on the cadence set by HealthCheckInterval (default
// 60s, per spec 4.1).
func (p *HTTPProvider) Health() Health {
	p.healthMu.RLock()
	defer p.healthMu.RUnlock()

	reason := ""
	if p.health.LastError != nil {
		reason = p.health.LastError.Error()
	}

	return Health{
		Available:           p.health.IsHealthy,
		Reason:              reason,
		LastCheck:           p.health.LastCheck.UnixMilli(),
		ConsecutiveFailures: p.health.ConsecutiveFailures,
	}
}

// IsHealthy is a convenience boolean accessor for the cached health state,
// used by the background health checker.
func (p *HTTPProvider) IsHealthy() bool {
	p.healthMu.RLock()
	defer p.healthMu.RUnlock()
	return p.health.IsHealthy
}

// updateHealth updates the provider's cached health status. Called after
// each request and after each health probe.
func (p *HTTPProvider) updateHealth(success bool, err error) {
	p.healthMu.Lock()
	defer p.healthMu.Unlock()

	p.health.LastCheck = time.Now()

	if success {
		p.health.IsHealthy = true
		p.health.ConsecutiveFailures = 0
		p.health.LastError = nil
		p.health.LastSuccessfulRequest = time.Now()
		return
	}

	p.health.ConsecutiveFailures++
	p.health.LastError = err

	// Circuit-breaker threshold; independent of the Client Pool's own
	// teardown threshold, which operates on a separate failure window.
	if p.health.ConsecutiveFailures >= 3 {
		p.health.IsHealthy = false
		slog.Warn("provider marked unhealthy",
			"provider", p.config.Name,
			"consecutive_failures", p.health.ConsecutiveFailures,
			"error", err,
		)
	}
}

// recordRequest records request volume metrics.
func (p *HTTPProvider) recordRequest(success bool) {
	p.healthMu.Lock()
	defer p.healthMu.Unlock()

	p.health.TotalRequests++
	if !success {
		p.health.FailedRequests++
	}
}

// Do performs a single HTTP attempt: build the request, send it, classify
// the response. It does not retry and does not sleep — the Executor owns
// retry policy and calls Do once per attempt.
func (p *HTTPProvider) Do(ctx context.Context, method, url string, body []byte, headers map[string]string) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range headers {
		req.Header.Set(key, value)
	}
	if req.Header.Get("Content-Type") == "" && body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	slog.Debug("sending request to provider",
		"provider", p.config.Name,
		"method", method,
		"url", url,
	)

	resp, err := p.client.Do(req)
	if err != nil {
		p.recordRequest(false)

		if ctx.Err() != nil {
			timeoutErr := &TimeoutError{Provider: p.config.Name, Timeout: p.config.Timeout}
			p.updateHealth(false, timeoutErr)
			return nil, timeoutErr
		}

		netErr := &NetworkError{Provider: p.config.Name, Cause: err}
		p.updateHealth(false, netErr)
		return nil, netErr
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		p.recordRequest(true)
		p.updateHealth(true, nil)
		return resp, nil
	}

	errorBody, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	p.recordRequest(false)

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		err := &AuthError{Provider: p.config.Name, Message: string(errorBody)}
		p.updateHealth(false, err)
		return nil, err

	case http.StatusTooManyRequests:
		retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))
		return nil, &RateLimitError{
			Provider:   p.config.Name,
			RetryAfter: retryAfter,
			Message:    string(errorBody),
		}

	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return nil, &ProviderError{
			Provider:   p.config.Name,
			StatusCode: resp.StatusCode,
			Message:    string(errorBody),
		}

	default:
		err := &ProviderError{
			Provider:   p.config.Name,
			StatusCode: resp.StatusCode,
			Message:    string(errorBody),
		}
		p.updateHealth(false, err)
		return nil, err
	}
}

// DoJSONRequest performs a single JSON request and decodes the response.
func (p *HTTPProvider) DoJSONRequest(ctx context.Context, method, url string, reqBody interface{}, respBody interface{}, headers map[string]string) error {
	var bodyBytes []byte
	var err error
	if reqBody != nil {
		bodyBytes, err = json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	resp, err := p.Do(ctx, method, url, bodyBytes, headers)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	responseBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return &ParseError{Provider: p.config.Name, Cause: fmt.Errorf("failed to read response: %w", err)}
	}

	if respBody != nil && len(responseBytes) > 0 {
		if err := json.Unmarshal(responseBytes, respBody); err != nil {
			return &ParseError{
				Provider:    p.config.Name,
				RawResponse: string(responseBytes),
				Cause:       fmt.Errorf("failed to unmarshal response: %w", err),
			}
		}
	}

	return nil
}

// Close closes the HTTP client and stops the health checker.
func (p *HTTPProvider) Close() error {
	close(p.stopHealthCheck)

	select {
	case <-p.healthCheckStopped:
		slog.Debug("health checker stopped", "provider", p.config.Name)
	case <-time.After(5 * time.Second):
		slog.Warn("health checker did not stop in time", "provider", p.config.Name)
	}

	p.client.CloseIdleConnections()
	slog.Info("provider closed", "provider", p.config.Name)
	return nil
}

// parseRetryAfter parses the Retry-After header value, supporting both
// delay-seconds and HTTP-date formats.
func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}

	var seconds int
	if _, err := fmt.Sscanf(header, "%d", &seconds); err == nil {
		return time.Duration(seconds) * time.Second
	}

	if t, err := http.ParseTime(header); err == nil {
		return time.Until(t)
	}

	return 0
}
