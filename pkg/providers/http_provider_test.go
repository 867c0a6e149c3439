package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestHTTPProvider_SingleAttemptOn5xx(t *testing.T) {
	attemptCount := int32(0)

	// Server always fails; Do must not retry internally.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attemptCount, 1)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": "internal server error"}`))
	}))
	defer server.Close()

	config := ProviderConfig{
		Name:    "test-provider",
		Type:    "openai",
		BaseURL: server.URL,
		Timeout: 5 * time.Second,
	}
	provider := NewHTTPProvider(config)

	ctx := context.Background()
	resp, err := provider.Do(ctx, "POST", server.URL+"/test", []byte(`{"test": true}`), nil)
	if err == nil {
		t.Error("expected error for 500 response")
	}
	if resp != nil {
		resp.Body.Close()
	}

	finalCount := atomic.LoadInt32(&attemptCount)
	if finalCount != 1 {
		t.Errorf("expected exactly 1 attempt (no adapter-level retry), got %d", finalCount)
	}

	var providerErr *ProviderError
	if !errors.As(err, &providerErr) {
		t.Errorf("expected ProviderError, got %T: %v", err, err)
	}
}

func TestHTTPProvider_NoRetryOn4xx(t *testing.T) {
	attemptCount := int32(0)

	tests := []struct {
		name       string
		statusCode int
		errorType  string
	}{
		{
			name:       "400 bad request",
			statusCode: http.StatusBadRequest,
			errorType:  "ProviderError",
		},
		{
			name:       "401 unauthorized",
			statusCode: http.StatusUnauthorized,
			errorType:  "AuthError",
		},
		{
			name:       "403 forbidden",
			statusCode: http.StatusForbidden,
			errorType:  "AuthError",
		},
		{
			name:       "429 rate limit",
			statusCode: http.StatusTooManyRequests,
			errorType:  "RateLimitError",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			atomic.StoreInt32(&attemptCount, 0)

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&attemptCount, 1)
				w.WriteHeader(tt.statusCode)
				_, _ = w.Write([]byte(`{"error": "client error"}`))
			}))
			defer server.Close()

			config := ProviderConfig{
				Name:    "test-provider",
				Type:    "openai",
				BaseURL: server.URL,
				Timeout: 5 * time.Second,
			}
			provider := NewHTTPProvider(config)

			ctx := context.Background()
			resp, err := provider.Do(ctx, "POST", server.URL+"/test", []byte(`{"test": true}`), nil)

			if err == nil {
				t.Errorf("expected error for %d status, got nil", tt.statusCode)
			}
			if resp != nil {
				resp.Body.Close()
			}

			finalCount := atomic.LoadInt32(&attemptCount)
			if finalCount != 1 {
				t.Errorf("expected 1 attempt, got %d", finalCount)
			}

			switch tt.errorType {
			case "AuthError":
				var authErr *AuthError
				if !errors.As(err, &authErr) {
					t.Errorf("expected AuthError, got %T: %v", err, err)
				}
			case "RateLimitError":
				var rateLimitErr *RateLimitError
				if !errors.As(err, &rateLimitErr) {
					t.Errorf("expected RateLimitError, got %T: %v", err, err)
				}
			case "ProviderError":
				var providerErr *ProviderError
				if !errors.As(err, &providerErr) {
					t.Errorf("expected ProviderError, got %T: %v", err, err)
				}
			}
		})
	}
}

func TestHTTPProvider_ConsecutiveFailuresTripCircuit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": "internal server error"}`))
	}))
	defer server.Close()

	config := ProviderConfig{
		Name:    "test-provider",
		Type:    "openai",
		BaseURL: server.URL,
		Timeout: 5 * time.Second,
	}
	provider := NewHTTPProvider(config)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		resp, _ := provider.Do(ctx, "POST", server.URL+"/test", []byte(`{"test": true}`), nil)
		if resp != nil {
			resp.Body.Close()
		}
	}

	health := provider.Health()
	if health.ConsecutiveFailures < 3 {
		t.Errorf("expected at least 3 consecutive failures, got %d", health.ConsecutiveFailures)
	}
	if provider.IsHealthy() {
		t.Error("expected circuit to be tripped after 3 consecutive failures")
	}
}

func TestHTTPProvider_TimeoutReturnsTimeoutError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(3 * time.Second)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	config := ProviderConfig{
		Name:    "test-provider",
		Type:    "openai",
		BaseURL: server.URL,
		Timeout: 100 * time.Millisecond,
	}
	provider := NewHTTPProvider(config)

	ctx := context.Background()
	resp, err := provider.Do(ctx, "POST", server.URL+"/test", []byte(`{"test": true}`), nil)
	if err == nil {
		t.Error("expected timeout error, got nil")
		if resp != nil {
			resp.Body.Close()
		}
	}

	var timeoutErr *TimeoutError
	if !errors.As(err, &timeoutErr) {
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("expected TimeoutError or DeadlineExceeded, got %T: %v", err, err)
		}
	}
}

func TestHTTPProvider_ContextCancellationStopsRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	config := ProviderConfig{
		Name:    "test-provider",
		Type:    "openai",
		BaseURL: server.URL,
		Timeout: 10 * time.Second,
	}
	provider := NewHTTPProvider(config)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	resp, err := provider.Do(ctx, "POST", server.URL+"/test", []byte(`{"test": true}`), nil)
	if err == nil {
		t.Error("expected error from context cancellation, got nil")
		if resp != nil {
			resp.Body.Close()
		}
	}
}

// TestHTTPProvider_ConnectionReuse verifies that HTTP connections are reused.
func TestHTTPProvider_ConnectionReuse(t *testing.T) {
	connectionCount := int32(0)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&connectionCount, 1)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"message": "success"}`))
	}))
	defer server.Close()

	config := ProviderConfig{
		Name:                "test-provider",
		Type:                "openai",
		BaseURL:             server.URL,
		Timeout:             5 * time.Second,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 5,
		IdleConnTimeout:     90 * time.Second,
	}
	provider := NewHTTPProvider(config)

	ctx := context.Background()
	numRequests := 5
	for i := 0; i < numRequests; i++ {
		resp, err := provider.Do(ctx, "GET", server.URL+"/test", nil, nil)
		if err != nil {
			t.Fatalf("request %d failed: %v", i, err)
		}
		_, _ = io.ReadAll(resp.Body)
		resp.Body.Close()
	}

	count := atomic.LoadInt32(&connectionCount)
	if count != int32(numRequests) {
		t.Errorf("expected %d requests, got %d", numRequests, count)
	}
}

// TestHTTPProvider_PoolLimitEnforcement verifies connection pool limits.
func TestHTTPProvider_PoolLimitEnforcement(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"message": "success"}`))
	}))
	defer server.Close()

	config := ProviderConfig{
		Name:                "test-provider",
		Type:                "openai",
		BaseURL:             server.URL,
		Timeout:             5 * time.Second,
		MaxIdleConns:        2,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     1 * time.Second,
	}
	provider := NewHTTPProvider(config)

	ctx := context.Background()
	numRequests := 10
	errCh := make(chan error, numRequests)
	start := time.Now()

	for i := 0; i < numRequests; i++ {
		go func(id int) {
			resp, err := provider.Do(ctx, "GET", fmt.Sprintf("%s/test?id=%d", server.URL, id), nil, nil)
			if err != nil {
				errCh <- err
				return
			}
			_, _ = io.ReadAll(resp.Body)
			resp.Body.Close()
			errCh <- nil
		}(i)
	}

	for i := 0; i < numRequests; i++ {
		if err := <-errCh; err != nil {
			t.Errorf("request failed: %v", err)
		}
	}

	duration := time.Since(start)
	if duration > 5*time.Second {
		t.Errorf("requests took too long: %s (connection pooling may not be working)", duration)
	}

	if !provider.IsHealthy() {
		t.Error("expected provider to be healthy after concurrent requests")
	}
}
