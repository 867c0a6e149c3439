package executor

import (
	"context"
	"errors"

	"github.com/mercator-hq/orison/pkg/providers"
)

// classify maps a raw provider error onto the Executor's error
// taxonomy (spec §7).
func classify(modelID string, err error) *Error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.Canceled) {
		return &Error{Kind: KindCancelled, Message: err.Error(), ModelID: modelID, Cause: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Message: err.Error(), ModelID: modelID, Cause: err}
	}

	var rateLimit *providers.RateLimitError
	if errors.As(err, &rateLimit) {
		return &Error{Kind: KindRateLimited, Message: rateLimit.Error(), ModelID: modelID, Cause: err}
	}

	var timeout *providers.TimeoutError
	if errors.As(err, &timeout) {
		return &Error{Kind: KindTimeout, Message: timeout.Error(), ModelID: modelID, Cause: err}
	}

	var network *providers.NetworkError
	if errors.As(err, &network) {
		return &Error{Kind: KindNetworkTransient, Message: network.Error(), ModelID: modelID, Cause: err}
	}

	var auth *providers.AuthError
	if errors.As(err, &auth) {
		return &Error{Kind: KindProviderUnavailable, Message: auth.Error(), ModelID: modelID, Cause: err}
	}

	var content *providers.ContentPolicyError
	if errors.As(err, &content) {
		return &Error{Kind: KindContentPolicy, Message: content.Error(), ModelID: modelID, Cause: err}
	}

	var validation *providers.ValidationError
	if errors.As(err, &validation) {
		return &Error{Kind: KindValidation, Message: validation.Error(), ModelID: modelID, Cause: err}
	}

	var config *providers.ConfigError
	if errors.As(err, &config) {
		return &Error{Kind: KindConfiguration, Message: config.Error(), ModelID: modelID, Cause: err}
	}

	var pe *providers.ProviderError
	if errors.As(err, &pe) {
		if pe.StatusCode >= 500 || pe.StatusCode == 0 {
			return &Error{Kind: KindNetworkTransient, Message: pe.Error(), ModelID: modelID, Cause: err}
		}
		return &Error{Kind: KindProviderUnavailable, Message: pe.Error(), ModelID: modelID, Cause: err}
	}

	return &Error{Kind: KindNetworkTransient, Message: err.Error(), ModelID: modelID, Cause: err}
}
