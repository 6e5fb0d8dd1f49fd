package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/Denosadchiy/travel-buddy-ai/internal/types"
)

// IsMalformed reports whether the error is a malformed-output failure, as
// opposed to a transport failure. Callers use this to pick the
// stricter-instruction retry path.
func IsMalformed(err error) bool {
	return types.CodeOf(err) == types.LLM_MALFORMED_OUTPUT
}

// TranslateError maps provider and context errors onto the gateway error
// taxonomy. Errors that already carry a TripError code pass through.
func TranslateError(provider string, err error) error {
	if err == nil {
		return nil
	}
	var te *types.TripError
	if errors.As(err, &te) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return types.WrapRetryableError(types.LLM_TIMEOUT,
			"provider "+provider+" timed out", err)
	}
	if errors.Is(err, context.Canceled) {
		return types.WrapError(types.PLAN_CANCELLED,
			"provider call cancelled", err)
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "unauthorized") || strings.Contains(msg, "api key") ||
		strings.Contains(msg, "authentication"):
		return types.WrapError(types.LLM_UNAUTHORIZED,
			"provider "+provider+" rejected credentials", err)
	case strings.Contains(msg, "rate limit") || strings.Contains(msg, "too many requests"):
		return types.WrapRetryableError(types.LLM_RATE_LIMITED,
			"provider "+provider+" rate limited", err)
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline"):
		return types.WrapRetryableError(types.LLM_TIMEOUT,
			"provider "+provider+" timed out", err)
	default:
		return types.WrapRetryableError(types.LLM_TRANSPORT_FAILED,
			"provider "+provider+" request failed", err)
	}
}
