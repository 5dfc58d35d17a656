package engine

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/everstacklabs/ereuna/internal/provider"
)

// Classification is the closed failure taxonomy the retry policy is
// written against. Provider-native errors never cross the engine boundary.
type Classification int

const (
	ClassUnknown Classification = iota
	ClassTimeout
	ClassRateLimit
	ClassAuth
	ClassPermission
	ClassEmpty
)

func (c Classification) String() string {
	switch c {
	case ClassTimeout:
		return "timeout"
	case ClassRateLimit:
		return "rate_limit"
	case ClassAuth:
		return "auth"
	case ClassPermission:
		return "permission"
	case ClassEmpty:
		return "empty_response"
	default:
		return "unknown"
	}
}

// Retryable reports whether the classification permits another attempt.
func (c Classification) Retryable() bool {
	return c != ClassAuth && c != ClassPermission
}

// Classify maps a provider error into the failure taxonomy. Structured
// status codes are checked first; message inspection is the fallback for
// providers that only surface wording.
func Classify(err error) Classification {
	if err == nil {
		return ClassUnknown
	}

	if errors.Is(err, provider.ErrEmptyResponse) {
		return ClassEmpty
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ClassTimeout
	}

	var apiErr *provider.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusUnauthorized:
			return ClassAuth
		case http.StatusForbidden:
			return ClassPermission
		case http.StatusTooManyRequests:
			return ClassRateLimit
		case http.StatusRequestTimeout, http.StatusGatewayTimeout:
			return ClassTimeout
		}
		return classifyMessage(apiErr.Message)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ClassTimeout
	}

	return classifyMessage(err.Error())
}

func classifyMessage(msg string) Classification {
	msg = strings.ToLower(msg)
	switch {
	case strings.Contains(msg, "quota") || strings.Contains(msg, "rate"):
		return ClassRateLimit
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline"):
		return ClassTimeout
	case strings.Contains(msg, "api key") || strings.Contains(msg, "authentication") || strings.Contains(msg, "unauthorized"):
		return ClassAuth
	case strings.Contains(msg, "permission") || strings.Contains(msg, "forbidden"):
		return ClassPermission
	default:
		return ClassUnknown
	}
}
