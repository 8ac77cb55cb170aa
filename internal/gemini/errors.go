// Copyright (c) 2025 SM Gaming Studio
// SPDX-License-Identifier: AGPL-3.0-or-later

package gemini

import (
	"context"
	"errors"
	"strings"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// Kind is the coarse classification surfaced to the UI layer.
type Kind int

const (
	// KindOther is an unclassified failure.
	KindOther Kind = iota

	// KindAuth is a missing or invalid credential.
	KindAuth

	// KindNetwork is a connectivity or service-side failure.
	KindNetwork

	// KindEmptyResponse is a stream that completed with no text and was
	// not cancelled. Treated like a transient failure.
	KindEmptyResponse
)

// String returns the display name of the kind.
func (k Kind) String() string {
	switch k {
	case KindAuth:
		return "AUTH"
	case KindNetwork:
		return "NETWORK"
	case KindEmptyResponse:
		return "EMPTY_RESPONSE"
	default:
		return "OTHER"
	}
}

// ServiceError is an error from a generative service call.
type ServiceError struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *ServiceError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Cause
}

// Sentinel errors for easy checking.
var (
	ErrMissingAPIKey = &ServiceError{Kind: KindAuth, Message: "Gemini API key is not configured"}
	ErrEmptyResponse = &ServiceError{Kind: KindEmptyResponse, Message: "the service returned an empty response"}
)

// =============================================================================
// CLASSIFICATION
// =============================================================================

// Classify returns the coarse kind for an error. Structured ServiceErrors
// report their own kind; anything else falls back to substring matching of
// the upstream message.
func Classify(err error) Kind {
	if err == nil {
		return KindOther
	}

	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return KindNetwork
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "api key") ||
		strings.Contains(msg, "api_key") ||
		strings.Contains(msg, "unauthenticated") ||
		strings.Contains(msg, "permission denied") ||
		strings.Contains(msg, "401") ||
		strings.Contains(msg, "403"):
		return KindAuth
	case strings.Contains(msg, "connection") ||
		strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "unavailable") ||
		strings.Contains(msg, "deadline") ||
		strings.Contains(msg, "no such host") ||
		strings.Contains(msg, "503") ||
		strings.Contains(msg, "429"):
		return KindNetwork
	default:
		return KindOther
	}
}

// wrap builds a ServiceError around an upstream error, classifying it.
func wrap(message string, cause error) *ServiceError {
	return &ServiceError{Kind: Classify(cause), Message: message, Cause: cause}
}

// IsAuth reports whether the error is an authentication failure.
func IsAuth(err error) bool {
	return Classify(err) == KindAuth
}

// IsEmptyResponse reports whether the error is an empty-response failure.
func IsEmptyResponse(err error) bool {
	var svcErr *ServiceError
	return errors.As(err, &svcErr) && svcErr.Kind == KindEmptyResponse
}
