// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ai

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyMessages indicates Complete was invoked with no messages.
	ErrEmptyMessages = errors.New("messages cannot be empty")

	// ErrImageNotFound indicates an image reference could not be resolved.
	ErrImageNotFound = errors.New("image not found")
)

// GatewayErrorKind classifies a model gateway failure.
type GatewayErrorKind int

const (
	// GatewayUnconfigured means credentials are missing or rejected.
	// Fatal for an entire pipeline run; no stage can proceed.
	GatewayUnconfigured GatewayErrorKind = iota + 1

	// GatewayTransient means the upstream returned an error or the call
	// timed out. Recoverable per stage via heuristic fallback.
	GatewayTransient

	// GatewayMalformed means the upstream responded with an empty or
	// unusable body. Recoverable per stage via heuristic fallback.
	GatewayMalformed
)

// String returns a short label for the kind.
func (k GatewayErrorKind) String() string {
	switch k {
	case GatewayUnconfigured:
		return "unconfigured"
	case GatewayTransient:
		return "transient"
	case GatewayMalformed:
		return "malformed"
	}
	return "unknown"
}

// GatewayError reports a model gateway failure with its classification.
type GatewayError struct {
	Kind GatewayErrorKind
	Msg  string
	Err  error
}

func (e *GatewayError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("gateway %s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("gateway %s: %s", e.Kind, e.Msg)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// NewGatewayError creates a classified gateway error wrapping an optional cause.
func NewGatewayError(kind GatewayErrorKind, msg string, err error) *GatewayError {
	return &GatewayError{Kind: kind, Msg: msg, Err: err}
}

// IsUnconfigured reports whether err is a GatewayUnconfigured gateway error.
func IsUnconfigured(err error) bool {
	return gatewayKind(err) == GatewayUnconfigured
}

// IsTransient reports whether err is a GatewayTransient gateway error.
func IsTransient(err error) bool {
	return gatewayKind(err) == GatewayTransient
}

// IsMalformed reports whether err is a GatewayMalformed gateway error.
func IsMalformed(err error) bool {
	return gatewayKind(err) == GatewayMalformed
}

func gatewayKind(err error) GatewayErrorKind {
	var ge *GatewayError
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return 0
}
