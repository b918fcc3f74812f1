package distill

import "errors"

var (
	// ErrGatewayRequired is returned when a Pipeline is constructed
	// without a model gateway.
	ErrGatewayRequired = errors.New("model gateway is required")

	// errFastPathMiss signals internally that the fast path produced no
	// usable card and the staged path should take over.
	errFastPathMiss = errors.New("fast path produced no usable card")
)
