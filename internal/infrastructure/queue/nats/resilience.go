package nats

import (
	"errors"

	"github.com/nats-io/nats.go"

	"github.com/kirillkom/outlet-assistant/internal/infrastructure/resilience"
)

const publishOperation = "nats.publish"

func classifyNATSError(err error) resilience.ErrorClassification {
	if class, ok := resilience.ClassifyCommon(err); ok {
		return class
	}
	if errors.Is(err, nats.ErrNoServers) ||
		errors.Is(err, nats.ErrTimeout) ||
		errors.Is(err, nats.ErrConnectionClosed) ||
		errors.Is(err, nats.ErrDisconnected) ||
		errors.Is(err, nats.ErrConnectionReconnecting) {
		return resilience.Transient
	}
	// Payload and subject errors will not heal on retry.
	if errors.Is(err, nats.ErrMaxPayload) || errors.Is(err, nats.ErrBadSubject) {
		return resilience.Ignored
	}
	return resilience.Permanent
}

func wrapTemporaryIfNeeded(err error) error {
	return resilience.MarkTemporary(publishOperation, err, classifyNATSError)
}
