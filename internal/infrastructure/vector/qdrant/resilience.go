package qdrant

import (
	"net/http"

	"github.com/kirillkom/outlet-assistant/internal/infrastructure/resilience"
)

// classifyQdrantError retries overload and gateway failures. A 500 from Qdrant
// is usually a bad request body, so it trips the breaker without a retry.
func classifyQdrantError(err error) resilience.ErrorClassification {
	if class, ok := resilience.ClassifyCommon(err); ok {
		return class
	}
	status := resilience.StatusCode(err)
	switch {
	case status == 0:
		return resilience.Permanent
	case status == http.StatusInternalServerError:
		return resilience.Permanent
	case resilience.RetryableStatus(status):
		return resilience.Transient
	default:
		return resilience.Ignored
	}
}
