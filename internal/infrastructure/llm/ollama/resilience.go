package ollama

import (
	"github.com/kirillkom/outlet-assistant/internal/infrastructure/resilience"
)

// classifyOllamaError retries throttling and server failures. A model that is
// still loading answers 503, so that case is retried too.
func classifyOllamaError(err error) resilience.ErrorClassification {
	if class, ok := resilience.ClassifyCommon(err); ok {
		return class
	}
	if status := resilience.StatusCode(err); status != 0 {
		if resilience.RetryableStatus(status) {
			return resilience.Transient
		}
		return resilience.Ignored
	}
	return resilience.Permanent
}
