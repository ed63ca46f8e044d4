package openrouter

import (
	"errors"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kirillkom/outlet-assistant/internal/core/domain"
	"github.com/kirillkom/outlet-assistant/internal/infrastructure/resilience"
)

func classifyOpenRouterError(err error) resilience.ErrorClassification {
	if class, ok := resilience.ClassifyCommon(err); ok {
		return class
	}
	if status := httpStatus(err); status != 0 {
		if resilience.RetryableStatus(status) {
			return resilience.Transient
		}
		return resilience.Ignored
	}
	return resilience.Permanent
}

// wrapTemporaryIfNeeded also maps rejected credentials to ErrUnauthorized.
func wrapTemporaryIfNeeded(operation string, err error) error {
	if status := httpStatus(err); status == http.StatusUnauthorized || status == http.StatusForbidden {
		return domain.WrapError(domain.ErrUnauthorized, operation, err)
	}
	return resilience.MarkTemporary(operation, err, classifyOpenRouterError)
}

func httpStatus(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}
