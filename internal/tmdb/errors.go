package tmdb

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mmcdole/movzen/internal/domain"
)

// statusResponse is the body TMDB returns with errors and from /authentication
type statusResponse struct {
	Success       bool   `json:"success"`
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
}

// APIError is a non-2xx response from the API
type APIError struct {
	StatusCode    int // HTTP status
	Code          int // TMDB status_code, 0 when absent
	StatusMessage string
}

func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}
	var parsed statusResponse
	if err := json.Unmarshal(body, &parsed); err == nil {
		apiErr.Code = parsed.StatusCode
		apiErr.StatusMessage = parsed.StatusMessage
	}
	if apiErr.StatusMessage == "" {
		apiErr.StatusMessage = http.StatusText(status)
	}
	return apiErr
}

func (e *APIError) Error() string {
	return fmt.Sprintf("tmdb: %d %s", e.StatusCode, e.StatusMessage)
}

// Is lets callers match the domain sentinels with errors.Is
func (e *APIError) Is(target error) bool {
	switch target {
	case domain.ErrAuthFailed:
		return e.StatusCode == http.StatusUnauthorized
	case domain.ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	default:
		return false
	}
}
