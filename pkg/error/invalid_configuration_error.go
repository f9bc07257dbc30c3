package error

import "net/http"

// InvalidConfigurationError covers bad max-age values and unknown cache-type
// selectors. Surfaced immediately, never retried.
type InvalidConfigurationError string

func (err InvalidConfigurationError) Error() string {
	return string(err)
}

func (err InvalidConfigurationError) ErrCode() string {
	return "INVALID_CONFIGURATION"
}

func (err InvalidConfigurationError) StatusCode() int {
	return http.StatusBadRequest
}
