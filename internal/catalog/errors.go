package catalog

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrMissingID is returned when a create call succeeds without an id.
var ErrMissingID = errors.New("catalog_response_missing_id")

// APIError is returned for any non-2xx catalog response.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("catalog responded %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("catalog responded %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a 404 from the catalog.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}
