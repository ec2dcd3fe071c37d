package upstream

import (
	"errors"
	"fmt"
)

// NetworkError marks transport-level failures (connection refused, timeout)
// as distinct from upstream business rejections.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

func IsNetworkError(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}
