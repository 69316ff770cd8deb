package relay

import (
	"errors"
	"fmt"
)

// ErrBadToken rejects a request whose path token does not match the
// configured secret. Mapped to 403; nothing else is processed.
var ErrBadToken = errors.New("invalid webhook token")

// PayloadError marks a malformed or incomplete alert. Mapped to 400; the raw
// body is echoed back for diagnosis and the relay never retries it.
type PayloadError struct {
	Reason string
	Body   string
}

func (e *PayloadError) Error() string {
	return fmt.Sprintf("bad payload: %s", e.Reason)
}

// PriceUnavailableError marks a ticker without a usable price. Mapped to 500,
// terminal for the request.
type PriceUnavailableError struct {
	Symbol string
}

func (e *PriceUnavailableError) Error() string {
	return fmt.Sprintf("no usable price for %s", e.Symbol)
}

// ExecutionError wraps a failed price lookup or order submission. Mapped to
// 500 with the underlying error surfaced for operator visibility.
type ExecutionError struct {
	Err error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("order execution failed: %v", e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}
