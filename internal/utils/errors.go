package utils

import "fmt"

// OpError wraps an operation name, a human-facing detail, and the
// underlying error so handlers can log one consistent shape.
type OpError struct {
	Op     string
	Detail string
	Err    error
}

func (e *OpError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Detail)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Detail, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// WrapOp constructs an OpError.
func WrapOp(op, detail string, err error) error {
	return &OpError{Op: op, Detail: detail, Err: err}
}
