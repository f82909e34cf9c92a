package compose

import (
	"errors"
	"fmt"
)

// ErrCoercion matches every *FieldCoercionError.
var ErrCoercion = errors.New("field coercion failed")

// FieldCoercionError reports a strictly typed field whose value could not be
// converted. It is fatal for the whole document.
type FieldCoercionError struct {
	Service string
	Field   string // dotted path, e.g. "deploy.replicas"
	Value   any
	Err     error
}

func (e *FieldCoercionError) Error() string {
	return fmt.Sprintf("service %s: %s: invalid value %v: %v", e.Service, e.Field, e.Value, e.Err)
}

func (e *FieldCoercionError) Unwrap() error {
	return e.Err
}

func (e *FieldCoercionError) Is(target error) bool {
	return target == ErrCoercion
}
