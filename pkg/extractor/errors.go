package extractor

import (
	"errors"
	"fmt"
)

// ErrMissingTitle is returned when a detail page has no title heading
var ErrMissingTitle = errors.New("title not found in HTML")

// FieldError reports a mandatory field that could not be extracted
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
