package homework

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation matches every response shape error below.
	ErrValidation = errors.New("invalid api response")

	ErrMissingHomeworks = validationError("response has no homeworks data")
	ErrHomeworksNotList = validationError("homeworks is not a list")
	ErrMalformedRecord  = validationError("malformed homework record")

	ErrUnknownStatus = errors.New("unknown homework status")
)

type shapeError struct{ msg string }

func validationError(msg string) error { return &shapeError{msg: msg} }

func (e *shapeError) Error() string { return e.msg }

func (e *shapeError) Is(target error) bool { return target == ErrValidation }

// UnknownStatusError reports a status missing from the catalog.
type UnknownStatusError struct {
	Name   string
	Status Status
}

func (e *UnknownStatusError) Error() string {
	return fmt.Sprintf("%s %q for homework %q", ErrUnknownStatus, string(e.Status), e.Name)
}

func (e *UnknownStatusError) Is(target error) bool { return target == ErrUnknownStatus }
