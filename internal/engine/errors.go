package engine

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a validation failure.
type ErrorKind string

const (
	KindMissingField       ErrorKind = "MissingField"
	KindInvalidNumber      ErrorKind = "InvalidNumber"
	KindNonIntegerQuantity ErrorKind = "NonIntegerQuantity"
	KindInvalidExitPrice   ErrorKind = "InvalidExitPrice"
	KindExitBeforeEntry    ErrorKind = "ExitBeforeEntry"
)

// ValidationError is a synchronous, caller-facing validation failure. It
// aborts the mutation it gates; nothing is partially written and the caller
// keeps its edit buffer so the user can correct the input.
type ValidationError struct {
	Kind  ErrorKind
	Field string
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case KindMissingField:
		return fmt.Sprintf("%s is required", e.Field)
	case KindInvalidNumber:
		return fmt.Sprintf("%s must be a valid number", e.Field)
	case KindNonIntegerQuantity:
		return "quantity must be a whole number"
	case KindInvalidExitPrice:
		return "exit price must be a valid positive number"
	case KindExitBeforeEntry:
		return "exit date must be after entry date"
	}
	return string(e.Kind)
}

// IsKind reports whether err is a ValidationError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var ve *ValidationError
	return errors.As(err, &ve) && ve.Kind == kind
}

func missingField(field string) *ValidationError {
	return &ValidationError{Kind: KindMissingField, Field: field}
}

func invalidNumber(field string) *ValidationError {
	return &ValidationError{Kind: KindInvalidNumber, Field: field}
}
