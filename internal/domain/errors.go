package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrCartNotFound             = errors.New("cart not found")
	ErrCartAlreadyExists        = errors.New("cart already exists")
	ErrInvalidCart              = errors.New("invalid cart")
	ErrInvalidAddress           = errors.New("invalid address")
	ErrInvalidItem              = errors.New("invalid item")
	ErrEmptyCart                = errors.New("cart is empty")
	ErrConcurrentUpdateConflict = errors.New("concurrent update conflict")
	ErrStoreUnavailable         = errors.New("store unavailable")
)

type FieldViolation struct {
	Field  string
	Reason string
}

func (v FieldViolation) String() string {
	return v.Field + ": " + v.Reason
}

// AddressError carries every violated address field, not just the first one.
type AddressError struct {
	Violations []FieldViolation
}

func (e *AddressError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.String())
	}
	return fmt.Sprintf("%s: %s", ErrInvalidAddress, strings.Join(parts, "; "))
}

func (e *AddressError) Is(target error) bool {
	return target == ErrInvalidAddress
}
