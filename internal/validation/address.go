package validation

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/nikolayk812/cartservice/internal/domain"
)

const maxFieldLength = 256

type Result struct {
	Violations []domain.FieldViolation
}

func (r Result) Valid() bool {
	return len(r.Violations) == 0
}

// Err returns nil for a valid result, otherwise a *domain.AddressError.
func (r Result) Err() error {
	if r.Valid() {
		return nil
	}
	return &domain.AddressError{Violations: r.Violations}
}

type AddressValidator struct{}

func NewAddressValidator() AddressValidator {
	return AddressValidator{}
}

func (AddressValidator) Validate(address domain.Address) Result {
	var result Result

	fields := []struct {
		name  string
		value string
	}{
		{"country", address.Country},
		{"city", address.City},
		{"street", address.Street},
	}

	for _, f := range fields {
		if reason, ok := checkField(f.value); !ok {
			result.Violations = append(result.Violations, domain.FieldViolation{
				Field:  f.name,
				Reason: reason,
			})
		}
	}

	return result
}

func checkField(value string) (string, bool) {
	if strings.TrimSpace(value) == "" {
		return "is empty", false
	}
	if !utf8.ValidString(value) {
		return "is not valid UTF-8", false
	}
	if strings.IndexFunc(value, unicode.IsControl) >= 0 {
		return "contains control characters", false
	}
	if utf8.RuneCountInString(value) > maxFieldLength {
		return "is too long", false
	}
	return "", true
}
