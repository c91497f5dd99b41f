package forms

import (
	"sort"
	"strings"

	"github.com/jrsteele09/imvestor-client/internal/errors"
)

// FieldErrors maps a form field (its JSON name) to the first problem found with it
type FieldErrors map[string]string

// Add records msg for field unless the field already has an error
func (fe FieldErrors) Add(field, msg string) {
	if _, exists := fe[field]; !exists {
		fe[field] = msg
	}
}

// Err returns nil when no field failed
func (fe FieldErrors) Err() error {
	if len(fe) == 0 {
		return nil
	}
	return fe
}

func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for field := range fe {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+fe[field])
	}
	return errors.ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (fe FieldErrors) Is(target error) bool {
	return target == errors.ErrValidation
}
