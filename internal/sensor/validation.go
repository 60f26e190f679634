package sensor

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	maxNameLength  = 100
	maxFieldLength = 255
)

// ValidateInput checks create and update input. Name is required and
// bounded; the other attributes are free text with a length cap.
func ValidateInput(in Input) error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidSensor)
	}
	if utf8.RuneCountInString(in.Name) > maxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidSensor, maxNameLength)
	}

	for _, f := range []struct{ name, value string }{
		{"ip", in.IP},
		{"location", in.Location},
		{"protocol", in.Protocol},
		{"model", in.Model},
	} {
		if utf8.RuneCountInString(f.value) > maxFieldLength {
			return fmt.Errorf("%w: %s exceeds %d characters", ErrInvalidSensor, f.name, maxFieldLength)
		}
	}
	return nil
}
