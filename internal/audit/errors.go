package audit

import "errors"

// ErrInvalidEntry is returned when an entry lacks an action or entity type.
var ErrInvalidEntry = errors.New("audit: entry requires action and entity type")
