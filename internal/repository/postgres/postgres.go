package postgres

import "github.com/medtrack/medtrack-api/internal/repository"

// ErrNotFound is returned when a query scoped by (id, owner) matches no
// rows. Callers map it to the user-visible not-found error.
var ErrNotFound = repository.ErrNotFound

// ErrDuplicateSlot surfaces a unique violation on the reminder slot index.
var ErrDuplicateSlot = repository.ErrDuplicateSlot
