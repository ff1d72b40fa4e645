package user

import (
	"fmt"

	"github.com/google/uuid"

	"alumnet/pkg/platform/sentinel"
)

// Error Contract:
// All store methods follow this pattern:
// - Return an error wrapping sentinel.ErrNotFound when the entity does not exist
// - Return one of the Duplicate errors below when a unique index rejects a write
// - Return wrapped errors with context for infrastructure failures
//
// Uniqueness is enforced by the storage layer (unique indexes, single-mutex
// maps), never by check-then-insert in application code.
var (
	ErrDuplicateEmail    = fmt.Errorf("email already in use: %w", sentinel.ErrConflict)
	ErrDuplicateUsername = fmt.Errorf("username already in use: %w", sentinel.ErrConflict)
	ErrDuplicateSubject  = fmt.Errorf("provider subject already linked: %w", sentinel.ErrConflict)
)

// ListFilter narrows admin user listings.
type ListFilter struct {
	CollegeID   *uuid.UUID
	PendingOnly bool
}
