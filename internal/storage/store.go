// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/shaun-stanley/fairsplit/internal/models"
)

// ErrNotFound is returned when a requested user or group does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the persistence interface for group aggregates and users.
// The engine never touches storage directly; handlers load a full aggregate,
// run calculations or commands over it, and save the result back. The store
// must serialize writes per group, since the engine performs no locking.
type Store interface {
	// CreateUser persists a new user account.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail retrieves a user by email address.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// CreateGroup persists a new group. An empty ID is populated.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup loads a full group aggregate: members in canonical order,
	// expenses with their shares and items, and settlements.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// ListGroups returns all groups without their child collections.
	ListGroups(ctx context.Context) ([]*models.Group, error)

	// SaveGroup replaces the stored aggregate with the given one in a single
	// transaction. Used after any mutation, including merge and undo.
	SaveGroup(ctx context.Context, group *models.Group) error

	// DeleteGroup removes a group and everything it owns.
	DeleteGroup(ctx context.Context, groupID string) error

	// Close releases any resources held by the store.
	Close() error
}
