package session

import (
	"context"
	"errors"
)

// ErrStoreClosed is returned when operations are attempted on a closed store.
var ErrStoreClosed = errors.New("session: store is closed")

// Store persists credentials by session ID.
// Implementations must be safe for concurrent use.
type Store interface {
	// Save stores cred under id until cred.ExpiresAt.
	Save(ctx context.Context, id string, cred Credential) error

	// Load returns the credential for id.
	// Returns (nil, nil) if there is none or it has expired.
	Load(ctx context.Context, id string) (*Credential, error)

	// Delete removes the credential for id. Missing IDs are not an error.
	Delete(ctx context.Context, id string) error

	// Close releases resources held by the store.
	Close() error
}
