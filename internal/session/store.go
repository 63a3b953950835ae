// Package session keeps wizard state between HTTP requests.
package session

import (
	"context"
	"errors"
	"meet-and-greet/internal/wizard"
)

var (
	ErrNotFound = errors.New("wizard session not found")
	ErrLocked   = errors.New("wizard session is busy")
)

// Store persists wizard states by session id. Lock guards a session while it
// is being submitted; the returned func releases it.
type Store interface {
	Create(ctx context.Context, state wizard.State) (string, error)
	Load(ctx context.Context, id string) (wizard.State, error)
	Save(ctx context.Context, id string, state wizard.State) error
	Lock(ctx context.Context, id string) (func(), error)
}
