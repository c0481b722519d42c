package store

import (
	"context"

	"github.com/nhle/todoclient/internal/session"
)

// Preferences persists small non-secret client settings such as the
// remembered login email.
type Preferences interface {
	GetPreference(ctx context.Context, key string) (string, error)
	SetPreference(ctx context.Context, key, value string) error
	DeletePreference(ctx context.Context, key string) error
}

var (
	_ Preferences   = (*SQLiteStore)(nil)
	_ session.Store = (*SQLiteStore)(nil)
)
