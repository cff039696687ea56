package store

import (
	"context"
	"errors"
	"strings"

	"d23/internal/types"
)

const (
	RepositoryBackendFile  = "file"
	RepositoryBackendBbolt = "bbolt"
)

// Repository persists the client state that must survive restarts: the
// anonymous session identity and the ring of past anonymous sessions.
type Repository interface {
	ClientState() ClientStateStore
	PastSessions() PastSessionStore
	Backend() string
	Close() error
}

type ClientStateStore interface {
	Load(ctx context.Context) (*types.ClientState, error)
	Save(ctx context.Context, state *types.ClientState) error
}

// PastSessionStore holds the past-session ring as an ordered list, most
// recent first. Save replaces the whole list; ordering and eviction are the
// caller's concern.
type PastSessionStore interface {
	List(ctx context.Context) ([]*types.PastSession, error)
	Save(ctx context.Context, sessions []*types.PastSession) error
}

type RepositoryPaths struct {
	StatePath        string
	PastSessionsPath string
	DBPath           string
}

func OpenRepository(paths RepositoryPaths, backend string) (Repository, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", RepositoryBackendFile:
		return NewFileRepository(paths), nil
	case RepositoryBackendBbolt:
		if strings.TrimSpace(paths.DBPath) == "" {
			return nil, errors.New("db path is required for bbolt repository")
		}
		return NewBboltRepository(paths.DBPath)
	default:
		return nil, errors.New("unsupported repository backend: " + backend)
	}
}

// SeedRepositoryFromFiles migrates file-backed state into dst when dst is
// empty. This keeps startup backward-compatible for users who switch the
// storage backend to bbolt after running with the default.
func SeedRepositoryFromFiles(ctx context.Context, dst Repository, paths RepositoryPaths) error {
	if dst == nil || dst.Backend() == RepositoryBackendFile {
		return nil
	}
	src := NewFileRepository(paths)
	defer src.Close()

	if err := seedClientState(ctx, dst.ClientState(), src.ClientState()); err != nil {
		return err
	}
	return seedPastSessions(ctx, dst.PastSessions(), src.PastSessions())
}

func seedClientState(ctx context.Context, dst ClientStateStore, src ClientStateStore) error {
	if dst == nil || src == nil {
		return nil
	}
	current, err := dst.Load(ctx)
	if err != nil {
		return err
	}
	if !isZeroClientState(current) {
		return nil
	}
	legacy, err := src.Load(ctx)
	if err != nil {
		return err
	}
	if isZeroClientState(legacy) {
		return nil
	}
	return dst.Save(ctx, legacy)
}

func seedPastSessions(ctx context.Context, dst PastSessionStore, src PastSessionStore) error {
	if dst == nil || src == nil {
		return nil
	}
	current, err := dst.List(ctx)
	if err != nil {
		return err
	}
	if len(current) > 0 {
		return nil
	}
	legacy, err := src.List(ctx)
	if err != nil {
		return err
	}
	if len(legacy) == 0 {
		return nil
	}
	return dst.Save(ctx, legacy)
}

func isZeroClientState(state *types.ClientState) bool {
	if state == nil {
		return true
	}
	return strings.TrimSpace(state.AnonymousSessionID) == "" &&
		strings.TrimSpace(state.ActiveConversationID) == "" &&
		!state.SidebarCollapsed
}
