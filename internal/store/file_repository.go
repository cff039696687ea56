package store

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"d23/internal/types"
)

type fileRepository struct {
	clientState  ClientStateStore
	pastSessions PastSessionStore
}

func NewFileRepository(paths RepositoryPaths) Repository {
	return &fileRepository{
		clientState:  NewFileClientStateStore(paths.StatePath),
		pastSessions: NewFilePastSessionStore(paths.PastSessionsPath),
	}
}

func (r *fileRepository) ClientState() ClientStateStore {
	return r.clientState
}

func (r *fileRepository) PastSessions() PastSessionStore {
	return r.pastSessions
}

func (r *fileRepository) Backend() string {
	return RepositoryBackendFile
}

func (r *fileRepository) Close() error {
	return nil
}

type FileClientStateStore struct {
	path string
	mu   sync.Mutex
}

func NewFileClientStateStore(path string) *FileClientStateStore {
	return &FileClientStateStore{path: path}
}

func (s *FileClientStateStore) Load(ctx context.Context) (*types.ClientState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := &types.ClientState{}
	err := readJSON(s.path, state)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return state, nil
		}
		return nil, err
	}
	return state, nil
}

func (s *FileClientStateStore) Save(ctx context.Context, state *types.ClientState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if state == nil {
		return errors.New("state is required")
	}
	return writeJSONAtomic(s.path, state)
}

const pastSessionsSchemaVersion = 1

type FilePastSessionStore struct {
	path string
	mu   sync.Mutex
}

type pastSessionsFile struct {
	Version  int                  `json:"version"`
	Sessions []*types.PastSession `json:"sessions"`
}

func NewFilePastSessionStore(path string) *FilePastSessionStore {
	return &FilePastSessionStore{path: path}
}

func (s *FilePastSessionStore) List(ctx context.Context) ([]*types.PastSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file := &pastSessionsFile{}
	err := readJSON(s.path, file)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []*types.PastSession{}, nil
		}
		return nil, err
	}
	return clonePastSessions(file.Sessions), nil
}

func (s *FilePastSessionStore) Save(ctx context.Context, sessions []*types.PastSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file := &pastSessionsFile{
		Version:  pastSessionsSchemaVersion,
		Sessions: clonePastSessions(sessions),
	}
	return writeJSONAtomic(s.path, file)
}

func clonePastSessions(sessions []*types.PastSession) []*types.PastSession {
	out := make([]*types.PastSession, 0, len(sessions))
	for _, session := range sessions {
		if session == nil || strings.TrimSpace(session.SessionID) == "" {
			continue
		}
		copy := *session
		out = append(out, &copy)
	}
	return out
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return errors.New("empty file")
	}
	return json.Unmarshal(data, v)
}

func writeJSONAtomic(path string, v any) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	file, err := os.CreateTemp(dir, ".tmp-*.json")
	if err != nil {
		return err
	}
	defer func() {
		_ = os.Remove(file.Name())
	}()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Sync(); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return err
	}
	return os.Rename(file.Name(), path)
}
