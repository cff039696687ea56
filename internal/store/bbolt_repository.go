package store

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"d23/internal/types"
)

var (
	bucketClientState  = []byte("client_state")
	bucketPastSessions = []byte("past_sessions")
	keyClientState     = []byte("state")
)

type bboltRepository struct {
	db           *bolt.DB
	clientState  ClientStateStore
	pastSessions PastSessionStore
}

func NewBboltRepository(path string) (Repository, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("repository db path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, err
	}
	if err := initBboltSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &bboltRepository{
		db:           db,
		clientState:  &bboltClientStateStore{db: db},
		pastSessions: &bboltPastSessionStore{db: db},
	}, nil
}

func (r *bboltRepository) ClientState() ClientStateStore {
	return r.clientState
}

func (r *bboltRepository) PastSessions() PastSessionStore {
	return r.pastSessions
}

func (r *bboltRepository) Backend() string {
	return RepositoryBackendBbolt
}

func (r *bboltRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func initBboltSchema(db *bolt.DB) error {
	return db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketClientState); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(bucketPastSessions)
		return err
	})
}

type bboltClientStateStore struct {
	db *bolt.DB
}

func (s *bboltClientStateStore) Load(ctx context.Context) (*types.ClientState, error) {
	state := &types.ClientState{}
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketClientState)
		if b == nil {
			return nil
		}
		raw := b.Get(keyClientState)
		if len(raw) == 0 {
			return nil
		}
		return json.Unmarshal(raw, state)
	})
	if err != nil {
		return nil, err
	}
	return state, nil
}

func (s *bboltClientStateStore) Save(ctx context.Context, state *types.ClientState) error {
	if state == nil {
		return errors.New("state is required")
	}
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketClientState)
		if b == nil {
			return errors.New("client state bucket missing")
		}
		return b.Put(keyClientState, raw)
	})
}

type bboltPastSessionStore struct {
	db *bolt.DB
	mu sync.Mutex
}

func (s *bboltPastSessionStore) List(ctx context.Context) ([]*types.PastSession, error) {
	out := make([]*types.PastSession, 0)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketPastSessions)
		if b == nil {
			return nil
		}
		return b.ForEach(func(_, v []byte) error {
			var session types.PastSession
			if err := json.Unmarshal(v, &session); err != nil {
				return err
			}
			out = append(out, &session)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Save rewrites the whole bucket so stored entries always mirror the ring,
// evictions included.
func (s *bboltPastSessionStore) Save(ctx context.Context, sessions []*types.PastSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bucketPastSessions); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
			return err
		}
		b, err := tx.CreateBucketIfNotExists(bucketPastSessions)
		if err != nil {
			return err
		}
		for i, session := range sessions {
			if session == nil || strings.TrimSpace(session.SessionID) == "" {
				continue
			}
			raw, err := json.Marshal(session)
			if err != nil {
				return err
			}
			if err := b.Put(ringKey(i), raw); err != nil {
				return err
			}
		}
		return nil
	})
}

// ringKey orders entries by ring position so iteration returns the most
// recent session first.
func ringKey(i int) []byte {
	var key [4]byte
	binary.BigEndian.PutUint32(key[:], uint32(i))
	return key[:]
}
