package main

import (
	"context"

	"d23/internal/app"
	"d23/internal/chat"
	"d23/internal/client"
	"d23/internal/config"
	"d23/internal/logging"
	"d23/internal/store"
	"d23/internal/types"
)

type sessionFactory func(log logging.Logger) (commandSession, error)

// commandSession is the slice of the chat session the commands drive, plus
// the lifecycle hooks the adapter layers on top.
type commandSession interface {
	ResolveActor(ctx context.Context) (types.Actor, error)
	LoadInitialHistory(ctx context.Context) error
	RefreshConversations(ctx context.Context) error
	SelectConversation(ctx context.Context, id string) error
	Send(ctx context.Context, text string) error
	GrantLocation(ctx context.Context, latitude, longitude float64) error
	StartNewChat(ctx context.Context) error
	SelectImage(name, mime string, data []byte) error
	AttachAudio(ctx context.Context, name, mime string, data []byte) (string, error)
	Rename(ctx context.Context, id, title string) error
	Delete(ctx context.Context, id string) error
	Snapshot() chat.Snapshot
	Coordinates() (latitude, longitude float64, ok bool)
	RunUI() error
	Close() error
}

type chatSessionAdapter struct {
	session *chat.Session
	repo    store.Repository
	log     logging.Logger
	coords  func() (float64, float64, bool)
}

// newChatSession assembles the full client stack: configuration, the HTTP
// transport, the state repository (seeded from legacy files on first bbolt
// open) and the session reducer on top.
func newChatSession(log logging.Logger) (commandSession, error) {
	if log == nil {
		log = logging.Nop()
	}
	cfg, err := config.LoadCoreConfig()
	if err != nil {
		return nil, err
	}
	transport, err := client.New(cfg.BackendBaseURL())
	if err != nil {
		return nil, err
	}
	transport.SetLogger(log)

	statePath, err := config.StatePath()
	if err != nil {
		return nil, err
	}
	pastSessionsPath, err := config.PastSessionsPath()
	if err != nil {
		return nil, err
	}
	dbPath, err := config.DBPath()
	if err != nil {
		return nil, err
	}
	paths := store.RepositoryPaths{
		StatePath:        statePath,
		PastSessionsPath: pastSessionsPath,
		DBPath:           dbPath,
	}
	repo, err := store.OpenRepository(paths, cfg.StorageBackend())
	if err != nil {
		return nil, err
	}
	if err := store.SeedRepositoryFromFiles(context.Background(), repo, paths); err != nil {
		_ = repo.Close()
		return nil, err
	}

	token, err := config.ReadToken()
	if err != nil {
		_ = repo.Close()
		return nil, err
	}
	session, err := chat.NewSession(chat.Options{
		Transport:  transport,
		Repository: repo,
		Logger:     log,
		Token:      token,
		PageSize:   cfg.HistoryPageSize(),
	})
	if err != nil {
		_ = repo.Close()
		return nil, err
	}
	return &chatSessionAdapter{
		session: session,
		repo:    repo,
		log:     log,
		coords:  cfg.LocationCoordinates,
	}, nil
}

func (a *chatSessionAdapter) ResolveActor(ctx context.Context) (types.Actor, error) {
	return a.session.ResolveActor(ctx)
}

func (a *chatSessionAdapter) LoadInitialHistory(ctx context.Context) error {
	return a.session.LoadInitialHistory(ctx)
}

func (a *chatSessionAdapter) RefreshConversations(ctx context.Context) error {
	return a.session.RefreshConversations(ctx)
}

func (a *chatSessionAdapter) SelectConversation(ctx context.Context, id string) error {
	return a.session.SelectConversation(ctx, id)
}

func (a *chatSessionAdapter) Send(ctx context.Context, text string) error {
	return a.session.Send(ctx, text)
}

func (a *chatSessionAdapter) GrantLocation(ctx context.Context, latitude, longitude float64) error {
	return a.session.GrantLocation(ctx, latitude, longitude)
}

func (a *chatSessionAdapter) StartNewChat(ctx context.Context) error {
	return a.session.StartNewChat(ctx)
}

func (a *chatSessionAdapter) SelectImage(name, mime string, data []byte) error {
	return a.session.SelectImage(name, mime, data)
}

func (a *chatSessionAdapter) AttachAudio(ctx context.Context, name, mime string, data []byte) (string, error) {
	return a.session.AttachAudio(ctx, name, mime, data)
}

func (a *chatSessionAdapter) Rename(ctx context.Context, id, title string) error {
	return a.session.Rename(ctx, id, title)
}

func (a *chatSessionAdapter) Delete(ctx context.Context, id string) error {
	return a.session.Delete(ctx, id)
}

func (a *chatSessionAdapter) Snapshot() chat.Snapshot {
	return a.session.Snapshot()
}

func (a *chatSessionAdapter) Coordinates() (float64, float64, bool) {
	return a.coords()
}

func (a *chatSessionAdapter) RunUI() error {
	uiCfg, err := config.LoadUIConfig()
	if err != nil {
		return err
	}
	return app.Run(a.session, uiCfg, a.log, app.WithCoordinates(a.coords))
}

func (a *chatSessionAdapter) Close() error {
	return a.repo.Close()
}
