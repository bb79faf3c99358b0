package app

import (
	"context"
	"fmt"

	"github.com/trapziu/forum/internal/app/events"
	"github.com/trapziu/forum/internal/app/guard"
	"github.com/trapziu/forum/internal/app/services/posts"
	"github.com/trapziu/forum/internal/app/services/profiles"
	"github.com/trapziu/forum/internal/app/services/users"
	"github.com/trapziu/forum/internal/app/storage"
	"github.com/trapziu/forum/internal/app/storage/memory"
	"github.com/trapziu/forum/internal/app/system"
	"github.com/trapziu/forum/pkg/logger"
)

// Stores encapsulates persistence dependencies. Nil stores default to the
// in-memory implementation.
type Stores struct {
	Users     storage.UserStore
	Relations storage.RelationStore
	Posts     storage.PostStore
	Likes     storage.LikeStore
	Comments  storage.CommentStore
	History   storage.HistoryStore
}

// Application ties the forum services together and manages their lifecycle.
type Application struct {
	manager *system.Manager
	log     *logger.Logger

	Users    *users.Service
	Profiles *profiles.Service
	Posts    *posts.Service
	Guard    *guard.Guard
	Events   *events.Hub
}

// New builds a fully initialised application with the provided stores.
func New(stores Stores, log *logger.Logger) (*Application, error) {
	if log == nil {
		log = logger.NewDefault("app")
	}

	mem := memory.New()
	if stores.Users == nil {
		stores.Users = mem
	}
	if stores.Relations == nil {
		stores.Relations = mem
	}
	if stores.Posts == nil {
		stores.Posts = mem
	}
	if stores.Likes == nil {
		stores.Likes = mem
	}
	if stores.Comments == nil {
		stores.Comments = mem
	}
	if stores.History == nil {
		stores.History = mem
	}

	manager := system.NewManager()
	hub := events.NewHub(log)
	g := guard.New(stores.Relations, stores.Likes)

	userService := users.New(stores.Users, stores.Relations, stores.Posts, stores.Likes, stores.Comments, stores.History, log)
	profileService := profiles.New(stores.Users, stores.Relations, g, hub, log)
	postService := posts.New(stores.Users, stores.Relations, stores.Posts, stores.Likes, stores.Comments, stores.History, g, hub, log)

	for _, name := range []string{"users", "profiles", "posts"} {
		if err := manager.Register(system.NoopService{ServiceName: name}); err != nil {
			return nil, fmt.Errorf("register %s service: %w", name, err)
		}
	}
	if err := manager.Register(hub); err != nil {
		return nil, fmt.Errorf("register events hub: %w", err)
	}

	return &Application{
		manager:  manager,
		log:      log,
		Users:    userService,
		Profiles: profileService,
		Posts:    postService,
		Guard:    g,
		Events:   hub,
	}, nil
}

// Attach registers an additional lifecycle-managed service. Call before Start.
func (a *Application) Attach(service system.Service) error {
	return a.manager.Register(service)
}

// Start begins all registered services.
func (a *Application) Start(ctx context.Context) error {
	return a.manager.Start(ctx)
}

// Stop stops all services.
func (a *Application) Stop(ctx context.Context) error {
	return a.manager.Stop(ctx)
}
