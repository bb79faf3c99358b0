// Package app provides the composition layer for the forum backend.
//
// # Package Structure
//
//	internal/app/
//	├── application.go      # Application struct, wiring, and lifecycle
//	├── domain/             # Domain models (pure data structures)
//	│   ├── user/           # Users and profiles
//	│   ├── post/           # Posts and comments
//	│   └── relation/       # Follows, blocks, likes, viewing history
//	├── storage/            # Storage interfaces and implementations
//	│   ├── interfaces.go   # Store interfaces (UserStore, PostStore, etc.)
//	│   ├── memory/         # In-memory implementation for testing
//	│   └── postgres/       # PostgreSQL implementation for production
//	├── guard/              # Ownership and relationship enforcement
//	├── services/           # Business logic (users, profiles, posts)
//	├── events/             # In-process activity pub/sub
//	├── httpapi/            # HTTP API handlers and routing
//	└── system/             # Lifecycle management
//
// The app package composes the services with their stores, defines the
// storage interfaces they depend on, and exposes the HTTP API. Business
// logic lives in internal/app/services/.
package app
