// Package backend builds the record store selected by configuration,
// together with the optional alert publisher.
package backend

import (
	"context"
	"time"

	"spendwatch/internal/session"
	"spendwatch/internal/store"
	"spendwatch/internal/tracker"
)

// CleanupFunc releases resources held by a backend.
type CleanupFunc func() error

// BackendResult is everything a tracker.Service needs to run.
type BackendResult struct {
	Store     store.Store
	Publisher tracker.AlertPublisher // nil when AMQP is not configured
	Session   *session.Session       // nil for local backends
	Cleanup   CleanupFunc
}

// Close runs Cleanup when there is one.
func (r *BackendResult) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// Memory
	SeedFile string

	// SQLite
	SQLiteDBPath string

	// HTTP
	APIBaseURL      string
	APIAccessToken  string
	APIRefreshToken string
	APIUserName     string
	RequestTimeout  time.Duration

	// Optional alert publishing, any backend
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// BackendType represents the type of backend
type BackendType string

const (
	MemoryBackend BackendType = "memory"
	SQLiteBackend BackendType = "sqlite"
	HTTPBackend   BackendType = "http"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, SQLiteBackend, HTTPBackend:
		return true
	default:
		return false
	}
}
