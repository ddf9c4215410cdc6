package db

import (
	"context"
	"time"
)

// Store is the client-side facade over a searchd (or any FT-capable Redis)
// server, used by operational tooling.
type Store interface {
	Pinger
	IndexManager
	StatsReader
	Executor
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks server connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// IndexManager provides FT index lifecycle operations.
type IndexManager interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// StatsReader reads and resets the server's error statistics.
type StatsReader interface {
	ErrorStats(ctx context.Context) (map[string]uint64, error)
	ResetStats(ctx context.Context) error
}

// Executor runs an arbitrary command and reports only its error. A server
// error reply is returned as-is so callers can inspect the message.
type Executor interface {
	Exec(ctx context.Context, args ...string) error
}
