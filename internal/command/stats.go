package command

import (
	"sync/atomic"
	"time"
)

// Stats holds the server-wide counters reported by INFO.
type Stats struct {
	startedAt           time.Time
	nextSeq             atomic.Int64
	connectedClients    atomic.Int64
	connectionsReceived atomic.Uint64
	commandsProcessed   atomic.Uint64
}

// NewStats starts the uptime clock.
func NewStats() *Stats {
	return &Stats{startedAt: time.Now()}
}

// ClientConnected registers a new connection and returns its sequence id.
func (s *Stats) ClientConnected() int64 {
	s.connectedClients.Add(1)
	s.connectionsReceived.Add(1)
	return s.nextSeq.Add(1)
}

// ClientDisconnected unregisters a connection.
func (s *Stats) ClientDisconnected() {
	s.connectedClients.Add(-1)
}

// ConnectedClients returns the number of open connections.
func (s *Stats) ConnectedClients() int64 { return s.connectedClients.Load() }

// ConnectionsReceived returns the number of accepted connections.
func (s *Stats) ConnectionsReceived() uint64 { return s.connectionsReceived.Load() }

// CommandsProcessed returns the number of dispatched commands.
func (s *Stats) CommandsProcessed() uint64 { return s.commandsProcessed.Load() }

// Uptime returns the time since the server started.
func (s *Stats) Uptime() time.Duration { return time.Since(s.startedAt) }

// Reset clears the cumulative counters (CONFIG RESETSTAT).
func (s *Stats) Reset() {
	s.connectionsReceived.Store(0)
	s.commandsProcessed.Store(0)
}
