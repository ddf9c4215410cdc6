// Package command implements the search command surface: argument parsing,
// handlers, and the dispatcher that classifies and accounts every failure.
package command

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/searchd/internal/catalog"
	"github.com/kailas-cloud/searchd/internal/errorstats"
	logpkg "github.com/kailas-cloud/searchd/internal/logger"
	"github.com/kailas-cloud/searchd/internal/queryerr"
)

// Config holds handler limits and server identity.
type Config struct {
	MaxSearchResults    int
	MaxAggregateResults int
	DefaultDialect      int
	MaxDialect          int
	MaxPrefixTerms      int
	HideUserData        bool
	Version             string
	Commit              string
	Port                int
}

// ApplyDefaults fills zero values.
func (c *Config) ApplyDefaults() {
	if c.MaxSearchResults <= 0 {
		c.MaxSearchResults = 10000
	}
	if c.MaxAggregateResults <= 0 {
		c.MaxAggregateResults = 10000
	}
	if c.MaxDialect <= 0 {
		c.MaxDialect = 4
	}
	if c.DefaultDialect <= 0 {
		c.DefaultDialect = 1
	}
}

// Observer receives per-command outcomes. Implemented by the metrics package.
type Observer interface {
	CommandDone(command, status string, d time.Duration)
	QueryWarnings(w queryerr.Warnings)
}

type nopObserver struct{}

func (nopObserver) CommandDone(string, string, time.Duration) {}
func (nopObserver) QueryWarnings(queryerr.Warnings)           {}

// Conn is the per-connection state handlers may read or update.
type Conn struct {
	ID     string
	Seq    int64
	Addr   string
	Name   string
	Logger *zap.Logger
}

// Request is one parsed command invocation.
type Request struct {
	Name string   // upper-case command name
	Args []string // arguments after the name
	Conn *Conn
}

// HandlerFunc executes a command. A returned error becomes the error reply.
type HandlerFunc func(ctx context.Context, req *Request) (Reply, error)

// Spec registers a command. Arity follows Redis: a positive value is the
// exact argument count including the name, a negative value the minimum.
type Spec struct {
	Name    string
	Arity   int
	Handler HandlerFunc
}

// Dispatcher routes commands to handlers. Every failure is classified into
// one statistics key, recorded once, logged and returned as an error reply.
type Dispatcher struct {
	commands map[string]Spec
	catalog  *catalog.Catalog
	errors   *errorstats.Registry
	stats    *Stats
	cfg      Config
	observer Observer
	logger   *zap.Logger
}

// New creates a dispatcher with every built-in command registered.
func New(cat *catalog.Catalog, errs *errorstats.Registry, cfg Config, logger *zap.Logger) *Dispatcher {
	cfg.ApplyDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Dispatcher{
		commands: make(map[string]Spec),
		catalog:  cat,
		errors:   errs,
		stats:    NewStats(),
		cfg:      cfg,
		observer: nopObserver{},
		logger:   logger,
	}
	d.registerSearch()
	d.registerServer()
	return d
}

// WithObserver sets the outcome observer.
func (d *Dispatcher) WithObserver(o Observer) *Dispatcher {
	if o != nil {
		d.observer = o
	}
	return d
}

// Register adds or replaces commands.
func (d *Dispatcher) Register(specs ...Spec) {
	for _, s := range specs {
		d.commands[strings.ToUpper(s.Name)] = s
	}
}

// Stats returns the server counters.
func (d *Dispatcher) Stats() *Stats { return d.stats }

// Dispatch executes one command and returns its reply.
func (d *Dispatcher) Dispatch(ctx context.Context, conn *Conn, argv []string) (reply Reply) {
	if len(argv) == 0 {
		return nil
	}
	start := time.Now()
	name := strings.ToUpper(argv[0])
	d.stats.commandsProcessed.Add(1)

	logger := d.logger
	if conn != nil && conn.Logger != nil {
		logger = conn.Logger
	}
	ctx = logpkg.WithFields(logpkg.ContextWithLogger(ctx, logger), zap.String("command", name))

	spec, ok := d.commands[name]
	if !ok {
		return d.fail(ctx, "unknown", ErrUnknownCommand(argv[0], argv[1:]), start)
	}
	if (spec.Arity > 0 && len(argv) != spec.Arity) || (spec.Arity < 0 && len(argv) < -spec.Arity) {
		return d.fail(ctx, name, ErrWrongArity(name), start)
	}

	defer func() {
		if rvr := recover(); rvr != nil {
			logpkg.FromContext(ctx).Error("panic recovered",
				zap.Any("panic", rvr),
				zap.Stack("stacktrace"),
			)
			reply = d.fail(ctx, name, fmt.Errorf("panic in %s: %v", name, rvr), start)
		}
	}()

	reply, err := spec.Handler(ctx, &Request{Name: name, Args: argv[1:], Conn: conn})
	if err != nil {
		return d.fail(ctx, name, err, start)
	}
	d.observer.CommandDone(name, "ok", time.Since(start))
	return reply
}

// fail classifies err, records it and renders the error reply.
func (d *Dispatcher) fail(ctx context.Context, command string, err error, start time.Time) Reply {
	key, msg, logMsg := d.classify(ctx, err)
	d.errors.Record(key)
	d.observer.CommandDone(command, "error", time.Since(start))

	logpkg.FromContext(ctx).Debug("command failed",
		zap.String("code", key),
		zap.String("error", logMsg),
	)
	return ErrorReply(msg)
}

// classify maps any handler error to (statistics key, client message, log
// message). Errors that were never classified become SEARCH_GENERIC so no
// failure goes unaccounted.
func (d *Dispatcher) classify(ctx context.Context, err error) (key, msg, logMsg string) {
	var qe *queryerr.Error
	if errors.As(err, &qe) {
		logMsg = qe.Error()
		if d.cfg.HideUserData {
			logMsg = qe.Redacted()
		}
		return qe.Code().Name(), qe.Error(), logMsg
	}

	var se *ServerError
	if errors.As(err, &se) {
		msg := se.Error()
		return errorstats.KeyFromMessage(msg), msg, msg
	}

	logpkg.FromContext(ctx).Error("unclassified command error", zap.Error(err))
	qe = queryerr.Classify(queryerr.Unclassified{Detail: "internal error"})
	return qe.Code().Name(), qe.Error(), qe.Error()
}
