// Package probe replays known failure scenarios against a live server and
// checks that each one moves exactly the expected error counters.
package probe

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/searchd/internal/db"
	dbRedis "github.com/kailas-cloud/searchd/internal/db/redis"
)

// Scenario is one failure to provoke. Run returns the text of the error
// reply it provoked, and a non-nil error only when setup or cleanup failed.
type Scenario struct {
	Name   string
	Run    func(ctx context.Context, s db.Store, index string) (string, error)
	Expect map[string]uint64
}

// Result is the outcome of one scenario.
type Result struct {
	Scenario string
	Reply    string
	Deltas   map[string]int64
	Passed   bool
}

// Scenarios returns the built-in scenarios.
func Scenarios() []Scenario {
	return []Scenario{
		{
			Name: "search on a missing index",
			Run: func(ctx context.Context, s db.Store, index string) (string, error) {
				return replyOf(s.Exec(ctx, "FT.SEARCH", index+"_missing", "*"))
			},
			Expect: map[string]uint64{"SEARCH_INDEX_NOT_FOUND": 1},
		},
		{
			Name: "drop index with a trailing argument",
			Run: func(ctx context.Context, s db.Store, index string) (string, error) {
				def, err := db.NewIndex(index).Prefix(index + ":").Text("title").Build()
				if err != nil {
					return "", err
				}
				if err := s.CreateIndex(ctx, def); err != nil {
					return "", fmt.Errorf("create %s: %w", index, err)
				}
				reply, err := replyOf(s.Exec(ctx, "FT.DROPINDEX", index, "DD", "BOGUS"))
				if err != nil {
					return "", err
				}
				if err := s.DropIndex(ctx, index); err != nil {
					return reply, fmt.Errorf("drop %s: %w", index, err)
				}
				return reply, nil
			},
			Expect: map[string]uint64{"SEARCH_ARG_UNRECOGNIZED": 1},
		},
		{
			Name: "repeated lookups group under one code",
			Run: func(ctx context.Context, s db.Store, index string) (string, error) {
				var reply string
				for i := range 5 {
					r, err := replyOf(s.Exec(ctx, "FT.INFO", fmt.Sprintf("%s_ghost_%d", index, i)))
					if err != nil {
						return "", err
					}
					reply = r
				}
				return reply, nil
			},
			Expect: map[string]uint64{"SEARCH_INDEX_NOT_FOUND": 5},
		},
	}
}

// Run executes scenarios one after another, reading the error statistics
// before and after each. Concurrent traffic on the server skews the deltas.
func Run(ctx context.Context, store db.Store, scenarios []Scenario, logger *zap.Logger) ([]Result, error) {
	index := "ftstat_probe_" + uuid.NewString()[:8]

	results := make([]Result, 0, len(scenarios))
	for _, sc := range scenarios {
		before, err := store.ErrorStats(ctx)
		if err != nil {
			return results, fmt.Errorf("read stats: %w", err)
		}
		reply, err := sc.Run(ctx, store, index)
		if err != nil {
			return results, fmt.Errorf("scenario %q: %w", sc.Name, err)
		}
		after, err := store.ErrorStats(ctx)
		if err != nil {
			return results, fmt.Errorf("read stats: %w", err)
		}

		deltas := Diff(before, after)
		res := Result{
			Scenario: sc.Name,
			Reply:    reply,
			Deltas:   deltas,
			Passed:   matches(deltas, sc.Expect),
		}

		logger.Debug("probe scenario finished",
			zap.String("scenario", sc.Name),
			zap.String("reply", res.Reply),
			zap.Bool("passed", res.Passed),
		)
		results = append(results, res)
	}
	return results, nil
}

// replyOf splits the result of a raw command: server error replies become
// the returned text, anything else is a transport failure.
func replyOf(err error) (string, error) {
	if err == nil {
		return "", nil
	}
	if msg, ok := dbRedis.ServerError(err); ok {
		return msg, nil
	}
	return "", err
}

// Diff returns the non-zero per-key changes between two snapshots.
func Diff(before, after map[string]uint64) map[string]int64 {
	out := make(map[string]int64)
	for k, v := range after {
		if d := int64(v) - int64(before[k]); d != 0 {
			out[k] = d
		}
	}
	for k, v := range before {
		if _, ok := after[k]; !ok {
			out[k] = -int64(v)
		}
	}
	return out
}

func matches(deltas map[string]int64, expect map[string]uint64) bool {
	if len(deltas) != len(expect) {
		return false
	}
	for k, want := range expect {
		if deltas[k] != int64(want) {
			return false
		}
	}
	return true
}

// SortedKeys returns the keys of m in lexical order.
func SortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
