package probe

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/rueidis/mock"
	"go.uber.org/zap/zaptest"

	"github.com/kailas-cloud/searchd/internal/catalog"
	"github.com/kailas-cloud/searchd/internal/command"
	"github.com/kailas-cloud/searchd/internal/db"
	dbRedis "github.com/kailas-cloud/searchd/internal/db/redis"
	"github.com/kailas-cloud/searchd/internal/errorstats"
	"github.com/kailas-cloud/searchd/internal/transport/resp"
)

func TestDiff(t *testing.T) {
	before := map[string]uint64{"A": 1, "B": 2, "GONE": 4}
	after := map[string]uint64{"A": 1, "B": 5, "NEW": 1}

	got := Diff(before, after)
	want := map[string]int64{"B": 3, "NEW": 1, "GONE": -4}
	if len(got) != len(want) {
		t.Fatalf("Diff = %v, want %v", got, want)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("Diff[%s] = %d, want %d", k, got[k], v)
		}
	}
}

func TestMatches(t *testing.T) {
	tests := []struct {
		name   string
		deltas map[string]int64
		expect map[string]uint64
		want   bool
	}{
		{"exact", map[string]int64{"X": 1}, map[string]uint64{"X": 1}, true},
		{"wrong count", map[string]int64{"X": 2}, map[string]uint64{"X": 1}, false},
		{"extra code moved", map[string]int64{"X": 1, "Y": 1}, map[string]uint64{"X": 1}, false},
		{"nothing moved", map[string]int64{}, map[string]uint64{"X": 1}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := matches(tc.deltas, tc.expect); got != tc.want {
				t.Errorf("matches = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestReplyOf(t *testing.T) {
	const msg = "SEARCH_INDEX_NOT_FOUND: Index not found: x"
	serverErr := mock.Result(mock.RedisError(msg)).Error()

	if got, err := replyOf(nil); got != "" || err != nil {
		t.Errorf("replyOf(nil) = %q, %v", got, err)
	}
	if got, err := replyOf(serverErr); got != msg || err != nil {
		t.Errorf("replyOf(server) = %q, %v", got, err)
	}
	wrapped := &db.Error{Op: db.OpIndexInfo, Err: serverErr}
	if got, err := replyOf(wrapped); got != msg || err != nil {
		t.Errorf("replyOf(wrapped) = %q, %v", got, err)
	}
	if got, err := replyOf(context.DeadlineExceeded); got != "" || !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("replyOf(transport) = %q, %v", got, err)
	}
}

func TestRun_AgainstServer(t *testing.T) {
	logger := zaptest.NewLogger(t)
	reg := errorstats.New(errorstats.Options{Logger: logger})
	d := command.New(catalog.New(catalog.Options{}), reg, command.Config{Version: "test"}, logger)

	srv := resp.NewServer("127.0.0.1:0", d, logger)
	if err := srv.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(func() { _ = srv.Shutdown() })
	addr, err := srv.Addr()
	if err != nil {
		t.Fatalf("addr: %v", err)
	}

	store, err := dbRedis.NewStore(dbRedis.Config{Addrs: []string{addr}, Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(store.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	results, err := Run(ctx, store, Scenarios(), logger)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != len(Scenarios()) {
		t.Fatalf("results = %d, want %d", len(results), len(Scenarios()))
	}
	for _, r := range results {
		if !r.Passed {
			t.Errorf("scenario %q failed: reply %q, deltas %v", r.Scenario, r.Reply, r.Deltas)
		}
		if r.Reply == "" {
			t.Errorf("scenario %q provoked no error reply", r.Scenario)
		}
	}

	if got := reg.Count("SEARCH_INDEX_NOT_FOUND"); got != 6 {
		t.Errorf("SEARCH_INDEX_NOT_FOUND = %d, want 6", got)
	}
	if got := reg.Count("SEARCH_ARG_UNRECOGNIZED"); got != 1 {
		t.Errorf("SEARCH_ARG_UNRECOGNIZED = %d, want 1", got)
	}
}
