package resp

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap/zaptest"

	"github.com/kailas-cloud/searchd/internal/catalog"
	"github.com/kailas-cloud/searchd/internal/command"
	"github.com/kailas-cloud/searchd/internal/errorstats"
)

// startServer runs a server on a random port and returns a go-redis client
// connected to it together with the registry it records into.
func startServer(t *testing.T) (*redis.Client, *errorstats.Registry) {
	t.Helper()
	logger := zaptest.NewLogger(t)
	reg := errorstats.New(errorstats.Options{Logger: logger})
	d := command.New(catalog.New(catalog.Options{}), reg, command.Config{Version: "test"}, logger)

	srv := NewServer("127.0.0.1:0", d, logger)
	if err := srv.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(func() { _ = srv.Shutdown() })

	addr, err := srv.Addr()
	if err != nil {
		t.Fatalf("addr: %v", err)
	}
	client := redis.NewClient(&redis.Options{
		Addr:            addr,
		Protocol:        2,
		DisableIdentity: true,
	})
	t.Cleanup(func() { _ = client.Close() })
	return client, reg
}

func errorstatsInfo(t *testing.T, client *redis.Client) string {
	t.Helper()
	info, err := client.Info(context.Background(), "errorstats").Result()
	if err != nil {
		t.Fatalf("INFO errorstats: %v", err)
	}
	return info
}

func TestServer_PingAndEcho(t *testing.T) {
	client, _ := startServer(t)
	ctx := context.Background()

	if got, err := client.Ping(ctx).Result(); err != nil || got != "PONG" {
		t.Fatalf("PING = %q, %v", got, err)
	}
	if got, err := client.Echo(ctx, "hello").Result(); err != nil || got != "hello" {
		t.Fatalf("ECHO = %q, %v", got, err)
	}
}

func TestServer_SearchMissingIndex(t *testing.T) {
	client, _ := startServer(t)
	ctx := context.Background()

	err := client.Do(ctx, "FT.SEARCH", "missing_idx", "*").Err()
	if err == nil || !strings.HasPrefix(err.Error(), "SEARCH_INDEX_NOT_FOUND:") {
		t.Fatalf("FT.SEARCH error = %v", err)
	}
	if info := errorstatsInfo(t, client); !strings.Contains(info, "errorstat_SEARCH_INDEX_NOT_FOUND:count=1") {
		t.Errorf("INFO errorstats = %q", info)
	}
}

func TestServer_DropIndexUnrecognizedArg(t *testing.T) {
	client, reg := startServer(t)
	ctx := context.Background()

	err := client.FTCreate(ctx, "idx",
		&redis.FTCreateOptions{OnHash: true, Prefix: []any{"doc:"}},
		&redis.FieldSchema{FieldName: "title", FieldType: redis.SearchFieldTypeText},
	).Err()
	if err != nil {
		t.Fatalf("FT.CREATE: %v", err)
	}

	notFoundBefore := reg.Count("SEARCH_INDEX_NOT_FOUND")
	err = client.Do(ctx, "FT.DROPINDEX", "idx", "DD", "BOGUS").Err()
	if err == nil || !strings.HasPrefix(err.Error(), "SEARCH_ARG_UNRECOGNIZED:") {
		t.Fatalf("FT.DROPINDEX error = %v", err)
	}
	if got := reg.Count("SEARCH_ARG_UNRECOGNIZED"); got != 1 {
		t.Errorf("SEARCH_ARG_UNRECOGNIZED = %d, want 1", got)
	}
	if got := reg.Count("SEARCH_INDEX_NOT_FOUND"); got != notFoundBefore {
		t.Errorf("SEARCH_INDEX_NOT_FOUND changed: %d -> %d", notFoundBefore, got)
	}

	if err := client.FTDropIndexWithArgs(ctx, "idx", &redis.FTDropIndexOptions{DeleteDocs: true}).Err(); err != nil {
		t.Fatalf("FT.DROPINDEX DD: %v", err)
	}
}

func TestServer_GroupsByCode(t *testing.T) {
	client, _ := startServer(t)
	ctx := context.Background()

	for i := range 5 {
		_ = client.Do(ctx, "FT.INFO", fmt.Sprintf("ghost_%d", i)).Err()
	}

	info := errorstatsInfo(t, client)
	if n := strings.Count(info, "errorstat_SEARCH_INDEX_NOT_FOUND"); n != 1 {
		t.Errorf("expected one line for the code, got %d in %q", n, info)
	}
	if !strings.Contains(info, "errorstat_SEARCH_INDEX_NOT_FOUND:count=5") {
		t.Errorf("INFO errorstats = %q", info)
	}
}

func TestServer_ConcurrentFailures(t *testing.T) {
	client, reg := startServer(t)
	ctx := context.Background()

	const workers, perWorker = 8, 50
	var wg sync.WaitGroup
	for w := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range perWorker {
				_ = client.Do(ctx, "FT.SEARCH", fmt.Sprintf("idx_%d_%d", w, i), "*").Err()
			}
		}()
	}
	wg.Wait()

	if got := reg.Count("SEARCH_INDEX_NOT_FOUND"); got != workers*perWorker {
		t.Errorf("count = %d, want %d", got, workers*perWorker)
	}
}

func TestServer_ConfigResetStat(t *testing.T) {
	client, _ := startServer(t)
	ctx := context.Background()

	_ = client.Do(ctx, "FT.INFO", "nope").Err()
	if err := client.ConfigResetStat(ctx).Err(); err != nil {
		t.Fatalf("CONFIG RESETSTAT: %v", err)
	}
	if info := errorstatsInfo(t, client); strings.Contains(info, "errorstat_") {
		t.Errorf("INFO errorstats after reset = %q", info)
	}
}

func TestServer_UnknownCommand(t *testing.T) {
	client, reg := startServer(t)

	err := client.Do(context.Background(), "NOT_A_COMMAND", "x").Err()
	if err == nil || !strings.HasPrefix(err.Error(), "ERR unknown command") {
		t.Fatalf("error = %v", err)
	}
	if reg.Count("ERR") != 1 {
		t.Errorf("ERR = %d, want 1", reg.Count("ERR"))
	}
}
