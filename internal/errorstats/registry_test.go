package errorstats

import (
	"fmt"
	"sync"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRecord_CreatesLazily(t *testing.T) {
	r := New(Options{})

	if got := r.Snapshot().Entries; len(got) != 0 {
		t.Fatalf("fresh registry has entries: %v", got)
	}

	r.Record("SEARCH_INDEX_NOT_FOUND")
	snap := r.Snapshot()
	if len(snap.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(snap.Entries))
	}
	if snap.Count("SEARCH_INDEX_NOT_FOUND") != 1 {
		t.Errorf("count = %d, want 1", snap.Count("SEARCH_INDEX_NOT_FOUND"))
	}
}

func TestRecord_GroupsByCode(t *testing.T) {
	r := New(Options{})
	for range 5 {
		r.Record("SEARCH_INDEX_NOT_FOUND")
	}
	r.Record("SEARCH_ARG_UNRECOGNIZED")

	snap := r.Snapshot()
	if len(snap.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %v", snap.Entries)
	}
	if snap.Count("SEARCH_INDEX_NOT_FOUND") != 5 {
		t.Errorf("SEARCH_INDEX_NOT_FOUND = %d, want 5", snap.Count("SEARCH_INDEX_NOT_FOUND"))
	}
	if snap.TotalErrorReplies != 6 {
		t.Errorf("TotalErrorReplies = %d, want 6", snap.TotalErrorReplies)
	}
}

func TestSnapshot_AbsentCodeNotListed(t *testing.T) {
	r := New(Options{})
	r.Record("SEARCH_LIMIT")

	for _, line := range r.Snapshot().Lines() {
		if line == "errorstat_SEARCH_SYNTAX:count=0" {
			t.Fatal("zero-count code must not be listed")
		}
	}
	if _, ok := r.Snapshot().Map()["SEARCH_SYNTAX"]; ok {
		t.Error("never-recorded code present in snapshot")
	}
	if r.Count("SEARCH_SYNTAX") != 0 {
		t.Error("Count of never-recorded code must be 0")
	}
}

func TestSnapshot_Monotonic(t *testing.T) {
	r := New(Options{})
	prev := uint64(0)
	for i := range 10 {
		r.Record("ERR")
		if i%3 == 0 {
			r.Record("SEARCH_SYNTAX")
		}
		cur := r.Snapshot().Count("ERR")
		if cur < prev {
			t.Fatalf("count decreased: %d -> %d", prev, cur)
		}
		prev = cur
	}
}

func TestSnapshot_IsACopy(t *testing.T) {
	r := New(Options{})
	r.Record("ERR")
	snap := r.Snapshot()
	r.Record("ERR")
	if snap.Count("ERR") != 1 {
		t.Errorf("snapshot changed after Record: %d", snap.Count("ERR"))
	}
}

func TestRecord_ConcurrentNoLostUpdates(t *testing.T) {
	r := New(Options{})
	const workers = 32
	const perWorker = 500

	var wg sync.WaitGroup
	for w := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range perWorker {
				r.Record("SEARCH_INDEX_NOT_FOUND")
				r.Record(fmt.Sprintf("SEARCH_CODE_%d", w%4))
			}
		}()
	}

	// Readers run alongside writers.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for range 100 {
			_ = r.Snapshot()
		}
	}()

	wg.Wait()
	<-done

	snap := r.Snapshot()
	if got := snap.Count("SEARCH_INDEX_NOT_FOUND"); got != workers*perWorker {
		t.Errorf("count = %d, want %d", got, workers*perWorker)
	}
	var spread uint64
	for i := range 4 {
		spread += snap.Count(fmt.Sprintf("SEARCH_CODE_%d", i))
	}
	if spread != workers*perWorker {
		t.Errorf("spread counts = %d, want %d", spread, workers*perWorker)
	}
	if snap.TotalErrorReplies != 2*workers*perWorker {
		t.Errorf("TotalErrorReplies = %d", snap.TotalErrorReplies)
	}
}

func TestRecord_MaxEntriesDropsNewKeys(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	r := New(Options{MaxEntries: 2, Logger: zap.New(core)})

	r.Record("A")
	r.Record("B")
	r.Record("C")
	r.Record("D")
	r.Record("A")

	snap := r.Snapshot()
	if len(snap.Entries) != 2 {
		t.Fatalf("entries = %v, want 2", snap.Entries)
	}
	if snap.Count("A") != 2 {
		t.Errorf("A = %d, want 2", snap.Count("A"))
	}
	if snap.Count("C") != 0 {
		t.Error("C should have been dropped")
	}
	if snap.Dropped != 2 {
		t.Errorf("Dropped = %d, want 2", snap.Dropped)
	}
	if snap.TotalErrorReplies != 5 {
		t.Errorf("TotalErrorReplies = %d, want 5", snap.TotalErrorReplies)
	}
	if logs.Len() != 1 {
		t.Errorf("expected one overflow warning, got %d", logs.Len())
	}
}

func TestRecord_EmptyKeyDropped(t *testing.T) {
	r := New(Options{})
	r.Record("")
	snap := r.Snapshot()
	if len(snap.Entries) != 0 {
		t.Errorf("empty key created entry: %v", snap.Entries)
	}
	if snap.Dropped != 1 {
		t.Errorf("Dropped = %d, want 1", snap.Dropped)
	}
}

func TestReset(t *testing.T) {
	r := New(Options{MaxEntries: 1})
	r.Record("A")
	r.Record("B")
	r.Reset()

	snap := r.Snapshot()
	if len(snap.Entries) != 0 || snap.TotalErrorReplies != 0 || snap.Dropped != 0 {
		t.Fatalf("Reset left state behind: %+v", snap)
	}

	// The cap applies afresh after a reset.
	r.Record("B")
	if r.Count("B") != 1 {
		t.Errorf("B = %d after reset, want 1", r.Count("B"))
	}
}

func TestReset_ConcurrentWithNewKeys(t *testing.T) {
	const maxEntries = 16
	r := New(Options{MaxEntries: maxEntries})

	var wg sync.WaitGroup
	for w := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 500 {
				r.Record(fmt.Sprintf("K%d_%d", w, i%maxEntries))
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for range 200 {
			r.Reset()
		}
	}()
	wg.Wait()

	r.mu.Lock()
	size := r.size
	r.mu.Unlock()
	if n := int64(len(r.Snapshot().Entries)); size != n {
		t.Fatalf("size = %d, entries = %d", size, n)
	}

	// A full table's worth of new keys fits after a reset.
	r.Reset()
	for i := range maxEntries {
		r.Record(fmt.Sprintf("FRESH_%d", i))
	}
	snap := r.Snapshot()
	if len(snap.Entries) != maxEntries || snap.Dropped != 0 {
		t.Errorf("entries = %d, dropped = %d; want %d, 0", len(snap.Entries), snap.Dropped, maxEntries)
	}
}

func TestLines_Format(t *testing.T) {
	r := New(Options{})
	r.Record("SEARCH_INDEX_NOT_FOUND")
	r.Record("SEARCH_INDEX_NOT_FOUND")
	r.Record("ERR")

	lines := r.Snapshot().Lines()
	want := []string{
		"errorstat_ERR:count=1",
		"errorstat_SEARCH_INDEX_NOT_FOUND:count=2",
	}
	if len(lines) != len(want) {
		t.Fatalf("lines = %v, want %v", lines, want)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}

	fields := r.Snapshot().Fields()
	if fields[1].Key != "errorstat_SEARCH_INDEX_NOT_FOUND" || fields[1].Value != "count=2" {
		t.Errorf("field = %+v", fields[1])
	}
}

func TestKeyFromMessage(t *testing.T) {
	tests := []struct {
		msg  string
		want string
	}{
		{"ERR unknown command 'foo'", "ERR"},
		{"WRONGTYPE Operation against a key", "WRONGTYPE"},
		{"NOPROTO unsupported protocol version", "NOPROTO"},
		{"SEARCH_INDEX_NOT_FOUND: Index not found", "SEARCH_INDEX_NOT_FOUND"},
		{"something went wrong", "ERR"},
		{"", "ERR"},
		{":", "ERR"},
	}
	for _, tc := range tests {
		if got := KeyFromMessage(tc.msg); got != tc.want {
			t.Errorf("KeyFromMessage(%q) = %q, want %q", tc.msg, got, tc.want)
		}
	}
}

func TestParseInfo(t *testing.T) {
	info := "# Errorstats\r\n" +
		"errorstat_ERR:count=2\r\n" +
		"errorstat_SEARCH_INDEX_NOT_FOUND:count=5\r\n" +
		"errorstat_BROKEN:count=x\r\n" +
		"total_error_replies:7\r\n"

	got := ParseInfo(info)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2 (%v)", len(got), got)
	}
	if got["ERR"] != 2 || got["SEARCH_INDEX_NOT_FOUND"] != 5 {
		t.Errorf("ParseInfo = %v", got)
	}
}

func TestParseInfo_RoundTripsLines(t *testing.T) {
	r := New(Options{Logger: zap.NewNop()})
	r.Record("SEARCH_LIMIT")
	r.Record("SEARCH_LIMIT")
	r.Record("ERR")

	var info string
	for _, line := range r.Snapshot().Lines() {
		info += line + "\r\n"
	}
	got := ParseInfo(info)
	if got["SEARCH_LIMIT"] != 2 || got["ERR"] != 1 {
		t.Errorf("ParseInfo = %v", got)
	}
}
