package errorstats

import (
	"strconv"
	"strings"
)

// KeyPrefix and CountPrefix form the INFO errorstats line format:
// errorstat_<KEY>:count=<N>.
const (
	KeyPrefix   = "errorstat_"
	CountPrefix = "count="
	Section     = "Errorstats"
)

// Entry is one error code and its occurrence count.
type Entry struct {
	Key   string
	Count uint64
}

// Field is a single INFO key/value pair, e.g. errorstat_SEARCH_LIMIT / count=3.
type Field struct {
	Key   string
	Value string
}

// Snapshot is a read-only view of a Registry.
type Snapshot struct {
	Entries           []Entry
	TotalErrorReplies uint64
	Dropped           uint64
}

// Count returns the count for key in the snapshot.
func (s Snapshot) Count(key string) uint64 {
	for _, e := range s.Entries {
		if e.Key == key {
			return e.Count
		}
	}
	return 0
}

// Map returns the entries as a key -> count map.
func (s Snapshot) Map() map[string]uint64 {
	m := make(map[string]uint64, len(s.Entries))
	for _, e := range s.Entries {
		m[e.Key] = e.Count
	}
	return m
}

// Fields renders the entries as INFO key/value pairs.
func (s Snapshot) Fields() []Field {
	out := make([]Field, len(s.Entries))
	for i, e := range s.Entries {
		out[i] = Field{
			Key:   KeyPrefix + e.Key,
			Value: CountPrefix + strconv.FormatUint(e.Count, 10),
		}
	}
	return out
}

// Lines renders one errorstat_<KEY>:count=<N> line per entry.
func (s Snapshot) Lines() []string {
	out := make([]string, len(s.Entries))
	for i, f := range s.Fields() {
		out[i] = f.Key + ":" + f.Value
	}
	return out
}

// KeyFromMessage derives the statistics key from a raw error reply that was
// not classified, e.g. "ERR unknown command" -> "ERR". The key is the first
// word without a trailing colon; messages that do not start with an
// upper-case code are counted as ERR.
func KeyFromMessage(msg string) string {
	word, _, _ := strings.Cut(msg, " ")
	word = strings.TrimSuffix(word, ":")
	if word == "" {
		return "ERR"
	}
	for _, r := range word {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') && r != '_' {
			return "ERR"
		}
	}
	return word
}

// ParseInfo extracts the errorstat_<KEY>:count=<N> lines from an INFO
// reply. Other lines and malformed counts are skipped.
func ParseInfo(info string) map[string]uint64 {
	out := make(map[string]uint64)
	for _, line := range strings.Split(info, "\n") {
		line = strings.TrimSpace(line)
		rest, ok := strings.CutPrefix(line, KeyPrefix)
		if !ok {
			continue
		}
		key, value, ok := strings.Cut(rest, ":")
		if !ok || key == "" {
			continue
		}
		// Redis 7 may append further attributes after the count.
		value, _, _ = strings.Cut(value, ",")
		n, err := strconv.ParseUint(strings.TrimPrefix(value, CountPrefix), 10, 64)
		if err != nil {
			continue
		}
		out[key] = n
	}
	return out
}
