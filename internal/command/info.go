package command

import (
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/kailas-cloud/searchd/internal/errorstats"
)

// infoSection renders one "# Title" block of INFO output.
type infoSection struct {
	name   string // lower-case selector
	title  string
	render func(d *Dispatcher) []string
}

var infoSections = []infoSection{
	{name: "server", title: "Server", render: (*Dispatcher).infoServer},
	{name: "clients", title: "Clients", render: (*Dispatcher).infoClients},
	{name: "stats", title: "Stats", render: (*Dispatcher).infoStats},
	{name: "errorstats", title: errorstats.Section, render: (*Dispatcher).infoErrorStats},
	{name: "search", title: "Search", render: (*Dispatcher).infoSearch},
}

// renderInfo builds the INFO reply for the requested sections. No selector,
// "default", "all" and "everything" select every section; unknown
// selectors are ignored.
func (d *Dispatcher) renderInfo(selectors []string) string {
	want := make(map[string]bool, len(selectors))
	all := len(selectors) == 0
	for _, s := range selectors {
		s = strings.ToLower(s)
		switch s {
		case "default", "all", "everything":
			all = true
		}
		want[s] = true
	}

	var b strings.Builder
	for _, sec := range infoSections {
		if !all && !want[sec.name] {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\r\n")
		}
		b.WriteString("# " + sec.title + "\r\n")
		for _, line := range sec.render(d) {
			b.WriteString(line)
			b.WriteString("\r\n")
		}
	}
	return b.String()
}

func kv(key string, value any) string {
	switch v := value.(type) {
	case string:
		return key + ":" + v
	case int:
		return key + ":" + strconv.Itoa(v)
	case int64:
		return key + ":" + strconv.FormatInt(v, 10)
	case uint64:
		return key + ":" + strconv.FormatUint(v, 10)
	default:
		return key + ":"
	}
}

func (d *Dispatcher) infoServer() []string {
	uptime := int64(d.stats.Uptime().Seconds())
	return []string{
		kv("searchd_version", d.cfg.Version),
		kv("searchd_git_sha1", d.cfg.Commit),
		kv("redis_mode", "standalone"),
		kv("os", runtime.GOOS+" "+runtime.GOARCH),
		kv("go_version", runtime.Version()),
		kv("process_id", os.Getpid()),
		kv("tcp_port", d.cfg.Port),
		kv("uptime_in_seconds", uptime),
		kv("uptime_in_days", uptime/86400),
	}
}

func (d *Dispatcher) infoClients() []string {
	return []string{kv("connected_clients", d.stats.ConnectedClients())}
}

func (d *Dispatcher) infoStats() []string {
	return []string{
		kv("total_connections_received", d.stats.ConnectionsReceived()),
		kv("total_commands_processed", d.stats.CommandsProcessed()),
		kv("total_error_replies", d.errors.TotalErrorReplies()),
	}
}

func (d *Dispatcher) infoErrorStats() []string {
	return d.errors.Snapshot().Lines()
}

func (d *Dispatcher) infoSearch() []string {
	return []string{
		kv("search_number_of_indexes", d.catalog.Len()),
		kv("search_max_search_results", d.cfg.MaxSearchResults),
		kv("search_max_aggregate_results", d.cfg.MaxAggregateResults),
		kv("search_default_dialect", d.cfg.DefaultDialect),
		kv("search_max_prefix_expansions", d.cfg.MaxPrefixTerms),
	}
}
