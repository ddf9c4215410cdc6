package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/searchd/internal/errorstats"
)

// Snapshotter is the read side of the error statistics registry.
type Snapshotter interface {
	Snapshot() errorstats.Snapshot
}

// ErrorStatsCollector exports the error statistics registry at scrape time.
// The registry stays the source of truth, so CONFIG RESETSTAT is reflected
// on the next scrape.
type ErrorStatsCollector struct {
	source  Snapshotter
	perCode *prometheus.Desc
	total   *prometheus.Desc
	dropped *prometheus.Desc
}

// NewErrorStatsCollector creates a collector over source.
func NewErrorStatsCollector(source Snapshotter) *ErrorStatsCollector {
	return &ErrorStatsCollector{
		source: source,
		perCode: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "errorstat_total"),
			"Error replies by error code",
			[]string{"code"}, nil,
		),
		total: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "error_replies_total"),
			"Total error replies",
			nil, nil,
		),
		dropped: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "errorstat_dropped_total"),
			"Error replies not attributed to a code because the table was full",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *ErrorStatsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.perCode
	ch <- c.total
	ch <- c.dropped
}

// Collect implements prometheus.Collector.
func (c *ErrorStatsCollector) Collect(ch chan<- prometheus.Metric) {
	snap := c.source.Snapshot()
	for _, e := range snap.Entries {
		ch <- prometheus.MustNewConstMetric(c.perCode, prometheus.CounterValue, float64(e.Count), e.Key)
	}
	ch <- prometheus.MustNewConstMetric(c.total, prometheus.CounterValue, float64(snap.TotalErrorReplies))
	ch <- prometheus.MustNewConstMetric(c.dropped, prometheus.CounterValue, float64(snap.Dropped))
}
