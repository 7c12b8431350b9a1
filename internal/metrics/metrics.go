package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

var (
	PlacemarksTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "borders_placemarks_total",
		Help: "Total number of country placemarks read from the KML document",
	})
	RingsBuiltTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "borders_rings_built_total",
		Help: "Total number of rings accepted into an accumulator",
	})
	RingsSkippedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "borders_rings_skipped_total",
		Help: "Total number of rings skipped by reason",
	}, []string{"reason"})
	UnionFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "borders_union_failures_total",
		Help: "Total number of union operations rejected by the geometry engine",
	}, []string{"accumulator"})
	CountriesWrittenTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "borders_countries_written_total",
		Help: "Total number of country rows written to the output file",
	})
	CountriesSkippedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "borders_countries_skipped_total",
		Help: "Total number of countries without an output row by reason",
	}, []string{"reason"})
	PersistTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "borders_persist_total",
		Help: "Persistence attempts by target and status",
	}, []string{"target", "status"})
	RunDurationSeconds = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "borders_run_duration_seconds",
		Help: "Wall time of the last run in seconds",
	})
	WKTLength = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "borders_wkt_length",
		Help:    "Serialized WKT length of assembled country geometries",
		Buckets: []float64{1000, 5000, 10000, 22000, 50000, 100000, 500000, 1000000},
	})
)

func init() {
	prometheus.MustRegister(PlacemarksTotal)
	prometheus.MustRegister(RingsBuiltTotal)
	prometheus.MustRegister(RingsSkippedTotal)
	prometheus.MustRegister(UnionFailuresTotal)
	prometheus.MustRegister(CountriesWrittenTotal)
	prometheus.MustRegister(CountriesSkippedTotal)
	prometheus.MustRegister(PersistTotal)
	prometheus.MustRegister(RunDurationSeconds)
	prometheus.MustRegister(WKTLength)
}

// 文档注释：将已注册指标写入 node_exporter textfile 目录下的文件
// 约束：path 为空时不做任何事
func WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}

// 文档注释：推送到 Pushgateway（批处理任务没有可抓取的监听端口）
// 约束：url 为空时不做任何事；job 为 Pushgateway 分组名
func Push(url, job string) error {
	if url == "" {
		return nil
	}
	return push.New(url, job).Gatherer(prometheus.DefaultGatherer).Push()
}
