// 包 output：合并结果过滤与输出（CSV 行 + 持久化，可选 GeoJSON）
package output

import (
	"context"
	"encoding/csv"
	"io"
	"log/slog"
	"strconv"
	"time"

	"country-borders/internal/country"
	"country-borders/internal/engine"
	"country-borders/internal/metrics"
	"country-borders/internal/store"
)

// DefaultMinSize：WKT 文本长度阈值，严格大于才输出
const DefaultMinSize = 22000

// Header：输出 CSV 表头
var Header = []string{"CountryId", "Name", "Alpha2", "Alpha3", "AffiliationId", "CountryBoundaries"}

// Outcome：单个国家的输出结果
type Outcome int

const (
	Written Outcome = iota
	SkippedNoGeometry
	SkippedBelowThreshold
	SkippedNoReference
	SkippedSerialize
)

func (o Outcome) String() string {
	switch o {
	case Written:
		return "written"
	case SkippedNoGeometry:
		return "no_geometry"
	case SkippedBelowThreshold:
		return "below_threshold"
	case SkippedNoReference:
		return "no_reference"
	case SkippedSerialize:
		return "serialize_error"
	}
	return "unknown"
}

// Writer：持有整个运行期间的 CSV 输出与持久化目标
type Writer struct {
	csv            *csv.Writer
	countries      *country.Set
	sink           store.Sink
	geojson        *GeoJSONWriter
	MinSize        int
	PersistTimeout time.Duration
	Log            *slog.Logger
}

// NewWriter：写出表头；sink 为 nil 时不持久化
func NewWriter(w io.Writer, countries *country.Set, sink store.Sink, log *slog.Logger) (*Writer, error) {
	if sink == nil {
		sink = store.Nop{}
	}
	if log == nil {
		log = slog.Default()
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return nil, err
	}
	return &Writer{
		csv:            cw,
		countries:      countries,
		sink:           sink,
		MinSize:        DefaultMinSize,
		PersistTimeout: 10 * time.Second,
		Log:            log,
	}, nil
}

// WithGeoJSON：同时收集 GeoJSON 要素
func (w *Writer) WithGeoJSON(g *GeoJSONWriter) *Writer {
	w.geojson = g
	return w
}

// Qualifies：尺寸代理值严格大于阈值
func (w *Writer) Qualifies(size int) bool { return size > w.MinSize }

// Emit：过滤并输出一个国家；CSV 行与持久化作为同一事件处理
// 约束：持久化失败只记录错误，不影响 CSV 行，也不中断批次
func (w *Writer) Emit(ctx context.Context, code, name string, g engine.Geometry) Outcome {
	if g == nil {
		metrics.CountriesSkippedTotal.WithLabelValues(SkippedNoGeometry.String()).Inc()
		return SkippedNoGeometry
	}
	wkt, err := g.WKT()
	if err != nil {
		w.Log.Error("wkt_error", "code", code, "err", err)
		metrics.CountriesSkippedTotal.WithLabelValues(SkippedSerialize.String()).Inc()
		return SkippedSerialize
	}
	metrics.WKTLength.Observe(float64(len(wkt)))
	if !w.Qualifies(len(wkt)) {
		w.Log.Debug("country_below_threshold", "code", code, "size", len(wkt), "min", w.MinSize)
		metrics.CountriesSkippedTotal.WithLabelValues(SkippedBelowThreshold.String()).Inc()
		return SkippedBelowThreshold
	}

	w.persist(ctx, code, name, wkt)

	c, ok := w.countries.Lookup(code)
	if !ok {
		w.Log.Warn("reference_missing", "code", code, "name", name)
		metrics.CountriesSkippedTotal.WithLabelValues(SkippedNoReference.String()).Inc()
		return SkippedNoReference
	}
	row := []string{
		strconv.Itoa(c.ID),
		c.Name,
		c.Alpha2,
		c.Alpha3,
		strconv.Itoa(c.AffiliationID),
		wkt,
	}
	if err := w.csv.Write(row); err != nil {
		w.Log.Error("csv_write_error", "code", code, "err", err)
		metrics.CountriesSkippedTotal.WithLabelValues(SkippedSerialize.String()).Inc()
		return SkippedSerialize
	}
	if w.geojson != nil {
		if err := w.geojson.Add(c, g); err != nil {
			w.Log.Warn("geojson_add_error", "code", code, "err", err)
		}
	}
	metrics.CountriesWrittenTotal.Inc()
	w.Log.Info("country_written", "code", code, "name", c.Name, "size", len(wkt))
	return Written
}

func (w *Writer) persist(ctx context.Context, code, name, wkt string) {
	if w.PersistTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.PersistTimeout)
		defer cancel()
	}
	if err := w.sink.SaveCountry(ctx, code, name, wkt); err != nil {
		w.Log.Error("persist_error", "code", code, "target", w.sink.Name(), "err", err)
		metrics.PersistTotal.WithLabelValues(w.sink.Name(), "error").Inc()
		return
	}
	metrics.PersistTotal.WithLabelValues(w.sink.Name(), "ok").Inc()
}

// Flush：刷出缓冲并返回写入错误
func (w *Writer) Flush() error {
	w.csv.Flush()
	return w.csv.Error()
}
