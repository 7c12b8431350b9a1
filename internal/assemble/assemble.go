// 包 assemble：将一个国家的全部外环合并为单一几何，含跨日界线国家的分半球累积
package assemble

import (
	"log/slog"

	"github.com/twpayne/go-geom"

	"country-borders/internal/engine"
	"country-borders/internal/geo"
	"country-borders/internal/metrics"
)

const (
	// DefaultSplitCode：需要按经度符号分半球累积的国家代码
	DefaultSplitCode = "RU"
	// DefaultSplitMinPoints：分半球国家中参与合并的环最少点数
	DefaultSplitMinPoints = 100
)

// CoordForm：坐标文本形态
type CoordForm int

const (
	// FormKML：KML coordinates 块（空白/逗号分隔）
	FormKML CoordForm = iota
	// FormFlat：单行逗号拼接，首尾记号冗余
	FormFlat
)

// Assembler：国家几何合并器
type Assembler struct {
	Engine         engine.Engine
	Rings          *geo.RingBuilder
	SplitCode      string
	SplitMinPoints int
	Form           CoordForm
	Log            *slog.Logger
}

// New：默认参数的合并器
func New(e engine.Engine, tol float64, log *slog.Logger) *Assembler {
	return &Assembler{
		Engine:         e,
		Rings:          geo.NewRingBuilder(tol, log),
		SplitCode:      DefaultSplitCode,
		SplitMinPoints: DefaultSplitMinPoints,
		Log:            log,
	}
}

// Result：单个国家的合并结果
// 约束：Geometry 为空表示没有任何可用环；分半球国家的 Geometry 恒为 Left
type Result struct {
	Code          string
	Geometry      engine.Geometry
	Primary       engine.Geometry
	Left          engine.Geometry
	Right         engine.Geometry
	Rings         int
	Skipped       int
	UnionFailures int
	// Bounds：已并入环的外包框；没有可用环时为 nil
	Bounds *geom.Bounds
}

type accumulator struct {
	name string
	g    engine.Geometry
}

// Assemble：按输入顺序解析、构建并累积每个环
// 约束：单环失败（解析/点数/引擎拒绝/并集失败）只跳过该环，不中断国家
func (a *Assembler) Assemble(code string, rings []string) Result {
	res := Result{Code: code}
	primary := &accumulator{name: "primary"}
	left := &accumulator{name: "left"}
	right := &accumulator{name: "right"}
	split := a.SplitCode != "" && code == a.SplitCode
	bounds := geom.NewBounds(geom.XY)

	for idx, raw := range rings {
		pts, err := a.parse(raw)
		if err != nil {
			a.log().Warn("ring_parse_error", "code", code, "ring", idx, "err", err)
			metrics.RingsSkippedTotal.WithLabelValues("parse_error").Inc()
			res.Skipped++
			continue
		}
		if split && len(pts) < a.SplitMinPoints {
			a.log().Debug("split_ring_ignored", "code", code, "ring", idx, "points", len(pts))
			metrics.RingsSkippedTotal.WithLabelValues("split_small").Inc()
			res.Skipped++
			continue
		}
		poly, ok := a.Rings.Build(code, raw, pts)
		if !ok {
			metrics.RingsSkippedTotal.WithLabelValues("too_short").Inc()
			res.Skipped++
			continue
		}
		g, err := a.Engine.Polygon(poly)
		if err != nil {
			a.log().Warn("polygon_rejected", "code", code, "ring", idx, "err", err)
			metrics.RingsSkippedTotal.WithLabelValues("engine_rejected").Inc()
			res.Skipped++
			continue
		}

		acc := primary
		if split {
			if geo.FirstLon(poly) > 0 {
				acc = left
			} else {
				acc = right
			}
		}
		if a.fold(acc, code, idx, g) {
			res.Rings++
			bounds.Extend(poly)
			metrics.RingsBuiltTotal.Inc()
		} else {
			res.UnionFailures++
		}
	}

	res.Primary, res.Left, res.Right = primary.g, left.g, right.g
	if split {
		res.Geometry = left.g
	} else {
		res.Geometry = primary.g
	}
	if res.Rings > 0 {
		res.Bounds = bounds
	}
	a.log().Debug("assemble_done", "code", code, "rings", res.Rings, "skipped", res.Skipped, "union_failures", res.UnionFailures, "split", split, "bbox", bbox(res.Bounds))
	return res
}

// fold：首个多边形直接成为累积值，其后取并集；并集失败时保留原值并告警
func (a *Assembler) fold(acc *accumulator, code string, idx int, g engine.Geometry) bool {
	if acc.g == nil {
		acc.g = g
		return true
	}
	u, err := a.Engine.TryUnion(acc.g, g)
	if err != nil {
		a.log().Warn("union_failed", "code", code, "ring", idx, "accumulator", acc.name, "err", err)
		metrics.UnionFailuresTotal.WithLabelValues(acc.name).Inc()
		return false
	}
	acc.g = u
	return true
}

// bbox：minLon,minLat,maxLon,maxLat，用于日志
func bbox(b *geom.Bounds) []float64 {
	if b == nil {
		return nil
	}
	return []float64{b.Min(0), b.Min(1), b.Max(0), b.Max(1)}
}

func (a *Assembler) parse(raw string) ([]geo.Point, error) {
	if a.Form == FormFlat {
		return geo.ParseFlatCoordinates(raw)
	}
	return geo.ParseCoordinates(raw)
}

func (a *Assembler) log() *slog.Logger {
	if a.Log == nil {
		return slog.Default()
	}
	return a.Log
}
