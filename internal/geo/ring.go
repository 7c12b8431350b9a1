package geo

import (
	"log/slog"

	"github.com/twpayne/go-geom"
)

// MinRingPoints：可用环的最少点数（4 个不同点 + 闭合点）
const MinRingPoints = 5

// 日志中原始坐标文本的最大保留长度
const rawPreviewLen = 120

// RingBuilder：校验并闭合单个环，产出 go-geom 多边形
type RingBuilder struct {
	Tolerance float64
	MinPoints int
	Log       *slog.Logger
}

// NewRingBuilder：按给定容差构造；tol<=0 时使用 DefaultTolerance
func NewRingBuilder(tol float64, log *slog.Logger) *RingBuilder {
	if tol <= 0 {
		tol = DefaultTolerance
	}
	return &RingBuilder{Tolerance: tol, MinPoints: MinRingPoints, Log: log}
}

// Build：点数不足时记录告警并返回 ok=false；否则闭合环并返回单外环多边形
// 约束：已闭合（容差内）的环不追加点，末点对齐首点以保证精确闭合
func (b *RingBuilder) Build(code, raw string, pts []Point) (*geom.Polygon, bool) {
	if len(pts) < b.MinPoints {
		if b.Log != nil {
			b.Log.Warn("ring_too_short", "code", code, "points", len(pts), "raw", preview(raw))
		}
		return nil, false
	}
	ring := Close(pts, b.Tolerance)
	flat := ring.Flat()
	return geom.NewPolygonFlat(geom.XY, flat, []int{len(flat)}), true
}

// Close：返回闭合后的环副本
func Close(pts []Point, tol float64) Ring {
	ring := make(Ring, len(pts), len(pts)+1)
	copy(ring, pts)
	if len(ring) == 0 {
		return ring
	}
	if ring.Closed(tol) {
		ring[len(ring)-1] = ring[0]
		return ring
	}
	return append(ring, ring[0])
}

// FirstLon：多边形外环首点经度
func FirstLon(p *geom.Polygon) float64 {
	fc := p.FlatCoords()
	if len(fc) == 0 {
		return 0
	}
	return fc[0]
}

// RingFromPolygon：取回多边形外环点序列
func RingFromPolygon(p *geom.Polygon) Ring {
	fc := p.FlatCoords()
	stride := p.Stride()
	if p.NumLinearRings() > 0 {
		fc = p.LinearRing(0).FlatCoords()
	}
	out := make(Ring, 0, len(fc)/stride)
	for i := 0; i+1 < len(fc); i += stride {
		out = append(out, Point{Lon: fc[i], Lat: fc[i+1]})
	}
	return out
}

func preview(s string) string {
	if len(s) <= rawPreviewLen {
		return s
	}
	return s[:rawPreviewLen] + "..."
}
