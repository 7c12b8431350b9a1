// 包 geo：边界环的坐标解析与环构建（经纬度，KML 轴序 lon,lat）
package geo

import "math"

const (
	// DefaultTolerance：点相等判定的默认容差（近似精确）
	DefaultTolerance = 1e-9
	// LegacyTolerance：旧版本使用的粗粒度容差（约 1 度），仅为兼容保留
	LegacyTolerance = 1.0
)

// Point：地理坐标点（WGS84）
type Point struct {
	Lon float64
	Lat float64
}

// Equal：逐轴绝对差严格小于 tol 时视为相等
func (p Point) Equal(o Point, tol float64) bool {
	return math.Abs(p.Lon-o.Lon) < tol && math.Abs(p.Lat-o.Lat) < tol
}

// Ring：有序点序列，闭合后首尾相同
type Ring []Point

// Closed：首尾点在容差内相同
func (r Ring) Closed(tol float64) bool {
	if len(r) == 0 {
		return false
	}
	return r[0].Equal(r[len(r)-1], tol)
}

// Flat：展开为 [lon0, lat0, lon1, lat1, ...]
func (r Ring) Flat() []float64 {
	out := make([]float64, 0, 2*len(r))
	for _, p := range r {
		out = append(out, p.Lon, p.Lat)
	}
	return out
}
