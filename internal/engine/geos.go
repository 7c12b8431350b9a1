package engine

import (
	"fmt"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geos"
)

// GEOS：基于 go-geos 的引擎实现
type GEOS struct{}

// NewGEOS：使用 go-geos 默认上下文
func NewGEOS() *GEOS { return &GEOS{} }

// Geom：GEOS 几何句柄
type Geom struct {
	g *geos.Geom
}

// Raw：底层 go-geos 几何
func (g *Geom) Raw() *geos.Geom { return g.g }

// WKT：序列化为 WKT 文本
func (g *Geom) WKT() (s string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recovered("wkt", r)
		}
	}()
	return g.g.ToWKT(), nil
}

// GeoJSON：序列化为 GeoJSON geometry 对象
func (g *Geom) GeoJSON() (s string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recovered("geojson", r)
		}
	}()
	return g.g.ToGeoJSON(0), nil
}

// Polygon：由已闭合的单外环多边形构造 GEOS 几何
// 约束：外环首尾不一致属于调用方程序错误，直接 panic
func (e *GEOS) Polygon(p *geom.Polygon) (out Geometry, err error) {
	coordss := make([][][]float64, 0, p.NumLinearRings())
	for i := 0; i < p.NumLinearRings(); i++ {
		fc := p.LinearRing(i).FlatCoords()
		stride := p.Stride()
		n := len(fc) / stride
		if n == 0 || fc[0] != fc[(n-1)*stride] || fc[1] != fc[(n-1)*stride+1] {
			panic(fmt.Sprintf("engine: ring %d is not closed, first and last point differ", i))
		}
		ring := make([][]float64, 0, n)
		for j := 0; j < n; j++ {
			ring = append(ring, []float64{fc[j*stride], fc[j*stride+1]})
		}
		coordss = append(coordss, ring)
	}
	defer func() {
		if r := recover(); r != nil {
			err = recovered("polygon", r)
		}
	}()
	return &Geom{g: geos.NewPolygon(coordss)}, nil
}

// TryUnion：返回 a∪b；引擎失败时返回 UnionError，输入保持不变
func (e *GEOS) TryUnion(a, b Geometry) (out Geometry, err error) {
	ga, ok := a.(*Geom)
	if !ok {
		return nil, ErrForeignGeometry
	}
	gb, ok := b.(*Geom)
	if !ok {
		return nil, ErrForeignGeometry
	}
	defer func() {
		if r := recover(); r != nil {
			err = recovered("union", r)
		}
	}()
	u := ga.g.Union(gb.g)
	if u == nil {
		return nil, &UnionError{Op: "union", Err: fmt.Errorf("empty result")}
	}
	return &Geom{g: u}, nil
}

// ParseWKT：由 WKT 文本解析几何
func (e *GEOS) ParseWKT(s string) (Geometry, error) {
	g, err := geos.NewGeomFromWKT(s)
	if err != nil {
		return nil, err
	}
	return &Geom{g: g}, nil
}

// Equal：拓扑相等（点集相同，与顶点顺序无关）
func (e *GEOS) Equal(a, b Geometry) bool {
	ga, ok1 := a.(*Geom)
	gb, ok2 := b.(*Geom)
	if !ok1 || !ok2 {
		return false
	}
	return ga.g.Equals(gb.g)
}

// Area：平面面积（经纬度单位）
func (e *GEOS) Area(g Geometry) float64 {
	if gg, ok := g.(*Geom); ok {
		return gg.g.Area()
	}
	return 0
}
