// Package enginetest 提供不依赖 GEOS 的引擎替身，记录每次构造与并集调用
package enginetest

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/twpayne/go-geom"

	"country-borders/internal/engine"
)

// Geom：以参与合并的环标识集合表示的几何
type Geom struct {
	Parts   []string
	Padding int
	FailWKT bool
}

func (g *Geom) WKT() (string, error) {
	if g.FailWKT {
		return "", errors.New("fake wkt failure")
	}
	return "FAKE(" + strings.Join(g.Parts, ";") + ")" + strings.Repeat(" ", g.Padding), nil
}

func (g *Geom) GeoJSON() (string, error) {
	return `{"type":"Point","coordinates":[0,0]}`, nil
}

// Engine：环标识为外环首点 "lon lat"
type Engine struct {
	// RejectUnion 返回 true 时本次并集失败
	RejectUnion func(acc, next *Geom) bool
	Polygons    int
	Unions      int
	Failures    int
}

// Key：多边形的环标识
func Key(p *geom.Polygon) string {
	fc := p.FlatCoords()
	return fmt.Sprintf("%g %g", fc[0], fc[1])
}

func (e *Engine) Polygon(p *geom.Polygon) (engine.Geometry, error) {
	e.Polygons++
	return &Geom{Parts: []string{Key(p)}}, nil
}

func (e *Engine) TryUnion(a, b engine.Geometry) (engine.Geometry, error) {
	e.Unions++
	ga, gb := a.(*Geom), b.(*Geom)
	if e.RejectUnion != nil && e.RejectUnion(ga, gb) {
		e.Failures++
		return nil, &engine.UnionError{Op: "union", Err: errors.New("fake topology exception")}
	}
	parts := append(append([]string{}, ga.Parts...), gb.Parts...)
	sort.Strings(parts)
	return &Geom{Parts: parts}, nil
}

// Sized：WKT 长度恰为 n 的几何
func Sized(n int) *Geom {
	g := &Geom{}
	base, _ := g.WKT()
	if n > len(base) {
		g.Padding = n - len(base)
	}
	return g
}
