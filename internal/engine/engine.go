// 包 engine：二维几何引擎适配层（GEOS），为边界合并提供构造、并集与文本序列化
package engine

import (
	"errors"
	"fmt"

	"github.com/twpayne/go-geom"
)

// Geometry：引擎持有的不透明几何句柄
type Geometry interface {
	WKT() (string, error)
	GeoJSON() (string, error)
}

// Engine：合并流程依赖的最小能力集
type Engine interface {
	Polygon(p *geom.Polygon) (Geometry, error)
	TryUnion(a, b Geometry) (Geometry, error)
}

// ErrForeignGeometry：传入了其他引擎创建的几何
var ErrForeignGeometry = errors.New("engine: geometry not created by this engine")

// UnionError：引擎拒绝的几何操作（拓扑异常等）
type UnionError struct {
	Op  string
	Err error
}

func (e *UnionError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *UnionError) Unwrap() error { return e.Err }

// recovered：将 GEOS 抛出的 panic 转为 UnionError
func recovered(op string, r any) error {
	if err, ok := r.(error); ok {
		return &UnionError{Op: op, Err: err}
	}
	return &UnionError{Op: op, Err: fmt.Errorf("%v", r)}
}
