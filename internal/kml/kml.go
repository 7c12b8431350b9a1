// 包 kml：读取国家边界 KML，展开为按文档顺序排列的国家地标
package kml

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
	"github.com/ulikunitz/xz"
)

// ErrNoDocument：缺少 kml 根元素
var ErrNoDocument = errors.New("kml: no kml document element")

// 解析前移除的默认命名空间声明
var namespaceDecls = []string{
	`xmlns="http://earth.google.com/kml/2.0"`,
	`xmlns='http://earth.google.com/kml/2.0'`,
	`xmlns="http://earth.google.com/kml/2.1"`,
	`xmlns='http://earth.google.com/kml/2.1'`,
	`xmlns="http://www.opengis.net/kml/2.2"`,
	`xmlns='http://www.opengis.net/kml/2.2'`,
}

var (
	exprPlacemark  = xpath.MustCompile(".//Placemark")
	exprSimpleData = xpath.MustCompile("ExtendedData/SchemaData/SimpleData")
	exprPolygon    = xpath.MustCompile("Polygon | MultiGeometry//Polygon")
	exprOuterRing  = xpath.MustCompile("outerBoundaryIs/LinearRing/coordinates")
)

// Placemark：一个国家地标；Rings 为各多边形外环的原始坐标文本
type Placemark struct {
	Code  string
	Name  string
	Rings []string
}

// Fields：SimpleData 字段定位方式；名称优先，找不到时回退到位置下标
type Fields struct {
	CodeName  string
	NameName  string
	CodeIndex int
	NameIndex int
}

// DefaultFields：UIA World Countries Boundaries 数据集（FID, COUNTRY, ISO, ...）
var DefaultFields = Fields{CodeName: "ISO", NameName: "COUNTRY", CodeIndex: 2, NameIndex: 1}

// ReadFile：打开并解析 KML 文件；.xz 后缀按 xz 解压
func ReadFile(path string, f Fields) ([]Placemark, error) {
	r, closeFn, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer closeFn()
	return Read(r, f)
}

// Open：返回 KML 内容读取器
func Open(path string) (io.Reader, func() error, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	if !strings.HasSuffix(strings.ToLower(path), ".xz") {
		return fh, fh.Close, nil
	}
	zr, err := xz.NewReader(fh)
	if err != nil {
		fh.Close()
		return nil, nil, fmt.Errorf("open xz stream: %w", err)
	}
	return zr, fh.Close, nil
}

// Read：解析 KML 文本并提取地标
// 约束：文档级解析失败返回错误（调用方视为致命）；无坐标的多边形被忽略
func Read(r io.Reader, f Fields) ([]Placemark, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	for _, ns := range namespaceDecls {
		data = bytes.ReplaceAll(data, []byte(ns), nil)
	}
	root, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse kml: %w", err)
	}
	doc := xmlquery.FindOne(root, "/kml/Document")
	if doc == nil {
		doc = xmlquery.FindOne(root, "/kml")
	}
	if doc == nil {
		return nil, ErrNoDocument
	}

	var out []Placemark
	for _, pm := range xmlquery.QuerySelectorAll(doc, exprPlacemark) {
		out = append(out, readPlacemark(pm, f))
	}
	return out, nil
}

func readPlacemark(pm *xmlquery.Node, f Fields) Placemark {
	data := xmlquery.QuerySelectorAll(pm, exprSimpleData)
	p := Placemark{
		Code: simpleData(data, f.CodeName, f.CodeIndex),
		Name: simpleData(data, f.NameName, f.NameIndex),
	}
	for _, poly := range xmlquery.QuerySelectorAll(pm, exprPolygon) {
		c := xmlquery.QuerySelector(poly, exprOuterRing)
		if c == nil {
			continue
		}
		p.Rings = append(p.Rings, strings.TrimSpace(c.InnerText()))
	}
	return p
}

func simpleData(nodes []*xmlquery.Node, name string, index int) string {
	if name != "" {
		for _, n := range nodes {
			if strings.EqualFold(n.SelectAttr("name"), name) {
				return strings.TrimSpace(n.InnerText())
			}
		}
	}
	if index >= 0 && index < len(nodes) {
		return strings.TrimSpace(nodes[index].InnerText())
	}
	return ""
}
