package output

import (
	"io"

	geojson "github.com/paulmach/go.geojson"

	"country-borders/internal/country"
	"country-borders/internal/engine"
)

// GeoJSONWriter：收集已输出国家，结束时写出 FeatureCollection
type GeoJSONWriter struct {
	fc *geojson.FeatureCollection
}

func NewGeoJSONWriter() *GeoJSONWriter {
	return &GeoJSONWriter{fc: geojson.NewFeatureCollection()}
}

// Add：追加一个国家要素，属性为参考表字段
func (g *GeoJSONWriter) Add(c country.Country, geom engine.Geometry) error {
	s, err := geom.GeoJSON()
	if err != nil {
		return err
	}
	gg, err := geojson.UnmarshalGeometry([]byte(s))
	if err != nil {
		return err
	}
	f := geojson.NewFeature(gg)
	f.SetProperty("countryId", c.ID)
	f.SetProperty("name", c.Name)
	f.SetProperty("alpha2", c.Alpha2)
	f.SetProperty("alpha3", c.Alpha3)
	f.SetProperty("affiliationId", c.AffiliationID)
	g.fc.AddFeature(f)
	return nil
}

// Len：已收集的要素数
func (g *GeoJSONWriter) Len() int { return len(g.fc.Features) }

// WriteTo：序列化到 w
func (g *GeoJSONWriter) WriteTo(w io.Writer) (int64, error) {
	b, err := g.fc.MarshalJSON()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(b)
	return int64(n), err
}
