package pipeline

import (
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"country-borders/internal/config"
	"country-borders/internal/engine"
	"country-borders/internal/geo"
	"country-borders/internal/logger"
	"country-borders/internal/output"
	"country-borders/internal/store"
	"country-borders/internal/utils"
)

const seedCSV = `CountryId,Name,Alpha2,Alpha3,AffiliationId
1,France,FR,FRA,10
2,Germany,DE,DEU,10
`

func placemark(code, name string, rings ...string) string {
	var b strings.Builder
	b.WriteString(`<Placemark><ExtendedData><SchemaData>`)
	b.WriteString(`<SimpleData name="FID">0</SimpleData>`)
	b.WriteString(`<SimpleData name="COUNTRY">` + name + `</SimpleData>`)
	b.WriteString(`<SimpleData name="ISO">` + code + `</SimpleData>`)
	b.WriteString(`</SchemaData></ExtendedData><MultiGeometry>`)
	for _, r := range rings {
		b.WriteString(`<Polygon><outerBoundaryIs><LinearRing><coordinates>` + r + `</coordinates></LinearRing></outerBoundaryIs></Polygon>`)
	}
	b.WriteString(`</MultiGeometry></Placemark>`)
	return b.String()
}

func world() string {
	return `<?xml version="1.0" encoding="UTF-8"?><kml xmlns="http://www.opengis.net/kml/2.2"><Document>` +
		placemark("FR", "France",
			"0,0,0 0,1,0 1,1,0 1,0,0 0,0,0",
			"1,0,0 1,1,0 2,1,0 2,0,0 1,0,0",
			"5,5,0 5,x,0 6,6,0 6,5,0 5,5,0",
		) +
		placemark("DE", "Germany", "10,50 10,51 11,51 11,50 10,50") +
		placemark("ZZ", "Atlantis", "-30,0 -30,1 -29,1 -29,0 -30,0") +
		placemark("XX", "Nowhere", "0,0 1,1 2,2") +
		`</Document></kml>`
}

func setup(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Config{
		DataDir:        dir,
		SplitCode:      "RU",
		SplitMinPoints: 100,
		Tolerance:      geo.DefaultTolerance,
		CodeField:      "ISO",
		NameField:      "COUNTRY",
		CodeIndex:      2,
		NameIndex:      1,
		GeoJSONPath:    filepath.Join(dir, "out.geojson"),
	}
	require.NoError(t, cfg.Resolve())
	require.NoError(t, os.WriteFile(cfg.CountriesPath, []byte(seedCSV), 0o644))
	require.NoError(t, os.WriteFile(cfg.KMLPath, []byte(world()), 0o644))
	return cfg
}

func readRows(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	recs, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return recs
}

func TestRunEndToEnd(t *testing.T) {
	cfg := setup(t)
	db, err := utils.OpenSQLite(":memory:")
	require.NoError(t, err)
	sink, err := store.AttachSQLite(db)
	require.NoError(t, err)
	defer sink.Close()

	e := engine.NewGEOS()
	r := &Runner{Config: cfg, Engine: e, Sink: sink, Log: logger.Discard()}
	st, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, st.Placemarks)
	assert.Equal(t, 2, st.RingsSkipped)
	assert.Equal(t, 2, st.Outcomes[output.Written])
	assert.Equal(t, 1, st.Outcomes[output.SkippedNoReference])
	assert.Equal(t, 1, st.Outcomes[output.SkippedNoGeometry])
	assert.NotEmpty(t, st.Digest)

	recs := readRows(t, cfg.OutputPath)
	require.Len(t, recs, 3)
	assert.Equal(t, output.Header, recs[0])
	assert.Equal(t, []string{"1", "France", "FR", "FRA", "10"}, recs[1][:5])
	assert.Equal(t, []string{"2", "Germany", "DE", "DEU", "10"}, recs[2][:5])

	fr, err := e.ParseWKT(recs[1][5])
	require.NoError(t, err)
	want, err := e.ParseWKT("POLYGON((0 0,0 1,2 1,2 0,0 0))")
	require.NoError(t, err)
	assert.True(t, e.Equal(want, fr))

	de, err := e.ParseWKT(recs[2][5])
	require.NoError(t, err)
	assert.InDelta(t, 1.0, e.Area(de), 1e-12)

	ctx := context.Background()
	n, err := sink.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	rec, err := sink.Get(ctx, "ZZ")
	require.NoError(t, err)
	assert.Equal(t, "Atlantis", rec.Name)

	gj, err := os.ReadFile(cfg.GeoJSONPath)
	require.NoError(t, err)
	assert.Contains(t, string(gj), `"FeatureCollection"`)
	assert.Contains(t, string(gj), `"DEU"`)
}

func TestRunIsRepeatable(t *testing.T) {
	cfg := setup(t)
	r := &Runner{Config: cfg, Engine: engine.NewGEOS(), Log: logger.Discard()}
	first, err := r.Run(context.Background())
	require.NoError(t, err)
	second, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first.Digest, second.Digest)
}

func TestRunThresholdDropsSmallCountries(t *testing.T) {
	cfg := setup(t)
	cfg.MinSize = output.DefaultMinSize
	r := &Runner{Config: cfg, Engine: engine.NewGEOS(), Log: logger.Discard()}
	st, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, st.Outcomes[output.Written])
	assert.Equal(t, 3, st.Outcomes[output.SkippedBelowThreshold])
	assert.Len(t, readRows(t, cfg.OutputPath), 1)
}

func TestRunMissingInput(t *testing.T) {
	cfg := setup(t)
	require.NoError(t, os.Remove(cfg.KMLPath))
	r := &Runner{Config: cfg, Engine: engine.NewGEOS(), Log: logger.Discard()}
	_, err := r.Run(context.Background())
	assert.True(t, errors.Is(err, config.ErrFileMissing))
	_, statErr := os.Stat(cfg.OutputPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunBadKML(t *testing.T) {
	cfg := setup(t)
	require.NoError(t, os.WriteFile(cfg.KMLPath, []byte("<kml><Document></kml>"), 0o644))
	r := &Runner{Config: cfg, Engine: engine.NewGEOS(), Log: logger.Discard()}
	_, err := r.Run(context.Background())
	assert.ErrorContains(t, err, "read kml")
}

func TestRunCancelled(t *testing.T) {
	cfg := setup(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := &Runner{Config: cfg, Engine: engine.NewGEOS(), Log: logger.Discard()}
	_, err := r.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
