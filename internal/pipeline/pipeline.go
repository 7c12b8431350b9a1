// 包 pipeline：一次完整运行（参考表 → KML → 逐国合并 → 过滤输出）
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"country-borders/internal/assemble"
	"country-borders/internal/config"
	"country-borders/internal/country"
	"country-borders/internal/engine"
	"country-borders/internal/kml"
	"country-borders/internal/metrics"
	"country-borders/internal/output"
	"country-borders/internal/store"
)

// Stats：运行汇总
type Stats struct {
	Placemarks    int
	Rings         int
	RingsSkipped  int
	UnionFailures int
	Outcomes      map[output.Outcome]int
	Digest        string
	Duration      time.Duration
}

// Runner：顺序处理器，一个地标完整处理完毕后才处理下一个
type Runner struct {
	Config config.Config
	Engine engine.Engine
	Sink   store.Sink
	Log    *slog.Logger
}

// Run：执行一次运行
// 约束：参考表/KML 缺失、KML 文档解析失败、输出文件无法创建为致命错误；单环与单国错误只记录并继续
func (r *Runner) Run(ctx context.Context) (st Stats, err error) {
	start := time.Now()
	st.Outcomes = make(map[output.Outcome]int)
	cfg := r.Config
	l := r.Log
	if l == nil {
		l = slog.Default()
	}
	defer func() {
		st.Duration = time.Since(start)
		metrics.RunDurationSeconds.Set(st.Duration.Seconds())
	}()

	if err := cfg.Validate(); err != nil {
		return st, err
	}

	l.Info("countries_load_begin", "path", cfg.CountriesPath)
	countries, err := country.LoadFile(cfg.CountriesPath)
	if err != nil {
		return st, fmt.Errorf("load countries: %w", err)
	}
	l.Info("countries_load_done", "count", countries.Len())

	l.Info("kml_read_begin", "path", cfg.KMLPath)
	placemarks, err := kml.ReadFile(cfg.KMLPath, kml.Fields{
		CodeName:  cfg.CodeField,
		NameName:  cfg.NameField,
		CodeIndex: cfg.CodeIndex,
		NameIndex: cfg.NameIndex,
	})
	if err != nil {
		return st, fmt.Errorf("read kml: %w", err)
	}
	l.Info("kml_read_done", "placemarks", len(placemarks))

	f, err := os.Create(cfg.OutputPath)
	if err != nil {
		return st, fmt.Errorf("create output: %w", err)
	}
	defer f.Close()

	w, err := output.NewWriter(f, countries, r.Sink, l)
	if err != nil {
		return st, fmt.Errorf("write header: %w", err)
	}
	w.MinSize = cfg.MinSize
	if cfg.PersistTimeout > 0 {
		w.PersistTimeout = cfg.PersistTimeout
	}
	var gj *output.GeoJSONWriter
	if cfg.GeoJSONPath != "" {
		gj = output.NewGeoJSONWriter()
		w.WithGeoJSON(gj)
	}
	// 异常退出路径上也刷出已写入的行
	defer func() {
		if ferr := w.Flush(); ferr != nil && err == nil {
			err = fmt.Errorf("flush output: %w", ferr)
		}
	}()

	asm := assemble.New(r.Engine, cfg.Tolerance, l)
	asm.SplitCode = cfg.SplitCode
	if cfg.SplitMinPoints > 0 {
		asm.SplitMinPoints = cfg.SplitMinPoints
	}
	if cfg.FlatCoords {
		asm.Form = assemble.FormFlat
	}

	for _, pm := range placemarks {
		if err := ctx.Err(); err != nil {
			return st, err
		}
		st.Placemarks++
		metrics.PlacemarksTotal.Inc()
		l.Info("country_parse", "code", pm.Code, "name", pm.Name, "rings", len(pm.Rings))

		res := asm.Assemble(pm.Code, pm.Rings)
		st.Rings += res.Rings
		st.RingsSkipped += res.Skipped
		st.UnionFailures += res.UnionFailures

		st.Outcomes[w.Emit(ctx, pm.Code, pm.Name, res.Geometry)]++
	}

	if err := w.Flush(); err != nil {
		return st, fmt.Errorf("flush output: %w", err)
	}
	if err := f.Close(); err != nil {
		return st, fmt.Errorf("close output: %w", err)
	}
	if gj != nil {
		if err := writeGeoJSON(cfg.GeoJSONPath, gj); err != nil {
			return st, fmt.Errorf("write geojson: %w", err)
		}
		l.Info("geojson_written", "path", cfg.GeoJSONPath, "features", gj.Len())
	}
	if d, derr := output.Digest(cfg.OutputPath); derr == nil {
		st.Digest = d
		l.Info("output_digest", "path", cfg.OutputPath, "blake3", d)
	}
	return st, nil
}

func writeGeoJSON(path string, gj *output.GeoJSONWriter) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := gj.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
