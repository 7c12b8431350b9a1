// 国家边界合并工具：KML 国家多边形 → 按国合并 → CSV 与持久化
package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"country-borders/internal/config"
	"country-borders/internal/engine"
	"country-borders/internal/logger"
	"country-borders/internal/metrics"
	"country-borders/internal/pipeline"
	"country-borders/internal/store"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

type cli struct {
	config.Config `embed:""`
	LogLevel      string `name:"log-level" env:"LOG_LEVEL" default:"info" enum:"debug,info,warn,error" help:"Log level."`
	LogFormat     string `name:"log-format" env:"LOG_FORMAT" default:"text" enum:"text,json" help:"Log format."`
}

func main() {
	_ = godotenv.Load(".env")
	if root, err := config.DiscoverRoot(); err == nil {
		_ = godotenv.Load(filepath.Join(root, ".env"))
	}
	var c cli
	kong.Parse(&c,
		kong.Name("kml-borders"),
		kong.Description("Merge KML country boundary polygons into one geometry per country."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
	)
	logger.SetupWriter(os.Stderr, c.LogLevel, c.LogFormat)
	logger.With("run_id", uuid.NewString())
	os.Exit(run(c.Config))
}

func run(cfg config.Config) int {
	l := logger.L()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cfg.Resolve(); err != nil {
		l.Error("config_error", "err", err)
		return 1
	}
	l.Debug("config_paths", "data", cfg.DataDir, "countries", cfg.CountriesPath, "kml", cfg.KMLPath, "out", cfg.OutputPath)

	sink, err := store.Open(ctx, store.Options{
		Target:     cfg.PersistTarget,
		Procedure:  cfg.Procedure,
		SQLitePath: cfg.SQLitePath,
		RedisKey:   cfg.RedisKeyPrefix,
		Migrate:    cfg.Migrate,
	})
	if err != nil {
		l.Error("persist_open_error", "err", err)
		return 1
	}
	defer sink.Close()

	r := &pipeline.Runner{Config: cfg, Engine: engine.NewGEOS(), Sink: sink, Log: l}
	st, err := r.Run(ctx)
	exportMetrics(cfg)
	if err != nil {
		l.Error("run_error", "err", err, "placemarks", st.Placemarks)
		return 1
	}
	l.Info("done",
		"placemarks", st.Placemarks,
		"rings", st.Rings,
		"rings_skipped", st.RingsSkipped,
		"union_failures", st.UnionFailures,
		"outcomes", st.Outcomes,
		"duration", st.Duration,
	)
	return 0
}

func exportMetrics(cfg config.Config) {
	l := logger.L()
	if err := metrics.WriteTextfile(cfg.MetricsFile); err != nil {
		l.Warn("metrics_textfile_error", "path", cfg.MetricsFile, "err", err)
	}
	if err := metrics.Push(cfg.Pushgateway, "kml_borders"); err != nil {
		l.Warn("metrics_push_error", "url", cfg.Pushgateway, "err", err)
	}
}
