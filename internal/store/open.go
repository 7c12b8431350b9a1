package store

import (
	"context"
	"fmt"
	"strings"

	"country-borders/internal/logger"
	"country-borders/internal/migrate"
	"country-borders/internal/utils"
)

// Options：持久化目标配置
type Options struct {
	Target     string // postgres | sqlite | redis | none
	Procedure  string
	SQLitePath string
	RedisKey   string
	Migrate    bool
}

// Open：按目标打开持久化协作方；连接参数来自环境变量（PG_*、REDIS_*）
// 约束：打开或连通性检查失败视为致命，由调用方终止运行
func Open(ctx context.Context, o Options) (Sink, error) {
	l := logger.L()
	switch strings.ToLower(o.Target) {
	case "", "none":
		l.Info("persist_disabled")
		return Nop{}, nil
	case "postgres", "pg":
		db, err := utils.OpenPostgresFromEnv()
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		if o.Migrate {
			if err := migrate.EnsureSchema(db, o.Procedure); err != nil {
				db.Close()
				return nil, fmt.Errorf("ensure schema: %w", err)
			}
		}
		s, err := AttachPostgres(db, o.Procedure)
		if err != nil {
			db.Close()
			return nil, err
		}
		l.Info("db_open_ok", "target", "postgres")
		return s, nil
	case "sqlite":
		path := o.SQLitePath
		if path == "" {
			path = "countries.db"
		}
		db, err := utils.OpenSQLite(path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		s, err := AttachSQLite(db)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("ensure sqlite schema: %w", err)
		}
		l.Info("db_open_ok", "target", "sqlite", "path", path)
		return s, nil
	case "redis":
		rc := utils.OpenRedisFromEnv()
		if err := rc.Ping(ctx).Err(); err != nil {
			rc.Close()
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		l.Info("redis_ping_ok")
		return AttachRedis(rc, o.RedisKey), nil
	}
	return nil, fmt.Errorf("unknown persist target %q", o.Target)
}
