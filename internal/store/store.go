// 包 store：国家边界持久化目标（PostgreSQL 存储过程 / SQLite / Redis），按国家代码幂等写入
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"country-borders/internal/logger"
	"country-borders/internal/migrate"

	"github.com/redis/go-redis/v9"
)

// Sink：持久化协作方
type Sink interface {
	SaveCountry(ctx context.Context, code, name, wkt string) error
	Name() string
	Close() error
}

// Record：已持久化的国家边界
type Record struct {
	Code   string
	Name   string
	Border string
}

// ErrNotFound：记录不存在
var ErrNotFound = errors.New("store: country not found")

// Postgres：通过存储过程写入
type Postgres struct {
	db   *sql.DB
	call string
}

// AttachPostgres：绑定已打开的连接池；procedure 需为合法标识符
func AttachPostgres(db *sql.DB, procedure string) (*Postgres, error) {
	if procedure == "" {
		procedure = migrate.DefaultProcedure
	}
	if !migrate.ValidIdent(procedure) {
		return nil, fmt.Errorf("invalid procedure name %q", procedure)
	}
	return &Postgres{db: db, call: "CALL " + procedure + "($1, $2, $3)"}, nil
}

func (s *Postgres) Name() string { return "postgres" }

func (s *Postgres) Close() error { return s.db.Close() }

// SaveCountry：调用存储过程 UPSERT
func (s *Postgres) SaveCountry(ctx context.Context, code, name, wkt string) error {
	logger.L().Debug("db_save_begin", "target", "postgres", "code", code, "wkt_len", len(wkt))
	_, err := s.db.ExecContext(ctx, s.call, code, name, wkt)
	return err
}

// Get：按代码读取（运维核对）
func (s *Postgres) Get(ctx context.Context, code string) (*Record, error) {
	return getRecord(ctx, s.db, "SELECT country_code, country_name, country_border FROM countries WHERE country_code=$1", code)
}

// SQLite：单文件/内存库目标
type SQLite struct {
	db *sql.DB
}

// AttachSQLite：绑定连接并建表
func AttachSQLite(db *sql.DB) (*SQLite, error) {
	if err := migrate.EnsureSQLiteSchema(db); err != nil {
		return nil, err
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Name() string { return "sqlite" }

func (s *SQLite) Close() error { return s.db.Close() }

func (s *SQLite) SaveCountry(ctx context.Context, code, name, wkt string) error {
	logger.L().Debug("db_save_begin", "target", "sqlite", "code", code, "wkt_len", len(wkt))
	_, err := s.db.ExecContext(ctx, `INSERT INTO countries(country_code, country_name, country_border, updated_at)
        VALUES(?, ?, ?, CURRENT_TIMESTAMP)
        ON CONFLICT (country_code) DO UPDATE SET country_name=excluded.country_name, country_border=excluded.country_border, updated_at=CURRENT_TIMESTAMP`,
		code, name, wkt)
	return err
}

func (s *SQLite) Get(ctx context.Context, code string) (*Record, error) {
	return getRecord(ctx, s.db, "SELECT country_code, country_name, country_border FROM countries WHERE country_code=?", code)
}

// Count：记录总数
func (s *SQLite) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM countries").Scan(&n)
	return n, err
}

func getRecord(ctx context.Context, db *sql.DB, q, code string) (*Record, error) {
	var r Record
	err := db.QueryRowContext(ctx, q, code).Scan(&r.Code, &r.Name, &r.Border)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Redis：以哈希 country:<code> 保存 name 与 wkt
type Redis struct {
	rc     *redis.Client
	prefix string
}

func AttachRedis(rc *redis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = "country:"
	}
	return &Redis{rc: rc, prefix: prefix}
}

func (s *Redis) Name() string { return "redis" }

func (s *Redis) Close() error { return s.rc.Close() }

// Key：国家代码对应的哈希键
func (s *Redis) Key(code string) string { return s.prefix + code }

func (s *Redis) SaveCountry(ctx context.Context, code, name, wkt string) error {
	logger.L().Debug("db_save_begin", "target", "redis", "code", code, "wkt_len", len(wkt))
	return s.rc.HSet(ctx, s.Key(code), "name", name, "wkt", wkt).Err()
}

// Nop：不持久化
type Nop struct{}

func (Nop) Name() string { return "none" }

func (Nop) Close() error { return nil }

func (Nop) SaveCountry(context.Context, string, string, string) error { return nil }
