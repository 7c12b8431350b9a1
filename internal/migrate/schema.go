package migrate

import (
	"database/sql"
	"fmt"
	"regexp"

	"country-borders/internal/logger"
)

// DefaultProcedure：国家边界写入存储过程
const DefaultProcedure = "usp_insert_country"

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// ValidIdent：存储过程名只允许（可带 schema 前缀的）普通标识符，防止拼接注入
func ValidIdent(s string) bool { return identRe.MatchString(s) }

// EnsureSchema：首次运行创建 countries 表与写入存储过程（PostgreSQL）
// 约束：表使用 IF NOT EXISTS；存储过程 CREATE OR REPLACE，以 country_code 为主键做 UPSERT
func EnsureSchema(db *sql.DB, procedure string) error {
	if procedure == "" {
		procedure = DefaultProcedure
	}
	if !ValidIdent(procedure) {
		return fmt.Errorf("invalid procedure name %q", procedure)
	}
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS countries (
            country_code TEXT PRIMARY KEY,
            country_name TEXT NOT NULL,
            country_border TEXT NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
        )`,
		`CREATE OR REPLACE PROCEDURE ` + procedure + `(p_code TEXT, p_name TEXT, p_border TEXT)
        LANGUAGE sql AS $$
            INSERT INTO countries(country_code, country_name, country_border, updated_at)
            VALUES(p_code, p_name, p_border, now())
            ON CONFLICT (country_code) DO UPDATE SET country_name=EXCLUDED.country_name, country_border=EXCLUDED.country_border, updated_at=now()
        $$`,
	}
	for i, s := range stmts {
		logger.L().Debug("schema_exec", "idx", i)
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	logger.L().Debug("schema_done")
	return nil
}

// EnsureSQLiteSchema：SQLite 目标没有存储过程，只建表
func EnsureSQLiteSchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS countries (
        country_code TEXT PRIMARY KEY,
        country_name TEXT NOT NULL,
        country_border TEXT NOT NULL,
        updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
    )`)
	return err
}
