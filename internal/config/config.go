// 包 config：运行参数与项目根目录定位；路径默认相对于项目根下的 Data 目录
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ErrFileMissing：必需的输入文件不存在
var ErrFileMissing = errors.New("input file missing")

const (
	DefaultCountriesFile = "SeedCountry.csv"
	DefaultKMLFile       = "UIA_World_Countries_Boundaries.kml"
	DefaultOutputFile    = "SeedCountryWithBoundary.csv"
	DataDirName          = "Data"
)

// Config：一次运行的全部参数；kong 标签同时声明命令行参数与环境变量
type Config struct {
	Root           string        `name:"root" env:"PROJECT_ROOT" help:"Project root; discovered from the working directory when empty."`
	DataDir        string        `name:"data-dir" env:"DATA_DIR" help:"Data directory (default <root>/Data)."`
	CountriesPath  string        `name:"countries" env:"COUNTRY_CSV" help:"Reference country CSV."`
	KMLPath        string        `name:"kml" env:"KML_PATH" help:"Country boundaries KML (.kml or .kml.xz)."`
	OutputPath     string        `name:"out" env:"OUTPUT_CSV" help:"Output CSV."`
	GeoJSONPath    string        `name:"geojson-out" env:"GEOJSON_OUT" help:"Optional GeoJSON FeatureCollection output."`
	SplitCode      string        `name:"split-code" env:"SPLIT_CODE" default:"RU" help:"Country assembled per hemisphere across the antimeridian."`
	SplitMinPoints int           `name:"split-min-points" env:"SPLIT_MIN_POINTS" default:"100" help:"Minimum ring points for the split country."`
	MinSize        int           `name:"min-wkt-length" env:"MIN_WKT_LENGTH" default:"22000" help:"Countries with WKT length not above this are skipped."`
	Tolerance      float64       `name:"point-tolerance" env:"POINT_TOLERANCE" default:"1e-9" help:"Per-axis tolerance for point equality."`
	FlatCoords     bool          `name:"flat-coords" env:"FLAT_COORDS" help:"Coordinates are a single comma-joined string with redundant first/last tokens."`
	CodeField      string        `name:"code-field" env:"KML_CODE_FIELD" default:"ISO" help:"SimpleData name holding the ISO code."`
	NameField      string        `name:"name-field" env:"KML_NAME_FIELD" default:"COUNTRY" help:"SimpleData name holding the country name."`
	CodeIndex      int           `name:"code-index" env:"KML_CODE_INDEX" default:"2" help:"Positional SimpleData fallback for the ISO code."`
	NameIndex      int           `name:"name-index" env:"KML_NAME_INDEX" default:"1" help:"Positional SimpleData fallback for the country name."`
	PersistTarget  string        `name:"persist" env:"PERSIST_TARGET" default:"none" enum:"postgres,pg,sqlite,redis,none" help:"Where to persist countries."`
	Procedure      string        `name:"procedure" env:"PERSIST_PROCEDURE" default:"usp_insert_country" help:"PostgreSQL procedure called per country."`
	SQLitePath     string        `name:"sqlite-path" env:"SQLITE_PATH" help:"SQLite database file (default <data-dir>/countries.db)."`
	RedisKeyPrefix string        `name:"redis-prefix" env:"REDIS_KEY_PREFIX" default:"country:" help:"Redis hash key prefix."`
	Migrate        bool          `name:"migrate" env:"PERSIST_MIGRATE" default:"true" negatable:"" help:"Create table/procedure before writing."`
	PersistTimeout time.Duration `name:"persist-timeout" env:"PERSIST_TIMEOUT" default:"10s" help:"Timeout of one persist call."`
	MetricsFile    string        `name:"metrics-textfile" env:"METRICS_TEXTFILE" help:"Write Prometheus metrics to this textfile at exit."`
	Pushgateway    string        `name:"pushgateway" env:"PUSHGATEWAY_URL" help:"Push metrics to this Pushgateway at exit."`
}

// FindProjectRoot：自 start 向上查找含 go.mod 或 Data 目录的目录
func FindProjectRoot(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}
	for {
		if exists(filepath.Join(dir, "go.mod")) || isDir(filepath.Join(dir, DataDirName)) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no project root above %s", start)
		}
		dir = parent
	}
}

// DiscoverRoot：先从工作目录查找，再从可执行文件所在目录查找
func DiscoverRoot() (string, error) {
	if wd, err := os.Getwd(); err == nil {
		if root, err := FindProjectRoot(wd); err == nil {
			return root, nil
		}
	}
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return FindProjectRoot(filepath.Dir(exe))
}

// Resolve：补全未显式给出的路径
func (c *Config) Resolve() error {
	if c.DataDir == "" {
		if c.Root == "" {
			root, err := DiscoverRoot()
			if err != nil {
				return err
			}
			c.Root = root
		}
		c.DataDir = filepath.Join(c.Root, DataDirName)
	}
	if c.CountriesPath == "" {
		c.CountriesPath = filepath.Join(c.DataDir, DefaultCountriesFile)
	}
	if c.KMLPath == "" {
		c.KMLPath = filepath.Join(c.DataDir, DefaultKMLFile)
	}
	if c.OutputPath == "" {
		c.OutputPath = filepath.Join(c.DataDir, DefaultOutputFile)
	}
	if c.SQLitePath == "" {
		c.SQLitePath = filepath.Join(c.DataDir, "countries.db")
	}
	return nil
}

// Validate：检查输入文件存在
func (c *Config) Validate() error {
	for _, p := range []string{c.CountriesPath, c.KMLPath} {
		if !exists(p) {
			return fmt.Errorf("%w: %s", ErrFileMissing, p)
		}
	}
	return nil
}

func exists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

func isDir(p string) bool {
	st, err := os.Stat(p)
	return err == nil && st.IsDir()
}
