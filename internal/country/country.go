// 包 country：参考国家表加载与按 ISO 代码查找
package country

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/exp/slices"
)

// Country：参考国家记录
type Country struct {
	ID            int
	Name          string
	Alpha2        string
	Alpha3        string
	AffiliationID int
}

// Set：只读的参考国家集合，保持文件顺序
type Set struct {
	items []Country
}

// NewSet：由记录切片构造（复制输入）
func NewSet(items []Country) *Set {
	return &Set{items: slices.Clone(items)}
}

// Len：记录数
func (s *Set) Len() int { return len(s.items) }

// Lookup：按二位或三位代码查找，首个命中为准
func (s *Set) Lookup(code string) (Country, bool) {
	if code == "" {
		return Country{}, false
	}
	i := slices.IndexFunc(s.items, func(c Country) bool {
		return c.Alpha2 == code || c.Alpha3 == code
	})
	if i < 0 {
		return Country{}, false
	}
	return s.items[i], true
}

// LoadFile：读取参考国家 CSV 文件
func LoadFile(path string) (*Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

// Load：解析 CountryId,Name,Alpha2,Alpha3,AffiliationId；首行为表头忽略
// 约束：数值列解析失败返回错误并带行号；空行跳过
func Load(r io.Reader) (*Set, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	var items []Country
	line := 0
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read countries: %w", err)
		}
		line++
		if line == 1 {
			continue
		}
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		if len(rec) < 5 {
			return nil, fmt.Errorf("countries line %d: want 5 columns, got %d", line, len(rec))
		}
		id, err := strconv.Atoi(strings.TrimSpace(rec[0]))
		if err != nil {
			return nil, fmt.Errorf("countries line %d: country id: %w", line, err)
		}
		aff, err := strconv.Atoi(strings.TrimSpace(rec[4]))
		if err != nil {
			return nil, fmt.Errorf("countries line %d: affiliation id: %w", line, err)
		}
		items = append(items, Country{
			ID:            id,
			Name:          rec[1],
			Alpha2:        strings.TrimSpace(rec[2]),
			Alpha3:        strings.TrimSpace(rec[3]),
			AffiliationID: aff,
		})
	}
	return &Set{items: items}, nil
}
