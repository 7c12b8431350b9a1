package geo

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseError：坐标文本中无法解析的记号
type ParseError struct {
	Token string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("bad coordinate token %q", e.Token)
	}
	return fmt.Sprintf("bad coordinate token %q: %v", e.Token, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ParseCoordinates：解析 KML coordinates 文本（换行/空格/制表/逗号分隔）
// 约束：空记号跳过；其余记号两两成对，先经度后纬度；
// 若文本由 "lon,lat,alt" 三元组组成，则只取每组前两项
func ParseCoordinates(text string) ([]Point, error) {
	tuples := strings.Fields(text)
	if hasAltitude(tuples) {
		pts := make([]Point, 0, len(tuples))
		for _, t := range tuples {
			parts := strings.Split(t, ",")
			p, err := pair(parts[0], parts[1])
			if err != nil {
				return nil, err
			}
			pts = append(pts, p)
		}
		return pts, nil
	}
	toks := strings.FieldsFunc(text, func(r rune) bool {
		return r == '\n' || r == '\r' || r == ' ' || r == '\t' || r == ','
	})
	return pairs(toks)
}

// ParseFlatCoordinates：解析单行逗号拼接的坐标串
// 约束：首个（冗余经度）与末个（冗余纬度）记号丢弃后再两两成对
func ParseFlatCoordinates(text string) ([]Point, error) {
	toks := strings.Split(strings.TrimSpace(text), ",")
	if len(toks) < 2 {
		return nil, nil
	}
	toks = toks[1 : len(toks)-1]
	kept := toks[:0]
	for _, t := range toks {
		if t = strings.TrimSpace(t); t != "" {
			kept = append(kept, t)
		}
	}
	return pairs(kept)
}

// 每个元组都恰好是三段逗号分隔时按 lon,lat,alt 处理
func hasAltitude(tuples []string) bool {
	if len(tuples) == 0 {
		return false
	}
	for _, t := range tuples {
		if strings.Count(t, ",") != 2 {
			return false
		}
	}
	return true
}

func pairs(toks []string) ([]Point, error) {
	if len(toks)%2 != 0 {
		return nil, &ParseError{Token: toks[len(toks)-1], Err: fmt.Errorf("dangling longitude")}
	}
	pts := make([]Point, 0, len(toks)/2)
	for i := 0; i+1 < len(toks); i += 2 {
		p, err := pair(toks[i], toks[i+1])
		if err != nil {
			return nil, err
		}
		pts = append(pts, p)
	}
	return pts, nil
}

func pair(lonTok, latTok string) (Point, error) {
	lon, err := strconv.ParseFloat(strings.TrimSpace(lonTok), 64)
	if err != nil {
		return Point{}, &ParseError{Token: lonTok, Err: err}
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latTok), 64)
	if err != nil {
		return Point{}, &ParseError{Token: latTok, Err: err}
	}
	return Point{Lon: lon, Lat: lat}, nil
}
