package collect

import (
	"regexp"
	"strconv"
	"strings"
)

// Dialect 一种固件输出方言：正则 + 提取函数
// 同一字段的多个方言按顺序尝试，第一个成功者胜出
type Dialect[T any] struct {
	Name    string
	Re      *regexp.Regexp
	Extract func(m []string) (T, bool)
}

// FirstMatch 在整段文本上按顺序尝试方言，返回值与命中的方言名
func FirstMatch[T any](text string, dialects []Dialect[T]) (T, string, bool) {
	var zero T
	for _, d := range dialects {
		m := d.Re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if v, ok := d.Extract(m); ok {
			return v, d.Name, true
		}
	}
	return zero, "", false
}

// ScanLines 逐行扫描表格输出，每行取第一个命中的方言；不匹配的行直接跳过
func ScanLines[T any](text string, dialects []Dialect[T]) []T {
	out := make([]T, 0)
	for _, line := range Lines(text) {
		for _, d := range dialects {
			m := d.Re.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			if v, ok := d.Extract(m); ok {
				out = append(out, v)
				break
			}
		}
	}
	return out
}

// Lines 按行切分回显（统一换行）
func Lines(raw string) []string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.ReplaceAll(raw, "\r", "\n")
	return strings.Split(raw, "\n")
}

// StringField 提取第1个捕获组的文本方言
func StringField(name, expr string) Dialect[string] {
	return Dialect[string]{
		Name: name,
		Re:   regexp.MustCompile(expr),
		Extract: func(m []string) (string, bool) {
			v := strings.TrimSpace(m[1])
			return v, v != ""
		},
	}
}

// FloatField 提取第1个捕获组的数值方言
func FloatField(name, expr string) Dialect[float64] {
	return Dialect[float64]{
		Name: name,
		Re:   regexp.MustCompile(expr),
		Extract: func(m []string) (float64, bool) {
			return ParseFloat(m[1])
		},
	}
}

// IntField 提取第1个捕获组的整数方言
func IntField(name, expr string) Dialect[int64] {
	return Dialect[int64]{
		Name: name,
		Re:   regexp.MustCompile(expr),
		Extract: func(m []string) (int64, bool) {
			v, err := strconv.ParseInt(strings.TrimSpace(m[1]), 10, 64)
			return v, err == nil
		},
	}
}

// FindString 按方言顺序查找文本字段，未命中返回空串
func FindString(text string, dialects []Dialect[string]) string {
	v, _, _ := FirstMatch(text, dialects)
	return v
}

// FindFloat 按方言顺序查找数值字段，未命中返回 nil
func FindFloat(text string, dialects []Dialect[float64]) *float64 {
	if v, _, ok := FirstMatch(text, dialects); ok {
		return &v
	}
	return nil
}

// FindInt 按方言顺序查找整数字段，未命中返回 nil
func FindInt(text string, dialects []Dialect[int64]) *int64 {
	if v, _, ok := FirstMatch(text, dialects); ok {
		return &v
	}
	return nil
}

// ParseFloat 解析数值文本
func ParseFloat(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return v, err == nil
}

// Atoi 解析整数文本，失败返回 0
func Atoi(s string) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return v
}
