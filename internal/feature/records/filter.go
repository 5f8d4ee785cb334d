package records

import (
	"strconv"
	"strings"

	"memorial-records-api/internal/domain"
)

// ParseAgeFilter 把查询串里的 age 参数解析成结构化条件。
// 顺序有讲究：先判区间（含 "-"），再判比较前缀，最后裸数字。
// 解析失败一律当作没传（不报错，不过滤）。
func ParseAgeFilter(s string) *domain.AgeFilter {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if strings.Contains(s, "-") {
		parts := strings.SplitN(s, "-", 2)
		min, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
		max, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err1 != nil || err2 != nil {
			return nil
		}
		return &domain.AgeFilter{Op: domain.AgeRange, Min: min, Max: max}
	}
	for _, p := range []struct {
		prefix string
		op     domain.AgeOp
	}{
		{">=", domain.AgeGte},
		{"<=", domain.AgeLte},
		{">", domain.AgeGt},
		{"<", domain.AgeLt},
	} {
		if strings.HasPrefix(s, p.prefix) {
			v, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(s, p.prefix)))
			if err != nil {
				return nil
			}
			return &domain.AgeFilter{Op: p.op, Min: v}
		}
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &domain.AgeFilter{Op: domain.AgeEq, Min: v}
}

// ParseSexFilter 只认 m/f，其余值忽略。
func ParseSexFilter(s string) string {
	if s == "m" || s == "f" {
		return s
	}
	return ""
}

// ParseCategoryFilter 只认固定类别列表里的值。
func ParseCategoryFilter(s string, categories []string) string {
	for _, c := range categories {
		if s == c {
			return s
		}
	}
	return ""
}
