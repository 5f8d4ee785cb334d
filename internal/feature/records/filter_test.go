package records

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memorial-records-api/internal/domain"
	"memorial-records-api/pkg/derive"
)

func TestParseAgeFilter(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want *domain.AgeFilter
	}{
		{"empty", "", nil},
		{"exact", "30", &domain.AgeFilter{Op: domain.AgeEq, Min: 30}},
		{"range", "10-20", &domain.AgeFilter{Op: domain.AgeRange, Min: 10, Max: 20}},
		{"range zero", "0-45", &domain.AgeFilter{Op: domain.AgeRange, Min: 0, Max: 45}},
		{"gt", ">30", &domain.AgeFilter{Op: domain.AgeGt, Min: 30}},
		{"lt", "<18", &domain.AgeFilter{Op: domain.AgeLt, Min: 18}},
		{"gte", ">=65", &domain.AgeFilter{Op: domain.AgeGte, Min: 65}},
		{"lte", "<=5", &domain.AgeFilter{Op: domain.AgeLte, Min: 5}},
		{"garbage", "abc", nil},
		{"half range", "10-", nil},
		{"range with garbage", "a-b", nil},
		{"operator without number", ">", nil},
		{"spaces", " 25 ", &domain.AgeFilter{Op: domain.AgeEq, Min: 25}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseAgeFilter(tt.in)
			if tt.want == nil {
				require.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func TestParseSexFilter(t *testing.T) {
	assert.Equal(t, "m", ParseSexFilter("m"))
	assert.Equal(t, "f", ParseSexFilter("f"))
	assert.Equal(t, "", ParseSexFilter("x"))
	assert.Equal(t, "", ParseSexFilter("M"))
	assert.Equal(t, "", ParseSexFilter(""))
}

func TestParseCategoryFilter(t *testing.T) {
	for _, c := range derive.Categories {
		assert.Equal(t, c, ParseCategoryFilter(c, derive.Categories))
	}
	assert.Equal(t, "", ParseCategoryFilter("pilot", derive.Categories))
	assert.Equal(t, "", ParseCategoryFilter("", derive.Categories))
}
