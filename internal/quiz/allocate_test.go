package quiz

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocate(t *testing.T) {
	tests := []struct {
		name       string
		total      int
		categories []Category
		want       []int
	}{
		{"even", 6, Categories, []int{2, 2, 2}},
		{"remainder goes first", 7, Categories, []int{3, 2, 2}},
		{"two remainders", 8, Categories, []int{3, 3, 2}},
		{"fewer than categories", 2, Categories, []int{1, 1, 0}},
		{"single category", 5, []Category{ShortAnswer}, []int{5}},
		{"given order kept", 5, []Category{ShortAnswer, MultiChoice}, []int{3, 2}},
		{"duplicates collapse", 4, []Category{FillGaps, FillGaps, MultiChoice}, []int{2, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Allocate(tt.total, tt.categories)
			require.NoError(t, err)

			counts := make([]int, len(got))
			for i, a := range got {
				counts[i] = a.Count
			}
			assert.Equal(t, tt.want, counts)
		})
	}
}

func TestAllocate_SumAndSpread(t *testing.T) {
	sets := [][]Category{
		{MultiChoice},
		{MultiChoice, FillGaps},
		Categories,
	}
	for total := 1; total <= 25; total++ {
		for _, cats := range sets {
			got, err := Allocate(total, cats)
			require.NoError(t, err)
			require.Len(t, got, len(cats))

			sum, lo, hi := 0, got[0].Count, got[0].Count
			for i, a := range got {
				assert.Equal(t, cats[i], a.Category)
				sum += a.Count
				lo, hi = min(lo, a.Count), max(hi, a.Count)
			}
			assert.Equal(t, total, sum)
			assert.LessOrEqual(t, hi-lo, 1)
		}
	}
}

func TestAllocate_Invalid(t *testing.T) {
	tests := []struct {
		name       string
		total      int
		categories []Category
	}{
		{"zero total", 0, Categories},
		{"negative total", -3, Categories},
		{"no categories", 3, nil},
		{"unknown category", 3, []Category{"essay"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Allocate(tt.total, tt.categories)
			assert.True(t, errors.Is(err, ErrInvalidArgument))
		})
	}
}

func TestParseCategories(t *testing.T) {
	got, err := ParseCategories([]string{"multi-choice", " short-answer "})
	require.NoError(t, err)
	assert.Equal(t, []Category{MultiChoice, ShortAnswer}, got)

	_, err = ParseCategories([]string{"true-false"})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
