package codegen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSKU_FirstInPrefix(t *testing.T) {
	sku := GenerateSKU("Electronics", "Samsung", nil)
	assert.Equal(t, "ELE-SAM-001", sku)
}

func TestGenerateSKU_IncrementsSequence(t *testing.T) {
	first := GenerateSKU("Electronics", "Samsung", nil)
	second := GenerateSKU("Electronics", "Samsung", []string{first})

	assert.Equal(t, "ELE-SAM-001", first)
	assert.Equal(t, "ELE-SAM-002", second)
}

func TestGenerateSKU_UsesMaxExistingSequence(t *testing.T) {
	existing := []string{"ELE-SAM-001", "ELE-SAM-007", "ELE-SAM-003"}
	assert.Equal(t, "ELE-SAM-008", GenerateSKU("Electronics", "Samsung", existing))
}

func TestGenerateSKU_IgnoresOtherPrefixes(t *testing.T) {
	existing := []string{"ELE-SON-004", "CLO-SAM-009", "not-a-sku"}
	assert.Equal(t, "ELE-SAM-001", GenerateSKU("Electronics", "Samsung", existing))
}

func TestGenerateSKU_BrandNormalization(t *testing.T) {
	tests := []struct {
		name  string
		brand string
		want  string
	}{
		{"lowercase", "samsung", "ELE-SAM-001"},
		{"short brand padded", "LG", "ELE-LGX-001"},
		{"punctuation stripped", "B&O", "ELE-BOX-001"},
		{"empty brand", "", "ELE-GEN-001"},
		{"symbols only", "!!!", "ELE-GEN-001"},
		{"digits kept", "3M", "ELE-3MX-001"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GenerateSKU("Electronics", tt.brand, nil))
		})
	}
}

func TestGenerateSKU_UnknownCategoryFallsBack(t *testing.T) {
	assert.Equal(t, "GEN-SAM-001", GenerateSKU("Gadgets", "Samsung", nil))
}

func TestParseSKU_RoundTrip(t *testing.T) {
	sku := GenerateSKU("Electronics", "Samsung", nil)

	parsed, ok := ParseSKU(sku)
	require.True(t, ok)
	assert.Equal(t, "Electronics", parsed.Category)
	assert.Equal(t, "ELE", parsed.CategoryCode)
	assert.Equal(t, "SAM", parsed.BrandCode)
	assert.Equal(t, 1, parsed.Sequence)
}

func TestParseSKU_Invalid(t *testing.T) {
	for _, input := range []string{
		"",
		"ELE-SAM",
		"ELE-SAM-01",
		"ELE-SAM-0001",
		"ele-sam-001",
		"ELESAM001",
		"EL3-SAM-001",
	} {
		t.Run(input, func(t *testing.T) {
			_, ok := ParseSKU(input)
			assert.False(t, ok)
		})
	}
}

func TestParseSKU_UnknownCategoryCode(t *testing.T) {
	parsed, ok := ParseSKU("ZZZ-SAM-042")
	require.True(t, ok)
	assert.Empty(t, parsed.Category)
	assert.Equal(t, "ZZZ", parsed.CategoryCode)
	assert.Equal(t, 42, parsed.Sequence)
}

func TestCategoryCodes_Injective(t *testing.T) {
	seen := map[string]string{}
	for _, name := range KnownCategories() {
		code := CategoryCode(name)
		require.Len(t, code, 3)
		if prev, dup := seen[code]; dup {
			t.Fatalf("code %s assigned to both %s and %s", code, prev, name)
		}
		seen[code] = name
	}
}
