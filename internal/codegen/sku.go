// Package codegen derives SKUs and EAN-13 barcodes from a caller-supplied
// snapshot of codes already in use. It keeps no state of its own; callers
// that can create products concurrently must serialize around it.
package codegen

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// categoryCodes is the fixed category → 3-letter code table. The mapping is
// injective; unknown categories fall back to FallbackCategoryCode.
var categoryCodes = map[string]string{
	"Electronics": "ELE",
	"Clothing":    "CLO",
	"Food":        "FOO",
	"Beverages":   "BEV",
	"Home":        "HOM",
	"Toys":        "TOY",
	"Sports":      "SPO",
	"Beauty":      "BEA",
	"Office":      "OFF",
}

// categoryNames is the reverse of categoryCodes, built once at init.
var categoryNames = func() map[string]string {
	names := make(map[string]string, len(categoryCodes))
	for name, code := range categoryCodes {
		names[code] = name
	}
	return names
}()

const (
	// FallbackCategoryCode is used for categories outside the known table.
	FallbackCategoryCode = "GEN"
	// GenericBrandCode is used when the brand is empty.
	GenericBrandCode = "GEN"
)

var skuPattern = regexp.MustCompile(`^([A-Z]{3})-([A-Z0-9]{3})-(\d{3})$`)

// SKU is the structural decomposition of a generated product code.
type SKU struct {
	// Category is the catalog name the code maps back to, empty when the
	// category code is not in the known table.
	Category     string
	CategoryCode string
	BrandCode    string
	Sequence     int
}

// CategoryCode returns the 3-letter code for a category name.
func CategoryCode(category string) string {
	if code, ok := categoryCodes[category]; ok {
		return code
	}
	return FallbackCategoryCode
}

// KnownCategories returns the names of the fixed category table, the seed
// set for a fresh catalog.
func KnownCategories() []string {
	names := make([]string, 0, len(categoryCodes))
	for name := range categoryCodes {
		names = append(names, name)
	}
	return names
}

// ShortCode normalizes free text into a 3-character token: uppercase,
// alphanumerics only, right-padded with X. Empty or symbol-only input yields
// the generic code.
func ShortCode(s string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(s) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			if b.Len() == 3 {
				break
			}
		}
	}
	code := b.String()
	if code == "" {
		return GenericBrandCode
	}
	for len(code) < 3 {
		code += "X"
	}
	return code
}

// brandCode derives the SKU's brand token.
func brandCode(brand string) string {
	if strings.TrimSpace(brand) == "" {
		return GenericBrandCode
	}
	return ShortCode(brand)
}

// GenerateSKU mints the next "CAT-BRD-NNN" code for the category+brand pair.
// The sequence is one past the highest existing sequence sharing the same
// prefix in existingSKUs, or 1 when none do.
func GenerateSKU(category, brand string, existingSKUs []string) string {
	prefix := CategoryCode(category) + "-" + brandCode(brand) + "-"

	maxSeq := 0
	for _, sku := range existingSKUs {
		rest, ok := strings.CutPrefix(sku, prefix)
		if !ok || len(rest) != 3 {
			continue
		}
		if seq, err := strconv.Atoi(rest); err == nil && seq > maxSeq {
			maxSeq = seq
		}
	}

	return fmt.Sprintf("%s%03d", prefix, maxSeq+1)
}

// ParseSKU decomposes a code against the fixed pattern. Invalid input yields
// ok=false, never an error.
func ParseSKU(sku string) (SKU, bool) {
	m := skuPattern.FindStringSubmatch(sku)
	if m == nil {
		return SKU{}, false
	}
	seq, err := strconv.Atoi(m[3])
	if err != nil {
		return SKU{}, false
	}
	return SKU{
		Category:     categoryNames[m[1]],
		CategoryCode: m[1],
		BrandCode:    m[2],
		Sequence:     seq,
	}, true
}
