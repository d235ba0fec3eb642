package utils

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	// Keep Persian/Arabic characters, word characters, spaces and dashes.
	skuAllowedRe  = regexp.MustCompile(`[^\x{0600}-\x{06FF}\x{0750}-\x{077F}\x{08A0}-\x{08FF}\x{FB50}-\x{FDFF}\x{FE70}-\x{FEFF}\w\s-]`)
	skuSpacesRe   = regexp.MustCompile(`\s+`)
	skuDashRunsRe = regexp.MustCompile(`-+`)
)

func cleanSKUText(text string) string {
	s := strings.TrimSpace(text)
	s = skuAllowedRe.ReplaceAllString(s, "")
	s = skuSpacesRe.ReplaceAllString(s, "-")
	s = skuDashRunsRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// GenerateSKU converts a product name (and optional brand) into a
// URL-friendly SKU, preserving Persian characters.
func GenerateSKU(name, brand string) string {
	namePart := cleanSKUText(name)
	if brand == "" {
		return namePart
	}
	return namePart + "-" + cleanSKUText(brand)
}

// GenerateUniqueSKU appends a counter until the SKU is not in existing.
func GenerateUniqueSKU(name, brand string, existing []string) string {
	base := GenerateSKU(name, brand)
	sku := base
	taken := make(map[string]bool, len(existing))
	for _, e := range existing {
		taken[e] = true
	}
	for counter := 1; taken[sku]; counter++ {
		sku = fmt.Sprintf("%s-%d", base, counter)
	}
	return sku
}
