package barcode

import (
	"regexp"
	"strings"

	"stocktake-scan-service/internal/domain/scan"
)

// Label prefixes printed on physical labels. Material drums carry
// MAT-<number> codes, supplier cage labels carry SUP-<number>.
const (
	MaterialPrefix = "MAT-"
	SupplierPrefix = "SUP-"
)

var (
	materialPattern = regexp.MustCompile(`^MAT-\d{1,6}$`)
	supplierPattern = regexp.MustCompile(`^SUP-\d{1,6}$`)
)

// Classify decides which reference table a raw barcode resolves against.
// Input is trimmed and upper-cased first so camera reads of the same label
// always classify identically. An empty read classifies as KindError,
// anything that matches neither pattern as KindUnknown.
func Classify(raw string) scan.Kind {
	code := Normalize(raw)
	switch {
	case code == "":
		return scan.KindError
	case materialPattern.MatchString(code):
		return scan.KindMaterial
	case supplierPattern.MatchString(code):
		return scan.KindSupplier
	default:
		return scan.KindUnknown
	}
}

// Normalize canonicalizes a raw camera read for classification and lookup.
func Normalize(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}
