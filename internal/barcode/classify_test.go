package barcode

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"stocktake-scan-service/internal/domain/scan"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected scan.Kind
	}{
		{
			name:     "Material Code",
			raw:      "MAT-001",
			expected: scan.KindMaterial,
		},
		{
			name:     "Supplier Code",
			raw:      "SUP-42",
			expected: scan.KindSupplier,
		},
		{
			name:     "Lowercase Material Code",
			raw:      "mat-001",
			expected: scan.KindMaterial,
		},
		{
			name:     "Surrounding Whitespace",
			raw:      "  MAT-123  ",
			expected: scan.KindMaterial,
		},
		{
			name:     "Long Material Code",
			raw:      "MAT-123456",
			expected: scan.KindMaterial,
		},
		{
			name:     "Material Code Too Long",
			raw:      "MAT-1234567",
			expected: scan.KindUnknown,
		},
		{
			name:     "Empty String",
			raw:      "",
			expected: scan.KindError,
		},
		{
			name:     "Whitespace Only",
			raw:      "   ",
			expected: scan.KindError,
		},
		{
			name:     "Bare Material Prefix",
			raw:      "MAT-",
			expected: scan.KindUnknown,
		},
		{
			name:     "Bare Supplier Prefix",
			raw:      "SUP-",
			expected: scan.KindUnknown,
		},
		{
			name:     "Unrecognized Format",
			raw:      "QR-XYZ-99",
			expected: scan.KindUnknown,
		},
		{
			name:     "Material Prefix With Letters",
			raw:      "MAT-ABC",
			expected: scan.KindUnknown,
		},
		{
			name:     "Missing Separator",
			raw:      "MAT001",
			expected: scan.KindUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.raw))
		})
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "MAT-001", Normalize(" mat-001 "))
	assert.Equal(t, "", Normalize("   "))
}
