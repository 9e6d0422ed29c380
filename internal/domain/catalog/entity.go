package catalog

import (
	"time"

	"github.com/google/uuid"
)

// Material represents one raw-material reference record that material
// barcodes resolve against.
type Material struct {
	ID        uuid.UUID
	Code      string
	Name      string
	Unit      *string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Supplier represents one supplier reference record that supplier
// barcodes resolve against.
type Supplier struct {
	ID        uuid.UUID
	Code      string
	Name      string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
