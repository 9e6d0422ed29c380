package catalog

import "context"

// Repository defines read access to the reference data scans resolve
// against. The catalog is maintained elsewhere; this service only reads it.
type Repository interface {
	GetMaterialByCode(ctx context.Context, code string) (*Material, error)
	GetSupplierByCode(ctx context.Context, code string) (*Supplier, error)
}
