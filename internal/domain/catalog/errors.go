package catalog

import "errors"

var (
	ErrMaterialNotFound = errors.New("material not found")
	ErrSupplierNotFound = errors.New("supplier not found")
)
