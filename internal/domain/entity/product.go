package entity

import "time"

// Product registro mínimo del catálogo. El motor de stock solo necesita saber
// que el producto existe; el resto del catálogo vive en otro servicio.
type Product struct {
	ProductID int64
	Name      string
	SKU       string
	IsActive  bool
	CreatedAt time.Time
}
