// Package memory implementa los puertos del motor sobre estructuras en memoria.
// Las transacciones se serializan con un mutex global y aplican sus escrituras
// solo al confirmar, de modo que los tests ejercitan la misma disciplina
// todo-o-nada que el adaptador PostgreSQL.
package memory

import (
	"sync"
	"time"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// Store estado compartido: ledger, proyección y catálogo.
type Store struct {
	mu             sync.Mutex
	nextMovementID int64
	nextProductID  int64
	movements      []*entity.StockMovement
	stocks         map[int64]*entity.CurrentStock
	products       map[int64]*entity.Product
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{
		nextMovementID: 1,
		nextProductID:  1,
		stocks:         make(map[int64]*entity.CurrentStock),
		products:       make(map[int64]*entity.Product),
	}
}

// SeedProduct registra un producto directamente; útil en tests.
func (s *Store) SeedProduct(name string) *entity.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := &entity.Product{
		ProductID: s.nextProductID,
		Name:      name,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
	s.nextProductID++
	s.products[p.ProductID] = p
	return p
}

// Movements devuelve una copia del ledger completo; útil en tests.
func (s *Store) Movements() []*entity.StockMovement {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*entity.StockMovement, len(s.movements))
	for i, m := range s.movements {
		c := *m
		out[i] = &c
	}
	return out
}

func cloneStock(st *entity.CurrentStock) *entity.CurrentStock {
	c := *st
	if st.LastMovementID != nil {
		id := *st.LastMovementID
		c.LastMovementID = &id
	}
	return &c
}
