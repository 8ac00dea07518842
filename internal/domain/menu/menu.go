// Package menu holds the dishes a restaurant sells and their stock counts.
package menu

import "context"

type MenuItem struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Category    string  `json:"category,omitempty"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	Available   bool    `json:"available"`
}

// Store is the persistence contract for menu items. AdjustStock must apply
// the delta as a single atomic read-modify-write at the storage layer.
type Store interface {
	Create(ctx context.Context, m *MenuItem) error
	Get(ctx context.Context, id string) (*MenuItem, bool, error)
	Save(ctx context.Context, m *MenuItem) error
	List(ctx context.Context) ([]*MenuItem, error)
	AdjustStock(ctx context.Context, id string, delta int) error
}
