// Package table tracks dining tables and their occupancy. Tables are
// occupied and released by the order engine; the CRUD surface here exists
// for floor setup.
package table

import "context"

type TableStatus string

const (
	StatusAvailable TableStatus = "available"
	StatusOccupied  TableStatus = "occupied"
)

type Table struct {
	ID             string      `json:"id"`
	Number         int         `json:"number"`
	Seats          int         `json:"seats"`
	Status         TableStatus `json:"status"`
	CurrentOrderID string      `json:"current_order_id,omitempty"`
}

// Available reports whether a new order can take the table.
func (t *Table) Available() bool { return t.Status == StatusAvailable }

// Occupy binds the table to an order.
func (t *Table) Occupy(orderID string) {
	t.Status = StatusOccupied
	t.CurrentOrderID = orderID
}

// Release frees the table.
func (t *Table) Release() {
	t.Status = StatusAvailable
	t.CurrentOrderID = ""
}

// Store is the persistence contract for tables.
type Store interface {
	Create(ctx context.Context, t *Table) error
	Get(ctx context.Context, id string) (*Table, bool, error)
	Save(ctx context.Context, t *Table) error
	List(ctx context.Context) ([]*Table, error)
}
