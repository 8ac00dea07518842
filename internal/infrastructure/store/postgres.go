// Package store holds the persistence implementations. Two interchangeable
// backends exist, PostgreSQL and DynamoDB, selected at startup; both persist
// whole records and overwrite on save, last writer wins.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/example/restaurant-pos/internal/domain/cash"
	"github.com/example/restaurant-pos/internal/domain/menu"
	"github.com/example/restaurant-pos/internal/domain/order"
	"github.com/example/restaurant-pos/internal/domain/staff"
	"github.com/example/restaurant-pos/internal/domain/table"
)

// ConnectPostgres establishes a connection to PostgreSQL
func ConnectPostgres(connStr string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, err
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}

// MigratePostgres creates the tables if they do not exist.
func MigratePostgres(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS orders (
			id TEXT PRIMARY KEY,
			customer_name TEXT NOT NULL DEFAULT '',
			type TEXT NOT NULL,
			status TEXT NOT NULL,
			items JSONB NOT NULL,
			bill JSONB NOT NULL,
			table_id TEXT,
			cashier_id TEXT,
			cancelled_by TEXT,
			cancel_reason TEXT NOT NULL DEFAULT '',
			payment_method TEXT NOT NULL DEFAULT '',
			payment_details TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_status ON orders (status)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_updated_at ON orders (updated_at)`,
		`CREATE TABLE IF NOT EXISTS tables (
			id TEXT PRIMARY KEY,
			number INT NOT NULL,
			seats INT NOT NULL DEFAULT 0,
			status TEXT NOT NULL,
			current_order_id TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS menu_items (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL DEFAULT '',
			price DOUBLE PRECISION NOT NULL,
			stock INT NOT NULL DEFAULT 0,
			available BOOLEAN NOT NULL DEFAULT TRUE
		)`,
		`CREATE TABLE IF NOT EXISTS cash_movements (
			id TEXT PRIMARY KEY,
			type TEXT NOT NULL,
			amount DOUBLE PRECISION NOT NULL,
			description TEXT NOT NULL,
			user_id TEXT NOT NULL,
			date TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cash_movements_date ON cash_movements (date)`,
		`CREATE TABLE IF NOT EXISTS cash_cuts (
			id TEXT PRIMARY KEY,
			type TEXT NOT NULL,
			cashier_id TEXT,
			performed_by TEXT NOT NULL,
			cut_date TIMESTAMPTZ NOT NULL,
			range_start TIMESTAMPTZ NOT NULL,
			range_end TIMESTAMPTZ NOT NULL,
			metrics JSONB NOT NULL,
			order_ids JSONB NOT NULL,
			movement_ids JSONB NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cash_cuts_cut_date ON cash_cuts (cut_date)`,
		`CREATE TABLE IF NOT EXISTS staff (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// PostgresOrderStore persists orders with items and bill as JSONB columns.
type PostgresOrderStore struct {
	db *sql.DB
}

func NewPostgresOrderStore(db *sql.DB) *PostgresOrderStore {
	return &PostgresOrderStore{db: db}
}

const orderColumns = `id, customer_name, type, status, items, bill, table_id,
	cashier_id, cancelled_by, cancel_reason, payment_method, payment_details,
	created_at, updated_at`

func (s *PostgresOrderStore) Create(ctx context.Context, o *order.Order) error {
	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("marshal items: %w", err)
	}
	billJSON, err := json.Marshal(o.Bill)
	if err != nil {
		return fmt.Errorf("marshal bill: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO orders (`+orderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, o.ID, o.CustomerName, o.Type, o.Status, itemsJSON, billJSON,
		nullIfEmpty(o.TableID), nullIfEmpty(o.CashierID), nullIfEmpty(o.CancelledBy),
		o.CancelReason, o.PaymentMethod, o.PaymentDetails, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (s *PostgresOrderStore) Get(ctx context.Context, id string) (*order.Order, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	o, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get order: %w", err)
	}
	return o, true, nil
}

func (s *PostgresOrderStore) Save(ctx context.Context, o *order.Order) error {
	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("marshal items: %w", err)
	}
	billJSON, err := json.Marshal(o.Bill)
	if err != nil {
		return fmt.Errorf("marshal bill: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO orders (`+orderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO UPDATE SET
			customer_name = EXCLUDED.customer_name,
			type = EXCLUDED.type,
			status = EXCLUDED.status,
			items = EXCLUDED.items,
			bill = EXCLUDED.bill,
			table_id = EXCLUDED.table_id,
			cashier_id = EXCLUDED.cashier_id,
			cancelled_by = EXCLUDED.cancelled_by,
			cancel_reason = EXCLUDED.cancel_reason,
			payment_method = EXCLUDED.payment_method,
			payment_details = EXCLUDED.payment_details,
			updated_at = EXCLUDED.updated_at
	`, o.ID, o.CustomerName, o.Type, o.Status, itemsJSON, billJSON,
		nullIfEmpty(o.TableID), nullIfEmpty(o.CashierID), nullIfEmpty(o.CancelledBy),
		o.CancelReason, o.PaymentMethod, o.PaymentDetails, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save order: %w", err)
	}
	return nil
}

func (s *PostgresOrderStore) List(ctx context.Context) ([]*order.Order, error) {
	return s.queryOrders(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC`)
}

func (s *PostgresOrderStore) ListByStatus(ctx context.Context, status order.Status) ([]*order.Order, error) {
	return s.queryOrders(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE status = $1 ORDER BY created_at DESC`, status)
}

func (s *PostgresOrderStore) ListCompletedBetween(ctx context.Context, start, end time.Time) ([]*order.Order, error) {
	return s.queryOrders(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE status = $1 AND updated_at >= $2 AND updated_at <= $3
		ORDER BY updated_at
	`, order.StatusCompleted, start, end)
}

func (s *PostgresOrderStore) queryOrders(ctx context.Context, query string, args ...any) ([]*order.Order, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var out []*order.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*order.Order, error) {
	var o order.Order
	var itemsJSON, billJSON []byte
	var tableID, cashierID, cancelledBy sql.NullString
	err := row.Scan(&o.ID, &o.CustomerName, &o.Type, &o.Status, &itemsJSON, &billJSON,
		&tableID, &cashierID, &cancelledBy, &o.CancelReason, &o.PaymentMethod,
		&o.PaymentDetails, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
		return nil, fmt.Errorf("unmarshal items: %w", err)
	}
	if err := json.Unmarshal(billJSON, &o.Bill); err != nil {
		return nil, fmt.Errorf("unmarshal bill: %w", err)
	}
	o.TableID = tableID.String
	o.CashierID = cashierID.String
	o.CancelledBy = cancelledBy.String
	return &o, nil
}

// PostgresTableStore persists dining tables.
type PostgresTableStore struct {
	db *sql.DB
}

func NewPostgresTableStore(db *sql.DB) *PostgresTableStore {
	return &PostgresTableStore{db: db}
}

func (s *PostgresTableStore) Create(ctx context.Context, t *table.Table) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tables (id, number, seats, status, current_order_id)
		VALUES ($1, $2, $3, $4, $5)
	`, t.ID, t.Number, t.Seats, t.Status, nullIfEmpty(t.CurrentOrderID))
	if err != nil {
		return fmt.Errorf("insert table: %w", err)
	}
	return nil
}

func (s *PostgresTableStore) Get(ctx context.Context, id string) (*table.Table, bool, error) {
	var t table.Table
	var currentOrderID sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, number, seats, status, current_order_id FROM tables WHERE id = $1
	`, id).Scan(&t.ID, &t.Number, &t.Seats, &t.Status, &currentOrderID)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get table: %w", err)
	}
	t.CurrentOrderID = currentOrderID.String
	return &t, true, nil
}

func (s *PostgresTableStore) Save(ctx context.Context, t *table.Table) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tables (id, number, seats, status, current_order_id)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			number = EXCLUDED.number,
			seats = EXCLUDED.seats,
			status = EXCLUDED.status,
			current_order_id = EXCLUDED.current_order_id
	`, t.ID, t.Number, t.Seats, t.Status, nullIfEmpty(t.CurrentOrderID))
	if err != nil {
		return fmt.Errorf("save table: %w", err)
	}
	return nil
}

func (s *PostgresTableStore) List(ctx context.Context) ([]*table.Table, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, number, seats, status, current_order_id FROM tables ORDER BY number
	`)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var out []*table.Table
	for rows.Next() {
		var t table.Table
		var currentOrderID sql.NullString
		if err := rows.Scan(&t.ID, &t.Number, &t.Seats, &t.Status, &currentOrderID); err != nil {
			return nil, fmt.Errorf("scan table: %w", err)
		}
		t.CurrentOrderID = currentOrderID.String
		out = append(out, &t)
	}
	return out, rows.Err()
}

// PostgresMenuStore persists menu items. AdjustStock is a single UPDATE so
// concurrent decrements never lose counts.
type PostgresMenuStore struct {
	db *sql.DB
}

func NewPostgresMenuStore(db *sql.DB) *PostgresMenuStore {
	return &PostgresMenuStore{db: db}
}

func (s *PostgresMenuStore) Create(ctx context.Context, m *menu.MenuItem) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO menu_items (id, name, description, category, price, stock, available)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, m.ID, m.Name, m.Description, m.Category, m.Price, m.Stock, m.Available)
	if err != nil {
		return fmt.Errorf("insert menu item: %w", err)
	}
	return nil
}

func (s *PostgresMenuStore) Get(ctx context.Context, id string) (*menu.MenuItem, bool, error) {
	var m menu.MenuItem
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, category, price, stock, available
		FROM menu_items WHERE id = $1
	`, id).Scan(&m.ID, &m.Name, &m.Description, &m.Category, &m.Price, &m.Stock, &m.Available)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get menu item: %w", err)
	}
	return &m, true, nil
}

func (s *PostgresMenuStore) Save(ctx context.Context, m *menu.MenuItem) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO menu_items (id, name, description, category, price, stock, available)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			category = EXCLUDED.category,
			price = EXCLUDED.price,
			stock = EXCLUDED.stock,
			available = EXCLUDED.available
	`, m.ID, m.Name, m.Description, m.Category, m.Price, m.Stock, m.Available)
	if err != nil {
		return fmt.Errorf("save menu item: %w", err)
	}
	return nil
}

func (s *PostgresMenuStore) List(ctx context.Context) ([]*menu.MenuItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, category, price, stock, available
		FROM menu_items ORDER BY category, name
	`)
	if err != nil {
		return nil, fmt.Errorf("list menu items: %w", err)
	}
	defer rows.Close()

	var out []*menu.MenuItem
	for rows.Next() {
		var m menu.MenuItem
		if err := rows.Scan(&m.ID, &m.Name, &m.Description, &m.Category, &m.Price, &m.Stock, &m.Available); err != nil {
			return nil, fmt.Errorf("scan menu item: %w", err)
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

func (s *PostgresMenuStore) AdjustStock(ctx context.Context, id string, delta int) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE menu_items SET stock = stock + $2 WHERE id = $1`, id, delta)
	if err != nil {
		return fmt.Errorf("adjust stock: %w", err)
	}
	return nil
}

// PostgresMovementStore persists the cash ledger. Movements are insert-only.
type PostgresMovementStore struct {
	db *sql.DB
}

func NewPostgresMovementStore(db *sql.DB) *PostgresMovementStore {
	return &PostgresMovementStore{db: db}
}

func (s *PostgresMovementStore) Create(ctx context.Context, m *cash.Movement) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cash_movements (id, type, amount, description, user_id, date)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, m.ID, m.Type, m.Amount, m.Description, m.UserID, m.Date)
	if err != nil {
		return fmt.Errorf("insert movement: %w", err)
	}
	return nil
}

func (s *PostgresMovementStore) ListBetween(ctx context.Context, start, end time.Time, userID string) ([]*cash.Movement, error) {
	query := `
		SELECT id, type, amount, description, user_id, date
		FROM cash_movements WHERE date >= $1 AND date <= $2
	`
	args := []any{start, end}
	if userID != "" {
		query += ` AND user_id = $3`
		args = append(args, userID)
	}
	query += ` ORDER BY date DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()

	var out []*cash.Movement
	for rows.Next() {
		var m cash.Movement
		if err := rows.Scan(&m.ID, &m.Type, &m.Amount, &m.Description, &m.UserID, &m.Date); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

// PostgresCutStore persists cash cuts. Cuts are insert-only; there is no
// update or delete path.
type PostgresCutStore struct {
	db *sql.DB
}

func NewPostgresCutStore(db *sql.DB) *PostgresCutStore {
	return &PostgresCutStore{db: db}
}

func (s *PostgresCutStore) Create(ctx context.Context, c *cash.Cut) error {
	metricsJSON, err := json.Marshal(c.Metrics)
	if err != nil {
		return fmt.Errorf("marshal metrics: %w", err)
	}
	orderIDsJSON, err := json.Marshal(c.OrderIDs)
	if err != nil {
		return fmt.Errorf("marshal order ids: %w", err)
	}
	movementIDsJSON, err := json.Marshal(c.MovementIDs)
	if err != nil {
		return fmt.Errorf("marshal movement ids: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO cash_cuts (id, type, cashier_id, performed_by, cut_date,
			range_start, range_end, metrics, order_ids, movement_ids)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, c.ID, c.Type, nullIfEmpty(c.CashierID), c.PerformedBy, c.CutDate,
		c.Range.Start, c.Range.End, metricsJSON, orderIDsJSON, movementIDsJSON)
	if err != nil {
		return fmt.Errorf("insert cut: %w", err)
	}
	return nil
}

const cutColumns = `id, type, cashier_id, performed_by, cut_date,
	range_start, range_end, metrics, order_ids, movement_ids`

func (s *PostgresCutStore) List(ctx context.Context) ([]*cash.Cut, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+cutColumns+` FROM cash_cuts ORDER BY cut_date DESC`)
	if err != nil {
		return nil, fmt.Errorf("list cuts: %w", err)
	}
	defer rows.Close()

	var out []*cash.Cut
	for rows.Next() {
		c, err := scanCut(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *PostgresCutStore) LastCashierCut(ctx context.Context, cashierID string) (*cash.Cut, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+cutColumns+` FROM cash_cuts
		WHERE type = $1 AND cashier_id = $2
		ORDER BY cut_date DESC LIMIT 1
	`, cash.CutCashier, cashierID)
	c, err := scanCut(row)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("last cashier cut: %w", err)
	}
	return c, true, nil
}

func scanCut(row rowScanner) (*cash.Cut, error) {
	var c cash.Cut
	var cashierID sql.NullString
	var metricsJSON, orderIDsJSON, movementIDsJSON []byte
	err := row.Scan(&c.ID, &c.Type, &cashierID, &c.PerformedBy, &c.CutDate,
		&c.Range.Start, &c.Range.End, &metricsJSON, &orderIDsJSON, &movementIDsJSON)
	if err != nil {
		return nil, err
	}
	c.CashierID = cashierID.String
	if err := json.Unmarshal(metricsJSON, &c.Metrics); err != nil {
		return nil, fmt.Errorf("unmarshal metrics: %w", err)
	}
	if err := json.Unmarshal(orderIDsJSON, &c.OrderIDs); err != nil {
		return nil, fmt.Errorf("unmarshal order ids: %w", err)
	}
	if err := json.Unmarshal(movementIDsJSON, &c.MovementIDs); err != nil {
		return nil, fmt.Errorf("unmarshal movement ids: %w", err)
	}
	return &c, nil
}

// PostgresStaffStore persists staff accounts.
type PostgresStaffStore struct {
	db *sql.DB
}

func NewPostgresStaffStore(db *sql.DB) *PostgresStaffStore {
	return &PostgresStaffStore{db: db}
}

func (s *PostgresStaffStore) Create(ctx context.Context, u *staff.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO staff (id, name, email, password_hash, role)
		VALUES ($1, $2, $3, $4, $5)
	`, u.ID, u.Name, u.Email, u.PasswordHash, u.Role)
	if err != nil {
		return fmt.Errorf("insert staff: %w", err)
	}
	return nil
}

func (s *PostgresStaffStore) Get(ctx context.Context, id string) (*staff.User, bool, error) {
	return s.getBy(ctx, `WHERE id = $1`, id)
}

func (s *PostgresStaffStore) GetByEmail(ctx context.Context, email string) (*staff.User, bool, error) {
	return s.getBy(ctx, `WHERE email = $1`, email)
}

func (s *PostgresStaffStore) getBy(ctx context.Context, where string, arg any) (*staff.User, bool, error) {
	var u staff.User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, role FROM staff `+where, arg,
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get staff: %w", err)
	}
	return &u, true, nil
}

func (s *PostgresStaffStore) List(ctx context.Context) ([]*staff.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, email, password_hash, role FROM staff ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list staff: %w", err)
	}
	defer rows.Close()

	var out []*staff.User
	for rows.Next() {
		var u staff.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role); err != nil {
			return nil, fmt.Errorf("scan staff: %w", err)
		}
		out = append(out, &u)
	}
	return out, rows.Err()
}

func nullIfEmpty(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
