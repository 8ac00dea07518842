package cash

import (
	"context"
	"strings"
	"time"

	"github.com/example/restaurant-pos/internal/domain/order"
	"github.com/example/restaurant-pos/internal/shift"
)

type CutType string

const (
	CutCashier CutType = "cashier"
	CutDaily   CutType = "daily"
)

// Metrics is the reconciliation arithmetic of one cut. CashRefunds is a
// reserved field with no writer yet; it always participates in the formula
// as zero.
type Metrics struct {
	CashSales       float64 `json:"cash_sales"`
	CreditCardSales float64 `json:"credit_card_sales"`
	TransferSales   float64 `json:"transfer_sales"`
	CreditSales     float64 `json:"credit_sales"`
	VoucherSales    float64 `json:"voucher_sales"`
	OtherSales      float64 `json:"other_sales"`
	TotalSales      float64 `json:"total_sales"`
	TotalTax        float64 `json:"total_tax"`
	TotalEntries    float64 `json:"total_entries"`
	TotalExits      float64 `json:"total_exits"`
	CashRefunds     float64 `json:"cash_refunds"`

	CalculatedTotalCash float64 `json:"calculated_total_cash"`
	DeclaredTotalCash   float64 `json:"declared_total_cash"`
	Difference          float64 `json:"difference"`
}

// Cut is an immutable reconciliation snapshot. Once created it is never
// edited or deleted; the cut history is the audit trail.
type Cut struct {
	ID          string       `json:"id"`
	Type        CutType      `json:"type"`
	CashierID   string       `json:"cashier_id,omitempty"` // required iff Type is cashier
	PerformedBy string       `json:"performed_by"`
	CutDate     time.Time    `json:"cut_date"`
	Range       shift.Window `json:"range"`
	Metrics     Metrics      `json:"metrics"`
	OrderIDs    []string     `json:"order_ids"`
	MovementIDs []string     `json:"movement_ids"`
}

// CutStore is the persistence contract for cuts. There is no update or
// delete: the history is append-only.
type CutStore interface {
	Create(ctx context.Context, c *Cut) error
	List(ctx context.Context) ([]*Cut, error)
	// LastCashierCut returns the most recent cashier-type cut for the given
	// cashier, by cut date.
	LastCashierCut(ctx context.Context, cashierID string) (*Cut, bool, error)
}

// Payment-method buckets. Matching is a case-normalized exact match against
// the fixed vocabulary the POS clients send; anything unrecognized lands in
// the other bucket.
func bucket(paymentMethod string) string {
	switch strings.ToLower(strings.TrimSpace(paymentMethod)) {
	case "efectivo", "cash":
		return "cash"
	case "tarjeta", "card", "creditcard":
		return "card"
	case "transferencia", "transfer":
		return "transfer"
	case "crédito", "credito", "credit":
		return "credit"
	case "vales", "voucher":
		return "voucher"
	default:
		return "other"
	}
}

// ComputeMetrics aggregates completed orders and ledger movements into cut
// metrics. Both sets may be empty; every total is then zero.
func ComputeMetrics(orders []*order.Order, movements []*Movement) Metrics {
	var m Metrics
	for _, o := range orders {
		switch bucket(o.PaymentMethod) {
		case "cash":
			m.CashSales += o.Bill.TotalWithTax
		case "card":
			m.CreditCardSales += o.Bill.TotalWithTax
		case "transfer":
			m.TransferSales += o.Bill.TotalWithTax
		case "credit":
			m.CreditSales += o.Bill.TotalWithTax
		case "voucher":
			m.VoucherSales += o.Bill.TotalWithTax
		default:
			m.OtherSales += o.Bill.TotalWithTax
		}
		m.TotalSales += o.Bill.TotalWithTax
		m.TotalTax += o.Bill.Tax
	}
	for _, mv := range movements {
		switch mv.Type {
		case MovementEntry:
			m.TotalEntries += mv.Amount
		case MovementExit:
			m.TotalExits += mv.Amount
		}
	}
	m.CalculatedTotalCash = m.CashSales + m.TotalEntries - m.TotalExits - m.CashRefunds
	return m
}
