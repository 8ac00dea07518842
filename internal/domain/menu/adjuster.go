package menu

import (
	"context"
	"log"
)

// Adjuster applies signed stock deltas for the order engine. Stock updates
// are best effort: a dish that no longer resolves, or a storage failure,
// is logged and the order proceeds unchanged.
type Adjuster struct {
	store Store
}

func NewAdjuster(store Store) *Adjuster {
	return &Adjuster{store: store}
}

func (a *Adjuster) Adjust(ctx context.Context, dishID string, delta int) error {
	if dishID == "" {
		return nil
	}
	if _, ok, err := a.store.Get(ctx, dishID); err != nil || !ok {
		log.Printf("[Inventory] Skipping stock adjust, dish %s not resolvable: %v", dishID, err)
		return nil
	}
	if err := a.store.AdjustStock(ctx, dishID, delta); err != nil {
		log.Printf("[Inventory] Failed to adjust stock for dish %s by %d: %v", dishID, delta, err)
		return err
	}
	return nil
}
