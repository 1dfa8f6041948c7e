package services

import (
	"context"
	"errors"

	"github.com/zylpheon/TheZylpheonAdmin/apperrors"
	"github.com/zylpheon/TheZylpheonAdmin/repository"
)

// inventoryLedger answers availability questions against the stock values
// read under lock at the start of a checkout transaction, and applies the
// conditional decrements through the same transaction. It lives for exactly
// one checkout.
type inventoryLedger struct {
	tx    repository.IOrderRepository
	stock map[uint]int
	held  map[uint]int
}

func newInventoryLedger(tx repository.IOrderRepository, lines []repository.CheckoutLine) *inventoryLedger {
	l := &inventoryLedger{
		tx:    tx,
		stock: make(map[uint]int, len(lines)),
		held:  make(map[uint]int, len(lines)),
	}
	for _, line := range lines {
		l.stock[line.ProductID] = line.Stock
	}
	return l
}

// CheckAvailability reports whether quantity more units of the product can
// be taken, counting units already held by earlier lines of the same cart.
func (l *inventoryLedger) CheckAvailability(productID uint, quantity int) bool {
	if quantity <= 0 {
		return false
	}
	return l.held[productID]+quantity <= l.stock[productID]
}

// hold records units promised to a validated line.
func (l *inventoryLedger) hold(productID uint, quantity int) {
	l.held[productID] += quantity
}

// Decrement takes quantity units off the product's stock. A zero-row
// conditional update means stock changed underneath us and aborts the
// checkout.
func (l *inventoryLedger) Decrement(ctx context.Context, productID uint, quantity int) error {
	err := l.tx.DecrementStock(ctx, productID, quantity)
	if errors.Is(err, repository.ErrStockConflict) {
		return apperrors.InsufficientStockf("Insufficient stock for product ID %d", productID)
	}
	if err != nil {
		return err
	}
	l.stock[productID] -= quantity
	l.held[productID] -= quantity
	return nil
}
