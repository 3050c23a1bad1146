package domain

import "time"

// CartLineItem is one product+quantity entry in a cart. UnitPrice is the
// server-quoted price in whole baht, snapshotted on the last reconciliation.
type CartLineItem struct {
	ID        int64  `json:"id"`
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
}

// Cart holds the line items for a single user. Items keep insertion order;
// that order survives optimistic rollbacks.
type Cart struct {
	ID        int64          `json:"id"`
	UserID    int64          `json:"user_id"`
	Items     []CartLineItem `json:"items"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// FindItem returns the index of the line item for productID, or -1.
func (c *Cart) FindItem(productID int64) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// FindLine returns the index of the line item with the given line-item id, or -1.
func (c *Cart) FindLine(lineItemID int64) int {
	for i := range c.Items {
		if c.Items[i].ID == lineItemID {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy. Services hand clones to callers so the
// authoritative slice is never aliased outside the cart service.
func (c *Cart) Clone() *Cart {
	if c == nil {
		return nil
	}
	cp := *c
	cp.Items = make([]CartLineItem, len(c.Items))
	copy(cp.Items, c.Items)
	return &cp
}
