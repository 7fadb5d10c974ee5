package models

import (
	"slices"
	"time"
)

type OwnerKind string

const (
	OwnerKindRegistered OwnerKind = "registered"
	OwnerKindGuest      OwnerKind = "guest"
)

func (k OwnerKind) Valid() bool {
	return k == OwnerKindRegistered || k == OwnerKindGuest
}

type CartItem struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
	Name      string  `json:"name"`
}

// Cart is owned either by a registered user (OwnerID) or by a guest session (GuestID), never both.
// Version is bumped by the store on every successful update.
type Cart struct {
	ID        string     `json:"id"`
	OwnerKind OwnerKind  `json:"ownerKind"`
	OwnerID   string     `json:"ownerId,omitempty"`
	GuestID   string     `json:"guestId,omitempty"`
	Items     []CartItem `json:"items"`
	Version   int64      `json:"version"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// OwnerRef returns the id matching the cart's owner kind.
func (c *Cart) OwnerRef() string {
	if c.OwnerKind == OwnerKindGuest {
		return c.GuestID
	}

	return c.OwnerID
}

// FindItem returns the index of the item with the given product id, or -1.
func (c *Cart) FindItem(productID string) int {
	return slices.IndexFunc(c.Items, func(item CartItem) bool {
		return item.ProductID == productID
	})
}

func (c *Cart) Clone() *Cart {
	clone := *c
	clone.Items = slices.Clone(c.Items)
	if clone.Items == nil {
		clone.Items = []CartItem{}
	}

	return &clone
}

type AddItemRequest struct {
	ProductID string  `json:"productId" validate:"required"`
	Quantity  int     `json:"quantity"  validate:"required,min=1"`
	Price     float64 `json:"price"     validate:"gte=0"`
	Name      string  `json:"name"      validate:"required"`
}

type UpdateItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity"  validate:"required,min=1"`
}

type MergeCartRequest struct {
	GuestSessionID string `json:"guestSessionId" validate:"required"`
}

type CartResponse struct {
	CartID string     `json:"cartId"`
	Items  []CartItem `json:"items"`
	Total  float64    `json:"total"`
}
