// Package commerce holds the records the bot reads from and writes to the shop API.
// Nothing here is persisted; every value is fetched fresh per interaction.
package commerce

import (
	"errors"
	"strings"
)

// ErrNotFound reports that the shop has no record for the requested id.
var ErrNotFound = errors.New("commerce: not found")

// Variant is one purchasable option of a product. Deliverables are stocked per variant.
type Variant struct {
	ID   Text `json:"id"`
	Name Text `json:"name"`
}

type Product struct {
	ID       Text      `json:"id"`
	Name     Text      `json:"name"`
	Variants []Variant `json:"variants"`
}

// Order is used for both invoice and order lookups; the API serves them from the same resource.
type Order struct {
	ID           Text  `json:"id"`
	Email        Text  `json:"email"`
	TotalPrice   Text  `json:"total_price"`
	Status       Text  `json:"status"`
	ProductName  Text  `json:"product_name"`
	Deliverables Lines `json:"deliverables"`
}

// IsEmpty reports whether the API sent a record with nothing in it, as in
// `{"data":{}}`. Such a record is treated as not found.
func (o *Order) IsEmpty() bool {
	if o == nil {
		return true
	}
	for _, t := range []Text{o.ID, o.Email, o.TotalPrice, o.Status, o.ProductName} {
		if strings.TrimSpace(string(t)) != "" {
			return false
		}
	}
	return len(o.Deliverables) == 0
}

// Receipt is the raw outcome of a stock append.
type Receipt struct {
	Status int
	Body   []byte
}

// Succeeded reports whether the API accepted the append.
func (r Receipt) Succeeded() bool {
	return r.Status >= 200 && r.Status < 300
}
