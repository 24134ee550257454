package models

// ShoppingListItem is one consolidated line: an ingredient and unit summed
// across every recipe in the cart.
type ShoppingListItem struct {
	Name        string `json:"name"`
	Unit        string `json:"measurement_unit"`
	TotalAmount int64  `json:"total_amount"`
}
