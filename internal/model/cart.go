package model

// CartItem is a single line of the remote cart.
type CartItem struct {
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	ImageRef  string  `json:"image_url"`
}

// Cart is the client projection of the server-side cart.
// Subtotal is derived from Items and never stored independently.
type Cart struct {
	Items    []CartItem `json:"items"`
	Subtotal float64    `json:"subtotal"`
}

// NewCart builds a cart from raw items. Items with a non-positive quantity are
// dropped and duplicate product IDs are merged so each product appears once.
func NewCart(items []CartItem) *Cart {
	c := &Cart{Items: make([]CartItem, 0, len(items))}
	index := make(map[int64]int, len(items))

	for _, item := range items {
		if item.Quantity <= 0 {
			continue
		}
		if i, ok := index[item.ProductID]; ok {
			c.Items[i].Quantity += item.Quantity
			continue
		}
		index[item.ProductID] = len(c.Items)
		c.Items = append(c.Items, item)
	}

	c.Recompute()
	return c
}

// Recompute resets Subtotal to the sum of unit price times quantity.
func (c *Cart) Recompute() {
	var subtotal float64
	for _, item := range c.Items {
		subtotal += item.UnitPrice * float64(item.Quantity)
	}
	c.Subtotal = subtotal
}

// Find returns the line for productID, if present.
func (c *Cart) Find(productID int64) (CartItem, bool) {
	for _, item := range c.Items {
		if item.ProductID == productID {
			return item, true
		}
	}
	return CartItem{}, false
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// ItemCount returns the total number of units across all lines.
func (c *Cart) ItemCount() int {
	n := 0
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

// AddItemRequest is the gateway payload for adding units of a product.
type AddItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// SetQuantityRequest is the gateway payload for setting an absolute quantity.
type SetQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// DecreaseRequest is the gateway payload for decreasing a quantity.
type DecreaseRequest struct {
	DecreaseBy int `json:"decrease_by"`
}
