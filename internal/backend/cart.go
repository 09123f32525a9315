package backend

import (
	"context"
	"net/http"
	"strconv"

	"storefront/internal/model"
)

type cartItemBody struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type decreaseBody struct {
	ProductID  int64 `json:"product_id"`
	DecreaseBy int   `json:"decrease_by"`
}

// GetCart fetches the caller's cart snapshot. The subtotal reported by the
// backend is discarded and recomputed from the items.
func (c *Client) GetCart(ctx context.Context, token string) (*model.Cart, error) {
	var raw struct {
		Items []model.CartItem `json:"items"`
	}
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/cart",
		token:  token,
		auth:   true,
	}, &raw)
	if err != nil {
		return nil, err
	}
	return model.NewCart(raw.Items), nil
}

// AddToCart increments the quantity of productID by quantity.
func (c *Client) AddToCart(ctx context.Context, token string, productID int64, quantity int) error {
	return c.do(ctx, request{
		method: http.MethodPost,
		path:   "/cart/add",
		token:  token,
		auth:   true,
		body:   cartItemBody{ProductID: productID, Quantity: quantity},
	}, nil)
}

// UpdateCartItem sets the absolute quantity of productID.
func (c *Client) UpdateCartItem(ctx context.Context, token string, productID int64, quantity int) error {
	return c.do(ctx, request{
		method: http.MethodPut,
		path:   "/cart/update",
		token:  token,
		auth:   true,
		body:   cartItemBody{ProductID: productID, Quantity: quantity},
	}, nil)
}

// DecreaseCartItem lowers the quantity of productID by decreaseBy.
func (c *Client) DecreaseCartItem(ctx context.Context, token string, productID int64, decreaseBy int) error {
	return c.do(ctx, request{
		method: http.MethodPost,
		path:   "/cart/decrease",
		token:  token,
		auth:   true,
		body:   decreaseBody{ProductID: productID, DecreaseBy: decreaseBy},
	}, nil)
}

// RemoveCartItem deletes the line for productID.
func (c *Client) RemoveCartItem(ctx context.Context, token string, productID int64) error {
	return c.do(ctx, request{
		method: http.MethodDelete,
		path:   "/cart/" + strconv.FormatInt(productID, 10),
		token:  token,
		auth:   true,
	}, nil)
}

// ClearCart removes every line from the cart.
func (c *Client) ClearCart(ctx context.Context, token string) error {
	return c.do(ctx, request{
		method: http.MethodDelete,
		path:   "/cart",
		token:  token,
		auth:   true,
	}, nil)
}
