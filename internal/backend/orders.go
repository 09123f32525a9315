package backend

import (
	"context"
	"net/http"

	"storefront/internal/model"
)

// Checkout submits the order-creation request. A response without a
// non-zero order ID is treated as malformed.
func (c *Client) Checkout(ctx context.Context, token string, req model.CheckoutRequest) (*model.Order, error) {
	var order model.Order
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/checkout",
		token:  token,
		auth:   true,
		body:   req,
	}, &order)
	if err != nil {
		return nil, err
	}

	if order.ID == 0 {
		return nil, &APIError{
			Method:   http.MethodPost,
			Endpoint: "/checkout",
			Status:   http.StatusCreated,
			Message:  "response carries no order id",
			Kind:     ErrMalformedResponse,
		}
	}

	return &order, nil
}

// Orders lists the caller's order history.
func (c *Client) Orders(ctx context.Context, token string) ([]model.Order, error) {
	var orders []model.Order
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/orders",
		token:  token,
		auth:   true,
	}, &orders)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []model.Order{}
	}
	return orders, nil
}
