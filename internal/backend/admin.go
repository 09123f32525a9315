package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"storefront/internal/model"
)

// AdminProducts lists every product including inactive ones.
func (c *Client) AdminProducts(ctx context.Context, token string) ([]model.Product, error) {
	var products []model.Product
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/admin/products",
		token:  token,
		auth:   true,
	}, &products)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []model.Product{}
	}
	return products, nil
}

// AdminProduct fetches product id including inactive products.
func (c *Client) AdminProduct(ctx context.Context, token string, id int64) (*model.Product, error) {
	var product model.Product
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/admin/products/" + strconv.FormatInt(id, 10),
		token:  token,
		auth:   true,
	}, &product)
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// CreateProduct adds a product to the catalogue.
func (c *Client) CreateProduct(ctx context.Context, token string, in model.ProductInput) (*model.Product, error) {
	var product model.Product
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/admin/products",
		token:  token,
		auth:   true,
		body:   in,
	}, &product)
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// UpdateProduct replaces the editable fields of product id.
func (c *Client) UpdateProduct(ctx context.Context, token string, id int64, in model.ProductInput) (*model.Product, error) {
	var product model.Product
	err := c.do(ctx, request{
		method: http.MethodPut,
		path:   "/admin/products/" + strconv.FormatInt(id, 10),
		token:  token,
		auth:   true,
		body:   in,
	}, &product)
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// DeleteProduct removes product id.
func (c *Client) DeleteProduct(ctx context.Context, token string, id int64) error {
	return c.do(ctx, request{
		method: http.MethodDelete,
		path:   "/admin/products/" + strconv.FormatInt(id, 10),
		token:  token,
		auth:   true,
	}, nil)
}

// AdminOrders lists all orders, optionally filtered by status.
func (c *Client) AdminOrders(ctx context.Context, token string, status model.OrderStatus) ([]model.Order, error) {
	var query url.Values
	if status != "" {
		query = url.Values{"status": []string{string(status)}}
	}

	var orders []model.Order
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/admin/orders",
		query:  query,
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

// UpdateOrderStatus moves order id to status.
func (c *Client) UpdateOrderStatus(ctx context.Context, token string, id int64, status model.OrderStatus) error {
	return c.do(ctx, request{
		method: http.MethodPut,
		path:   "/admin/orders/" + strconv.FormatInt(id, 10) + "/status",
		token:  token,
		auth:   true,
		body:   model.StatusUpdateRequest{Status: string(status)},
	}, nil)
}

// VerifyPayment marks the payment of order id as verified.
func (c *Client) VerifyPayment(ctx context.Context, token string, id int64, reference string) error {
	return c.do(ctx, request{
		method: http.MethodPut,
		path:   "/admin/orders/" + strconv.FormatInt(id, 10) + "/verify",
		token:  token,
		auth:   true,
		body:   model.VerifyPaymentRequest{Reference: reference},
	}, nil)
}

// Dashboard fetches the admin dashboard summary.
func (c *Client) Dashboard(ctx context.Context, token string) (*model.Dashboard, error) {
	var dashboard model.Dashboard
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/admin/dashboard",
		token:  token,
		auth:   true,
	}, &dashboard)
	if err != nil {
		return nil, err
	}
	return &dashboard, nil
}
