package backend

import (
	"context"
	"net/http"
	"strconv"

	"storefront/internal/model"
)

// Products lists the public catalogue.
func (c *Client) Products(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	if err := c.do(ctx, request{method: http.MethodGet, path: "/products"}, &products); err != nil {
		return nil, err
	}
	if products == nil {
		products = []model.Product{}
	}
	return products, nil
}

// Product fetches a single product by ID.
func (c *Client) Product(ctx context.Context, id int64) (*model.Product, error) {
	var product model.Product
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/products/" + strconv.FormatInt(id, 10),
	}, &product)
	if err != nil {
		return nil, err
	}
	return &product, nil
}
