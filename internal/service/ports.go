package service

import (
	"context"

	"storefront/internal/model"
)

// The backend ports below are satisfied by *backend.Client.

// AuthBackend issues credentials.
type AuthBackend interface {
	Login(ctx context.Context, email, password string) (*model.LoginResponse, error)
	Register(ctx context.Context, req model.RegisterRequest) (*model.User, error)
}

// CatalogBackend serves the public catalogue and order history.
type CatalogBackend interface {
	Products(ctx context.Context) ([]model.Product, error)
	Product(ctx context.Context, id int64) (*model.Product, error)
	Orders(ctx context.Context, token string) ([]model.Order, error)
}

// CartBackend manipulates the remote cart.
type CartBackend interface {
	GetCart(ctx context.Context, token string) (*model.Cart, error)
	AddToCart(ctx context.Context, token string, productID int64, quantity int) error
	UpdateCartItem(ctx context.Context, token string, productID int64, quantity int) error
	DecreaseCartItem(ctx context.Context, token string, productID int64, decreaseBy int) error
	RemoveCartItem(ctx context.Context, token string, productID int64) error
	ClearCart(ctx context.Context, token string) error
}

// OrderBackend creates orders.
type OrderBackend interface {
	Checkout(ctx context.Context, token string, req model.CheckoutRequest) (*model.Order, error)
}

// AdminBackend is the admin slice of the backend API.
type AdminBackend interface {
	AdminProducts(ctx context.Context, token string) ([]model.Product, error)
	AdminProduct(ctx context.Context, token string, id int64) (*model.Product, error)
	CreateProduct(ctx context.Context, token string, in model.ProductInput) (*model.Product, error)
	UpdateProduct(ctx context.Context, token string, id int64, in model.ProductInput) (*model.Product, error)
	DeleteProduct(ctx context.Context, token string, id int64) error
	AdminOrders(ctx context.Context, token string, status model.OrderStatus) ([]model.Order, error)
	UpdateOrderStatus(ctx context.Context, token string, id int64, status model.OrderStatus) error
	VerifyPayment(ctx context.Context, token string, id int64, reference string) error
	Dashboard(ctx context.Context, token string) (*model.Dashboard, error)
}
