package service

import (
	"context"

	"storefront/internal/checkout"
	"storefront/internal/model"
	"storefront/internal/session"
)

// Login is the outcome of a successful login.
type Login struct {
	Session *session.Session
	User    model.User
}

// AuthService issues and ends gateway sessions.
type AuthService interface {
	// Register creates a customer account on the backend.
	Register(ctx context.Context, req model.RegisterRequest) (*model.User, error)

	// Login authenticates against the backend and opens a session.
	Login(ctx context.Context, req model.LoginRequest) (*Login, error)

	// AdminLogin is Login restricted to accounts with the admin role.
	AdminLogin(ctx context.Context, req model.LoginRequest) (*Login, error)

	// Logout ends the session and drops its checkout.
	Logout(ctx context.Context, s *session.Session) error
}

// CatalogService exposes the public catalogue and the caller's orders.
type CatalogService interface {
	// Products lists the catalogue.
	Products(ctx context.Context) ([]model.Product, error)

	// Product fetches a single product.
	Product(ctx context.Context, id int64) (*model.Product, error)

	// Orders lists the session user's order history.
	Orders(ctx context.Context, s *session.Session) ([]model.Order, error)
}

// CartService is the cart view-model. Every mutation is followed by a full
// re-read of the remote cart, which is returned.
type CartService interface {
	// FetchCart returns the current remote cart.
	FetchCart(ctx context.Context, s *session.Session) (*model.Cart, error)

	// Add increases the quantity of productID by delta (delta >= 1).
	Add(ctx context.Context, s *session.Session, productID int64, delta int) (*model.Cart, error)

	// SetQuantity sets an absolute quantity; quantity <= 0 removes the item.
	SetQuantity(ctx context.Context, s *session.Session, productID int64, quantity int) (*model.Cart, error)

	// Decrease lowers the quantity of productID by by (by >= 1).
	Decrease(ctx context.Context, s *session.Session, productID int64, by int) (*model.Cart, error)

	// Remove deletes productID from the cart.
	Remove(ctx context.Context, s *session.Session, productID int64) (*model.Cart, error)

	// Clear empties the cart.
	Clear(ctx context.Context, s *session.Session) (*model.Cart, error)
}

// CheckoutService drives the per-session checkout wizard.
type CheckoutService interface {
	// Begin starts a wizard from the current cart, replacing any earlier one.
	Begin(ctx context.Context, s *session.Session) (checkout.View, error)

	// Current returns the wizard snapshot.
	Current(ctx context.Context, s *session.Session) (checkout.View, error)

	// SubmitShipping captures the shipping address.
	SubmitShipping(ctx context.Context, s *session.Session, addr model.ShippingAddress) (checkout.View, error)

	// SelectShippingMethod picks standard or express shipping.
	SelectShippingMethod(ctx context.Context, s *session.Session, m model.ShippingMethod) (checkout.View, error)

	// SubmitPayment captures the payment selection.
	SubmitPayment(ctx context.Context, s *session.Session, sel model.PaymentSelection) (checkout.View, error)

	// ApplyPromo applies a promo code; unknown codes leave the wizard unchanged.
	ApplyPromo(ctx context.Context, s *session.Session, code string) (checkout.View, error)

	// RemovePromo drops the applied promo code.
	RemovePromo(ctx context.Context, s *session.Session) (checkout.View, error)

	// Back moves one step backwards.
	Back(ctx context.Context, s *session.Session) (checkout.View, error)

	// Edit jumps back to the shipping or payment step.
	Edit(ctx context.Context, s *session.Session, step string) (checkout.View, error)

	// Submit sends the order to the backend.
	Submit(ctx context.Context, s *session.Session) (checkout.View, error)

	// Abandon discards the wizard.
	Abandon(ctx context.Context, s *session.Session) error
}

// AdminService is the back-office console. Every operation requires an
// admin session.
type AdminService interface {
	Products(ctx context.Context, s *session.Session) ([]model.Product, error)
	Product(ctx context.Context, s *session.Session, id int64) (*model.Product, error)
	CreateProduct(ctx context.Context, s *session.Session, in model.ProductInput) (*model.Product, error)
	UpdateProduct(ctx context.Context, s *session.Session, id int64, in model.ProductInput) (*model.Product, error)
	DeleteProduct(ctx context.Context, s *session.Session, id int64) error

	Orders(ctx context.Context, s *session.Session, status string) ([]model.Order, error)
	UpdateOrderStatus(ctx context.Context, s *session.Session, id int64, status string) error
	VerifyPayment(ctx context.Context, s *session.Session, id int64, reference string) error

	Dashboard(ctx context.Context, s *session.Session) (*model.DashboardView, error)
	SalesReport(ctx context.Context, s *session.Session, start, end string) (*model.SalesReport, error)
}
