package model

// SalesByDate groups orders by calendar day.
type SalesByDate struct {
	Date       string  `json:"date"`
	OrderCount int     `json:"orders"`
	Revenue    float64 `json:"revenue"`
}

// SalesByProduct groups order line items by product.
type SalesByProduct struct {
	ProductID    int64   `json:"product_id"`
	Name         string  `json:"name"`
	QuantitySold int     `json:"quantity"`
	Revenue      float64 `json:"revenue"`
}

// SalesByPaymentMethod groups orders by payment method.
type SalesByPaymentMethod struct {
	Method     string  `json:"method"`
	OrderCount int     `json:"orders"`
	Revenue    float64 `json:"revenue"`
}

// SalesReport is the full aggregation over a date range.
type SalesReport struct {
	Start           string                 `json:"start"`
	End             string                 `json:"end"`
	TotalOrders     int                    `json:"total_orders"`
	TotalRevenue    float64                `json:"total_revenue"`
	ByDate          []SalesByDate          `json:"by_date"`
	ByProduct       []SalesByProduct       `json:"by_product"`
	ByPaymentMethod []SalesByPaymentMethod `json:"by_payment_method"`
}

// Dashboard mirrors the backend's admin dashboard payload.
type Dashboard struct {
	TotalOrders   int              `json:"totalOrders"`
	TotalRevenue  float64          `json:"totalRevenue"`
	TotalProducts int              `json:"totalProducts"`
	TotalUsers    int              `json:"totalUsers"`
	RecentOrders  []map[string]any `json:"recentOrders"`
	TopProducts   []map[string]any `json:"topProducts"`
}

// DashboardView is the dashboard enriched with gateway-side counts.
type DashboardView struct {
	Dashboard
	PendingVerifications int `json:"pendingVerifications"`
}
