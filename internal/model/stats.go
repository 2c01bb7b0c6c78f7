package model

// StatusCount pairs an order status with the number of orders in it.
type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// DayRevenue is one point of the revenue-over-time dashboard series.
type DayRevenue struct {
	Day     string  `json:"day"` // YYYY-MM-DD
	Orders  int64   `json:"orders"`
	Revenue float64 `json:"revenue"` // sum of total_ttc, cancelled orders excluded
}

// TopProduct aggregates ordered quantities per product.
type TopProduct struct {
	ProductID   uint64  `json:"productId"`
	ProductName string  `json:"productName"`
	Quantity    int64   `json:"quantity"`
	Revenue     float64 `json:"revenue"`
}

// DashboardStats is the admin dashboard payload.
type DashboardStats struct {
	TotalOrders    int64         `json:"totalOrders"`
	OrdersByStatus []StatusCount `json:"ordersByStatus"`
	RevenueTotal   float64       `json:"revenueTotal"`
	RevenueByDay   []DayRevenue  `json:"revenueByDay"`
	TopProducts    []TopProduct  `json:"topProducts"`
	ClientCount    int64         `json:"clientCount"`
	ProductCount   int64         `json:"productCount"`
	LowStock       []Product     `json:"lowStock"`
}
