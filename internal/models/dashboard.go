package models

// DashboardStats are the tenant-scoped aggregate counters shown on the
// dashboard landing page.
type DashboardStats struct {
	TotalInvoices  int        `json:"totalInvoices"`
	TotalCustomers int        `json:"totalCustomers"`
	TotalProducts  int        `json:"totalProducts"`
	TotalRevenue   float64    `json:"totalRevenue"`
	PendingRevenue float64    `json:"pendingRevenue"`
	RecentInvoices []*Invoice `json:"recentInvoices"`
}
