package order

// Item is one order line. Prices are minor currency units, snapshotted at
// checkout time.
type Item struct {
	ProductID int    `json:"productId"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice int    `json:"unitPrice"`
}

// Order is created once in PENDING by checkout and mutated only by the
// webhook processor and notification bookkeeping. Orders are never deleted.
// ExternalID is our correlation id; InvoiceID belongs to the Invoice Issuer.
// The webhook resolves an order through either, invoice id preferred.
type Order struct {
	ID               int    `json:"orderId"`
	ExternalID       string `json:"external_id"`
	InvoiceID        string `json:"invoice_id,omitempty"`
	InvoiceURL       string `json:"invoice_url,omitempty"`
	UserID           int    `json:"user_id"`
	UserEmail        string `json:"user_email,omitempty"`
	UserPhone        string `json:"user_phone,omitempty"`
	Items            []Item `json:"items"`
	Subtotal         int    `json:"subtotal"`
	Tax              int    `json:"tax"`
	Total            int    `json:"total"`
	Status           Status `json:"status"`
	CreatedAt        string `json:"createdAt"`
	UpdatedAt        string `json:"updatedAt"`
	PaidAt           string `json:"paidAt,omitempty"`
	NotificationSent bool   `json:"notification_sent"`
}

// Stats summarises the order book for the admin overview. Revenue counts
// PAID orders only.
type Stats struct {
	TotalRevenue    int `json:"totalRevenue"`
	TotalOrders     int `json:"totalOrders"`
	PaidOrders      int `json:"paidOrders"`
	PendingPayments int `json:"pendingPayments"`
}
