package shopify

// Webhook topics handled by the ingestion pipeline
const (
	TopicProductsCreate   = "products/create"
	TopicProductsUpdate   = "products/update"
	TopicProductsDelete   = "products/delete"
	TopicCustomersCreate  = "customers/create"
	TopicCustomersUpdate  = "customers/update"
	TopicCustomersDelete  = "customers/delete"
	TopicOrdersCreate     = "orders/create"
	TopicOrdersUpdated    = "orders/updated"
	TopicOrdersCancelled  = "orders/cancelled"
	TopicOrderTransactions = "order_transactions/create"
	TopicRefundsCreate    = "refunds/create"
	TopicFulfillmentsCreate = "fulfillments/create"
	TopicFulfillmentsUpdate = "fulfillments/update"
	TopicInventoryLevelsUpdate = "inventory_levels/update"
	TopicAppUninstalled   = "app/uninstalled"
	TopicCustomersRedact  = "customers/redact"
	TopicShopRedact       = "shop/redact"
)

// Webhook payloads are the platform's REST shapes, distinct from the GraphQL
// nodes: numeric ids instead of gids, snake_case, flat money strings.

// ProductPayload is the products/* webhook body
type ProductPayload struct {
	ID          int64            `json:"id"`
	Title       string           `json:"title"`
	Handle      string           `json:"handle"`
	Vendor      string           `json:"vendor"`
	ProductType string           `json:"product_type"`
	Status      string           `json:"status"`
	Tags        TagList          `json:"tags"`
	PublishedAt string           `json:"published_at"`
	CreatedAt   string           `json:"created_at"`
	UpdatedAt   string           `json:"updated_at"`
	Variants    []VariantPayload `json:"variants"`
}

// VariantPayload is a variant inside a products/* webhook body
type VariantPayload struct {
	ID                int64  `json:"id"`
	ProductID         int64  `json:"product_id"`
	SKU               string `json:"sku"`
	Title             string `json:"title"`
	Position          int    `json:"position"`
	Price             string `json:"price"`
	CompareAtPrice    string `json:"compare_at_price"`
	InventoryItemID   int64  `json:"inventory_item_id"`
	InventoryQuantity int    `json:"inventory_quantity"`
	CreatedAt         string `json:"created_at"`
	UpdatedAt         string `json:"updated_at"`
}

// CustomerPayload is the customers/* webhook body
type CustomerPayload struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// OrderPayload is the orders/* webhook body
type OrderPayload struct {
	ID                int64             `json:"id"`
	Name              string            `json:"name"`
	Email             string            `json:"email"`
	Currency          string            `json:"currency"`
	FinancialStatus   string            `json:"financial_status"`
	FulfillmentStatus string            `json:"fulfillment_status"`
	SubtotalPrice     string            `json:"subtotal_price"`
	TotalDiscounts    string            `json:"total_discounts"`
	TotalTax          string            `json:"total_tax"`
	TotalPrice        string            `json:"total_price"`
	ProcessedAt       string            `json:"processed_at"`
	CancelledAt       string            `json:"cancelled_at"`
	ClosedAt          string            `json:"closed_at"`
	CreatedAt         string            `json:"created_at"`
	UpdatedAt         string            `json:"updated_at"`
	Customer          *CustomerPayload  `json:"customer"`
	LineItems         []LineItemPayload `json:"line_items"`
}

// LineItemPayload is one purchased line inside an orders/* webhook body
type LineItemPayload struct {
	ID            int64  `json:"id"`
	ProductID     int64  `json:"product_id"`
	VariantID     int64  `json:"variant_id"`
	Title         string `json:"title"`
	SKU           string `json:"sku"`
	Quantity      int    `json:"quantity"`
	Price         string `json:"price"`
	TotalDiscount string `json:"total_discount"`
}

// TransactionPayload is the order_transactions/create webhook body
type TransactionPayload struct {
	ID          int64  `json:"id"`
	OrderID     int64  `json:"order_id"`
	Kind        string `json:"kind"`
	Status      string `json:"status"`
	Gateway     string `json:"gateway"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	ProcessedAt string `json:"processed_at"`
}

// RefundPayload is the refunds/create webhook body
type RefundPayload struct {
	ID           int64  `json:"id"`
	OrderID      int64  `json:"order_id"`
	Note         string `json:"note"`
	CreatedAt    string `json:"created_at"`
	Transactions []struct {
		Amount string `json:"amount"`
	} `json:"transactions"`
}

// FulfillmentPayload is the fulfillments/* webhook body
type FulfillmentPayload struct {
	ID              int64  `json:"id"`
	OrderID         int64  `json:"order_id"`
	Status          string `json:"status"`
	TrackingNumber  string `json:"tracking_number"`
	TrackingCompany string `json:"tracking_company"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`
}

// InventoryLevelPayload is the inventory_levels/update webhook body
type InventoryLevelPayload struct {
	InventoryItemID int64  `json:"inventory_item_id"`
	LocationID      int64  `json:"location_id"`
	Available       int    `json:"available"`
	UpdatedAt       string `json:"updated_at"`
}

// DeletePayload is the body of products/delete and customers/delete
type DeletePayload struct {
	ID int64 `json:"id"`
}

// RedactPayload is the body of the GDPR customers/redact and shop/redact topics
type RedactPayload struct {
	ShopID     int64  `json:"shop_id"`
	ShopDomain string `json:"shop_domain"`
	Customer   *struct {
		ID    int64  `json:"id"`
		Email string `json:"email"`
	} `json:"customer"`
}
