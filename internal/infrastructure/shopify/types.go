package shopify

import (
	"encoding/json"
	"fmt"
)

// TagList accepts the platform's two tag encodings: a JSON array of strings
// (GraphQL) or a single comma-separated string (webhooks).
type TagList []string

// UnmarshalJSON implements json.Unmarshaler
func (t *TagList) UnmarshalJSON(data []byte) error {
	var asList []string
	if err := json.Unmarshal(data, &asList); err == nil {
		*t = asList
		return nil
	}
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		*t = SplitTags(asString)
		return nil
	}
	return fmt.Errorf("shopify: tags are neither a list nor a string: %s", string(data))
}

// PageInfo is the connection paging envelope
type PageInfo struct {
	HasNextPage bool   `json:"hasNextPage"`
	EndCursor   string `json:"endCursor"`
}

// Connection is one page of a cursor-paginated GraphQL field
type Connection struct {
	Nodes    []json.RawMessage `json:"nodes"`
	PageInfo PageInfo          `json:"pageInfo"`
}

// graphQLRequest is the Admin API request envelope
type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// GraphQLError is one error entry of a GraphQL response
type GraphQLError struct {
	Message    string `json:"message"`
	Extensions struct {
		Code string `json:"code"`
	} `json:"extensions"`
}

// CostInfo is the query-cost extension the Admin API attaches to responses
type CostInfo struct {
	RequestedQueryCost int `json:"requestedQueryCost"`
	ActualQueryCost    int `json:"actualQueryCost"`
	ThrottleStatus     struct {
		MaximumAvailable   float64 `json:"maximumAvailable"`
		CurrentlyAvailable float64 `json:"currentlyAvailable"`
		RestoreRate        float64 `json:"restoreRate"`
	} `json:"throttleStatus"`
}

// graphQLResponse is the Admin API response envelope
type graphQLResponse struct {
	Data       json.RawMessage `json:"data"`
	Errors     []GraphQLError  `json:"errors"`
	Extensions struct {
		Cost CostInfo `json:"cost"`
	} `json:"extensions"`
}

// ProductNode is a product as returned by the Admin GraphQL API
type ProductNode struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Handle      string      `json:"handle"`
	Vendor      string      `json:"vendor"`
	ProductType string      `json:"productType"`
	Status      string      `json:"status"`
	Tags        TagList     `json:"tags"`
	PublishedAt string      `json:"publishedAt"`
	CreatedAt   string      `json:"createdAt"`
	UpdatedAt   string      `json:"updatedAt"`
	Variants    struct {
		Nodes []VariantNode `json:"nodes"`
	} `json:"variants"`
}

// VariantNode is a product variant as returned by the Admin GraphQL API
type VariantNode struct {
	ID                string `json:"id"`
	SKU               string `json:"sku"`
	Title             string `json:"title"`
	Position          int    `json:"position"`
	Price             string `json:"price"`
	CompareAtPrice    string `json:"compareAtPrice"`
	CreatedAt         string `json:"createdAt"`
	UpdatedAt         string `json:"updatedAt"`
	InventoryQuantity int    `json:"inventoryQuantity"`
	InventoryItem     struct {
		ID            string `json:"id"`
		UnitCost      struct {
			Amount string `json:"amount"`
		} `json:"unitCost"`
	} `json:"inventoryItem"`
}

// InventoryLevelNode is a per-location inventory level
type InventoryLevelNode struct {
	ID       string `json:"id"`
	Location struct {
		ID string `json:"id"`
	} `json:"location"`
	Item struct {
		ID string `json:"id"`
	} `json:"item"`
	Quantities []struct {
		Name     string `json:"name"`
		Quantity int    `json:"quantity"`
	} `json:"quantities"`
}

// CustomerNode is a customer as returned by the Admin GraphQL API
type CustomerNode struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// MoneyBag carries an amount in shop currency
type MoneyBag struct {
	ShopMoney struct {
		Amount       string `json:"amount"`
		CurrencyCode string `json:"currencyCode"`
	} `json:"shopMoney"`
}

// OrderNode is an order as returned by the Admin GraphQL API
type OrderNode struct {
	ID                       string   `json:"id"`
	Name                     string   `json:"name"`
	Email                    string   `json:"email"`
	CurrencyCode             string   `json:"currencyCode"`
	DisplayFinancialStatus   string   `json:"displayFinancialStatus"`
	DisplayFulfillmentStatus string   `json:"displayFulfillmentStatus"`
	SubtotalPriceSet         MoneyBag `json:"subtotalPriceSet"`
	TotalDiscountsSet        MoneyBag `json:"totalDiscountsSet"`
	TotalTaxSet              MoneyBag `json:"totalTaxSet"`
	TotalPriceSet            MoneyBag `json:"totalPriceSet"`
	ProcessedAt              string   `json:"processedAt"`
	CancelledAt              string   `json:"cancelledAt"`
	ClosedAt                 string   `json:"closedAt"`
	CreatedAt                string   `json:"createdAt"`
	UpdatedAt                string   `json:"updatedAt"`
	Customer                 *struct {
		ID string `json:"id"`
	} `json:"customer"`
	LineItems struct {
		Nodes []LineItemNode `json:"nodes"`
	} `json:"lineItems"`
	Transactions []TransactionNode `json:"transactions"`
	Refunds      []RefundNode      `json:"refunds"`
	Fulfillments []FulfillmentNode `json:"fulfillments"`
}

// LineItemNode is one purchased line of an order
type LineItemNode struct {
	ID                 string   `json:"id"`
	Title              string   `json:"title"`
	SKU                string   `json:"sku"`
	Quantity           int      `json:"quantity"`
	OriginalUnitPriceSet MoneyBag `json:"originalUnitPriceSet"`
	TotalDiscountSet   MoneyBag `json:"totalDiscountSet"`
	Product            *struct {
		ID string `json:"id"`
	} `json:"product"`
	Variant *struct {
		ID string `json:"id"`
	} `json:"variant"`
}

// TransactionNode is a payment event attached to an order
type TransactionNode struct {
	ID          string   `json:"id"`
	Kind        string   `json:"kind"`
	Status      string   `json:"status"`
	Gateway     string   `json:"gateway"`
	AmountSet   MoneyBag `json:"amountSet"`
	ProcessedAt string   `json:"processedAt"`
}

// RefundNode is a refund event attached to an order
type RefundNode struct {
	ID              string   `json:"id"`
	Note            string   `json:"note"`
	TotalRefundedSet MoneyBag `json:"totalRefundedSet"`
	CreatedAt       string   `json:"createdAt"`
}

// FulfillmentNode is a shipment event attached to an order
type FulfillmentNode struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	CreatedAt    string `json:"createdAt"`
	TrackingInfo []struct {
		Number  string `json:"number"`
		Company string `json:"company"`
	} `json:"trackingInfo"`
}
