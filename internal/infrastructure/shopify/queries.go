package shopify

// Admin API queries for the bulk sync stages. Each takes $first/$after for
// pagination and an optional $query search filter.

// ProductsResource pages the product catalog with nested variants
var ProductsResource = Resource{
	Name: "products",
	Query: `query Products($first: Int!, $after: String, $query: String) {
  products(first: $first, after: $after, query: $query) {
    nodes {
      id title handle vendor productType status tags publishedAt createdAt updatedAt
      variants(first: 100) {
        nodes {
          id sku title position price compareAtPrice createdAt updatedAt inventoryQuantity
          inventoryItem { id unitCost { amount } }
        }
      }
    }
    pageInfo { hasNextPage endCursor }
  }
}`,
}

// InventoryLevelsResource pages per-location inventory levels
var InventoryLevelsResource = Resource{
	Name: "inventoryLevels",
	Query: `query InventoryLevels($first: Int!, $after: String, $query: String) {
  inventoryLevels(first: $first, after: $after, query: $query) {
    nodes {
      id
      location { id }
      item { id }
      quantities(names: ["available"]) { name quantity }
    }
    pageInfo { hasNextPage endCursor }
  }
}`,
}

// CustomersResource pages the customer list
var CustomersResource = Resource{
	Name: "customers",
	Query: `query Customers($first: Int!, $after: String, $query: String) {
  customers(first: $first, after: $after, query: $query) {
    nodes { id email firstName lastName phone createdAt updatedAt }
    pageInfo { hasNextPage endCursor }
  }
}`,
}

// OrdersResource pages orders with nested lines, transactions, refunds and
// fulfillments
var OrdersResource = Resource{
	Name: "orders",
	Query: `query Orders($first: Int!, $after: String, $query: String) {
  orders(first: $first, after: $after, query: $query) {
    nodes {
      id name email currencyCode displayFinancialStatus displayFulfillmentStatus
      subtotalPriceSet { shopMoney { amount currencyCode } }
      totalDiscountsSet { shopMoney { amount currencyCode } }
      totalTaxSet { shopMoney { amount currencyCode } }
      totalPriceSet { shopMoney { amount currencyCode } }
      processedAt cancelledAt closedAt createdAt updatedAt
      customer { id }
      lineItems(first: 100) {
        nodes {
          id title sku quantity
          originalUnitPriceSet { shopMoney { amount currencyCode } }
          totalDiscountSet { shopMoney { amount currencyCode } }
          product { id }
          variant { id }
        }
      }
      transactions { id kind status gateway amountSet { shopMoney { amount currencyCode } } processedAt }
      refunds { id note totalRefundedSet { shopMoney { amount currencyCode } } createdAt }
      fulfillments { id status createdAt trackingInfo { number company } }
    }
    pageInfo { hasNextPage endCursor }
  }
}`,
}
