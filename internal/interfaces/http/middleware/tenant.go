package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TenantIDKey is the gin context key holding the resolved tenant ID.
const TenantIDKey = "tenant_id"

// TenantContext resolves the tenant from the X-Tenant-ID header and stores it
// in the gin context for handlers, tracing, and metrics. Invalid values are
// dropped here so downstream consumers only ever see a well-formed UUID.
func TenantContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw := c.GetHeader("X-Tenant-ID"); raw != "" {
			if id, err := uuid.Parse(raw); err == nil {
				c.Set(TenantIDKey, id.String())
			}
		}
		c.Next()
	}
}

// GetTenantID returns the tenant ID set by TenantContext, or empty.
func GetTenantID(c *gin.Context) string {
	if v, exists := c.Get(TenantIDKey); exists {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}
