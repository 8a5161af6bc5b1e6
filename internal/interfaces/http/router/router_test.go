package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewRouter(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	assert.NotNil(t, r)
	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)
}

func TestRouterWithAPIVersion(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine, WithAPIVersion("v2"))

	assert.Equal(t, "v2", r.apiVersion)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine, WithAPIVersion("v1"))

	group := NewDomainGroup("system", "/system")
	group.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	r.Register(group)
	r.Setup()

	req := httptest.NewRequest("GET", "/api/v1/system/ping", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestDomainGroup(t *testing.T) {
	t.Run("carries its name", func(t *testing.T) {
		g := NewDomainGroup("stores", "/stores")
		assert.Equal(t, "stores", g.Name())
	})

	t.Run("registers each HTTP method", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("stores", "/stores")
		g.GET("", func(c *gin.Context) { c.String(http.StatusOK, "list") }).
			POST("", func(c *gin.Context) { c.String(http.StatusCreated, "created") }).
			PUT("/:id", func(c *gin.Context) { c.String(http.StatusOK, "updated") }).
			DELETE("/:id", func(c *gin.Context) { c.String(http.StatusNoContent, "") })

		api := engine.Group("/api/v1")
		g.RegisterRoutes(api)

		tests := []struct {
			method string
			path   string
			status int
		}{
			{"GET", "/api/v1/stores", http.StatusOK},
			{"POST", "/api/v1/stores", http.StatusCreated},
			{"PUT", "/api/v1/stores/123", http.StatusOK},
			{"DELETE", "/api/v1/stores/123", http.StatusNoContent},
		}
		for _, tt := range tests {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code, "%s %s", tt.method, tt.path)
		}
	})

	t.Run("group middleware wraps only its own routes", func(t *testing.T) {
		engine := gin.New()

		webhooks := NewDomainGroup("webhooks", "/webhooks")
		webhooks.Use(func(c *gin.Context) {
			c.Header("X-Intake", "raw")
			c.Next()
		})
		webhooks.POST("/shopify", func(c *gin.Context) {
			c.String(http.StatusOK, "ok")
		})

		stores := NewDomainGroup("stores", "/stores")
		stores.GET("", func(c *gin.Context) {
			c.String(http.StatusOK, "ok")
		})

		api := engine.Group("/api/v1")
		webhooks.RegisterRoutes(api)
		stores.RegisterRoutes(api)

		req := httptest.NewRequest("POST", "/api/v1/webhooks/shopify", nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		assert.Equal(t, "raw", w.Header().Get("X-Intake"))

		req = httptest.NewRequest("GET", "/api/v1/stores", nil)
		w = httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		assert.Empty(t, w.Header().Get("X-Intake"))
	})
}

func TestMultipleDomainGroups(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	stores := NewDomainGroup("stores", "/stores")
	stores.GET("", func(c *gin.Context) {
		c.String(http.StatusOK, "stores")
	})

	webhooks := NewDomainGroup("webhooks", "/webhooks")
	webhooks.POST("/shopify", func(c *gin.Context) {
		c.String(http.StatusOK, "received")
	})

	r.Register(stores).Register(webhooks)
	r.Setup()

	req1 := httptest.NewRequest("GET", "/api/v1/stores", nil)
	w1 := httptest.NewRecorder()
	engine.ServeHTTP(w1, req1)
	assert.Equal(t, http.StatusOK, w1.Code)
	assert.Equal(t, "stores", w1.Body.String())

	req2 := httptest.NewRequest("POST", "/api/v1/webhooks/shopify", nil)
	w2 := httptest.NewRecorder()
	engine.ServeHTTP(w2, req2)
	assert.Equal(t, http.StatusOK, w2.Code)
	assert.Equal(t, "received", w2.Body.String())
}
