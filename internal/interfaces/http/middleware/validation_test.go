package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storesync/backend/internal/interfaces/http/dto"
)

func TestSetupValidator(t *testing.T) {
	SetupValidator()

	v, ok := binding.Validator.Engine().(*validator.Validate)
	assert.True(t, ok)
	assert.NotNil(t, v)
}

func TestHandleValidationError(t *testing.T) {
	SetupValidator()
	gin.SetMode(gin.TestMode)

	type connectRequest struct {
		ShopDomain  string `json:"shop_domain" binding:"required"`
		AccessToken string `json:"access_token" binding:"required,min=10"`
	}

	router := gin.New()
	router.POST("/stores", func(c *gin.Context) {
		var req connectRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	t.Run("reports every failing field under its JSON name", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/stores", strings.NewReader(`{"access_token": "short"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Success)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		require.Len(t, resp.Error.Details, 2)

		fields := []string{resp.Error.Details[0].Field, resp.Error.Details[1].Field}
		assert.Contains(t, fields, "shop_domain")
		assert.Contains(t, fields, "access_token")
	})

	t.Run("valid input passes", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/stores",
			strings.NewReader(`{"shop_domain": "acme.myshopify.com", "access_token": "shpat_abcdef"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestGetValidationMessage(t *testing.T) {
	type input struct {
		Required string `binding:"required"`
		Min      string `binding:"min=5"`
		Max      string `binding:"max=10"`
		UUID     string `binding:"uuid"`
		OneOf    string `binding:"oneof=asc desc"`
		URL      string `binding:"url"`
	}

	v := validator.New()
	v.SetTagName("binding")
	err := v.Struct(input{Min: "ab", Max: "far too long to pass", UUID: "nope", OneOf: "x", URL: "nope"})
	require.Error(t, err)

	expected := map[string]string{
		"Required": "This field is required",
		"Min":      "Must be at least 5 characters",
		"Max":      "Must be at most 10 characters",
		"UUID":     "Invalid UUID format",
		"OneOf":    "Must be one of: asc desc",
		"URL":      "Invalid URL format",
	}

	for _, e := range err.(validator.ValidationErrors) {
		want, ok := expected[e.Field()]
		require.True(t, ok, "unexpected failing field %s", e.Field())
		assert.Equal(t, want, getValidationMessage(e))
	}
}
