package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemPing(t *testing.T) {
	h := NewSystemHandler()

	router := gin.New()
	router.GET("/system/ping", h.Ping)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/system/ping", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool         `json:"success"`
		Data    PingResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "pong", resp.Data.Message)
	assert.NotEmpty(t, resp.Data.Timestamp)
}

func TestSystemInfo(t *testing.T) {
	h := NewSystemHandler()

	router := gin.New()
	router.GET("/system/info", h.GetSystemInfo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/system/info", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool               `json:"success"`
		Data    SystemInfoResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "StoreSync API", resp.Data.Name)
	assert.NotEmpty(t, resp.Data.GoVersion)
	assert.NotEmpty(t, resp.Data.Uptime)
}
