package admin

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"mtserver/internal/server"
)

// HealthResponse はヘルスチェックのレスポンス
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// StatusResponse はステータスのレスポンス
type StatusResponse struct {
	Status    string       `json:"status"`
	Server    server.Stats `json:"server"`
	Timestamp time.Time    `json:"timestamp"`
}

// Handler はステータスAPIのハンドラー
type Handler struct {
	stats StatsProvider
}

// HealthCheck はヘルスチェックエンドポイントの実装
func (h *Handler) HealthCheck(c *gin.Context) {
	status := "healthy"
	code := http.StatusOK
	if !h.stats.Running() {
		status = "stopped"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, HealthResponse{
		Status:    status,
		Timestamp: time.Now(),
	})
}

// GetStatus はシステム状態取得エンドポイントの実装
func (h *Handler) GetStatus(c *gin.Context) {
	status := "running"
	if !h.stats.Running() {
		status = "stopped"
	}

	c.JSON(http.StatusOK, StatusResponse{
		Status:    status,
		Server:    h.stats.Stats(),
		Timestamp: time.Now(),
	})
}
