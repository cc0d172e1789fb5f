// Package admin はサーバーの状態を返すHTTP APIを提供する
//
// 仕様:
//   - GET /health: ヘルスチェック
//   - GET /api/status: ワーカー・接続・リクエストの統計
//   - gin を使用し、グレースフルシャットダウンに対応
package admin

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"mtserver/internal/config"
	"mtserver/internal/server"
)

// StatsProvider は統計情報を提供する
type StatsProvider interface {
	Stats() server.Stats
	Running() bool
}

// Server はステータスAPIのHTTPサーバーを管理する構造体
type Server struct {
	config     *config.Config
	httpServer *http.Server
	engine     *gin.Engine
	listener   net.Listener
}

// New は新しいServerインスタンスを作成する
func New(cfg *config.Config, stats StatsProvider) *Server {
	engine := gin.New()
	engine.Use(gin.Recovery())

	h := &Handler{stats: stats}
	engine.GET("/health", h.HealthCheck)
	engine.GET("/api/status", h.GetStatus)

	return &Server{
		config: cfg,
		engine: engine,
		httpServer: &http.Server{
			Addr:        cfg.AdminAddress(),
			Handler:     engine,
			ReadTimeout: 10 * time.Second,
		},
	}
}

// Handler はハンドラーを返す (テスト用)
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start はリッスンを開始し、別ゴルーチンで配信する
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("ステータスAPIの起動に失敗: %w", err)
	}
	s.listener = ln

	go func() {
		log.Printf("ステータスAPIを起動しています: %s", ln.Addr())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("ステータスAPIが異常終了しました: %v", err)
		}
	}()
	return nil
}

// Addr はリッスンしているアドレスを返す
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.httpServer.Addr
	}
	return s.listener.Addr().String()
}

// Shutdown はサーバーをグレースフルにシャットダウンする
func (s *Server) Shutdown() error {
	timeout := s.config.Admin.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("ステータスAPIのシャットダウンに失敗: %w", err)
	}
	return nil
}
