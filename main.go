package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/gin-gonic/gin"

	"mtserver/internal/admin"
	"mtserver/internal/config"
	"mtserver/internal/server"
)

// 使用方法: mtserver [port] [host] [max_threads]
func main() {
	// 設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("設定の読み込みに失敗しました: %v", err)
	}

	// 位置引数で設定を上書き
	if err := applyArgs(cfg, os.Args[1:]); err != nil {
		log.Fatalf("引数が不正です: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("設定の検証に失敗しました: %v", err)
	}

	// サーバーを作成して起動
	srv := server.New(cfg)
	if err := srv.Start(); err != nil {
		log.Fatalf("サーバーの起動に失敗しました: %v", err)
	}

	// ステータスAPI (admin.port > 0 の場合のみ)
	var status *admin.Server
	if cfg.Admin.Port > 0 {
		gin.SetMode(gin.ReleaseMode)
		status = admin.New(cfg, srv)
		if err := status.Start(); err != nil {
			log.Printf("ステータスAPIを無効にします: %v", err)
			status = nil
		}
	}

	// シグナルハンドリング
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		log.Println("シグナルを受信しました。シャットダウンします")
		if status != nil {
			if err := status.Shutdown(); err != nil {
				log.Println(err)
			}
		}
		srv.Stop()
	}()

	if err := srv.Run(); err != nil {
		log.Fatalf("サーバーの実行に失敗しました: %v", err)
	}
}

// applyArgs は [port] [host] [max_threads] を設定に反映する
func applyArgs(cfg *config.Config, args []string) error {
	if len(args) >= 1 {
		port, err := strconv.Atoi(args[0])
		if err != nil {
			return err
		}
		cfg.Server.Port = port
	}
	if len(args) >= 2 {
		cfg.Server.Host = args[1]
	}
	if len(args) >= 3 {
		threads, err := strconv.Atoi(args[2])
		if err != nil {
			return err
		}
		cfg.Server.MaxThreads = threads
	}
	return nil
}
