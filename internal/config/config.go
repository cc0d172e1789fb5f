package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config はアプリケーション全体の設定を保持する構造体
type Config struct {
	Server ServerConfig `yaml:"server"`
	Files  FilesConfig  `yaml:"files"`
	Admin  AdminConfig  `yaml:"admin"`
}

// ServerConfig はHTTPサーバーの設定
type ServerConfig struct {
	Host string `yaml:"host"` // リッスンするホスト
	Port int    `yaml:"port"` // リッスンするポート番号 (0 はエフェメラル)

	// ワーカープール設定
	MaxThreads    int `yaml:"max_threads"`    // ワーカー数
	QueueCapacity int `yaml:"queue_capacity"` // 接続キューの上限
	Backlog       int `yaml:"backlog"`        // listen のバックログ

	// コネクション設定
	BufferSize         int           `yaml:"buffer_size"`           // 1回の受信で読み込む最大バイト数
	MaxRequestsPerConn int           `yaml:"max_requests_per_conn"` // 1接続あたりの最大リクエスト数
	ReadTimeout        time.Duration `yaml:"read_timeout"`          // 0 で無効
}

// FilesConfig は配信ファイルとアップロードの設定
type FilesConfig struct {
	Root    string `yaml:"root"`    // 配信ルート
	Index   string `yaml:"index"`   // "/" に対応するファイル
	Uploads string `yaml:"uploads"` // ルート配下のアップロードディレクトリ
}

// AdminConfig はステータスAPIの設定
type AdminConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"` // 0 で無効
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Default はデフォルト設定を返す
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:               "127.0.0.1",
			Port:               8080,
			MaxThreads:         10,
			QueueCapacity:      50,
			Backlog:            50,
			BufferSize:         8192,
			MaxRequestsPerConn: 100,
		},
		Files: FilesConfig{
			Root:    "resources",
			Index:   "index.html",
			Uploads: "uploads",
		},
		Admin: AdminConfig{
			Host:            "127.0.0.1",
			ShutdownTimeout: 5 * time.Second,
		},
	}
}

// Load は設定を読み込む
// デフォルト値 → CONFIG_FILE (YAML) → 環境変数 の順に上書きする
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.Server.Host = getEnvOrDefault("SERVER_HOST", cfg.Server.Host)
	cfg.Server.Port = getEnvAsIntOrDefault("PORT", cfg.Server.Port)
	cfg.Server.MaxThreads = getEnvAsIntOrDefault("MAX_THREADS", cfg.Server.MaxThreads)
	cfg.Files.Root = getEnvOrDefault("RESOURCES_DIR", cfg.Files.Root)
	cfg.Admin.Port = getEnvAsIntOrDefault("ADMIN_PORT", cfg.Admin.Port)

	// 設定の検証
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("設定の検証に失敗: %w", err)
	}

	return cfg, nil
}

// loadFile はYAMLファイルの内容で設定を上書きする
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("設定ファイルの読み込みに失敗: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("設定ファイルの解析に失敗: %w", err)
	}
	return nil
}

// Validate は設定の妥当性を検証する
func (c *Config) Validate() error {
	// サーバー設定の検証
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("無効なポート番号: %d", c.Server.Port)
	}
	if c.Server.Host == "" {
		return fmt.Errorf("ホストが設定されていません")
	}
	if c.Server.MaxThreads < 1 {
		return fmt.Errorf("無効なワーカー数: %d", c.Server.MaxThreads)
	}
	if c.Server.QueueCapacity < 1 {
		return fmt.Errorf("無効なキュー容量: %d", c.Server.QueueCapacity)
	}
	if c.Server.Backlog < 1 {
		return fmt.Errorf("無効なバックログ: %d", c.Server.Backlog)
	}
	if c.Server.BufferSize < 1 {
		return fmt.Errorf("無効なバッファサイズ: %d", c.Server.BufferSize)
	}
	if c.Server.MaxRequestsPerConn < 1 {
		return fmt.Errorf("無効な最大リクエスト数: %d", c.Server.MaxRequestsPerConn)
	}
	if c.Server.ReadTimeout < 0 {
		return fmt.Errorf("読み込みタイムアウトが負の値です: %v", c.Server.ReadTimeout)
	}

	// ファイル設定の検証
	if c.Files.Root == "" || c.Files.Index == "" || c.Files.Uploads == "" {
		return fmt.Errorf("ファイルパスが設定されていません")
	}

	if c.Admin.Port < 0 || c.Admin.Port > 65535 {
		return fmt.Errorf("無効な管理ポート番号: %d", c.Admin.Port)
	}

	return nil
}

// ServerAddress はサーバーのリッスンアドレスを返す
func (c *Config) ServerAddress() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// AdminAddress はステータスAPIのリッスンアドレスを返す
func (c *Config) AdminAddress() string {
	return fmt.Sprintf("%s:%d", c.Admin.Host, c.Admin.Port)
}

// UploadsDir はアップロード先ディレクトリのパスを返す
func (c *Config) UploadsDir() string {
	return filepath.Join(c.Files.Root, c.Files.Uploads)
}

// getEnvOrDefault は環境変数を取得し、設定されていない場合はデフォルト値を返す
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsIntOrDefault は環境変数を整数として取得し、設定されていない場合はデフォルト値を返す
func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var intVal int
		if _, err := fmt.Sscanf(value, "%d", &intVal); err == nil {
			return intVal
		}
	}
	return defaultValue
}
