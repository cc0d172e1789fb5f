package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestConfigLoad は設定の読み込みをテストする
func TestConfigLoad(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("SERVER_HOST", "")
	t.Setenv("PORT", "")
	t.Setenv("MAX_THREADS", "")
	t.Setenv("RESOURCES_DIR", "")
	t.Setenv("ADMIN_PORT", "")

	cfg, err := Load()
	require.NoError(t, err, "設定の読み込みに失敗しました")
	require.NotNil(t, cfg)

	// デフォルト値の検証
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 10, cfg.Server.MaxThreads)
	assert.Equal(t, 50, cfg.Server.QueueCapacity)
	assert.Equal(t, 50, cfg.Server.Backlog)
	assert.Equal(t, 8192, cfg.Server.BufferSize)
	assert.Equal(t, 100, cfg.Server.MaxRequestsPerConn)
	assert.Zero(t, cfg.Server.ReadTimeout, "読み込みタイムアウトはデフォルトで無効")
	assert.Equal(t, "resources", cfg.Files.Root)
	assert.Equal(t, filepath.Join("resources", "uploads"), cfg.UploadsDir())
	assert.Zero(t, cfg.Admin.Port, "ステータスAPIはデフォルトで無効")
}

// TestConfigValidation は設定の検証をテストする
func TestConfigValidation(t *testing.T) {
	testCases := []struct {
		name      string
		modify    func(c *Config)
		expectErr bool
	}{
		{
			name:      "正常な設定",
			modify:    func(c *Config) {},
			expectErr: false,
		},
		{
			name:      "エフェメラルポート",
			modify:    func(c *Config) { c.Server.Port = 0 },
			expectErr: false,
		},
		{
			name:      "無効なポート番号",
			modify:    func(c *Config) { c.Server.Port = 99999 },
			expectErr: true,
		},
		{
			name:      "ホストなし",
			modify:    func(c *Config) { c.Server.Host = "" },
			expectErr: true,
		},
		{
			name:      "ワーカー数ゼロ",
			modify:    func(c *Config) { c.Server.MaxThreads = 0 },
			expectErr: true,
		},
		{
			name:      "キュー容量ゼロ",
			modify:    func(c *Config) { c.Server.QueueCapacity = 0 },
			expectErr: true,
		},
		{
			name:      "負のタイムアウト",
			modify:    func(c *Config) { c.Server.ReadTimeout = -time.Second },
			expectErr: true,
		},
		{
			name:      "配信ルートなし",
			modify:    func(c *Config) { c.Files.Root = "" },
			expectErr: true,
		},
		{
			name:      "無効な管理ポート",
			modify:    func(c *Config) { c.Admin.Port = -1 },
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.modify(cfg)
			err := cfg.Validate()
			if tc.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// TestServerAddress はサーバーアドレスの生成をテストする
func TestServerAddress(t *testing.T) {
	cfg := &Config{
		Server: ServerConfig{
			Host: "192.168.1.100",
			Port: 9090,
		},
		Admin: AdminConfig{
			Host: "127.0.0.1",
			Port: 9091,
		},
	}

	assert.Equal(t, "192.168.1.100:9090", cfg.ServerAddress())
	assert.Equal(t, "127.0.0.1:9091", cfg.AdminAddress())

	cfg.Server.Host = "::1"
	assert.Equal(t, "[::1]:9090", cfg.ServerAddress(), "IPv6は角括弧で囲む")
}

// TestEnvironmentVariables は環境変数の処理をテストする
// 注意: このテストは環境変数を変更するため、parallelは使わない
func TestEnvironmentVariables(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("SERVER_HOST", "0.0.0.0")
	t.Setenv("PORT", "9999")
	t.Setenv("MAX_THREADS", "4")
	t.Setenv("RESOURCES_DIR", "/srv/www")
	t.Setenv("ADMIN_PORT", "9100")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, 4, cfg.Server.MaxThreads)
	assert.Equal(t, "/srv/www", cfg.Files.Root)
	assert.Equal(t, 9100, cfg.Admin.Port)
}

// TestConfigFile はYAML設定ファイルの読み込みをテストする
func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.yaml")
	data := []byte(`server:
  port: 8181
  max_threads: 3
  queue_capacity: 7
  read_timeout: 30s
files:
  root: public
admin:
  port: 8282
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("SERVER_HOST", "")
	t.Setenv("PORT", "")
	t.Setenv("MAX_THREADS", "")
	t.Setenv("RESOURCES_DIR", "")
	t.Setenv("ADMIN_PORT", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8181, cfg.Server.Port)
	assert.Equal(t, 3, cfg.Server.MaxThreads)
	assert.Equal(t, 7, cfg.Server.QueueCapacity)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "public", cfg.Files.Root)
	assert.Equal(t, 8282, cfg.Admin.Port)

	// ファイルに書かれていない値はデフォルトのまま
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 8192, cfg.Server.BufferSize)
	assert.Equal(t, "index.html", cfg.Files.Index)
}

// TestConfigFileMissing は存在しない設定ファイルのエラーをテストする
func TestConfigFileMissing(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := Load()
	assert.Error(t, err)
}
