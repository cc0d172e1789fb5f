package admin

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mtserver/internal/config"
	"mtserver/internal/server"
)

type fakeStats struct {
	running bool
	stats   server.Stats
}

func (f *fakeStats) Stats() server.Stats { return f.stats }
func (f *fakeStats) Running() bool       { return f.running }

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(stats *fakeStats) *Server {
	cfg := config.Default()
	cfg.Admin.Port = 0
	return New(cfg, stats)
}

// TestEndpoints はステータスAPIのエンドポイントをテストする
func TestEndpoints(t *testing.T) {
	testCases := []struct {
		name           string
		running        bool
		endpoint       string
		expectedStatus int
		expectedBody   string
	}{
		{"ヘルスチェック", true, "/health", http.StatusOK, "healthy"},
		{"停止中のヘルスチェック", false, "/health", http.StatusServiceUnavailable, "stopped"},
		{"ステータス", true, "/api/status", http.StatusOK, "running"},
		{"存在しないパス", true, "/api/unknown", http.StatusNotFound, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newTestServer(&fakeStats{running: tc.running})

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tc.endpoint, nil)
			srv.Handler().ServeHTTP(rec, req)

			assert.Equal(t, tc.expectedStatus, rec.Code)
			if tc.expectedBody == "" {
				return
			}

			var body struct {
				Status string `json:"status"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tc.expectedBody, body.Status)
		})
	}
}

func TestGetStatusBody(t *testing.T) {
	since := time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC)
	stats := &fakeStats{
		running: true,
		stats: server.Stats{
			Host:          "127.0.0.1",
			Port:          8080,
			Workers:       10,
			Active:        1,
			Queued:        2,
			TotalRequests: 42,
			Connections: []server.ConnInfo{
				{ID: "c1", RemoteAddr: "127.0.0.1:50000", Worker: 3, Requests: 5, Since: since},
			},
		},
	}
	srv := newTestServer(stats)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "running", resp.Status)
	assert.Equal(t, 10, resp.Server.Workers)
	assert.Equal(t, 1, resp.Server.Active)
	assert.Equal(t, 2, resp.Server.Queued)
	assert.Equal(t, int64(42), resp.Server.TotalRequests)
	require.Len(t, resp.Server.Connections, 1)
	assert.Equal(t, "c1", resp.Server.Connections[0].ID)
	assert.Equal(t, 5, resp.Server.Connections[0].Requests)
	assert.True(t, since.Equal(resp.Server.Connections[0].Since))
}

// TestStartAndShutdown はステータスAPIの起動とシャットダウンをテストする
func TestStartAndShutdown(t *testing.T) {
	srv := newTestServer(&fakeStats{running: true})
	require.NoError(t, srv.Start())

	resp, err := http.Get(fmt.Sprintf("http://%s/health", srv.Addr()))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, srv.Shutdown())

	_, err = http.Get(fmt.Sprintf("http://%s/health", srv.Addr()))
	assert.Error(t, err, "シャットダウン後は接続できない")
}
