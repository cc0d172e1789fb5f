package server

import (
	"fmt"
	"log"
	"net"
	"path"
	"sort"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v3"

	"mtserver/internal/config"
	"mtserver/internal/handler"
	"mtserver/internal/pool"
	"mtserver/internal/storage"
)

// サーバーの状態。idle → starting → running → stopped の順に遷移する
// 起動に失敗した場合は starting から idle に戻る
const (
	stateIdle int32 = iota
	stateStarting
	stateRunning
	stateStopped
)

// utilizationInterval 件の接続を受け付けるごとにプールの使用状況をログに出す
const utilizationInterval = 100

// Server はリスナーとワーカープールのライフサイクルを管理する構造体
type Server struct {
	config  *config.Config
	store   *storage.Store
	handler *handler.Handler
	pool    *pool.Pool

	listener net.Listener
	port     int
	loggers  []*log.Logger

	state         atomic.Int32
	totalRequests atomic.Int64
	conns         *xsync.MapOf[string, ConnInfo]

	done chan struct{}
}

// ConnInfo は処理中の接続の情報
type ConnInfo struct {
	ID         string    `json:"id"`
	RemoteAddr string    `json:"remote_addr"`
	Worker     int       `json:"worker"`
	Requests   int       `json:"requests"`
	Since      time.Time `json:"since"`
}

// Stats はサーバーの統計情報
type Stats struct {
	Host          string     `json:"host"`
	Port          int        `json:"port"`
	Workers       int        `json:"workers"`
	Active        int        `json:"active_connections"`
	Queued        int        `json:"queued_connections"`
	TotalRequests int64      `json:"total_requests"`
	Connections   []ConnInfo `json:"connections"`
}

// New は新しいServerインスタンスを作成する
func New(cfg *config.Config) *Server {
	s := &Server{
		config: cfg,
		store:  storage.New(cfg.Files.Root, cfg.UploadsDir()),
		conns:  xsync.NewMapOf[string, ConnInfo](),
		done:   make(chan struct{}),
	}
	s.pool = pool.New(cfg.Server.MaxThreads, cfg.Server.QueueCapacity, s.serveConn)
	return s
}

// Start はソケットをリッスンし、ワーカーを起動する
func (s *Server) Start() error {
	if !s.state.CompareAndSwap(stateIdle, stateStarting) {
		return ErrAlreadyStarted
	}

	if err := s.store.EnsureDirs(); err != nil {
		s.state.Store(stateIdle)
		return err
	}

	ln, err := listen(s.config)
	if err != nil {
		log.Printf("ソケットの準備に失敗しました (%s): %v", s.config.ServerAddress(), err)
		s.state.Store(stateIdle)
		return err
	}
	s.listener = ln
	s.port = ln.Addr().(*net.TCPAddr).Port

	// ポート0の場合もバインドしたポートでHostヘッダーを検証する
	s.handler = handler.New(handler.Config{
		Host:       s.config.Server.Host,
		Port:       s.port,
		Index:      s.config.Files.Index,
		UploadsURL: path.Join("/", s.config.Files.Uploads),
	}, s.store)

	s.loggers = make([]*log.Logger, s.config.Server.MaxThreads+1)
	for i := range s.loggers {
		s.loggers[i] = log.New(log.Writer(), fmt.Sprintf("[worker-%d] ", i), log.LstdFlags|log.Lmsgprefix)
	}

	s.pool.Start()
	s.state.Store(stateRunning)

	log.Printf("HTTP Server started on http://%s", s.Addr())
	log.Printf("Thread pool size: %d", s.pool.Size())
	log.Printf("Serving files from '%s' directory", s.store.Root())
	log.Printf("Uploads are written to '%s'", s.store.UploadsDir())
	log.Println("Press Ctrl+C to stop the server")

	return nil
}

// Run は停止されるまで接続を受け付ける
// 未起動ならStartを呼び、停止処理が完了してから戻る
func (s *Server) Run() error {
	if s.state.Load() == stateIdle {
		if err := s.Start(); err != nil {
			return err
		}
	}

	var accepted int
	for s.Running() {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.Running() {
				log.Printf("接続の受け付けに失敗しました: %v", err)
			}
			continue
		}

		accepted++
		if accepted%utilizationInterval == 0 {
			log.Printf("Thread pool status: %d/%d active", s.pool.Active(), s.pool.Size())
		}

		// 満杯ならレスポンスを返さずに閉じる
		if !s.pool.Submit(conn) {
			log.Println("Warning: Thread pool saturated, rejecting connection")
			_ = conn.Close()
		}
	}

	<-s.done
	return nil
}

// Stop はサーバーをグレースフルに停止する。実行中でなければ何もしない
func (s *Server) Stop() {
	if !s.state.CompareAndSwap(stateRunning, stateStopped) {
		return
	}

	log.Println("サーバーをシャットダウンしています...")

	// 新しい接続の受け付けを止め、キューに残った接続を閉じてからワーカーの終了を待つ
	if err := s.listener.Close(); err != nil {
		log.Printf("リスナーのクローズに失敗しました: %v", err)
	}
	for _, conn := range s.pool.Close() {
		_ = conn.Close()
	}
	s.pool.Wait()

	close(s.done)
	log.Println("Server stopped")
}

// Running はサーバーが実行中かを返す
func (s *Server) Running() bool {
	return s.state.Load() == stateRunning
}

// Addr はバインドしたアドレスを返す
func (s *Server) Addr() string {
	return net.JoinHostPort(s.config.Server.Host, fmt.Sprint(s.port))
}

// Port はバインドしたポートを返す
func (s *Server) Port() int {
	return s.port
}

// Stats は現在の統計情報を返す
func (s *Server) Stats() Stats {
	conns := make([]ConnInfo, 0, s.conns.Size())
	s.conns.Range(func(_ string, info ConnInfo) bool {
		conns = append(conns, info)
		return true
	})
	sort.Slice(conns, func(i, j int) bool {
		return conns[i].Since.Before(conns[j].Since)
	})

	return Stats{
		Host:          s.config.Server.Host,
		Port:          s.port,
		Workers:       s.pool.Size(),
		Active:        s.pool.Active(),
		Queued:        s.pool.Queued(),
		TotalRequests: s.totalRequests.Load(),
		Connections:   conns,
	}
}

// workerLogger はワーカーIDをプレフィックスに持つロガーを返す
func (s *Server) workerLogger(id int) *log.Logger {
	if id >= 0 && id < len(s.loggers) {
		return s.loggers[id]
	}
	return log.Default()
}
