package server

import (
	"errors"
	"io"
	"log"
	"net"
	"time"

	"github.com/google/uuid"

	"mtserver/internal/httpmsg"
)

// connState は接続ループの状態
type connState int

const (
	stateReceive connState = iota
	stateParse
	stateDispatch
	stateRespond
	stateContinue
	stateClose
)

// conn は1つの接続の処理状態。1つのワーカーだけが所有する
type conn struct {
	srv *Server
	rwc net.Conn
	lg  *log.Logger
	id  string

	buf      []byte
	data     []byte
	req      *httpmsg.Request
	resp     *httpmsg.Response
	requests int
}

// serveConn はワーカーから呼ばれ、接続を閉じるまで処理する
func (s *Server) serveConn(workerID int, rwc net.Conn) {
	c := &conn{
		srv: s,
		rwc: rwc,
		lg:  s.workerLogger(workerID),
		id:  uuid.New().String(),
		buf: make([]byte, s.config.Server.BufferSize),
	}

	s.conns.Store(c.id, ConnInfo{
		ID:         c.id,
		RemoteAddr: rwc.RemoteAddr().String(),
		Worker:     workerID,
		Since:      time.Now(),
	})
	defer s.conns.Delete(c.id)

	c.lg.Printf("Connection from %s assigned", rwc.RemoteAddr())
	c.serve()
}

// serve は RECEIVE → PARSE → DISPATCH → RESPOND → CONTINUE/CLOSE を繰り返す
func (c *conn) serve() {
	defer func() {
		if err := recover(); err != nil {
			c.lg.Printf("panic serving %s: %v", c.rwc.RemoteAddr(), err)
		}
		c.close()
	}()

	state := stateReceive
	for state != stateClose {
		switch state {
		case stateReceive:
			state = c.receive()
		case stateParse:
			c.req = httpmsg.ParseRequest(c.data)
			state = stateDispatch
		case stateDispatch:
			c.resp = c.srv.handler.Serve(c.lg, c.req)
			state = stateRespond
		case stateRespond:
			state = c.respond()
		case stateContinue:
			state = c.next()
		}
	}
}

// receive は1回だけ読み込む。届いたデータが1つのリクエストとして扱われる
func (c *conn) receive() connState {
	if !c.srv.Running() {
		return stateClose
	}

	if timeout := c.srv.config.Server.ReadTimeout; timeout > 0 {
		_ = c.rwc.SetReadDeadline(time.Now().Add(timeout))
	}

	n, err := c.rwc.Read(c.buf)
	if n <= 0 {
		if err != nil && !errors.Is(err, io.EOF) {
			c.lg.Printf("受信に失敗しました: %v", err)
		}
		return stateClose
	}

	c.data = c.buf[:n]
	return stateParse
}

// respond はレスポンス全体を書き込む
func (c *conn) respond() connState {
	c.requests++
	c.srv.totalRequests.Add(1)
	c.srv.conns.Compute(c.id, func(info ConnInfo, loaded bool) (ConnInfo, bool) {
		info.Requests = c.requests
		return info, !loaded
	})

	// net.Conn の Write は全バイトを書き込むかエラーを返す
	n, err := c.rwc.Write(c.resp.Bytes(time.Now()))
	if err != nil {
		c.lg.Printf("送信に失敗しました: %v", err)
		return stateClose
	}
	c.lg.Printf("Response: %d %s (%d bytes transferred)",
		c.resp.StatusCode, httpmsg.StatusText(c.resp.StatusCode), n)
	return stateContinue
}

// next は接続を維持するかを決める
func (c *conn) next() connState {
	if c.requests < c.srv.config.Server.MaxRequestsPerConn && c.req.KeepAlive() {
		c.lg.Println("Connection: keep-alive")
		return stateReceive
	}
	return stateClose
}

// close は接続を閉じる
func (c *conn) close() {
	_ = c.rwc.Close()

	if c.requests >= c.srv.config.Server.MaxRequestsPerConn {
		c.lg.Println("Connection closed: reached max requests limit")
	} else {
		c.lg.Println("Connection closed")
	}
}
