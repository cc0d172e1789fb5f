package pool

import (
	"net"
	"sync"
	"sync/atomic"
)

// ServeFunc はワーカーが1つの接続を最後まで処理する関数
type ServeFunc func(workerID int, conn net.Conn)

// Pool は固定数のワーカーでキューの接続を処理する
type Pool struct {
	size   int
	queue  *Queue
	serve  ServeFunc
	active atomic.Int64

	wg      sync.WaitGroup
	started atomic.Bool
}

// New は新しいPoolを作成する
func New(size, capacity int, serve ServeFunc) *Pool {
	return &Pool{
		size:  size,
		queue: NewQueue(capacity),
		serve: serve,
	}
}

// Start はワーカーを起動する。2回目以降の呼び出しは何もしない
func (p *Pool) Start() {
	if !p.started.CompareAndSwap(false, true) {
		return
	}
	for i := 1; i <= p.size; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Submit は接続をキューに追加する。満杯ならfalseを返し、接続は呼び出し側が閉じる
func (p *Pool) Submit(conn net.Conn) bool {
	return p.queue.Push(conn)
}

// Close はキューを閉じて全ワーカーを起こし、処理されなかった接続をすぐに返す
// ワーカーの終了は待たない
func (p *Pool) Close() []net.Conn {
	return p.queue.Close()
}

// Wait は全ワーカーの終了を待つ
// 処理中の接続はワーカーが最後まで処理してから終了する
func (p *Pool) Wait() {
	p.wg.Wait()
}

// Size はワーカー数を返す
func (p *Pool) Size() int {
	return p.size
}

// Active は接続を処理中のワーカー数を返す
func (p *Pool) Active() int {
	return int(p.active.Load())
}

// Queued はキューで待機中の接続数を返す
func (p *Pool) Queued() int {
	return p.queue.Len()
}

// worker はキューから接続を1つずつ取り出して処理する
func (p *Pool) worker(id int) {
	defer p.wg.Done()

	for {
		conn, ok := p.queue.Pop()
		if !ok {
			return
		}

		p.active.Add(1)
		p.serve(id, conn)
		p.active.Add(-1)
	}
}
