// Package pool は受け付けた接続の待ち行列と固定数のワーカーを管理する
//
// 仕様:
//   - キューは容量固定のFIFO。満杯ならPushは待たずにfalseを返す
//   - ワーカーはキューが空でない間、またはクローズされるまで待機する
//   - ワーカー数は起動時に固定で、動的な増減やワークスティールは行わない
package pool

import (
	"net"
	"sync"
)

// Queue はミューテックスと条件変数で保護された有界FIFO
type Queue struct {
	mu       sync.Mutex
	cond     *sync.Cond
	items    []net.Conn
	capacity int
	closed   bool
}

// NewQueue は新しいQueueを作成する
func NewQueue(capacity int) *Queue {
	q := &Queue{
		items:    make([]net.Conn, 0, capacity),
		capacity: capacity,
	}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push は接続を末尾に追加し、待機中のワーカーを1つ起こす
// 満杯またはクローズ済みの場合はfalseを返す
func (q *Queue) Push(conn net.Conn) bool {
	q.mu.Lock()
	if q.closed || len(q.items) >= q.capacity {
		q.mu.Unlock()
		return false
	}
	q.items = append(q.items, conn)
	q.mu.Unlock()

	q.cond.Signal()
	return true
}

// Pop は先頭の接続を取り出す。空なら追加かクローズまで待つ
// クローズ後は残りがあってもokはfalse
func (q *Queue) Pop() (net.Conn, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.items) == 0 && !q.closed {
		q.cond.Wait()
	}
	if q.closed {
		return nil, false
	}

	conn := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	return conn, true
}

// Len は待機中の接続数を返す
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Close はキューを閉じて全ワーカーを起こし、取り出されなかった接続を返す
func (q *Queue) Close() []net.Conn {
	q.mu.Lock()
	q.closed = true
	rest := q.items
	q.items = nil
	q.mu.Unlock()

	q.cond.Broadcast()
	return rest
}
