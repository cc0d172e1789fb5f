// Package httpmsg はHTTP/1.1 リクエストの解析とレスポンスの組み立てを行う
//
// 1回の受信で届いたバイト列だけを解析する単純なパーサーで、
// 複数回の受信にまたがるリクエストの再構築は行わない。
package httpmsg

import (
	"strings"
)

// Request は解析済みのHTTPリクエスト
type Request struct {
	Method  string            // リクエストメソッド
	Path    string            // リクエストパス
	Version string            // プロトコルバージョン (例: HTTP/1.1)
	Headers map[string]string // 小文字化したヘッダー名 → 値
	Body    string            // リクエストボディ
}

// Header は大文字小文字を区別せずにヘッダー値を取得する
func (r *Request) Header(name string) (string, bool) {
	v, ok := r.Headers[strings.ToLower(name)]
	return v, ok
}

// ParseRequest は受信データをRequestに変換する
// 不正な入力でもエラーにはせず、Methodが空のRequestを返す
func ParseRequest(data []byte) *Request {
	req := &Request{Headers: make(map[string]string)}
	rest := string(data)

	// リクエストライン
	line, rest, more := nextLine(rest)
	fields := strings.Fields(line)
	if len(fields) > 0 {
		req.Method = fields[0]
	}
	if len(fields) > 1 {
		req.Path = fields[1]
	}
	if len(fields) > 2 {
		req.Version = strings.TrimSuffix(fields[2], "\r")
	}

	// ヘッダー (空行またはデータ末尾まで)
	for more {
		line, rest, more = nextLine(rest)
		if line == "" || line == "\r" {
			break
		}
		idx := strings.IndexByte(line, ':')
		if idx == -1 {
			continue
		}
		key := strings.ToLower(strings.Trim(line[:idx], " \t\r"))
		req.Headers[key] = strings.Trim(line[idx+1:], " \t\r")
	}

	// 残りはボディ。末尾の改行を1つだけ取り除く
	if more {
		req.Body = strings.TrimSuffix(rest, "\n")
	}

	return req
}

// nextLine は先頭の1行と残りを返す。行末の '\n' は含まない
func nextLine(s string) (line, rest string, more bool) {
	if s == "" {
		return "", "", false
	}
	idx := strings.IndexByte(s, '\n')
	if idx == -1 {
		return s, "", false
	}
	return s[:idx], s[idx+1:], true
}

// KeepAlive はリクエスト後に接続を維持すべきかを判定する
func (r *Request) KeepAlive() bool {
	if v, ok := r.Header("connection"); ok {
		return strings.ToLower(v) == "keep-alive"
	}
	return r.Version == "HTTP/1.1"
}
