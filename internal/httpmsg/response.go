package httpmsg

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// ステータスコード
const (
	StatusOK                   = 200
	StatusCreated              = 201
	StatusBadRequest           = 400
	StatusForbidden            = 403
	StatusNotFound             = 404
	StatusMethodNotAllowed     = 405
	StatusUnsupportedMediaType = 415
	StatusInternalServerError  = 500
	StatusServiceUnavailable   = 503 // 予約済み。現在どの経路からも返さない
)

// Content-Type
const (
	ContentTypeHTML   = "text/html; charset=utf-8"
	ContentTypeBinary = "application/octet-stream"
	ContentTypeJSON   = "application/json"
)

// ServerName は Server ヘッダーの値
const ServerName = "Multi-threaded HTTP Server"

// DateLayout は Date ヘッダーの書式 (サーバーのローカル時刻)
const DateLayout = "2006-01-02 15:04:05"

var statusText = map[int]string{
	StatusOK:                   "OK",
	StatusCreated:              "Created",
	StatusBadRequest:           "Bad Request",
	StatusForbidden:            "Forbidden",
	StatusNotFound:             "Not Found",
	StatusMethodNotAllowed:     "Method Not Allowed",
	StatusUnsupportedMediaType: "Unsupported Media Type",
	StatusInternalServerError:  "Internal Server Error",
	StatusServiceUnavailable:   "Service Unavailable",
}

// StatusText はステータスコードに対応する理由句を返す
func StatusText(code int) string {
	if text, ok := statusText[code]; ok {
		return text
	}
	return "Unknown"
}

// ContentType はファイル拡張子からContent-Typeを決める
// HTML以外はすべてバイナリ扱いで添付ファイルとして返す
func ContentType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return ContentTypeHTML
	default:
		return ContentTypeBinary
	}
}

// Response は送信前のHTTPレスポンス
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
	Filename    string // Content-Disposition 用。空なら付与しない
}

// Error はJSONボディのエラーレスポンスを作成する
func Error(code int, message string) *Response {
	return &Response{
		StatusCode:  code,
		ContentType: ContentTypeJSON,
		Body:        []byte(`{"error": "` + message + `"}`),
	}
}

// Bytes はレスポンスをワイヤー形式にシリアライズする
func (r *Response) Bytes(now time.Time) []byte {
	var buf bytes.Buffer
	buf.Grow(256 + len(r.Body))

	fmt.Fprintf(&buf, "HTTP/1.1 %d %s\r\n", r.StatusCode, StatusText(r.StatusCode))
	buf.WriteString("Content-Type: " + r.ContentType + "\r\n")
	buf.WriteString("Content-Length: " + strconv.Itoa(len(r.Body)) + "\r\n")
	buf.WriteString("Date: " + now.Format(DateLayout) + "\r\n")
	buf.WriteString("Server: " + ServerName + "\r\n")

	if r.Filename != "" && r.ContentType == ContentTypeBinary {
		buf.WriteString(`Content-Disposition: attachment; filename="` + r.Filename + "\"\r\n")
	}

	// 接続を閉じる場合でも常に keep-alive を通知する
	buf.WriteString("Connection: keep-alive\r\n")
	buf.WriteString("Keep-Alive: timeout=30, max=100\r\n")
	buf.WriteString("\r\n")
	buf.Write(r.Body)

	return buf.Bytes()
}
