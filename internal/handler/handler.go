// Package handler はリクエストを検証し、メソッドごとの処理でレスポンスを作成する
//
// 責務:
//   - Host ヘッダーとパスの検証
//   - GET: 配信ルート配下のファイルを返す
//   - POST: JSON ボディをアップロードディレクトリに保存する
//   - それ以外のメソッドは 405
package handler

import (
	"log"
	"path"
	"path/filepath"
	"strings"
	"time"

	"mtserver/internal/httpmsg"
	"mtserver/internal/storage"
)

// Config はハンドラーの設定
type Config struct {
	Host       string // 設定されたホスト
	Port       int    // 実際にバインドしたポート
	Index      string // "/" に対応するファイル名
	UploadsURL string // アップロードを公開するパス (例: /uploads)
}

// Handler はリクエストハンドラー
type Handler struct {
	host       string
	port       int
	index      string
	uploadsURL string
	store      *storage.Store
	now        func() time.Time
}

// New は新しいHandlerを作成する
func New(cfg Config, store *storage.Store) *Handler {
	return &Handler{
		host:       cfg.Host,
		port:       cfg.Port,
		index:      cfg.Index,
		uploadsURL: cfg.UploadsURL,
		store:      store,
		now:        time.Now,
	}
}

// Serve はメソッドに応じてリクエストを処理する
func (h *Handler) Serve(lg *log.Logger, req *httpmsg.Request) *httpmsg.Response {
	switch req.Method {
	case "GET":
		return h.handleGet(lg, req)
	case "POST":
		return h.handlePost(lg, req)
	default:
		lg.Printf("Unsupported method: %s", req.Method)
		return httpmsg.Error(httpmsg.StatusMethodNotAllowed, "Method Not Allowed")
	}
}

// handleGet は配信ルート配下のファイルを返す
func (h *Handler) handleGet(lg *log.Logger, req *httpmsg.Request) *httpmsg.Response {
	reqPath := req.Path
	if reqPath == "/" {
		reqPath = "/" + h.index
	}
	filePath := h.store.Resolve(reqPath)

	lg.Printf("Request: %s %s %s", req.Method, req.Path, req.Version)

	if !h.ValidHost(req.Headers) {
		lg.Println("Host validation failed")
		return httpmsg.Error(httpmsg.StatusForbidden, "Forbidden: Invalid Host header")
	}
	lg.Printf("Host validation: %s ok", req.Headers["host"])

	if !ValidPath(req.Path) {
		lg.Printf("Path validation failed: %s", req.Path)
		return httpmsg.Error(httpmsg.StatusForbidden, "Forbidden: Invalid path")
	}

	if !h.store.Exists(filePath) {
		lg.Printf("File not found: %s", filePath)
		return httpmsg.Error(httpmsg.StatusNotFound, "Not Found")
	}

	content := h.store.ReadFile(filePath)
	if len(content) == 0 {
		lg.Printf("Error reading file: %s", filePath)
		return httpmsg.Error(httpmsg.StatusInternalServerError, "Internal Server Error")
	}

	filename := filepath.Base(filePath)
	contentType := httpmsg.ContentType(filePath)
	if contentType == httpmsg.ContentTypeHTML {
		lg.Printf("Sending HTML file: %s (%d bytes)", filename, len(content))
	} else {
		lg.Printf("Sending binary file: %s (%d bytes)", filename, len(content))
	}

	return &httpmsg.Response{
		StatusCode:  httpmsg.StatusOK,
		ContentType: contentType,
		Body:        content,
		Filename:    filename,
	}
}

// handlePost はJSONボディをアップロードとして保存する
func (h *Handler) handlePost(lg *log.Logger, req *httpmsg.Request) *httpmsg.Response {
	lg.Printf("Request: %s %s %s", req.Method, req.Path, req.Version)

	if !h.ValidHost(req.Headers) {
		lg.Println("Host validation failed")
		return httpmsg.Error(httpmsg.StatusForbidden, "Forbidden: Invalid Host header")
	}

	contentType, ok := req.Headers["content-type"]
	if !ok || !strings.Contains(contentType, "application/json") {
		if !ok {
			contentType = "missing"
		}
		lg.Printf("Invalid Content-Type: %s", contentType)
		return httpmsg.Error(httpmsg.StatusUnsupportedMediaType, "Unsupported Media Type")
	}

	if !LooksLikeJSON(req.Body) {
		lg.Println("Invalid JSON data")
		return httpmsg.Error(httpmsg.StatusBadRequest, "Bad Request: Invalid JSON")
	}

	name := storage.UploadFilename(h.now())
	filePath, err := h.store.WriteUpload(name, []byte(req.Body))
	if err != nil {
		lg.Printf("Error writing file: %v", err)
		return httpmsg.Error(httpmsg.StatusInternalServerError, "Internal Server Error")
	}

	body := "{\n" +
		"  \"status\": \"success\",\n" +
		"  \"message\": \"File created successfully\",\n" +
		"  \"filepath\": \"" + path.Join(h.uploadsURL, name) + "\"\n" +
		"}"

	lg.Printf("File created: %s", filePath)
	return &httpmsg.Response{
		StatusCode:  httpmsg.StatusCreated,
		ContentType: httpmsg.ContentTypeJSON,
		Body:        []byte(body),
	}
}
