// Package storage は配信ファイルの読み込みとアップロードの書き込みを担う
package storage

import (
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"
)

// Store は配信ルートとアップロードディレクトリを扱う
type Store struct {
	root    string
	uploads string
}

// New は新しいStoreを作成する
func New(root, uploadsDir string) *Store {
	return &Store{
		root:    root,
		uploads: uploadsDir,
	}
}

// Root は配信ルートを返す
func (s *Store) Root() string {
	return s.root
}

// UploadsDir はアップロード先ディレクトリを返す
func (s *Store) UploadsDir() string {
	return s.uploads
}

// EnsureDirs は配信ルートとアップロードディレクトリを作成する
func (s *Store) EnsureDirs() error {
	if err := os.MkdirAll(s.uploads, 0o755); err != nil {
		return fmt.Errorf("アップロードディレクトリの作成に失敗: %w", err)
	}
	return nil
}

// Resolve はリクエストパスを配信ルート配下のファイルパスに変換する
func (s *Store) Resolve(requestPath string) string {
	return filepath.Join(s.root, filepath.FromSlash(requestPath))
}

// Exists はファイルまたはディレクトリが存在するかを返す
func (s *Store) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ReadFile はファイル全体を読み込む
// 読み込みに失敗した場合は空を返すため、空ファイルと区別できない
func (s *Store) ReadFile(path string) []byte {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	return data
}

// WriteUpload はボディをそのままアップロードディレクトリに書き込む
func (s *Store) WriteUpload(name string, body []byte) (string, error) {
	path := filepath.Join(s.uploads, name)
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return "", fmt.Errorf("アップロードの書き込みに失敗: %w", err)
	}
	return path, nil
}

// UploadFilename はタイムスタンプと4桁の乱数からファイル名を生成する
// 同一秒かつ同じ乱数の場合は衝突し、後の書き込みが勝つ
func UploadFilename(now time.Time) string {
	return fmt.Sprintf("upload_%s_%d.json", now.Format("20060102_150405"), 1000+rand.IntN(9000))
}
