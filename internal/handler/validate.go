package handler

import (
	"strconv"
	"strings"
)

// ValidPath はディレクトリトラバーサルにつながるパスを拒否する
// 正当な連続スラッシュも拒否する保守的な判定
func ValidPath(path string) bool {
	if strings.Contains(path, "..") ||
		strings.Contains(path, "./") ||
		strings.Contains(path, "//") ||
		strings.Contains(path, `\`) {
		return false
	}
	return strings.HasPrefix(path, "/")
}

// ValidHost はHostヘッダーが設定されたホストまたはlocalhostを指しているかを判定する
func (h *Handler) ValidHost(headers map[string]string) bool {
	value, ok := headers["host"]
	if !ok {
		return false
	}

	port := strconv.Itoa(h.port)
	switch value {
	case h.host + ":" + port, h.host, "localhost:" + port, "localhost":
		return true
	}
	return false
}

// LooksLikeJSON は形だけを見てJSONらしいかを判定する
// パーサーではないため "[}]" や "{]}" のような不正な文書も受け入れる
func LooksLikeJSON(body string) bool {
	trimmed := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\v', '\f', '\r':
			return -1
		}
		return r
	}, body)

	if trimmed == "" {
		return false
	}

	first, last := trimmed[0], trimmed[len(trimmed)-1]
	switch {
	case first == '{' && last == '}':
		return true
	case first == '[' && last == ']':
		return true
	case first == '"' && last == '"':
		return true
	}

	if _, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return true
	}

	return trimmed == "true" || trimmed == "false" || trimmed == "null"
}
