//go:build !unix

package server

import (
	"net"

	"mtserver/internal/config"
)

// listen は net.Listen でリッスンする。バックログはOSの既定値になる
func listen(cfg *config.Config) (net.Listener, error) {
	ln, err := net.Listen("tcp", cfg.ServerAddress())
	if err != nil {
		return nil, &StartError{Step: StepListen, Err: err}
	}
	return ln, nil
}
