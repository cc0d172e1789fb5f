//go:build unix

package server

import (
	"fmt"
	"net"
	"os"

	"golang.org/x/sys/unix"

	"mtserver/internal/config"
)

// listen はソケットを作成し、SO_REUSEADDR を設定してバインド・リッスンする
func listen(cfg *config.Config) (net.Listener, error) {
	port := cfg.Server.Port
	ip, err := resolveIP(cfg.Server.Host)
	if err != nil {
		return nil, &StartError{Step: StepBind, Err: err}
	}

	var (
		family int
		sa     unix.Sockaddr
	)
	if ip4 := ip.To4(); ip4 != nil {
		addr := &unix.SockaddrInet4{Port: port}
		copy(addr.Addr[:], ip4)
		family, sa = unix.AF_INET, addr
	} else {
		addr := &unix.SockaddrInet6{Port: port}
		copy(addr.Addr[:], ip.To16())
		family, sa = unix.AF_INET6, addr
	}

	fd, err := unix.Socket(family, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, &StartError{Step: StepSocket, Err: err}
	}
	unix.CloseOnExec(fd)

	// FileListener が複製するので、元のディスクリプタは常に閉じる
	file := os.NewFile(uintptr(fd), "tcp:"+cfg.ServerAddress())
	defer file.Close()

	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		return nil, &StartError{Step: StepSetsockopt, Err: err}
	}
	if err := unix.Bind(fd, sa); err != nil {
		return nil, &StartError{Step: StepBind, Err: err}
	}
	if err := unix.Listen(fd, cfg.Server.Backlog); err != nil {
		return nil, &StartError{Step: StepListen, Err: err}
	}

	ln, err := net.FileListener(file)
	if err != nil {
		return nil, &StartError{Step: StepListen, Err: err}
	}
	return ln, nil
}

// resolveIP はホスト名またはIPアドレスを解決する
func resolveIP(host string) (net.IP, error) {
	if ip := net.ParseIP(host); ip != nil {
		return ip, nil
	}
	addr, err := net.ResolveIPAddr("ip", host)
	if err != nil {
		return nil, fmt.Errorf("ホストの解決に失敗: %w", err)
	}
	return addr.IP, nil
}
