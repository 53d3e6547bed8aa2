package network

import (
	"context"
	"fmt"
	"net"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// Creates a TCP listener that can be rebound immediately after a restart
func ListenReusable(ctx context.Context, addr string) (listener net.Listener, err error) {
	// Using x/sys/unix package for more up-to-date syscall numbers
	cfg := net.ListenConfig{
		Control: func(network, address string, c syscall.RawConn) error {
			var err error
			c.Control(func(fd uintptr) {
				// Allow port reuse
				err = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
				if err != nil {
					return
				}

				// Allow multiple active listeners
				err = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1)
			})
			return err
		},
	}

	listener, err = cfg.Listen(ctx, "tcp", addr)
	if err != nil {
		err = fmt.Errorf("failed to listen on reusable tcp port: %w", err)
		return
	}
	return
}

// Dialer for latency sensitive streams, Nagle disabled on the raw socket
func StreamDialer(timeout time.Duration) (dialer *net.Dialer) {
	dialer = &net.Dialer{
		Timeout: timeout,
		Control: func(network, address string, c syscall.RawConn) error {
			var err error
			c.Control(func(fd uintptr) {
				err = unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_NODELAY, 1)
			})
			return err
		},
	}
	return
}

// Dials address with a stream dialer
func DialStream(ctx context.Context, address string, timeout time.Duration) (conn net.Conn, err error) {
	conn, err = StreamDialer(timeout).DialContext(ctx, "tcp", address)
	return
}
