package reader

import (
	"context"
	"f1timing/internal/global"
	"f1timing/internal/logctx"
	"f1timing/internal/network"
	"f1timing/pkg/codec"
	"f1timing/pkg/message"
	"net"
	"strconv"
	"sync"
	"time"
)

// Reads the plaintext message stream relayed by a proxy server.
// The connection is made on the first Read.
type Proxy struct {
	Base
	Address        string
	ConnectTimeout time.Duration

	mutex   sync.Mutex // guards conn against a concurrent Close
	conn    net.Conn
	decoder *codec.Reader
}

// Proxy reader for host with the default proxy port
func NewProxy(host string) (proxy *Proxy) {
	proxy = NewProxyAddress(net.JoinHostPort(host, strconv.Itoa(global.DefaultProxyPort)))
	return
}

// Proxy reader for a full host:port address
func NewProxyAddress(address string) (proxy *Proxy) {
	proxy = &Proxy{
		Address:        address,
		ConnectTimeout: global.DefaultConnectTimeout,
	}
	return
}

func (p *Proxy) Read(ctx context.Context) (msg message.Message, err error) {
	msg, err = p.Guard(ctx, p.next)
	return
}

func (p *Proxy) next(ctx context.Context) (msg message.Message, err error) {
	if p.decoder == nil {
		err = p.connect(ctx)
		if err != nil {
			return
		}
	}

	// Unblock the read when the caller gives up
	stop := context.AfterFunc(ctx, func() {
		p.mutex.Lock()
		defer p.mutex.Unlock()
		if p.conn != nil {
			_ = p.conn.SetReadDeadline(time.Now())
		}
	})
	defer stop()

	msg, err = p.decoder.Read()
	if err != nil && ctx.Err() != nil {
		err = ctx.Err()
		return
	}
	err = wrapTransport("proxy read", err)
	return
}

func (p *Proxy) connect(ctx context.Context) (err error) {
	conn, err := network.DialStream(ctx, p.Address, p.ConnectTimeout)
	if err != nil {
		err = &ConnectError{Address: p.Address, Err: err}
		return
	}

	p.mutex.Lock()
	p.conn = conn
	p.mutex.Unlock()
	p.decoder = codec.NewReader(conn)

	logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog, "Connected to proxy server %s\n", p.Address)
	return
}

func (p *Proxy) Close() error {
	return p.CloseOnce(func() (err error) {
		p.mutex.Lock()
		defer p.mutex.Unlock()
		if p.conn != nil {
			err = p.conn.Close()
		}
		return
	})
}
