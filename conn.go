package proxywire

import (
	"net"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
)

const defaultReadHeaderTimeout = time.Second * 5

// Conn wraps a net.Conn, lazily reading and decoding a PROXY header on
// first use. Header decoding runs through Acceptor/AcceptorBuilder so any
// bytes read past the header are carried over byte-exact to the first
// caller Read.
type Conn struct {
	net.Conn

	readHeaderOnce    sync.Once
	readHeaderTimeout time.Duration
	originalDeadline  time.Time

	disableProxyProtocol bool
	protocolConfig       ProtocolConfig
	postFunc             func(*ProxyStream, error)
	logger               *zap.Logger

	stream        *ProxyStream
	readHeaderErr error
}

// NewConn wraps conn, applying opts. The header is not read until the
// first Read/LocalAddr/RemoteAddr/ProxyInfo/Err call (ZapFields and
// LogrusFields go through ProxyInfo).
func NewConn(conn net.Conn, opts ...Option) *Conn {
	c := &Conn{
		Conn:              conn,
		readHeaderTimeout: defaultReadHeaderTimeout,
		logger:            zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	if c.protocolConfig.RequireProxyHeader && len(c.protocolConfig.Versions) == 0 {
		panic("proxywire: inconsistent ProtocolConfig: RequireProxyHeader=true with no supported versions")
	}
	return c
}

// Read implements net.Conn, triggering header decode on first call and
// draining any carry bytes before reading from the raw connection.
func (c *Conn) Read(b []byte) (int, error) {
	c.readHeader()
	if c.stream != nil {
		return c.stream.Read(b)
	}
	return c.Conn.Read(b)
}

// LocalAddr implements net.Conn, substituting the original destination
// address once the header has been decoded.
func (c *Conn) LocalAddr() net.Addr {
	c.readHeader()
	if c.stream != nil && c.stream.OriginalDestination() != nil {
		return endpointAddr(*c.stream.OriginalDestination())
	}
	return c.Conn.LocalAddr()
}

// RemoteAddr implements net.Conn, substituting the original source address
// once the header has been decoded.
func (c *Conn) RemoteAddr() net.Addr {
	c.readHeader()
	if c.stream != nil && c.stream.OriginalSource() != nil {
		return endpointAddr(*c.stream.OriginalSource())
	}
	return c.Conn.RemoteAddr()
}

// SetDeadline implements net.Conn, remembering the caller's intent so it
// can be restored after the (internally deadline-bounded) header read.
func (c *Conn) SetDeadline(t time.Time) error {
	c.originalDeadline = t
	return c.Conn.SetDeadline(t)
}

// SetReadDeadline implements net.Conn, same rationale as SetDeadline.
func (c *Conn) SetReadDeadline(t time.Time) error {
	c.originalDeadline = t
	return c.Conn.SetReadDeadline(t)
}

// ProxyInfo reads the header if that hasn't happened yet and returns the
// decoded endpoints, or a zero-value ProxyInfo if header handling is
// disabled, the header read failed, or the header carried none.
func (c *Conn) ProxyInfo() ProxyInfo {
	c.readHeader()
	if c.stream == nil {
		return ProxyInfo{}
	}
	info, _ := NewProxyInfo(c.stream.OriginalSource(), c.stream.OriginalDestination())
	return info
}

// Err reports the error (if any) encountered while reading the header.
func (c *Conn) Err() error {
	c.readHeader()
	return c.readHeaderErr
}

// ZapFields renders the current ProxyInfo as structured zap fields.
func (c *Conn) ZapFields() []zap.Field {
	info := c.ProxyInfo()
	return []zap.Field{
		zap.Stringer("proxy_info", info),
	}
}

// LogrusFields renders the current ProxyInfo as logrus fields.
func (c *Conn) LogrusFields() logrus.Fields {
	info := c.ProxyInfo()
	return logrus.Fields{"proxy_info": info.String()}
}

func (c *Conn) readHeader() {
	c.readHeaderOnce.Do(func() {
		if c.disableProxyProtocol {
			return
		}

		originalDeadline := c.originalDeadline
		_ = c.Conn.SetReadDeadline(time.Now().Add(c.readHeaderTimeout))
		defer c.Conn.SetReadDeadline(originalDeadline)

		builder := NewAcceptorBuilder(c.protocolConfig, c.logger)
		stream, err := builder.Build(c.Conn)

		if c.postFunc != nil {
			c.postFunc(stream, err)
		}

		if err != nil {
			c.readHeaderErr = err
			return
		}
		c.stream = stream
	})
}

func endpointAddr(e Endpoint) net.Addr {
	return &net.TCPAddr{IP: e.IP, Port: e.Port}
}
