package proxywire

import (
	"time"

	"go.uber.org/zap"
)

// Option configures a Conn.
type Option func(*Conn)

// WithReadHeaderTimeout bounds how long reading the header may block.
func WithReadHeaderTimeout(d time.Duration) Option {
	return func(c *Conn) { c.readHeaderTimeout = d }
}

// WithDisableProxyProto skips header detection entirely when disable is
// true.
func WithDisableProxyProto(disable bool) Option {
	return func(c *Conn) { c.disableProxyProtocol = disable }
}

// WithPostReadHeader installs a callback invoked right after the header is
// read (or fails), useful for logging hooks.
func WithPostReadHeader(fn func(*ProxyStream, error)) Option {
	return func(c *Conn) { c.postFunc = fn }
}

// WithProtocolConfig selects the v1-only/v2-only/auto/skip strategy used
// to decode the header.
func WithProtocolConfig(cfg ProtocolConfig) Option {
	return func(c *Conn) { c.protocolConfig = cfg }
}

// WithLogger injects a structured logger, defaulting to zap.NewNop().
func WithLogger(logger *zap.Logger) Option {
	return func(c *Conn) { c.logger = logger }
}
