package proxywire

import "net"

// Listener wraps a net.Listener, returning *Conn from Accept so that PROXY
// headers are decoded lazily, with any bytes read past the header handed
// back to the caller untouched.
type Listener struct {
	net.Listener

	options []Option
}

// NewListener wraps ln, applying opts to every accepted Conn.
func NewListener(ln net.Listener, opts ...Option) *Listener {
	return &Listener{Listener: ln, options: opts}
}

// Accept implements net.Listener.
func (l *Listener) Accept() (net.Conn, error) {
	raw, err := l.Listener.Accept()
	if err != nil {
		return nil, err
	}
	return NewConn(raw, l.options...), nil
}
