package proxywire

import (
	"io"
	"net"

	"github.com/pkg/errors"
)

// Connector writes a v1 or v2 PROXY header to an outbound stream before the
// caller starts using it normally.
type Connector struct {
	Version ProtocolVersion
}

// NewConnector returns a Connector that encodes headers in the given
// version.
func NewConnector(version ProtocolVersion) *Connector {
	return &Connector{Version: version}
}

// WriteHeader encodes and writes the header for the given endpoints in a
// single write. Either both endpoints must be present (with matching
// address families) or both absent. A short write is reported as an error
// rather than silently leaving a truncated header on the wire.
func (c *Connector) WriteHeader(w io.Writer, source, destination *Endpoint) error {
	info, err := NewProxyInfo(source, destination)
	if err != nil {
		return err
	}

	var data []byte
	switch c.Version {
	case ProtocolV1:
		data, err = encodeV1(info)
	case ProtocolV2:
		data, err = encodeV2(info)
	default:
		return newError(KindMalformed, errors.New("proxywire: unknown protocol version"))
	}
	if err != nil {
		return err
	}

	n, err := w.Write(data)
	if err != nil {
		return newError(KindIO, err)
	}
	if n != len(data) {
		return newError(KindIO, errors.Errorf("proxywire: short write of PROXY header: wrote %d of %d bytes", n, len(data)))
	}
	return nil
}

// DialAndWrite dials addr over network and writes the PROXY header before
// returning the connection.
func (c *Connector) DialAndWrite(network, addr string, source, destination *Endpoint) (net.Conn, error) {
	conn, err := net.Dial(network, addr)
	if err != nil {
		return nil, newError(KindIO, err)
	}
	if err := c.WriteHeader(conn, source, destination); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}
