package proxywire

import (
	"fmt"
	"net"

	"github.com/pkg/errors"
)

// AddressFamily is the address family carried by a v1/v2 PROXY header.
type AddressFamily uint8

const (
	AddressUnspecified AddressFamily = iota
	AddressINET
	AddressINET6
	// addressUnix is recognised on the wire (v2 fam nibble 3) so its address
	// block can be measured and skipped, but it never produces an Endpoint.
	addressUnix
)

func (af AddressFamily) String() string {
	switch af {
	case AddressINET:
		return "INET"
	case AddressINET6:
		return "INET6"
	case addressUnix:
		return "UNIX"
	default:
		return "UNSPEC"
	}
}

// Endpoint is an IP plus a port.
type Endpoint struct {
	IP   net.IP
	Port int
}

// Family reports the address family of e.
func (e Endpoint) Family() AddressFamily {
	if e.IP.To4() != nil {
		return AddressINET
	}
	if e.IP.To16() != nil {
		return AddressINET6
	}
	return AddressUnspecified
}

func (e Endpoint) String() string {
	return fmt.Sprintf("%s:%d", e.IP.String(), e.Port)
}

// ProxyInfo is the immutable pair of original source/destination endpoints
// discovered (or not) by a decoder. Construct with NewProxyInfo; the zero
// value is the valid "UNKNOWN/LOCAL" info with both endpoints absent.
type ProxyInfo struct {
	source      *Endpoint
	destination *Endpoint
}

// NewProxyInfo enforces that either both endpoints are present and share an
// address family, or both are absent.
func NewProxyInfo(source, destination *Endpoint) (ProxyInfo, error) {
	if (source == nil) != (destination == nil) {
		return ProxyInfo{}, newError(KindMalformed, errors.WithStack(ErrPartialEndpoints))
	}
	if source != nil && source.Family() != destination.Family() {
		return ProxyInfo{}, newError(KindMalformed, errors.WithStack(ErrMixedEndpoints))
	}
	return ProxyInfo{source: source, destination: destination}, nil
}

// Source returns the original source endpoint, or nil if unknown.
func (pi ProxyInfo) Source() *Endpoint { return pi.source }

// Destination returns the original destination endpoint, or nil if unknown.
func (pi ProxyInfo) Destination() *Endpoint { return pi.destination }

func (pi ProxyInfo) String() string {
	src, dst := "N/A", "N/A"
	if pi.source != nil {
		src = pi.source.String()
	}
	if pi.destination != nil {
		dst = pi.destination.String()
	}
	return fmt.Sprintf("ProxyInfo[SRC:%s, DST:%s]", src, dst)
}

// ProtocolVersion selects which PROXY protocol wire format to decode/encode.
type ProtocolVersion int

const (
	ProtocolV1 ProtocolVersion = iota + 1
	ProtocolV2
)

func (v ProtocolVersion) String() string {
	switch v {
	case ProtocolV1:
		return "V1"
	case ProtocolV2:
		return "V2"
	default:
		return "Unknown"
	}
}

// ProtocolConfig drives AcceptorBuilder's strategy selection.
type ProtocolConfig struct {
	// RequireProxyHeader, when true, fails connections that don't present
	// a recognisable PROXY header.
	RequireProxyHeader bool
	// Versions lists which protocol versions are acceptable. An empty
	// slice with RequireProxyHeader==false means "pass everything
	// through, no header handling at all".
	Versions []ProtocolVersion
}

func (c ProtocolConfig) hasVersion(v ProtocolVersion) bool {
	for _, got := range c.Versions {
		if got == v {
			return true
		}
	}
	return false
}
