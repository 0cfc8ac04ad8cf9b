package proxywire

import (
	"bytes"
	"io"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// commonPrefixLen is the number of bytes sufficient to distinguish a v1 from
// a v2 header, or neither.
const commonPrefixLen = 5

// decodeFunc is the shape shared by decodeV1/decodeV2: attempt to parse a
// header from the front of buf, returning errNeedMore if buf doesn't yet
// hold a complete header.
type decodeFunc func(buf []byte) (ProxyInfo, int, error)

// Acceptor reads a PROXY header (if present) off a stream and produces a
// ProxyStream.
type Acceptor struct {
	RequireProxyHeader bool
	Logger             *zap.Logger
}

// NewAcceptor returns an Acceptor that does not require a PROXY header.
func NewAcceptor() *Acceptor {
	return &Acceptor{Logger: zap.NewNop()}
}

func (a *Acceptor) logger() *zap.Logger {
	if a.Logger == nil {
		return zap.NewNop()
	}
	return a.Logger
}

// AcceptAuto reads into a scratch buffer until a common prefix has been
// buffered, dispatches to the v1 or v2 decoder based on that prefix, or
// falls through to a passthrough ProxyStream.
func (a *Acceptor) AcceptAuto(r io.Reader) (*ProxyStream, error) {
	buf, err := readAtLeast(r, nil, commonPrefixLen)
	if err != nil && err != io.EOF {
		return nil, newError(KindIO, err)
	}

	if len(buf) < commonPrefixLen {
		return a.fallThrough(r, buf)
	}

	switch {
	case bytes.Equal(buf[:commonPrefixLen], v1Prefix[:commonPrefixLen]):
		a.logger().Debug("proxywire: detected v1 tag")
		return a.acceptWithDecoder(r, buf, decodeV1)
	case bytes.Equal(buf[:commonPrefixLen], v2Signature[:commonPrefixLen]):
		a.logger().Debug("proxywire: detected v2 tag")
		return a.acceptWithDecoder(r, buf, decodeV2)
	default:
		return a.fallThrough(r, buf)
	}
}

// AcceptV1 decodes only the v1 format, with no auto-detection.
func (a *Acceptor) AcceptV1(r io.Reader) (*ProxyStream, error) {
	return a.acceptWithDecoder(r, nil, decodeV1)
}

// AcceptV2 decodes only the v2 format, with no auto-detection.
func (a *Acceptor) AcceptV2(r io.Reader) (*ProxyStream, error) {
	return a.acceptWithDecoder(r, nil, decodeV2)
}

// acceptWithDecoder grows buf by reading from r until decode succeeds,
// needs more data, or fails outright. A non-NeedMore decode error degrades
// to the fall-through path rather than propagating immediately: a prefix
// match that turns out malformed is treated as "no header after all"
// rather than a hard failure.
func (a *Acceptor) acceptWithDecoder(r io.Reader, buf []byte, decode decodeFunc) (*ProxyStream, error) {
	for {
		info, consumed, err := decode(buf)
		switch {
		case err == nil:
			return &ProxyStream{
				inner:       r,
				carry:       append([]byte(nil), buf[consumed:]...),
				orig_source: info.Source(),
				orig_dest:   info.Destination(),
			}, nil
		case errors.Is(err, errNeedMore):
			grown, readErr := growBuffer(r, buf)
			if readErr != nil && readErr != io.EOF {
				return nil, newError(KindIO, readErr)
			}
			if readErr == io.EOF && len(grown) == len(buf) {
				// EOF with no header terminator ever arriving.
				a.logger().Debug("proxywire: stream ended mid-header, falling through")
				return a.fallThrough(r, buf)
			}
			buf = grown
		default:
			a.logger().Debug("proxywire: header prefix matched but body malformed, falling through", zap.Error(err))
			return a.fallThrough(r, buf)
		}
	}
}

func (a *Acceptor) fallThrough(r io.Reader, buf []byte) (*ProxyStream, error) {
	if a.RequireProxyHeader {
		return nil, newError(KindRequired, errors.WithStack(ErrNoProxyHeader))
	}
	return &ProxyStream{inner: r, carry: buf}, nil
}

// readAtLeast reads from r, appending to buf, until at least n bytes total
// are buffered or r is exhausted.
func readAtLeast(r io.Reader, buf []byte, n int) ([]byte, error) {
	for len(buf) < n {
		next, err := growBuffer(r, buf)
		buf = next
		if err != nil {
			return buf, err
		}
	}
	return buf, nil
}

// growBuffer performs a single Read into freshly appended capacity and
// returns the extended buffer. A zero-byte, nil-error read is treated as
// "try again" per io.Reader's contract; callers loop (readAtLeast,
// acceptWithDecoder) until data or an error arrives.
func growBuffer(r io.Reader, buf []byte) ([]byte, error) {
	scratch := make([]byte, 512)
	n, err := r.Read(scratch)
	if n > 0 {
		buf = append(buf, scratch[:n]...)
	}
	return buf, err
}
