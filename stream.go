package proxywire

import (
	"bytes"
	"io"
	"net"

	"github.com/pkg/errors"
)

// ProxyStream wraps an inner stream plus whatever bytes were read past a
// PROXY header (or past a failed auto-detect) that belong to the payload,
// plus the endpoints a header may have carried.
//
// The carry buffer must be handed off exactly once: either by reading
// through the ProxyStream directly (which drains carry before inner), or
// by calling SeedReader/TryIntoInner.
type ProxyStream struct {
	inner       io.Reader
	carry       []byte
	orig_source *Endpoint
	orig_dest   *Endpoint
}

// OriginalSource returns the original source endpoint, or nil if the
// stream carried no PROXY header (or one without endpoints, e.g. LOCAL).
func (ps *ProxyStream) OriginalSource() *Endpoint { return ps.orig_source }

// OriginalDestination returns the original destination endpoint, or nil.
func (ps *ProxyStream) OriginalDestination() *Endpoint { return ps.orig_dest }

// Carry returns the bytes read past the header that haven't been consumed
// yet. It does not copy; callers that mutate the inner stream afterwards
// should not retain this slice.
func (ps *ProxyStream) Carry() []byte { return ps.carry }

// Read implements io.Reader, draining the carry buffer before the inner
// stream so bytes come out in their original order with none dropped.
func (ps *ProxyStream) Read(p []byte) (int, error) {
	if len(ps.carry) > 0 {
		n := copy(p, ps.carry)
		ps.carry = ps.carry[n:]
		return n, nil
	}
	return ps.inner.Read(p)
}

// Write passes through to the inner stream if it is an io.Writer (true for
// any net.Conn).
func (ps *ProxyStream) Write(p []byte) (int, error) {
	w, ok := ps.inner.(io.Writer)
	if !ok {
		return 0, newError(KindIO, errors.New("proxywire: inner stream is not writable"))
	}
	return w.Write(p)
}

// AsConn returns the inner stream as a net.Conn when it is one.
func (ps *ProxyStream) AsConn() (net.Conn, bool) {
	c, ok := ps.inner.(net.Conn)
	return c, ok
}

// TryIntoInner returns the inner stream, but only if the carry buffer is
// empty: unwrapping with residual bytes would silently drop them, so it's
// reported as KindInvalidState instead.
func (ps *ProxyStream) TryIntoInner() (io.Reader, error) {
	if len(ps.carry) != 0 {
		return nil, newError(KindInvalidState, errors.WithStack(ErrInvalidState))
	}
	return ps.inner, nil
}

// SeedReader returns an io.Reader that yields the carry bytes first, then
// the inner stream, without issuing any further read on inner. The carry
// buffer is handed off exactly once, here; the caller owns it from this
// point on.
func (ps *ProxyStream) SeedReader() io.Reader {
	carry := ps.carry
	ps.carry = nil
	if len(carry) == 0 {
		return ps.inner
	}
	return io.MultiReader(bytes.NewReader(carry), ps.inner)
}
