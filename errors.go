package proxywire

import "github.com/pkg/errors"

// Kind classifies the failure modes a decoder, Acceptor, Connector or
// ProxyStream can report.
type Kind int

const (
	// KindMalformed: a header was present but invalid (bad signature, bad
	// family byte, length exceeds max, unterminated v1 line, mixed-family
	// endpoint pair).
	KindMalformed Kind = iota + 1
	// KindRequired: require_proxy_header was set but no recognisable
	// header was found.
	KindRequired
	// KindInvalidState: ProxyStream.TryIntoInner was called with a
	// non-empty carry buffer.
	KindInvalidState
	// KindIO: the underlying transport returned an error.
	KindIO
)

func (k Kind) String() string {
	switch k {
	case KindMalformed:
		return "malformed"
	case KindRequired:
		return "required"
	case KindInvalidState:
		return "invalid_state"
	case KindIO:
		return "io"
	default:
		return "unknown"
	}
}

// Error wraps a Kind with the pkg/errors cause chain that produced it.
type Error struct {
	Kind Kind
	err  error
}

func newError(kind Kind, err error) *Error {
	return &Error{Kind: kind, err: err}
}

func (e *Error) Error() string {
	if e.err == nil {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.err.Error()
}

func (e *Error) Unwrap() error { return e.err }

func (e *Error) Cause() error { return e.err }

// errNeedMore is an internal decoder sentinel: "not enough bytes buffered
// yet, read more and retry the same decode call". It never crosses a
// package-exported function.
var errNeedMore = errors.New("proxywire: need more data")

// Sentinel causes wrapped by Error values. Callers compare with
// errors.Is against these, or inspect Kind directly.
var (
	ErrNoProxyHeader      = errors.New("proxywire: no PROXY protocol header present")
	ErrMixedEndpoints     = errors.New("proxywire: source and destination endpoints have different address families")
	ErrPartialEndpoints   = errors.New("proxywire: exactly one of source/destination endpoint is present")
	ErrHeaderTooLong      = errors.New("proxywire: v1 header exceeds maximum length")
	ErrMustEndWithCRLF    = errors.New("proxywire: v1 header must end with CRLF")
	ErrBadAddressFamily   = errors.New("proxywire: unrecognised v1 address family")
	ErrBadSignature       = errors.New("proxywire: v2 signature mismatch")
	ErrBadVersionCommand  = errors.New("proxywire: unsupported v2 version/command")
	ErrBadFamilyTransport = errors.New("proxywire: unsupported v2 address family/transport")
	ErrAddressBlockShort  = errors.New("proxywire: v2 address block shorter than declared length")
	ErrInvalidState       = errors.New("proxywire: carry buffer is not empty")
	ErrStreamTerminated   = errors.New("proxywire: stream ended before a header could be read")
)
