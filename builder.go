package proxywire

import (
	"io"

	"go.uber.org/zap"
)

// BuilderStrategy identifies which Acceptor strategy an AcceptorBuilder
// resolved to at construction time — exported so tests can assert on it
// directly instead of comparing closures.
type BuilderStrategy int

const (
	StrategySkip BuilderStrategy = iota
	StrategyV1Only
	StrategyV2Only
	StrategyAuto
)

func (s BuilderStrategy) String() string {
	switch s {
	case StrategySkip:
		return "skip"
	case StrategyV1Only:
		return "v1"
	case StrategyV2Only:
		return "v2"
	case StrategyAuto:
		return "auto"
	default:
		return "unknown"
	}
}

// AcceptorBuilder pre-selects an Acceptor strategy from a ProtocolConfig so
// the decision isn't repeated on every accepted connection.
type AcceptorBuilder struct {
	config   ProtocolConfig
	strategy BuilderStrategy
	Logger   *zap.Logger
}

// NewAcceptorBuilder resolves cfg into a strategy. It panics if
// RequireProxyHeader is true with no accepted versions, since that
// configuration can never succeed and is caught here rather than on
// every connection.
func NewAcceptorBuilder(cfg ProtocolConfig, logger *zap.Logger) *AcceptorBuilder {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &AcceptorBuilder{config: cfg, Logger: logger}

	switch len(cfg.Versions) {
	case 0:
		if cfg.RequireProxyHeader {
			panic("proxywire: inconsistent ProtocolConfig: RequireProxyHeader=true with no supported versions")
		}
		b.strategy = StrategySkip
	case 1:
		if cfg.RequireProxyHeader {
			if cfg.Versions[0] == ProtocolV1 {
				b.strategy = StrategyV1Only
			} else {
				b.strategy = StrategyV2Only
			}
		} else {
			logger.Info("proxywire: ignoring explicit PROXY protocol version, using auto-detect since header is not required",
				zap.String("version", cfg.Versions[0].String()))
			b.strategy = StrategyAuto
		}
	default:
		b.strategy = StrategyAuto
	}
	return b
}

// Strategy reports which build method was selected.
func (b *AcceptorBuilder) Strategy() BuilderStrategy { return b.strategy }

// Build resolves stream into a ProxyStream according to the pre-selected
// strategy.
func (b *AcceptorBuilder) Build(stream io.Reader) (*ProxyStream, error) {
	acceptor := &Acceptor{RequireProxyHeader: b.config.RequireProxyHeader, Logger: b.Logger}

	switch b.strategy {
	case StrategySkip:
		return &ProxyStream{inner: stream}, nil
	case StrategyV1Only:
		return acceptor.AcceptV1(stream)
	case StrategyV2Only:
		return acceptor.AcceptV2(stream)
	default:
		return acceptor.AcceptAuto(stream)
	}
}
