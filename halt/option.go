package halt

import "go.uber.org/zap"

// Option configures a HaltHandle at construction time.
type Option func(*HaltHandle)

// WithLogger injects a structured logger, defaulting to zap.NewNop().
func WithLogger(logger *zap.Logger) Option {
	return func(h *HaltHandle) { h.logger = logger }
}
