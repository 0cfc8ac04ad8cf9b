package proxywire

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAcceptorBuilder_NoVersionsSkips(t *testing.T) {
	b := NewAcceptorBuilder(ProtocolConfig{}, nil)
	assert.Equal(t, StrategySkip, b.Strategy())
}

func TestAcceptorBuilder_RequiredNoVersionsPanics(t *testing.T) {
	assert.Panics(t, func() {
		NewAcceptorBuilder(ProtocolConfig{RequireProxyHeader: true}, nil)
	})
}

func TestAcceptorBuilder_SingleVersionRequired(t *testing.T) {
	b := NewAcceptorBuilder(ProtocolConfig{RequireProxyHeader: true, Versions: []ProtocolVersion{ProtocolV1}}, nil)
	assert.Equal(t, StrategyV1Only, b.Strategy())

	b2 := NewAcceptorBuilder(ProtocolConfig{RequireProxyHeader: true, Versions: []ProtocolVersion{ProtocolV2}}, nil)
	assert.Equal(t, StrategyV2Only, b2.Strategy())
}

func TestAcceptorBuilder_SingleVersionNotRequiredFallsBackToAuto(t *testing.T) {
	b := NewAcceptorBuilder(ProtocolConfig{Versions: []ProtocolVersion{ProtocolV1}}, nil)
	assert.Equal(t, StrategyAuto, b.Strategy())
}

func TestAcceptorBuilder_MultipleVersionsAuto(t *testing.T) {
	b := NewAcceptorBuilder(ProtocolConfig{Versions: []ProtocolVersion{ProtocolV1, ProtocolV2}}, nil)
	assert.Equal(t, StrategyAuto, b.Strategy())
}
