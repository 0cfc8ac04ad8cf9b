package proxywire

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProxyInfo_BothAbsent(t *testing.T) {
	info, err := NewProxyInfo(nil, nil)
	require.NoError(t, err)
	assert.Nil(t, info.Source())
	assert.Nil(t, info.Destination())
}

func TestNewProxyInfo_PartialFails(t *testing.T) {
	src := &Endpoint{IP: net.ParseIP("127.0.0.1"), Port: 80}
	_, err := NewProxyInfo(src, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPartialEndpoints)
}

func TestNewProxyInfo_MixedFamilyFails(t *testing.T) {
	src := &Endpoint{IP: net.ParseIP("127.0.0.1"), Port: 80}
	dst := &Endpoint{IP: net.ParseIP("::1"), Port: 81}
	_, err := NewProxyInfo(src, dst)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMixedEndpoints)
}

func TestProxyInfo_String(t *testing.T) {
	src := &Endpoint{IP: net.IPv4(5, 4, 3, 2), Port: 5432}
	dst := &Endpoint{IP: net.IPv4(4, 5, 6, 7), Port: 4567}
	info, err := NewProxyInfo(src, dst)
	require.NoError(t, err)
	assert.Equal(t, "ProxyInfo[SRC:5.4.3.2:5432, DST:4.5.6.7:4567]", info.String())

	empty, err := NewProxyInfo(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "ProxyInfo[SRC:N/A, DST:N/A]", empty.String())
}

func TestEndpointFamily(t *testing.T) {
	assert.Equal(t, AddressINET, Endpoint{IP: net.ParseIP("192.168.0.1")}.Family())
	assert.Equal(t, AddressINET6, Endpoint{IP: net.ParseIP("::1")}.Family())
}
