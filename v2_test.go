package proxywire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeV2_IPv4(t *testing.T) {
	src := &Endpoint{IP: mustParseIP(t, "192.168.0.1"), Port: 1111}
	dst := &Endpoint{IP: mustParseIP(t, "192.168.0.11"), Port: 2222}
	info, err := NewProxyInfo(src, dst)
	require.NoError(t, err)

	data, err := encodeV2(info)
	require.NoError(t, err)

	payload := append(append([]byte(nil), data...), "hello"...)
	decoded, consumed, err := decodeV2(payload)
	require.NoError(t, err)
	assert.Equal(t, len(data), consumed)
	assert.Equal(t, "192.168.0.1", decoded.Source().IP.String())
	assert.Equal(t, 2222, decoded.Destination().Port)
	assert.Equal(t, []byte("hello"), payload[consumed:])
}

func TestEncodeDecodeV2_IPv6(t *testing.T) {
	src := &Endpoint{IP: mustParseIP(t, "::1"), Port: 80}
	dst := &Endpoint{IP: mustParseIP(t, "::2"), Port: 81}
	info, err := NewProxyInfo(src, dst)
	require.NoError(t, err)

	data, err := encodeV2(info)
	require.NoError(t, err)

	decoded, consumed, err := decodeV2(data)
	require.NoError(t, err)
	assert.Equal(t, len(data), consumed)
	assert.Equal(t, "::1", decoded.Source().IP.String())
}

func TestEncodeDecodeV2_Local(t *testing.T) {
	info, err := NewProxyInfo(nil, nil)
	require.NoError(t, err)
	data, err := encodeV2(info)
	require.NoError(t, err)

	decoded, consumed, err := decodeV2(data)
	require.NoError(t, err)
	assert.Equal(t, len(data), consumed)
	assert.Nil(t, decoded.Source())
	assert.Nil(t, decoded.Destination())
}

func TestDecodeV2_NeedMoreThenHeader(t *testing.T) {
	_, _, err := decodeV2(v2Signature[:10])
	assert.ErrorIs(t, err, errNeedMore)
}

func TestDecodeV2_BadSignature(t *testing.T) {
	bad := make([]byte, v2HeaderFixedLength)
	copy(bad, []byte("not-a-valid-prox"))
	_, _, err := decodeV2(bad)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestDecodeV2_UnixFamilyNeverYieldsEndpoint(t *testing.T) {
	header := make([]byte, 0, v2HeaderFixedLength+addressLengthUnix)
	header = append(header, v2Signature...)
	header = append(header, 0x21, 0x31, byte(addressLengthUnix>>8), byte(addressLengthUnix))
	header = append(header, make([]byte, addressLengthUnix)...)

	info, consumed, err := decodeV2(header)
	require.NoError(t, err)
	assert.Equal(t, len(header), consumed)
	assert.Nil(t, info.Source())
	assert.Nil(t, info.Destination())
}
