package proxywire

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcceptAuto_V1Detected(t *testing.T) {
	r := bytes.NewReader([]byte("PROXY TCP4 1.1.1.1 2.2.2.2 111 222\r\npayload"))
	stream, err := NewAcceptor().AcceptAuto(r)
	require.NoError(t, err)
	require.NotNil(t, stream.OriginalSource())
	assert.Equal(t, "1.1.1.1", stream.OriginalSource().IP.String())

	got, err := io.ReadAll(stream)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(got))
}

func TestAcceptAuto_V2Detected(t *testing.T) {
	src := &Endpoint{IP: mustParseIP(t, "10.1.1.1"), Port: 1}
	dst := &Endpoint{IP: mustParseIP(t, "10.1.1.2"), Port: 2}
	info, err := NewProxyInfo(src, dst)
	require.NoError(t, err)
	header, err := encodeV2(info)
	require.NoError(t, err)

	r := bytes.NewReader(append(append([]byte(nil), header...), "body"...))
	stream, err := NewAcceptor().AcceptAuto(r)
	require.NoError(t, err)
	assert.Equal(t, "10.1.1.1", stream.OriginalSource().IP.String())

	got, err := io.ReadAll(stream)
	require.NoError(t, err)
	assert.Equal(t, "body", string(got))
}

func TestAcceptAuto_NoHeaderPassesThrough(t *testing.T) {
	r := bytes.NewReader([]byte("GET / HTTP/1.1\r\n"))
	stream, err := NewAcceptor().AcceptAuto(r)
	require.NoError(t, err)
	assert.Nil(t, stream.OriginalSource())

	got, err := io.ReadAll(stream)
	require.NoError(t, err)
	assert.Equal(t, "GET / HTTP/1.1\r\n", string(got))
}

func TestAcceptAuto_NoHeaderRequiredFails(t *testing.T) {
	r := bytes.NewReader([]byte("GET / HTTP/1.1\r\n"))
	a := &Acceptor{RequireProxyHeader: true}
	_, err := a.AcceptAuto(r)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoProxyHeader)
}

func TestAcceptAuto_TooShortInputPasses(t *testing.T) {
	r := bytes.NewReader([]byte("ab"))
	stream, err := NewAcceptor().AcceptAuto(r)
	require.NoError(t, err)
	got, err := io.ReadAll(stream)
	require.NoError(t, err)
	assert.Equal(t, "ab", string(got))
}

func TestAcceptAuto_TooShortInputRequiredFails(t *testing.T) {
	r := bytes.NewReader([]byte("ab"))
	a := &Acceptor{RequireProxyHeader: true}
	_, err := a.AcceptAuto(r)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoProxyHeader)
}

func TestAcceptV1_RejectsV2Bytes(t *testing.T) {
	src := &Endpoint{IP: mustParseIP(t, "1.2.3.4"), Port: 1}
	dst := &Endpoint{IP: mustParseIP(t, "1.2.3.5"), Port: 2}
	info, err := NewProxyInfo(src, dst)
	require.NoError(t, err)
	header, err := encodeV2(info)
	require.NoError(t, err)

	a := &Acceptor{RequireProxyHeader: true}
	_, err = a.AcceptV1(bytes.NewReader(header))
	require.Error(t, err)
}
