package proxywire

import (
	"bytes"
	"encoding/binary"
	"net"

	"github.com/pkg/errors"
)

// v2Signature is the fixed 12-byte PROXY protocol v2 signature.
var v2Signature = []byte("\r\n\r\n\x00\r\nQUIT\n")

const (
	v2HeaderFixedLength = 16 // signature(12) + ver/cmd(1) + fam/proto(1) + len(2)

	// addressLengthIPv4 is 2*4 + 2*2 = 12 bytes.
	addressLengthIPv4 = 12
	// addressLengthIPv6 is 2*16 + 2*2 = 36 bytes.
	addressLengthIPv6 = 36
	// addressLengthUnix is 2*108 = 216 bytes, recognised for length
	// accounting only; a Unix-family block is measured and skipped but
	// never turned into an Endpoint.
	addressLengthUnix = 216
)

// decodeV2 attempts to parse a v2 binary header from the front of buf. It
// waits in two stages: first for the 16-byte fixed header, then for the
// declared address-block length, returning errNeedMore each time buf is
// too short so the caller's read loop can grow it and retry.
func decodeV2(buf []byte) (info ProxyInfo, consumed int, err error) {
	if len(buf) < v2HeaderFixedLength {
		return ProxyInfo{}, 0, errNeedMore
	}
	if !bytes.Equal(buf[:len(v2Signature)], v2Signature) {
		return ProxyInfo{}, 0, newError(KindMalformed, errors.WithStack(ErrBadSignature))
	}

	verAndCmd := buf[12]
	version, command := verAndCmd>>4, verAndCmd&0x0F
	if version != 0x2 || command > 0x1 {
		return ProxyInfo{}, 0, newError(KindMalformed, errors.WithStack(ErrBadVersionCommand))
	}

	famAndProto := buf[13]
	fam, proto := famAndProto>>4, famAndProto&0x0F
	if fam > 3 || proto > 2 {
		return ProxyInfo{}, 0, newError(KindMalformed, errors.WithStack(ErrBadFamilyTransport))
	}

	length := int(binary.BigEndian.Uint16(buf[14:16]))
	if len(buf) < v2HeaderFixedLength+length {
		return ProxyInfo{}, 0, errNeedMore
	}
	block := buf[v2HeaderFixedLength : v2HeaderFixedLength+length]
	consumed = v2HeaderFixedLength + length

	// LOCAL command or UNSPEC family/transport: absent endpoints,
	// discard whatever the block contains.
	if command == 0x0 || fam == 0 || proto == 0 {
		return ProxyInfo{}, consumed, nil
	}

	switch fam {
	case 1: // INET
		info, err = decodeV2Addresses(block, addressLengthIPv4, AddressINET)
	case 2: // INET6
		info, err = decodeV2Addresses(block, addressLengthIPv6, AddressINET6)
	case 3: // UNIX: validate length, but endpoints stay absent.
		if len(block) < addressLengthUnix {
			return ProxyInfo{}, 0, newError(KindMalformed, errors.WithStack(ErrAddressBlockShort))
		}
		return ProxyInfo{}, consumed, nil
	}
	if err != nil {
		return ProxyInfo{}, 0, err
	}
	return info, consumed, nil
}

func decodeV2Addresses(block []byte, addrLen int, af AddressFamily) (ProxyInfo, error) {
	if len(block) < addrLen {
		return ProxyInfo{}, newError(KindMalformed, errors.WithStack(ErrAddressBlockShort))
	}

	var srcIP, dstIP net.IP
	var srcPort, dstPort int
	if af == AddressINET {
		srcIP = net.IPv4(block[0], block[1], block[2], block[3])
		dstIP = net.IPv4(block[4], block[5], block[6], block[7])
		srcPort = int(binary.BigEndian.Uint16(block[8:10]))
		dstPort = int(binary.BigEndian.Uint16(block[10:12]))
	} else {
		srcIP = append(net.IP(nil), block[0:16]...)
		dstIP = append(net.IP(nil), block[16:32]...)
		srcPort = int(binary.BigEndian.Uint16(block[32:34]))
		dstPort = int(binary.BigEndian.Uint16(block[34:36]))
	}

	info, err := NewProxyInfo(
		&Endpoint{IP: srcIP, Port: srcPort},
		&Endpoint{IP: dstIP, Port: dstPort},
	)
	if err != nil {
		return ProxyInfo{}, err
	}
	return info, nil
}

// encodeV2 renders info as a v2 binary header with no TLVs: no checksum,
// no padding, no trailing type-length-value records.
func encodeV2(info ProxyInfo) ([]byte, error) {
	if info.source == nil || info.destination == nil {
		return v2LocalHeader(), nil
	}
	if info.source.Family() != info.destination.Family() {
		return nil, newError(KindMalformed, errors.WithStack(ErrMixedEndpoints))
	}

	var fam byte
	var block []byte
	switch info.source.Family() {
	case AddressINET:
		fam = 1
		block = make([]byte, addressLengthIPv4)
		copy(block[0:4], info.source.IP.To4())
		copy(block[4:8], info.destination.IP.To4())
		binary.BigEndian.PutUint16(block[8:10], uint16(info.source.Port))
		binary.BigEndian.PutUint16(block[10:12], uint16(info.destination.Port))
	case AddressINET6:
		fam = 2
		block = make([]byte, addressLengthIPv6)
		copy(block[0:16], info.source.IP.To16())
		copy(block[16:32], info.destination.IP.To16())
		binary.BigEndian.PutUint16(block[32:34], uint16(info.source.Port))
		binary.BigEndian.PutUint16(block[34:36], uint16(info.destination.Port))
	default:
		return nil, newError(KindMalformed, errors.WithStack(ErrBadAddressFamily))
	}

	header := make([]byte, 0, v2HeaderFixedLength+len(block))
	header = append(header, v2Signature...)
	header = append(header, 0x21, fam<<4|0x1, byte(len(block)>>8), byte(len(block)))
	header = append(header, block...)
	return header, nil
}

func v2LocalHeader() []byte {
	header := make([]byte, 0, v2HeaderFixedLength)
	header = append(header, v2Signature...)
	header = append(header, 0x20, 0x00, 0x00, 0x00)
	return header
}
