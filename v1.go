package proxywire

import (
	"bytes"
	"net"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// v1HeaderMaxLength is the worst case (optional fields set to 0xff):
// "PROXY UNKNOWN ffff:f...f:ffff ffff:f...f:ffff 65535 65535\r\n"
// => 5 + 1 + 7 + 1 + 39 + 1 + 39 + 1 + 5 + 1 + 5 + 2 = 107 chars.
const v1HeaderMaxLength = 107

var v1Prefix = []byte("PROXY ")

// decodeV1 attempts to parse a v1 ASCII header from the front of buf.
// It returns errNeedMore if buf doesn't yet contain a terminated line (and
// isn't already over the length bound), or a *Error{Kind: Malformed} for a
// structurally bad line. consumed is only meaningful when err is nil.
func decodeV1(buf []byte) (info ProxyInfo, consumed int, err error) {
	idx := bytes.Index(buf, []byte("\r\n"))
	if idx < 0 {
		if len(buf) >= v1HeaderMaxLength {
			return ProxyInfo{}, 0, newError(KindMalformed, errors.WithStack(ErrHeaderTooLong))
		}
		return ProxyInfo{}, 0, errNeedMore
	}
	if idx+2 > v1HeaderMaxLength {
		return ProxyInfo{}, 0, newError(KindMalformed, errors.WithStack(ErrHeaderTooLong))
	}

	line := buf[:idx]
	info, err = parseV1Line(line)
	if err != nil {
		return ProxyInfo{}, 0, err
	}
	return info, idx + 2, nil
}

func parseV1Line(line []byte) (ProxyInfo, error) {
	fields := strings.Fields(string(line))
	if len(fields) < 2 || fields[0] != "PROXY" {
		return ProxyInfo{}, newError(KindMalformed, errors.WithStack(ErrBadAddressFamily))
	}

	switch fields[1] {
	case "UNKNOWN":
		return ProxyInfo{}, nil
	case "TCP4", "TCP6":
		// fall through below
	default:
		return ProxyInfo{}, newError(KindMalformed, errors.WithStack(ErrBadAddressFamily))
	}

	var af AddressFamily
	if fields[1] == "TCP4" {
		af = AddressINET
	} else {
		af = AddressINET6
	}

	if len(fields) < 6 {
		return ProxyInfo{}, newError(KindMalformed, errors.Wrap(ErrBadAddressFamily, "missing address/port fields"))
	}

	srcIP, dstIP, err := parseAndValidateIP(fields[2], fields[3], af)
	if err != nil {
		return ProxyInfo{}, newError(KindMalformed, err)
	}
	srcPort, dstPort, err := parseAndValidatePort(fields[4], fields[5])
	if err != nil {
		return ProxyInfo{}, newError(KindMalformed, err)
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

// encodeV1 renders info as a canonical v1 header, deriving TCP4/TCP6 from
// the endpoints' address family.
func encodeV1(info ProxyInfo) ([]byte, error) {
	if info.source == nil || info.destination == nil {
		return append([]byte(nil), v1LocalLine...), nil
	}
	if info.source.Family() != info.destination.Family() {
		return nil, newError(KindMalformed, errors.WithStack(ErrMixedEndpoints))
	}

	var buf bytes.Buffer
	buf.Write(v1Prefix)

	switch info.source.Family() {
	case AddressINET:
		buf.WriteString("TCP4 ")
	case AddressINET6:
		buf.WriteString("TCP6 ")
	default:
		return nil, newError(KindMalformed, errors.WithStack(ErrBadAddressFamily))
	}

	buf.WriteString(info.source.IP.String())
	buf.WriteByte(' ')
	buf.WriteString(info.destination.IP.String())
	buf.WriteByte(' ')
	buf.WriteString(strconv.Itoa(info.source.Port))
	buf.WriteByte(' ')
	buf.WriteString(strconv.Itoa(info.destination.Port))
	buf.WriteString("\r\n")
	return buf.Bytes(), nil
}

var v1LocalLine = []byte("PROXY UNKNOWN\r\n")

func parseAndValidateIP(srcIPStr, dstIPStr string, af AddressFamily) (net.IP, net.IP, error) {
	srcIP := net.ParseIP(srcIPStr)
	if err := validateIP(srcIP, af); err != nil {
		return nil, nil, errors.Wrap(err, "source IP")
	}
	dstIP := net.ParseIP(dstIPStr)
	if err := validateIP(dstIP, af); err != nil {
		return nil, nil, errors.Wrap(err, "destination IP")
	}
	return srcIP, dstIP, nil
}

func validateIP(ip net.IP, af AddressFamily) error {
	if ip == nil {
		return errors.New("invalid or empty IP")
	}
	if af == AddressINET && ip.To4() == nil {
		return errors.New("invalid IPv4")
	}
	if af == AddressINET6 && ip.To16() == nil {
		return errors.New("invalid IPv6")
	}
	return nil
}

func parseAndValidatePort(srcPortStr, dstPortStr string) (int, int, error) {
	srcPort, err := strconv.Atoi(srcPortStr)
	if err != nil {
		return 0, 0, errors.Wrap(err, "source port")
	}
	if err := validatePort(srcPort); err != nil {
		return 0, 0, errors.Wrap(err, "source port")
	}
	dstPort, err := strconv.Atoi(dstPortStr)
	if err != nil {
		return 0, 0, errors.Wrap(err, "destination port")
	}
	if err := validatePort(dstPort); err != nil {
		return 0, 0, errors.Wrap(err, "destination port")
	}
	return srcPort, dstPort, nil
}

func validatePort(port int) error {
	if port <= 0 || port > 65535 {
		return errors.New("invalid port")
	}
	return nil
}
