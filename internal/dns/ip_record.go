package dns

import (
	"fmt"
	"net"
)

// IPRecord represents an A or AAAA record. (IN, A) and (CH, A) are
// distinct catalogue entries even though they share this Go type and
// wire shape — Chaosnet hosts (e.g. "version.bind") carry their own A
// records disjoint from the Internet class.
type IPRecord struct {
	H    RRHeader
	Addr net.IP
}

func (r *IPRecord) Type() RecordType     { return r.H.Type }
func (r *IPRecord) Header() RRHeader     { return r.H }
func (r *IPRecord) SetHeader(h RRHeader) { r.H = h }

func (r *IPRecord) RDataSize() int {
	if r.H.Type == TypeAAAA {
		return 16
	}
	return 4
}

func (r *IPRecord) MarshalRData(w *Writer) error {
	switch r.H.Type {
	case TypeA:
		ip4 := r.Addr.To4()
		if ip4 == nil {
			return &UnsupportedFormatError{Reason: "A record address is not IPv4"}
		}
		w.WriteBytes(ip4)
	case TypeAAAA:
		ip6 := r.Addr.To16()
		if ip6 == nil || r.Addr.To4() != nil {
			return &UnsupportedFormatError{Reason: "AAAA record address is not IPv6"}
		}
		w.WriteBytes(ip6)
	default:
		return &UnsupportedFormatError{Reason: fmt.Sprintf("IPRecord used for unsupported type %s", r.H.Type)}
	}
	return nil
}

func (r *IPRecord) TextRData() string { return r.Addr.String() }

// Additionals reports none: A/AAAA records are themselves the usual
// target of glue chasing, not a source of further hints.
func (r *IPRecord) Additionals() []AdditionalHint { return nil }

func init() {
	registerWireDecoder(ClassIN, TypeA, decodeIPRData)
	registerWireDecoder(ClassCH, TypeA, decodeIPRData)
	registerWireDecoder(0, TypeAAAA, decodeIPRData)

	registerZoneDecoder(ClassIN, TypeA, zoneDecodeIPv4)
	registerZoneDecoder(ClassCH, TypeA, zoneDecodeIPv4)
	registerZoneDecoder(0, TypeAAAA, zoneDecodeIPv6)
}

func decodeIPRData(r *Reader, hdr RRHeader, rdlen int) (Record, error) {
	want := 4
	if hdr.Type == TypeAAAA {
		want = 16
	}
	if rdlen != want {
		return nil, &InvalidLengthError{Expected: want, Actual: rdlen}
	}
	b, err := r.ReadBytes(rdlen)
	if err != nil {
		return nil, err
	}
	return &IPRecord{H: hdr, Addr: net.IP(b)}, nil
}

func zoneDecodeIPv4(hdr RRHeader, fields []string, _ Name) (Record, error) {
	if len(fields) != 1 {
		return nil, &UnsupportedFormatError{Reason: "A record expects exactly one address field"}
	}
	ip := net.ParseIP(fields[0]).To4()
	if ip == nil {
		return nil, &UnsupportedFormatError{Reason: "invalid IPv4 address in A record"}
	}
	return &IPRecord{H: hdr, Addr: ip}, nil
}

func zoneDecodeIPv6(hdr RRHeader, fields []string, _ Name) (Record, error) {
	if len(fields) != 1 {
		return nil, &UnsupportedFormatError{Reason: "AAAA record expects exactly one address field"}
	}
	ip := net.ParseIP(fields[0])
	if ip == nil || ip.To4() != nil {
		return nil, &UnsupportedFormatError{Reason: "invalid IPv6 address in AAAA record"}
	}
	return &IPRecord{H: hdr, Addr: ip.To16()}, nil
}
