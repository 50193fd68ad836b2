package dns

import (
	"strconv"
	"strings"
)

// SOARecord is the Start-of-Authority record: MNAME, RNAME, a 32-bit
// serial (compared with RFC 1982 arithmetic), and four 32-bit timers.
type SOARecord struct {
	H       RRHeader
	MName   Name
	RName   Name
	Serial  uint32
	Refresh uint32
	Retry   uint32
	Expire  uint32
	Minimum uint32
}

func (r *SOARecord) Type() RecordType     { return TypeSOA }
func (r *SOARecord) Header() RRHeader     { return r.H }
func (r *SOARecord) SetHeader(h RRHeader) { r.H = h }

func (r *SOARecord) RDataSize() int {
	return r.MName.WireLength() + r.RName.WireLength() + 20
}

func (r *SOARecord) MarshalRData(w *Writer) error {
	if err := EncodeName(w, r.MName); err != nil {
		return err
	}
	if err := EncodeName(w, r.RName); err != nil {
		return err
	}
	w.WriteUint32(r.Serial)
	w.WriteUint32(r.Refresh)
	w.WriteUint32(r.Retry)
	w.WriteUint32(r.Expire)
	w.WriteUint32(r.Minimum)
	return nil
}

func (r *SOARecord) TextRData() string {
	return strings.Join([]string{
		r.MName.String(), r.RName.String(),
		strconv.FormatUint(uint64(r.Serial), 10),
		strconv.FormatUint(uint64(r.Refresh), 10),
		strconv.FormatUint(uint64(r.Retry), 10),
		strconv.FormatUint(uint64(r.Expire), 10),
		strconv.FormatUint(uint64(r.Minimum), 10),
	}, " ")
}

func (r *SOARecord) Additionals() []AdditionalHint { return nil }

func init() {
	registerWireDecoder(0, TypeSOA, decodeSOARData)
	registerZoneDecoder(0, TypeSOA, zoneDecodeSOARData)
}

func decodeSOARData(r *Reader, hdr RRHeader, rdlen int) (Record, error) {
	start := r.Pos()
	mname, err := DecodeName(r, true)
	if err != nil {
		return nil, err
	}
	rname, err := DecodeName(r, true)
	if err != nil {
		return nil, err
	}
	serial, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	refresh, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	retry, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	expire, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	minimum, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	if r.Pos()-start != rdlen {
		return nil, &InvalidLengthError{Expected: rdlen, Actual: r.Pos() - start}
	}
	return &SOARecord{
		H: hdr, MName: mname, RName: rname,
		Serial: serial, Refresh: refresh, Retry: retry, Expire: expire, Minimum: minimum,
	}, nil
}

func zoneDecodeSOARData(hdr RRHeader, fields []string, origin Name) (Record, error) {
	if len(fields) != 7 {
		return nil, &UnsupportedFormatError{Reason: "SOA record expects MNAME RNAME serial refresh retry expire minimum"}
	}
	mname, err := ParseName(fields[0], origin)
	if err != nil {
		return nil, err
	}
	rname, err := ParseName(fields[1], origin)
	if err != nil {
		return nil, err
	}
	nums := make([]uint32, 5)
	for i, f := range fields[2:] {
		v, err := parseZoneUint32(f)
		if err != nil {
			return nil, err
		}
		nums[i] = v
	}
	return &SOARecord{
		H: hdr, MName: mname, RName: rname,
		Serial: nums[0], Refresh: nums[1], Retry: nums[2], Expire: nums[3], Minimum: nums[4],
	}, nil
}

func parseZoneUint32(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, &UnsupportedFormatError{Reason: "expected a 32-bit integer, got " + strconv.Quote(s)}
	}
	return uint32(v), nil
}
