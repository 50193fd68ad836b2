package dns

import "strconv"

// SRVRecord is a service-locator record (RFC 2782): priority, weight,
// port, and a target host.
type SRVRecord struct {
	H        RRHeader
	Priority uint16
	Weight   uint16
	Port     uint16
	Target   Name
}

func (r *SRVRecord) Type() RecordType     { return TypeSRV }
func (r *SRVRecord) Header() RRHeader     { return r.H }
func (r *SRVRecord) SetHeader(h RRHeader) { r.H = h }

func (r *SRVRecord) RDataSize() int { return 6 + r.Target.WireLength() }

func (r *SRVRecord) MarshalRData(w *Writer) error {
	w.WriteUint16(r.Priority)
	w.WriteUint16(r.Weight)
	w.WriteUint16(r.Port)
	return EncodeName(w, r.Target)
}

func (r *SRVRecord) TextRData() string {
	return strconv.Itoa(int(r.Priority)) + " " + strconv.Itoa(int(r.Weight)) + " " +
		strconv.Itoa(int(r.Port)) + " " + r.Target.String()
}

func (r *SRVRecord) Additionals() []AdditionalHint {
	return []AdditionalHint{
		{Name: r.Target, Class: r.H.Class, Type: TypeA, Kind: KindAdditional},
		{Name: r.Target, Class: r.H.Class, Type: TypeAAAA, Kind: KindAdditional},
	}
}

func init() {
	registerWireDecoder(0, TypeSRV, decodeSRVRData)
	registerZoneDecoder(0, TypeSRV, zoneDecodeSRVRData)
}

func decodeSRVRData(r *Reader, hdr RRHeader, rdlen int) (Record, error) {
	start := r.Pos()
	prio, err := r.ReadUint16()
	if err != nil {
		return nil, err
	}
	weight, err := r.ReadUint16()
	if err != nil {
		return nil, err
	}
	port, err := r.ReadUint16()
	if err != nil {
		return nil, err
	}
	target, err := DecodeName(r, true)
	if err != nil {
		return nil, err
	}
	if r.Pos()-start != rdlen {
		return nil, &InvalidLengthError{Expected: rdlen, Actual: r.Pos() - start}
	}
	return &SRVRecord{H: hdr, Priority: prio, Weight: weight, Port: port, Target: target}, nil
}

func zoneDecodeSRVRData(hdr RRHeader, fields []string, origin Name) (Record, error) {
	if len(fields) != 4 {
		return nil, &UnsupportedFormatError{Reason: "SRV record expects priority weight port target fields"}
	}
	prio, err := strconv.ParseUint(fields[0], 10, 16)
	if err != nil {
		return nil, &UnsupportedFormatError{Reason: "invalid SRV priority"}
	}
	weight, err := strconv.ParseUint(fields[1], 10, 16)
	if err != nil {
		return nil, &UnsupportedFormatError{Reason: "invalid SRV weight"}
	}
	port, err := strconv.ParseUint(fields[2], 10, 16)
	if err != nil {
		return nil, &UnsupportedFormatError{Reason: "invalid SRV port"}
	}
	target, err := ParseName(fields[3], origin)
	if err != nil {
		return nil, err
	}
	return &SRVRecord{
		H: hdr, Priority: uint16(prio), Weight: uint16(weight), Port: uint16(port), Target: target,
	}, nil
}
