package dns

// NameRecord represents DNS records whose rdata is a single domain
// name: CNAME, NS, PTR. The three share wire shape and zone-file
// syntax; only their additional-section hints differ.
type NameRecord struct {
	H      RRHeader
	Target Name
}

func (r *NameRecord) Type() RecordType     { return r.H.Type }
func (r *NameRecord) Header() RRHeader     { return r.H }
func (r *NameRecord) SetHeader(h RRHeader) { r.H = h }

func (r *NameRecord) RDataSize() int { return r.Target.WireLength() }

func (r *NameRecord) MarshalRData(w *Writer) error {
	return EncodeName(w, r.Target)
}

func (r *NameRecord) TextRData() string { return r.Target.String() }

// Additionals hints at A/AAAA glue for NS targets. CNAME's follow-up
// (an Alias lookup of the original question's qtype) depends on state
// the record itself doesn't carry — the resolver handles CNAME
// chasing directly rather than through this capability (see
// internal/resolver). PTR invites no additionals.
func (r *NameRecord) Additionals() []AdditionalHint {
	if r.H.Type != TypeNS {
		return nil
	}
	return []AdditionalHint{
		{Name: r.Target, Class: r.H.Class, Type: TypeA, Kind: KindAdditional},
		{Name: r.Target, Class: r.H.Class, Type: TypeAAAA, Kind: KindAdditional},
	}
}

func init() {
	for _, t := range []RecordType{TypeCNAME, TypeNS, TypePTR} {
		registerWireDecoder(0, t, decodeNameRData)
		registerZoneDecoder(0, t, zoneDecodeNameRData)
	}
}

func decodeNameRData(r *Reader, hdr RRHeader, rdlen int) (Record, error) {
	start := r.Pos()
	target, err := DecodeName(r, true)
	if err != nil {
		return nil, err
	}
	if r.Pos()-start != rdlen {
		return nil, &InvalidLengthError{Expected: rdlen, Actual: r.Pos() - start}
	}
	return &NameRecord{H: hdr, Target: target}, nil
}

func zoneDecodeNameRData(hdr RRHeader, fields []string, origin Name) (Record, error) {
	if len(fields) != 1 {
		return nil, &UnsupportedFormatError{Reason: hdr.Type.String() + " record expects exactly one name field"}
	}
	target, err := ParseName(fields[0], origin)
	if err != nil {
		return nil, err
	}
	return &NameRecord{H: hdr, Target: target}, nil
}
