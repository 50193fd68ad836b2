package dns

import "strconv"

// MXRecord is a mail-exchange record: a preference and a target host.
type MXRecord struct {
	H          RRHeader
	Preference uint16
	Exchange   Name
}

func (r *MXRecord) Type() RecordType     { return TypeMX }
func (r *MXRecord) Header() RRHeader     { return r.H }
func (r *MXRecord) SetHeader(h RRHeader) { r.H = h }

func (r *MXRecord) RDataSize() int { return 2 + r.Exchange.WireLength() }

func (r *MXRecord) MarshalRData(w *Writer) error {
	w.WriteUint16(r.Preference)
	return EncodeName(w, r.Exchange)
}

func (r *MXRecord) TextRData() string {
	return strconv.Itoa(int(r.Preference)) + " " + r.Exchange.String()
}

func (r *MXRecord) Additionals() []AdditionalHint {
	return []AdditionalHint{
		{Name: r.Exchange, Class: r.H.Class, Type: TypeA, Kind: KindAdditional},
		{Name: r.Exchange, Class: r.H.Class, Type: TypeAAAA, Kind: KindAdditional},
	}
}

func init() {
	registerWireDecoder(0, TypeMX, decodeMXRData)
	registerZoneDecoder(0, TypeMX, zoneDecodeMXRData)
}

func decodeMXRData(r *Reader, hdr RRHeader, rdlen int) (Record, error) {
	start := r.Pos()
	pref, err := r.ReadUint16()
	if err != nil {
		return nil, err
	}
	exchange, err := DecodeName(r, true)
	if err != nil {
		return nil, err
	}
	if r.Pos()-start != rdlen {
		return nil, &InvalidLengthError{Expected: rdlen, Actual: r.Pos() - start}
	}
	return &MXRecord{H: hdr, Preference: pref, Exchange: exchange}, nil
}

func zoneDecodeMXRData(hdr RRHeader, fields []string, origin Name) (Record, error) {
	if len(fields) != 2 {
		return nil, &UnsupportedFormatError{Reason: "MX record expects preference and exchange fields"}
	}
	pref, err := strconv.ParseUint(fields[0], 10, 16)
	if err != nil {
		return nil, &UnsupportedFormatError{Reason: "invalid MX preference"}
	}
	exchange, err := ParseName(fields[1], origin)
	if err != nil {
		return nil, err
	}
	return &MXRecord{H: hdr, Preference: uint16(pref), Exchange: exchange}, nil
}
