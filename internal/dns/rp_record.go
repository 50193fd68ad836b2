package dns

// RPRecord is a responsible-person record: a mailbox name and a
// TXT-lookup name for further contact info (RFC 1183 §2.2).
type RPRecord struct {
	H       RRHeader
	Mailbox Name
	TXTDom  Name
}

func (r *RPRecord) Type() RecordType     { return TypeRP }
func (r *RPRecord) Header() RRHeader     { return r.H }
func (r *RPRecord) SetHeader(h RRHeader) { r.H = h }

func (r *RPRecord) RDataSize() int {
	return r.Mailbox.WireLength() + r.TXTDom.WireLength()
}

func (r *RPRecord) MarshalRData(w *Writer) error {
	if err := EncodeName(w, r.Mailbox); err != nil {
		return err
	}
	return EncodeName(w, r.TXTDom)
}

func (r *RPRecord) TextRData() string {
	return r.Mailbox.String() + " " + r.TXTDom.String()
}

// Additionals reports none: RP's names are informational, not
// resolvable targets the way NS/MX/SRV targets are.
func (r *RPRecord) Additionals() []AdditionalHint { return nil }

func init() {
	registerWireDecoder(0, TypeRP, decodeRPRData)
	registerZoneDecoder(0, TypeRP, zoneDecodeRPRData)
}

func decodeRPRData(r *Reader, hdr RRHeader, rdlen int) (Record, error) {
	start := r.Pos()
	mbox, err := DecodeName(r, true)
	if err != nil {
		return nil, err
	}
	txtDom, err := DecodeName(r, true)
	if err != nil {
		return nil, err
	}
	if r.Pos()-start != rdlen {
		return nil, &InvalidLengthError{Expected: rdlen, Actual: r.Pos() - start}
	}
	return &RPRecord{H: hdr, Mailbox: mbox, TXTDom: txtDom}, nil
}

func zoneDecodeRPRData(hdr RRHeader, fields []string, origin Name) (Record, error) {
	if len(fields) != 2 {
		return nil, &UnsupportedFormatError{Reason: "RP record expects mailbox and txt-domain fields"}
	}
	mbox, err := ParseName(fields[0], origin)
	if err != nil {
		return nil, err
	}
	txtDom, err := ParseName(fields[1], origin)
	if err != nil {
		return nil, err
	}
	return &RPRecord{H: hdr, Mailbox: mbox, TXTDom: txtDom}, nil
}
