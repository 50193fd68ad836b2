package dns

import "strings"

// TXTRecord holds an ordered sequence of length-prefixed text strings
// (each 0..255 octets), per RFC 1035 §3.3.14.
type TXTRecord struct {
	H       RRHeader
	Strings [][]byte
}

func (r *TXTRecord) Type() RecordType     { return TypeTXT }
func (r *TXTRecord) Header() RRHeader     { return r.H }
func (r *TXTRecord) SetHeader(h RRHeader) { r.H = h }

func (r *TXTRecord) RDataSize() int {
	n := 0
	for _, s := range r.Strings {
		n += 1 + len(s)
	}
	return n
}

func (r *TXTRecord) MarshalRData(w *Writer) error {
	for _, s := range r.Strings {
		if len(s) > 255 {
			return &UnsupportedFormatError{Reason: "TXT character-string exceeds 255 octets"}
		}
		w.WriteUint8(byte(len(s)))
		w.WriteBytes(s)
	}
	return nil
}

func (r *TXTRecord) TextRData() string {
	parts := make([]string, len(r.Strings))
	for i, s := range r.Strings {
		parts[i] = quoteTXT(s)
	}
	return strings.Join(parts, " ")
}

func (r *TXTRecord) Additionals() []AdditionalHint { return nil }

func quoteTXT(s []byte) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, c := range s {
		if c == '"' || c == '\\' {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	b.WriteByte('"')
	return b.String()
}

func init() {
	registerWireDecoder(0, TypeTXT, decodeTXTRData)
	registerZoneDecoder(0, TypeTXT, zoneDecodeTXTRData)
}

func decodeTXTRData(r *Reader, hdr RRHeader, rdlen int) (Record, error) {
	start := r.Pos()
	var strs [][]byte
	for r.Pos()-start < rdlen {
		n, err := r.ReadUint8()
		if err != nil {
			return nil, err
		}
		s, err := r.ReadBytes(int(n))
		if err != nil {
			return nil, err
		}
		strs = append(strs, s)
	}
	if r.Pos()-start != rdlen {
		return nil, &InvalidLengthError{Expected: rdlen, Actual: r.Pos() - start}
	}
	return &TXTRecord{H: hdr, Strings: strs}, nil
}

// zoneDecodeTXTRData treats each zone-file field as one already-unquoted
// character-string (the lexer is responsible for stripping the
// surrounding quotes and resolving escapes before this is called).
func zoneDecodeTXTRData(hdr RRHeader, fields []string, _ Name) (Record, error) {
	if len(fields) == 0 {
		return nil, &UnsupportedFormatError{Reason: "TXT record expects at least one character-string"}
	}
	strs := make([][]byte, len(fields))
	for i, f := range fields {
		if len(f) > 255 {
			return nil, &UnsupportedFormatError{Reason: "TXT character-string exceeds 255 octets"}
		}
		strs[i] = []byte(f)
	}
	return &TXTRecord{H: hdr, Strings: strs}, nil
}
