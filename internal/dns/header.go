package dns

// Header represents a DNS message header (RFC 1035 §4.1.1): a 16-bit
// ID, a 16-bit flags word (QR/Opcode/AA/TC/RD/RA/Z/AD/CD/RCODE-low-4),
// and the four section counts.
type Header struct {
	ID      uint16
	Flags   uint16
	QDCount uint16
	ANCount uint16
	NSCount uint16
	ARCount uint16
}

// HeaderSize is the fixed size of a DNS header in bytes.
const HeaderSize = 12

// Marshal serializes the header to wire format (big-endian, 12 bytes).
func (h Header) Marshal(w *Writer) {
	w.WriteUint16(h.ID)
	w.WriteUint16(h.Flags)
	w.WriteUint16(h.QDCount)
	w.WriteUint16(h.ANCount)
	w.WriteUint16(h.NSCount)
	w.WriteUint16(h.ARCount)
}

// DecodeHeader parses a DNS header from r's current cursor.
func DecodeHeader(r *Reader) (Header, error) {
	id, err := r.ReadUint16()
	if err != nil {
		return Header{}, err
	}
	flags, err := r.ReadUint16()
	if err != nil {
		return Header{}, err
	}
	qd, err := r.ReadUint16()
	if err != nil {
		return Header{}, err
	}
	an, err := r.ReadUint16()
	if err != nil {
		return Header{}, err
	}
	ns, err := r.ReadUint16()
	if err != nil {
		return Header{}, err
	}
	ar, err := r.ReadUint16()
	if err != nil {
		return Header{}, err
	}
	return Header{ID: id, Flags: flags, QDCount: qd, ANCount: an, NSCount: ns, ARCount: ar}, nil
}
