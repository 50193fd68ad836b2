package dns

import "encoding/binary"

// Writer is a growable byte buffer used to serialize a DNS message.
// Unlike Reader, it has no general seek/backpatch API: sections are
// appended strictly in order, matching this implementation's choice to
// never emit compressed names (see EncodeName). The one exception is
// RDLENGTH, patched in place after rdata is known (see Marshal).
type Writer struct {
	buf []byte
}

// NewWriter returns an empty Writer with a small initial capacity hint.
func NewWriter() *Writer {
	return &Writer{buf: make([]byte, 0, 256)}
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int { return len(w.buf) }

// Bytes returns the accumulated buffer. The returned slice aliases the
// Writer's internal storage.
func (w *Writer) Bytes() []byte { return w.buf }

// WriteUint8 appends one byte.
func (w *Writer) WriteUint8(v byte) {
	w.buf = append(w.buf, v)
}

// WriteUint16 appends a big-endian uint16.
func (w *Writer) WriteUint16(v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// WriteUint32 appends a big-endian uint32.
func (w *Writer) WriteUint32(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// WriteBytes appends raw bytes verbatim.
func (w *Writer) WriteBytes(b []byte) {
	w.buf = append(w.buf, b...)
}
