package dns

// RRHeader is the fixed portion common to every resource record:
// owner name, type, class, TTL. RDLENGTH is not stored here; it is
// derived from MarshalRData when encoding.
type RRHeader struct {
	Name  Name
	Type  RecordType
	Class RecordClass
	TTL   uint32
}

// ResolutionKind classifies a pending lookup in the resolver's
// worklist: the original query question, a CNAME-driven alias of it,
// or a server-initiated additional-section lookup.
type ResolutionKind int

const (
	KindQuestion ResolutionKind = iota
	KindAlias
	KindAdditional
)

func (k ResolutionKind) String() string {
	switch k {
	case KindQuestion:
		return "question"
	case KindAlias:
		return "alias"
	case KindAdditional:
		return "additional"
	default:
		return "unknown"
	}
}

// AdditionalHint is a follow-up lookup a record invites when it appears
// in a response: e.g. an NS record hints at the target's A/AAAA glue.
type AdditionalHint struct {
	Name  Name
	Class RecordClass
	Type  RecordType
	Kind  ResolutionKind
}

// Record is the capability set every resource record type implements:
// wire size, wire encode (decode is a free function registered per
// (class, type) in the catalogue), zone-file textual format, and the
// additional-section hints it invites when used as an answer.
//
// An implementation may use tagged variants with dispatch on the
// (class, type) pair (this package's approach) or a trait-object table
// indexed by the same pair; the fallback for unrecognized (class, type)
// is OpaqueRecord.
type Record interface {
	// Type reports the record's wire type.
	Type() RecordType
	// Header returns the record's owner/type/class/TTL.
	Header() RRHeader
	// SetHeader replaces the record's owner/type/class/TTL, e.g. when
	// the resolver rewrites TTL or reuses a catalogue-constructed
	// record under a different owner name.
	SetHeader(RRHeader)
	// RDataSize reports the number of bytes MarshalRData would emit,
	// without allocating them.
	RDataSize() int
	// MarshalRData appends the record's rdata (not the fixed header
	// fields) to w in wire form.
	MarshalRData(w *Writer) error
	// TextRData renders the record's rdata in zone-file textual form
	// (the fields following owner/TTL/class/type on a zone-file line).
	TextRData() string
	// Additionals returns the follow-up lookups this record invites
	// when it appears as an answer.
	Additionals() []AdditionalHint
}

// Marshal serializes a complete resource record (header + rdata) to w.
func Marshal(w *Writer, rr Record) error {
	h := rr.Header()
	if err := EncodeName(w, h.Name); err != nil {
		return err
	}
	w.WriteUint16(uint16(rr.Type()))
	w.WriteUint16(uint16(h.Class))
	w.WriteUint32(h.TTL)

	rdlenPos := w.Len()
	w.WriteUint16(0) // placeholder, patched below
	rdataStart := w.Len()
	if err := rr.MarshalRData(w); err != nil {
		return err
	}
	rdlen := w.Len() - rdataStart
	if rdlen != rr.RDataSize() {
		return &InvalidLengthError{Expected: rr.RDataSize(), Actual: rdlen}
	}
	patchUint16(w, rdlenPos, uint16(rdlen))
	return nil
}

// patchUint16 overwrites the two bytes at offset pos in w's already
// written buffer. Writer has no general backpatch API (see writer.go);
// this is the one place Marshal needs it, for the RDLENGTH field whose
// value isn't known until rdata has been serialized.
func patchUint16(w *Writer, pos int, v uint16) {
	b := w.Bytes()
	b[pos] = byte(v >> 8)
	b[pos+1] = byte(v)
}

// recordDecoder decodes rdata already known to belong to (class, type)
// hdr describes, given rdlen octets available starting at r's cursor.
// It must consume exactly rdlen bytes.
type recordDecoder func(r *Reader, hdr RRHeader, rdlen int) (Record, error)

// catalogKey identifies a decoder/zone-parser registration. Class 0
// means "any class" (most record types are class-insensitive in rdata
// shape; only A is split by class).
type catalogKey struct {
	Class RecordClass
	Type  RecordType
}

var wireDecoders = map[catalogKey]recordDecoder{}

func registerWireDecoder(class RecordClass, t RecordType, fn recordDecoder) {
	wireDecoders[catalogKey{Class: class, Type: t}] = fn
}

// DecodeRecord reads one complete resource record (name, fixed fields,
// rdata) from r, dispatching rdata decode on (class, type) with
// class-specific entries (IN/A, CH/A) preferred over a class-0
// (class-insensitive) entry, and falling through to OpaqueRecord for
// anything unregistered.
func DecodeRecord(r *Reader) (Record, error) {
	name, err := DecodeName(r, true)
	if err != nil {
		return nil, err
	}
	rrType, err := r.ReadUint16()
	if err != nil {
		return nil, err
	}
	rrClass, err := r.ReadUint16()
	if err != nil {
		return nil, err
	}
	ttl, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	rdlen, err := r.ReadUint16()
	if err != nil {
		return nil, err
	}

	hdr := RRHeader{Name: name, Type: RecordType(rrType), Class: RecordClass(rrClass), TTL: ttl}

	start := r.Pos()
	if err := checkRDLenAvailable(r, int(rdlen)); err != nil {
		return nil, err
	}

	decode, ok := wireDecoders[catalogKey{Class: hdr.Class, Type: hdr.Type}]
	if !ok {
		decode, ok = wireDecoders[catalogKey{Class: 0, Type: hdr.Type}]
	}
	if !ok {
		decode = decodeOpaqueRData
	}

	rr, err := decode(r, hdr, int(rdlen))
	if err != nil {
		return nil, err
	}
	if consumed := r.Pos() - start; consumed != int(rdlen) {
		return nil, &InvalidLengthError{Expected: int(rdlen), Actual: consumed}
	}
	return rr, nil
}

func checkRDLenAvailable(r *Reader, rdlen int) error {
	if rdlen < 0 || r.Pos()+rdlen > r.Len() {
		return &UnexpectedEndError{Size: r.Len(), Tried: r.Pos() + rdlen}
	}
	return nil
}
