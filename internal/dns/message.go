package dns

// Limits on incoming messages, defending against resource exhaustion
// from a header claiming huge section counts on a small packet.
const (
	MaxIncomingMessageSize = 65535
	MaxQuestions           = 4
	MaxRRPerSection        = 1000
	MaxTotalRR             = 2000
)

// EDNSState is the optional EDNS(0) state of a Message: present iff the
// message carries (or, on a response, should carry) an OPT pseudo
// record.
type EDNSState struct {
	Version  uint8
	UDPSize  uint16 // clamped to >=EDNSMinUDPPayloadSize when present
	DO       bool
	ExtraZ   uint16 // reserved 15 bits from the OPT TTL field, preserved verbatim
	RCodeHi  uint8  // high 8 bits of the 12-bit extended RCODE
	Options  []EDNSOption
}

// Message is the in-memory representation of a DNS message: header
// fields exploded into named booleans/enums, the four sections, and
// optional EDNS state absorbed from (or to be synthesized into) an OPT
// pseudo-record.
type Message struct {
	ID     uint16
	QR     bool
	Opcode Opcode
	AA     bool
	TC     bool
	RD     bool
	RA     bool
	Z      bool
	AD     bool
	CD     bool
	// RCodeLow is the 4-bit RCODE as it appears in the header. Combined
	// with EDNS.RCodeHi (if EDNS is present) to form the full extended
	// RCODE.
	RCodeLow RCode

	Questions   []Question
	Answers     []Record
	Authorities []Record
	Additionals []Record

	EDNS *EDNSState
}

// RCode returns the full (possibly extended) response code: the OPT
// record's high 8 bits concatenated with the header's low 4 bits when
// EDNS is present, or just the low 4 bits otherwise.
func (m *Message) RCode() RCode {
	if m.EDNS != nil {
		return RCode(uint16(m.EDNS.RCodeHi)<<4 | uint16(m.RCodeLow))
	}
	return m.RCodeLow
}

// SetRCode sets the message's response code, splitting it across the
// header's low 4 bits and (when EDNS is present) the OPT record's high
// 8 bits.
func (m *Message) SetRCode(rc RCode) {
	m.RCodeLow = RCode(uint16(rc) & 0x0F)
	if m.EDNS != nil {
		m.EDNS.RCodeHi = uint8(uint16(rc) >> 4)
	}
}

func (m *Message) flags() uint16 {
	var f uint16
	if m.QR {
		f |= QRFlag
	}
	f |= (uint16(m.Opcode) << 11) & OpcodeMask
	if m.AA {
		f |= AAFlag
	}
	if m.TC {
		f |= TCFlag
	}
	if m.RD {
		f |= RDFlag
	}
	if m.RA {
		f |= RAFlag
	}
	if m.Z {
		f |= ZFlag
	}
	if m.AD {
		f |= ADFlag
	}
	if m.CD {
		f |= CDFlag
	}
	f |= uint16(m.RCodeLow) & RCodeMask
	return f
}

func messageFromFlags(flags uint16) Message {
	return Message{
		QR:       flags&QRFlag != 0,
		Opcode:   OpcodeFromFlags(flags),
		AA:       flags&AAFlag != 0,
		TC:       flags&TCFlag != 0,
		RD:       flags&RDFlag != 0,
		RA:       flags&RAFlag != 0,
		Z:        flags&ZFlag != 0,
		AD:       flags&ADFlag != 0,
		CD:       flags&CDFlag != 0,
		RCodeLow: RCodeFromFlags(flags),
	}
}

// optPseudoRecordBaseSize is the OPT record's fixed overhead: 1 byte
// root name, 2 bytes TYPE, 2 bytes CLASS (UDP size), 4 bytes TTL,
// 2 bytes RDLENGTH.
const optPseudoRecordBaseSize = 11

func (e *EDNSState) wireSize() int {
	return optPseudoRecordBaseSize + ednsOptionsSize(e.Options)
}

// DecodeMessage parses buf into a Message: the header, questions, the
// three record sections, then absorbs a trailing OPT record (if any)
// from the additional section into EDNS state.
func DecodeMessage(buf []byte) (*Message, error) {
	if len(buf) > MaxIncomingMessageSize {
		return nil, &InvalidLengthError{Expected: MaxIncomingMessageSize, Actual: len(buf)}
	}
	r := NewReader(buf)
	hdr, err := DecodeHeader(r)
	if err != nil {
		return nil, err
	}
	if hdr.QDCount > MaxQuestions {
		return nil, &UnsupportedFormatError{Reason: "question count exceeds limit"}
	}
	if hdr.ANCount > MaxRRPerSection || hdr.NSCount > MaxRRPerSection || hdr.ARCount > MaxRRPerSection {
		return nil, &UnsupportedFormatError{Reason: "record section count exceeds limit"}
	}
	if int(hdr.ANCount)+int(hdr.NSCount)+int(hdr.ARCount) > MaxTotalRR {
		return nil, &UnsupportedFormatError{Reason: "total record count exceeds limit"}
	}

	m := messageFromFlags(hdr.Flags)
	m.ID = hdr.ID

	m.Questions = make([]Question, 0, clampCount(hdr.QDCount, MaxQuestions))
	for i := uint16(0); i < hdr.QDCount; i++ {
		q, err := DecodeQuestion(r)
		if err != nil {
			return nil, err
		}
		m.Questions = append(m.Questions, q)
	}

	m.Answers, err = decodeRRSection(r, hdr.ANCount)
	if err != nil {
		return nil, err
	}
	m.Authorities, err = decodeRRSection(r, hdr.NSCount)
	if err != nil {
		return nil, err
	}
	m.Additionals, err = decodeRRSection(r, hdr.ARCount)
	if err != nil {
		return nil, err
	}

	if err := m.absorbOPT(); err != nil {
		return nil, err
	}
	return &m, nil
}

func clampCount(n uint16, limit int) int {
	if int(n) > limit {
		return limit
	}
	return int(n)
}

func decodeRRSection(r *Reader, count uint16) ([]Record, error) {
	out := make([]Record, 0, clampCount(count, MaxRRPerSection))
	for i := uint16(0); i < count; i++ {
		rr, err := DecodeRecord(r)
		if err != nil {
			return nil, err
		}
		out = append(out, rr)
	}
	return out, nil
}

// absorbOPT scans the additional section for a TYPE=41 record. At most
// one is allowed; if present it is removed from Additionals and its
// fields become m.EDNS.
func (m *Message) absorbOPT() error {
	idx := -1
	for i, rr := range m.Additionals {
		if rr.Type() != TypeOPT {
			continue
		}
		if idx != -1 {
			return &UnsupportedFormatError{Reason: "more than one OPT record in additional section"}
		}
		idx = i
	}
	if idx == -1 {
		return nil
	}

	opt := m.Additionals[idx]
	h := opt.Header()
	opaque, ok := opt.(*OpaqueRecord)
	if !ok {
		return &UnsupportedFormatError{Reason: "OPT record has unexpected internal representation"}
	}
	options, err := decodeEDNSOptions(opaque.Data)
	if err != nil {
		return err
	}

	udpSize := uint16(h.Class)
	if udpSize < EDNSMinUDPPayloadSize {
		udpSize = EDNSMinUDPPayloadSize
	}
	m.EDNS = &EDNSState{
		Version: uint8(h.TTL >> 16),
		UDPSize: udpSize,
		DO:      (h.TTL>>15)&1 == 1,
		ExtraZ:  uint16(h.TTL) & 0x7FFF,
		RCodeHi: uint8(h.TTL >> 24),
		Options: options,
	}
	m.Additionals = append(m.Additionals[:idx], m.Additionals[idx+1:]...)
	return nil
}

// Marshal serializes m to DNS wire format: header, questions, answer,
// authority and additional sections, with a synthesized OPT record
// appended to the additional section when EDNS state is present.
// ARCOUNT is additionals+1 in that case.
func (m *Message) Marshal() ([]byte, error) {
	w := NewWriter()

	arCount := len(m.Additionals)
	if m.EDNS != nil {
		arCount++
	}

	hdr := Header{
		ID:      m.ID,
		Flags:   m.flags(),
		QDCount: uint16(len(m.Questions)),
		ANCount: uint16(len(m.Answers)),
		NSCount: uint16(len(m.Authorities)),
		ARCount: uint16(arCount),
	}
	hdr.Marshal(w)

	for _, q := range m.Questions {
		if err := q.Marshal(w); err != nil {
			return nil, err
		}
	}
	for _, sec := range [][]Record{m.Answers, m.Authorities, m.Additionals} {
		for _, rr := range sec {
			if err := Marshal(w, rr); err != nil {
				return nil, err
			}
		}
	}
	if m.EDNS != nil {
		marshalOPT(w, m.EDNS)
	}
	return w.Bytes(), nil
}

func marshalOPT(w *Writer, e *EDNSState) {
	w.WriteUint8(0) // root name
	w.WriteUint16(uint16(TypeOPT))
	w.WriteUint16(e.UDPSize)
	ttl := uint32(e.RCodeHi)<<24 | uint32(e.Version)<<16 | uint32(e.ExtraZ)&0x7FFF
	if e.DO {
		ttl |= 1 << 15
	}
	w.WriteUint32(ttl)
	w.WriteUint16(uint16(ednsOptionsSize(e.Options)))
	encodeEDNSOptions(w, e.Options)
}

// NewResponseBase builds a fresh response Message from a decoded query:
// ID, Opcode and RD copied, QR=true, AA=true, RA=false, RCODE=NoError.
func NewResponseBase(req *Message) *Message {
	return &Message{
		ID:     req.ID,
		QR:     true,
		Opcode: req.Opcode,
		AA:     true,
		RD:     req.RD,
		RA:     false,
	}
}

// BuildFormatErrorResponse builds the minimal wire-format FormErr response
// to a request too malformed to fully decode: QR=1, RCODE=FormErr, every
// section empty. The query ID is preserved when at least 2 bytes of the
// request were readable; otherwise ID is 0.
func BuildFormatErrorResponse(raw []byte) []byte {
	var id uint16
	if len(raw) >= 2 {
		id = uint16(raw[0])<<8 | uint16(raw[1])
	}
	resp := &Message{ID: id, QR: true, RCodeLow: RCodeFormErr}
	b, err := resp.Marshal()
	if err != nil {
		// A fixed 12-byte header with no sections cannot fail to marshal.
		panic(err)
	}
	return b
}

// Truncate cuts m's sections to fit within n encoded bytes. It drops
// the OPT record first if even the header+OPT overhead exceeds n; then
// trims questions, answers, authorities, additionals in order. The
// first section that cannot fit in full is cut partway (keeping
// however many whole records fit) and every later section is cleared.
// TC is set iff anything was dropped. Truncation never produces a
// message whose encoded size exceeds n.
func (m *Message) Truncate(n int) {
	budget := n - HeaderSize
	optCost := 0
	if m.EDNS != nil {
		optCost = m.EDNS.wireSize()
	}

	if budget-optCost < 0 {
		m.EDNS = nil
		m.TC = true
	} else {
		budget -= optCost
	}

	cut := false
	budget = fitQuestions(m, budget, &cut)
	if !cut {
		budget = fitRecords(&m.Answers, budget, &cut)
	} else {
		m.Answers = nil
	}
	if !cut {
		budget = fitRecords(&m.Authorities, budget, &cut)
	} else {
		m.Authorities = nil
	}
	if !cut {
		_ = fitRecords(&m.Additionals, budget, &cut)
	} else {
		m.Additionals = nil
	}

	if cut {
		m.TC = true
	}
}

func fitQuestions(m *Message, budget int, cut *bool) int {
	kept := 0
	for _, q := range m.Questions {
		sz := q.Name.WireLength() + 4
		if sz > budget {
			*cut = true
			break
		}
		budget -= sz
		kept++
	}
	if kept < len(m.Questions) {
		m.Questions = m.Questions[:kept]
	}
	return budget
}

func fitRecords(recs *[]Record, budget int, cut *bool) int {
	kept := 0
	for _, rr := range *recs {
		h := rr.Header()
		sz := h.Name.WireLength() + 10 + rr.RDataSize()
		if sz > budget {
			*cut = true
			break
		}
		budget -= sz
		kept++
	}
	if kept < len(*recs) {
		*recs = (*recs)[:kept]
	}
	return budget
}
