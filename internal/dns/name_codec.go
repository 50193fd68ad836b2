package dns

// label top-bits forms (RFC 1035 §4.1.4).
const (
	labelFormLiteral = 0x00 // top two bits 00: literal label, length in low 6 bits
	labelFormPointer = 0xC0 // top two bits 11: compression pointer
	labelTopBitsMask = 0xC0
)

// EncodeName writes n to w in always-uncompressed wire form: each label
// as a length-prefixed octet string, terminated by a zero-length root
// label. Compression on encode is intentionally not implemented; the
// truncation policy absorbs the resulting size cost (see Message.Truncate).
func EncodeName(w *Writer, n Name) error {
	if wl := n.WireLength(); wl > MaxNameLength {
		return &UnsupportedFormatError{Reason: "domain name exceeds 255 octets on encode"}
	}
	for _, l := range n {
		if len(l) > MaxLabelLength {
			return &UnsupportedFormatError{Reason: "label exceeds 63 octets on encode"}
		}
		w.WriteUint8(byte(len(l)))
		w.WriteBytes(l)
	}
	w.WriteUint8(0)
	return nil
}

// DecodeName reads a domain name starting at r's current cursor.
// allowCompression selects the compressible variant (pointers followed)
// vs the incompressible variant (any pointer-form byte is rejected).
//
// The decoder maintains the set of offsets it has visited (label-start
// offsets, including pointer targets) and fails if a pointer would
// revisit one, which guarantees termination without a separate depth
// counter.
//
// On first pointer follow, the cursor position immediately after that
// pointer's two bytes is saved and restored once the whole name has
// been read, so the caller's cursor ends up just past this name's
// in-place encoding regardless of how many pointer hops were chased.
func DecodeName(r *Reader, allowCompression bool) (Name, error) {
	var name Name
	visited := make(map[int]struct{})
	cur := r.Pos()
	savedReturnOffset := -1

	for {
		if _, seen := visited[cur]; seen {
			return nil, &UnsupportedFormatError{Reason: "compression pointer revisits a prior offset"}
		}
		visited[cur] = struct{}{}
		r.Seek(cur)

		lenByte, err := r.ReadUint8()
		if err != nil {
			return nil, err
		}

		form := lenByte & labelTopBitsMask
		if form == labelFormLiteral && lenByte == 0 {
			cur = r.Pos()
			break
		}

		switch form {
		case labelFormLiteral:
			lbl, err := r.ReadBytes(int(lenByte))
			if err != nil {
				return nil, err
			}
			name = append(name, Label(lbl))
			cur = r.Pos()

		case labelFormPointer:
			if !allowCompression {
				return nil, &UnsupportedFormatError{Reason: "compression pointer not allowed in this name context"}
			}
			lo, err := r.ReadUint8()
			if err != nil {
				return nil, err
			}
			if savedReturnOffset < 0 {
				savedReturnOffset = r.Pos()
			}
			ptr := (int(lenByte&^labelTopBitsMask) << 8) | int(lo)
			if ptr >= r.Len() {
				return nil, &UnexpectedEndError{Size: r.Len(), Tried: ptr}
			}
			cur = ptr

		default:
			return nil, &UnsupportedFormatError{Reason: "reserved label-length top bits"}
		}
	}

	if savedReturnOffset >= 0 {
		r.Seek(savedReturnOffset)
	} else {
		r.Seek(cur)
	}
	if wl := name.WireLength(); wl > MaxNameLength {
		return nil, &UnsupportedFormatError{Reason: "decoded domain name exceeds 255 octets"}
	}
	return name, nil
}
