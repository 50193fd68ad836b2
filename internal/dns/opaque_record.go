package dns

import (
	"encoding/hex"
	"strconv"
)

// OpaqueRecord preserves the rdata octets of any (class, type) pair with
// no registered decoder verbatim. It is the fallback for unrecognized
// record shapes, and is also how the OPT pseudo-record's rdata is
// carried before Message absorbs it into EDNS state (see edns.go).
type OpaqueRecord struct {
	H    RRHeader
	Data []byte
}

func (r *OpaqueRecord) Type() RecordType     { return r.H.Type }
func (r *OpaqueRecord) Header() RRHeader     { return r.H }
func (r *OpaqueRecord) SetHeader(h RRHeader) { r.H = h }

func (r *OpaqueRecord) RDataSize() int { return len(r.Data) }

func (r *OpaqueRecord) MarshalRData(w *Writer) error {
	w.WriteBytes(r.Data)
	return nil
}

// TextRData renders the unknown-type zone-file escape:
// "\# <len> <hex-bytes>".
func (r *OpaqueRecord) TextRData() string {
	return "\\# " + strconv.Itoa(len(r.Data)) + " " + hex.EncodeToString(r.Data)
}

func (r *OpaqueRecord) Additionals() []AdditionalHint { return nil }

func decodeOpaqueRData(r *Reader, hdr RRHeader, rdlen int) (Record, error) {
	b, err := r.ReadBytes(rdlen)
	if err != nil {
		return nil, err
	}
	return &OpaqueRecord{H: hdr, Data: b}, nil
}

// DecodeOpaqueZoneRData decodes the `\# <len> <hex-bytes>` unknown-type
// syntax. The zone-file parser calls this directly (not through the
// zoneDecoders registry) whenever a record's type has no registered
// zone-file decoder.
func DecodeOpaqueZoneRData(hdr RRHeader, lengthField, hexField string) (Record, error) {
	n, err := parseZoneUint32(lengthField)
	if err != nil {
		return nil, err
	}
	b, err := hex.DecodeString(hexField)
	if err != nil {
		return nil, &UnsupportedFormatError{Reason: "invalid hex in \\# unknown-type rdata"}
	}
	if len(b) != int(n) {
		return nil, &InvalidLengthError{Expected: int(n), Actual: len(b)}
	}
	return &OpaqueRecord{H: hdr, Data: b}, nil
}

