package dns

// Question represents a DNS question section entry (RFC 1035 §4.1.2):
// the name being queried, the record type requested, and the class
// (usually ClassIN).
type Question struct {
	Name  Name
	Type  RecordType
	Class RecordClass
}

// Marshal serializes the question to DNS wire format.
func (q Question) Marshal(w *Writer) error {
	if err := EncodeName(w, q.Name); err != nil {
		return err
	}
	w.WriteUint16(uint16(q.Type))
	w.WriteUint16(uint16(q.Class))
	return nil
}

// DecodeQuestion parses a question from r's current cursor.
func DecodeQuestion(r *Reader) (Question, error) {
	name, err := DecodeName(r, true)
	if err != nil {
		return Question{}, err
	}
	t, err := r.ReadUint16()
	if err != nil {
		return Question{}, err
	}
	class, err := r.ReadUint16()
	if err != nil {
		return Question{}, err
	}
	return Question{Name: name, Type: RecordType(t), Class: RecordClass(class)}, nil
}
