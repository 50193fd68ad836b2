package dns

import "encoding/binary"

// Reader is an immutable view over a decoded DNS message with a movable
// cursor and random-access seek, needed to dereference compression
// pointers mid-decode.
type Reader struct {
	buf []byte
	pos int
}

// NewReader wraps buf for sequential (and pointer-driven random-access)
// reads. The Reader does not copy buf; callers must not mutate it while
// decoding is in progress.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Pos returns the current cursor offset.
func (r *Reader) Pos() int { return r.pos }

// Len returns the total buffer length.
func (r *Reader) Len() int { return len(r.buf) }

// Remaining returns the number of unread bytes from the current cursor.
func (r *Reader) Remaining() int { return len(r.buf) - r.pos }

// Seek moves the cursor to an absolute offset. It does not validate the
// offset is in range; the next read will fail if it is not.
func (r *Reader) Seek(off int) {
	r.pos = off
}

func (r *Reader) need(n int) error {
	if r.pos < 0 || n < 0 || r.pos+n > len(r.buf) {
		return &UnexpectedEndError{Size: len(r.buf), Tried: r.pos + n}
	}
	return nil
}

// ReadUint8 reads and consumes one byte.
func (r *Reader) ReadUint8() (byte, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	b := r.buf[r.pos]
	r.pos++
	return b, nil
}

// PeekUint8 reads one byte without advancing the cursor.
func (r *Reader) PeekUint8() (byte, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	return r.buf[r.pos], nil
}

// ReadUint16 reads and consumes a big-endian uint16.
func (r *Reader) ReadUint16() (uint16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint16(r.buf[r.pos : r.pos+2])
	r.pos += 2
	return v, nil
}

// ReadUint32 reads and consumes a big-endian uint32.
func (r *Reader) ReadUint32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint32(r.buf[r.pos : r.pos+4])
	r.pos += 4
	return v, nil
}

// ReadBytes consumes and returns a copy of the next n bytes.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, r.buf[r.pos:r.pos+n])
	r.pos += n
	return out, nil
}

// PeekBytes returns a copy of the next n bytes without advancing the cursor.
func (r *Reader) PeekBytes(n int) ([]byte, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, r.buf[r.pos:r.pos+n])
	return out, nil
}
