package dns

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordRoundTrip(t *testing.T) {
	name := mustName(t, "example.com.")
	target := mustName(t, "ns1.example.com.")

	cases := []struct {
		name string
		rr   Record
	}{
		{"A", &IPRecord{H: RRHeader{Name: name, Type: TypeA, Class: ClassIN, TTL: 60}, Addr: net.IPv4(192, 0, 2, 1)}},
		{"AAAA", &IPRecord{H: RRHeader{Name: name, Type: TypeAAAA, Class: ClassIN, TTL: 60}, Addr: net.ParseIP("2001:db8::1")}},
		{"CH A", &IPRecord{H: RRHeader{Name: name, Type: TypeA, Class: ClassCH, TTL: 0}, Addr: net.IPv4(127, 0, 0, 1)}},
		{"NS", &NameRecord{H: RRHeader{Name: name, Type: TypeNS, Class: ClassIN, TTL: 3600}, Target: target}},
		{"CNAME", &NameRecord{H: RRHeader{Name: name, Type: TypeCNAME, Class: ClassIN, TTL: 3600}, Target: target}},
		{"SOA", &SOARecord{H: RRHeader{Name: name, Type: TypeSOA, Class: ClassIN, TTL: 3600}, MName: target, RName: name, Serial: 1, Refresh: 2, Retry: 3, Expire: 4, Minimum: 5}},
		{"MX", &MXRecord{H: RRHeader{Name: name, Type: TypeMX, Class: ClassIN, TTL: 3600}, Preference: 10, Exchange: target}},
		{"TXT", &TXTRecord{H: RRHeader{Name: name, Type: TypeTXT, Class: ClassIN, TTL: 3600}, Strings: [][]byte{[]byte("hello"), []byte("world")}}},
		{"HINFO", &HINFORecord{H: RRHeader{Name: name, Type: TypeHINFO, Class: ClassIN, TTL: 3600}, CPU: []byte("x86"), OS: []byte("linux")}},
		{"RP", &RPRecord{H: RRHeader{Name: name, Type: TypeRP, Class: ClassIN, TTL: 3600}, Mailbox: name, TXTDom: Root}},
		{"SRV", &SRVRecord{H: RRHeader{Name: name, Type: TypeSRV, Class: ClassIN, TTL: 3600}, Priority: 1, Weight: 2, Port: 443, Target: target}},
		{"Opaque", &OpaqueRecord{H: RRHeader{Name: name, Type: RecordType(9999), Class: ClassIN, TTL: 60}, Data: []byte{1, 2, 3}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := NewWriter()
			require.NoError(t, Marshal(w, tc.rr))

			r := NewReader(w.Bytes())
			got, err := DecodeRecord(r)
			require.NoError(t, err)
			assert.Equal(t, tc.rr.Type(), got.Type())
			assert.Equal(t, tc.rr.Header().TTL, got.Header().TTL)
			assert.Equal(t, w.Len(), r.Pos())
		})
	}
}

func TestOpaqueRecord_TextRData(t *testing.T) {
	rr := &OpaqueRecord{Data: []byte{0xDE, 0xAD, 0xBE, 0xEF}}
	assert.Equal(t, `\# 4 deadbeef`, rr.TextRData())
}

func TestNSRecord_AdditionalsHintsGlue(t *testing.T) {
	target := mustName(t, "ns1.example.com.")
	rr := &NameRecord{H: RRHeader{Type: TypeNS, Class: ClassIN}, Target: target}
	hints := rr.Additionals()
	require.Len(t, hints, 2)
	assert.Equal(t, TypeA, hints[0].Type)
	assert.Equal(t, TypeAAAA, hints[1].Type)
}

func TestCNAMERecord_NoAdditionals(t *testing.T) {
	target := mustName(t, "real.example.com.")
	rr := &NameRecord{H: RRHeader{Type: TypeCNAME, Class: ClassIN}, Target: target}
	assert.Nil(t, rr.Additionals())
}

func TestDecodeRecord_RDLengthMismatch(t *testing.T) {
	name := mustName(t, "example.com.")
	w := NewWriter()
	require.NoError(t, EncodeName(w, name))
	w.WriteUint16(uint16(TypeA))
	w.WriteUint16(uint16(ClassIN))
	w.WriteUint32(60)
	w.WriteUint16(10) // claim 10 bytes of rdata, but only provide 4
	w.WriteBytes([]byte{1, 2, 3, 4})

	r := NewReader(w.Bytes())
	_, err := DecodeRecord(r)
	require.Error(t, err)
}
