package dns

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeader_RoundTrip(t *testing.T) {
	h := Header{ID: 0xBEEF, Flags: QRFlag | AAFlag | RDFlag, QDCount: 1, ANCount: 2, NSCount: 0, ARCount: 1}
	w := NewWriter()
	h.Marshal(w)
	require.Equal(t, HeaderSize, w.Len())

	r := NewReader(w.Bytes())
	got, err := DecodeHeader(r)
	require.NoError(t, err)
	assert.Equal(t, h, got)
}

func TestOpcodeFromFlags(t *testing.T) {
	flags := uint16(OpcodeStatus) << 11
	assert.Equal(t, OpcodeStatus, OpcodeFromFlags(flags))
}

func TestRCodeFromFlags(t *testing.T) {
	assert.Equal(t, RCodeRefused, RCodeFromFlags(uint16(RCodeRefused)))
}
