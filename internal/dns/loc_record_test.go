package dns

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZoneDecodeLOCRData_RoundTrip(t *testing.T) {
	hdr := RRHeader{Name: mustName(t, "example.com."), Type: TypeLOC, Class: ClassIN, TTL: 3600}
	fields := []string{"42", "21", "43.528", "N", "71", "5", "6.284", "W", "-24m", "2m", "3m", "4m"}

	rr, err := zoneDecodeLOCRData(hdr, fields, Root)
	require.NoError(t, err)
	loc := rr.(*LOCRecord)
	assert.Equal(t, uint8(0x22), loc.Size)
	assert.Equal(t, uint8(0x32), loc.HorizPre)
	assert.Equal(t, uint8(0x42), loc.VertPre)

	w := NewWriter()
	require.NoError(t, loc.MarshalRData(w))
	assert.Equal(t, 16, w.Len())

	r := NewReader(w.Bytes())
	decoded, err := decodeLOCRData(r, hdr, 16)
	require.NoError(t, err)
	assert.Equal(t, loc, decoded)
}

func TestPackLOCPrecision(t *testing.T) {
	assert.Equal(t, uint8(0x33), packLOCPrecision(3000)) // 3 * 10^3 cm = 30m
	assert.Equal(t, uint8(0x00), packLOCPrecision(0))
}
