package dns

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// LOCRecord is a geographical location record (RFC 1876): latitude,
// longitude and altitude plus precision hints, all packed into a fixed
// 16-byte rdata.
type LOCRecord struct {
	H         RRHeader
	Version   uint8 // always 0
	Size      uint8 // packed base*10^exponent, centimeters
	HorizPre  uint8 // packed base*10^exponent, centimeters
	VertPre   uint8 // packed base*10^exponent, centimeters
	Latitude  uint32 // 2^31 + thousandths of an arcsecond, north positive
	Longitude uint32 // 2^31 + thousandths of an arcsecond, east positive
	Altitude  uint32 // centimeters above a -100000m reference
}

func (r *LOCRecord) Type() RecordType     { return TypeLOC }
func (r *LOCRecord) Header() RRHeader     { return r.H }
func (r *LOCRecord) SetHeader(h RRHeader) { r.H = h }

func (r *LOCRecord) RDataSize() int { return 16 }

func (r *LOCRecord) MarshalRData(w *Writer) error {
	w.WriteUint8(r.Version)
	w.WriteUint8(r.Size)
	w.WriteUint8(r.HorizPre)
	w.WriteUint8(r.VertPre)
	w.WriteUint32(r.Latitude)
	w.WriteUint32(r.Longitude)
	w.WriteUint32(r.Altitude)
	return nil
}

func (r *LOCRecord) TextRData() string {
	lat := dmsString(r.Latitude, 'N', 'S')
	lon := dmsString(r.Longitude, 'E', 'W')
	alt := (float64(r.Altitude) - 10000000) / 100
	return fmt.Sprintf("%s %s %.2fm %sm %sm %sm",
		lat, lon, alt,
		locPrecisionString(r.Size), locPrecisionString(r.HorizPre), locPrecisionString(r.VertPre))
}

func (r *LOCRecord) Additionals() []AdditionalHint { return nil }

func init() {
	registerWireDecoder(0, TypeLOC, decodeLOCRData)
	registerZoneDecoder(0, TypeLOC, zoneDecodeLOCRData)
}

func decodeLOCRData(r *Reader, hdr RRHeader, rdlen int) (Record, error) {
	if rdlen != 16 {
		return nil, &InvalidLengthError{Expected: 16, Actual: rdlen}
	}
	version, err := r.ReadUint8()
	if err != nil {
		return nil, err
	}
	size, err := r.ReadUint8()
	if err != nil {
		return nil, err
	}
	hp, err := r.ReadUint8()
	if err != nil {
		return nil, err
	}
	vp, err := r.ReadUint8()
	if err != nil {
		return nil, err
	}
	lat, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	lon, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	alt, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	return &LOCRecord{
		H: hdr, Version: version, Size: size, HorizPre: hp, VertPre: vp,
		Latitude: lat, Longitude: lon, Altitude: alt,
	}, nil
}

// zoneDecodeLOCRData parses the conventional textual form:
// "d1 [m1 [s1]] {N|S} d2 [m2 [s2]] {E|W} alt[m] [size[m] [hp[m] [vp[m]]]]"
func zoneDecodeLOCRData(hdr RRHeader, fields []string, _ Name) (Record, error) {
	toks := fields
	lat, toks, err := parseDMS(toks, 'N', 'S')
	if err != nil {
		return nil, err
	}
	lon, toks, err := parseDMS(toks, 'E', 'W')
	if err != nil {
		return nil, err
	}
	if len(toks) == 0 {
		return nil, &UnsupportedFormatError{Reason: "LOC record missing altitude"}
	}
	alt, err := parseLOCMeters(toks[0])
	if err != nil {
		return nil, err
	}
	toks = toks[1:]

	sizeCM, hpCM, vpCM := 100.0, 1000000.0, 1000.0 // RFC 1876 defaults: 1m, 10000m, 10m
	defaults := []*float64{&sizeCM, &hpCM, &vpCM}
	for i := 0; i < len(toks) && i < 3; i++ {
		v, err := parseLOCMeters(toks[i])
		if err != nil {
			return nil, err
		}
		*defaults[i] = v * 100 // meters -> centimeters
	}

	return &LOCRecord{
		H:         hdr,
		Size:      packLOCPrecision(sizeCM),
		HorizPre:  packLOCPrecision(hpCM),
		VertPre:   packLOCPrecision(vpCM),
		Latitude:  lat,
		Longitude: lon,
		Altitude:  uint32(int64(alt*100) + 10000000),
	}, nil
}

func parseDMS(toks []string, pos, neg byte) (uint32, []string, error) {
	var d, m float64
	var s float64
	i := 0
	if len(toks) == 0 {
		return 0, toks, &UnsupportedFormatError{Reason: "LOC record missing coordinate"}
	}
	d, err := strconv.ParseFloat(toks[i], 64)
	if err != nil {
		return 0, toks, &UnsupportedFormatError{Reason: "invalid LOC degrees"}
	}
	i++
	if i < len(toks) && !isHemisphere(toks[i], pos, neg) {
		m, err = strconv.ParseFloat(toks[i], 64)
		if err != nil {
			return 0, toks, &UnsupportedFormatError{Reason: "invalid LOC minutes"}
		}
		i++
		if i < len(toks) && !isHemisphere(toks[i], pos, neg) {
			s, err = strconv.ParseFloat(toks[i], 64)
			if err != nil {
				return 0, toks, &UnsupportedFormatError{Reason: "invalid LOC seconds"}
			}
			i++
		}
	}
	if i >= len(toks) || !isHemisphere(toks[i], pos, neg) {
		return 0, toks, &UnsupportedFormatError{Reason: "LOC coordinate missing hemisphere letter"}
	}
	hemi := strings.ToUpper(toks[i])[0]
	i++

	milliarcsec := (d*3600 + m*60 + s) * 1000
	val := int64(milliarcsec)
	if hemi == neg {
		return uint32(int64(1<<31) - val), toks[i:], nil
	}
	return uint32(int64(1<<31) + val), toks[i:], nil
}

func isHemisphere(tok string, pos, neg byte) bool {
	if len(tok) != 1 {
		return false
	}
	c := strings.ToUpper(tok)[0]
	return c == pos || c == neg
}

func parseLOCMeters(tok string) (float64, error) {
	tok = strings.TrimSuffix(strings.ToLower(tok), "m")
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, &UnsupportedFormatError{Reason: "invalid LOC meters value"}
	}
	return v, nil
}

// packLOCPrecision packs a centimeter value into RFC 1876's
// base(4 bits)*10^exponent(4 bits) byte, rounding to the nearest
// representable value.
func packLOCPrecision(cm float64) uint8 {
	if cm <= 0 {
		return 0
	}
	exp := 0
	for cm >= 10 {
		cm /= 10
		exp++
	}
	base := uint8(math.Round(cm))
	if base > 9 {
		base = 9
	}
	if exp > 9 {
		exp = 9
	}
	return base<<4 | uint8(exp)
}

func locPrecisionString(packed uint8) string {
	base := float64(packed >> 4)
	exp := int(packed & 0x0F)
	cm := base * math.Pow(10, float64(exp))
	return strconv.FormatFloat(cm/100, 'f', 2, 64)
}

func dmsString(v uint32, pos, neg byte) string {
	hemi := pos
	var milliarcsec int64
	if int64(v) >= 1<<31 {
		milliarcsec = int64(v) - (1 << 31)
	} else {
		milliarcsec = (1 << 31) - int64(v)
		hemi = neg
	}
	total := float64(milliarcsec) / 1000
	d := int(total / 3600)
	rem := total - float64(d)*3600
	m := int(rem / 60)
	s := rem - float64(m)*60
	return fmt.Sprintf("%d %d %.3f %c", d, m, s, hemi)
}
