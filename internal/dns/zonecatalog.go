package dns

// zoneRDataDecoder builds a Record's rdata from the zone-file field
// tokens following the type mnemonic on a record line (e.g. for
// "A 192.0.2.1" it receives fields=["192.0.2.1"]).
type zoneRDataDecoder func(hdr RRHeader, fields []string, origin Name) (Record, error)

var zoneDecoders = map[catalogKey]zoneRDataDecoder{}

func registerZoneDecoder(class RecordClass, t RecordType, fn zoneRDataDecoder) {
	zoneDecoders[catalogKey{Class: class, Type: t}] = fn
}

// DecodeZoneRData builds a Record from zone-file field tokens, given
// the owner/TTL/class already parsed and the record's type mnemonic
// already resolved to t. Falls back to nil, false when no decoder is
// registered for (class, type) — callers (the zone-file parser) should
// require the `\# <len> <hex>` unknown-type syntax in that case.
func DecodeZoneRData(hdr RRHeader, t RecordType, fields []string, origin Name) (Record, bool, error) {
	decode, ok := zoneDecoders[catalogKey{Class: hdr.Class, Type: t}]
	if !ok {
		decode, ok = zoneDecoders[catalogKey{Class: 0, Type: t}]
	}
	if !ok {
		return nil, false, nil
	}
	rr, err := decode(hdr, fields, origin)
	return rr, true, err
}
