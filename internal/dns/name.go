package dns

import "strings"

// Name is a domain name: an ordered sequence of labels, most-specific
// first, exactly as read or written on the wire. The root name is the
// empty Name (zero labels).
//
// Name has no separate "compressible" / "incompressible" Go type; the
// two variants differ only in decode behavior (whether a compression
// pointer is accepted), which DecodeName's allowCompression parameter
// selects. Encoding is always uncompressed regardless of variant.
type Name []Label

// Root is the zero-length domain name.
var Root = Name{}

// Equal reports whether two names are equal label-for-label under
// ASCII case-folding.
func (n Name) Equal(other Name) bool {
	if len(n) != len(other) {
		return false
	}
	for i := range n {
		if !n[i].Equal(other[i]) {
			return false
		}
	}
	return true
}

// IsRoot reports whether n is the zero-label root name.
func (n Name) IsRoot() bool { return len(n) == 0 }

// Key returns a case-folded string uniquely identifying this name,
// suitable for use as a map key (e.g. the "already resolved" set in the
// resolver's worklist).
func (n Name) Key() string {
	var b strings.Builder
	for _, l := range n {
		b.WriteByte(byte(len(l))) // length prefix: label bytes may include NUL
		b.WriteString(l.Key())
	}
	return b.String()
}

// String renders the name in conventional escaped, dot-separated,
// trailing-dot form ("www.example.com."). The root name renders as ".".
func (n Name) String() string {
	if len(n) == 0 {
		return "."
	}
	var b strings.Builder
	for _, l := range n {
		b.WriteString(l.String())
		b.WriteByte('.')
	}
	return b.String()
}

// Reversed returns a copy of n with labels in root-to-leaf order, the
// order the zone tree indexes by (walking from the DNS root downward).
func (n Name) Reversed() Name {
	out := make(Name, len(n))
	for i, l := range n {
		out[len(n)-1-i] = l
	}
	return out
}

// Concat returns a new Name with other's labels appended after n's
// (n more-specific, other less-specific) — e.g. for resolving a
// relative owner name against an origin: relative.Concat(origin).
func (n Name) Concat(other Name) Name {
	out := make(Name, 0, len(n)+len(other))
	out = append(out, n...)
	out = append(out, other...)
	return out
}

// WireLength returns the number of bytes this name would occupy encoded
// uncompressed on the wire (each label's length octet + bytes, plus the
// final zero-length root label).
func (n Name) WireLength() int {
	total := 1 // terminating root label
	for _, l := range n {
		total += 1 + len(l)
	}
	return total
}

// ParseName parses a textual domain name. A trailing unescaped dot
// marks it absolute; "@" means origin verbatim; anything else relative
// is resolved against origin by appending origin's labels. Escapes
// (\. \\ \DDD) are honored when splitting on label boundaries.
func ParseName(text string, origin Name) (Name, error) {
	if text == "@" {
		return origin, nil
	}
	if text == "." {
		return Root, nil
	}

	absolute := strings.HasSuffix(text, ".") && !hasTrailingEscapedDot(text)
	body := text
	if absolute {
		body = text[:len(text)-1]
	}

	labels, err := splitUnescapedDots(body)
	if err != nil {
		return nil, err
	}

	name := make(Name, 0, len(labels))
	for _, tok := range labels {
		l, err := ParseLabel(tok)
		if err != nil {
			return nil, err
		}
		name = append(name, l)
	}

	if !absolute {
		name = name.Concat(origin)
	}
	if n := name.WireLength(); n > MaxNameLength {
		return nil, &UnsupportedFormatError{Reason: "domain name exceeds 255 octets"}
	}
	return name, nil
}

// splitUnescapedDots splits s on '.' characters that are not preceded by
// an odd run of backslashes (i.e. not escaped).
func splitUnescapedDots(s string) ([]string, error) {
	if s == "" {
		return nil, nil
	}
	var parts []string
	start := 0
	escaped := false
	for i := 0; i < len(s); i++ {
		switch {
		case escaped:
			escaped = false
		case s[i] == '\\':
			escaped = true
		case s[i] == '.':
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	if escaped {
		return nil, &UnsupportedFormatError{Reason: "dangling escape at end of name"}
	}
	parts = append(parts, s[start:])
	return parts, nil
}

// hasTrailingEscapedDot reports whether the final "." in text is itself
// escaped (\.), meaning it is not a true absolute-name terminator.
func hasTrailingEscapedDot(text string) bool {
	if !strings.HasSuffix(text, ".") {
		return false
	}
	backslashes := 0
	for i := len(text) - 2; i >= 0 && text[i] == '\\'; i-- {
		backslashes++
	}
	return backslashes%2 == 1
}
